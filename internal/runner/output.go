// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// safeOutputName returns a collision-free output path in dir: the plain
// "stem.ext" when free, otherwise "stem (N).ext" with the first free N.
func safeOutputName(dir, stem, ext string) string {
	candidate := filepath.Join(dir, stem+ext)
	if !pathExists(candidate) {
		return candidate
	}
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
