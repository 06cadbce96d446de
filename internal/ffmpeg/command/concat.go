// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteConcatList writes the concat demuxer manifest: one quoted absolute
// path per line, backslashes normalized to forward slashes and single
// quotes escaped the way the demuxer expects. The caller must remove the
// returned file after the run, success or not.
func WriteConcatList(inputs []string) (string, error) {
	tmp, err := os.CreateTemp("", "mediabatch-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}

	var b strings.Builder
	for _, path := range inputs {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		safe := strings.ReplaceAll(abs, `\`, "/")
		safe = strings.ReplaceAll(safe, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", safe)
	}

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close concat list: %w", err)
	}
	return tmp.Name(), nil
}
