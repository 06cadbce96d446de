// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package command

import (
	"path/filepath"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/media"
)

// per-container codec allow-list for stream copy. MKV takes anything;
// unknown containers are not restricted.
var containerCodecs = map[string]map[string]bool{
	".mp4":  {"h264": true, "hevc": true, "h265": true, "av1": true},
	".m4v":  {"h264": true, "hevc": true, "h265": true, "av1": true},
	".mov":  {"h264": true, "hevc": true, "h265": true, "av1": true},
	".webm": {"vp8": true, "vp9": true, "av1": true},
	".avi":  {"mpeg4": true, "h264": true, "xvid": true},
}

func containerSupportsCodec(ext, vcodec string) bool {
	ext = strings.ToLower(ext)
	vcodec = strings.ToLower(vcodec)
	if ext == ".mkv" {
		return true
	}
	allowed, ok := containerCodecs[ext]
	if !ok {
		return true
	}
	return allowed[vcodec]
}

// FastCopyAllowed decides whether a single file may be stream-copied. The
// returned reason names the disqualifying condition; it is empty only when
// copying is allowed.
func FastCopyAllowed(inputPath, outExt string, info *media.Info, filtersUsed, audioFilterUsed bool) (bool, string) {
	if strings.ToLower(outExt) == ".gif" {
		return false, "GIF requires re-encoding"
	}
	if filtersUsed || audioFilterUsed {
		return false, "filters or speed change active"
	}
	if !strings.EqualFold(filepath.Ext(inputPath), outExt) {
		return false, "container differs"
	}
	if info != nil && info.VCodec != "" {
		if !containerSupportsCodec(outExt, info.VCodec) {
			return false, "codec incompatible with container"
		}
	}
	return true, ""
}

// MergeCopyAllowed decides whether an N-file concatenation may be
// stream-copied. Besides the single-file rules it requires no trim window,
// probe data for every input and codec homogeneity across all inputs.
func MergeCopyAllowed(inputs []string, outExt string, infos map[string]media.Info, filtersUsed, audioFilterUsed, trimmed bool) (bool, string) {
	if filtersUsed || audioFilterUsed || trimmed {
		return false, "filters or trim active"
	}
	if len(inputs) == 0 {
		return false, "no inputs"
	}
	if !strings.EqualFold(filepath.Ext(inputs[0]), outExt) {
		return false, "container differs"
	}

	vcodecs := map[string]bool{}
	acodecs := map[string]bool{}
	for _, path := range inputs {
		info, ok := infos[path]
		if !ok || info.VCodec == "" {
			return false, "no probe data"
		}
		vcodecs[info.VCodec] = true
		if info.ACodec != "" {
			acodecs[info.ACodec] = true
		}
	}
	if len(vcodecs) > 1 || len(acodecs) > 1 {
		return false, "different codecs"
	}
	return true, ""
}
