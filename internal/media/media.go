// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package media holds the probed facts and queue item types shared by the
// conversion engine.
package media

import (
	"path/filepath"
	"strings"
)

// Kind of a queued file, determined solely by its extension
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Info 单个文件的探测结果（ffprobe）
type Info struct {
	Duration   float64 `json:"duration_seconds"` // 0 = unknown
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FormatName string  `json:"format_name"`
	SizeBytes  int64   `json:"size_bytes"`
}

// TaskItem is one queued unit of work
type TaskItem struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

var videoExts = map[string]bool{
	".mov": true, ".mp4": true, ".mkv": true, ".webm": true, ".avi": true,
	".m4v": true, ".flv": true, ".wmv": true, ".mts": true, ".m2ts": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".bmp": true,
	".tif": true, ".tiff": true, ".heic": true, ".heif": true,
}

// IsVideo reports whether path has a known video extension
func IsVideo(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// IsImage reports whether path has a known image extension
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// KindOf returns the media kind for path, or "" for unsupported extensions
func KindOf(path string) Kind {
	if IsVideo(path) {
		return KindVideo
	}
	if IsImage(path) {
		return KindImage
	}
	return ""
}
