// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package preset persists named conversion settings as a JSON map in the
// user's home directory. Records written by older versions may miss fields;
// those fall back to the documented defaults instead of failing.
package preset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ZSC714725/mediabatch/internal/settings"
)

// DefaultFileName 预设文件名（位于用户主目录）
const DefaultFileName = ".mediabatch_presets.json"

// DefaultPath returns the preset store path under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

func intp(v int) *int { return &v }

// Builtin returns the built-in preset set. The map is rebuilt on every call
// so callers may mutate their copy freely.
func Builtin() map[string]settings.ConversionSettings {
	h264 := settings.Default()
	h264.VideoCodec = settings.CodecH264

	h265 := settings.Default()
	h265.OutVideoFormat = "mp4"
	h265.CRF = 26
	h265.Preset = "slow"
	h265.VideoCodec = settings.CodecH265

	av1 := settings.Default()
	av1.OutVideoFormat = "mkv"
	av1.CRF = 30
	av1.VideoCodec = settings.CodecAV1

	vp9 := settings.Default()
	vp9.OutVideoFormat = "webm"
	vp9.CRF = 28
	vp9.Preset = "slow"
	vp9.VideoCodec = settings.CodecVP9

	nvenc := settings.Default()
	nvenc.Preset = "fast"
	nvenc.VideoCodec = settings.CodecH264
	nvenc.HWEncoder = settings.HWNvidia

	fastCopy := settings.Default()
	fastCopy.FastCopy = true

	gif := settings.Default()
	gif.OutVideoFormat = "gif"
	gif.ResizeW = intp(640)

	jpg := settings.Default()
	jpg.OutImageFormat = "jpg"
	jpg.ImgQuality = 90

	webp := settings.Default()
	webp.OutImageFormat = "webp"
	webp.ImgQuality = 80

	return map[string]settings.ConversionSettings{
		"H.264 Balanced (MP4)":     h264,
		"H.265 Smaller (MP4)":      h265,
		"AV1 Quality (MKV)":        av1,
		"WebM VP9 (Web)":           vp9,
		"GPU NVENC H.264 (Fast)":   nvenc,
		"Fast Copy (no re-encode)": fastCopy,
		"GIF 480p":                 gif,
		"Photo JPG (90)":           jpg,
		"Photo WebP (80)":          webp,
	}
}

// Load reads the preset file at path and merges it over the built-in set.
// Each stored record starts from settings.Default() before unmarshalling, so
// fields absent from old files keep their defaults. Any read or parse
// failure yields the built-in set.
func Load(path string) map[string]settings.ConversionSettings {
	presets := Builtin()

	data, err := os.ReadFile(path)
	if err != nil {
		return presets
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return presets
	}

	for name, record := range raw {
		s := settings.Default()
		if err := json.Unmarshal(record, &s); err != nil {
			continue
		}
		presets[name] = s
	}
	return presets
}

// Save writes the preset map as indented JSON
func Save(path string, presets map[string]settings.ConversionSettings) error {
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
