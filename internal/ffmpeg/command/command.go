// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package command assembles full FFmpeg argument vectors for the three run
// shapes: single video, single image and N-way merge. Commands are built as
// argument lists without the binary itself and always end with the output
// path; a command is never reused across files.
package command

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/ffmpeg/codec"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/filtergraph"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/skills"
	"github.com/ZSC714725/mediabatch/internal/settings"
)

// WarnFunc receives advisory warnings during assembly
type WarnFunc func(format string, args ...interface{})

func overwriteFlag(s settings.ConversionSettings) string {
	if s.Overwrite {
		return "-y"
	}
	return "-n"
}

// TrimArgs builds -ss/-to from the trim window. An end at or before the
// start is dropped with a warning instead of producing an invalid window.
func TrimArgs(s settings.ConversionSettings, warn WarnFunc) []string {
	var args []string
	if s.TrimStart != nil {
		args = append(args, "-ss", fmt.Sprintf("%.3f", *s.TrimStart))
	}
	if s.TrimEnd != nil {
		if s.TrimStart != nil && *s.TrimEnd <= *s.TrimStart {
			if warn != nil {
				warn("trim end <= start, ignoring end")
			}
		} else {
			args = append(args, "-to", fmt.Sprintf("%.3f", *s.TrimEnd))
		}
	}
	return args
}

// MetadataArgs builds the metadata policy arguments. Strip and copy are
// mutually exclusive, strip winning; individual fields append on top.
func MetadataArgs(s settings.ConversionSettings) []string {
	var args []string
	if s.StripMetadata {
		args = append(args, "-map_metadata", "-1")
	} else if s.CopyMetadata {
		args = append(args, "-map_metadata", "0")
	}
	if v := strings.TrimSpace(s.MetaTitle); v != "" {
		args = append(args, "-metadata", "title="+v)
	}
	if v := strings.TrimSpace(s.MetaComment); v != "" {
		args = append(args, "-metadata", "comment="+v)
	}
	if v := strings.TrimSpace(s.MetaAuthor); v != "" {
		args = append(args, "-metadata", "artist="+v)
	}
	if v := strings.TrimSpace(s.MetaCopyright); v != "" {
		args = append(args, "-metadata", "copyright="+v)
	}
	return args
}

func isMovContainer(ext string) bool {
	switch ext {
	case ".mp4", ".mov", ".m4v":
		return true
	}
	return false
}

// VideoInput carries everything needed to assemble one video command
type VideoInput struct {
	Input       string
	Output      string
	Settings    settings.ConversionSettings
	Filter      filtergraph.Spec
	AudioFilter string
	Caps        skills.Skills
	FastCopy    bool // caller already verified eligibility
}

// BuildVideo assembles the argument vector for one video conversion
func BuildVideo(in VideoInput, warn WarnFunc) []string {
	s := in.Settings
	outExt := strings.ToLower(filepath.Ext(in.Output))

	if in.FastCopy {
		cmd := []string{overwriteFlag(s), "-i", in.Input}
		cmd = append(cmd, TrimArgs(s, warn)...)
		cmd = append(cmd, "-map", "0", "-c", "copy")
		cmd = append(cmd, MetadataArgs(s)...)
		if isMovContainer(outExt) {
			cmd = append(cmd, "-movflags", "+faststart")
		}
		return append(cmd, in.Output)
	}

	cmd := []string{overwriteFlag(s), "-i", in.Input}
	for _, extra := range in.Filter.ExtraInputs {
		cmd = append(cmd, "-i", extra)
	}
	cmd = append(cmd, TrimArgs(s, warn)...)
	cmd = appendFilterAndMaps(cmd, in.Filter)

	if outExt == ".gif" {
		// GIF drops audio entirely and needs no encoder args
		cmd = append(cmd, "-an")
		cmd = append(cmd, MetadataArgs(s)...)
		return append(cmd, in.Output)
	}

	cmd = append(cmd, "-map", "0:a:0?")
	if in.AudioFilter != "" {
		cmd = append(cmd, "-filter:a", in.AudioFilter)
	}

	cmd = appendEncoderArgs(cmd, outExt, s, in.Caps, warn)
	cmd = append(cmd, MetadataArgs(s)...)
	return append(cmd, in.Output)
}

// appendFilterAndMaps adds the filter flag and the video stream map. The
// complex graph's final label replaces the default stream selector.
func appendFilterAndMaps(cmd []string, spec filtergraph.Spec) []string {
	if spec.Flag != "" {
		cmd = append(cmd, spec.Flag, spec.Graph)
		if spec.Flag == "-filter_complex" && spec.MapLabel != "" {
			return append(cmd, "-map", spec.MapLabel)
		}
	}
	return append(cmd, "-map", "0:v:0?")
}

func appendEncoderArgs(cmd []string, outExt string, s settings.ConversionSettings, caps skills.Skills, warn WarnFunc) []string {
	family := codec.Resolve(outExt, s.VideoCodec, codec.WarnFunc(warn))
	encoder, isHW := codec.Select(family, s.HWEncoder, caps, codec.WarnFunc(warn))

	cmd = append(cmd, "-c:v", encoder)
	if !isHW && codec.SupportsPreset(encoder) {
		preset := strings.TrimSpace(s.Preset)
		if preset == "" {
			preset = "medium"
		}
		cmd = append(cmd, "-preset", preset)
	}
	cmd = append(cmd, codec.QualityArgs(encoder, s.EffectiveCRF())...)
	if codec.NeedsPixFmt(encoder) {
		cmd = append(cmd, "-pix_fmt", "yuv420p")
	}

	if outExt == ".webm" {
		cmd = append(cmd, "-c:a", "libopus", "-b:a", "128k")
	} else {
		cmd = append(cmd, "-c:a", "aac", "-b:a", "192k")
	}

	if isMovContainer(outExt) {
		cmd = append(cmd, "-movflags", "+faststart")
	}
	return cmd
}

// BuildImage assembles the argument vector for one image conversion
func BuildImage(input, output string, s settings.ConversionSettings, spec filtergraph.Spec) []string {
	ext := strings.ToLower(filepath.Ext(output))

	cmd := []string{overwriteFlag(s), "-i", input}
	for _, extra := range spec.ExtraInputs {
		cmd = append(cmd, "-i", extra)
	}
	if spec.Flag != "" {
		cmd = append(cmd, spec.Flag, spec.Graph)
		if spec.Flag == "-filter_complex" && spec.MapLabel != "" {
			cmd = append(cmd, "-map", spec.MapLabel)
		}
	}

	cmd = append(cmd, MetadataArgs(s)...)

	q := s.EffectiveImageQuality()
	switch ext {
	case ".jpg", ".jpeg":
		// map 1..100 onto mjpeg's inverted 2..31 quantizer scale
		qv := 31 - int(float64(q)/100.0*29.0+0.5)
		if qv < 2 {
			qv = 2
		}
		if qv > 31 {
			qv = 31
		}
		cmd = append(cmd, "-q:v", fmt.Sprintf("%d", qv))
	case ".webp":
		cmd = append(cmd, "-q:v", fmt.Sprintf("%d", q))
	}

	return append(cmd, output)
}

// MergeInput carries everything needed to assemble one concat command
type MergeInput struct {
	ListPath    string // concat manifest written by WriteConcatList
	Output      string
	Settings    settings.ConversionSettings
	Filter      filtergraph.Spec
	AudioFilter string
	Caps        skills.Skills
	FastCopy    bool
}

// BuildMerge assembles the argument vector for an N-way concatenation fed
// by the concat demuxer manifest.
func BuildMerge(in MergeInput, warn WarnFunc) []string {
	s := in.Settings
	outExt := strings.ToLower(filepath.Ext(in.Output))

	cmd := []string{overwriteFlag(s), "-f", "concat", "-safe", "0", "-i", in.ListPath}
	for _, extra := range in.Filter.ExtraInputs {
		cmd = append(cmd, "-i", extra)
	}
	cmd = append(cmd, TrimArgs(s, warn)...)

	if in.FastCopy {
		cmd = append(cmd, "-map", "0", "-c", "copy")
		cmd = append(cmd, MetadataArgs(s)...)
		if isMovContainer(outExt) {
			cmd = append(cmd, "-movflags", "+faststart")
		}
		return append(cmd, in.Output)
	}

	cmd = appendFilterAndMaps(cmd, in.Filter)

	if outExt == ".gif" {
		cmd = append(cmd, "-an")
		cmd = append(cmd, MetadataArgs(s)...)
		return append(cmd, in.Output)
	}

	cmd = append(cmd, "-map", "0:a:0?")
	if in.AudioFilter != "" {
		cmd = append(cmd, "-filter:a", in.AudioFilter)
	}

	cmd = appendEncoderArgs(cmd, outExt, s, in.Caps, warn)
	cmd = append(cmd, MetadataArgs(s)...)
	return append(cmd, in.Output)
}

// WithProgress inserts the machine-readable progress flags right after the
// overwrite token so the supervisor can parse stdout line by line.
func WithProgress(cmd []string) []string {
	if len(cmd) == 0 {
		return cmd
	}
	out := make([]string, 0, len(cmd)+4)
	out = append(out, cmd[0])
	out = append(out, "-progress", "pipe:1", "-nostats", "-hide_banner")
	return append(out, cmd[1:]...)
}
