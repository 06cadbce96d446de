// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package codec resolves the user's codec and hardware preferences into a
// concrete encoder, applying container-compatibility fallbacks. All
// incompatibilities downgrade with a warning; nothing here fails hard.
package codec

import (
	"strconv"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/ffmpeg/skills"
	"github.com/ZSC714725/mediabatch/internal/settings"
)

// WarnFunc receives advisory downgrade warnings
type WarnFunc func(format string, args ...interface{})

// Family is a concrete codec family ("h264", "vp9", "gif", ...)
type Family string

// Resolve maps the output extension and user choice to a codec family.
// GIF always forces the gif codec; auto picks VP9 for WebM and H.264
// otherwise; incompatible explicit choices downgrade with a warning.
func Resolve(outExt string, choice settings.CodecChoice, warn WarnFunc) Family {
	outExt = strings.ToLower(outExt)
	if outExt == ".gif" {
		return "gif"
	}

	switch choice {
	case settings.CodecH264, settings.CodecH265, settings.CodecAV1, settings.CodecVP9:
	default:
		choice = settings.CodecAuto
	}

	if choice == settings.CodecAuto {
		if outExt == ".webm" {
			return "vp9"
		}
		return "h264"
	}

	if outExt == ".webm" && choice != settings.CodecVP9 && choice != settings.CodecAV1 {
		if warn != nil {
			warn("WebM only supports VP9/AV1, switching to VP9")
		}
		return "vp9"
	}
	switch outExt {
	case ".mp4", ".mov", ".m4v", ".avi":
		if choice == settings.CodecVP9 {
			if warn != nil {
				warn("VP9 is not compatible with MP4/MOV/AVI, switching to H.264")
			}
			return "h264"
		}
	}
	return Family(choice)
}

var hwEncoders = map[settings.HWPreference]map[Family]string{
	settings.HWNvidia: {"h264": "h264_nvenc", "h265": "hevc_nvenc", "av1": "av1_nvenc"},
	settings.HWIntel:  {"h264": "h264_qsv", "h265": "hevc_qsv", "av1": "av1_qsv"},
	settings.HWAMD:    {"h264": "h264_amf", "h265": "hevc_amf", "av1": "av1_amf"},
}

// hardware vendors are probed in this fixed order under HWAuto
var hwProbeOrder = []settings.HWPreference{settings.HWNvidia, settings.HWIntel, settings.HWAMD}

// Select picks the encoder for a codec family given the hardware preference
// and the detected capability set. The second return reports whether the
// chosen encoder is hardware accelerated. An unavailable choice never fails:
// it falls back to software, ultimately libx264, with a warning.
func Select(family Family, pref settings.HWPreference, caps skills.Skills, warn WarnFunc) (string, bool) {
	av1 := "libsvtav1"
	if !caps.HasEncoder("libsvtav1") {
		av1 = "libaom-av1"
	}
	cpu := map[Family]string{
		"h264": "libx264",
		"h265": "libx265",
		"av1":  av1,
		"vp9":  "libvpx-vp9",
	}

	software, ok := cpu[family]
	if !ok {
		return "libx264", false
	}

	fallbackSoftware := func() (string, bool) {
		if len(caps.Encoders) > 0 && !caps.HasEncoder(software) {
			if warn != nil {
				warn("encoder %s unavailable, switching to libx264", software)
			}
			return "libx264", false
		}
		return software, false
	}

	switch pref {
	case settings.HWCPU:
		return fallbackSoftware()
	case settings.HWAuto:
		for _, vendor := range hwProbeOrder {
			if enc, ok := hwEncoders[vendor][family]; ok && caps.HasEncoder(enc) {
				return enc, true
			}
		}
		return fallbackSoftware()
	default:
		if enc, ok := hwEncoders[pref][family]; ok && caps.HasEncoder(enc) {
			return enc, true
		}
		if warn != nil {
			warn("selected GPU encoder unavailable, using CPU")
		}
		return fallbackSoftware()
	}
}

// QualityArgs maps an encoder to its quality-control arguments for the
// given CRF value. The syntax differs per encoder family; this is a closed
// table, not inferred.
func QualityArgs(encoder string, crf int) []string {
	v := strconv.Itoa(crf)
	switch encoder {
	case "libx264", "libx265", "libsvtav1", "libaom-av1":
		return []string{"-crf", v}
	case "libvpx-vp9":
		return []string{"-crf", v, "-b:v", "0"}
	}
	switch {
	case strings.HasSuffix(encoder, "_nvenc"):
		return []string{"-rc:v", "vbr", "-cq", v, "-b:v", "0"}
	case strings.HasSuffix(encoder, "_qsv"):
		return []string{"-global_quality", v}
	case strings.HasSuffix(encoder, "_amf"):
		return []string{"-rc", "cqp", "-qp_i", v, "-qp_p", v, "-qp_b", v}
	}
	return nil
}

// yuv420p is forced for these encoders so players without high bit depth or
// 4:4:4 support can decode the output
var pixFmtEncoders = map[string]bool{
	"libx264": true, "libx265": true,
	"h264_nvenc": true, "hevc_nvenc": true,
	"h264_qsv": true, "hevc_qsv": true,
	"h264_amf": true, "hevc_amf": true,
}

// NeedsPixFmt reports whether the encoder gets an explicit -pix_fmt yuv420p
func NeedsPixFmt(encoder string) bool {
	return pixFmtEncoders[encoder]
}

// SupportsPreset reports whether the encoder accepts the x264/x265 -preset
// speed names
func SupportsPreset(encoder string) bool {
	return encoder == "libx264" || encoder == "libx265"
}
