// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package settings defines the flat conversion configuration submitted for a
// whole run. A ConversionSettings is a pure value: it is copied into the
// engine at run start and validated only where it is consumed.
package settings

// CodecChoice is the user's codec selection
type CodecChoice string

const (
	CodecAuto CodecChoice = "auto"
	CodecH264 CodecChoice = "h264"
	CodecH265 CodecChoice = "h265"
	CodecAV1  CodecChoice = "av1"
	CodecVP9  CodecChoice = "vp9"
)

// HWPreference selects the hardware encoder vendor
type HWPreference string

const (
	HWAuto   HWPreference = "auto"
	HWCPU    HWPreference = "cpu"
	HWNvidia HWPreference = "nvidia"
	HWIntel  HWPreference = "intel"
	HWAMD    HWPreference = "amd"
)

// Position of an overlay relative to the frame
type Position string

const (
	PosTopLeft     Position = "top-left"
	PosTopRight    Position = "top-right"
	PosBottomLeft  Position = "bottom-left"
	PosBottomRight Position = "bottom-right"
	PosCenter      Position = "center"
)

// Rotation is the closed set of supported rotation angles
type Rotation string

const (
	Rotate0      Rotation = "0"
	Rotate90CW   Rotation = "90cw"
	Rotate90CCW  Rotation = "90ccw"
	Rotate180    Rotation = "180"
)

// Portrait selects a vertical reframing preset
type Portrait string

const (
	PortraitOff          Portrait = "off"
	Portrait1080CropMode Portrait = "1080x1920-crop"
	Portrait1080BlurMode Portrait = "1080x1920-blur"
	Portrait720CropMode  Portrait = "720x1280-crop"
	Portrait720BlurMode  Portrait = "720x1280-blur"
)

// ConversionSettings 一次运行的全部转换配置
//
// Optional numeric fields are pointers: nil means "not set", which is
// distinct from an explicit zero.
type ConversionSettings struct {
	OutVideoFormat string `json:"out_video_format"`
	OutImageFormat string `json:"out_image_format"`
	CRF            int    `json:"crf"`
	Preset         string `json:"preset"`
	ImgQuality     int    `json:"img_quality"`
	Overwrite      bool   `json:"overwrite"`
	FastCopy       bool   `json:"fast_copy"`

	TrimStart *float64 `json:"trim_start,omitempty"`
	TrimEnd   *float64 `json:"trim_end,omitempty"`
	Merge     bool     `json:"merge"`
	MergeName string   `json:"merge_name"`

	Portrait Portrait `json:"portrait"`
	ResizeW  *int     `json:"resize_w,omitempty"`
	ResizeH  *int     `json:"resize_h,omitempty"`
	CropW    *int     `json:"crop_w,omitempty"`
	CropH    *int     `json:"crop_h,omitempty"`
	CropX    *int     `json:"crop_x,omitempty"`
	CropY    *int     `json:"crop_y,omitempty"`
	Rotate   Rotation `json:"rotate"`
	Speed    *float64 `json:"speed,omitempty"`

	WatermarkPath    string   `json:"watermark_path"`
	WatermarkPos     Position `json:"watermark_pos"`
	WatermarkOpacity int      `json:"watermark_opacity"`
	WatermarkScale   int      `json:"watermark_scale"`

	Text           string   `json:"text"`
	TextPos        Position `json:"text_pos"`
	TextSize       int      `json:"text_size"`
	TextColor      string   `json:"text_color"`
	TextBox        bool     `json:"text_box"`
	TextBoxColor   string   `json:"text_box_color"`
	TextBoxOpacity int      `json:"text_box_opacity"`
	TextFont       string   `json:"text_font"`

	VideoCodec CodecChoice  `json:"video_codec"`
	HWEncoder  HWPreference `json:"hw_encoder"`

	StripMetadata bool   `json:"strip_metadata"`
	CopyMetadata  bool   `json:"copy_metadata"`
	MetaTitle     string `json:"meta_title"`
	MetaComment   string `json:"meta_comment"`
	MetaAuthor    string `json:"meta_author"`
	MetaCopyright string `json:"meta_copyright"`
}

// Default returns the documented defaults, which also back missing fields
// when old preset records are loaded.
func Default() ConversionSettings {
	return ConversionSettings{
		OutVideoFormat:   "mp4",
		OutImageFormat:   "jpg",
		CRF:              23,
		Preset:           "medium",
		ImgQuality:       90,
		MergeName:        "merged",
		Portrait:         PortraitOff,
		Rotate:           Rotate0,
		WatermarkPos:     PosBottomRight,
		WatermarkOpacity: 80,
		WatermarkScale:   30,
		TextPos:          PosBottomRight,
		TextSize:         24,
		TextColor:        "white",
		TextBoxColor:     "black",
		TextBoxOpacity:   50,
		VideoCodec:       CodecAuto,
		HWEncoder:        HWAuto,
	}
}

const (
	minCRF = 14
	maxCRF = 35
)

// EffectiveCRF clamps the configured CRF into the supported range
func (s ConversionSettings) EffectiveCRF() int {
	if s.CRF < minCRF {
		return minCRF
	}
	if s.CRF > maxCRF {
		return maxCRF
	}
	return s.CRF
}

// EffectiveImageQuality clamps image quality into [1, 100]
func (s ConversionSettings) EffectiveImageQuality() int {
	if s.ImgQuality < 1 {
		return 1
	}
	if s.ImgQuality > 100 {
		return 100
	}
	return s.ImgQuality
}

// SpeedValue returns the playback speed multiplier when one is set and
// positive.
func (s ConversionSettings) SpeedValue() (float64, bool) {
	if s.Speed == nil || *s.Speed <= 0 {
		return 0, false
	}
	return *s.Speed, true
}
