// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package filtergraph translates conversion settings into an FFmpeg filter
// expression: either a flat comma-joined chain for -vf or a labeled,
// semicolon-joined graph for -filter_complex. The graph shape is structural:
// a second visual input (watermark) or blur-portrait compositing forces the
// complex form, nothing else does.
//
// Filter order is position-sensitive and fixed: portrait reframing, resize,
// crop, rotation, speed compensation, text overlay, then GIF constraints.
package filtergraph

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/settings"
)

// WarnFunc receives advisory warnings (missing watermark, ignored options)
type WarnFunc func(format string, args ...interface{})

// Spec is the transient result of one build: the filter flag and value plus
// the auxiliary inputs the assembled command must attach.
type Spec struct {
	Flag        string   // "-vf", "-filter_complex" or "" when no filtering
	Graph       string
	MapLabel    string   // "[vout]" style label, complex graphs only
	ExtraInputs []string // watermark image paths
	Used        bool     // any pixel-level filtering active
}

// speedEpsilon 速度与 1.0 的最小偏差
const speedEpsilon = 0.001

type portraitPreset struct {
	blur bool
	w, h int
}

var portraitPresets = map[settings.Portrait]portraitPreset{
	settings.Portrait1080CropMode: {blur: false, w: 1080, h: 1920},
	settings.Portrait1080BlurMode: {blur: true, w: 1080, h: 1920},
	settings.Portrait720CropMode:  {blur: false, w: 720, h: 1280},
	settings.Portrait720BlurMode:  {blur: true, w: 720, h: 1280},
}

var rotateExpr = map[settings.Rotation]string{
	settings.Rotate0:     "",
	settings.Rotate90CW:  "transpose=1",
	settings.Rotate90CCW: "transpose=2",
	settings.Rotate180:   "transpose=1,transpose=1",
}

// overlay coordinates use the overlaid input's w/h
var overlayPos = map[settings.Position]string{
	settings.PosTopLeft:     "10:10",
	settings.PosTopRight:    "W-w-10:10",
	settings.PosBottomLeft:  "10:H-h-10",
	settings.PosBottomRight: "W-w-10:H-h-10",
	settings.PosCenter:      "(W-w)/2:(H-h)/2",
}

// drawtext coordinates use the rendered text's tw/th so the text never
// clips the frame edge
var textPos = map[settings.Position]string{
	settings.PosTopLeft:     "10:10",
	settings.PosTopRight:    "W-tw-10:10",
	settings.PosBottomLeft:  "10:H-th-10",
	settings.PosBottomRight: "W-tw-10:H-th-10",
	settings.PosCenter:      "(W-tw)/2:(H-th)/2",
}

// EscapeDrawtext escapes backslash, colon and single quote for embedding in
// a drawtext filter value.
func EscapeDrawtext(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ":", `\:`)
	return strings.ReplaceAll(text, "'", `\'`)
}

func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return strings.ReplaceAll(path, ":", `\:`)
}

func resizeFilter(s settings.ConversionSettings) string {
	if s.ResizeW == nil && s.ResizeH == nil {
		return ""
	}
	w, h := -1, -1
	if s.ResizeW != nil {
		w = *s.ResizeW
	}
	if s.ResizeH != nil {
		h = *s.ResizeH
	}
	return fmt.Sprintf("scale=%d:%d", w, h)
}

func cropFilter(s settings.ConversionSettings) string {
	if s.CropW == nil || s.CropH == nil {
		return ""
	}
	x, y := 0, 0
	if s.CropX != nil {
		x = *s.CropX
	}
	if s.CropY != nil {
		y = *s.CropY
	}
	return fmt.Sprintf("crop=%d:%d:%d:%d", *s.CropW, *s.CropH, x, y)
}

// TextFilter builds the drawtext node, or "" when no text is configured
func TextFilter(s settings.ConversionSettings) string {
	text := strings.TrimSpace(s.Text)
	if text == "" {
		return ""
	}
	color := strings.TrimSpace(s.TextColor)
	if color == "" {
		color = "white"
	}
	pos, ok := textPos[s.TextPos]
	if !ok {
		pos = textPos[settings.PosTopLeft]
	}
	sep := strings.Index(pos, ":")
	x, y := pos[:sep], pos[sep+1:]

	draw := fmt.Sprintf("drawtext=text='%s':x=%s:y=%s:fontsize=%d:fontcolor=%s",
		EscapeDrawtext(text), x, y, s.TextSize, color)

	if font := strings.TrimSpace(s.TextFont); font != "" {
		draw += fmt.Sprintf(":fontfile='%s'", escapeFilterPath(font))
	}
	if s.TextBox {
		opacity := clampPct(s.TextBoxOpacity)
		boxColor := strings.TrimSpace(s.TextBoxColor)
		if boxColor == "" {
			boxColor = "black"
		}
		draw += fmt.Sprintf(":box=1:boxcolor=%s@%.2f", boxColor, float64(opacity)/100.0)
	}
	return draw
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func watermarkInput(s settings.ConversionSettings, warn WarnFunc) []string {
	path := strings.TrimSpace(s.WatermarkPath)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if warn != nil {
			warn("watermark not found: %s", path)
		}
		return nil
	}
	return []string{path}
}

func watermarkChain(s settings.ConversionSettings) string {
	scale := s.WatermarkScale
	if scale < 1 {
		scale = 1
	}
	opacity := clampPct(s.WatermarkOpacity)
	return fmt.Sprintf("[1:v]format=rgba,scale=iw*%.2f:ih*%.2f,colorchannelmixer=aa=%.2f[wm]",
		float64(scale)/100.0, float64(scale)/100.0, float64(opacity)/100.0)
}

func overlayPosExpr(p settings.Position) string {
	if expr, ok := overlayPos[p]; ok {
		return expr
	}
	return overlayPos[settings.PosTopLeft]
}

// Build produces the filter spec for one video output. outExt is the output
// extension including the leading dot, lower case.
func Build(s settings.ConversionSettings, outExt string, warn WarnFunc) Spec {
	var filters []string

	portrait, portraitOn := portraitPresets[s.Portrait]

	resize := resizeFilter(s)
	if resize != "" {
		if portraitOn {
			// portrait reframing owns the output geometry
			if warn != nil {
				warn("resize ignored: portrait preset sets the output size")
			}
			resize = ""
		} else {
			filters = append(filters, resize)
		}
	}

	if crop := cropFilter(s); crop != "" {
		filters = append(filters, crop)
	}
	if expr := rotateExpr[s.Rotate]; expr != "" {
		filters = append(filters, expr)
	}
	if speed, ok := s.SpeedValue(); ok && abs(speed-1.0) > speedEpsilon {
		filters = append(filters, fmt.Sprintf("setpts=PTS/%g", speed))
	}
	if text := TextFilter(s); text != "" {
		filters = append(filters, text)
	}

	useBlur := false
	blurGraph := ""
	if portraitOn {
		if portrait.blur {
			useBlur = true
			blurGraph = fmt.Sprintf(
				"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,boxblur=20:1,crop=%d:%d[bg];"+
					"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease[fg];"+
					"[bg][fg]overlay=(W-w)/2:(H-h)/2,setsar=1",
				portrait.w, portrait.h, portrait.w, portrait.h, portrait.w, portrait.h)
		} else {
			// scale the larger dimension to the 9:16 target, hard-crop the
			// rest, then force square pixels
			crop := fmt.Sprintf("scale='if(gt(a,9/16),-2,%d)':'if(gt(a,9/16),%d,-2)',crop=%d:%d,setsar=1",
				portrait.w, portrait.h, portrait.w, portrait.h)
			filters = append([]string{crop}, filters...)
		}
	}

	if outExt == ".gif" {
		filters = append(filters, "fps=12")
		if s.ResizeW == nil && s.ResizeH == nil {
			filters = append(filters, "scale=640:-1:flags=lanczos")
		}
	}

	wmInputs := watermarkInput(s, warn)

	if !useBlur && len(wmInputs) == 0 {
		if len(filters) == 0 {
			return Spec{}
		}
		return Spec{Flag: "-vf", Graph: strings.Join(filters, ","), Used: true}
	}

	var parts []string
	const baseLabel = "vbase"
	if useBlur {
		graph := blurGraph
		if len(filters) > 0 {
			graph += "," + strings.Join(filters, ",")
		}
		parts = append(parts, graph+"["+baseLabel+"]")
	} else {
		chain := "null"
		if len(filters) > 0 {
			chain = strings.Join(filters, ",")
		}
		parts = append(parts, "[0:v]"+chain+"["+baseLabel+"]")
	}

	outLabel := baseLabel
	if len(wmInputs) > 0 {
		parts = append(parts, watermarkChain(s))
		parts = append(parts, fmt.Sprintf("[%s][wm]overlay=%s[vout]", baseLabel, overlayPosExpr(s.WatermarkPos)))
		outLabel = "vout"
	}

	return Spec{
		Flag:        "-filter_complex",
		Graph:       strings.Join(parts, ";"),
		MapLabel:    "[" + outLabel + "]",
		ExtraInputs: wmInputs,
		Used:        true,
	}
}

// BuildImage produces the filter spec for an image output: resize, crop,
// rotation and text apply; portrait, speed and GIF constraints do not.
func BuildImage(s settings.ConversionSettings, warn WarnFunc) Spec {
	var filters []string

	if resize := resizeFilter(s); resize != "" {
		filters = append(filters, resize)
	}
	if crop := cropFilter(s); crop != "" {
		filters = append(filters, crop)
	}
	if expr := rotateExpr[s.Rotate]; expr != "" {
		filters = append(filters, expr)
	}
	if text := TextFilter(s); text != "" {
		filters = append(filters, text)
	}

	wmInputs := watermarkInput(s, warn)
	if len(wmInputs) == 0 {
		if len(filters) == 0 {
			return Spec{}
		}
		return Spec{Flag: "-vf", Graph: strings.Join(filters, ","), Used: true}
	}

	chain := "null"
	if len(filters) > 0 {
		chain = strings.Join(filters, ",")
	}
	parts := []string{
		"[0:v]" + chain + "[vbase]",
		watermarkChain(s),
		fmt.Sprintf("[vbase][wm]overlay=%s[vout]", overlayPosExpr(s.WatermarkPos)),
	}

	return Spec{
		Flag:        "-filter_complex",
		Graph:       strings.Join(parts, ";"),
		MapLabel:    "[vout]",
		ExtraInputs: wmInputs,
		Used:        true,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
