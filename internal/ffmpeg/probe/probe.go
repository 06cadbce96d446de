// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package probe extracts per-file media facts with ffprobe. A failed probe
// is an expected condition: callers log it as a warning and continue without
// duration/codec data.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/media"
)

// Probe runs a single ffprobe JSON call against path. The returned Info has
// SizeBytes filled from a filesystem stat when ffprobe omits it.
func Probe(ctx context.Context, binary, path string) (*media.Info, error) {
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration,size,format_name:stream=codec_type,codec_name,width,height",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	info, err := ParseJSON(out)
	if err != nil {
		return nil, err
	}

	if info.SizeBytes == 0 {
		if st, err := os.Stat(path); err == nil {
			info.SizeBytes = st.Size()
		}
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON into a media.Info.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*media.Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	info := &media.Info{
		FormatName: raw.Format.FormatName,
		Duration:   parseFloat(raw.Format.Duration),
		SizeBytes:  parseInt64(raw.Format.Size),
	}

	// First stream of each kind wins; later ones are ignored.
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if info.VCodec == "" {
				info.VCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
			}
		case "audio":
			if info.ACodec == "" {
				info.ACodec = s.CodecName
			}
		}
	}
	return info, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ffprobe 把数值输出为字符串
func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
