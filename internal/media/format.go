// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatTime renders a duration in seconds as mm:ss or hh:mm:ss.
// Negative or unknown durations render as "--:--".
func FormatTime(seconds float64) string {
	if seconds < 0 {
		return "--:--"
	}
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatBytes renders a byte count with a binary unit suffix
func FormatBytes(size int64) string {
	if size < 0 {
		return "--"
	}
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", value)
}

var plainSeconds = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseClock parses "SS", "SS.sss", "MM:SS" or "HH:MM:SS" into seconds.
// Returns ok=false for empty or malformed input.
func ParseClock(text string) (float64, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return 0, false
	}
	if plainSeconds.MatchString(raw) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		s, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return float64(m)*60 + s, true
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		s, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		return float64(h)*3600 + float64(m)*60 + s, true
	}
	return 0, false
}
