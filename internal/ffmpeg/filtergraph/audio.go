// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package filtergraph

import (
	"fmt"
	"strings"

	"github.com/ZSC714725/mediabatch/internal/settings"
)

// AtempoChain decomposes a speed multiplier into factors the atempo filter
// accepts. atempo only takes values in [0.5, 2.0], so values outside that
// range become a chain of 2.0 or 0.5 steps plus a remainder; the product of
// the chain equals the requested speed exactly.
func AtempoChain(speed float64) []float64 {
	if speed <= 0 {
		return nil
	}
	var factors []float64
	for speed > 2.0 {
		factors = append(factors, 2.0)
		speed /= 2.0
	}
	for speed < 0.5 {
		factors = append(factors, 0.5)
		speed /= 0.5
	}
	return append(factors, speed)
}

// AudioSpeedFilter builds the atempo chain for the configured speed, or ""
// when the speed is unset or within epsilon of 1.0.
func AudioSpeedFilter(s settings.ConversionSettings) string {
	speed, ok := s.SpeedValue()
	if !ok || abs(speed-1.0) < speedEpsilon {
		return ""
	}
	chain := AtempoChain(speed)
	if len(chain) == 0 {
		return ""
	}
	parts := make([]string, len(chain))
	for i, factor := range chain {
		parts[i] = fmt.Sprintf("atempo=%.3f", factor)
	}
	return strings.Join(parts, ",")
}
