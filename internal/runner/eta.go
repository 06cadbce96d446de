// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package runner

// clamp01 clamps a fraction into [0, 1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// filePct is the completed fraction of the current file, 0 when the
// duration is unknown.
func filePct(outTime, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp01(outTime / duration)
}

// etaSeconds estimates remaining seconds. FFmpeg's reported speed gives the
// direct estimate; without it the elapsed wall time is extrapolated from
// the completed fraction. -1 means no estimate is possible yet.
func etaSeconds(duration, outTime, speed, elapsed, pct float64) float64 {
	if duration > 0 && speed > 0 {
		remaining := (duration - outTime) / speed
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	if pct > 0 && elapsed > 0 {
		remaining := elapsed/pct - elapsed
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return -1
}
