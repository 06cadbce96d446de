// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package parse

import (
	"math"
	"testing"
)

func TestParseProgressStream(t *testing.T) {
	p := New(Config{LogLines: 10})

	lines := []string{
		"frame=120",
		"fps=30.00",
		"total_size=1048576",
		"out_time_us=4500000",
		"out_time_ms=4500000",
		"out_time=00:00:04.500000",
		"speed=2.5x",
		"progress=continue",
	}
	for _, line := range lines {
		p.Parse(line)
	}

	got := p.Progress()
	if got.Frame != 120 {
		t.Errorf("Frame = %d", got.Frame)
	}
	if math.Abs(got.OutTime-4.5) > 1e-9 {
		t.Errorf("OutTime = %g", got.OutTime)
	}
	if got.Speed != 2.5 {
		t.Errorf("Speed = %g", got.Speed)
	}
	if got.TotalSize != 1048576 {
		t.Errorf("TotalSize = %d", got.TotalSize)
	}
	if got.Ended {
		t.Error("progress=continue must not end the run")
	}

	p.Parse("progress=end")
	if !p.Progress().Ended {
		t.Error("progress=end not recognized")
	}
}

// out_time_ms carries microseconds despite its name
func TestParseOutTimeMsIsMicroseconds(t *testing.T) {
	p := New(Config{})
	p.Parse("out_time_ms=90000000")
	if got := p.Progress().OutTime; math.Abs(got-90.0) > 1e-9 {
		t.Errorf("OutTime = %g, want 90", got)
	}
}

func TestParseIgnoresGarbage(t *testing.T) {
	p := New(Config{LogLines: 10})

	if n := p.Parse("[libx264 @ 0x55] frame I:3"); n != 0 {
		t.Errorf("stderr line returned %d", n)
	}
	if n := p.Parse("speed=N/A"); n == 0 {
		t.Error("known key with unparseable value is still a progress line")
	}
	if p.Progress().Speed != 0 {
		t.Errorf("N/A speed must not set Speed: %g", p.Progress().Speed)
	}
	p.Parse("out_time=bogus")
	if p.Progress().OutTime != 0 {
		t.Error("bogus clock must not set OutTime")
	}

	log := p.Log()
	if len(log) != 1 || log[0].Data != "[libx264 @ 0x55] frame I:3" {
		t.Errorf("log = %v", log)
	}
}

func TestParseLogRolls(t *testing.T) {
	p := New(Config{LogLines: 3})
	for _, l := range []string{"a", "b", "c", "d"} {
		p.Parse(l)
	}
	log := p.Log()
	if len(log) != 3 {
		t.Fatalf("len = %d", len(log))
	}
	if log[0].Data != "b" || log[2].Data != "d" {
		t.Errorf("oldest line must roll off: %v", log)
	}
}

func TestResetStats(t *testing.T) {
	p := New(Config{})
	p.Parse("frame=10")
	p.Parse("speed=1.5x")
	p.ResetStats()
	if got := p.Progress(); got.Frame != 0 || got.Speed != 0 {
		t.Errorf("stats survived reset: %+v", got)
	}
}
