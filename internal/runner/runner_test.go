// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package runner

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZSC714725/mediabatch/internal/media"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSafeOutputName(t *testing.T) {
	dir := t.TempDir()

	got := safeOutputName(dir, "clip", ".mp4")
	if got != filepath.Join(dir, "clip.mp4") {
		t.Errorf("free name: %s", got)
	}

	touch(t, filepath.Join(dir, "clip.mp4"))
	got = safeOutputName(dir, "clip", ".mp4")
	if got != filepath.Join(dir, "clip (1).mp4") {
		t.Errorf("first collision: %s", got)
	}

	// N-th collision takes the first free N
	for n := 1; n <= 3; n++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("clip (%d).mp4", n)))
	}
	got = safeOutputName(dir, "clip", ".mp4")
	if got != filepath.Join(dir, "clip (4).mp4") {
		t.Errorf("n-th collision: %s", got)
	}
}

func TestFilePct(t *testing.T) {
	cases := []struct {
		outTime, duration, want float64
	}{
		{5, 10, 0.5},
		{0, 10, 0},
		{12, 10, 1},  // clamped
		{-1, 10, 0},  // clamped
		{5, 0, 0},    // unknown duration
	}
	for _, c := range cases {
		if got := filePct(c.outTime, c.duration); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("filePct(%g, %g) = %g, want %g", c.outTime, c.duration, got, c.want)
		}
	}
}

func TestEtaSeconds(t *testing.T) {
	// speed-based: (duration - outTime) / speed
	if got := etaSeconds(100, 40, 2, 0, 0); math.Abs(got-30) > 1e-9 {
		t.Errorf("speed eta = %g", got)
	}
	// overshoot floors at zero
	if got := etaSeconds(100, 120, 2, 0, 0); got != 0 {
		t.Errorf("overshoot eta = %g", got)
	}
	// extrapolation: elapsed/pct - elapsed
	if got := etaSeconds(0, 0, 0, 30, 0.25); math.Abs(got-90) > 1e-9 {
		t.Errorf("extrapolated eta = %g", got)
	}
	// no data at all
	if got := etaSeconds(0, 0, 0, 0, 0); got != -1 {
		t.Errorf("unknown eta = %g", got)
	}
}

func TestEventBufferDropsWhenFull(t *testing.T) {
	b := newEventBuffer()
	for i := 0; i < eventBufferSize+7; i++ {
		b.send(Event{Type: EventLog, Log: &LogEvent{Level: "info", Message: "x"}})
	}
	if got := b.droppedCount(); got != 7 {
		t.Errorf("dropped = %d", got)
	}
	if got := len(b.drain(0)); got != eventBufferSize {
		t.Errorf("drained = %d", got)
	}
	// buffer is empty again
	if got := len(b.drain(10)); got != 0 {
		t.Errorf("second drain = %d", got)
	}
}

func TestEventBufferDrainLimit(t *testing.T) {
	b := newEventBuffer()
	for i := 0; i < 10; i++ {
		b.send(Event{Type: EventStatus, Status: &StatusEvent{Text: "t"}})
	}
	if got := len(b.drain(3)); got != 3 {
		t.Errorf("limited drain = %d", got)
	}
	if got := len(b.drain(0)); got != 7 {
		t.Errorf("rest = %d", got)
	}
}

func TestSplitByKind(t *testing.T) {
	items := []media.TaskItem{
		{ID: "1", Path: "/v/a.mp4", Kind: media.KindVideo},
		{ID: "2", Path: "/p/b.jpg", Kind: media.KindImage},
		{ID: "3", Path: "/v/c.mkv", Kind: media.KindVideo},
	}
	videos, images := splitByKind(items)
	if len(videos) != 2 || len(images) != 1 {
		t.Fatalf("videos=%d images=%d", len(videos), len(images))
	}
	if videos[0].ID != "1" || videos[1].ID != "3" {
		t.Error("video order must be queue order")
	}
}
