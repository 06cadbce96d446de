// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package media

import "testing"

func TestKindOf(t *testing.T) {
	cases := []struct {
		path string
		want Kind
	}{
		{"/videos/clip.MOV", KindVideo},
		{"/videos/clip.mp4", KindVideo},
		{"/videos/show.m2ts", KindVideo},
		{"/pics/photo.JPEG", KindImage},
		{"/pics/photo.heic", KindImage},
		{"/docs/readme.txt", ""},
		{"/videos/noext", ""},
	}
	for _, c := range cases {
		if got := KindOf(c.path); got != c.want {
			t.Errorf("KindOf(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{-1, "--:--"},
		{0, "00:00"},
		{65, "01:05"},
		{59.6, "01:00"},
		{3725, "01:02:05"},
	}
	for _, c := range cases {
		if got := FormatTime(c.seconds); got != c.want {
			t.Errorf("FormatTime(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{-1, "--"},
		{512, "512.0 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.size); got != c.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"10", 10, true},
		{"10.5", 10.5, true},
		{"00:00:10", 10, true},
		{"01:30", 90, true},
		{"1:02:03.5", 3723.5, true},
		{"abc", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseClock(c.text)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseClock(%q) = (%v, %v), want (%v, %v)", c.text, got, ok, c.want, c.ok)
		}
	}
}
