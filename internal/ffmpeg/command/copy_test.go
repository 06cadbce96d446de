// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package command

import (
	"testing"

	"github.com/ZSC714725/mediabatch/internal/media"
)

func TestFastCopyAllowed(t *testing.T) {
	h264 := &media.Info{VCodec: "h264", ACodec: "aac"}
	vp9 := &media.Info{VCodec: "vp9"}

	cases := []struct {
		name        string
		input       string
		outExt      string
		info        *media.Info
		filters     bool
		audioFilter bool
		allowed     bool
		reason      string
	}{
		{"same container same codec", "/v/a.mp4", ".mp4", h264, false, false, true, ""},
		{"gif output", "/v/a.gif", ".gif", nil, false, false, false, "GIF requires re-encoding"},
		{"filters active", "/v/a.mp4", ".mp4", h264, true, false, false, "filters or speed change active"},
		{"speed change active", "/v/a.mp4", ".mp4", h264, false, true, false, "filters or speed change active"},
		{"container differs", "/v/a.mkv", ".mp4", h264, false, false, false, "container differs"},
		{"vp9 in mp4", "/v/a.mp4", ".mp4", vp9, false, false, false, "codec incompatible with container"},
		{"vp9 in mkv", "/v/a.mkv", ".mkv", vp9, false, false, true, ""},
		{"no probe data", "/v/a.mp4", ".mp4", nil, false, false, true, ""},
		{"case insensitive ext", "/v/a.MP4", ".mp4", h264, false, false, true, ""},
	}
	for _, c := range cases {
		allowed, reason := FastCopyAllowed(c.input, c.outExt, c.info, c.filters, c.audioFilter)
		if allowed != c.allowed || reason != c.reason {
			t.Errorf("%s: got (%v, %q), want (%v, %q)", c.name, allowed, reason, c.allowed, c.reason)
		}
	}
}

func TestMergeCopyAllowed(t *testing.T) {
	infos := map[string]media.Info{
		"/v/a.mp4": {VCodec: "h264", ACodec: "aac"},
		"/v/b.mp4": {VCodec: "h264", ACodec: "aac"},
		"/v/c.mp4": {VCodec: "hevc", ACodec: "aac"},
	}

	if ok, reason := MergeCopyAllowed([]string{"/v/a.mp4", "/v/b.mp4"}, ".mp4", infos, false, false, false); !ok {
		t.Errorf("homogeneous inputs refused: %q", reason)
	}

	cases := []struct {
		name    string
		inputs  []string
		outExt  string
		filters bool
		trimmed bool
		reason  string
	}{
		{"filters", []string{"/v/a.mp4", "/v/b.mp4"}, ".mp4", true, false, "filters or trim active"},
		{"trim", []string{"/v/a.mp4", "/v/b.mp4"}, ".mp4", false, true, "filters or trim active"},
		{"empty", nil, ".mp4", false, false, "no inputs"},
		{"container", []string{"/v/a.mp4", "/v/b.mp4"}, ".mkv", false, false, "container differs"},
		{"unprobed", []string{"/v/a.mp4", "/v/missing.mp4"}, ".mp4", false, false, "no probe data"},
		{"mixed codecs", []string{"/v/a.mp4", "/v/c.mp4"}, ".mp4", false, false, "different codecs"},
	}
	for _, c := range cases {
		ok, reason := MergeCopyAllowed(c.inputs, c.outExt, infos, c.filters, false, c.trimmed)
		if ok || reason != c.reason {
			t.Errorf("%s: got (%v, %q), want (false, %q)", c.name, ok, reason, c.reason)
		}
	}
}
