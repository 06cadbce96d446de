// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package probe

import "testing"

const sampleJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 180},
    {"codec_type": "audio", "codec_name": "ac3"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "10.500000", "size": "1048576"}
}`

func TestParseJSON(t *testing.T) {
	info, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if info.Duration != 10.5 {
		t.Errorf("duration = %v, want 10.5", info.Duration)
	}
	if info.VCodec != "h264" || info.Width != 1920 || info.Height != 1080 {
		t.Errorf("first video stream must win, got %s %dx%d", info.VCodec, info.Width, info.Height)
	}
	if info.ACodec != "aac" {
		t.Errorf("first audio stream must win, got %s", info.ACodec)
	}
	if info.SizeBytes != 1048576 {
		t.Errorf("size = %d", info.SizeBytes)
	}
	if info.FormatName != "mov,mp4,m4a,3gp,3g2,mj2" {
		t.Errorf("format = %q", info.FormatName)
	}
}

func TestParseJSONMissingFields(t *testing.T) {
	info, err := ParseJSON([]byte(`{"format": {}}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if info.Duration != 0 || info.VCodec != "" || info.ACodec != "" {
		t.Errorf("empty probe should yield zero Info, got %+v", info)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
