// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Bind != ":8080" || cfg.Output.Dir != "output" || cfg.FFmpeg.MaxLogLines != 100 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFillsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  bind: \"127.0.0.1:9000\"\nffmpeg:\n  path: /opt/ffmpeg/ffmpeg\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Bind != "127.0.0.1:9000" {
		t.Errorf("bind = %s", cfg.Server.Bind)
	}
	if cfg.FFmpeg.Path != "/opt/ffmpeg/ffmpeg" {
		t.Errorf("path = %s", cfg.FFmpeg.Path)
	}
	// unset fields fall back
	if cfg.Output.Dir != "output" || cfg.FFmpeg.MaxLogLines != 100 {
		t.Errorf("fill-empty failed: %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("invalid YAML must fail")
	}
}
