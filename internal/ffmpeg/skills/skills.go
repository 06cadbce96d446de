// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package skills detects the capabilities of the local FFmpeg binary: the
// build info and the set of available encoders. Detection failures yield an
// empty encoder set, never an error, so a broken probe degrades to software
// fallbacks instead of blocking a run.
package skills

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
)

// Library represents a linked av library
type Library struct {
	Name     string
	Compiled string
	Linked   string
}

// Info describes the FFmpeg build
type Info struct {
	Version       string
	Compiler      string
	Configuration string
	Libraries     []Library
}

// Skills are the detected capabilities of FFmpeg
type Skills struct {
	FFmpeg   Info
	Encoders map[string]struct{}
}

// HasEncoder reports whether id is in the detected encoder set
func (s Skills) HasEncoder(id string) bool {
	_, ok := s.Encoders[id]
	return ok
}

// New returns the detected skills of the FFmpeg at binary
func New(binary string) (Skills, error) {
	c := Skills{}

	ff, err := getVersion(binary)
	if err != nil {
		return Skills{}, fmt.Errorf("can't parse ffmpeg version: %w", err)
	}
	if ff.Version == "" {
		return Skills{}, fmt.Errorf("can't parse ffmpeg version")
	}
	c.FFmpeg = ff
	c.Encoders = getEncoders(binary)

	return c, nil
}

func getVersion(binary string) (Info, error) {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return Info{}, err
	}
	return parseVersion(out), nil
}

func parseVersion(data []byte) Info {
	f := Info{}
	reVersion := regexp.MustCompile(`^ffmpeg version ([0-9]+\.[0-9]+(\.[0-9]+)?)`)
	reCompiler := regexp.MustCompile(`(?m)^\s*built with (.*)$`)
	reConfiguration := regexp.MustCompile(`(?m)^\s*configuration: (.*)$`)
	reLibrary := regexp.MustCompile(`(?m)^\s*(lib(?:[a-z]+))\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+) /\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+)`)

	if m := reVersion.FindSubmatch(data); m != nil {
		f.Version = string(m[1])
		if len(m[2]) == 0 {
			f.Version += ".0"
		}
	}
	if m := reCompiler.FindSubmatch(data); m != nil {
		f.Compiler = string(m[1])
	}
	if m := reConfiguration.FindSubmatch(data); m != nil {
		f.Configuration = string(m[1])
	}
	for _, m := range reLibrary.FindAllSubmatch(data, -1) {
		f.Libraries = append(f.Libraries, Library{
			Name:     string(m[1]),
			Compiled: string(m[2]),
			Linked:   string(m[3]),
		})
	}
	return f
}

// getEncoders runs `ffmpeg -encoders`. Any failure returns an empty set.
func getEncoders(binary string) map[string]struct{} {
	cmd := exec.Command(binary, "-hide_banner", "-encoders")
	cmd.Env = []string{}
	stdout, err := cmd.Output()
	if err != nil {
		return map[string]struct{}{}
	}
	return parseEncoders(stdout)
}

func parseEncoders(data []byte) map[string]struct{} {
	encoders := map[string]struct{}{}
	// 每行形如 " V....D libx264    libx264 H.264 / AVC ..."
	re := regexp.MustCompile(`^\s*[VAS][F.][S.][X.][B.][D.] ([0-9A-Za-z_-]+)\s`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if m := re.FindStringSubmatch(scanner.Text()); m != nil {
			encoders[m[1]] = struct{}{}
		}
	}
	return encoders
}
