// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package ffmpeg discovers the ffmpeg/ffprobe binaries and holds the probed
// encoder capabilities for the rest of the engine.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ZSC714725/mediabatch/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/skills"
	"github.com/ZSC714725/mediabatch/internal/logger"
	"github.com/ZSC714725/mediabatch/internal/process"
)

// FFmpeg manages the FFmpeg binaries and skills
type FFmpeg interface {
	Binary() string
	ProbeBinary() string
	NewProcess(config ProcessConfig) (process.Process, error)
	NewParser() parse.Parser
	Skills() skills.Skills
	ReloadSkills() error
}

// ProcessConfig for creating a supervised process
type ProcessConfig struct {
	Command    []string
	Parser     process.Parser
	Logger     logger.Logger
	OnProgress func()
	OnWarning  func(line string)
}

// Config for FFmpeg
type Config struct {
	Binary      string // empty = discover
	ProbeBinary string // empty = discover next to ffmpeg
	MaxLogLines int
}

type ffmpeg struct {
	binary      string
	probeBinary string
	logLines    int

	skills     skills.Skills
	skillsLock sync.RWMutex
}

// New creates FFmpeg, resolving binaries and probing capabilities once
func New(config Config) (FFmpeg, error) {
	binary := config.Binary
	if binary == "" {
		binary = FindFFmpeg()
	}
	if binary == "" {
		return nil, fmt.Errorf("ffmpeg binary not found")
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}

	f := &ffmpeg{
		binary:      resolved,
		probeBinary: config.ProbeBinary,
		logLines:    config.MaxLogLines,
	}
	if f.logLines <= 0 {
		f.logLines = 100
	}
	if f.probeBinary == "" {
		f.probeBinary = FindFFprobe(resolved)
	}

	s, err := skills.New(f.binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg: %w", err)
	}
	f.skills = s

	return f, nil
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// FindFFmpeg looks for a bundled binary next to the working directory
// before falling back to PATH. Empty result means not found.
func FindFFmpeg() string {
	for _, candidate := range []string{
		filepath.Join(".", exeName("ffmpeg")),
		filepath.Join(".", "bin", exeName("ffmpeg")),
	} {
		if isFile(candidate) {
			return candidate
		}
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path
	}
	return ""
}

// FindFFprobe prefers the sibling of the resolved ffmpeg binary, then the
// local candidates, then PATH. Empty result degrades probing, it is not
// fatal.
func FindFFprobe(ffmpegPath string) string {
	if ffmpegPath != "" {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), exeName("ffprobe"))
		if isFile(sibling) {
			return sibling
		}
	}
	for _, candidate := range []string{
		filepath.Join(".", exeName("ffprobe")),
		filepath.Join(".", "bin", exeName("ffprobe")),
	} {
		if isFile(candidate) {
			return candidate
		}
	}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		return path
	}
	return ""
}

func (f *ffmpeg) Binary() string { return f.binary }

func (f *ffmpeg) ProbeBinary() string { return f.probeBinary }

func (f *ffmpeg) NewProcess(config ProcessConfig) (process.Process, error) {
	return process.New(process.Config{
		Binary:     f.binary,
		Args:       config.Command,
		Parser:     config.Parser,
		Logger:     wrapLogger(config.Logger),
		OnProgress: config.OnProgress,
		OnWarning:  config.OnWarning,
	})
}

func (f *ffmpeg) NewParser() parse.Parser {
	return parse.New(parse.Config{LogLines: f.logLines})
}

func (f *ffmpeg) Skills() skills.Skills {
	f.skillsLock.RLock()
	defer f.skillsLock.RUnlock()
	return f.skills
}

func (f *ffmpeg) ReloadSkills() error {
	s, err := skills.New(f.binary)
	if err != nil {
		return fmt.Errorf("reload skills: %w", err)
	}
	f.skillsLock.Lock()
	f.skills = s
	f.skillsLock.Unlock()
	return nil
}

func wrapLogger(l logger.Logger) *loggerWrapper {
	return &loggerWrapper{logger: l}
}

type loggerWrapper struct {
	logger logger.Logger
}

func (w *loggerWrapper) Info(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Info(format, args...)
	}
}

func (w *loggerWrapper) Error(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Error(format, args...)
	}
}

func (w *loggerWrapper) Debug(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(format, args...)
	}
}
