// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package parse interprets the machine-readable key=value stream FFmpeg
// emits on stdout when started with "-progress pipe:1". Lines that are not
// key=value pairs (stderr chatter forwarded by the supervisor) go into the
// rolling log only.
package parse

import (
	"container/ring"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZSC714725/mediabatch/internal/media"
	"github.com/ZSC714725/mediabatch/internal/process"
)

// Progress holds the latest FFmpeg progress snapshot
type Progress struct {
	Frame     uint64  `json:"frame"`
	OutTime   float64 `json:"out_time_seconds"`
	Speed     float64 `json:"speed"`
	TotalSize uint64  `json:"total_size_bytes"`
	Ended     bool    `json:"ended"`
}

// Parser implements process.Parser for the -progress stream
type Parser interface {
	process.Parser
	Progress() Progress
}

type parser struct {
	log      *ring.Ring
	logLines int

	progress Progress
	lock     sync.RWMutex
}

// Config for the parser
type Config struct {
	LogLines int
}

// New creates a Parser
func New(config Config) Parser {
	p := &parser{
		logLines: config.LogLines,
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.log = ring.New(p.logLines)
	return p
}

func (p *parser) Parse(line string) uint64 {
	now := time.Now()

	key, value, isKV := strings.Cut(line, "=")
	if isKV {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if !isKV || !p.apply(key, value) {
		p.log.Value = process.Line{Timestamp: now, Data: line}
		p.log = p.log.Next()
		return 0
	}
	return p.progress.Frame + 1
}

// apply updates the snapshot for a known progress key and reports whether
// the key was recognized.
func (p *parser) apply(key, value string) bool {
	switch key {
	case "frame":
		if x, err := strconv.ParseUint(value, 10, 64); err == nil {
			p.progress.Frame = x
		}
	case "out_time_us", "out_time_ms":
		// both keys carry microseconds
		if x, err := strconv.ParseInt(value, 10, 64); err == nil && x >= 0 {
			p.progress.OutTime = float64(x) / 1e6
		}
	case "out_time":
		if secs, ok := media.ParseClock(value); ok {
			p.progress.OutTime = secs
		}
	case "total_size":
		if x, err := strconv.ParseUint(value, 10, 64); err == nil {
			p.progress.TotalSize = x
		}
	case "speed":
		v := strings.TrimSuffix(value, "x")
		if x, err := strconv.ParseFloat(v, 64); err == nil && x > 0 {
			p.progress.Speed = x
		}
	case "progress":
		if value == "end" {
			p.progress.Ended = true
		}
	default:
		return false
	}
	return true
}

func (p *parser) ResetStats() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.progress = Progress{}
}

func (p *parser) ResetLog() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.log = ring.New(p.logLines)
}

func (p *parser) Log() []process.Line {
	var out []process.Line
	p.lock.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	p.lock.RUnlock()
	return out
}

func (p *parser) Progress() Progress {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.progress
}
