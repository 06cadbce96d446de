// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package runner

import (
	"sync/atomic"

	"github.com/ZSC714725/mediabatch/internal/media"
)

// EventType discriminates the event envelope
type EventType string

const (
	EventLog      EventType = "log"
	EventStatus   EventType = "status"
	EventProbe    EventType = "probe"
	EventProgress EventType = "progress"
	EventFileDone EventType = "file_done"
	EventDone     EventType = "done"
)

// LogEvent mirrors a log line into the event stream
type LogEvent struct {
	Level   string `json:"level"` // "info", "warn", "error"
	Message string `json:"message"`
}

// StatusEvent is a coarse phase announcement
type StatusEvent struct {
	Text string `json:"text"`
}

// ProbeEvent carries the probed facts of one queued file
type ProbeEvent struct {
	Path string     `json:"path"`
	Info media.Info `json:"info"`
}

// ProgressEvent is a live progress/ETA snapshot for the current file
type ProgressEvent struct {
	File     string  `json:"file"`
	FilePct  float64 `json:"file_pct"` // 0..1
	OutTime  float64 `json:"out_time_seconds"`
	Duration float64 `json:"duration_seconds"` // 0 = unknown
	FileETA  float64 `json:"file_eta_seconds"` // -1 = unknown
	TotalPct float64 `json:"total_pct"`
	TotalETA float64 `json:"total_eta_seconds"`
	Speed    float64 `json:"speed"`
}

// FileDoneEvent reports the outcome of one file
type FileDoneEvent struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	OK     bool   `json:"ok"`
}

// DoneEvent ends a run
type DoneEvent struct {
	Cancelled bool `json:"cancelled"`
	Converted int  `json:"converted"`
	Failed    int  `json:"failed"`
}

// Event is the envelope delivered over the bounded channel. Exactly one
// payload field is set, matching Type.
type Event struct {
	Type     EventType      `json:"type"`
	Log      *LogEvent      `json:"log,omitempty"`
	Status   *StatusEvent   `json:"status,omitempty"`
	Probe    *ProbeEvent    `json:"probe,omitempty"`
	Progress *ProgressEvent `json:"progress,omitempty"`
	FileDone *FileDoneEvent `json:"file_done,omitempty"`
	Done     *DoneEvent     `json:"done,omitempty"`
}

const eventBufferSize = 512

// eventBuffer is a bounded, non-blocking event queue. When the consumer
// falls behind, new events are dropped and counted instead of stalling the
// conversion.
type eventBuffer struct {
	ch      chan Event
	dropped atomic.Uint64
}

func newEventBuffer() *eventBuffer {
	return &eventBuffer{ch: make(chan Event, eventBufferSize)}
}

func (b *eventBuffer) send(e Event) {
	select {
	case b.ch <- e:
	default:
		b.dropped.Add(1)
	}
}

// drain returns up to max buffered events without blocking
func (b *eventBuffer) drain(max int) []Event {
	if max <= 0 {
		max = eventBufferSize
	}
	var out []Event
	for len(out) < max {
		select {
		case e := <-b.ch:
			out = append(out, e)
		default:
			return out
		}
	}
	return out
}

func (b *eventBuffer) droppedCount() uint64 {
	return b.dropped.Load()
}
