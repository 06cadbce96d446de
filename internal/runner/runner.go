// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package runner drives a conversion run: one background worker walks the
// queue sequentially, executing one FFmpeg process at a time and surfacing
// progress, warnings and per-file outcomes as events.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZSC714725/mediabatch/internal/ffmpeg"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/command"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/filtergraph"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg/probe"
	"github.com/ZSC714725/mediabatch/internal/logger"
	"github.com/ZSC714725/mediabatch/internal/media"
	"github.com/ZSC714725/mediabatch/internal/metrics"
	"github.com/ZSC714725/mediabatch/internal/process"
	"github.com/ZSC714725/mediabatch/internal/settings"
	"github.com/ZSC714725/mediabatch/internal/task"
)

var (
	ErrAlreadyRunning = errors.New("a run is already active")
	ErrEmptyQueue     = errors.New("queue is empty")
	ErrNoFFmpeg       = errors.New("ffmpeg binary not available")
)

// RunState is the externally visible run snapshot
type RunState struct {
	Running       bool    `json:"running"`
	CurrentFile   string  `json:"current_file,omitempty"`
	CPU           float64 `json:"cpu_percent"`
	Memory        uint64  `json:"memory_bytes"`
	DroppedEvents uint64  `json:"dropped_events"`
}

// Runner executes conversion runs against the queue
type Runner interface {
	Start(s settings.ConversionSettings, outDir string) error
	Stop()
	IsRunning() bool
	State() RunState
	Events(max int) []Event
}

type runner struct {
	ff     ffmpeg.FFmpeg
	store  task.Store
	log    logger.Logger
	events *eventBuffer

	mu          sync.Mutex
	running     bool
	currentFile string

	cancelled atomic.Bool

	procLock sync.Mutex
	proc     process.Process
}

// New creates a Runner
func New(ff ffmpeg.FFmpeg, store task.Store, log logger.Logger) Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &runner{
		ff:     ff,
		store:  store,
		log:    log,
		events: newEventBuffer(),
	}
}

func (r *runner) Start(s settings.ConversionSettings, outDir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}
	if r.ff == nil || r.ff.Binary() == "" {
		return ErrNoFFmpeg
	}
	items := r.store.List()
	if len(items) == 0 {
		return ErrEmptyQueue
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r.running = true
	r.cancelled.Store(false)
	go r.run(items, s, outDir)
	return nil
}

// Stop cancels the current run cooperatively: remaining files are skipped
// and the active FFmpeg process is asked to shut down.
func (r *runner) Stop() {
	r.cancelled.Store(true)

	r.procLock.Lock()
	proc := r.proc
	r.procLock.Unlock()
	if proc != nil {
		proc.Stop()
	}
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) State() RunState {
	r.mu.Lock()
	state := RunState{
		Running:     r.running,
		CurrentFile: r.currentFile,
	}
	r.mu.Unlock()

	state.DroppedEvents = r.events.droppedCount()

	r.procLock.Lock()
	proc := r.proc
	r.procLock.Unlock()
	if proc != nil {
		st := proc.Status()
		state.CPU = st.CPU
		state.Memory = st.Memory
	}
	return state
}

func (r *runner) Events(max int) []Event {
	return r.events.drain(max)
}

// tally tracks aggregate progress across the whole run
type tally struct {
	totalDuration float64 // sum of probed video durations
	doneDuration  float64
	totalFiles    int
	doneFiles     int
	runStart      time.Time
}

func (r *runner) run(items []media.TaskItem, s settings.ConversionSettings, outDir string) {
	runStart := time.Now()
	metrics.RunInProgress.Set(1)
	converted, failed := 0, 0
	runStatus := "completed"

	defer func() {
		if r.cancelled.Load() {
			runStatus = "cancelled"
		} else if failed > 0 && converted == 0 {
			runStatus = "failed"
		}
		metrics.RunInProgress.Set(0)
		metrics.RunsTotal.WithLabelValues(runStatus).Inc()
		metrics.RunLastDuration.Set(time.Since(runStart).Seconds())

		r.mu.Lock()
		r.running = false
		r.currentFile = ""
		r.mu.Unlock()
	}()

	warn := func(format string, args ...interface{}) {
		r.log.Warn(format, args...)
		r.emitLog("warn", fmt.Sprintf(format, args...))
	}

	prog := &tally{runStart: runStart}

	videos, images := splitByKind(items)
	prog.totalFiles = len(items)

	r.emitStatus("probing files")
	prog.totalDuration = r.probePass(videos, warn)

	outVideoExt := "." + strings.ToLower(strings.TrimPrefix(s.OutVideoFormat, "."))
	outImageExt := "." + strings.ToLower(strings.TrimPrefix(s.OutImageFormat, "."))

	merging := false
	if s.Merge {
		if len(videos) >= 2 {
			merging = true
		} else {
			warn("merge needs at least 2 videos in the queue, converting individually")
		}
	}

	if merging {
		r.emitStatus("merging videos")
		ok, fatal := r.runMerge(videos, s, outDir, outVideoExt, warn, prog)
		if fatal {
			r.finish(converted, failed)
			return
		}
		if ok {
			converted += len(videos)
		} else if !r.cancelled.Load() {
			failed += len(videos)
		}
		prog.doneFiles += len(videos)
		prog.doneDuration = prog.totalDuration
		videos = nil
	}

	for _, it := range append(videos, images...) {
		if r.cancelled.Load() {
			break
		}

		if !pathExists(it.Path) {
			r.emitLog("error", fmt.Sprintf("input missing: %s", it.Path))
			r.log.Error("input missing: %s", it.Path)
			failed++
			prog.doneFiles++
			continue
		}

		outExt := outImageExt
		if it.Kind == media.KindVideo {
			outExt = outVideoExt
		}
		output := r.outputPath(outDir, it.Path, outExt, s.Overwrite)

		cmd, duration := r.buildCommand(it, output, outExt, s, warn)

		ok, fatal := r.execute(cmd, it.Path, output, duration, prog)
		if fatal {
			failed++
			r.finish(converted, failed)
			return
		}
		if ok {
			converted++
			metrics.FilesConvertedTotal.WithLabelValues(string(it.Kind)).Inc()
			r.log.Info("OK %s -> %s", it.Path, output)
		} else if !r.cancelled.Load() {
			failed++
			metrics.FilesFailedTotal.Inc()
			r.log.Error("FAILED %s", it.Path)
		}
		r.events.send(Event{Type: EventFileDone, FileDone: &FileDoneEvent{Path: it.Path, Output: output, OK: ok}})

		prog.doneFiles++
		if it.Kind == media.KindVideo {
			if info, found := r.store.Info(it.Path); found {
				prog.doneDuration += info.Duration
			}
		}
	}

	r.finish(converted, failed)
}

func (r *runner) finish(converted, failed int) {
	cancelled := r.cancelled.Load()
	if cancelled {
		r.log.Info("run stopped by user (%d converted, %d failed)", converted, failed)
	} else {
		r.log.Info("run finished: %d converted, %d failed", converted, failed)
	}
	r.events.send(Event{Type: EventDone, Done: &DoneEvent{
		Cancelled: cancelled,
		Converted: converted,
		Failed:    failed,
	}})
}

func splitByKind(items []media.TaskItem) (videos, images []media.TaskItem) {
	for _, it := range items {
		if it.Kind == media.KindVideo {
			videos = append(videos, it)
		} else {
			images = append(images, it)
		}
	}
	return videos, images
}

// probePass refreshes the probe cache for all queued videos and returns the
// summed duration for aggregate ETA math.
func (r *runner) probePass(videos []media.TaskItem, warn filtergraph.WarnFunc) float64 {
	r.store.ResetInfos()

	probeBin := r.ff.ProbeBinary()
	if probeBin == "" {
		if len(videos) > 0 {
			warn("ffprobe not found, progress estimates degraded")
		}
		return 0
	}

	var total float64
	for _, it := range videos {
		if r.cancelled.Load() {
			break
		}
		info, err := probe.Probe(context.Background(), probeBin, it.Path)
		if err != nil {
			metrics.ProbesTotal.WithLabelValues("error").Inc()
			warn("probe %s: %v", filepath.Base(it.Path), err)
			continue
		}
		metrics.ProbesTotal.WithLabelValues("ok").Inc()
		r.store.SetInfo(it.Path, *info)
		r.events.send(Event{Type: EventProbe, Probe: &ProbeEvent{Path: it.Path, Info: *info}})
		r.log.Info("%s | %s | %s/%s | %dx%d | %s",
			filepath.Base(it.Path), media.FormatTime(info.Duration),
			info.VCodec, info.ACodec, info.Width, info.Height,
			media.FormatBytes(info.SizeBytes))
		total += info.Duration
	}
	return total
}

func (r *runner) outputPath(outDir, inputPath, outExt string, overwrite bool) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if overwrite {
		return filepath.Join(outDir, stem+outExt)
	}
	return safeOutputName(outDir, stem, outExt)
}

func (r *runner) buildCommand(it media.TaskItem, output, outExt string, s settings.ConversionSettings, warn filtergraph.WarnFunc) ([]string, float64) {
	var duration float64
	if info, found := r.store.Info(it.Path); found {
		duration = info.Duration
	}

	if it.Kind == media.KindImage {
		spec := filtergraph.BuildImage(s, warn)
		return command.BuildImage(it.Path, output, s, spec), 0
	}

	spec := filtergraph.Build(s, outExt, warn)
	audioFilter := filtergraph.AudioSpeedFilter(s)

	fastCopy := false
	if s.FastCopy {
		var info *media.Info
		if cached, found := r.store.Info(it.Path); found {
			info = &cached
		}
		allowed, reason := command.FastCopyAllowed(it.Path, outExt, info, spec.Used, audioFilter != "")
		if allowed {
			fastCopy = true
		} else {
			warn("stream copy not possible for %s: %s", filepath.Base(it.Path), reason)
		}
	}
	if fastCopy {
		metrics.FastCopiesTotal.Inc()
	}

	return command.BuildVideo(command.VideoInput{
		Input:       it.Path,
		Output:      output,
		Settings:    s,
		Filter:      spec,
		AudioFilter: audioFilter,
		Caps:        r.ff.Skills(),
		FastCopy:    fastCopy,
	}, command.WarnFunc(warn)), duration
}

// runMerge concatenates all queued videos into a single output. Returns
// (ok, fatal); fatal aborts the whole run.
func (r *runner) runMerge(videos []media.TaskItem, s settings.ConversionSettings, outDir, outVideoExt string, warn filtergraph.WarnFunc, prog *tally) (bool, bool) {
	name := strings.TrimSpace(s.MergeName)
	if name == "" {
		name = "merged"
	}
	ext := filepath.Ext(name)
	if ext == "" {
		ext = outVideoExt
	} else {
		name = strings.TrimSuffix(name, ext)
	}

	output := name + ext
	if s.Overwrite {
		output = filepath.Join(outDir, output)
	} else {
		output = safeOutputName(outDir, name, ext)
	}

	paths := make([]string, len(videos))
	for i, v := range videos {
		paths[i] = v.Path
	}

	spec := filtergraph.Build(s, ext, warn)
	audioFilter := filtergraph.AudioSpeedFilter(s)
	trimmed := s.TrimStart != nil || s.TrimEnd != nil

	fastCopy := false
	if s.FastCopy {
		allowed, reason := command.MergeCopyAllowed(paths, ext, r.store.Infos(), spec.Used, audioFilter != "", trimmed)
		if allowed {
			fastCopy = true
			metrics.FastCopiesTotal.Inc()
		} else {
			warn("stream copy not possible for merge: %s", reason)
		}
	}

	list, err := command.WriteConcatList(paths)
	if err != nil {
		r.emitLog("error", fmt.Sprintf("merge: %v", err))
		r.log.Error("merge: %v", err)
		return false, false
	}
	defer os.Remove(list)

	cmd := command.BuildMerge(command.MergeInput{
		ListPath:    list,
		Output:      output,
		Settings:    s,
		Filter:      spec,
		AudioFilter: audioFilter,
		Caps:        r.ff.Skills(),
		FastCopy:    fastCopy,
	}, command.WarnFunc(warn))

	label := fmt.Sprintf("merge of %d videos", len(videos))
	ok, fatal := r.execute(cmd, label, output, prog.totalDuration, prog)
	if ok {
		r.log.Info("OK %s -> %s", label, output)
		metrics.FilesConvertedTotal.WithLabelValues(string(media.KindVideo)).Add(float64(len(videos)))
	} else if !r.cancelled.Load() {
		r.log.Error("FAILED %s", label)
		metrics.FilesFailedTotal.Add(float64(len(videos)))
	}
	r.events.send(Event{Type: EventFileDone, FileDone: &FileDoneEvent{Path: label, Output: output, OK: ok}})
	return ok, fatal
}

// execute runs one FFmpeg invocation to completion. Returns (ok, fatal);
// fatal means the binary could not be launched and the run must abort.
func (r *runner) execute(cmd []string, displayPath, output string, duration float64, prog *tally) (bool, bool) {
	r.mu.Lock()
	r.currentFile = displayPath
	r.mu.Unlock()

	parser := r.ff.NewParser()
	fileStart := time.Now()

	proc, err := r.ff.NewProcess(ffmpeg.ProcessConfig{
		Command: command.WithProgress(cmd),
		Parser:  parser,
		Logger:  r.log,
		OnProgress: func() {
			r.emitProgress(displayPath, duration, parser.Progress(), fileStart, prog)
		},
		OnWarning: func(line string) {
			r.emitLog("warn", line)
		},
	})
	if err != nil {
		r.emitLog("error", fmt.Sprintf("launch ffmpeg: %v", err))
		r.log.Error("launch ffmpeg: %v", err)
		return false, true
	}

	if err := proc.Start(); err != nil {
		// binary vanished mid-run, nothing further can succeed
		r.emitLog("error", fmt.Sprintf("launch ffmpeg: %v", err))
		r.log.Error("launch ffmpeg: %v", err)
		return false, true
	}

	r.procLock.Lock()
	r.proc = proc
	r.procLock.Unlock()

	proc.Wait()

	r.procLock.Lock()
	r.proc = nil
	r.procLock.Unlock()

	metrics.FileConversionDuration.Observe(time.Since(fileStart).Seconds())

	ok := proc.State() == process.StateCompleted && pathExists(output)
	return ok, false
}

func (r *runner) emitProgress(file string, duration float64, p parse.Progress, fileStart time.Time, prog *tally) {
	pct := filePct(p.OutTime, duration)
	elapsed := time.Since(fileStart).Seconds()
	fileETA := etaSeconds(duration, p.OutTime, p.Speed, elapsed, pct)

	var totalPct float64
	if prog.totalDuration > 0 {
		totalPct = clamp01((prog.doneDuration + p.OutTime) / prog.totalDuration)
	} else if prog.totalFiles > 0 {
		totalPct = clamp01((float64(prog.doneFiles) + pct) / float64(prog.totalFiles))
	}
	runElapsed := time.Since(prog.runStart).Seconds()
	totalETA := etaSeconds(0, 0, 0, runElapsed, totalPct)

	r.events.send(Event{Type: EventProgress, Progress: &ProgressEvent{
		File:     file,
		FilePct:  pct,
		OutTime:  p.OutTime,
		Duration: duration,
		FileETA:  fileETA,
		TotalPct: totalPct,
		TotalETA: totalETA,
		Speed:    p.Speed,
	}})
}

func (r *runner) emitLog(level, message string) {
	r.events.send(Event{Type: EventLog, Log: &LogEvent{Level: level, Message: message}})
}

func (r *runner) emitStatus(text string) {
	r.events.send(Event{Type: EventStatus, Status: &StatusEvent{Text: text}})
}
