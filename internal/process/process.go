// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具
//
// Package process wraps exec.Cmd for supervising one FFmpeg invocation.
// A Process runs exactly once: idle -> running -> completed/failed/cancelled.

package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Process supervises one FFmpeg invocation
type Process interface {
	Start() error
	Stop() error
	Wait() error
	State() State
	Status() Status
}

// Config for a process
type Config struct {
	Binary     string
	Args       []string
	Parser     Parser
	Logger     Logger
	OnProgress func()             // called after each parsed progress line
	OnWarning  func(line string)  // called for suspicious stderr lines
}

// State of a process
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

func (s State) IsRunning() bool { return s == StateRunning }

// Status is a snapshot of the running process
type Status struct {
	State    State
	Duration time.Duration
	CPU      float64
	Memory   uint64
}

// Logger interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type process struct {
	binary string
	args   []string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	state struct {
		state State
		start time.Time
		lock  sync.Mutex
	}
	cancelled bool // set under state.lock by Stop

	killTimer     *time.Timer
	killTimerLock sync.Mutex

	done    chan struct{}
	exitErr error

	parser    Parser
	logger    Logger
	limits    Limiter
	callbacks struct {
		onProgress func()
		onWarning  func(line string)
	}
}

// New creates a new process
func New(config Config) (Process, error) {
	p := &process{
		binary: config.Binary,
		args:   config.Args,
		parser: config.Parser,
		logger: config.Logger,
		limits: NewSysLimiter(),
		done:   make(chan struct{}),
	}

	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	if p.parser == nil {
		p.parser = &nullParser{}
	}

	if p.logger == nil {
		p.logger = &nopLogger{}
	}

	p.state.state = StateIdle
	p.callbacks.onProgress = config.OnProgress
	p.callbacks.onWarning = config.OnWarning

	return p, nil
}

func (p *process) State() State {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	return p.state.state
}

func (p *process) setState(state State) {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	p.state.state = state
}

func (p *process) Status() Status {
	cpu, memory := p.limits.Current()

	p.state.lock.Lock()
	state := p.state.state
	start := p.state.start
	p.state.lock.Unlock()

	s := Status{
		State:  state,
		CPU:    cpu,
		Memory: memory,
	}
	if !start.IsZero() {
		s.Duration = time.Since(start)
	}
	return s
}

func (p *process) Start() error {
	p.state.lock.Lock()
	if p.state.state != StateIdle {
		p.state.lock.Unlock()
		return fmt.Errorf("process already started")
	}
	p.state.state = StateRunning
	p.state.start = time.Now()
	p.state.lock.Unlock()

	var err error
	p.cmd = exec.Command(p.binary, p.args...)

	p.stdout, err = p.cmd.StdoutPipe()
	if err != nil {
		p.setState(StateFailed)
		return err
	}
	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		p.setState(StateFailed)
		return err
	}

	p.parser.ResetStats()
	p.parser.ResetLog()

	if err := p.cmd.Start(); err != nil {
		p.setState(StateFailed)
		p.parser.Parse(err.Error())
		return err
	}

	p.limits.Start(p.cmd.Process.Pid)

	var readers sync.WaitGroup
	readers.Add(2)
	go p.progressReader(&readers)
	go p.stderrReader(&readers)
	go p.waiter(&readers)

	return nil
}

// Stop requests a graceful shutdown: SIGINT first so FFmpeg can finalize
// the output, hard kill after 5 seconds. Windows has no SIGINT delivery
// for child processes, so it kills outright.
func (p *process) Stop() error {
	p.state.lock.Lock()
	if !p.state.state.IsRunning() {
		p.state.lock.Unlock()
		return nil
	}
	p.cancelled = true
	p.state.lock.Unlock()

	var err error
	if runtime.GOOS == "windows" {
		err = p.cmd.Process.Kill()
	} else {
		err = p.cmd.Process.Signal(os.Interrupt)
		if err != nil {
			err = p.cmd.Process.Kill()
		} else {
			p.killTimerLock.Lock()
			p.killTimer = time.AfterFunc(5*time.Second, func() {
				p.cmd.Process.Kill()
			})
			p.killTimerLock.Unlock()
		}
	}
	return err
}

// Wait blocks until the process exits. It returns nil only for a clean
// exit; cancellation surfaces as an error the caller can inspect via State.
func (p *process) Wait() error {
	<-p.done
	return p.exitErr
}

// progressReader feeds stdout (the -progress stream) into the parser
func (p *process) progressReader(wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(p.stdout)
	scanner.Split(scanLine)

	for scanner.Scan() {
		if p.parser.Parse(scanner.Text()) != 0 && p.callbacks.onProgress != nil {
			p.callbacks.onProgress()
		}
	}
}

// stderrReader drains FFmpeg chatter into the rolling log and forwards
// lines that look like problems.
func (p *process) stderrReader(wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(p.stderr)
	scanner.Split(scanLine)

	for scanner.Scan() {
		line := scanner.Text()
		p.parser.Parse(line)
		if p.callbacks.onWarning != nil && looksLikeError(line) {
			p.callbacks.onWarning(line)
		}
	}
}

func looksLikeError(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "error") || strings.Contains(l, "invalid") || strings.Contains(l, "failed")
}

func (p *process) waiter(readers *sync.WaitGroup) {
	readers.Wait()
	err := p.cmd.Wait()

	p.killTimerLock.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.killTimerLock.Unlock()

	p.limits.Stop()

	p.state.lock.Lock()
	cancelled := p.cancelled
	p.state.lock.Unlock()

	switch {
	case cancelled:
		p.setState(StateCancelled)
		if err == nil {
			err = fmt.Errorf("cancelled")
		}
	case err != nil:
		p.setState(StateFailed)
	default:
		p.setState(StateCompleted)
	}

	p.exitErr = err
	close(p.done)
}

// scanLine splits on \n and \r so FFmpeg's carriage-return status updates
// arrive as separate lines.
func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

type nullParser struct{}

func (p *nullParser) Parse(line string) uint64 { return 1 }
func (p *nullParser) ResetStats()              {}
func (p *nullParser) ResetLog()                {}
func (p *nullParser) Log() []Line              { return nil }

type nopLogger struct{}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
