// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/mediabatch/internal/ffmpeg"
	"github.com/ZSC714725/mediabatch/internal/preset"
	"github.com/ZSC714725/mediabatch/internal/runner"
	"github.com/ZSC714725/mediabatch/internal/task"
)

// Handler holds dependencies
type Handler struct {
	store      task.Store
	ffmpeg     ffmpeg.FFmpeg
	runner     runner.Runner
	presetPath string
	outDir     string // default output dir when the request has none
}

// NewHandler creates API handler
func NewHandler(store task.Store, ff ffmpeg.FFmpeg, run runner.Runner, presetPath, outDir string) *Handler {
	if presetPath == "" {
		presetPath = preset.DefaultPath()
	}
	return &Handler{store: store, ffmpeg: ff, runner: run, presetPath: presetPath, outDir: outDir}
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

// Skills GET /api/v1/skills
func (h *Handler) Skills(c *gin.Context) {
	c.JSON(http.StatusOK, skillsToAPI(h.ffmpeg.Skills()))
}

// ReloadSkills POST /api/v1/skills/reload
func (h *Handler) ReloadSkills(c *gin.Context) {
	if err := h.ffmpeg.ReloadSkills(); err != nil {
		errResp(c, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, skillsToAPI(h.ffmpeg.Skills()))
}

// AddToQueue POST /api/v1/queue
func (h *Handler) AddToQueue(c *gin.Context) {
	if h.runner.IsRunning() {
		errResp(c, http.StatusConflict, "Run in progress", "queue is locked while converting")
		return
	}

	var req QueueAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if len(req.Paths) == 0 {
		errResp(c, http.StatusBadRequest, "At least one path required", "")
		return
	}

	resp := QueueAddResponse{Added: nil, Skipped: nil}
	for _, path := range req.Paths {
		item, err := h.store.Add(path)
		if err != nil {
			resp.Skipped = append(resp.Skipped, QueueSkipped{Path: path, Reason: err.Error()})
			continue
		}
		resp.Added = append(resp.Added, item)
	}
	c.JSON(http.StatusOK, resp)
}

// ListQueue GET /api/v1/queue
func (h *Handler) ListQueue(c *gin.Context) {
	items := h.store.List()
	out := make([]QueueItem, 0, len(items))
	for _, it := range items {
		q := QueueItem{TaskItem: it}
		if info, ok := h.store.Info(it.Path); ok {
			q.Info = &info
		}
		out = append(out, q)
	}
	c.JSON(http.StatusOK, out)
}

// RemoveFromQueue DELETE /api/v1/queue/:id
func (h *Handler) RemoveFromQueue(c *gin.Context) {
	if h.runner.IsRunning() {
		errResp(c, http.StatusConflict, "Run in progress", "queue is locked while converting")
		return
	}

	if err := h.store.Remove(c.Param("id")); err != nil {
		if errors.Is(err, task.ErrNotFound) {
			errResp(c, http.StatusNotFound, "Unknown queue item", err.Error())
			return
		}
		errResp(c, http.StatusInternalServerError, "Remove failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// ClearQueue DELETE /api/v1/queue
func (h *Handler) ClearQueue(c *gin.Context) {
	if h.runner.IsRunning() {
		errResp(c, http.StatusConflict, "Run in progress", "queue is locked while converting")
		return
	}
	h.store.Clear()
	c.JSON(http.StatusOK, "OK")
}

// GetPresets GET /api/v1/presets
func (h *Handler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, preset.Load(h.presetPath))
}

// PutPresets PUT /api/v1/presets
func (h *Handler) PutPresets(c *gin.Context) {
	var req PresetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := preset.Save(h.presetPath, req.Presets); err != nil {
		errResp(c, http.StatusInternalServerError, "Save failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, preset.Load(h.presetPath))
}

// StartRun POST /api/v1/run
func (h *Handler) StartRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = h.outDir
	}

	if err := h.runner.Start(req.Settings, outDir); err != nil {
		switch {
		case errors.Is(err, runner.ErrAlreadyRunning):
			errResp(c, http.StatusConflict, "Run in progress", err.Error())
		case errors.Is(err, runner.ErrEmptyQueue), errors.Is(err, runner.ErrNoFFmpeg):
			errResp(c, http.StatusBadRequest, "Cannot start run", err.Error())
		default:
			errResp(c, http.StatusInternalServerError, "Cannot start run", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// StopRun POST /api/v1/run/stop
func (h *Handler) StopRun(c *gin.Context) {
	h.runner.Stop()
	c.JSON(http.StatusOK, "OK")
}

// RunState GET /api/v1/run/state
func (h *Handler) RunState(c *gin.Context) {
	c.JSON(http.StatusOK, RunStateResponse{RunState: h.runner.State()})
}

// RunEvents GET /api/v1/run/events
func (h *Handler) RunEvents(c *gin.Context) {
	max := 0
	if raw := c.DefaultQuery("max", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			max = n
		}
	}
	events := h.runner.Events(max)
	if events == nil {
		events = []runner.Event{}
	}
	c.JSON(http.StatusOK, events)
}
