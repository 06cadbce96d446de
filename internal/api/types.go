// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package api

import (
	"github.com/ZSC714725/mediabatch/internal/media"
	"github.com/ZSC714725/mediabatch/internal/runner"
	"github.com/ZSC714725/mediabatch/internal/settings"
)

// ErrorResponse for API errors
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// QueueAddRequest adds files to the queue
type QueueAddRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// QueueAddResponse reports per-path outcomes
type QueueAddResponse struct {
	Added   []media.TaskItem `json:"added"`
	Skipped []QueueSkipped   `json:"skipped"`
}

// QueueSkipped names a path that was not queued and why
type QueueSkipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// QueueItem is one queued file with its probed facts when available
type QueueItem struct {
	media.TaskItem
	Info *media.Info `json:"info,omitempty"`
}

// RunRequest starts a conversion run
type RunRequest struct {
	Settings  settings.ConversionSettings `json:"settings"`
	OutputDir string                      `json:"output_dir"`
}

// RunStateResponse is the live run snapshot
type RunStateResponse struct {
	runner.RunState
}

// PresetsRequest replaces the persisted preset set
type PresetsRequest struct {
	Presets map[string]settings.ConversionSettings `json:"presets" binding:"required"`
}
