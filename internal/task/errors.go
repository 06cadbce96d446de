// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package task

import "errors"

var (
	ErrNotFound        = errors.New("queue item not found")
	ErrDuplicatePath   = errors.New("file already queued")
	ErrUnsupportedType = errors.New("unsupported file type")
)
