// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

// Package task manages the in-memory file queue. Queue order is insertion
// order and is what the merge path concatenates in.
package task

import (
	"sync"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ZSC714725/mediabatch/internal/media"
	"github.com/ZSC714725/mediabatch/internal/metrics"
)

// Store manages queued files in memory
type Store interface {
	Add(path string) (media.TaskItem, error)
	List() []media.TaskItem
	Remove(id string) error
	Clear()
	Len() int

	SetInfo(path string, info media.Info)
	Info(path string) (media.Info, bool)
	Infos() map[string]media.Info
	ResetInfos()
}

type store struct {
	items []media.TaskItem
	infos map[string]media.Info
	mu    sync.RWMutex
}

// NewStore creates an empty queue
func NewStore() Store {
	return &store{
		infos: make(map[string]media.Info),
	}
}

func (s *store) Add(path string) (media.TaskItem, error) {
	kind := media.KindOf(path)
	if kind == "" {
		return media.TaskItem{}, ErrUnsupportedType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.Path == path {
			return media.TaskItem{}, ErrDuplicatePath
		}
	}

	item := media.TaskItem{
		ID:   shortuuid.New(),
		Path: path,
		Kind: kind,
	}
	s.items = append(s.items, item)
	metrics.QueueSize.Set(float64(len(s.items)))
	return item, nil
}

func (s *store) List() []media.TaskItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]media.TaskItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.ID == id {
			delete(s.infos, it.Path)
			s.items = append(s.items[:i], s.items[i+1:]...)
			metrics.QueueSize.Set(float64(len(s.items)))
			return nil
		}
	}
	return ErrNotFound
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.infos = make(map[string]media.Info)
	metrics.QueueSize.Set(0)
}

func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *store) SetInfo(path string, info media.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos[path] = info
}

func (s *store) Info(path string) (media.Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.infos[path]
	return info, ok
}

// ResetInfos drops the probe cache; each run re-probes from scratch
func (s *store) ResetInfos() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = make(map[string]media.Info)
}

func (s *store) Infos() map[string]media.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]media.Info, len(s.infos))
	for k, v := range s.infos {
		out[k] = v
	}
	return out
}
