// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package task

import (
	"errors"
	"testing"

	"github.com/ZSC714725/mediabatch/internal/media"
)

func TestStoreAdd(t *testing.T) {
	s := NewStore()

	v, err := s.Add("/videos/a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != media.KindVideo || v.ID == "" {
		t.Errorf("item = %+v", v)
	}

	img, err := s.Add("/photos/b.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Kind != media.KindImage {
		t.Errorf("kind = %s", img.Kind)
	}

	if _, err := s.Add("/docs/c.txt"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v", err)
	}
	if _, err := s.Add("/videos/a.mp4"); !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("err = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestStoreListPreservesOrder(t *testing.T) {
	s := NewStore()
	paths := []string{"/v/c.mp4", "/v/a.mp4", "/v/b.mp4"}
	for _, p := range paths {
		if _, err := s.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	list := s.List()
	for i, p := range paths {
		if list[i].Path != p {
			t.Errorf("list[%d] = %s, want %s", i, list[i].Path, p)
		}
	}
}

func TestStoreRemove(t *testing.T) {
	s := NewStore()
	a, _ := s.Add("/v/a.mp4")
	b, _ := s.Add("/v/b.mp4")
	s.SetInfo(a.Path, media.Info{VCodec: "h264"})

	if err := s.Remove(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Info(a.Path); ok {
		t.Error("probe cache must drop with the item")
	}
	if err := s.Remove(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}

	list := s.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("list = %v", list)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Add("/v/a.mp4")
	s.SetInfo("/v/a.mp4", media.Info{Duration: 1})
	s.Clear()
	if s.Len() != 0 || len(s.Infos()) != 0 {
		t.Error("clear must drop items and probe cache")
	}
}

func TestStoreInfos(t *testing.T) {
	s := NewStore()
	s.Add("/v/a.mp4")
	s.SetInfo("/v/a.mp4", media.Info{Duration: 12.5, VCodec: "h264"})

	got, ok := s.Info("/v/a.mp4")
	if !ok || got.Duration != 12.5 {
		t.Errorf("info = %+v ok=%v", got, ok)
	}

	// snapshot must be a copy
	infos := s.Infos()
	infos["/v/a.mp4"] = media.Info{}
	if got, _ := s.Info("/v/a.mp4"); got.VCodec != "h264" {
		t.Error("Infos must return a copy")
	}
}
