// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package filtergraph

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZSC714725/mediabatch/internal/settings"
)

func intp(v int) *int         { return &v }
func floatp(v float64) *float64 { return &v }

func TestBuildNoTransforms(t *testing.T) {
	spec := Build(settings.Default(), ".mp4", nil)
	if spec.Used || spec.Flag != "" || spec.Graph != "" {
		t.Errorf("expected empty spec, got %+v", spec)
	}
}

func TestBuildFlatChainOrdering(t *testing.T) {
	s := settings.Default()
	s.ResizeW = intp(1280)
	s.CropW = intp(100)
	s.CropH = intp(200)
	s.Rotate = settings.Rotate90CW
	s.Speed = floatp(2.0)
	s.Text = "hello"

	spec := Build(s, ".mp4", nil)
	if spec.Flag != "-vf" {
		t.Fatalf("flag = %q, want -vf", spec.Flag)
	}
	want := "scale=1280:-1,crop=100:200:0:0,transpose=1,setpts=PTS/2,drawtext="
	if !strings.HasPrefix(spec.Graph, want) {
		t.Errorf("graph = %q, want prefix %q", spec.Graph, want)
	}
}

func TestBuildRotation(t *testing.T) {
	cases := []struct {
		rot  settings.Rotation
		want string
	}{
		{settings.Rotate0, ""},
		{settings.Rotate90CW, "transpose=1"},
		{settings.Rotate90CCW, "transpose=2"},
		{settings.Rotate180, "transpose=1,transpose=1"},
	}
	for _, c := range cases {
		s := settings.Default()
		s.Rotate = c.rot
		spec := Build(s, ".mp4", nil)
		if spec.Graph != c.want {
			t.Errorf("rotate %s: graph = %q, want %q", c.rot, spec.Graph, c.want)
		}
	}
}

func TestBuildSpeedEpsilon(t *testing.T) {
	s := settings.Default()
	s.Speed = floatp(1.0005)
	if spec := Build(s, ".mp4", nil); spec.Used {
		t.Errorf("speed within epsilon must not add setpts, got %q", spec.Graph)
	}

	s.Speed = floatp(1.5)
	spec := Build(s, ".mp4", nil)
	if spec.Graph != "setpts=PTS/1.5" {
		t.Errorf("graph = %q", spec.Graph)
	}
}

func TestBuildPortraitBlurThreeNodes(t *testing.T) {
	s := settings.Default()
	s.Portrait = settings.Portrait1080BlurMode

	spec := Build(s, ".mp4", nil)
	if spec.Flag != "-filter_complex" {
		t.Fatalf("blur portrait must use -filter_complex, got %q", spec.Flag)
	}
	for _, label := range []string{"[bg]", "[fg]", "[vbase]"} {
		if !strings.Contains(spec.Graph, label) {
			t.Errorf("graph missing %s node: %q", label, spec.Graph)
		}
	}
	if spec.MapLabel != "[vbase]" {
		t.Errorf("map label = %q", spec.MapLabel)
	}
	if !strings.Contains(spec.Graph, "boxblur=20:1") {
		t.Errorf("graph missing blur background: %q", spec.Graph)
	}
	if !strings.Contains(spec.Graph, "scale=1080:1920:force_original_aspect_ratio=increase") {
		t.Errorf("graph missing fill scale: %q", spec.Graph)
	}
}

func TestBuildPortraitCropFirst(t *testing.T) {
	s := settings.Default()
	s.Portrait = settings.Portrait720CropMode
	s.Rotate = settings.Rotate180

	spec := Build(s, ".mp4", nil)
	if spec.Flag != "-vf" {
		t.Fatalf("crop portrait without watermark stays -vf, got %q", spec.Flag)
	}
	wantFirst := "scale='if(gt(a,9/16),-2,720)':'if(gt(a,9/16),1280,-2)',crop=720:1280,setsar=1"
	if !strings.HasPrefix(spec.Graph, wantFirst) {
		t.Errorf("portrait must be first: %q", spec.Graph)
	}
	if !strings.HasSuffix(spec.Graph, "transpose=1,transpose=1") {
		t.Errorf("rotation must follow portrait: %q", spec.Graph)
	}
}

func TestBuildPortraitIgnoresResize(t *testing.T) {
	s := settings.Default()
	s.Portrait = settings.Portrait1080CropMode
	s.ResizeW = intp(640)

	var warned string
	spec := Build(s, ".mp4", func(format string, args ...interface{}) {
		warned = fmt.Sprintf(format, args...)
	})
	if strings.Contains(spec.Graph, "scale=640") {
		t.Errorf("explicit resize must be dropped with portrait on: %q", spec.Graph)
	}
	if warned == "" {
		t.Error("dropping resize must warn")
	}
}

func TestBuildGIFDefaults(t *testing.T) {
	spec := Build(settings.Default(), ".gif", nil)
	if spec.Graph != "fps=12,scale=640:-1:flags=lanczos" {
		t.Errorf("graph = %q", spec.Graph)
	}

	s := settings.Default()
	s.ResizeW = intp(320)
	spec = Build(s, ".gif", nil)
	if strings.Contains(spec.Graph, "lanczos") {
		t.Errorf("explicit resize suppresses default GIF downscale: %q", spec.Graph)
	}
	if !strings.HasSuffix(spec.Graph, "fps=12") {
		t.Errorf("GIF constraints go last: %q", spec.Graph)
	}
}

func TestBuildWatermarkComplex(t *testing.T) {
	wm := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(wm, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := settings.Default()
	s.WatermarkPath = wm
	s.WatermarkPos = settings.PosTopRight
	s.WatermarkScale = 50
	s.WatermarkOpacity = 60
	s.ResizeW = intp(1920)

	spec := Build(s, ".mp4", nil)
	if spec.Flag != "-filter_complex" {
		t.Fatalf("watermark must force -filter_complex, got %q", spec.Flag)
	}
	if len(spec.ExtraInputs) != 1 || spec.ExtraInputs[0] != wm {
		t.Errorf("extra inputs = %v", spec.ExtraInputs)
	}
	if spec.MapLabel != "[vout]" {
		t.Errorf("map label = %q", spec.MapLabel)
	}
	wantParts := []string{
		"[0:v]scale=1920:-1[vbase]",
		"[1:v]format=rgba,scale=iw*0.50:ih*0.50,colorchannelmixer=aa=0.60[wm]",
		"[vbase][wm]overlay=W-w-10:10[vout]",
	}
	if spec.Graph != strings.Join(wantParts, ";") {
		t.Errorf("graph = %q", spec.Graph)
	}
}

func TestBuildWatermarkMissingWarns(t *testing.T) {
	s := settings.Default()
	s.WatermarkPath = filepath.Join(t.TempDir(), "missing.png")

	var warned bool
	spec := Build(s, ".mp4", func(string, ...interface{}) { warned = true })
	if !warned {
		t.Error("missing watermark must warn")
	}
	if spec.Flag == "-filter_complex" {
		t.Error("missing watermark must not force a complex graph")
	}
}

func TestTextFilterEscaping(t *testing.T) {
	s := settings.Default()
	s.Text = `it's 50:50 \ done`
	s.TextPos = settings.PosCenter
	s.TextBox = true

	got := TextFilter(s)
	if !strings.Contains(got, `text='it\'s 50\:50 \\ done'`) {
		t.Errorf("escaping wrong: %q", got)
	}
	if !strings.Contains(got, "x=(W-tw)/2:y=(H-th)/2") {
		t.Errorf("center position wrong: %q", got)
	}
	if !strings.Contains(got, "box=1:boxcolor=black@0.50") {
		t.Errorf("box wrong: %q", got)
	}
}

func TestBuildImageSkipsVideoOnlyFilters(t *testing.T) {
	s := settings.Default()
	s.Speed = floatp(2.0)
	s.Portrait = settings.Portrait1080BlurMode
	s.ResizeW = intp(800)

	spec := BuildImage(s, nil)
	if spec.Flag != "-vf" || spec.Graph != "scale=800:-1" {
		t.Errorf("image spec = %+v", spec)
	}
}

func TestAtempoChainProperties(t *testing.T) {
	for _, speed := range []float64{0.1, 0.25, 0.4, 0.5, 0.75, 1.0, 1.9, 2.0, 3.0, 4.0, 7.5, 16.0} {
		chain := AtempoChain(speed)
		if len(chain) == 0 {
			t.Fatalf("speed %v: empty chain", speed)
		}
		product := 1.0
		for _, f := range chain {
			if f < 0.5 || f > 2.0 {
				t.Errorf("speed %v: factor %v outside [0.5, 2.0]", speed, f)
			}
			product *= f
		}
		if math.Abs(product-speed) > 1e-9 {
			t.Errorf("speed %v: chain product %v", speed, product)
		}
	}
	if AtempoChain(0) != nil || AtempoChain(-1) != nil {
		t.Error("non-positive speeds must yield nil")
	}
}

func TestAudioSpeedFilter(t *testing.T) {
	s := settings.Default()
	if got := AudioSpeedFilter(s); got != "" {
		t.Errorf("unset speed: %q", got)
	}

	s.Speed = floatp(1.0)
	if got := AudioSpeedFilter(s); got != "" {
		t.Errorf("speed 1.0: %q", got)
	}

	s.Speed = floatp(4.0)
	if got := AudioSpeedFilter(s); got != "atempo=2.000,atempo=2.000" {
		t.Errorf("speed 4.0: %q", got)
	}

	s.Speed = floatp(0.25)
	if got := AudioSpeedFilter(s); got != "atempo=0.500,atempo=0.500" {
		t.Errorf("speed 0.25: %q", got)
	}

	s.Speed = floatp(3.0)
	if got := AudioSpeedFilter(s); got != "atempo=2.000,atempo=1.500" {
		t.Errorf("speed 3.0: %q", got)
	}
}
