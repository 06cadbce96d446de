// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaBatch - FFmpeg 批量媒体转换工具

package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZSC714725/mediabatch/internal/api"
	"github.com/ZSC714725/mediabatch/internal/config"
	"github.com/ZSC714725/mediabatch/internal/ffmpeg"
	"github.com/ZSC714725/mediabatch/internal/logger"
	"github.com/ZSC714725/mediabatch/internal/runner"
	"github.com/ZSC714725/mediabatch/internal/task"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	bind := flag.String("bind", "", "Bind address (overrides config)")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}

	bindAddr := cfg.Server.Bind
	if *bind != "" {
		bindAddr = *bind
	}
	ffmpegPath := cfg.FFmpeg.Path
	if *ffmpegBin != "" {
		ffmpegPath = *ffmpegBin
	}

	logger := logger.New("mediabatch ")

	ff, err := ffmpeg.New(ffmpeg.Config{
		Binary:      ffmpegPath,
		ProbeBinary: cfg.FFmpeg.ProbePath,
		MaxLogLines: cfg.FFmpeg.MaxLogLines,
	})
	if err != nil {
		log.Fatalf("FFmpeg init: %v", err)
	}
	if ff.ProbeBinary() == "" {
		logger.Warn("ffprobe not found, progress estimates will be degraded")
	}

	store := task.NewStore()
	run := runner.New(ff, store, logger)
	handler := api.NewHandler(store, ff, run, "", cfg.Output.Dir)

	r := gin.Default()
	r.Use(gin.Recovery(), cors.Default())

	// 静态前端
	webDir := "web"
	indexPath := filepath.Join(webDir, "index.html")
	r.GET("/", func(c *gin.Context) { c.File(indexPath) })

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/skills", handler.Skills)
		v1.POST("/skills/reload", handler.ReloadSkills)

		v1.GET("/queue", handler.ListQueue)
		v1.POST("/queue", handler.AddToQueue)
		v1.DELETE("/queue", handler.ClearQueue)
		v1.DELETE("/queue/:id", handler.RemoveFromQueue)

		v1.GET("/presets", handler.GetPresets)
		v1.PUT("/presets", handler.PutPresets)

		v1.POST("/run", handler.StartRun)
		v1.POST("/run/stop", handler.StopRun)
		v1.GET("/run/state", handler.RunState)
		v1.GET("/run/events", handler.RunEvents)
	}

	log.Printf("MediaBatch listening on %s (Web UI: /, output dir: %s)", bindAddr, cfg.Output.Dir)
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Server: %v", err)
	}
}
