package main

import (
	"fmt"
	"strings"

	"contractchunk/config"
	"contractchunk/extract"
	"contractchunk/pipeline"
	"contractchunk/pkg/chunking"
	"contractchunk/staging"
	"contractchunk/storage"
	"contractchunk/summary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	settings   chunking.Settings
	pipeline   *pipeline.Pipeline
	summarizer summary.Summarizer
	cache      *storage.TextCache
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	// =========
	// Config
	// =========
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	fs := cmd.Flags()
	if fs.Changed("size") {
		cfg.Chunk.Size = flags.size
	}
	if fs.Changed("overlap") {
		cfg.Chunk.Overlap = flags.overlap
	}
	if fs.Changed("strategy") {
		cfg.Chunk.Strategy = flags.strategy
	}
	if fs.Changed("cache") {
		cfg.Cache.Path = flags.cachePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// =========
	// Logging
	// =========
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// =========
	// Chunking Client
	// =========
	settings := chunking.Settings{Size: cfg.Chunk.Size, Overlap: cfg.Chunk.Overlap}
	chunker, err := chunking.New(cfg.Chunk.Strategy, settings, logger)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize chunking client: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithStager(staging.NewStager(cfg.Staging.Dir, logger)),
	}

	// =========
	// Extraction cache
	// =========
	var cache *storage.TextCache
	if cfg.Cache.Path != "" {
		cache, err = storage.OpenTextCache(cfg.Cache.Path)
		if err != nil {
			logger.Sync()
			return nil, err
		}
		opts = append(opts, pipeline.WithCache(cache))
	}

	// =========
	// Token estimates
	// =========
	if cfg.Tokens.Encoding != "" {
		tc, err := chunking.NewTokenCounter(cfg.Tokens.Encoding)
		if err != nil {
			logger.Warn("token estimates disabled", zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithTokenCounter(tc))
		}
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		settings:   settings,
		pipeline:   pipeline.New(extract.NewClient(logger), chunker, logger, opts...),
		summarizer: summary.NewExtractive(cfg.Summary.Chunks, cfg.Summary.MaxChars),
		cache:      cache,
	}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close extraction cache", zap.Error(err))
		}
	}
	a.logger.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	level = strings.ToLower(level)
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
