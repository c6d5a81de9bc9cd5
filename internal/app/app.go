// Package app wires the loader, compiler and serializer into the
// application lifecycle and owns process-level configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/graph"
	"github.com/vk/projgraph/internal/scripts"
	"github.com/vk/projgraph/internal/serializer"
	"github.com/vk/projgraph/internal/sources"
	"github.com/vk/projgraph/internal/spec"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	fs     afero.Fs
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		logger: logger,
		config: config,
		fs:     afero.NewOsFs(),
	}
}

// WithFs swaps the file system, primarily for tests.
func (a *App) WithFs(fs afero.Fs) *App {
	a.fs = fs
	return a
}

// Run loads the spec, compiles the project graph and writes the serialized
// project file.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	loader := spec.NewLoader(a.fs)
	projectSpec, err := loader.Load(ctx, a.config.SpecPath)
	if err != nil {
		return fmt.Errorf("failed to load project spec: %w", err)
	}

	root := a.config.SpecPath
	if info, err := a.fs.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}

	store := graph.NewStore()
	resolver := sources.NewResolver(a.fs, root, store)
	scriptSource := scripts.NewSource(a.fs, root)

	compiler := graph.New(projectSpec, store, resolver, scriptSource)
	compiled, err := compiler.Compile(ctx)
	if err != nil {
		return fmt.Errorf("failed to compile project graph: %w", err)
	}
	a.logger.Info("Project graph compiled.", "project", projectSpec.Name, "nodes", compiled.Store.Len())

	outPath := a.config.OutPath
	if outPath == "" {
		outPath = projectSpec.Name + ".pbxproj"
	}
	out, err := a.fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := serializer.Write(out, compiled); err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}
	a.logger.Info("Project file written.", "path", outPath)
	return nil
}
