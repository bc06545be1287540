package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/shared/logging"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

type processLauncher struct {
	command   string
	args      []string
	scene     string
	outputDir string
	logger    logging.Logger
}

// NewProcessLauncher resolves the configured scene and returns a launcher that starts
// one render process per range.
func NewProcessLauncher(cfg config.RenderConfig, logger logging.Logger) (core.Launcher, error) {
	scene, err := ResolveScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("invalid output dir %q: %w", cfg.OutputDir, err)
	}
	return &processLauncher{
		command:   cfg.Command,
		args:      cfg.Args,
		scene:     scene,
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// Launch starts the render process detached from ctx: the process outlives the
// request that created it.
func (l *processLauncher) Launch(ctx context.Context, r core.Range) (core.Handle, error) {
	if err := os.MkdirAll(l.outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	logPath := filepath.Join(l.outputDir, fmt.Sprintf("render-%d-%d.log", r.From, r.To))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open render log: %w", err)
	}

	cmd := exec.Command(l.command, ExpandArgs(l.args, r, l.scene, l.outputDir)...)
	cmd.Dir = l.outputDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return 0, err
	}

	handle := core.Handle(cmd.Process.Pid)

	// Reap the child so its pid disappears from the process table once it exits.
	go func() {
		err := cmd.Wait()
		logFile.Close()
		l.logger.Debug("Render process exited", "handle", handle.String(), "range", r.String(), "error", err)
	}()

	return handle, nil
}

// ExpandArgs substitutes {from}, {to}, {scene} and {output} in every argument.
func ExpandArgs(args []string, r core.Range, scene, outputDir string) []string {
	replacer := strings.NewReplacer(
		"{from}", strconv.FormatInt(r.From, 10),
		"{to}", strconv.FormatInt(r.To, 10),
		"{scene}", scene,
		"{output}", outputDir,
	)
	out := make([]string, 0, len(args))
	for _, arg := range args {
		out = append(out, replacer.Replace(arg))
	}
	return out
}

// ResolveScene expands a doublestar pattern to exactly one regular file.
// An empty pattern means the render command needs no scene.
func ResolveScene(pattern string) (string, error) {
	if pattern == "" {
		return "", nil
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid scene pattern %q: %w", pattern, err)
	}

	var files []string
	for _, name := range matches {
		info, err := os.Lstat(name)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, name)
		}
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no scene file matches %q", pattern)
	case 1:
		return filepath.Abs(files[0])
	default:
		return "", fmt.Errorf("scene pattern %q matches %d files, expected one", pattern, len(files))
	}
}
