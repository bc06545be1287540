package service

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gofarm/internal/shared/config"
	"github.com/nemanja-m/gofarm/internal/worker/core"
)

func TestExpandArgs(t *testing.T) {
	args := []string{"-b", "{scene}", "-o", "{output}/frame_####", "-s", "{from}", "-e", "{to}", "-a"}

	got := ExpandArgs(args, core.Range{From: 11, To: 15}, "/scenes/shot.blend", "/out")

	require.Equal(t, []string{"-b", "/scenes/shot.blend", "-o", "/out/frame_####", "-s", "11", "-e", "15", "-a"}, got)
	require.Equal(t, "{from}", args[5], "template must not be mutated")
}

func TestResolveScene(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shots", "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots", "a", "main.blend"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots", "a", "alt.blend"), nil, 0o644))

	scene, err := ResolveScene("")
	require.NoError(t, err)
	require.Empty(t, scene)

	scene, err = ResolveScene(filepath.Join(dir, "**", "main.blend"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "shots", "a", "main.blend"), scene)

	_, err = ResolveScene(filepath.Join(dir, "**", "*.blend"))
	require.ErrorContains(t, err, "matches 2 files")

	_, err = ResolveScene(filepath.Join(dir, "**", "*.max"))
	require.ErrorContains(t, err, "no scene file")
}

func TestProcessLauncher_ProcessLifecycle(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	outputDir := filepath.Join(t.TempDir(), "out")
	launcher, err := NewProcessLauncher(config.RenderConfig{
		Command:   sh,
		Args:      []string{"-c", "echo rendering {from}-{to}; sleep 0.2"},
		OutputDir: outputDir,
	}, &mockLogger{})
	require.NoError(t, err)

	prober := NewProcessProber()
	tracker := NewJobTracker(launcher, prober, &mockLogger{})
	ctx := context.Background()

	item, err := tracker.Submit(ctx, core.Range{From: 3, To: 7})
	require.NoError(t, err)
	require.Greater(t, int(item.Handle), 0)

	require.Eventually(t, func() bool {
		state, err := tracker.Probe(ctx, item.Handle)
		return err == nil && state == core.ProbeStateCompleted
	}, 5*time.Second, 20*time.Millisecond)

	out, err := os.ReadFile(filepath.Join(outputDir, "render-3-7.log"))
	require.NoError(t, err)
	require.Contains(t, string(out), "rendering 3-7")
}

func TestProcessLauncher_MissingCommand(t *testing.T) {
	launcher, err := NewProcessLauncher(config.RenderConfig{
		Command:   "gofarm-renderer-that-does-not-exist",
		OutputDir: t.TempDir(),
	}, &mockLogger{})
	require.NoError(t, err)

	_, err = launcher.Launch(context.Background(), core.Range{From: 1, To: 1})
	require.Error(t, err)
}
