package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-dream/engine/description"
	"github.com/Carmen-Shannon/oxy-dream/engine/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cfg := filepath.Join(t.TempDir(), "none.toml")
	cmd.SetArgs(append([]string{"--config", cfg, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateWritesDescription(t *testing.T) {
	out, _, err := run(t, "generate", "--narrative", "a forest", "--seed", "3", "--format", "json")
	require.NoError(t, err)

	desc, err := description.Decode([]byte(out), description.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "a forest", desc.Title)
	assert.NotEmpty(t, desc.Objects)

	again, _, err := run(t, "generate", "--narrative", "a forest", "--seed", "3", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerateToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	_, stderr, err := run(t, "generate", "--narrative", "lake", "--seed", "1", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote")

	desc, err := description.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lake", desc.Title)
}

func TestGenerateRejectsBadMood(t *testing.T) {
	_, _, err := run(t, "generate", "--mood", "1,2,3")
	assert.Error(t, err)
	_, _, err = run(t, "generate", "--mood", "0,5,0,0")
	assert.ErrorIs(t, err, generator.ErrInvalidRequest)
}

func TestViewHeadlessRendersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: box\nobjects:\n  - id: a\n    primitive: box\n"), 0o644))

	_, stderr, err := run(t, "view", path, "--headless", "--frames", "3", "--watch=false")
	require.NoError(t, err)
	assert.Contains(t, stderr, "rendered 3 frames")
}

func TestViewHeadlessGeneratedScene(t *testing.T) {
	_, stderr, err := run(t, "view", "--headless", "--frames", "2", "--narrative", "temple", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, stderr, "rendered 2 frames, skipped 0, 1 scene(s)")
}

func TestParseMood(t *testing.T) {
	m, err := parseMood(" 0.5, -1, 0.25 ,1")
	require.NoError(t, err)
	assert.Equal(t, generator.Mood{Valence: 0.5, Arousal: -1, Warmth: 0.25, Nostalgia: 1}, m)
}

func TestViewHeadlessBundledScenes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := description.Load(path)
			require.NoError(t, err)

			_, stderr, err := run(t, "view", path, "--headless", "--frames", "1", "--watch=false")
			require.NoError(t, err)
			assert.Contains(t, stderr, "rendered 1 frames, skipped 0, 1 scene(s)")
		})
	}
}
