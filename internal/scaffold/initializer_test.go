package scaffold

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hayatoito/icfp2019/internal/config"
	"github.com/hayatoito/icfp2019/internal/contest"
	"github.com/hayatoito/icfp2019/internal/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, false))

	cfg, err := config.Load(filepath.Join(dir, "wrappy.yml"))
	require.NoError(t, err)
	assert.Equal(t, "./contest", cfg.Contest.Dir)
	assert.Equal(t, 300, cfg.Contest.LastProblem)
	assert.Equal(t, "ai-drill", cfg.Solver.Label)
	assert.Equal(t, []string{"B", "C"}, cfg.Solver.FarBoosters)

	for _, d := range contest.Dirs {
		info, err := os.Stat(filepath.Join(dir, "contest", d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir())
	}
	assert.FileExists(t, filepath.Join(dir, "contest", "problem", "README.md"))
}

func TestInitialize_TemplateMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false))

	cfg, err := config.Load(filepath.Join(dir, "wrappy.yml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().SolverOptions(false), cfg.SolverOptions(false))
}

func TestInitialize_Force(t *testing.T) {
	dir := t.TempDir()
	printer.Out = io.Discard
	t.Cleanup(func() { printer.Out = os.Stdout })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrappy.yml"), []byte("old content"), 0644))
	best := filepath.Join(dir, "contest", "best", "prob-001.sol")
	require.NoError(t, os.MkdirAll(filepath.Dir(best), 0755))
	require.NoError(t, os.WriteFile(best, []byte("WWDD"), 0644))

	require.NoError(t, Initialize(dir, true))

	content, err := os.ReadFile(filepath.Join(dir, "wrappy.yml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(content, &doc))
	assert.Equal(t, "1.0", doc["version"])

	kept, err := os.ReadFile(best)
	require.NoError(t, err)
	assert.Equal(t, "WWDD", string(kept), "solutions survive reinitialization")
}

func TestInitialize_KeepsProblemReadme(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "contest", "problem", "README.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(readme), 0755))
	require.NoError(t, os.WriteFile(readme, []byte("mine"), 0644))

	require.NoError(t, Initialize(dir, false))

	content, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))
}

func TestContestRoot(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, filepath.Join("proj", "contest"), ContestRoot("proj", cfg))

	cfg.Contest.Dir = "/srv/contest"
	assert.Equal(t, "/srv/contest", ContestRoot("proj", cfg))
}
