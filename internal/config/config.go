package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hayatoito/icfp2019/internal/arena"
	"github.com/hayatoito/icfp2019/internal/solver"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration.
const DefaultPath = "wrappy.yml"

//go:embed wrappy.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("wrappy.schema.json", schemaJSON)

// ContestConfig locates the contest directory tree and the problem range.
type ContestConfig struct {
	Dir          string `yaml:"dir,omitempty"`           // Default: ./contest
	FirstProblem int    `yaml:"first_problem,omitempty"` // Default: 1
	LastProblem  int    `yaml:"last_problem,omitempty"`  // Default: 300
}

// SolverConfig tunes the greedy policy.
type SolverConfig struct {
	Label              string   `yaml:"label,omitempty"`                // Filename label, default: ai-drill
	NearBoosterHorizon *int     `yaml:"near_booster_horizon,omitempty"` // Max path length for near boosters, default: 5
	NearBoosters       []string `yaml:"near_boosters,omitempty"`        // Default: [F]
	FarBoosters        []string `yaml:"far_boosters,omitempty"`         // Default: [B, C]
}

// BatchConfig controls run-all.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"` // 0 = one per CPU
}

// JournalConfig controls the compressed solve journal.
type JournalConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // Default: true
	Dir     string `yaml:"dir,omitempty"`     // Default: <contest.dir>/journal
}

// WrappyConfig represents the top-level wrappy.yml configuration
type WrappyConfig struct {
	Version string         `yaml:"version"`
	Contest *ContestConfig `yaml:"contest,omitempty"`
	Solver  *SolverConfig  `yaml:"solver,omitempty"`
	Batch   *BatchConfig   `yaml:"batch,omitempty"`
	Journal *JournalConfig `yaml:"journal,omitempty"`
}

// Default returns the configuration used when no wrappy.yml exists.
func Default() *WrappyConfig {
	c := &WrappyConfig{Version: "1.0"}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config: default configuration is invalid: %v", err))
	}
	return c
}

// Validate checks the configuration and fills in defaults for omitted
// sections.
func (c *WrappyConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Contest == nil {
		c.Contest = &ContestConfig{}
	}
	if c.Contest.Dir == "" {
		c.Contest.Dir = "./contest"
	}
	if c.Contest.FirstProblem == 0 {
		c.Contest.FirstProblem = 1
	}
	if c.Contest.LastProblem == 0 {
		c.Contest.LastProblem = 300
	}
	if c.Contest.FirstProblem < 1 {
		return fmt.Errorf("contest.first_problem must be >= 1, got %d", c.Contest.FirstProblem)
	}
	if c.Contest.FirstProblem > c.Contest.LastProblem {
		return fmt.Errorf("contest.first_problem (%d) must not exceed contest.last_problem (%d)",
			c.Contest.FirstProblem, c.Contest.LastProblem)
	}

	if c.Solver == nil {
		c.Solver = &SolverConfig{}
	}
	if err := c.Solver.validate(); err != nil {
		return err
	}

	if c.Batch == nil {
		c.Batch = &BatchConfig{}
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0 (0 = one per CPU), got %d", c.Batch.Workers)
	}

	if c.Journal == nil {
		c.Journal = &JournalConfig{}
	}
	if c.Journal.Enabled == nil {
		enabled := true
		c.Journal.Enabled = &enabled
	}

	return nil
}

func (s *SolverConfig) validate() error {
	if s.Label == "" {
		s.Label = "ai-drill"
	}
	if s.NearBoosterHorizon == nil {
		horizon := 5
		s.NearBoosterHorizon = &horizon
	}
	if *s.NearBoosterHorizon < 0 {
		return fmt.Errorf("solver.near_booster_horizon must be >= 0, got %d", *s.NearBoosterHorizon)
	}
	if s.NearBoosters == nil {
		s.NearBoosters = []string{"F"}
	}
	if s.FarBoosters == nil {
		s.FarBoosters = []string{"B", "C"}
	}

	if _, err := boosterKinds("solver.near_boosters", s.NearBoosters, arena.SpeedBoost, arena.Drill); err != nil {
		return err
	}
	if _, err := boosterKinds("solver.far_boosters", s.FarBoosters, arena.ManipulatorExtension, arena.Cloning); err != nil {
		return err
	}
	return nil
}

// boosterKinds converts booster letters, accepting only the allowed kinds.
func boosterKinds(field string, letters []string, allowed ...arena.BoosterKind) ([]arena.BoosterKind, error) {
	kinds := make([]arena.BoosterKind, 0, len(letters))
	for _, l := range letters {
		if len(l) != 1 {
			return nil, fmt.Errorf("%s: invalid booster letter '%s'", field, l)
		}
		kind, ok := arena.ParseBoosterKind(l[0])
		if !ok {
			return nil, fmt.Errorf("%s: unknown booster '%s'", field, l)
		}
		permitted := false
		for _, a := range allowed {
			if a == kind {
				permitted = true
			}
		}
		if !permitted {
			return nil, fmt.Errorf("%s: booster '%s' cannot be used here", field, l)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// SolverOptions builds solver options from a validated configuration.
func (c *WrappyConfig) SolverOptions(verbose bool) solver.Options {
	near, _ := boosterKinds("solver.near_boosters", c.Solver.NearBoosters, arena.SpeedBoost, arena.Drill)
	far, _ := boosterKinds("solver.far_boosters", c.Solver.FarBoosters, arena.ManipulatorExtension, arena.Cloning)
	return solver.Options{
		Label:       c.Solver.Label,
		NearHorizon: *c.Solver.NearBoosterHorizon,
		NearKinds:   near,
		FarKinds:    far,
		Verbose:     verbose,
	}
}

// JournalDir is where solve journals are written.
func (c *WrappyConfig) JournalDir() string {
	if c.Journal.Dir != "" {
		return c.Journal.Dir
	}
	return filepath.Join(c.Contest.Dir, "journal")
}

// Load reads and validates wrappy.yml from the specified path
func Load(path string) (*WrappyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var config WrappyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist. found reports whether a file was read.
func LoadOrDefault(path string) (cfg *WrappyConfig, found bool, err error) {
	cfg, err = Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

// validateSchema checks a decoded YAML document against the embedded schema.
// The document goes through JSON so that numbers take the form the validator
// expects.
func validateSchema(doc any) error {
	if doc == nil {
		return fmt.Errorf("configuration is empty")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert configuration: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to convert configuration: %w", err)
	}
	return schema.Validate(v)
}
