package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for a coevolution run.
type Config struct {
	Run     RunConfig
	Navigators  SideConfig
	Arenas  SideConfig
	Maze    MazeConfig
	Storage StorageConfig
}

// RunConfig holds the parameters shared by both populations.
type RunConfig struct {
	Seed           int64 `ini:"seed"`
	MaxBatches     int   `ini:"max_batches"`
	MaxEvaluations int64 `ini:"max_evaluations"`
	Workers        int   `ini:"workers"`
	TrialLogLimit  int   `ini:"trial_log_limit"`
	Verbose        bool  `ini:"verbose"`
}

// SideConfig holds the per-population parameters.
type SideConfig struct {
	TargetSize       int   `ini:"target_size"`
	BatchSize        int   `ini:"batch_size"`
	SuccessCriterion int   `ini:"success_criterion"`
	FailureCriterion int   `ini:"failure_criterion"`
	ResourceLimit    int   `ini:"resource_limit"`
	SeedCount        int   `ini:"seed_count"`
	BootstrapSize    int   `ini:"bootstrap_size"`
	BootstrapBudget  int64 `ini:"bootstrap_budget"`
	SpeciesCount     int   `ini:"species_count"`
}

// MazeConfig holds the parameters of the maze demonstration domain.
type MazeConfig struct {
	Width      int `ini:"width"`
	Height     int `ini:"height"`
	StepBudget int `ini:"step_budget"`
}

// StorageConfig selects the run archive backend.
type StorageConfig struct {
	Kind string `ini:"kind"` // "memory" or "sqlite"
	Path string `ini:"path"`
}

// Default returns a configuration suitable for a small demonstration run.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Seed:           1,
			MaxBatches:     50,
			MaxEvaluations: 0,
			Workers:        4,
			TrialLogLimit:  10000,
		},
		Navigators: SideConfig{
			TargetSize:       20,
			BatchSize:        5,
			SuccessCriterion: 1,
			FailureCriterion: 0,
			ResourceLimit:    0,
			SeedCount:        5,
			BootstrapSize:    10,
			BootstrapBudget:  2000,
		},
		Arenas: SideConfig{
			TargetSize:       20,
			BatchSize:        5,
			SuccessCriterion: 1,
			FailureCriterion: 0,
			ResourceLimit:    4,
			SeedCount:        5,
		},
		Maze: MazeConfig{
			Width:      11,
			Height:     11,
			StepBudget: 400,
		},
		Storage: StorageConfig{
			Kind: "memory",
		},
	}
}

// Load reads an INI file and merges it over the defaults.
func Load(filePath string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := Default()
	sections := map[string]interface{}{
		"run":     &config.Run,
		"navigators":  &config.Navigators,
		"arenas":  &config.Arenas,
		"maze":    &config.Maze,
		"storage": &config.Storage,
	}
	for name, target := range sections {
		if err := file.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", name, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the engine would reject.
func (c *Config) Validate() error {
	if c.Run.MaxBatches <= 0 && c.Run.MaxEvaluations <= 0 {
		return fmt.Errorf("config error: max_batches or max_evaluations must be positive")
	}
	if c.Run.Workers <= 0 {
		return fmt.Errorf("config error: workers must be positive")
	}
	if err := validateSide("navigators", c.Navigators); err != nil {
		return err
	}
	if err := validateSide("arenas", c.Arenas); err != nil {
		return err
	}
	if c.Maze.Width < 5 || c.Maze.Height < 5 {
		return fmt.Errorf("config error: maze dimensions must be at least 5x5")
	}
	if c.Maze.StepBudget <= 0 {
		return fmt.Errorf("config error: step_budget must be positive")
	}
	switch c.Storage.Kind {
	case "", "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("config error: sqlite storage requires a path")
		}
	default:
		return fmt.Errorf("config error: unknown storage kind '%s'", c.Storage.Kind)
	}
	return nil
}

func validateSide(name string, side SideConfig) error {
	if side.TargetSize <= 0 {
		return fmt.Errorf("config error: [%s] target_size must be positive", name)
	}
	if side.BatchSize <= 0 {
		return fmt.Errorf("config error: [%s] batch_size must be positive", name)
	}
	if side.SuccessCriterion <= 0 {
		return fmt.Errorf("config error: [%s] success_criterion must be positive", name)
	}
	if side.FailureCriterion < 0 {
		return fmt.Errorf("config error: [%s] failure_criterion cannot be negative", name)
	}
	if side.ResourceLimit < 0 {
		return fmt.Errorf("config error: [%s] resource_limit cannot be negative", name)
	}
	if side.SeedCount <= 0 {
		return fmt.Errorf("config error: [%s] seed_count must be positive", name)
	}
	if side.SeedCount > side.TargetSize {
		return fmt.Errorf("config error: [%s] seed_count cannot exceed target_size", name)
	}
	if side.BootstrapSize < 0 || side.BootstrapBudget < 0 {
		return fmt.Errorf("config error: [%s] bootstrap parameters cannot be negative", name)
	}
	if side.SpeciesCount < 0 {
		return fmt.Errorf("config error: [%s] species_count cannot be negative", name)
	}
	return nil
}
