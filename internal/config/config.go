package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a configuration value outside its allowed range.
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration structure
type Config struct {
	Seed    uint64        `yaml:"seed"`
	Problem ProblemConfig `yaml:"problem"`
	GA      GAConfig      `yaml:"ga"`
	Search  SearchConfig  `yaml:"search"`
	Logging LogConfig     `yaml:"logging"`
}

// ProblemConfig selects the problem to optimize
type ProblemConfig struct {
	Name   string  `yaml:"name"`   // onemax|trap|target
	Bits   int     `yaml:"bits"`   // candidate length
	Target float64 `yaml:"target"` // target problem only
}

// GAConfig defines the evolutionary parameters
type GAConfig struct {
	Population  int     `yaml:"population"`
	Elites      int     `yaml:"elites"`
	ElitePolicy string  `yaml:"elite_policy"` // every|improvement|none
	Selection   string  `yaml:"selection"`    // linear_rank|tournament|truncation|proportional|uniform
	Bias        float64 `yaml:"bias"`
	TournamentK int     `yaml:"tournament_k"`
	TruncationK int     `yaml:"truncation_k"`
	Crossover   string  `yaml:"crossover"` // uniform|single_point
	Fitness     string  `yaml:"fitness"`   // negative|inverse
	Scale       float64 `yaml:"scale"`
}

// SearchConfig defines run length and parallelism
type SearchConfig struct {
	Generations int `yaml:"generations"`
	Workers     int `yaml:"workers"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level           string `yaml:"level"`
	EveryGenSummary bool   `yaml:"every_gen_summary"`
	CSVPath         string `yaml:"csv_path"`
	JSONPath        string `yaml:"json_path"`
	SQLitePath      string `yaml:"sqlite_path"`
	ChampionPath    string `yaml:"champion_path"`
}

// Load reads a YAML config file and returns a validated Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.Problem.Name == "" {
		cfg.Problem.Name = "onemax"
	}
	if cfg.Problem.Bits == 0 {
		cfg.Problem.Bits = 64
	}
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 100
	}
	if cfg.GA.ElitePolicy == "" {
		cfg.GA.ElitePolicy = "every"
	}
	if cfg.GA.Elites == 0 && cfg.GA.ElitePolicy != "none" {
		cfg.GA.Elites = 2
	}
	if cfg.GA.Selection == "" {
		cfg.GA.Selection = "linear_rank"
	}
	if cfg.GA.Bias == 0 {
		cfg.GA.Bias = 1.5
	}
	if cfg.GA.TournamentK == 0 {
		cfg.GA.TournamentK = 3
	}
	if cfg.GA.TruncationK == 0 {
		cfg.GA.TruncationK = 10
	}
	if cfg.GA.Crossover == "" {
		cfg.GA.Crossover = "uniform"
	}
	if cfg.GA.Fitness == "" {
		cfg.GA.Fitness = "negative"
	}
	if cfg.GA.Scale == 0 {
		cfg.GA.Scale = 1
	}
	if cfg.Search.Generations == 0 {
		cfg.Search.Generations = 200
	}
	if cfg.Search.Workers == 0 {
		cfg.Search.Workers = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Logging.ChampionPath == "" {
		cfg.Logging.ChampionPath = "artifacts/champion.json"
	}
}

// Validate checks every value that would make the run fail later
func (c *Config) Validate() error {
	switch c.Problem.Name {
	case "onemax", "trap":
	case "target":
		if c.Problem.Target < 0 || c.Problem.Target > 1 {
			return fmt.Errorf("%w: problem.target must be in [0, 1], got %v", ErrInvalid, c.Problem.Target)
		}
	default:
		return fmt.Errorf("%w: unknown problem %q", ErrInvalid, c.Problem.Name)
	}
	if c.Problem.Bits < 1 {
		return fmt.Errorf("%w: problem.bits must be >= 1, got %d", ErrInvalid, c.Problem.Bits)
	}
	if c.GA.Population < 1 {
		return fmt.Errorf("%w: ga.population must be >= 1, got %d", ErrInvalid, c.GA.Population)
	}
	switch c.GA.ElitePolicy {
	case "none":
		if c.GA.Elites != 0 {
			return fmt.Errorf("%w: ga.elites must be 0 with elite_policy none", ErrInvalid)
		}
	case "every", "improvement":
		if c.GA.Elites < 1 || c.GA.Elites >= c.GA.Population {
			return fmt.Errorf("%w: ga.elites must be in [1, %d), got %d", ErrInvalid, c.GA.Population, c.GA.Elites)
		}
	default:
		return fmt.Errorf("%w: unknown elite_policy %q", ErrInvalid, c.GA.ElitePolicy)
	}
	switch c.GA.Selection {
	case "linear_rank":
		if !(c.GA.Bias >= 1 && c.GA.Bias <= 2) {
			return fmt.Errorf("%w: ga.bias must be in [1, 2], got %v", ErrInvalid, c.GA.Bias)
		}
	case "tournament":
		if c.GA.TournamentK < 2 {
			return fmt.Errorf("%w: ga.tournament_k must be >= 2, got %d", ErrInvalid, c.GA.TournamentK)
		}
	case "truncation":
		if c.GA.TruncationK < 1 {
			return fmt.Errorf("%w: ga.truncation_k must be >= 1, got %d", ErrInvalid, c.GA.TruncationK)
		}
	case "proportional", "uniform":
	default:
		return fmt.Errorf("%w: unknown selection %q", ErrInvalid, c.GA.Selection)
	}
	switch c.GA.Crossover {
	case "uniform", "single_point":
	default:
		return fmt.Errorf("%w: unknown crossover %q", ErrInvalid, c.GA.Crossover)
	}
	switch c.GA.Fitness {
	case "negative":
	case "inverse":
		if !(c.GA.Scale > 0) {
			return fmt.Errorf("%w: ga.scale must be > 0, got %v", ErrInvalid, c.GA.Scale)
		}
	default:
		return fmt.Errorf("%w: unknown fitness %q", ErrInvalid, c.GA.Fitness)
	}
	if c.Search.Generations < 1 {
		return fmt.Errorf("%w: search.generations must be >= 1, got %d", ErrInvalid, c.Search.Generations)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("%w: search.workers must be >= 1, got %d", ErrInvalid, c.Search.Workers)
	}
	return nil
}
