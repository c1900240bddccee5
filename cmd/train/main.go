package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/config"
	"adaptevo/internal/fitness"
	"adaptevo/internal/ga"
	"adaptevo/internal/logging"
	"adaptevo/internal/search"
	"adaptevo/internal/store"
)

var (
	configPath  string
	generations int
	workers     int
)

var rootCmd = &cobra.Command{
	Use:          "train",
	Short:        "Run the adaptive evolutionary search",
	Long:         `Evolve bit-vector candidates on the configured problem, logging every generation and saving the champion.`,
	SilenceUsage: true,
	RunE:         runTrain,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file (defaults are used when empty)")
	rootCmd.Flags().IntVar(&generations, "generations", 0, "override search.generations")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "override search.workers")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if cmd.Flags().Changed("generations") {
		cfg.Search.Generations = generations
	}
	if cmd.Flags().Changed("workers") {
		cfg.Search.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewSlog(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	intFit, realFit, err := search.Fitness(cfg)
	if err != nil {
		return fmt.Errorf("failed to build fitness: %w", err)
	}
	if intFit != nil {
		return train(ctx, cfg, intFit, log)
	}
	return train(ctx, cfg, realFit, log)
}

func train[F fitness.Value](ctx context.Context, cfg *config.Config, f fitness.Function[*bitvec.Vector, F], log *slog.Logger) error {
	tracker := ga.NewProgressTracker[*bitvec.Vector, F]()
	engine, err := search.NewBitEngine(cfg, f, tracker)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	fmt.Printf("Adaptive GA - Problem: %s (%d bits)\n", cfg.Problem.Name, cfg.Problem.Bits)
	fmt.Printf("Population: %d, Elites: %d (%s), Selection: %s, Crossover: %s\n",
		cfg.GA.Population, cfg.GA.Elites, cfg.GA.ElitePolicy, cfg.GA.Selection, cfg.GA.Crossover)
	fmt.Printf("Generations: %d, Workers: %d, Seed: %d\n", cfg.Search.Generations, cfg.Search.Workers, cfg.Seed)
	fmt.Println("---")

	var console io.Writer
	if cfg.Logging.EveryGenSummary {
		console = os.Stdout
	}
	logger, err := newLogger(cfg, console)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// history writes must survive an interrupt
	bg := context.WithoutCancel(ctx)
	var (
		db    *store.SQLite
		runID string
	)
	if cfg.Logging.SQLitePath != "" {
		db, err = store.Open(bg, cfg.Logging.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer db.Close()

		raw, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		runID, err = db.CreateRun(bg, store.RunInfo{
			Problem:     cfg.Problem.Name,
			Seed:        cfg.Seed,
			Population:  cfg.GA.Population,
			Workers:     cfg.Search.Workers,
			Generations: cfg.Search.Generations,
			Config:      string(raw),
		})
		if err != nil {
			return err
		}
		log.Info("run created", "run_id", runID, "db", db.Path())
	}

	observe := func(p search.Progress[*bitvec.Vector, F]) {
		s := logging.Summarize(p.Generation, p.Worker, p.Evaluations, p.Fitness.Float64s(), float64(p.BestFitness), p.Controls)
		if err := logger.LogGeneration(s); err != nil {
			log.Warn("failed to log generation", "generation", s.Generation, "worker", s.Worker, "error", err)
		}
		if db != nil {
			if err := db.SaveGeneration(bg, runID, s); err != nil {
				log.Warn("failed to store generation", "generation", s.Generation, "worker", s.Worker, "error", err)
			}
		}
		log.Debug("generation", "worker", s.Worker, "generation", s.Generation, "best", s.BestFitness, "mean", s.MeanFitness)
	}

	results, err := search.RunParallel(ctx, engine, cfg.Search.Workers, cfg.Search.Generations, observe)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("search failed: %w", err)
		}
		log.Warn("search interrupted")
	}

	evaluations := 0
	for _, r := range results {
		evaluations += r.Evaluations
		log.Info("worker finished", "worker", r.Worker, "generations", r.Generations,
			"evaluations", r.Evaluations, "best", float64(r.BestFitness), "elapsed", r.Elapsed)
	}

	best, value, ok := tracker.Best()
	if !ok {
		return errors.New("no candidate was evaluated")
	}
	generation := 0
	if r, found := search.Best(results); found {
		generation = r.Generations
	}

	if err := logging.SaveChampion(cfg.Logging.ChampionPath, logging.Champion[*bitvec.Vector]{
		RunID:       runID,
		Problem:     cfg.Problem.Name,
		Generation:  generation,
		Evaluations: evaluations,
		Fitness:     float64(value),
		Candidate:   best,
	}); err != nil {
		log.Warn("failed to save champion", "path", cfg.Logging.ChampionPath, "error", err)
	}

	if db != nil {
		if err := db.FinishRun(bg, runID, float64(value), evaluations); err != nil {
			log.Warn("failed to finish run", "run_id", runID, "error", err)
		}
	}

	fmt.Println("---")
	fmt.Printf("Best fitness: %v after %d evaluations (%d improvements, found after %s)\n",
		value, evaluations, tracker.Improvements(), tracker.Elapsed())
	fmt.Printf("Champion: %s\n", best)
	fmt.Printf("Saved to: %s\n", cfg.Logging.ChampionPath)
	return nil
}

func newLogger(cfg *config.Config, console io.Writer) (*logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath, console)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(); err != nil {
		return nil, err
	}
	return logger, nil
}
