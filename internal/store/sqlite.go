package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptevo/internal/logging"

	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotOpen is returned by every call on a closed store.
var ErrNotOpen = errors.New("store is not open")

// RunInfo describes one training run.
type RunInfo struct {
	ID          string
	Problem     string
	Seed        uint64
	Population  int
	Workers     int
	Generations int
	Config      string
	StartedAt   time.Time
	FinishedAt  time.Time
	BestFitness float64
	Evaluations int
	Finished    bool
}

// SQLite keeps run history in a SQLite database.
type SQLite struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; workers share the handle
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{path: path, db: db}, nil
}

// CreateRun records the start of a run and returns its id. A missing ID
// or StartedAt is filled in.
func (s *SQLite) CreateRun(ctx context.Context, run RunInfo) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, problem, seed, population, workers, generations, config, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Problem, strconv.FormatUint(run.Seed, 10), run.Population, run.Workers,
		run.Generations, run.Config, run.StartedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return run.ID, nil
}

// SaveGeneration stores one worker's generation summary.
func (s *SQLite) SaveGeneration(ctx context.Context, runID string, g logging.GenerationSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, worker, generation, evaluations, best_fitness, mean_fitness, min_fitness,
			std_fitness, best_ever, mean_crossover, mean_mutation, mean_strength
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, worker, generation) DO UPDATE SET
			evaluations = excluded.evaluations,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			min_fitness = excluded.min_fitness,
			std_fitness = excluded.std_fitness,
			best_ever = excluded.best_ever,
			mean_crossover = excluded.mean_crossover,
			mean_mutation = excluded.mean_mutation,
			mean_strength = excluded.mean_strength
	`, runID, g.Worker, g.Generation, g.Evaluations, g.BestFitness, g.MeanFitness, g.MinFitness,
		g.StdFitness, g.BestEver, g.MeanCrossover, g.MeanMutation, g.MeanStrength)
	if err != nil {
		return fmt.Errorf("save generation %d of run %s: %w", g.Generation, runID, err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *SQLite) FinishRun(ctx context.Context, runID string, bestFitness float64, evaluations int) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, best_fitness = ?, evaluations = ?
		WHERE id = ?
	`, time.Now().UTC().Format(timeLayout), bestFitness, evaluations, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// Runs lists every run, newest first.
func (s *SQLite) Runs(ctx context.Context) ([]RunInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, problem, seed, population, workers, generations, config, started_at,
			finished_at, best_fitness, evaluations
		FROM runs
		ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			run        RunInfo
			seed       string
			startedAt  string
			finishedAt sql.NullString
			best       sql.NullFloat64
			evals      sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Problem, &seed, &run.Population, &run.Workers,
			&run.Generations, &run.Config, &startedAt, &finishedAt, &best, &evals); err != nil {
			return nil, err
		}
		if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("decode seed of run %s: %w", run.ID, err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("decode start of run %s: %w", run.ID, err)
		}
		if finishedAt.Valid {
			if run.FinishedAt, err = time.Parse(timeLayout, finishedAt.String); err != nil {
				return nil, fmt.Errorf("decode finish of run %s: %w", run.ID, err)
			}
			run.Finished = true
		}
		run.BestFitness = best.Float64
		run.Evaluations = int(evals.Int64)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Generations returns the stored summaries of a run ordered by worker and
// generation.
func (s *SQLite) Generations(ctx context.Context, runID string) ([]logging.GenerationSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT worker, generation, evaluations, best_fitness, mean_fitness, min_fitness,
			std_fitness, best_ever, mean_crossover, mean_mutation, mean_strength
		FROM generations
		WHERE run_id = ?
		ORDER BY worker, generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []logging.GenerationSummary
	for rows.Next() {
		var g logging.GenerationSummary
		if err := rows.Scan(&g.Worker, &g.Generation, &g.Evaluations, &g.BestFitness, &g.MeanFitness,
			&g.MinFitness, &g.StdFitness, &g.BestEver, &g.MeanCrossover, &g.MeanMutation, &g.MeanStrength); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLite) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			problem TEXT NOT NULL,
			seed TEXT NOT NULL,
			population INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			generations INTEGER NOT NULL,
			config TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			best_fitness REAL,
			evaluations INTEGER
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			worker INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			evaluations INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			min_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			best_ever REAL NOT NULL,
			mean_crossover REAL NOT NULL,
			mean_mutation REAL NOT NULL,
			mean_strength REAL NOT NULL,
			PRIMARY KEY (run_id, worker, generation)
		);
	`)
	return err
}

// Path returns the database file.
func (s *SQLite) Path() string {
	return s.path
}
