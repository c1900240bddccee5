package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"adaptevo/internal/ga"
)

// Logger handles all training output. It is safe for concurrent workers.
type Logger struct {
	mu          sync.Mutex
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	console     io.Writer
	initialized bool
}

// NewLogger creates a new logger. Empty paths disable the matching output.
func NewLogger(csvPath, jsonPath string, console io.Writer) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  console,
	}

	// Ensure directories exist
	for _, path := range []string{csvPath, jsonPath} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Init opens the log files and writes the CSV header
func (l *Logger) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.csvPath != "" {
		l.csvFile, err = os.Create(l.csvPath)
		if err != nil {
			return err
		}
		l.csvWriter = csv.NewWriter(l.csvFile)

		header := []string{
			"generation", "worker", "evaluations", "best_fitness", "mean_fitness",
			"min_fitness", "std_fitness", "best_ever", "mean_crossover", "mean_mutation", "mean_strength",
		}
		if err := l.csvWriter.Write(header); err != nil {
			return err
		}
	}

	if l.jsonPath != "" {
		l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
	}

	l.initialized = true
	return nil
}

// Close flushes and closes all log files
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	if l.csvWriter != nil {
		l.csvWriter.Flush()
		firstErr = l.csvWriter.Error()
	}
	if l.csvFile != nil {
		if err := l.csvFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.jsonFile != nil {
		if err := l.jsonFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.initialized = false
	return firstErr
}

// GenerationSummary holds per-generation statistics of one worker
type GenerationSummary struct {
	Generation    int     `json:"generation"`
	Worker        int     `json:"worker"`
	Evaluations   int     `json:"evaluations"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	MinFitness    float64 `json:"min_fitness"`
	StdFitness    float64 `json:"std_fitness"`
	BestEver      float64 `json:"best_ever"`
	MeanCrossover float64 `json:"mean_crossover"`
	MeanMutation  float64 `json:"mean_mutation"`
	MeanStrength  float64 `json:"mean_strength"`
}

// Summarize computes the statistics of one generation. values holds the
// fitness of every slot; controls the parameters of the mutable slots.
func Summarize(gen, worker, evaluations int, values []float64, bestEver float64, controls []ga.Control) GenerationSummary {
	s := GenerationSummary{
		Generation:  gen,
		Worker:      worker,
		Evaluations: evaluations,
		BestEver:    bestEver,
	}
	if len(values) > 0 {
		s.BestFitness = floats.Max(values)
		s.MinFitness = floats.Min(values)
		s.MeanFitness, s.StdFitness = stat.PopMeanStdDev(values, nil)
	}
	if len(controls) > 0 {
		cross := make([]float64, len(controls))
		mut := make([]float64, len(controls))
		strength := make([]float64, len(controls))
		for i, c := range controls {
			cross[i], mut[i], strength[i] = c.Crossover, c.Mutation, c.Strength
		}
		s.MeanCrossover = stat.Mean(cross, nil)
		s.MeanMutation = stat.Mean(mut, nil)
		s.MeanStrength = stat.Mean(strength, nil)
	}
	return s
}

// LogGeneration writes a summary to every enabled output
func (l *Logger) LogGeneration(s GenerationSummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return nil
	}

	if l.csvWriter != nil {
		row := []string{
			strconv.Itoa(s.Generation),
			strconv.Itoa(s.Worker),
			strconv.Itoa(s.Evaluations),
			fmt.Sprintf("%.4f", s.BestFitness),
			fmt.Sprintf("%.4f", s.MeanFitness),
			fmt.Sprintf("%.4f", s.MinFitness),
			fmt.Sprintf("%.4f", s.StdFitness),
			fmt.Sprintf("%.4f", s.BestEver),
			fmt.Sprintf("%.4f", s.MeanCrossover),
			fmt.Sprintf("%.4f", s.MeanMutation),
			fmt.Sprintf("%.4f", s.MeanStrength),
		}
		if err := l.csvWriter.Write(row); err != nil {
			return err
		}
		l.csvWriter.Flush()
	}

	if l.jsonFile != nil {
		line, err := json.Marshal(s)
		if err != nil {
			return err
		}
		if _, err := l.jsonFile.Write(append(line, '\n')); err != nil {
			return err
		}
	}

	if l.console != nil {
		fmt.Fprintf(l.console, "Gen %4d | W%d | Best: %10.4f | Mean: %10.4f | Std: %8.4f | Ever: %10.4f | pc=%.2f pm=%.3f s=%.3f\n",
			s.Generation, s.Worker, s.BestFitness, s.MeanFitness, s.StdFitness, s.BestEver,
			s.MeanCrossover, s.MeanMutation, s.MeanStrength)
	}
	return nil
}

// Champion is the best candidate of a run as stored on disk
type Champion[C any] struct {
	RunID       string  `json:"run_id,omitempty"`
	Problem     string  `json:"problem"`
	Generation  int     `json:"generation"`
	Evaluations int     `json:"evaluations"`
	Fitness     float64 `json:"fitness"`
	Candidate   C       `json:"candidate"`
}

// SaveChampion saves the champion to a file
func SaveChampion[C any](path string, champion Champion[C]) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(champion, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadChampion loads a champion from a file
func LoadChampion[C any](path string) (Champion[C], error) {
	var saved Champion[C]
	data, err := os.ReadFile(path)
	if err != nil {
		return saved, err
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		return saved, fmt.Errorf("parse champion %s: %w", path, err)
	}
	return saved, nil
}
