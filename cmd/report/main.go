package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/logging"
	"adaptevo/internal/problem"
	"adaptevo/internal/store"
)

var (
	dbPath       string
	runID        string
	championPath string
	target       float64
)

var rootCmd = &cobra.Command{
	Use:          "report",
	Short:        "Show run history and the saved champion",
	Long:         `List stored runs, print the generation history of one run, or inspect a saved champion.`,
	SilenceUsage: true,
	RunE:         runReport,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "", "path to the run history database")
	rootCmd.Flags().StringVar(&runID, "run", "", "run id whose generations are printed")
	rootCmd.Flags().StringVar(&championPath, "champion", "", "path to a champion JSON file")
	rootCmd.Flags().Float64Var(&target, "target", 0.5, "target value used to re-score target champions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	if dbPath == "" && championPath == "" {
		return errors.New("nothing to report: pass --db and/or --champion")
	}
	out := cmd.OutOrStdout()

	if dbPath != "" {
		db, err := store.Open(cmd.Context(), dbPath)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer db.Close()

		if runID != "" {
			if err := printGenerations(cmd.Context(), out, db, runID); err != nil {
				return err
			}
		} else if err := printRuns(cmd.Context(), out, db); err != nil {
			return err
		}
	}

	if championPath != "" {
		return printChampion(out, championPath)
	}
	return nil
}

func printRuns(ctx context.Context, out io.Writer, db *store.SQLite) error {
	runs, err := db.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tPROBLEM\tPOP\tWORKERS\tGENS\tSTARTED\tBEST\tEVALS")
	for _, r := range runs {
		best, evals := "-", "-"
		if r.Finished {
			best = fmt.Sprintf("%.4f", r.BestFitness)
			evals = fmt.Sprintf("%d", r.Evaluations)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.ID, r.Problem, r.Population, r.Workers, r.Generations,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), best, evals)
	}
	return w.Flush()
}

func printGenerations(ctx context.Context, out io.Writer, db *store.SQLite, id string) error {
	gens, err := db.Generations(ctx, id)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		return fmt.Errorf("no generations stored for run %s", id)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "WORKER\tGEN\tEVALS\tBEST\tMEAN\tSTD\tEVER\tPC\tPM\tSTRENGTH\t")
	for _, g := range gens {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.3f\t%.3f\t%.4f\t\n",
			g.Worker, g.Generation, g.Evaluations, g.BestFitness, g.MeanFitness, g.StdFitness,
			g.BestEver, g.MeanCrossover, g.MeanMutation, g.MeanStrength)
	}
	return w.Flush()
}

func printChampion(out io.Writer, path string) error {
	champion, err := logging.LoadChampion[*bitvec.Vector](path)
	if err != nil {
		return fmt.Errorf("failed to load champion: %w", err)
	}
	if champion.Candidate == nil {
		return fmt.Errorf("champion %s has no candidate", path)
	}

	v := champion.Candidate
	ctl := v.Control()
	fmt.Fprintf(out, "Champion of %s", champion.Problem)
	if champion.RunID != "" {
		fmt.Fprintf(out, " (run %s)", champion.RunID)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  fitness:     %v\n", champion.Fitness)
	fmt.Fprintf(out, "  generation:  %d\n", champion.Generation)
	fmt.Fprintf(out, "  evaluations: %d\n", champion.Evaluations)
	fmt.Fprintf(out, "  bits:        %s (%d ones of %d)\n", v, v.Ones(), v.Len())
	fmt.Fprintf(out, "  control:     pc=%.3f pm=%.3f strength=%.4f\n", ctl.Crossover, ctl.Mutation, ctl.Strength)

	if problem.IsReal(champion.Problem) {
		p, err := problem.Real(champion.Problem, target)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  cost:        %.6f (fraction %.6f, target %.6f)\n", p.Cost(v), v.Fraction(), target)
		return nil
	}
	p, err := problem.Int(champion.Problem)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  cost:        %d (min %d)\n", p.Cost(v), p.MinCost())
	return nil
}
