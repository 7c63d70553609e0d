package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"syzygos/internal/config"
	"syzygos/internal/storage"
	"syzygos/pkg/syzygos"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "population":
		return runPopulation(ctx, args[1:])
	case "trials":
		return runTrials(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type storeFlags struct {
	kind *string
	path *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind: fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		path: fs.String("db-path", "syzygos.db", "sqlite database path"),
	}
}

func openClient(ctx context.Context, flags storeFlags) (*syzygos.Client, error) {
	return syzygos.Open(ctx, *flags.kind, *flags.path)
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	store := addStoreFlags(fs)
	configPath := fs.String("config", "", "INI configuration file (defaults apply when empty)")
	seed := fs.Int64("seed", 0, "override the run seed")
	maxBatches := fs.Int("max-batches", 0, "override the batch bound")
	verbose := fs.Bool("verbose", false, "log every trial and batch to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *maxBatches != 0 {
		cfg.Run.MaxBatches = *maxBatches
	}
	if *verbose {
		cfg.Run.Verbose = true
	}

	client, err := openClient(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("run=%s batches=%d evaluations=%d navigators=%d arenas=%d outcome=%s\n",
		summary.RunID, summary.Batches, summary.Evaluations, summary.Navigators, summary.Arenas, summary.Outcome)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	store := addStoreFlags(fs)
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  batches=%d evaluations=%d outcome=%s\n",
			run.ID, run.CreatedAtUTC, run.Batches, run.Evaluations, run.Outcome)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run")
	}

	client, err := openClient(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, ok, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no diagnostics for run %s", *runID)
	}
	for _, diag := range diagnostics {
		fmt.Printf("batch=%d evaluations=%d navigators=%d/%d arenas=%d/%d\n",
			diag.Batch, diag.Evaluations,
			diag.SideA.Admitted, diag.SideA.Produced,
			diag.SideB.Admitted, diag.SideB.Produced)
	}
	return nil
}

func runPopulation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run", "", "run id")
	side := fs.String("side", syzygos.SideNavigators, "population side: navigators|arenas")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("population requires -run")
	}

	client, err := openClient(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	snapshot, ok, err := client.Population(ctx, *runID, *side)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s snapshot for run %s", *side, *runID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}

func runTrials(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trials", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run", "", "run id")
	limit := fs.Int("limit", 50, "maximum trial records to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("trials requires -run")
	}

	client, err := openClient(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	trials, ok, err := client.Trials(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no trial log for run %s", *runID)
	}
	if *limit > 0 && len(trials) > *limit {
		trials = trials[:*limit]
	}
	for _, trial := range trials {
		capped := ""
		if trial.ResourceCapped {
			capped = " capped"
		}
		fmt.Printf("batch=%d side=%s candidate=%d opponent=%d success=%t objective=%.3f%s\n",
			trial.Batch, trial.Side, trial.CandidateID, trial.OpponentID, trial.Success, trial.Objective, capped)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: syzygosctl <run|runs|diagnostics|population|trials> [flags]", msg)
}
