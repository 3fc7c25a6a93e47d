// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davetashner/pkgquery/internal/config"
	"github.com/davetashner/pkgquery/internal/llm"
	pkglog "github.com/davetashner/pkgquery/internal/log"
	"github.com/davetashner/pkgquery/internal/normalize"
	"github.com/davetashner/pkgquery/internal/output"
	"github.com/davetashner/pkgquery/internal/prompt"
	"github.com/davetashner/pkgquery/internal/request"
	"github.com/davetashner/pkgquery/internal/schema"
)

// Run-specific flag values.
var (
	runBackend     string
	runModels      []string
	runParallel    int
	runInput       string
	runOutput      string
	runTemplate    string
	runRestriction int
	runTimeout     string
	runFormat      string
	runStrict      bool
	runDryRun      bool
)

// runCmd queries one or more models for every package in the input list.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Query models about every package in a package list",
	Long: `Send one prompt per package to each selected model and write the
normalized answers to a CSV file per model.

Settings come from built-in defaults, the global config, .pkgquery.yaml,
.env and the environment, in that order. Flags override all of them.

Examples:
  pkgquery run --model llama3:8b --input packages.csv
  pkgquery run -m gpt-4o -m gemini-2.5-flash --parallel 2 --format json
  pkgquery run --model llama3:8b --restriction 20 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runBackend, "backend", "b", "", "backend to query (default: guessed from each model name)")
	runCmd.Flags().StringArrayVarP(&runModels, "model", "m", nil, "model to query (repeatable)")
	runCmd.Flags().IntVarP(&runParallel, "parallel", "p", 1, "number of models queried concurrently")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "package list CSV (overrides base_package_list)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "result CSV path (single model only; overrides csv_file)")
	runCmd.Flags().StringVarP(&runTemplate, "template", "t", "", "query template file (overrides query_template_file)")
	runCmd.Flags().IntVar(&runRestriction, "restriction", 0, "stop after this many packages (0 = all)")
	runCmd.Flags().StringVar(&runTimeout, "timeout", "", "per-request timeout, e.g. 90s")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "also print a run report (json, markdown)")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "exit non-zero when any row is degraded")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "answer every prompt with a canned reply instead of a backend")
}

// runPlan is everything shared by the per-model runs.
type runPlan struct {
	cfg      *config.Config
	schema   *schema.Schema
	aliases  schema.Aliases
	registry *normalize.Registry
	now      time.Time
	dryRun   bool
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(".")
	if err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}

	plan, err := newRunPlan(cfg)
	if err != nil {
		return err
	}

	var formatter output.Formatter
	if runFormat != "" {
		formatter, err = output.GetFormatter(runFormat)
		if err != nil {
			return exitError(ExitInvalidArgs, "pkgquery: %v", err)
		}
	}

	reports := plan.runAll(cmd.Context(), runParallel)

	printRunSummary(cmd.ErrOrStderr(), reports)
	if formatter != nil {
		if err := formatter.Format(reports, cmd.OutOrStdout()); err != nil {
			return exitError(ExitTotalFailure, "pkgquery: write report (%v)", err)
		}
	}

	if code := computeExitCode(reports, runStrict); code != ExitOK {
		return exitError(code, "")
	}
	return nil
}

// applyRunFlags layers explicitly set flags over cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = runBackend
	}
	if len(runModels) > 0 {
		cfg.Models = append([]string(nil), runModels...)
	}
	if flags.Changed("input") {
		cfg.BasePackageList = runInput
	}
	if flags.Changed("template") {
		cfg.QueryTemplateFile = runTemplate
	}
	if flags.Changed("restriction") {
		cfg.QueryRestriction = runRestriction
	}
	if flags.Changed("timeout") {
		cfg.Timeout = runTimeout
	}
	if flags.Changed("output") {
		if len(cfg.Models) > 1 {
			return exitError(ExitInvalidArgs, "pkgquery: --output needs a single model (got %d)", len(cfg.Models))
		}
		cfg.CSVFile = runOutput
	}
	if runParallel < 1 {
		return exitError(ExitInvalidArgs, "pkgquery: --parallel must be at least 1 (got %d)", runParallel)
	}
	return nil
}

// newRunPlan checks everything that can be checked before any backend is
// contacted, so a bad setting fails the command rather than one run.
func newRunPlan(cfg *config.Config) (*runPlan, error) {
	if len(cfg.Models) == 0 {
		return nil, exitError(ExitInvalidArgs, "pkgquery: no model configured (use --model or set models in %s)", config.FileName)
	}
	if cfg.BasePackageList == "" {
		return nil, exitError(ExitInvalidArgs, "pkgquery: no package list configured (use --input or set base_package_list)")
	}

	s, err := cfg.Schema()
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	overrides, err := cfg.StrategyOverrides()
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "pkgquery: %v", err)
	}
	registry := normalize.NewRegistry(overrides)
	for _, m := range cfg.Models {
		if _, err := registry.StrategyFor(m); err != nil {
			return nil, exitError(ExitInvalidArgs, "pkgquery: %v (add it under strategies in %s)", err, config.FileName)
		}
	}
	if cfg.Backend != "" {
		if _, err := llm.ParseBackend(cfg.Backend); err != nil {
			return nil, exitError(ExitInvalidArgs, "pkgquery: %v", err)
		}
	}

	return &runPlan{
		cfg:      cfg,
		schema:   s,
		aliases:  cfg.AliasSet(),
		registry: registry,
		now:      time.Now(),
		dryRun:   runDryRun,
	}, nil
}

// runAll runs every configured model, at most parallel at a time. A failed
// run is recorded in its report and does not stop the others.
func (p *runPlan) runAll(ctx context.Context, parallel int) []output.Report {
	reports := make([]output.Report, len(p.cfg.Models))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, model := range p.cfg.Models {
		g.Go(func() error {
			reports[i] = p.runModel(ctx, model)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// backendFor returns the backend serving model.
func (p *runPlan) backendFor(model string) llm.Backend {
	if p.cfg.Backend != "" {
		b, _ := llm.ParseBackend(p.cfg.Backend)
		return b
	}
	return llm.GuessBackend(model)
}

// runModel performs one complete run for model and reports on it.
func (p *runPlan) runModel(ctx context.Context, model string) (rep output.Report) {
	backend := p.backendFor(model)
	rep = output.Report{
		RunID:   uuid.NewString(),
		Model:   model,
		Backend: string(backend),
		Input:   p.cfg.BasePackageList,
	}
	start := time.Now()
	defer func() { rep.Elapsed = time.Since(start) }()

	fail := func(err error) output.Report {
		rep.Error = err.Error()
		slog.Error("run aborted", "run", rep.RunID, "model", model, "error", err)
		return rep
	}

	paths, err := p.cfg.Paths(model, p.now)
	if err != nil {
		return fail(err)
	}
	rep.Output = paths.CSV

	logger, closer, err := pkglog.NewRunLogger(paths.ErrorLog, "run", rep.RunID, "model", model)
	if err != nil {
		return fail(err)
	}
	defer closer.Close() //nolint:errcheck // best-effort close on log file

	stats, skipped, err := p.execute(ctx, model, backend, paths, logger)
	rep.Processed = stats.Processed
	rep.Succeeded = stats.Succeeded
	rep.Degraded = stats.Degraded
	rep.DegradedPackages = stats.DegradedPackages
	rep.Skipped = skipped
	if err != nil {
		logger.Error("run aborted", "error", err)
		rep.Error = err.Error()
		return rep
	}

	logger.Info("run complete",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"degraded", stats.Degraded,
		"output", paths.CSV,
		"elapsed", stats.Elapsed.Round(time.Millisecond))
	return rep
}

// execute wires template, parser, backend, input and output together and
// runs the request manager. It returns the rows the writer had to skip.
func (p *runPlan) execute(ctx context.Context, model string, backend llm.Backend, paths config.Paths, logger *slog.Logger) (request.Stats, int, error) {
	tmpl, err := prompt.Load(paths.Template)
	if err != nil {
		return request.Stats{}, 0, err
	}
	if err := tmpl.Check(); err != nil {
		return request.Stats{}, 0, err
	}

	strategy, err := p.registry.StrategyFor(model)
	if err != nil {
		return request.Stats{}, 0, err
	}
	parser := normalize.NewParser(p.schema,
		normalize.WithAliases(p.aliases),
		normalize.WithStrategy(strategy))

	provider, err := p.provider(ctx, model, backend)
	if err != nil {
		return request.Stats{}, 0, err
	}

	backoff, err := p.cfg.BackoffDuration()
	if err != nil {
		return request.Stats{}, 0, err
	}

	in, err := cmdFS.Open(p.cfg.BasePackageList)
	if err != nil {
		return request.Stats{}, 0, fmt.Errorf("open package list: %w", err)
	}
	defer in.Close() //nolint:errcheck // best-effort close on input file

	w, err := output.Create(paths.CSV, p.schema.Attributes())
	if err != nil {
		return request.Stats{}, 0, err
	}
	w.Logger = logger

	mgr := request.New(provider, tmpl, parser, request.Options{
		RetryCount:       p.cfg.RetryCount,
		LogIterations:    p.cfg.LogIterations,
		QueryRestriction: p.cfg.QueryRestriction,
		BackoffBase:      backoff,
		Request: llm.Request{
			Model:     model,
			MaxTokens: p.cfg.MaxTokens,
		},
		Logger: logger,
	})

	stats, runErr := mgr.Run(ctx, in, w)
	closeErr := w.Close()
	skipped := w.Stats().Skipped
	if runErr != nil {
		return stats, skipped, runErr
	}
	if closeErr != nil {
		return stats, skipped, fmt.Errorf("close %s: %w", paths.CSV, closeErr)
	}
	return stats, skipped, nil
}

// provider builds the backend for model, or a canned one for dry runs.
func (p *runPlan) provider(ctx context.Context, model string, backend llm.Backend) (llm.Provider, error) {
	if p.dryRun {
		return llm.NewMockProvider(llm.MockResponse{Content: dryRunReply(p.schema)}), nil
	}

	timeout, err := p.cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	baseURL := p.cfg.BaseURL
	if backend == llm.BackendOllama && p.cfg.OllamaHost != "" {
		baseURL = p.cfg.OllamaHost
	}
	return llm.NewProvider(ctx, backend, llm.Options{
		Model:       model,
		APIKey:      p.cfg.APIKey(llm.APIKeyEnv(backend)),
		BaseURL:     baseURL,
		Timeout:     timeout,
		LocalBinary: p.cfg.LocalModelBinary,
		ModelDir:    p.cfg.LocalModelDir,
	})
}

// dryRunReply is a well-formed answer for every attribute of s.
func dryRunReply(s *schema.Schema) string {
	obj := make(map[string]string, s.Len())
	for _, a := range s.Required() {
		obj[a] = "dry run"
	}
	data, _ := json.Marshal(obj)
	return "```json\n" + string(data) + "\n```"
}

// computeExitCode maps run reports to a process exit code.
func computeExitCode(reports []output.Report, strict bool) int {
	degraded := false
	for _, r := range reports {
		if r.Error != "" {
			return ExitTotalFailure
		}
		if r.Degraded > 0 || r.Skipped > 0 {
			degraded = true
		}
	}
	if degraded && strict {
		return ExitPartialFailure
	}
	return ExitOK
}

// printRunSummary writes one colored line per run.
func printRunSummary(w io.Writer, reports []output.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, r := range reports {
		var status string
		switch {
		case r.Error != "":
			status = red.Sprint("aborted")
		case r.Degraded > 0 || r.Skipped > 0:
			status = yellow.Sprint("degraded")
		default:
			status = green.Sprint("ok")
		}
		_, _ = fmt.Fprintf(w, "%s %s: %d processed, %d succeeded, %d degraded (%s)\n",
			bold.Sprint(r.Model), status, r.Processed, r.Succeeded, r.Degraded,
			r.Elapsed.Round(time.Millisecond))
		if r.Output != "" && r.Error == "" {
			_, _ = fmt.Fprintf(w, "  -> %s\n", r.Output)
		}
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", red.Sprint(r.Error))
		}
	}
}
