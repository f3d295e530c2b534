package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dbtoolkit/quickquery/internal/attach"
	"github.com/dbtoolkit/quickquery/internal/builder"
	"github.com/dbtoolkit/quickquery/internal/coerce"
	"github.com/dbtoolkit/quickquery/internal/config"
	"github.com/dbtoolkit/quickquery/internal/coordinator"
	"github.com/dbtoolkit/quickquery/internal/generate"
	"github.com/dbtoolkit/quickquery/internal/history"
	"github.com/dbtoolkit/quickquery/internal/logging"
	"github.com/dbtoolkit/quickquery/internal/progress"
	"github.com/dbtoolkit/quickquery/internal/schema"
	"github.com/dbtoolkit/quickquery/internal/splitter"
	"github.com/dbtoolkit/quickquery/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    version.Name,
		Usage:   version.Description,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate an Oracle SQL script from a schema and data grid",
				Action: runGenerate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Usage:    "Path to the schema definition CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Usage:    "Path to the data grid CSV (header row first)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "table",
						Usage:    "Qualified target table name (schema.table)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Value: "insert",
						Usage: "Statement kind: insert, merge, or update",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (default: stdout)",
					},
					&cli.StringFlag{
						Name:  "attachments-dir",
						Usage: "Directory searched for attachment files named by cell values",
					},
				},
			},
			{
				Name:   "split",
				Usage:  "Split a generated script into bounded chunk files",
				Action: runSplit,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Usage:    "Path to the SQL script to split",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "by",
						Usage: "Chunk limit mode: size (bytes) or count (statements)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Chunk limit in bytes or statements, per --by",
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Value: ".",
						Usage: "Directory for chunk files",
					},
				},
			},
			{
				Name:   "check-duplicates",
				Usage:  "Report duplicate primary key values in a data grid",
				Action: runCheckDuplicates,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Usage:    "Path to the schema definition CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Usage:    "Path to the data grid CSV (header row first)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "table",
						Usage:    "Qualified target table name (schema.table)",
						Required: true,
					},
				},
			},
			{
				Name:   "history",
				Usage:  "List recent generation and split runs",
				Action: showHistory,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum runs to list",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override the file.
	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(parsed)

	format := cfg.Logging.Format
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	logging.SetFormat(format)

	return cfg, nil
}

func loadInputs(c *cli.Context) (schema.Schema, schema.Grid, error) {
	rows, err := schema.LoadTableCSV(c.String("schema"))
	if err != nil {
		return schema.Schema{}, schema.Grid{}, fmt.Errorf("failed to load schema: %w", err)
	}
	s, err := schema.ParseTable(rows)
	if err != nil {
		return schema.Schema{}, schema.Grid{}, err
	}
	g, err := schema.LoadGridCSV(c.String("data"))
	if err != nil {
		return schema.Schema{}, schema.Grid{}, fmt.Errorf("failed to load data: %w", err)
	}
	return s, g, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	return ctx, cancel
}

func runGenerate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	s, g, err := loadInputs(c)
	if err != nil {
		return err
	}

	kind, err := coerce.ParseStatementKind(c.String("kind"))
	if err != nil {
		return err
	}

	req := generate.Request{
		Table:  c.String("table"),
		Kind:   kind,
		Schema: s,
		Grid:   g,
	}

	attachDir := cfg.Attachments.Dir
	if c.IsSet("attachments-dir") {
		attachDir = c.String("attachments-dir")
	}
	if attachDir != "" {
		resolver, err := attach.NewResolver(attachDir)
		if err != nil {
			return err
		}
		req.Attachments = resolver.Resolve
	}

	ctx, cancel := signalContext()
	defer cancel()

	coord := coordinator.New(coordinator.Config{
		RowThreshold:  cfg.Generation.RowThreshold,
		ByteThreshold: cfg.Generation.ByteThreshold,
	})

	started := time.Now()
	task, err := coord.Generate(ctx, req)
	if err != nil {
		return err
	}
	var tracker *progress.Tracker
	barDone := make(chan struct{})
	if task.Background() {
		logging.Info("large request (%d rows), generating in the background", len(g.Rows))
		tracker = progress.New("Generating")
		go func() {
			defer close(barDone)
			for p := range task.Progress() {
				tracker.Update(p.Percent, p.Phase)
			}
		}()
	}

	outcome, err := task.Wait()
	result := outcome.Generate
	statements := len(splitter.Tokenize(result.SQL))
	// On cancellation the worker may still be draining; skip the bar rather
	// than block exit on it.
	if tracker != nil && err == nil {
		<-barDone
		tracker.Finish(statements)
	}

	// The duplicate report is advisory and survives generation failure.
	if result.Duplicates.HasDuplicates {
		logging.Warn("%s", result.Duplicates.Warning)
	}

	recordRun(cfg, history.Entry{
		Command:    "generate",
		Table:      c.String("table"),
		Kind:       kind.String(),
		Rows:       len(g.Rows),
		Statements: statements,
		Bytes:      len(result.SQL),
		Duration:   time.Since(started),
		Status:     runStatus(err),
		Error:      errString(err),
	})
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(result.SQL), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logging.Info("wrote %d bytes to %s", len(result.SQL), out)
		return nil
	}
	fmt.Print(result.SQL)
	return nil
}

func runSplit(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.String("in"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	mode := splitter.BySize
	limit := cfg.Split.SizeLimit
	modeName := cfg.Split.Mode
	if c.IsSet("by") {
		modeName = c.String("by")
	}
	switch modeName {
	case "size":
	case "count":
		mode = splitter.ByCount
		limit = cfg.Split.MaxCount
	default:
		return fmt.Errorf("--by must be \"size\" or \"count\", got %q", modeName)
	}
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}

	ctx, cancel := signalContext()
	defer cancel()

	coord := coordinator.New(coordinator.Config{
		RowThreshold:  cfg.Generation.RowThreshold,
		ByteThreshold: cfg.Generation.ByteThreshold,
	})

	started := time.Now()
	task, err := coord.Split(ctx, string(data), mode, limit)
	if err != nil {
		return err
	}
	if task.Background() {
		logging.Info("large script (%d bytes), splitting in the background", len(data))
	}

	outcome, err := task.Wait()
	result := outcome.Split

	recordRun(cfg, history.Entry{
		Command:    "split",
		Statements: result.TotalStatements,
		Bytes:      len(data),
		Duration:   time.Since(started),
		Status:     runStatus(err),
		Error:      errString(err),
	})
	if err != nil {
		return err
	}

	base := filepath.Base(c.String("in"))
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	for i, chunk := range result.Chunks {
		name := fmt.Sprintf("%s_%03d%s", stem, i+1, ext)
		path := filepath.Join(c.String("out-dir"), name)
		if err := os.WriteFile(path, []byte(chunk.Text()), 0o644); err != nil {
			return fmt.Errorf("failed to write chunk %s: %w", name, err)
		}
		if chunk.Oversized {
			logging.Warn("chunk %s exceeds the limit: a single statement is %d bytes", name, chunk.ByteSize)
		}
	}
	logging.Info("split %d statements into %d chunks", result.TotalStatements, len(result.Chunks))
	return nil
}

func runCheckDuplicates(c *cli.Context) error {
	if _, err := loadConfig(c); err != nil {
		return err
	}

	s, g, err := loadInputs(c)
	if err != nil {
		return err
	}

	table := c.String("table")
	report := generate.DetectDuplicatePrimaryKeys(table, s, g)
	if !report.HasDuplicates {
		fmt.Printf("No duplicate primary key values in %d rows.\n", len(g.Rows))
		return nil
	}

	fmt.Println(report.Warning)
	for _, d := range report.Duplicates {
		fmt.Printf("  key %q: rows %v\n", d.Key, d.Rows)
	}
	pks := builder.ResolvePrimaryKeys(table, s)
	fmt.Printf("Checked key: %v\n", pks)
	return nil
}

func showHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-20s  %-9s  %-24s  %-7s  %6s  %10s  %8s  %s\n",
		"STARTED", "COMMAND", "TABLE", "KIND", "ROWS", "STATEMENTS", "STATUS", "ERROR")
	for _, e := range entries {
		fmt.Printf("%-20s  %-9s  %-24s  %-7s  %6d  %10d  %8s  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Command, e.Table, e.Kind, e.Rows, e.Statements, e.Status, e.Error)
	}
	return nil
}

func recordRun(cfg *config.Config, e history.Entry) {
	if !cfg.HistoryEnabled() {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logging.Debug("history unavailable: %v", err)
		return
	}
	defer store.Close()
	if err := store.Record(e); err != nil {
		logging.Debug("failed to record run: %v", err)
	}
}

func runStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
