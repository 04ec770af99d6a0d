// Package main contains the cli implementation of the tool. It uses
// the cobra package for cli tool implementation.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vectordb/internal/config"
	"vectordb/internal/db"
	"vectordb/internal/dataset"
	"vectordb/internal/expr"
	"vectordb/internal/format"
	"vectordb/internal/plan"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vectordb",
		Short: "In-memory analytical database engine",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML configuration file")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(dbsCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func newLogger(level string) *zap.SugaredLogger {
	var zl zapcore.Level
	if err := zl.Set(level); err != nil {
		zl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func initCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed a storage directory for the default database",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "storage directory to create (defaults to the configured storage_dir)")
	return cmd
}

func runInit(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.StorageDir
	}
	if dir == "" {
		return fmt.Errorf("init: no storage directory given (pass --dir or set storage_dir)")
	}
	defaultDir := filepath.Join(dir, db.DefaultDatabase)
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return fmt.Errorf("init: creating %q: %w", defaultDir, err)
	}
	fmt.Printf("initialized storage directory %s\n", dir)
	return nil
}

func dbsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dbs",
		Short: "List databases discovered at startup",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDbs()
		},
	}
}

func runDbs() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck
	engine := db.NewEngine(logger)
	engine.SetIndexAutoBuildMinRows(cfg.IndexAutoBuildMinRows)
	if cfg.StorageDir != "" {
		if err := engine.RecoverEmptyDatabases(cfg.StorageDir); err != nil {
			return fmt.Errorf("dbs: %w", err)
		}
	}
	for _, name := range engine.ListDatabases() {
		fmt.Println(name)
	}
	return nil
}

func runCmd() *cobra.Command {
	var formatName string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a built-in demonstration plan against a fresh engine",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDemo(formatName)
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "table", "result format: table or json")
	return cmd
}

// runDemo builds a tiny sales dataset, runs a grouped-AVG query
// through the engine's logical/physical plan pipeline, and prints the
// result. It exists so the engine façade has a reachable, testable
// entry point; DSL parsing is out of scope for this implementation.
func runDemo(formatName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck
	engine := db.NewEngine(logger)
	engine.SetIndexAutoBuildMinRows(cfg.IndexAutoBuildMinRows)

	sch := schema.MustNew([]schema.Field{
		{Name: "region", Type: value.TypeString()},
		{Name: "amount", Type: value.TypeInt()},
	})
	if err := engine.CreateDataset("sales", sch); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	rows := []struct {
		region string
		amount int64
	}{{"N", 100}, {"S", 200}, {"N", 150}, {"S", 250}}
	for _, r := range rows {
		tup, err := dataset.NewTuple(sch, []value.Value{value.String(r.region), value.Int(r.amount)})
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if err := engine.InsertRow("sales", tup); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	query := &plan.Aggregate{
		Input:     &plan.Scan{DatasetName: "sales", DatasetSch: sch},
		GroupExpr: []expr.Expr{expr.Column("region")},
		AggrExpr:  []expr.Expr{expr.Aggregate(expr.Avg, expr.Column("amount"))},
	}
	result, err := engine.ExecutePlan(query)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	formatter, err := format.New(formatName)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	out, err := formatter.FormatRows(result.Schema, result.Rows)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	fmt.Print(out)
	return nil
}
