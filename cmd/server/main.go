// Package main - Entry point for the basket-rules recommendation server
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"basket-rules/adapters/csv"
	"basket-rules/adapters/storage"
	"basket-rules/api"
	"basket-rules/core/engine"
	"basket-rules/internal/config"
	"basket-rules/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgFile := flag.String("config", "", "config file (.json or .hcl)")
	addr := flag.String("addr", "", "server address (default server.addr)")
	input := flag.String("input", "", "transactions CSV to mine at startup")
	snapshot := flag.String("snapshot", "", "serve this stored snapshot instead of mining")
	flag.Parse()

	if err := run(*cfgFile, *addr, *input, *snapshot); err != nil {
		logging.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfgFile, addr, input, snapshot string) error {
	config.LoadDotEnv()
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if input != "" {
		cfg.Input.Path = input
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ruleSet, err := loadRuleSet(ctx, cfg, snapshot)
	if err != nil {
		return err
	}

	logging.Info("Starting basket-rules server",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("rule_set", ruleSet.ID),
		zap.Int("rules", len(ruleSet.Rules)))

	return api.NewServer(version, ruleSet, cfg.Recommend.Count).ListenAndServe(ctx, cfg.Server.Addr)
}

// loadRuleSet mines input.path when set, otherwise serves a stored snapshot.
func loadRuleSet(ctx context.Context, cfg *config.Config, snapshot string) (*api.RuleSet, error) {
	if cfg.Input.Path != "" && snapshot == "" {
		ecfg, err := cfg.EngineConfig()
		if err != nil {
			return nil, err
		}
		result, err := engine.New(ecfg).Run(ctx, csv.NewFileSource(cfg.Input.Path, cfg.CSVOptions()))
		if err != nil {
			return nil, err
		}
		return api.RuleSetFromResult(result), nil
	}

	store, err := storage.NewSQLiteStore(ctx, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var snap *storage.Snapshot
	if snapshot != "" {
		snap, err = store.Get(ctx, snapshot)
	} else {
		snap, err = store.Latest(ctx)
	}
	if err != nil {
		return nil, err
	}
	return api.RuleSetFromSnapshot(snap), nil
}
