package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/app"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/xpub"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Key   string `long:"key" env:"XPUB_SCAN_KEY" description:"extended public key (xpub, ypub, zpub, tpub, upub, vpub ...)" required:"true"`
	Limit int    `long:"limit" env:"XPUB_SCAN_LIMIT" description:"max address indexes per chain, negative is unlimited" default:"-1"`

	App app.Config `group:"resolver" env-namespace:"XPUB_SCAN"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("xpub scan failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	key, err := xpub.ParseKey(cfg.Key)
	if err != nil {
		return err
	}

	a, err := app.Build(ctx, cfg.App, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer a.Close()

	if key.Network.IsTest() != a.Network.IsTest() {
		return fmt.Errorf("%s key does not belong to %s", key.Prefix, a.Network)
	}

	report, err := a.Scanner.Details(ctx, key, cfg.Limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
