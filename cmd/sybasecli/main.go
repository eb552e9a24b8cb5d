package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters"
	"github.com/ruslano69/tdtp-sybase/pkg/adapters/sybase"
)

const (
	AppName = "sybasecli"
	Version = "1.0.0"
)

func main() {
	ctx := context.Background()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Parse flags
	flags := ParseFlags()

	if *flags.Version {
		fmt.Printf("%s version %s\n", AppName, Version)
		return
	}

	// Load configuration
	config, err := LoadConfig(*flags.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	queryLog, err := NewQueryLog(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up query log")
	}
	defer queryLog.Close()

	adapter := sybase.New(
		sybase.WithLogger(log.Logger.With().Str("component", "sybase").Logger()),
		sybase.WithQueryLog(queryLog),
		sybase.WithTablePrefix(config.Database.TablePrefix),
		sybase.WithConnectRetry(config.Database.ConnectRetry.Policy()),
	)

	app := &App{
		adapter: adapter,
		out:     os.Stdout,
		pretend: *flags.Pretend,
	}

	// Compiling DDL and pretend runs do not touch the server
	offline := (*flags.DDL != "" && (!*flags.Apply || *flags.Pretend)) ||
		(*flags.Select != "" && *flags.Pretend)
	if !offline {
		if err := adapter.Connect(ctx, adapterConfig(config)); err != nil {
			log.Fatal().Err(err).Msg("failed to connect")
		}
		defer adapter.Close(ctx)
	}

	// Route commands
	var cmdErr error
	switch {
	case *flags.DDL != "":
		cmdErr = app.DDL(ctx, *flags.DDL, *flags.Apply)
	case *flags.Select != "":
		cmdErr = app.Select(ctx, *flags.Select, *flags.Where, *flags.Limit, *flags.Offset)
	case *flags.List:
		cmdErr = app.List(ctx)
	case *flags.Exists != "":
		cmdErr = app.Exists(ctx, *flags.Exists)
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s --config config.yaml [--ddl file | --select table | --list | --exists table]\n", AppName)
		os.Exit(2)
	}

	if cmdErr != nil {
		log.Error().Err(cmdErr).Msg("command failed")
		os.Exit(1)
	}
}

func adapterConfig(config *Config) adapters.Config {
	return adapters.Config{
		Type:               sybase.AdapterType,
		Driver:             config.Database.Driver,
		DSN:                config.Database.BuildDSN(),
		Timeout:            config.Database.TimeoutDuration(),
		MaxConns:           config.Database.MaxConns,
		LogLevel:           config.LogLevel,
		NativeTransactions: config.Database.Native,
	}
}
