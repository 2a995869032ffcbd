// Package main walks the commercial paper lifecycle against a local vault.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/commercialpaper/internal/platform/config"

	tradedemocmd "github.com/louisbranch/commercialpaper/internal/cmd/tradedemo"
)

func main() {
	cfg, err := tradedemocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitOnError(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ExitOnError(tradedemocmd.Run(ctx, cfg))
}
