// Package main lists the unconsumed records a vault database holds.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/commercialpaper/internal/platform/config"

	vaultqcmd "github.com/louisbranch/commercialpaper/internal/cmd/vaultq"
)

func main() {
	cfg, err := vaultqcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	config.ExitOnError(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.ExitOnError(vaultqcmd.Run(ctx, cfg))
}
