// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli"
	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/commands"
)

func main() {
	if err := run(); err != nil {
		code, printMessage := cli.ExitStatus(err)
		// Commands that print their own output (like doctor) return an
		// ExitError. Don't print a redundant "error:" line for those.
		if printMessage {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if os.Getenv("PRTK_PKG_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level)

	return commands.Root(commands.DefaultEnvironment()).Execute(ctx, os.Args[1:], logger)
}
