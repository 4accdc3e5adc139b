// SPDX-License-Identifier: EPL-2.0

// Command modplay plays tracker modules.
//
//	modplay [play] [flags] [file]   interactive shell, or commands from stdin
//	modplay serve [flags] [file]    control daemon on a unix socket
//	modplay remote [flags] VERB...  send one command to a running daemon
//	modplay export -out f.wav file  render a module to a WAV file
//	modplay analyze [flags] file    print level meters for a module
//	modplay info file               print module metadata
//
// Every flag can be set through MODPLAY_<FLAG> in the environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/ik5/modpbx/internal/config"
)

type command func(ctx context.Context, cfg config.Config, log *slog.Logger) error

var commands = map[string]command{
	"play":    runPlay,
	"serve":   runServe,
	"remote":  runRemote,
	"export":  runExport,
	"analyze": runAnalyze,
	"info":    runInfo,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	name, rest := "play", args
	if len(args) > 0 {
		if _, ok := commands[args[0]]; ok {
			name, rest = args[0], args[1:]
		}
	}

	cfg, err := config.Load("modplay "+name, rest, os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		usage()
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "modplay:", err)
		return 2
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("starting", slog.String("command", name), slog.String("config", cfg.String()))

	if err := commands[name](ctx, cfg, log); err != nil {
		log.Error("command failed", slog.String("command", name), slog.Any("error", err))
		return 1
	}
	return 0
}

func usage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	slices.Sort(names)

	fmt.Fprintln(os.Stderr, "usage: modplay [command] [flags] [args]")
	fmt.Fprintln(os.Stderr, "commands:", names)
}
