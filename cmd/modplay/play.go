// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/ik5/modpbx/control"
	"github.com/ik5/modpbx/internal/config"
	"github.com/ik5/modpbx/player"
	"github.com/ik5/modpbx/render"
)

func runPlay(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	p, release, err := newPlayer(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("release failed", slog.Any("error", err))
		}
	}()

	srv := control.NewServer(p, log)

	if len(cfg.Args) > 0 {
		if err := p.LoadFromPath(cfg.Args[0]); err != nil {
			return err
		}
		if err := p.Play(); err != nil {
			return err
		}
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return shell(ctx, cfg, srv, p)
	}
	return script(ctx, os.Stdin, os.Stdout, srv, p)
}

// shell runs an interactive prompt with completion and history.
func shell(ctx context.Context, cfg config.Config, srv *control.Server, p player.ModPlayer) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(control.Verbs()))
	for _, v := range control.Verbs() {
		if v == "LOAD" {
			items = append(items, readline.PcItem(v, readline.PcItemDynamic(listModules)))
			continue
		}
		items = append(items, readline.PcItem(v))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "modplay> ",
		HistoryFile:     cfg.History,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "QUIT",
	})
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer rl.Close()

	states, unsubscribe := p.StateChanges().Subscribe()
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				rl.Close()
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				fmt.Fprintf(rl.Stdout(), "[%s] %s\n", st, player.FormatTime(p.PositionSeconds()))
			}
		}
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			// io.EOF on ^D, or the prompt was closed by a signal
			return nil
		}

		reply := srv.Execute(line)
		if reply == "" {
			continue
		}
		fmt.Fprintln(rl.Stdout(), reply)
		if reply == "BYE" {
			return nil
		}
	}
}

// script executes one command per input line. Once the input ends it
// waits for playback to finish.
func script(ctx context.Context, in io.Reader, out io.Writer, srv *control.Server, p player.ModPlayer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		reply := srv.Execute(line)
		fmt.Fprintln(out, reply)
		if reply == "BYE" {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}

	return waitPlayback(ctx, p)
}

// waitPlayback blocks while p is playing or paused.
func waitPlayback(ctx context.Context, p player.ModPlayer) error {
	states, unsubscribe := p.StateChanges().Subscribe()
	defer unsubscribe()

	for {
		switch st := p.State(); st.Status {
		case player.Playing, player.Paused:
		case player.Error:
			if st.Err != nil {
				return fmt.Errorf("%s: %w", st.Message, st.Err)
			}
			return errors.New(st.Message)
		default:
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-states:
		}
	}
}

// completable knows every extension a player can open.
var completable = player.DefaultBackends(render.DefaultSampleRate)

// listModules completes LOAD arguments with supported files in the
// directory being typed.
func listModules(line string) []string {
	_, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	dir := filepath.Dir(arg)
	if arg == "" || strings.HasSuffix(arg, "/") {
		dir = arg
	}
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			out = append(out, filepath.Join(dir, name)+"/")
			continue
		}
		if _, ok := completable.Get(name); ok {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}
