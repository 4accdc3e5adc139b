// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/modpbx/control"
	"github.com/ik5/modpbx/internal/config"
	"github.com/ik5/modpbx/player"
)

func runServe(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	p, release, err := newPlayer(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("release failed", slog.Any("error", err))
		}
	}()

	if len(cfg.Args) > 0 {
		if err := p.LoadFromPath(cfg.Args[0]); err != nil {
			return err
		}
		if err := p.Play(); err != nil {
			return err
		}
	}

	// a stale socket from a crashed daemon would make Listen fail
	if err := os.Remove(cfg.Socket); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove socket: %w", err)
	}
	ln, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer os.Remove(cfg.Socket)

	srv := control.NewServer(p, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })
	g.Go(func() error {
		logStates(gctx, p, log)
		return nil
	})

	return g.Wait()
}

// logStates logs every state change until ctx is done.
func logStates(ctx context.Context, p player.ModPlayer, log *slog.Logger) {
	states, unsubscribe := p.StateChanges().Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			log.Info("state changed",
				slog.String("state", st.String()),
				slog.String("position", player.FormatTime(p.PositionSeconds())))
		}
	}
}

func runRemote(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	c, err := control.Dial(ctx, "unix", cfg.Socket)
	if err != nil {
		return err
	}
	defer c.Close()

	c.OnEvent = func(payload string) {
		log.Debug("event", slog.String("payload", payload))
	}

	line := strings.Join(cfg.Args, " ")
	if line == "" {
		line = "STATUS"
	}

	reply, err := c.Do(line)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
