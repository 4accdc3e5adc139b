// SPDX-License-Identifier: EPL-2.0

package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ik5/modpbx/player"
)

// verbs maps every verb to whether it changes the player.
var verbs = map[string]bool{
	"PING":    false,
	"WHOAMI":  false,
	"STATUS":  false,
	"INFO":    false,
	"META":    false,
	"QUIT":    false,
	"LOAD":    true,
	"PLAY":    true,
	"PAUSE":   true,
	"TOGGLE":  true,
	"STOP":    true,
	"RELEASE": true,
	"SEEK":    true,
	"SPEED":   true,
	"PITCH":   true,
	"GAIN":    true,
	"SEP":     true,
	"REPEAT":  true,
}

type client struct {
	c   net.Conn
	mtx sync.Mutex
}

func (cl *client) writeLine(s string) error {
	cl.mtx.Lock()
	defer cl.mtx.Unlock()

	_, err := cl.c.Write([]byte(s + "\n"))
	return err
}

// Server serves the control protocol for one player.
type Server struct {
	p   player.ModPlayer
	ctl *player.Controller
	log *slog.Logger

	mtx     sync.Mutex
	owner   *client
	clients map[*client]struct{}
	closed  bool
}

func NewServer(p player.ModPlayer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "control"))

	return &Server{
		p:       p,
		ctl:     player.NewController(p, log),
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Serve accepts connections on ln until ctx is done or ln fails. It
// closes ln and every connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, unsubscribe := s.p.StateChanges().Subscribe()
	defer unsubscribe()

	wg.Go(func() { s.forward(ctx, states) })
	wg.Go(func() {
		<-ctx.Done()
		ln.Close()
		s.closeAll()
	})

	s.log.Info("control server listening", slog.String("addr", ln.Addr().String()))

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Go(func() { s.handle(c) })
	}
}

func (s *Server) closeAll() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	for cl := range s.clients {
		cl.c.Close()
	}
}

// forward sends state changes to the owner.
func (s *Server) forward(ctx context.Context, states <-chan player.State) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}

			s.mtx.Lock()
			owner := s.owner
			s.mtx.Unlock()
			if owner == nil {
				continue
			}

			b, err := json.Marshal(Event{Type: "STATE", Status: statusOf(s.p, st)})
			if err != nil {
				continue
			}
			if err := owner.writeLine("EVENT " + string(b)); err != nil {
				s.log.Debug("dropping event", slog.Any("error", err))
			}
		}
	}
}

func (s *Server) handle(c net.Conn) {
	cl := &client{c: c}

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		c.Close()
		return
	}
	s.clients[cl] = struct{}{}
	s.mtx.Unlock()

	s.log.Debug("client connected", slog.String("remote", c.RemoteAddr().String()))

	defer func() {
		s.mtx.Lock()
		delete(s.clients, cl)
		if s.owner == cl {
			s.owner = nil
		}
		s.mtx.Unlock()

		c.Close()
		s.log.Debug("client disconnected", slog.String("remote", c.RemoteAddr().String()))
	}()

	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		verb, arg := parse(line)
		reply := s.exec(cl, verb, arg)
		if err := cl.writeLine(reply); err != nil || verb == "QUIT" {
			return
		}
	}
}

// Execute runs one request line with owner rights, for front ends in the
// same process such as an interactive shell.
func (s *Server) Execute(line string) string {
	verb, arg := parse(line)
	if verb == "" {
		return ""
	}
	return s.exec(nil, verb, arg)
}

// Verbs lists the protocol verbs in a stable order.
func Verbs() []string {
	out := make([]string, 0, len(verbs))
	for v := range verbs {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func parse(line string) (verb, arg string) {
	verb, arg, _ = strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToUpper(verb), strings.TrimSpace(arg)
}

func (s *Server) claim(cl *client) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.owner == nil {
		s.owner = cl
		s.log.Info("control claimed", slog.String("remote", cl.c.RemoteAddr().String()))
	}
	return s.owner == cl
}

func (s *Server) isOwner(cl *client) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.owner == cl
}

func (s *Server) exec(cl *client, verb, arg string) string {
	mutating, ok := verbs[verb]
	if !ok {
		return errReply(ErrUnknownCommand)
	}
	if !mutating {
		return s.query(cl, verb)
	}

	if cl != nil && !s.claim(cl) {
		return errReply(ErrControlLocked)
	}
	if err := s.command(verb, arg); err != nil {
		s.log.Debug("command failed", slog.String("verb", verb), slog.Any("error", err))
		return errReply(err)
	}
	return "OK"
}

func (s *Server) query(cl *client, verb string) string {
	switch verb {
	case "PING":
		return "PONG"
	case "WHOAMI":
		if cl == nil || s.isOwner(cl) {
			return "OWNER"
		}
		return "OBSERVER"
	case "STATUS":
		return jsonReply(statusOf(s.p, s.p.State()))
	case "INFO":
		return s.ctl.PlaybackInfo()
	case "META":
		return jsonReply(s.p.Metadata())
	case "QUIT":
		return "BYE"
	default:
		return errReply(ErrUnknownCommand)
	}
}

func (s *Server) command(verb, arg string) error {
	switch verb {
	case "LOAD":
		if arg == "" {
			return ErrArgument
		}
		return s.p.LoadFromPath(arg)
	case "PLAY":
		return s.p.Play()
	case "PAUSE":
		return s.p.Pause()
	case "TOGGLE":
		return s.ctl.TogglePlayPause()
	case "STOP":
		return s.p.Stop()
	case "RELEASE":
		return s.p.Release()
	case "SEEK":
		v, err := argFloat(arg)
		if err != nil {
			return err
		}
		return s.p.Seek(v)
	case "SPEED":
		v, err := argFloat(arg)
		if err != nil {
			return err
		}
		return s.p.SetPlaybackSpeed(v)
	case "PITCH":
		v, err := argFloat(arg)
		if err != nil {
			return err
		}
		return s.p.SetPitch(v)
	case "GAIN":
		v, err := argFloat(arg)
		if err != nil {
			return err
		}
		_, err = s.ctl.SetMasterGainDB(v)
		return err
	case "SEP":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return ErrArgument
		}
		return s.p.SetStereoSeparation(v)
	case "REPEAT":
		switch strings.ToLower(arg) {
		case "on":
			return s.ctl.SetRepeatMode(true)
		case "off":
			return s.ctl.SetRepeatMode(false)
		}
		v, err := strconv.Atoi(arg)
		if err != nil {
			return ErrArgument
		}
		return s.p.SetRepeatCount(v)
	default:
		return ErrUnknownCommand
	}
}

func argFloat(arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, ErrArgument
	}
	return v, nil
}

func errReply(err error) string {
	return "ERR " + strings.ReplaceAll(err.Error(), "\n", " ")
}

func jsonReply(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return errReply(err)
	}
	return string(b)
}
