package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const (
	// HandshakeTimeout bounds the uci/uciok exchange.
	HandshakeTimeout = 5 * time.Second
	// ShutdownGrace bounds how long Disconnect waits for the child to exit
	// after quit before killing it.
	ShutdownGrace = time.Second
)

// State is the lifecycle state of a session.
type State uint8

const (
	Spawned State = iota
	Ready
	AwaitingBestMove
	Closed
	Crashed
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Ready:
		return "ready"
	case AwaitingBestMove:
		return "awaiting bestmove"
	case Closed:
		return "closed"
	case Crashed:
		return "crashed"
	default:
		return "invalid"
	}
}

// Session is a live connection to an engine child process. It exclusively owns
// the process handle and both pipe endpoints, and releases all three on
// Disconnect. A session serves a single game and is driven by one goroutine;
// only Stop and Disconnect may be called concurrently with a pending request.
type Session struct {
	desc Descriptor

	cmd   *exec.Cmd
	in    io.Writer
	lines <-chan string

	id      map[string]string
	options []Option

	state  State
	closed atomic.Bool
	mu     sync.Mutex
}

// Spawn launches the engine executable with piped stdin/stdout and completes
// the uci handshake. The child is torn down again if the handshake fails.
func Spawn(ctx context.Context, desc Descriptor) (*Session, error) {
	if err := verifyExecutable(desc.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	cmd := exec.Command(desc.Path, desc.Args...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrLaunch, err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrLaunch, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	s := &Session{
		desc:  desc,
		cmd:   cmd,
		in:    in,
		lines: readLines(ctx, out),
		id:    map[string]string{},
		state: Spawned,
	}
	logw.Infof(ctx, "Spawned engine %v (pid=%v)", desc, cmd.Process.Pid)

	if err := s.Handshake(ctx); err != nil {
		_ = s.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Attach wires a session over existing streams without spawning a process,
// such as an in-memory transport. The caller drives the handshake.
func Attach(name string, in io.Writer, out io.Reader) *Session {
	return &Session{
		desc:  Descriptor{Name: name},
		in:    in,
		lines: readLines(context.Background(), out),
		id:    map[string]string{},
		state: Spawned,
	}
}

// readLines reads output lines into a bounded chan, closed on EOF so that a
// dead child is observed promptly. Async.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ret := make(chan string, 100)
	go func() {
		defer close(ret)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			ret <- scanner.Text()
		}
	}()
	return ret
}

// Name returns the engine display name.
func (s *Session) Name() string {
	return s.desc.Name
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// ID returns the value of an id line seen during the handshake, such as
// "name" or "author".
func (s *Session) ID(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.id[key]
	return v, ok
}

// Options returns the options advertised during the handshake.
func (s *Session) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Option(nil), s.options...)
}

// Handshake transmits uci and consumes lines until uciok, recording id and
// option lines along the way. Fails if the engine exits or stays silent past
// the handshake timeout.
func (s *Session) Handshake(ctx context.Context) error {
	if err := s.Send(ctx, "uci"); err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	deadline := time.NewTimer(HandshakeTimeout)
	defer deadline.Stop()

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				s.setState(Crashed)
				return fmt.Errorf("%w: engine exited before uciok", ErrHandshake)
			}
			switch {
			case strings.HasPrefix(line, "uciok"):
				s.setState(Ready)
				return nil
			case strings.HasPrefix(line, "id "):
				s.recordID(line)
			case strings.HasPrefix(line, "option "):
				if opt, ok := ParseOption(line); ok {
					s.mu.Lock()
					s.options = append(s.options, opt)
					s.mu.Unlock()
				}
			default:
				// informational: ignore
			}

		case <-deadline.C:
			s.setState(Crashed)
			return fmt.Errorf("%w: no uciok within %v", ErrHandshake, HandshakeTimeout)

		case <-ctx.Done():
			s.setState(Crashed)
			return fmt.Errorf("%w: %v", ErrHandshake, ctx.Err())
		}
	}
}

// Send transmits a single command to the engine, appending a terminating
// newline if absent.
func (s *Session) Send(ctx context.Context, cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed || s.state == Crashed {
		return fmt.Errorf("%w: %v", ErrClosed, s.state)
	}

	line := strings.TrimSuffix(cmd, "\n")
	logw.Debugf(ctx, ">> %v", line)

	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		s.state = Crashed
		return fmt.Errorf("write %q: %w", line, err)
	}
	return nil
}

// ReadLine returns the next engine output line without its trailing newline.
// It blocks until a line arrives, the stream ends, or ctx is done. A cleanly
// ended stream returns io.EOF and marks the session crashed.
func (s *Session) ReadLine(ctx context.Context) (string, error) {
	if st := s.State(); st == Closed || st == Crashed {
		return "", fmt.Errorf("%w: %v", ErrClosed, st)
	}

	select {
	case line, ok := <-s.lines:
		if !ok {
			s.setState(Crashed)
			return "", io.EOF
		}
		return line, nil

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ctx.Err()
	}
}

// IsReady probes engine liveness with isready, blocking until readyok.
func (s *Session) IsReady(ctx context.Context) error {
	if err := s.Send(ctx, "isready"); err != nil {
		return err
	}
	for {
		line, err := s.ReadLine(ctx)
		if err != nil {
			return err
		}
		if strings.HasPrefix(line, "readyok") {
			return nil
		}
	}
}

// RequestBestMove transmits the position and search limits, then consumes
// lines until the bestmove reply and returns the move token. Intermediate
// info lines are discarded. Returns ErrNoMove for "bestmove (none)" and
// "bestmove 0000", and ErrTimeout if ctx expires first.
func (s *Session) RequestBestMove(ctx context.Context, pos Position, limits Limits) (string, error) {
	if err := s.Send(ctx, pos.Command()); err != nil {
		return "", err
	}
	if err := s.Send(ctx, limits.Command()); err != nil {
		return "", err
	}
	s.setState(AwaitingBestMove)

	for {
		line, err := s.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "bestmove" {
			continue // info or other chatter
		}
		if len(fields) < 2 {
			return "", fmt.Errorf("%w: %q", ErrProtocol, line)
		}
		s.setState(Ready)

		// The optional ponder token is ignored.

		switch mv := fields[1]; mv {
		case "(none)", "0000":
			return "", ErrNoMove
		default:
			return mv, nil
		}
	}
}

// Stop asks the engine to conclude an infinite search with its bestmove.
func (s *Session) Stop(ctx context.Context) error {
	return s.Send(ctx, "stop")
}

// Disconnect transmits quit and waits up to the shutdown grace period before
// killing the child. The child is reaped and the pipes closed on every path.
// Idempotent and safe to call on a crashed session.
func (s *Session) Disconnect(ctx context.Context) error {
	if !s.closed.CAS(false, true) {
		return nil
	}

	s.mu.Lock()
	if s.state != Crashed {
		logw.Debugf(ctx, ">> quit")
		_, _ = io.WriteString(s.in, "quit\n")
		s.state = Closed
	}
	s.mu.Unlock()

	// Unblock the reader goroutine if its chan is full.
	go func() {
		for range s.lines {
		}
	}()

	if c, ok := s.in.(io.Closer); ok {
		_ = c.Close()
	}
	if s.cmd == nil {
		return nil // attached: no process to reap
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	select {
	case err := <-done:
		logw.Debugf(ctx, "Engine %v exited: %v", s.desc.Name, err)
	case <-time.After(ShutdownGrace):
		logw.Warningf(ctx, "Engine %v did not exit within %v. Killing", s.desc.Name, ShutdownGrace)
		_ = s.cmd.Process.Kill()
		<-done
	}
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed || s.state == Crashed {
		return // terminal states are sticky
	}
	s.state = state
}

func (s *Session) recordID(line string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.id[fields[1]] = strings.Join(fields[2:], " ")
}
