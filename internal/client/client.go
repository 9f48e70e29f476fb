// Package client runs a chat session over one connection: an outbound loop
// sending typed lines and an inbound loop rendering frames from the server.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/omochice/toy-frame-chat/internal/terminal"
	"github.com/omochice/toy-frame-chat/pkg/protocol"
)

// ErrSessionClosed is returned by Send once the session has been torn down.
var ErrSessionClosed = errors.New("session closed")

// Options configures a Session. Zero values are usable: no color, no
// terminal width and a disabled logger.
type Options struct {
	Input    io.Reader
	Screen   *terminal.Screen
	Renderer *terminal.Renderer
	// Width reports the current terminal width in columns, 0 when unknown.
	Width  func() int
	Logger *zerolog.Logger
}

// Session owns one connection to the chat server.
type Session struct {
	conn   io.ReadWriteCloser
	input  *bufio.Reader
	screen *terminal.Screen
	render *terminal.Renderer
	width  func() int
	log    zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewSession creates a Session that takes ownership of conn.
func NewSession(conn io.ReadWriteCloser, opts Options) *Session {
	s := &Session{
		conn:   conn,
		screen: opts.Screen,
		render: opts.Renderer,
		width:  opts.Width,
		log:    zerolog.Nop(),
		done:   make(chan struct{}),
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	in := opts.Input
	if in == nil {
		in = strings.NewReader("")
	}
	s.input = bufio.NewReader(in)
	if s.screen == nil {
		s.screen = terminal.NewScreen(io.Discard)
	}
	if s.render == nil {
		s.render = terminal.NewRenderer(false)
	}
	if s.width == nil {
		s.width = func() int { return 0 }
	}
	return s
}

// Login announces name to the server, asking for it on the input first when
// name is empty, and prints the usage hints.
func (s *Session) Login(name string) error {
	if name == "" {
		s.screen.Print("Write your name: " + s.render.SGR(terminal.Bold) + s.render.SGR(terminal.Cyan))
		line, err := s.readLine()
		s.screen.Print(s.render.SGR(terminal.Reset))
		if err != nil && line == "" {
			return fmt.Errorf("failed to read name: %w", err)
		}
		name = line
	}

	if _, err := s.conn.Write(protocol.EncodeName(name)); err != nil {
		return fmt.Errorf("failed to send name: %w", err)
	}
	s.log.Debug().Str("name", name).Msg("name sent")

	s.screen.Print("Private message format is: @<destination name>: <message>\n" +
		"Public message format is: <message>\n" +
		"Start to write your first message !!!\n\n")
	return nil
}

// Run starts the outbound loop in the background and runs the inbound loop
// until the connection is gone. A line being read when the server goes away
// is abandoned; the caller is expected to exit.
//
// Run returns the transmit error that ended the session, if any, otherwise
// the inbound loop's read error (nil on a clean end of stream).
func (s *Session) Run() error {
	go func() {
		if err := s.RunOutbound(); err != nil && !errors.Is(err, ErrSessionClosed) {
			s.fail(err)
		}
	}()

	inErr := s.RunInbound()
	if err := s.Err(); err != nil {
		return err
	}
	return inErr
}

// Send encodes line, transmits the frame and returns the message exactly as
// it was sent.
func (s *Session) Send(line string) (protocol.Message, error) {
	select {
	case <-s.done:
		return protocol.Message{}, ErrSessionClosed
	default:
	}

	frame := protocol.Encode(line)
	if _, err := s.conn.Write(frame[:]); err != nil {
		return protocol.Message{}, fmt.Errorf("failed to send message: %w", err)
	}

	// Decoding the sent frame cannot fail: Encode only writes known tags.
	return protocol.Decode(frame[:])
}

// RunOutbound reads lines from the input and sends them until the input ends
// or a send fails. Each sent line replaces the raw echo on screen with the
// decoded frame.
func (s *Session) RunOutbound() error {
	for {
		line, err := s.readLine()
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				s.log.Debug().Msg("input closed")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		erase := s.render.Erase(terminal.EraseLineCount(terminal.InputCells(line), s.width()))
		if line == "" {
			s.screen.Print(erase)
			continue
		}

		msg, sendErr := s.Send(line)
		if sendErr != nil {
			return sendErr
		}
		s.screen.Print(erase + s.echoLine(msg))
	}
}

// RunInbound reads frames until the connection ends, then closes the
// session. Frames with an unknown tag are dropped.
func (s *Session) RunInbound() error {
	buf := make([]byte, protocol.FrameSize)
	var readErr error
	for {
		if _, err := io.ReadFull(s.conn, buf); err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
				s.log.Error().Err(err).Msg("Error reading from server")
			}
			break
		}

		msg, err := protocol.Decode(buf)
		if err != nil {
			s.log.Debug().Err(err).Msg("dropping frame")
			continue
		}
		if out, ok := s.inboundLine(msg); ok {
			s.screen.Print(out)
		}
	}

	s.screen.Print("Server is down! Closing connection...\n")
	s.Close()
	return readErr
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that made the outbound loop give up, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("outbound loop stopped")
	s.Close()
}

// readLine returns the next input line without its terminator. A final
// line without a terminator is returned together with io.EOF.
func (s *Session) readLine() (string, error) {
	line, err := s.input.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
