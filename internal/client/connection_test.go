package client_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/toy-frame-chat/internal/client"
	"github.com/omochice/toy-frame-chat/internal/terminal"
	"github.com/omochice/toy-frame-chat/pkg/protocol"
)

func startWebSocketServer(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != client.WebSocketPath {
			http.NotFound(w, r)
			return
		}
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestDial_TCP(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn)
	}()

	conn, err := client.Dial(context.Background(), "tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	f := protocol.Encode("ping")
	if _, err := conn.Write(f[:]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	buf := make([]byte, protocol.FrameSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if msg, err := protocol.Decode(buf); err != nil || msg.Text != "ping" {
		t.Errorf("echoed frame = %+v, %v", msg, err)
	}
}

func TestDial_Errors(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tests := []struct {
		name      string
		transport string
	}{
		{"tcp refused", "tcp"},
		{"ws refused", "ws"},
		{"unknown transport", "carrier-pigeon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := client.Dial(ctx, tt.transport, addr)
			if err == nil {
				conn.Close()
				t.Error("Dial() error = nil")
			}
		})
	}
}

func TestDial_WebSocketFrames(t *testing.T) {
	received := make(chan []byte, 1)
	addr := startWebSocketServer(t, func(conn net.Conn) {
		data, err := wsutil.ReadClientBinary(conn)
		if err != nil {
			return
		}
		received <- data

		roster := protocol.MakeFrame("alice", protocol.MessageTypeServerOnline, " online")
		if err := wsutil.WriteServerBinary(conn, roster[:]); err != nil {
			return
		}
		body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
		wsutil.WriteServerMessage(conn, ws.OpClose, body)
		// Wait for the client's close reply before hanging up.
		wsutil.ReadClientData(conn)
	})

	conn, err := client.Dial(context.Background(), "ws", addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	f := protocol.Encode("@bob: hi")
	if _, err := conn.Write(f[:]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	select {
	case data := <-received:
		if len(data) != protocol.FrameSize {
			t.Errorf("server received %d bytes, want %d", len(data), protocol.FrameSize)
		}
		if msg, err := protocol.Decode(data); err != nil || msg.Sender() != "bob" {
			t.Errorf("server decoded %+v, %v", msg, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for frame")
	}

	// Read in small chunks so the message has to be buffered.
	var got []byte
	chunk := make([]byte, 300)
	for len(got) < protocol.FrameSize {
		n, err := conn.Read(chunk)
		if err != nil {
			t.Fatalf("Read() error = %v after %d bytes", err, len(got))
		}
		got = append(got, chunk[:n]...)
	}
	msg, err := protocol.Decode(got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if msg.Type != protocol.MessageTypeServerOnline || msg.Sender() != "alice" {
		t.Errorf("decoded %+v", msg)
	}

	if _, err := conn.Read(chunk); !errors.Is(err, io.EOF) {
		t.Errorf("Read() after close frame error = %v, want io.EOF", err)
	}
}

func TestSession_OverWebSocket(t *testing.T) {
	addr := startWebSocketServer(t, func(conn net.Conn) {
		if _, err := wsutil.ReadClientBinary(conn); err != nil {
			return
		}
		hello := protocol.MakeFrame("carol", protocol.MessageTypePublic, "welcome")
		wsutil.WriteServerBinary(conn, hello[:])
	})

	conn, err := client.Dial(context.Background(), "ws", addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	var out syncBuffer
	s := client.NewSession(conn, client.Options{Screen: terminal.NewScreen(&out)})
	if err := s.Login("dave"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunInbound()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("inbound loop did not end when the server hung up")
	}
	if !strings.Contains(out.String(), "carol-> welcome\n") {
		t.Errorf("output = %q", out.String())
	}
}
