package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/toy-frame-chat/internal/config"
)

// DefaultPort is the chat server port. It is not configurable.
const DefaultPort = "4375"

// WebSocketPath is the upgrade endpoint used by the ws transport.
const WebSocketPath = "/ws"

// Dial opens the connection to the chat server at addr (host:port) using
// the named transport.
func Dial(ctx context.Context, transport, addr string) (net.Conn, error) {
	switch transport {
	case config.TransportTCP, "":
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return conn, nil
	case config.TransportWS:
		conn, br, _, err := ws.Dial(ctx, "ws://"+addr+WebSocketPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return NewWebSocketClientConnection(conn, br), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// WebSocketClientConnection presents a WebSocket connection as a byte
// stream. Every Write becomes one binary message; Read hands out binary
// messages from the server in order, buffering whatever does not fit.
type WebSocketClientConnection struct {
	net.Conn
	rw            io.ReadWriter
	readBuffer    []byte
	readBufferPos int
	mu            sync.Mutex
	wmu           sync.Mutex
}

// NewWebSocketClientConnection wraps an upgraded connection. br holds bytes
// the handshake read past the response and may be nil.
func NewWebSocketClientConnection(conn net.Conn, br *bufio.Reader) *WebSocketClientConnection {
	wc := &WebSocketClientConnection{Conn: conn}
	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	// Control frame replies written while reading share the write lock.
	wc.rw = struct {
		io.Reader
		io.Writer
	}{r, writerFunc(wc.writeRaw)}
	return wc
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func (wc *WebSocketClientConnection) writeRaw(p []byte) (int, error) {
	wc.wmu.Lock()
	defer wc.wmu.Unlock()
	return wc.Conn.Write(p)
}

func (wc *WebSocketClientConnection) Write(data []byte) (int, error) {
	wc.wmu.Lock()
	defer wc.wmu.Unlock()
	if err := wsutil.WriteClientBinary(wc.Conn, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (wc *WebSocketClientConnection) Read(buf []byte) (int, error) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if wc.readBufferPos < len(wc.readBuffer) {
		n := copy(buf, wc.readBuffer[wc.readBufferPos:])
		wc.readBufferPos += n
		if wc.readBufferPos >= len(wc.readBuffer) {
			wc.readBuffer = nil
			wc.readBufferPos = 0
		}
		return n, nil
	}

	data, err := wsutil.ReadServerBinary(wc.rw)
	if err != nil {
		var closed wsutil.ClosedError
		if errors.As(err, &closed) {
			return 0, io.EOF
		}
		return 0, err
	}

	n := copy(buf, data)
	if n < len(data) {
		wc.readBuffer = data[n:]
		wc.readBufferPos = 0
	}

	return n, nil
}

func (wc *WebSocketClientConnection) Close() error {
	wc.wmu.Lock()
	_ = wsutil.WriteClientMessage(wc.Conn, ws.OpClose, nil)
	wc.wmu.Unlock()
	return wc.Conn.Close()
}
