package client

import (
	"strings"

	"github.com/omochice/toy-frame-chat/internal/terminal"
	"github.com/omochice/toy-frame-chat/pkg/protocol"
)

// echoLine renders a message this client sent.
func (s *Session) echoLine(msg protocol.Message) string {
	r := s.render
	text := r.Style(msg.Text, terminal.Bold, terminal.Yellow)
	if len(msg.Names) == 0 {
		return text + "\n"
	}
	return r.Style(strings.Join(msg.Names, ", "), terminal.Bold, terminal.Blue) + "<- " + text + "\n"
}

// inboundLine renders a message from the server. It reports false for
// message types this client does not display.
func (s *Session) inboundLine(msg protocol.Message) (string, bool) {
	r := s.render
	switch msg.Type {
	case protocol.MessageTypePrivate:
		return s.fromLine(msg, terminal.Red), true
	case protocol.MessageTypePublic:
		return s.fromLine(msg, terminal.White), true
	case protocol.MessageTypeServerOnline:
		return r.Style(strings.Join(msg.Names, ", "), terminal.Bold, terminal.Cyan) +
			r.Style(msg.Text, terminal.Bold, terminal.White) + "\n", true
	default:
		return "", false
	}
}

func (s *Session) fromLine(msg protocol.Message, senderColor terminal.SGR) string {
	r := s.render
	text := r.Style(msg.Text, terminal.Bold, terminal.Green)
	if msg.Sender() == "" {
		return text + "\n"
	}
	return r.Style(msg.Sender(), terminal.Bold, senderColor) + "-> " + text + "\n"
}
