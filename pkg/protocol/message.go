// Package protocol implements the fixed-size chat frame exchanged with the
// chat server.
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// MessageType represents the classification tag of a frame
type MessageType int

const (
	MessageTypePublic MessageType = iota
	MessageTypePrivate
	MessageTypeServerOnline
)

var (
	// ErrMalformedFrame is returned when a frame carries an unknown tag or an
	// inconsistent destination section. Callers drop such frames.
	ErrMalformedFrame = errors.New("protocol: malformed frame")
	// ErrShortFrame is returned when the input is not exactly FrameSize bytes.
	ErrShortFrame = errors.New("protocol: short frame")
)

// String returns the wire tag of the MessageType
func (mt MessageType) String() string {
	switch mt {
	case MessageTypePublic:
		return "Public"
	case MessageTypePrivate:
		return "Private"
	case MessageTypeServerOnline:
		return "Server:online"
	default:
		return "UNKNOWN"
	}
}

// ParseMessageType maps a wire tag back to its MessageType.
func ParseMessageType(tag string) (MessageType, error) {
	switch tag {
	case "Public":
		return MessageTypePublic, nil
	case "Private":
		return MessageTypePrivate, nil
	case "Server:online":
		return MessageTypeServerOnline, nil
	default:
		return 0, fmt.Errorf("%w: unknown tag %q", ErrMalformedFrame, tag)
	}
}

// Message is the decoded form of a frame.
//
// For outbound frames Names are the destinations. The server rewrites
// inbound chat frames so that Names[0] is the sender; for roster
// notifications Names is the list of online users.
type Message struct {
	Names []string
	Type  MessageType
	Text  string
}

// Sender returns the first name, or "" when there is none.
func (m Message) Sender() string {
	if len(m.Names) == 0 {
		return ""
	}
	return m.Names[0]
}

// Encode packs the message into a frame. See MakeFrame for the truncation
// rules. A private message whose destinations all had to be dropped is sent
// as public.
func (m Message) Encode() Frame {
	var f Frame
	mt := m.Type
	if putNames(f[:DestSize], m.Names) == 0 && mt == MessageTypePrivate {
		mt = MessageTypePublic
	}
	putString(f[DestSize:DestSize+TagSize], mt.String())
	putString(f[DestSize+TagSize:], m.Text)
	return f
}

// Decode decodes frame bytes into the message
func (m *Message) Decode(data []byte) error {
	if len(data) != FrameSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortFrame, len(data), FrameSize)
	}

	mt, err := ParseMessageType(cString(data[DestSize : DestSize+TagSize]))
	if err != nil {
		return err
	}
	names := splitNames(data[:DestSize])
	if len(names) == 0 && mt == MessageTypePrivate {
		return fmt.Errorf("%w: private frame without destination", ErrMalformedFrame)
	}

	m.Names = names
	m.Type = mt
	m.Text = cString(data[DestSize+TagSize:])
	return nil
}

// ParseLine interprets one line of user input.
//
// "@alice,bob: lunch?" addresses alice and bob privately; anything else is a
// public message. A line starting with '@' that has no ':' or no usable name
// is sent publicly as typed.
func ParseLine(line string) Message {
	public := Message{Type: MessageTypePublic, Text: line}

	if !strings.HasPrefix(line, "@") {
		return public
	}
	head, text, ok := strings.Cut(line[1:], ":")
	if !ok {
		return public
	}

	var names []string
	for _, name := range strings.Split(head, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return public
	}

	return Message{
		Names: names,
		Type:  MessageTypePrivate,
		Text:  strings.TrimSpace(text),
	}
}

// Encode parses a line of user input and packs it into a frame.
func Encode(line string) Frame {
	return ParseLine(line).Encode()
}

// Decode unpacks frame bytes.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := m.Decode(data); err != nil {
		return Message{}, err
	}
	return m, nil
}

// MakeFrame builds a frame from already known parts. An empty name produces
// a frame without destinations.
//
// Names that do not fit DestSize are dropped and text longer than MaxTextLen
// is cut to MaxTextLen bytes; neither is reported as an error.
func MakeFrame(name string, mt MessageType, text string) Frame {
	m := Message{Type: mt, Text: text}
	if name != "" {
		m.Names = []string{name}
	}
	return m.Encode()
}
