package protocol

import (
	"bytes"
	"strings"
)

// Frame layout. Both ends agree on these sizes out of band; they are part of
// the protocol and must not be changed.
const (
	FrameSize = 1024
	DestSize  = 100
	TagSize   = 28
	TextSize  = FrameSize - DestSize - TagSize

	// MaxTextLen is the longest message text that survives encoding; one
	// byte of the payload region is reserved for the terminator.
	MaxTextLen = TextSize - 1

	// NameSize is the size of the name record sent once after connecting.
	NameSize = 50
)

// Frame is one encoded wire frame. It is an array so copies never share
// storage with the original.
type Frame [FrameSize]byte

// Bytes returns a copy of the frame as a slice.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// EncodeName builds the fixed-size name record announcing the client to the
// server. Names longer than NameSize-1 bytes are cut.
func EncodeName(name string) []byte {
	b := make([]byte, NameSize)
	putString(b, name)
	return b
}

// putString copies s into dst, cut so that at least one trailing NUL remains.
// dst is expected to be zeroed.
func putString(dst []byte, s string) {
	s = stripNUL(s)
	if len(s) > len(dst)-1 {
		s = s[:len(dst)-1]
	}
	copy(dst, s)
}

// putNames writes NUL-terminated names into dst in order and returns how
// many were written. It stops at the first name that does not fit while
// keeping a final NUL free to end the list.
func putNames(dst []byte, names []string) int {
	off, n := 0, 0
	for _, name := range names {
		name = stripNUL(name)
		if name == "" {
			continue
		}
		if off+len(name)+1 > len(dst)-1 {
			break
		}
		copy(dst[off:], name)
		off += len(name) + 1
		n++
	}
	return n
}

// splitNames reads NUL-terminated names until an empty one or the end of
// the region.
func splitNames(region []byte) []string {
	var names []string
	for len(region) > 0 {
		end := bytes.IndexByte(region, 0)
		if end == 0 {
			break
		}
		if end < 0 {
			end = len(region)
		}
		names = append(names, string(region[:end]))
		if end == len(region) {
			break
		}
		region = region[end+1:]
	}
	return names
}

// cString returns the bytes of region up to the first NUL.
func cString(region []byte) string {
	if i := bytes.IndexByte(region, 0); i >= 0 {
		region = region[:i]
	}
	return string(region)
}

func stripNUL(s string) string {
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}
