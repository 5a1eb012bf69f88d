package chatagent

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// LineParser extracts the answer fragment carried by one line of a stream,
// or "" when the line carries none.
type LineParser func(line []byte) string

// Stream passes the upstream bytes through untouched while collecting the
// answer fragments, so the full reply is known once the caller has drained it.
type Stream struct {
	body           io.ReadCloser
	parse          LineParser
	pending        []byte
	answer         strings.Builder
	drained        bool
	ConversationID string
}

func NewStream(body io.ReadCloser, conversationID string, parse LineParser) *Stream {
	return &Stream{body: body, parse: parse, ConversationID: conversationID}
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	if n > 0 {
		s.consume(p[:n])
	}
	if errors.Is(err, io.EOF) {
		s.flush()
		s.drained = true
	}
	return n, err
}

func (s *Stream) consume(b []byte) {
	s.pending = append(s.pending, b...)
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			return
		}
		s.line(s.pending[:i])
		s.pending = s.pending[i+1:]
	}
}

func (s *Stream) flush() {
	if len(s.pending) > 0 {
		s.line(s.pending)
		s.pending = nil
	}
}

func (s *Stream) line(l []byte) {
	l = bytes.TrimSpace(l)
	if len(l) == 0 || s.parse == nil {
		return
	}
	s.answer.WriteString(s.parse(l))
}

// Answer is the concatenated answer text read so far.
func (s *Stream) Answer() string {
	return s.answer.String()
}

// Drained reports whether the upstream body was read through to EOF.
func (s *Stream) Drained() bool {
	return s.drained
}

func (s *Stream) Close() error {
	return s.body.Close()
}
