package plait

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// StreamEventType identifies the type of stream event.
type StreamEventType uint8

const (
	StreamChunk StreamEventType = iota // one complete chunk decoded
	StreamError                        // one chunk failed to decode
	StreamEnd                          // stream ended, final flush done
)

// String returns the event type name.
func (t StreamEventType) String() string {
	switch t {
	case StreamChunk:
		return "CHUNK"
	case StreamError:
		return "ERROR"
	case StreamEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// StreamEvent represents a single streaming event. Chunk events carry
// the decoded value; error events carry the per-chunk decode failure.
type StreamEvent struct {
	Type  StreamEventType
	ID    string // chunk id, explicit or counter-assigned
	Value *Value // for StreamChunk
	Err   error  // for StreamError
}

// StreamHandler is called for each stream event. A non-nil return
// aborts the current Write or End call with that error.
type StreamHandler func(event StreamEvent) error

// StreamParser decodes chunk-delimited text arriving over time. Input
// is buffered across Write calls and scanned for complete `|id|content`
// spans; each complete span runs through the full decode pipeline and
// is emitted as one event, strictly in delimiter order. A failed chunk
// emits an error event and does not stop the stream.
//
// Write and End are processed to completion before returning; the
// parser is not meant for concurrent writers, the mutex only keeps a
// misbehaving host from corrupting the buffer.
type StreamParser struct {
	mu      sync.Mutex
	handler StreamHandler
	opts    ParseOptions
	buffer  []byte
	counter int
	ended   bool
}

// NewStreamParser creates a stream parser with default options.
func NewStreamParser(handler StreamHandler) *StreamParser {
	return NewStreamParserWithOptions(handler, DefaultParseOptions())
}

// NewStreamParserWithOptions creates a stream parser with custom parse
// options applied to every chunk.
func NewStreamParserWithOptions(handler StreamHandler, opts ParseOptions) *StreamParser {
	opts.Streaming = true
	return &StreamParser{handler: handler, opts: opts}
}

// Write appends text to the stream and emits an event for every chunk
// it completes. Chunk boundaries are a property of the accumulated
// buffer, not of Write call boundaries.
func (s *StreamParser) Write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return errors.New("plait: write after stream end")
	}
	s.buffer = append(s.buffer, text...)
	return s.drain()
}

// End closes the stream. Remaining non-whitespace buffer content gets
// one best-effort parse; a failure there is trailing incomplete data,
// swallowed rather than reported. A final end event always follows.
func (s *StreamParser) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return errors.New("plait: stream already ended")
	}
	s.ended = true

	rest := strings.TrimSpace(string(s.buffer))
	s.buffer = nil
	if rest != "" {
		id, content := splitDelimiter(rest)
		if v, err := s.decodeChunk(content); err == nil {
			if err := s.emitChunk(id, v); err != nil {
				return err
			}
		}
	}
	return s.handler(StreamEvent{Type: StreamEnd})
}

// drain pops every complete chunk span off the front of the buffer. A
// span is complete once the next delimiter confirms where it ends.
func (s *StreamParser) drain() error {
	for {
		open := bytes.IndexByte(s.buffer, '|')
		if open < 0 {
			return nil
		}

		// Text before the first delimiter becomes its own chunk once
		// the delimiter confirms its end.
		if lead := strings.TrimSpace(string(s.buffer[:open])); lead != "" {
			s.buffer = s.buffer[open:]
			if err := s.emitDecoded("", lead); err != nil {
				return err
			}
			continue
		}

		idEnd := bytes.IndexByte(s.buffer[open+1:], '|')
		if idEnd < 0 {
			return nil
		}
		idEnd += open + 1

		next := bytes.IndexByte(s.buffer[idEnd+1:], '|')
		if next < 0 {
			return nil
		}
		next += idEnd + 1

		id := strings.TrimSpace(string(s.buffer[open+1 : idEnd]))
		content := string(s.buffer[idEnd+1 : next])
		s.buffer = s.buffer[next:]

		if err := s.emitDecoded(id, content); err != nil {
			return err
		}
	}
}

// emitDecoded runs one chunk through the decode pipeline and emits a
// chunk or error event. Only a handler failure propagates.
func (s *StreamParser) emitDecoded(id string, content string) error {
	v, err := s.decodeChunk(content)
	if err != nil {
		if id == "" {
			s.counter++
			id = strconv.Itoa(s.counter)
		}
		return s.handler(StreamEvent{
			Type: StreamError,
			ID:   id,
			Err:  fmt.Errorf("chunk %s: %w", id, err),
		})
	}
	return s.emitChunk(id, v)
}

// emitChunk delivers one decoded chunk. The counter counts unlabeled
// chunks only; a chunk with an explicit id does not consume a counter
// value.
func (s *StreamParser) emitChunk(id string, v *Value) error {
	if id == "" {
		s.counter++
		id = strconv.Itoa(s.counter)
	}
	return s.handler(StreamEvent{Type: StreamChunk, ID: id, Value: v})
}

func (s *StreamParser) decodeChunk(content string) (*Value, error) {
	root, err := ParseWithOptions(content, s.opts)
	if err != nil {
		return nil, err
	}
	return Evaluate(root)
}

// splitDelimiter strips a leading `|id|` prefix from trailing stream
// content, returning the id and the remaining text.
func splitDelimiter(text string) (id string, content string) {
	if !strings.HasPrefix(text, "|") {
		return "", text
	}
	end := strings.IndexByte(text[1:], '|')
	if end < 0 {
		return "", text
	}
	return strings.TrimSpace(text[1 : end+1]), text[end+2:]
}
