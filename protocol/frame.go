package protocol

import (
	"bufio"
	"bytes"
	"io"
	"net"
)

const (
	Delimiter = 0

	MaxRecordSize = 64 * 1024
)

// Stream is one client connection carrying framed records both ways.
type Stream interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Frame encodes m and appends the record delimiter.
func Frame(m Message) ([]byte, error) {
	data, err := Encode(m)
	if err != nil {
		return nil, err
	}
	return append(data, Delimiter), nil
}

func Write(w io.Writer, m Message) error {
	data, err := Frame(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// NewScanner splits r into records. Empty records are skipped and an
// unterminated tail at EOF is discarded. A record longer than MaxRecordSize
// is dropped up to its delimiter and yields a single empty token in its
// place, which Decode rejects as malformed.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxRecordSize)
	scanner.Split((&splitter{}).split)
	return scanner
}

type splitter struct {
	// discarding is set while skipping the rest of an oversized record.
	discarding bool
}

func (s *splitter) split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if s.discarding {
		if i := bytes.IndexByte(data, Delimiter); i >= 0 {
			s.discarding = false
			return i + 1, nil, nil
		}
		return len(data), nil, nil
	}
	start := 0
	for start < len(data) && data[start] == Delimiter {
		start++
	}
	if i := bytes.IndexByte(data[start:], Delimiter); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	if start == 0 && len(data) >= MaxRecordSize {
		s.discarding = true
		return len(data), []byte{}, nil
	}
	return start, nil, nil
}
