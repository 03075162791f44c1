package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
)

// DefaultMaxLineSize bounds a single inbound line
const DefaultMaxLineSize = 16 * 1024 * 1024

// ErrLineTooLong is returned when an inbound line exceeds the configured maximum
var ErrLineTooLong = errors.New("transport: line exceeds maximum size")

// StdioTransport reads requests from an input stream and writes responses to
// an output stream, one JSON message per line. Writes are serialized.
type StdioTransport struct {
	reader      *bufio.Reader
	closer      io.Closer
	writer      *bufio.Writer
	maxLineSize int

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// StdioOption configures a StdioTransport
type StdioOption func(*StdioTransport)

// WithMaxLineSize sets the largest line ReadLine accepts
func WithMaxLineSize(n int) StdioOption {
	return func(t *StdioTransport) {
		if n > 0 {
			t.maxLineSize = n
		}
	}
}

// NewStdioTransport creates a transport over reader and writer. A nil reader
// or writer falls back to os.Stdin or os.Stdout.
func NewStdioTransport(reader io.Reader, writer io.Writer, opts ...StdioOption) *StdioTransport {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	t := &StdioTransport{
		reader:      bufio.NewReaderSize(reader, 64*1024),
		writer:      bufio.NewWriter(writer),
		maxLineSize: DefaultMaxLineSize,
		closed:      make(chan struct{}),
	}
	if c, ok := reader.(io.Closer); ok {
		t.closer = c
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ReadLine implements Transport. A final line without a trailing newline is
// still returned; the following call reports io.EOF.
func (t *StdioTransport) ReadLine(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closed:
		return nil, io.EOF
	default:
	}

	var line []byte
	for {
		chunk, err := t.reader.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > t.maxLineSize {
			if err := t.discardLine(err); err != nil {
				return nil, err
			}
			return nil, ErrLineTooLong
		}

		if err == nil {
			return trimEOL(line), nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if len(line) > 0 {
				return trimEOL(line), nil
			}
			return nil, io.EOF
		}

		select {
		case <-t.closed:
			// read was interrupted by Close
			return nil, io.EOF
		default:
		}
		return nil, mcperrors.ReadFailed("stdio", err)
	}
}

// discardLine skips input up to and including the next newline so the
// following ReadLine starts on a fresh line. err is the result of the last
// ReadSlice.
func (t *StdioTransport) discardLine(err error) error {
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = t.reader.ReadSlice('\n')
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	select {
	case <-t.closed:
		return io.EOF
	default:
	}
	return mcperrors.ReadFailed("stdio", err)
}

// WriteLine implements Transport
func (t *StdioTransport) WriteLine(line []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(line); err != nil {
		return mcperrors.WriteFailed("stdio", err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return mcperrors.WriteFailed("stdio", err)
	}
	if err := t.writer.Flush(); err != nil {
		return mcperrors.WriteFailed("stdio", err)
	}
	return nil
}

// Close implements Transport. It flushes pending output and closes the input
// stream when it is closable.
func (t *StdioTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)

		t.writeMu.Lock()
		if flushErr := t.writer.Flush(); flushErr != nil {
			err = mcperrors.WriteFailed("stdio", flushErr)
		}
		t.writeMu.Unlock()

		if t.closer != nil {
			_ = t.closer.Close()
		}
	})
	return err
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	out := make([]byte, len(line))
	copy(out, line)
	return out
}
