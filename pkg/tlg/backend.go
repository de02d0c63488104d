package tlg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// EnvBackend selects the decode backend: "stream" forces the portable reader,
// anything else lets the probe pick.
const EnvBackend = "TASKDATA_DECODER"

// Cursor is a forward-only byte source over one log file.
type Cursor interface {
	// ReadFull behaves like io.ReadFull: io.EOF when nothing was read,
	// io.ErrUnexpectedEOF when p was only partly filled.
	ReadFull(p []byte) (int, error)
	Offset() int64
	Close() error
}

type Backend interface {
	Name() string
	Open(path string) (Cursor, error)
}

var (
	backendOnce sync.Once
	backend     Backend
)

// SelectBackend probes once per process and returns the cached choice.
func SelectBackend() Backend {
	backendOnce.Do(func() {
		backend = selectBackend(os.Getenv(EnvBackend))
	})
	return backend
}

func selectBackend(pref string) Backend {
	if strings.EqualFold(strings.TrimSpace(pref), "stream") {
		return StreamBackend{}
	}
	if mmapAvailable() {
		return MmapBackend{}
	}
	return StreamBackend{}
}

// StreamBackend reads through a buffered file handle.
type StreamBackend struct{}

func (StreamBackend) Name() string { return "stream" }

func (StreamBackend) Open(path string) (Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newReaderCursor(f, f), nil
}

type readerCursor struct {
	r   *bufio.Reader
	c   io.Closer
	off int64
}

func newReaderCursor(r io.Reader, c io.Closer) *readerCursor {
	return &readerCursor{r: bufio.NewReaderSize(r, 64<<10), c: c}
}

func (rc *readerCursor) ReadFull(p []byte) (int, error) {
	n, err := io.ReadFull(rc.r, p)
	rc.off += int64(n)
	return n, err
}

func (rc *readerCursor) Offset() int64 { return rc.off }

func (rc *readerCursor) Close() error {
	if rc.c == nil {
		return nil
	}
	c := rc.c
	rc.c = nil
	return c.Close()
}

// bytesCursor copies out of an in-memory image, so callers never hold
// references into it.
type bytesCursor struct {
	data    []byte
	pos     int
	release func() error
}

func (bc *bytesCursor) ReadFull(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if bc.pos >= len(bc.data) {
		return 0, io.EOF
	}
	n := copy(p, bc.data[bc.pos:])
	bc.pos += n
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (bc *bytesCursor) Offset() int64 { return int64(bc.pos) }

func (bc *bytesCursor) Close() error {
	bc.data = nil
	if bc.release == nil {
		return nil
	}
	fn := bc.release
	bc.release = nil
	return fn()
}
