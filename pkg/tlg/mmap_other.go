//go:build !unix

package tlg

import "errors"

// MmapBackend is unavailable on this platform; SelectBackend never picks it.
type MmapBackend struct{}

func (MmapBackend) Name() string { return "mmap" }

func (MmapBackend) Open(string) (Cursor, error) {
	return nil, errors.New("tlg: mmap backend not supported on this platform")
}

func mmapAvailable() bool { return false }
