package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.ContentReader = (*Reader)(nil)

// readChunk is how much is read between cancellation checks.
const readChunk = 1 << 20

// Reader reads file contents from the local disk.
type Reader struct{}

// NewReader creates a file content reader.
func NewReader() *Reader {
	return &Reader{}
}

// Stat describes a regular file.
func (r *Reader) Stat(path string) (driven.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return driven.FileEntry{}, err
	}
	if !info.Mode().IsRegular() {
		return driven.FileEntry{}, fmt.Errorf("%s is not a regular file: %w", path, domain.ErrInvalidInput)
	}
	return driven.FileEntry{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

// ReadPrefix returns at most limit bytes from the start of path.
func (r *Reader) ReadPrefix(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size := limit
	if info, err := f.Stat(); err == nil && info.Size() < size {
		size = info.Size()
	}
	buf := make([]byte, 0, size)
	src := io.LimitReader(f, limit)
	chunk := make([]byte, min(int64(readChunk), limit))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := src.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
}
