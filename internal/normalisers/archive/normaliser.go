// Package archive provides a Normaliser for zip, tar and gzip archives.
// Entry names are always listed; entries that look like text have their
// content extracted too.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// DefaultEntryBytes caps how much of one entry is read.
	DefaultEntryBytes = 1 << 20
	// DefaultTotalBytes caps decompressed bytes read across all entries.
	DefaultTotalBytes = 64 << 20
	// DefaultMaxEntries caps how many entries are listed.
	DefaultMaxEntries = 10000
)

// errEntryLimit stops a walk of the archive once enough entries are listed.
var errEntryLimit = errors.New("archive entry limit reached")

// Normaliser handles archive files.
type Normaliser struct {
	entryBytes int64
	totalBytes int64
	maxEntries int
}

// New creates an archive normaliser with the default limits.
func New() *Normaliser {
	return &Normaliser{
		entryBytes: DefaultEntryBytes,
		totalBytes: DefaultTotalBytes,
		maxEntries: DefaultMaxEntries,
	}
}

// NewWithLimits creates an archive normaliser with custom read limits.
func NewWithLimits(entryBytes, totalBytes int64) *Normaliser {
	return &Normaliser{entryBytes: entryBytes, totalBytes: totalBytes, maxEntries: DefaultMaxEntries}
}

// WithMaxEntries returns a copy of n that lists at most limit entries.
func (n *Normaliser) WithMaxEntries(limit int) *Normaliser {
	c := *n
	c.maxEntries = limit
	return &c
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "archive"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".zip", ".tar", ".tar.gz", ".tgz", ".gz"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Normalise lists an archive and extracts its text entries.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	l := &listing{ctx: ctx, entryBytes: n.entryBytes, budget: n.totalBytes, maxEntries: n.maxEntries}

	var err error
	switch domain.Extension(raw.Name) {
	case ".zip":
		err = l.readZip(raw.Content)
	case ".tar":
		err = l.readTar(bytes.NewReader(raw.Content))
	case ".tar.gz", ".tgz":
		err = l.readGzip(raw.Content, true, "")
	case ".gz":
		err = l.readGzip(raw.Content, false, strings.TrimSuffix(raw.Name, path.Ext(raw.Name)))
	default:
		return nil, fmt.Errorf("%s: %w", raw.Name, domain.ErrUnsupportedType)
	}
	if errors.Is(err, errEntryLimit) {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	return &driven.NormaliseResult{
		Text:   l.String(),
		Format: "archive",
	}, nil
}

// listing accumulates entry names and text while an archive is read.
type listing struct {
	ctx        context.Context
	entryBytes int64
	budget     int64
	maxEntries int
	names      []string
	texts      []string
	stopped    bool
}

func (l *listing) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(l.names, "\n"))
	if l.stopped {
		fmt.Fprintf(&b, "\n(listing stopped after %d entries)", len(l.names))
	}
	for _, t := range l.texts {
		b.WriteString("\n\n")
		b.WriteString(t)
	}
	return strings.TrimSpace(b.String())
}

// add records an entry and, when it is text, its content.
func (l *listing) add(name string, r io.Reader) error {
	if err := l.ctx.Err(); err != nil {
		return err
	}
	if len(l.names) >= l.maxEntries {
		l.stopped = true
		return errEntryLimit
	}
	l.names = append(l.names, name)
	if r == nil || l.budget <= 0 {
		return nil
	}

	limit := l.entryBytes
	if limit > l.budget {
		limit = l.budget
	}
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil // unreadable entries are listed only
	}
	l.budget -= int64(len(data))

	if !isTextEntry(name, data) {
		return nil
	}
	if text := strings.TrimSpace(plaintext.DecodePrefix(data)); text != "" {
		l.texts = append(l.texts, text)
	}
	return nil
}

func isTextEntry(name string, data []byte) bool {
	ft := domain.TypeForName(name)
	if ft.IsText() {
		return true
	}
	if ft.NeedsExtraction() {
		return false
	}
	return plaintext.LooksText(data) && !plaintext.HasBinary(plaintext.DecodePrefix(data))
}

func (l *listing) readZip(content []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("not a zip archive: %w", domain.ErrInvalidInput)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			if addErr := l.add(f.Name, nil); addErr != nil {
				return addErr
			}
			continue
		}
		err = l.add(f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *listing) readTar(r io.Reader) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if len(l.names) == 0 {
				return fmt.Errorf("not a tar archive: %w", domain.ErrInvalidInput)
			}
			return nil // keep what was read before the corruption
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := l.add(hdr.Name, tr); err != nil {
			return err
		}
	}
}

func (l *listing) readGzip(content []byte, isTar bool, inner string) error {
	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("not a gzip file: %w", domain.ErrInvalidInput)
	}
	defer gz.Close()

	if isTar {
		return l.readTar(gz)
	}
	if gz.Name != "" {
		inner = gz.Name
	}
	return l.add(inner, gz)
}
