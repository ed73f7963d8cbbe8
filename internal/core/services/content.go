package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/logger"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/plaintext"
)

// sniffBytes is how much of a file with an unknown extension is read to
// decide whether it is text.
const sniffBytes = 8 << 10

// byteBudget is the deep-search read allowance of one root. It is owned by
// the goroutine scanning that root.
type byteBudget struct {
	remaining int64
}

func (b *byteBudget) spend(n int64) {
	b.remaining -= n
	if b.remaining < 0 {
		b.remaining = 0
	}
}

// loaded is the text a search examines for one file.
type loaded struct {
	text string

	// examined is false when the file's content was not looked at.
	examined bool

	// partial is set when only a prefix could be examined.
	partial bool

	// note explains a limit that applied to the file.
	note string
}

// ContentLoader reads file text within the configured limits. It serves
// shallow and deep search reads and full reads for formatting.
type ContentLoader struct {
	reader   driven.ContentReader
	registry driven.NormaliserRegistry
	throttle driven.Throttle
	limits   domain.SearchSettings
}

// NewContentLoader creates a loader. The throttle may be nil.
func NewContentLoader(
	reader driven.ContentReader,
	registry driven.NormaliserRegistry,
	throttle driven.Throttle,
	limits domain.SearchSettings,
) *ContentLoader {
	return &ContentLoader{
		reader:   reader,
		registry: registry,
		throttle: throttle,
		limits:   limits,
	}
}

func (l *ContentLoader) read(ctx context.Context, path string, limit int64) ([]byte, error) {
	if l.throttle != nil {
		if err := l.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.reader.ReadPrefix(ctx, path, limit)
}

// Shallow reads a bounded prefix of a text file. Other files are not
// examined.
func (l *ContentLoader) Shallow(ctx context.Context, file driven.FileEntry) (loaded, error) {
	if !domain.TypeForName(file.Name).IsText() {
		return loaded{}, nil
	}
	data, err := l.read(ctx, file.Path, l.limits.ShallowContentBytes)
	if err != nil {
		return loaded{}, err
	}
	return loaded{
		text:     plaintext.DecodePrefix(data),
		examined: true,
		partial:  file.Size > int64(len(data)),
	}, nil
}

// Deep reads the whole of a text file and extracts documents and archives,
// charging what it reads to budget. A text file is never examined less than
// Shallow would examine it.
func (l *ContentLoader) Deep(ctx context.Context, file driven.FileEntry, budget *byteBudget) (loaded, error) {
	ft := domain.TypeForName(file.Name)
	switch {
	case ft.IsText():
		return l.deepText(ctx, file, budget)
	case ft.NeedsExtraction():
		return l.deepExtract(ctx, file, budget)
	}

	head, err := l.read(ctx, file.Path, sniffBytes)
	if err != nil {
		return loaded{}, err
	}
	if !plaintext.LooksText(head) {
		return loaded{}, nil
	}
	if file.Size <= int64(len(head)) {
		budget.spend(int64(len(head)))
		return loaded{text: plaintext.Decode(head), examined: true}, nil
	}
	return l.deepText(ctx, file, budget)
}

func (l *ContentLoader) deepText(ctx context.Context, file driven.FileEntry, budget *byteBudget) (loaded, error) {
	limit := min(l.limits.DeepFileBytes, budget.remaining)
	limit = max(limit, l.limits.ShallowContentBytes)

	data, err := l.read(ctx, file.Path, limit)
	if err != nil {
		return loaded{}, err
	}
	budget.spend(int64(len(data)))
	out := loaded{text: plaintext.DecodePrefix(data), examined: true}

	if file.Size > int64(len(data)) {
		out.partial = true
		out.note = fmt.Sprintf("%s: scanned first %d of %d bytes: %v",
			file.Path, len(data), file.Size, domain.ErrResourceLimitExceeded)
	}

	// Markup and mail also match on their visible text.
	if n, ok := l.registry.Lookup(file.Name); ok && n.Name() != "plaintext" {
		res, err := n.Normalise(ctx, &domain.RawFile{Path: file.Path, Name: file.Name, Content: data})
		if err == nil && res.Text != "" {
			out.text += "\n" + res.Text
		}
	}
	return out, nil
}

func (l *ContentLoader) deepExtract(ctx context.Context, file driven.FileEntry, budget *byteBudget) (loaded, error) {
	if file.Size > l.limits.DeepFileBytes || file.Size > budget.remaining {
		return loaded{note: fmt.Sprintf("%s: %d bytes exceeds the deep search allowance, not extracted: %v",
			file.Path, file.Size, domain.ErrResourceLimitExceeded)}, nil
	}

	n, ok := l.registry.Lookup(file.Name)
	if !ok {
		return loaded{}, nil
	}

	text, err := l.extract(ctx, n, file)
	if err != nil {
		if domain.IsCancelled(err) || errors.Is(err, domain.ErrPathInaccessible) {
			return loaded{}, err
		}
		logger.Debug("%s extraction failed for %s: %v", n.Name(), file.Path, err)
		return loaded{}, nil
	}
	budget.spend(file.Size)
	return loaded{text: text, examined: true}, nil
}

// extract runs a normaliser, reading the body only when it needs one.
func (l *ContentLoader) extract(ctx context.Context, n driven.Normaliser, file driven.FileEntry) (string, error) {
	raw := &domain.RawFile{Path: file.Path, Name: file.Name}
	if n.NeedsContent() {
		data, err := l.read(ctx, file.Path, l.limits.DeepFileBytes)
		if err != nil {
			return "", readError(err)
		}
		raw.Content = data
	} else if l.throttle != nil {
		if err := l.throttle.Wait(ctx); err != nil {
			return "", err
		}
	}

	res, err := n.Normalise(ctx, raw)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Full reads the complete text of one file for display or formatting.
// Text larger than the deep per-file ceiling is refused with
// domain.ErrResourceLimitExceeded; binary files with
// domain.ErrUnsupportedType.
func (l *ContentLoader) Full(ctx context.Context, path string) (*domain.FileContent, error) {
	entry, err := l.reader.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}

	ft := domain.TypeForName(entry.Name)
	fc := &domain.FileContent{
		Path:     entry.Path,
		Name:     entry.Name,
		Type:     ft.Label,
		Size:     entry.Size,
		Modified: entry.Modified,
	}
	if entry.Size > l.limits.DeepFileBytes {
		return fc, &domain.OpError{Op: "read", Path: path,
			Err: fmt.Errorf("%d bytes is over the %d byte limit: %w", entry.Size, l.limits.DeepFileBytes, domain.ErrResourceLimitExceeded)}
	}

	if ft.NeedsExtraction() {
		n, ok := l.registry.Lookup(entry.Name)
		if !ok {
			return fc, &domain.OpError{Op: "read", Path: path, Err: domain.ErrUnsupportedType}
		}
		text, err := l.extract(ctx, n, entry)
		if err != nil {
			return fc, &domain.OpError{Op: "read", Path: path, Err: err}
		}
		fc.Content = text
		return fc, nil
	}

	data, err := l.read(ctx, path, l.limits.DeepFileBytes)
	if err != nil {
		return fc, &domain.OpError{Op: "read", Path: path, Err: readError(err)}
	}
	if !ft.IsText() && !plaintext.LooksText(data) {
		return fc, &domain.OpError{Op: "read", Path: path, Err: domain.ErrUnsupportedType}
	}
	text := plaintext.Decode(data)
	if plaintext.HasBinary(text) {
		return fc, &domain.OpError{Op: "read", Path: path, Err: domain.ErrUnsupportedType}
	}
	fc.Content = text
	return fc, nil
}

func statError(path string, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return &domain.OpError{Op: "read", Path: path, Err: err}
	}
	return &domain.OpError{Op: "read", Path: path, Err: readError(err)}
}

// readError classifies a filesystem failure.
func readError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindCancelled:
		return err
	case domain.KindPathInaccessible:
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrPathInaccessible, err)
	default:
		return err
	}
}
