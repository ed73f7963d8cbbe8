package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// Ensure FormatService implements the interface.
var _ driving.FormatService = (*FormatService)(nil)

// minFence is the shortest fence used around file content.
const minFence = 4

// minTruncatedChars is the smallest excerpt worth including when a file has
// to be truncated to fit the remaining budget.
const minTruncatedChars = 200

// FormatService renders files for an LLM prompt.
//
// Content is re-read on every call, so the output is only reproducible
// while the files are unchanged. It carries no timestamp of its own.
type FormatService struct {
	guard     *LocationGuard
	loader    *ContentLoader
	settings  domain.FormatSettings
	tokenizer driven.Tokenizer
}

// NewFormatService creates a format service. The tokenizer may be nil.
func NewFormatService(guard *LocationGuard, loader *ContentLoader, settings domain.FormatSettings, tokenizer driven.Tokenizer) *FormatService {
	return &FormatService{
		guard:     guard,
		loader:    loader,
		settings:  settings,
		tokenizer: tokenizer,
	}
}

// ReadFile returns the extracted text of one file inside a discovered
// location.
func (s *FormatService) ReadFile(ctx context.Context, path string) (*domain.FileContent, error) {
	scope, err := s.guard.Scope(ctx)
	if err != nil {
		return nil, err
	}
	canonical, err := scope.CheckFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := s.loader.Full(ctx, canonical)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// Format renders files in the order given. A file that cannot be read gets
// a placeholder; once the budget cannot fit another block the remaining
// files are listed as omitted.
func (s *FormatService) Format(ctx context.Context, files []domain.FileMatch, terms []string) (*domain.FormattedDocument, error) {
	logger.Section("Format for LLM")
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to format: %w", domain.ErrInvalidInput)
	}
	terms = domain.PrepareTerms(terms)

	scope, err := s.guard.Scope(ctx)
	if err != nil {
		return nil, err
	}

	n := len(files)
	var b strings.Builder
	header := formatHeader(terms, n)
	b.WriteString(header)

	// Reserve room for the longest possible omission footer.
	reserve := runes(omittedFooter(1, n, s.settings.MaxChars)) + len(strconv.Itoa(n))
	remaining := s.settings.MaxChars - runes(header) - reserve
	doc := &domain.FormattedDocument{FileCount: n}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("format: %w", domain.ErrCancelled)
		}

		body, placeholder, err := s.content(ctx, scope, f.Path)
		if err != nil {
			return nil, err
		}

		block, ok := s.block(i+1, n, f, body, placeholder, remaining)
		if !ok {
			doc.OmittedFiles = n - i
			b.WriteString(omittedFooter(i+1, n, s.settings.MaxChars))
			logger.Debug("budget reached at file %d of %d", i+1, n)
			break
		}
		remaining -= runes(block.text)
		b.WriteString(block.text)
		doc.IncludedFiles++
		if block.truncated {
			doc.TruncatedFiles++
		}
	}

	doc.Content = b.String()
	if s.tokenizer != nil {
		doc.TokenEstimate = s.tokenizer.CountTokens(doc.Content)
	}
	return doc, nil
}

// content reads a file's text. Failures other than cancellation become a
// placeholder line.
func (s *FormatService) content(ctx context.Context, scope *GuardScope, path string) (string, bool, error) {
	canonical, err := scope.CheckFile(path)
	if err != nil {
		return fmt.Sprintf("[Content unavailable: %v]", err), true, nil
	}

	fc, err := s.loader.Full(ctx, canonical)
	switch {
	case err == nil:
		return fc.Content, false, nil
	case domain.IsCancelled(err):
		return "", false, fmt.Errorf("format: %w", domain.ErrCancelled)
	case errors.Is(err, domain.ErrResourceLimitExceeded):
		return fmt.Sprintf("[Content omitted: file is too large (%d bytes)]", fc.Size), true, nil
	case errors.Is(err, domain.ErrUnsupportedType):
		return "[Content omitted: binary or unsupported file type]", true, nil
	default:
		return fmt.Sprintf("[Content unavailable: %v]", err), true, nil
	}
}

type renderedBlock struct {
	text      string
	truncated bool
}

// block renders one file within budget runes. It reports false when not
// even a minimal block fits.
func (s *FormatService) block(i, n int, f domain.FileMatch, body string, placeholder bool, budget int) (renderedBlock, bool) {
	meta := blockMeta(i, n, f)
	end := fmt.Sprintf("----- END FILE %d -----\n\n", i)

	if placeholder {
		text := meta + body + "\n" + end
		return renderedBlock{text: text}, runes(text) <= budget
	}

	total := runes(body)
	full := fence(meta, body, end, "")
	if total <= s.settings.MaxFileChars && runes(full) <= budget {
		return renderedBlock{text: full}, true
	}

	// Size the excerpt with the widest truncation line and fence it could
	// get, plus the newline that may close the excerpt.
	overhead := runes(fence(meta, "", end, truncatedLine(total, total))) + 2*(fenceLen(body)-minFence) + 1
	avail := min(budget-overhead, s.settings.MaxFileChars)
	if avail < min(minTruncatedChars, total) || avail <= 0 {
		return renderedBlock{}, false
	}

	cut := truncateRunes(body, avail)
	return renderedBlock{
		text:      fence(meta, cut, end, truncatedLine(avail, total)),
		truncated: true,
	}, true
}

func formatHeader(terms []string, n int) string {
	var b strings.Builder
	b.WriteString("# Search results\n")
	if len(terms) > 0 {
		fmt.Fprintf(&b, "Search terms: %s\n", strings.Join(terms, ", "))
	}
	fmt.Fprintf(&b, "Files: %d\n\n", n)
	return b.String()
}

func blockMeta(i, n int, f domain.FileMatch) string {
	modified := "unknown"
	if !f.Modified.IsZero() {
		modified = f.Modified.UTC().Format(time.RFC3339)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "----- FILE %d of %d -----\n", i, n)
	fmt.Fprintf(&b, "Path: %s\n", f.Path)
	if f.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", f.Type)
	}
	fmt.Fprintf(&b, "Size: %d bytes\n", f.Size)
	fmt.Fprintf(&b, "Modified: %s\n", modified)
	if len(f.Matches) > 0 {
		fmt.Fprintf(&b, "Matched terms: %s\n", strings.Join(f.Matches, ", "))
	}
	return b.String()
}

// fence wraps body in a tilde fence that no line of body can close.
func fence(meta, body, end, note string) string {
	marker := strings.Repeat("~", fenceLen(body))

	var b strings.Builder
	b.WriteString(meta)
	b.WriteString(marker)
	b.WriteByte('\n')
	b.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(marker)
	b.WriteByte('\n')
	if note != "" {
		b.WriteString(note)
		b.WriteByte('\n')
	}
	b.WriteString(end)
	return b.String()
}

// fenceLen is one longer than the longest run of tildes opening a line.
// A closing fence may be indented by up to three spaces.
func fenceLen(body string) int {
	longest := 0
	for _, line := range strings.Split(body, "\n") {
		for k := 0; k < 3 && strings.HasPrefix(line, " "); k++ {
			line = line[1:]
		}
		run := len(line) - len(strings.TrimLeft(line, "~"))
		longest = max(longest, run)
	}
	return max(minFence, longest+1)
}

func truncatedLine(shown, total int) string {
	return fmt.Sprintf("[TRUNCATED: showing %d of %d characters]", shown, total)
}

func omittedFooter(from, n, budget int) string {
	return fmt.Sprintf("[OMITTED: %d file(s) not included because the character budget of %d was reached: FILE %d through FILE %d]\n",
		n-from+1, budget, from, n)
}

func truncateRunes(s string, n int) string {
	off := 0
	for i := 0; i < n && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return s[:off]
}

func runes(s string) int {
	return utf8.RuneCountInString(s)
}
