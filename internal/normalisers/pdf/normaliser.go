package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tenebris-tech/x2md/convert"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound is returned when no PDF extractor could run.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const toolName = "pdftotext"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Converter turns a PDF file into text without external tools.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner    CommandRunner
	converter Converter
	lookPath  func(string) (string, error)
}

// New creates a PDF normaliser that runs pdftotext and falls back to x2md.
func New() *Normaliser {
	return &Normaliser{
		runner:    execRunner{},
		converter: markdownConverter{},
		lookPath:  exec.LookPath,
	}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	n := New()
	n.runner = runner
	return n
}

// WithConverter replaces the fallback converter.
func (n *Normaliser) WithConverter(c Converter) *Normaliser {
	n.converter = c
	return n
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "pdf"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports false: extraction works from the file on disk.
func (n *Normaliser) NeedsContent() bool {
	return false
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction works best with pdftotext (part of poppler):
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils
  Windows:        choco install poppler`
}

// Normalise extracts the text of a PDF.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	path, cleanup, err := sourcePath(raw)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var text string
	if _, lookErr := n.lookPath(toolName); lookErr == nil {
		out, err := n.runner.Run(ctx, toolName, "-q", "-enc", "UTF-8", path, "-")
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed on %s: %w", raw.Name, err)
		}
		text = string(out)
	} else {
		if n.converter == nil {
			return nil, ErrPDFToolNotFound
		}
		text, err = n.converter.Convert(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w; fallback conversion of %s failed: %v", ErrPDFToolNotFound, raw.Name, err)
		}
	}

	return &driven.NormaliseResult{
		Text:   cleanText(text),
		Format: "pdf",
	}, nil
}

// sourcePath returns a file on disk holding the PDF. Content without a
// path is written to a temporary file.
func sourcePath(raw *domain.RawFile) (string, func(), error) {
	if raw.Path != "" {
		return raw.Path, func() {}, nil
	}
	if len(raw.Content) == 0 {
		return "", nil, fmt.Errorf("pdf %s has no path or content: %w", raw.Name, domain.ErrInvalidInput)
	}
	f, err := os.CreateTemp("", "k3ss-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }
	if _, err := f.Write(raw.Content); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

// cleanText drops form feeds and trailing blank lines.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\f", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// markdownConverter converts with x2md in a scratch directory so nothing
// is written next to the user's file.
type markdownConverter struct{}

func (markdownConverter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "k3ss-pdf-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return "", err
	}

	converter := convert.New(
		convert.WithRecursion(false),
		convert.WithSkipExisting(true),
	)
	result, err := converter.Convert(dst)
	if err != nil {
		return "", err
	}
	if result.Converted == 0 {
		return "", fmt.Errorf("x2md converted nothing (%d failed)", result.Failed)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil || len(matches) == 0 {
		return "", errors.New("x2md produced no output")
	}
	out, err := os.ReadFile(matches[0])
	if err != nil {
		return "", err
	}
	return string(out), nil
}
