// Package tokenizer estimates language model token counts with tiktoken.
//
// The BPE ranks are loaded in the background once Start is called. tiktoken
// may fetch them over the network on a cold cache, so a count never waits
// longer than the configured load wait; until the ranks are available (or
// when they cannot be loaded at all) counts fall back to a
// characters-per-token estimate.
package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// Ensure Tiktoken implements the interface.
var _ driven.Tokenizer = (*Tiktoken)(nil)

// DefaultModel is used when no model is configured or the model is unknown.
const DefaultModel = "gpt-4o"

// DefaultLoadWait bounds how long a count waits for the encoding.
const DefaultLoadWait = 10 * time.Second

// charsPerToken approximates English text for the fallback estimate.
const charsPerToken = 4

type encoder interface {
	EncodeOrdinary(text string) []int
}

// Tiktoken counts tokens with the encoding of a model.
type Tiktoken struct {
	model string
	load  func(model string) (encoder, error)
	wait  time.Duration

	once  sync.Once
	ready chan struct{}
	enc   encoder // written before ready is closed
}

// New creates a tokenizer for model. Loading starts with Start, Preload or
// the first count.
func New(model string) *Tiktoken {
	if model == "" {
		model = DefaultModel
	}
	return &Tiktoken{
		model: model,
		load:  loadEncoding,
		wait:  DefaultLoadWait,
		ready: make(chan struct{}),
	}
}

func loadEncoding(model string) (encoder, error) {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("tiktoken model %q not found, falling back to %q: %v", model, DefaultModel, err)
		tke, err = tiktoken.EncodingForModel(DefaultModel)
		if err != nil {
			return nil, err
		}
	}
	return tke, nil
}

// Model returns the model whose encoding is used.
func (t *Tiktoken) Model() string {
	return t.model
}

// Start begins loading the encoding in the background. It returns at once
// and is safe to call more than once.
func (t *Tiktoken) Start() {
	t.once.Do(func() {
		go func() {
			defer close(t.ready)
			enc, err := t.load(t.model)
			if err != nil {
				logger.Warn("token counts are estimated: %v", err)
				return
			}
			t.enc = enc
		}()
	})
}

// Preload starts loading and waits until the encoding is usable or ctx is
// done. An error means counts are estimated for now.
func (t *Tiktoken) Preload(ctx context.Context) error {
	t.Start()
	select {
	case <-t.ready:
		if t.enc == nil {
			return fmt.Errorf("encoding for %s unavailable", t.model)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("loading encoding for %s: %w", t.model, ctx.Err())
	}
}

// CountTokens returns the number of tokens in text.
func (t *Tiktoken) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.encoder(); enc != nil {
		return len(enc.EncodeOrdinary(text))
	}
	return Estimate(text)
}

// encoder returns the loaded encoding, waiting at most t.wait for it.
func (t *Tiktoken) encoder() encoder {
	t.Start()
	select {
	case <-t.ready:
		return t.enc
	default:
	}

	timer := time.NewTimer(t.wait)
	defer timer.Stop()
	select {
	case <-t.ready:
		return t.enc
	case <-timer.C:
		logger.Debug("encoding for %s still loading after %s, estimating", t.model, t.wait)
		return nil
	}
}

// Estimate approximates a token count from the character count.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
