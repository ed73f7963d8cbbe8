package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// mockDiscoveryService implements driving.DiscoveryService for testing.
type mockDiscoveryService struct {
	locations []domain.StorageLocation
	err       error
}

func (m *mockDiscoveryService) Discover(_ context.Context) ([]domain.StorageLocation, error) {
	return m.locations, m.err
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	result  *domain.SearchResult
	err     error
	lastReq domain.SearchRequest
	block   bool
}

func (m *mockSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.block {
		if ctx.Done() == nil {
			return nil, errors.New("search context cannot be cancelled")
		}
		<-ctx.Done()
		return nil, errors.Join(domain.ErrCancelled, ctx.Err())
	}
	return m.result, m.err
}

func (m *mockSearchService) Progress(_ string) (*domain.SearchProgress, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSearchService) Cancel(_ string) bool {
	return false
}

// mockFormatService implements driving.FormatService for testing.
type mockFormatService struct {
	doc       *domain.FormattedDocument
	err       error
	lastFiles []domain.FileMatch
	lastTerms []string
}

func (m *mockFormatService) Format(_ context.Context, files []domain.FileMatch, terms []string) (*domain.FormattedDocument, error) {
	m.lastFiles = files
	m.lastTerms = terms
	return m.doc, m.err
}

func (m *mockFormatService) ReadFile(_ context.Context, _ string) (*domain.FileContent, error) {
	return nil, domain.ErrNotFound
}

type testServices struct {
	discovery *mockDiscoveryService
	search    *mockSearchService
	format    *mockFormatService
}

// setupTestServices installs mock services and returns them with a cleanup.
func setupTestServices() (*testServices, func()) {
	oldDiscovery, oldSearch, oldFormat := discoveryService, searchService, formatService
	oldFactory, oldStore, oldSettings := serviceFactory, configStore, settings

	ts := &testServices{
		discovery: &mockDiscoveryService{},
		search:    &mockSearchService{result: &domain.SearchResult{}},
		format:    &mockFormatService{doc: &domain.FormattedDocument{}},
	}
	SetServices(&Services{Discovery: ts.discovery, Search: ts.search, Format: ts.format})
	serviceFactory = nil
	configStore = nil

	return ts, func() {
		discoveryService, searchService, formatService = oldDiscovery, oldSearch, oldFormat
		serviceFactory, configStore, settings = oldFactory, oldStore, oldSettings
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	setContext(ctx, rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// setContext replaces the context every command kept from an earlier run.
// Cobra only hands the root context to subcommands whose own is unset.
func setContext(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(ctx, c)
	}
}

// resetFlags restores every flag to its default so tests don't leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var modified = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
