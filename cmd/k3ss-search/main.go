// Command k3ss-search discovers storage locations, searches them by file
// name and content, and formats hits for language models.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/config/file"
	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/host"
	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/throttle"
	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/tokenizer"
	"github.com/k3ss-official/k3ss-search/internal/adapters/driving/cli"
	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/services"
	"github.com/k3ss-official/k3ss-search/internal/logger"
	"github.com/k3ss-official/k3ss-search/internal/normalisers"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store, err := file.NewConfigStore(os.Getenv("K3SS_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	cli.SetVersion(version)
	cli.SetConfigStore(store)
	cli.SetServiceFactory(buildServices)
	return cli.Execute(ctx)
}

// buildServices wires the services over the local host.
func buildServices(settings domain.Settings) (*cli.Services, error) {
	logger.Section("Wiring services")

	probe := host.New()
	discovery := services.NewDiscoveryService(probe)
	guard := services.NewLocationGuard(discovery, probe, settings.Search.AllowUndiscovered)

	walker := filesystem.NewWalker(driven.WalkOptions{
		SkipHidden:       settings.Search.SkipHidden,
		FollowSymlinks:   settings.Search.FollowSymlinks,
		RespectGitignore: settings.Search.RespectGitignore,
		ExcludeDirs:      settings.Search.ExcludeDirs,
	})
	loader := services.NewContentLoader(
		filesystem.NewReader(),
		normalisers.NewDefaultRegistry(),
		throttle.New(settings.Search.ReadsPerSecond),
		settings.Search,
	)

	var tok driven.Tokenizer
	if settings.Format.TokenizerModel != "" {
		tk := tokenizer.New(settings.Format.TokenizerModel)
		tk.Start()
		tok = tk
	}

	logger.Debug("shallow prefix %d bytes, deep file limit %d bytes, deep run limit %d bytes",
		settings.Search.ShallowContentBytes, settings.Search.DeepFileBytes, settings.Search.DeepRunBytes)

	return &cli.Services{
		Discovery: discovery,
		Search:    services.NewSearchService(guard, walker, loader, services.NewSearchRegistry(), settings.Search),
		Format:    services.NewFormatService(guard, loader, settings.Format, tok),
	}, nil
}
