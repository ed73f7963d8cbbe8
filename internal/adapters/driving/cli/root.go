// Package cli provides the k3ss-search command line.
//
// Commands reach the application through driving ports. The composition
// root installs them with SetServices, or lazily through a ServiceFactory
// once the layered configuration has been read.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// annotationNoServices marks commands that run without application
// services and tolerate an invalid configuration.
const annotationNoServices = "k3ss.no-services"

// annotationDotEnv marks commands that read a .env file first.
const annotationDotEnv = "k3ss.dotenv"

// version is set at build time.
var version = "dev"

var verbose bool

// Services holds the driving ports used by commands.
type Services struct {
	Discovery driving.DiscoveryService
	Search    driving.SearchService
	Format    driving.FormatService
}

// ServiceFactory builds the services from the effective settings.
type ServiceFactory func(settings domain.Settings) (*Services, error)

var (
	discoveryService driving.DiscoveryService
	searchService    driving.SearchService
	formatService    driving.FormatService

	serviceFactory ServiceFactory
	configStore    driven.ConfigStore
	settings       = domain.DefaultSettings()
)

var rootCmd = &cobra.Command{
	Use:   "k3ss-search",
	Short: "Find files across local, external and cloud-synced storage",
	Long: `k3ss-search discovers the storage locations on this machine, searches
them by file name and content, and renders the matching files into a single
document ready to paste into a language model.

Run "k3ss-search serve" to start the HTTP API used by the web front end.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command and servers.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services used by commands.
func SetServices(s *Services) {
	discoveryService = s.Discovery
	searchService = s.Search
	formatService = s.Format
}

// SetServiceFactory installs the factory used when no services were set.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetConfigStore installs the persisted configuration.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// Execute runs the root command. Cancelling ctx cancels the running command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// prepare reads the layered configuration, applies logging settings and
// builds the services for commands that need them.
func prepare(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationDotEnv] != "" {
		if err := loadDotEnv(); err != nil {
			return err
		}
	}

	_, noServices := cmd.Annotations[annotationNoServices]

	loaded, err := loadSettings(cmd)
	if err != nil && !noServices {
		return err
	}
	if err == nil {
		settings = loaded
	}

	if err := logger.SetLevel(settings.Log.Level); err != nil {
		logger.Warn("%v", err)
	}
	logger.SetVerbose(verbose)

	if noServices || discoveryService != nil || serviceFactory == nil {
		return nil
	}
	built, err := serviceFactory(settings)
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(built)
	return nil
}

func requireDiscovery() error {
	if discoveryService == nil {
		return errors.New("discovery service not configured")
	}
	return nil
}

func requireSearch() error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	return nil
}

func requireFormat() error {
	if formatService == nil {
		return errors.New("format service not configured")
	}
	return nil
}
