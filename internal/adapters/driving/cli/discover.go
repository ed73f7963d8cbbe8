package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

var discoverJSON bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List searchable storage locations",
	Long: `Probes the home directory, mounted volumes and cloud sync folders
(Google Drive, Dropbox, OneDrive, iCloud, Box) and lists each location with
its type and whether it can be read.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "output locations as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	if err := requireDiscovery(); err != nil {
		return err
	}

	locations, err := discoveryService.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if locations == nil {
		locations = []domain.StorageLocation{}
	}

	if discoverJSON {
		data, err := json.MarshalIndent(locations, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal locations: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(locations) == 0 {
		cmd.Println("No storage locations found.")
		return nil
	}

	cmd.Println("Storage locations:")
	cmd.Println()
	for i, l := range locations {
		status := ""
		if !l.Accessible {
			status = " (inaccessible)"
		}
		cmd.Printf("  [%d] %s [%s]%s\n", i+1, l.Name, l.Type, status)
		cmd.Printf("      %s\n", l.Path)
		if l.Description != "" {
			cmd.Printf("      %s\n", l.Description)
		}
	}
	return nil
}
