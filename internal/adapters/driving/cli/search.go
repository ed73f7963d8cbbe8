package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// progressInterval is how often live progress is redrawn on a terminal.
const progressInterval = 250 * time.Millisecond

var (
	searchPaths   []string
	searchContent bool
	searchDeep    bool
	searchAnyPath bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [terms]",
	Short: "Search files by name and content",
	Long: `Searches the given locations for files whose name or content contains
any of the terms. Terms are comma-delimited and matched case-insensitively.

By default only the first part of each text file is read. Use --deep to scan
whole files and extract text from PDF, Office documents and archives.

Hidden files and directories are neither searched nor counted as scanned.
Set search.skip_hidden to false to include them.

Press Ctrl-C to cancel a running search.`,
	Example: `  k3ss-search search --path ~/Documents invoice,2023
  k3ss-search search --path /Volumes/Backup --deep --json "tax return"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchPaths, "path", "p", nil, "directory to search (repeatable)")
	searchCmd.Flags().BoolVar(&searchContent, "content", true, "match file contents as well as names")
	searchCmd.Flags().BoolVar(&searchDeep, "deep", false, "scan whole files and extract documents and archives")
	searchCmd.Flags().BoolVar(&searchAnyPath, "any-path", false, "allow directories outside discovered locations")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireSearch(); err != nil {
		return err
	}

	paths := make([]string, len(searchPaths))
	for i, p := range searchPaths {
		paths[i] = filesystem.ResolvePath(expandHome(p))
	}

	req := domain.SearchRequest{
		Paths:         paths,
		Terms:         domain.ParseTerms(strings.Join(args, ",")),
		SearchContent: searchContent,
		DeepSearch:    searchDeep,
		SearchID:      uuid.NewString(),
	}

	stop := func() {}
	if !searchJSON && isTerminal(cmd.ErrOrStderr()) {
		stop = watchProgress(cmd.ErrOrStderr(), req.SearchID)
	}
	result, err := searchService.Search(cmd.Context(), req)
	stop()

	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return errors.New("search cancelled")
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchTable(cmd, result)
}

func outputSearchJSON(cmd *cobra.Command, result *domain.SearchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.SearchResult) error {
	stats := result.Stats
	if len(result.Results) == 0 {
		cmd.Println("No results found.")
	} else {
		cmd.Println("Results:")
		cmd.Println()
	}

	for i := range result.Results {
		m := result.Results[i]
		cmd.Printf("  [%d] %s\n", i+1, m.Name)
		cmd.Printf("      %s\n", m.Path)
		cmd.Printf("      %s, %s, modified %s\n", m.Type, humanSize(m.Size), m.Modified.Local().Format("2006-01-02 15:04"))
		cmd.Printf("      matches: %s\n", strings.Join(m.Matches, ", "))
		if m.ContentPreview != "" {
			cmd.Printf("      %s\n", m.ContentPreview)
		}
		cmd.Println()
	}

	cmd.Printf("Scanned %d files in %d directories (%d skipped) in %dms\n",
		stats.TotalFilesScanned, stats.TotalDirectoriesScanned, stats.SkippedFiles, stats.ElapsedMS)

	for _, e := range result.Errors {
		cmd.Printf("  skipped %s (%s): %s\n", e.Path, e.Kind, e.Message)
	}
	for _, note := range result.Notes {
		cmd.Printf("  note: %s\n", note)
	}
	return nil
}

// watchProgress redraws live progress on w until the returned stop is called.
func watchProgress(w io.Writer, searchID string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		drawn := false
		for {
			select {
			case <-done:
				if drawn {
					fmt.Fprint(w, "\r\033[K")
				}
				return
			case <-ticker.C:
				p, err := searchService.Progress(searchID)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "\r\033[Kscanning: %d files, %d/%d directories, %d matches",
					p.FilesVisited, p.DirectoriesScanned, p.DirectoriesDiscovered, p.MatchingFiles)
				drawn = true
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}

func humanSize(n int64) string {
	switch {
	case n >= domain.GiB:
		return fmt.Sprintf("%.1f GiB", float64(n)/float64(domain.GiB))
	case n >= domain.MiB:
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(domain.MiB))
	case n >= domain.KiB:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(domain.KiB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
