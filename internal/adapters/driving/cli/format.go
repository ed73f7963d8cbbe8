package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

var (
	formatTerms string
	formatFrom  string
	formatOut   string
)

var formatCmd = &cobra.Command{
	Use:   "format [path...]",
	Short: "Render files into one document for a language model",
	Long: `Reads the given files and renders them into a single Markdown document
with a header naming the search terms, one metadata block per file and each
file's content in a fenced block. Large files are truncated and the whole
document stays within the configured character budget.

Files are taken from the arguments, or from a results file written by
"k3ss-search search --json".`,
	Example: `  k3ss-search search --path ~/Documents --json invoice > results.json
  k3ss-search format --terms invoice --from results.json --out context.md`,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringVarP(&formatTerms, "terms", "t", "", "comma-delimited search terms named in the header")
	formatCmd.Flags().StringVar(&formatFrom, "from", "", "read files from a search results JSON file")
	formatCmd.Flags().StringVarP(&formatOut, "out", "o", "", "write the document to a file instead of stdout")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	if err := requireFormat(); err != nil {
		return err
	}

	var files []domain.FileMatch
	switch {
	case formatFrom != "" && len(args) > 0:
		return errors.New("use either --from or file arguments, not both")
	case formatFrom != "":
		loaded, err := loadResults(formatFrom)
		if err != nil {
			return err
		}
		files = loaded
	default:
		for _, arg := range args {
			files = append(files, describeFile(filesystem.ResolvePath(expandHome(arg))))
		}
	}
	if len(files) == 0 {
		return errors.New("no files to format")
	}

	doc, err := formatService.Format(cmd.Context(), files, domain.ParseTerms(formatTerms))
	if err != nil {
		return fmt.Errorf("format failed: %w", err)
	}

	if formatOut == "" {
		cmd.Print(doc.Content)
	} else if err := os.WriteFile(formatOut, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", formatOut, err)
	}

	summary := fmt.Sprintf("%d of %d files included", doc.IncludedFiles, doc.FileCount)
	if doc.TruncatedFiles > 0 {
		summary += fmt.Sprintf(", %d truncated", doc.TruncatedFiles)
	}
	if doc.OmittedFiles > 0 {
		summary += fmt.Sprintf(", %d omitted", doc.OmittedFiles)
	}
	if doc.TokenEstimate > 0 {
		summary += fmt.Sprintf(", about %d tokens", doc.TokenEstimate)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), summary)
	return nil
}

// loadResults reads the files of a search result document.
func loadResults(path string) ([]domain.FileMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var result domain.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return result.Results, nil
}

// describeFile builds the metadata of a named file. A file that cannot be
// read keeps only its name and path; the formatter notes it.
func describeFile(path string) domain.FileMatch {
	name := filepath.Base(path)
	m := domain.FileMatch{
		Name: name,
		Path: path,
		Type: domain.TypeForName(name).Label,
	}
	if info, err := os.Stat(path); err == nil {
		m.Size = info.Size()
		m.Modified = info.ModTime()
	}
	return m
}
