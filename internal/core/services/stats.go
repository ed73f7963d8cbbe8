package services

import (
	"time"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// AggregateStats derives the summary of a completed search. It performs no
// I/O. MatchingFiles always equals len(results).
func AggregateStats(req domain.SearchRequest, results []domain.FileMatch, counters domain.ScanCounters, elapsed time.Duration) domain.SearchStats {
	return domain.SearchStats{
		TotalFilesScanned:       counters.FilesScanned,
		TotalDirectoriesScanned: counters.DirectoriesScanned,
		MatchingFiles:           len(results),
		SkippedFiles:            counters.SkippedFiles,
		SearchTerms:             domain.PrepareTerms(req.Terms),
		DeepSearchEnabled:       req.DeepSearch,
		ElapsedMS:               elapsed.Milliseconds(),
	}
}
