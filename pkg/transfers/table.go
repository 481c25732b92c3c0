package transfers

import (
	"time"

	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/etafeed"
)

const EmptyStateMessage = "No feasible transfers right now"

type ComparisonTable struct {
	GeneratedAt time.Time            `groups:"detailed"`
	Rows        []ctdf.ComparisonRow `groups:"basic"`

	Sources map[string][]etafeed.SourceResult `groups:"detailed"`
}

// Empty reports a successful build that found no feasible transfer.
func (t *ComparisonTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *ComparisonTable) SkippedSources() int {
	if t == nil {
		return 0
	}

	skipped := 0
	for _, sources := range t.Sources {
		for _, source := range sources {
			if source.Skipped() {
				skipped++
			}
		}
	}

	return skipped
}
