package transfers

import (
	"sort"
	"time"

	"github.com/travigo/transferboard/pkg/ctdf"
)

// rankedRow carries the route B instant used for ordering. It never leaves
// this package.
type rankedRow struct {
	row             ctdf.ComparisonRow
	arrivalInstantB time.Time
}

// sortRankedRows orders by route B arrival (unknown instants last), then by
// route A clock time.
func sortRankedRows(rows []rankedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		switch {
		case a.arrivalInstantB.IsZero() && !b.arrivalInstantB.IsZero():
			return false
		case !a.arrivalInstantB.IsZero() && b.arrivalInstantB.IsZero():
			return true
		case !a.arrivalInstantB.Equal(b.arrivalInstantB):
			return a.arrivalInstantB.Before(b.arrivalInstantB)
		}

		return a.row.ArrivalClockTimeA < b.row.ArrivalClockTimeA
	})
}

func stripRanking(ranked []rankedRow) []ctdf.ComparisonRow {
	rows := make([]ctdf.ComparisonRow, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, r.row)
	}

	return rows
}
