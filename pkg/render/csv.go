package render

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/travigo/transferboard/pkg/ctdf"
)

// CSV writes rows with a header line using the csv tags of ctdf.ComparisonRow.
func CSV(w io.Writer, rows []ctdf.ComparisonRow) error {
	if rows == nil {
		rows = []ctdf.ComparisonRow{}
	}

	return gocsv.Marshal(rows, w)
}
