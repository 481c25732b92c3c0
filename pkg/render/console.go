package render

import (
	"fmt"
	"io"
	"time"

	"github.com/rodaine/table"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/refresh"
	"github.com/travigo/transferboard/pkg/transfers"
)

const (
	MarginalMarker = "!"

	legendETA     = "ETA: 預計到站時間 Estimated Time of Arrival"
	legendETR     = "ETR: 預計剩餘時間 (分鐘) Estimated Time Remaining (minutes)"
	legendWarning = "Shortest ETR: 預計最短轉乘時間 (分鐘) 等於0或1, 有機率趕唔到第二程車"
)

var consoleHeaders = []interface{}{
	"", "Route A", "ETA A", "ETR A", "Alight", "Route B", "ETA B", "ETR B", "Slack",
}

// Console writes the header, legend and transfer table for state.
func Console(w io.Writer, state refresh.State, interval time.Duration, now time.Time, rule *MarginalRule) error {
	countdown := state.Countdown(now, interval)

	_, err := fmt.Fprintf(w, "Next update in %d seconds (Last updated: %s) [更新次數: %d]\n\n",
		int(countdown/time.Second),
		state.LastUpdated.In(ctdf.DisplayLocation).Format(ctdf.ClockTimeFormat),
		state.Counter,
	)
	if err != nil {
		return err
	}

	for _, line := range []string{legendETA, legendETR, legendWarning} {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	rows := state.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, transfers.EmptyStateMessage)
		return err
	}

	tbl := table.New(consoleHeaders...).WithWriter(w)

	for _, row := range rows {
		marker := ""

		marginal, err := rule.Match(row)
		if err != nil {
			log.Error().Err(err).Str("rule", rule.Source).Msg("Failed to evaluate marginal rule")
		} else if marginal {
			marker = MarginalMarker
		}

		tbl.AddRow(
			marker,
			row.RouteA,
			row.ArrivalClockTimeA,
			row.RemainingMinutesA,
			row.AlightDescription,
			row.RouteB,
			row.ArrivalClockTimeB,
			row.RemainingMinutesB,
			row.TransferSlack,
		)
	}

	tbl.Print()

	return nil
}
