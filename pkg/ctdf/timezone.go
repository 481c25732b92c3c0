package ctdf

import "time"

// DisplayLocation is the civil zone every clock time is rendered in (UTC+8).
var DisplayLocation = time.FixedZone("HKT", 8*60*60)

const ClockTimeFormat = "15:04:05"
