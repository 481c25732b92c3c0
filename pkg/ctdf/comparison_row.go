package ctdf

// ComparisonRow is a feasible A -> B transfer built from one arrival of each route.
type ComparisonRow struct {
	RouteA            string `groups:"basic" csv:"route_a"`
	ArrivalClockTimeA string `groups:"basic" csv:"eta_a"`
	RemainingMinutesA int    `groups:"basic" csv:"etr_a"`

	AlightDescription string `groups:"basic" csv:"alight"`

	RouteB            string `groups:"basic" csv:"route_b"`
	ArrivalClockTimeB string `groups:"basic" csv:"eta_b"`
	RemainingMinutesB int    `groups:"basic" csv:"etr_b"`

	TransferSlack int `groups:"basic" csv:"transfer_slack"`
}

// TransferSlack is the margin left once the rider has reached the boarding
// point of route B. Negative means the connection cannot be made.
func TransferSlack(remainingMinutesA, transferBufferMinutes, remainingMinutesB int) int {
	return remainingMinutesB - transferBufferMinutes - remainingMinutesA
}
