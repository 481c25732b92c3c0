package ctdf

// RoutePairConfig is one transfer opportunity: alight from RouteA at
// AlightDescription and walk TransferBufferMinutes to board RouteB.
type RoutePairConfig struct {
	RouteA                string `groups:"basic" yaml:"routeA" validate:"required"`
	RouteB                string `groups:"basic" yaml:"routeB" validate:"required"`
	TransferBufferMinutes int    `groups:"basic" yaml:"transferBufferMinutes" validate:"gte=0"`
	AlightDescription     string `groups:"basic" yaml:"alight"`
}

func (p RoutePairConfig) RouteIDs() []string {
	return []string{p.RouteA, p.RouteB}
}
