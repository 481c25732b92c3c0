package ctdf

// RouteEndpoint lists the ETA feeds queried, in order, for a single route.
type RouteEndpoint struct {
	RouteID string   `groups:"basic" yaml:"route" validate:"required"`
	URLs    []string `groups:"detailed" yaml:"endpoints" validate:"required,min=1,dive,url"`
}
