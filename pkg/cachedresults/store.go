package cachedresults

import (
	"context"
	"errors"

	"github.com/travigo/transferboard/pkg/refresh"
)

var ErrNoSnapshot = errors.New("no transfer table has been published yet")

// Store keeps the most recent refresh state for readers such as the web API.
// Every Store is also a refresh.Publisher so it can be handed to a scheduler.
type Store interface {
	refresh.Publisher

	Latest(ctx context.Context) (refresh.State, error)
}
