package etafeed

import "encoding/json"

// maxFeedBytes caps how much of a feed body is read.
const maxFeedBytes = 8 << 20

// FeedResponse is the body returned by the KMB and Citybus stop ETA APIs.
// Data is a pointer so a body without a data field can be told apart from an
// empty list. Items stay raw so one badly typed item only loses itself.
type FeedResponse struct {
	Data *[]json.RawMessage `json:"data"`
}

// FeedItem holds the only two fields the board reads.
type FeedItem struct {
	Route string `json:"route"`
	ETA   string `json:"eta"`
}

func decodeFeedItem(raw json.RawMessage) (FeedItem, error) {
	var item FeedItem
	err := json.Unmarshal(raw, &item)

	return item, err
}
