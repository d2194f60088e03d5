package realtime

import (
	"context"
	"time"
)

// Event kinds, mirroring the store mutations that produce them.
const (
	KindAuctionCreated = "auction.created"
	KindAuctionUpdated = "auction.updated"
	KindBidCreated     = "bid.created"
)

// TopicAuctions carries listing-level changes for the auction index.
const TopicAuctions = "auctions"

// AuctionTopic returns the change topic for a single auction.
func AuctionTopic(auctionID string) string {
	return "auction:" + auctionID
}

// Event is a change notification. It carries identifiers only; consumers
// re-read the affected records instead of applying deltas.
type Event struct {
	Kind      string    `json:"kind"`
	AuctionID string    `json:"auction_id"`
	At        time.Time `json:"at"`
}

// Broker fans change events out to topic subscribers.
type Broker interface {
	// Publish delivers the event to every current subscriber of the topic.
	Publish(ctx context.Context, topic string, ev Event) error
	// Subscribe returns a channel of events for the topic and a cancel
	// function that must be called to release the subscription. The channel
	// is closed after cancellation.
	Subscribe(ctx context.Context, topic string) (<-chan Event, func(), error)
}
