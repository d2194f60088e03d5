package models

import "time"

// Auction lifecycle statuses.
const (
	AuctionStatusActive = "active"
	AuctionStatusClosed = "closed"
)

// Profile represents a registered participant in the marketplace
type Profile struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Auction represents a listing open for bids
type Auction struct {
	AuctionID   string    `json:"auction_id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	BasePrice   float64   `json:"base_price"`
	CurrentBid  float64   `json:"current_bid"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CurrentPrice returns the baseline a new bid must exceed: the current
// highest bid, or the base price when no bids have been placed yet.
func (a Auction) CurrentPrice() float64 {
	if a.CurrentBid > 0 {
		return a.CurrentBid
	}
	return a.BasePrice
}

// Bid represents a user's bid on an auction
type Bid struct {
	BidID      string    `json:"bid_id"`
	AuctionID  string    `json:"auction_id"`
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}
