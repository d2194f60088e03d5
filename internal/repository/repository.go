package repository

import (
	model "voicebid/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_store.go -package=repository

// AuctionStore defines persistent storage for the auction marketplace.
// RecordBid is required to be atomic with respect to the monotonicity check:
// a bid at or below the auction's current price must be rejected and two
// concurrent higher bids must serialize so only one can win a given price.
type AuctionStore interface {
	CreateProfile(p model.Profile) error
	GetProfile(userID string) (model.Profile, error)
	GetProfileByUsername(username string) (model.Profile, error)

	SaveSession(token, userID string) error
	GetSessionUser(token string) (string, error)
	DeleteSession(token string) error

	CreateAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListActiveAuctions() ([]model.Auction, error)

	RecordBid(bid model.Bid) error
	GetBidsByAuction(auctionID string, limit int) ([]model.Bid, error)
	GetWinningBid(auctionID string) (model.Bid, error)
}
