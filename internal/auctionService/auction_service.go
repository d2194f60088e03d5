package auction

import (
	"context"
	"fmt"
	"time"

	"voicebid/internal/auctionerrors"
	"voicebid/internal/models"
	"voicebid/internal/realtime"
	"voicebid/internal/repository"
	"voicebid/utils"
)

// AuctionService defines the business logic for the auction marketplace.
// PlaceBid is the bid submission gateway shared by the manual form and the
// voice flow.
type AuctionService struct {
	store  repository.AuctionStore
	broker realtime.Broker
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.AuctionStore, broker realtime.Broker) *AuctionService {
	return &AuctionService{
		store:  store,
		broker: broker,
	}
}

// CreateAuction validates and stores a new listing
func (s *AuctionService) CreateAuction(sellerID, title, description, imageURL string, basePrice float64, deadline time.Time) (models.Auction, error) {
	if sellerID == "" {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrNotAuthenticated)
	}
	if title == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing title", auctionerrors.ErrInvalidAuction)
	}
	if basePrice <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - non-positive base price", auctionerrors.ErrInvalidAuction)
	}
	if !deadline.After(time.Now()) {
		return models.Auction{}, fmt.Errorf("service: %w - deadline is in the past", auctionerrors.ErrInvalidAuction)
	}

	a := models.Auction{
		AuctionID:   utils.GenerateID(),
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		BasePrice:   basePrice,
		Deadline:    deadline,
		Status:      models.AuctionStatusActive,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateAuction(a); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction %q by seller %s: %w", title, sellerID, err)
	}

	s.publish(realtime.TopicAuctions, realtime.KindAuctionCreated, a.AuctionID)
	return a, nil
}

// ListActiveAuctions returns all active auctions, newest first
func (s *AuctionService) ListActiveAuctions() ([]models.Auction, error) {
	auctions, err := s.store.ListActiveAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// GetAuction returns a single auction by ID
func (s *AuctionService) GetAuction(auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}

	a, err := s.store.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// PlaceBid validates and records a bid on an auction. The store enforces the
// monotonicity check atomically with the insert, so a stale local read of
// the current price cannot let two concurrent bids both win.
func (s *AuctionService) PlaceBid(auctionID string, bidder models.Profile, amount float64) (models.Bid, error) {
	if bidder.UserID == "" {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrNotAuthenticated)
	}
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	bidderName := bidder.Username
	if bidderName == "" {
		bidderName = "Anonymous"
	}

	bid := models.Bid{
		BidID:      utils.SortableID(),
		AuctionID:  auctionID,
		BidderID:   bidder.UserID,
		BidderName: bidderName,
		Amount:     amount,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.RecordBid(bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, bidder.UserID, err)
	}

	s.publish(realtime.AuctionTopic(auctionID), realtime.KindBidCreated, auctionID)
	s.publish(realtime.AuctionTopic(auctionID), realtime.KindAuctionUpdated, auctionID)
	s.publish(realtime.TopicAuctions, realtime.KindAuctionUpdated, auctionID)
	return bid, nil
}

// GetBidsForAuction returns the auction's bid history, newest first. A
// non-positive limit falls back to the default history window.
func (s *AuctionService) GetBidsForAuction(auctionID string, limit int) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	bids, err := s.store.GetBidsByAuction(auctionID, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetWinningBid returns the highest bid for an auction
func (s *AuctionService) GetWinningBid(auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	winning, err := s.store.GetWinningBid(auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	return winning, nil
}

const defaultHistoryLimit = 10

// publish sends a change notification. Delivery failures are logged and do
// not fail the mutation that triggered them.
func (s *AuctionService) publish(topic, kind, auctionID string) {
	ev := realtime.Event{Kind: kind, AuctionID: auctionID, At: time.Now().UTC()}
	if err := s.broker.Publish(context.Background(), topic, ev); err != nil {
		utils.Error("service: failed to publish change event", map[string]any{
			"topic":      topic,
			"kind":       kind,
			"auction_id": auctionID,
			"error":      err.Error(),
		})
	}
}
