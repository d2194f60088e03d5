package repository

import (
	"fmt"
	"sync"
	"time"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
)

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]model.Profile // key: userID -> value: profile
	usernames map[string]string        // key: username -> value: userID
	sessions  map[string]string        // key: token -> value: userID
	auctions  map[string]model.Auction // key: auctionID -> value: auction
	bids      map[string][]model.Bid   // key: auctionID -> value: bids, newest first
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]model.Profile),
		usernames: make(map[string]string),
		sessions:  make(map[string]string),
		auctions:  make(map[string]model.Auction),
		bids:      make(map[string][]model.Bid),
	}
}

// CreateProfile stores a new profile; usernames are unique
func (s *MemoryStore) CreateProfile(p model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.UserID == "" || p.Username == "" {
		return fmt.Errorf("create profile: %w - missing user ID or username", auctionerrors.ErrInvalidCredentials)
	}
	if _, taken := s.usernames[p.Username]; taken {
		return fmt.Errorf("create profile %s: %w", p.Username, auctionerrors.ErrUsernameTaken)
	}

	s.profiles[p.UserID] = p
	s.usernames[p.Username] = p.UserID
	return nil
}

// GetProfile returns the profile for a user ID
func (s *MemoryStore) GetProfile(userID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, fmt.Errorf("get profile %s: %w", userID, auctionerrors.ErrProfileNotFound)
	}
	return p, nil
}

// GetProfileByUsername returns the profile registered under a username
func (s *MemoryStore) GetProfileByUsername(username string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.usernames[username]
	if !ok {
		return model.Profile{}, fmt.Errorf("get profile by username %s: %w", username, auctionerrors.ErrProfileNotFound)
	}
	return s.profiles[userID], nil
}

// SaveSession stores a bearer token for a user
func (s *MemoryStore) SaveSession(token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || userID == "" {
		return fmt.Errorf("save session: %w - missing token or user ID", auctionerrors.ErrNotAuthenticated)
	}
	s.sessions[token] = userID
	return nil
}

// GetSessionUser resolves a bearer token to a user ID
func (s *MemoryStore) GetSessionUser(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return "", fmt.Errorf("get session: %w", auctionerrors.ErrNotAuthenticated)
	}
	return userID, nil
}

// DeleteSession invalidates a bearer token
func (s *MemoryStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// CreateAuction stores a new auction listing
func (s *MemoryStore) CreateAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.AuctionID == "" {
		return fmt.Errorf("create auction: %w - missing auction ID", auctionerrors.ErrInvalidAuction)
	}
	s.auctions[a.AuctionID] = a
	return nil
}

// GetAuction returns a single auction by ID
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// ListActiveAuctions returns all active auctions, newest first
func (s *MemoryStore) ListActiveAuctions() ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		if a.Status == model.AuctionStatusActive {
			auctions = append(auctions, a)
		}
	}

	// insertion order is lost in the map, so sort by creation time descending
	for i := 1; i < len(auctions); i++ {
		for j := i; j > 0 && auctions[j].CreatedAt.After(auctions[j-1].CreatedAt); j-- {
			auctions[j], auctions[j-1] = auctions[j-1], auctions[j]
		}
	}
	return auctions, nil
}

// RecordBid validates the bid against the auction under the write lock and,
// when it wins, appends it and bumps the auction's current bid. Two
// concurrent bids at the same price therefore cannot both land.
func (s *MemoryStore) RecordBid(bid model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if a.Status != model.AuctionStatusActive || time.Now().After(a.Deadline) {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionClosed)
	}
	if bid.Amount <= a.CurrentPrice() {
		return fmt.Errorf("record bid for auction %s: %w - current price is %.2f", bid.AuctionID, auctionerrors.ErrBidTooLow, a.CurrentPrice())
	}

	s.bids[bid.AuctionID] = append([]model.Bid{bid}, s.bids[bid.AuctionID]...)
	a.CurrentBid = bid.Amount
	s.auctions[bid.AuctionID] = a
	return nil
}

// GetBidsByAuction returns up to limit bids for an auction, newest first.
// A non-positive limit returns all bids.
func (s *MemoryStore) GetBidsByAuction(auctionID string, limit int) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids, ok := s.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if limit > 0 && limit < len(bids) {
		bids = bids[:limit]
	}
	return append([]model.Bid(nil), bids...), nil
}

// GetWinningBid returns the highest bid for an auction
func (s *MemoryStore) GetWinningBid(auctionID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids, ok := s.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, nil
}
