package helpers

import (
	"time"

	model "voicebid/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	BasePrice   float64   `json:"base_price" binding:"required,gt=0"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type AuctionResponse struct {
	AuctionID    string  `json:"auction_id"`
	SellerID     string  `json:"seller_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	BasePrice    float64 `json:"base_price"`
	CurrentBid   float64 `json:"current_bid"`
	CurrentPrice float64 `json:"current_price"`
	Deadline     string  `json:"deadline"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

type BidResponse struct {
	BidID      string  `json:"bid_id"`
	AuctionID  string  `json:"auction_id"`
	BidderID   string  `json:"bidder_id"`
	BidderName string  `json:"bidder_name"`
	Amount     float64 `json:"amount"`
	CreatedAt  string  `json:"created_at"`
}

// NewAuctionResponse maps an auction entity to its API shape
func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		SellerID:     a.SellerID,
		Title:        a.Title,
		Description:  a.Description,
		ImageURL:     a.ImageURL,
		BasePrice:    a.BasePrice,
		CurrentBid:   a.CurrentBid,
		CurrentPrice: a.CurrentPrice(),
		Deadline:     a.Deadline.UTC().Format(time.RFC3339),
		Status:       a.Status,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBidResponse maps a bid entity to its API shape
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:      b.BidID,
		AuctionID:  b.AuctionID,
		BidderID:   b.BidderID,
		BidderName: b.BidderName,
		Amount:     b.Amount,
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
	}
}
