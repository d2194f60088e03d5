package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
	"voicebid/internal/realtime"
	"voicebid/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func collectKinds(t *testing.T, events <-chan realtime.Event, n int) []string {
	t.Helper()

	kinds := make([]string, 0, n)
	for len(kinds) < n {
		select {
		case ev := <-events:
			kinds = append(kinds, ev.Kind)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d of %d", len(kinds)+1, n)
		}
	}
	return kinds
}

// Tests CreateAuction
func TestAuctionService_CreateAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	hub := realtime.NewHub()
	service := NewAuctionService(mockStore, hub)

	deadline := time.Now().Add(24 * time.Hour)

	// Table-driven test cases
	tests := []struct {
		name          string
		sellerID      string
		title         string
		basePrice     float64
		deadline      time.Time
		mockSetup     func()
		expectError   bool
		expectedError error
	}{
		{
			name:      "valid_auction",
			sellerID:  "seller1",
			title:     "Vintage Camera",
			basePrice: 100,
			deadline:  deadline,
			mockSetup: func() {
				mockStore.EXPECT().CreateAuction(gomock.Any()).Return(nil)
			},
			expectError: false,
		},
		{
			name:          "empty_sellerID",
			sellerID:      "",
			title:         "Vintage Camera",
			basePrice:     100,
			deadline:      deadline,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrNotAuthenticated,
		},
		{
			name:          "empty_title",
			sellerID:      "seller1",
			title:         "",
			basePrice:     100,
			deadline:      deadline,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidAuction,
		},
		{
			name:          "zero_base_price",
			sellerID:      "seller1",
			title:         "Vintage Camera",
			basePrice:     0,
			deadline:      deadline,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidAuction,
		},
		{
			name:          "past_deadline",
			sellerID:      "seller1",
			title:         "Vintage Camera",
			basePrice:     100,
			deadline:      time.Now().Add(-time.Hour),
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidAuction,
		},
		{
			name:      "store_fails",
			sellerID:  "seller1",
			title:     "Vintage Camera",
			basePrice: 100,
			deadline:  deadline,
			mockSetup: func() {
				mockStore.EXPECT().CreateAuction(gomock.Any()).Return(errors.New("store write failed"))
			},
			expectError:   true,
			expectedError: nil, // Service wraps store error, we don't match specific error here
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			a, err := service.CreateAuction(tc.sellerID, tc.title, "a description", "", tc.basePrice, tc.deadline)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)

				require.NotEmpty(t, a.AuctionID)
				_, parseErr := uuid.Parse(a.AuctionID)
				require.NoError(t, parseErr, "AuctionID should be a valid UUID")

				require.Equal(t, tc.sellerID, a.SellerID)
				require.Equal(t, tc.title, a.Title)
				require.Equal(t, tc.basePrice, a.BasePrice)
				require.Equal(t, model.AuctionStatusActive, a.Status)
				require.Zero(t, a.CurrentBid)
			}
		})
	}
}

// Tests that CreateAuction announces new listings on the marketplace topic
func TestAuctionService_CreateAuction_PublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	mockStore.EXPECT().CreateAuction(gomock.Any()).Return(nil)

	hub := realtime.NewHub()
	service := NewAuctionService(mockStore, hub)

	events, cancel, err := hub.Subscribe(context.Background(), realtime.TopicAuctions)
	require.NoError(t, err)
	defer cancel()

	a, err := service.CreateAuction("seller1", "Vintage Camera", "", "", 100, time.Now().Add(time.Hour))
	require.NoError(t, err)

	kinds := collectKinds(t, events, 1)
	require.Equal(t, []string{realtime.KindAuctionCreated}, kinds)

	select {
	case ev := <-events:
		t.Fatalf("unexpected extra event %q", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}

	require.NotEmpty(t, a.AuctionID)
}

// Tests PlaceBid
func TestAuctionService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	hub := realtime.NewHub()
	service := NewAuctionService(mockStore, hub)

	bidder := model.Profile{UserID: "user1", Username: "alice"}

	// Table-driven test cases
	tests := []struct {
		name          string
		auctionID     string
		bidder        model.Profile
		amount        float64
		mockSetup     func()
		expectError   bool
		expectedError error
		expectedName  string
	}{
		{
			name:      "valid_bid",
			auctionID: "auction1",
			bidder:    bidder,
			amount:    150,
			mockSetup: func() {
				mockStore.EXPECT().RecordBid(gomock.Any()).Return(nil)
			},
			expectError:  false,
			expectedName: "alice",
		},
		{
			name:      "anonymous_fallback",
			auctionID: "auction1",
			bidder:    model.Profile{UserID: "user2"},
			amount:    150,
			mockSetup: func() {
				mockStore.EXPECT().RecordBid(gomock.Any()).Return(nil)
			},
			expectError:  false,
			expectedName: "Anonymous",
		},
		{
			name:          "unauthenticated",
			auctionID:     "auction1",
			bidder:        model.Profile{},
			amount:        150,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrNotAuthenticated,
		},
		{
			name:          "empty_auctionID",
			auctionID:     "",
			bidder:        bidder,
			amount:        150,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:          "zero_amount",
			auctionID:     "auction1",
			bidder:        bidder,
			amount:        0,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:          "negative_amount",
			auctionID:     "auction1",
			bidder:        bidder,
			amount:        -50,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:      "bid_too_low_at_store",
			auctionID: "auction1",
			bidder:    bidder,
			amount:    80,
			mockSetup: func() {
				mockStore.EXPECT().RecordBid(gomock.Any()).Return(auctionerrors.ErrBidTooLow)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "auction_closed_at_store",
			auctionID: "auction1",
			bidder:    bidder,
			amount:    200,
			mockSetup: func() {
				mockStore.EXPECT().RecordBid(gomock.Any()).Return(auctionerrors.ErrAuctionClosed)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionClosed,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bid, err := service.PlaceBid(tc.auctionID, tc.bidder, tc.amount)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)

				require.NotEmpty(t, bid.BidID)
				require.Equal(t, tc.auctionID, bid.AuctionID)
				require.Equal(t, tc.bidder.UserID, bid.BidderID)
				require.Equal(t, tc.expectedName, bid.BidderName)
				require.Equal(t, tc.amount, bid.Amount)
				require.WithinDuration(t, time.Now().UTC(), bid.CreatedAt, 2*time.Second)
			}
		})
	}
}

// Tests that PlaceBid notifies both the auction topic and the marketplace
func TestAuctionService_PlaceBid_PublishesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	mockStore.EXPECT().RecordBid(gomock.Any()).Return(nil)

	hub := realtime.NewHub()
	service := NewAuctionService(mockStore, hub)

	auctionEvents, cancelAuction, err := hub.Subscribe(context.Background(), realtime.AuctionTopic("auction1"))
	require.NoError(t, err)
	defer cancelAuction()

	marketEvents, cancelMarket, err := hub.Subscribe(context.Background(), realtime.TopicAuctions)
	require.NoError(t, err)
	defer cancelMarket()

	_, err = service.PlaceBid("auction1", model.Profile{UserID: "user1", Username: "alice"}, 150)
	require.NoError(t, err)

	kinds := collectKinds(t, auctionEvents, 2)
	require.Equal(t, []string{realtime.KindBidCreated, realtime.KindAuctionUpdated}, kinds)

	kinds = collectKinds(t, marketEvents, 1)
	require.Equal(t, []string{realtime.KindAuctionUpdated}, kinds)
}

// Tests GetBidsForAuction
func TestAuctionService_GetBidsForAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	service := NewAuctionService(mockStore, realtime.NewHub())

	now := time.Now().UTC()
	bidsExample := []model.Bid{
		{BidID: "bid2", AuctionID: "auction1", BidderID: "user2", Amount: 150, CreatedAt: now.Add(time.Second)},
		{BidID: "bid1", AuctionID: "auction1", BidderID: "user1", Amount: 100, CreatedAt: now},
	}

	tests := []struct {
		name          string
		auctionID     string
		limit         int
		mockSetup     func()
		expectError   bool
		expectedError error
		expectedBids  []model.Bid
	}{
		{
			name:      "valid_auction_with_bids",
			auctionID: "auction1",
			limit:     10,
			mockSetup: func() {
				mockStore.EXPECT().GetBidsByAuction("auction1", 10).Return(bidsExample, nil)
			},
			expectError:  false,
			expectedBids: bidsExample,
		},
		{
			name:      "non_positive_limit_uses_default",
			auctionID: "auction1",
			limit:     0,
			mockSetup: func() {
				mockStore.EXPECT().GetBidsByAuction("auction1", 10).Return(bidsExample, nil)
			},
			expectError:  false,
			expectedBids: bidsExample,
		},
		{
			name:          "empty_auctionID",
			auctionID:     "",
			limit:         10,
			mockSetup:     func() {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidBid,
		},
		{
			name:      "no_bids",
			auctionID: "auction2",
			limit:     10,
			mockSetup: func() {
				mockStore.EXPECT().GetBidsByAuction("auction2", 10).Return(nil, auctionerrors.ErrNoBids)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrNoBids,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bids, err := service.GetBidsForAuction(tc.auctionID, tc.limit)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedBids, bids)
			}
		})
	}
}

// Tests GetWinningBid
func TestAuctionService_GetWinningBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	service := NewAuctionService(mockStore, realtime.NewHub())

	tests := []struct {
		name        string
		auctionID   string
		mockSetup   func()
		expectError bool
	}{
		{
			name:      "valid_auction_with_winning_bid",
			auctionID: "auction1",
			mockSetup: func() {
				mockStore.EXPECT().GetWinningBid("auction1").Return(model.Bid{BidID: "bid1", AuctionID: "auction1", Amount: 150}, nil)
			},
			expectError: false,
		},
		{
			name:        "empty_auctionID",
			auctionID:   "",
			mockSetup:   func() {},
			expectError: true,
		},
		{
			name:      "no_bids",
			auctionID: "auction2",
			mockSetup: func() {
				mockStore.EXPECT().GetWinningBid("auction2").Return(model.Bid{}, auctionerrors.ErrNoBids)
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bid, err := service.GetWinningBid(tc.auctionID)

			if tc.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, "bid1", bid.BidID)
				require.Equal(t, 150.0, bid.Amount)
			}
		})
	}
}

// Tests GetAuction and ListActiveAuctions
func TestAuctionService_Queries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	service := NewAuctionService(mockStore, realtime.NewHub())

	t.Run("get_auction", func(t *testing.T) {
		want := model.Auction{AuctionID: "auction1", Title: "Vintage Camera", BasePrice: 100}
		mockStore.EXPECT().GetAuction("auction1").Return(want, nil)

		got, err := service.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("get_auction_empty_id", func(t *testing.T) {
		_, err := service.GetAuction("")
		require.True(t, errors.Is(err, auctionerrors.ErrInvalidAuction))
	})

	t.Run("get_auction_not_found", func(t *testing.T) {
		mockStore.EXPECT().GetAuction("missing").Return(model.Auction{}, auctionerrors.ErrAuctionNotFound)

		_, err := service.GetAuction("missing")
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
	})

	t.Run("list_active", func(t *testing.T) {
		want := []model.Auction{{AuctionID: "auction1"}, {AuctionID: "auction2"}}
		mockStore.EXPECT().ListActiveAuctions().Return(want, nil)

		got, err := service.ListActiveAuctions()
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("list_active_store_error", func(t *testing.T) {
		mockStore.EXPECT().ListActiveAuctions().Return(nil, errors.New("db failure"))

		_, err := service.ListActiveAuctions()
		require.Error(t, err)
	})
}
