package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"

	"github.com/stretchr/testify/require"
)

func activeAuction(id string, basePrice float64) model.Auction {
	return model.Auction{
		AuctionID: id,
		SellerID:  "seller1",
		Title:     "Vintage Camera",
		BasePrice: basePrice,
		Deadline:  time.Now().Add(time.Hour),
		Status:    model.AuctionStatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

// Tests CreateProfile and profile lookups
func TestMemoryStore_Profiles(t *testing.T) {
	store := NewMemoryStore()

	profile := model.Profile{UserID: "user1", Username: "alice", Email: "alice@example.com"}
	require.NoError(t, store.CreateProfile(profile))

	t.Run("get_by_id", func(t *testing.T) {
		got, err := store.GetProfile("user1")
		require.NoError(t, err)
		require.Equal(t, profile, got)
	})

	t.Run("get_by_username", func(t *testing.T) {
		got, err := store.GetProfileByUsername("alice")
		require.NoError(t, err)
		require.Equal(t, profile, got)
	})

	t.Run("unknown_id", func(t *testing.T) {
		_, err := store.GetProfile("missing")
		require.True(t, errors.Is(err, auctionerrors.ErrProfileNotFound))
	})

	t.Run("unknown_username", func(t *testing.T) {
		_, err := store.GetProfileByUsername("missing")
		require.True(t, errors.Is(err, auctionerrors.ErrProfileNotFound))
	})

	t.Run("duplicate_username", func(t *testing.T) {
		err := store.CreateProfile(model.Profile{UserID: "user2", Username: "alice"})
		require.True(t, errors.Is(err, auctionerrors.ErrUsernameTaken))
	})

	t.Run("missing_fields", func(t *testing.T) {
		err := store.CreateProfile(model.Profile{UserID: "", Username: "bob"})
		require.Error(t, err)
	})
}

// Tests SaveSession, GetSessionUser, DeleteSession
func TestMemoryStore_Sessions(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.SaveSession("token1", "user1"))

	userID, err := store.GetSessionUser("token1")
	require.NoError(t, err)
	require.Equal(t, "user1", userID)

	require.NoError(t, store.DeleteSession("token1"))

	_, err = store.GetSessionUser("token1")
	require.True(t, errors.Is(err, auctionerrors.ErrNotAuthenticated))

	// deleting an unknown token is not an error
	require.NoError(t, store.DeleteSession("never-issued"))

	err = store.SaveSession("", "user1")
	require.True(t, errors.Is(err, auctionerrors.ErrNotAuthenticated))
}

// Tests CreateAuction, GetAuction and ListActiveAuctions
func TestMemoryStore_Auctions(t *testing.T) {
	store := NewMemoryStore()

	older := activeAuction("auction1", 100)
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := activeAuction("auction2", 200)
	closed := activeAuction("auction3", 50)
	closed.Status = model.AuctionStatusClosed

	require.NoError(t, store.CreateAuction(older))
	require.NoError(t, store.CreateAuction(newer))
	require.NoError(t, store.CreateAuction(closed))

	t.Run("get_by_id", func(t *testing.T) {
		got, err := store.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, older, got)
	})

	t.Run("unknown_id", func(t *testing.T) {
		_, err := store.GetAuction("missing")
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
	})

	t.Run("missing_auction_id", func(t *testing.T) {
		err := store.CreateAuction(model.Auction{})
		require.True(t, errors.Is(err, auctionerrors.ErrInvalidAuction))
	})

	t.Run("list_active_newest_first", func(t *testing.T) {
		auctions, err := store.ListActiveAuctions()
		require.NoError(t, err)
		require.Len(t, auctions, 2)
		require.Equal(t, "auction2", auctions[0].AuctionID)
		require.Equal(t, "auction1", auctions[1].AuctionID)
	})
}

// Tests RecordBid
func TestMemoryStore_RecordBid(t *testing.T) {
	newBid := func(id string, amount float64) model.Bid {
		return model.Bid{
			BidID:      id,
			AuctionID:  "auction1",
			BidderID:   "user1",
			BidderName: "alice",
			Amount:     amount,
			CreatedAt:  time.Now().UTC(),
		}
	}

	t.Run("first_bid_must_beat_base_price", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateAuction(activeAuction("auction1", 100)))

		err := store.RecordBid(newBid("bid1", 100))
		require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

		require.NoError(t, store.RecordBid(newBid("bid2", 101)))

		a, err := store.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, 101.0, a.CurrentBid)
		require.Equal(t, 101.0, a.CurrentPrice())
	})

	t.Run("later_bid_must_beat_current_bid", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateAuction(activeAuction("auction1", 100)))
		require.NoError(t, store.RecordBid(newBid("bid1", 150)))

		err := store.RecordBid(newBid("bid2", 150))
		require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

		err = store.RecordBid(newBid("bid3", 120))
		require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

		require.NoError(t, store.RecordBid(newBid("bid4", 151)))
	})

	t.Run("unknown_auction", func(t *testing.T) {
		store := NewMemoryStore()
		err := store.RecordBid(newBid("bid1", 100))
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotFound))
	})

	t.Run("closed_auction", func(t *testing.T) {
		store := NewMemoryStore()
		a := activeAuction("auction1", 100)
		a.Status = model.AuctionStatusClosed
		require.NoError(t, store.CreateAuction(a))

		err := store.RecordBid(newBid("bid1", 200))
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionClosed))
	})

	t.Run("past_deadline", func(t *testing.T) {
		store := NewMemoryStore()
		a := activeAuction("auction1", 100)
		a.Deadline = time.Now().Add(-time.Minute)
		require.NoError(t, store.CreateAuction(a))

		err := store.RecordBid(newBid("bid1", 200))
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionClosed))
	})

	t.Run("concurrent_bids_serialize", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateAuction(activeAuction("auction1", 100)))

		const bidders = 20
		var wg sync.WaitGroup
		errs := make([]error, bidders)

		// every bidder offers the same amount; exactly one can win it
		for i := 0; i < bidders; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = store.RecordBid(newBid(fmt.Sprintf("bid%d", i), 150))
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))
			}
		}
		require.Equal(t, 1, won)

		a, err := store.GetAuction("auction1")
		require.NoError(t, err)
		require.Equal(t, 150.0, a.CurrentBid)
	})
}

// Tests GetBidsByAuction and GetWinningBid
func TestMemoryStore_BidQueries(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateAuction(activeAuction("auction1", 100)))

	for i := 1; i <= 12; i++ {
		bid := model.Bid{
			BidID:     fmt.Sprintf("bid%d", i),
			AuctionID: "auction1",
			BidderID:  "user1",
			Amount:    100 + float64(i),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, store.RecordBid(bid))
	}

	t.Run("newest_first", func(t *testing.T) {
		bids, err := store.GetBidsByAuction("auction1", 0)
		require.NoError(t, err)
		require.Len(t, bids, 12)
		require.Equal(t, "bid12", bids[0].BidID)
		require.Equal(t, "bid1", bids[11].BidID)
	})

	t.Run("limit_applies", func(t *testing.T) {
		bids, err := store.GetBidsByAuction("auction1", 10)
		require.NoError(t, err)
		require.Len(t, bids, 10)
		require.Equal(t, "bid12", bids[0].BidID)
	})

	t.Run("limit_larger_than_history", func(t *testing.T) {
		bids, err := store.GetBidsByAuction("auction1", 100)
		require.NoError(t, err)
		require.Len(t, bids, 12)
	})

	t.Run("no_bids", func(t *testing.T) {
		_, err := store.GetBidsByAuction("missing", 10)
		require.True(t, errors.Is(err, auctionerrors.ErrNoBids))
	})

	t.Run("winning_bid", func(t *testing.T) {
		bid, err := store.GetWinningBid("auction1")
		require.NoError(t, err)
		require.Equal(t, "bid12", bid.BidID)
		require.Equal(t, 112.0, bid.Amount)
	})

	t.Run("winning_bid_no_bids", func(t *testing.T) {
		_, err := store.GetWinningBid("missing")
		require.True(t, errors.Is(err, auctionerrors.ErrNoBids))
	})
}
