package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
)

// MySQLStore is a MySQL-backed implementation of AuctionStore
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an existing database handle
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// OpenMySQLStore connects to MySQL using the given DSN. The DSN must include
// parseTime=true so timestamp columns scan into time.Time.
func OpenMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

// Close releases the underlying database handle
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) CreateProfile(p model.Profile) error {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM profiles WHERE username = ?`, p.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("create profile %s: %w", p.Username, auctionerrors.ErrUsernameTaken)
	}

	_, err = s.db.Exec(`
		INSERT INTO profiles (user_id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.UserID, p.Username, p.Email, p.PasswordHash, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetProfile(userID string) (model.Profile, error) {
	row := s.db.QueryRow(`
		SELECT user_id, username, email, password_hash, created_at
		FROM profiles
		WHERE user_id = ?
	`, userID)
	return scanProfile(row, userID)
}

func (s *MySQLStore) GetProfileByUsername(username string) (model.Profile, error) {
	row := s.db.QueryRow(`
		SELECT user_id, username, email, password_hash, created_at
		FROM profiles
		WHERE username = ?
	`, username)
	return scanProfile(row, username)
}

func scanProfile(row *sql.Row, key string) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.UserID, &p.Username, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Profile{}, fmt.Errorf("get profile %s: %w", key, auctionerrors.ErrProfileNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile %s: %w", key, err)
	}
	return p, nil
}

func (s *MySQLStore) SaveSession(token, userID string) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)
	`, token, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetSessionUser(token string) (string, error) {
	var userID string
	err := s.db.QueryRow(`SELECT user_id FROM sessions WHERE token = ?`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("get session: %w", auctionerrors.ErrNotAuthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (s *MySQLStore) DeleteSession(token string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *MySQLStore) CreateAuction(a model.Auction) error {
	_, err := s.db.Exec(`
		INSERT INTO auctions (auction_id, seller_id, title, description, image_url,
			base_price, current_bid, deadline, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.AuctionID, a.SellerID, a.Title, a.Description, a.ImageURL,
		a.BasePrice, a.CurrentBid, a.Deadline, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetAuction(auctionID string) (model.Auction, error) {
	row := s.db.QueryRow(auctionSelect+` WHERE auction_id = ?`, auctionID)

	a, err := scanAuction(row.Scan)
	if err == sql.ErrNoRows {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

func (s *MySQLStore) ListActiveAuctions() ([]model.Auction, error) {
	rows, err := s.db.Query(auctionSelect+` WHERE status = ? ORDER BY created_at DESC`, model.AuctionStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list auctions: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

const auctionSelect = `
	SELECT auction_id, seller_id, title, description, image_url,
		base_price, current_bid, deadline, status, created_at
	FROM auctions`

func scanAuction(scan func(dest ...any) error) (model.Auction, error) {
	var a model.Auction
	err := scan(&a.AuctionID, &a.SellerID, &a.Title, &a.Description, &a.ImageURL,
		&a.BasePrice, &a.CurrentBid, &a.Deadline, &a.Status, &a.CreatedAt)
	return a, err
}

// RecordBid inserts the bid and bumps the auction's current bid in one
// transaction. The auction row is locked for the duration, so concurrent
// bids serialize and the monotonicity check holds under contention.
func (s *MySQLStore) RecordBid(bid model.Bid) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record bid: %w", err)
	}
	defer tx.Rollback()

	var (
		basePrice, currentBid float64
		deadline              time.Time
		status                string
	)
	err = tx.QueryRow(`
		SELECT base_price, current_bid, deadline, status
		FROM auctions
		WHERE auction_id = ?
		FOR UPDATE
	`, bid.AuctionID).Scan(&basePrice, &currentBid, &deadline, &status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}

	if status != model.AuctionStatusActive || time.Now().After(deadline) {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionClosed)
	}
	price := currentBid
	if price <= 0 {
		price = basePrice
	}
	if bid.Amount <= price {
		return fmt.Errorf("record bid for auction %s: %w - current price is %.2f", bid.AuctionID, auctionerrors.ErrBidTooLow, price)
	}

	_, err = tx.Exec(`
		INSERT INTO bids (bid_id, auction_id, bidder_id, bidder_name, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bid.BidID, bid.AuctionID, bid.BidderID, bid.BidderName, bid.Amount, bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}

	_, err = tx.Exec(`UPDATE auctions SET current_bid = ? WHERE auction_id = ?`, bid.Amount, bid.AuctionID)
	if err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, err)
	}
	return nil
}

func (s *MySQLStore) GetBidsByAuction(auctionID string, limit int) ([]model.Bid, error) {
	query := `
		SELECT bid_id, auction_id, bidder_id, bidder_name, amount, created_at
		FROM bids
		WHERE auction_id = ?
		ORDER BY created_at DESC, bid_id DESC
	`
	args := []any{auctionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.BidderName, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

func (s *MySQLStore) GetWinningBid(auctionID string) (model.Bid, error) {
	row := s.db.QueryRow(`
		SELECT bid_id, auction_id, bidder_id, bidder_name, amount, created_at
		FROM bids
		WHERE auction_id = ?
		ORDER BY amount DESC, created_at ASC
		LIMIT 1
	`, auctionID)

	var b model.Bid
	err := row.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.BidderName, &b.Amount, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, err)
	}
	return b, nil
}
