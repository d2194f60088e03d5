package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrUsernameTaken   = errors.New("username already taken")
)

// business logic errors
var (
	ErrInvalidBid         = errors.New("invalid bid")
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrInvalidAuction     = errors.New("invalid auction details")
	ErrAuctionClosed      = errors.New("auction is closed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// voice flow errors
var (
	ErrCaptureUnsupported = errors.New("speech capture not supported")
	ErrRecognitionFailed  = errors.New("could not recognize a bid amount")
)
