package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
	"voicebid/utils"

	"github.com/gin-gonic/gin"
)

// ContextProfileKey is the gin context key under which the auth middleware
// stores the caller's profile.
const ContextProfileKey = "profile"

// CallerProfile returns the authenticated caller's profile from the request
// context. The second return is false on unauthenticated routes.
func CallerProfile(c *gin.Context) (model.Profile, bool) {
	v, ok := c.Get(ContextProfileKey)
	if !ok {
		return model.Profile{}, false
	}
	profile, ok := v.(model.Profile)
	return profile, ok
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusGone, "auction is closed"
	case errors.Is(err, auctionerrors.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auctionerrors.ErrRecognitionFailed):
		return http.StatusUnprocessableEntity, "could not recognize bid amount"
	case errors.Is(err, auctionerrors.ErrCaptureUnsupported):
		return http.StatusNotImplemented, "speech recognition not available"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids found for auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
