package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"voicebid/internal/auctionerrors"
	"voicebid/internal/models"
	"voicebid/internal/repository"
	"voicebid/utils"
)

// AuthService implements signup, login and bearer-token sessions
type AuthService struct {
	store repository.AuctionStore
}

// NewAuthService creates a new AuthService instance
func NewAuthService(store repository.AuctionStore) *AuthService {
	return &AuthService{store: store}
}

// Signup registers a new profile and opens a session for it. The returned
// string is the session's bearer token.
func (s *AuthService) Signup(username, email, password string) (models.Profile, string, error) {
	if username == "" || email == "" {
		return models.Profile{}, "", fmt.Errorf("auth: %w - missing username or email", auctionerrors.ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return models.Profile{}, "", fmt.Errorf("auth: %w - password must be at least 8 characters", auctionerrors.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Profile{}, "", fmt.Errorf("auth: failed to hash password: %w", err)
	}

	profile := models.Profile{
		UserID:       utils.GenerateID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateProfile(profile); err != nil {
		return models.Profile{}, "", fmt.Errorf("auth: failed to create profile %s: %w", username, err)
	}

	token, err := s.openSession(profile.UserID)
	if err != nil {
		return models.Profile{}, "", err
	}
	return profile, token, nil
}

// Login verifies credentials and opens a new session
func (s *AuthService) Login(username, password string) (models.Profile, string, error) {
	profile, err := s.store.GetProfileByUsername(username)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrProfileNotFound) {
			return models.Profile{}, "", fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
		}
		return models.Profile{}, "", fmt.Errorf("auth: failed to look up profile %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return models.Profile{}, "", fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
	}

	token, err := s.openSession(profile.UserID)
	if err != nil {
		return models.Profile{}, "", err
	}
	return profile, token, nil
}

// Authenticate resolves a bearer token to the caller's profile
func (s *AuthService) Authenticate(token string) (models.Profile, error) {
	if token == "" {
		return models.Profile{}, fmt.Errorf("auth: %w - missing bearer token", auctionerrors.ErrNotAuthenticated)
	}

	userID, err := s.store.GetSessionUser(token)
	if err != nil {
		return models.Profile{}, fmt.Errorf("auth: %w", auctionerrors.ErrNotAuthenticated)
	}

	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("auth: %w", auctionerrors.ErrNotAuthenticated)
	}
	return profile, nil
}

// Logout invalidates a session token
func (s *AuthService) Logout(token string) error {
	if err := s.store.DeleteSession(token); err != nil {
		return fmt.Errorf("auth: failed to delete session: %w", err)
	}
	return nil
}

func (s *AuthService) openSession(userID string) (string, error) {
	token := utils.GenerateID()
	if err := s.store.SaveSession(token, userID); err != nil {
		return "", fmt.Errorf("auth: failed to save session: %w", err)
	}
	return token, nil
}
