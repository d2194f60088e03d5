package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auction "voicebid/internal/auctionService"
	auth "voicebid/internal/authService"
	model "voicebid/internal/models"
	"voicebid/internal/realtime"
	"voicebid/internal/repository"
	"voicebid/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the full router over an in-memory store for
// integration testing. No transcriber is configured; the voice flow is
// exercised through client-supplied transcripts.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	return setupRouterWithStore(store)
}

// SetupTestRouterWithAuctions initializes the router and seeds the store with
// auctions.
func SetupTestRouterWithAuctions(auctions ...model.Auction) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()

	for _, a := range auctions {
		if err := store.CreateAuction(a); err != nil {
			panic(err)
		}
	}
	return setupRouterWithStore(store)
}

func setupRouterWithStore(store repository.AuctionStore) *gin.Engine {
	broker := realtime.NewHub()
	auctionService := auction.NewAuctionService(store, broker)
	authService := auth.NewAuthService(store)
	return server.SetupRouter(auctionService, authService, nil, broker)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
// An empty token leaves the request unauthenticated.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case nil:
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, token, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// SignupAndLogin registers a user through the API and returns the session
// token.
func SignupAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auth/signup", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := resp["data"].(map[string]any)
	token := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// NewActiveAuction builds an auction fixture that accepts bids
func NewActiveAuction(id string, basePrice float64) model.Auction {
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
