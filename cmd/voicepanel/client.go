package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	model "voicebid/internal/models"
)

// apiClient talks to the voicebid server. It implements voicebid.Gateway so
// the session state machine can submit confirmed bids through it.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope matches the server's standard response shape
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type auctionView struct {
	AuctionID    string  `json:"auction_id"`
	Title        string  `json:"title"`
	CurrentPrice float64 `json:"current_price"`
	Deadline     string  `json:"deadline"`
	Status       string  `json:"status"`
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != "" {
			return fmt.Errorf("server: %s: %s", env.Message, env.Error)
		}
		return fmt.Errorf("server: %s", env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

// Me returns the authenticated bidder's profile
func (c *apiClient) Me(ctx context.Context) (model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &profile); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

// Auction fetches the auction's current state
func (c *apiClient) Auction(ctx context.Context, auctionID string) (auctionView, error) {
	var a auctionView
	if err := c.do(ctx, http.MethodGet, "/auctions/"+auctionID, nil, &a); err != nil {
		return auctionView{}, err
	}
	return a, nil
}

// Submit places a bid, satisfying voicebid.Gateway. The server re-validates
// the amount against the authoritative current price.
func (c *apiClient) Submit(ctx context.Context, auctionID string, _ model.Profile, amount float64) (model.Bid, error) {
	var bid model.Bid
	err := c.do(ctx, http.MethodPost, "/auctions/"+auctionID+"/bids", map[string]any{"amount": amount}, &bid)
	if err != nil {
		return model.Bid{}, err
	}
	return bid, nil
}

// FollowEvents tails the auction's SSE change feed and invokes onEvent with
// each event kind until the context is cancelled
func (c *apiClient) FollowEvents(ctx context.Context, auctionID string, onEvent func(kind string)) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auctions/"+auctionID+"/events", nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	// no timeout: the stream stays open until the context ends
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			onEvent(strings.TrimSpace(strings.TrimPrefix(line, "event:")))
		}
	}
}
