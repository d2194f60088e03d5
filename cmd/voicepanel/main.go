// Command voicepanel is a terminal voice-bidding panel. It captures a spoken
// bid from the microphone, shows the recognized amount for confirmation, and
// submits it to a voicebid server, refreshing the price as change events
// arrive. Build with -tags portaudio for microphone support; without it the
// panel falls back to typed bids.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"voicebid/config"
	"voicebid/internal/auctionerrors"
	"voicebid/internal/capture"
	model "voicebid/internal/models"
	"voicebid/internal/stt"
	"voicebid/internal/voicebid"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "voicebid server base URL")
	auctionID := flag.String("auction", "", "auction to bid on")
	token := flag.String("token", os.Getenv("VOICEBID_TOKEN"), "bearer token from /auth/login")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *auctionID == "" || *token == "" {
		fmt.Fprintln(os.Stderr, "usage: voicepanel -auction <id> -token <token> [-server URL] [-config file]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := context.Background()
	client := newAPIClient(*serverURL, *token)

	bidder, err := client.Me(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to authenticate: %v\n", err)
		os.Exit(1)
	}

	var transcriber stt.Transcriber
	if cfg.Voice.OpenAIAPIKey != "" {
		transcriber = stt.NewWhisperClient(cfg.Voice.OpenAIAPIKey, cfg.Voice.Language)
	}
	recognizer := capture.NewMicrophoneRecognizer(transcriber, cfg.Voice.SampleRate)

	var (
		mu    sync.Mutex
		price float64
		title string
	)
	refresh := func() {
		a, err := client.Auction(ctx, *auctionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to refresh auction: %v\n", err)
			return
		}
		mu.Lock()
		price = a.CurrentPrice
		title = a.Title
		mu.Unlock()
	}
	baseline := func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return price
	}

	refresh()
	mu.Lock()
	fmt.Printf("Bidding on %q as %s — current price $%.2f\n", title, bidder.Username, price)
	mu.Unlock()

	session := voicebid.NewSession(*auctionID, bidder, recognizer, client, baseline, refresh)

	eventsCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	go client.FollowEvents(eventsCtx, *auctionID, func(kind string) {
		refresh()
		fmt.Printf("\n[%s] current price now $%.2f\n", kind, baseline())
	})

	runPanel(ctx, session, client, bidder, *auctionID)
}

func runPanel(ctx context.Context, session *voicebid.Session, client *apiClient, bidder model.Profile, auctionID string) {
	fmt.Println(`Commands: [enter] speak a bid, "b <amount>" typed bid, "c" confirm, "x" cancel, "q" quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "q":
			return

		case input == "":
			listen(ctx, session)

		case input == "c":
			confirm(ctx, session)

		case input == "x":
			session.Cancel()
			fmt.Println("Cancelled.")

		case strings.HasPrefix(input, "b "):
			typedBid(ctx, client, bidder, auctionID, strings.TrimPrefix(input, "b "))

		default:
			fmt.Println("Unknown command.")
		}
	}
}

func listen(ctx context.Context, session *voicebid.Session) {
	fmt.Println("Listening... say your bid amount.")

	err := session.Listen(ctx)
	switch {
	case err == nil:
		amount, _ := session.RecognizedAmount()
		fmt.Printf("You said: %q\nRecognized bid: $%.2f — confirm with \"c\" or cancel with \"x\"\n", session.Transcript(), amount)
	case errors.Is(err, auctionerrors.ErrCaptureUnsupported):
		fmt.Println("Speech capture is not available; place a typed bid with \"b <amount>\" instead.")
	case errors.Is(err, auctionerrors.ErrRecognitionFailed):
		fmt.Printf("Could not recognize a bid amount (heard %q). Please try again.\n", session.Transcript())
	default:
		fmt.Printf("Capture failed: %v\n", err)
	}
}

func confirm(ctx context.Context, session *voicebid.Session) {
	amount, ok := session.RecognizedAmount()
	if !ok {
		fmt.Println("Nothing to confirm; speak a bid first.")
		return
	}

	err := session.Confirm(ctx)
	switch {
	case err == nil:
		fmt.Printf("Bid of $%.2f placed successfully!\n", amount)
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		fmt.Printf("Bid rejected: %v\n", err)
	default:
		// amount is retained, so a retry only needs another "c"
		fmt.Printf("Failed to place bid: %v\n", err)
	}
}

func typedBid(ctx context.Context, client *apiClient, bidder model.Profile, auctionID, raw string) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || amount <= 0 {
		fmt.Println("Usage: b <positive amount>")
		return
	}

	bid, err := client.Submit(ctx, auctionID, bidder, amount)
	if err != nil {
		fmt.Printf("Failed to place bid: %v\n", err)
		return
	}
	fmt.Printf("Bid of $%.2f placed successfully (id %s).\n", bid.Amount, bid.BidID)
}
