package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"voicebid/config"
	auction "voicebid/internal/auctionService"
	auth "voicebid/internal/authService"
	model "voicebid/internal/models"
	"voicebid/internal/realtime"
	"voicebid/internal/repository"
	"voicebid/internal/server"
	"voicebid/internal/stt"
	"voicebid/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := loadConfig(*configPath)

	store := openStore(cfg)
	broker := openBroker(cfg)

	var transcriber stt.Transcriber
	if cfg.Voice.OpenAIAPIKey != "" {
		transcriber = stt.NewWhisperClient(cfg.Voice.OpenAIAPIKey, cfg.Voice.Language)
	}

	auctionService := auction.NewAuctionService(store, broker)
	authService := auth.NewAuthService(store)

	router := server.SetupRouter(auctionService, authService, transcriber, broker)

	addr := getAddr(cfg)
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file or falls back to defaults
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openStore builds the configured storage backend. The in-memory store is
// seeded with demo auctions so the API is browsable out of the box.
func openStore(cfg *config.Config) repository.AuctionStore {
	switch cfg.Store.Driver {
	case "mysql":
		store, err := repository.OpenMySQLStore(cfg.Store.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
			os.Exit(1)
		}
		utils.Info("connected to MySQL store", nil)
		return store
	default:
		store := repository.NewMemoryStore()
		prepopulateAuctions(store)
		return store
	}
}

// openBroker builds the change-event broker: Redis when configured, an
// in-process hub otherwise
func openBroker(cfg *config.Config) realtime.Broker {
	if cfg.Redis.Addr == "" {
		return realtime.NewHub()
	}

	broker, err := realtime.NewRedisBroker(context.Background(), cfg.Redis.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect broker: %v\n", err)
		os.Exit(1)
	}
	utils.Info("connected to Redis broker", map[string]any{"addr": cfg.Redis.Addr})
	return broker
}

// prepopulateAuctions adds sample listings to the in-memory store
func prepopulateAuctions(store *repository.MemoryStore) {
	deadline := time.Now().Add(72 * time.Hour)
	auctions := []model.Auction{
		{AuctionID: "auction1", SellerID: "seller1", Title: "Vintage Camera", Description: "1960s rangefinder in working order", BasePrice: 100, Deadline: deadline, Status: model.AuctionStatusActive, CreatedAt: time.Now().UTC()},
		{AuctionID: "auction2", SellerID: "seller1", Title: "Mechanical Keyboard", Description: "Custom build, lubed switches", BasePrice: 200, Deadline: deadline, Status: model.AuctionStatusActive, CreatedAt: time.Now().UTC()},
		{AuctionID: "auction3", SellerID: "seller2", Title: "Road Bike", Description: "Steel frame, recently serviced", BasePrice: 150, Deadline: deadline, Status: model.AuctionStatusActive, CreatedAt: time.Now().UTC()},
	}

	for _, a := range auctions {
		if err := store.CreateAuction(a); err != nil {
			utils.Warn("failed to seed auction", map[string]any{"auction_id": a.AuctionID, "error": err.Error()})
		}
	}
}

// getAddr returns the listen address from env or config
func getAddr(cfg *config.Config) string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return cfg.Server.Addr
}
