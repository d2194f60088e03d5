package server

import (
	auction "voicebid/internal/auctionService"
	auth "voicebid/internal/authService"
	"voicebid/internal/realtime"
	"voicebid/internal/stt"
	auctionhandler "voicebid/services/auction/handler"
	authhandler "voicebid/services/auth/handler"
	voicehandler "voicebid/services/voice/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. transcriber may
// be nil when no speech-to-text backend is configured.
func SetupRouter(auctionService *auction.AuctionService, authService *auth.AuthService, transcriber stt.Transcriber, broker realtime.Broker) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := auctionhandler.NewAuctionHandler(auctionService)
	authHandler := authhandler.NewAuthHandler(authService)
	voiceHandler := voicehandler.NewVoiceHandler(auctionService, transcriber)

	authenticated := AuthRequired(authService)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.SignupHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
		authRoutes.GET("/me", authenticated, authHandler.MeHandler)
		authRoutes.POST("/logout", authenticated, authHandler.LogoutHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.POST("", authenticated, auctionHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", auctionHandler.GetWinningBidHandler)
		auctions.GET("/:auction_id/events", StreamAuctionEvents(broker))
		auctions.POST("/:auction_id/bids", authenticated, auctionHandler.RecordBidHandler)
		auctions.POST("/:auction_id/voice-bids", authenticated, voiceHandler.VoiceBidHandler)
	}

	voice := router.Group("/voice")
	{
		voice.POST("/transcriptions", authenticated, voiceHandler.TranscribeHandler)
	}

	return router
}
