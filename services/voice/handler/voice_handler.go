package handler

import (
	"fmt"
	"io"
	"net/http"

	"voicebid/internal/auctionerrors"
	model "voicebid/internal/models"
	"voicebid/internal/stt"
	"voicebid/internal/voicebid"
	"voicebid/services/auction/helpers"
	"voicebid/utils"

	"github.com/gin-gonic/gin"
)

// BidPlacer is the slice of the auction service the voice flow needs.
type BidPlacer interface {
	GetAuction(auctionID string) (model.Auction, error)
	PlaceBid(auctionID string, bidder model.Profile, amount float64) (model.Bid, error)
}

// VoiceHandler exposes the voice bidding flow over HTTP. transcriber may be
// nil, in which case audio transcription reports the capability as
// unavailable and clients fall back to sending transcripts they captured
// locally.
type VoiceHandler struct {
	service     BidPlacer
	transcriber stt.Transcriber
}

func NewVoiceHandler(service BidPlacer, transcriber stt.Transcriber) *VoiceHandler {
	return &VoiceHandler{service: service, transcriber: transcriber}
}

// VoiceBidRequest drives both phases of the flow: recognition (transcript
// set, confirm false) and submission of the confirmed amount.
type VoiceBidRequest struct {
	Transcript string  `json:"transcript"`
	Confirm    bool    `json:"confirm"`
	Amount     float64 `json:"amount"`
}

// VoiceBidRecognition is the recognition-phase response. TooLow warns the
// caller before they confirm; the authoritative check still happens at
// submission.
type VoiceBidRecognition struct {
	Transcript   string  `json:"transcript"`
	Amount       float64 `json:"amount"`
	CurrentPrice float64 `json:"current_price"`
	TooLow       bool    `json:"too_low"`
}

type TranscriptionResponse struct {
	Text string `json:"text"`
}

// VoiceBidHandler handles POST /auctions/:auction_id/voice-bids. Without
// confirm it parses the transcript and returns the recognized amount with no
// side effect, so the bidder can be asked to confirm; with confirm it
// submits the confirmed amount as a bid.
func (h *VoiceHandler) VoiceBidHandler(c *gin.Context) {
	var req VoiceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "VoiceBidHandler", err)
		return
	}

	auctionID := c.Param("auction_id")
	bidder, _ := helpers.CallerProfile(c)

	if req.Confirm {
		h.submitConfirmed(c, auctionID, bidder, req.Amount)
		return
	}

	amount, ok := voicebid.ExtractAmount(req.Transcript)
	if !ok {
		err := fmt.Errorf("transcript %q: %w", req.Transcript, auctionerrors.ErrRecognitionFailed)
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Info("VoiceBidHandler: no amount recognized", map[string]any{
			"auction_id": auctionID,
			"user_id":    bidder.UserID,
		})
		return
	}

	a, err := h.service.GetAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("VoiceBidHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := VoiceBidRecognition{
		Transcript:   req.Transcript,
		Amount:       amount,
		CurrentPrice: a.CurrentPrice(),
		TooLow:       amount <= a.CurrentPrice(),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bid amount recognized")
	helpers.LogSuccess("VoiceBidHandler", "bid amount recognized", map[string]any{
		"auction_id": auctionID,
		"user_id":    bidder.UserID,
		"amount":     amount,
		"too_low":    resp.TooLow,
	})
}

func (h *VoiceHandler) submitConfirmed(c *gin.Context, auctionID string, bidder model.Profile, amount float64) {
	if amount <= 0 {
		err := fmt.Errorf("%w - confirmed amount must be positive", auctionerrors.ErrInvalidBid)
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		return
	}

	bid, err := h.service.PlaceBid(auctionID, bidder, amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("VoiceBidHandler: failed to place confirmed bid", map[string]any{
			"auction_id": auctionID,
			"user_id":    bidder.UserID,
			"amount":     amount,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("VoiceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"user_id":    bid.BidderID,
		"amount":     bid.Amount,
	})
}

// TranscribeHandler handles POST /voice/transcriptions. The request is a
// multipart form with the WAV payload in the "audio" field.
func (h *VoiceHandler) TranscribeHandler(c *gin.Context) {
	if h.transcriber == nil {
		err := fmt.Errorf("transcription not configured: %w", auctionerrors.ErrCaptureUnsupported)
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		helpers.HandleBindError(c, "TranscribeHandler", err)
		return
	}

	src, err := file.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "could not read audio upload")
		return
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "could not read audio upload")
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), audio)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, err, "transcription failed")
		utils.Error("TranscribeHandler: transcription failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, TranscriptionResponse{Text: text}, "audio transcribed successfully")
	helpers.LogSuccess("TranscribeHandler", "audio transcribed successfully", map[string]any{
		"bytes": len(audio),
	})
}
