package server

import (
	"io"
	"net/http"

	"voicebid/internal/realtime"
	"voicebid/utils"

	"github.com/gin-gonic/gin"
)

// StreamAuctionEvents handles GET /auctions/:auction_id/events. It streams
// the auction's change notifications as server-sent events; consumers
// refetch the auction and its bids on each event rather than receiving
// deltas. The stream ends when the client disconnects.
func StreamAuctionEvents(broker realtime.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID := c.Param("auction_id")

		events, cancel, err := broker.Subscribe(c.Request.Context(), realtime.AuctionTopic(auctionID))
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, err, "could not subscribe to auction events")
			utils.Error("StreamAuctionEvents: subscribe failed", map[string]any{
				"auction_id": auctionID,
				"error":      err.Error(),
			})
			return
		}
		defer cancel()

		utils.Info("StreamAuctionEvents: client subscribed", map[string]any{"auction_id": auctionID})

		c.Stream(func(w io.Writer) bool {
			select {
			case ev, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(ev.Kind, ev)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
