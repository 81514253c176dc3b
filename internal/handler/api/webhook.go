package api

import (
	"errors"
	"io"
	"net/http"

	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/handler/middleware"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// 64 KiB is far above any real event; the cap only bounds hostile payloads.
const maxWebhookBodyBytes = 64 << 10

type WebhookHandler struct {
	webhookUseCase commands.WebhookCommands
}

func NewWebhookHandler(webhookUseCase commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase: webhookUseCase,
	}
}

// @Summary Payment webhook
// @Description Receive a signed payment provider event. A non-2xx reply makes the provider retry the delivery.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Event signature"
// @Success 200 {object} resdto.WebhookAckResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	result, err := h.webhookUseCase.HandleEvent(c.Request.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrMissingSignature):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing signature",
			})
		case errors.Is(err, commands.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid signature",
			})
		default:
			// 500 signals the provider to retry the delivery.
			middleware.RecordWebhookEvent("failed")
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Webhook processing failed")
		}
		return
	}

	if result.Duplicate {
		middleware.RecordWebhookEvent("duplicate")
	} else {
		middleware.RecordWebhookEvent("processed")
	}
	c.JSON(http.StatusOK, resdto.WebhookAckResponse{Received: true, Duplicate: result.Duplicate})
}
