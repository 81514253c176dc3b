package api

import (
	"errors"
	"net/http"

	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutUseCase commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutUseCase commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUseCase: checkoutUseCase,
	}
}

// @Summary Start checkout
// @Description Normalize the cart and open a hosted checkout session
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /checkout [post]
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	result, err := h.checkoutUseCase.StartCheckout(c.Request.Context(), userID, email)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, commands.ErrCheckoutSessionFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Failed to start checkout",
			})
		default:
			httperr.Internal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.CheckoutResponse{URL: result.URL})
}
