//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/ed-robles/shop-template/internal/handler/api"
	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCommands *MockCheckoutCommands
	userID       uuid.UUID
	email        string
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCommands = new(MockCheckoutCommands)
	s.userID = uuid.New()
	s.email = "buyer@example.com"
	handler := api.NewCheckoutHandler(s.mockCommands)
	s.router.POST("/checkout", requireAuthStub(s.userID, s.email), handler.StartCheckout)
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCommands.AssertExpectations(s.T())
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) TestStartCheckout() {
	s.Run("success: returns the redirect URL", func() {
		s.mockCommands.On("StartCheckout", mock.Anything, s.userID, s.email).
			Return(&commands.StartCheckoutResult{URL: "https://pay.example.com/cs_1"}, nil).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", nil, "token")

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &body)
		s.Equal("https://pay.example.com/cs_1", body.URL)
	})

	s.Run("empty cart is a client error", func() {
		s.mockCommands.On("StartCheckout", mock.Anything, s.userID, s.email).
			Return(nil, commands.ErrCartEmpty).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", nil, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("provider failure maps to bad gateway", func() {
		s.mockCommands.On("StartCheckout", mock.Anything, s.userID, s.email).
			Return(nil, errs.Mark(errs.New("provider down"), commands.ErrCheckoutSessionFailed)).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", nil, "token")

		s.Equal(http.StatusBadGateway, w.Code)
	})

	s.Run("unauthorized without a token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", nil, "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}
