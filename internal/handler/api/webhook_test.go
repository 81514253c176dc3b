//go:build unit

package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ed-robles/shop-template/internal/handler/api"
	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	commonhttp "github.com/ed-robles/shop-template/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCommands *MockWebhookCommands
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCommands = new(MockWebhookCommands)
	handler := api.NewWebhookHandler(s.mockCommands)
	s.router.POST("/webhooks/stripe", handler.HandleStripe)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCommands.AssertExpectations(s.T())
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) performWebhook(body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerTestSuite) TestHandleStripe() {
	payload := `{"id":"evt_1","type":"checkout.session.completed"}`

	s.Run("success: acknowledges a processed event", func() {
		s.mockCommands.On("HandleEvent", mock.Anything, []byte(payload), "sig").
			Return(&commands.WebhookResult{}, nil).Once()

		w := s.performWebhook(payload, "sig")

		var body resdto.WebhookAckResponse
		commonhttp.AssertSuccessResponse(s.T(), w, http.StatusOK, &body)
		s.True(body.Received)
		s.False(body.Duplicate)
	})

	s.Run("success: flags a duplicate delivery", func() {
		s.mockCommands.On("HandleEvent", mock.Anything, []byte(payload), "sig").
			Return(&commands.WebhookResult{Duplicate: true}, nil).Once()

		w := s.performWebhook(payload, "sig")

		var body resdto.WebhookAckResponse
		commonhttp.AssertSuccessResponse(s.T(), w, http.StatusOK, &body)
		s.True(body.Duplicate)
	})

	s.Run("missing signature is a client error", func() {
		s.mockCommands.On("HandleEvent", mock.Anything, []byte(payload), "").
			Return(nil, commands.ErrMissingSignature).Once()

		w := s.performWebhook(payload, "")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid signature is a client error", func() {
		s.mockCommands.On("HandleEvent", mock.Anything, []byte(payload), "bad").
			Return(nil, commands.ErrInvalidSignature).Once()

		w := s.performWebhook(payload, "bad")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("processing failure returns 500 so the provider retries", func() {
		s.mockCommands.On("HandleEvent", mock.Anything, []byte(payload), "sig").
			Return(nil, errs.Mark(errs.New("db down"), commands.ErrWebhookProcessing)).Once()

		w := s.performWebhook(payload, "sig")

		s.Equal(http.StatusInternalServerError, w.Code)
	})
}
