package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	admissionModels "paygate/internal/admission/models"
	"paygate/internal/checkout/models"
	"paygate/internal/checkout/processor"
	"paygate/internal/checkout/service/mocks"
	dErrors "paygate/pkg/domain-errors"
)

type CheckoutServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	admission *mocks.MockAdmitter
	intents   *mocks.MockIntentCreator
	service   *Service
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.admission = mocks.NewMockAdmitter(s.ctrl)
	s.intents = mocks.NewMockIntentCreator(s.ctrl)

	svc, err := New(s.admission, s.intents,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *CheckoutServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func allowedDecision() *admissionModels.AdmissionDecision {
	return &admissionModels.AdmissionDecision{
		Allowed: true,
		Scope:   admissionModels.ScopeIP,
		Result:  &admissionModels.RateLimitResult{Allowed: true, Limit: 10, Remaining: 9},
	}
}

func (s *CheckoutServiceSuite) TestNew() {
	s.Run("requires the admission service", func() {
		_, err := New(nil, s.intents)
		s.Error(err)
	})

	s.Run("accepts a nil intent creator", func() {
		svc, err := New(s.admission, nil)
		s.NoError(err)
		s.NotNil(svc)
	})
}

func (s *CheckoutServiceSuite) TestCreateIntent() {
	ctx := context.Background()

	s.Run("creates an intent when admitted", func() {
		req := &models.CreateIntentRequest{Email: " USER@B.co ", Amount: 1500}

		s.admission.EXPECT().
			Admit(gomock.Any(), "user@b.co", "203.0.113.7").
			Return(allowedDecision(), nil)
		s.intents.EXPECT().
			CreateIntent(gomock.Any(), processor.IntentParams{
				Amount:   1500,
				Currency: "jpy",
				Email:    "user@b.co",
				ClientIP: "203.0.113.7",
			}).
			Return(&models.IntentResponse{ClientSecret: "pi_123_secret_456", ID: "pi_123"}, nil)

		resp, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().NoError(err)
		s.Equal("pi_123_secret_456", resp.ClientSecret)
		s.Equal("pi_123", resp.ID)
	})

	s.Run("invalid input never reaches the admission check", func() {
		req := &models.CreateIntentRequest{Email: "not-an-email", Amount: 1500}

		_, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidEmail))
	})

	s.Run("missing fields fail before admission", func() {
		req := &models.CreateIntentRequest{Email: "a@b.co"}

		_, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidRequest))
	})

	s.Run("denial surfaces as LimitExceededDenial", func() {
		resetAt := time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)
		req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}

		s.admission.EXPECT().
			Admit(gomock.Any(), "a@b.co", "203.0.113.7").
			Return(&admissionModels.AdmissionDecision{
				Allowed: false,
				Scope:   admissionModels.ScopeEmail,
				Result:  &admissionModels.RateLimitResult{Limit: 5, ResetAt: resetAt},
			}, nil)

		_, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().Error(err)

		var denial *LimitExceededDenial
		s.Require().True(errors.As(err, &denial))
		s.Equal(admissionModels.ScopeEmail, denial.Decision.Scope)
		s.Equal(resetAt, denial.Decision.Result.ResetAt)
	})

	s.Run("admission store failure maps to internal error", func() {
		req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}

		s.admission.EXPECT().
			Admit(gomock.Any(), "a@b.co", "203.0.113.7").
			Return(nil, errors.New("redis: connection refused"))

		_, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("processor error passes through untouched", func() {
		req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}
		upstreamErr := dErrors.New(dErrors.CodeUpstreamAPI, "決済システムとの通信に失敗しました。しばらく時間をおいてから再度お試しください。")

		s.admission.EXPECT().
			Admit(gomock.Any(), "a@b.co", "203.0.113.7").
			Return(allowedDecision(), nil)
		s.intents.EXPECT().
			CreateIntent(gomock.Any(), gomock.Any()).
			Return(nil, upstreamErr)

		_, err := s.service.CreateIntent(ctx, req, "203.0.113.7")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamAPI))
	})
}

func (s *CheckoutServiceSuite) TestCreateIntentUnconfigured() {
	svc, err := New(s.admission, nil)
	s.Require().NoError(err)

	req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}
	_, err = svc.CreateIntent(context.Background(), req, "203.0.113.7")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func (s *CheckoutServiceSuite) TestSuspiciousIPSignal() {
	s.Run("suspicious IP is counted but never blocks", func() {
		reputation := mocks.NewMockReputationChecker(s.ctrl)
		metrics := mocks.NewMockSignalMetrics(s.ctrl)

		svc, err := New(s.admission, s.intents,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithReputation(reputation),
			WithMetrics(metrics),
		)
		s.Require().NoError(err)

		reputation.EXPECT().IsSuspicious("185.220.101.4").Return(true)
		metrics.EXPECT().IncrementSuspiciousIP()
		s.admission.EXPECT().
			Admit(gomock.Any(), "a@b.co", "185.220.101.4").
			Return(allowedDecision(), nil)
		s.intents.EXPECT().
			CreateIntent(gomock.Any(), gomock.Any()).
			Return(&models.IntentResponse{ClientSecret: "sec", ID: "pi_1"}, nil)

		req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}
		resp, err := svc.CreateIntent(context.Background(), req, "185.220.101.4")
		s.Require().NoError(err)
		s.NotNil(resp)
	})

	s.Run("clean IP skips the signal", func() {
		reputation := mocks.NewMockReputationChecker(s.ctrl)

		svc, err := New(s.admission, s.intents, WithReputation(reputation))
		s.Require().NoError(err)

		reputation.EXPECT().IsSuspicious("203.0.113.7").Return(false)
		s.admission.EXPECT().
			Admit(gomock.Any(), "a@b.co", "203.0.113.7").
			Return(allowedDecision(), nil)
		s.intents.EXPECT().
			CreateIntent(gomock.Any(), gomock.Any()).
			Return(&models.IntentResponse{ClientSecret: "sec", ID: "pi_2"}, nil)

		req := &models.CreateIntentRequest{Email: "a@b.co", Amount: 1500}
		_, err = svc.CreateIntent(context.Background(), req, "203.0.113.7")
		s.NoError(err)
	})
}
