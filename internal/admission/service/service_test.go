package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"paygate/internal/admission/config"
	"paygate/internal/admission/models"
	"paygate/internal/admission/store"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/requestcontext"
)

type AdmissionServiceSuite struct {
	suite.Suite
	service *Service
	metrics *recordingMetrics
	now     time.Time
}

func TestAdmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(AdmissionServiceSuite))
}

func (s *AdmissionServiceSuite) SetupTest() {
	s.metrics = &recordingMetrics{}
	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	svc, err := New(store.NewInMemoryCounterStore(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithConfig(&config.Config{EmailMaxAttempts: 5, IPMaxAttempts: 10, Window: time.Hour}),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *AdmissionServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *AdmissionServiceSuite) TestNew() {
	s.Run("requires a counter store", func() {
		_, err := New(nil)
		s.Error(err)
	})
}

func (s *AdmissionServiceSuite) TestAdmit() {
	s.Run("admits under both limits", func() {
		decision, err := s.service.Admit(s.ctx(), "a@b.co", "203.0.113.7")
		s.Require().NoError(err)
		s.True(decision.Allowed)
		s.Equal(1, s.metrics.allowed)
	})

	s.Run("email limit denies on the sixth attempt", func() {
		for i := 0; i < 5; i++ {
			decision, err := s.service.Admit(s.ctx(), "repeat@b.co", "203.0.113.7")
			s.Require().NoError(err)
			s.True(decision.Allowed, "attempt %d should be admitted", i+1)
		}

		decision, err := s.service.Admit(s.ctx(), "repeat@b.co", "203.0.113.7")
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(models.ScopeEmail, decision.Scope)
		s.Equal(s.now.Add(time.Hour), decision.Result.ResetAt)
		s.Equal([]string{"email"}, s.metrics.denied)
	})

	s.Run("ip limit denies distinct emails from one address", func() {
		emails := []string{"u1@b.co", "u2@b.co", "u3@b.co", "u4@b.co", "u5@b.co",
			"u6@b.co", "u7@b.co", "u8@b.co", "u9@b.co", "u10@b.co"}
		for _, email := range emails {
			decision, err := s.service.Admit(s.ctx(), email, "198.51.100.9")
			s.Require().NoError(err)
			s.True(decision.Allowed)
		}

		decision, err := s.service.Admit(s.ctx(), "u11@b.co", "198.51.100.9")
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(models.ScopeIP, decision.Scope)
	})

	s.Run("email denial short-circuits the ip check", func() {
		counters := &countingStore{inner: store.NewInMemoryCounterStore()}
		svc, err := New(counters,
			WithConfig(&config.Config{EmailMaxAttempts: 1, IPMaxAttempts: 10, Window: time.Hour}),
		)
		s.Require().NoError(err)

		_, err = svc.Admit(s.ctx(), "once@b.co", "203.0.113.7")
		s.Require().NoError(err)
		s.Equal(2, counters.calls, "allowed path checks both scopes")

		decision, err := svc.Admit(s.ctx(), "once@b.co", "203.0.113.7")
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(models.ScopeEmail, decision.Scope)
		s.Equal(3, counters.calls, "denied email must not consume the ip window")
	})

	s.Run("email window is shared across client addresses", func() {
		for i := 0; i < 5; i++ {
			_, err := s.service.Admit(s.ctx(), "roamer@b.co", "203.0.113.1")
			s.Require().NoError(err)
		}

		decision, err := s.service.Admit(s.ctx(), "roamer@b.co", "203.0.113.99")
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(models.ScopeEmail, decision.Scope)
	})

	s.Run("store failure surfaces as internal error", func() {
		svc, err := New(&failingStore{})
		s.Require().NoError(err)

		_, err = svc.Admit(s.ctx(), "a@b.co", "203.0.113.7")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *AdmissionServiceSuite) TestReset() {
	for i := 0; i < 5; i++ {
		_, err := s.service.Admit(s.ctx(), "reset@b.co", "203.0.113.7")
		s.Require().NoError(err)
	}

	s.Require().NoError(s.service.Reset(s.ctx(), models.ScopeEmail, "reset@b.co"))

	decision, err := s.service.Admit(s.ctx(), "reset@b.co", "203.0.113.7")
	s.Require().NoError(err)
	s.True(decision.Allowed)
}

func (s *AdmissionServiceSuite) TestCheckSingleScope() {
	s.Run("CheckEmail applies the email limit", func() {
		result, err := s.service.CheckEmail(s.ctx(), "solo@b.co")
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(5, result.Limit)
	})

	s.Run("CheckIP applies the ip limit", func() {
		result, err := s.service.CheckIP(s.ctx(), "203.0.113.7")
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(10, result.Limit)
	})

	s.Run("rejects empty identifier", func() {
		_, err := s.service.CheckEmail(s.ctx(), "")
		s.Error(err)
	})
}

type recordingMetrics struct {
	allowed int
	denied  []string
}

func (m *recordingMetrics) IncrementAllowed(string) { m.allowed++ }

func (m *recordingMetrics) IncrementDenied(scope string) {
	m.denied = append(m.denied, scope)
}

type countingStore struct {
	inner *store.InMemoryCounterStore
	calls int
}

func (c *countingStore) Incr(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	c.calls++
	return c.inner.Incr(ctx, key, limit, window)
}

func (c *countingStore) Reset(ctx context.Context, key string) error {
	return c.inner.Reset(ctx, key)
}

type failingStore struct{}

func (f *failingStore) Incr(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("connection refused")
}

func (f *failingStore) Reset(context.Context, string) error { return nil }
