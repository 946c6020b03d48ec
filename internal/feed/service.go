package feed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service runs the ranking pipeline. It holds no per-request state; every
// call to Rank works on freshly fetched inputs.
type Service struct {
	gw      Gateway
	weights *Weights
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithWeights overrides the default scoring weights.
func WithWeights(w *Weights) Option {
	return func(s *Service) {
		if w != nil {
			s.weights = w
		}
	}
}

// WithMetrics attaches Prometheus metrics to the service.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock. Tests use it to pin the scoring instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a ranking service over the given gateway.
func NewService(gw Gateway, opts ...Option) *Service {
	s := &Service{
		gw:      gw,
		weights: DefaultWeights(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank produces the ordered, enriched event list for one feed request.
//
// An empty viewer ID yields an empty list, not an error: that is the
// defined contract for anonymous requests. The scoring instant is captured
// once and reused for every candidate so scores within one response are
// internally consistent. The interest, follow, and candidate fetches fan
// out concurrently and all join before scoring begins; ordering and scores
// are unaffected by the fan-out.
func (s *Service) Rank(ctx context.Context, viewerID string, kind Kind) ([]EnrichedEvent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if viewerID == "" {
		return []EnrichedEvent{}, nil
	}

	start := time.Now()
	now := s.now()

	var (
		interests  map[string]struct{}
		liked      map[string]struct{}
		follows    map[string]struct{}
		candidates []Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interests, liked, err = s.interestProfile(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		ids, err := s.gw.Follows(gctx, viewerID)
		if err != nil {
			return dataAccess("follows", err)
		}
		follows = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			follows[id] = struct{}{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		candidates, err = s.gw.Candidates(gctx, kind, viewerID, now)
		if err != nil {
			return dataAccess("candidates", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObserveRank(kind, "error", 0, time.Since(start))
		return nil, err
	}

	scored := make([]scoredCandidate, len(candidates))
	for i, c := range candidates {
		sc := scoredCandidate{Candidate: c, index: i}
		switch kind {
		case KindPersonalized:
			sc.score = relevanceScore(c, follows, interests, now, s.weights)
		case KindBridging:
			sc.score = bridgingScore(c, interests, liked, now, s.weights)
		}
		scored[i] = sc
	}

	rankCandidates(scored)
	results := enrich(viewerID, scored)

	s.metrics.ObserveRank(kind, "ok", len(candidates), time.Since(start))
	return results, nil
}
