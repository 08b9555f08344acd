// Package search resolves a raw query into a SearchResult. It tries the live
// patent search service and falls back to sample data, so a caller always gets
// a result.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainInsight "github.com/turtacn/KeyIP-Insight/internal/domain/insight"
	"github.com/turtacn/KeyIP-Insight/internal/domain/query"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/client"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

const tracerName = "github.com/turtacn/KeyIP-Insight/internal/application/search"

// Credentials locate and authenticate the live source for one search.
type Credentials struct {
	BaseURL     string
	BearerToken string
}

// Configured reports whether both fields are set.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.BearerToken) != ""
}

// Request is one search invocation.
type Request struct {
	Raw         string
	Theme       string
	Credentials Credentials
}

// Fetcher retrieves the raw payload for a classified query.
type Fetcher interface {
	Fetch(ctx context.Context, q model.SearchQuery) (*client.RawPayload, error)
}

// FetcherFactory builds a Fetcher for the caller's credentials.
type FetcherFactory func(Credentials) (Fetcher, error)

// ClientFactory returns a FetcherFactory backed by pkg/client.
func ClientFactory(opts ...client.Option) FetcherFactory {
	return func(c Credentials) (Fetcher, error) {
		return client.NewClient(c.BaseURL, c.BearerToken, opts...)
	}
}

// Recorder observes resolved searches.
type Recorder interface {
	RecordSearch(kind model.QueryKind, outcome OutcomeKind, reason Reason, elapsed time.Duration)
}

// Service is the search entry point.
type Service interface {
	// Search never fails.
	Search(ctx context.Context, req Request) *model.SearchResult
	// Resolve is Search with the resolution path exposed.
	Resolve(ctx context.Context, req Request) Outcome
}

// Option configures the service.
type Option func(*serviceImpl)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTracerProvider sets the provider for resolve spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *serviceImpl) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordSearch(model.QueryKind, OutcomeKind, Reason, time.Duration) {}

type serviceImpl struct {
	fetchers   FetcherFactory
	normalizer *domainInsight.Normalizer
	logger     logging.Logger
	recorder   Recorder
	tracer     trace.Tracer
}

// NewService creates the search service. A nil factory uses ClientFactory
// with the service logger attached.
func NewService(fetchers FetcherFactory, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("search")
	if fetchers == nil {
		fetchers = ClientFactory(client.WithLogger(ClientLogger(logger)))
	}
	s := &serviceImpl{
		fetchers:   fetchers,
		normalizer: domainInsight.NewNormalizer(logger),
		logger:     logger,
		recorder:   nopRecorder{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Search(ctx context.Context, req Request) *model.SearchResult {
	return s.Resolve(ctx, req).Result
}

// stage tracks where a resolution is.
type stage string

const (
	stageClassifying stage = "classifying"
	stageFetching    stage = "fetching"
	stageNormalizing stage = "normalizing"
	stageFallingBack stage = "falling_back"
	stageDone        stage = "done"
)

func (s *serviceImpl) Resolve(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()
	current := stageClassifying
	q := query.ClassifyWithTheme(strings.TrimSpace(req.Raw), req.Theme)

	ctx, span := s.tracer.Start(ctx, "insight.resolve", trace.WithAttributes(
		attribute.String("insight.query.kind", string(q.Kind)),
		attribute.Bool("insight.query.themed", q.HasTheme()),
	))
	log := s.logger.With(logging.String("query_kind", string(q.Kind)))
	enter := func(next stage) {
		log.Debug("search stage", logging.String("from", string(current)), logging.String("to", string(next)))
		current = next
	}

	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Newf(errors.ErrCodeInternal, "search panicked while %s: %v", current, rec)
			if current == stageNormalizing {
				err = errors.Wrap(err, errors.ErrCodeNormalizationFailed, "normalizer panicked")
			}
			out = liveFailure(q, err)
		}
		out = s.finish(out)
		enter(stageDone)

		elapsed := time.Since(start)
		s.recorder.RecordSearch(q.Kind, out.Kind, out.Reason, elapsed)
		span.SetAttributes(
			attribute.String("insight.outcome", string(out.Kind)),
			attribute.String("insight.reason", string(out.Reason)),
			attribute.Int("insight.records", len(out.Result.Records)),
		)
		if out.Degraded() {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, string(out.Reason))
			log.Warn("live search failed, serving sample data",
				logging.String("reason", string(out.Reason)),
				logging.Err(out.Err),
				logging.Duration("elapsed", elapsed))
		} else {
			log.Info("search resolved",
				logging.String("outcome", string(out.Kind)),
				logging.String("reason", string(out.Reason)),
				logging.Int("records", len(out.Result.Records)),
				logging.Duration("elapsed", elapsed))
		}
		span.End()
	}()

	if !req.Credentials.Configured() {
		enter(stageFallingBack)
		return fallback(q, ReasonNotConfigured)
	}

	enter(stageFetching)
	fetcher, err := s.fetchers(req.Credentials)
	if err != nil {
		enter(stageFallingBack)
		return liveFailure(q, errors.Wrap(err, errors.ErrCodeRemoteUnreachable, "patent search client unavailable"))
	}
	payload, err := fetcher.Fetch(ctx, q)
	if err != nil {
		enter(stageFallingBack)
		return liveFailure(q, err)
	}
	if payload.Empty() {
		enter(stageFallingBack)
		return fallback(q, ReasonEmptyPayload)
	}

	enter(stageNormalizing)
	result, err := s.normalizer.Normalize(payload.Result(), q)
	if err != nil {
		enter(stageFallingBack)
		return liveFailure(q, err)
	}
	return liveSuccess(q, result)
}

// finish fills in the sample result for non-live outcomes.
func (s *serviceImpl) finish(out Outcome) Outcome {
	if out.Kind == OutcomeLiveSuccess && out.Result != nil {
		return out
	}
	out.Result = domainInsight.Generate(out.Query)
	if out.Kind == OutcomeLiveFailure {
		domainInsight.MarkDegraded(out.Result)
	}
	return out
}

// ClientLogger adapts a Logger to the printf-style logger pkg/client takes.
func ClientLogger(l logging.Logger) client.Logger {
	return clientLogger{l: l.Named("client")}
}

type clientLogger struct {
	l logging.Logger
}

func (c clientLogger) Debugf(format string, args ...interface{}) {
	c.l.Debug(fmt.Sprintf(format, args...))
}

func (c clientLogger) Infof(format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...))
}

func (c clientLogger) Errorf(format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...))
}

//Personal.AI order the ending
