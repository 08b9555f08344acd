package search

import (
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// OutcomeKind is how a search was resolved.
type OutcomeKind string

const (
	// OutcomeLiveSuccess means the result was normalized from the live source.
	OutcomeLiveSuccess OutcomeKind = "live_success"
	// OutcomeLiveFailure means the live source was tried and failed; the
	// result is sample data carrying the degraded-mode notice.
	OutcomeLiveFailure OutcomeKind = "live_failure"
	// OutcomeFallback means sample data was served deliberately.
	OutcomeFallback OutcomeKind = "fallback"
)

// Reason qualifies a LiveFailure or Fallback outcome. It is empty for
// LiveSuccess.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNetwork       Reason = "network"
	ReasonHTTPStatus    Reason = "http_status"
	ReasonParse         Reason = "parse"
	ReasonNormalization Reason = "normalization"
	ReasonNotConfigured Reason = "not_configured"
	ReasonEmptyPayload  Reason = "empty_payload"
)

// Outcome is the resolution of one search. Result is never nil.
type Outcome struct {
	Kind   OutcomeKind
	Reason Reason
	Query  model.SearchQuery
	Result *model.SearchResult
	// Err is the suppressed failure behind a LiveFailure.
	Err error
}

// Live reports whether the result came from the live source.
func (o Outcome) Live() bool { return o.Kind == OutcomeLiveSuccess }

// Degraded reports whether the result carries the degraded-mode notice.
func (o Outcome) Degraded() bool { return o.Kind == OutcomeLiveFailure }

func liveSuccess(q model.SearchQuery, r *model.SearchResult) Outcome {
	return Outcome{Kind: OutcomeLiveSuccess, Query: q, Result: r}
}

func fallback(q model.SearchQuery, reason Reason) Outcome {
	return Outcome{Kind: OutcomeFallback, Reason: reason, Query: q}
}

func liveFailure(q model.SearchQuery, err error) Outcome {
	return Outcome{Kind: OutcomeLiveFailure, Reason: reasonFor(err), Query: q, Err: err}
}

// reasonFor maps an error code from the client or normalizer to a failure
// reason. Anything unclassified counts as a transport failure.
func reasonFor(err error) Reason {
	switch errors.GetCode(err) {
	case errors.ErrCodeRemoteStatus:
		return ReasonHTTPStatus
	case errors.ErrCodeDataSourceParseError:
		return ReasonParse
	case errors.ErrCodeNormalizationFailed:
		return ReasonNormalization
	default:
		return ReasonNetwork
	}
}

//Personal.AI order the ending
