package handlers

import (
	"net/http"
	"strings"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	"github.com/turtacn/KeyIP-Insight/internal/domain/query"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

// Response headers describing how a search was resolved.
const (
	HeaderOutcome = "X-Insight-Outcome"
	HeaderReason  = "X-Insight-Reason"
)

// SearchRequest is the body of POST /insights/search. BaseURL and
// BearerToken replace the server's configured remote source and must be
// given together.
type SearchRequest struct {
	Query       string `json:"query"`
	Theme       string `json:"theme,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	BearerToken string `json:"bearer_token,omitempty"`
}

// SearchHandler serves search and classification.
type SearchHandler struct {
	svc      search.Service
	defaults search.Credentials
	maxBody  int64
	logger   logging.Logger
}

// NewSearchHandler creates a SearchHandler. defaults are used when a request
// carries no credentials of its own.
func NewSearchHandler(svc search.Service, defaults search.Credentials, maxBody int64, logger logging.Logger) *SearchHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SearchHandler{
		svc:      svc,
		defaults: defaults,
		maxBody:  maxBody,
		logger:   logger.Named("search_handler"),
	}
}

// Search handles POST /insights/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, h.maxBody, &req); err != nil {
		h.logger.Debug("rejected search body", logging.Err(err))
		WriteAppError(w, err)
		return
	}
	h.resolve(w, r, req)
}

// SearchQuery handles GET /insights/search?q=&theme=. Credentials always come
// from the server configuration.
func (h *SearchHandler) SearchQuery(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, SearchRequest{
		Query: r.URL.Query().Get("q"),
		Theme: r.URL.Query().Get("theme"),
	})
}

func (h *SearchHandler) resolve(w http.ResponseWriter, r *http.Request, req SearchRequest) {
	if strings.TrimSpace(req.Query) == "" {
		WriteAppError(w, errors.New(errors.ErrCodeEmptyQuery, "query must not be empty"))
		return
	}
	creds, err := h.credentials(req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	out := h.svc.Resolve(r.Context(), search.Request{
		Raw:         req.Query,
		Theme:       req.Theme,
		Credentials: creds,
	})

	w.Header().Set(HeaderOutcome, string(out.Kind))
	if out.Reason != search.ReasonNone {
		w.Header().Set(HeaderReason, string(out.Reason))
	}
	writeJSON(w, http.StatusOK, out.Result)
}

// credentials picks the request's pair or the server's pair, never a mix:
// the server token is only ever sent to the server's own base URL.
func (h *SearchHandler) credentials(req SearchRequest) (search.Credentials, error) {
	hasURL := strings.TrimSpace(req.BaseURL) != ""
	hasToken := strings.TrimSpace(req.BearerToken) != ""
	switch {
	case hasURL && hasToken:
		return search.Credentials{BaseURL: req.BaseURL, BearerToken: req.BearerToken}, nil
	case hasURL || hasToken:
		return search.Credentials{}, errors.New(errors.ErrCodeBadRequest,
			"base_url and bearer_token must be given together")
	default:
		return h.defaults, nil
	}
}

// Classify handles GET /insights/classify?q=&theme=.
func (h *SearchHandler) Classify(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("q"))
	if raw == "" {
		WriteAppError(w, errors.New(errors.ErrCodeEmptyQuery, "query must not be empty"))
		return
	}
	writeJSON(w, http.StatusOK, query.ClassifyWithTheme(raw, r.URL.Query().Get("theme")))
}

//Personal.AI order the ending
