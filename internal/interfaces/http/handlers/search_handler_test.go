package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	domainInsight "github.com/turtacn/KeyIP-Insight/internal/domain/insight"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// mockSearchService is a mock implementation of search.Service.
type mockSearchService struct {
	mock.Mock
}

func (m *mockSearchService) Search(ctx context.Context, req search.Request) *model.SearchResult {
	return m.Resolve(ctx, req).Result
}

func (m *mockSearchService) Resolve(ctx context.Context, req search.Request) search.Outcome {
	args := m.Called(ctx, req)
	return args.Get(0).(search.Outcome)
}

var defaultCreds = search.Credentials{BaseURL: "https://api.patents.com/v1", BearerToken: "server-token"}

func sampleOutcome(kind search.OutcomeKind, reason search.Reason, raw string) search.Outcome {
	q := model.SearchQuery{Kind: model.QueryKindCompany, Value: raw}
	return search.Outcome{Kind: kind, Reason: reason, Query: q, Result: domainInsight.Generate(q)}
}

func newSearchHandler(svc search.Service) *SearchHandler {
	return NewSearchHandler(svc, defaultCreds, 1<<20, nil)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSearch_Post_UsesServerCredentials(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("Resolve", mock.Anything, search.Request{Raw: "Tesla Inc", Theme: "batteries", Credentials: defaultCreds}).
		Return(sampleOutcome(search.OutcomeFallback, search.ReasonNotConfigured, "Tesla Inc"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/search",
		strings.NewReader(`{"query":"Tesla Inc","theme":"batteries"}`))
	rec := httptest.NewRecorder()
	newSearchHandler(svc).Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "fallback", rec.Header().Get(HeaderOutcome))
	assert.Equal(t, "not_configured", rec.Header().Get(HeaderReason))

	var got model.SearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got.Records, domainInsight.SampleRecordCount)
	assert.Equal(t, domainInsight.SampleRecordCount, got.Insights.TotalPatents)
	svc.AssertExpectations(t)
}

func TestSearch_Post_BodyCredentialsOverrideDefaults(t *testing.T) {
	want := search.Credentials{BaseURL: "https://other.example/api", BearerToken: "caller-token"}
	svc := new(mockSearchService)
	svc.On("Resolve", mock.Anything, mock.MatchedBy(func(r search.Request) bool {
		return r.Credentials == want
	})).Return(sampleOutcome(search.OutcomeLiveSuccess, search.ReasonNone, "Tesla Inc"))

	body := `{"query":"Tesla Inc","base_url":"https://other.example/api","bearer_token":"caller-token"}`
	rec := httptest.NewRecorder()
	newSearchHandler(svc).Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live_success", rec.Header().Get(HeaderOutcome))
	assert.Empty(t, rec.Header().Get(HeaderReason))
	svc.AssertExpectations(t)
}

func TestSearch_Post_PartialCredentialsRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"url without token", `{"query":"Tesla Inc","base_url":"https://other.example/api"}`},
		{"url with blank token", `{"query":"Tesla Inc","base_url":"https://other.example/api","bearer_token":"  "}`},
		{"token without url", `{"query":"x","bearer_token":"caller-token","base_url":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockSearchService)
			rec := httptest.NewRecorder()
			newSearchHandler(svc).Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(errors.ErrCodeBadRequest), decodeError(t, rec).Code)
			svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}
}

func TestSearch_Post_ServerTokenNeverSentToCallerURL(t *testing.T) {
	var authHeaders []string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"patents":[]}`))
	}))
	defer remote.Close()

	serverCreds := search.Credentials{BaseURL: "https://patents.internal", BearerToken: "server-secret-token-0123456789"}
	h := NewSearchHandler(search.NewService(search.ClientFactory(), nil), serverCreds, 1<<20, nil)

	rec := httptest.NewRecorder()
	body := `{"query":"Tesla Inc.","base_url":"` + remote.URL + `"}`
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, authHeaders)
	assert.NotContains(t, rec.Body.String(), serverCreds.BearerToken)
}

func TestSearch_Post_DegradedHeaders(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("Resolve", mock.Anything, mock.Anything).
		Return(sampleOutcome(search.OutcomeLiveFailure, search.ReasonHTTPStatus, "Tesla Inc"))

	rec := httptest.NewRecorder()
	newSearchHandler(svc).Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"Tesla Inc"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live_failure", rec.Header().Get(HeaderOutcome))
	assert.Equal(t, "http_status", rec.Header().Get(HeaderReason))
}

func TestSearch_Post_InvalidBodies(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  errors.ErrorCode
	}{
		{"malformed", `{"query":`, http.StatusBadRequest, errors.ErrCodeBadRequest},
		{"unknown field", `{"query":"x","token":"t"}`, http.StatusBadRequest, errors.ErrCodeBadRequest},
		{"empty query", `{"query":""}`, http.StatusBadRequest, errors.ErrCodeEmptyQuery},
		{"blank query", `{"query":"   "}`, http.StatusBadRequest, errors.ErrCodeEmptyQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockSearchService)
			rec := httptest.NewRecorder()
			newSearchHandler(svc).Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, string(tt.wantErr), decodeError(t, rec).Code)
			svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}
}

func TestSearch_Post_BodyLimit(t *testing.T) {
	svc := new(mockSearchService)
	h := NewSearchHandler(svc, defaultCreds, 16, nil)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"a very long query string"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestSearchQuery_Get(t *testing.T) {
	svc := new(mockSearchService)
	svc.On("Resolve", mock.Anything, search.Request{Raw: "quantum computing", Theme: "qubits", Credentials: defaultCreds}).
		Return(sampleOutcome(search.OutcomeFallback, search.ReasonNotConfigured, "quantum computing"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/search?q=quantum+computing&theme=qubits", nil)
	rec := httptest.NewRecorder()
	newSearchHandler(svc).SearchQuery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSearchQuery_MissingQuery(t *testing.T) {
	svc := new(mockSearchService)
	rec := httptest.NewRecorder()
	newSearchHandler(svc).SearchQuery(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.ErrCodeEmptyQuery), decodeError(t, rec).Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url       string
		wantKind  model.QueryKind
		wantValue string
		wantTheme string
	}{
		{"/classify?q=us0378331005", model.QueryKindISIN, "US0378331005", ""},
		{"/classify?q=https://www.Tesla.com/Battery", model.QueryKindURL, "https://www.Tesla.com/Battery", ""},
		{"/classify?q=Bayer+AG&theme=+crop+science+", model.QueryKindCompany, "Bayer AG", "crop science"},
		{"/classify?q=+quantum+computing+", model.QueryKindTheme, "quantum computing", ""},
	}
	h := newSearchHandler(new(mockSearchService))
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Classify(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var got model.SearchQuery
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantTheme, got.Theme)
		})
	}
}

func TestClassify_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	newSearchHandler(new(mockSearchService)).Classify(rec, httptest.NewRequest(http.MethodGet, "/classify?q=%20", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"conflict", errors.New(errors.ErrCodeSearchInProgress, "busy"), http.StatusConflict, "busy"},
		{"remote failure keeps message", errors.New(errors.ErrCodeRemoteStatus, "upstream 500"), http.StatusBadGateway, "upstream 500"},
		{"internal masked", errors.New(errors.ErrCodeInternal, "nil pointer in x"), http.StatusInternalServerError, "internal server error"},
		{"plain error masked", context.Canceled, http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
		})
	}
}

//Personal.AI order the ending
