package client

import (
	"context"
	"net/url"

	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	"github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// endpoint describes how one query kind is sent to the service.
type endpoint struct {
	path       string
	valueParam string
	// forwardsTheme is false for theme searches, whose value is the theme.
	forwardsTheme bool
}

var endpoints = map[insight.QueryKind]endpoint{
	insight.QueryKindCompany: {path: "/patents/search/company", valueParam: "name", forwardsTheme: true},
	insight.QueryKindISIN:    {path: "/patents/search/isin", valueParam: "isin", forwardsTheme: true},
	insight.QueryKindURL:     {path: "/patents/search/url", valueParam: "url", forwardsTheme: true},
	insight.QueryKindTheme:   {path: "/patents/search/theme", valueParam: "theme", forwardsTheme: false},
}

// EndpointPath returns the service path queried for kind.
func EndpointPath(kind insight.QueryKind) (string, bool) {
	ep, ok := endpoints[kind]
	return ep.path, ok
}

// Fetch issues the search for q and returns the raw JSON document.
func (c *Client) Fetch(ctx context.Context, q insight.SearchQuery) (*RawPayload, error) {
	ep, ok := endpoints[q.Kind]
	if !ok {
		return nil, errors.InvalidParam("unsupported query kind").WithDetail("kind=" + string(q.Kind))
	}

	params := url.Values{}
	params.Set(ep.valueParam, q.Value)
	if ep.forwardsTheme && q.HasTheme() {
		params.Set("theme", q.Theme)
	}

	return c.get(ctx, ep.path, params)
}

//Personal.AI order the ending
