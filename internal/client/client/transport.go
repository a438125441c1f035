package client

import (
	"net/http"

	"github.com/dmitrijs2005/crmconsole/internal/common"
	"github.com/google/uuid"
)

// TokenFunc returns the current access token, or "" when there is none.
type TokenFunc func() string

// authTransport decorates every outbound request with a request id and,
// when a token is available, the bearer Authorization header.
type authTransport struct {
	base  http.RoundTripper
	token TokenFunc
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	if t.token != nil {
		if tok := t.token(); tok != "" {
			r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}

	return t.base.RoundTrip(r)
}
