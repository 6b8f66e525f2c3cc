package apiclient

import (
	"context"
	"net/http"
)

type anonymousKey struct{}

// Anonymous marks ctx so that requests made with it never carry a bearer token.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// bearerRoundTripper reads a snapshot of the token at dispatch time.
type bearerRoundTripper struct {
	tokens TokenSource
	next   http.RoundTripper
}

func (t *bearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	req.Header.Del("Authorization")
	if t.tokens != nil && !isAnonymous(req.Context()) {
		if token := t.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return t.next.RoundTrip(req)
}
