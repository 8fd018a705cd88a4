package http

import "net/http"

// headerTransport sets a credential header on every outbound request.
type headerTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends token as a bearer Authorization header.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return WithHeaderToken("Authorization", "")
	}
	return WithHeaderToken("Authorization", "Bearer "+token)
}

// WithHeaderToken sends value in the named header, for APIs that take keys
// outside of Authorization.
func WithHeaderToken(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
