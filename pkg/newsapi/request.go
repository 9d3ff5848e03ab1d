package newsapi

import (
	"fmt"
	"net/url"
	"strings"
)

// Request is a fully specified HTTP request for one endpoint call.
type Request struct {
	Endpoint string
	Method   string
	URL      string
	Headers  map[string]string
}

// BuildRequest composes the request for ep against baseURL, authenticated with apiKey.
// It performs no I/O.
func BuildRequest(ep Endpoint, baseURL, apiKey string) (*Request, error) {
	if err := ValidateEndpoint(ep); err != nil {
		return nil, err
	}

	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, newError(ep.Name(), ErrInvalidURL, err)
	}

	full := base.String() + ep.Path()
	if q := Query(ep); q != "" {
		full += "?" + q
	}
	if err := checkURL(full); err != nil {
		return nil, newError(ep.Name(), ErrInvalidURL, err)
	}

	return &Request{
		Endpoint: ep.Name(),
		Method:   ep.Method(),
		URL:      full,
		Headers:  Headers(apiKey, base.Host),
	}, nil
}

// parseBaseURL validates the base URL and guarantees a trailing slash on its path.
func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if err := checkURL(raw); err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("base url %q must not carry a query or fragment", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// checkURL reports whether s is an absolute http(s) URL made only of characters
// RFC 3986 allows, with well-formed percent escapes. url.Parse alone accepts
// spaces and other raw bytes in the query, so the character check runs first.
func checkURL(s string) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' {
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return fmt.Errorf("malformed percent escape at offset %d in %q", i, s)
			}
			i += 2
			continue
		}
		if !isURLChar(c) {
			return fmt.Errorf("illegal character %q at offset %d in %q", c, i, s)
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", s)
	}
	return nil
}

func isURLChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	// unreserved, gen-delims and sub-delims
	return strings.IndexByte("-._~:/?#[]@!$&'()*+,;=", c) >= 0
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
