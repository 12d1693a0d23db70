package filter

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tkingovr/apigate/internal/policy"
)

// DefaultMaxBodyBytes caps how much of a request body is read for form parsing.
const DefaultMaxBodyBytes = 10 << 20

// ParseFilter builds the classifier's RequestContext from the HTTP request.
// A RequestContext that is already set (dry runs) is left alone.
type ParseFilter struct {
	clientIP     *ClientIPResolver
	maxBodyBytes int64
}

// ParseOption configures the ParseFilter.
type ParseOption func(*ParseFilter)

// WithClientIPResolver reads the client address through resolver. Without
// it the socket address is used.
func WithClientIPResolver(resolver *ClientIPResolver) ParseOption {
	return func(f *ParseFilter) {
		f.clientIP = resolver
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) ParseOption {
	return func(f *ParseFilter) {
		f.maxBodyBytes = n
	}
}

func NewParseFilter(opts ...ParseOption) *ParseFilter {
	f := &ParseFilter{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *ParseFilter) Name() string { return "parse" }

func (f *ParseFilter) Process(_ context.Context, fc *FilterContext) error {
	if fc.Request != nil {
		return nil
	}
	r := fc.HTTPRequest
	if r == nil {
		fc.Request = &policy.RequestContext{}
		return nil
	}

	uri := r.RequestURI
	if uri == "" && r.URL != nil {
		uri = r.URL.RequestURI()
	}
	var query url.Values
	if r.URL != nil {
		query = r.URL.Query()
	}

	fc.Request = &policy.RequestContext{
		Method:    r.Method,
		URI:       uri,
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		Origin:    r.Header.Get("Origin"),
		RemoteIP:  f.clientIP.Resolve(r),
		Headers:   r.Header.Clone(),
		Query:     query,
		Body:      f.readForm(r),
	}
	return nil
}

// readForm parses url-encoded and multipart POST bodies without consuming
// them: the bytes read are put back in front of r.Body. Other methods,
// bodies over the limit, other content types and malformed input yield nil.
func (f *ParseFilter) readForm(r *http.Request) url.Values {
	if r.Method != http.MethodPost || r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil
	}
	if mediaType != "application/x-www-form-urlencoded" && mediaType != "multipart/form-data" {
		return nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, f.maxBodyBytes+1))
	r.Body = &replayBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || int64(len(buf)) > f.maxBodyBytes {
		return nil
	}

	if mediaType == "application/x-www-form-urlencoded" {
		vals, _ := url.ParseQuery(string(buf))
		return vals
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil
	}
	form, err := multipart.NewReader(bytes.NewReader(buf), boundary).ReadForm(f.maxBodyBytes)
	if err != nil {
		return nil
	}
	defer form.RemoveAll() //nolint:errcheck
	return url.Values(form.Value)
}

type replayBody struct {
	io.Reader
	io.Closer
}
