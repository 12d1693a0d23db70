package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/filter"
	"github.com/tkingovr/apigate/internal/policy"
)

var (
	checkMethod    string
	checkURI       string
	checkUserAgent string
	checkReferer   string
	checkOrigin    string
	checkRemoteIP  string
	checkHeaders   []string
	checkQuery     []string
	checkForm      []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run a request through the gate without a running server",
	Long: `Check what decision a request would receive without running the gate.
Prints the verdict, the matching rule, the suppressed checks and any block.`,
	Example: `  apigate check --uri /wp-json/wc/v3/orders
  apigate check -c rules.yaml --method POST --uri /index.php --form consumer_key=ck_1
  apigate check --method OPTIONS --uri /anything --origin https://example.com`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkMethod, "method", http.MethodGet, "HTTP method")
	checkCmd.Flags().StringVar(&checkURI, "uri", "", "request URI including query string")
	checkCmd.Flags().StringVar(&checkUserAgent, "user-agent", "", "User-Agent header")
	checkCmd.Flags().StringVar(&checkReferer, "referer", "", "Referer header")
	checkCmd.Flags().StringVar(&checkOrigin, "origin", "", "Origin header")
	checkCmd.Flags().StringVar(&checkRemoteIP, "remote-ip", "", "client address")
	checkCmd.Flags().StringArrayVar(&checkHeaders, "header", nil, "extra header as Name=Value (repeatable)")
	checkCmd.Flags().StringArrayVar(&checkQuery, "query", nil, "query parameter as name=value (repeatable)")
	checkCmd.Flags().StringArrayVar(&checkForm, "form", nil, "form body parameter as name=value (repeatable)")
	_ = checkCmd.MarkFlagRequired("uri")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := buildCheckRequest()
	if err != nil {
		return err
	}

	chain, err := buildChain(cfg, nil, logger)
	if err != nil {
		return err
	}

	fc := filter.NewFilterContext(nil, nil)
	fc.Request = requestContext(req)
	if err := chain.Process(context.Background(), fc); err != nil {
		return fmt.Errorf("evaluation error: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(fc.ToCheckResponse())
}

func buildCheckRequest() (*api.CheckRequest, error) {
	req := &api.CheckRequest{
		Method:    strings.ToUpper(checkMethod),
		URI:       checkURI,
		UserAgent: checkUserAgent,
		Referer:   checkReferer,
		Origin:    checkOrigin,
		RemoteIP:  checkRemoteIP,
		Headers:   make(map[string]string, len(checkHeaders)),
		Query:     make(map[string][]string, len(checkQuery)),
		Form:      make(map[string][]string, len(checkForm)),
	}

	for _, kv := range checkHeaders {
		k, v, err := splitKV(kv)
		if err != nil {
			return nil, fmt.Errorf("--header: %w", err)
		}
		req.Headers[k] = v
	}
	for _, kv := range checkQuery {
		k, v, err := splitKV(kv)
		if err != nil {
			return nil, fmt.Errorf("--query: %w", err)
		}
		req.Query[k] = append(req.Query[k], v)
	}
	for _, kv := range checkForm {
		k, v, err := splitKV(kv)
		if err != nil {
			return nil, fmt.Errorf("--form: %w", err)
		}
		req.Form[k] = append(req.Form[k], v)
	}
	return req, nil
}

// requestContext turns a check request into what the classifier sees.
// Query parameters come from the URI and from req.Query; the latter are
// also appended to the URI so substring rules see them.
func requestContext(req *api.CheckRequest) *policy.RequestContext {
	uri := req.URI
	query := url.Values{}
	if u, err := url.ParseRequestURI(uri); err == nil {
		query = u.Query()
	}
	if len(req.Query) > 0 {
		extra := url.Values(req.Query)
		for k, vs := range extra {
			query[k] = append(query[k], vs...)
		}
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri += sep + extra.Encode()
	}

	headers := make(http.Header, len(req.Headers)+3)
	for k, v := range req.Headers {
		headers.Set(k, v)
	}
	setIfNotEmpty(headers, "User-Agent", req.UserAgent)
	setIfNotEmpty(headers, "Referer", req.Referer)
	setIfNotEmpty(headers, "Origin", req.Origin)

	var body url.Values
	if len(req.Form) > 0 {
		body = url.Values(req.Form)
	}

	return &policy.RequestContext{
		Method:    req.Method,
		URI:       uri,
		UserAgent: headers.Get("User-Agent"),
		Referer:   headers.Get("Referer"),
		Origin:    headers.Get("Origin"),
		RemoteIP:  req.RemoteIP,
		Headers:   headers,
		Query:     query,
		Body:      body,
	}
}

func splitKV(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", s)
	}
	return k, v, nil
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
