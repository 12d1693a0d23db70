package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"

	"github.com/tkingovr/apigate/api"
)

// DefaultRegoPolicy mirrors the built-in rule engine in Rego.
//
//go:embed rego/allowlist.rego
var DefaultRegoPolicy string

// OPAEngine implements the Engine interface using embedded OPA/Rego.
type OPAEngine struct {
	mu sync.RWMutex

	// Compiled query for evaluation
	query rego.PreparedEvalQuery

	list          Allowlist
	matchClientIP bool
}

// OPAOption configures the OPAEngine.
type OPAOption func(*OPAEngine)

// WithAllowlist sets the allowlist exposed to the policy as
// data.allowlist. Defaults to DefaultAllowlist().
func WithAllowlist(list Allowlist) OPAOption {
	return func(e *OPAEngine) {
		e.list = list
	}
}

// WithRegoClientIPMatching sets data.settings.match_client_ip.
func WithRegoClientIPMatching(enabled bool) OPAOption {
	return func(e *OPAEngine) {
		e.matchClientIP = enabled
	}
}

// NewOPAEngine creates a new OPA engine from a .rego policy file.
func NewOPAEngine(path string, opts ...OPAOption) (*OPAEngine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OPA policy file: %w", err)
	}
	return NewOPAEngineFromSource(string(data), opts...)
}

// NewOPAEngineFromSource creates a new OPA engine from raw Rego source.
func NewOPAEngineFromSource(source string, opts ...OPAOption) (*OPAEngine, error) {
	e := &OPAEngine{list: DefaultAllowlist()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.loadSource(source); err != nil {
		return nil, err
	}
	return e, nil
}

// Evaluate runs the Rego policy against the request.
//
// The policy must live in package apigate and define:
//
//	whitelisted: bool
//	rule: string (optional)
//	detail: string (optional)
//
// Input available to the policy:
//
//	input.method, input.uri, input.user_agent, input.referer,
//	input.origin, input.remote_ip: string
//	input.headers: object, lowercased names to the first value
//	input.query, input.body: object, names to arrays of values
func (e *OPAEngine) Evaluate(ctx context.Context, rc *RequestContext) (api.Decision, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if rc == nil {
		rc = &RequestContext{}
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(regoInput(rc)))
	if err != nil {
		return api.NotWhitelisted, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return api.NotWhitelisted, nil
	}

	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return api.NotWhitelisted, fmt.Errorf("unexpected OPA result type %T", rs[0].Expressions[0].Value)
	}

	return parseOPAResult(resultMap), nil
}

func (e *OPAEngine) loadSource(source string) error {
	_, err := ast.ParseModuleWithOpts("policy.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return fmt.Errorf("parsing Rego policy: %w", err)
	}

	r := rego.New(
		rego.Query("data.apigate"),
		rego.Module("policy.rego", source),
		rego.Store(inmem.NewFromObject(e.storeData())),
	)

	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query

	return nil
}

// storeData is the document the policy reads under data.
// Keywords are lowercased, as the rule engine matches them.
func (e *OPAEngine) storeData() map[string]any {
	keywords := make([]string, 0, len(e.list.Keywords))
	for _, k := range e.list.Keywords {
		keywords = append(keywords, strings.ToLower(k))
	}
	return map[string]any{
		"allowlist": map[string]any{
			"admin_page_marker": e.list.AdminPageMarker,
			"keywords":          stringsInput(keywords),
			"rest_namespaces":   stringsInput(e.list.RESTNamespaces),
			"auth_params":       stringsInput(e.list.AuthParams),
			"domains":           stringsInput(e.list.Domains),
			"ip_ranges":         stringsInput(e.list.IPRanges),
			"admin_paths":       stringsInput(e.list.AdminPaths),
		},
		"settings": map[string]any{
			"match_client_ip": e.matchClientIP,
		},
	}
}

func stringsInput(vs []string) []any {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func regoInput(rc *RequestContext) map[string]any {
	headers := make(map[string]any, len(rc.Headers))
	for name, vals := range rc.Headers {
		v := ""
		if len(vals) > 0 {
			v = vals[0]
		}
		headers[strings.ToLower(name)] = v
	}

	return map[string]any{
		"method":     rc.Method,
		"uri":        rc.URI,
		"user_agent": rc.UserAgent,
		"referer":    rc.Referer,
		"origin":     rc.Origin,
		"remote_ip":  rc.RemoteIP,
		"headers":    headers,
		"query":      valuesInput(rc.Query),
		"body":       valuesInput(rc.Body),
	}
}

func valuesInput(vals map[string][]string) map[string]any {
	out := make(map[string]any, len(vals))
	for k, vs := range vals {
		arr := make([]any, len(vs))
		for i, v := range vs {
			arr[i] = v
		}
		out[k] = arr
	}
	return out
}

func parseOPAResult(m map[string]any) api.Decision {
	d := api.NotWhitelisted

	if w, ok := m["whitelisted"].(bool); ok {
		d.Whitelisted = w
	}
	if r, ok := m["rule"].(string); ok && r != "" {
		d.Rule = api.Rule(r)
	}
	if msg, ok := m["detail"].(string); ok {
		d.Detail = msg
	}
	if !d.Whitelisted {
		d.Rule = api.RuleNone
	}

	return d
}
