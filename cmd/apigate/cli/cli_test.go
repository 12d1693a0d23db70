package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/apigate/api"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile = ""
	checkMethod = http.MethodGet
	checkURI, checkUserAgent, checkReferer, checkOrigin, checkRemoteIP = "", "", "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func decodeCheck(t *testing.T, out string) api.CheckResponse {
	t.Helper()
	var resp api.CheckResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestCheckCommand_Whitelisted(t *testing.T) {
	out, err := execute(t, "check", "--uri", "/wp-json/wc/v3/orders", "--user-agent", "curl/8.0")
	require.NoError(t, err)

	resp := decodeCheck(t, out)
	assert.True(t, resp.Whitelisted)
	assert.Equal(t, api.RuleKeyword, resp.Rule)
	assert.ElementsMatch(t, api.SecurityChecks(), resp.Suppressed)
	assert.Empty(t, resp.BlockedBy)
}

func TestCheckCommand_Preflight(t *testing.T) {
	out, err := execute(t, "check", "--method", "options", "--uri", "/blog/")
	require.NoError(t, err)

	resp := decodeCheck(t, out)
	assert.False(t, resp.Whitelisted)
	assert.True(t, resp.Preflight)
}

func TestCheckCommand_RegoEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nsettings:\n  engine: rego\n"), 0o600))

	out, err := execute(t, "check", "-c", path, "--uri", "/shop", "--referer", "https://app.shiprocket.in/orders")
	require.NoError(t, err)

	resp := decodeCheck(t, out)
	assert.True(t, resp.Whitelisted)
	assert.Equal(t, api.RuleKeyword, resp.Rule)
}

func TestCheckCommand_RegoEngineUsesConfiguredAllowlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := `version: 1
settings:
  engine: rego
  match_client_ip: true
allowlist:
  domains: [partner.example.net]
  keywords: []
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	tests := []struct {
		name string
		args []string
		rule api.Rule
	}{
		{"configured domain", []string{"--origin", "https://partner.example.net"}, api.RuleTrustedDomain},
		{"trusted ip", []string{"--remote-ip", "52.66.1.1"}, api.RuleTrustedIP},
		{"default keyword dropped", []string{"--user-agent", "google-bot"}, api.RuleNone},
		{"default domain dropped", []string{"--origin", "https://app.shiprocket.in"}, api.RuleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"check", "-c", path, "--uri", "/feed"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			resp := decodeCheck(t, out)
			assert.Equal(t, tt.rule, resp.Rule)
			assert.Equal(t, tt.rule != api.RuleNone, resp.Whitelisted)
		})
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "app.shiprocket.in")
	assert.Contains(t, out, "csrf_header: X-WP-Nonce")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "apigate dev\n", out)
}

func TestBuildCheckRequest(t *testing.T) {
	checkMethod = "post"
	checkURI = "/index.php?page=1"
	checkUserAgent = "Mozilla/5.0"
	checkReferer = ""
	checkOrigin = "https://jetpack.com"
	checkRemoteIP = "52.66.1.1"
	checkHeaders = []string{"Authorization=Bearer x"}
	checkQuery = []string{"oauth_token=abc"}
	checkForm = []string{"consumer_key=ck_1", "consumer_key=ck_2"}
	t.Cleanup(func() {
		checkHeaders, checkQuery, checkForm = nil, nil, nil
		checkURI, checkUserAgent, checkOrigin, checkRemoteIP = "", "", "", ""
	})

	req, err := buildCheckRequest()
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, []string{"ck_1", "ck_2"}, req.Form["consumer_key"])

	rc := requestContext(req)
	assert.Equal(t, "/index.php?page=1&oauth_token=abc", rc.URI)
	assert.Equal(t, "1", rc.Query.Get("page"))
	assert.True(t, rc.HasParam("oauth_token"))
	assert.True(t, rc.HasParam("consumer_key"))
	assert.True(t, rc.HasHeader("authorization"))
	assert.Equal(t, "https://jetpack.com", rc.Origin)
	assert.Equal(t, "Mozilla/5.0", rc.UserAgent)
	assert.Equal(t, "52.66.1.1", rc.RemoteIP)
}

func TestSplitKV(t *testing.T) {
	k, v, err := splitKV("Authorization=")
	require.NoError(t, err)
	assert.Equal(t, "Authorization", k)
	assert.Empty(t, v)

	k, v, err = splitKV("a=b=c")
	require.NoError(t, err)
	assert.Equal(t, "a", k)
	assert.Equal(t, "b=c", v)

	_, _, err = splitKV("novalue")
	assert.Error(t, err)
	_, _, err = splitKV("=x")
	assert.Error(t, err)
}

func TestCheckCommand_CustomRegoPolicy(t *testing.T) {
	policyPath, err := filepath.Abs(filepath.Join("..", "..", "..", "testdata", "rules", "allowlist.rego"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := "version: 1\nsettings:\n  engine: rego\n  rego_policy: " + policyPath + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := execute(t, "check", "-c", path, "--uri", "/shop", "--origin", "https://app.shiprocket.in")
	require.NoError(t, err)
	resp := decodeCheck(t, out)
	assert.True(t, resp.Whitelisted)
	assert.Equal(t, api.RuleTrustedDomain, resp.Rule)

	// keywords are not part of this policy, but admin routes still apply
	out, err = execute(t, "check", "-c", path, "--uri", "/wp-json/wc/v3/orders")
	require.NoError(t, err)
	resp = decodeCheck(t, out)
	assert.True(t, resp.Whitelisted)
	assert.Equal(t, api.RuleAdminRoute, resp.Rule)

	out, err = execute(t, "check", "-c", path, "--uri", "/shop", "--user-agent", "curl/8.0")
	require.NoError(t, err)
	resp = decodeCheck(t, out)
	assert.False(t, resp.Whitelisted)
	assert.Equal(t, api.CheckBotBlocker, resp.BlockedBy)
}
