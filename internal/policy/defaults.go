package policy

const (
	EngineRules = "rules"
	EngineRego  = "rego"
)

// DefaultAdminPageMarker identifies the merchant admin page.
const DefaultAdminPageMarker = "/wp-admin/admin.php?page=wc-admin"

// DefaultAllowlist returns the built-in allowlist for the shipping,
// merchant and blog-companion integrations.
func DefaultAllowlist() Allowlist {
	return Allowlist{
		Domains: []string{
			"app.shiprocket.in",
			"apiv2.shiprocket.in",
			"api.shiprocket.in",
			"shiprocket.in",
			"www.shiprocket.in",
			"sr-posthog.shiprocket.in",

			"accounts.google.com",
			"oauth2.googleapis.com",
			"www.googleapis.com",
			"merchantcenter.googleapis.com",
			"content.googleapis.com",
			"shopping.googleapis.com",
			"jetpack.wordpress.com",
			"jetpack.com",
			"public-api.wordpress.com",
		},
		// Not consulted unless settings.match_client_ip is set.
		IPRanges: []string{
			"52.66.0.0/16",
			"13.126.0.0/16",
			"13.232.0.0/16",
		},
		Keywords: []string{
			"shiprocket",
			"woocommerce",
			"google",
			"jetpack",
			"merchant",
			"rest_route=/wc/",
			"/wp-json/wc/",
			"/wp-json/wc/gla/",
			"/wp-json/jetpack/",
			"consumer_key",
			"consumer_secret",
			"oauth",
			"api_key",
		},
		RESTNamespaces: []string{
			"/wp-json/wc/",
			"/wp-json/wc-admin/",
			"/wp-json/jetpack/",
		},
		AdminPageMarker: DefaultAdminPageMarker,
		AdminPaths: []string{
			"/wp-admin/admin-ajax.php",
			"/wp-admin/",
		},
		AdminRoutes: []string{
			"/wp-json/wc/gla/",
			"/wp-json/wc/v3/",
			"/wp-json/wc/v2/",
			"/wp-json/wc/v1/",
			"/wp-json/wc-admin/",
			"/wp-json/jetpack/",
			DefaultAdminPageMarker,
		},
		AuthParams: []string{
			"consumer_key",
			"oauth_token",
		},
	}
}

// DefaultTrustedProxies returns the loopback and private ranges.
func DefaultTrustedProxies() []string {
	return []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"::1/128",
		"fc00::/7",
	}
}

// DefaultSettings returns settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		Listen:         ":8080",
		MetricsPath:    "/metrics",
		Engine:         EngineRules,
		CSRFHeader:     "X-WP-Nonce",
		TrustedProxies: DefaultTrustedProxies(),
		CORSMaxAge:     86400,
	}
}

// DefaultRulesFile returns a complete rules file built from defaults.
func DefaultRulesFile() *RulesFile {
	rf := &RulesFile{Version: 1}
	applyDefaults(rf)
	return rf
}

func applyDefaults(rf *RulesFile) {
	d := DefaultSettings()
	s := &rf.Settings
	if s.Listen == "" {
		s.Listen = d.Listen
	}
	if s.MetricsPath == "" {
		s.MetricsPath = d.MetricsPath
	}
	if s.Engine == "" {
		s.Engine = d.Engine
	}
	if s.CSRFHeader == "" {
		s.CSRFHeader = d.CSRFHeader
	}
	if s.TrustedProxies == nil {
		s.TrustedProxies = d.TrustedProxies
	}
	if s.CORSMaxAge == 0 {
		s.CORSMaxAge = d.CORSMaxAge
	}

	def := DefaultAllowlist()
	a := &rf.Allowlist
	if a.Domains == nil {
		a.Domains = def.Domains
	}
	if a.IPRanges == nil {
		a.IPRanges = def.IPRanges
	}
	if a.Keywords == nil {
		a.Keywords = def.Keywords
	}
	if a.RESTNamespaces == nil {
		a.RESTNamespaces = def.RESTNamespaces
	}
	if a.AdminPageMarker == "" {
		a.AdminPageMarker = def.AdminPageMarker
	}
	if a.AdminPaths == nil {
		a.AdminPaths = def.AdminPaths
	}
	if a.AdminRoutes == nil {
		a.AdminRoutes = def.AdminRoutes
	}
	if a.AuthParams == nil {
		a.AuthParams = def.AuthParams
	}
}
