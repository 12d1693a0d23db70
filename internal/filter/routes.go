package filter

import (
	"context"

	"github.com/tkingovr/apigate/api"
)

// RouteMatcher reports whether a URI targets a trusted admin route.
type RouteMatcher interface {
	MatchAdminRoute(uri string) (string, bool)
}

// AdminRouteFilter whitelists requests to trusted admin REST routes,
// whatever the classifier decided.
type AdminRouteFilter struct {
	routes     RouteMatcher
	suppressor *HookSuppressor
}

func NewAdminRouteFilter(routes RouteMatcher, suppressor *HookSuppressor) *AdminRouteFilter {
	return &AdminRouteFilter{routes: routes, suppressor: suppressor}
}

func (f *AdminRouteFilter) Name() string { return "admin_routes" }

func (f *AdminRouteFilter) Process(_ context.Context, fc *FilterContext) error {
	if fc.Request == nil {
		return nil
	}
	route, ok := f.routes.MatchAdminRoute(fc.Request.URI)
	if !ok {
		return nil
	}
	fc.Whitelist(api.Decision{Whitelisted: true, Rule: api.RuleAdminRoute, Detail: route})
	f.suppressor.Suppress(fc, true)
	return nil
}
