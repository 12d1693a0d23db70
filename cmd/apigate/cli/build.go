package cli

import (
	"fmt"
	"log/slog"

	"github.com/tkingovr/apigate/internal/config"
	"github.com/tkingovr/apigate/internal/filter"
	"github.com/tkingovr/apigate/internal/guard"
	"github.com/tkingovr/apigate/internal/policy"
)

// buildChain wires the classifier, guards and observers for cfg.
// rec may be nil.
func buildChain(cfg *config.Config, rec filter.Recorder, logger *slog.Logger) (*filter.Chain, error) {
	rules, err := policy.NewRuleEngine(cfg.Rules.Allowlist,
		policy.WithClientIPMatching(cfg.Settings.MatchClientIP),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rule engine: %w", err)
	}

	var engine policy.Engine = rules
	if cfg.Settings.Engine == policy.EngineRego {
		opts := []policy.OPAOption{
			policy.WithAllowlist(cfg.Rules.Allowlist),
			policy.WithRegoClientIPMatching(cfg.Settings.MatchClientIP),
		}
		var opa *policy.OPAEngine
		if cfg.Settings.RegoPolicy != "" {
			opa, err = policy.NewOPAEngine(cfg.Settings.RegoPolicy, opts...)
		} else {
			opa, err = policy.NewOPAEngineFromSource(policy.DefaultRegoPolicy, opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("creating OPA engine: %w", err)
		}
		engine = opa
	}

	guards, err := guard.FromConfig(cfg.Rules.Guards)
	if err != nil {
		return nil, fmt.Errorf("creating guards: %w", err)
	}

	var clientIP *filter.ClientIPResolver
	if cfg.Settings.TrustProxy {
		clientIP, err = filter.NewClientIPResolver(cfg.Settings.TrustedProxies)
		if err != nil {
			return nil, err
		}
	}

	return filter.BuildChain(filter.ChainConfig{
		Engine:     engine,
		Routes:     rules,
		Guards:     guards,
		Recorder:   rec,
		Logger:     logger,
		ClientIP:   clientIP,
		CSRFHeader: cfg.Settings.CSRFHeader,
		CORSMaxAge: cfg.Settings.CORSMaxAge,
	}), nil
}
