package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/tkingovr/apigate/internal/policy"
)

// Config is the runtime configuration for apigate.
type Config struct {
	Rules     *policy.RulesFile
	RulesPath string

	// Settings are the effective settings after environment overrides.
	Settings policy.Settings
}

// Load reads a rules YAML file and produces a runtime Config.
func Load(path string) (*Config, error) {
	rf, err := policy.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromRules(rf, path)
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	rf, err := policy.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return fromRules(rf, "")
}

// LoadDefault builds a Config from the built-in rules, still honouring
// environment overrides.
func LoadDefault() (*Config, error) {
	return fromRules(policy.DefaultRulesFile(), "")
}

func fromRules(rf *policy.RulesFile, path string) (*Config, error) {
	settings, err := applyEnv(rf.Settings)
	if err != nil {
		return nil, err
	}

	settings.RegoPolicy = expandHome(settings.RegoPolicy)
	if settings.Engine == policy.EngineRego && settings.RegoPolicy != "" {
		if _, err := os.Stat(settings.RegoPolicy); err != nil {
			return nil, fmt.Errorf("rego_policy: %w", err)
		}
	}

	rf.Settings = settings
	return &Config{
		Rules:     rf,
		RulesPath: path,
		Settings:  settings,
	}, nil
}

// envLoader loads APIGATE_* environment variables, lowercased with the
// prefix removed. It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			if key == "trusted_proxies" {
				var list []string
				for part := range strings.SplitSeq(value, ",") {
					if part = strings.TrimSpace(part); part != "" {
						list = append(list, part)
					}
				}
				return key, list
			}
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

func applyEnv(s policy.Settings) (policy.Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(s, "koanf"), nil); err != nil {
		return s, fmt.Errorf("error loading settings: %w", err)
	}
	if err := envLoader(k); err != nil {
		return s, fmt.Errorf("error loading env: %w", err)
	}

	var out policy.Settings
	if err := k.Unmarshal("", &out); err != nil {
		return s, fmt.Errorf("error unmarshalling settings: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(out); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}
	return out, nil
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfig returns a config with defaults for when no config file is
// given. Environment overrides are not applied.
func DefaultConfig() *Config {
	rf := policy.DefaultRulesFile()
	return &Config{
		Rules:    rf,
		Settings: rf.Settings,
	}
}

// MarshalYAML serializes the effective rules for display/export.
func (c *Config) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(c.Rules)
}
