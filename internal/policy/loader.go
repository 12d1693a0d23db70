package policy

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads and validates a YAML rules file.
func LoadFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates YAML rules data. Missing sections
// take their defaults.
func LoadBytes(data []byte) (*RulesFile, error) {
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}
	if err := Validate(&rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Validate fills defaults into rf and checks it.
func Validate(rf *RulesFile) error {
	if rf.Version != 1 {
		return fmt.Errorf("unsupported rules version: %d (expected 1)", rf.Version)
	}

	applyDefaults(rf)

	if err := validate.Struct(rf); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	for i, p := range rf.Guards.WAFPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("guards.waf_patterns[%d] regex invalid: %w", i, err)
		}
	}
	for i, p := range rf.Guards.BotUserAgents {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("guards.bot_user_agents[%d] regex invalid: %w", i, err)
		}
	}

	return nil
}
