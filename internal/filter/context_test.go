package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tkingovr/apigate/api"
)

func TestFilterContext_WhitelistIsWriteOnce(t *testing.T) {
	fc := NewFilterContext(nil, nil)
	assert.Equal(t, api.NotWhitelisted, fc.Decision)

	assert.True(t, fc.Whitelist(api.NotWhitelisted))
	assert.True(t, fc.Whitelist(api.Decision{Whitelisted: true, Rule: api.RuleKeyword, Detail: "jetpack"}))

	assert.False(t, fc.Whitelist(api.Decision{Whitelisted: true, Rule: api.RuleAdminRoute}))
	assert.False(t, fc.Whitelist(api.NotWhitelisted))
	assert.Equal(t, api.Decision{Whitelisted: true, Rule: api.RuleKeyword, Detail: "jetpack"}, fc.Decision)
}

func TestFilterContext_EmptyRuleBecomesNone(t *testing.T) {
	fc := NewFilterContext(nil, nil)
	fc.Whitelist(api.Decision{})
	assert.Equal(t, api.RuleNone, fc.Decision.Rule)
}

func TestFilterContext_Suppress(t *testing.T) {
	fc := NewFilterContext(nil, nil)
	assert.Nil(t, fc.Suppressed())
	assert.False(t, fc.IsSuppressed(api.CheckWAF))

	fc.Suppress(api.SecurityChecks()...)
	fc.Suppress(api.SecurityChecks()...)

	assert.True(t, fc.IsSuppressed(api.CheckWAF))
	assert.Equal(t, []string{api.CheckBotBlackhole, api.CheckBotBlocker, api.CheckWAF}, fc.Suppressed())
}

func TestFilterContext_ToCheckResponse(t *testing.T) {
	fc := NewFilterContext(nil, nil)
	fc.Block(api.CheckBotBlocker, "bad bot")

	resp := fc.ToCheckResponse()
	assert.False(t, resp.Whitelisted)
	assert.Equal(t, api.RuleNone, resp.Rule)
	assert.Equal(t, api.CheckBotBlocker, resp.BlockedBy)
	assert.Equal(t, "bad bot", resp.Reason)
	assert.True(t, fc.Halted)
	assert.True(t, fc.Blocked())
}
