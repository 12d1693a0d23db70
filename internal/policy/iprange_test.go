package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPMatchList(t *testing.T) {
	l, err := NewIPMatchList([]string{"52.66.0.0/16", "10.1.2.3", "2001:db8::/32"})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	assert.True(t, l.Contains("52.66.200.1"))
	assert.True(t, l.Contains("10.1.2.3"))
	assert.True(t, l.Contains("2001:db8::1"))

	assert.False(t, l.Contains("52.67.0.1"))
	assert.False(t, l.Contains("10.1.2.4"))
	assert.False(t, l.Contains("2001:db9::1"))
	assert.False(t, l.Contains(""))
	assert.False(t, l.Contains("not-an-ip"))
}

func TestIPMatchList_Empty(t *testing.T) {
	l, err := NewIPMatchList(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("127.0.0.1"))

	var nilList *IPMatchList
	assert.False(t, nilList.Contains("127.0.0.1"))
}

func TestIPMatchList_Invalid(t *testing.T) {
	_, err := NewIPMatchList([]string{"52.66.0.0/16", "bogus"})
	assert.Error(t, err)
}
