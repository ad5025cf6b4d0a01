package zonecheck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidServerAddrAcceptsIPOnly(t *testing.T) {
	require.NoError(t, validServerAddr("192.0.2.1"))
	require.NoError(t, validServerAddr("[2001:db8::1]"))
	require.Error(t, validServerAddr("ns1.example.com"))
}

func TestValidHostnameAcceptsWellFormedZoneNames(t *testing.T) {
	require.NoError(t, validHostname("example.com."))
	require.NoError(t, validHostname("example.com"))
	require.NoError(t, validHostname("sub.example.com."))
}

func TestValidHostnameRejectsMalformedZoneNames(t *testing.T) {
	require.Error(t, validHostname(""))
	require.Error(t, validHostname("-example.com."))
	require.Error(t, validHostname("exa_mple.com."))
	require.Error(t, validHostname("123."))
}

func TestAxfrSourceStartRejectsInvalidLocator(t *testing.T) {
	src := NewAxfrSource(NewBuffer(1, false, nil))
	err := src.Start("not a hostname!", NewResolverPool())
	require.Error(t, err)
}
