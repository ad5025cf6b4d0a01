package zonecheck

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialGateEmptyStoreIsNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serials.ini")
	g := NewSerialGate(path)
	isNew, err := g.IsNew("example.com.", 2024010100, true)
	require.NoError(t, err)
	require.True(t, isNew)
}

func TestSerialGateRejectsLowerOrEqualSerial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serials.ini")
	g := NewSerialGate(path)
	_, err := g.IsNew("example.com.", 100, true)
	require.NoError(t, err)

	isNew, err := g.IsNew("example.com.", 100, true)
	require.NoError(t, err)
	require.False(t, isNew)

	isNew, err = g.IsNew("EXAMPLE.COM.", 99, true)
	require.NoError(t, err)
	require.False(t, isNew)
}

func TestSerialGateAcceptsHigherSerialAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serials.ini")
	g := NewSerialGate(path)
	_, err := g.IsNew("example.com.", 100, true)
	require.NoError(t, err)

	isNew, err := g.IsNew("example.com.", 101, true)
	require.NoError(t, err)
	require.True(t, isNew)

	g2 := NewSerialGate(path)
	isNew, err = g2.IsNew("example.com.", 101, false)
	require.NoError(t, err)
	require.False(t, isNew)
}
