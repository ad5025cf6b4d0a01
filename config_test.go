package zonecheck

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStderr redirects os.Stderr for the duration of fn and returns
// everything written to it, used to assert on normalizeChecks' direct
// CRITICAL line (the Report Sink doesn't exist yet this early in startup).
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	require.NoError(t, w.Close())
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func TestNormalizeChecksDropsUnknownTokenWithCritical(t *testing.T) {
	var out []string
	stderr := captureStderr(t, func() {
		out = normalizeChecks([]string{"RRSIG", "not_a_option"})
	})
	require.Equal(t, []string{"RRSIG"}, out)
	require.Contains(t, stderr, "CRITICAL: Check option not_a_option is unknown.")
}

func TestNormalizeChecksKeepsKnownTokensSilently(t *testing.T) {
	var out []string
	stderr := captureStderr(t, func() {
		out = normalizeChecks([]string{"rrsig", " nsec "})
	})
	require.ElementsMatch(t, []string{"RRSIG", "NSEC"}, out)
	require.Empty(t, stderr)
}
