package zonecheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuledBannerIs80ColumnsWide(t *testing.T) {
	banner := ruledBanner(" Statistics - NSEC usage ")
	require.Len(t, banner, 80)
	require.True(t, strings.HasPrefix(banner, "-"))
	require.True(t, strings.HasSuffix(banner, "-"))
	require.Contains(t, banner, " Statistics - NSEC usage ")
}

func TestPrintStatisticsWritesToStatsStreamNotLogger(t *testing.T) {
	var messages []string
	sink := NewSink(testLogger(&messages))
	var out bytes.Buffer
	sink.statsOut = &out

	state := NewZoneState("example.com.")
	state.NSECStats.IncOne("NSEC")

	printStatistics(sink, state)

	require.Empty(t, messages, "statistics must not flow through the findings logger")
	require.Contains(t, out.String(), "Statistics - NSEC usage")
	require.Contains(t, out.String(), "NSEC (1x, 100.00%)")
}
