package zonecheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuditZonesSkipsDisabled(t *testing.T) {
	var messages []string
	sink := NewSink(testLogger(&messages))
	driver := NewPipelineDriver(sink, func() time.Time { return time.Unix(0, 0) })

	cfg := &Config{
		General:    GeneralConfig{Time: "run"},
		SerialPath: "/tmp/zonecheck-test-nonexistent-serials.ini",
		Zones: []*ZoneConfig{
			{Name: "disabled.example.", Enabled: false, Type: "file", Zone: "/nonexistent/zone.file"},
		},
	}

	err := AuditZones(driver, cfg, sink)
	require.NoError(t, err)
}

func TestAuditZonesRunsSequentiallyByDefault(t *testing.T) {
	var messages []string
	sink := NewSink(testLogger(&messages))
	driver := NewPipelineDriver(sink, func() time.Time { return time.Unix(0, 0) })

	cfg := &Config{
		General:    GeneralConfig{Time: "run"},
		Parallel:   1,
		SerialPath: "/tmp/zonecheck-test-nonexistent-serials.ini",
		Zones: []*ZoneConfig{
			{Name: "missing-a.example.", Enabled: true, Type: "file", Zone: "/nonexistent/a.zone"},
			{Name: "missing-b.example.", Enabled: true, Type: "file", Zone: "/nonexistent/b.zone"},
		},
	}

	err := AuditZones(driver, cfg, sink)
	require.NoError(t, err)

	found := 0
	for _, m := range messages {
		if m != "" {
			found++
		}
	}
	require.GreaterOrEqual(t, found, 2, "both missing zones should have logged a CRITICAL finding")
}

func TestAuditZonesParallelCompletesAllZones(t *testing.T) {
	var messages []string
	sink := NewSink(testLogger(&messages))
	driver := NewPipelineDriver(sink, func() time.Time { return time.Unix(0, 0) })

	cfg := &Config{
		General:    GeneralConfig{Time: "run"},
		Parallel:   4,
		SerialPath: "/tmp/zonecheck-test-nonexistent-serials.ini",
		Zones: []*ZoneConfig{
			{Name: "a.example.", Enabled: true, Type: "file", Zone: "/nonexistent/a.zone"},
			{Name: "b.example.", Enabled: true, Type: "file", Zone: "/nonexistent/b.zone"},
			{Name: "c.example.", Enabled: true, Type: "file", Zone: "/nonexistent/c.zone"},
		},
	}

	err := AuditZones(driver, cfg, sink)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(messages), 3)
}
