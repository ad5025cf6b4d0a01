// Command zonecheck audits the DNSSEC configuration of one or more zones,
// either from master files or via AXFR, and reports findings on stderr.
package main

import (
	"fmt"
	"os"
	"strings"

	zonecheck "github.com/dnssecaudit/zonecheck"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	flags := zonecheck.DefaultCLIFlags()

	cmd := &cobra.Command{
		Use:   "zonecheck",
		Short: "Audit DNSSEC configuration of a zone",
		Long: `zonecheck reads a zone's resource records, either from a master file or
via AXFR, builds a chain of trust from configured trust anchors, and
reports signature, NSEC/NSEC3, TTL and DS-at-parent defects.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.ConfigFile, "config", "", "load an INI config file, ignoring every other flag")
	f.StringVar(&flags.Level, "level", flags.Level, "minimum severity reported: debug|info|warning|error|critical")
	f.StringVar(&flags.Time, "time", flags.Time, `reference time: "YYYY-MM-DD HH:MM:SS", "run", or "now"`)
	f.StringVar(&flags.SFormat, "sformat", "", "message format string (Python logging %-style)")
	f.StringVar(&flags.DFormat, "dformat", "", "timestamp format string (strftime-style)")
	f.StringVar(&flags.Type, "type", flags.Type, "zone source: file|axfr")
	f.StringVar(&flags.Input, "input", "", "semicolon-separated zone locators")
	f.StringVar(&flags.Anchor, "anchor", "", "semicolon-separated trust anchor files")
	f.StringVar(&flags.Resolver, "resolver", "", "semicolon-separated name-server IPs")
	f.StringVar(&flags.Key, "key", "", `TSIG key as "NAME ALGORITHM DATA"`)
	f.IntVar(&flags.BufferSize, "bs", flags.BufferSize, "owner-group buffer capacity")
	f.StringVar(&flags.BufferWarn, "bw", flags.BufferWarn, "warn on owner revisit: true|yes|1|on|false|no|0|off")
	f.BoolVar(&flags.SN, "sn", false, "skip zones whose SOA serial hasn't advanced")
	f.StringVar(&flags.Check, "check", "", "semicolon-separated checks to enable")
	f.StringVar(&flags.NoCheck, "nocheck", "", "semicolon-separated checks to disable (ignored if --check is set)")
	f.IntVar(&flags.Parallel, "parallel", flags.Parallel, "number of zones to audit concurrently")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "zonecheck: no parameters given")
		os.Exit(int(zonecheck.ExitNoParams))
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// run builds the Config from flags (or the INI file), wires the logrus
// Report Sink, and audits every configured zone, optionally in parallel
// via an errgroup.Group the way the teacher's multi-listener startup
// fans out independent units of work.
func run(flags zonecheck.CLIFlags) error {
	cfg, err := zonecheck.BuildConfig(flags)
	if err != nil {
		return err
	}

	log := logrus.StandardLogger()
	level, _ := zonecheck.ParseSeverity(cfg.General.OutputLevel)
	log.SetLevel(level)
	log.SetFormatter(zonecheck.NewPyFormatter(cfg.General.OutputFormat, cfg.General.OutputFormatDate))
	log.SetOutput(os.Stderr)
	sink := zonecheck.NewSink(log)

	driver := zonecheck.NewPipelineDriver(sink, nil)

	return zonecheck.AuditZones(driver, cfg, sink)
}

// exitCodeFor maps a returned error onto one of spec.md §6's process exit
// codes; a *zonecheck.CLIError carries its own code, anything else (cobra
// flag-parsing failures) is treated as a malformed invocation.
func exitCodeFor(err error) int {
	var cliErr *zonecheck.CLIError
	if ok := asCLIError(err, &cliErr); ok {
		return int(cliErr.Code)
	}
	if strings.Contains(err.Error(), "unknown flag") || strings.Contains(err.Error(), "unknown shorthand flag") {
		return int(zonecheck.ExitUnknownFlag)
	}
	return int(zonecheck.ExitMalformedFlag)
}

func asCLIError(err error, target **zonecheck.CLIError) bool {
	for err != nil {
		if ce, ok := err.(*zonecheck.CLIError); ok {
			*target = ce
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
