package zonecheck

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// ExitCode is one of the process exit codes spec.md §6 enumerates. The CLI
// layer (cmd/zonecheck) maps a returned *CLIError to os.Exit(code).
type ExitCode int

const (
	ExitNoParams         ExitCode = 1
	ExitDuplicateFlag    ExitCode = 2
	ExitMalformedFlag    ExitCode = 3
	ExitUnknownFlag      ExitCode = 4
	ExitInvalidLevel     ExitCode = 5
	ExitInvalidTime      ExitCode = 6
	ExitConfigFile       ExitCode = 7
	ExitInvalidParameter ExitCode = 8
)

// CLIError carries one of the exit codes above out of config loading, the
// way cmd/routedns/main.go returns plain errors from RunE for cobra to
// print before os.Exit(1); here the code additionally selects the process
// exit status.
type CLIError struct {
	Code ExitCode
	Err  error
}

func (e *CLIError) Error() string { return e.Err.Error() }
func (e *CLIError) Unwrap() error { return e.Err }

func cliErrorf(code ExitCode, format string, args ...interface{}) *CLIError {
	return &CLIError{Code: code, Err: fmt.Errorf(format, args...)}
}

// GeneralConfig is the [general] INI section / shared CLI flags.
type GeneralConfig struct {
	OutputLevel      string
	OutputFormat     string
	OutputFormatDate string
	Time             string
}

// ZoneConfig is one zone to audit, either a CLI --input locator sharing the
// process-wide flags, or one non-[general] INI section.
type ZoneConfig struct {
	Name       string
	Enabled    bool
	Type       string // "file" or "axfr"
	Zone       string // locator: file path or hostname/IP
	Trust      []string
	Resolver   []string
	BufferSize int
	BufferWarn bool
	Check      []string
	NoCheck    []string
	Key        string // "NAME ALG DATA"
	SNCheck    bool
}

// Config is the fully resolved configuration for one process invocation.
type Config struct {
	General    GeneralConfig
	Zones      []*ZoneConfig
	Parallel   int
	AnchorDir  string
	SerialPath string
}

const defaultSerialPath = "/tmp/dnssec_last_serial_numbers"

// CLIFlags mirrors every flag spec.md §6 names; cmd/zonecheck binds cobra
// flags directly onto this struct the way routedns's options struct does.
type CLIFlags struct {
	ConfigFile string
	Level      string
	Time       string
	SFormat    string
	DFormat    string
	Type       string
	Input      string
	Anchor     string
	Resolver   string
	Key        string
	BufferSize int
	BufferWarn string
	SN         bool
	Check      string
	NoCheck    string
	Parallel   int
}

// DefaultCLIFlags returns the flag defaults spec.md §6 documents.
func DefaultCLIFlags() CLIFlags {
	return CLIFlags{
		Level:      "error",
		Time:       "run",
		Type:       "file",
		BufferSize: 1,
		BufferWarn: "on",
		Parallel:   1,
	}
}

// BuildConfig resolves CLIFlags into a Config. When ConfigFile is set,
// every other flag is ignored and the INI file is authoritative (spec.md
// §6: "--config=FILE loads INI and ignores other CLI options").
func BuildConfig(f CLIFlags) (*Config, error) {
	if f.ConfigFile != "" {
		return loadConfigFile(f.ConfigFile)
	}
	return buildConfigFromFlags(f)
}

func buildConfigFromFlags(f CLIFlags) (*Config, error) {
	if _, ok := ParseSeverity(f.Level); !ok {
		return nil, cliErrorf(ExitInvalidLevel, "invalid --level %q", f.Level)
	}
	if _, err := NewTimeOracle(f.Time, nil); err != nil {
		return nil, cliErrorf(ExitInvalidTime, "invalid --time %q: %v", f.Time, err)
	}
	if f.BufferSize < 1 {
		return nil, cliErrorf(ExitInvalidParameter, "invalid --bs %d: must be >= 1", f.BufferSize)
	}
	bufferWarn, ok := parseBool(f.BufferWarn)
	if !ok {
		return nil, cliErrorf(ExitInvalidParameter, "invalid --bw %q", f.BufferWarn)
	}

	locators := splitList(f.Input)
	if len(locators) == 0 {
		return nil, cliErrorf(ExitNoParams, "no --input locators given")
	}

	resolvers := splitList(f.Resolver)
	for _, r := range resolvers {
		if err := validServerAddr(r); err != nil {
			return nil, cliErrorf(ExitInvalidParameter, "%v", err)
		}
	}

	zones := make([]*ZoneConfig, 0, len(locators))
	for _, loc := range locators {
		zones = append(zones, &ZoneConfig{
			Name:       loc,
			Enabled:    true,
			Type:       f.Type,
			Zone:       loc,
			Trust:      splitList(f.Anchor),
			Resolver:   resolvers,
			BufferSize: f.BufferSize,
			BufferWarn: bufferWarn,
			Check:      resolveChecks(splitList(f.Check), splitList(f.NoCheck)),
			Key:        f.Key,
			SNCheck:    f.SN,
		})
	}

	return &Config{
		General: GeneralConfig{
			OutputLevel:      f.Level,
			OutputFormat:     f.SFormat,
			OutputFormatDate: f.DFormat,
			Time:             f.Time,
		},
		Zones:      zones,
		Parallel:   f.Parallel,
		SerialPath: defaultSerialPath,
	}, nil
}

// loadConfigFile parses an INI config per spec.md §6: [general] plus one
// section per zone.
func loadConfigFile(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, &CLIError{Code: ExitConfigFile, Err: errors.Wrapf(err, "reading config %q", path)}
	}

	cfgOut := &Config{SerialPath: defaultSerialPath, Parallel: 1}

	if gen := cfg.Section("general"); gen != nil {
		cfgOut.General = GeneralConfig{
			OutputLevel:      gen.Key("outputLevel").MustString("error"),
			OutputFormat:     gen.Key("outputFormat").String(),
			OutputFormatDate: gen.Key("outputFormatDate").String(),
			Time:             gen.Key("time").MustString("run"),
		}
	}
	if _, ok := ParseSeverity(cfgOut.General.OutputLevel); !ok {
		return nil, &CLIError{Code: ExitInvalidLevel, Err: fmt.Errorf("invalid outputLevel %q", cfgOut.General.OutputLevel)}
	}
	if _, err := NewTimeOracle(cfgOut.General.Time, nil); err != nil {
		return nil, &CLIError{Code: ExitInvalidTime, Err: errors.Wrap(err, "invalid [general] time")}
	}

	for _, sec := range cfg.Sections() {
		name := sec.Name()
		if name == "DEFAULT" || name == "general" {
			continue
		}
		zc, err := parseZoneSection(name, sec)
		if err != nil {
			return nil, &CLIError{Code: ExitConfigFile, Err: err}
		}
		cfgOut.Zones = append(cfgOut.Zones, zc)
	}
	return cfgOut, nil
}

func parseZoneSection(name string, sec *ini.Section) (*ZoneConfig, error) {
	zc := &ZoneConfig{
		Name:       name,
		Enabled:    sec.Key("enabled").MustBool(true),
		Type:       sec.Key("type").MustString("file"),
		Zone:       sec.Key("zone").String(),
		Trust:      splitList(sec.Key("trust").String()),
		BufferSize: sec.Key("buffersize").MustInt(1),
		BufferWarn: sec.Key("bufferwarn").MustBool(true),
		Check:      resolveChecks(splitList(sec.Key("check").String()), splitList(sec.Key("nocheck").String())),
		Key:        sec.Key("key").String(),
		SNCheck:    sec.Key("sncheck").MustBool(false),
	}
	if zc.Zone == "" {
		return nil, fmt.Errorf("zone %q: missing required \"zone\" key", name)
	}
	if zc.BufferSize < 1 {
		return nil, fmt.Errorf("zone %q: buffersize must be >= 1", name)
	}
	resolver := sec.Key("resolver").String()
	if resolver != "" && resolver != "default" {
		zc.Resolver = splitList(resolver)
		for _, r := range zc.Resolver {
			if err := validServerAddr(r); err != nil {
				return nil, fmt.Errorf("zone %q: %w", name, err)
			}
		}
	}
	return zc, nil
}

// resolveChecks implements the Open Question (a) fix: if both --check and
// --nocheck are given, --nocheck is ignored entirely (rather than the
// source's one-code-path special case for an empty --check).
func resolveChecks(checks, nochecks []string) []string {
	if len(checks) > 0 {
		return normalizeChecks(checks)
	}
	if len(nochecks) == 0 {
		return normalizeChecks(tokenStrings(AllChecks))
	}
	excluded := make(map[string]bool)
	for _, c := range normalizeChecks(nochecks) {
		excluded[c] = true
	}
	var out []string
	for _, c := range tokenStrings(AllChecks) {
		if !excluded[c] {
			out = append(out, c)
		}
	}
	return out
}

// normalizeChecks upper-cases and validates each --check/--nocheck token.
// The Report Sink doesn't exist yet this early in startup (config is
// resolved before the CLI layer builds its logger), so an unknown token is
// reported the way the original tool reports it at this same stage: a
// CRITICAL line straight to stderr, independent of --level/--sformat. The
// token itself is then dropped rather than passed through.
func normalizeChecks(tokens []string) []string {
	valid := make(map[string]bool)
	for _, c := range AllChecks {
		valid[string(c)] = true
	}
	var out []string
	for _, t := range tokens {
		up := strings.ToUpper(strings.TrimSpace(t))
		if !valid[up] {
			fmt.Fprintf(os.Stderr, "CRITICAL: Check option %s is unknown.\n", t)
			continue
		}
		out = append(out, up)
	}
	return out
}

func tokenStrings(checks []Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = string(c)
	}
	return out
}

// CheckSetFor builds the CheckSet a zone's resolved Check token list
// describes.
func (z *ZoneConfig) CheckSetFor() CheckSet {
	set := make(CheckSet)
	for _, t := range z.Check {
		set[Check(t)] = true
	}
	return set
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, true
	case "false", "no", "0", "off":
		return false, true
	default:
		return false, false
	}
}

// parseTSIG splits a "NAME ALG DATA" triple as spec.md §6's --key/key=
// value encodes it.
func parseTSIG(s string) (name, algorithm, secret string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return "", "", "", false
	}
	return fields[0], fields[1], fields[2], true
}
