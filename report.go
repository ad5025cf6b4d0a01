package zonecheck

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Severity mirrors the five-level taxonomy from spec.md (DEBUG < INFO <
// WARNING < ERROR < CRITICAL); it maps directly onto logrus levels.
type Severity = logrus.Level

const (
	SeverityDebug    Severity = logrus.DebugLevel
	SeverityInfo     Severity = logrus.InfoLevel
	SeverityWarning  Severity = logrus.WarnLevel
	SeverityError    Severity = logrus.ErrorLevel
	SeverityCritical Severity = logrus.FatalLevel
)

// ParseSeverity converts a --level token into a Severity, or reports
// whether the token was unrecognized (exit code 5 at the CLI layer).
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return SeverityDebug, true
	case "info":
		return SeverityInfo, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "critical":
		return SeverityCritical, true
	default:
		return 0, false
	}
}

// Sink is the Report Sink: every finding the verifier and pipeline driver
// produce flows through it. It is a thin wrapper over logrus so that the
// CLI layer (see cmd/zonecheck) can attach sformat/dformat as a logrus
// Formatter, the way routedns's cmd/routedns/main.go configures the
// package-level logger before running.
//
// Findings (DEBUG..CRITICAL) go through logrus and are subject to --level
// filtering, landing on logrus's output (stderr by default). Statistics are
// a separate stream: the original tool prints them with plain `print`
// (stdout), never through `logging` (stderr), so a `--level=error` run still
// shows them. statsOut carries that split forward, independent of the
// logger's level.
type Sink struct {
	log      *logrus.Logger
	statsOut io.Writer
}

// NewSink builds a Report Sink writing findings through the given
// logrus.Logger and statistics to os.Stdout. Pass logrus.StandardLogger()
// for the process-wide default logger.
func NewSink(log *logrus.Logger) *Sink {
	return &Sink{log: log, statsOut: os.Stdout}
}

func (s *Sink) Debugf(format string, args ...interface{})    { s.log.Debugf(format, args...) }
func (s *Sink) Infof(format string, args ...interface{})     { s.log.Infof(format, args...) }
func (s *Sink) Warningf(format string, args ...interface{})  { s.log.Warnf(format, args...) }
func (s *Sink) Errorf(format string, args ...interface{})    { s.log.Errorf(format, args...) }
func (s *Sink) Criticalf(format string, args ...interface{}) {
	// Logged at logrus's Fatal level (SeverityCritical) through Logf, which,
	// unlike Fatalf, never calls os.Exit; the severity field makes the
	// formatter print CRITICAL instead of FATAL.
	s.log.WithField("severity", "CRITICAL").Logf(logrus.FatalLevel, format, args...)
}

// Statf writes one line of statistics output directly to the Report Sink's
// primary output stream, bypassing the logger entirely so it can never be
// dropped by --level filtering the way an ERROR finding can.
func (s *Sink) Statf(format string, args ...interface{}) {
	fmt.Fprintf(s.statsOut, format+"\n", args...)
}

// pyFormatter translates the Python logging-style sformat/dformat tokens
// (%(asctime)s, %(levelname)s, %(message)s) into a logrus.Formatter. This
// is an ambient-stack addition: the original tool's --sformat/--dformat
// flags are Python logging format strings, and the closest idiomatic Go
// analogue is a custom logrus.Formatter built once from those strings.
type pyFormatter struct {
	msgFormat string
	dateFmt   string
}

// NewPyFormatter builds a logrus.Formatter from Python-style sformat and
// dformat strings, defaulting to the values spec.md documents.
func NewPyFormatter(sformat, dformat string) logrus.Formatter {
	if sformat == "" {
		sformat = "%(asctime)s %(levelname)s: %(message)s"
	}
	if dformat == "" {
		dformat = "%Y-%m-%d %H:%M:%S"
	}
	return &pyFormatter{msgFormat: sformat, dateFmt: pyDateToGo(dformat)}
}

func (f *pyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(e.Level.String())
	if v, ok := e.Data["severity"]; ok {
		level = fmt.Sprintf("%v", v)
	}
	line := f.msgFormat
	line = strings.ReplaceAll(line, "%(asctime)s", e.Time.Format(f.dateFmt))
	line = strings.ReplaceAll(line, "%(levelname)s", level)
	line = strings.ReplaceAll(line, "%(message)s", e.Message)
	var buf bytes.Buffer
	buf.WriteString(line)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// pyDateToGo converts the handful of strftime-style directives spec.md's
// --dformat default actually uses into Go's reference-time layout.
func pyDateToGo(d string) string {
	r := strings.NewReplacer(
		"%Y", "2006", "%m", "01", "%d", "02",
		"%H", "15", "%M", "04", "%S", "05",
	)
	return r.Replace(d)
}
