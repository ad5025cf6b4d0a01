package zonecheck

import (
	"fmt"
	"strconv"
	"time"
)

// Classification is the result of comparing an RRSIG's validity window to
// the Time Oracle's reference instant.
type Classification int

const (
	Valid Classification = iota
	Expired
	Future
)

func (c Classification) String() string {
	switch c {
	case Valid:
		return "Valid"
	case Future:
		return "Future"
	default:
		return "Expired"
	}
}

// literalLayout is the accepted non-keyword --time/config literal layout,
// grounded on original ZoneChecker.py's TimeVerify, which accepts the same
// "YYYY-MM-DD HH:MM:SS" shape.
const literalLayout = "2006-01-02 15:04:05"

// TimeOracle supplies the reference wall-clock instant signature checks
// compare against. Three modes (spec.md §4.1): a literal timestamp frozen
// at construction, "run" (now() captured once at construction), and "now"
// (live now() on every call).
type TimeOracle struct {
	fixed bool
	at    time.Time
	now   func() time.Time // only used when fixed is false
}

// NewTimeOracle builds a Time Oracle from a --time/[general]time token.
// now is the live clock to use for "now" mode and to capture "run" mode;
// pass time.Now in production and an injected clock in tests.
func NewTimeOracle(value string, now func() time.Time) (*TimeOracle, error) {
	if now == nil {
		now = time.Now
	}
	switch value {
	case "", "run":
		return &TimeOracle{fixed: true, at: now()}, nil
	case "now":
		return &TimeOracle{fixed: false, now: now}, nil
	default:
		t, err := time.ParseInLocation(literalLayout, value, time.UTC)
		if err != nil {
			return nil, newError(BadConfig, "", fmt.Errorf("invalid --time value %q: %w", value, err))
		}
		return &TimeOracle{fixed: true, at: t}, nil
	}
}

// reference returns the instant to compare against for this call.
func (o *TimeOracle) reference() time.Time {
	if o.fixed {
		return o.at
	}
	return o.now()
}

// Normalize converts an RRSIG time field, which may arrive as a 14-digit
// YYYYMMDDHHMMSS datetime or as decimal seconds-since-epoch, into an
// absolute Unix epoch second. Invalid input fails BadTime.
func Normalize(raw string) (int64, error) {
	if len(raw) == 14 {
		t, err := time.ParseInLocation("20060102150405", raw, time.UTC)
		if err == nil {
			return t.Unix(), nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, newError(BadTime, "", fmt.Errorf("invalid RRSIG time %q: %w", raw, err))
	}
	return v, nil
}

// Classify compares an RRSIG's inception/expiration (absolute epoch
// seconds) against the oracle's reference instant.
func (o *TimeOracle) Classify(inception, expiration int64) Classification {
	now := o.reference().Unix()
	switch {
	case now < inception:
		return Future
	case now <= expiration:
		return Valid
	default:
		return Expired
	}
}

// Remaining returns the number of seconds left until expiration, saturating
// at zero rather than going negative.
func (o *TimeOracle) Remaining(expiration int64) int64 {
	now := o.reference().Unix()
	if expiration <= now {
		return 0
	}
	return expiration - now
}
