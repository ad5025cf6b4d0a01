package zonecheck

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// zonesSection is the INI section name under which serial numbers are
// persisted (spec.md §6 Persisted state).
const zonesSection = "zones"

// SerialGate is the Serial-Number Gate: a small INI-backed key->serial
// store deciding whether a zone needs re-checking, grounded on original
// ZoneProvider.store_sn/is_new (ConfigParser.SafeConfigParser in
// ZoneChecker.py), reimplemented on gopkg.in/ini.v1.
type SerialGate struct {
	path string
}

// serialFileMu serializes the read-modify-write of IsNew across every
// SerialGate in the process, since each zone builds its own gate over the
// same store file.
var serialFileMu sync.Mutex

// NewSerialGate opens (without yet reading) the store at path.
func NewSerialGate(path string) *SerialGate {
	return &SerialGate{path: path}
}

// IsNew reports whether soaSerial is newer than the last recorded serial
// for zone (case-insensitive), per spec.md §4.5: true when no prior value
// exists or the stored value is strictly less than soaSerial. When true and
// storeCurrent, the new serial is written back.
func (g *SerialGate) IsNew(zone string, soaSerial uint32, storeCurrent bool) (bool, error) {
	serialFileMu.Lock()
	defer serialFileMu.Unlock()

	key := strings.ToLower(zone)
	cfg, err := g.load()
	if err != nil {
		return false, err
	}

	sec := cfg.Section(zonesSection)
	isNew := true
	if sec.HasKey(key) {
		stored, err := sec.Key(key).Uint64()
		if err != nil {
			return false, newError(BadConfig, zone, fmt.Errorf("corrupt serial-number store: %w", err))
		}
		isNew = uint64(soaSerial) > stored
	}

	if isNew && storeCurrent {
		sec.Key(key).SetValue(strconv.FormatUint(uint64(soaSerial), 10))
		if err := cfg.SaveTo(g.path); err != nil {
			return false, newError(BadConfig, zone, fmt.Errorf("writing serial-number store: %w", err))
		}
	}
	return isNew, nil
}

// load reads the store, treating a missing file as "no prior value" per
// spec.md §4.5 rather than an error.
func (g *SerialGate) load() (*ini.File, error) {
	cfg, err := ini.LooseLoad(g.path)
	if err != nil {
		return nil, newError(BadConfig, "", fmt.Errorf("corrupt serial-number store %s: %w", g.path, err))
	}
	return cfg, nil
}
