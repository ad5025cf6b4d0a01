package zonecheck

import (
	"bufio"
	"os"
	"strings"

	"github.com/dnssecaudit/zonecheck/dnssec"
	"github.com/miekg/dns"
)

// rootAnchorFile is always loaded in addition to any --anchor files
// (spec.md §6): a missing root anchor file is an ERROR but not fatal.
const rootAnchorFile = "ds-root"

// LoadAnchorFile parses a zone-file-formatted trust anchor file (DNSKEY
// and/or DS records, one per line, exactly as original ZoneChecker.py's
// load_trust_anchors reads "ds-root" and the per-zone --trust files) and
// merges its contents into an AnchorSet.
func LoadAnchorFile(path string) (dnssec.AnchorSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return dnssec.AnchorSet{}, err
	}
	defer f.Close()

	var out dnssec.AnchorSet
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		rr, err := dns.NewRR(line)
		if err != nil || rr == nil {
			continue
		}
		switch t := rr.(type) {
		case *dns.DNSKEY:
			out.Keys = append(out.Keys, t)
		case *dns.DS:
			out.DS = append(out.DS, t)
		}
	}
	return out, scanner.Err()
}

// LoadTrustAnchors loads the root anchor file plus every zone-specific
// anchor file, merging them into one AnchorSet. A missing root anchor file
// is reported as an ERROR through sink but does not abort the zone
// (spec.md §6: "missing -> ERROR but not fatal").
func LoadTrustAnchors(sink *Sink, anchorDir string, files []string) dnssec.AnchorSet {
	var merged dnssec.AnchorSet

	rootPath := rootAnchorFile
	if anchorDir != "" {
		rootPath = anchorDir + "/" + rootAnchorFile
	}
	if set, err := LoadAnchorFile(rootPath); err != nil {
		if sink != nil {
			sink.Errorf("root trust anchor file %q not readable: %v", rootPath, err)
		}
	} else {
		merged.Keys = append(merged.Keys, set.Keys...)
		merged.DS = append(merged.DS, set.DS...)
	}

	for _, path := range files {
		set, err := LoadAnchorFile(path)
		if err != nil {
			if sink != nil {
				sink.Errorf("trust anchor file %q not readable: %v", path, err)
			}
			continue
		}
		merged.Keys = append(merged.Keys, set.Keys...)
		merged.DS = append(merged.DS, set.DS...)
	}
	return merged
}
