package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ChangeDetector keeps one fingerprint per section and reports whether a
// candidate value differs from that baseline. Fingerprints are sha256
// over the canonical JSON encoding of the value; encoding/json emits map
// keys in sorted order, so logically equal values always encode
// identically regardless of construction order.
type ChangeDetector struct {
	baselines map[string]string
}

// NewChangeDetector returns a detector with no recorded baselines.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{baselines: make(map[string]string)}
}

// HasChanged reports whether value differs from the recorded baseline
// for section, recording value's fingerprint as the new baseline when it
// does. The first value ever seen for a section reports changed. A value
// that cannot be encoded reports changed: a spurious dispatch costs a
// redundant repaint, a missed change leaves stale state on screen.
func (d *ChangeDetector) HasChanged(section string, value map[string]any) bool {
	fp, ok := fingerprint(value)
	if !ok {
		// No usable fingerprint; drop the baseline so the next
		// encodable value also reports changed.
		delete(d.baselines, section)
		return true
	}
	if prev, recorded := d.baselines[section]; recorded && prev == fp {
		return false
	}
	d.baselines[section] = fp
	return true
}

func fingerprint(value map[string]any) (string, bool) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), true
}
