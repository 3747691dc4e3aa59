package engine

import "sort"

// SectionStore owns the authoritative value of every section. Values are
// flat key→value records; partial updates merge shallowly, with the
// partial's keys winning and a nil value deleting its key. Stored values
// are treated as immutable: producers must not mutate a map after
// passing it in, and readers receive copies.
type SectionStore struct {
	detector *ChangeDetector
	sections map[string]map[string]any
}

// NewSectionStore returns an empty store using detector for change
// detection.
func NewSectionStore(detector *ChangeDetector) *SectionStore {
	return &SectionStore{
		detector: detector,
		sections: make(map[string]map[string]any),
	}
}

// Apply merges partial into section's stored value and runs change
// detection on the merged result, not on the partial: distinct partials
// can resolve to an unchanged merged state. When the merged value
// differs from the baseline it is committed and Apply reports true.
func (s *SectionStore) Apply(section string, partial map[string]any) (map[string]any, bool) {
	merged := s.merge(section, partial)
	if !s.detector.HasChanged(section, merged) {
		return merged, false
	}
	s.sections[section] = merged
	return merged, true
}

// merge returns the shallow merge of the stored value and partial
// without committing it.
func (s *SectionStore) merge(section string, partial map[string]any) map[string]any {
	stored := s.sections[section]
	merged := make(map[string]any, len(stored)+len(partial))
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range partial {
		if v == nil {
			// Explicit clear.
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// Get returns a copy of section's current value, nil when the section
// has never been set.
func (s *SectionStore) Get(section string) map[string]any {
	stored, ok := s.sections[section]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out
}

// Names returns the stored section names in sorted order.
func (s *SectionStore) Names() []string {
	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of every stored section.
func (s *SectionStore) Snapshot() map[string]map[string]any {
	out := make(map[string]map[string]any, len(s.sections))
	for name := range s.sections {
		out[name] = s.Get(name)
	}
	return out
}
