package resolver

import "fmt"

// Family names accepted by configuration.
const (
	FamilyDistribution = "distribution"
	FamilyDepositPool  = "deposit-pool"
)

// Entry pairs a version predicate with the schema tried for it.
type Entry struct {
	Label  string
	Match  func(version uint64) bool
	Schema Schema
}

// Family is the version policy of one deployment line. Entries are ordered
// newest first when Fallback is set, and no two adjacent entries share a
// schema, so a fallback always decodes a different shape.
type Family struct {
	Name           string
	DefaultVersion uint64
	Fallback       bool
	Entries        []Entry
}

func exactly(v uint64) func(uint64) bool {
	return func(got uint64) bool { return got == v }
}

func oneOf(versions ...uint64) func(uint64) bool {
	return func(got uint64) bool {
		for _, v := range versions {
			if got == v {
				return true
			}
		}
		return false
	}
}

// Distribution probes versions 5 down to 1 and falls back one shape older.
func Distribution() Family {
	return Family{
		Name:           FamilyDistribution,
		DefaultVersion: 1,
		Fallback:       true,
		Entries: []Entry{
			{Label: "v5", Match: exactly(5), Schema: Schema9},
			{Label: "v4", Match: exactly(4), Schema: Schema8},
			{Label: "v2-v3", Match: oneOf(2, 3), Schema: Schema7},
			{Label: "v1", Match: exactly(1), Schema: Schema4},
		},
	}
}

// DepositPool maps versions 0 to 7 onto one schema each, without fallback.
func DepositPool() Family {
	schemas := []Schema{Schema4, Schema4, Schema7, Schema7, Schema8, Schema9, Schema9, Schema9}
	entries := make([]Entry, 0, len(schemas))
	for v, s := range schemas {
		entries = append(entries, Entry{Label: fmt.Sprintf("v%d", v), Match: exactly(uint64(v)), Schema: s})
	}
	return Family{
		Name:           FamilyDepositPool,
		DefaultVersion: 1,
		Fallback:       false,
		Entries:        entries,
	}
}

// FamilyByName returns the family registered under name.
func FamilyByName(name string) (Family, error) {
	switch name {
	case FamilyDistribution:
		return Distribution(), nil
	case FamilyDepositPool:
		return DepositPool(), nil
	default:
		return Family{}, fmt.Errorf("unknown contract family %q", name)
	}
}

// plan returns the entries to attempt for version: the matching entry and,
// when the family falls back, the one immediately older.
func (f Family) plan(version uint64) []Entry {
	for i, e := range f.Entries {
		if !e.Match(version) {
			continue
		}
		end := i + 1
		if f.Fallback && end < len(f.Entries) {
			end++
		}
		return f.Entries[i:end]
	}
	return nil
}
