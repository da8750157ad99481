package intersection

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed known_intersections.yaml
var defaultKnown []byte

// KnownEntry names an intersection that is reported even when the tile
// geometry does not show the streets crossing.
type KnownEntry struct {
	Streets []string `yaml:"streets" json:"streets"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
}

type pair struct{ a, b string }

func pairKey(a, b string) pair {
	ka, kb := key(a), key(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return pair{ka, kb}
}

// KnownTable is a lookup of known intersections keyed by the unordered pair
// of street base names. A nil table is empty.
type KnownTable struct {
	entries []KnownEntry
	index   map[pair]int
}

// ParseKnownTable decodes a YAML list of entries.
func ParseKnownTable(data []byte) (*KnownTable, error) {
	var entries []KnownEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse known intersections: %w", err)
	}

	t := &KnownTable{index: make(map[pair]int, len(entries))}
	for i, e := range entries {
		if len(e.Streets) != 2 {
			return nil, fmt.Errorf("known intersection %d: want 2 streets, got %d", i, len(e.Streets))
		}
		k := pairKey(e.Streets[0], e.Streets[1])
		if k.a == k.b {
			return nil, fmt.Errorf("known intersection %d: street %q crosses itself", i, e.Streets[0])
		}
		if _, dup := t.index[k]; dup {
			continue
		}
		t.index[k] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// LoadKnownTable reads a table from a YAML file.
func LoadKnownTable(path string) (*KnownTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read known intersections: %w", err)
	}
	return ParseKnownTable(data)
}

// DefaultKnownTable returns the embedded downtown Toronto table.
func DefaultKnownTable() *KnownTable {
	t, err := ParseKnownTable(defaultKnown)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the canonical name for streets a and b. ok is true when the
// pair is in the table, even if the entry has no name.
func (t *KnownTable) Lookup(a, b string) (name string, ok bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[pairKey(a, b)]
	if !ok {
		return "", false
	}
	return t.entries[i].Name, true
}

// Entries returns the table in file order.
func (t *KnownTable) Entries() []KnownEntry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Len returns the number of entries.
func (t *KnownTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
