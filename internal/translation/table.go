package translation

import "fmt"

// Entry is one localizable message recovered from a translation resource.
type Entry struct {
	// Key identifies the message: the element's hash-table position and its
	// engine hash key, joined as "<pos>:<key>". Unique within a table and
	// stable across value edits.
	Key string
	// Value is the localized text, empty when untranslated.
	Value string

	// Original payload and bucket-table slot, kept so untouched entries can
	// be written back without a re-encode.
	raw        []byte
	compSize   int32
	uncompSize int32
	elemBase   int // index of the element's key field in the bucket table
	modified   bool
}

// Replacement is a key/value pair sourced from an edited tabular file.
type Replacement struct {
	Key   string
	Value string
}

// UnknownKeyError reports a replacement whose key does not exist in the
// original table. Collected and reported in aggregate, never fatal.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown message key %q", e.Key)
}

// Table is an ordered mapping from message key to entry. Iteration order is
// the binary entry-table order and is preserved across every read/write
// cycle.
type Table struct {
	Locale  string
	entries []*Entry
	index   map[string]int
}

// NewTable returns an empty table for the given locale.
func NewTable(locale string) *Table {
	return newTable(locale)
}

func newTable(locale string) *Table {
	return &Table{Locale: locale, index: make(map[string]int)}
}

// Add appends a new entry with the given key and value. Keys must be unique.
func (t *Table) Add(key, value string) error {
	return t.add(&Entry{Key: key, Value: value, modified: true})
}

func (t *Table) add(e *Entry) error {
	if _, dup := t.index[e.Key]; dup {
		return fmt.Errorf("duplicate message key %q", e.Key)
	}
	t.index[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
	return nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in table order. The slice is shared; callers
// must not reorder it.
func (t *Table) Entries() []*Entry {
	return t.entries
}

// Get returns the entry for key, or nil when absent.
func (t *Table) Get(key string) *Entry {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return t.entries[i]
}

// Apply overlays replacement values onto the table. Keys absent from the
// table are skipped and returned as UnknownKeyError values; keys absent from
// the replacements keep their original value (sparse overlay). Order of the
// replacements does not affect table order.
func (t *Table) Apply(reps []Replacement) []*UnknownKeyError {
	var unknown []*UnknownKeyError
	for _, rep := range reps {
		i, ok := t.index[rep.Key]
		if !ok {
			unknown = append(unknown, &UnknownKeyError{Key: rep.Key})
			continue
		}
		e := t.entries[i]
		if e.Value != rep.Value {
			e.Value = rep.Value
			e.modified = true
		}
	}
	return unknown
}
