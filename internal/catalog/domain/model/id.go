package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a record inside one collection. Seeded records carry numeric
// ids, locally namespaced ones carry strings; both keep their JSON type.
type ID string

// IntID builds a numeric ID.
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Int reports the numeric value when the ID is a canonical decimal integer.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

func (id ID) String() string { return string(id) }

// MarshalJSON writes an id that is a JSON number literal (42, -2, 1.5, 1e3)
// back as that number, and anything else as a string. A string id spelled
// like a number therefore comes back as a number.
func (id ID) MarshalJSON() ([]byte, error) {
	if isNumber(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	if first != '-' && (first < '0' || first > '9') {
		return false
	}
	if last < '0' || last > '9' {
		return false
	}
	return json.Valid([]byte(s))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or a string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// IDScheme assigns ids to newly created records.
type IDScheme interface {
	Next(existing []ID) ID
}

// SequentialIDs returns max(numeric ids)+1, or 1 for an empty collection.
type SequentialIDs struct{}

func (SequentialIDs) Next(existing []ID) ID {
	var max int64
	for _, id := range existing {
		if n, ok := id.Int(); ok && n > max {
			max = n
		}
	}
	return IntID(max + 1)
}

// NamespacedIDs returns Prefix followed by one more than the largest local
// suffix, keeping local ids apart from remote numeric ones.
type NamespacedIDs struct {
	Prefix string
}

func (s NamespacedIDs) Next(existing []ID) ID {
	var max int64
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(string(id), s.Prefix)
		if !ok {
			continue
		}
		if n, ok := ID(suffix).Int(); ok && n > max {
			max = n
		}
	}
	return ID(s.Prefix + strconv.FormatInt(max+1, 10))
}
