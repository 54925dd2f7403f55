package model

import "encoding/json"

// Column projects one table cell out of a record.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(T) string
}

// SeedSpec describes how a remote demo payload maps onto records.
type SeedSpec[T any] struct {
	// Envelope is the top-level property holding the array; empty for a bare array.
	Envelope string
	// Required lists properties every remote record must carry.
	Required []string
	Project  func(raw json.RawMessage) (T, error)
}

// Schema binds a record type to everything the generic controller needs.
type Schema[T any] struct {
	Name     string
	CacheKey string
	Fields   []Field
	IDs      IDScheme
	Columns  []Column[T]
	Seed     SeedSpec[T]

	IDOf   func(T) ID
	Build  func(id ID, v Values) T
	Apply  func(rec T, v Values) T
	FormOf func(T) Input
}

// IDsOf returns the ids of records in order.
func IDsOf[T any](s Schema[T], records []T) []ID {
	ids := make([]ID, len(records))
	for i, r := range records {
		ids[i] = s.IDOf(r)
	}
	return ids
}

// IndexOf returns the position of id in records, or -1.
func IndexOf[T any](s Schema[T], records []T, id ID) int {
	for i, r := range records {
		if s.IDOf(r) == id {
			return i
		}
	}
	return -1
}
