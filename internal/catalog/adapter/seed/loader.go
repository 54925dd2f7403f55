// Package seed loads first-run collections from the public demo APIs.
package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"backoffice/internal/catalog/domain/model"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/remote"

	"github.com/google/jsonschema-go/jsonschema"
)

// Source fetches and projects one entity's demo payload.
type Source[T any] struct {
	url      string
	spec     model.SeedSpec[T]
	fetcher  remote.Fetcher
	envelope *jsonschema.Resolved
	record   *jsonschema.Resolved
	logger   logger.Logger
}

// NewSource compiles the payload schemas for spec.
func NewSource[T any](url string, spec model.SeedSpec[T], fetcher remote.Fetcher, log logger.Logger) (*Source[T], error) {
	envelope, err := resolve(envelopeSchema(spec.Envelope))
	if err != nil {
		return nil, fmt.Errorf("envelope schema: %w", err)
	}
	record, err := resolve(recordSchema(spec.Required))
	if err != nil {
		return nil, fmt.Errorf("record schema: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Source[T]{
		url:      url,
		spec:     spec,
		fetcher:  fetcher,
		envelope: envelope,
		record:   record,
		logger:   log.WithComponent("seed").WithFields(map[string]interface{}{"url": url}),
	}, nil
}

// URL returns the remote endpoint.
func (s *Source[T]) URL() string { return s.url }

// Seed fetches the payload and returns the projected records. Records that
// fail the record schema or the projection are skipped.
func (s *Source[T]) Seed(ctx context.Context) ([]T, error) {
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, apperrors.NewSeedFetchError(s.url, err)
	}

	items, err := s.items(body)
	if err != nil {
		return nil, apperrors.NewSeedFetchError(s.url, err)
	}

	records := make([]T, 0, len(items))
	for i, raw := range items {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.logger.Warnf("Skipping record %d: %v", i, err)
			continue
		}
		if err := s.record.Validate(doc); err != nil {
			s.logger.Warnf("Skipping record %d: %v", i, err)
			continue
		}
		rec, err := s.spec.Project(raw)
		if err != nil {
			s.logger.Warnf("Skipping record %d: %v", i, err)
			continue
		}
		records = append(records, rec)
	}

	s.logger.Infof("Seeded %d of %d remote records", len(records), len(items))
	return records, nil
}

func (s *Source[T]) items(body []byte) ([]json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := s.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("unexpected payload shape: %w", err)
	}

	var items []json.RawMessage
	if s.spec.Envelope == "" {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(wrapper[s.spec.Envelope], &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.spec.Envelope, err)
	}
	return items, nil
}

func envelopeSchema(envelope string) map[string]any {
	array := map[string]any{"type": "array"}
	if envelope == "" {
		return array
	}
	return map[string]any{
		"type":       "object",
		"required":   []string{envelope},
		"properties": map[string]any{envelope: array},
	}
}

func recordSchema(required []string) map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": []string{"integer", "string"}},
		},
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func resolve(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into jsonschema.Schema: %w", err)
	}
	return schema.Resolve(&jsonschema.ResolveOptions{})
}
