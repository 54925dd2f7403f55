package model

import (
	"math"
	"strconv"
	"strings"

	apperrors "backoffice/internal/shared/errors"
)

// FieldKind is the validation rule applied to a form field.
type FieldKind string

const (
	KindText           FieldKind = "text"
	KindPositiveNumber FieldKind = "positive-number"
	KindEmail          FieldKind = "email"
)

// Field describes one input of an entity form.
type Field struct {
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
}

// Input is raw form input keyed by field name.
type Input map[string]string

// Values is form input that passed validation.
type Values struct {
	text    map[string]string
	numbers map[string]float64
}

// Text returns the trimmed value of a field.
func (v Values) Text(name string) string { return v.text[name] }

// Number returns the parsed value of a positive-number field.
func (v Values) Number(name string) float64 { return v.numbers[name] }

// Validate checks every field of in. All fields are required after trimming;
// numeric fields must parse to a finite number above zero and email fields
// must contain both "@" and ".".
func Validate(fields []Field, in Input) (Values, error) {
	values := Values{
		text:    make(map[string]string, len(fields)),
		numbers: make(map[string]float64),
	}
	verrs := apperrors.NewValidationErrors()

	for _, f := range fields {
		raw := strings.TrimSpace(in[f.Name])
		if raw == "" {
			verrs.Add(f.Name, f.Name+" is required", in[f.Name])
			continue
		}

		switch f.Kind {
		case KindPositiveNumber:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
				verrs.Add(f.Name, f.Name+" must be a positive number", raw)
				continue
			}
			values.numbers[f.Name] = n
		case KindEmail:
			if !strings.Contains(raw, "@") || !strings.Contains(raw, ".") {
				verrs.Add(f.Name, f.Name+" must be a valid email", raw)
				continue
			}
		}
		values.text[f.Name] = raw
	}

	if verrs.HasErrors() {
		return Values{}, verrs.ToAppError()
	}
	return values, nil
}

// FormatNumber renders a number the way form inputs display it.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
