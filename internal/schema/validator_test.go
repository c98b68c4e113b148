// internal/schema/validator_test.go
package schema

import (
	"reflect"
	"testing"
)

func TestValidateRecord(t *testing.T) {
	titleOnly := []FieldDefinition{{Name: "title", Type: FieldTypeText, Required: true}}

	testCases := []struct {
		name       string
		fields     []FieldDefinition
		candidate  map[string]any
		want       map[string]any
		wantReason map[string]string // field -> expected reason prefix; nil means ok
	}{
		{
			name:      "simple text record",
			fields:    titleOnly,
			candidate: map[string]any{"title": "Hi"},
			want:      map[string]any{"title": "Hi"},
		},
		{
			name:       "missing required field",
			fields:     titleOnly,
			candidate:  map[string]any{},
			wantReason: map[string]string{"title": ReasonMissingRequiredField},
		},
		{
			name:       "null counts as missing for required",
			fields:     titleOnly,
			candidate:  map[string]any{"title": nil},
			wantReason: map[string]string{"title": ReasonMissingRequiredField},
		},
		{
			name:      "unknown top-level keys are dropped",
			fields:    titleOnly,
			candidate: map[string]any{"title": "Hi", "extra": 42},
			want:      map[string]any{"title": "Hi"},
		},
		{
			name:      "optional absent field is omitted",
			fields:    []FieldDefinition{{Name: "title", Type: FieldTypeText}},
			candidate: map[string]any{},
			want:      map[string]any{},
		},
		{
			name:      "number literal",
			fields:    []FieldDefinition{{Name: "price", Type: FieldTypeNumber}},
			candidate: map[string]any{"price": 9.5},
			want:      map[string]any{"price": 9.5},
		},
		{
			name:      "numeric string is coerced",
			fields:    []FieldDefinition{{Name: "price", Type: FieldTypeNumber}},
			candidate: map[string]any{"price": "12.25"},
			want:      map[string]any{"price": 12.25},
		},
		{
			name:       "non-numeric string rejected",
			fields:     []FieldDefinition{{Name: "price", Type: FieldTypeNumber}},
			candidate:  map[string]any{"price": "cheap"},
			wantReason: map[string]string{"price": ReasonTypeMismatch},
		},
		{
			name:      "boolean literal",
			fields:    []FieldDefinition{{Name: "live", Type: FieldTypeBoolean}},
			candidate: map[string]any{"live": true},
			want:      map[string]any{"live": true},
		},
		{
			name:       "boolean from string is rejected, not defaulted",
			fields:     []FieldDefinition{{Name: "live", Type: FieldTypeBoolean}},
			candidate:  map[string]any{"live": "yes"},
			wantReason: map[string]string{"live": ReasonTypeMismatch},
		},
		{
			name:      "date-only string",
			fields:    []FieldDefinition{{Name: "when", Type: FieldTypeDate}},
			candidate: map[string]any{"when": "2024-06-01"},
			want:      map[string]any{"when": "2024-06-01"},
		},
		{
			name:      "rfc3339 string kept verbatim",
			fields:    []FieldDefinition{{Name: "when", Type: FieldTypeDate}},
			candidate: map[string]any{"when": "2024-06-01T10:30:00Z"},
			want:      map[string]any{"when": "2024-06-01T10:30:00Z"},
		},
		{
			name:       "bad date rejected",
			fields:     []FieldDefinition{{Name: "when", Type: FieldTypeDate}},
			candidate:  map[string]any{"when": "June 1st"},
			wantReason: map[string]string{"when": ReasonTypeMismatch},
		},
		{
			name:      "email stored raw without format check",
			fields:    []FieldDefinition{{Name: "contact", Type: FieldTypeEmail}},
			candidate: map[string]any{"contact": "not-an-email"},
			want:      map[string]any{"contact": "not-an-email"},
		},
		{
			name:      "array of text",
			fields:    []FieldDefinition{{Name: "tags", Type: FieldTypeArray, ArrayItemType: ItemTypeText}},
			candidate: map[string]any{"tags": []any{"a", "b"}},
			want:      map[string]any{"tags": []any{"a", "b"}},
		},
		{
			name:       "array element type mismatch",
			fields:     []FieldDefinition{{Name: "tags", Type: FieldTypeArray, ArrayItemType: ItemTypeText}},
			candidate:  map[string]any{"tags": []any{"a", 2}},
			wantReason: map[string]string{"tags": ReasonTypeMismatch},
		},
		{
			name:       "array candidate must be a sequence",
			fields:     []FieldDefinition{{Name: "tags", Type: FieldTypeArray, ArrayItemType: ItemTypeText}},
			candidate:  map[string]any{"tags": "a,b"},
			wantReason: map[string]string{"tags": ReasonTypeMismatch},
		},
		{
			name: "array of objects validates elements",
			fields: []FieldDefinition{{Name: "authors", Type: FieldTypeArray, ArrayItemType: ItemTypeObject,
				ObjectFields: []FieldDefinition{{Name: "name", Type: FieldTypeText, Required: true}}}},
			candidate: map[string]any{"authors": []any{map[string]any{"name": "Ada"}}},
			want:      map[string]any{"authors": []any{map[string]any{"name": "Ada"}}},
		},
		{
			name: "object sub-field coercion and passthrough",
			fields: []FieldDefinition{{Name: "meta", Type: FieldTypeObject,
				ObjectFields: []FieldDefinition{{Name: "count", Type: FieldTypeNumber}}}},
			candidate: map[string]any{"meta": map[string]any{"count": "3", "unknown": "kept"}},
			want:      map[string]any{"meta": map[string]any{"count": 3.0, "unknown": "kept"}},
		},
		{
			name: "object candidate must be a mapping",
			fields: []FieldDefinition{{Name: "meta", Type: FieldTypeObject,
				ObjectFields: []FieldDefinition{{Name: "count", Type: FieldTypeNumber}}}},
			candidate:  map[string]any{"meta": []any{1}},
			wantReason: map[string]string{"meta": ReasonTypeMismatch},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, errs := ValidateRecord(tc.fields, tc.candidate)
			if tc.wantReason == nil {
				if errs != nil {
					t.Fatalf("ValidateRecord returned errors: %v", errs)
				}
				if !reflect.DeepEqual(got, tc.want) {
					t.Errorf("coerced = %#v; want %#v", got, tc.want)
				}
				return
			}
			if errs == nil {
				t.Fatalf("ValidateRecord returned ok (%#v); want errors %v", got, tc.wantReason)
			}
			for field, prefix := range tc.wantReason {
				reason, ok := errs[field]
				if !ok {
					t.Errorf("expected error for field %q, got %v", field, errs)
					continue
				}
				if len(reason) < len(prefix) || reason[:len(prefix)] != prefix {
					t.Errorf("field %q reason = %q; want prefix %q", field, reason, prefix)
				}
			}
		})
	}
}
