// internal/schema/field_test.go
package schema

import (
	"testing"
)

func leaf(name string, t FieldType) FieldDefinition {
	return FieldDefinition{Name: name, Type: t}
}

func TestValidateFields(t *testing.T) {
	testCases := []struct {
		name      string
		fields    []FieldDefinition
		wantOK    bool
		wantField string // field expected in the error map when !wantOK
	}{
		{
			name:   "valid flat schema",
			fields: []FieldDefinition{{Name: "title", Type: FieldTypeText, Required: true}, leaf("views", FieldTypeNumber)},
			wantOK: true,
		},
		{
			name: "valid array of text",
			fields: []FieldDefinition{
				{Name: "tags", Type: FieldTypeArray, ArrayItemType: ItemTypeText},
			},
			wantOK: true,
		},
		{
			name: "valid array of objects with leaf sub-fields",
			fields: []FieldDefinition{
				{Name: "authors", Type: FieldTypeArray, ArrayItemType: ItemTypeObject,
					ObjectFields: []FieldDefinition{leaf("name", FieldTypeText), leaf("email", FieldTypeEmail)}},
			},
			wantOK: true,
		},
		{
			name: "valid object with leaf sub-fields",
			fields: []FieldDefinition{
				{Name: "meta", Type: FieldTypeObject,
					ObjectFields: []FieldDefinition{leaf("published", FieldTypeBoolean), leaf("date", FieldTypeDate)}},
			},
			wantOK: true,
		},
		{
			name:      "empty field list",
			fields:    nil,
			wantOK:    false,
			wantField: "",
		},
		{
			name:      "invalid name",
			fields:    []FieldDefinition{leaf("bad name", FieldTypeText)},
			wantOK:    false,
			wantField: "bad name",
		},
		{
			name:      "duplicate sibling names are case-sensitive",
			fields:    []FieldDefinition{leaf("title", FieldTypeText), leaf("title", FieldTypeNumber)},
			wantOK:    false,
			wantField: "title",
		},
		{
			name:   "same name different case is allowed",
			fields: []FieldDefinition{leaf("title", FieldTypeText), leaf("Title", FieldTypeNumber)},
			wantOK: true,
		},
		{
			name:      "unknown type",
			fields:    []FieldDefinition{leaf("x", FieldType("decimal"))},
			wantOK:    false,
			wantField: "x",
		},
		{
			name:      "array without item type",
			fields:    []FieldDefinition{{Name: "tags", Type: FieldTypeArray}},
			wantOK:    false,
			wantField: "tags",
		},
		{
			name:      "item type on non-array",
			fields:    []FieldDefinition{{Name: "title", Type: FieldTypeText, ArrayItemType: ItemTypeText}},
			wantOK:    false,
			wantField: "title",
		},
		{
			name:      "object without sub-fields",
			fields:    []FieldDefinition{{Name: "meta", Type: FieldTypeObject}},
			wantOK:    false,
			wantField: "meta",
		},
		{
			name: "object nesting an object is rejected",
			fields: []FieldDefinition{
				{Name: "meta", Type: FieldTypeObject,
					ObjectFields: []FieldDefinition{{Name: "inner", Type: FieldTypeObject,
						ObjectFields: []FieldDefinition{leaf("x", FieldTypeText)}}}},
			},
			wantOK:    false,
			wantField: "meta.inner",
		},
		{
			name: "object nesting an array is rejected",
			fields: []FieldDefinition{
				{Name: "meta", Type: FieldTypeObject,
					ObjectFields: []FieldDefinition{{Name: "tags", Type: FieldTypeArray, ArrayItemType: ItemTypeText}}},
			},
			wantOK:    false,
			wantField: "meta.tags",
		},
		{
			name: "array-of-object sub-field nesting is rejected",
			fields: []FieldDefinition{
				{Name: "items", Type: FieldTypeArray, ArrayItemType: ItemTypeObject,
					ObjectFields: []FieldDefinition{{Name: "deep", Type: FieldTypeObject,
						ObjectFields: []FieldDefinition{leaf("x", FieldTypeText)}}}},
			},
			wantOK:    false,
			wantField: "items.deep",
		},
		{
			name: "duplicate sub-field names",
			fields: []FieldDefinition{
				{Name: "meta", Type: FieldTypeObject,
					ObjectFields: []FieldDefinition{leaf("x", FieldTypeText), leaf("x", FieldTypeNumber)}},
			},
			wantOK:    false,
			wantField: "meta.x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateFields(tc.fields)
			if tc.wantOK {
				if errs != nil {
					t.Fatalf("ValidateFields returned errors: %v", errs)
				}
				return
			}
			if errs == nil {
				t.Fatal("ValidateFields returned nil; want errors")
			}
			if _, ok := errs[tc.wantField]; !ok {
				t.Errorf("expected error for field %q, got %v", tc.wantField, errs)
			}
		})
	}
}
