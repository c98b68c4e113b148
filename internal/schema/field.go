// internal/schema/field.go
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mockden/mockden-backend/internal/core"
)

// FieldType is the closed set of types a top-level field may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeLongText FieldType = "long_text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeArray    FieldType = "array"
	FieldTypeObject   FieldType = "object"
)

// ItemType is the closed set of element types an array field may declare.
type ItemType string

const (
	ItemTypeText   ItemType = "text"
	ItemTypeNumber ItemType = "number"
	ItemTypeURL    ItemType = "url"
	ItemTypeObject ItemType = "object"
)

// FieldDefinition describes one field of a schema. Composition is bounded:
// an object (or array of objects) carries sub-fields, and those sub-fields
// must be leaf-typed. There is no deeper nesting.
type FieldDefinition struct {
	Name          string            `json:"name" binding:"required"`
	Type          FieldType         `json:"type" binding:"required"`
	Required      bool              `json:"required"`
	ArrayItemType ItemType          `json:"array_item_type,omitempty"`
	ObjectFields  []FieldDefinition `json:"object_fields,omitempty"`
}

// FieldErrors maps a field name (dotted for sub-fields) to the reason it was
// rejected. It doubles as the error value surfaced to the authoring caller.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var fieldTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeLongText: true,
	FieldTypeNumber:   true,
	FieldTypeBoolean:  true,
	FieldTypeDate:     true,
	FieldTypeEmail:    true,
	FieldTypeURL:      true,
	FieldTypeArray:    true,
	FieldTypeObject:   true,
}

var itemTypes = map[ItemType]bool{
	ItemTypeText:   true,
	ItemTypeNumber: true,
	ItemTypeURL:    true,
	ItemTypeObject: true,
}

// leafTypes are the types permitted for sub-fields of an object or of an
// array of objects. Composites may not nest.
var leafTypes = map[FieldType]bool{
	FieldTypeText:     true,
	FieldTypeLongText: true,
	FieldTypeNumber:   true,
	FieldTypeBoolean:  true,
	FieldTypeDate:     true,
	FieldTypeEmail:    true,
	FieldTypeURL:      true,
}

// ValidateFields structurally checks a schema's field list. It runs on every
// save of the list. Returns nil when the definition is well-formed.
func ValidateFields(fields []FieldDefinition) FieldErrors {
	errs := FieldErrors{}
	if len(fields) == 0 {
		errs[""] = "schema must declare at least one field"
		return errs
	}

	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		key := f.Name
		if key == "" {
			key = fmt.Sprintf("fields[%d]", i)
		}
		if !core.IsValidIdentifier(f.Name) {
			errs[key] = "field name must be a non-empty identifier (a-z, A-Z, 0-9, _), max length 64"
			continue
		}
		if seen[f.Name] { // case-sensitive sibling uniqueness
			errs[key] = "duplicate field name"
			continue
		}
		seen[f.Name] = true

		if !fieldTypes[f.Type] {
			errs[key] = fmt.Sprintf("unknown field type %q", f.Type)
			continue
		}

		switch f.Type {
		case FieldTypeArray:
			if f.ArrayItemType == "" {
				errs[key] = "array fields must declare an item type"
				continue
			}
			if !itemTypes[f.ArrayItemType] {
				errs[key] = fmt.Sprintf("unknown array item type %q", f.ArrayItemType)
				continue
			}
			if f.ArrayItemType == ItemTypeObject {
				validateSubFields(key, f.ObjectFields, errs)
			} else if len(f.ObjectFields) > 0 {
				errs[key] = "object_fields is only allowed for arrays of objects"
			}
		case FieldTypeObject:
			if f.ArrayItemType != "" {
				errs[key] = "array_item_type is only allowed for array fields"
				continue
			}
			validateSubFields(key, f.ObjectFields, errs)
		default:
			if f.ArrayItemType != "" {
				errs[key] = "array_item_type is only allowed for array fields"
			} else if len(f.ObjectFields) > 0 {
				errs[key] = "object_fields is only allowed for object fields"
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateSubFields checks the leaf tier below an object or array-of-object
// field. Sub-fields may never themselves be arrays or objects.
func validateSubFields(parent string, subs []FieldDefinition, errs FieldErrors) {
	if len(subs) == 0 {
		errs[parent] = "object fields must declare at least one sub-field"
		return
	}
	seen := make(map[string]bool, len(subs))
	for i, sub := range subs {
		key := parent + "." + sub.Name
		if sub.Name == "" {
			key = fmt.Sprintf("%s.object_fields[%d]", parent, i)
		}
		if !core.IsValidIdentifier(sub.Name) {
			errs[key] = "field name must be a non-empty identifier (a-z, A-Z, 0-9, _), max length 64"
			continue
		}
		if seen[sub.Name] {
			errs[key] = "duplicate field name"
			continue
		}
		seen[sub.Name] = true

		if !fieldTypes[sub.Type] {
			errs[key] = fmt.Sprintf("unknown field type %q", sub.Type)
			continue
		}
		if !leafTypes[sub.Type] {
			errs[key] = "nested fields must be leaf types: arrays and objects cannot nest"
			continue
		}
		if sub.ArrayItemType != "" || len(sub.ObjectFields) > 0 {
			errs[key] = "nested fields cannot declare item types or sub-fields"
		}
	}
}
