// internal/schema/validator.go
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Reasons reported per field when a record fails validation.
const (
	ReasonMissingRequiredField = "MissingRequiredField"
	ReasonTypeMismatch         = "TypeMismatch"
)

// acceptedDateLayouts are the ISO-8601 shapes a date field accepts. The raw
// string is stored as-is; no timezone normalization is performed.
var acceptedDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ValidateRecord checks a candidate record against a schema's field list and
// returns the coerced record on success. Pure function: callers persist the
// coerced output. Unknown top-level keys are dropped silently; unknown keys
// inside declared objects are passed through.
func ValidateRecord(fields []FieldDefinition, candidate map[string]any) (map[string]any, FieldErrors) {
	errs := FieldErrors{}
	coerced := make(map[string]any, len(fields))

	for _, f := range fields {
		value, present := candidate[f.Name]
		if !present || value == nil {
			if f.Required {
				errs[f.Name] = ReasonMissingRequiredField
			}
			continue
		}

		switch f.Type {
		case FieldTypeArray:
			out, reason := coerceArray(f, value)
			if reason != "" {
				errs[f.Name] = reason
				continue
			}
			coerced[f.Name] = out
		case FieldTypeObject:
			out, reason := coerceObject(f.ObjectFields, value)
			if reason != "" {
				errs[f.Name] = reason
				continue
			}
			coerced[f.Name] = out
		default:
			out, reason := coerceLeaf(f.Type, value)
			if reason != "" {
				errs[f.Name] = reason
				continue
			}
			coerced[f.Name] = out
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

// coerceLeaf validates and coerces a scalar value. Returns the stored value
// and an empty reason on success.
func coerceLeaf(t FieldType, value any) (any, string) {
	switch t {
	case FieldTypeText, FieldTypeLongText, FieldTypeEmail, FieldTypeURL:
		// Email/url formats are a UI affordance, not a hard constraint:
		// the raw string is stored unchecked.
		s, ok := value.(string)
		if !ok {
			return nil, ReasonTypeMismatch
		}
		return s, ""

	case FieldTypeNumber:
		switch v := value.(type) {
		case float64:
			return v, ""
		case int:
			return float64(v), ""
		case int64:
			return float64(v), ""
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, ReasonTypeMismatch
			}
			return f, ""
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, ReasonTypeMismatch
			}
			return f, ""
		}
		return nil, ReasonTypeMismatch

	case FieldTypeBoolean:
		// Only boolean literals are accepted. The lenient default-to-false
		// behavior was rejected: it loses data silently on the write path.
		b, ok := value.(bool)
		if !ok {
			return nil, ReasonTypeMismatch
		}
		return b, ""

	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return nil, ReasonTypeMismatch
		}
		for _, layout := range acceptedDateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return s, ""
			}
		}
		return nil, ReasonTypeMismatch
	}
	return nil, ReasonTypeMismatch
}

// coerceArray validates a sequence value element by element.
func coerceArray(f FieldDefinition, value any) (any, string) {
	seq, ok := value.([]any)
	if !ok {
		return nil, ReasonTypeMismatch
	}
	out := make([]any, 0, len(seq))
	for i, elem := range seq {
		if f.ArrayItemType == ItemTypeObject {
			obj, reason := coerceObject(f.ObjectFields, elem)
			if reason != "" {
				return nil, fmt.Sprintf("%s (element %d)", reason, i)
			}
			out = append(out, obj)
			continue
		}
		leaf, reason := coerceLeaf(itemFieldType(f.ArrayItemType), elem)
		if reason != "" {
			return nil, fmt.Sprintf("%s (element %d)", reason, i)
		}
		out = append(out, leaf)
	}
	return out, ""
}

// coerceObject validates a mapping value against declared sub-fields.
// Undeclared keys pass through untouched.
func coerceObject(subs []FieldDefinition, value any) (map[string]any, string) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ReasonTypeMismatch
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, sub := range subs {
		v, present := obj[sub.Name]
		if !present || v == nil {
			delete(out, sub.Name)
			if sub.Required {
				return nil, fmt.Sprintf("%s (%s)", ReasonMissingRequiredField, sub.Name)
			}
			continue
		}
		leaf, reason := coerceLeaf(sub.Type, v)
		if reason != "" {
			return nil, fmt.Sprintf("%s (%s)", reason, sub.Name)
		}
		out[sub.Name] = leaf
	}
	return out, ""
}

// itemFieldType maps an array item type onto the scalar coercion rules.
func itemFieldType(t ItemType) FieldType {
	switch t {
	case ItemTypeNumber:
		return FieldTypeNumber
	case ItemTypeURL:
		return FieldTypeURL
	default:
		return FieldTypeText
	}
}
