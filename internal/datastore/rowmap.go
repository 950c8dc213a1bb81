package datastore

import (
	"reflect"
	"strings"
	"time"
	"unicode"
)

// RowOptions configures ToRow behavior.
type RowOptions struct {
	OmitFields   map[string]bool
	KeyOverrides map[string]string
}

// ToRow converts a struct into a row keyed by snake_case field names.
// Nil pointers become NULL and times are written as RFC 3339 in UTC.
func ToRow[T any](value T, opts RowOptions) map[string]any {
	row := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return row
		}
		v = v.Elem()
	}

	appendFields(v, row, opts)
	return row
}

func appendFields(v reflect.Value, row map[string]any, opts RowOptions) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" || opts.OmitFields[field.Name] {
			continue
		}

		value := v.Field(i)
		if field.Anonymous && value.Kind() == reflect.Struct {
			appendFields(value, row, opts)
			continue
		}

		key := toSnakeCase(field.Name)
		if override, ok := opts.KeyOverrides[field.Name]; ok {
			key = override
		}
		row[key] = columnValue(value)
	}
}

func columnValue(value reflect.Value) any {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	if ts, ok := value.Interface().(time.Time); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return value.Interface()
}

func toSnakeCase(input string) string {
	runes := []rune(input)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			var next rune
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			// "MediaURL" -> "media_url", "URLField" -> "url_field"
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next)) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
