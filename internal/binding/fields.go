package binding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/dyluth/careersync/internal/syncdoc"
)

// setField changes one field of one section, addressed by JSON names
// ("general.siteName"). The change is applied inside a document update so
// concurrent edits to sibling fields are preserved.
func setField[T any](ctx context.Context, doc *syncdoc.Document[T], path, value string) error {
	section, field, ok := strings.Cut(path, ".")
	if !ok || section == "" || field == "" {
		return fmt.Errorf("invalid field path %q: expected section.field", path)
	}

	_, err := doc.Update(ctx, func(v *T) error {
		data, err := json.Marshal(*v)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}

		var sections map[string]map[string]any
		if err := json.Unmarshal(data, &sections); err != nil {
			return fmt.Errorf("failed to decode settings: %w", err)
		}

		fields, ok := sections[section]
		if !ok {
			return fmt.Errorf("unknown section %q (known: %s)", section, strings.Join(sortedKeys(sections), ", "))
		}
		current, ok := fields[field]
		if !ok {
			return fmt.Errorf("unknown field %q in section %q (known: %s)", field, section, strings.Join(sortedKeys(fields), ", "))
		}

		parsed, err := parseValue(current, value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", path, err)
		}
		fields[field] = parsed

		data, err = json.Marshal(sections)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		var next T
		if err := json.Unmarshal(data, &next); err != nil {
			return fmt.Errorf("invalid value for %s: %w", path, err)
		}
		if err := domain.Validate(next); err != nil {
			return err
		}
		*v = next
		return nil
	})
	return err
}

// parseValue converts raw to the JSON kind of the field's current value.
// String fields take raw verbatim so "5551234" or "true" stay strings.
func parseValue(current any, raw string) (any, error) {
	switch current.(type) {
	case string:
		return raw, nil
	case bool:
		var b bool
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", raw)
		}
		return b, nil
	case float64:
		var n float64
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return n, nil
	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		return raw, nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
