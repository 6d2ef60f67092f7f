package plug

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Settings is a read-only, section-keyed configuration source.
// Section must return an empty Section for unknown names.
type Settings interface {
	Section(name string) Section
}

// SectionName returns the conventional config section for a plugin name.
func SectionName(pluginName string) string {
	return strings.ToUpper(pluginName)
}

// Section is a read-only view of one config section.
type Section struct {
	name   string
	values map[string]any
}

// NewSection creates a Section. Keys are matched case-insensitively.
// The values map is copied.
func NewSection(name string, values map[string]any) Section {
	sec := Section{name: name, values: make(map[string]any, len(values))}
	for k, v := range values {
		sec.values[strings.ToLower(k)] = v
	}
	return sec
}

// Name returns the section name.
func (s Section) Name() string { return s.name }

// Empty reports whether the section has no keys.
func (s Section) Empty() bool { return len(s.values) == 0 }

// Has reports whether key is set.
func (s Section) Has(key string) bool {
	_, ok := s.values[strings.ToLower(key)]
	return ok
}

// Keys returns the (lower-cased) keys in the section.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Raw returns the stored value for key.
func (s Section) Raw(key string) (any, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// String returns the value for key as a string, or def when absent.
// Non-string scalars are formatted with fmt.
func (s Section) String(key, def string) string {
	v, ok := s.Raw(key)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// StringList returns the value for key as a list.
// Accepts an array of scalars or a comma-separated string; blank entries are
// dropped. Returns nil when absent.
func (s Section) StringList(key string) []string {
	v, ok := s.Raw(key)
	if !ok || v == nil {
		return nil
	}

	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = []string{fmt.Sprint(val)}
	}

	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Bool returns the value for key as a bool, or def when absent.
func (s Section) Bool(key string, def bool) (bool, error) {
	v, ok := s.Raw(key)
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return def, fmt.Errorf("%s.%s: invalid bool %q", s.name, key, val)
		}
		return b, nil
	}
	return def, fmt.Errorf("%s.%s: expected bool, got %T", s.name, key, v)
}

// Int returns the value for key as an int, or def when absent.
func (s Section) Int(key string, def int) (int, error) {
	v, ok := s.Raw(key)
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return def, fmt.Errorf("%s.%s: invalid integer %q", s.name, key, val)
		}
		return n, nil
	}
	return def, fmt.Errorf("%s.%s: expected integer, got %T", s.name, key, v)
}

// Duration returns the value for key parsed with time.ParseDuration, or def
// when absent. Bare integers are taken as seconds.
func (s Section) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := s.Raw(key)
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case int64:
		return time.Duration(val) * time.Second, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return def, fmt.Errorf("%s.%s: invalid duration %q", s.name, key, val)
		}
		return d, nil
	}
	return def, fmt.Errorf("%s.%s: expected duration, got %T", s.name, key, v)
}

// Strings flattens the section into string values, for plugins that forward
// their settings over a wire protocol.
func (s Section) Strings() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		switch v.(type) {
		case []any, []string:
			out[k] = strings.Join(s.StringList(k), ",")
		default:
			out[k] = s.String(k, "")
		}
	}
	return out
}

// MapSettings is a Settings backed by a plain map, keyed by section name.
// Section lookup is case-insensitive.
type MapSettings map[string]map[string]any

// Section implements Settings.
func (m MapSettings) Section(name string) Section {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return NewSection(name, v)
		}
	}
	return NewSection(name, nil)
}
