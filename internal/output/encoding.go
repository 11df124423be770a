// Package output provides deterministic serialization of analysis results.
// Identical input must produce byte-identical output, so exports can be
// diffed and cached by checksum.
package output

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Format selects how results are rendered.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatHuman, FormatJSON, FormatYAML:
		return Format(s), true
	}
	return "", false
}

// DeterministicEncode produces byte-identical JSON output:
// - stable key ordering (sorted alphabetically)
// - null/empty optional fields omitted by the usual tags
func DeterministicEncode(v interface{}) ([]byte, error) {
	normalized := normalizeValue(v)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(normalized); err != nil {
		return nil, err
	}

	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

// DeterministicEncodeIndented produces indented byte-identical JSON output.
func DeterministicEncodeIndented(v interface{}, indent string) ([]byte, error) {
	data, err := DeterministicEncode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeValue lowers v into maps with sorted keys and plain slices so the
// encoder emits a canonical form regardless of the source struct layout.
func normalizeValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	// Round-trip through encoding/json first so struct tags, omitempty
	// and custom marshalers all apply before key sorting.
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return v
	}
	return sortKeys(generic)
}

func sortKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sorted := make(sortedMap, 0, len(keys))
		for _, k := range keys {
			sorted = append(sorted, keyValue{Key: k, Value: sortKeys(val[k])})
		}
		return sorted
	case []interface{}:
		for i := range val {
			val[i] = sortKeys(val[i])
		}
		return val
	default:
		return v
	}
}

type keyValue struct {
	Key   string
	Value interface{}
}

// sortedMap marshals as a JSON object with keys in slice order.
type sortedMap []keyValue

func (m sortedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape marshals v without HTML escaping. json.Marshal always
// escapes <, > and &, which would leak < into C signatures even though
// the outer encoder disables escaping.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
