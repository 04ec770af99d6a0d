package format

import (
	"encoding/json"
	"fmt"

	"vectordb/internal/dataset"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

// jsonFormatter renders rows as a JSON array of field-name-keyed
// objects, machine-readable output for any future transport.
type jsonFormatter struct{}

func (jsonFormatter) FormatRows(s *schema.Schema, rows []dataset.Tuple) (string, error) {
	fields := s.Fields()
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		obj := make(map[string]any, len(fields))
		for j, f := range fields {
			obj[f.Name] = jsonValue(row.Value(j))
		}
		out[i] = obj
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format: marshaling json: %w", err)
	}
	return string(data), nil
}

func (jsonFormatter) FormatError(err error) string {
	if err == nil {
		return "{}"
	}
	data, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return `{"error":"` + err.Error() + `"}`
	}
	return string(data)
}

func jsonValue(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindInt:
		i, _ := v.AsInt()
		return i
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindVector:
		vec, _ := v.AsVector()
		return vec
	case value.KindMatrix:
		mat, _ := v.AsMatrix()
		return mat
	default:
		return nil
	}
}
