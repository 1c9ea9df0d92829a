package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// mergeJSON encodes known as a JSON object and adds every extra key that known
// does not already set.
func mergeJSON(known any, extra map[string]any) ([]byte, error) {
	knownBytes, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return knownBytes, nil
	}
	fields := make(map[string]json.RawMessage, len(extra)+8)
	if err := json.Unmarshal(knownBytes, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := fields[k]; ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = b
	}
	return json.Marshal(fields)
}

// splitJSON decodes data into known and returns the object's remaining keys.
// Keys in drop are discarded entirely. Numbers in the remaining keys are kept
// as json.Number so they encode back to the same literal.
func splitJSON(data []byte, known any, drop []string) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{Field: typeErr.Field, Reason: "must be a " + typeErr.Type.String()}
		}
		return nil, err
	}
	extra := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&extra); err != nil {
		return nil, err
	}
	for _, k := range drop {
		delete(extra, k)
	}
	return extra, nil
}
