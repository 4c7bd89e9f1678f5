package plait

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Thin interop helpers between JSON and the Value model. Dates map to
// RFC 3339 strings and binary to base64 strings on the way out, since
// JSON has no native variants for them; the reverse direction never
// guesses, a JSON string always comes back as Str.

// FromJSON converts JSON bytes to a Value.
func FromJSON(data []byte) (*Value, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("plait: JSON parse error: %w", err)
	}
	return FromJSONValue(v)
}

// FromJSONValue converts a decoded JSON interface tree to a Value.
func FromJSONValue(v interface{}) (*Value, error) {
	if v == nil {
		return Null(), nil
	}

	switch val := v.(type) {
	case bool:
		return Bool(val), nil

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("plait: non-finite number in JSON input")
		}
		return Num(val), nil

	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("plait: invalid JSON number %q: %w", val, err)
		}
		return Num(f), nil

	case string:
		return Str(val), nil

	case []interface{}:
		list := List()
		for i, elem := range val {
			pv, err := FromJSONValue(elem)
			if err != nil {
				return nil, fmt.Errorf("plait: array index %d: %w", i, err)
			}
			list.Append(pv)
		}
		return list, nil

	case map[string]interface{}:
		rec := Map()
		for _, key := range sortedKeys(val) {
			pv, err := FromJSONValue(val[key])
			if err != nil {
				return nil, fmt.Errorf("plait: key %q: %w", key, err)
			}
			rec.Set(key, pv)
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("plait: unsupported JSON value type %T", v)
	}
}

// ToJSON converts a Value to JSON bytes.
func ToJSON(v *Value) ([]byte, error) {
	iv, err := ToJSONValue(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(iv)
	if err != nil {
		return nil, fmt.Errorf("plait: JSON marshal error: %w", err)
	}
	return data, nil
}

// ToJSONValue converts a Value to a JSON-marshalable interface tree.
func ToJSONValue(v *Value) (interface{}, error) {
	switch v.Kind() {
	case KindNull:
		return nil, nil
	case KindBool:
		b, _ := v.AsBool()
		return b, nil
	case KindNum:
		f, _ := v.AsNum()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("plait: cannot represent non-finite number in JSON")
		}
		return f, nil
	case KindStr:
		s, _ := v.AsStr()
		return s, nil
	case KindDate:
		t, _ := v.AsDate()
		return t.Format(time.RFC3339Nano), nil
	case KindBin:
		b, _ := v.AsBin()
		return base64.StdEncoding.EncodeToString(b), nil
	case KindList:
		elems, _ := v.AsList()
		out := make([]interface{}, 0, len(elems))
		for _, elem := range elems {
			iv, err := ToJSONValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, iv)
		}
		return out, nil
	case KindMap:
		entries, _ := v.AsMap()
		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			iv, err := ToJSONValue(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = iv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("plait: unsupported value kind %s", v.Kind())
	}
}

// sortedKeys gives JSON-sourced records a deterministic key order,
// since Go map iteration would otherwise vary run to run.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSONToPLAIT re-encodes a JSON document as PLAIT text.
func JSONToPLAIT(data []byte) (string, error) {
	v, err := FromJSON(data)
	if err != nil {
		return "", err
	}
	return Encode(v)
}

// PLAITToJSON re-encodes a PLAIT document as JSON bytes.
func PLAITToJSON(text string) ([]byte, error) {
	v, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return ToJSON(v)
}
