package plait

import (
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================
// YAML Bridge
// ============================================================

// FromYAML converts YAML bytes to a Value. YAML timestamps become Date
// values; everything else maps like the JSON bridge.
func FromYAML(data []byte) (*Value, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("plait: YAML parse error: %w", err)
	}
	return fromYAMLValue(v)
}

func fromYAMLValue(v interface{}) (*Value, error) {
	if v == nil {
		return Null(), nil
	}

	switch val := v.(type) {
	case bool:
		return Bool(val), nil

	case int:
		return Num(float64(val)), nil

	case int64:
		return Num(float64(val)), nil

	case uint64:
		return Num(float64(val)), nil

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("plait: non-finite number in YAML input")
		}
		return Num(val), nil

	case string:
		return Str(val), nil

	case time.Time:
		return Date(val), nil

	case []byte:
		return Bin(val), nil

	case []interface{}:
		list := List()
		for i, elem := range val {
			pv, err := fromYAMLValue(elem)
			if err != nil {
				return nil, fmt.Errorf("plait: sequence index %d: %w", i, err)
			}
			list.Append(pv)
		}
		return list, nil

	case map[string]interface{}:
		rec := Map()
		for _, key := range sortedKeys(val) {
			pv, err := fromYAMLValue(val[key])
			if err != nil {
				return nil, fmt.Errorf("plait: key %q: %w", key, err)
			}
			rec.Set(key, pv)
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("plait: unsupported YAML value type %T", v)
	}
}

// ToYAML converts a Value to YAML bytes.
func ToYAML(v *Value) ([]byte, error) {
	iv, err := toYAMLValue(v)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(iv)
	if err != nil {
		return nil, fmt.Errorf("plait: YAML marshal error: %w", err)
	}
	return data, nil
}

func toYAMLValue(v *Value) (interface{}, error) {
	switch v.Kind() {
	case KindDate:
		t, _ := v.AsDate()
		return t, nil
	case KindBin:
		b, _ := v.AsBin()
		return b, nil
	case KindList:
		elems, _ := v.AsList()
		out := make([]interface{}, 0, len(elems))
		for _, elem := range elems {
			iv, err := toYAMLValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, iv)
		}
		return out, nil
	case KindMap:
		// A yaml.Node mapping keeps insertion order, which a Go map
		// would discard.
		entries, _ := v.AsMap()
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range entries {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}
			iv, err := toYAMLValue(e.Value)
			if err != nil {
				return nil, err
			}
			valNode, ok := iv.(*yaml.Node)
			if !ok {
				valNode = &yaml.Node{}
				if err := valNode.Encode(iv); err != nil {
					return nil, fmt.Errorf("plait: key %q: %w", e.Key, err)
				}
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil
	default:
		return ToJSONValue(v)
	}
}

// YAMLToPLAIT re-encodes a YAML document as PLAIT text.
func YAMLToPLAIT(data []byte) (string, error) {
	v, err := FromYAML(data)
	if err != nil {
		return "", err
	}
	return Encode(v)
}

// PLAITToYAML re-encodes a PLAIT document as YAML bytes.
func PLAITToYAML(text string) ([]byte, error) {
	v, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return ToYAML(v)
}
