package plait

import (
	"strings"
	"testing"
	"time"
)

// ============================================================
// JSON Bridge Tests
// ============================================================

func TestJSONBridge_FromJSON(t *testing.T) {
	data := []byte(`{"name":"John","age":30,"tags":["a","b"],"active":true,"score":null}`)
	v, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if s, _ := v.Get("name").AsStr(); s != "John" {
		t.Errorf("name: expected John, got %q", s)
	}
	if n, _ := v.Get("age").AsNum(); n != 30 {
		t.Errorf("age: expected 30, got %v", n)
	}
	if v.Get("tags").Len() != 2 {
		t.Errorf("tags: expected 2 elements")
	}
	if b, _ := v.Get("active").AsBool(); !b {
		t.Errorf("active: expected true")
	}
	if !v.Get("score").IsNull() {
		t.Errorf("score: expected null")
	}
}

func TestJSONBridge_ToJSON(t *testing.T) {
	v := Map(
		Field("name", Str("John")),
		Field("when", Date(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))),
		Field("data", Bin([]byte("hi"))),
	)
	data, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"2025-01-02T00:00:00Z"`) {
		t.Errorf("Date should serialize as RFC 3339 string, got %s", s)
	}
	if !strings.Contains(s, `"aGk="`) {
		t.Errorf("Binary should serialize as base64 string, got %s", s)
	}
}

func TestJSONBridge_RoundTrip(t *testing.T) {
	data := []byte(`{"a":1,"b":[true,null,"x"],"c":{"d":2.5}}`)
	v, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	out, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	back, err := FromJSON(out)
	if err != nil {
		t.Fatalf("FromJSON of round trip failed: %v", err)
	}
	if !Equal(v, back) {
		t.Errorf("JSON round trip mismatch:\n%s\nvs\n%s", data, out)
	}
}

func TestJSONBridge_TextHelpers(t *testing.T) {
	text, err := JSONToPLAIT([]byte(`{"name":"John","age":30}`))
	if err != nil {
		t.Fatalf("JSONToPLAIT failed: %v", err)
	}
	v, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode of converted text failed: %v", err)
	}
	if s, _ := v.Get("name").AsStr(); s != "John" {
		t.Errorf("Expected John, got %q", s)
	}

	data, err := PLAITToJSON("x 1\ny 2")
	if err != nil {
		t.Fatalf("PLAITToJSON failed: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if n, _ := back.Get("x").AsNum(); n != 1 {
		t.Errorf("Expected x=1, got %v", n)
	}
}

// ============================================================
// YAML Bridge Tests
// ============================================================

func TestYAMLBridge_FromYAML(t *testing.T) {
	data := []byte("name: John\nage: 30\ntags:\n  - a\n  - b\n")
	v, err := FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if s, _ := v.Get("name").AsStr(); s != "John" {
		t.Errorf("name: expected John, got %q", s)
	}
	if n, _ := v.Get("age").AsNum(); n != 30 {
		t.Errorf("age: expected 30, got %v", n)
	}
	if v.Get("tags").Len() != 2 {
		t.Errorf("tags: expected 2 elements")
	}
}

func TestYAMLBridge_ToYAML(t *testing.T) {
	v := Map(
		Field("z", Num(1)),
		Field("a", Num(2)),
	)
	data, err := ToYAML(v)
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}
	// Insertion order must survive; a plain Go map would reorder.
	s := string(data)
	if strings.Index(s, "z:") > strings.Index(s, "a:") {
		t.Errorf("Expected insertion order z before a, got:\n%s", s)
	}
}

func TestYAMLBridge_RoundTrip(t *testing.T) {
	v := Map(
		Field("name", Str("John")),
		Field("nums", List(Num(1), Num(2))),
		Field("nested", Map(Field("k", Str("v")))),
	)
	data, err := ToYAML(v)
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}
	back, err := FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if !Equal(v, back) {
		t.Errorf("YAML round trip mismatch:\n%s", data)
	}
}

func TestYAMLBridge_Conversion(t *testing.T) {
	text, err := YAMLToPLAIT([]byte("x: 1\ny: 2\n"))
	if err != nil {
		t.Fatalf("YAMLToPLAIT failed: %v", err)
	}
	v := mustDecode(t, text)
	if n, _ := v.Get("x").AsNum(); n != 1 {
		t.Errorf("Expected x=1, got %v", n)
	}

	data, err := PLAITToYAML("name John")
	if err != nil {
		t.Fatalf("PLAITToYAML failed: %v", err)
	}
	if !strings.Contains(string(data), "name: John") {
		t.Errorf("Expected YAML mapping, got:\n%s", data)
	}
}
