package plait

import (
	"strings"
	"testing"
)

// ============================================================
// Evaluator Tests
// ============================================================

func mustDecode(t *testing.T, input string) *Value {
	t.Helper()
	v, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode(%q) failed: %v", input, err)
	}
	return v
}

func TestEvaluate_EmptyRoot(t *testing.T) {
	v := mustDecode(t, "")
	if !v.IsNull() {
		t.Fatalf("Empty document should evaluate to null, got %s", v.Kind())
	}
}

func TestEvaluate_SingleScalar(t *testing.T) {
	v := mustDecode(t, "42")
	n, err := v.AsNum()
	if err != nil || n != 42 {
		t.Fatalf("Expected bare 42, got %s (%v)", v.Kind(), err)
	}
}

func TestEvaluate_SinglePropertyRecord(t *testing.T) {
	v := mustDecode(t, "name John")
	if v.Kind() != KindMap || v.Len() != 1 {
		t.Fatalf("Expected 1-key record, got %s with %d", v.Kind(), v.Len())
	}
	s, _ := v.Get("name").AsStr()
	if s != "John" {
		t.Errorf("Expected John, got %q", s)
	}
}

func TestEvaluate_MultiPropertyRecord(t *testing.T) {
	v := mustDecode(t, "name John\nage 30")
	if v.Kind() != KindMap || v.Len() != 2 {
		t.Fatalf("Expected 2-key record, got %s with %d", v.Kind(), v.Len())
	}
	if s, _ := v.Get("name").AsStr(); s != "John" {
		t.Errorf("name: expected John, got %q", s)
	}
	if n, _ := v.Get("age").AsNum(); n != 30 {
		t.Errorf("age: expected 30, got %v", n)
	}
}

func TestEvaluate_PositionalFallback(t *testing.T) {
	// Non-property children of a multi-child root get index keys.
	v := mustDecode(t, "name John\n42")
	if v.Kind() != KindMap || v.Len() != 2 {
		t.Fatalf("Expected 2-key record, got %s with %d", v.Kind(), v.Len())
	}
	if n, _ := v.Get("1").AsNum(); n != 42 {
		t.Errorf("Expected positional key \"1\" -> 42, got %v", v.Get("1"))
	}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Value
	}{
		{
			"scalar array",
			"items 1 2 3",
			Map(Field("items", List(Num(1), Num(2), Num(3)))),
		},
		{
			"nested object",
			"user\n  name John\n  city NYC",
			Map(Field("user", Map(
				Field("name", Str("John")),
				Field("city", Str("NYC")),
			))),
		},
		{
			"table",
			"users name age\n  Alice 25\n  Bob 30",
			Map(Field("users", List(
				Map(Field("name", Str("Alice")), Field("age", Num(25))),
				Map(Field("name", Str("Bob")), Field("age", Num(30))),
			))),
		},
		{
			"inline record",
			"x:10 y:20",
			Map(Field("x", Num(10)), Field("y", Num(20))),
		},
		{
			"booleans and null",
			"on true\noff false\nnothing null",
			Map(
				Field("on", Bool(true)),
				Field("off", Bool(false)),
				Field("nothing", Null()),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustDecode(t, tt.input)
			if !Equal(got, tt.want) {
				gotText, _ := Encode(got)
				wantText, _ := Encode(tt.want)
				t.Errorf("Mismatch:\ngot:\n%s\nwant:\n%s", gotText, wantText)
			}
		})
	}
}

func TestEvaluate_AnchorResolution(t *testing.T) {
	root := &Node{Kind: NodeRoot, Children: []*Node{
		AnchorDefNode("base", ObjectNode(
			PropertyNode("host", LiteralNode(Str("localhost"), Position{}), Position{}),
		)),
		PropertyNode("primary", AnchorRefNode("base"), Position{}),
	}}

	v, err := Evaluate(root)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	primary := v.Get("primary")
	if primary.Kind() != KindMap {
		t.Fatalf("Expected resolved record, got %s", primary.Kind())
	}
	if s, _ := primary.Get("host").AsStr(); s != "localhost" {
		t.Errorf("Expected localhost, got %q", s)
	}

	// The resolution must be an independent copy.
	primary.Set("host", Str("changed"))
	base := v.Get("base")
	if s, _ := base.Get("host").AsStr(); s != "localhost" {
		t.Errorf("Mutating a reference site must not alias the definition, got %q", s)
	}
}

func TestEvaluate_UndefinedAnchor(t *testing.T) {
	root := &Node{Kind: NodeRoot, Children: []*Node{
		PropertyNode("a", AnchorRefNode("missing"), Position{}),
		PropertyNode("b", LiteralNode(Num(1), Position{}), Position{}),
	}}

	_, err := Evaluate(root)
	if err == nil {
		t.Fatal("Expected undefined anchor error")
	}
	if !strings.Contains(err.Error(), "undefined anchor") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestValue_CloneIndependence(t *testing.T) {
	orig := Map(
		Field("list", List(Num(1), Num(2))),
		Field("rec", Map(Field("k", Str("v")))),
		Field("bin", Bin([]byte{1, 2, 3})),
	)
	c := orig.Clone()
	if !Equal(orig, c) {
		t.Fatal("Clone should be equal to the original")
	}

	c.Get("list").Append(Num(3))
	c.Get("rec").Set("k", Str("w"))
	bin, _ := c.Get("bin").AsBin()
	bin[0] = 9

	if orig.Get("list").Len() != 2 {
		t.Error("Clone list mutation leaked into original")
	}
	if s, _ := orig.Get("rec").Get("k").AsStr(); s != "v" {
		t.Error("Clone map mutation leaked into original")
	}
	if origBin, _ := orig.Get("bin").AsBin(); origBin[0] != 1 {
		t.Error("Clone binary mutation leaked into original")
	}
}

func TestValue_Equal(t *testing.T) {
	a := Map(Field("x", Num(1)), Field("y", Num(2)))
	b := Map(Field("y", Num(2)), Field("x", Num(1)))
	if !Equal(a, b) {
		t.Error("Record key order must be insignificant")
	}

	l1 := List(Num(1), Num(2))
	l2 := List(Num(2), Num(1))
	if Equal(l1, l2) {
		t.Error("Array order must be significant")
	}

	if Equal(Str("1"), Num(1)) {
		t.Error("Different kinds must not be equal")
	}
	if !Equal(Null(), nil) {
		t.Error("Null and nil must be equal")
	}
}
