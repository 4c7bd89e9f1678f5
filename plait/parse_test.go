package plait

import (
	"strings"
	"testing"
)

// ============================================================
// Parser Tests
// ============================================================

func TestParse_SingleProperty(t *testing.T) {
	root, err := Parse("name John")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(root.Children))
	}
	prop := root.Children[0]
	if prop.Kind != NodeProperty || prop.Key != "name" {
		t.Fatalf("Expected property 'name', got %s %q", prop.Kind, prop.Key)
	}
	if prop.Child.Kind != NodeLiteral || prop.Child.LitKind != KindStr {
		t.Fatalf("Expected string literal value, got %s %s", prop.Child.Kind, prop.Child.LitKind)
	}
}

func TestParse_ScalarArrayLine(t *testing.T) {
	root, err := Parse("items 1 2 3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Child.Kind != NodeArray {
		t.Fatalf("Expected array value, got %s", prop.Child.Kind)
	}
	if len(prop.Child.Children) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(prop.Child.Children))
	}
	for i, elem := range prop.Child.Children {
		if elem.Kind != NodeLiteral || elem.LitKind != KindNum {
			t.Errorf("Element %d: expected number literal, got %s %s", i, elem.Kind, elem.LitKind)
		}
	}
}

func TestParse_NestedObject(t *testing.T) {
	root, err := Parse("user\n  name John\n  city NYC")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Key != "user" || prop.Child.Kind != NodeObject {
		t.Fatalf("Expected object under 'user', got %s", prop.Child.Kind)
	}
	if len(prop.Child.Children) != 2 {
		t.Fatalf("Expected 2 properties, got %d", len(prop.Child.Children))
	}
	if prop.Child.Children[0].Key != "name" || prop.Child.Children[1].Key != "city" {
		t.Errorf("Unexpected keys: %q %q", prop.Child.Children[0].Key, prop.Child.Children[1].Key)
	}
}

func TestParse_Table(t *testing.T) {
	root, err := Parse("users name age\n  Alice 25\n  Bob 30")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Child.Kind != NodeArray || len(prop.Child.Children) != 2 {
		t.Fatalf("Expected 2-row array, got %s with %d children",
			prop.Child.Kind, len(prop.Child.Children))
	}
	for i, row := range prop.Child.Children {
		if row.Kind != NodeObject || len(row.Children) != 2 {
			t.Fatalf("Row %d: expected 2-key object, got %s with %d", i, row.Kind, len(row.Children))
		}
		if row.Children[0].Key != "name" || row.Children[1].Key != "age" {
			t.Errorf("Row %d: unexpected keys %q %q", i, row.Children[0].Key, row.Children[1].Key)
		}
	}
}

func TestParse_TableShortRow(t *testing.T) {
	// Row token count may be less than header count.
	root, err := Parse("users name age\n  Alice")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	row := root.Children[0].Child.Children[0]
	if len(row.Children) != 1 || row.Children[0].Key != "name" {
		t.Fatalf("Expected single 'name' cell, got %d children", len(row.Children))
	}
}

func TestParse_TableExtraCells(t *testing.T) {
	input := "users name age\n  Alice 25 extra"

	root, err := Parse(input)
	if err != nil {
		t.Fatalf("Extra cells should be ignored by default: %v", err)
	}
	row := root.Children[0].Child.Children[0]
	if len(row.Children) != 2 {
		t.Fatalf("Expected 2 cells, got %d", len(row.Children))
	}

	opts := DefaultParseOptions()
	opts.Strict = true
	if _, err := ParseWithOptions(input, opts); err == nil {
		t.Fatal("Strict mode should reject extra cells")
	}
}

func TestParse_InlineRecordLine(t *testing.T) {
	root, err := Parse("x:10 y:20")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(root.Children))
	}
	obj := root.Children[0]
	if obj.Kind != NodeObject || len(obj.Children) != 2 {
		t.Fatalf("Expected 2-key object, got %s with %d", obj.Kind, len(obj.Children))
	}
	if obj.Children[0].Key != "x" || obj.Children[1].Key != "y" {
		t.Errorf("Unexpected keys: %q %q", obj.Children[0].Key, obj.Children[1].Key)
	}
}

func TestParse_InlineRecordArray(t *testing.T) {
	root, err := Parse("points x:1 y:2\n  x:3 y:4\n  x:5 y:6")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Child.Kind != NodeArray || len(prop.Child.Children) != 3 {
		t.Fatalf("Expected 3-record array, got %s with %d",
			prop.Child.Kind, len(prop.Child.Children))
	}
	for i, rec := range prop.Child.Children {
		if rec.Kind != NodeObject {
			t.Errorf("Record %d: expected object, got %s", i, rec.Kind)
		}
	}
}

func TestParse_InlineRecordValue(t *testing.T) {
	root, err := Parse("origin x:0 y:0")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Key != "origin" || prop.Child.Kind != NodeObject {
		t.Fatalf("Expected inline object under 'origin', got %s", prop.Child.Kind)
	}
}

func TestParse_MalformedInlineRow(t *testing.T) {
	_, err := Parse("points x:1 y:2\n  x:3 oops")
	if err == nil {
		t.Fatal("Expected malformed inline row error")
	}
	if !strings.Contains(err.Error(), "malformed") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestParse_BareKeyIsNull(t *testing.T) {
	root, err := Parse("a 1\nempty\nb 2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(root.Children))
	}
	empty := root.Children[1]
	if empty.Key != "empty" || empty.Child.LitKind != KindNull {
		t.Fatalf("Expected null property, got %s", empty.Child.LitKind)
	}
}

func TestParse_ArrayBlock(t *testing.T) {
	root, err := Parse("values\n  1\n  2\n  3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	prop := root.Children[0]
	if prop.Child.Kind != NodeArray || len(prop.Child.Children) != 3 {
		t.Fatalf("Expected 3-element array, got %s with %d",
			prop.Child.Kind, len(prop.Child.Children))
	}
}

func TestParse_ArrayBlockNestedRows(t *testing.T) {
	// A multi-literal row becomes a nested scalar array element.
	root, err := Parse("grid\n  1 2\n  3 4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	arr := root.Children[0].Child
	if arr.Kind != NodeArray || len(arr.Children) != 2 {
		t.Fatalf("Expected 2-row array, got %s with %d", arr.Kind, len(arr.Children))
	}
	for i, row := range arr.Children {
		if row.Kind != NodeArray || len(row.Children) != 2 {
			t.Errorf("Row %d: expected nested 2-element array, got %s", i, row.Kind)
		}
	}
}

func TestParse_MixedArrayRows(t *testing.T) {
	// Each row decides its own shape, so scalar and record rows mix.
	tests := []struct {
		name  string
		input string
		kinds []NodeKind
	}{
		{"scalar then record", "key\n  1\n  a:1", []NodeKind{NodeLiteral, NodeObject}},
		{"record then scalar", "key\n  a:1\n  1", []NodeKind{NodeObject, NodeLiteral}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			arr := root.Children[0].Child
			if arr.Kind != NodeArray || len(arr.Children) != len(tt.kinds) {
				t.Fatalf("Expected %d-element array, got %s with %d",
					len(tt.kinds), arr.Kind, len(arr.Children))
			}
			for i, want := range tt.kinds {
				if arr.Children[i].Kind != want {
					t.Errorf("Element %d: expected %s, got %s", i, want, arr.Children[i].Kind)
				}
			}
		})
	}
}

func TestParse_StreamingOption(t *testing.T) {
	// A chunk body never contains delimiters; a stray pipe is an error.
	opts := DefaultParseOptions()
	opts.Streaming = true

	if _, err := ParseWithOptions("|c1|\na 1", opts); err == nil {
		t.Fatal("Streaming mode should reject a chunk delimiter")
	}
	if _, err := Parse("|c1|\na 1"); err != nil {
		t.Fatalf("Default mode should consume the delimiter: %v", err)
	}
	if _, err := ParseWithOptions("a 1", opts); err != nil {
		t.Fatalf("Streaming mode should parse a plain body: %v", err)
	}
}

func TestParse_TailPlusScalarRows(t *testing.T) {
	// Tail literals start the array; indented scalar rows extend it.
	root, err := Parse("nums 1 2\n  3\n  4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	arr := root.Children[0].Child
	if arr.Kind != NodeArray || len(arr.Children) != 4 {
		t.Fatalf("Expected 4-element array, got %s with %d", arr.Kind, len(arr.Children))
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	_, err := Parse("a 1\na 2")
	if err == nil {
		t.Fatal("Expected duplicate key error")
	}
	if !strings.Contains(err.Error(), "duplicate key") {
		t.Errorf("Unexpected message: %v", err)
	}

	opts := DefaultParseOptions()
	opts.AllowDuplicateKeys = true
	root, err := ParseWithOptions("a 1\na 2", opts)
	if err != nil {
		t.Fatalf("Parse with AllowDuplicateKeys failed: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("Last-wins should keep one child, got %d", len(root.Children))
	}
	v, _ := root.Children[0].Child.Lit.AsNum()
	if v != 2 {
		t.Errorf("Expected last value 2, got %v", v)
	}
}

func TestParse_DuplicateKeysScoped(t *testing.T) {
	// The same key in different blocks is not a duplicate.
	if _, err := Parse("a\n  x 1\nb\n  x 2"); err != nil {
		t.Fatalf("Sibling blocks may reuse keys: %v", err)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	opts := DefaultParseOptions()
	opts.MaxDepth = 2

	if _, err := ParseWithOptions("a\n  b\n    c 1", opts); err != nil {
		t.Fatalf("Depth 2 should pass: %v", err)
	}
	_, err := ParseWithOptions("a\n  b\n    c\n      d 1", opts)
	if err == nil {
		t.Fatal("Expected max depth error")
	}
	if !strings.Contains(err.Error(), "depth") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestParse_DateLiterals(t *testing.T) {
	root, err := Parse("created 2025-01-02T15:04:05Z")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	lit := root.Children[0].Child
	if lit.LitKind != KindDate {
		t.Fatalf("Expected date, got %s", lit.LitKind)
	}

	if _, err := Parse("created 2025-13-40"); err == nil {
		t.Fatal("Expected invalid date error")
	}
}

func TestParse_ChunkDelimiter(t *testing.T) {
	root, err := Parse("|c1|\nname John")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Key != "name" {
		t.Fatalf("Delimiter should be consumed, got %d children", len(root.Children))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n", "# only a comment\n"} {
		root, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if len(root.Children) != 0 {
			t.Errorf("Parse(%q): expected no children, got %d", input, len(root.Children))
		}
	}
}
