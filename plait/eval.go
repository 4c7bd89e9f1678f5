package plait

import (
	"fmt"
	"strconv"
)

// EvalError represents an evaluation error. An unknown node kind is an
// internal invariant violation rather than bad input.
type EvalError struct {
	Message string
	Pos     Position
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Evaluator walks an AST and produces the final Value. Anchor
// definitions are scoped to a single Evaluate call; references resolve
// to deep copies so the value graph stays a strict tree.
type Evaluator struct {
	anchors map[string]*Value
}

// NewEvaluator creates an evaluator with an empty anchor table.
func NewEvaluator() *Evaluator {
	return &Evaluator{anchors: make(map[string]*Value)}
}

// Evaluate evaluates an AST with a fresh evaluator.
func Evaluate(root *Node) (*Value, error) {
	return NewEvaluator().Evaluate(root)
}

// Evaluate resolves a root node. Zero children yield Null, one child
// yields that child's value directly, and several children synthesize a
// record. This one-child rule is what lets a bare top-level scalar and
// a top-level key/value document share one grammar.
func (e *Evaluator) Evaluate(root *Node) (*Value, error) {
	if root == nil {
		return Null(), nil
	}
	if root.Kind != NodeRoot {
		return e.evalNode(root)
	}

	switch len(root.Children) {
	case 0:
		return Null(), nil
	case 1:
		return e.evalNode(root.Children[0])
	}

	rec := Map()
	rec.SetPos(root.Pos)
	for i, child := range root.Children {
		switch child.Kind {
		case NodeProperty:
			v, err := e.evalNode(child.Child)
			if err != nil {
				return nil, err
			}
			rec.Set(child.Key, v)
		case NodeAnchorDef:
			v, err := e.evalNode(child.Child)
			if err != nil {
				return nil, err
			}
			e.anchors[child.Key] = v
			rec.Set(child.Key, v)
		default:
			// Permissive fallback: positional index as the key.
			v, err := e.evalNode(child)
			if err != nil {
				return nil, err
			}
			rec.Set(strconv.Itoa(i), v)
		}
	}
	return rec, nil
}

func (e *Evaluator) evalNode(node *Node) (*Value, error) {
	switch node.Kind {
	case NodeLiteral:
		return node.Lit, nil

	case NodeObject:
		rec := Map()
		rec.SetPos(node.Pos)
		for _, child := range node.Children {
			switch child.Kind {
			case NodeProperty:
				v, err := e.evalNode(child.Child)
				if err != nil {
					return nil, err
				}
				rec.Set(child.Key, v)
			case NodeAnchorDef:
				v, err := e.evalNode(child.Child)
				if err != nil {
					return nil, err
				}
				e.anchors[child.Key] = v
				rec.Set(child.Key, v)
			default:
				return nil, &EvalError{
					Message: fmt.Sprintf("unexpected %s node in object", child.Kind),
					Pos:     child.Pos,
				}
			}
		}
		return rec, nil

	case NodeArray:
		list := List()
		list.SetPos(node.Pos)
		for _, child := range node.Children {
			v, err := e.evalNode(child)
			if err != nil {
				return nil, err
			}
			list.Append(v)
		}
		return list, nil

	case NodeProperty:
		v, err := e.evalNode(node.Child)
		if err != nil {
			return nil, err
		}
		rec := Map(Field(node.Key, v))
		rec.SetPos(node.Pos)
		return rec, nil

	case NodeAnchorDef:
		v, err := e.evalNode(node.Child)
		if err != nil {
			return nil, err
		}
		e.anchors[node.Key] = v
		return v, nil

	case NodeAnchorRef:
		stored, ok := e.anchors[node.Key]
		if !ok {
			return nil, &EvalError{
				Message: fmt.Sprintf("undefined anchor %q", node.Key),
				Pos:     node.Pos,
			}
		}
		return stored.Clone(), nil

	default:
		return nil, &EvalError{
			Message: fmt.Sprintf("unknown node kind %d", node.Kind),
			Pos:     node.Pos,
		}
	}
}
