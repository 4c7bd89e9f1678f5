package plait

// NodeKind represents AST node kinds.
type NodeKind uint8

const (
	NodeRoot     NodeKind = iota // ordered list of top-level children
	NodeObject                   // ordered list of properties
	NodeArray                    // ordered list of elements
	NodeProperty                 // key plus value subtree
	NodeLiteral                  // resolved scalar value
	NodeAnchorDef                // named value definition (reserved)
	NodeAnchorRef                // reference to a defined anchor (reserved)
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	case NodeProperty:
		return "property"
	case NodeLiteral:
		return "literal"
	case NodeAnchorDef:
		return "anchor-def"
	case NodeAnchorRef:
		return "anchor-ref"
	default:
		return "unknown"
	}
}

// Node is an AST node. The AST is a strict tree: Property and AnchorDef
// own Child, Root/Object/Array own Children, and AnchorRef carries only
// a name that the evaluator resolves by lookup, never a structural edge.
type Node struct {
	Kind     NodeKind
	Key      string  // Property key; AnchorDef/AnchorRef name
	Lit      *Value  // Literal payload
	LitKind  Kind    // detected kind of the literal
	Child    *Node   // Property/AnchorDef value subtree
	Children []*Node // Root/Object/Array children
	Pos      Position
}

// LiteralNode creates a literal node from a resolved scalar value.
func LiteralNode(v *Value, pos Position) *Node {
	return &Node{Kind: NodeLiteral, Lit: v, LitKind: v.Kind(), Pos: pos}
}

// PropertyNode creates a key/value property node.
func PropertyNode(key string, value *Node, pos Position) *Node {
	return &Node{Kind: NodeProperty, Key: key, Child: value, Pos: pos}
}

// ObjectNode creates an object node from property children.
func ObjectNode(props ...*Node) *Node {
	return &Node{Kind: NodeObject, Children: props}
}

// ArrayNode creates an array node from element children.
func ArrayNode(elems ...*Node) *Node {
	return &Node{Kind: NodeArray, Children: elems}
}

// AnchorDefNode creates a named value definition.
func AnchorDefNode(name string, value *Node) *Node {
	return &Node{Kind: NodeAnchorDef, Key: name, Child: value}
}

// AnchorRefNode creates a reference to a previously defined anchor.
func AnchorRefNode(name string) *Node {
	return &Node{Kind: NodeAnchorRef, Key: name}
}
