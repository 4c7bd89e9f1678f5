package plait

import (
	"fmt"
	"strconv"
	"time"
)

// ParseError represents a parsing error with location.
type ParseError struct {
	Message string
	Pos     Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// ParseOptions configures the parser behavior.
type ParseOptions struct {
	// AllowDuplicateKeys permits repeated keys within one block;
	// the later occurrence overwrites the earlier value (last wins).
	AllowDuplicateKeys bool

	// MaxDepth limits nesting depth (default: 100). Only the
	// nested-object recursion counts; flat table and array rows do not.
	MaxDepth int

	// Strict rejects table rows with more cells than headers instead
	// of ignoring the extra cells.
	Strict bool

	// Streaming marks the input as one stream chunk body: `|` chunk
	// delimiters are not recognized at top level, so a stray pipe is
	// an error instead of a nested chunk boundary.
	Streaming bool
}

// DefaultParseOptions returns sensible defaults.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxDepth: 100}
}

// Parse parses PLAIT text into an AST root node.
func Parse(input string) (*Node, error) {
	return ParseWithOptions(input, DefaultParseOptions())
}

// ParseWithOptions parses with full options.
func ParseWithOptions(input string, opts ParseOptions) (*Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens, opts)
}

// ParseTokens parses an already-lexed token sequence.
func ParseTokens(tokens []Token, opts ParseOptions) (*Node, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 100
	}
	p := &Parser{stream: NewTokenStream(tokens), opts: opts}
	return p.parseRoot()
}

// Parser consumes a token sequence and produces an AST, applying
// line-local lookahead heuristics to decide what each line means.
type Parser struct {
	stream *TokenStream
	opts   ParseOptions
}

// parseRoot repeatedly skips blank lines and parses one top-level unit
// until EOF.
func (p *Parser) parseRoot() (*Node, error) {
	root := &Node{Kind: NodeRoot}
	seen := map[string]int{}

	for {
		p.skipBlank()
		tok := p.stream.Peek()
		switch tok.Type {
		case TokenEOF:
			return root, nil
		case TokenDedent:
			p.stream.Advance()
			continue
		case TokenPipe:
			if p.opts.Streaming {
				return nil, &ParseError{
					Message: "unexpected chunk delimiter inside chunk body",
					Pos:     tok.Pos,
				}
			}
			if err := p.parseChunkDelimiter(root, seen); err != nil {
				return nil, err
			}
			continue
		}

		unit, err := p.parseUnit(0)
		if err != nil {
			return nil, err
		}
		if err := p.addChild(root, unit, seen); err != nil {
			return nil, err
		}
	}
}

// parseChunkDelimiter consumes a `|id|` span at top level. Its payload
// is an indented block or simply the following top-level units.
func (p *Parser) parseChunkDelimiter(root *Node, seen map[string]int) error {
	open := p.stream.Advance() // consume |

	// Optional chunk id.
	id := p.stream.Peek()
	switch id.Type {
	case TokenIdent, TokenNumber, TokenString, TokenDate:
		if p.stream.PeekN(1).Type == TokenPipe {
			p.stream.Advance()
		}
	}

	if !p.stream.Match(TokenPipe) {
		return &ParseError{Message: "unterminated chunk delimiter", Pos: open.Pos}
	}

	save := p.stream.Position()
	p.skipBlank()
	if p.stream.Match(TokenIndent) {
		node, err := p.parseBlock(1)
		if err != nil {
			return err
		}
		return p.addChild(root, node, seen)
	}
	p.stream.Reset(save)
	return nil
}

// parseUnit parses one line-rooted unit: an inline record line, a key
// line, or a plain value line.
func (p *Parser) parseUnit(depth int) (*Node, error) {
	tok := p.stream.Peek()
	if tok.Type == TokenIdent {
		if p.colonFollows(tok, p.stream.PeekN(1)) {
			return p.parseInlineLine()
		}
		return p.parseKeyLine(depth)
	}
	return p.parseValueLine()
}

// parseValueLine parses a line of plain literals: one token is a scalar,
// several are a space-separated scalar array.
func (p *Parser) parseValueLine() (*Node, error) {
	tail := p.collectTail()
	if len(tail) == 0 {
		t := p.stream.Peek()
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %s", t.Type), Pos: t.Pos}
	}

	if len(tail) == 1 {
		v, err := p.convertLiteral(tail[0])
		if err != nil {
			return nil, err
		}
		return LiteralNode(v, tail[0].Pos), nil
	}

	elems := make([]*Node, 0, len(tail))
	for _, tok := range tail {
		v, err := p.convertLiteral(tok)
		if err != nil {
			return nil, err
		}
		elems = append(elems, LiteralNode(v, tok.Pos))
	}
	return ArrayNode(elems...), nil
}

// parseKeyLine performs the central line classification for a line
// beginning with an identifier key. Lookahead is bounded and never
// backtracks across consumed tokens.
func (p *Parser) parseKeyLine(depth int) (*Node, error) {
	keyTok := p.stream.Advance()
	tail := p.collectTail()
	block := p.blockFollows()

	var value *Node
	var err error

	switch {
	case len(tail) == 0 && block:
		// Nested block; the only recursion point that adds depth.
		if depth+1 > p.opts.MaxDepth {
			return nil, &ParseError{
				Message: fmt.Sprintf("maximum nesting depth %d exceeded", p.opts.MaxDepth),
				Pos:     keyTok.Pos,
			}
		}
		value, err = p.parseBlock(depth + 1)

	case len(tail) == 0:
		value = LiteralNode(Null(), keyTok.Pos)

	case block:
		value, err = p.parseRichBlock(tail)

	default:
		value, err = p.tailValue(tail)
	}

	if err != nil {
		return nil, err
	}
	return PropertyNode(keyTok.Value, value, keyTok.Pos), nil
}

// parseRichBlock handles a key line with a non-empty tail followed by
// an indented block: an array of inline records, a table, or a scalar
// array continued over the block's rows, in that priority order.
func (p *Parser) parseRichBlock(tail []Token) (*Node, error) {
	if p.hasInlineColon(tail) {
		first, err := p.inlineRecord(tail)
		if err != nil {
			return nil, err
		}
		rows := []*Node{first}
		err = p.eachRow(func(row []Token) error {
			rec, err := p.rowNode(row)
			if err != nil {
				return err
			}
			rows = append(rows, rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return ArrayNode(rows...), nil
	}

	if allIdents(tail) {
		return p.parseTable(tail)
	}

	// The tail starts a scalar array; indented rows continue it.
	elems, err := p.literalNodes(tail)
	if err != nil {
		return nil, err
	}
	err = p.eachRow(func(row []Token) error {
		elem, err := p.rowNode(row)
		if err != nil {
			return err
		}
		elems = append(elems, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ArrayNode(elems...), nil
}

// parseTable parses table rows under a header line. Row values are
// assigned positionally to the header keys; a row may have fewer cells
// than headers, and extra cells are ignored unless Strict.
func (p *Parser) parseTable(headers []Token) (*Node, error) {
	var rows []*Node
	err := p.eachRow(func(row []Token) error {
		if p.opts.Strict && len(row) > len(headers) {
			return &ParseError{
				Message: fmt.Sprintf("table row has %d cells but only %d headers", len(row), len(headers)),
				Pos:     row[0].Pos,
			}
		}
		obj := ObjectNode()
		seen := map[string]int{}
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			v, err := p.convertLiteral(cell)
			if err != nil {
				return err
			}
			prop := PropertyNode(headers[i].Value, LiteralNode(v, cell.Pos), cell.Pos)
			if err := p.addChild(obj, prop, seen); err != nil {
				return err
			}
		}
		rows = append(rows, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ArrayNode(rows...), nil
}

// tailValue converts a key line's tail when no richer block follows:
// an inline record, a single literal, or a scalar array.
func (p *Parser) tailValue(tail []Token) (*Node, error) {
	if p.hasInlineColon(tail) {
		return p.inlineRecord(tail)
	}
	if len(tail) == 1 {
		v, err := p.convertLiteral(tail[0])
		if err != nil {
			return nil, err
		}
		return LiteralNode(v, tail[0].Pos), nil
	}
	elems, err := p.literalNodes(tail)
	if err != nil {
		return nil, err
	}
	return ArrayNode(elems...), nil
}

// parseBlock parses an indented block whose INDENT is already consumed.
// An identifier-led first line makes the block a nested object; any
// other first line makes it an array with one element per line, where
// each row independently reads as a record or a scalar.
func (p *Parser) parseBlock(depth int) (*Node, error) {
	p.skipBlank()
	tok := p.stream.Peek()

	if tok.Type == TokenDedent {
		p.stream.Advance()
		return ObjectNode(), nil
	}

	if tok.Type == TokenIdent && !p.colonFollows(tok, p.stream.PeekN(1)) {
		return p.parseObjectBlock(depth)
	}

	var elems []*Node
	err := p.eachRow(func(row []Token) error {
		elem, err := p.rowNode(row)
		if err != nil {
			return err
		}
		elems = append(elems, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ArrayNode(elems...), nil
}

// parseObjectBlock parses property lines until the matching DEDENT,
// tracking seen keys for the duplicate-key policy.
func (p *Parser) parseObjectBlock(depth int) (*Node, error) {
	obj := ObjectNode()
	seen := map[string]int{}

	for {
		p.skipBlank()
		tok := p.stream.Peek()
		switch tok.Type {
		case TokenDedent:
			p.stream.Advance()
			return obj, nil
		case TokenEOF:
			return obj, nil
		case TokenIdent:
			if p.colonFollows(tok, p.stream.PeekN(1)) {
				// Inline key:value pairs contribute plain properties.
				rec, err := p.parseInlineLine()
				if err != nil {
					return nil, err
				}
				for _, prop := range rec.Children {
					if err := p.addChild(obj, prop, seen); err != nil {
						return nil, err
					}
				}
				continue
			}
			prop, err := p.parseKeyLine(depth)
			if err != nil {
				return nil, err
			}
			if err := p.addChild(obj, prop, seen); err != nil {
				return nil, err
			}
		default:
			return nil, &ParseError{
				Message: fmt.Sprintf("expected key, got %s", tok.Type),
				Pos:     tok.Pos,
			}
		}
	}
}

// parseInlineLine parses a whole `key:value key:value` line as one
// record unit.
func (p *Parser) parseInlineLine() (*Node, error) {
	return p.inlineRecord(p.collectTail())
}

// inlineRecord converts `key:value` token triples into an object node.
func (p *Parser) inlineRecord(tokens []Token) (*Node, error) {
	obj := ObjectNode()
	seen := map[string]int{}

	for i := 0; i < len(tokens); i += 3 {
		k := tokens[i]
		if k.Type != TokenIdent ||
			i+1 >= len(tokens) || tokens[i+1].Type != TokenColon ||
			i+2 >= len(tokens) {
			return nil, &ParseError{Message: "malformed inline-object row", Pos: k.Pos}
		}
		v, err := p.convertLiteral(tokens[i+2])
		if err != nil {
			return nil, err
		}
		prop := PropertyNode(k.Value, LiteralNode(v, tokens[i+2].Pos), k.Pos)
		if err := p.addChild(obj, prop, seen); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// rowNode converts one array-block row by its own shape: an
// inline-colon row becomes a record, anything else a scalar or nested
// scalar array. Mixed arrays decode row by row.
func (p *Parser) rowNode(row []Token) (*Node, error) {
	if p.hasInlineColon(row) {
		return p.inlineRecord(row)
	}
	return p.rowElement(row)
}

// rowElement converts one array-block row: a single literal, or a
// nested scalar array for a row of several literals.
func (p *Parser) rowElement(row []Token) (*Node, error) {
	if len(row) == 1 {
		v, err := p.convertLiteral(row[0])
		if err != nil {
			return nil, err
		}
		return LiteralNode(v, row[0].Pos), nil
	}
	elems, err := p.literalNodes(row)
	if err != nil {
		return nil, err
	}
	return ArrayNode(elems...), nil
}

// literalNodes converts a token run into literal nodes.
func (p *Parser) literalNodes(tokens []Token) ([]*Node, error) {
	elems := make([]*Node, 0, len(tokens))
	for _, tok := range tokens {
		v, err := p.convertLiteral(tok)
		if err != nil {
			return nil, err
		}
		elems = append(elems, LiteralNode(v, tok.Pos))
	}
	return elems, nil
}

// addChild appends a node to an object or root, enforcing the
// duplicate-key policy for properties within one block.
func (p *Parser) addChild(parent *Node, child *Node, seen map[string]int) error {
	if child.Kind != NodeProperty && child.Kind != NodeAnchorDef {
		parent.Children = append(parent.Children, child)
		return nil
	}
	if idx, ok := seen[child.Key]; ok {
		if !p.opts.AllowDuplicateKeys {
			return &ParseError{
				Message: fmt.Sprintf("duplicate key %q", child.Key),
				Pos:     child.Pos,
			}
		}
		parent.Children[idx] = child // last wins
		return nil
	}
	seen[child.Key] = len(parent.Children)
	parent.Children = append(parent.Children, child)
	return nil
}

// eachRow iterates the flat rows of an indented block until its DEDENT.
// Rows never add nesting depth.
func (p *Parser) eachRow(fn func(row []Token) error) error {
	for {
		p.skipBlank()
		tok := p.stream.Peek()
		switch tok.Type {
		case TokenDedent:
			p.stream.Advance()
			return nil
		case TokenEOF:
			return nil
		case TokenIndent:
			return &ParseError{Message: "unexpected indent", Pos: tok.Pos}
		}
		if err := fn(p.collectTail()); err != nil {
			return err
		}
	}
}

// collectTail consumes the remaining tokens on the current logical line.
func (p *Parser) collectTail() []Token {
	var tail []Token
	for {
		switch p.stream.Peek().Type {
		case TokenNewline, TokenIndent, TokenDedent, TokenEOF:
			return tail
		}
		tail = append(tail, p.stream.Advance())
	}
}

// blockFollows reports whether the current line is followed, after
// blank lines, by an INDENT, consuming the INDENT when it is.
func (p *Parser) blockFollows() bool {
	save := p.stream.Position()
	for p.stream.Peek().Type == TokenNewline {
		p.stream.Advance()
	}
	if p.stream.Match(TokenIndent) {
		return true
	}
	p.stream.Reset(save)
	return false
}

// skipBlank consumes newline tokens.
func (p *Parser) skipBlank() {
	for p.stream.Peek().Type == TokenNewline {
		p.stream.Advance()
	}
}

// hasInlineColon reports whether any tail token is immediately followed
// by a colon, the inline key:value shape.
func (p *Parser) hasInlineColon(tail []Token) bool {
	for i := 1; i < len(tail); i++ {
		if tail[i].Type == TokenColon && tail[i-1].Type == TokenIdent &&
			p.colonFollows(tail[i-1], tail[i]) {
			return true
		}
	}
	return false
}

// colonFollows reports whether b is a colon immediately adjacent to a.
func (p *Parser) colonFollows(a, b Token) bool {
	return b.Type == TokenColon && b.Pos.Offset == a.Pos.Offset+len(a.Value)
}

// allIdents reports whether every token is an identifier, the candidate
// table-header shape.
func allIdents(tokens []Token) bool {
	for _, tok := range tokens {
		if tok.Type != TokenIdent {
			return false
		}
	}
	return true
}

// dateFormats are the accepted date literal layouts, most specific first.
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// convertLiteral resolves a literal token into a Value. This is where
// an identifier that was not consumed as a key becomes a plain string.
func (p *Parser) convertLiteral(tok Token) (*Value, error) {
	var v *Value

	switch tok.Type {
	case TokenNull:
		v = Null()
	case TokenBool:
		v = Bool(tok.Value == "true")
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &ParseError{
				Message: fmt.Sprintf("invalid number literal %q", tok.Value),
				Pos:     tok.Pos,
			}
		}
		v = Num(f)
	case TokenString, TokenIdent:
		v = Str(tok.Value)
	case TokenDate:
		t, err := parseDate(tok.Value)
		if err != nil {
			return nil, &ParseError{
				Message: fmt.Sprintf("invalid date literal %q", tok.Value),
				Pos:     tok.Pos,
			}
		}
		v = Date(t)
	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("unexpected token %s", tok.Type),
			Pos:     tok.Pos,
		}
	}

	v.SetPos(tok.Pos)
	return v, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, format := range dateFormats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
