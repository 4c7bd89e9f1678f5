package plait

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNull   // null
	TokenBool   // true, false
	TokenNumber // 123, -4.5, 6e7
	TokenString // "quoted string"
	TokenDate   // 2025-01-02, 2025-01-02T15:04:05Z
	TokenIdent  // bare word; key or scalar string, decided by the parser

	// Structural
	TokenColon // : (inline-record separator)
	TokenPipe  // | (stream chunk delimiter)

	// Block structure
	TokenNewline // end of a physical line
	TokenIndent  // indentation increased
	TokenDedent  // indentation decreased
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenNull:
		return "NULL"
	case TokenBool:
		return "BOOL"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenDate:
		return "DATE"
	case TokenIdent:
		return "IDENT"
	case TokenColon:
		return ":"
	case TokenPipe:
		return "|"
	case TokenNewline:
		return "NEWLINE"
	case TokenIndent:
		return "INDENT"
	case TokenDedent:
		return "DEDENT"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token. Raw preserves the original quoted
// source text (with escapes) for diagnostics.
type Token struct {
	Type  TokenType
	Value string
	Raw   string
	Pos   Position
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// LexError represents a lexing error with location.
type LexError struct {
	Message string
	Pos     Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// datePattern matches ISO-8601 date and date-time literals.
var datePattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}(:?\d{2})?)?)?$`)

// numberPattern matches integer, float, and scientific numeric literals.
var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)

// Lexer tokenizes PLAIT text. Indentation is resolved into explicit
// INDENT/DEDENT tokens via a stack of indent widths; pending dedents
// are emitted one per token-fetch call.
type Lexer struct {
	input          string
	pos            int // Current position in input
	line           int // Current line number (1-based)
	col            int // Current column number (1-based)
	indents        []int
	pendingDedents int
	atLineStart    bool
	err            error
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:       input,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize returns all tokens from the input. Comments are filtered
// out; the parser never sees them.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize returns all tokens from the input.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	if l.err != nil {
		return tokens, l.err
	}
	return tokens, nil
}

// nextToken returns the next token.
func (l *Lexer) nextToken() Token {
	if l.pendingDedents > 0 {
		l.pendingDedents--
		l.indents = l.indents[:len(l.indents)-1]
		return Token{Type: TokenDedent, Pos: l.currentPos()}
	}

	if l.atLineStart {
		if tok, ok := l.scanIndentation(); ok {
			return tok
		}
	}

	l.skipInlineSpace()

	if l.pos >= len(l.input) {
		// Synthesize one dedent per remaining stack entry above base.
		if len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			return Token{Type: TokenDedent, Pos: l.currentPos()}
		}
		return Token{Type: TokenEOF, Pos: l.currentPos()}
	}

	startPos := l.currentPos()
	ch := l.peek()

	switch {
	case ch == '\n':
		l.advance()
		l.atLineStart = true
		return Token{Type: TokenNewline, Pos: startPos}

	case ch == '#':
		for l.pos < len(l.input) && l.peek() != '\n' {
			l.advance()
		}
		return l.nextToken()

	case ch == ':':
		l.advance()
		return Token{Type: TokenColon, Value: ":", Pos: startPos}

	case ch == '|':
		l.advance()
		return Token{Type: TokenPipe, Value: "|", Pos: startPos}

	case ch == '"':
		return l.scanString()

	case isDigit(ch), ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
		return l.scanNumber()

	case isWordChar(ch):
		return l.scanWord()

	default:
		l.err = &LexError{Message: fmt.Sprintf("unexpected character %q", ch), Pos: startPos}
		l.advance()
		return Token{Type: TokenError, Value: string(ch), Pos: startPos}
	}
}

// scanIndentation handles the start of a physical line. Blank lines,
// comment-only lines, and end-of-input emit no indentation token.
func (l *Lexer) scanIndentation() (Token, bool) {
	l.atLineStart = false

	startPos := l.currentPos()
	w := 0
	for l.pos < len(l.input) && l.peek() == ' ' {
		l.advance()
		w++
	}

	if l.pos >= len(l.input) {
		return Token{}, false
	}
	switch l.peek() {
	case '\n', '\r', '#':
		return Token{}, false
	}

	top := l.indents[len(l.indents)-1]
	switch {
	case w > top:
		l.indents = append(l.indents, w)
		return Token{Type: TokenIndent, Pos: startPos}, true
	case w < top:
		// Pop every entry greater than w; one dedent is emitted per
		// token-fetch call, so the rest become pending.
		count := 0
		for i := len(l.indents) - 1; i > 0 && l.indents[i] > w; i-- {
			count++
		}
		l.indents = l.indents[:len(l.indents)-1]
		l.pendingDedents = count - 1
		return Token{Type: TokenDedent, Pos: startPos}, true
	default:
		return Token{}, false
	}
}

// scanString scans a quoted string with \n \t \r \" \\ escapes.
// Reaching a raw newline or end-of-input unterminated is an error.
func (l *Lexer) scanString() Token {
	startPos := l.currentPos()
	start := l.pos
	l.advance() // consume opening "

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) || l.peek() == '\n' {
			l.err = &LexError{Message: "unterminated string", Pos: startPos}
			return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
		}

		ch := l.peek()
		if ch == '"' {
			l.advance()
			break
		}

		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) || l.peek() == '\n' {
				l.err = &LexError{Message: "unterminated escape", Pos: l.currentPos()}
				return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
			}
			escaped := l.peek()
			l.advance()
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(escaped)
			}
		} else {
			sb.WriteByte(ch)
			l.advance()
		}
	}

	return Token{
		Type:  TokenString,
		Value: sb.String(),
		Raw:   l.input[start:l.pos],
		Pos:   startPos,
	}
}

// scanNumber scans a numeric literal. A 4-digit year followed by '-'
// switches to date scanning; a number immediately followed by a word
// character reinterprets the whole run as a string.
func (l *Lexer) scanNumber() Token {
	startPos := l.currentPos()
	start := l.pos

	neg := l.peek() == '-'
	if neg {
		l.advance()
	}

	intDigits := 0
	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
		intDigits++
	}

	if !neg && intDigits == 4 && l.pos < len(l.input) && l.peek() == '-' {
		return l.scanDate(start, startPos)
	}

	// Decimal part
	if l.pos < len(l.input) && l.peek() == '.' {
		next := l.pos + 1
		if next < len(l.input) && isDigit(l.input[next]) {
			l.advance()
			for l.pos < len(l.input) && isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	// Exponent part
	if l.pos < len(l.input) && (l.peek() == 'e' || l.peek() == 'E') {
		mark := l.pos
		l.advance()
		if l.pos < len(l.input) && (l.peek() == '+' || l.peek() == '-') {
			l.advance()
		}
		expDigits := 0
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
			expDigits++
		}
		if expDigits == 0 {
			// Not an exponent after all; fall back to the word rule.
			l.pos = mark
		}
	}

	// A recognized number immediately followed by a word character is a
	// plain string, so 123abc scans as one STRING token.
	if l.pos < len(l.input) && isWordChar(l.peek()) {
		return l.finishWordAsString(start, startPos)
	}

	value := l.input[start:l.pos]
	if !numberPattern.MatchString(value) {
		return Token{Type: TokenString, Value: value, Pos: startPos}
	}
	return Token{Type: TokenNumber, Value: value, Pos: startPos}
}

// scanDate continues scanning a date literal that started with digits.
func (l *Lexer) scanDate(start int, startPos Position) Token {
	for l.pos < len(l.input) && isDateChar(l.peek()) {
		l.advance()
	}

	if l.pos < len(l.input) && isWordChar(l.peek()) {
		return l.finishWordAsString(start, startPos)
	}

	value := l.input[start:l.pos]
	if datePattern.MatchString(value) {
		return Token{Type: TokenDate, Value: value, Pos: startPos}
	}
	return Token{Type: TokenString, Value: value, Pos: startPos}
}

// finishWordAsString consumes trailing word characters and returns the
// whole run as a string token.
func (l *Lexer) finishWordAsString(start int, startPos Position) Token {
	for l.pos < len(l.input) && isWordChar(l.peek()) {
		l.advance()
	}
	return Token{Type: TokenString, Value: l.input[start:l.pos], Pos: startPos}
}

// scanWord scans a bare word and classifies it. The parser, not the
// lexer, decides whether an IDENT is a key or a scalar string.
func (l *Lexer) scanWord() Token {
	startPos := l.currentPos()
	start := l.pos

	for l.pos < len(l.input) && isWordChar(l.peek()) {
		l.advance()
	}

	value := l.input[start:l.pos]
	switch value {
	case "null":
		return Token{Type: TokenNull, Value: value, Pos: startPos}
	case "true", "false":
		return Token{Type: TokenBool, Value: value, Pos: startPos}
	}
	if datePattern.MatchString(value) {
		return Token{Type: TokenDate, Value: value, Pos: startPos}
	}
	return Token{Type: TokenIdent, Value: value, Pos: startPos}
}

// skipInlineSpace skips spaces and tabs mid-line; they are
// insignificant separators outside indentation.
func (l *Lexer) skipInlineSpace() {
	for l.pos < len(l.input) {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isWordChar reports whether ch can appear in a bare word: letters,
// digits, and _ - . / @ +. Multi-byte UTF-8 sequences count as letters.
func isWordChar(ch byte) bool {
	if isDigit(ch) || ch >= utf8.RuneSelf {
		return true
	}
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		return true
	}
	switch ch {
	case '_', '-', '.', '/', '@', '+':
		return true
	}
	return false
}

func isDateChar(ch byte) bool {
	return isDigit(ch) || ch == '-' || ch == ':' || ch == 'T' || ch == 'Z' || ch == '+' || ch == '.'
}

// TokenStream provides a cursor over tokens for the parser.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

// PeekN returns the token N positions ahead.
func (ts *TokenStream) PeekN(n int) Token {
	idx := ts.pos + n
	if idx >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[idx]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Match returns true and advances if the current token matches.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd returns true if at end of stream.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}

// Position returns the current cursor position in the stream.
func (ts *TokenStream) Position() int {
	return ts.pos
}

// Reset resets to a previous cursor position.
func (ts *TokenStream) Reset(pos int) {
	ts.pos = pos
}
