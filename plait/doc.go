// Package plait implements PLAIT, a compact indentation-structured
// data-interchange format.
//
// PLAIT encodes the JSON value model (null, booleans, numbers, strings,
// arrays, keyed records) plus dates and raw bytes, without bracket
// delimiters: structure is inferred from 2-space indentation and from
// the shape of each line.
//
//	name John
//	age 30
//	address
//	  city NYC
//	  zip "10001"
//	tags red green blue
//	users name  age
//	  Alice 25
//	  Bob   30
//
// # Syntax
//
// Scalars:    bare_word, "quoted string", 42, 3.14, true, null,
//             2025-01-02T15:04:05Z
// Record:     key value, one property per line; nested records indent
// Array:      space-separated scalars on one line, or one element per line
// Table:      header line of column names, one aligned row per record
// Inline:     key:value key:value single-line record form
// Streaming:  |chunk-id| delimits independently parsed chunks
//
// # Pipeline
//
// Decoding runs text -> tokens -> AST -> value: Lexer resolves
// indentation into INDENT/DEDENT tokens, Parser disambiguates line
// shapes with bounded lookahead, Evaluator produces the final Value.
// Encoding is an independent pipeline that walks a Value and chooses
// among scalar, array, inline-record, and table renderings.
//
// StreamParser feeds the same pipeline with chunk-delimited text
// arriving over time, emitting one value per completed chunk in
// arrival order.
package plait
