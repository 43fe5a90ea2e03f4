/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */

// Package compile implements the text compiler and decompiler for the
// crush.Map authoring format (spec §4.5, §6). Grounded on
// original_source/crushtool.cc's grammar (device/type/bucket/rule forms,
// `#` end-of-line comments) but re-architected per spec §9's redesign
// flags: parsing threads an explicit Context value instead of the
// original's process-wide name tables, and failures are returned as
// structured *cos.ErrParse values instead of aborting the process.
package compile

import "strings"

// Token is one lexical unit together with the 1-based source line it
// came from, so every later parse error can be rendered
// "<file>:<line>: <message>" (spec §7).
type Token struct {
	Text string
	Line int
}

// Lex splits source text into whitespace-separated tokens, stripping
// "#"-to-end-of-line comments exactly as original_source/crushtool.cc's
// compile_crush_file does. "{" and "}" are always their own tokens even
// when not separated from neighboring text by whitespace, since the
// authoring format in practice always writes them as "name {" / "}" on
// their own line, but a defensive split keeps the lexer independent of
// that convention.
func Lex(src string) []Token {
	var toks []Token
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lineNo := i + 1
		if n := strings.IndexByte(line, '#'); n >= 0 {
			line = line[:n]
		}
		for _, word := range splitBraces(line) {
			if word == "" {
				continue
			}
			toks = append(toks, Token{Text: word, Line: lineNo})
		}
	}
	return toks
}

// splitBraces breaks a line into whitespace-separated fields, further
// splitting any field that has a literal '{' or '}' stuck to other
// characters into separate tokens.
func splitBraces(line string) []string {
	var out []string
	for _, field := range strings.Fields(line) {
		start := 0
		for i := 0; i < len(field); i++ {
			if field[i] == '{' || field[i] == '}' {
				if i > start {
					out = append(out, field[start:i])
				}
				out = append(out, field[i:i+1])
				start = i + 1
			}
		}
		if start < len(field) {
			out = append(out, field[start:])
		}
	}
	return out
}
