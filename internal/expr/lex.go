package expr

import (
	"fmt"
	"strings"

	"github.com/dustlang/dustrun/internal/faults"
)

// TokKind discriminates a lexical token.
type TokKind int

const (
	TokEOF TokKind = iota
	TokIdent
	TokInt
	TokString
	TokLParen
	TokRParen
	TokComma
	TokDot
	TokLBrace
	TokRBrace
	TokColon
)

// Tok is one lexed token.
type Tok struct {
	Kind   TokKind
	Text   string
	IntVal int64
}

func isIdentStart(r rune) bool {
	return r == '_' || r == 'Φ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// lex tokenizes src into the full token stream, terminated by a single
// TokEOF. It raises Runtime faults for unterminated strings, unsupported
// escapes, invalid integer literals, and unexpected characters.
func lex(src string) ([]Tok, error) {
	runes := []rune(src)
	n := len(runes)
	i := 0
	var toks []Tok

	for i < n {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '(':
			toks = append(toks, Tok{Kind: TokLParen})
			i++
		case r == ')':
			toks = append(toks, Tok{Kind: TokRParen})
			i++
		case r == ',':
			toks = append(toks, Tok{Kind: TokComma})
			i++
		case r == '.':
			toks = append(toks, Tok{Kind: TokDot})
			i++
		case r == '{':
			toks = append(toks, Tok{Kind: TokLBrace})
			i++
		case r == '}':
			toks = append(toks, Tok{Kind: TokRBrace})
			i++
		case r == ':':
			toks = append(toks, Tok{Kind: TokColon})
			i++
		case r == '"':
			tok, next, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case r == '-' && i+1 < n && isDigit(runes[i+1]):
			tok, next, err := lexInt(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isDigit(r):
			tok, next, err := lexInt(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case isIdentStart(r):
			j := i + 1
			for j < n && isIdentCont(runes[j]) {
				j++
			}
			toks = append(toks, Tok{Kind: TokIdent, Text: string(runes[i:j])})
			i = j
		default:
			return nil, faults.NewRuntime("unexpected character %q", string(r))
		}
	}
	toks = append(toks, Tok{Kind: TokEOF})
	return toks, nil
}

func lexInt(runes []rune, start int) (Tok, int, error) {
	i := start
	if runes[i] == '-' {
		i++
	}
	j := i
	for j < len(runes) && isDigit(runes[j]) {
		j++
	}
	if j == i {
		return Tok{}, 0, faults.NewRuntime("invalid integer literal")
	}
	text := string(runes[start:j])
	var n int64
	_, err := fmt.Sscanf(text, "%d", &n)
	if err != nil {
		return Tok{}, 0, faults.NewRuntime("invalid integer literal: %s", text)
	}
	return Tok{Kind: TokInt, Text: text, IntVal: n}, j, nil
}

func lexString(runes []rune, start int) (Tok, int, error) {
	i := start + 1
	var sb strings.Builder
	for {
		if i >= len(runes) {
			return Tok{}, 0, faults.NewRuntime("unterminated string literal")
		}
		r := runes[i]
		if r == '"' {
			i++
			return Tok{Kind: TokString, Text: sb.String()}, i, nil
		}
		if r == '\\' {
			if i+1 >= len(runes) {
				return Tok{}, 0, faults.NewRuntime("unterminated string literal")
			}
			switch runes[i+1] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return Tok{}, 0, faults.NewRuntime("unsupported escape: \\%c", runes[i+1])
			}
			i += 2
			continue
		}
		sb.WriteRune(r)
		i++
	}
}
