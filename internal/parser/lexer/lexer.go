package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	WORD   // users, name:str, 42, yes
	STRING // 'value' or "value"

	// Punctuation
	COMMA       // ,
	PAREN_OPEN  // (
	PAREN_CLOSE // )
	EQUALS      // =
	SEMICOLON   // ;
)

var tokenNames = map[TokenType]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "end of input",
	WORD:        "WORD",
	STRING:      "STRING",
	COMMA:       ",",
	PAREN_OPEN:  "(",
	PAREN_CLOSE: ")",
	EQUALS:      "=",
	SEMICOLON:   ";",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type    TokenType
	Literal string
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

// Is reports whether t is the bare word keyword, ignoring case. Keywords are
// contextual, so a quoted 'from' is never a keyword.
func (t Token) Is(keyword string) bool {
	return t.Type == WORD && strings.EqualFold(t.Literal, keyword)
}

// Lexer splits one command line into tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	col := l.position + 1

	var tok Token
	switch l.ch {
	case ',':
		tok = newToken(COMMA, l.ch, col)
	case '(':
		tok = newToken(PAREN_OPEN, l.ch, col)
	case ')':
		tok = newToken(PAREN_CLOSE, l.ch, col)
	case '=':
		tok = newToken(EQUALS, l.ch, col)
	case ';':
		tok = newToken(SEMICOLON, l.ch, col)
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			return Token{Type: ILLEGAL, Literal: lit, Column: col}
		}
		return Token{Type: STRING, Literal: lit, Column: col}
	case 0:
		return Token{Type: EOF, Column: col}
	default:
		return Token{Type: WORD, Literal: l.readWord(), Column: col}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readWord() string {
	position := l.position
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString consumes a quoted string and returns its contents without the
// quotes. ok is false when the closing quote is missing.
func (l *Lexer) readString(quote byte) (lit string, ok bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == quote || l.ch == 0 {
			break
		}
	}
	lit = l.input[position:l.position]
	if l.ch != quote {
		return lit, false
	}
	l.readChar()
	return lit, true
}

func newToken(tokenType TokenType, ch byte, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Column: col}
}

// isWordChar accepts everything except whitespace, quotes and punctuation,
// so specs like name:str and values like -5 or a@b.c are single words.
func isWordChar(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', ',', '(', ')', '=', ';', '\'', '"':
		return false
	}
	return true
}

// Tokenize lexes the whole input. The trailing EOF token is not included.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("unterminated string starting at column %d", tok.Column)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
