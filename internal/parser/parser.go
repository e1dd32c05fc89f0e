// Package parser turns one shell line into an ast.Statement.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/leengari/primdb/internal/parser/ast"
	"github.com/leengari/primdb/internal/parser/lexer"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
)

// UnknownCommandError names a command word the shell does not know.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// UsageError reports a known command with malformed arguments.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s (usage: %s)", e.Reason, Usage[e.Command])
}

// Usage is the syntax of every command, keyed by command word.
var Usage = map[string]string{
	"create_table": "create_table <name> <column:type>...",
	"drop_table":   "drop_table <name>",
	"list_tables":  "list_tables",
	"info":         "info <name>",
	"insert":       "insert into <name> values (<value>, ...)",
	"select":       "select from <name> [where <column> = <value>]",
	"update":       "update <name> set <column> = <value> where <column> = <value>",
	"delete":       "delete from <name> where <column> = <value>",
	"help":         "help",
	"exit":         "exit",
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
	command string
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

// ParseLine tokenizes and parses a single command line.
func ParseLine(line string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(line)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) Parse() (ast.Statement, error) {
	if p.curTok.Type == lexer.EOF {
		return nil, ErrEmptyCommand
	}
	if p.curTok.Type != lexer.WORD {
		return nil, &UnknownCommandError{Command: p.curTok.Literal}
	}

	p.command = strings.ToLower(p.curTok.Literal)
	if _, ok := Usage[p.command]; !ok {
		return nil, &UnknownCommandError{Command: p.curTok.Literal}
	}
	p.nextToken()

	var (
		stmt ast.Statement
		err  error
	)
	switch p.command {
	case "create_table":
		stmt, err = p.parseCreateTable()
	case "drop_table":
		stmt, err = p.parseTableOnly(func(t string) ast.Statement { return &ast.DropTableStatement{Table: t} },
			"expected exactly one table name")
	case "info":
		stmt, err = p.parseTableOnly(func(t string) ast.Statement { return &ast.InfoStatement{Table: t} },
			"expected exactly one table name")
	case "list_tables":
		stmt = &ast.ListTablesStatement{}
	case "insert":
		stmt, err = p.parseInsert()
	case "select":
		stmt, err = p.parseSelect()
	case "update":
		stmt, err = p.parseUpdate()
	case "delete":
		stmt, err = p.parseDelete()
	case "help":
		stmt = &ast.HelpStatement{}
	case "exit":
		stmt = &ast.ExitStatement{}
	}
	if err != nil {
		return nil, err
	}

	if err := p.finish(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseCreateTable() (*ast.CreateTableStatement, error) {
	var args []string
	for p.curTok.Type == lexer.WORD || p.curTok.Type == lexer.STRING {
		args = append(args, p.curTok.Literal)
		p.nextToken()
	}
	if len(args) < 2 {
		return nil, p.usage("need a table name and at least one column")
	}
	if err := p.checkName(args[0], "table"); err != nil {
		return nil, err
	}

	// Only the name part is checked here; the table engine reports
	// malformed specs and unsupported types.
	for _, spec := range args[1:] {
		if name, _, ok := strings.Cut(spec, ":"); ok && name != "" {
			if err := p.checkName(name, "column"); err != nil {
				return nil, err
			}
		}
	}
	return &ast.CreateTableStatement{Table: args[0], Columns: args[1:]}, nil
}

func (p *Parser) parseTableOnly(build func(table string) ast.Statement, reason string) (ast.Statement, error) {
	var args []string
	for p.curTok.Type == lexer.WORD || p.curTok.Type == lexer.STRING {
		args = append(args, p.curTok.Literal)
		p.nextToken()
	}
	if len(args) != 1 {
		return nil, p.usage(reason)
	}
	if err := p.checkName(args[0], "table"); err != nil {
		return nil, err
	}
	return build(args[0]), nil
}

func (p *Parser) parseInsert() (*ast.InsertStatement, error) {
	stmt := &ast.InsertStatement{}

	if err := p.expectKeyword("into"); err != nil {
		return nil, err
	}

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if err := p.expectKeyword("values"); err != nil {
		return nil, err
	}

	if p.curTok.Type != lexer.PAREN_OPEN {
		return nil, p.usage(fmt.Sprintf("expected ( after values, got %s", describe(p.curTok)))
	}
	p.nextToken()

	values := []string{}
	if p.curTok.Type != lexer.PAREN_CLOSE {
		for {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			values = append(values, v)

			if p.curTok.Type == lexer.COMMA {
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.curTok.Type != lexer.PAREN_CLOSE {
		return nil, p.usage(fmt.Sprintf("expected , or ) in values, got %s", describe(p.curTok)))
	}
	p.nextToken()

	stmt.Values = values
	return stmt, nil
}

func (p *Parser) parseSelect() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	// WHERE (Optional)
	if p.curTok.Is("where") {
		p.nextToken()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = &cond
	}

	return stmt, nil
}

func (p *Parser) parseUpdate() (*ast.UpdateStatement, error) {
	stmt := &ast.UpdateStatement{}

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if err := p.expectKeyword("set"); err != nil {
		return nil, err
	}
	if stmt.Set, err = p.parseCondition(); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	if stmt.Where, err = p.parseCondition(); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseDelete() (*ast.DeleteStatement, error) {
	stmt := &ast.DeleteStatement{}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}

	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if err := p.expectKeyword("where"); err != nil {
		return nil, err
	}
	if stmt.Where, err = p.parseCondition(); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseCondition() (ast.Condition, error) {
	if p.curTok.Type != lexer.WORD {
		return ast.Condition{}, p.usage(fmt.Sprintf("expected column name, got %s", describe(p.curTok)))
	}
	col := p.curTok.Literal
	p.nextToken()

	if p.curTok.Type != lexer.EQUALS {
		return ast.Condition{}, p.usage(fmt.Sprintf("expected = after %s, got %s", col, describe(p.curTok)))
	}
	p.nextToken()

	val, err := p.parseValue()
	if err != nil {
		return ast.Condition{}, err
	}
	return ast.Condition{Column: col, Value: val}, nil
}

func (p *Parser) parseValue() (string, error) {
	if p.curTok.Type != lexer.WORD && p.curTok.Type != lexer.STRING {
		return "", p.usage(fmt.Sprintf("expected value, got %s", describe(p.curTok)))
	}
	v := p.curTok.Literal
	p.nextToken()
	return v, nil
}

func (p *Parser) parseTableName() (string, error) {
	if p.curTok.Type != lexer.WORD && p.curTok.Type != lexer.STRING {
		return "", p.usage(fmt.Sprintf("expected table name, got %s", describe(p.curTok)))
	}
	name := p.curTok.Literal
	if err := p.checkName(name, "table"); err != nil {
		return "", err
	}
	p.nextToken()
	return name, nil
}

func (p *Parser) expectKeyword(keyword string) error {
	if !p.curTok.Is(keyword) {
		return p.usage(fmt.Sprintf("expected %s, got %s", keyword, describe(p.curTok)))
	}
	p.nextToken()
	return nil
}

// finish accepts an optional trailing semicolon and nothing after it.
func (p *Parser) finish() error {
	if p.curTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	if p.curTok.Type != lexer.EOF {
		return p.usage(fmt.Sprintf("unexpected %s after command", describe(p.curTok)))
	}
	return nil
}

func (p *Parser) checkName(name, what string) error {
	if !identifierRe.MatchString(name) {
		return p.usage(fmt.Sprintf("invalid %s name %q: use letters, digits and underscores", what, name))
	}
	return nil
}

func (p *Parser) usage(reason string) *UsageError {
	return &UsageError{Command: p.command, Reason: reason}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.STRING:
		return fmt.Sprintf("'%s'", tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}
