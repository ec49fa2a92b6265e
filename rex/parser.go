package rex

import (
	"fmt"
	"strings"
)

// ParserConfig selects the parser's tolerance for unrecognized lines,
// per spec.md §4.7: "strict mode aborts on unknown commands,
// permissive mode records them as comments."
type ParserConfig struct {
	// Strict, when true, returns an error on any line that isn't a
	// recognized keyword and AllowShellSyntax is false.
	Strict bool
	// AllowShellSyntax permits unrecognized lines as passthrough
	// ShellCommand statements, in both strict and permissive mode.
	AllowShellSyntax bool
}

// Parser turns rex source into a Script.
type Parser struct {
	cfg ParserConfig
	lex *Lexer
}

// NewParser constructs a Parser for src under cfg.
func NewParser(src string, cfg ParserConfig) *Parser {
	return &Parser{cfg: cfg, lex: NewLexer(src)}
}

// ParseError reports the offending line number, per spec.md §4.7.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rex: line %d: %s", e.Line, e.Message)
}

// Parse parses the Parser's source into a Script.
func (p *Parser) Parse() (*Script, error) {
	stmts, err := p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	if err := p.lex.Err(); err != nil {
		return nil, err
	}
	return &Script{Statements: stmts}, nil
}

// parseBlock parses statements until end of input or, when depth > 0,
// a line consisting solely of "}" that closes the enclosing block.
func (p *Parser) parseBlock(depth int) ([]Stmt, error) {
	var out []Stmt
	for {
		line, lineNo, ok := p.lex.Peek()
		if !ok {
			if depth > 0 {
				return nil, &ParseError{Line: p.lex.Pos(), Message: "unexpected end of input, expected }"}
			}
			return out, nil
		}
		if depth > 0 && strings.TrimSpace(line) == "}" {
			p.lex.Next()
			return out, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			continue
		}
		_ = lineNo
		out = append(out, stmt)
	}
}

// parseStatement parses and returns exactly one statement, or nil if
// the consumed line needs no AST node (an unknown command in
// permissive mode, which is dropped).
func (p *Parser) parseStatement() (Stmt, error) {
	line, lineNo, ok := p.lex.Next()
	if !ok {
		return nil, nil
	}
	trimmed := strings.TrimSpace(line)
	keyword, rest := splitKeyword(trimmed)

	switch keyword {
	case "setenv":
		name, value, err := splitNameValue(rest, lineNo)
		if err != nil {
			return nil, err
		}
		return &SetEnv{baseStmt{lineNo}, name, unquote(value)}, nil

	case "appendenv":
		name, value, sep, err := splitNameValueSep(rest, lineNo)
		if err != nil {
			return nil, err
		}
		return &AppendEnv{baseStmt{lineNo}, name, unquote(value), sep}, nil

	case "prependenv":
		name, value, sep, err := splitNameValueSep(rest, lineNo)
		if err != nil {
			return nil, err
		}
		return &PrependEnv{baseStmt{lineNo}, name, unquote(value), sep}, nil

	case "unsetenv":
		name := strings.TrimSpace(rest)
		if name == "" {
			return nil, &ParseError{Line: lineNo, Message: "unsetenv: missing NAME"}
		}
		return &UnsetEnv{baseStmt{lineNo}, name}, nil

	case "alias":
		name, cmd, err := splitAlias(rest, lineNo)
		if err != nil {
			return nil, err
		}
		return &Alias{baseStmt{lineNo}, name, cmd}, nil

	case "function":
		return p.parseFunction(rest, lineNo)

	case "source":
		path := strings.TrimSpace(rest)
		if path == "" {
			return nil, &ParseError{Line: lineNo, Message: "source: missing PATH"}
		}
		return &Source{baseStmt{lineNo}, unquote(path)}, nil

	case "if":
		return p.parseIf(rest, lineNo)

	default:
		if p.cfg.AllowShellSyntax {
			return &ShellCommand{baseStmt{lineNo}, trimmed}, nil
		}
		if p.cfg.Strict {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("unknown command %q", keyword)}
		}
		// Permissive: unknown lines are recorded as comments, i.e.
		// dropped from the AST entirely.
		return nil, nil
	}
}

// parseFunction captures the function body verbatim between the
// opening '{' (on the keyword's own line, or the next non-blank line)
// and its matching '}', tracking nested brace depth so a body
// containing its own blocks doesn't end prematurely.
func (p *Parser) parseFunction(rest string, startLine int) (Stmt, error) {
	rest = strings.TrimSpace(rest)
	name, brace, _ := strings.Cut(rest, "{")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ParseError{Line: startLine, Message: "function: missing NAME"}
	}
	if !strings.Contains(rest, "{") {
		return nil, &ParseError{Line: startLine, Message: "function: expected {"}
	}

	depth := 1
	var body []string
	body = append(body, brace)
	lineNo := startLine
	for depth > 0 {
		raw, ok := p.lex.RawLine(p.lex.Pos())
		if !ok {
			return nil, &ParseError{Line: lineNo, Message: "function: unterminated body, expected }"}
		}
		p.lex.SeekTo(p.lex.Pos() + 1)
		lineNo++
		depth += strings.Count(raw, "{") - strings.Count(raw, "}")
		if depth <= 0 {
			idx := strings.LastIndex(raw, "}")
			body = append(body, raw[:idx])
			break
		}
		body = append(body, raw)
	}
	return &Function{baseStmt{startLine}, name, strings.TrimSpace(strings.Join(body, "\n"))}, nil
}

// parseIf parses `CONDITION { THEN } [else { ELSE }]`, where CONDITION
// was already separated from the `if` keyword by splitKeyword.
func (p *Parser) parseIf(rest string, lineNo int) (Stmt, error) {
	condText, brace, found := strings.Cut(rest, "{")
	if !found {
		return nil, &ParseError{Line: lineNo, Message: "if: expected {"}
	}
	cond, err := parseExpr(strings.TrimSpace(condText))
	if err != nil {
		return nil, &ParseError{Line: lineNo, Message: err.Error()}
	}

	// Statements may not follow the opening brace on the same line
	// ("if X { setenv A B"); such a line is a parse error, so the
	// brace has to end the line.
	if strings.TrimSpace(brace) != "" {
		return nil, &ParseError{Line: lineNo, Message: "if: statements must start on their own line"}
	}

	thenStmts, err := p.parseBlock(1)
	if err != nil {
		return nil, err
	}

	elseStmts, err := p.parseElse()
	if err != nil {
		return nil, err
	}

	return &If{baseStmt{lineNo}, cond, thenStmts, elseStmts}, nil
}

func (p *Parser) parseElse() ([]Stmt, error) {
	line, lineNo, ok := p.lex.Peek()
	if !ok || strings.TrimSpace(line) != "else {" {
		return nil, nil
	}
	p.lex.Next()
	stmts, err := p.parseBlock(1)
	if err != nil {
		return nil, err
	}
	_ = lineNo
	return stmts, nil
}

// splitKeyword splits the first whitespace-delimited word from line.
func splitKeyword(line string) (keyword, rest string) {
	fields := strings.SplitN(line, " ", 2)
	keyword = fields[0]
	if len(fields) == 2 {
		rest = fields[1]
	}
	return strings.TrimSpace(keyword), rest
}

func splitNameValue(rest string, lineNo int) (name, value string, err error) {
	fields := strings.SplitN(strings.TrimSpace(rest), " ", 2)
	if len(fields) < 2 || fields[0] == "" {
		return "", "", &ParseError{Line: lineNo, Message: "expected NAME VALUE"}
	}
	return fields[0], strings.TrimSpace(fields[1]), nil
}

// splitNameValueSep parses "NAME VALUE [SEPARATOR]"; SEPARATOR is
// only recognized as a trailing single-character token.
func splitNameValueSep(rest string, lineNo int) (name, value, sep string, err error) {
	name, value, err = splitNameValue(rest, lineNo)
	if err != nil {
		return "", "", "", err
	}
	if !isQuoted(value) {
		if idx := strings.LastIndexByte(value, ' '); idx >= 0 {
			trailing := value[idx+1:]
			if len(trailing) == 1 {
				return name, strings.TrimSpace(value[:idx]), trailing, nil
			}
		}
	}
	return name, value, "", nil
}

func splitAlias(rest string, lineNo int) (name, cmd string, err error) {
	name, value, found := strings.Cut(rest, "=")
	if !found {
		return "", "", &ParseError{Line: lineNo, Message: "alias: expected NAME=COMMAND"}
	}
	return strings.TrimSpace(name), unquote(strings.TrimSpace(value)), nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '\'' && s[len(s)-1] == '\'' || s[0] == '"' && s[len(s)-1] == '"')
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// parseExpr parses the restricted condition grammar: NAME, !NAME,
// NAME == "value", NAME != "value".
func parseExpr(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty condition")
	}
	if strings.HasPrefix(s, "!") {
		inner, err := parseExpr(s[1:])
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	if idx := strings.Index(s, "!="); idx >= 0 {
		name := strings.TrimSpace(s[:idx])
		value := unquote(strings.TrimSpace(s[idx+2:]))
		return Not{Inner: Equals{Name: name, Value: value}}, nil
	}
	if idx := strings.Index(s, "=="); idx >= 0 {
		name := strings.TrimSpace(s[:idx])
		value := unquote(strings.TrimSpace(s[idx+2:]))
		return Equals{Name: name, Value: value}, nil
	}
	return Present{Name: s}, nil
}
