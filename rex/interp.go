package rex

import (
	"fmt"
	"os"
	"path/filepath"
)

// Interpreter executes a parsed Script against an Environment,
// tracking declared aliases and functions and the shell commands a
// script asked to run (collected, not executed — spec.md §4.8 owns
// actual process launching).
type Interpreter struct {
	Env       Environment
	Aliases   map[string]string
	Functions map[string]string
	// Commands accumulates ShellCommand text encountered during
	// interpretation, in order, for the caller to hand to the process
	// layer.
	Commands []string

	// ParserConfig is reused to parse any `source`d file.
	ParserConfig ParserConfig

	visited map[string]bool // source cycle protection
}

// NewInterpreter returns an Interpreter that mutates env in place.
func NewInterpreter(env Environment, cfg ParserConfig) *Interpreter {
	return &Interpreter{
		Env:          env,
		Aliases:      make(map[string]string),
		Functions:    make(map[string]string),
		ParserConfig: cfg,
		visited:      make(map[string]bool),
	}
}

// Run executes every statement in script in order.
func (in *Interpreter) Run(script *Script) error {
	return in.runStmts(script.Statements)
}

func (in *Interpreter) runStmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := in.runStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// expand substitutes $NAME/${NAME} references in s against the
// current environment, per spec.md §4.7's "variable expansion is
// applied to values if enabled".
func (in *Interpreter) expand(s string) string {
	return os.Expand(s, func(name string) string {
		v, _ := in.Env.Get(name)
		return v
	})
}

func (in *Interpreter) runStmt(s Stmt) error {
	switch st := s.(type) {
	case *SetEnv:
		in.Env.Set(st.Name, in.expand(st.Value))
	case *AppendEnv:
		in.Env.Append(st.Name, in.expand(st.Value), st.Separator)
	case *PrependEnv:
		in.Env.Prepend(st.Name, in.expand(st.Value), st.Separator)
	case *UnsetEnv:
		in.Env.Unset(st.Name)
	case *Alias:
		in.Aliases[st.Name] = in.expand(st.Command)
	case *Function:
		in.Functions[st.Name] = st.Body
	case *Source:
		return in.runSource(st)
	case *If:
		if st.Cond.eval(in.Env) {
			return in.runStmts(st.Then)
		}
		return in.runStmts(st.Else)
	case *ShellCommand:
		in.Commands = append(in.Commands, in.expand(st.Command))
	default:
		return fmt.Errorf("rex: interpreter: unhandled statement type %T", s)
	}
	return nil
}

// runSource reads and interprets the script at st.Path, expanding
// environment variable references rez typically stores paths with
// (e.g. "$FOO_ROOT/rex.source"), guarding against source cycles with a
// visited-path set.
func (in *Interpreter) runSource(st *Source) error {
	path := in.expand(st.Path)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if in.visited[abs] {
		return fmt.Errorf("rex: line %d: source cycle detected at %s", st.Line(), st.Path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rex: line %d: source %s: %w", st.Line(), st.Path, err)
	}
	in.visited[abs] = true
	defer delete(in.visited, abs)

	p := NewParser(string(data), in.ParserConfig)
	script, err := p.Parse()
	if err != nil {
		return fmt.Errorf("rex: line %d: source %s: %w", st.Line(), st.Path, err)
	}
	return in.runStmts(script.Statements)
}
