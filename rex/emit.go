package rex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Shell is a closed enum of emission targets, per spec.md §4.7.
type Shell int

const (
	Bash Shell = iota
	Zsh
	Fish
	Cmd
	PowerShell
)

func (s Shell) String() string {
	switch s {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	case Fish:
		return "fish"
	case Cmd:
		return "cmd"
	case PowerShell:
		return "powershell"
	default:
		return "unknown"
	}
}

// ParseShell parses a shell name (as typically given on a command
// line) into a Shell. Matching is case-insensitive.
func ParseShell(name string) (Shell, error) {
	switch strings.ToLower(name) {
	case "bash":
		return Bash, nil
	case "zsh":
		return Zsh, nil
	case "fish":
		return Fish, nil
	case "cmd", "cmd.exe":
		return Cmd, nil
	case "powershell", "pwsh":
		return PowerShell, nil
	default:
		return 0, fmt.Errorf("rex: unknown shell %q", name)
	}
}

// emitter renders AST nodes to one target shell's syntax. Emission is
// pure text generation: no file or process I/O.
type emitter interface {
	setEnv(name, value string) string
	appendEnv(name, value, sep string) string
	prependEnv(name, value, sep string) string
	unsetEnv(name string) string
	alias(name, command string) string
	function(name, body string) string
	ifStart(cond Expr) string
	elseLine() string
	endIf() string
	comment(s string) string
}

func emitterFor(sh Shell) (emitter, error) {
	switch sh {
	case Bash, Zsh:
		return posixEmitter{}, nil
	case Fish:
		return fishEmitter{}, nil
	case Cmd:
		return cmdEmitter{}, nil
	case PowerShell:
		return powershellEmitter{}, nil
	default:
		return nil, fmt.Errorf("rex: emit: unknown shell %v", sh)
	}
}

// Emit renders script as a standalone script for sh, reproducing the
// interpreter's effect when the output is invoked by that shell.
func Emit(script *Script, sh Shell) (string, error) {
	e, err := emitterFor(sh)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := emitStmts(&b, e, script.Statements); err != nil {
		return "", err
	}
	return b.String(), nil
}

func emitStmts(b *strings.Builder, e emitter, stmts []Stmt) error {
	for _, s := range stmts {
		if err := emitStmt(b, e, s); err != nil {
			return err
		}
	}
	return nil
}

func emitStmt(b *strings.Builder, e emitter, s Stmt) error {
	switch st := s.(type) {
	case *SetEnv:
		b.WriteString(e.setEnv(st.Name, st.Value))
	case *AppendEnv:
		sep := st.Separator
		if sep == "" {
			sep = DefaultSeparator(st.Name)
		}
		b.WriteString(e.appendEnv(st.Name, st.Value, sep))
	case *PrependEnv:
		sep := st.Separator
		if sep == "" {
			sep = DefaultSeparator(st.Name)
		}
		b.WriteString(e.prependEnv(st.Name, st.Value, sep))
	case *UnsetEnv:
		b.WriteString(e.unsetEnv(st.Name))
	case *Alias:
		b.WriteString(e.alias(st.Name, st.Command))
	case *Function:
		b.WriteString(e.function(st.Name, st.Body))
	case *Source:
		b.WriteString(e.comment("source " + st.Path + " (inlined at interpretation time, not re-emitted)"))
	case *ShellCommand:
		b.WriteString(st.Command)
		b.WriteString("\n")
	case *If:
		b.WriteString(e.ifStart(st.Cond))
		if err := emitStmts(b, e, st.Then); err != nil {
			return err
		}
		if len(st.Else) > 0 {
			b.WriteString(e.elseLine())
			if err := emitStmts(b, e, st.Else); err != nil {
				return err
			}
		}
		b.WriteString(e.endIf())
	default:
		return fmt.Errorf("rex: emit: unhandled statement type %T", s)
	}
	return nil
}

// Fingerprint returns a cache key for emitting src to sh, per
// spec.md §4.7: "Rex artifacts... are cache candidates: key = hash of
// source text + target shell."
func Fingerprint(src string, sh Shell) string {
	h := sha256.New()
	h.Write([]byte(src))
	h.Write([]byte{0})
	h.Write([]byte(sh.String()))
	return hex.EncodeToString(h.Sum(nil))
}
