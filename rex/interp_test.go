package rex

import (
	"os"
	"path/filepath"
	"testing"
)

func mustParse(t *testing.T, src string, cfg ParserConfig) *Script {
	t.Helper()
	p := NewParser(src, cfg)
	script, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return script
}

func TestInterpreterSetAndUnset(t *testing.T) {
	env := NewMapEnvironment(nil)
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "setenv A 1\nunsetenv A\n", ParserConfig{})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := env.Get("A"); ok {
		t.Fatal("expected A to be unset")
	}
}

func TestInterpreterAppendDedupesAdjacent(t *testing.T) {
	env := NewMapEnvironment(map[string]string{"PATH": "/usr/bin"})
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "appendenv PATH /usr/bin\nappendenv PATH /opt/bin\n", ParserConfig{})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := env.Get("PATH")
	if got != "/usr/bin:/opt/bin" {
		t.Fatalf("PATH = %q", got)
	}
}

func TestInterpreterIfBranches(t *testing.T) {
	env := NewMapEnvironment(map[string]string{"FLAG": "1"})
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "if FLAG {\n  setenv A yes\n}\nelse {\n  setenv A no\n}\n", ParserConfig{})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v, _ := env.Get("A"); v != "yes" {
		t.Fatalf("A = %q, want yes", v)
	}
}

func TestInterpreterAliasAndFunctionRegistered(t *testing.T) {
	env := NewMapEnvironment(nil)
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "alias ll=\"ls -la\"\nfunction greet {\n  echo hi\n}\n", ParserConfig{AllowShellSyntax: true})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if in.Aliases["ll"] != "ls -la" {
		t.Fatalf("alias not registered: %+v", in.Aliases)
	}
	if in.Functions["greet"] != "echo hi" {
		t.Fatalf("function not registered: %+v", in.Functions)
	}
}

func TestInterpreterShellCommandCollected(t *testing.T) {
	env := NewMapEnvironment(nil)
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "ls -la\n", ParserConfig{AllowShellSyntax: true})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(in.Commands) != 1 || in.Commands[0] != "ls -la" {
		t.Fatalf("unexpected commands: %+v", in.Commands)
	}
}

func TestInterpreterSourceCyclesAreRejected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.rex")
	b := filepath.Join(dir, "b.rex")
	if err := os.WriteFile(a, []byte("source "+b+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("source "+a+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	env := NewMapEnvironment(nil)
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "source "+a+"\n", ParserConfig{})
	if err := in.Run(script); err == nil {
		t.Fatal("expected a source cycle error")
	}
}

func TestInterpreterSourceReadsReferencedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.rex")
	if err := os.WriteFile(path, []byte("setenv FROM_SOURCE 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	env := NewMapEnvironment(nil)
	in := NewInterpreter(env, ParserConfig{})
	script := mustParse(t, "source "+path+"\n", ParserConfig{})
	if err := in.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v, ok := env.Get("FROM_SOURCE"); !ok || v != "1" {
		t.Fatalf("FROM_SOURCE = %q, %v", v, ok)
	}
}
