package rex

import "testing"

func parse(t *testing.T, src string, cfg ParserConfig) *Script {
	t.Helper()
	p := NewParser(src, cfg)
	script, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return script
}

func TestParserBasicStatements(t *testing.T) {
	script := parse(t, "setenv A 1\nappendenv PATH /usr/local/bin\nunsetenv B\n", ParserConfig{})
	if len(script.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(script.Statements))
	}
	set, ok := script.Statements[0].(*SetEnv)
	if !ok || set.Name != "A" || set.Value != "1" {
		t.Fatalf("unexpected SetEnv: %+v", script.Statements[0])
	}
	app, ok := script.Statements[1].(*AppendEnv)
	if !ok || app.Name != "PATH" || app.Value != "/usr/local/bin" {
		t.Fatalf("unexpected AppendEnv: %+v", script.Statements[1])
	}
}

func TestParserAppendEnvWithExplicitSeparator(t *testing.T) {
	script := parse(t, "appendenv FOO bar ,\n", ParserConfig{})
	app := script.Statements[0].(*AppendEnv)
	if app.Value != "bar" || app.Separator != "," {
		t.Fatalf("unexpected parse: %+v", app)
	}
}

func TestParserAlias(t *testing.T) {
	script := parse(t, `alias ll="ls -la"`+"\n", ParserConfig{})
	a := script.Statements[0].(*Alias)
	if a.Name != "ll" || a.Command != "ls -la" {
		t.Fatalf("unexpected alias: %+v", a)
	}
}

func TestParserFunctionCapturesBodyVerbatim(t *testing.T) {
	src := "function greet {\n  setenv GREETED 1\n  echo hi\n}\n"
	script := parse(t, src, ParserConfig{AllowShellSyntax: true})
	fn := script.Statements[0].(*Function)
	if fn.Name != "greet" {
		t.Fatalf("unexpected function name %q", fn.Name)
	}
	want := "setenv GREETED 1\n  echo hi"
	if fn.Body != want {
		t.Fatalf("body = %q, want %q", fn.Body, want)
	}
}

func TestParserNestedBraceFunctionBody(t *testing.T) {
	src := "function f {\n  if X {\n    setenv A 1\n  }\n}\n"
	script := parse(t, src, ParserConfig{})
	fn := script.Statements[0].(*Function)
	want := "if X {\n    setenv A 1\n  }"
	if fn.Body != want {
		t.Fatalf("body = %q, want %q", fn.Body, want)
	}
}

func TestParserIfElse(t *testing.T) {
	src := "if FOO {\n  setenv A 1\n}\nelse {\n  setenv A 2\n}\n"
	script := parse(t, src, ParserConfig{})
	ifStmt := script.Statements[0].(*If)
	if _, ok := ifStmt.Cond.(Present); !ok {
		t.Fatalf("expected Present condition, got %T", ifStmt.Cond)
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("unexpected branch lengths: then=%d else=%d", len(ifStmt.Then), len(ifStmt.Else))
	}
}

func TestParserIfEqualityCondition(t *testing.T) {
	src := `if PLATFORM == "linux" {
  setenv A 1
}
`
	script := parse(t, src, ParserConfig{})
	ifStmt := script.Statements[0].(*If)
	eq, ok := ifStmt.Cond.(Equals)
	if !ok || eq.Name != "PLATFORM" || eq.Value != "linux" {
		t.Fatalf("unexpected condition: %+v", ifStmt.Cond)
	}
}

func TestParserStrictModeRejectsUnknownCommand(t *testing.T) {
	p := NewParser("frobnicate now\n", ParserConfig{Strict: true})
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected error in strict mode")
	}
}

func TestParserPermissiveModeDropsUnknownCommand(t *testing.T) {
	script := parse(t, "frobnicate now\nsetenv A 1\n", ParserConfig{})
	if len(script.Statements) != 1 {
		t.Fatalf("expected unknown line to be dropped, got %d statements", len(script.Statements))
	}
}

func TestParserShellPassthroughWhenAllowed(t *testing.T) {
	script := parse(t, "ls -la\n", ParserConfig{AllowShellSyntax: true})
	sc, ok := script.Statements[0].(*ShellCommand)
	if !ok || sc.Command != "ls -la" {
		t.Fatalf("unexpected statement: %+v", script.Statements[0])
	}
}
