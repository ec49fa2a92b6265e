package context

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rez-project/rez/rex"
)

// ExportShellScript renders c's final environment as a standalone
// script for sh that sets every variable exactly as the built context
// holds it (a flat sequence of setenv-equivalents, not a replay of
// each package's original commands), per spec.md §4.6's "a separate
// exporter can emit a shell script".
func ExportShellScript(c *ResolvedContext, sh rex.Shell) (string, error) {
	var stmts []rex.Stmt
	for _, name := range sortedKeys(c.EnvironmentVars) {
		stmts = append(stmts, &rex.SetEnv{Name: name, Value: c.EnvironmentVars[name]})
	}
	return rex.Emit(&rex.Script{Statements: stmts}, sh)
}

// ExportDotEnv renders c's environment as a KEY=VALUE .env file,
// quoting (Go %q) values that contain a space, a tab or a double quote.
func ExportDotEnv(c *ResolvedContext) string {
	var b strings.Builder
	for _, name := range sortedKeys(c.EnvironmentVars) {
		v := c.EnvironmentVars[name]
		if strings.ContainsAny(v, " \t\"") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, "%s=%s\n", name, v)
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
