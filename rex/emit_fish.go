package rex

import "fmt"

// fishEmitter renders fish shell syntax.
type fishEmitter struct{}

func (fishEmitter) setEnv(name, value string) string {
	return fmt.Sprintf("set -gx %s %q\n", name, value)
}

func (fishEmitter) appendEnv(name, value, sep string) string {
	if sep == ":" {
		return fmt.Sprintf("set -gx %s $%s %q\n", name, name, value)
	}
	return fmt.Sprintf("set -gx %s \"$%s%s%s\"\n", name, name, sep, value)
}

func (fishEmitter) prependEnv(name, value, sep string) string {
	if sep == ":" {
		return fmt.Sprintf("set -gx %s %q $%s\n", name, value, name)
	}
	return fmt.Sprintf("set -gx %s \"%s%s$%s\"\n", name, value, sep, name)
}

func (fishEmitter) unsetEnv(name string) string {
	return fmt.Sprintf("set -e %s\n", name)
}

func (fishEmitter) alias(name, command string) string {
	return fmt.Sprintf("alias %s %q\n", name, command)
}

func (fishEmitter) function(name, body string) string {
	return fmt.Sprintf("function %s\n%s\nend\n", name, body)
}

func (fishEmitter) ifStart(cond Expr) string {
	return fmt.Sprintf("if %s\n", fishCond(cond))
}

func (fishEmitter) elseLine() string { return "else\n" }
func (fishEmitter) endIf() string    { return "end\n" }

func (fishEmitter) comment(s string) string { return "# " + s + "\n" }

func fishCond(e Expr) string {
	switch c := e.(type) {
	case Present:
		return fmt.Sprintf("set -q %s", c.Name)
	case Equals:
		return fmt.Sprintf("test \"$%s\" = %q", c.Name, c.Value)
	case Not:
		return "not " + fishCond(c.Inner)
	default:
		return "false"
	}
}
