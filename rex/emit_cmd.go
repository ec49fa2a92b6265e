package rex

import "fmt"

// cmdEmitter renders Windows cmd.exe batch syntax.
type cmdEmitter struct{}

func (cmdEmitter) setEnv(name, value string) string {
	return fmt.Sprintf("set %s=%s\n", name, value)
}

func (cmdEmitter) appendEnv(name, value, sep string) string {
	return fmt.Sprintf("set %s=%%%s%%%s%s\n", name, name, sep, value)
}

func (cmdEmitter) prependEnv(name, value, sep string) string {
	return fmt.Sprintf("set %s=%s%s%%%s%%\n", name, value, sep, name)
}

func (cmdEmitter) unsetEnv(name string) string {
	return fmt.Sprintf("set %s=\n", name)
}

func (cmdEmitter) alias(name, command string) string {
	return fmt.Sprintf("doskey %s=%s\n", name, command)
}

func (cmdEmitter) function(name, body string) string {
	// cmd.exe has no true functions; emit a labeled, callable block.
	return fmt.Sprintf(":%s\n%s\ngoto :eof\n", name, body)
}

func (cmdEmitter) ifStart(cond Expr) string {
	return fmt.Sprintf("if %s (\n", cmdCond(cond))
}

func (cmdEmitter) elseLine() string { return ") else (\n" }
func (cmdEmitter) endIf() string    { return ")\n" }

func (cmdEmitter) comment(s string) string { return "rem " + s + "\n" }

func cmdCond(e Expr) string {
	switch c := e.(type) {
	case Present:
		return fmt.Sprintf("defined %s", c.Name)
	case Equals:
		return fmt.Sprintf("%q==%q", "%"+c.Name+"%", c.Value)
	case Not:
		return "not " + cmdCond(c.Inner)
	default:
		return "0==1"
	}
}
