package rex

import "fmt"

// powershellEmitter renders PowerShell syntax.
type powershellEmitter struct{}

func (powershellEmitter) setEnv(name, value string) string {
	return fmt.Sprintf("$env:%s = %q\n", name, value)
}

func (powershellEmitter) appendEnv(name, value, sep string) string {
	return fmt.Sprintf("$env:%s = \"$env:%s%s%s\"\n", name, name, sep, value)
}

func (powershellEmitter) prependEnv(name, value, sep string) string {
	return fmt.Sprintf("$env:%s = \"%s%s$env:%s\"\n", name, value, sep, name)
}

func (powershellEmitter) unsetEnv(name string) string {
	return fmt.Sprintf("Remove-Item Env:%s -ErrorAction SilentlyContinue\n", name)
}

func (powershellEmitter) alias(name, command string) string {
	return fmt.Sprintf("Set-Alias -Name %s -Value %q\n", name, command)
}

func (powershellEmitter) function(name, body string) string {
	return fmt.Sprintf("function %s {\n%s\n}\n", name, body)
}

func (powershellEmitter) ifStart(cond Expr) string {
	return fmt.Sprintf("if (%s) {\n", powershellCond(cond))
}

func (powershellEmitter) elseLine() string { return "} else {\n" }
func (powershellEmitter) endIf() string    { return "}\n" }

func (powershellEmitter) comment(s string) string { return "# " + s + "\n" }

func powershellCond(e Expr) string {
	switch c := e.(type) {
	case Present:
		return fmt.Sprintf("Test-Path Env:%s", c.Name)
	case Equals:
		return fmt.Sprintf("$env:%s -eq %q", c.Name, c.Value)
	case Not:
		return "-not (" + powershellCond(c.Inner) + ")"
	default:
		return "$false"
	}
}
