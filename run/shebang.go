package run

import "strings"

// Shebang is a parsed "#!" line: the interpreter path and its optional
// single argument (everything after the first whitespace run).
type Shebang struct {
	Interpreter string
	Argument    string
}

// ParseShebang parses a rendered body line as a shebang. It returns
// (zero, false) when the line is not a shebang or names no interpreter.
func ParseShebang(line string) (Shebang, bool) {
	rest, ok := strings.CutPrefix(line, "#!")
	if !ok {
		return Shebang{}, false
	}

	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	rest = strings.Trim(rest, " \t")

	interpreter, argument, _ := strings.Cut(rest, " ")
	if tab, targ, ok := strings.Cut(interpreter, "\t"); ok {
		interpreter, argument = tab, targ+" "+argument
	}

	if interpreter == "" {
		return Shebang{}, false
	}

	return Shebang{
		Interpreter: interpreter,
		Argument:    strings.Trim(argument, " \t"),
	}, true
}

// interpreterName returns the file name of the interpreter, without any
// directory components.
func (s Shebang) interpreterName() string {
	name := s.Interpreter

	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// ScriptSuffix returns the file suffix the temporary script must carry
// for the interpreter to accept it.
func (s Shebang) ScriptSuffix() string {
	switch s.interpreterName() {
	case "cmd", "cmd.exe":
		return ".bat"
	case "powershell", "powershell.exe":
		return ".ps1"
	default:
		return ""
	}
}

// IncludeShebangLine reports whether the shebang line itself belongs in
// the script file. cmd.exe chokes on it; everything else tolerates or
// requires it.
func (s Shebang) IncludeShebangLine() bool {
	switch s.interpreterName() {
	case "cmd", "cmd.exe":
		return false
	default:
		return true
	}
}

// Argv assembles the command line that runs the script at path.
func (s Shebang) Argv(path string) []string {
	argv := make([]string, 0, 3)
	argv = append(argv, s.Interpreter)

	if s.Argument != "" {
		argv = append(argv, s.Argument)
	}

	return append(argv, path)
}
