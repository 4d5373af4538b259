package completion

// ReadlineCompleter adapts CommandCompleter to the readline.AutoCompleter
// interface.
type ReadlineCompleter struct {
	completer *CommandCompleter
}

// NewReadlineCompleter creates a readline-compatible auto-completer.
func NewReadlineCompleter(commands []string) *ReadlineCompleter {
	return &ReadlineCompleter{completer: NewCommandCompleter(commands)}
}

// Do implements the readline.AutoCompleter interface.
func (r *ReadlineCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	return r.completer.DoComplete(line, pos)
}
