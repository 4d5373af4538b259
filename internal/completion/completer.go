// Package completion provides tab completion for the REPL: built-in
// command names, executables after the ! prefix, and @file references.
package completion

import (
	"os"
	"path/filepath"
	"strings"
)

// CommandCompleter completes REPL input.
type CommandCompleter struct {
	Commands []string
}

// NewCommandCompleter creates a completer over the given built-in commands.
func NewCommandCompleter(commands []string) *CommandCompleter {
	return &CommandCompleter{Commands: commands}
}

// DoComplete returns completion candidates for the input line.
func (c *CommandCompleter) DoComplete(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])

	// Shell executables after the ! prefix.
	if strings.HasPrefix(lineStr, "!") {
		return c.completeShellCommands(lineStr[1:])
	}

	// @file and @clip references anywhere in the line.
	if idx := strings.LastIndex(lineStr, "@"); idx >= 0 && !strings.ContainsAny(lineStr[idx:], " \t") {
		return c.completeReferences(lineStr[idx+1:])
	}

	// Built-in commands complete only as the first word.
	if lineStr == "" || strings.Contains(lineStr, " ") {
		return nil, 0
	}
	var candidates [][]rune
	for _, cmd := range c.Commands {
		if strings.HasPrefix(cmd, lineStr) {
			candidates = append(candidates, []rune(cmd[len(lineStr):]))
		}
	}
	if len(candidates) == 0 {
		return nil, 0
	}
	return candidates, len(lineStr)
}

// completeReferences completes @clip and @<path> references against the
// working directory.
func (c *CommandCompleter) completeReferences(prefix string) (newLine [][]rune, length int) {
	var candidates [][]rune
	for _, special := range []string{"clip", "clipboard"} {
		if strings.HasPrefix(special, prefix) {
			candidates = append(candidates, []rune(special[len(prefix):]))
		}
	}

	dir, stem := filepath.Split(prefix)
	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	entries, err := os.ReadDir(searchDir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, stem) || strings.HasPrefix(name, ".") {
				continue
			}
			if e.IsDir() {
				name += "/"
			}
			candidates = append(candidates, []rune(name[len(stem):]))
			if len(candidates) > 50 {
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil, 0
	}
	return candidates, len(prefix)
}

// completeShellCommands matches executables on PATH after the ! prefix.
func (c *CommandCompleter) completeShellCommands(cmdPrefix string) (newLine [][]rune, length int) {
	// Past the first word, fall back to path completion.
	if strings.Contains(cmdPrefix, " ") {
		idx := strings.LastIndex(cmdPrefix, " ")
		return c.completeReferences(cmdPrefix[idx+1:])
	}

	pathEnv := os.Getenv("PATH")
	if pathEnv == "" {
		return nil, 0
	}

	var matching []string
	for _, dir := range strings.Split(pathEnv, ":") {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if strings.HasPrefix(file.Name(), cmdPrefix) {
				matching = append(matching, file.Name())
			}
			if len(matching) > 100 {
				break
			}
		}
		if len(matching) > 100 {
			break
		}
	}
	if len(matching) == 0 {
		return nil, 0
	}

	if len(matching) == 1 {
		return [][]rune{[]rune(matching[0][len(cmdPrefix):])}, 0
	}

	// Extend to the common prefix when possible, otherwise list matches.
	common := matching[0]
	for _, cmd := range matching[1:] {
		i := 0
		for i < len(common) && i < len(cmd) && common[i] == cmd[i] {
			i++
		}
		common = common[:i]
	}
	if len(common) > len(cmdPrefix) {
		return [][]rune{[]rune(common[len(cmdPrefix):])}, 0
	}

	var candidates [][]rune
	for _, cmd := range matching {
		candidates = append(candidates, []rune(cmd))
	}
	return candidates, len(cmdPrefix)
}
