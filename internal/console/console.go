/*
 * hcmp2200 - Operator console
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package console implements the operator command loop: a liner-driven
// REPL exposing dump/import/clear/ipl/stop/quit over the InventoryManager,
// in the shape of the teacher's command/reader + command/parser (a fixed
// dispatch table matched by unique-prefix, not a full grammar).
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/kduncan99/hcmp2200/inventory"
	"github.com/kduncan99/hcmp2200/ip"
	"github.com/peterh/liner"

	cfg "github.com/kduncan99/hcmp2200/internal/config"
)

// Console owns the operator REPL for one Inventory.
type Console struct {
	inv *inventory.Inventory
	log *slog.Logger
}

// New creates a Console bound to inv.
func New(inv *inventory.Inventory, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{inv: inv, log: log}
}

type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && l.line[l.pos] == ' ' {
		l.pos++
	}
}

// getWord returns the next whitespace-delimited token, advancing past it.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

// rest returns everything remaining on the line, with leading space
// trimmed (used by commands like import that take a bare file path).
func (l *cmdLine) rest() string {
	l.skipSpace()
	return l.line[l.pos:]
}

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *Console) (bool, error)
}

var cmdList = []cmd{
	{name: "dump", min: 1, process: dumpCmd},
	{name: "import", min: 2, process: importCmd},
	{name: "clear", min: 2, process: clearCmd},
	{name: "ipl", min: 1, process: iplCmd},
	{name: "stop", min: 2, process: stopCmd},
	{name: "show", min: 2, process: showCmd},
	{name: "quit", min: 1, process: quitCmd},
}

func matchCommand(c cmd, name string) bool {
	if len(name) > len(c.name) || len(name) < c.min {
		return false
	}
	return c.name[:len(name)] == name
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			out = append(out, c)
		}
	}
	return out
}

// ProcessCommand parses and executes one command line, returning true if
// the console should exit.
func (c *Console) ProcessCommand(commandLine string) (bool, error) {
	line := &cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		return false, nil
	}
	match := matchList(name)
	switch len(match) {
	case 0:
		return false, fmt.Errorf("command not found: %s", name)
	case 1:
		return match[0].process(line, c)
	default:
		return false, fmt.Errorf("ambiguous command: %s", name)
	}
}

// Run drives the liner-based REPL until quit or EOF/ctrl-D.
func (c *Console) Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		command, err := line.Prompt("hcmp2200> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("console: %w", err)
		}
		line.AppendHistory(command)
		quit, err := c.ProcessCommand(command)
		if err != nil {
			fmt.Fprintln(os.Stdout, "error:", err)
		}
		if quit {
			return nil
		}
	}
}

func dumpCmd(line *cmdLine, c *Console) (bool, error) {
	name := line.getWord()
	proc, ok := c.inv.InstructionProcessor(name)
	if !ok {
		return false, fmt.Errorf("no such instruction processor: %s", name)
	}
	if err := proc.Dump(os.Stdout); err != nil {
		return false, err
	}
	return false, nil
}

func importCmd(line *cmdLine, c *Console) (bool, error) {
	path := line.rest()
	if path == "" {
		return false, errors.New("import requires a file path")
	}
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	directives, err := cfg.Parse(f)
	if err != nil {
		return false, fmt.Errorf("import: %w", err)
	}
	if err := c.inv.ImportConfiguration(directives); err != nil {
		return false, err
	}
	c.log.Info("configuration imported", "path", path, "directives", len(directives))
	return false, nil
}

func clearCmd(_ *cmdLine, c *Console) (bool, error) {
	if err := c.inv.ClearConfiguration(); err != nil {
		return false, err
	}
	c.log.Info("configuration cleared")
	return false, nil
}

func iplCmd(line *cmdLine, c *Console) (bool, error) {
	name := line.getWord()
	proc, ok := c.inv.InstructionProcessor(name)
	if !ok {
		return false, fmt.Errorf("no such instruction processor: %s", name)
	}
	// Start runs the fetch-decode-execute loop until the IP is terminated
	// (a stopped IP parks inside it); it must not block the console's own goroutine.
	go proc.Start()
	return false, nil
}

func stopCmd(line *cmdLine, c *Console) (bool, error) {
	name := line.getWord()
	proc, ok := c.inv.InstructionProcessor(name)
	if !ok {
		return false, fmt.Errorf("no such instruction processor: %s", name)
	}
	proc.Stop(ip.StopDebug, 0)
	return false, nil
}

func showCmd(_ *cmdLine, c *Console) (bool, error) {
	names := c.inv.Names()
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(os.Stdout, n)
	}
	return false, nil
}

func quitCmd(_ *cmdLine, _ *Console) (bool, error) {
	return true, nil
}
