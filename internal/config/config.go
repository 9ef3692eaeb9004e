/*
 * hcmp2200 - Configuration file parser
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

// Package config implements the hand-rolled, line-oriented configuration
// descriptor format consumed by InventoryManager.ImportConfiguration
// (spec section 6, "Configuration data bank layout"): one node-creation
// or connection directive per line, '#' comments, whitespace-separated
// fields.
//
// <line> := '#' <comment> | <verb> *(<whitespace> <field>)
//
// Recognized verbs: SP, MSP, IOP, IP, CM, DEVICE, CONNECT, DISCONNECT.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Directive is one parsed configuration line.
type Directive struct {
	Verb   string
	Fields []string
	Line   int
}

// Parse reads directives from r, stripping '#' comments and blank lines.
func Parse(r io.Reader) ([]Directive, error) {
	var out []Directive
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, Directive{
			Verb:   strings.ToUpper(fields[0]),
			Fields: fields[1:],
			Line:   lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}
