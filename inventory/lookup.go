/*
 * hcmp2200 - Inventory Manager
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

package inventory

import (
	"github.com/kduncan99/hcmp2200/channel"
	"github.com/kduncan99/hcmp2200/iop"
	"github.com/kduncan99/hcmp2200/ip"
	"github.com/kduncan99/hcmp2200/sp"
)

// InstructionProcessor looks up a node by name and returns its *ip.IP if
// it is one (used by internal/console's ipl/stop/dump commands, which
// operate on a named processor rather than walking the graph themselves).
func (inv *Inventory) InstructionProcessor(name string) (*ip.IP, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n, ok := inv.byName[normalizeName(name)]
	if !ok || n.Class != ClassIP {
		return nil, false
	}
	proc, ok := n.payload.(*ip.IP)
	return proc, ok
}

// SystemProcessor returns the singleton SP, if one has been created.
func (inv *Inventory) SystemProcessor() (*sp.SP, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n, ok := inv.byUPI[0]
	if !ok || n.Class != ClassSP {
		return nil, false
	}
	s, ok := n.payload.(*sp.SP)
	return s, ok
}

// InputOutputProcessors returns every IOP currently registered, in no
// particular order (used by cmd/hcmp2200 to start one worker goroutine per
// processor, per spec section 5's "one worker thread per processor"
// scheduling model).
func (inv *Inventory) InputOutputProcessors() []*iop.IOP {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []*iop.IOP
	for _, n := range inv.byName {
		if n.Class == ClassIOP {
			if p, ok := n.payload.(*iop.IOP); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// ChannelModules returns every channel module currently registered.
func (inv *Inventory) ChannelModules() []*channel.Module {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []*channel.Module
	for _, n := range inv.byName {
		if n.Kind == KindChannelModule {
			if m, ok := n.payload.(*channel.Module); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// Names returns every node name currently registered, sorted by the
// caller if it cares about order (used by the console's "show" command).
func (inv *Inventory) Names() []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]string, 0, len(inv.byName))
	for _, n := range inv.byName {
		out = append(out, n.Name)
	}
	return out
}
