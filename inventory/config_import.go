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
	"fmt"
	"strconv"

	"github.com/kduncan99/hcmp2200/device"
	cfg "github.com/kduncan99/hcmp2200/internal/config"
)

// deviceFactory mirrors the teacher's configparser model registry
// (RegisterModel/createModel), but keyed on the handful of device kinds
// this repo actually builds rather than a pluggable init()-time registry --
// ImportConfiguration's DEVICE verb looks the type token up here.
var deviceFactories = map[string]func(name string) device.Device{
	"SCRATCHDISK": func(name string) device.Device { return device.NewScratchDiskDevice(name) },
	"FSDISK":      func(name string) device.Device { return device.NewFileSystemDiskDevice(name) },
	"FSTAPE":      func(name string) device.Device { return device.NewFileSystemTapeDevice(name) },
}

// ImportConfiguration applies a parsed directive list in order, building
// out the processor/channel-module/device topology it describes (spec
// section 4.8: importConfiguration(config)). Directives are applied one at
// a time; the first failure aborts with the directive's source line
// number and whatever partial topology was already built stays in place
// (matching ClearConfiguration's own "caller decides whether to retry or
// clear" contract -- importConfiguration does not roll back).
func (inv *Inventory) ImportConfiguration(directives []cfg.Directive) error {
	for _, d := range directives {
		if err := inv.applyDirective(d); err != nil {
			return fmt.Errorf("inventory: importConfiguration: line %d: %w", d.Line, err)
		}
	}
	return nil
}

func (inv *Inventory) applyDirective(d cfg.Directive) error {
	switch d.Verb {
	case "SP":
		return inv.importSP(d)
	case "MSP":
		return inv.importMSP(d)
	case "IOP":
		return inv.importIOP(d)
	case "IP":
		return inv.importIP(d)
	case "CM":
		return inv.importCM(d)
	case "DEVICE":
		return inv.importDevice(d)
	case "CONNECT":
		return inv.importConnect(d)
	case "DISCONNECT":
		return inv.importDisconnect(d)
	default:
		return fmt.Errorf("unrecognized directive %q", d.Verb)
	}
}

func (inv *Inventory) importSP(d cfg.Directive) error {
	if len(d.Fields) != 1 {
		return fmt.Errorf("SP: expected 1 field, got %d", len(d.Fields))
	}
	_, err := inv.CreateSystemProcessor(d.Fields[0])
	return err
}

func (inv *Inventory) importMSP(d cfg.Directive) error {
	if len(d.Fields) != 2 {
		return fmt.Errorf("MSP: expected 2 fields, got %d", len(d.Fields))
	}
	words, err := strconv.Atoi(d.Fields[1])
	if err != nil {
		return fmt.Errorf("MSP: working words: %w", err)
	}
	_, err = inv.CreateMainStorageProcessor(d.Fields[0], words)
	return err
}

func (inv *Inventory) importIOP(d cfg.Directive) error {
	if len(d.Fields) != 1 {
		return fmt.Errorf("IOP: expected 1 field, got %d", len(d.Fields))
	}
	_, err := inv.CreateInputOutputProcessor(d.Fields[0])
	return err
}

func (inv *Inventory) importIP(d cfg.Directive) error {
	if len(d.Fields) != 1 {
		return fmt.Errorf("IP: expected 1 field, got %d", len(d.Fields))
	}
	_, err := inv.CreateInstructionProcessor(d.Fields[0])
	return err
}

func (inv *Inventory) importCM(d cfg.Directive) error {
	if len(d.Fields) != 4 {
		return fmt.Errorf("CM: expected 4 fields, got %d", len(d.Fields))
	}
	var kind ChannelModuleKind
	switch d.Fields[0] {
	case "BYTE":
		kind = ChannelModuleByte
	case "WORD":
		kind = ChannelModuleWord
	default:
		return fmt.Errorf("CM: unknown kind %q", d.Fields[0])
	}
	cmIndex, err := strconv.Atoi(d.Fields[3])
	if err != nil {
		return fmt.Errorf("CM: index: %w", err)
	}
	_, err = inv.CreateChannelModule(kind, d.Fields[1], d.Fields[2], cmIndex)
	return err
}

func (inv *Inventory) importDevice(d cfg.Directive) error {
	if len(d.Fields) != 4 {
		return fmt.Errorf("DEVICE: expected 4 fields, got %d", len(d.Fields))
	}
	factory, ok := deviceFactories[d.Fields[0]]
	if !ok {
		return fmt.Errorf("DEVICE: unknown type %q", d.Fields[0])
	}
	index, err := strconv.Atoi(d.Fields[3])
	if err != nil {
		return fmt.Errorf("DEVICE: index: %w", err)
	}
	dev := factory(d.Fields[1])
	return inv.RegisterDevice(d.Fields[1], d.Fields[2], index, dev)
}

func (inv *Inventory) importConnect(d cfg.Directive) error {
	if len(d.Fields) != 3 {
		return fmt.Errorf("CONNECT: expected 3 fields, got %d", len(d.Fields))
	}
	index, err := strconv.Atoi(d.Fields[1])
	if err != nil {
		return fmt.Errorf("CONNECT: index: %w", err)
	}
	return inv.Connect(d.Fields[0], index, d.Fields[2])
}

func (inv *Inventory) importDisconnect(d cfg.Directive) error {
	if len(d.Fields) != 2 {
		return fmt.Errorf("DISCONNECT: expected 2 fields, got %d", len(d.Fields))
	}
	return inv.Disconnect(d.Fields[0], d.Fields[1])
}
