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
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kduncan99/hcmp2200/channel"
	"github.com/kduncan99/hcmp2200/device"
	"github.com/kduncan99/hcmp2200/ip"
	"github.com/kduncan99/hcmp2200/iop"
	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/sp"
	"github.com/kduncan99/hcmp2200/upi"
)

// upiRange is a processor class's disjoint slice of the UPI index space
// (spec section 3, "Processor topology").
type upiRange struct {
	lo, hi int // inclusive
}

var upiRanges = map[ProcessorClass]upiRange{
	ClassSP:  {0, 0},
	ClassMSP: {1, 4},
	ClassIOP: {5, 6},
	ClassIP:  {7, 14},
}

const maxChannelModuleIndex = 6
const maxDeviceIndex = 15

// Inventory is the process-wide InventoryManager singleton. Callers
// construct one explicitly at startup and pass it to whatever needs it
// (spec section 9: "no ambient lookup").
type Inventory struct {
	mu sync.Mutex

	byName map[string]*node
	byUPI  map[int]*node

	fabric *upi.Fabric
	log    *slog.Logger
}

// New creates an empty Inventory sharing the given UPI fabric.
func New(fabric *upi.Fabric, log *slog.Logger) *Inventory {
	if log == nil {
		log = slog.Default()
	}
	return &Inventory{
		byName: make(map[string]*node),
		byUPI:  make(map[int]*node),
		fabric: fabric,
		log:    log,
	}
}

func normalizeName(name string) string { return strings.ToUpper(name) }

// nextUPI returns the lowest free UPI index in class's range (spec
// section 4.8: "allocates the next free UPI index in that class's
// range"). The range width already equals the class's node-count limit
// (e.g. IP: 7..14 is exactly 8 slots), so scanning the whole range both
// allocates and enforces MaxNodesException in one pass.
func (inv *Inventory) nextUPI(class ProcessorClass) (int, error) {
	r := upiRanges[class]
	for upiIdx := r.lo; upiIdx <= r.hi; upiIdx++ {
		if _, used := inv.byUPI[upiIdx]; !used {
			return upiIdx, nil
		}
	}
	return 0, ErrMaxNodes
}

func (inv *Inventory) registerNode(n *node) error {
	key := normalizeName(n.Name)
	if _, exists := inv.byName[key]; exists {
		return ErrNodeNameConflict
	}
	inv.byName[key] = n
	if n.Kind == KindProcessor {
		inv.byUPI[n.UPI] = n
	}
	return nil
}

// CreateSystemProcessor allocates the singleton SP (UPI 0).
func (inv *Inventory) CreateSystemProcessor(name string) (*sp.SP, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, used := inv.byUPI[0]; used {
		return nil, ErrAlreadySystemProcessor
	}
	n := &node{Name: name, Kind: KindProcessor, Class: ClassSP, UPI: 0}
	if err := inv.registerNode(n); err != nil {
		return nil, err
	}
	s := sp.New(inv.fabric, sp.NewLogRing(256), inv.log)
	n.payload = s
	return s, nil
}

// CreateMainStorageProcessor allocates an MSP in range 1..4.
func (inv *Inventory) CreateMainStorageProcessor(name string, workingWords int) (*msp.MSP, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	upiIdx, err := inv.nextUPI(ClassMSP)
	if err != nil {
		return nil, err
	}
	n := &node{Name: name, Kind: KindProcessor, Class: ClassMSP, UPI: upiIdx}
	if err := inv.registerNode(n); err != nil {
		return nil, err
	}
	m := msp.New(workingWords)
	n.payload = m
	return m, nil
}

// CreateInputOutputProcessor allocates an IOP in range 5..6.
func (inv *Inventory) CreateInputOutputProcessor(name string) (*iop.IOP, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	upiIdx, err := inv.nextUPI(ClassIOP)
	if err != nil {
		return nil, err
	}
	n := &node{Name: name, Kind: KindProcessor, Class: ClassIOP, UPI: upiIdx}
	if err := inv.registerNode(n); err != nil {
		return nil, err
	}
	p := iop.New(upiIdx, inv.fabric, &cmRegistry{inv: inv, iopNode: n}, inv.log)
	n.payload = p
	return p, nil
}

// CreateInstructionProcessor allocates an IP in range 7..14.
func (inv *Inventory) CreateInstructionProcessor(name string) (*ip.IP, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	upiIdx, err := inv.nextUPI(ClassIP)
	if err != nil {
		return nil, err
	}
	n := &node{Name: name, Kind: KindProcessor, Class: ClassIP, UPI: upiIdx}
	if err := inv.registerNode(n); err != nil {
		return nil, err
	}
	p := ip.New(upiIdx, &mspRegistry{inv: inv}, inv.log)
	n.payload = p
	return p, nil
}

// mspRegistry adapts the Inventory to ip.MSPRegistry / channel.MSPRegistry.
type mspRegistry struct{ inv *Inventory }

func (r *mspRegistry) MSP(upiIdx int) (*msp.MSP, bool) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	n, ok := r.inv.byUPI[upiIdx]
	if !ok || n.Class != ClassMSP {
		return nil, false
	}
	m, ok := n.payload.(*msp.MSP)
	return m, ok
}

// cmRegistry adapts one IOP node's descendants to iop.ChannelModules.
type cmRegistry struct {
	inv     *Inventory
	iopNode *node
}

func (r *cmRegistry) ChannelModule(cmIndex int) (*channel.Module, bool) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	for _, d := range r.iopNode.descendants {
		if d.Kind == KindChannelModule && d.Address == cmIndex {
			m, ok := d.payload.(*channel.Module)
			return m, ok
		}
	}
	return nil, false
}

// deviceRegistry adapts one channel module node's descendants to
// channel.DeviceRegistry.
type deviceRegistry struct {
	inv    *Inventory
	cmNode *node
}

func (r *deviceRegistry) Device(index int) (device.Device, bool) {
	r.inv.mu.Lock()
	defer r.inv.mu.Unlock()
	for _, d := range r.cmNode.descendants {
		if d.Kind == KindDevice && d.Address == index {
			dev, ok := d.payload.(device.Device)
			return dev, ok
		}
	}
	return nil, false
}

// completionRouter adapts channel.CompletionSink so every channel
// module's completions route through its owning IOP.
type completionRouter struct{ iop *iop.IOP }

func (c completionRouter) ChannelComplete(t *channel.Tracker) { c.iop.ChannelComplete(t) }

// CreateChannelModule creates a Byte or Word channel module and connects
// it to iopName atomically (spec section 4.8).
func (inv *Inventory) CreateChannelModule(kind ChannelModuleKind, name, iopName string, cmIndex int) (*channel.Module, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if cmIndex < 0 || cmIndex > maxChannelModuleIndex {
		return nil, ErrChannelModuleIndexConflict
	}
	iopN, ok := inv.byName[normalizeName(iopName)]
	if !ok || iopN.Class != ClassIOP {
		return nil, ErrNodeNotFound
	}
	for _, d := range iopN.descendants {
		if d.Address == cmIndex {
			return nil, ErrChannelModuleIndexConflict
		}
	}

	n := &node{Name: name, Kind: KindChannelModule, Address: cmIndex, CMKind: kind}
	if err := inv.registerNode(n); err != nil {
		return nil, err
	}

	iopProc := iopN.payload.(*iop.IOP)
	sink := completionRouter{iop: iopProc}
	var cm *channel.Module
	switch kind {
	case ChannelModuleByte:
		cm = channel.NewByteChannelModule(&deviceRegistry{inv: inv, cmNode: n}, &mspRegistry{inv: inv}, sink)
	default:
		cm = channel.NewWordChannelModule(&deviceRegistry{inv: inv, cmNode: n}, &mspRegistry{inv: inv}, sink)
	}
	n.payload = cm

	n.ancestors = append(n.ancestors, iopN)
	iopN.descendants = append(iopN.descendants, n)
	return cm, nil
}

// RegisterDevice adds an existing device to the inventory under the given
// channel module, at the given device index (0..15). Devices are
// constructed by callers (they take constructor-specific arguments the
// Inventory has no opinion about) and merely registered here.
func (inv *Inventory) RegisterDevice(name string, cmName string, deviceIndex int, dev device.Device) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if deviceIndex < 0 || deviceIndex > maxDeviceIndex {
		return ErrDeviceIndexConflict
	}
	cmN, ok := inv.byName[normalizeName(cmName)]
	if !ok || cmN.Kind != KindChannelModule {
		return ErrNodeNotFound
	}
	for _, d := range cmN.descendants {
		if d.Address == deviceIndex {
			return ErrDeviceIndexConflict
		}
	}
	n := &node{Name: name, Kind: KindDevice, Address: deviceIndex, payload: dev}
	if err := inv.registerNode(n); err != nil {
		return err
	}
	n.ancestors = append(n.ancestors, cmN)
	cmN.descendants = append(cmN.descendants, n)
	return nil
}

// legalEdge is the static allow-list (spec section 3).
func legalEdge(a, d *node) bool {
	switch {
	case a.Kind == KindProcessor && a.Class == ClassIOP && d.Kind == KindChannelModule:
		return true
	case a.Kind == KindChannelModule && d.Kind == KindDevice:
		return true
	default:
		return false
	}
}

// Connect links ancestor to descendant, validating the static allow-list,
// index bounds, single-ancestor-for-channel-modules, and no duplicate
// edges (spec section 4.8).
func (inv *Inventory) Connect(ancestorName string, nodeIndex int, descendantName string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	a, ok := inv.byName[normalizeName(ancestorName)]
	if !ok {
		return ErrNodeNotFound
	}
	d, ok := inv.byName[normalizeName(descendantName)]
	if !ok {
		return ErrNodeNotFound
	}
	if !legalEdge(a, d) {
		return ErrCannotConnect
	}
	if d.Kind == KindChannelModule && len(d.ancestors) > 0 {
		return ErrChannelModuleHasAncestor
	}
	if d.Kind == KindChannelModule && (nodeIndex < 0 || nodeIndex > maxChannelModuleIndex) {
		return ErrChannelModuleIndexConflict
	}
	if d.Kind == KindDevice && (nodeIndex < 0 || nodeIndex > maxDeviceIndex) {
		return ErrDeviceIndexConflict
	}
	if a.hasDescendant(d) {
		return ErrDuplicateEdge
	}
	d.Address = nodeIndex
	a.descendants = append(a.descendants, d)
	d.ancestors = append(d.ancestors, a)
	return nil
}

// Disconnect removes one ancestor/descendant edge.
func (inv *Inventory) Disconnect(ancestorName, descendantName string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	a, ok := inv.byName[normalizeName(ancestorName)]
	if !ok {
		return ErrNodeNotFound
	}
	d, ok := inv.byName[normalizeName(descendantName)]
	if !ok {
		return ErrNodeNotFound
	}
	a.removeDescendant(d)
	d.removeAncestor(a)
	return nil
}

// DisconnectAncestors removes every ancestor edge of the named node.
func (inv *Inventory) DisconnectAncestors(name string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n, ok := inv.byName[normalizeName(name)]
	if !ok {
		return ErrNodeNotFound
	}
	for _, a := range append([]*node{}, n.ancestors...) {
		a.removeDescendant(n)
	}
	n.ancestors = nil
	return nil
}

// DisconnectDescendants removes every descendant edge of the named node.
func (inv *Inventory) DisconnectDescendants(name string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n, ok := inv.byName[normalizeName(name)]
	if !ok {
		return ErrNodeNotFound
	}
	for _, d := range append([]*node{}, n.descendants...) {
		d.removeAncestor(n)
	}
	n.descendants = nil
	return nil
}

// stoppable is implemented by *ip.IP; deleteNode special-cases it (spec
// section 4.8: "first request stop(Cleared, 0) and spin until the
// processor observes isStopped, then terminate and remove").
type stoppable interface {
	Stop(reason ip.StopReason, detail uint16)
	IsStopped() bool
	Terminate()
}

// DeleteNode removes a node by name. An IP is first stopped and drained;
// a channel module must be orphaned of devices by the caller first (no
// implicit cascading delete, matching spec's "no orphaned channel
// modules" invariant: the node is simply left disconnected, never forced
// unreachable).
func (inv *Inventory) DeleteNode(name string) error {
	inv.mu.Lock()
	n, ok := inv.byName[normalizeName(name)]
	inv.mu.Unlock()
	if !ok {
		return ErrNodeNotFound
	}

	if n.Kind == KindProcessor && n.Class == ClassIP {
		proc := n.payload.(stoppable)
		proc.Stop(ip.StopCleared, 0)
		deadline := time.Now().Add(2 * time.Second)
		for !proc.IsStopped() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		proc.Terminate()
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, a := range append([]*node{}, n.ancestors...) {
		a.removeDescendant(n)
	}
	for _, d := range append([]*node{}, n.descendants...) {
		d.removeAncestor(n)
	}
	delete(inv.byName, normalizeName(name))
	if n.Kind == KindProcessor {
		delete(inv.byUPI, n.UPI)
	}
	return nil
}

// ClearConfiguration deletes every node in dependency order: devices
// first, then channel modules, then everything else (spec section 4.8).
func (inv *Inventory) ClearConfiguration() error {
	for _, kind := range []NodeKind{KindDevice, KindChannelModule, KindProcessor} {
		names := inv.namesOfKind(kind)
		for _, name := range names {
			if err := inv.DeleteNode(name); err != nil {
				return fmt.Errorf("inventory: clearConfiguration: %w", err)
			}
		}
	}
	return nil
}

func (inv *Inventory) namesOfKind(kind NodeKind) []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []string
	for name, n := range inv.byName {
		if n.Kind == kind {
			out = append(out, name)
		}
	}
	return out
}
