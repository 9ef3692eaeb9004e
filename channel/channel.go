package channel

import (
	"fmt"
	"sync"

	"github.com/kduncan99/hcmp2200/addr"
	"github.com/kduncan99/hcmp2200/device"
	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/word"
)

// MSPRegistry resolves a processor's UPI to its MSP, used to chase the
// upi/segment/offset triple inside an ACW back to real word storage.
type MSPRegistry interface {
	MSP(upi int) (*msp.MSP, bool)
}

// DeviceRegistry resolves a device index (0..15) attached to this channel
// module to its Device.
type DeviceRegistry interface {
	Device(index int) (device.Device, bool)
}

// CompletionSink receives the finished channel program so the IOP can
// raise the UPI completion back to the originating processor.
type CompletionSink interface {
	ChannelComplete(tracker *Tracker)
}

// Tracker is one submission queued on a channel module.
type Tracker struct {
	Source  int // originating processor UPI
	IOPUpi  int
	Program *Program
	done    chan struct{}
}

// Module is the shared submission-queue/worker machinery common to byte
// and word channel modules (spec section 4.4).
type Module struct {
	mu        sync.Mutex
	queue     []*Tracker
	cond      *sync.Cond
	terminate bool
	devices   DeviceRegistry
	msps      MSPRegistry
	sink      CompletionSink
	byteMode  bool
}

// NewByteChannelModule creates a channel module that repacks 8-bit device
// bytes to/from 36-bit words on ingress/egress.
func NewByteChannelModule(devices DeviceRegistry, msps MSPRegistry, sink CompletionSink) *Module {
	m := &Module{devices: devices, msps: msps, sink: sink, byteMode: true}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// NewWordChannelModule creates a channel module flagged as a Word channel
// module (IsByteMode reports false). Its transfers pack data exactly as a
// Byte module's do, wordBytes device bytes per 36-bit word; the flag does
// not change how data is moved.
func NewWordChannelModule(devices DeviceRegistry, msps MSPRegistry, sink CompletionSink) *Module {
	m := &Module{devices: devices, msps: msps, sink: sink, byteMode: false}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Submit enqueues a channel program for execution and returns immediately;
// the worker goroutine (Run) completes it asynchronously.
func (m *Module) Submit(source int, prog *Program) *Tracker {
	t := &Tracker{Source: source, IOPUpi: prog.IOPUpi, Program: prog, done: make(chan struct{})}
	prog.Status = StatusInProgress
	m.mu.Lock()
	m.queue = append(m.queue, t)
	m.mu.Unlock()
	m.cond.Signal()
	return t
}

// Run drains the submission queue until Terminate is called. Intended to
// run on its own goroutine, one per channel module (spec section 5).
func (m *Module) Run() {
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.terminate {
			m.cond.Wait()
		}
		if m.terminate {
			m.mu.Unlock()
			return
		}
		t := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		m.execute(t)
		if m.sink != nil {
			m.sink.ChannelComplete(t)
		}
		close(t.done)
	}
}

// IsByteMode reports whether this module was created as a Byte channel
// module (true) or a Word channel module (false). The flag does not
// affect transfers: both kinds pack wordBytes device bytes per 36-bit word.
func (m *Module) IsByteMode() bool {
	return m.byteMode
}

// Terminate stops the worker after any in-flight Tracker drains; trackers
// still queued are left with status InProgress intact, per spec section 5.
func (m *Module) Terminate() {
	m.mu.Lock()
	m.terminate = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *Module) execute(t *Tracker) {
	prog := t.Program
	dev, ok := m.devices.Device(prog.DeviceIndex)
	if !ok {
		prog.Status = StatusUnconfiguredDevice
		return
	}

	switch prog.Function {
	case device.Write:
		buf, err := m.gather(prog.ACWs)
		if err != nil {
			prog.Status = StatusInvalidACW
			return
		}
		info := &device.IOInfo{Function: device.Write, BlockID: prog.BlockID, Buffer: buf}
		if err := dev.Submit(info); err != nil {
			prog.Status = StatusDeviceError
			return
		}
		prog.Status = StatusSuccessful
	case device.Read:
		count := acwTotalWords(prog.ACWs)
		info := &device.IOInfo{Function: device.Read, BlockID: prog.BlockID, Count: count * wordBytes}
		if err := dev.Submit(info); err != nil {
			prog.Status = StatusDeviceError
			return
		}
		if err := m.scatter(prog.ACWs, info.Buffer); err != nil {
			prog.Status = StatusInvalidACW
			return
		}
		prog.Status = StatusSuccessful
	default:
		info := &device.IOInfo{Function: prog.Function, BlockID: prog.BlockID}
		if err := dev.Submit(info); err != nil {
			prog.Status = StatusDeviceError
			return
		}
		prog.Status = StatusSuccessful
	}
}

func acwTotalWords(acws []ACW) int {
	total := 0
	for _, a := range acws {
		if a.Modifier == SkipData {
			continue
		}
		total += a.Count
	}
	return total
}

// gather reads the disjoint ACW source regions from MSP in ACW order and
// concatenates them into one contiguous device buffer (spec section 4.4
// / testable property 7).
func (m *Module) gather(acws []ACW) ([]byte, error) {
	buf := make([]byte, 0, acwTotalWords(acws)*wordBytes)
	for _, a := range acws {
		if a.Modifier == SkipData {
			buf = append(buf, make([]byte, a.Count*wordBytes)...)
			continue
		}
		words, err := m.readACW(a)
		if err != nil {
			return nil, err
		}
		for _, w := range words {
			buf = append(buf, wordToBytes(w)...)
		}
	}
	return buf, nil
}

// scatter writes device bytes back across the ACW-described regions.
func (m *Module) scatter(acws []ACW, data []byte) error {
	pos := 0
	for _, a := range acws {
		if a.Modifier == SkipData {
			pos += a.Count * wordBytes
			continue
		}
		words := make([]word.Word36, a.Count)
		for i := 0; i < a.Count; i++ {
			if pos+wordBytes > len(data) {
				return fmt.Errorf("channel: scatter buffer exhausted")
			}
			words[i] = bytesToWord(data[pos : pos+wordBytes])
			pos += wordBytes
		}
		if err := m.writeACW(a, words); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) readACW(a ACW) ([]word.Word36, error) {
	_, view, err := m.resolve(a.Address)
	if err != nil {
		return nil, err
	}
	out := make([]word.Word36, a.Count)
	offset := int(a.Address.Offset)
	for i := 0; i < a.Count; i++ {
		o := nextOffset(offset, i, a.Modifier)
		v, err := view.Get(o)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Module) writeACW(a ACW, words []word.Word36) error {
	_, view, err := m.resolve(a.Address)
	if err != nil {
		return err
	}
	offset := int(a.Address.Offset)
	for i, w := range words {
		o := nextOffset(offset, i, a.Modifier)
		if err := view.Set(o, w); err != nil {
			return err
		}
	}
	return nil
}

func nextOffset(base, i int, mod ACWModifier) int {
	switch mod {
	case Increment:
		return base + i
	case Decrement:
		return base - i
	case NoChange:
		return base
	default:
		return base + i
	}
}

func (m *Module) resolve(a addr.AbsoluteAddress) (*msp.MSP, msp.ArraySlice, error) {
	mm, ok := m.msps.MSP(a.UPI)
	if !ok {
		return nil, msp.ArraySlice{}, fmt.Errorf("channel: unknown MSP upi %d", a.UPI)
	}
	view, err := mm.GetStorage(int(a.Segment))
	if err != nil {
		return nil, msp.ArraySlice{}, err
	}
	return mm, view, nil
}

// wordBytes is the device-buffer footprint of one 36-bit word: 4 full
// bytes plus a fifth carrying the top nibble (bits 32-35), so gather and
// scatter round-trip content that doesn't fit in 32 bits.
const wordBytes = 5

func wordToBytes(w word.Word36) []byte {
	return []byte{
		byte(w >> 32), byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w),
	}
}

func bytesToWord(b []byte) word.Word36 {
	v := uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
	return word.Word36(v) & word.Mask
}
