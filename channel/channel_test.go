package channel

import (
	"testing"
	"time"

	"github.com/kduncan99/hcmp2200/addr"
	"github.com/kduncan99/hcmp2200/device"
	"github.com/kduncan99/hcmp2200/msp"
	"github.com/kduncan99/hcmp2200/word"
)

type fakeMSPRegistry struct {
	m *msp.MSP
}

func (f fakeMSPRegistry) MSP(upi int) (*msp.MSP, bool) {
	if upi != 3 {
		return nil, false
	}
	return f.m, true
}

type fakeDeviceRegistry struct {
	dev device.Device
}

func (f fakeDeviceRegistry) Device(index int) (device.Device, bool) {
	if index != 0 {
		return nil, false
	}
	return f.dev, true
}

type fakeSink struct {
	ch chan *Tracker
}

func (f *fakeSink) ChannelComplete(t *Tracker) {
	f.ch <- t
}

func setup(t *testing.T) (*Module, *msp.MSP, *fakeSink) {
	t.Helper()
	m := msp.New(4096)
	sink := &fakeSink{ch: make(chan *Tracker, 8)}
	scratch := device.NewScratchDiskDevice("D0")
	if err := scratch.Mount("128:16"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	_ = scratch.SetReady(true)
	_ = scratch.Submit(&device.IOInfo{Function: device.GetInfo})

	cm := NewByteChannelModule(fakeDeviceRegistry{dev: scratch}, fakeMSPRegistry{m: m}, sink)
	go cm.Run()
	t.Cleanup(cm.Terminate)
	return cm, m, sink
}

func fillSequential(t *testing.T, m *msp.MSP, seg int, tag uint64, n int) {
	t.Helper()
	view, err := m.GetStorage(seg)
	if err != nil {
		t.Fatalf("GetStorage: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := view.Set(i, word.Word36((tag<<24)+uint64(i))); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
}

func TestGatherScatterConcatenation(t *testing.T) {
	cm, m, sink := setup(t)

	// Segment word counts sum to 128 so the gathered buffer (128*wordBytes
	// bytes) lands on the mounted device's 128-byte block boundary.
	seg1 := m.CreateSegment(48)
	seg2 := m.CreateSegment(48)
	seg3 := m.CreateSegment(32)
	fillSequential(t, m, seg1, 1, 48)
	fillSequential(t, m, seg2, 2, 48)
	fillSequential(t, m, seg3, 3, 32)

	prog := &Program{
		IOPUpi: 5, CMIndex: 0, DeviceIndex: 0,
		Function: device.Write, BlockID: 0,
		ACWs: []ACW{
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(seg1), Offset: 0}, Count: 48, Modifier: Increment},
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(seg2), Offset: 0}, Count: 48, Modifier: Increment},
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(seg3), Offset: 0}, Count: 32, Modifier: Increment},
		},
	}
	cm.Submit(7, prog)

	select {
	case tr := <-sink.ch:
		if tr.Program.Status != StatusSuccessful {
			t.Fatalf("write status = %v", tr.Program.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write completion")
	}

	readSeg := m.CreateSegment(128)
	readProg := &Program{
		IOPUpi: 5, CMIndex: 0, DeviceIndex: 0,
		Function: device.Read, BlockID: 0,
		ACWs: []ACW{
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(readSeg), Offset: 0}, Count: 128, Modifier: Increment},
		},
	}
	cm.Submit(7, readProg)
	select {
	case tr := <-sink.ch:
		if tr.Program.Status != StatusSuccessful {
			t.Fatalf("read status = %v", tr.Program.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read completion")
	}

	view, _ := m.GetStorage(readSeg)
	for i := 0; i < 48; i++ {
		got, _ := view.Get(i)
		if want := word.Word36((uint64(1) << 24) + uint64(i)); got != want {
			t.Fatalf("segment1 word %d: got %#o want %#o", i, got, want)
		}
	}
	for i := 0; i < 48; i++ {
		got, _ := view.Get(48 + i)
		if want := word.Word36((uint64(2) << 24) + uint64(i)); got != want {
			t.Fatalf("segment2 word %d: got %#o want %#o", i, got, want)
		}
	}
	for i := 0; i < 32; i++ {
		got, _ := view.Get(96 + i)
		if want := word.Word36((uint64(3) << 24) + uint64(i)); got != want {
			t.Fatalf("segment3 word %d: got %#o want %#o", i, got, want)
		}
	}
}

// Testable property 6/7: a Write's gathered buffer equals a Read's
// scattered buffer bit-for-bit, including bits 32-35 that don't fit in a
// 32-bit device byte count.
func TestGatherScatterFullWidth(t *testing.T) {
	cm, m, sink := setup(t)

	srcSeg := m.CreateSegment(128)
	srcView, err := m.GetStorage(srcSeg)
	if err != nil {
		t.Fatalf("GetStorage: %v", err)
	}
	for i := 0; i < 128; i++ {
		// top nibble (bits 32-35) set on every word, which a 4-byte
		// device packing would silently drop.
		v := word.Word36(0o17<<32) | word.Word36(i)
		if err := srcView.Set(i, v); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	prog := &Program{
		IOPUpi: 5, CMIndex: 0, DeviceIndex: 0,
		Function: device.Write, BlockID: 1,
		ACWs: []ACW{
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(srcSeg), Offset: 0}, Count: 128, Modifier: Increment},
		},
	}
	cm.Submit(7, prog)
	select {
	case tr := <-sink.ch:
		if tr.Program.Status != StatusSuccessful {
			t.Fatalf("write status = %v", tr.Program.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write completion")
	}

	dstSeg := m.CreateSegment(128)
	readProg := &Program{
		IOPUpi: 5, CMIndex: 0, DeviceIndex: 0,
		Function: device.Read, BlockID: 1,
		ACWs: []ACW{
			{Address: addr.AbsoluteAddress{UPI: 3, Segment: uint32(dstSeg), Offset: 0}, Count: 128, Modifier: Increment},
		},
	}
	cm.Submit(7, readProg)
	select {
	case tr := <-sink.ch:
		if tr.Program.Status != StatusSuccessful {
			t.Fatalf("read status = %v", tr.Program.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read completion")
	}

	dstView, _ := m.GetStorage(dstSeg)
	for i := 0; i < 128; i++ {
		got, _ := dstView.Get(i)
		want := word.Word36(0o17<<32) | word.Word36(i)
		if got != want {
			t.Fatalf("word %d: got %#o want %#o (top nibble lost)", i, got, want)
		}
	}
}

func TestUnconfiguredDevice(t *testing.T) {
	cm, _, sink := setup(t)
	prog := &Program{DeviceIndex: 99, Function: device.None}
	cm.Submit(7, prog)
	tr := <-sink.ch
	if tr.Program.Status != StatusUnconfiguredDevice {
		t.Fatalf("status = %v want UnconfiguredDevice", tr.Program.Status)
	}
}
