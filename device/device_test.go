package device

import (
	"bytes"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
)

func TestDiskWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk0.pack")
	if err := Prep(path, 128, 4); err != nil {
		t.Fatalf("Prep: %v", err)
	}
	d := NewFileSystemDiskDevice("DISK0")
	if err := d.Mount(path); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := d.SetReady(true); err != nil {
		t.Fatalf("SetReady: %v", err)
	}
	// Clear unit attention like a GetInfo would.
	_ = d.Submit(&IOInfo{Function: GetInfo})

	content := make([]byte, 128)
	rand.New(rand.NewSource(1)).Read(content)

	writeInfo := &IOInfo{Function: Write, BlockID: 2, Buffer: content}
	if err := d.Submit(writeInfo); err != nil {
		t.Fatalf("write: %v", err)
	}
	if writeInfo.Status != Successful {
		t.Fatalf("write status = %v", writeInfo.Status)
	}

	readInfo := &IOInfo{Function: Read, BlockID: 2, Count: 128}
	if err := d.Submit(readInfo); err != nil {
		t.Fatalf("read: %v", err)
	}
	if readInfo.Status != Successful {
		t.Fatalf("read status = %v", readInfo.Status)
	}
	if !bytes.Equal(readInfo.Buffer, content) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDiskUnitAttentionBlocksIOUntilGetInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk1.pack")
	_ = Prep(path, 128, 1)
	d := NewFileSystemDiskDevice("DISK1")
	_ = d.Mount(path)
	_ = d.SetReady(true)

	info := &IOInfo{Function: Read, BlockID: 0, Count: 128}
	if err := d.Submit(info); err != ErrUnitAttention {
		t.Fatalf("expected ErrUnitAttention, got %v", err)
	}
}

func TestDiskWriteProtected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk2.pack")
	_ = Prep(path, 128, 1)
	d := NewFileSystemDiskDevice("DISK2")
	_ = d.Mount(path)
	_ = d.SetReady(true)
	_ = d.Submit(&IOInfo{Function: GetInfo})
	d.SetWriteProtected(true)

	info := &IOInfo{Function: Write, BlockID: 0, Buffer: make([]byte, 128)}
	if err := d.Submit(info); err != ErrWriteProtected {
		t.Fatalf("expected ErrWriteProtected, got %v", err)
	}
}

func TestDiskInvalidBlockSize(t *testing.T) {
	if err := Prep("/dev/null/bogus", 100, 1); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("expected ErrInvalidBlockSize, got %v", err)
	}
}

func TestTapeUnloadRewinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tape0.tap")
	_ = Prep(path, 128, 0)
	d := NewFileSystemTapeDevice("TAPE0")
	if err := d.Mount(path); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	_ = d.SetReady(true)

	info := &IOInfo{Function: Unload}
	if err := d.Submit(info); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if d.IsMounted() {
		t.Fatalf("expected unmounted after unload")
	}
}
