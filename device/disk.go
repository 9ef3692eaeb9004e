package device

import (
	"fmt"
	"os"
	"sync"
)

// FileSystemDiskDevice is a disk unit backed by a host file containing a
// scratch-pad header followed by blockCount*blockSize bytes of data.
type FileSystemDiskDevice struct {
	mu             sync.Mutex
	name           string
	file           *os.File
	ready          bool
	mounted        bool
	writeProtected bool
	unitAttention  bool
	blockSize      int
	blockCount     uint64
}

// NewFileSystemDiskDevice creates an unmounted, not-ready disk device.
func NewFileSystemDiskDevice(name string) *FileSystemDiskDevice {
	return &FileSystemDiskDevice{name: name}
}

func (d *FileSystemDiskDevice) Name() string { return d.name }
func (d *FileSystemDiskDevice) Kind() Kind    { return KindDisk }

// Mount opens path, requires the device not already mounted, validates the
// scratch-pad header, and sets unit attention (spec section 4.3).
func (d *FileSystemDiskDevice) Mount(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounted {
		return ErrAlreadyMounted
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("device: mount: %w", err)
	}
	hdr, err := readScratchHeader(f)
	if err != nil {
		f.Close()
		return err
	}
	if !ValidDiskBlockSizes[int(hdr.BlockSize)] {
		f.Close()
		return fmt.Errorf("%w: size %d", ErrInvalidBlockSize, hdr.BlockSize)
	}
	d.file = f
	d.blockSize = int(hdr.BlockSize)
	d.blockCount = uint64(hdr.BlockCount)
	d.mounted = true
	d.unitAttention = true
	return nil
}

// SetReady requires mounted to set true; false is always permitted.
func (d *FileSystemDiskDevice) SetReady(ready bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ready && !d.mounted {
		return ErrNotMounted
	}
	d.ready = ready
	return nil
}

func (d *FileSystemDiskDevice) IsReady() bool          { d.mu.Lock(); defer d.mu.Unlock(); return d.ready }
func (d *FileSystemDiskDevice) IsMounted() bool        { d.mu.Lock(); defer d.mu.Unlock(); return d.mounted }
func (d *FileSystemDiskDevice) WriteProtected() bool   { d.mu.Lock(); defer d.mu.Unlock(); return d.writeProtected }
func (d *FileSystemDiskDevice) SetWriteProtected(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeProtected = v
}
func (d *FileSystemDiskDevice) BlockSize() int      { d.mu.Lock(); defer d.mu.Unlock(); return d.blockSize }
func (d *FileSystemDiskDevice) BlockCount() uint64  { d.mu.Lock(); defer d.mu.Unlock(); return d.blockCount }

// Submit processes one IOInfo request to completion, single-threaded per
// device (spec section 4.3 "processed in FIFO order").
func (d *FileSystemDiskDevice) Submit(info *IOInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch info.Function {
	case None:
		info.Status = Successful
		return nil
	case GetInfo:
		info.Buffer = d.buildInfoBlock()
		d.unitAttention = false
		info.Status = Successful
		return nil
	case Read:
		return d.read(info)
	case Write:
		return d.write(info)
	case Reset:
		if !d.ready {
			return ErrNotReady
		}
		info.Status = Successful
		return nil
	case Unload:
		// Unload is a tape-only function.
		info.Status = Failed
		return fmt.Errorf("device: unload not supported on disk")
	default:
		info.Status = Failed
		return fmt.Errorf("device: unknown function %v", info.Function)
	}
}

func (d *FileSystemDiskDevice) buildInfoBlock() []byte {
	buf := make([]byte, 28*4) // 28 words, 4 bytes each
	buf[0] = 'D'
	buf[1] = 'I'
	buf[2] = 'S'
	buf[3] = 'K'
	return buf
}

func (d *FileSystemDiskDevice) checkCommon() error {
	if !d.ready {
		return ErrNotReady
	}
	if d.unitAttention {
		return ErrUnitAttention
	}
	return nil
}

func (d *FileSystemDiskDevice) read(info *IOInfo) error {
	if err := d.checkCommon(); err != nil {
		info.Status = Failed
		return err
	}
	if info.Count%d.blockSize != 0 && info.Count != d.blockSize {
		info.Status = Failed
		return ErrInvalidBlockSize
	}
	if info.BlockID >= d.blockCount {
		info.Status = Failed
		return ErrInvalidBlockID
	}
	nBlocks := info.Count / d.blockSize
	if nBlocks == 0 {
		nBlocks = 1
	}
	if info.BlockID+uint64(nBlocks) > d.blockCount {
		info.Status = Failed
		return ErrInvalidBlockCount
	}
	offset := int64(headerSize) + int64(info.BlockID)*int64(d.blockSize)
	buf := make([]byte, nBlocks*d.blockSize)
	if _, err := d.file.ReadAt(buf, offset); err != nil {
		info.Status = Failed
		return fmt.Errorf("device: read: %w", err)
	}
	info.Buffer = buf
	info.Status = Successful
	return nil
}

func (d *FileSystemDiskDevice) write(info *IOInfo) error {
	if err := d.checkCommon(); err != nil {
		info.Status = Failed
		return err
	}
	if d.writeProtected {
		info.Status = Failed
		return ErrWriteProtected
	}
	if len(info.Buffer)%d.blockSize != 0 {
		info.Status = Failed
		return ErrInvalidBlockSize
	}
	nBlocks := len(info.Buffer) / d.blockSize
	if info.BlockID+uint64(nBlocks) > d.blockCount {
		info.Status = Failed
		return ErrInvalidBlockCount
	}
	offset := int64(headerSize) + int64(info.BlockID)*int64(d.blockSize)
	if _, err := d.file.WriteAt(info.Buffer, offset); err != nil {
		info.Status = Failed
		return fmt.Errorf("device: write: %w", err)
	}
	info.Status = Successful
	return nil
}

func (d *FileSystemDiskDevice) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.mounted = false
	d.ready = false
}

// Prep writes a fresh scratch-pad header and zero-filled data area to
// path, creating media that FileSystemDiskDevice.Mount can then attach.
// A convenience the spec's out-of-scope linker/assembler tooling would
// otherwise have to provide (SPEC_FULL.md Non-goals).
func Prep(path string, blockSize int, blockCount uint64) error {
	if !ValidDiskBlockSizes[blockSize] {
		return fmt.Errorf("%w: size %d", ErrInvalidBlockSize, blockSize)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeScratchHeader(f, scratchHeader{
		Identifier:   headerIdentifier,
		MajorVersion: majorVersion,
		MinorVersion: minorVersion,
		PrepFactor:   uint32(blockSize / 4),
		BlockSize:    uint32(blockSize),
		BlockCount:   uint32(blockCount),
	}); err != nil {
		return err
	}
	zero := make([]byte, blockSize)
	for i := uint64(0); i < blockCount; i++ {
		if _, err := f.Write(zero); err != nil {
			return err
		}
	}
	return nil
}
