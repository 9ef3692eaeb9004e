package device

import (
	"fmt"
	"sync"
)

// ScratchDiskDevice is a disk unit backed by process memory rather than a
// host file -- used for temporary work volumes that need not survive
// process restart.
type ScratchDiskDevice struct {
	mu             sync.Mutex
	name           string
	data           []byte
	ready          bool
	mounted        bool
	writeProtected bool
	unitAttention  bool
	blockSize      int
	blockCount     uint64
}

func NewScratchDiskDevice(name string) *ScratchDiskDevice {
	return &ScratchDiskDevice{name: name}
}

func (d *ScratchDiskDevice) Name() string { return d.name }
func (d *ScratchDiskDevice) Kind() Kind    { return KindDisk }

// Mount for a scratch disk takes a size specification rather than a host
// path; path is interpreted as "blockSize:blockCount".
func (d *ScratchDiskDevice) Mount(spec string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounted {
		return ErrAlreadyMounted
	}
	var blockSize, blockCount int
	if _, err := fmt.Sscanf(spec, "%d:%d", &blockSize, &blockCount); err != nil {
		return fmt.Errorf("device: scratch mount spec %q: %w", spec, err)
	}
	if !ValidDiskBlockSizes[blockSize] {
		return fmt.Errorf("%w: size %d", ErrInvalidBlockSize, blockSize)
	}
	d.blockSize = blockSize
	d.blockCount = uint64(blockCount)
	d.data = make([]byte, blockSize*blockCount)
	d.mounted = true
	d.unitAttention = true
	return nil
}

func (d *ScratchDiskDevice) SetReady(ready bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ready && !d.mounted {
		return ErrNotMounted
	}
	d.ready = ready
	return nil
}

func (d *ScratchDiskDevice) IsReady() bool   { d.mu.Lock(); defer d.mu.Unlock(); return d.ready }
func (d *ScratchDiskDevice) IsMounted() bool { d.mu.Lock(); defer d.mu.Unlock(); return d.mounted }
func (d *ScratchDiskDevice) WriteProtected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeProtected
}
func (d *ScratchDiskDevice) SetWriteProtected(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeProtected = v
}
func (d *ScratchDiskDevice) BlockSize() int     { d.mu.Lock(); defer d.mu.Unlock(); return d.blockSize }
func (d *ScratchDiskDevice) BlockCount() uint64 { d.mu.Lock(); defer d.mu.Unlock(); return d.blockCount }

func (d *ScratchDiskDevice) Submit(info *IOInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch info.Function {
	case None:
		info.Status = Successful
		return nil
	case GetInfo:
		info.Buffer = make([]byte, 28*4)
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
	default:
		info.Status = Failed
		return fmt.Errorf("device: unsupported function %v on scratch disk", info.Function)
	}
}

func (d *ScratchDiskDevice) checkCommon() error {
	if !d.ready {
		return ErrNotReady
	}
	if d.unitAttention {
		return ErrUnitAttention
	}
	return nil
}

func (d *ScratchDiskDevice) read(info *IOInfo) error {
	if err := d.checkCommon(); err != nil {
		info.Status = Failed
		return err
	}
	nBlocks := info.Count / d.blockSize
	if nBlocks == 0 {
		nBlocks = 1
	}
	if info.BlockID+uint64(nBlocks) > d.blockCount {
		info.Status = Failed
		return ErrInvalidBlockCount
	}
	start := int(info.BlockID) * d.blockSize
	end := start + nBlocks*d.blockSize
	buf := make([]byte, end-start)
	copy(buf, d.data[start:end])
	info.Buffer = buf
	info.Status = Successful
	return nil
}

func (d *ScratchDiskDevice) write(info *IOInfo) error {
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
	start := int(info.BlockID) * d.blockSize
	copy(d.data[start:], info.Buffer)
	info.Status = Successful
	return nil
}

func (d *ScratchDiskDevice) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = nil
	d.mounted = false
	d.ready = false
}
