package device

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerIdentifier = "KOMODO"
	headerSize       = 128
	majorVersion     = 1
	minorVersion     = 0
)

// scratchHeader is the first 128 bytes of a mounted disk or tape file
// (spec section 6, "Scratch-pad header on a mounted volume").
type scratchHeader struct {
	Identifier   string
	MajorVersion uint32
	MinorVersion uint32
	PrepFactor   uint32 // words per block
	BlockSize    uint32 // bytes
	BlockCount   uint32
}

func writeScratchHeader(w io.Writer, h scratchHeader) error {
	buf := make([]byte, headerSize)
	copy(buf[0:8], padIdentifier(h.Identifier))
	binary.LittleEndian.PutUint32(buf[8:12], h.MajorVersion)
	binary.LittleEndian.PutUint32(buf[12:16], h.MinorVersion)
	binary.LittleEndian.PutUint32(buf[16:20], h.PrepFactor)
	binary.LittleEndian.PutUint32(buf[20:24], h.BlockSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.BlockCount)
	_, err := w.Write(buf)
	return err
}

func readScratchHeader(r io.Reader) (scratchHeader, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return scratchHeader{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	ident := trimIdentifier(buf[0:8])
	if ident != headerIdentifier {
		return scratchHeader{}, fmt.Errorf("%w: identifier %q", ErrBadHeader, ident)
	}
	h := scratchHeader{
		Identifier:   ident,
		MajorVersion: binary.LittleEndian.Uint32(buf[8:12]),
		MinorVersion: binary.LittleEndian.Uint32(buf[12:16]),
		PrepFactor:   binary.LittleEndian.Uint32(buf[16:20]),
		BlockSize:    binary.LittleEndian.Uint32(buf[20:24]),
		BlockCount:   binary.LittleEndian.Uint32(buf[24:28]),
	}
	if h.MajorVersion != majorVersion {
		return scratchHeader{}, fmt.Errorf("%w: major version %d, want %d", ErrBadHeader, h.MajorVersion, majorVersion)
	}
	return h, nil
}

func padIdentifier(s string) []byte {
	b := make([]byte, 8)
	copy(b, s)
	return b
}

func trimIdentifier(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
