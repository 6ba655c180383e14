package platform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Wire header consumed by the bootstrap stage. The stage runs before any
// higher-level access mechanism is available and reads these fields by raw
// byte offset from the descriptor base, so the offsets are a binary ABI
// contract, not a layout convenience. All scalars are little-endian to match
// the RISC-V target.
const (
	// NameOffset is the byte offset of the NUL-padded board name.
	NameOffset = 0x00
	// NameSize is the fixed capacity of the name field, including the
	// terminating NUL.
	NameSize = 0x40
	// FeaturesOffset is the byte offset of the 64-bit feature set.
	FeaturesOffset = 0x40
	// HartCountOffset is the byte offset of the 32-bit hart count.
	HartCountOffset = 0x48
	// HartStackSizeOffset is the byte offset of the 32-bit per-hart stack
	// size.
	HartStackSizeOffset = 0x4c
	// DisabledHartsOffset is the byte offset of the 64-bit disabled hart
	// mask, carried after the contractual fields so the bootstrap stage can
	// park disabled harts early.
	DisabledHartsOffset = 0x50
	// HeaderSize is the total size of the wire header.
	HeaderSize = 0x58
)

// rawHeader mirrors the wire layout. The constant expressions below fail to
// compile if any field drifts from its contractual offset.
type rawHeader struct {
	name          [NameSize]byte
	features      uint64
	hartCount     uint32
	hartStackSize uint32
	disabledHarts uint64
}

const (
	_ = -(unsafe.Offsetof(rawHeader{}.name) - NameOffset)
	_ = -(unsafe.Offsetof(rawHeader{}.features) - FeaturesOffset)
	_ = -(unsafe.Offsetof(rawHeader{}.hartCount) - HartCountOffset)
	_ = -(unsafe.Offsetof(rawHeader{}.hartStackSize) - HartStackSizeOffset)
	_ = -(unsafe.Offsetof(rawHeader{}.disabledHarts) - DisabledHartsOffset)
	_ = -(unsafe.Sizeof(rawHeader{}) - HeaderSize)
)

// Header is the decoded form of the wire header.
type Header struct {
	Name          string
	Features      FeatureSet
	HartCount     uint32
	HartStackSize uint32
	DisabledHarts HartMask
}

// Header returns the descriptor's wire header. An absent descriptor returns
// the zero header.
func (d *Descriptor) Header() Header {
	if d == nil {
		return Header{}
	}
	return Header{
		Name:          d.name,
		Features:      d.features,
		HartCount:     d.hartCount,
		HartStackSize: d.hartStackSize,
		DisabledHarts: d.disabledHarts,
	}
}

// AppendHeader encodes h and appends the HeaderSize bytes to dst. Names
// longer than the field capacity are truncated; the name field always ends
// with at least one NUL.
func AppendHeader(dst []byte, h Header) []byte {
	var name [NameSize]byte
	copy(name[:NameSize-1], h.Name)

	dst = append(dst, name[:]...)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(h.Features))
	dst = binary.LittleEndian.AppendUint32(dst, h.HartCount)
	dst = binary.LittleEndian.AppendUint32(dst, h.HartStackSize)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(h.DisabledHarts))
	return dst
}

// ParseHeader decodes a wire header from the start of b. Reserved feature
// bits are carried through untouched.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("platform: header truncated: %d bytes, need %d", len(b), HeaderSize)
	}

	name := b[NameOffset : NameOffset+NameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return Header{
		Name:          string(name),
		Features:      FeatureSet(binary.LittleEndian.Uint64(b[FeaturesOffset:])),
		HartCount:     binary.LittleEndian.Uint32(b[HartCountOffset:]),
		HartStackSize: binary.LittleEndian.Uint32(b[HartStackSizeOffset:]),
		DisabledHarts: HartMask(binary.LittleEndian.Uint64(b[DisabledHartsOffset:])),
	}, nil
}
