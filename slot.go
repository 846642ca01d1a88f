package fat

import "encoding/binary"

// slotSize is the fixed on-disk size of every directory entry shape.
const slotSize = 32

// Attribute bits for a short (8.3) directory entry, per the Microsoft FAT
// on-disk format.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20

	// AttrLongName is the reserved attribute value (all of the four bits
	// below set) marking a slot as an LFN fragment rather than a short
	// entry.
	AttrLongName byte = 0x0F

	attrLFNMask = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

const (
	freeMarker       byte = 0xE5
	terminatorMarker byte = 0x00
	kanjiEscape      byte = 0x05 // real 0xE5 in name[0], escaped
)

// byte offsets within a short-entry slot.
const (
	offName            = 0
	offAttr            = 11
	offReserved        = 12
	offCreateTimeTenth = 13
	offCreateTime      = 14
	offCreateDate      = 16
	offAccessDate      = 18
	offClusterHi       = 20
	offModifyTime      = 22
	offModifyDate      = 24
	offClusterLo       = 26
	offSize            = 28
)

// byte offsets within an LFN fragment slot.
const (
	offLFNOrder    = 0
	offLFNName1    = 1  // 5 code units, 10 bytes
	offLFNAttr     = 11 // always AttrLongName
	offLFNType     = 12
	offLFNChecksum = 13
	offLFNName2    = 14 // 6 code units, 12 bytes
	offLFNClustLo  = 26 // always 0
	offLFNName3    = 28 // 2 code units, 4 bytes

	lfnLastFlag  = 0x40
	lfnIndexMask = 0x1F
	unitsPerFrag = 13
)

// slotKind identifies which physical shape a 32-byte slot decodes as.
type slotKind int

const (
	slotShort slotKind = iota
	slotLFN
)

// classifySlot applies the §4.1 discriminator: the attribute byte at
// offset 11, masked against the non-LFN attribute bits, equals the LFN
// reserved value iff the slot is an LFN fragment.
func classifySlot(buf []byte) slotKind {
	if buf[offAttr]&attrLFNMask == AttrLongName {
		return slotLFN
	}
	return slotShort
}

// ShortEntry is the decoded form of a short (8.3) directory slot: a file
// or subdirectory record.
type ShortEntry struct {
	Name            [11]byte
	Attr            byte
	Reserved        byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	AccessDate      uint16
	ClusterHi       uint16
	ModifyTime      uint16
	ModifyDate      uint16
	ClusterLo       uint16
	Size            uint32
}

// Cluster returns the entry's first cluster number, or 0 for "no
// cluster" (empty file, or the root-directory convention).
func (e *ShortEntry) Cluster() uint32 {
	return uint32(e.ClusterHi)<<16 | uint32(e.ClusterLo)
}

// SetCluster stores c split across the high/low cluster fields.
func (e *ShortEntry) SetCluster(c uint32) {
	e.ClusterHi = uint16(c >> 16)
	e.ClusterLo = uint16(c & 0xFFFF)
}

func (e *ShortEntry) IsFree() bool       { return e.Name[0] == freeMarker }
func (e *ShortEntry) IsTerminator() bool { return e.Name[0] == terminatorMarker }
func (e *ShortEntry) IsVolumeID() bool   { return e.Attr&AttrVolumeID != 0 }
func (e *ShortEntry) IsDir() bool        { return e.Attr&AttrDirectory != 0 }

// markFree rewrites the entry in place as free, preserving every other
// field so a half-completed removal is idempotent on retry.
func (e *ShortEntry) markFree() {
	e.Name[0] = freeMarker
}

func decodeShortEntry(buf []byte) ShortEntry {
	_ = buf[slotSize-1]
	var e ShortEntry
	copy(e.Name[:], buf[offName:offName+11])
	e.Attr = buf[offAttr]
	e.Reserved = buf[offReserved]
	e.CreateTimeTenth = buf[offCreateTimeTenth]
	e.CreateTime = binary.LittleEndian.Uint16(buf[offCreateTime:])
	e.CreateDate = binary.LittleEndian.Uint16(buf[offCreateDate:])
	e.AccessDate = binary.LittleEndian.Uint16(buf[offAccessDate:])
	e.ClusterHi = binary.LittleEndian.Uint16(buf[offClusterHi:])
	e.ModifyTime = binary.LittleEndian.Uint16(buf[offModifyTime:])
	e.ModifyDate = binary.LittleEndian.Uint16(buf[offModifyDate:])
	e.ClusterLo = binary.LittleEndian.Uint16(buf[offClusterLo:])
	e.Size = binary.LittleEndian.Uint32(buf[offSize:])
	return e
}

func (e ShortEntry) encode(buf []byte) {
	_ = buf[slotSize-1]
	copy(buf[offName:offName+11], e.Name[:])
	buf[offAttr] = e.Attr
	buf[offReserved] = e.Reserved
	buf[offCreateTimeTenth] = e.CreateTimeTenth
	binary.LittleEndian.PutUint16(buf[offCreateTime:], e.CreateTime)
	binary.LittleEndian.PutUint16(buf[offCreateDate:], e.CreateDate)
	binary.LittleEndian.PutUint16(buf[offAccessDate:], e.AccessDate)
	binary.LittleEndian.PutUint16(buf[offClusterHi:], e.ClusterHi)
	binary.LittleEndian.PutUint16(buf[offModifyTime:], e.ModifyTime)
	binary.LittleEndian.PutUint16(buf[offModifyDate:], e.ModifyDate)
	binary.LittleEndian.PutUint16(buf[offClusterLo:], e.ClusterLo)
	binary.LittleEndian.PutUint32(buf[offSize:], e.Size)
}

// LFNFragment is the decoded form of one LFN slot: up to 13 UCS-2 code
// units of a long file name, plus sequencing metadata.
type LFNFragment struct {
	Order    byte
	Type     byte
	Checksum byte
	Units    [unitsPerFrag]uint16
}

// Index returns the 1-based fragment position encoded in Order's low 5
// bits.
func (f *LFNFragment) Index() int { return int(f.Order & lfnIndexMask) }

// IsLast reports whether this is the fragment physically first in the
// slot stream (bit 0x40 of Order), holding the highest-indexed chunk of
// the name.
func (f *LFNFragment) IsLast() bool { return f.Order&lfnLastFlag != 0 }

// IsFree reports whether the order byte marks this slot as free.
func (f *LFNFragment) IsFree() bool { return f.Order == freeMarker }

func (f *LFNFragment) markFree() { f.Order = freeMarker }

func decodeLFNFragment(buf []byte) LFNFragment {
	_ = buf[slotSize-1]
	var f LFNFragment
	f.Order = buf[offLFNOrder]
	f.Type = buf[offLFNType]
	f.Checksum = buf[offLFNChecksum]
	decodeUnits(f.Units[0:5], buf[offLFNName1:offLFNName1+10])
	decodeUnits(f.Units[5:11], buf[offLFNName2:offLFNName2+12])
	decodeUnits(f.Units[11:13], buf[offLFNName3:offLFNName3+4])
	return f
}

func (f LFNFragment) encode(buf []byte) {
	_ = buf[slotSize-1]
	buf[offLFNOrder] = f.Order
	buf[offLFNAttr] = AttrLongName
	buf[offLFNType] = f.Type
	buf[offLFNChecksum] = f.Checksum
	encodeUnits(buf[offLFNName1:offLFNName1+10], f.Units[0:5])
	encodeUnits(buf[offLFNName2:offLFNName2+12], f.Units[5:11])
	encodeUnits(buf[offLFNName3:offLFNName3+4], f.Units[11:13])
	binary.LittleEndian.PutUint16(buf[offLFNClustLo:], 0)
}

func decodeUnits(dst []uint16, src []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint16(src[i*2:])
	}
}

func encodeUnits(dst []byte, src []uint16) {
	for i, u := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], u)
	}
}
