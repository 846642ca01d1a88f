package fat

import "github.com/dbalsom/fluxfox-fat/internal/ucs2"

// lfnChecksum computes the standard FAT LFN checksum over an 11-byte
// short name per spec.md §4.3.
func lfnChecksum(shortName [11]byte) byte {
	var c byte
	for _, b := range shortName {
		var carry byte
		if c&1 != 0 {
			carry = 0x80
		}
		c = carry + (c >> 1) + b
	}
	return c
}

// lfnState is the explicit state of the LFN assembler, per spec.md §9's
// call for "Empty / Expecting(index, checksum, buffer) / Finalized"
// rather than implicit field juggling.
type lfnState int

const (
	lfnEmpty lfnState = iota
	lfnExpecting
	lfnFinalized
)

// lfnAssembler consumes LFN fragments in on-disk order (reverse name
// order) and reconstructs the long name, validating sequence and
// checksum as it goes.
type lfnAssembler struct {
	state    lfnState
	expected int // next fragment index expected (counts down to 1)
	checksum byte
	units    []uint16
}

func (a *lfnAssembler) clear() {
	a.state = lfnEmpty
	a.expected = 0
	a.checksum = 0
	a.units = nil
}

// push feeds one LFN fragment to the assembler.
func (a *lfnAssembler) push(f LFNFragment) {
	idx := f.Index()
	if f.IsLast() {
		if idx == 0 {
			a.clear()
			return
		}
		a.units = make([]uint16, idx*unitsPerFrag)
		a.checksum = f.Checksum
		a.expected = idx
		copy(a.units[(idx-1)*unitsPerFrag:idx*unitsPerFrag], f.Units[:])
		a.state = lfnExpecting
		return
	}

	if a.state != lfnExpecting || idx != a.expected-1 || f.Checksum != a.checksum {
		a.clear()
		return
	}
	copy(a.units[(idx-1)*unitsPerFrag:idx*unitsPerFrag], f.Units[:])
	a.expected--
}

// validate checks the accumulated checksum against the short name of the
// short entry that terminates this run. On mismatch the assembler clears
// and the caller falls back to the short name.
func (a *lfnAssembler) validate(shortName [11]byte) {
	if a.state != lfnExpecting {
		return
	}
	if lfnChecksum(shortName) != a.checksum {
		a.clear()
		return
	}
	if a.expected == 1 {
		a.state = lfnFinalized
	} else {
		a.clear()
	}
}

// finalize returns the assembled long name, or "" if the run never
// reached a complete, validated sequence.
func (a *lfnAssembler) finalize() string {
	if a.state != lfnFinalized {
		return ""
	}
	return ucs2.Decode(a.units)
}

// splitLFN splits name into the on-disk fragment sequence (fragment N,
// the LAST fragment, first) for the given checksum. Returns nil if name
// is empty (no LFN needed, short name suffices).
func splitLFN(name string, checksum byte) []LFNFragment {
	units := ucs2.Encode(name)
	n := (len(units) + unitsPerFrag - 1) / unitsPerFrag
	if n == 0 {
		return nil
	}
	frags := make([]LFNFragment, n)
	for i := 0; i < n; i++ {
		idx := i + 1 // 1-based
		var u [unitsPerFrag]uint16
		start := i * unitsPerFrag
		for j := 0; j < unitsPerFrag; j++ {
			pos := start + j
			switch {
			case pos < len(units):
				u[j] = units[pos]
			case pos == len(units):
				u[j] = 0x0000
			default:
				u[j] = 0xFFFF
			}
		}
		order := byte(idx)
		if idx == n {
			order |= lfnLastFlag
		}
		frags[i] = LFNFragment{Order: order, Checksum: checksum, Units: u}
	}
	// on-disk order: fragment N (LAST) first, then N-1, ..., then 1.
	onDisk := make([]LFNFragment, n)
	for i, f := range frags {
		onDisk[n-1-i] = f
	}
	return onDisk
}
