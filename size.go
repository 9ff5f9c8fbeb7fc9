package bmff

import "math"

// BoxSize is the header's size field: either a known total byte count
// (including the header itself), or the "to end of stream" sentinel.
// Per the ISOBMFF invariant, Unknown is only legal for the outermost box
// in a file (or an mdat-like payload read to end of stream) — any child
// box carrying it is a parse error (see ErrUnknownSizeForUnknownBox).
type BoxSize struct {
	Value uint64
	Known bool
}

// KnownSize builds a BoxSize carrying an explicit total byte count.
func KnownSize(n uint64) BoxSize { return BoxSize{Value: n, Known: true} }

// UnknownSize is the "extends to end of stream" sentinel.
func UnknownSize() BoxSize { return BoxSize{} }

// Ended reports whether the read cursor has reached this size's
// boundary relative to start, rewinding the reader to the exact
// boundary if a best-effort field parse overran it. Only meaningful
// for a Known size; callers must not invoke it for Unknown.
func (s BoxSize) Ended(r *Reader, start int64) (bool, error) {
	n := int64(s.Value)
	cur := r.Pos()
	if cur-start < n {
		return false, nil
	}
	if cur-start > n {
		if err := r.SeekTo(start + n); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Options tunes host-specific encode behavior.
type Options struct {
	// Force32BitSize refuses the 64-bit extended size form even when a
	// box's inner size would overflow 32 bits, mirroring a 32-bit host
	// that cannot represent the extended form. The encoder returns an
	// error in that case rather than silently truncating.
	Force32BitSize bool
}

// Header is a box's on-wire framing: its size and id.
type Header struct {
	Size BoxSize
	ID   BoxID
}

// ByteSize is the number of bytes this header occupies on the wire:
// 4 (size) + id.ByteSize() + 8 if the extended 64-bit size form is used.
func (h Header) ByteSize() int {
	n := 4 + h.ID.ByteSize()
	if h.usesExtendedSize() {
		n += 8
	}
	return n
}

func (h Header) usesExtendedSize() bool {
	return h.Size.Known && h.Size.Value > math.MaxUint32
}

// HeaderFromIDAndInnerSize builds a header for id whose body (data plus
// children, excluding the header itself) is inner bytes long. It picks
// the smallest size encoding that fits, refusing the 64-bit form when
// opts.Force32BitSize is set.
func HeaderFromIDAndInnerSize(id BoxID, inner uint64, opts Options) (Header, error) {
	base := uint64(4 + id.ByteSize())
	totalNoExt := base + inner
	if totalNoExt <= math.MaxUint32 {
		return Header{Size: KnownSize(totalNoExt), ID: id}, nil
	}
	if opts.Force32BitSize {
		return Header{}, &Error{Kind: ErrCustom, Err: errBoxTooLargeFor32Bit}
	}
	return Header{Size: KnownSize(base + 8 + inner), ID: id}, nil
}
