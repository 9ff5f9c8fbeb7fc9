package bmff

import (
	"math"
	"unicode/utf8"
)

// Entry is the capability a fixed-shape array element implements so it
// can be read/written inside an [Array].
type Entry interface {
	ByteSize() int
	Read(r *Reader) error
	Write(w *Writer) error
}

// Array is a length-prefixed array: a big-endian uint32 count followed
// by that many T's. T is the element struct; PT is its pointer type,
// which must implement Entry — the standard "generic over a pointer
// method set" shape used throughout the standard library's encoding
// packages.
type Array[T any, PT interface {
	*T
	Entry
}] struct {
	Items []T
}

// ByteSize is 4 (count) plus the sum of each element's byte size.
func (a Array[T, PT]) ByteSize() int {
	n := 4
	for i := range a.Items {
		n += PT(&a.Items[i]).ByteSize()
	}
	return n
}

// Read replaces Items with count entries read from r.
func (a *Array[T, PT]) Read(r *Reader) error {
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	a.Items = make([]T, count)
	for i := range a.Items {
		if err := PT(&a.Items[i]).Read(r); err != nil {
			return err
		}
	}
	return nil
}

// Write emits the count followed by every entry.
func (a Array[T, PT]) Write(w *Writer) error {
	if err := w.WriteUint32(uint32(len(a.Items))); err != nil {
		return err
	}
	for i := range a.Items {
		if err := PT(&a.Items[i]).Write(w); err != nil {
			return err
		}
	}
	return nil
}

// VersionedEntry is the capability a version-sensitive array element
// implements so it can be read/written inside a [VersionedArray].
type VersionedEntry interface {
	ByteSize(ctx Context) int
	RequiredVersion() uint8
	ReadVersioned(ctx Context, r *Reader) error
	WriteVersioned(ctx Context, w *Writer) error
}

// VersionedArray is a length-prefixed array whose element wire shape
// depends on the enclosing full box's version (e.g. elst's 32- vs
// 64-bit duration/time fields).
type VersionedArray[T any, PT interface {
	*T
	VersionedEntry
}] struct {
	Items []T
}

func (a VersionedArray[T, PT]) ByteSize(ctx Context) int {
	n := 4
	for i := range a.Items {
		n += PT(&a.Items[i]).ByteSize(ctx)
	}
	return n
}

// RequiredVersion is the max required version across all entries.
func (a VersionedArray[T, PT]) RequiredVersion() uint8 {
	var v uint8
	for i := range a.Items {
		if rv := PT(&a.Items[i]).RequiredVersion(); rv > v {
			v = rv
		}
	}
	return v
}

func (a *VersionedArray[T, PT]) ReadVersioned(ctx Context, r *Reader) error {
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	a.Items = make([]T, count)
	for i := range a.Items {
		if err := PT(&a.Items[i]).ReadVersioned(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (a VersionedArray[T, PT]) WriteVersioned(ctx Context, w *Writer) error {
	if err := w.WriteUint32(uint32(len(a.Items))); err != nil {
		return err
	}
	for i := range a.Items {
		if err := PT(&a.Items[i]).WriteVersioned(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// U32Entry is a bare big-endian uint32 array element (stco, stss).
type U32Entry uint32

func (e *U32Entry) ByteSize() int { return 4 }
func (e *U32Entry) Read(r *Reader) error {
	v, err := r.ReadUint32()
	*e = U32Entry(v)
	return err
}
func (e *U32Entry) Write(w *Writer) error { return w.WriteUint32(uint32(*e)) }

// U64Entry is a bare big-endian uint64 array element (co64).
type U64Entry uint64

func (e *U64Entry) ByteSize() int { return 8 }
func (e *U64Entry) Read(r *Reader) error {
	v, err := r.ReadUint64()
	*e = U64Entry(v)
	return err
}
func (e *U64Entry) Write(w *Writer) error { return w.WriteUint64(uint64(*e)) }

// Fixed16_16 is a 16.16 signed fixed-point number (e.g. mvhd rate,
// sample entry dimensions), stored as its 32-bit bit pattern.
type Fixed16_16 int32

func NewFixed16_16(whole int16, frac uint16) Fixed16_16 {
	return Fixed16_16(int32(whole)<<16 | int32(frac))
}
func (f Fixed16_16) Bits() uint32 { return uint32(f) }
func FromBits16_16(bits uint32) Fixed16_16 { return Fixed16_16(int32(bits)) }

// Fixed2_30 is a 2.30 signed fixed-point number (matrix entries).
type Fixed2_30 int32

func (f Fixed2_30) Bits() uint32          { return uint32(f) }
func FromBits2_30(bits uint32) Fixed2_30 { return Fixed2_30(int32(bits)) }

// Fixed8_8 is an 8.8 signed fixed-point number (e.g. mvhd volume),
// stored as its 16-bit bit pattern.
type Fixed8_8 int16

func (f Fixed8_8) Bits() uint16         { return uint16(f) }
func FromBits8_8(bits uint16) Fixed8_8 { return Fixed8_8(int16(bits)) }

// Matrix3x3 is the 9-entry 2.30 transformation matrix carried by mvhd
// and tkhd. The unity value is {0x10000,0,0, 0,0x10000,0, 0,0,0x40000000}.
type Matrix3x3 [9]Fixed2_30

// UnityMatrix is the identity transformation.
var UnityMatrix = Matrix3x3{
	FromBits2_30(0x00010000), 0, 0,
	0, FromBits2_30(0x00010000), 0,
	0, 0, FromBits2_30(0x40000000),
}

func (m Matrix3x3) ByteSize() int { return 36 }

func (m *Matrix3x3) Read(r *Reader) error {
	for i := range m {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		m[i] = FromBits2_30(v)
	}
	return nil
}

func (m Matrix3x3) Write(w *Writer) error {
	for _, v := range m {
		if err := w.WriteUint32(v.Bits()); err != nil {
			return err
		}
	}
	return nil
}

// VersionedU32U64 holds a 64-bit value that serializes as a uint32 at
// full-box version 0 and a uint64 at version 1, promoting automatically
// whenever the value is math.MaxUint32 or larger. Used by mvhd/tkhd/mdhd
// timestamps and mehd/tfdt durations.
type VersionedU32U64 uint64

func (v VersionedU32U64) RequiredVersion() uint8 {
	if uint64(v) >= math.MaxUint32 {
		return 1
	}
	return 0
}

func (v VersionedU32U64) ByteSize(ctx Context) int {
	if ctx.Version >= 1 {
		return 8
	}
	return 4
}

func (v *VersionedU32U64) ReadVersioned(ctx Context, r *Reader) error {
	if ctx.Version >= 1 {
		val, err := r.ReadUint64()
		*v = VersionedU32U64(val)
		return err
	}
	val, err := r.ReadUint32()
	*v = VersionedU32U64(val)
	return err
}

func (v VersionedU32U64) WriteVersioned(ctx Context, w *Writer) error {
	if ctx.Version >= 1 {
		return w.WriteUint64(uint64(v))
	}
	return w.WriteUint32(uint32(v))
}

// Mp4DateTime is a timestamp in seconds since 1904-01-01T00:00:00Z.
// Calendar conversion is the caller's responsibility.
type Mp4DateTime struct{ Seconds VersionedU32U64 }

func (d Mp4DateTime) RequiredVersion() uint8                       { return d.Seconds.RequiredVersion() }
func (d Mp4DateTime) ByteSize(ctx Context) int                      { return d.Seconds.ByteSize(ctx) }
func (d *Mp4DateTime) ReadVersioned(ctx Context, r *Reader) error  { return d.Seconds.ReadVersioned(ctx, r) }
func (d Mp4DateTime) WriteVersioned(ctx Context, w *Writer) error  { return d.Seconds.WriteVersioned(ctx, w) }

// mp4DurationSentinel32/64 are the "unknown duration" wire values.
const (
	mp4DurationSentinel32 = math.MaxUint32
	mp4DurationSentinel64 = math.MaxUint64
)

// Mp4Duration is an optional duration: None encodes as all-ones at the
// active width (uint32 at version 0, uint64 at version 1); any other
// value is the duration itself and cannot collide with the sentinel.
type Mp4Duration struct {
	Value   uint64
	Present bool
}

func KnownDuration(v uint64) Mp4Duration { return Mp4Duration{Value: v, Present: true} }
func UnknownDuration() Mp4Duration       { return Mp4Duration{} }

func (d Mp4Duration) RequiredVersion() uint8 {
	if d.Present && d.Value >= math.MaxUint32 {
		return 1
	}
	return 0
}

func (d Mp4Duration) ByteSize(ctx Context) int {
	if ctx.Version >= 1 {
		return 8
	}
	return 4
}

func (d *Mp4Duration) ReadVersioned(ctx Context, r *Reader) error {
	if ctx.Version >= 1 {
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		if v == mp4DurationSentinel64 {
			*d = UnknownDuration()
		} else {
			*d = KnownDuration(v)
		}
		return nil
	}
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if v == mp4DurationSentinel32 {
		*d = UnknownDuration()
	} else {
		*d = KnownDuration(uint64(v))
	}
	return nil
}

func (d Mp4Duration) WriteVersioned(ctx Context, w *Writer) error {
	if ctx.Version >= 1 {
		if !d.Present {
			return w.WriteUint64(mp4DurationSentinel64)
		}
		return w.WriteUint64(d.Value)
	}
	if !d.Present {
		return w.WriteUint32(mp4DurationSentinel32)
	}
	return w.WriteUint32(uint32(d.Value))
}

// VersionedSignedU32 is an offset field that serializes as an unsigned
// uint32 at version 0 and a signed int32 at version >= 1 (composition
// time offsets in ctts/trun). Writing a negative value at version 0 is
// a Custom error.
type VersionedSignedU32 struct {
	Signed bool
	U      uint32
	S      int32
}

func Unsigned32(v uint32) VersionedSignedU32 { return VersionedSignedU32{U: v} }
func Signed32(v int32) VersionedSignedU32    { return VersionedSignedU32{Signed: true, S: v} }

func (v VersionedSignedU32) RequiredVersion() uint8 {
	if v.Signed && v.S < 0 {
		return 1
	}
	return 0
}

func (v VersionedSignedU32) ByteSize(Context) int { return 4 }

func (v *VersionedSignedU32) ReadVersioned(ctx Context, r *Reader) error {
	if ctx.Version >= 1 {
		n, err := r.ReadInt32()
		*v = Signed32(n)
		return err
	}
	n, err := r.ReadUint32()
	*v = Unsigned32(n)
	return err
}

func (v VersionedSignedU32) WriteVersioned(ctx Context, w *Writer) error {
	if ctx.Version >= 1 {
		if v.Signed {
			return w.WriteInt32(v.S)
		}
		return w.WriteInt32(int32(v.U))
	}
	if v.Signed && v.S < 0 {
		return &Error{Kind: ErrCustom, Err: errNegativeOffsetAtV0}
	}
	if v.Signed {
		return w.WriteUint32(uint32(v.S))
	}
	return w.WriteUint32(v.U)
}

// Int32 returns the value as a plain signed integer, regardless of
// which arm produced it.
func (v VersionedSignedU32) Int32() int32 {
	if v.Signed {
		return v.S
	}
	return int32(v.U)
}

// PaddedByte packs a small value into the low (8-reservedBits) bits of
// a byte, with the top reservedBits bits fixed at padValue (0 or 1).
// Go has no value-level (const) generic parameters, so reservedBits and
// padValue are constructor arguments rather than type parameters — the
// two real instantiations below (avcC's lengthSizeMinusOne and NAL unit
// counts) pin them down as named types.
type PaddedByte struct {
	reservedBits int
	padValue     uint8
	Value        uint8
}

func lowMask(reservedBits int) uint8 { return uint8(1<<uint(8-reservedBits)) - 1 }

func newPaddedByte(reservedBits int, padValue, value uint8) PaddedByte {
	return PaddedByte{reservedBits: reservedBits, padValue: padValue, Value: value & lowMask(reservedBits)}
}

func (p PaddedByte) ByteSize() int { return 1 }

func (p *PaddedByte) read(r *Reader) error {
	b, err := r.ReadUint8()
	if err != nil {
		return err
	}
	p.Value = b & lowMask(p.reservedBits)
	return nil
}

func (p PaddedByte) write(w *Writer) error {
	var pad uint8
	if p.padValue != 0 {
		pad = ^lowMask(p.reservedBits)
	}
	return w.WriteUint8(pad | (p.Value & lowMask(p.reservedBits)))
}

// LengthSizeMinusOne is avcC's 2-bit NALUnitLength-size field, packed
// with its 6 reserved bits fixed at 1 (0b1111_11xx on the wire).
type LengthSizeMinusOne struct{ PaddedByte }

func NewLengthSizeMinusOne(v uint8) LengthSizeMinusOne {
	return LengthSizeMinusOne{newPaddedByte(6, 1, v)}
}
func (p *LengthSizeMinusOne) Read(r *Reader) error { return p.read(r) }
func (p LengthSizeMinusOne) Write(w *Writer) error { return p.write(w) }

// ParamSetCount is avcC's 5-bit SPS count field, with its top 3 bits
// reserved at 1 (0b111x_xxxx on the wire). The 8-bit PPS count is a
// plain byte and does not use this type.
type ParamSetCount struct{ PaddedByte }

func NewParamSetCount(v uint8) ParamSetCount {
	return ParamSetCount{newPaddedByte(3, 1, v)}
}
func (p *ParamSetCount) Read(r *Reader) error { return p.read(r) }
func (p ParamSetCount) Write(w *Writer) error { return p.write(w) }

// Mp4LanguageCode packs a 3-letter lower-case ISO-639-2 code into 15
// bits of a uint16, with the top bit always 0. "und" (undetermined) is
// the sentinel used when no code is known; any code outside 'a'..'z'
// per letter is lossy and decodes back to "und".
type Mp4LanguageCode uint16

// UndeterminedLanguage is the "und" sentinel.
var UndeterminedLanguage = mustLanguageCode("und")

func mustLanguageCode(s string) Mp4LanguageCode {
	c, ok := NewMp4LanguageCode(s)
	if !ok {
		panic("bmff: invalid built-in language code " + s)
	}
	return c
}

// NewMp4LanguageCode packs a 3-letter lower-case ISO-639-2 code. It
// reports false (and returns the "und" sentinel) if code is not exactly
// three letters in 'a'..'z'.
func NewMp4LanguageCode(code string) (Mp4LanguageCode, bool) {
	if len(code) != 3 {
		return UndeterminedLanguage, false
	}
	var packed uint16
	for _, c := range []byte(code) {
		if c < 'a' || c > 'z' {
			return UndeterminedLanguage, false
		}
		packed = packed<<5 | uint16(c-0x60)
	}
	return Mp4LanguageCode(packed), true
}

// String unpacks the 3-letter code, or "und" if the bits decode outside
// 'a'..'z' per letter.
func (c Mp4LanguageCode) String() string {
	b := [3]byte{
		byte((c>>10)&0x1f) + 0x60,
		byte((c>>5)&0x1f) + 0x60,
		byte(c&0x1f) + 0x60,
	}
	for _, x := range b {
		if x < 'a' || x > 'z' {
			return "und"
		}
	}
	return string(b[:])
}

func (c Mp4LanguageCode) ByteSize() int { return 2 }

func (c *Mp4LanguageCode) Read(r *Reader) error {
	v, err := r.ReadUint16()
	*c = Mp4LanguageCode(v & 0x7fff)
	return err
}

func (c Mp4LanguageCode) Write(w *Writer) error { return w.WriteUint16(uint16(c)) }

// CString is a null-terminated UTF-8 string field (hdlr's name, url's
// location). Byte size is len(bytes)+1 for the terminator.
type CString string

func (s CString) ByteSize() int { return len(s) + 1 }

func (s *CString) Read(r *Reader) error {
	var buf []byte
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	if !utf8.Valid(buf) {
		return &Error{Kind: ErrBadUTF8}
	}
	*s = CString(buf)
	return nil
}

func (s CString) Write(w *Writer) error {
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteUint8(0)
}
