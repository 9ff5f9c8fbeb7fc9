package bmff

import (
	"encoding/binary"
	"io"
)

var be = binary.BigEndian

// Context threads a full box's (version, flags) down to its field
// codecs. Base boxes use the zero Context; field codecs whose shape does
// not depend on the version ignore it.
type Context struct {
	Version uint8
	Flags   Flags
}

// Field is the capability every fixed-shape, non-versioned wire value
// implements: it knows its own on-wire byte size. [Readable] and
// [Writable] add reading and writing.
type Field interface {
	ByteSize() int
}

// Readable reads a value of a fixed wire shape.
type Readable interface {
	Field
	Read(r *Reader) error
}

// Writable writes a value of a fixed wire shape.
type Writable interface {
	Field
	Write(w *Writer) error
}

// VersionedField is the capability for values whose wire shape depends
// on the enclosing full box's (version, flags). Per the Design Notes,
// this package has no blanket "promote a plain Field to VersionedField"
// mechanism (Go has no such generic trick available to it). The
// version-sensitive composites (VersionedU32U64, Mp4DateTime,
// Mp4Duration, VersionedSignedU32) expose ByteSize(ctx),
// RequiredVersion, ReadVersioned and WriteVersioned, but not
// VersionedByteSize or RequiredFlags, so no type in this package
// satisfies this interface.
type VersionedField interface {
	VersionedByteSize(ctx Context) int
	RequiredVersion() uint8
	RequiredFlags() Flags
	ReadVersioned(ctx Context, r *Reader) error
	WriteVersioned(ctx Context, w *Writer) error
}

// Reader is a cursor over a seekable byte stream, used to decode box
// trees. Reads and seeks are the package's only suspension points.
type Reader struct {
	rs      io.ReadSeeker
	pos     int64
	scratch [8]byte
}

// NewReader wraps rs for box decoding. [Reader.Pos] starts at 0 and
// [Reader.SeekTo] seeks rs to that same absolute offset, so logical
// positions match rs's own offsets only when rs is at offset 0 when
// wrapped.
func NewReader(rs io.ReadSeeker) *Reader {
	return &Reader{rs: rs}
}

// Pos returns the reader's logical position.
func (r *Reader) Pos() int64 { return r.pos }

// SeekTo moves the cursor to an absolute logical position.
func (r *Reader) SeekTo(pos int64) error {
	if _, err := r.rs.Seek(pos, io.SeekStart); err != nil {
		return ioErr(nil, err)
	}
	r.pos = pos
	return nil
}

// readFull fills p from the stream, advancing the logical position by
// the number of bytes actually read; a short read is an ErrIO.
func (r *Reader) readFull(p []byte) error {
	n, err := io.ReadFull(r.rs, p)
	r.pos += int64(n)
	if err != nil {
		return ioErr(nil, err)
	}
	return nil
}

// AtEOF reports whether the stream has no more bytes to read.
func (r *Reader) AtEOF() (bool, error) {
	var b [1]byte
	n, err := r.rs.Read(b[:])
	if n > 0 {
		if _, serr := r.rs.Seek(-1, io.SeekCurrent); serr != nil {
			return false, ioErr(nil, serr)
		}
	}
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, ioErr(nil, err)
	}
	return n == 0, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.readFull(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.readFull(r.scratch[:2]); err != nil {
		return 0, err
	}
	return be.Uint16(r.scratch[:2]), nil
}

// ReadUint24 reads a big-endian 24-bit unsigned integer.
func (r *Reader) ReadUint24() (uint32, error) {
	if err := r.readFull(r.scratch[:3]); err != nil {
		return 0, err
	}
	return uint32(r.scratch[0])<<16 | uint32(r.scratch[1])<<8 | uint32(r.scratch[2]), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.readFull(r.scratch[:4]); err != nil {
		return 0, err
	}
	return be.Uint32(r.scratch[:4]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.readFull(r.scratch[:8]); err != nil {
		return 0, err
	}
	return be.Uint64(r.scratch[:8]), nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadFixed reads exactly len(buf) raw bytes into buf.
func (r *Reader) ReadFixed(buf []byte) error {
	return r.readFull(buf)
}

// Skip advances the cursor n bytes without retaining the contents (used
// for reserved/padding fields).
func (r *Reader) Skip(n int) error {
	return r.SeekTo(r.pos + int64(n))
}

// ReadHeader reads one box header (size, id, optional extended size,
// optional UUID) starting at the current position.
func (r *Reader) ReadHeader() (Header, error) {
	start := r.pos
	size32, err := r.ReadUint32()
	if err != nil {
		return Header{}, err
	}
	var fourCC FourCC
	if err := r.ReadFixed(fourCC[:]); err != nil {
		return Header{}, err
	}

	var size BoxSize
	switch size32 {
	case 0:
		size = UnknownSize()
	case 1:
		ext, err := r.ReadUint64()
		if err != nil {
			return Header{}, err
		}
		size = KnownSize(ext)
	default:
		size = KnownSize(uint64(size32))
	}

	id := NewBoxID(fourCC)
	if fourCC == uuidFourCC {
		raw, err := r.ReadBytes(16)
		if err != nil {
			return Header{}, err
		}
		var u [16]byte
		copy(u[:], raw)
		id = NewUUIDBoxID(u)
	}

	h := Header{Size: size, ID: id}
	_ = start
	return h, nil
}

// Writer is a cursor over an output stream, used to encode box trees.
type Writer struct {
	w       io.Writer
	n       int64
	Options Options
	scratch [8]byte
}

// NewWriter wraps w for box encoding.
func NewWriter(w io.Writer, opts Options) *Writer {
	return &Writer{w: w, Options: opts}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 { return w.n }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		return ioErr(nil, err)
	}
	return nil
}

func (w *Writer) WriteUint8(v uint8) error {
	w.scratch[0] = v
	return w.write(w.scratch[:1])
}

func (w *Writer) WriteUint16(v uint16) error {
	be.PutUint16(w.scratch[:2], v)
	return w.write(w.scratch[:2])
}

// WriteUint24 writes a big-endian 24-bit unsigned integer.
func (w *Writer) WriteUint24(v uint32) error {
	w.scratch[0] = byte(v >> 16)
	w.scratch[1] = byte(v >> 8)
	w.scratch[2] = byte(v)
	return w.write(w.scratch[:3])
}

func (w *Writer) WriteUint32(v uint32) error {
	be.PutUint32(w.scratch[:4], v)
	return w.write(w.scratch[:4])
}

func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) error {
	be.PutUint64(w.scratch[:8], v)
	return w.write(w.scratch[:8])
}

func (w *Writer) WriteBytes(p []byte) error { return w.write(p) }

// WriteZeros writes n zero bytes (used for reserved fields).
func (w *Writer) WriteZeros(n int) error {
	var zeros [32]byte
	for n > 0 {
		k := n
		if k > len(zeros) {
			k = len(zeros)
		}
		if err := w.write(zeros[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

// WriteFixedString writes s padded or truncated to exactly length bytes
// with trailing NUL padding.
func (w *Writer) WriteFixedString(s string, length int) error {
	b := make([]byte, length)
	copy(b, s)
	return w.write(b)
}

// WriteHeader writes a box header.
func (w *Writer) WriteHeader(h Header) error {
	if h.usesExtendedSize() {
		if err := w.WriteUint32(1); err != nil {
			return err
		}
	} else if !h.Size.Known {
		if err := w.WriteUint32(0); err != nil {
			return err
		}
	} else {
		if err := w.WriteUint32(uint32(h.Size.Value)); err != nil {
			return err
		}
	}
	if err := w.WriteBytes(h.ID.FourCC[:]); err != nil {
		return err
	}
	if h.usesExtendedSize() {
		if err := w.WriteUint64(h.Size.Value); err != nil {
			return err
		}
	}
	if h.ID.IsUUID {
		u, _ := h.ID.UUID.MarshalBinary()
		if err := w.WriteBytes(u); err != nil {
			return err
		}
	}
	return nil
}
