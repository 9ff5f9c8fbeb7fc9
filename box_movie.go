package bmff

import "unicode/utf8"

func maxVersion(vs ...uint8) uint8 {
	var m uint8
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

// Mvhd is the movie header: overall timescale, duration, and the
// identity-unless-edited transformation matrix.
type Mvhd struct {
	NoChildren
	CreationTime     Mp4DateTime
	ModificationTime Mp4DateTime
	Timescale        uint32
	Duration         Mp4Duration
	Rate             Fixed16_16
	Volume           Fixed8_8
	Matrix           Matrix3x3
	NextTrackID      uint32
}

func (Mvhd) BoxID() FourCC       { return fourccMvhd }
func (*Mvhd) RequiredFlags() Flags { return 0 }

func (m *Mvhd) RequiredVersion() uint8 {
	return maxVersion(m.CreationTime.RequiredVersion(), m.ModificationTime.RequiredVersion(), m.Duration.RequiredVersion())
}

func (m *Mvhd) DataByteSize(ctx Context) int {
	return m.CreationTime.ByteSize(ctx) + m.ModificationTime.ByteSize(ctx) + 4 +
		m.Duration.ByteSize(ctx) + 4 + 2 + 10 + m.Matrix.ByteSize() + 24 + 4
}

func (m *Mvhd) ReadData(ctx Context, r *Reader, _ int64) error {
	if err := m.CreationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := m.ModificationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	ts, err := r.ReadUint32()
	if err != nil {
		return err
	}
	m.Timescale = ts
	if err := m.Duration.ReadVersioned(ctx, r); err != nil {
		return err
	}
	rate, err := r.ReadUint32()
	if err != nil {
		return err
	}
	m.Rate = FromBits16_16(rate)
	vol, err := r.ReadUint16()
	if err != nil {
		return err
	}
	m.Volume = FromBits8_8(vol)
	if err := r.Skip(10); err != nil {
		return err
	}
	if err := m.Matrix.Read(r); err != nil {
		return err
	}
	if err := r.Skip(24); err != nil {
		return err
	}
	next, err := r.ReadUint32()
	if err != nil {
		return err
	}
	m.NextTrackID = next
	return nil
}

func (m *Mvhd) WriteData(ctx Context, w *Writer) error {
	if err := m.CreationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := m.ModificationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Timescale); err != nil {
		return err
	}
	if err := m.Duration.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Rate.Bits()); err != nil {
		return err
	}
	if err := w.WriteUint16(m.Volume.Bits()); err != nil {
		return err
	}
	if err := w.WriteZeros(10); err != nil {
		return err
	}
	if err := m.Matrix.Write(w); err != nil {
		return err
	}
	if err := w.WriteZeros(24); err != nil {
		return err
	}
	return w.WriteUint32(m.NextTrackID)
}

// Tkhd flag bits.
const (
	tkhdFlagEnabled   Flags = 0x000001
	tkhdFlagInMovie   Flags = 0x000002
	tkhdFlagInPreview Flags = 0x000004
)

// Tkhd is the track header: identity, enabled/movie/preview state,
// duration, and the track's own transformation matrix and presentation
// size.
type Tkhd struct {
	NoChildren
	TrackEnabled     bool
	TrackInMovie     bool
	TrackInPreview   bool
	CreationTime     Mp4DateTime
	ModificationTime Mp4DateTime
	TrackID          uint32
	Duration         Mp4Duration
	Layer            int16
	AlternateGroup   int16
	Volume           Fixed8_8
	Matrix           Matrix3x3
	Width            Fixed16_16
	Height           Fixed16_16
}

func (Tkhd) BoxID() FourCC { return fourccTkhd }

func (t *Tkhd) RequiredVersion() uint8 {
	return maxVersion(t.CreationTime.RequiredVersion(), t.ModificationTime.RequiredVersion(), t.Duration.RequiredVersion())
}

func (t *Tkhd) RequiredFlags() Flags {
	var f Flags
	if t.TrackEnabled {
		f |= tkhdFlagEnabled
	}
	if t.TrackInMovie {
		f |= tkhdFlagInMovie
	}
	if t.TrackInPreview {
		f |= tkhdFlagInPreview
	}
	return f
}

func (t *Tkhd) DataByteSize(ctx Context) int {
	return t.CreationTime.ByteSize(ctx) + t.ModificationTime.ByteSize(ctx) + 4 + 4 +
		t.Duration.ByteSize(ctx) + 8 + 2 + 2 + 2 + 2 + t.Matrix.ByteSize() + 4 + 4
}

func (t *Tkhd) ReadData(ctx Context, r *Reader, _ int64) error {
	t.TrackEnabled = ctx.Flags.Has(tkhdFlagEnabled)
	t.TrackInMovie = ctx.Flags.Has(tkhdFlagInMovie)
	t.TrackInPreview = ctx.Flags.Has(tkhdFlagInPreview)
	if err := t.CreationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := t.ModificationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	id, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.TrackID = id
	if err := r.Skip(4); err != nil {
		return err
	}
	if err := t.Duration.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := r.Skip(8); err != nil {
		return err
	}
	layer, err := r.ReadUint16()
	if err != nil {
		return err
	}
	t.Layer = int16(layer)
	ag, err := r.ReadUint16()
	if err != nil {
		return err
	}
	t.AlternateGroup = int16(ag)
	vol, err := r.ReadUint16()
	if err != nil {
		return err
	}
	t.Volume = FromBits8_8(vol)
	if err := r.Skip(2); err != nil {
		return err
	}
	if err := t.Matrix.Read(r); err != nil {
		return err
	}
	width, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.Width = FromBits16_16(width)
	height, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.Height = FromBits16_16(height)
	return nil
}

func (t *Tkhd) WriteData(ctx Context, w *Writer) error {
	if err := t.CreationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := t.ModificationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteUint32(t.TrackID); err != nil {
		return err
	}
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	if err := t.Duration.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteZeros(8); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(t.Layer)); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(t.AlternateGroup)); err != nil {
		return err
	}
	if err := w.WriteUint16(t.Volume.Bits()); err != nil {
		return err
	}
	if err := w.WriteZeros(2); err != nil {
		return err
	}
	if err := t.Matrix.Write(w); err != nil {
		return err
	}
	if err := w.WriteUint32(t.Width.Bits()); err != nil {
		return err
	}
	return w.WriteUint32(t.Height.Bits())
}

// Mdhd is the media header: the timescale and duration of a single
// track's media, plus its declared language.
type Mdhd struct {
	NoChildren
	CreationTime     Mp4DateTime
	ModificationTime Mp4DateTime
	Timescale        uint32
	Duration         Mp4Duration
	Language         Mp4LanguageCode
}

func (Mdhd) BoxID() FourCC         { return fourccMdhd }
func (*Mdhd) RequiredFlags() Flags { return 0 }

func (m *Mdhd) RequiredVersion() uint8 {
	return maxVersion(m.CreationTime.RequiredVersion(), m.ModificationTime.RequiredVersion(), m.Duration.RequiredVersion())
}

func (m *Mdhd) DataByteSize(ctx Context) int {
	return m.CreationTime.ByteSize(ctx) + m.ModificationTime.ByteSize(ctx) + 4 +
		m.Duration.ByteSize(ctx) + m.Language.ByteSize() + 2
}

func (m *Mdhd) ReadData(ctx Context, r *Reader, _ int64) error {
	if err := m.CreationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := m.ModificationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	ts, err := r.ReadUint32()
	if err != nil {
		return err
	}
	m.Timescale = ts
	if err := m.Duration.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := m.Language.Read(r); err != nil {
		return err
	}
	return r.Skip(2) // quality, unused
}

func (m *Mdhd) WriteData(ctx Context, w *Writer) error {
	if err := m.CreationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := m.ModificationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Timescale); err != nil {
		return err
	}
	if err := m.Duration.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := m.Language.Write(w); err != nil {
		return err
	}
	return w.WriteZeros(2)
}

// Hdlr declares the media handler type ("vide", "soun", ...) and a
// human-readable name.
type Hdlr struct {
	NoChildren
	HandlerType FourCC
	Name        CString
}

func (Hdlr) BoxID() FourCC         { return fourccHdlr }
func (*Hdlr) RequiredVersion() uint8 { return 0 }
func (*Hdlr) RequiredFlags() Flags   { return 0 }

func (h *Hdlr) DataByteSize(Context) int { return 4 + 4 + 12 + h.Name.ByteSize() }

func (h *Hdlr) ReadData(_ Context, r *Reader, end int64) error {
	if err := r.Skip(4); err != nil { // pre_defined
		return err
	}
	if err := r.ReadFixed(h.HandlerType[:]); err != nil {
		return err
	}
	if err := r.Skip(12); err != nil { // reserved
		return err
	}
	var buf []byte
	for end < 0 || r.Pos() < end {
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
	h.Name = CString(buf)
	return nil
}

func (h *Hdlr) WriteData(_ Context, w *Writer) error {
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	if err := w.WriteBytes(h.HandlerType[:]); err != nil {
		return err
	}
	if err := w.WriteZeros(12); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(h.Name)); err != nil {
		return err
	}
	return w.WriteUint8(0)
}
