package bmff

import "math"

// Stsd is the sample description box: a list of per-format sample
// entries (visual, audio, ...) describing how to decode this track's
// samples.
type Stsd struct {
	Avc1    []*Box[*Avc1]
	Mp4a    []*Box[*Mp4a]
	Opus    []*Box[*OpusSampleEntry]
	Unknown []UnknownChild
}

func (Stsd) BoxID() FourCC          { return fourccStsd }
func (*Stsd) RequiredVersion() uint8 { return 0 }
func (*Stsd) RequiredFlags() Flags   { return 0 }

func (*Stsd) DataByteSize(Context) int { return 4 }

func (s *Stsd) ReadData(_ Context, r *Reader, _ int64) error {
	_, err := r.ReadUint32() // entry_count, redundant with the child list
	return err
}

func (s *Stsd) WriteData(_ Context, w *Writer) error {
	return w.WriteUint32(uint32(len(s.Avc1) + len(s.Mp4a) + len(s.Opus) + len(s.Unknown)))
}

func (s *Stsd) ChildByteSize() int {
	n := 0
	for _, e := range s.Avc1 {
		n += e.ByteSize()
	}
	for _, e := range s.Mp4a {
		n += e.ByteSize()
	}
	for _, e := range s.Opus {
		n += e.ByteSize()
	}
	for _, u := range s.Unknown {
		n += u.byteSize()
	}
	return n
}

func (s *Stsd) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccAvc1:
		box := NewBox(&Avc1{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		s.Avc1 = append(s.Avc1, box)
	case fourccMp4a:
		box := NewBox(&Mp4a{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		s.Mp4a = append(s.Mp4a, box)
	case fourccOpus:
		box := NewBox(&OpusSampleEntry{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		s.Opus = append(s.Opus, box)
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		s.Unknown = append(s.Unknown, c)
	}
	return nil
}

func (s *Stsd) WriteChildren(w *Writer) error {
	for _, e := range s.Avc1 {
		if err := e.Encode(w); err != nil {
			return err
		}
	}
	for _, e := range s.Mp4a {
		if err := e.Encode(w); err != nil {
			return err
		}
	}
	for _, e := range s.Opus {
		if err := e.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range s.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// SttsEntry is a time-to-sample run: Count samples, each Duration
// timescale units long.
type SttsEntry struct {
	Count    uint32
	Duration uint32
}

func (e *SttsEntry) ByteSize() int { return 8 }
func (e *SttsEntry) Read(r *Reader) error {
	c, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.Count = c
	d, err := r.ReadUint32()
	e.Duration = d
	return err
}
func (e *SttsEntry) Write(w *Writer) error {
	if err := w.WriteUint32(e.Count); err != nil {
		return err
	}
	return w.WriteUint32(e.Duration)
}

// Stts is the (decoding) time-to-sample box.
type Stts struct {
	NoChildren
	Entries Array[SttsEntry, *SttsEntry]
}

func (Stts) BoxID() FourCC          { return fourccStts }
func (*Stts) RequiredVersion() uint8 { return 0 }
func (*Stts) RequiredFlags() Flags   { return 0 }
func (s *Stts) DataByteSize(Context) int          { return s.Entries.ByteSize() }
func (s *Stts) ReadData(_ Context, r *Reader, _ int64) error { return s.Entries.Read(r) }
func (s *Stts) WriteData(_ Context, w *Writer) error         { return s.Entries.Write(w) }

// CttsEntry is a composition-time-to-sample run: Count samples each
// offset from their decode time by Offset.
type CttsEntry struct {
	Count  uint32
	Offset VersionedSignedU32
}

func (e *CttsEntry) ByteSize(ctx Context) int   { return 4 + e.Offset.ByteSize(ctx) }
func (e *CttsEntry) RequiredVersion() uint8     { return e.Offset.RequiredVersion() }
func (e *CttsEntry) ReadVersioned(ctx Context, r *Reader) error {
	c, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.Count = c
	return e.Offset.ReadVersioned(ctx, r)
}
func (e *CttsEntry) WriteVersioned(ctx Context, w *Writer) error {
	if err := w.WriteUint32(e.Count); err != nil {
		return err
	}
	return e.Offset.WriteVersioned(ctx, w)
}

// Ctts is the composition-time-to-sample box.
type Ctts struct {
	NoChildren
	Entries VersionedArray[CttsEntry, *CttsEntry]
}

func (Ctts) BoxID() FourCC          { return fourccCtts }
func (c *Ctts) RequiredVersion() uint8 { return c.Entries.RequiredVersion() }
func (*Ctts) RequiredFlags() Flags   { return 0 }
func (c *Ctts) DataByteSize(ctx Context) int                 { return c.Entries.ByteSize(ctx) }
func (c *Ctts) ReadData(ctx Context, r *Reader, _ int64) error { return c.Entries.ReadVersioned(ctx, r) }
func (c *Ctts) WriteData(ctx Context, w *Writer) error         { return c.Entries.WriteVersioned(ctx, w) }

// StscEntry maps a run of chunks, starting at FirstChunk, to
// SamplesPerChunk samples described by SampleDescriptionID.
type StscEntry struct {
	FirstChunk          uint32
	SamplesPerChunk     uint32
	SampleDescriptionID uint32
}

func (e *StscEntry) ByteSize() int { return 12 }
func (e *StscEntry) Read(r *Reader) error {
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.FirstChunk = v
	if v, err = r.ReadUint32(); err != nil {
		return err
	}
	e.SamplesPerChunk = v
	v, err = r.ReadUint32()
	e.SampleDescriptionID = v
	return err
}
func (e *StscEntry) Write(w *Writer) error {
	if err := w.WriteUint32(e.FirstChunk); err != nil {
		return err
	}
	if err := w.WriteUint32(e.SamplesPerChunk); err != nil {
		return err
	}
	return w.WriteUint32(e.SampleDescriptionID)
}

// Stsc is the sample-to-chunk box.
type Stsc struct {
	NoChildren
	Entries Array[StscEntry, *StscEntry]
}

func (Stsc) BoxID() FourCC          { return fourccStsc }
func (*Stsc) RequiredVersion() uint8 { return 0 }
func (*Stsc) RequiredFlags() Flags   { return 0 }
func (s *Stsc) DataByteSize(Context) int          { return s.Entries.ByteSize() }
func (s *Stsc) ReadData(_ Context, r *Reader, _ int64) error { return s.Entries.Read(r) }
func (s *Stsc) WriteData(_ Context, w *Writer) error         { return s.Entries.Write(w) }

// Stco is the chunk offset box (32-bit offsets).
type Stco struct {
	NoChildren
	Entries Array[U32Entry, *U32Entry]
}

func (Stco) BoxID() FourCC          { return fourccStco }
func (*Stco) RequiredVersion() uint8 { return 0 }
func (*Stco) RequiredFlags() Flags   { return 0 }
func (s *Stco) DataByteSize(Context) int          { return s.Entries.ByteSize() }
func (s *Stco) ReadData(_ Context, r *Reader, _ int64) error { return s.Entries.Read(r) }
func (s *Stco) WriteData(_ Context, w *Writer) error         { return s.Entries.Write(w) }

// Co64 is the chunk offset box (64-bit offsets), used once a movie's
// data no longer fits 32-bit byte offsets.
type Co64 struct {
	NoChildren
	Entries Array[U64Entry, *U64Entry]
}

func (Co64) BoxID() FourCC          { return fourccCo64 }
func (*Co64) RequiredVersion() uint8 { return 0 }
func (*Co64) RequiredFlags() Flags   { return 0 }
func (c *Co64) DataByteSize(Context) int          { return c.Entries.ByteSize() }
func (c *Co64) ReadData(_ Context, r *Reader, _ int64) error { return c.Entries.Read(r) }
func (c *Co64) WriteData(_ Context, w *Writer) error         { return c.Entries.Write(w) }

// Stss is the sync sample box: sample numbers (1-based) of the random
// access points.
type Stss struct {
	NoChildren
	Entries Array[U32Entry, *U32Entry]
}

func (Stss) BoxID() FourCC          { return fourccStss }
func (*Stss) RequiredVersion() uint8 { return 0 }
func (*Stss) RequiredFlags() Flags   { return 0 }
func (s *Stss) DataByteSize(Context) int          { return s.Entries.ByteSize() }
func (s *Stss) ReadData(_ Context, r *Reader, _ int64) error { return s.Entries.Read(r) }
func (s *Stss) WriteData(_ Context, w *Writer) error         { return s.Entries.Write(w) }

// StszSimple is the Stsz variant in which every sample has the same
// size, so no per-sample table is stored.
type StszSimple struct {
	SampleSize  uint32
	SampleCount uint32
}

// StszAdvanced is the Stsz variant carrying an explicit per-sample size
// table.
type StszAdvanced struct {
	Sizes []uint32
}

// Stsz is the sample size box, tagged between a single uniform size
// (StszSimple) and an explicit per-sample table (StszAdvanced) — the
// two arms share one wire encoding distinguished by sample_size == 0.
type Stsz struct {
	NoChildren
	Simple   *StszSimple
	Advanced *StszAdvanced
}

func (Stsz) BoxID() FourCC          { return fourccStsz }
func (*Stsz) RequiredVersion() uint8 { return 0 }
func (*Stsz) RequiredFlags() Flags   { return 0 }

func (s *Stsz) DataByteSize(Context) int {
	n := 8
	if s.Advanced != nil {
		n += 4 * len(s.Advanced.Sizes)
	}
	return n
}

func (s *Stsz) ReadData(_ Context, r *Reader, _ int64) error {
	sampleSize, err := r.ReadUint32()
	if err != nil {
		return err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if sampleSize != 0 {
		s.Simple = &StszSimple{SampleSize: sampleSize, SampleCount: count}
		s.Advanced = nil
		return nil
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		sizes[i] = v
	}
	s.Advanced = &StszAdvanced{Sizes: sizes}
	s.Simple = nil
	return nil
}

func (s *Stsz) WriteData(_ Context, w *Writer) error {
	if s.Advanced != nil {
		if err := w.WriteUint32(0); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(len(s.Advanced.Sizes))); err != nil {
			return err
		}
		for _, v := range s.Advanced.Sizes {
			if err := w.WriteUint32(v); err != nil {
				return err
			}
		}
		return nil
	}
	simple := s.Simple
	if simple == nil {
		simple = &StszSimple{}
	}
	if err := w.WriteUint32(simple.SampleSize); err != nil {
		return err
	}
	return w.WriteUint32(simple.SampleCount)
}

// ElstEntry is one edit list segment.
type ElstEntry struct {
	SegmentDuration uint64
	MediaTime       int64
	MediaRateInt    int16
	MediaRateFrac   int16
}

func fitsInt32(v int64) bool { return v == int64(int32(v)) }

func (e *ElstEntry) RequiredVersion() uint8 {
	if e.SegmentDuration > math.MaxUint32 || !fitsInt32(e.MediaTime) {
		return 1
	}
	return 0
}

func (e *ElstEntry) ByteSize(ctx Context) int {
	if ctx.Version >= 1 {
		return 20
	}
	return 12
}

func (e *ElstEntry) ReadVersioned(ctx Context, r *Reader) error {
	if ctx.Version >= 1 {
		d, err := r.ReadUint64()
		if err != nil {
			return err
		}
		e.SegmentDuration = d
		t, err := r.ReadUint64()
		if err != nil {
			return err
		}
		e.MediaTime = int64(t)
	} else {
		d, err := r.ReadUint32()
		if err != nil {
			return err
		}
		e.SegmentDuration = uint64(d)
		t, err := r.ReadInt32()
		if err != nil {
			return err
		}
		e.MediaTime = int64(t)
	}
	rateInt, err := r.ReadUint16()
	if err != nil {
		return err
	}
	e.MediaRateInt = int16(rateInt)
	rateFrac, err := r.ReadUint16()
	e.MediaRateFrac = int16(rateFrac)
	return err
}

func (e *ElstEntry) WriteVersioned(ctx Context, w *Writer) error {
	if ctx.Version >= 1 {
		if err := w.WriteUint64(e.SegmentDuration); err != nil {
			return err
		}
		if err := w.WriteUint64(uint64(e.MediaTime)); err != nil {
			return err
		}
	} else {
		if err := w.WriteUint32(uint32(e.SegmentDuration)); err != nil {
			return err
		}
		if err := w.WriteInt32(int32(e.MediaTime)); err != nil {
			return err
		}
	}
	if err := w.WriteUint16(uint16(e.MediaRateInt)); err != nil {
		return err
	}
	return w.WriteUint16(uint16(e.MediaRateFrac))
}

// Elst is the edit list box.
type Elst struct {
	NoChildren
	Entries VersionedArray[ElstEntry, *ElstEntry]
}

func (Elst) BoxID() FourCC            { return fourccElst }
func (e *Elst) RequiredVersion() uint8 { return e.Entries.RequiredVersion() }
func (*Elst) RequiredFlags() Flags     { return 0 }
func (e *Elst) DataByteSize(ctx Context) int                 { return e.Entries.ByteSize(ctx) }
func (e *Elst) ReadData(ctx Context, r *Reader, _ int64) error { return e.Entries.ReadVersioned(ctx, r) }
func (e *Elst) WriteData(ctx Context, w *Writer) error         { return e.Entries.WriteVersioned(ctx, w) }
