package bmff

// Mehd is the movie extends header: the fragmented movie's overall
// duration, if declared up front.
type Mehd struct {
	NoChildren
	FragmentDuration VersionedU32U64
}

func (Mehd) BoxID() FourCC            { return fourccMehd }
func (m *Mehd) RequiredVersion() uint8 { return m.FragmentDuration.RequiredVersion() }
func (*Mehd) RequiredFlags() Flags     { return 0 }
func (m *Mehd) DataByteSize(ctx Context) int { return m.FragmentDuration.ByteSize(ctx) }
func (m *Mehd) ReadData(ctx Context, r *Reader, _ int64) error {
	return m.FragmentDuration.ReadVersioned(ctx, r)
}
func (m *Mehd) WriteData(ctx Context, w *Writer) error {
	return m.FragmentDuration.WriteVersioned(ctx, w)
}

// Trex sets a track's per-fragment defaults, used whenever tfhd omits
// the corresponding field.
type Trex struct {
	NoChildren
	TrackID                       uint32
	DefaultSampleDescriptionIndex uint32
	DefaultSampleDuration         uint32
	DefaultSampleSize             uint32
	DefaultSampleFlags            uint32
}

func (Trex) BoxID() FourCC          { return fourccTrex }
func (*Trex) RequiredVersion() uint8 { return 0 }
func (*Trex) RequiredFlags() Flags   { return 0 }
func (*Trex) DataByteSize(Context) int { return 20 }

func (t *Trex) ReadData(_ Context, r *Reader, _ int64) error {
	var err error
	if t.TrackID, err = r.ReadUint32(); err != nil {
		return err
	}
	if t.DefaultSampleDescriptionIndex, err = r.ReadUint32(); err != nil {
		return err
	}
	if t.DefaultSampleDuration, err = r.ReadUint32(); err != nil {
		return err
	}
	if t.DefaultSampleSize, err = r.ReadUint32(); err != nil {
		return err
	}
	t.DefaultSampleFlags, err = r.ReadUint32()
	return err
}

func (t *Trex) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint32(t.TrackID); err != nil {
		return err
	}
	if err := w.WriteUint32(t.DefaultSampleDescriptionIndex); err != nil {
		return err
	}
	if err := w.WriteUint32(t.DefaultSampleDuration); err != nil {
		return err
	}
	if err := w.WriteUint32(t.DefaultSampleSize); err != nil {
		return err
	}
	return w.WriteUint32(t.DefaultSampleFlags)
}

// Mfhd is the movie fragment header: this fragment's sequence number.
type Mfhd struct {
	NoChildren
	SequenceNumber uint32
}

func (Mfhd) BoxID() FourCC          { return fourccMfhd }
func (*Mfhd) RequiredVersion() uint8 { return 0 }
func (*Mfhd) RequiredFlags() Flags   { return 0 }
func (*Mfhd) DataByteSize(Context) int { return 4 }
func (m *Mfhd) ReadData(_ Context, r *Reader, _ int64) error {
	v, err := r.ReadUint32()
	m.SequenceNumber = v
	return err
}
func (m *Mfhd) WriteData(_ Context, w *Writer) error { return w.WriteUint32(m.SequenceNumber) }

// Tfhd flag bits.
const (
	tfhdBaseDataOffsetPresent         Flags = 0x000001
	tfhdSampleDescriptionIndexPresent Flags = 0x000002
	tfhdDefaultSampleDurationPresent  Flags = 0x000008
	tfhdDefaultSampleSizePresent      Flags = 0x000010
	tfhdDefaultSampleFlagsPresent     Flags = 0x000020
	tfhdDurationIsEmpty               Flags = 0x010000
	tfhdDefaultBaseIsMoof              Flags = 0x020000
)

// Tfhd is the track fragment header: which track this fragment belongs
// to, and the per-fragment defaults that override trex.
type Tfhd struct {
	NoChildren
	TrackID                uint32
	BaseDataOffset         FlagOption[uint64]
	SampleDescriptionIndex FlagOption[uint32]
	DefaultSampleDuration  FlagOption[uint32]
	DefaultSampleSize      FlagOption[uint32]
	DefaultSampleFlags     FlagOption[uint32]
	DurationIsEmpty        bool
	DefaultBaseIsMoof      bool
}

func (Tfhd) BoxID() FourCC          { return fourccTfhd }
func (*Tfhd) RequiredVersion() uint8 { return 0 }

func (t *Tfhd) RequiredFlags() Flags {
	var f Flags
	if t.BaseDataOffset.Present {
		f |= tfhdBaseDataOffsetPresent
	}
	if t.SampleDescriptionIndex.Present {
		f |= tfhdSampleDescriptionIndexPresent
	}
	if t.DefaultSampleDuration.Present {
		f |= tfhdDefaultSampleDurationPresent
	}
	if t.DefaultSampleSize.Present {
		f |= tfhdDefaultSampleSizePresent
	}
	if t.DefaultSampleFlags.Present {
		f |= tfhdDefaultSampleFlagsPresent
	}
	if t.DurationIsEmpty {
		f |= tfhdDurationIsEmpty
	}
	if t.DefaultBaseIsMoof {
		f |= tfhdDefaultBaseIsMoof
	}
	return f
}

func (t *Tfhd) DataByteSize(Context) int {
	n := 4
	if t.BaseDataOffset.Present {
		n += 8
	}
	if t.SampleDescriptionIndex.Present {
		n += 4
	}
	if t.DefaultSampleDuration.Present {
		n += 4
	}
	if t.DefaultSampleSize.Present {
		n += 4
	}
	if t.DefaultSampleFlags.Present {
		n += 4
	}
	return n
}

func (t *Tfhd) ReadData(ctx Context, r *Reader, _ int64) error {
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.TrackID = v
	t.DurationIsEmpty = ctx.Flags.Has(tfhdDurationIsEmpty)
	t.DefaultBaseIsMoof = ctx.Flags.Has(tfhdDefaultBaseIsMoof)
	if ctx.Flags.Has(tfhdBaseDataOffsetPresent) {
		off, err := r.ReadUint64()
		if err != nil {
			return err
		}
		t.BaseDataOffset = Some(off)
	}
	if ctx.Flags.Has(tfhdSampleDescriptionIndexPresent) {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		t.SampleDescriptionIndex = Some(v)
	}
	if ctx.Flags.Has(tfhdDefaultSampleDurationPresent) {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		t.DefaultSampleDuration = Some(v)
	}
	if ctx.Flags.Has(tfhdDefaultSampleSizePresent) {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		t.DefaultSampleSize = Some(v)
	}
	if ctx.Flags.Has(tfhdDefaultSampleFlagsPresent) {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		t.DefaultSampleFlags = Some(v)
	}
	return nil
}

func (t *Tfhd) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint32(t.TrackID); err != nil {
		return err
	}
	if v, ok := t.BaseDataOffset.Get(); ok {
		if err := w.WriteUint64(v); err != nil {
			return err
		}
	}
	if v, ok := t.SampleDescriptionIndex.Get(); ok {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}
	if v, ok := t.DefaultSampleDuration.Get(); ok {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}
	if v, ok := t.DefaultSampleSize.Get(); ok {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}
	if v, ok := t.DefaultSampleFlags.Get(); ok {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}
	return nil
}

// Tfdt is the track fragment decode time: the absolute decode time of
// this fragment's first sample.
type Tfdt struct {
	NoChildren
	BaseMediaDecodeTime VersionedU32U64
}

func (Tfdt) BoxID() FourCC            { return fourccTfdt }
func (t *Tfdt) RequiredVersion() uint8 { return t.BaseMediaDecodeTime.RequiredVersion() }
func (*Tfdt) RequiredFlags() Flags     { return 0 }
func (t *Tfdt) DataByteSize(ctx Context) int { return t.BaseMediaDecodeTime.ByteSize(ctx) }
func (t *Tfdt) ReadData(ctx Context, r *Reader, _ int64) error {
	return t.BaseMediaDecodeTime.ReadVersioned(ctx, r)
}
func (t *Tfdt) WriteData(ctx Context, w *Writer) error {
	return t.BaseMediaDecodeTime.WriteVersioned(ctx, w)
}

// Trun flag bits.
const (
	trunDataOffsetPresent                  Flags = 0x000001
	trunFirstSampleFlagsPresent             Flags = 0x000004
	trunSampleDurationPresent              Flags = 0x000100
	trunSampleSizePresent                  Flags = 0x000200
	trunSampleFlagsPresent                 Flags = 0x000400
	trunSampleCompositionTimeOffsetsPresent Flags = 0x000800
)

// TrunEntry is one sample's optional duration/size/flags/composition
// offset; which columns are meaningful is determined by the owning
// Trun's presence flags, identically for every entry.
type TrunEntry struct {
	SampleDuration              uint32
	SampleSize                  uint32
	SampleFlags                 uint32
	SampleCompositionTimeOffset VersionedSignedU32
}

// Trun is the track run box: the per-sample table for one contiguous
// run of samples within a track fragment.
type Trun struct {
	NoChildren
	DataOffset       FlagOption[int32]
	FirstSampleFlags FlagOption[uint32]

	SampleDurationPresent               bool
	SampleSizePresent                   bool
	SampleFlagsPresent                  bool
	SampleCompositionTimeOffsetsPresent bool

	Entries []TrunEntry
}

func (Trun) BoxID() FourCC { return fourccTrun }

func (t *Trun) RequiredVersion() uint8 {
	if !t.SampleCompositionTimeOffsetsPresent {
		return 0
	}
	var v uint8
	for i := range t.Entries {
		if rv := t.Entries[i].SampleCompositionTimeOffset.RequiredVersion(); rv > v {
			v = rv
		}
	}
	return v
}

func (t *Trun) RequiredFlags() Flags {
	var f Flags
	if t.DataOffset.Present {
		f |= trunDataOffsetPresent
	}
	if t.FirstSampleFlags.Present {
		f |= trunFirstSampleFlagsPresent
	}
	if t.SampleDurationPresent {
		f |= trunSampleDurationPresent
	}
	if t.SampleSizePresent {
		f |= trunSampleSizePresent
	}
	if t.SampleFlagsPresent {
		f |= trunSampleFlagsPresent
	}
	if t.SampleCompositionTimeOffsetsPresent {
		f |= trunSampleCompositionTimeOffsetsPresent
	}
	return f
}

func (t *Trun) entryByteSize(ctx Context) int {
	n := 0
	if t.SampleDurationPresent {
		n += 4
	}
	if t.SampleSizePresent {
		n += 4
	}
	if t.SampleFlagsPresent {
		n += 4
	}
	if t.SampleCompositionTimeOffsetsPresent {
		n += 4 // VersionedSignedU32.ByteSize is always 4
		_ = ctx
	}
	return n
}

func (t *Trun) DataByteSize(ctx Context) int {
	n := 4
	if t.DataOffset.Present {
		n += 4
	}
	if t.FirstSampleFlags.Present {
		n += 4
	}
	n += len(t.Entries) * t.entryByteSize(ctx)
	return n
}

func (t *Trun) ReadData(ctx Context, r *Reader, _ int64) error {
	count, err := r.ReadUint32()
	if err != nil {
		return err
	}
	t.SampleDurationPresent = ctx.Flags.Has(trunSampleDurationPresent)
	t.SampleSizePresent = ctx.Flags.Has(trunSampleSizePresent)
	t.SampleFlagsPresent = ctx.Flags.Has(trunSampleFlagsPresent)
	t.SampleCompositionTimeOffsetsPresent = ctx.Flags.Has(trunSampleCompositionTimeOffsetsPresent)

	if ctx.Flags.Has(trunDataOffsetPresent) {
		v, err := r.ReadInt32()
		if err != nil {
			return err
		}
		t.DataOffset = Some(v)
	}
	if ctx.Flags.Has(trunFirstSampleFlagsPresent) {
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		t.FirstSampleFlags = Some(v)
	}

	t.Entries = make([]TrunEntry, count)
	for i := range t.Entries {
		e := &t.Entries[i]
		if t.SampleDurationPresent {
			if e.SampleDuration, err = r.ReadUint32(); err != nil {
				return err
			}
		}
		if t.SampleSizePresent {
			if e.SampleSize, err = r.ReadUint32(); err != nil {
				return err
			}
		}
		if t.SampleFlagsPresent {
			if e.SampleFlags, err = r.ReadUint32(); err != nil {
				return err
			}
		}
		if t.SampleCompositionTimeOffsetsPresent {
			if err := e.SampleCompositionTimeOffset.ReadVersioned(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Trun) WriteData(ctx Context, w *Writer) error {
	if err := w.WriteUint32(uint32(len(t.Entries))); err != nil {
		return err
	}
	if v, ok := t.DataOffset.Get(); ok {
		if err := w.WriteInt32(v); err != nil {
			return err
		}
	}
	if v, ok := t.FirstSampleFlags.Get(); ok {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}
	for i := range t.Entries {
		e := &t.Entries[i]
		if t.SampleDurationPresent {
			if err := w.WriteUint32(e.SampleDuration); err != nil {
				return err
			}
		}
		if t.SampleSizePresent {
			if err := w.WriteUint32(e.SampleSize); err != nil {
				return err
			}
		}
		if t.SampleFlagsPresent {
			if err := w.WriteUint32(e.SampleFlags); err != nil {
				return err
			}
		}
		if t.SampleCompositionTimeOffsetsPresent {
			if err := e.SampleCompositionTimeOffset.WriteVersioned(ctx, w); err != nil {
				return err
			}
		}
	}
	return nil
}
