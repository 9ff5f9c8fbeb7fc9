package bmff

// SidxEntry is one segment index reference: the size and duration of a
// referenced (sub)segment, plus its sync-sample (SAP) hint.
type SidxEntry struct {
	ReferenceType      bool
	ReferencedSize     uint32 // 31 bits
	SubsegmentDuration uint32
	StartsWithSAP      bool
	SAPType            uint8  // 3 bits
	SAPDeltaTime       uint32 // 28 bits
}

func (e *SidxEntry) ByteSize() int { return 12 }

func (e *SidxEntry) Read(r *Reader) error {
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.ReferenceType = v>>31 != 0
	e.ReferencedSize = v & 0x7fffffff

	dur, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.SubsegmentDuration = dur

	v2, err := r.ReadUint32()
	if err != nil {
		return err
	}
	e.StartsWithSAP = v2>>31 != 0
	e.SAPType = uint8((v2 >> 28) & 0x7)
	e.SAPDeltaTime = v2 & 0x0fffffff
	return nil
}

func (e *SidxEntry) Write(w *Writer) error {
	var v uint32
	if e.ReferenceType {
		v |= 0x80000000
	}
	v |= e.ReferencedSize & 0x7fffffff
	if err := w.WriteUint32(v); err != nil {
		return err
	}
	if err := w.WriteUint32(e.SubsegmentDuration); err != nil {
		return err
	}
	var v2 uint32
	if e.StartsWithSAP {
		v2 |= 0x80000000
	}
	v2 |= uint32(e.SAPType&0x7) << 28
	v2 |= e.SAPDeltaTime & 0x0fffffff
	return w.WriteUint32(v2)
}

// Sidx is the segment index box: the timing and byte-range map used to
// seek directly into a fragmented/segmented movie's later fragments
// without scanning from the start.
type Sidx struct {
	NoChildren
	ReferenceID              uint32
	Timescale                uint32
	EarliestPresentationTime VersionedU32U64
	FirstOffset              VersionedU32U64
	Entries                  []SidxEntry
}

func (Sidx) BoxID() FourCC { return fourccSidx }

func (s *Sidx) RequiredVersion() uint8 {
	return maxVersion(s.EarliestPresentationTime.RequiredVersion(), s.FirstOffset.RequiredVersion())
}
func (*Sidx) RequiredFlags() Flags { return 0 }

func (s *Sidx) DataByteSize(ctx Context) int {
	return 4 + 4 + s.EarliestPresentationTime.ByteSize(ctx) + s.FirstOffset.ByteSize(ctx) +
		2 + 2 + 12*len(s.Entries)
}

func (s *Sidx) ReadData(ctx Context, r *Reader, _ int64) error {
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	s.ReferenceID = v
	if s.Timescale, err = r.ReadUint32(); err != nil {
		return err
	}
	if err := s.EarliestPresentationTime.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := s.FirstOffset.ReadVersioned(ctx, r); err != nil {
		return err
	}
	if err := r.Skip(2); err != nil { // reserved
		return err
	}
	count, err := r.ReadUint16()
	if err != nil {
		return err
	}
	s.Entries = make([]SidxEntry, count)
	for i := range s.Entries {
		if err := s.Entries[i].Read(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sidx) WriteData(ctx Context, w *Writer) error {
	if err := w.WriteUint32(s.ReferenceID); err != nil {
		return err
	}
	if err := w.WriteUint32(s.Timescale); err != nil {
		return err
	}
	if err := s.EarliestPresentationTime.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := s.FirstOffset.WriteVersioned(ctx, w); err != nil {
		return err
	}
	if err := w.WriteZeros(2); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(s.Entries))); err != nil {
		return err
	}
	for i := range s.Entries {
		if err := s.Entries[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}
