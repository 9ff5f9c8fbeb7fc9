package bmff

// Ftyp is the file type box: a major brand, its minor version, and a
// list of compatible brands filling the rest of the box.
type Ftyp struct {
	NoChildren
	MajorBrand       FourCC
	MinorVersion     uint32
	CompatibleBrands []FourCC
}

func (Ftyp) BoxID() FourCC { return fourccFtyp }

func (b *Ftyp) DataByteSize(Context) int { return 8 + 4*len(b.CompatibleBrands) }

func (b *Ftyp) ReadData(_ Context, r *Reader, end int64) error {
	if err := r.ReadFixed(b.MajorBrand[:]); err != nil {
		return err
	}
	v, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.MinorVersion = v
	b.CompatibleBrands = nil
	for end < 0 || r.Pos()+4 <= end {
		var fcc FourCC
		if err := r.ReadFixed(fcc[:]); err != nil {
			return err
		}
		b.CompatibleBrands = append(b.CompatibleBrands, fcc)
	}
	return nil
}

func (b *Ftyp) WriteData(_ Context, w *Writer) error {
	if err := w.WriteBytes(b.MajorBrand[:]); err != nil {
		return err
	}
	if err := w.WriteUint32(b.MinorVersion); err != nil {
		return err
	}
	for _, c := range b.CompatibleBrands {
		if err := w.WriteBytes(c[:]); err != nil {
			return err
		}
	}
	return nil
}

// Styp is the segment type box; same wire shape as Ftyp, used by
// fragmented/segmented delivery.
type Styp struct {
	Ftyp
}

func (Styp) BoxID() FourCC { return fourccStyp }

// Moov is the movie container: one mvhd, any number of trak entries,
// and an optional mvex for fragmented movies.
type Moov struct {
	Mvhd    *FullBox[*Mvhd]
	Trak    []*Box[*Trak]
	Mvex    *Box[*Mvex]
	Unknown []UnknownChild
}

func (Moov) BoxID() FourCC                { return fourccMoov }
func (*Moov) DataByteSize(Context) int    { return 0 }
func (*Moov) ReadData(Context, *Reader, int64) error { return nil }
func (*Moov) WriteData(Context, *Writer) error       { return nil }

func (b *Moov) ChildByteSize() int {
	n := 0
	if b.Mvhd != nil {
		n += b.Mvhd.ByteSize()
	}
	for _, t := range b.Trak {
		n += t.ByteSize()
	}
	if b.Mvex != nil {
		n += b.Mvex.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Moov) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccMvhd:
		box := NewFullBox(&Mvhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mvhd = box
	case fourccTrak:
		box := NewBox(&Trak{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Trak = append(b.Trak, box)
	case fourccMvex:
		box := NewBox(&Mvex{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mvex = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Moov) WriteChildren(w *Writer) error {
	if b.Mvhd != nil {
		if err := b.Mvhd.Encode(w); err != nil {
			return err
		}
	}
	for _, t := range b.Trak {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	if b.Mvex != nil {
		if err := b.Mvex.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Trak is a single track container: one tkhd, an optional edts, one
// mdia.
type Trak struct {
	Tkhd    *FullBox[*Tkhd]
	Edts    *Box[*Edts]
	Mdia    *Box[*Mdia]
	Unknown []UnknownChild
}

func (Trak) BoxID() FourCC                { return fourccTrak }
func (*Trak) DataByteSize(Context) int    { return 0 }
func (*Trak) ReadData(Context, *Reader, int64) error { return nil }
func (*Trak) WriteData(Context, *Writer) error       { return nil }

func (b *Trak) ChildByteSize() int {
	n := 0
	if b.Tkhd != nil {
		n += b.Tkhd.ByteSize()
	}
	if b.Edts != nil {
		n += b.Edts.ByteSize()
	}
	if b.Mdia != nil {
		n += b.Mdia.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Trak) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccTkhd:
		box := NewFullBox(&Tkhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Tkhd = box
	case fourccEdts:
		box := NewBox(&Edts{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Edts = box
	case fourccMdia:
		box := NewBox(&Mdia{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mdia = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Trak) WriteChildren(w *Writer) error {
	if b.Tkhd != nil {
		if err := b.Tkhd.Encode(w); err != nil {
			return err
		}
	}
	if b.Edts != nil {
		if err := b.Edts.Encode(w); err != nil {
			return err
		}
	}
	if b.Mdia != nil {
		if err := b.Mdia.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Edts is the edit list container: at most one elst.
type Edts struct {
	Elst    *FullBox[*Elst]
	Unknown []UnknownChild
}

func (Edts) BoxID() FourCC                { return fourccEdts }
func (*Edts) DataByteSize(Context) int    { return 0 }
func (*Edts) ReadData(Context, *Reader, int64) error { return nil }
func (*Edts) WriteData(Context, *Writer) error       { return nil }

func (b *Edts) ChildByteSize() int {
	n := 0
	if b.Elst != nil {
		n += b.Elst.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Edts) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccElst:
		box := NewFullBox(&Elst{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Elst = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Edts) WriteChildren(w *Writer) error {
	if b.Elst != nil {
		if err := b.Elst.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Mdia is the media container: mdhd, hdlr, minf.
type Mdia struct {
	Mdhd    *FullBox[*Mdhd]
	Hdlr    *FullBox[*Hdlr]
	Minf    *Box[*Minf]
	Unknown []UnknownChild
}

func (Mdia) BoxID() FourCC                { return fourccMdia }
func (*Mdia) DataByteSize(Context) int    { return 0 }
func (*Mdia) ReadData(Context, *Reader, int64) error { return nil }
func (*Mdia) WriteData(Context, *Writer) error       { return nil }

func (b *Mdia) ChildByteSize() int {
	n := 0
	if b.Mdhd != nil {
		n += b.Mdhd.ByteSize()
	}
	if b.Hdlr != nil {
		n += b.Hdlr.ByteSize()
	}
	if b.Minf != nil {
		n += b.Minf.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Mdia) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccMdhd:
		box := NewFullBox(&Mdhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mdhd = box
	case fourccHdlr:
		box := NewFullBox(&Hdlr{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Hdlr = box
	case fourccMinf:
		box := NewBox(&Minf{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Minf = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Mdia) WriteChildren(w *Writer) error {
	if b.Mdhd != nil {
		if err := b.Mdhd.Encode(w); err != nil {
			return err
		}
	}
	if b.Hdlr != nil {
		if err := b.Hdlr.Encode(w); err != nil {
			return err
		}
	}
	if b.Minf != nil {
		if err := b.Minf.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Minf is the media information container: optional vmhd/smhd (exactly
// one of which is expected for a real media, per handler type), dinf,
// stbl.
type Minf struct {
	Vmhd    *FullBox[*Vmhd]
	Smhd    *FullBox[*Smhd]
	Dinf    *Box[*Dinf]
	Stbl    *Box[*Stbl]
	Unknown []UnknownChild
}

func (Minf) BoxID() FourCC                { return fourccMinf }
func (*Minf) DataByteSize(Context) int    { return 0 }
func (*Minf) ReadData(Context, *Reader, int64) error { return nil }
func (*Minf) WriteData(Context, *Writer) error       { return nil }

func (b *Minf) ChildByteSize() int {
	n := 0
	if b.Vmhd != nil {
		n += b.Vmhd.ByteSize()
	}
	if b.Smhd != nil {
		n += b.Smhd.ByteSize()
	}
	if b.Dinf != nil {
		n += b.Dinf.ByteSize()
	}
	if b.Stbl != nil {
		n += b.Stbl.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Minf) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccVmhd:
		box := NewFullBox(&Vmhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Vmhd = box
	case fourccSmhd:
		box := NewFullBox(&Smhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Smhd = box
	case fourccDinf:
		box := NewBox(&Dinf{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Dinf = box
	case fourccStbl:
		box := NewBox(&Stbl{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stbl = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Minf) WriteChildren(w *Writer) error {
	if b.Vmhd != nil {
		if err := b.Vmhd.Encode(w); err != nil {
			return err
		}
	}
	if b.Smhd != nil {
		if err := b.Smhd.Encode(w); err != nil {
			return err
		}
	}
	if b.Dinf != nil {
		if err := b.Dinf.Encode(w); err != nil {
			return err
		}
	}
	if b.Stbl != nil {
		if err := b.Stbl.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Dinf is the data information container: one dref.
type Dinf struct {
	Dref    *FullBox[*Dref]
	Unknown []UnknownChild
}

func (Dinf) BoxID() FourCC                { return fourccDinf }
func (*Dinf) DataByteSize(Context) int    { return 0 }
func (*Dinf) ReadData(Context, *Reader, int64) error { return nil }
func (*Dinf) WriteData(Context, *Writer) error       { return nil }

func (b *Dinf) ChildByteSize() int {
	n := 0
	if b.Dref != nil {
		n += b.Dref.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Dinf) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccDref:
		box := NewFullBox(&Dref{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Dref = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Dinf) WriteChildren(w *Writer) error {
	if b.Dref != nil {
		if err := b.Dref.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Stbl is the sample table container.
type Stbl struct {
	Stsd    *FullBox[*Stsd]
	Stts    *FullBox[*Stts]
	Ctts    *FullBox[*Ctts]
	Stsc    *FullBox[*Stsc]
	Stsz    *FullBox[*Stsz]
	Stco    *FullBox[*Stco]
	Co64    *FullBox[*Co64]
	Stss    *FullBox[*Stss]
	Unknown []UnknownChild
}

func (Stbl) BoxID() FourCC                { return fourccStbl }
func (*Stbl) DataByteSize(Context) int    { return 0 }
func (*Stbl) ReadData(Context, *Reader, int64) error { return nil }
func (*Stbl) WriteData(Context, *Writer) error       { return nil }

func (b *Stbl) ChildByteSize() int {
	n := 0
	if b.Stsd != nil {
		n += b.Stsd.ByteSize()
	}
	if b.Stts != nil {
		n += b.Stts.ByteSize()
	}
	if b.Ctts != nil {
		n += b.Ctts.ByteSize()
	}
	if b.Stsc != nil {
		n += b.Stsc.ByteSize()
	}
	if b.Stsz != nil {
		n += b.Stsz.ByteSize()
	}
	if b.Stco != nil {
		n += b.Stco.ByteSize()
	}
	if b.Co64 != nil {
		n += b.Co64.ByteSize()
	}
	if b.Stss != nil {
		n += b.Stss.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Stbl) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccStsd:
		box := NewFullBox(&Stsd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stsd = box
	case fourccStts:
		box := NewFullBox(&Stts{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stts = box
	case fourccCtts:
		box := NewFullBox(&Ctts{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Ctts = box
	case fourccStsc:
		box := NewFullBox(&Stsc{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stsc = box
	case fourccStsz:
		box := NewFullBox(&Stsz{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stsz = box
	case fourccStco:
		box := NewFullBox(&Stco{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stco = box
	case fourccCo64:
		box := NewFullBox(&Co64{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Co64 = box
	case fourccStss:
		box := NewFullBox(&Stss{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Stss = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Stbl) WriteChildren(w *Writer) error {
	if b.Stsd != nil {
		if err := b.Stsd.Encode(w); err != nil {
			return err
		}
	}
	if b.Stts != nil {
		if err := b.Stts.Encode(w); err != nil {
			return err
		}
	}
	if b.Ctts != nil {
		if err := b.Ctts.Encode(w); err != nil {
			return err
		}
	}
	if b.Stsc != nil {
		if err := b.Stsc.Encode(w); err != nil {
			return err
		}
	}
	if b.Stsz != nil {
		if err := b.Stsz.Encode(w); err != nil {
			return err
		}
	}
	if b.Stco != nil {
		if err := b.Stco.Encode(w); err != nil {
			return err
		}
	}
	if b.Co64 != nil {
		if err := b.Co64.Encode(w); err != nil {
			return err
		}
	}
	if b.Stss != nil {
		if err := b.Stss.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Mvex is the movie extends container for fragmented movies: an
// optional mehd, and one trex per track.
type Mvex struct {
	Mehd    *FullBox[*Mehd]
	Trex    []*FullBox[*Trex]
	Unknown []UnknownChild
}

func (Mvex) BoxID() FourCC                { return fourccMvex }
func (*Mvex) DataByteSize(Context) int    { return 0 }
func (*Mvex) ReadData(Context, *Reader, int64) error { return nil }
func (*Mvex) WriteData(Context, *Writer) error       { return nil }

func (b *Mvex) ChildByteSize() int {
	n := 0
	if b.Mehd != nil {
		n += b.Mehd.ByteSize()
	}
	for _, t := range b.Trex {
		n += t.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Mvex) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccMehd:
		box := NewFullBox(&Mehd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mehd = box
	case fourccTrex:
		box := NewFullBox(&Trex{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Trex = append(b.Trex, box)
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Mvex) WriteChildren(w *Writer) error {
	if b.Mehd != nil {
		if err := b.Mehd.Encode(w); err != nil {
			return err
		}
	}
	for _, t := range b.Trex {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Moof is the movie fragment container: one mfhd, any number of traf.
type Moof struct {
	Mfhd    *FullBox[*Mfhd]
	Traf    []*Box[*Traf]
	Unknown []UnknownChild
}

func (Moof) BoxID() FourCC                { return fourccMoof }
func (*Moof) DataByteSize(Context) int    { return 0 }
func (*Moof) ReadData(Context, *Reader, int64) error { return nil }
func (*Moof) WriteData(Context, *Writer) error       { return nil }

func (b *Moof) ChildByteSize() int {
	n := 0
	if b.Mfhd != nil {
		n += b.Mfhd.ByteSize()
	}
	for _, t := range b.Traf {
		n += t.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Moof) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccMfhd:
		box := NewFullBox(&Mfhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Mfhd = box
	case fourccTraf:
		box := NewBox(&Traf{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Traf = append(b.Traf, box)
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Moof) WriteChildren(w *Writer) error {
	if b.Mfhd != nil {
		if err := b.Mfhd.Encode(w); err != nil {
			return err
		}
	}
	for _, t := range b.Traf {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}

// Traf is the track fragment container: one tfhd, an optional tfdt,
// any number of trun.
type Traf struct {
	Tfhd    *FullBox[*Tfhd]
	Tfdt    *FullBox[*Tfdt]
	Trun    []*FullBox[*Trun]
	Unknown []UnknownChild
}

func (Traf) BoxID() FourCC                { return fourccTraf }
func (*Traf) DataByteSize(Context) int    { return 0 }
func (*Traf) ReadData(Context, *Reader, int64) error { return nil }
func (*Traf) WriteData(Context, *Writer) error       { return nil }

func (b *Traf) ChildByteSize() int {
	n := 0
	if b.Tfhd != nil {
		n += b.Tfhd.ByteSize()
	}
	if b.Tfdt != nil {
		n += b.Tfdt.ByteSize()
	}
	for _, t := range b.Trun {
		n += t.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Traf) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccTfhd:
		box := NewFullBox(&Tfhd{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Tfhd = box
	case fourccTfdt:
		box := NewFullBox(&Tfdt{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Tfdt = box
	case fourccTrun:
		box := NewFullBox(&Trun{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Trun = append(b.Trun, box)
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Traf) WriteChildren(w *Writer) error {
	if b.Tfhd != nil {
		if err := b.Tfhd.Encode(w); err != nil {
			return err
		}
	}
	if b.Tfdt != nil {
		if err := b.Tfdt.Encode(w); err != nil {
			return err
		}
	}
	for _, t := range b.Trun {
		if err := t.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range b.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}
