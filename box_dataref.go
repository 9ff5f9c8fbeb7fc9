package bmff

const dataEntrySelfContained Flags = 0x000001

// Url is the "url " data reference entry. When SelfContained is set
// the referenced media is this file itself and Location is empty;
// otherwise Location names the external resource.
type Url struct {
	NoChildren
	SelfContained bool
	Location      CString
}

func (Url) BoxID() FourCC          { return fourccUrl }
func (*Url) RequiredVersion() uint8 { return 0 }

func (u *Url) RequiredFlags() Flags {
	if u.SelfContained {
		return dataEntrySelfContained
	}
	return 0
}

func (u *Url) DataByteSize(Context) int {
	if u.SelfContained {
		return 0
	}
	return u.Location.ByteSize()
}

func (u *Url) ReadData(ctx Context, r *Reader, end int64) error {
	u.SelfContained = ctx.Flags.Has(dataEntrySelfContained)
	if u.SelfContained {
		return nil
	}
	return readCStringTo(&u.Location, r, end)
}

func (u *Url) WriteData(_ Context, w *Writer) error {
	if u.SelfContained {
		return nil
	}
	return u.Location.Write(w)
}

// Urn is the "urn " data reference entry: a name, and (unless
// SelfContained) a location.
type Urn struct {
	NoChildren
	SelfContained bool
	Name          CString
	Location      CString
}

func (Urn) BoxID() FourCC          { return fourccUrn }
func (*Urn) RequiredVersion() uint8 { return 0 }

func (u *Urn) RequiredFlags() Flags {
	if u.SelfContained {
		return dataEntrySelfContained
	}
	return 0
}

func (u *Urn) DataByteSize(Context) int {
	n := u.Name.ByteSize()
	if !u.SelfContained {
		n += u.Location.ByteSize()
	}
	return n
}

func (u *Urn) ReadData(ctx Context, r *Reader, end int64) error {
	u.SelfContained = ctx.Flags.Has(dataEntrySelfContained)
	if err := readCStringTo(&u.Name, r, end); err != nil {
		return err
	}
	if u.SelfContained {
		return nil
	}
	return readCStringTo(&u.Location, r, end)
}

func (u *Urn) WriteData(_ Context, w *Writer) error {
	if err := u.Name.Write(w); err != nil {
		return err
	}
	if u.SelfContained {
		return nil
	}
	return u.Location.Write(w)
}

// readCStringTo reads a CString into dst, tolerating a missing
// terminator at end (the "to end of data" boundary some muxers emit).
func readCStringTo(dst *CString, r *Reader, end int64) error {
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
	*dst = CString(buf)
	return nil
}

// Dref is the data reference box: a list of url/urn entries naming the
// resources sample data is stored in.
type Dref struct {
	Url     []*FullBox[*Url]
	Urn     []*FullBox[*Urn]
	Unknown []UnknownChild
}

func (Dref) BoxID() FourCC          { return fourccDref }
func (*Dref) RequiredVersion() uint8 { return 0 }
func (*Dref) RequiredFlags() Flags   { return 0 }

func (*Dref) DataByteSize(Context) int { return 4 }

func (d *Dref) ReadData(_ Context, r *Reader, _ int64) error {
	_, err := r.ReadUint32() // entry_count, redundant with the child list
	return err
}

func (d *Dref) WriteData(_ Context, w *Writer) error {
	return w.WriteUint32(uint32(len(d.Url) + len(d.Urn) + len(d.Unknown)))
}

func (d *Dref) ChildByteSize() int {
	n := 0
	for _, u := range d.Url {
		n += u.ByteSize()
	}
	for _, u := range d.Urn {
		n += u.ByteSize()
	}
	for _, u := range d.Unknown {
		n += u.byteSize()
	}
	return n
}

func (d *Dref) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccUrl:
		box := NewFullBox(&Url{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		d.Url = append(d.Url, box)
	case fourccUrn:
		box := NewFullBox(&Urn{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		d.Urn = append(d.Urn, box)
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		d.Unknown = append(d.Unknown, c)
	}
	return nil
}

func (d *Dref) WriteChildren(w *Writer) error {
	for _, u := range d.Url {
		if err := u.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range d.Urn {
		if err := u.Encode(w); err != nil {
			return err
		}
	}
	for _, u := range d.Unknown {
		if err := u.write(w); err != nil {
			return err
		}
	}
	return nil
}
