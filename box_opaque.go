package bmff

// readToEOF drains r to the end of the stream, for the one legal use
// of an unknown-size box: a trailing mdat (or free/skip) with no size
// field because the muxer never learned the final length.
func readToEOF(r *Reader) ([]byte, error) {
	var buf []byte
	for {
		atEOF, err := r.AtEOF()
		if err != nil {
			return nil, err
		}
		if atEOF {
			return buf, nil
		}
		b, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
	}
}

// Mdat is the media data box: the opaque sample bytes every stbl/traf
// table points into. Its contents are never interpreted, only framed.
type Mdat struct {
	NoChildren
	Data []byte
}

func (Mdat) BoxID() FourCC { return fourccMdat }

func (m *Mdat) DataByteSize(Context) int { return len(m.Data) }

func (m *Mdat) ReadData(_ Context, r *Reader, end int64) error {
	if end < 0 {
		data, err := readToEOF(r)
		if err != nil {
			return err
		}
		m.Data = data
		return nil
	}
	data, err := r.ReadBytes(int(end - r.Pos()))
	if err != nil {
		return err
	}
	m.Data = data
	return nil
}

func (m *Mdat) WriteData(_ Context, w *Writer) error { return w.WriteBytes(m.Data) }

// Free is a padding/placeholder box: bytes reserved by a muxer for
// later in-place edits, conventionally ignored by readers.
type Free struct {
	NoChildren
	Data []byte
}

func (Free) BoxID() FourCC { return fourccFree }

func (f *Free) DataByteSize(Context) int { return len(f.Data) }

func (f *Free) ReadData(_ Context, r *Reader, end int64) error {
	if end < 0 {
		data, err := readToEOF(r)
		if err != nil {
			return err
		}
		f.Data = data
		return nil
	}
	data, err := r.ReadBytes(int(end - r.Pos()))
	if err != nil {
		return err
	}
	f.Data = data
	return nil
}

func (f *Free) WriteData(_ Context, w *Writer) error { return w.WriteBytes(f.Data) }

// Skip is wire-identical to Free; the two four-character codes are
// historical synonyms.
type Skip struct {
	Free
}

func (Skip) BoxID() FourCC { return fourccSkip }

// UnknownBox preserves a top-level box this package's schema does not
// recognize, verbatim, so a whole-file decode/encode round-trips even
// when it contains box types outside this package's inventory.
type UnknownBox struct {
	Header Header
	Raw    []byte
}

func (b *UnknownBox) BoxHeader() Header { return b.Header }

func (b *UnknownBox) ByteSize() int {
	h, err := HeaderFromIDAndInnerSize(b.Header.ID, uint64(len(b.Raw)), Options{})
	if err != nil {
		return 0
	}
	return h.ByteSize() + len(b.Raw)
}

func (b *UnknownBox) Encode(w *Writer) error {
	h, err := HeaderFromIDAndInnerSize(b.Header.ID, uint64(len(b.Raw)), w.Options)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	return w.WriteBytes(b.Raw)
}
