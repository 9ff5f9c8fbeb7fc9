package bmff

// Body is the data contract every concrete box type's body implements:
// its own byte size (data plus any children), how to read/write its own
// fields, and how to dispatch a child box header into a typed slot. The
// generic [Box] and [FullBox] wrappers supply the shared framing
// (header, bounded child loop, tolerant re-seek) around any Body.
//
// BoxID must be safe to call on a nil receiver (it reports a
// compile-time-constant type, never instance state) so that the zero
// value of a pointer type can be used purely for id dispatch.
type Body interface {
	BoxID() FourCC
	DataByteSize(ctx Context) int
	ChildByteSize() int
	// ReadData reads the box's own fields (not its children). end is
	// the absolute stream position where this box's data+children
	// region ends, or -1 if the box has an unknown ("to end of
	// stream") size. Bodies whose last field runs to the end of the box
	// use it (ftyp/styp brand lists, mdat/free payloads, hdlr/url/urn
	// strings, esds descriptor lengths); fixed-layout boxes ignore it.
	ReadData(ctx Context, r *Reader, end int64) error
	WriteData(ctx Context, w *Writer) error
	AcceptChild(h Header, r *Reader) error
	WriteChildren(w *Writer) error
}

// FullBody is a Body whose enclosing box carries a (version, flags)
// header. Version/Flags are derived bottom-up from the fields that
// require them, per the full-box framing contract.
type FullBody interface {
	Body
	RequiredVersion() uint8
	RequiredFlags() Flags
}

// NoChildren is embedded by box bodies that never accept children.
type NoChildren struct{}

func (NoChildren) ChildByteSize() int                         { return 0 }
func (NoChildren) AcceptChild(h Header, r *Reader) error      { return nil }
func (NoChildren) WriteChildren(w *Writer) error              { return nil }

// UnknownChild preserves a child box this package's schema does not
// recognize, verbatim, so the parent round-trips byte-for-byte.
type UnknownChild struct {
	Header Header
	Raw    []byte // data plus any nested children, unparsed
}

func readUnknownChild(h Header, r *Reader) (UnknownChild, error) {
	if !h.Size.Known {
		return UnknownChild{}, &Error{Kind: ErrUnknownSizeForUnknownBox, BoxID: &h.ID}
	}
	inner := int(h.Size.Value) - h.ByteSize()
	raw, err := r.ReadBytes(inner)
	if err != nil {
		return UnknownChild{}, err
	}
	return UnknownChild{Header: h, Raw: raw}, nil
}

func (c UnknownChild) byteSize() int { return c.Header.ByteSize() + len(c.Raw) }

func (c UnknownChild) write(w *Writer) error {
	h, err := HeaderFromIDAndInnerSize(c.Header.ID, uint64(len(c.Raw)), w.Options)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	return w.WriteBytes(c.Raw)
}

// AnyBox is satisfied by [*Box][T] and [*FullBox][T] for any concrete
// Body/FullBody T, letting the top-level decoder hand back a uniform
// value before the caller type-switches or type-asserts to the concrete
// box it expects.
type AnyBox interface {
	BoxHeader() Header
	ByteSize() int
	Encode(w *Writer) error
}

func readChildren(h Header, start int64, accept func(Header, *Reader) error, r *Reader) error {
	if !h.Size.Known {
		// Only legal at the outermost level (e.g. a to-end-of-stream
		// mdat); such bodies never route through the child loop.
		return nil
	}
	for {
		ended, err := h.Size.Ended(r, start)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
		childPos := r.Pos()
		ch, err := r.ReadHeader()
		if err != nil {
			return err
		}
		if err := accept(ch, r); err != nil {
			return err
		}
		if !ch.Size.Known {
			return &Error{Kind: ErrUnknownSizeForUnknownBox, BoxID: &ch.ID}
		}
		if err := r.SeekTo(childPos + int64(ch.Size.Value)); err != nil {
			return err
		}
	}
}

// Box wraps a base (non-versioned) Body with its header framing.
type Box[T Body] struct {
	Header Header
	Body   T
	Opts   Options
}

// NewBox builds a Box ready for Encode.
func NewBox[T Body](body T) *Box[T] { return &Box[T]{Body: body} }

func (b *Box[T]) innerSize() int { return b.Body.DataByteSize(Context{}) + b.Body.ChildByteSize() }

// ByteSize is the total on-wire size, header included.
func (b *Box[T]) ByteSize() int {
	h, err := HeaderFromIDAndInnerSize(NewBoxID(b.Body.BoxID()), uint64(b.innerSize()), b.Opts)
	if err != nil {
		return 0
	}
	return h.ByteSize() + b.innerSize()
}

// BoxHeader returns the header recorded by the last Decode, or the zero
// Header before the first decode.
func (b *Box[T]) BoxHeader() Header { return b.Header }

// Decode reads a complete box: header, data fields, then children.
func (b *Box[T]) Decode(r *Reader) error {
	h, err := r.ReadHeader()
	if err != nil {
		return err
	}
	if !h.ID.Equal(NewBoxID(b.Body.BoxID())) {
		return &Error{Kind: ErrReadingWrongBox, BoxID: &h.ID}
	}
	return b.DecodeBody(h, r)
}

// DecodeBody parses a box body whose header has already been consumed
// by a parent's child-dispatch loop.
func (b *Box[T]) DecodeBody(h Header, r *Reader) error {
	b.Header = h
	start := r.Pos() - int64(h.ByteSize())
	end := int64(-1)
	if h.Size.Known {
		end = start + int64(h.Size.Value)
	}
	if err := b.Body.ReadData(Context{}, r, end); err != nil {
		return err
	}
	return readChildren(h, start, b.Body.AcceptChild, r)
}

// Encode writes the complete box: header, data fields, then children.
func (b *Box[T]) Encode(w *Writer) error {
	h, err := HeaderFromIDAndInnerSize(NewBoxID(b.Body.BoxID()), uint64(b.innerSize()), w.Options)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	if err := b.Body.WriteData(Context{}, w); err != nil {
		return err
	}
	return b.Body.WriteChildren(w)
}

// FullBox wraps a FullBody, adding the 1-byte version + 3-byte flags
// full-box header and deriving them from the body before every write.
type FullBox[T FullBody] struct {
	Header Header
	Body   T
	Opts   Options
}

// NewFullBox builds a FullBox ready for Encode.
func NewFullBox[T FullBody](body T) *FullBox[T] { return &FullBox[T]{Body: body} }

func (b *FullBox[T]) ctx() Context {
	return Context{Version: b.Body.RequiredVersion(), Flags: b.Body.RequiredFlags() & flagsMask}
}

func (b *FullBox[T]) innerSize() int {
	ctx := b.ctx()
	return 4 + b.Body.DataByteSize(ctx) + b.Body.ChildByteSize()
}

// ByteSize is the total on-wire size, header included.
func (b *FullBox[T]) ByteSize() int {
	h, err := HeaderFromIDAndInnerSize(NewBoxID(b.Body.BoxID()), uint64(b.innerSize()), b.Opts)
	if err != nil {
		return 0
	}
	return h.ByteSize() + b.innerSize()
}

// BoxHeader returns the header recorded by the last Decode, or the zero
// Header before the first decode.
func (b *FullBox[T]) BoxHeader() Header { return b.Header }

// Version returns the version Encode would write, derived from the
// body's current fields. It is not the version recorded by Decode: a box
// read as version 1 whose fields fit version 0 reports 0.
func (b *FullBox[T]) Version() uint8 { return b.ctx().Version }

// Flags returns the flags Encode would write, derived from the body's
// current fields rather than the flags recorded by Decode.
func (b *FullBox[T]) Flags() Flags { return b.ctx().Flags }

// Decode reads a complete full box: header, version+flags, data fields,
// then children.
func (b *FullBox[T]) Decode(r *Reader) error {
	h, err := r.ReadHeader()
	if err != nil {
		return err
	}
	if !h.ID.Equal(NewBoxID(b.Body.BoxID())) {
		return &Error{Kind: ErrReadingWrongBox, BoxID: &h.ID}
	}
	return b.DecodeBody(h, r)
}

// DecodeBody parses a full-box body whose header has already been
// consumed by a parent's child-dispatch loop.
func (b *FullBox[T]) DecodeBody(h Header, r *Reader) error {
	b.Header = h
	start := r.Pos() - int64(h.ByteSize())
	vf, err := r.ReadUint32()
	if err != nil {
		return err
	}
	ctx := Context{Version: uint8(vf >> 24), Flags: Flags(vf) & flagsMask}
	end := int64(-1)
	if h.Size.Known {
		end = start + int64(h.Size.Value)
	}
	if err := b.Body.ReadData(ctx, r, end); err != nil {
		return err
	}
	return readChildren(h, start, b.Body.AcceptChild, r)
}

// Encode writes the complete full box, deriving version and flags from
// the body's fields.
func (b *FullBox[T]) Encode(w *Writer) error {
	ctx := b.ctx()
	h, err := HeaderFromIDAndInnerSize(NewBoxID(b.Body.BoxID()), uint64(b.innerSize()), w.Options)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(h); err != nil {
		return err
	}
	vf := uint32(ctx.Version)<<24 | uint32(ctx.Flags)&uint32(flagsMask)
	if err := w.WriteUint32(vf); err != nil {
		return err
	}
	if err := b.Body.WriteData(ctx, w); err != nil {
		return err
	}
	return b.Body.WriteChildren(w)
}
