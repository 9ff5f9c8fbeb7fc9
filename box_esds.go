package bmff

// MPEG-4 descriptor tags (ISO/IEC 14496-1 §7.2.2.1), the chain esds
// wraps around an AAC (or other MPEG-4 audio/visual) elementary stream.
const (
	descrTagES                = 0x03
	descrTagDecoderConfig      = 0x04
	descrTagDecoderSpecific    = 0x05
	descrTagSLConfig           = 0x06
	esdsStreamDependenceFlag   = 0x80
	esdsURLFlag                = 0x40
	esdsOCRStreamFlag          = 0x20
	esdsStreamPriorityMask     = 0x1f
	esdsUpstreamFlag           = 0x02
	esdsStreamTypeMask         = 0xfc
	esdsStreamTypeShift        = 2
	esdsReservedBit            = 0x01
)

// descrLengthSize reports how many bytes the canonical (minimal,
// unpadded) MPEG-4 variable-length descriptor length encoding needs for
// n — a base-128 big-endian encoding with a continuation bit in every
// byte but the last.
func descrLengthSize(n uint32) int {
	sz := 1
	for n >= 0x80 {
		n >>= 7
		sz++
	}
	return sz
}

func readDescrLength(r *Reader, end int64) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		if end >= 0 && r.Pos() >= end {
			return 0, &Error{Kind: ErrCustom, Err: errTruncatedDescriptor}
		}
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, &Error{Kind: ErrCustom, Err: errTruncatedDescriptor}
}

func writeDescrLength(w *Writer, n uint32) error {
	sz := descrLengthSize(n)
	for i := sz - 1; i >= 0; i-- {
		b := byte((n >> uint(7*i)) & 0x7f)
		if i != 0 {
			b |= 0x80
		}
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	return nil
}

// Esds is the elementary stream descriptor box: the MPEG-4 descriptor
// chain (ES_ID, optional dependency/URL/OCR fields, decoder config, and
// the raw decoder-specific info an AAC/MPEG-4 decoder needs to start
// decoding) carried verbatim for the DecoderSpecificInfo/SLConfig
// payloads so round-tripping never lossily reinterprets codec-private
// bytes.
type Esds struct {
	NoChildren

	ESID                 uint16
	StreamDependenceFlag bool
	DependsOnESID        uint16
	URLFlag              bool
	URL                  string
	OCRStreamFlag        bool
	OCRESID              uint16
	StreamPriority       uint8

	ObjectTypeIndication uint8
	StreamType           uint8
	UpStream             bool
	BufferSizeDB         uint32
	MaxBitrate           uint32
	AvgBitrate           uint32

	// DecoderSpecificInfo is nil when the stream carries no
	// DecoderSpecificInfo descriptor, non-nil (possibly empty)
	// otherwise.
	DecoderSpecificInfo []byte
	// SLConfig is the raw SLConfigDescriptor payload (typically a
	// single 0x02 "predefined" byte), nil if absent.
	SLConfig []byte
}

func (Esds) BoxID() FourCC          { return fourccEsds }
func (*Esds) RequiredVersion() uint8 { return 0 }
func (*Esds) RequiredFlags() Flags   { return 0 }

func (e *Esds) decoderSpecificFullSize() int {
	if e.DecoderSpecificInfo == nil {
		return 0
	}
	n := len(e.DecoderSpecificInfo)
	return 1 + descrLengthSize(uint32(n)) + n
}

func (e *Esds) slConfigFullSize() int {
	if e.SLConfig == nil {
		return 0
	}
	n := len(e.SLConfig)
	return 1 + descrLengthSize(uint32(n)) + n
}

func (e *Esds) decoderConfigPayloadSize() int {
	return 13 + e.decoderSpecificFullSize()
}

func (e *Esds) decoderConfigFullSize() int {
	n := e.decoderConfigPayloadSize()
	return 1 + descrLengthSize(uint32(n)) + n
}

func (e *Esds) esPayloadSize() int {
	n := 2 + 1 // ES_ID + flags byte
	if e.StreamDependenceFlag {
		n += 2
	}
	if e.URLFlag {
		n += 1 + len(e.URL)
	}
	if e.OCRStreamFlag {
		n += 2
	}
	n += e.decoderConfigFullSize()
	n += e.slConfigFullSize()
	return n
}

func (e *Esds) esFullSize() int {
	n := e.esPayloadSize()
	return 1 + descrLengthSize(uint32(n)) + n
}

// DataByteSize reports the encoded size of the ES_Descriptor chain.
func (e *Esds) DataByteSize(Context) int { return e.esFullSize() }

func (e *Esds) ReadData(_ Context, r *Reader, end int64) error {
	tag, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if tag != descrTagES {
		return &Error{Kind: ErrCustom, Err: errUnexpectedDescriptorTag}
	}
	payloadLen, err := readDescrLength(r, end)
	if err != nil {
		return err
	}
	esEnd := r.Pos() + int64(payloadLen)

	esid, err := r.ReadUint16()
	if err != nil {
		return err
	}
	e.ESID = esid
	flags, err := r.ReadUint8()
	if err != nil {
		return err
	}
	e.StreamDependenceFlag = flags&esdsStreamDependenceFlag != 0
	e.URLFlag = flags&esdsURLFlag != 0
	e.OCRStreamFlag = flags&esdsOCRStreamFlag != 0
	e.StreamPriority = flags & esdsStreamPriorityMask

	if e.StreamDependenceFlag {
		v, err := r.ReadUint16()
		if err != nil {
			return err
		}
		e.DependsOnESID = v
	}
	if e.URLFlag {
		l, err := r.ReadUint8()
		if err != nil {
			return err
		}
		buf, err := r.ReadBytes(int(l))
		if err != nil {
			return err
		}
		e.URL = string(buf)
	}
	if e.OCRStreamFlag {
		v, err := r.ReadUint16()
		if err != nil {
			return err
		}
		e.OCRESID = v
	}

	if r.Pos() < esEnd {
		dcTag, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if dcTag != descrTagDecoderConfig {
			return &Error{Kind: ErrCustom, Err: errUnexpectedDescriptorTag}
		}
		return e.readDecoderConfig(r, esEnd)
	}
	return nil
}

// readDecoderConfig is split out only because Go's error-first style
// makes a single flat function here hard to read; it continues directly
// after the DecoderConfigDescriptor tag byte has been consumed.
func (e *Esds) readDecoderConfig(r *Reader, esEnd int64) error {
	payloadLen, err := readDescrLength(r, esEnd)
	if err != nil {
		return err
	}
	dcEnd := r.Pos() + int64(payloadLen)

	oti, err := r.ReadUint8()
	if err != nil {
		return err
	}
	e.ObjectTypeIndication = oti
	b, err := r.ReadUint8()
	if err != nil {
		return err
	}
	e.StreamType = (b & esdsStreamTypeMask) >> esdsStreamTypeShift
	e.UpStream = b&esdsUpstreamFlag != 0
	bufSize, err := r.ReadUint24()
	if err != nil {
		return err
	}
	e.BufferSizeDB = bufSize
	if e.MaxBitrate, err = r.ReadUint32(); err != nil {
		return err
	}
	if e.AvgBitrate, err = r.ReadUint32(); err != nil {
		return err
	}

	if r.Pos() < dcEnd {
		dsTag, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if dsTag != descrTagDecoderSpecific {
			return &Error{Kind: ErrCustom, Err: errUnexpectedDescriptorTag}
		}
		dsLen, err := readDescrLength(r, dcEnd)
		if err != nil {
			return err
		}
		info, err := r.ReadBytes(int(dsLen))
		if err != nil {
			return err
		}
		e.DecoderSpecificInfo = info
	}
	if err := r.SeekTo(dcEnd); err != nil {
		return err
	}

	if r.Pos() < esEnd {
		tagPos := r.Pos()
		tag, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if tag == descrTagSLConfig {
			slLen, err := readDescrLength(r, esEnd)
			if err != nil {
				return err
			}
			cfg, err := r.ReadBytes(int(slLen))
			if err != nil {
				return err
			}
			e.SLConfig = cfg
		} else {
			// Unrecognized trailing descriptor (e.g. a vendor
			// extension); leave it unparsed rather than guess its
			// length.
			if err := r.SeekTo(tagPos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Esds) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint8(descrTagES); err != nil {
		return err
	}
	if err := writeDescrLength(w, uint32(e.esPayloadSize())); err != nil {
		return err
	}
	if err := w.WriteUint16(e.ESID); err != nil {
		return err
	}
	var flags uint8
	if e.StreamDependenceFlag {
		flags |= esdsStreamDependenceFlag
	}
	if e.URLFlag {
		flags |= esdsURLFlag
	}
	if e.OCRStreamFlag {
		flags |= esdsOCRStreamFlag
	}
	flags |= e.StreamPriority & esdsStreamPriorityMask
	if err := w.WriteUint8(flags); err != nil {
		return err
	}
	if e.StreamDependenceFlag {
		if err := w.WriteUint16(e.DependsOnESID); err != nil {
			return err
		}
	}
	if e.URLFlag {
		if err := w.WriteUint8(uint8(len(e.URL))); err != nil {
			return err
		}
		if err := w.WriteBytes([]byte(e.URL)); err != nil {
			return err
		}
	}
	if e.OCRStreamFlag {
		if err := w.WriteUint16(e.OCRESID); err != nil {
			return err
		}
	}

	if err := w.WriteUint8(descrTagDecoderConfig); err != nil {
		return err
	}
	if err := writeDescrLength(w, uint32(e.decoderConfigPayloadSize())); err != nil {
		return err
	}
	if err := w.WriteUint8(e.ObjectTypeIndication); err != nil {
		return err
	}
	b := (e.StreamType << esdsStreamTypeShift) & esdsStreamTypeMask
	if e.UpStream {
		b |= esdsUpstreamFlag
	}
	b |= esdsReservedBit
	if err := w.WriteUint8(b); err != nil {
		return err
	}
	if err := w.WriteUint24(e.BufferSizeDB); err != nil {
		return err
	}
	if err := w.WriteUint32(e.MaxBitrate); err != nil {
		return err
	}
	if err := w.WriteUint32(e.AvgBitrate); err != nil {
		return err
	}
	if e.DecoderSpecificInfo != nil {
		if err := w.WriteUint8(descrTagDecoderSpecific); err != nil {
			return err
		}
		if err := writeDescrLength(w, uint32(len(e.DecoderSpecificInfo))); err != nil {
			return err
		}
		if err := w.WriteBytes(e.DecoderSpecificInfo); err != nil {
			return err
		}
	}

	if e.SLConfig != nil {
		if err := w.WriteUint8(descrTagSLConfig); err != nil {
			return err
		}
		if err := writeDescrLength(w, uint32(len(e.SLConfig))); err != nil {
			return err
		}
		if err := w.WriteBytes(e.SLConfig); err != nil {
			return err
		}
	}
	return nil
}

// AudioObjectType extracts the AAC audio object type (the top 5 bits of
// the first DecoderSpecificInfo byte), or 0 if unavailable.
func (e *Esds) AudioObjectType() uint8 {
	if len(e.DecoderSpecificInfo) == 0 {
		return 0
	}
	return (e.DecoderSpecificInfo[0] & 0xf8) >> 3
}
