package bmff

// Avc1 is the AVC visual sample entry: the fixed ISO/IEC 14496-12
// VisualSampleEntry header plus an avcC decoder configuration child.
type Avc1 struct {
	DataReferenceIndex uint16
	Width              uint16
	Height             uint16
	HorizResolution    Fixed16_16
	VertResolution     Fixed16_16
	FrameCount         uint16
	CompressorName     string // at most 31 bytes; stored pascal-style on the wire
	Depth              uint16
	AvcC               *Box[*AvcC]
	Unknown            []UnknownChild
}

func (Avc1) BoxID() FourCC { return fourccAvc1 }

func (*Avc1) DataByteSize(Context) int { return 78 }

func (b *Avc1) ReadData(_ Context, r *Reader, _ int64) error {
	if err := r.Skip(6); err != nil { // reserved
		return err
	}
	v, err := r.ReadUint16()
	if err != nil {
		return err
	}
	b.DataReferenceIndex = v
	if err := r.Skip(16); err != nil { // pre_defined, reserved, pre_defined[3]
		return err
	}
	if b.Width, err = r.ReadUint16(); err != nil {
		return err
	}
	if b.Height, err = r.ReadUint16(); err != nil {
		return err
	}
	hr, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.HorizResolution = FromBits16_16(hr)
	vr, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.VertResolution = FromBits16_16(vr)
	if err := r.Skip(4); err != nil { // reserved
		return err
	}
	if b.FrameCount, err = r.ReadUint16(); err != nil {
		return err
	}
	name, err := r.ReadBytes(32)
	if err != nil {
		return err
	}
	n := int(name[0])
	if n > 31 {
		n = 31
	}
	b.CompressorName = string(name[1 : 1+n])
	if b.Depth, err = r.ReadUint16(); err != nil {
		return err
	}
	return r.Skip(2) // pre_defined = -1
}

func (b *Avc1) WriteData(_ Context, w *Writer) error {
	if err := w.WriteZeros(6); err != nil {
		return err
	}
	if err := w.WriteUint16(b.DataReferenceIndex); err != nil {
		return err
	}
	if err := w.WriteZeros(16); err != nil {
		return err
	}
	if err := w.WriteUint16(b.Width); err != nil {
		return err
	}
	if err := w.WriteUint16(b.Height); err != nil {
		return err
	}
	if err := w.WriteUint32(b.HorizResolution.Bits()); err != nil {
		return err
	}
	if err := w.WriteUint32(b.VertResolution.Bits()); err != nil {
		return err
	}
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	if err := w.WriteUint16(b.FrameCount); err != nil {
		return err
	}
	var name [32]byte
	n := len(b.CompressorName)
	if n > 31 {
		n = 31
	}
	name[0] = byte(n)
	copy(name[1:1+n], b.CompressorName[:n])
	if err := w.WriteBytes(name[:]); err != nil {
		return err
	}
	if err := w.WriteUint16(b.Depth); err != nil {
		return err
	}
	return w.WriteUint16(0xffff)
}

func (b *Avc1) ChildByteSize() int {
	n := 0
	if b.AvcC != nil {
		n += b.AvcC.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Avc1) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccAvcC:
		box := NewBox(&AvcC{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.AvcC = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Avc1) WriteChildren(w *Writer) error {
	if b.AvcC != nil {
		if err := b.AvcC.Encode(w); err != nil {
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

// AvcC is the AVC decoder configuration record: the profile/level
// triplet plus the SPS/PPS NAL unit lists a decoder needs before it can
// start decoding.
type AvcC struct {
	NoChildren
	ConfigurationVersion uint8
	ProfileIndication    uint8
	ProfileCompatibility uint8
	LevelIndication      uint8
	LengthSizeMinusOne   LengthSizeMinusOne
	SPS                  [][]byte
	PPS                  [][]byte
}

func (AvcC) BoxID() FourCC { return fourccAvcC }

func (b *AvcC) DataByteSize(Context) int {
	n := 4 + 1 + 1 // version/profile/compat/level, lengthSizeMinusOne byte, sps count byte
	for _, s := range b.SPS {
		n += 2 + len(s)
	}
	n++ // pps count byte
	for _, p := range b.PPS {
		n += 2 + len(p)
	}
	return n
}

func (b *AvcC) ReadData(_ Context, r *Reader, _ int64) error {
	var err error
	if b.ConfigurationVersion, err = r.ReadUint8(); err != nil {
		return err
	}
	if b.ProfileIndication, err = r.ReadUint8(); err != nil {
		return err
	}
	if b.ProfileCompatibility, err = r.ReadUint8(); err != nil {
		return err
	}
	if b.LevelIndication, err = r.ReadUint8(); err != nil {
		return err
	}
	if err := b.LengthSizeMinusOne.Read(r); err != nil {
		return err
	}
	var spsCount ParamSetCount
	if err := spsCount.Read(r); err != nil {
		return err
	}
	b.SPS = make([][]byte, spsCount.Value)
	for i := range b.SPS {
		l, err := r.ReadUint16()
		if err != nil {
			return err
		}
		nal, err := r.ReadBytes(int(l))
		if err != nil {
			return err
		}
		b.SPS[i] = nal
	}
	ppsCount, err := r.ReadUint8()
	if err != nil {
		return err
	}
	b.PPS = make([][]byte, ppsCount)
	for i := range b.PPS {
		l, err := r.ReadUint16()
		if err != nil {
			return err
		}
		nal, err := r.ReadBytes(int(l))
		if err != nil {
			return err
		}
		b.PPS[i] = nal
	}
	return nil
}

func (b *AvcC) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint8(b.ConfigurationVersion); err != nil {
		return err
	}
	if err := w.WriteUint8(b.ProfileIndication); err != nil {
		return err
	}
	if err := w.WriteUint8(b.ProfileCompatibility); err != nil {
		return err
	}
	if err := w.WriteUint8(b.LevelIndication); err != nil {
		return err
	}
	if err := b.LengthSizeMinusOne.Write(w); err != nil {
		return err
	}
	if err := NewParamSetCount(uint8(len(b.SPS))).Write(w); err != nil {
		return err
	}
	for _, s := range b.SPS {
		if err := w.WriteUint16(uint16(len(s))); err != nil {
			return err
		}
		if err := w.WriteBytes(s); err != nil {
			return err
		}
	}
	if err := w.WriteUint8(uint8(len(b.PPS))); err != nil {
		return err
	}
	for _, p := range b.PPS {
		if err := w.WriteUint16(uint16(len(p))); err != nil {
			return err
		}
		if err := w.WriteBytes(p); err != nil {
			return err
		}
	}
	return nil
}

// Mp4a is the MPEG-4 audio sample entry: the fixed AudioSampleEntry
// header plus an esds elementary stream descriptor child.
type Mp4a struct {
	DataReferenceIndex uint16
	ChannelCount       uint16
	SampleSize         uint16
	SampleRate         Fixed16_16
	Esds               *FullBox[*Esds]
	Unknown            []UnknownChild
}

func (Mp4a) BoxID() FourCC { return fourccMp4a }

func (*Mp4a) DataByteSize(Context) int { return 28 }

func (b *Mp4a) ReadData(_ Context, r *Reader, _ int64) error {
	if err := r.Skip(6); err != nil { // reserved
		return err
	}
	v, err := r.ReadUint16()
	if err != nil {
		return err
	}
	b.DataReferenceIndex = v
	if err := r.Skip(8); err != nil { // reserved
		return err
	}
	if b.ChannelCount, err = r.ReadUint16(); err != nil {
		return err
	}
	if b.SampleSize, err = r.ReadUint16(); err != nil {
		return err
	}
	if err := r.Skip(4); err != nil { // pre_defined, reserved
		return err
	}
	rate, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.SampleRate = FromBits16_16(rate)
	return nil
}

func (b *Mp4a) WriteData(_ Context, w *Writer) error {
	if err := w.WriteZeros(6); err != nil {
		return err
	}
	if err := w.WriteUint16(b.DataReferenceIndex); err != nil {
		return err
	}
	if err := w.WriteZeros(8); err != nil {
		return err
	}
	if err := w.WriteUint16(b.ChannelCount); err != nil {
		return err
	}
	if err := w.WriteUint16(b.SampleSize); err != nil {
		return err
	}
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	return w.WriteUint32(b.SampleRate.Bits())
}

func (b *Mp4a) ChildByteSize() int {
	n := 0
	if b.Esds != nil {
		n += b.Esds.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *Mp4a) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccEsds:
		box := NewFullBox(&Esds{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.Esds = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *Mp4a) WriteChildren(w *Writer) error {
	if b.Esds != nil {
		if err := b.Esds.Encode(w); err != nil {
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

// OpusSampleEntry is the Opus audio sample entry ("Opus"): the same
// fixed AudioSampleEntry header as Mp4a, plus a dOps configuration
// child.
type OpusSampleEntry struct {
	DataReferenceIndex uint16
	ChannelCount       uint16
	SampleSize         uint16
	SampleRate         Fixed16_16
	DOps               *Box[*DOps]
	Unknown            []UnknownChild
}

func (OpusSampleEntry) BoxID() FourCC { return fourccOpus }

func (*OpusSampleEntry) DataByteSize(Context) int { return 28 }

func (b *OpusSampleEntry) ReadData(_ Context, r *Reader, _ int64) error {
	if err := r.Skip(6); err != nil {
		return err
	}
	v, err := r.ReadUint16()
	if err != nil {
		return err
	}
	b.DataReferenceIndex = v
	if err := r.Skip(8); err != nil {
		return err
	}
	if b.ChannelCount, err = r.ReadUint16(); err != nil {
		return err
	}
	if b.SampleSize, err = r.ReadUint16(); err != nil {
		return err
	}
	if err := r.Skip(4); err != nil {
		return err
	}
	rate, err := r.ReadUint32()
	if err != nil {
		return err
	}
	b.SampleRate = FromBits16_16(rate)
	return nil
}

func (b *OpusSampleEntry) WriteData(_ Context, w *Writer) error {
	if err := w.WriteZeros(6); err != nil {
		return err
	}
	if err := w.WriteUint16(b.DataReferenceIndex); err != nil {
		return err
	}
	if err := w.WriteZeros(8); err != nil {
		return err
	}
	if err := w.WriteUint16(b.ChannelCount); err != nil {
		return err
	}
	if err := w.WriteUint16(b.SampleSize); err != nil {
		return err
	}
	if err := w.WriteZeros(4); err != nil {
		return err
	}
	return w.WriteUint32(b.SampleRate.Bits())
}

func (b *OpusSampleEntry) ChildByteSize() int {
	n := 0
	if b.DOps != nil {
		n += b.DOps.ByteSize()
	}
	for _, u := range b.Unknown {
		n += u.byteSize()
	}
	return n
}

func (b *OpusSampleEntry) AcceptChild(h Header, r *Reader) error {
	switch h.ID.FourCC {
	case fourccDOps:
		box := NewBox(&DOps{})
		if err := box.DecodeBody(h, r); err != nil {
			return err
		}
		b.DOps = box
	default:
		c, err := readUnknownChild(h, r)
		if err != nil {
			return err
		}
		b.Unknown = append(b.Unknown, c)
	}
	return nil
}

func (b *OpusSampleEntry) WriteChildren(w *Writer) error {
	if b.DOps != nil {
		if err := b.DOps.Encode(w); err != nil {
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

// DOps is the Opus-specific configuration box ("dOps") defined by the
// Opus-in-ISOBMFF binding: pre-skip, input sample rate, output gain and
// (for non-family-0 content) an explicit channel mapping table.
type DOps struct {
	NoChildren
	Version              uint8
	OutputChannelCount   uint8
	PreSkip              uint16
	InputSampleRate      uint32
	OutputGain           int16
	ChannelMappingFamily uint8
	StreamCount          uint8
	CoupledCount         uint8
	ChannelMapping       []byte
}

func (DOps) BoxID() FourCC { return fourccDOps }

func (d *DOps) DataByteSize(Context) int {
	n := 1 + 1 + 2 + 4 + 2 + 1
	if d.ChannelMappingFamily != 0 {
		n += 2 + len(d.ChannelMapping)
	}
	return n
}

func (d *DOps) ReadData(_ Context, r *Reader, _ int64) error {
	var err error
	if d.Version, err = r.ReadUint8(); err != nil {
		return err
	}
	if d.OutputChannelCount, err = r.ReadUint8(); err != nil {
		return err
	}
	if d.PreSkip, err = r.ReadUint16(); err != nil {
		return err
	}
	if d.InputSampleRate, err = r.ReadUint32(); err != nil {
		return err
	}
	gain, err := r.ReadUint16()
	if err != nil {
		return err
	}
	d.OutputGain = int16(gain)
	if d.ChannelMappingFamily, err = r.ReadUint8(); err != nil {
		return err
	}
	if d.ChannelMappingFamily == 0 {
		return nil
	}
	if d.StreamCount, err = r.ReadUint8(); err != nil {
		return err
	}
	if d.CoupledCount, err = r.ReadUint8(); err != nil {
		return err
	}
	mapping, err := r.ReadBytes(int(d.OutputChannelCount))
	if err != nil {
		return err
	}
	d.ChannelMapping = mapping
	return nil
}

func (d *DOps) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint8(d.Version); err != nil {
		return err
	}
	if err := w.WriteUint8(d.OutputChannelCount); err != nil {
		return err
	}
	if err := w.WriteUint16(d.PreSkip); err != nil {
		return err
	}
	if err := w.WriteUint32(d.InputSampleRate); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(d.OutputGain)); err != nil {
		return err
	}
	if err := w.WriteUint8(d.ChannelMappingFamily); err != nil {
		return err
	}
	if d.ChannelMappingFamily == 0 {
		return nil
	}
	if err := w.WriteUint8(d.StreamCount); err != nil {
		return err
	}
	if err := w.WriteUint8(d.CoupledCount); err != nil {
		return err
	}
	return w.WriteBytes(d.ChannelMapping)
}
