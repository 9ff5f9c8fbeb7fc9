package bmff

// Vmhd is the video media header. Its flags field always carries bit 0
// set, per the ISO/IEC 14496-12 definition.
type Vmhd struct {
	NoChildren
	GraphicsMode uint16
	OpColor      [3]uint16
}

func (Vmhd) BoxID() FourCC          { return fourccVmhd }
func (*Vmhd) RequiredVersion() uint8 { return 0 }
func (*Vmhd) RequiredFlags() Flags   { return 1 }

func (*Vmhd) DataByteSize(Context) int { return 2 + 6 }

func (v *Vmhd) ReadData(_ Context, r *Reader, _ int64) error {
	gm, err := r.ReadUint16()
	if err != nil {
		return err
	}
	v.GraphicsMode = gm
	for i := range v.OpColor {
		c, err := r.ReadUint16()
		if err != nil {
			return err
		}
		v.OpColor[i] = c
	}
	return nil
}

func (v *Vmhd) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint16(v.GraphicsMode); err != nil {
		return err
	}
	for _, c := range v.OpColor {
		if err := w.WriteUint16(c); err != nil {
			return err
		}
	}
	return nil
}

// Smhd is the sound media header: stereo balance, left (-1.0) to
// right (1.0).
type Smhd struct {
	NoChildren
	Balance Fixed8_8
}

func (Smhd) BoxID() FourCC          { return fourccSmhd }
func (*Smhd) RequiredVersion() uint8 { return 0 }
func (*Smhd) RequiredFlags() Flags   { return 0 }

func (*Smhd) DataByteSize(Context) int { return 2 + 2 }

func (s *Smhd) ReadData(_ Context, r *Reader, _ int64) error {
	b, err := r.ReadUint16()
	if err != nil {
		return err
	}
	s.Balance = FromBits8_8(b)
	return r.Skip(2)
}

func (s *Smhd) WriteData(_ Context, w *Writer) error {
	if err := w.WriteUint16(s.Balance.Bits()); err != nil {
		return err
	}
	return w.WriteZeros(2)
}
