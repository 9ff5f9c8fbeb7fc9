package bmff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderWriterPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})

	require.NoError(t, w.WriteUint8(0xAB))
	require.NoError(t, w.WriteUint16(0x1234))
	require.NoError(t, w.WriteUint24(0x010203))
	require.NoError(t, w.WriteUint32(0xDEADBEEF))
	require.NoError(t, w.WriteInt32(-1))
	require.NoError(t, w.WriteUint64(0x0102030405060708))
	require.NoError(t, w.WriteZeros(3))
	require.NoError(t, w.WriteFixedString("hi", 5))

	r := NewReader(bytes.NewReader(buf.Bytes()))

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	require.EqualValues(t, 0xAB, u8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, u16)

	u24, err := r.ReadUint24()
	require.NoError(t, err)
	require.EqualValues(t, 0x010203, u24)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, u32)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.EqualValues(t, -1, i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	require.EqualValues(t, 0x0102030405060708, u64)

	zeros, err := r.ReadBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0}, zeros)

	fixed, err := r.ReadBytes(5)
	require.NoError(t, err)
	require.Equal(t, []byte("hi\x00\x00\x00"), fixed)
}

func TestReaderAtEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	atEOF, err := r.AtEOF()
	require.NoError(t, err)
	require.False(t, atEOF)

	_, err = r.ReadBytes(2)
	require.NoError(t, err)

	atEOF, err = r.AtEOF()
	require.NoError(t, err)
	require.True(t, atEOF)
}

func TestReaderShortReadIsIOError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadUint32()
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrIO, berr.Kind)
}

func TestSeekToAndSkip(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5}))
	require.NoError(t, r.Skip(2))
	require.EqualValues(t, 2, r.Pos())
	b, err := r.ReadUint8()
	require.NoError(t, err)
	require.EqualValues(t, 2, b)

	require.NoError(t, r.SeekTo(0))
	require.EqualValues(t, 0, r.Pos())
}

func TestHeaderRoundTripPlainFourCC(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	h, err := HeaderFromIDAndInnerSize(NewBoxID(fourccFtyp), 24, Options{})
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(h))
	require.Equal(t, h.ByteSize(), int(w.Len()))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := r.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderRoundTripUUID(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	id := NewUUIDBoxID(raw)
	h, err := HeaderFromIDAndInnerSize(id, 10, Options{})
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(h))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := r.ReadHeader()
	require.NoError(t, err)
	require.True(t, got.ID.IsUUID)
	require.Equal(t, h.ID.UUID, got.ID.UUID)
	require.Equal(t, h.Size, got.Size)
}
