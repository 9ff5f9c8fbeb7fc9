package bmff

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayRoundTrip(t *testing.T) {
	a := Array[U32Entry, *U32Entry]{Items: []U32Entry{1, 2, 3}}
	require.Equal(t, 4+12, a.ByteSize())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, a.Write(w))
	require.Equal(t, a.ByteSize(), int(w.Len()))

	var got Array[U32Entry, *U32Entry]
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.Equal(t, a.Items, got.Items)
}

func TestArrayEmpty(t *testing.T) {
	a := Array[U32Entry, *U32Entry]{}
	require.Equal(t, 4, a.ByteSize())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, a.Write(w))

	var got Array[U32Entry, *U32Entry]
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.Empty(t, got.Items)
}

func TestVersionedArrayDerivesMaxVersion(t *testing.T) {
	va := VersionedArray[ElstEntry, *ElstEntry]{
		Items: []ElstEntry{
			{SegmentDuration: 10, MediaTime: 5, MediaRateInt: 1, MediaRateFrac: 0},
			{SegmentDuration: math.MaxUint32 + 1, MediaTime: 5, MediaRateInt: 1, MediaRateFrac: 0},
		},
	}
	require.EqualValues(t, 1, va.RequiredVersion())

	ctx := Context{Version: va.RequiredVersion()}
	require.Equal(t, 4+20+20, va.ByteSize(ctx))

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, va.WriteVersioned(ctx, w))
	require.Equal(t, va.ByteSize(ctx), int(w.Len()))

	var got VersionedArray[ElstEntry, *ElstEntry]
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.ReadVersioned(ctx, r))
	require.Equal(t, va.Items, got.Items)
}

func TestFixedPointBitPatterns(t *testing.T) {
	r := NewFixed16_16(1, 0)
	require.EqualValues(t, 0x00010000, r.Bits())
	require.Equal(t, r, FromBits16_16(0x00010000))

	v := Fixed8_8(0)
	require.Equal(t, v, FromBits8_8(0))

	m := UnityMatrix
	require.EqualValues(t, 0x00010000, m[0].Bits())
	require.EqualValues(t, 0x40000000, m[8].Bits())
}

func TestMatrix3x3RoundTrip(t *testing.T) {
	m := UnityMatrix
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, m.Write(w))
	require.Equal(t, 36, int(w.Len()))

	var got Matrix3x3
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.Equal(t, m, got)
}

func TestVersionedU32U64Promotion(t *testing.T) {
	small := VersionedU32U64(100)
	require.EqualValues(t, 0, small.RequiredVersion())
	require.Equal(t, 4, small.ByteSize(Context{Version: 0}))

	big := VersionedU32U64(math.MaxUint32)
	require.EqualValues(t, 1, big.RequiredVersion())
	require.Equal(t, 8, big.ByteSize(Context{Version: 1}))
}

func TestVersionedU32U64RoundTrip(t *testing.T) {
	for _, v := range []VersionedU32U64{0, 100, math.MaxUint32, math.MaxUint64} {
		ctx := Context{Version: v.RequiredVersion()}
		var buf bytes.Buffer
		w := NewWriter(&buf, Options{})
		require.NoError(t, v.WriteVersioned(ctx, w))

		var got VersionedU32U64
		r := NewReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, got.ReadVersioned(ctx, r))
		require.Equal(t, v, got)
	}
}

func TestMp4DurationSentinels(t *testing.T) {
	none := UnknownDuration()
	require.EqualValues(t, 0, none.RequiredVersion())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, none.WriteVersioned(Context{Version: 0}, w))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf.Bytes())

	var got Mp4Duration
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.ReadVersioned(Context{Version: 0}, r))
	require.False(t, got.Present)
}

func TestMp4DurationKnownValueDoesNotCollideWithSentinel(t *testing.T) {
	d := KnownDuration(12345)
	require.True(t, d.Present)

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, d.WriteVersioned(Context{Version: 0}, w))

	var got Mp4Duration
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.ReadVersioned(Context{Version: 0}, r))
	require.Equal(t, d, got)
}

func TestMp4DurationVersion1Sentinel(t *testing.T) {
	none := UnknownDuration()
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, none.WriteVersioned(Context{Version: 1}, w))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf.Bytes())
}

func TestVersionedSignedU32(t *testing.T) {
	pos := Unsigned32(42)
	require.EqualValues(t, 0, pos.RequiredVersion())

	neg := Signed32(-42)
	require.EqualValues(t, 1, neg.RequiredVersion())
	require.EqualValues(t, -42, neg.Int32())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, neg.WriteVersioned(Context{Version: 1}, w))

	var got VersionedSignedU32
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.ReadVersioned(Context{Version: 1}, r))
	require.EqualValues(t, -42, got.Int32())
}

func TestVersionedSignedU32NegativeAtV0IsError(t *testing.T) {
	neg := Signed32(-1)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	err := neg.WriteVersioned(Context{Version: 0}, w)
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrCustom, berr.Kind)
}

func TestPaddedByteProjection(t *testing.T) {
	zero := NewLengthSizeMinusOne(0)
	require.EqualValues(t, 0, zero.Value)

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, zero.Write(w))
	require.Equal(t, []byte{0b1111_1100}, buf.Bytes())

	three := NewLengthSizeMinusOne(3)
	buf.Reset()
	require.NoError(t, three.Write(w))
	require.Equal(t, []byte{0b1111_1111}, buf.Bytes())

	var readBack LengthSizeMinusOne
	r := NewReader(bytes.NewReader([]byte{0b1111_1111}))
	require.NoError(t, readBack.Read(r))
	require.EqualValues(t, 3, readBack.Value)
}

func TestParamSetCountPadding(t *testing.T) {
	psc := NewParamSetCount(5)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, psc.Write(w))
	require.Equal(t, []byte{0b1110_0101}, buf.Bytes())

	var got ParamSetCount
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.EqualValues(t, 5, got.Value)
}

func TestMp4LanguageCodeRoundTrip(t *testing.T) {
	for _, code := range []string{"eng", "und", "fra", "abc"} {
		c, ok := NewMp4LanguageCode(code)
		require.True(t, ok)
		require.Equal(t, code, c.String())
	}
}

func TestMp4LanguageCodeInvalidEncodesUnd(t *testing.T) {
	_, ok := NewMp4LanguageCode("ENG")
	require.False(t, ok)
	_, ok = NewMp4LanguageCode("e")
	require.False(t, ok)

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, UndeterminedLanguage.Write(w))

	var got Mp4LanguageCode
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.Equal(t, "und", got.String())
}

func TestCStringRoundTrip(t *testing.T) {
	s := CString("hello")
	require.Equal(t, 6, s.ByteSize())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, s.Write(w))
	require.Equal(t, []byte("hello\x00"), buf.Bytes())

	var got CString
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Read(r))
	require.Equal(t, s, got)
}

func TestCStringBadUTF8(t *testing.T) {
	var got CString
	r := NewReader(bytes.NewReader([]byte{0xff, 0xfe, 0}))
	err := got.Read(r)
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrBadUTF8, berr.Kind)
}
