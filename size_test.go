package bmff

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderFromIDAndInnerSizeArithmetic(t *testing.T) {
	cases := []uint64{0, 1, 100, math.MaxUint32 - 8}
	for _, inner := range cases {
		h, err := HeaderFromIDAndInnerSize(NewBoxID(fourccFtyp), inner, Options{})
		require.NoError(t, err)
		require.Equal(t, h.ByteSize()+int(inner), int(h.Size.Value))
	}
}

func TestHeaderFromIDAndInnerSizePromotesTo64Bit(t *testing.T) {
	inner := uint64(math.MaxUint32)
	h, err := HeaderFromIDAndInnerSize(NewBoxID(fourccMdat), inner, Options{})
	require.NoError(t, err)
	require.True(t, h.usesExtendedSize())
	require.Equal(t, 16, h.ByteSize()) // 4 size + 4 id + 8 extended
	require.Equal(t, h.ByteSize()+int(inner), int(h.Size.Value))
}

func TestHeaderFromIDAndInnerSizeForce32BitRefuses(t *testing.T) {
	inner := uint64(math.MaxUint32)
	_, err := HeaderFromIDAndInnerSize(NewBoxID(fourccMdat), inner, Options{Force32BitSize: true})
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrCustom, berr.Kind)
}

func TestBoxSizeEnded(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	r := NewReader(bytes.NewReader(buf))
	start := r.Pos()
	_, _ = r.ReadBytes(4)
	size := KnownSize(4)
	ended, err := size.Ended(r, start)
	require.NoError(t, err)
	require.True(t, ended)
	require.EqualValues(t, 4, r.Pos())
}

func TestBoxSizeEndedRewindsOnOverrun(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	r := NewReader(bytes.NewReader(buf))
	start := r.Pos()
	_, _ = r.ReadBytes(6)
	size := KnownSize(4)
	ended, err := size.Ended(r, start)
	require.NoError(t, err)
	require.True(t, ended)
	require.EqualValues(t, 4, r.Pos())
}
