package bmff

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFourCCString(t *testing.T) {
	require.Equal(t, "ftyp", FourCC{'f', 't', 'y', 'p'}.String())
	require.Equal(t, `\x00\x01\x02\x03`, FourCC{0, 1, 2, 3}.String())
}

func TestBoxIDEqual(t *testing.T) {
	a := NewBoxID(fourccMoov)
	b := NewBoxID(fourccMoov)
	c := NewBoxID(fourccTrak)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))

	u1 := NewUUIDBoxID(uuid.New())
	u2 := NewUUIDBoxID(u1.UUID)
	require.True(t, u1.Equal(u2))
	require.False(t, a.Equal(u1))
}

func TestBoxIDByteSize(t *testing.T) {
	require.Equal(t, 4, NewBoxID(fourccMoov).ByteSize())
	require.Equal(t, 20, NewUUIDBoxID(uuid.New()).ByteSize())
}
