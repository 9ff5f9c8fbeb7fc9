package bmff

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFtypEndToEnd reproduces the canonical 32-byte ftyp encoding: a
// major brand, minor version, and a four-brand compatible list.
func TestFtypEndToEnd(t *testing.T) {
	box := NewBox(&Ftyp{
		MajorBrand:   FourCC{'i', 's', 'o', 'm'},
		MinorVersion: 512,
		CompatibleBrands: []FourCC{
			{'i', 's', 'o', 'm'},
			{'i', 's', 'o', '2'},
			{'a', 'v', 'c', '1'},
			{'m', 'p', '4', '1'},
		},
	})

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	want := []byte{
		0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
		'i', 's', 'o', 'm', 'i', 's', 'o', '2',
		'a', 'v', 'c', '1', 'm', 'p', '4', '1',
	}
	require.Equal(t, want, buf.Bytes())
	require.Equal(t, 32, box.ByteSize())

	var got Box[*Ftyp]
	got.Body = &Ftyp{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.Equal(t, box.Body, got.Body)
}

// TestVmhdEndToEnd reproduces the canonical empty vmhd: 20 bytes total,
// flags forced to 1 regardless of what the caller sets.
func TestVmhdEndToEnd(t *testing.T) {
	box := NewFullBox(&Vmhd{})

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	want := []byte{
		0x00, 0x00, 0x00, 0x14, 'v', 'm', 'h', 'd',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	require.Equal(t, want, buf.Bytes())
	require.Equal(t, 20, box.ByteSize())

	var got FullBox[*Vmhd]
	got.Body = &Vmhd{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.EqualValues(t, 1, got.Flags())
}

// TestMvhdVersionPromotion checks that a creation_time one past
// uint32::MAX forces version 1 and the corresponding 8-byte date
// fields, growing the box's inner size by 12 bytes.
func TestMvhdVersionPromotion(t *testing.T) {
	box := NewFullBox(&Mvhd{
		CreationTime:     Mp4DateTime{Seconds: VersionedU32U64(uint64(math.MaxUint32) + 1)},
		ModificationTime: Mp4DateTime{Seconds: 0},
		Timescale:        1000,
		Duration:         KnownDuration(5000),
		Rate:             NewFixed16_16(1, 0),
		Volume:           FromBits8_8(0x0100),
		Matrix:           UnityMatrix,
		NextTrackID:      1,
	})

	require.EqualValues(t, 1, box.Version())
	require.Equal(t, 108, box.Body.DataByteSize(box.ctx()))
	require.Equal(t, 120, box.ByteSize())

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))
	require.Equal(t, 120, buf.Len())

	var got FullBox[*Mvhd]
	got.Body = &Mvhd{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.EqualValues(t, 1, got.Version())
	require.Equal(t, box.Body.CreationTime, got.Body.CreationTime)
	require.Equal(t, box.Body.NextTrackID, got.Body.NextTrackID)
}

// TestTrunFlagDerivation checks that presence flags are derived from
// which optional fields are set, and that only the present columns are
// written per entry.
func TestTrunFlagDerivation(t *testing.T) {
	trun := &Trun{
		DataOffset:          Some(int32(100)),
		SampleSizePresent:   true,
		Entries:             []TrunEntry{{SampleSize: 42}},
	}

	require.Equal(t, trunDataOffsetPresent|trunSampleSizePresent, trun.RequiredFlags())
	require.Equal(t, 4+4+4, trun.DataByteSize(Context{}))

	box := NewFullBox(trun)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	var got FullBox[*Trun]
	got.Body = &Trun{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.Equal(t, trun.RequiredFlags(), got.Flags())
	require.Equal(t, trun.Entries, got.Body.Entries)
	v, ok := got.Body.DataOffset.Get()
	require.True(t, ok)
	require.EqualValues(t, 100, v)
}

// TestStszSimpleEncoding reproduces the uniform-size variant's exact
// byte sequence.
func TestStszSimpleEncoding(t *testing.T) {
	box := NewFullBox(&Stsz{Simple: &StszSimple{SampleSize: 1024, SampleCount: 10}})

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	want := []byte{0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x0a}
	require.Equal(t, want, buf.Bytes()[buf.Len()-8:])

	var got FullBox[*Stsz]
	got.Body = &Stsz{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.Equal(t, box.Body.Simple, got.Body.Simple)
	require.Nil(t, got.Body.Advanced)
}

// TestStszAdvancedEncoding reproduces the per-sample-table variant's
// exact byte sequence.
func TestStszAdvancedEncoding(t *testing.T) {
	box := NewFullBox(&Stsz{Advanced: &StszAdvanced{Sizes: []uint32{11, 22, 33}}})

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x0b,
		0x00, 0x00, 0x00, 0x16,
		0x00, 0x00, 0x00, 0x21,
	}
	require.Equal(t, want, buf.Bytes()[buf.Len()-20:])

	var got FullBox[*Stsz]
	got.Body = &Stsz{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	require.Equal(t, box.Body.Advanced, got.Body.Advanced)
	require.Nil(t, got.Body.Simple)
}

// TestMoovPreservesUnknownChild checks that a child box this schema
// does not recognize round-trips byte-for-byte at the same position.
func TestMoovPreservesUnknownChild(t *testing.T) {
	moov := &Moov{
		Mvhd: NewFullBox(&Mvhd{
			Timescale:   600,
			Duration:    KnownDuration(100),
			Rate:        NewFixed16_16(1, 0),
			Volume:      FromBits8_8(0x0100),
			Matrix:      UnityMatrix,
			NextTrackID: 1,
		}),
	}
	moov.Unknown = []UnknownChild{
		{
			Header: Header{ID: NewBoxID(FourCC{'x', 'x', 'x', 'x'})},
			Raw:    []byte{0xAA, 0xBB, 0xCC, 0xDD},
		},
	}

	box := NewBox(moov)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	var got Box[*Moov]
	got.Body = &Moov{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))

	require.Len(t, got.Body.Unknown, 1)
	require.Equal(t, FourCC{'x', 'x', 'x', 'x'}, got.Body.Unknown[0].Header.ID.FourCC)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, got.Body.Unknown[0].Raw)
}

// TestBoxDecodeWrongIDIsError checks that decoding with a mismatched
// top-level FourCC reports ErrReadingWrongBox rather than silently
// misparsing.
func TestBoxDecodeWrongIDIsError(t *testing.T) {
	box := NewBox(&Free{})
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))

	var got Box[*Ftyp]
	got.Body = &Ftyp{}
	r := NewReader(bytes.NewReader(buf.Bytes()))
	err := got.Decode(r)
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrReadingWrongBox, berr.Kind)
}

// TestUnknownChildWithUnknownSizeIsError checks that an unknown child
// with an unbounded ("to end of stream") size cannot be preserved,
// since there is no way to know where it ends inside a parent.
func TestUnknownChildWithUnknownSizeIsError(t *testing.T) {
	h := Header{ID: NewBoxID(FourCC{'z', 'z', 'z', 'z'}), Size: UnknownSize()}
	_, err := readUnknownChild(h, NewReader(bytes.NewReader(nil)))
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, ErrUnknownSizeForUnknownBox, berr.Kind)
}
