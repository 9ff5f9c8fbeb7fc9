package bmff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTripFullBox[T FullBody](t *testing.T, body T, fresh func() T) T {
	t.Helper()
	box := NewFullBox(body)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))
	require.Equal(t, box.ByteSize(), buf.Len())

	got := NewFullBox(fresh())
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	return got.Body
}

func roundTripBox[T Body](t *testing.T, body T, fresh func() T) T {
	t.Helper()
	box := NewBox(body)
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, box.Encode(w))
	require.Equal(t, box.ByteSize(), buf.Len())

	got := NewBox(fresh())
	r := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, got.Decode(r))
	return got.Body
}

func TestTkhdRoundTrip(t *testing.T) {
	tk := &Tkhd{
		TrackEnabled:     true,
		TrackInMovie:     true,
		CreationTime:     Mp4DateTime{Seconds: 1000},
		ModificationTime: Mp4DateTime{Seconds: 2000},
		TrackID:          1,
		Duration:         KnownDuration(5000),
		Layer:            0,
		AlternateGroup:   0,
		Volume:           FromBits8_8(0x0100),
		Matrix:           UnityMatrix,
		Width:            NewFixed16_16(640, 0),
		Height:           NewFixed16_16(480, 0),
	}
	got := roundTripFullBox[*Tkhd](t, tk, func() *Tkhd { return &Tkhd{} })
	require.Equal(t, tk, got)
}

func TestMdhdRoundTrip(t *testing.T) {
	mdhd := &Mdhd{
		CreationTime:     Mp4DateTime{Seconds: 1},
		ModificationTime: Mp4DateTime{Seconds: 2},
		Timescale:        48000,
		Duration:         KnownDuration(96000),
		Language:         UndeterminedLanguage,
	}
	got := roundTripFullBox[*Mdhd](t, mdhd, func() *Mdhd { return &Mdhd{} })
	require.Equal(t, mdhd, got)
}

func TestHdlrRoundTrip(t *testing.T) {
	hdlr := &Hdlr{HandlerType: FourCC{'v', 'i', 'd', 'e'}, Name: "VideoHandler"}
	got := roundTripFullBox[*Hdlr](t, hdlr, func() *Hdlr { return &Hdlr{} })
	require.Equal(t, hdlr, got)
}

func TestSmhdRoundTrip(t *testing.T) {
	smhd := &Smhd{Balance: FromBits8_8(0)}
	got := roundTripFullBox[*Smhd](t, smhd, func() *Smhd { return &Smhd{} })
	require.Equal(t, smhd, got)
}

func TestUrlSelfContained(t *testing.T) {
	u := &Url{SelfContained: true}
	got := roundTripFullBox[*Url](t, u, func() *Url { return &Url{} })
	require.Equal(t, u, got)
	require.EqualValues(t, 0, u.DataByteSize(Context{}))
}

func TestUrnWithLocation(t *testing.T) {
	u := &Urn{Name: "name", Location: "loc"}
	got := roundTripFullBox[*Urn](t, u, func() *Urn { return &Urn{} })
	require.Equal(t, u, got)
}

func TestDrefRoundTrip(t *testing.T) {
	dref := &Dref{
		Url: []*FullBox[*Url]{NewFullBox(&Url{SelfContained: true})},
		Urn: []*FullBox[*Urn]{NewFullBox(&Urn{Name: "n", Location: "l"})},
	}
	got := roundTripBox[*Dref](t, dref, func() *Dref { return &Dref{} })
	require.Len(t, got.Url, 1)
	require.Len(t, got.Urn, 1)
	require.True(t, got.Url[0].Body.SelfContained)
	require.Equal(t, CString("n"), got.Urn[0].Body.Name)
}

func TestSttsRoundTrip(t *testing.T) {
	stts := &Stts{Entries: Array[SttsEntry, *SttsEntry]{Items: []SttsEntry{
		{Count: 10, Duration: 1001},
		{Count: 5, Duration: 2002},
	}}}
	got := roundTripFullBox[*Stts](t, stts, func() *Stts { return &Stts{} })
	require.Equal(t, stts, got)
}

func TestCttsVersionedOffsets(t *testing.T) {
	ctts := &Ctts{Entries: VersionedArray[CttsEntry, *CttsEntry]{Items: []CttsEntry{
		{Count: 3, Offset: Signed32(-10)},
	}}}
	got := roundTripFullBox[*Ctts](t, ctts, func() *Ctts { return &Ctts{} })
	require.EqualValues(t, 1, NewFullBox(got).Version())
	require.EqualValues(t, -10, got.Entries.Items[0].Offset.Int32())
}

func TestStscRoundTrip(t *testing.T) {
	stsc := &Stsc{Entries: Array[StscEntry, *StscEntry]{Items: []StscEntry{
		{FirstChunk: 1, SamplesPerChunk: 12, SampleDescriptionID: 1},
	}}}
	got := roundTripFullBox[*Stsc](t, stsc, func() *Stsc { return &Stsc{} })
	require.Equal(t, stsc, got)
}

func TestStcoCo64RoundTrip(t *testing.T) {
	stco := &Stco{Entries: Array[U32Entry, *U32Entry]{Items: []U32Entry{100, 200, 300}}}
	gotStco := roundTripFullBox[*Stco](t, stco, func() *Stco { return &Stco{} })
	require.Equal(t, stco, gotStco)

	co64 := &Co64{Entries: Array[U64Entry, *U64Entry]{Items: []U64Entry{1 << 40, 1 << 41}}}
	gotCo64 := roundTripFullBox[*Co64](t, co64, func() *Co64 { return &Co64{} })
	require.Equal(t, co64, gotCo64)
}

func TestStssRoundTrip(t *testing.T) {
	stss := &Stss{Entries: Array[U32Entry, *U32Entry]{Items: []U32Entry{1, 10, 20}}}
	got := roundTripFullBox[*Stss](t, stss, func() *Stss { return &Stss{} })
	require.Equal(t, stss, got)
}

func TestElstRoundTrip(t *testing.T) {
	elst := &Elst{Entries: VersionedArray[ElstEntry, *ElstEntry]{Items: []ElstEntry{
		{SegmentDuration: 1000, MediaTime: 0, MediaRateInt: 1, MediaRateFrac: 0},
	}}}
	got := roundTripFullBox[*Elst](t, elst, func() *Elst { return &Elst{} })
	require.Equal(t, elst, got)
}

func TestAvc1WithAvcCChild(t *testing.T) {
	avc1 := &Avc1{
		DataReferenceIndex: 1,
		Width:              1920,
		Height:             1080,
		HorizResolution:    NewFixed16_16(72, 0),
		VertResolution:     NewFixed16_16(72, 0),
		FrameCount:         1,
		CompressorName:     "",
		Depth:              24,
		AvcC: NewBox(&AvcC{
			ConfigurationVersion: 1,
			ProfileIndication:    0x64,
			ProfileCompatibility: 0,
			LevelIndication:      0x1f,
			LengthSizeMinusOne:   NewLengthSizeMinusOne(3),
			SPS:                  [][]byte{{0x67, 0x01, 0x02}},
			PPS:                  [][]byte{{0x68, 0x03}},
		}),
	}
	got := roundTripBox[*Avc1](t, avc1, func() *Avc1 { return &Avc1{} })
	require.Equal(t, avc1.Width, got.Width)
	require.Equal(t, avc1.AvcC.Body.SPS, got.AvcC.Body.SPS)
	require.Equal(t, avc1.AvcC.Body.PPS, got.AvcC.Body.PPS)
	require.EqualValues(t, 3, got.AvcC.Body.LengthSizeMinusOne.Value)
}

func TestMp4aWithEsdsChild(t *testing.T) {
	mp4a := &Mp4a{
		DataReferenceIndex: 1,
		ChannelCount:       2,
		SampleSize:         16,
		SampleRate:         NewFixed16_16(44100, 0),
		Esds: NewFullBox(&Esds{
			ESID:                 1,
			StreamPriority:       0,
			ObjectTypeIndication: 0x40,
			StreamType:           5,
			BufferSizeDB:         0,
			MaxBitrate:           128000,
			AvgBitrate:           128000,
			DecoderSpecificInfo:  []byte{0x11, 0x90},
		}),
	}
	got := roundTripBox[*Mp4a](t, mp4a, func() *Mp4a { return &Mp4a{} })
	require.Equal(t, mp4a.ChannelCount, got.ChannelCount)
	require.Equal(t, mp4a.Esds.Body.DecoderSpecificInfo, got.Esds.Body.DecoderSpecificInfo)
	require.Equal(t, mp4a.Esds.Body.MaxBitrate, got.Esds.Body.MaxBitrate)
}

func TestMehdVersionPromotion(t *testing.T) {
	mehd := &Mehd{FragmentDuration: VersionedU32U64(uint64(1) << 40)}
	got := roundTripFullBox[*Mehd](t, mehd, func() *Mehd { return &Mehd{} })
	require.Equal(t, mehd, got)
	require.EqualValues(t, 1, NewFullBox(got).Version())
}

func TestTrexRoundTrip(t *testing.T) {
	trex := &Trex{
		TrackID:                       1,
		DefaultSampleDescriptionIndex: 1,
		DefaultSampleDuration:         1001,
		DefaultSampleSize:             0,
		DefaultSampleFlags:            0x01010000,
	}
	got := roundTripFullBox[*Trex](t, trex, func() *Trex { return &Trex{} })
	require.Equal(t, trex, got)
}

func TestMfhdRoundTrip(t *testing.T) {
	mfhd := &Mfhd{SequenceNumber: 7}
	got := roundTripFullBox[*Mfhd](t, mfhd, func() *Mfhd { return &Mfhd{} })
	require.Equal(t, mfhd, got)
}

func TestTfhdFlagGatedFields(t *testing.T) {
	tfhd := &Tfhd{
		TrackID:               1,
		BaseDataOffset:        Some(uint64(0)),
		DefaultSampleDuration: Some(uint32(1001)),
		DefaultBaseIsMoof:     true,
	}
	got := roundTripFullBox[*Tfhd](t, tfhd, func() *Tfhd { return &Tfhd{} })
	require.Equal(t, tfhd.TrackID, got.TrackID)
	v, ok := got.DefaultSampleDuration.Get()
	require.True(t, ok)
	require.EqualValues(t, 1001, v)
	_, ok = got.SampleDescriptionIndex.Get()
	require.False(t, ok)
	require.True(t, got.DefaultBaseIsMoof)
}

func TestTfdtRoundTrip(t *testing.T) {
	tfdt := &Tfdt{BaseMediaDecodeTime: VersionedU32U64(123456)}
	got := roundTripFullBox[*Tfdt](t, tfdt, func() *Tfdt { return &Tfdt{} })
	require.Equal(t, tfdt, got)
}

func TestSidxRoundTrip(t *testing.T) {
	sidx := &Sidx{
		ReferenceID:              1,
		Timescale:                90000,
		EarliestPresentationTime: VersionedU32U64(0),
		FirstOffset:              VersionedU32U64(0),
		Entries: []SidxEntry{
			{ReferenceType: false, ReferencedSize: 1000, SubsegmentDuration: 9000, StartsWithSAP: true, SAPType: 1, SAPDeltaTime: 0},
		},
	}
	got := roundTripFullBox[*Sidx](t, sidx, func() *Sidx { return &Sidx{} })
	require.Equal(t, sidx, got)
}

func TestDecodeSequenceMixedTopLevelBoxes(t *testing.T) {
	ftyp := NewBox(&Ftyp{MajorBrand: FourCC{'i', 's', 'o', 'm'}, CompatibleBrands: []FourCC{{'i', 's', 'o', 'm'}}})
	free := NewBox(&Free{Data: []byte{0, 0, 0}})
	mdat := NewBox(&Mdat{Data: []byte{1, 2, 3, 4}})

	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, ftyp.Encode(w))
	require.NoError(t, free.Encode(w))
	require.NoError(t, mdat.Encode(w))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	boxes, err := DecodeSequence(r)
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	gotFtyp, ok := boxes[0].(*Box[*Ftyp])
	require.True(t, ok)
	require.Equal(t, ftyp.Body.MajorBrand, gotFtyp.Body.MajorBrand)

	gotFree, ok := boxes[1].(*Box[*Free])
	require.True(t, ok)
	require.Equal(t, free.Body.Data, gotFree.Body.Data)

	gotMdat, ok := boxes[2].(*Box[*Mdat])
	require.True(t, ok)
	require.Equal(t, mdat.Body.Data, gotMdat.Body.Data)
}

func TestDecodeSequencePreservesUnknownTopLevelBox(t *testing.T) {
	unk := &UnknownBox{Header: Header{ID: NewBoxID(FourCC{'p', 'r', 'f', 't'})}, Raw: []byte{1, 2, 3}}
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{})
	require.NoError(t, unk.Encode(w))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	boxes, err := DecodeSequence(r)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	got, ok := boxes[0].(*UnknownBox)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got.Raw)
}
