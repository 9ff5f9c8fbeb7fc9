package bmff

// DecodeSequence reads consecutive top-level boxes from r until the
// stream is exhausted. Unknown is legal only here (or for a trailing
// mdat/free/skip), per the unknown-size invariant child boxes must obey.
func DecodeSequence(r *Reader) ([]AnyBox, error) {
	var boxes []AnyBox
	for {
		atEOF, err := r.AtEOF()
		if err != nil {
			return nil, err
		}
		if atEOF {
			return boxes, nil
		}
		h, err := r.ReadHeader()
		if err != nil {
			return nil, err
		}
		box, err := decodeTopLevelBody(h, r)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
}

func decodeTopLevelBody(h Header, r *Reader) (AnyBox, error) {
	switch h.ID.FourCC {
	case fourccFtyp:
		b := NewBox(&Ftyp{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccStyp:
		b := NewBox(&Styp{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccMoov:
		b := NewBox(&Moov{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccMoof:
		b := NewBox(&Moof{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccMdat:
		b := NewBox(&Mdat{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccFree:
		b := NewBox(&Free{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccSkip:
		b := NewBox(&Skip{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	case fourccSidx:
		b := NewFullBox(&Sidx{})
		if err := b.DecodeBody(h, r); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return decodeUnknownTopLevel(h, r)
	}
}

func decodeUnknownTopLevel(h Header, r *Reader) (AnyBox, error) {
	if !h.Size.Known {
		raw, err := readToEOF(r)
		if err != nil {
			return nil, err
		}
		return &UnknownBox{Header: h, Raw: raw}, nil
	}
	inner := int(h.Size.Value) - h.ByteSize()
	raw, err := r.ReadBytes(inner)
	if err != nil {
		return nil, err
	}
	return &UnknownBox{Header: h, Raw: raw}, nil
}
