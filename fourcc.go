// Package bmff implements encoding and decoding of ISO Base Media File
// Format (ISOBMFF / MP4, ISO/IEC 14496-12) box trees.
package bmff

import (
	"fmt"

	"github.com/google/uuid"
)

// FourCC is a four-byte box type identifier, e.g. "ftyp" or "moov".
type FourCC [4]byte

// String renders the identifier as ASCII, falling back to an escaped
// hex form when it contains non-printable bytes.
func (t FourCC) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("\\x%02x\\x%02x\\x%02x\\x%02x", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}

// ByteSize is always 4.
func (FourCC) ByteSize() int { return 4 }

// uuidFourCC is the literal box id that signals a UUID-extended box type.
var uuidFourCC = FourCC{'u', 'u', 'i', 'd'}

// BoxID is either a plain four-character type, or the four-character id
// "uuid" extended with a 128-bit UUID. IsUUID reports which arm is set.
//
// UUID generation is out of scope for this package (callers supply their
// own); the [uuid.UUID] type is used here only for its 16-byte form and
// canonical-string formatting.
type BoxID struct {
	FourCC FourCC
	UUID   uuid.UUID
	IsUUID bool
}

// NewBoxID builds a plain FourCC box id.
func NewBoxID(t FourCC) BoxID { return BoxID{FourCC: t} }

// NewUUIDBoxID builds a uuid-extended box id.
func NewUUIDBoxID(u uuid.UUID) BoxID { return BoxID{FourCC: uuidFourCC, UUID: u, IsUUID: true} }

// Equal compares two box ids by variant and value.
func (id BoxID) Equal(other BoxID) bool {
	if id.IsUUID != other.IsUUID {
		return false
	}
	if id.IsUUID {
		return id.UUID == other.UUID
	}
	return id.FourCC == other.FourCC
}

// ByteSize is the on-wire size contributed by this id alone (not
// including the leading 4-byte size field): 4 for a plain FourCC, or
// 4+16 for a uuid-extended id.
func (id BoxID) ByteSize() int {
	if id.IsUUID {
		return 4 + 16
	}
	return 4
}

func (id BoxID) String() string {
	if !id.IsUUID {
		return id.FourCC.String()
	}
	return "uuid:" + id.UUID.String()
}
