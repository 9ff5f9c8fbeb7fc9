// Command bmffdump reads an ISOBMFF (.mp4/.mov/.m4a/fragment) file and
// prints its box tree.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tetsuo-student/bmff"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file>\n", os.Args[0])
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	boxes, err := bmff.DecodeSequence(bmff.NewReader(f))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, b := range boxes {
		printBox(b, 0)
	}
}

func printHeader(id bmff.FourCC, size int, depth int, extra string) {
	fmt.Printf("%s[%s] size=%d%s\n", strings.Repeat("  ", depth), id, size, extra)
}

func printBox(b bmff.AnyBox, depth int) {
	switch t := b.(type) {
	case *bmff.Box[*bmff.Ftyp]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, fmt.Sprintf(" major=%s brands=%d", t.Body.MajorBrand, len(t.Body.CompatibleBrands)))
	case *bmff.Box[*bmff.Styp]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, fmt.Sprintf(" major=%s brands=%d", t.Body.MajorBrand, len(t.Body.CompatibleBrands)))
	case *bmff.Box[*bmff.Moov]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Mvhd != nil {
			printFullBoxLeaf(t.Body.Mvhd, depth+1)
		}
		for _, trak := range t.Body.Trak {
			printBox(trak, depth+1)
		}
		if t.Body.Mvex != nil {
			printBox(t.Body.Mvex, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Trak]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Tkhd != nil {
			printFullBoxLeaf(t.Body.Tkhd, depth+1)
		}
		if t.Body.Edts != nil {
			printBox(t.Body.Edts, depth+1)
		}
		if t.Body.Mdia != nil {
			printBox(t.Body.Mdia, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Edts]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Elst != nil {
			printFullBoxLeaf(t.Body.Elst, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Mdia]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Mdhd != nil {
			printFullBoxLeaf(t.Body.Mdhd, depth+1)
		}
		if t.Body.Hdlr != nil {
			printHeader(t.Body.Hdlr.Body.BoxID(), t.Body.Hdlr.ByteSize(), depth+1, fmt.Sprintf(" handler=%s name=%q", t.Body.Hdlr.Body.HandlerType, t.Body.Hdlr.Body.Name))
		}
		if t.Body.Minf != nil {
			printBox(t.Body.Minf, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Minf]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Vmhd != nil {
			printFullBoxLeaf(t.Body.Vmhd, depth+1)
		}
		if t.Body.Smhd != nil {
			printFullBoxLeaf(t.Body.Smhd, depth+1)
		}
		if t.Body.Dinf != nil {
			printBox(t.Body.Dinf, depth+1)
		}
		if t.Body.Stbl != nil {
			printBox(t.Body.Stbl, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Dinf]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Dref != nil {
			printFullBoxLeaf(t.Body.Dref, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Stbl]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		printStblChildren(t.Body, depth+1)
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Mvex]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Mehd != nil {
			printFullBoxLeaf(t.Body.Mehd, depth+1)
		}
		for _, trex := range t.Body.Trex {
			printFullBoxLeaf(trex, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Moof]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Mfhd != nil {
			printFullBoxLeaf(t.Body.Mfhd, depth+1)
		}
		for _, traf := range t.Body.Traf {
			printBox(traf, depth+1)
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Traf]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
		if t.Body.Tfhd != nil {
			printFullBoxLeaf(t.Body.Tfhd, depth+1)
		}
		if t.Body.Tfdt != nil {
			printFullBoxLeaf(t.Body.Tfdt, depth+1)
		}
		for _, trun := range t.Body.Trun {
			printHeader(trun.Body.BoxID(), trun.ByteSize(), depth+1, fmt.Sprintf(" samples=%d", len(trun.Body.Entries)))
		}
		printUnknown(t.Body.Unknown, depth+1)
	case *bmff.Box[*bmff.Mdat]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, fmt.Sprintf(" bytes=%d", len(t.Body.Data)))
	case *bmff.Box[*bmff.Free]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
	case *bmff.Box[*bmff.Skip]:
		printHeader(t.Body.BoxID(), t.ByteSize(), depth, "")
	case *bmff.FullBox[*bmff.Sidx]:
		printFullBoxLeaf(t, depth)
	case *bmff.UnknownBox:
		printHeader(t.Header.ID.FourCC, t.ByteSize(), depth, " (unrecognized)")
	default:
		h := b.BoxHeader()
		printHeader(h.ID.FourCC, b.ByteSize(), depth, "")
	}
}

// printStblChildren walks the sample table's fixed child order.
func printStblChildren(stbl *bmff.Stbl, depth int) {
	if stbl.Stsd != nil {
		printHeader(stbl.Stsd.Body.BoxID(), stbl.Stsd.ByteSize(), depth, fmt.Sprintf(" entries=%d", len(stbl.Stsd.Body.Avc1)+len(stbl.Stsd.Body.Mp4a)+len(stbl.Stsd.Body.Opus)))
	}
	if stbl.Stts != nil {
		printFullBoxLeaf(stbl.Stts, depth)
	}
	if stbl.Ctts != nil {
		printFullBoxLeaf(stbl.Ctts, depth)
	}
	if stbl.Stsc != nil {
		printFullBoxLeaf(stbl.Stsc, depth)
	}
	if stbl.Stsz != nil {
		printFullBoxLeaf(stbl.Stsz, depth)
	}
	if stbl.Stco != nil {
		printFullBoxLeaf(stbl.Stco, depth)
	}
	if stbl.Co64 != nil {
		printFullBoxLeaf(stbl.Co64, depth)
	}
	if stbl.Stss != nil {
		printFullBoxLeaf(stbl.Stss, depth)
	}
}

// fullBoxLeaf is satisfied by every *bmff.FullBox[T] we print without
// descending into its (non-container) body.
type fullBoxLeaf interface {
	BoxHeader() bmff.Header
	ByteSize() int
}

func printFullBoxLeaf(b fullBoxLeaf, depth int) {
	printHeader(b.BoxHeader().ID.FourCC, b.ByteSize(), depth, "")
}

func printUnknown(children []bmff.UnknownChild, depth int) {
	for _, c := range children {
		printHeader(c.Header.ID.FourCC, c.Header.ByteSize()+len(c.Raw), depth, " (unrecognized)")
	}
}
