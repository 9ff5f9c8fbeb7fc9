package bmff

// Known box type identifiers, grouped the way the ISO/IEC 14496-12
// clauses introduce them.
var (
	fourccFtyp = FourCC{'f', 't', 'y', 'p'}
	fourccStyp = FourCC{'s', 't', 'y', 'p'}
	fourccMoov = FourCC{'m', 'o', 'o', 'v'}
	fourccMvhd = FourCC{'m', 'v', 'h', 'd'}
	fourccTrak = FourCC{'t', 'r', 'a', 'k'}
	fourccTkhd = FourCC{'t', 'k', 'h', 'd'}
	fourccEdts = FourCC{'e', 'd', 't', 's'}
	fourccElst = FourCC{'e', 'l', 's', 't'}
	fourccMdia = FourCC{'m', 'd', 'i', 'a'}
	fourccMdhd = FourCC{'m', 'd', 'h', 'd'}
	fourccHdlr = FourCC{'h', 'd', 'l', 'r'}
	fourccMinf = FourCC{'m', 'i', 'n', 'f'}
	fourccVmhd = FourCC{'v', 'm', 'h', 'd'}
	fourccSmhd = FourCC{'s', 'm', 'h', 'd'}
	fourccDinf = FourCC{'d', 'i', 'n', 'f'}
	fourccDref = FourCC{'d', 'r', 'e', 'f'}
	fourccUrl  = FourCC{'u', 'r', 'l', ' '}
	fourccUrn  = FourCC{'u', 'r', 'n', ' '}
	fourccStbl = FourCC{'s', 't', 'b', 'l'}
	fourccStsd = FourCC{'s', 't', 's', 'd'}
	fourccStts = FourCC{'s', 't', 't', 's'}
	fourccCtts = FourCC{'c', 't', 't', 's'}
	fourccStsc = FourCC{'s', 't', 's', 'c'}
	fourccStsz = FourCC{'s', 't', 's', 'z'}
	fourccStco = FourCC{'s', 't', 'c', 'o'}
	fourccCo64 = FourCC{'c', 'o', '6', '4'}
	fourccStss = FourCC{'s', 't', 's', 's'}
	fourccMvex = FourCC{'m', 'v', 'e', 'x'}
	fourccMehd = FourCC{'m', 'e', 'h', 'd'}
	fourccTrex = FourCC{'t', 'r', 'e', 'x'}
	fourccMoof = FourCC{'m', 'o', 'o', 'f'}
	fourccMfhd = FourCC{'m', 'f', 'h', 'd'}
	fourccTraf = FourCC{'t', 'r', 'a', 'f'}
	fourccTfhd = FourCC{'t', 'f', 'h', 'd'}
	fourccTfdt = FourCC{'t', 'f', 'd', 't'}
	fourccTrun = FourCC{'t', 'r', 'u', 'n'}
	fourccSidx = FourCC{'s', 'i', 'd', 'x'}
	fourccMdat = FourCC{'m', 'd', 'a', 't'}
	fourccFree = FourCC{'f', 'r', 'e', 'e'}
	fourccSkip = FourCC{'s', 'k', 'i', 'p'}
	fourccAvc1 = FourCC{'a', 'v', 'c', '1'}
	fourccAvcC = FourCC{'a', 'v', 'c', 'C'}
	fourccMp4a = FourCC{'m', 'p', '4', 'a'}
	fourccEsds = FourCC{'e', 's', 'd', 's'}
	fourccOpus = FourCC{'O', 'p', 'u', 's'}
	fourccDOps = FourCC{'d', 'O', 'p', 's'}
)
