package services

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
)

const (
	cfbSectorSize = 512
	cfbFreeSect   = 0xFFFFFFFF
	cfbEndOfChain = 0xFFFFFFFE
	cfbFatSect    = 0xFFFFFFFD
	cfbNoStream   = 0xFFFFFFFF
	// Streams at least this long live in regular sectors, not the mini stream.
	cfbMiniCutoff = 4096
)

// buildCompoundFile writes a version 3 compound file with one FAT sector, one
// directory sector and the given streams directly under the root storage.
func buildCompoundFile(t *testing.T, streams map[string][]byte) []byte {
	t.Helper()
	le := binary.LittleEndian

	names := make([]string, 0, len(streams))
	for name := range streams {
		names = append(names, name)
	}
	require.LessOrEqual(t, len(names), 3)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return strings.ToUpper(names[i]) < strings.ToUpper(names[j])
	})

	fat := make([]uint32, cfbSectorSize/4)
	for i := range fat {
		fat[i] = cfbFreeSect
	}
	fat[0] = cfbFatSect
	fat[1] = cfbEndOfChain

	var body bytes.Buffer
	starts := make(map[string]int, len(names))
	next := 2
	for _, name := range names {
		data := streams[name]
		require.GreaterOrEqual(t, len(data), cfbMiniCutoff, name)

		sectors := (len(data) + cfbSectorSize - 1) / cfbSectorSize
		starts[name] = next
		for k := 0; k < sectors; k++ {
			fat[next+k] = uint32(next + k + 1)
		}
		fat[next+sectors-1] = cfbEndOfChain
		next += sectors

		body.Write(data)
		body.Write(make([]byte, sectors*cfbSectorSize-len(data)))
	}
	require.Less(t, next, len(fat))

	header := make([]byte, cfbSectorSize)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	le.PutUint16(header[24:], 0x003E)
	le.PutUint16(header[26:], 0x0003)
	le.PutUint16(header[28:], 0xFFFE)
	le.PutUint16(header[30:], 9)
	le.PutUint16(header[32:], 6)
	le.PutUint32(header[44:], 1)
	le.PutUint32(header[48:], 1)
	le.PutUint32(header[56:], cfbMiniCutoff)
	le.PutUint32(header[60:], cfbEndOfChain)
	le.PutUint32(header[68:], cfbEndOfChain)
	for i := 0; i < 109; i++ {
		le.PutUint32(header[76+i*4:], cfbFreeSect)
	}
	le.PutUint32(header[76:], 0)

	fatSector := make([]byte, cfbSectorSize)
	for i, v := range fat {
		le.PutUint32(fatSector[i*4:], v)
	}

	dir := make([]byte, cfbSectorSize)
	for i := 0; i < 4; i++ {
		e := dir[i*128:]
		le.PutUint32(e[68:], cfbNoStream)
		le.PutUint32(e[72:], cfbNoStream)
		le.PutUint32(e[76:], cfbNoStream)
	}
	entry := func(i int, name string, kind byte, right, child, start uint32, size int) {
		e := dir[i*128 : (i+1)*128]
		units := utf16.Encode([]rune(name))
		for k, u := range units {
			le.PutUint16(e[k*2:], u)
		}
		le.PutUint16(e[64:], uint16((len(units)+1)*2))
		e[66] = kind
		e[67] = 1
		le.PutUint32(e[72:], right)
		le.PutUint32(e[76:], child)
		le.PutUint32(e[116:], start)
		le.PutUint32(e[120:], uint32(size))
	}

	entry(0, "Root Entry", 5, cfbNoStream, 1, cfbEndOfChain, 0)
	for i, name := range names {
		right := uint32(cfbNoStream)
		if i < len(names)-1 {
			right = uint32(i + 2)
		}
		entry(i+1, name, 2, right, cfbNoStream, uint32(starts[name]), len(streams[name]))
	}

	out := append(header, fatSector...)
	out = append(out, dir...)
	return append(out, body.Bytes()...)
}

type docPiece struct {
	// text holds Windows-1252 bytes for compressed pieces.
	text       string
	compressed bool
}

// buildWordDocument lays out a FIB and the given text pieces in a
// WordDocument stream and the matching piece table in 1Table.
func buildWordDocument(t *testing.T, flags uint16, ccpText int, pieces ...docPiece) []byte {
	t.Helper()
	le := binary.LittleEndian

	wordDoc := make([]byte, cfbMiniCutoff)
	le.PutUint16(wordDoc[0:], wordIdent)
	le.PutUint16(wordDoc[2:], 0x00C1)
	le.PutUint16(wordDoc[fibFlagsOffset:], flags|fibWhichTableFlag)

	const (
		csw       = 14
		cslw      = 22
		cbRgFcLcb = 93
	)
	le.PutUint16(wordDoc[32:], csw)
	rgLw := 32 + 2 + csw*2 + 2
	le.PutUint16(wordDoc[rgLw-2:], cslw)
	le.PutUint32(wordDoc[rgLw+fibCcpTextIndex*4:], uint32(ccpText))
	rgFcLcb := rgLw + cslw*4 + 2
	le.PutUint16(wordDoc[rgFcLcb-2:], cbRgFcLcb)

	cps := []uint32{0}
	var fcs []uint32
	offset := 1024
	for _, p := range pieces {
		if p.compressed {
			copy(wordDoc[offset:], p.text)
			fcs = append(fcs, uint32(offset*2)|pieceCompressedBit)
			cps = append(cps, cps[len(cps)-1]+uint32(len(p.text)))
			offset += len(p.text)
			continue
		}
		units := utf16.Encode([]rune(p.text))
		for i, u := range units {
			le.PutUint16(wordDoc[offset+i*2:], u)
		}
		fcs = append(fcs, uint32(offset))
		cps = append(cps, cps[len(cps)-1]+uint32(len(units)))
		offset += len(units) * 2
	}
	require.Less(t, offset, len(wordDoc))

	var plc bytes.Buffer
	for _, cp := range cps {
		_ = binary.Write(&plc, le, cp)
	}
	for _, fc := range fcs {
		_ = binary.Write(&plc, le, uint16(0))
		_ = binary.Write(&plc, le, fc)
		_ = binary.Write(&plc, le, uint16(0))
	}

	var clx bytes.Buffer
	// One property modifier ahead of the piece table.
	clx.Write([]byte{0x01, 0x02, 0x00, 0xAA, 0xBB})
	clx.WriteByte(0x02)
	_ = binary.Write(&clx, le, uint32(plc.Len()))
	clx.Write(plc.Bytes())

	table := make([]byte, cfbMiniCutoff)
	copy(table, clx.Bytes())
	le.PutUint32(wordDoc[rgFcLcb+fibFcClxIndex*8:], 0)
	le.PutUint32(wordDoc[rgFcLcb+fibFcClxIndex*8+4:], uint32(clx.Len()))

	return buildCompoundFile(t, map[string][]byte{
		"WordDocument": wordDoc,
		"1Table":       table,
	})
}

func TestTextExtractor_Doc(t *testing.T) {
	ex := newTestExtractor()

	body := []docPiece{
		{text: "Jane Doe\rSenior Go Engineer\x0bI don\x92t give up. ", compressed: true},
		{text: "Portfolio: \x13 HYPERLINK \"https://jane.dev\" \x14jane.dev\x15 – Zürich\r"},
	}
	ccpText := len(body[0].text) + len(utf16.Encode([]rune(body[1].text)))
	footnote := docPiece{text: "Footnote text", compressed: true}

	doc := buildWordDocument(t, 0, ccpText, append(body, footnote)...)

	text, err := ex.Extract(doc, "resume.doc")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe Senior Go Engineer I don’t give up. Portfolio: jane.dev – Zürich", text)
}

func TestTextExtractor_DocFailures(t *testing.T) {
	ex := newTestExtractor()

	cases := []struct {
		name string
		data []byte
	}{
		{name: "not a compound file", data: []byte("not an OLE document at all")},
		{name: "encrypted", data: buildWordDocument(t, fibEncryptedFlag, 4, docPiece{text: "text", compressed: true})},
		{name: "no word stream", data: buildCompoundFile(t, map[string][]byte{"Book": make([]byte, cfbMiniCutoff)})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ex.Extract(tc.data, "resume.doc")
			require.Error(t, err)
			require.Equal(t, ErrorParseFailure, CodeOf(err))
		})
	}
}

func TestCleanWordText(t *testing.T) {
	in := []rune("a\x07b\x13 PAGE \x13 nested \x14x\x15 \x14 12\x15c\x01d\te")
	require.Equal(t, "a\nb 12cd\te", cleanWordText(in))
}
