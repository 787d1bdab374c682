package services

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
)

// Word 97-2003 binary layout, see [MS-DOC] 2.5 (FIB) and 2.9.38 (Clx).
const (
	wordIdent          = 0xA5EC
	fibFlagsOffset     = 0x0A
	fibEncryptedFlag   = 0x0100
	fibWhichTableFlag  = 0x0200
	fibBaseSize        = 32
	fibCcpTextIndex    = 3
	fibFcClxIndex      = 33
	pieceCompressedBit = 1 << 30
	pieceFcMask        = pieceCompressedBit - 1
)

// Field characters: code runs from begin to separator, the displayed result
// from separator to end.
const (
	fieldBegin     = 0x13
	fieldSeparator = 0x14
	fieldEnd       = 0x15
)

type wordPiece struct {
	cpStart    int
	cpEnd      int
	offset     int
	compressed bool
}

// extractDoc reads the main document text of a legacy .doc file from its
// piece table.
func extractDoc(data []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open Word document: %w", err)
	}

	streams := make(map[string][]byte, 3)
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read Word document: %w", err)
		}

		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			b, err := io.ReadAll(entry)
			if err != nil {
				return "", fmt.Errorf("failed to read %s stream: %w", entry.Name, err)
			}
			streams[entry.Name] = b
		}
	}

	wordDoc := streams["WordDocument"]
	fib := &fieldReader{b: wordDoc}
	if fib.u16(0) != wordIdent {
		return "", errors.New("missing WordDocument stream")
	}

	flags := fib.u16(fibFlagsOffset)
	if flags&fibEncryptedFlag != 0 {
		return "", errors.New("encrypted Word documents are not supported")
	}
	tableName := "0Table"
	if flags&fibWhichTableFlag != 0 {
		tableName = "1Table"
	}
	table, ok := streams[tableName]
	if !ok {
		return "", fmt.Errorf("missing %s stream", tableName)
	}

	// FibBase is followed by three length-prefixed arrays: fibRgW (16 bit),
	// fibRgLw (32 bit) and fibRgFcLcb (fc/lcb pairs).
	pos := fibBaseSize
	csw := fib.u16(pos)
	pos += 2 + csw*2
	cslw := fib.u16(pos)
	rgLw := pos + 2
	pos = rgLw + cslw*4
	cbRgFcLcb := fib.u16(pos)
	rgFcLcb := pos + 2
	if fib.err == nil && (cslw <= fibCcpTextIndex || cbRgFcLcb <= fibFcClxIndex) {
		return "", errors.New("file information block is too short")
	}

	ccpText := fib.u32(rgLw + fibCcpTextIndex*4)
	fcClx := fib.u32(rgFcLcb + fibFcClxIndex*8)
	lcbClx := fib.u32(rgFcLcb + fibFcClxIndex*8 + 4)
	if fib.err != nil {
		return "", fmt.Errorf("invalid file information block: %w", fib.err)
	}
	if fcClx+lcbClx > len(table) {
		return "", errors.New("piece table is out of bounds")
	}

	pieces, err := parsePieceTable(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	var text []rune
	for _, p := range pieces {
		if p.cpStart >= ccpText {
			break
		}
		count := min(p.cpEnd, ccpText) - p.cpStart

		if p.compressed {
			if p.offset+count > len(wordDoc) {
				return "", errors.New("text piece is out of bounds")
			}
			for _, b := range wordDoc[p.offset : p.offset+count] {
				text = append(text, charmap.Windows1252.DecodeByte(b))
			}
			continue
		}

		if p.offset+count*2 > len(wordDoc) {
			return "", errors.New("text piece is out of bounds")
		}
		units := make([]uint16, count)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(wordDoc[p.offset+i*2:])
		}
		text = append(text, utf16.Decode(units)...)
	}

	return cleanWordText(text), nil
}

// parsePieceTable skips the property modifiers of a Clx and decodes its Pcdt.
func parsePieceTable(clx []byte) ([]wordPiece, error) {
	r := &fieldReader{b: clx}

	for i := 0; i < len(clx); {
		switch clx[i] {
		case 0x01:
			cb := int(int16(r.u16(i + 1)))
			if r.err != nil || cb < 0 {
				return nil, errors.New("invalid property modifier in piece table")
			}
			i += 3 + cb

		case 0x02:
			lcb := r.u32(i + 1)
			plc := i + 5
			if r.err != nil || lcb < 4 || plc+lcb > len(clx) {
				return nil, errors.New("invalid piece table")
			}

			n := (lcb - 4) / 12
			pieces := make([]wordPiece, 0, n)
			for k := 0; k < n; k++ {
				fc := r.u32(plc + (n+1)*4 + k*8 + 2)
				p := wordPiece{
					cpStart:    r.u32(plc + k*4),
					cpEnd:      r.u32(plc + (k+1)*4),
					compressed: fc&pieceCompressedBit != 0,
				}
				p.offset = fc & pieceFcMask
				if p.compressed {
					p.offset /= 2
				}
				if p.cpEnd < p.cpStart {
					return nil, errors.New("invalid piece boundaries")
				}
				pieces = append(pieces, p)
			}
			if r.err != nil {
				return nil, fmt.Errorf("invalid piece table: %w", r.err)
			}
			return pieces, nil

		default:
			return nil, fmt.Errorf("unexpected piece table marker 0x%02x", clx[i])
		}
	}

	return nil, errors.New("piece table not found")
}

// cleanWordText drops field codes and object anchors and turns paragraph,
// cell and page marks into line breaks.
func cleanWordText(text []rune) string {
	var out strings.Builder
	// One entry per open field, true while inside its code part.
	var fields []bool

	for _, r := range text {
		switch r {
		case fieldBegin:
			fields = append(fields, true)
			continue
		case fieldSeparator:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case fieldEnd:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}

		inCode := false
		for _, code := range fields {
			inCode = inCode || code
		}
		if inCode {
			continue
		}

		switch {
		case r == '\r' || r == 0x07 || r == 0x0b || r == 0x0c:
			out.WriteByte('\n')
		case r == '\t':
			out.WriteByte('\t')
		case r < 0x20:
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}

// fieldReader reads little-endian integers and remembers the first
// out-of-bounds access.
type fieldReader struct {
	b   []byte
	err error
}

func (r *fieldReader) u16(off int) int {
	if off < 0 || off+2 > len(r.b) {
		r.fail(off)
		return 0
	}
	return int(binary.LittleEndian.Uint16(r.b[off:]))
}

func (r *fieldReader) u32(off int) int {
	if off < 0 || off+4 > len(r.b) {
		r.fail(off)
		return 0
	}
	return int(binary.LittleEndian.Uint32(r.b[off:]))
}

func (r *fieldReader) fail(off int) {
	if r.err == nil {
		r.err = fmt.Errorf("offset %d beyond %d bytes", off, len(r.b))
	}
}
