package services

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Groups opened by these control words hold formatting tables or binary data, not text.
var rtfDestinations = map[string]struct{}{
	"fonttbl":            {},
	"colortbl":           {},
	"stylesheet":         {},
	"info":               {},
	"pict":               {},
	"object":             {},
	"generator":          {},
	"listtable":          {},
	"listoverridetable":  {},
	"rsidtbl":            {},
	"latentstyles":       {},
	"themedata":          {},
	"colorschememapping": {},
	"datastore":          {},
	"xmlnstbl":           {},
	"filetbl":            {},
	"revtbl":             {},
}

var rtfSymbols = map[string]string{
	"par":       "\n",
	"line":      "\n",
	"sect":      "\n",
	"page":      "\n",
	"row":       "\n",
	"cell":      " ",
	"tab":       "\t",
	"bullet":    "•",
	"emdash":    "—",
	"endash":    "–",
	"lquote":    "'",
	"rquote":    "'",
	"ldblquote": "\"",
	"rdblquote": "\"",
}

// Single-byte code pages for \ansicpg. Hex escapes are decoded with the
// document code page, Windows-1252 unless declared otherwise.
var rtfCodePages = map[int]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
}

// Character set control words of the RTF header.
var rtfCharsets = map[string]*charmap.Charmap{
	"ansi": charmap.Windows1252,
	"mac":  charmap.Macintosh,
	"pc":   charmap.CodePage437,
	"pca":  charmap.CodePage850,
}

type rtfGroup struct {
	skip bool
	uc   int
}

// stripRTF removes RTF control words and groups, keeping the document text.
func stripRTF(data []byte) (string, error) {
	s := string(data)
	if !strings.HasPrefix(strings.TrimLeft(s, " \t\r\n"), `{\rtf`) {
		return "", errors.New(`missing {\rtf header`)
	}

	stack := []rtfGroup{{uc: 1}}
	codePage := charmap.Windows1252
	pending := 0
	var out strings.Builder

	emit := func(text string) {
		if stack[len(stack)-1].skip {
			return
		}
		for _, r := range text {
			if pending > 0 {
				pending--
				continue
			}
			out.WriteRune(r)
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch c {
		case '{':
			stack = append(stack, stack[len(stack)-1])
			i++
		case '}':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			i++
		case '\r', '\n':
			i++
		case '\\':
			i++
			if i >= len(s) {
				break
			}
			next := s[i]
			switch {
			case next == '\\' || next == '{' || next == '}':
				emit(string(next))
				i++
			case next == '\'':
				if i+2 < len(s) {
					if b, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
						emit(string(codePage.DecodeByte(byte(b))))
					}
				}
				i += 3
			case next == '*':
				stack[len(stack)-1].skip = true
				i++
			case next == '~':
				emit(" ")
				i++
			case next == '_':
				emit("-")
				i++
			case next == '\n' || next == '\r':
				emit("\n")
				i++
			case isASCIILetter(next):
				start := i
				for i < len(s) && isASCIILetter(s[i]) {
					i++
				}
				word := s[start:i]

				paramStart := i
				if i < len(s) && s[i] == '-' {
					i++
				}
				for i < len(s) && s[i] >= '0' && s[i] <= '9' {
					i++
				}
				param, hasParam := 0, false
				if i > paramStart {
					if v, err := strconv.Atoi(s[paramStart:i]); err == nil {
						param, hasParam = v, true
					}
				}
				if i < len(s) && s[i] == ' ' {
					i++
				}

				switch {
				case word == "u" && hasParam:
					if param < 0 {
						param += 65536
					}
					emit(string(rune(param)))
					if !stack[len(stack)-1].skip {
						pending = stack[len(stack)-1].uc
					}
				case word == "uc" && hasParam:
					stack[len(stack)-1].uc = param
				case word == "ansicpg" && hasParam:
					if cp, ok := rtfCodePages[param]; ok {
						codePage = cp
					}
				case rtfCharsets[word] != nil:
					codePage = rtfCharsets[word]
				default:
					if _, ok := rtfDestinations[word]; ok {
						stack[len(stack)-1].skip = true
					} else if sym, ok := rtfSymbols[word]; ok {
						emit(sym)
					}
				}
			default:
				i++
			}
		default:
			emit(string(rune(c)))
			i++
		}
	}

	return out.String(), nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
