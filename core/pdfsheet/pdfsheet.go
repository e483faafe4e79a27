// Package pdfsheet extracts equipment specs from spec-sheet and brochure PDFs.
// PDFs are a best-effort source: text is recovered from the page content
// streams and scanned with the generic parser vocabulary. Any failure yields
// an empty draft.
package pdfsheet

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/kevinaugment/laserspechub/core"
	"github.com/kevinaugment/laserspechub/core/parse"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// Extractor turns PDF bytes into a draft.
type Extractor struct {
	parser *parse.Parser
	logger *slog.Logger
}

// New creates an Extractor that scans PDF text with parser.
func New(parser *parse.Parser, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{parser: parser, logger: logger}
}

// Extract returns the draft found in the PDF data fetched from source.
// Corrupt or unsupported documents yield an empty draft.
func (e *Extractor) Extract(data []byte, source string) (d core.Draft) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf extraction panicked", "url", source, "panic", r)
			d = core.Draft{}
		}
	}()

	text, err := Text(data)
	if err != nil {
		e.logger.Warn("pdf extraction failed", "url", source, "error", err)
		return core.Draft{}
	}
	if text == "" {
		e.logger.Info("pdf has no extractable text", "url", source)
		return core.Draft{}
	}
	return e.ExtractText(text)
}

// ExtractText applies the generic vocabulary plus the material proximity
// heuristic to already extracted PDF text.
func (e *Extractor) ExtractText(text string) core.Draft {
	d := e.parser.FromText(text)
	d.Thickness = e.parser.MaterialThickness(text)
	return d
}

// Text returns the whitespace-collapsed text of every page of the PDF.
func Text(data []byte) (string, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var all strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if pageText := textFromStream(content); pageText != "" {
			if all.Len() > 0 {
				all.WriteByte(' ')
			}
			all.WriteString(pageText)
		}
	}
	return all.String(), nil
}

var (
	// showTextRe matches the text-showing operators: [..] TJ, (..) Tj,
	// (..) ' and (..) ", plus hex strings shown with Tj.
	showTextRe = regexp.MustCompile(`\[((?:[^\]\\]|\\.)*)\]\s*TJ|\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|'|")|<([0-9A-Fa-f\s]*)>\s*Tj`)
	// arrayPartRe matches the strings and kerning numbers of a TJ array.
	arrayPartRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)|(-?\d+(?:\.\d+)?)`)
)

// wordGap is the TJ kerning (thousandths of an em) treated as a word space.
const wordGap = -200

// textFromStream recovers the shown text of a decoded content stream.
func textFromStream(data []byte) string {
	var sb strings.Builder
	for _, m := range showTextRe.FindAllSubmatch(data, -1) {
		switch {
		case m[1] != nil:
			for _, part := range arrayPartRe.FindAllSubmatch(m[1], -1) {
				if part[2] != nil {
					if n, err := strconv.ParseFloat(string(part[2]), 64); err == nil && n <= wordGap {
						sb.WriteByte(' ')
					}
					continue
				}
				sb.WriteString(decodePDFString(part[1]))
			}
		case m[2] != nil:
			sb.WriteString(decodePDFString(m[2]))
		case m[3] != nil:
			sb.WriteString(decodeHexString(m[3]))
		}
		sb.WriteByte(' ')
	}
	return cleanText(sb.String())
}

// decodePDFString handles the literal string escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
			sb.WriteByte(' ')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		case '\n':
			// Line continuation.
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return latin1(sb.String())
}

func decodeHexString(raw []byte) string {
	digits := strings.Join(strings.Fields(string(raw)), "")
	if len(digits)%2 == 1 {
		digits += "0"
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return ""
	}
	return latin1(string(b))
}

// latin1 maps single-byte font encodings to runes so "°" and "±" survive.
func latin1(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		sb.WriteRune(rune(s[i]))
	}
	return sb.String()
}

// cleanText collapses whitespace and drops non-printable runes.
func cleanText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
