package ingest

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractPDFText pulls the text-show operators out of every page's
// content stream. This covers the common digitally-authored PDF; scanned
// pages without a text layer yield nothing.
func ExtractPDFText(data []byte) (string, error) {
	rs := bytes.NewReader(data)

	ctx, err := api.ReadValidateAndOptimize(rs, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var sb strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			// A single undecodable page should not sink the whole file.
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		text := textFromContent(content)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

var (
	// (string) Tj and (string) ' show operators.
	showTextRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|')`)
	// [ ... ] TJ array show operator.
	showArrayRe = regexp.MustCompile(`\[((?:\\.|[^\]])*)\]\s*TJ`)
	// literal strings inside a TJ array
	literalRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

// textFromContent scrapes literal strings from Tj/TJ operators in a page
// content stream.
func textFromContent(content []byte) string {
	var parts []string

	for _, m := range showTextRe.FindAllSubmatch(content, -1) {
		parts = append(parts, decodePDFString(string(m[1])))
	}
	for _, m := range showArrayRe.FindAllSubmatch(content, -1) {
		var line strings.Builder
		for _, lit := range literalRe.FindAllSubmatch(m[1], -1) {
			line.WriteString(decodePDFString(string(lit[1])))
		}
		if line.Len() > 0 {
			parts = append(parts, line.String())
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

// decodePDFString resolves backslash escapes in a PDF literal string.
func decodePDFString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch n := s[i]; n {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '(', ')', '\\':
			sb.WriteByte(n)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j-i < 3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			if v, err := strconv.ParseUint(s[i:j], 8, 16); err == nil && v < 256 {
				sb.WriteByte(byte(v))
			}
			i = j - 1
		default:
			sb.WriteByte(n)
		}
	}
	return sb.String()
}
