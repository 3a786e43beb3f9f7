package parser

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MetaCharset returns the charset declared by <meta charset> or by a
// <meta http-equiv="Content-Type"> tag, whichever comes first in the document.
func MetaCharset(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	var found string
	doc.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		if cs, ok := meta.Attr("charset"); ok && strings.TrimSpace(cs) != "" {
			found = strings.TrimSpace(cs)
			return false
		}
		equiv, _ := meta.Attr("http-equiv")
		if !strings.EqualFold(strings.TrimSpace(equiv), "content-type") {
			return true
		}
		content, _ := meta.Attr("content")
		if _, params, err := mime.ParseMediaType(content); err == nil && params["charset"] != "" {
			found = params["charset"]
			return false
		}
		return true
	})
	return found, nil
}

// Title returns the trimmed text of the first <title> element.
func Title(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " "), nil
}
