package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// decodeDOCX joins the text of every body paragraph with a single space.
// Paragraphs nested in tables or text boxes are not body paragraphs.
func decodeDOCX(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()

		paragraphs, err := bodyParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}
		return strings.Join(paragraphs, " "), nil
	}
	return "", errors.New("docx container has no " + documentPart)
}

func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack       []string
		paragraphs  []string
		current     strings.Builder
		inParagraph bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && endsWith(stack, "body") {
				inParagraph = true
				current.Reset()
			}
			if inParagraph && inBodyRun(stack) {
				switch name {
				case "tab":
					current.WriteByte('\t')
				case "cr":
					current.WriteByte('\n')
				case "br":
					if breakType(t) == "" || breakType(t) == "textWrapping" {
						current.WriteByte('\n')
					}
				}
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if t.Name.Local == "p" && inParagraph && endsWith(stack, "body") {
				paragraphs = append(paragraphs, current.String())
				inParagraph = false
			}
		case xml.CharData:
			n := len(stack)
			if inParagraph && n > 0 && stack[n-1] == "t" && inBodyRun(stack[:n-1]) {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// inBodyRun reports whether the stack ends inside a run of a body paragraph,
// directly or through a hyperlink.
func inBodyRun(stack []string) bool {
	return endsWith(stack, "body", "p", "r") || endsWith(stack, "body", "p", "hyperlink", "r")
}

func endsWith(stack []string, names ...string) bool {
	if len(stack) < len(names) {
		return false
	}
	offset := len(stack) - len(names)
	for i, name := range names {
		if stack[offset+i] != name {
			return false
		}
	}
	return true
}

func breakType(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" {
			return attr.Value
		}
	}
	return ""
}
