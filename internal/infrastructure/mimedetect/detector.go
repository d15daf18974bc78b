package mimedetect

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// Detector sniffs a content type from the first bytes of a file.
type Detector struct{}

func New() Detector { return Detector{} }

// Detect uses net/http sniffing first. Generic answers (octet-stream, and
// zip which hides OOXML documents) are refined with mimetype.
func (Detector) Detect(head []byte) string {
	if len(head) == 0 {
		return octetStream
	}
	mt := http.DetectContentType(head)
	if mt != octetStream && mt != "application/zip" {
		return mt
	}
	return mimetype.Detect(head).String()
}
