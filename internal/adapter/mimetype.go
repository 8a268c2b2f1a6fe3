package adapter

import "github.com/gabriel-vasile/mimetype"

// MimeDetector defines an interface for content type sniffing to enable mocking
//
//go:generate mockgen -source=mimetype.go -destination=../mocks/mimetype.go -package=mocks -mock_names=MimeDetector=MockMimeDetector
type MimeDetector interface {
	// Detect returns the MIME type and canonical extension of content
	Detect(content []byte) (mimeType string, extension string)
}

// RealMimeDetector implements MimeDetector using gabriel-vasile/mimetype
type RealMimeDetector struct{}

// NewMimeDetector creates a new real MIME detector
func NewMimeDetector() MimeDetector {
	return &RealMimeDetector{}
}

func (d *RealMimeDetector) Detect(content []byte) (string, string) {
	mtype := mimetype.Detect(content)
	return mtype.String(), mtype.Extension()
}
