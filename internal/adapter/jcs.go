package adapter

import (
	"bytes"

	"github.com/gowebpki/jcs"
)

// JCS defines an interface for RFC 8785 canonical JSON operations to enable mocking
//
//go:generate mockgen -source=jcs.go -destination=../mocks/jcs.go -package=mocks -mock_names=JCS=MockJCS
type JCS interface {
	Transform(data []byte) ([]byte, error)
	Equal(a, b []byte) (bool, error)
}

// RealJCS implements JCS using the gowebpki/jcs package
type RealJCS struct{}

// NewJCS creates a new real JCS implementation
func NewJCS() JCS {
	return &RealJCS{}
}

func (j *RealJCS) Transform(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}

// Equal reports whether two JSON documents are identical after canonicalization
func (j *RealJCS) Equal(a, b []byte) (bool, error) {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b), nil
	}

	ca, err := jcs.Transform(a)
	if err != nil {
		return false, err
	}
	cb, err := jcs.Transform(b)
	if err != nil {
		return false, err
	}

	return bytes.Equal(ca, cb), nil
}
