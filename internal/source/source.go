// Package source reads source units and decodes them with a single
// declared encoding.
package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	// ErrDecode reports content that is not valid in the declared encoding.
	ErrDecode = errors.New("decode failure")
	// ErrIO reports a file that could not be read.
	ErrIO = errors.New("io failure")
)

// DefaultEncoding is used when no encoding is declared.
const DefaultEncoding = "utf-8"

// Decoder turns raw bytes into text. The zero value is not usable; call
// NewDecoder.
type Decoder struct {
	name string
	enc  encoding.Encoding // nil means strict UTF-8
}

// NewDecoder returns a decoder for an IANA encoding name. UTF-8 (the
// default) is validated strictly; other encodings go through x/text.
func NewDecoder(name string) (*Decoder, error) {
	n := strings.TrimSpace(name)
	switch strings.ToLower(n) {
	case "", "utf-8", "utf8":
		return &Decoder{name: DefaultEncoding}, nil
	}
	enc, err := ianaindex.IANA.Encoding(n)
	if err != nil {
		return nil, fmt.Errorf("source: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("source: unsupported encoding %q", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = n
	}
	return &Decoder{name: strings.ToLower(canonical), enc: enc}, nil
}

// Name returns the normalized encoding name.
func (d *Decoder) Name() string { return d.name }

// Decode converts b to text.
func (d *Decoder) Decode(b []byte) (string, error) {
	if d.enc == nil {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid %s", ErrDecode, d.name)
		}
		return string(b), nil
	}
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecode, d.name, err)
	}
	return string(out), nil
}

// Unit is one source file read fully into memory.
type Unit struct {
	Path string
	Raw  []byte
	Hash string // hex sha256 of Raw
}

// Open reads path eagerly.
func Open(path string) (*Unit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return &Unit{
		Path: path,
		Raw:  raw,
		Hash: fmt.Sprintf("%x", sha256.Sum256(raw)),
	}, nil
}

// Text decodes the unit's content with d.
func (u *Unit) Text(d *Decoder) (string, error) {
	text, err := d.Decode(u.Raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", u.Path, err)
	}
	return text, nil
}
