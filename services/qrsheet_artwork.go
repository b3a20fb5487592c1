package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ErrNoArtwork is returned by DecodeArtwork for an empty payload.
var ErrNoArtwork = errors.New("no artwork")

// DecodeArtwork decodes a QR raster payload. The payload may be a data URL
// (the prefix is stripped), bare base64, or raw encoded image bytes.
func DecodeArtwork(payload []byte) (image.Image, error) {
	raw, err := artworkBytes(payload)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("decode artwork: empty image")
	}
	return img, nil
}

// artworkBytes unwraps the payload to encoded image bytes.
func artworkBytes(payload []byte) ([]byte, error) {
	data := bytes.TrimSpace(payload)
	if len(data) == 0 {
		return nil, ErrNoArtwork
	}

	if bytes.HasPrefix(data, []byte("data:")) {
		return decodeDataURL(string(data))
	}

	if strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return data, nil
	}

	// Not a recognisable image: backends commonly hand over bare base64.
	decoded, err := decodeBase64(string(data))
	if err != nil {
		return nil, fmt.Errorf("artwork is neither an image nor base64: %w", err)
	}
	return decoded, nil
}

func decodeDataURL(s string) ([]byte, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URL")
	}
	header, body := s[len("data:"):comma], s[comma+1:]

	if strings.HasSuffix(header, ";base64") {
		return decodeBase64(body)
	}
	unescaped, err := url.PathUnescape(body)
	if err != nil {
		return nil, fmt.Errorf("unescape data URL: %w", err)
	}
	return []byte(unescaped), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if out, err := base64.StdEncoding.DecodeString(s); err == nil {
		return out, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// encodeArtworkPNG flattens the image onto white and re-encodes it as an
// opaque PNG the PDF writer can embed.
func encodeArtworkPNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}
