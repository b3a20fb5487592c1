package services

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// DefaultQRPixels is the edge length of generated QR bitmaps. At 40mm this is
// roughly 300dpi.
const DefaultQRPixels = 480

// EncodeQRCode renders content as a square PNG QR code of size x size pixels.
func EncodeQRCode(content string, size int) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode QR %q: %w", content, err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("scale QR %q: %w", content, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return nil, fmt.Errorf("write QR PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeQRCodes encodes every content string concurrently. The result keeps
// input order. An entry that fails to encode is left nil so the sheet falls
// back to a placeholder for it; the returned error reports the first failure.
func EncodeQRCodes(contents []string, size int) ([][]byte, error) {
	out := make([][]byte, len(contents))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, content := range contents {
		g.Go(func() error {
			png, err := EncodeQRCode(content, size)
			if err != nil {
				return err
			}
			out[i] = png
			return nil
		})
	}
	return out, g.Wait()
}
