// services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QREncoder matches qrcode.Encode so tests can swap it.
type QREncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode renders url as a square PNG of size pixels.
func GenerateQRCode(url string, size int, encode QREncoder) ([]byte, error) {
	if url == "" {
		return nil, errors.New("url must not be empty")
	}
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if encode == nil {
		encode = qrcode.Encode
	}

	png, err := encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
