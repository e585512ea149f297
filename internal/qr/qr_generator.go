package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

type QRGenerator struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRGenerator(size int) *QRGenerator {
	if size <= 0 {
		size = DefaultSize
	}
	return &QRGenerator{size: size, level: qrcode.Medium}
}

// GenerateMailtoQR encodes a mailto: link for email as a PNG.
func (q *QRGenerator) GenerateMailtoQR(email string) ([]byte, error) {
	if email == "" {
		return nil, fmt.Errorf("qr: empty email")
	}
	return qrcode.Encode("mailto:"+email, q.level, q.size)
}
