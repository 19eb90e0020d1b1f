package otp

import (
	"github.com/skip2/go-qrcode"

	"gatekit/config"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance.
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch cfg.TwoFactor.ErrorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 cfg.TwoFactor.QRSize,
		errorCorrectionLevel: level,
	}
}

// GeneratePNG renders the content (typically an otpauth:// provisioning URI)
// as a PNG QR code.
func (s *qrcodeService) GeneratePNG(content string) ([]byte, error) {
	qrCode, err := qrcode.New(content, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}
