package utils

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
)

// GeneratePaymentQR encodes a payment URL as a 256x256 PNG QR code, so the
// customer can finish a checkout started on desktop from their phone.
func GeneratePaymentQR(paymentURL string) ([]byte, error) {
	if paymentURL == "" {
		return nil, fmt.Errorf("payment URL is empty")
	}

	qrBytes, err := qrcode.Encode(paymentURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GeneratePaymentQR: error encoding QR for %q: %v", paymentURL, err)
		return nil, err
	}
	return qrBytes, nil
}
