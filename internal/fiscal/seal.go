package fiscal

import (
	"encoding/base64"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/skip2/go-qrcode"
)

// Seal builds the fiscal seal string stamped on a ticket at issuance:
// system code, ticketed event, gapless progressive, issue date and a CRC of
// the preceding fields. Fixed once written; never recomputed.
func Seal(systemCode string, ticketedEventID, progressive int64, issuedAt time.Time) string {
	body := fmt.Sprintf("%s-%06d-%08d-%s", systemCode, ticketedEventID, progressive, issuedAt.UTC().Format("20060102"))
	sum := crc32.ChecksumIEEE([]byte(body))
	return fmt.Sprintf("%s-%08X", body, sum)
}

// Verify checks the CRC suffix of a seal produced by Seal.
func Verify(seal string) bool {
	if len(seal) < 9 {
		return false
	}
	body := seal[:len(seal)-9]
	var sum uint32
	if _, err := fmt.Sscanf(seal[len(seal)-8:], "%08X", &sum); err != nil {
		return false
	}
	return crc32.ChecksumIEEE([]byte(body)) == sum
}

// QRDataURI renders the seal as a PNG QR code wrapped in a data URI, ready
// for the dashboard to embed in an <img> tag or a ticket email.
func QRDataURI(seal string, size int) (string, error) {
	qr, err := qrcode.New(seal, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	pngBytes, err := qr.PNG(size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR to PNG: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes), nil
}
