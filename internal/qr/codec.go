package qr

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"equiptrack/internal/apperrors"
)

// Visual parameters are fixed so printed labels stay consistent across
// batches. Error correction is High so a label survives partial occlusion
// and print degradation.
const imageSize = 300

var (
	foreground = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// BuildReference returns the canonical public URL for an equipment record.
// A scheme is prepended when the configured base URL lacks one, so a
// misconfigured base can never produce a non-resolvable artifact.
func BuildReference(baseURL, equipmentID string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/equipment/scan/%s", base, equipmentID)
}

// Render encodes the URL into a scannable PNG, returned as a base64 data URL.
func Render(url string) (string, error) {
	code, err := qrcode.New(url, qrcode.High)
	if err != nil {
		return "", &apperrors.CodecError{Err: err}
	}
	code.ForegroundColor = foreground
	code.BackgroundColor = background

	png, err := code.PNG(imageSize)
	if err != nil {
		return "", &apperrors.CodecError{Err: err}
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Regenerate re-derives both identity outputs for an equipment record. It is
// idempotent and is the remediation path after a public base URL change.
func Regenerate(baseURL, equipmentID string) (artifact, url string, err error) {
	url = BuildReference(baseURL, equipmentID)
	artifact, err = Render(url)
	if err != nil {
		return "", "", err
	}
	return artifact, url, nil
}
