// Package qrcode renders credential payloads as PNG QR codes.
package qrcode

import (
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 300

type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

// NewEncoder returns an encoder producing size x size PNGs. level is one of
// low, medium, high or highest; empty means medium.
func NewEncoder(size int, level string) (*Encoder, error) {
	if size <= 0 {
		size = DefaultSize
	}

	recovery, err := parseRecoveryLevel(level)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		size:  size,
		level: recovery,
	}, nil
}

func (e *Encoder) Encode(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qrcode: empty content")
	}

	png, err := goqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, fmt.Errorf("goqrcode.Encode -> %w", err)
	}

	return png, nil
}

func parseRecoveryLevel(level string) (goqrcode.RecoveryLevel, error) {
	switch strings.ToLower(level) {
	case "low":
		return goqrcode.Low, nil
	case "", "medium":
		return goqrcode.Medium, nil
	case "high":
		return goqrcode.High, nil
	case "highest":
		return goqrcode.Highest, nil
	default:
		return 0, fmt.Errorf("qrcode: unknown recovery level %q", level)
	}
}
