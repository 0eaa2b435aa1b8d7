package qr

import (
	"errors"
	"net/url"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 512
	MinSize     = 128
	MaxSize     = 2048
)

// LinkPNG renders an absolute http(s) link as a PNG QR code for printing on notice boards.
func LinkPNG(link string, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize || size > MaxSize {
		return nil, errors.New("invalid size: must be between 128 and 2048")
	}

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New("qr link must be an absolute http(s) url")
	}

	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = false

	return code.PNG(size)
}
