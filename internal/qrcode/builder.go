// Package qrcode builds image URLs against the third-party QR rendering
// service. Nothing here talks to the network: the console displays or
// downloads the returned URL directly.
package qrcode

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DefaultSize = 300

type Options struct {
	Size       int
	Background string // hex, with or without '#'
	Foreground string
}

type Builder struct {
	serviceURL string
	origin     string
	size       int
}

func NewBuilder(serviceURL, origin string, size int) *Builder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Builder{
		serviceURL: serviceURL,
		origin:     strings.TrimRight(origin, "/"),
		size:       size,
	}
}

func (b *Builder) MenuURL(businessID int64) string {
	return fmt.Sprintf("%s/menu/%d", b.origin, businessID)
}

func (b *Builder) PaymentURL(businessID int64) string {
	return fmt.Sprintf("%s/paiement-public?business=%d", b.origin, businessID)
}

func (b *Builder) MenuQR(businessID int64) string {
	return b.ImageURL(b.MenuURL(businessID), Options{})
}

func (b *Builder) PaymentQR(businessID int64) string {
	return b.ImageURL(b.PaymentURL(businessID), Options{})
}

// ImageURL returns the GET URL rendering data as a QR image.
func (b *Builder) ImageURL(data string, opts Options) string {
	size := opts.Size
	if size <= 0 {
		size = b.size
	}
	dim := strconv.Itoa(size)

	// query order is fixed so that the same input always yields the same URL
	var sb strings.Builder
	sb.WriteString(b.serviceURL)
	if strings.Contains(b.serviceURL, "?") {
		sb.WriteByte('&')
	} else {
		sb.WriteByte('?')
	}
	sb.WriteString("size=" + dim + "x" + dim)
	sb.WriteString("&data=" + url.QueryEscape(data))
	if bg := hexColor(opts.Background); bg != "" {
		sb.WriteString("&bgcolor=" + bg)
	}
	if fg := hexColor(opts.Foreground); fg != "" {
		sb.WriteString("&color=" + fg)
	}
	return sb.String()
}

func hexColor(c string) string {
	return strings.TrimPrefix(strings.TrimSpace(c), "#")
}
