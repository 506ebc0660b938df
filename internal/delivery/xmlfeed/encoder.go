// Package xmlfeed renders canonical products as the XML feed document.
package xmlfeed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cjfeed/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ContentType is the media type of every document produced here
const ContentType = "application/xml; charset=utf-8"

// TimestampLayout is ISO-8601 in UTC with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultErrorMessage replaces an empty error message
const DefaultErrorMessage = "Server error"

type feedDocument struct {
	XMLName     xml.Name         `xml:"products"`
	GeneratedAt string           `xml:"generated_at,attr"`
	Products    []productElement `xml:"product"`
}

type productElement struct {
	ID          string           `xml:"id"`
	Title       string           `xml:"title"`
	Description cdataText        `xml:"description"`
	Vendor      string           `xml:"vendor"`
	SKU         string           `xml:"sku"`
	Price       string           `xml:"price"`
	Currency    string           `xml:"currency"`
	Inventory   int              `xml:"inventory"`
	Image       string           `xml:"image"`
	Variants    []variantElement `xml:"variants>variant,omitempty"`
}

type variantElement struct {
	ID        string `xml:"id"`
	SKU       string `xml:"sku"`
	Price     string `xml:"price"`
	Inventory int    `xml:"inventory"`
	Option1   string `xml:"option1,omitempty"`
	Option2   string `xml:"option2,omitempty"`
	Option3   string `xml:"option3,omitempty"`
	Image     string `xml:"image,omitempty"`
}

type cdataText struct {
	Text string `xml:",cdata"`
}

// Encode renders products, in order, as one complete XML document
func Encode(products []domain.Product, generatedAt time.Time) ([]byte, error) {
	doc := feedDocument{
		GeneratedAt: generatedAt.UTC().Format(TimestampLayout),
		Products:    make([]productElement, 0, len(products)),
	}
	for _, p := range products {
		doc.Products = append(doc.Products, newProductElement(p))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeError renders the minimal error document returned with a 500
func EncodeError(message string) []byte {
	if message == "" {
		message = DefaultErrorMessage
	}
	return []byte(`<?xml version="1.0" encoding="UTF-8"?><error>` + escapeText(message) + `</error>`)
}

// FormatPrice renders a price with exactly two decimals. Rounding works on
// the exact binary value, half away from zero, so 1.005 renders as 1.00.
func FormatPrice(price float64) string {
	return exactDecimal(price).StringFixed(2)
}

// exactDecimal converts a finite float64 to the decimal it represents exactly
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mant := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53

	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	// 2^-k == 5^k * 10^-k
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}

func newProductElement(p domain.Product) productElement {
	el := productElement{
		ID:          p.ID,
		Title:       p.Title,
		Description: cdataText{Text: sanitize(p.Description)},
		Vendor:      p.Vendor,
		SKU:         p.SKU,
		Price:       FormatPrice(p.Price),
		Currency:    p.Currency,
		Inventory:   p.Inventory,
		Image:       p.Image,
	}

	for _, v := range p.Variants {
		price := v.Price
		if price == 0 {
			price = p.Price
		}
		el.Variants = append(el.Variants, variantElement{
			ID:        v.ID,
			SKU:       v.SKU,
			Price:     FormatPrice(price),
			Inventory: v.Inventory,
			Option1:   v.Option1,
			Option2:   v.Option2,
			Option3:   v.Option3,
			Image:     v.Image,
		})
	}

	return el
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(sanitize(s))
}

// sanitize drops invalid UTF-8 bytes and runes that may not appear in an
// XML 1.0 document. encoding/xml already does this for escaped text but not
// for CDATA.
func sanitize(s string) string {
	if isCleanXML(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isValidRune(r, size) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isCleanXML(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isValidRune(r, size) {
			return false
		}
		i += size
	}
	return true
}

// isValidRune rejects undecodable bytes but keeps a literal U+FFFD
func isValidRune(r rune, size int) bool {
	if r == utf8.RuneError && size == 1 {
		return false
	}
	return isXMLChar(r)
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
