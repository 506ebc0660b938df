package cj

import (
	"math"
	"strings"

	"github.com/cjfeed/backend/internal/domain"
	"github.com/spf13/cast"
)

// Field aliases, in priority order. CJ renames fields between endpoints and
// API versions, so each canonical attribute is read from the first alias
// holding a non-empty value.
var (
	ProductIDFields          = []string{"id", "productId", "sku", "productSku", "pid"}
	ProductTitleFields       = []string{"name", "productName", "title", "productNameEn"}
	ProductDescriptionFields = []string{"description", "productDescription", "productDesc", "sellPoint"}
	ProductVendorFields      = []string{"vendorName", "storeName", "brand"}
	ProductImageFields       = []string{"productImages", "image", "mainImage", "img", "productImage"}
	ProductPriceFields       = []string{"sellPrice", "price", "retailPrice", "wholesalePrice"}
	ProductCurrencyFields    = []string{"currency"}
	ProductInventoryFields   = []string{"inventory", "stock", "quantity"}
	ProductSKUFields         = []string{"productSku", "sku"}
	VariantListFields        = []string{"variants", "variantList"}

	VariantIDFields        = []string{"id", "variantId", "vid"}
	VariantSKUFields       = []string{"sku", "variantSku", "productSku"}
	VariantPriceFields     = []string{"sellPrice", "price", "retailPrice", "variantSellPrice"}
	VariantInventoryFields = []string{"inventory", "stock", "quantity"}
	VariantOption1Fields   = []string{"option1", "size", "attribute1", "attributeName", "color"}
	VariantOption2Fields   = []string{"option2", "attribute2", "style"}
	VariantOption3Fields   = []string{"option3", "attribute3"}
	VariantImageFields     = []string{"image", "img", "images", "variantImage"}
)

// listOnlyFields are used only when they hold an array. CJ sometimes sends
// image lists as a JSON-encoded string, which is not a usable URL.
var listOnlyFields = map[string]bool{
	"productImages": true,
	"images":        true,
}

// maxCount caps inventory figures so they always fit an int
const maxCount = math.MaxInt32

// FirstValue returns the first non-empty value among keys.
// An array value stands for its first element, so image lists resolve to
// their leading URL. Keys in listOnlyFields are skipped unless they hold an array.
func FirstValue(raw domain.RawProduct, keys []string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		list, isList := v.([]interface{})
		if listOnlyFields[key] && !isList {
			continue
		}
		if isList {
			if len(list) == 0 {
				continue
			}
			v = list[0]
		}
		if isPresent(v) {
			return v, true
		}
	}
	return nil, false
}

// FirstString returns the first non-empty scalar among keys as a string, or def
func FirstString(raw domain.RawProduct, keys []string, def string) string {
	for _, key := range keys {
		v, ok := FirstValue(raw, []string{key})
		if !ok {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil || s == "" {
			continue
		}
		return s
	}
	return def
}

// FirstList returns the first array-typed value among keys
func FirstList(raw domain.RawProduct, keys []string) []interface{} {
	for _, key := range keys {
		if list, ok := raw[key].([]interface{}); ok {
			return list
		}
	}
	return nil
}

// ParseNonNegativeNumberOrDefault converts raw to a number.
// Missing, non-numeric, non-finite and negative inputs all yield def.
func ParseNonNegativeNumberOrDefault(raw interface{}, def float64) float64 {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	if !isPresent(raw) {
		return def
	}
	if _, isMap := raw.(map[string]interface{}); isMap {
		return def
	}
	if _, isList := raw.([]interface{}); isList {
		return def
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return def
	}
	return f
}

// ParseCountOrDefault is ParseNonNegativeNumberOrDefault truncated to an int
func ParseCountOrDefault(raw interface{}, def int) int {
	f := ParseNonNegativeNumberOrDefault(raw, float64(def))
	if f > maxCount {
		return maxCount
	}
	return int(f)
}

// isPresent reports whether v counts as a supplied value: nil, empty
// strings, false, zero and NaN do not.
func isPresent(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case map[string]interface{}, []interface{}:
		return true
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return true
	}
	return f != 0 && !math.IsNaN(f)
}
