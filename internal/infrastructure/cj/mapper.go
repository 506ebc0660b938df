package cj

import (
	"fmt"

	"github.com/cjfeed/backend/internal/domain"
)

// Fallbacks used when a record carries no vendor or currency
const (
	DefaultVendor   = "CJdropshipping"
	DefaultCurrency = "USD"
)

// MapOptions tunes the placeholder values the mapper falls back to
type MapOptions struct {
	DefaultVendor   string
	DefaultCurrency string
}

// DefaultMapOptions returns the stock CJ fallbacks
func DefaultMapOptions() MapOptions {
	return MapOptions{
		DefaultVendor:   DefaultVendor,
		DefaultCurrency: DefaultCurrency,
	}
}

func (o MapOptions) withDefaults() MapOptions {
	if o.DefaultVendor == "" {
		o.DefaultVendor = DefaultVendor
	}
	if o.DefaultCurrency == "" {
		o.DefaultCurrency = DefaultCurrency
	}
	return o
}

// MapToProduct converts a raw CJ record to our canonical Product.
// It never fails: missing or malformed fields fall back to defaults.
func MapToProduct(raw domain.RawProduct, opts MapOptions) domain.Product {
	opts = opts.withDefaults()

	id := FirstString(raw, ProductIDFields, "")
	price := ParseNonNegativeNumberOrDefault(firstOrNil(raw, ProductPriceFields), 0)

	product := domain.Product{
		ID:          id,
		Title:       FirstString(raw, ProductTitleFields, ""),
		Description: FirstString(raw, ProductDescriptionFields, ""),
		Vendor:      FirstString(raw, ProductVendorFields, opts.DefaultVendor),
		Image:       FirstString(raw, ProductImageFields, ""),
		Price:       price,
		Currency:    FirstString(raw, ProductCurrencyFields, opts.DefaultCurrency),
		Inventory:   ParseCountOrDefault(firstOrNil(raw, ProductInventoryFields), 0),
	}

	product.Variants = mapVariants(FirstList(raw, VariantListFields), id, price, product.Image)

	if product.Inventory == 0 && len(product.Variants) > 0 {
		product.Inventory = sumInventory(product.Variants)
	}
	if product.Image == "" && len(product.Variants) > 0 {
		product.Image = product.Variants[0].Image
	}

	skuFallback := id
	if len(product.Variants) > 0 && product.Variants[0].SKU != "" {
		skuFallback = product.Variants[0].SKU
	}
	product.SKU = FirstString(raw, ProductSKUFields, skuFallback)

	return product
}

// MapToProducts maps every raw record, preserving order
func MapToProducts(raws []domain.RawProduct, opts MapOptions) []domain.Product {
	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, MapToProduct(raw, opts))
	}
	return products
}

// mapVariants converts the raw variant list. Entries that are not objects
// are mapped as if they were empty.
func mapVariants(list []interface{}, productID string, productPrice float64, productImage string) []domain.Variant {
	if len(list) == 0 {
		return []domain.Variant{}
	}

	variants := make([]domain.Variant, 0, len(list))
	for idx, entry := range list {
		raw, ok := entry.(map[string]interface{})
		if !ok {
			raw = map[string]interface{}{}
		}
		variants = append(variants, mapVariant(domain.RawProduct(raw), idx, productID, productPrice, productImage))
	}
	return variants
}

func mapVariant(raw domain.RawProduct, idx int, productID string, productPrice float64, productImage string) domain.Variant {
	id := FirstString(raw, VariantIDFields, fmt.Sprintf("%s-%d", productID, idx+1))

	return domain.Variant{
		ID:        id,
		SKU:       FirstString(raw, VariantSKUFields, id),
		Price:     ParseNonNegativeNumberOrDefault(firstOrNil(raw, VariantPriceFields), productPrice),
		Inventory: ParseCountOrDefault(firstOrNil(raw, VariantInventoryFields), 0),
		Option1:   FirstString(raw, VariantOption1Fields, ""),
		Option2:   FirstString(raw, VariantOption2Fields, ""),
		Option3:   FirstString(raw, VariantOption3Fields, ""),
		Image:     FirstString(raw, VariantImageFields, productImage),
	}
}

func sumInventory(variants []domain.Variant) int {
	total := 0
	for _, v := range variants {
		total += v.Inventory
		if total > maxCount {
			return maxCount
		}
	}
	return total
}

func firstOrNil(raw domain.RawProduct, keys []string) interface{} {
	v, _ := FirstValue(raw, keys)
	return v
}
