package cj

import (
	"encoding/json"
	"testing"

	"github.com/cjfeed/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeRaw builds a RawProduct the same way the client does, from JSON
func decodeRaw(t *testing.T, body string) domain.RawProduct {
	t.Helper()
	var raw domain.RawProduct
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestMapToProduct(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Product
	}{
		{
			name: "empty record falls back to defaults",
			raw:  `{}`,
			want: domain.Product{
				Vendor:   "CJdropshipping",
				Currency: "USD",
				Variants: []domain.Variant{},
			},
		},
		{
			name: "primary field names",
			raw: `{
				"id": "P1", "name": "Lamp", "description": "<b>bright</b>",
				"vendorName": "Acme", "productImages": ["a.jpg", "b.jpg"],
				"sellPrice": "12.5", "currency": "EUR", "inventory": 4, "productSku": "SKU-1"
			}`,
			want: domain.Product{
				ID:          "P1",
				Title:       "Lamp",
				Description: "<b>bright</b>",
				Vendor:      "Acme",
				Image:       "a.jpg",
				Price:       12.5,
				Currency:    "EUR",
				Inventory:   4,
				SKU:         "SKU-1",
				Variants:    []domain.Variant{},
			},
		},
		{
			name: "alternate field names",
			raw: `{
				"productId": "P2", "productName": "Mug", "productDesc": "ceramic",
				"storeName": "Store", "mainImage": "m.jpg", "retailPrice": 3, "stock": "7"
			}`,
			want: domain.Product{
				ID:          "P2",
				Title:       "Mug",
				Description: "ceramic",
				Vendor:      "Store",
				Image:       "m.jpg",
				Price:       3,
				Currency:    "USD",
				Inventory:   7,
				SKU:         "P2",
				Variants:    []domain.Variant{},
			},
		},
		{
			name: "CJ list field names",
			raw: `{
				"pid": "04A2", "productNameEn": "Sock", "productImage": "s.jpg",
				"productSku": "CJSK01", "sellPrice": 1.2
			}`,
			want: domain.Product{
				ID:       "CJSK01",
				Title:    "Sock",
				Vendor:   "CJdropshipping",
				Image:    "s.jpg",
				Price:    1.2,
				Currency: "USD",
				SKU:      "CJSK01",
				Variants: []domain.Variant{},
			},
		},
		{
			name: "empty strings and zeros are skipped",
			raw:  `{"id": "", "productId": 42, "name": "", "title": "T", "sellPrice": 0, "price": "5"}`,
			want: domain.Product{
				ID:       "42",
				Title:    "T",
				Vendor:   "CJdropshipping",
				Price:    5,
				Currency: "USD",
				SKU:      "42",
				Variants: []domain.Variant{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToProduct(decodeRaw(t, tt.raw), DefaultMapOptions())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapToProduct_NumericCoercion(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantPrice     float64
		wantInventory int
	}{
		{"non-numeric price", `{"sellPrice": "3.20 -- 5.10", "price": 9}`, 0, 0},
		{"negative price", `{"sellPrice": -4}`, 0, 0},
		{"boolean inventory", `{"inventory": true}`, 0, 1},
		{"fractional inventory truncates", `{"stock": 3.9}`, 0, 3},
		{"object price", `{"price": {"amount": 3}}`, 0, 0},
		{"padded numeric string", `{"price": " 7.25 "}`, 7.25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToProduct(decodeRaw(t, tt.raw), DefaultMapOptions())
			assert.Equal(t, tt.wantPrice, got.Price)
			assert.Equal(t, tt.wantInventory, got.Inventory)
		})
	}
}

func TestMapToProduct_Variants(t *testing.T) {
	raw := decodeRaw(t, `{
		"id": "P1",
		"sellPrice": "10",
		"image": "p.jpg",
		"variants": [
			{"vid": "V1", "variantSku": "SKU-V1", "variantSellPrice": "8.5", "stock": 3, "size": "M", "style": "Slim", "attribute3": "Cotton", "images": ["v1.jpg"]},
			{"inventory": "7", "color": "Red"}
		]
	}`)

	got := MapToProduct(raw, DefaultMapOptions())

	require.Len(t, got.Variants, 2)
	assert.Equal(t, domain.Variant{
		ID:        "V1",
		SKU:       "SKU-V1",
		Price:     8.5,
		Inventory: 3,
		Option1:   "M",
		Option2:   "Slim",
		Option3:   "Cotton",
		Image:     "v1.jpg",
	}, got.Variants[0])
	assert.Equal(t, domain.Variant{
		ID:        "P1-2",
		SKU:       "P1-2",
		Price:     10,
		Inventory: 7,
		Option1:   "Red",
		Image:     "p.jpg",
	}, got.Variants[1])

	assert.Equal(t, 10, got.Inventory)
	assert.Equal(t, "SKU-V1", got.SKU)
}

func TestMapToProduct_InventoryBackfill(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P1", "inventory": 0, "variants": [{"inventory": 3}, {"inventory": 7}]}`)

	got := MapToProduct(raw, DefaultMapOptions())

	assert.Equal(t, 10, got.Inventory)
}

func TestMapToProduct_ProductInventoryWins(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P1", "quantity": 2, "variants": [{"inventory": 3}, {"inventory": 7}]}`)

	got := MapToProduct(raw, DefaultMapOptions())

	assert.Equal(t, 2, got.Inventory)
}

func TestMapToProduct_ImageBackfill(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P1", "variantList": [{"img": "first.jpg"}, {"img": "second.jpg"}]}`)

	got := MapToProduct(raw, DefaultMapOptions())

	assert.Equal(t, "first.jpg", got.Image)
	assert.Equal(t, "first.jpg", got.Variants[0].Image)
	assert.Equal(t, "second.jpg", got.Variants[1].Image)
}

func TestMapToProduct_StringImageListsIgnored(t *testing.T) {
	raw := decodeRaw(t, `{
		"id": "P1",
		"productImages": "[\"a.jpg\",\"b.jpg\"]",
		"image": "main.jpg",
		"variants": [
			{"id": "V1", "images": "[\"v1.jpg\"]"},
			{"id": "V2", "images": "[\"v2.jpg\"]", "variantImage": "v2-main.jpg"}
		]
	}`)

	got := MapToProduct(raw, DefaultMapOptions())

	assert.Equal(t, "main.jpg", got.Image)
	require.Len(t, got.Variants, 2)
	assert.Equal(t, "main.jpg", got.Variants[0].Image)
	assert.Equal(t, "v2-main.jpg", got.Variants[1].Image)
}

func TestMapToProduct_PositionalVariantID(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P1", "variants": [{"id": "first"}, {}]}`)

	got := MapToProduct(raw, DefaultMapOptions())

	require.Len(t, got.Variants, 2)
	assert.Equal(t, "first", got.Variants[0].ID)
	assert.Equal(t, "P1-2", got.Variants[1].ID)
}

func TestMapToProduct_MalformedVariants(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
	}{
		{"variants is an object", `{"id": "P", "variants": {"a": 1}}`, 0},
		{"variants is a string", `{"id": "P", "variants": "none"}`, 0},
		{"variants missing, variantList present", `{"id": "P", "variants": null, "variantList": [{}]}`, 1},
		{"non-object entries", `{"id": "P", "variants": [null, "x", 3]}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToProduct(decodeRaw(t, tt.raw), DefaultMapOptions())

			require.NotNil(t, got.Variants)
			assert.Len(t, got.Variants, tt.wantCount)
			for i, v := range got.Variants {
				assert.NotEmpty(t, v.ID, "variant %d", i)
			}
		})
	}
}

func TestMapToProduct_VariantsListPrecedence(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P", "variants": [], "variantList": [{"id": "ignored"}]}`)

	got := MapToProduct(raw, DefaultMapOptions())

	assert.Empty(t, got.Variants)
}

func TestMapToProduct_Idempotent(t *testing.T) {
	raw := decodeRaw(t, `{"id": "P1", "name": "N", "variants": [{"stock": 1}, {"price": "2"}]}`)

	first := MapToProduct(raw, DefaultMapOptions())
	second := MapToProduct(raw, DefaultMapOptions())

	assert.Equal(t, first, second)
}

func TestMapToProduct_CustomDefaults(t *testing.T) {
	got := MapToProduct(domain.RawProduct{}, MapOptions{DefaultVendor: "House", DefaultCurrency: "EUR"})

	assert.Equal(t, "House", got.Vendor)
	assert.Equal(t, "EUR", got.Currency)
}

func TestMapToProducts_PreservesOrder(t *testing.T) {
	raws := []domain.RawProduct{
		{"id": "A"},
		{"id": "B"},
		{"id": "C"},
	}

	got := MapToProducts(raws, DefaultMapOptions())

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
	assert.Equal(t, "C", got[2].ID)
}
