package domain

import "context"

// CatalogClient defines the interface for interacting with the CJ product catalog API
type CatalogClient interface {
	// CheckCredentials returns ErrMissingCredential when the client cannot authenticate
	CheckCredentials() error
	SearchProducts(ctx context.Context, keyword string, pageNum, pageSize int) ([]RawProduct, error)
	GetProductDetail(ctx context.Context, id string) (RawProduct, error)
}
