package repository

import (
	"context"
	"net/http"
)

// ExternalAPIResponse is the raw upstream answer
type ExternalAPIResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ExternalAPIClient forwards requests to named third-party APIs
type ExternalAPIClient interface {
	Forward(ctx context.Context, upstream, path string, query string, header http.Header) (*ExternalAPIResponse, error)
}
