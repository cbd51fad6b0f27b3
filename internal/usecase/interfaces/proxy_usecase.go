package interfaces

import (
	"context"
	"net/http"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
)

// ProxyUseCase forwards authenticated reads to configured upstream APIs
type ProxyUseCase interface {
	Forward(ctx context.Context, upstream, path, query string, header http.Header) (*repository.ExternalAPIResponse, error)
}
