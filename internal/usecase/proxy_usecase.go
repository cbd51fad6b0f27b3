package usecase

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

type ProxyUseCase struct {
	logger *zap.Logger
	client repository.ExternalAPIClient
}

func NewProxyUseCase(logger *zap.Logger, client repository.ExternalAPIClient) interfaces.ProxyUseCase {
	return &ProxyUseCase{logger: logger, client: client}
}

func (uc *ProxyUseCase) Forward(ctx context.Context, upstream, path, query string, header http.Header) (*repository.ExternalAPIResponse, error) {
	if uc.client == nil {
		return nil, pkgerrors.NewAppError(pkgerrors.ErrNotImplemented, "proxy is not configured", nil)
	}

	resp, err := uc.client.Forward(ctx, upstream, path, query, header)
	if err != nil {
		uc.logger.Warn("Upstream request failed",
			zap.String("upstream", upstream),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}
