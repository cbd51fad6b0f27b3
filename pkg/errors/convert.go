package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type transportCodes struct {
	http int
	grpc codes.Code
}

var transport = map[string]transportCodes{
	ErrInternal:        {http.StatusInternalServerError, codes.Internal},
	ErrNotFound:        {http.StatusNotFound, codes.NotFound},
	ErrInvalidArgument: {http.StatusBadRequest, codes.InvalidArgument},
	ErrUnauthenticated: {http.StatusUnauthorized, codes.Unauthenticated},
	ErrUnauthorized:    {http.StatusForbidden, codes.PermissionDenied},
	ErrConflict:        {http.StatusConflict, codes.FailedPrecondition},
	ErrTimeout:         {http.StatusGatewayTimeout, codes.DeadlineExceeded},
	ErrUnavailable:     {http.StatusServiceUnavailable, codes.Unavailable},
	ErrNotImplemented:  {http.StatusNotImplemented, codes.Unimplemented},
}

func lookup(code string) transportCodes {
	if tc, ok := transport[code]; ok {
		return tc
	}
	return transport[ErrInternal]
}

// HTTPStatus maps an error code to its HTTP status. Unknown codes are 500.
func HTTPStatus(code string) int {
	return lookup(code).http
}

// GRPCCode maps an error code to its gRPC code. Unknown codes are Internal.
func GRPCCode(code string) codes.Code {
	return lookup(code).grpc
}

// GRPCStatus lets status.FromError and the gRPC runtime see the mapped code
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(GRPCCode(e.code), e.message)
}
