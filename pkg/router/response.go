package router

import (
	"context"
	"errors"

	"github.com/tokenraffle/backend/pkg/errorx"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{Code: 0, Data: data}
}

func newBadRequestResponse(err error) response {
	return response{
		Code:  int64(errorx.BadRequest),
		Error: err.Error(),
	}
}

// newErrorResponse maps typed errors to their code and message; anything else
// is logged and collapsed to the opaque Unknown response.
func newErrorResponse(ctx context.Context, err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	xcontext.Logger(ctx).Errorf("An non-errorx error occurred: %v", err)
	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}
