package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tokenraffle/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = ginCtx.BindQuery(&req)
		case http.MethodPost:
			err = ginCtx.BindJSON(&req)
		}
		if err != nil {
			ginCtx.JSON(http.StatusBadRequest, newBadRequestResponse(err))
			return
		}

		ctx := router.rootCtx
		xcontext.Logger(ctx).Debugf("%s %s", method, ginCtx.FullPath())

		if stakeKey := ginCtx.GetHeader("X-Stake-Key"); stakeKey != "" {
			ctx = xcontext.WithRequestStakeKey(ctx, stakeKey)
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ginCtx.JSON(http.StatusOK, newErrorResponse(ctx, err))
			return
		}

		ginCtx.JSON(http.StatusOK, newResponse(resp))
	}
}
