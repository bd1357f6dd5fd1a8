package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// Router wraps gin with typed handlers. Every request context derives from the
// root context, so handlers reach configs, logger, and DB through xcontext.
type Router struct {
	Inner gin.IRouter

	rootCtx context.Context
}

func New(rootCtx context.Context) *Router {
	return &Router{
		Inner:   gin.New(),
		rootCtx: rootCtx,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}
