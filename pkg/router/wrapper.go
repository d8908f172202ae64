package router

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := router.befores
	closers := router.closers

	return func(gctx *gin.Context) {
		start := time.Now()
		ctx := mergeContext(router.ctx, gctx.Request.Context())

		status, resp := func() (int, response) {
			var err error
			for _, before := range befores {
				ctx, err = before(ctx, gctx.Request)
				if err != nil {
					return statusOf(err), newErrorResponse(err)
				}
			}

			req := new(Request)
			if err := bind(gctx, method, req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
				err = errorx.New(errorx.BadRequest, "Invalid request")
				return statusOf(err), newErrorResponse(err)
			}

			result, err := handler(ctx, req)
			if err != nil {
				return statusOf(err), newErrorResponse(err)
			}

			return http.StatusOK, newResponse(result)
		}()

		if err := writeJSON(gctx.Writer, status, resp); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}

		for _, closer := range closers {
			closer(ctx, gctx.Request, status, time.Since(start))
		}
	}
}

func bind(gctx *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return gctx.ShouldBindQuery(req)
	case http.MethodPost:
		body, err := io.ReadAll(gctx.Request.Body)
		if err != nil {
			return err
		}

		if len(body) == 0 {
			return nil
		}

		return json.Unmarshal(body, req)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

// mergeContext returns a context carrying the values of base and the
// cancellation of the request.
func mergeContext(base, request context.Context) context.Context {
	return &valueContext{Context: request, base: base}
}

type valueContext struct {
	context.Context
	base context.Context
}

func (c *valueContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.base.Value(key)
}
