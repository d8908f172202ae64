package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/questx-lab/progression/pkg/router"
	"github.com/questx-lab/progression/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context, r *http.Request, code int, elapsed time.Duration) {
		switch {
		case code >= http.StatusInternalServerError:
			xcontext.Logger(ctx).Errorf("%s | %s | %d | %s", r.Method, r.URL.Path, code, elapsed)
		case code >= http.StatusBadRequest:
			xcontext.Logger(ctx).Warnf("%s | %s | %d | %s", r.Method, r.URL.Path, code, elapsed)
		default:
			xcontext.Logger(ctx).Infof("%s | %s | %d | %s", r.Method, r.URL.Path, code, elapsed)
		}
	}
}
