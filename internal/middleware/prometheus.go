package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/pkg/router"
)

func Prometheus() router.CloserFunc {
	return func(ctx context.Context, r *http.Request, code int, elapsed time.Duration) {
		path := r.URL.Path
		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(path, fmt.Sprint(code)).Inc()
		common.PromHistograms[common.HTTPRequestDurationSeconds].
			WithLabelValues(path, fmt.Sprint(code)).Observe(elapsed.Seconds())
	}
}
