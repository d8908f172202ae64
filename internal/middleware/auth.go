package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/jwt"
	"github.com/questx-lab/progression/pkg/router"
	"github.com/questx-lab/progression/pkg/xcontext"
)

// RequestUserID puts the id of the request user into the context. With a
// verifier, the id is the subject of the bearer token. Without it, the id is
// read from the header which the upstream gateway set.
func RequestUserID(verifier *jwt.Verifier[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		if verifier != nil {
			return fromBearer(ctx, r, verifier)
		}

		header := xcontext.Configs(ctx).ApiServer.UserIDHeader
		userID := strings.TrimSpace(r.Header.Get(header))
		if userID == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "Missing %s header", header)
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}

func fromBearer(
	ctx context.Context, r *http.Request, verifier *jwt.Verifier[model.AccessToken],
) (context.Context, error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return ctx, errorx.New(errorx.Unauthenticated, "Missing bearer token")
	}

	userID, _, err := verifier.Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
		return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	return xcontext.WithRequestUserID(ctx, userID), nil
}
