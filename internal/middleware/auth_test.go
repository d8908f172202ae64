package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/jwt"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_RequestUserID_Header(t *testing.T) {
	ctx := testutil.MockContext()
	m := RequestUserID(nil)

	r := httptest.NewRequest(http.MethodGet, "/getLedger", nil)
	r.Header.Set("X-User-ID", " user1 ")
	userCtx, err := m(ctx, r)
	require.NoError(t, err)
	require.Equal(t, "user1", xcontext.RequestUserID(userCtx))

	r = httptest.NewRequest(http.MethodGet, "/getLedger", nil)
	_, err = m(ctx, r)
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))
}

func Test_RequestUserID_Bearer(t *testing.T) {
	ctx := testutil.MockContext()
	engine := jwt.NewEngine[model.AccessToken]("secret", "progression", time.Minute)
	m := RequestUserID(jwt.NewVerifier[model.AccessToken]("secret", "progression"))

	token, err := engine.Generate("user1", model.AccessToken{Name: "User 1"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/getLedger", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	userCtx, err := m(ctx, r)
	require.NoError(t, err)
	require.Equal(t, "user1", xcontext.RequestUserID(userCtx))

	// The gateway header is not trusted when tokens are enabled.
	r = httptest.NewRequest(http.MethodGet, "/getLedger", nil)
	r.Header.Set("X-User-ID", "user1")
	_, err = m(ctx, r)
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))

	r = httptest.NewRequest(http.MethodGet, "/getLedger", nil)
	r.Header.Set("Authorization", "Bearer "+token+"x")
	_, err = m(ctx, r)
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))
}
