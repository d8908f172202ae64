package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questx-lab/progression/internal/common"
	"github.com/stretchr/testify/require"
)

func Test_NewRegistry(t *testing.T) {
	common.PromCounters[common.EventsIngestedTotal].WithLabelValues("mood_entry", "applied").Inc()

	families, err := NewRegistry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names[common.EventsIngestedTotal])
	require.True(t, names["go_goroutines"])
	require.True(t, names["go_build_info"])
}

func Test_NewHandler(t *testing.T) {
	common.PromCounters[common.XPAwardedTotal].WithLabelValues("mood_entry").Add(5)

	server := httptest.NewServer(NewHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), common.XPAwardedTotal)
}
