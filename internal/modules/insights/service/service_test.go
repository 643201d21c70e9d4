package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reshetovitsme/binary-bouncer/internal/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, status int, body string) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(&config.Config{FeedURL: srv.URL}, srv.Client())
}

func TestFetchBotNames(t *testing.T) {
	s := newService(t, http.StatusOK, `{"bots":[["Alpha",120,1700000000],["beta",3,1700000001],["alpha",1,1],[42],[]],"_total":5}`)

	names, err := s.FetchBotNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestFetchBotNamesErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error": {http.StatusInternalServerError, `oops`},
		"not json":     {http.StatusOK, `<html>`},
		"no bots":      {http.StatusOK, `{"items":[]}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newService(t, tc.status, tc.body)
			_, err := s.FetchBotNames(context.Background())
			assert.Error(t, err)
		})
	}
}
