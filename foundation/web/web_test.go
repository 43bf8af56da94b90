package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	shutdown := make(chan os.Signal, 1)

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(shutdown, mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, v.TraceID)

		return web.Respond(ctx, w, map[string]string{"id": web.Param(r, "id"), "q": web.Query(r, "q")}, http.StatusOK)
	}
	app.Handle(http.MethodGet, "v1", "/items/:id", h, mw("route"))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/items/42?q=+abc+", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"42","q":"abc"}`, w.Body.String())
	require.Equal(t, []string{"app", "route"}, order)

	fail := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "", "/fail", fail)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	select {
	case <-shutdown:
	default:
		t.Fatal("Should signal a shutdown")
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		From   string `json:"from" validate:"required"`
		Amount string `json:"amount" validate:"required,numeric"`
	}

	var p payload
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"from":"alice","amount":"1.50"}`))
	require.NoError(t, web.Decode(r, &p))
	require.Equal(t, "alice", p.From)

	var bad payload
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"abc"}`))
	err := web.Decode(r, &bad)
	require.True(t, web.IsFieldErrors(err))

	fields := web.GetFieldErrors(err)
	require.Len(t, fields, 2)
	require.Equal(t, "from", fields[0].Field)
	require.Equal(t, "amount", fields[1].Field)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"from":"alice","amount":"1","tip":1}`))
	err = web.Decode(r, &p)
	require.Error(t, err)
	require.False(t, web.IsFieldErrors(err))
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&offset=-1&bad=x", nil)

	n, err := web.QueryInt(r, "limit", 10)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = web.QueryInt(r, "missing", 10)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	_, err = web.QueryInt(r, "offset", 0)
	require.True(t, web.IsFieldErrors(err))

	_, err = web.QueryInt(r, "bad", 0)
	var fe web.FieldErrors
	require.True(t, errors.As(err, &fe))
}
