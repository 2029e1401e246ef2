package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/docstore/memory"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/flashcards/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flashcards/abc", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/flashcards/:id", "GET", "204")))
}

func TestStoreObserver(t *testing.T) {
	m := New()
	mem := memory.New()
	store := docstore.Instrument(mem, m)
	ctx := context.Background()

	_, err := store.Get(ctx, "folders", "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	mem.FailWith(func(op, coll, id string) error { return errors.New("down") })
	_, err = store.All(ctx, "folders")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("get", "folders", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("all", "folders", "error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveStoreOp("insert", "classes", nil, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "flashclass_docstore_operations_total"))
}
