package selection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tikiti/internal/catalog"
	"tikiti/internal/shared/apperr"
	"tikiti/pkg/cache"
	"tikiti/pkg/money"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	provider, err := catalog.NewStaticProvider(catalog.BuiltinEvents())
	require.NoError(t, err)
	return NewService(catalog.NewService(provider, nil), NewStore(cache.NewMemoryService(nil), time.Minute))
}

func TestServiceFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sel, err := svc.Start(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Kenya vs Gambia", sel.EventTitle)
	assert.Len(t, sel.Lines, 4)
	assert.True(t, sel.GrandTotal.IsZero())

	_, err = svc.SetQuantity(ctx, sel.ID, "1", 2)
	require.NoError(t, err)
	sel, err = svc.Increment(ctx, sel.ID, "2")
	require.NoError(t, err)

	assert.Equal(t, money.FromMajor(1100), sel.GrandTotal)
	assert.Equal(t, "KES 1,100", sel.GrandTotalDisplay)
	assert.Equal(t, 3, sel.TotalQuantity)
	assert.Equal(t, money.FromMajor(600), sel.Lines[0].LineTotal)

	event, cart, err := svc.Cart(ctx, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", event.ID)
	assert.Len(t, cart, 2)

	// the session survives the handoff
	again, err := svc.Get(ctx, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.TotalQuantity)

	require.NoError(t, svc.Discard(ctx, sel.ID))
	_, err = svc.Get(ctx, sel.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestServiceExceedsAvailableHint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sel, err := svc.Start(ctx, "1")
	require.NoError(t, err)

	sel, err = svc.SetQuantity(ctx, sel.ID, "4", 11)
	require.NoError(t, err)
	assert.True(t, sel.Lines[3].ExceedsAvailable)
	assert.Equal(t, 11, sel.Lines[3].Quantity)
}

func TestServiceErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	sel, err := svc.Start(ctx, "2")
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, sel.ID, "9", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = svc.Cart(ctx, sel.ID)
	assert.ErrorIs(t, err, apperr.ErrEmptySelection)

	assert.ErrorIs(t, svc.Discard(ctx, "unknown"), apperr.ErrNotFound)
}

func TestServiceRejectsQuantityAboveCeiling(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sel, err := svc.Start(ctx, "2")
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, sel.ID, "4", MaxQuantity+1)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperr.CodeOutOfRange, ve.Code)

	resp, err := svc.SetQuantity(ctx, sel.ID, "4", MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, resp.TotalQuantity)

	_, err = svc.Increment(ctx, sel.ID, "4")
	_, ok = apperr.IsValidation(err)
	assert.True(t, ok, "got %v", err)

	resp, err = svc.Get(ctx, sel.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, resp.TotalQuantity)
	assert.Positive(t, int64(resp.GrandTotal))
}

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupSelectionRoutes(r.Group("/api/v1"), NewController(newTestService(t)))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSelection(t *testing.T, w *httptest.ResponseRecorder) SelectionResponse {
	t.Helper()
	var body struct {
		Data SelectionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestSelectionHandlers(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/events/1/selections", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeSelection(t, w).ID
	require.NotEmpty(t, id)

	w = do(r, http.MethodPut, "/api/v1/selections/"+id+"/categories/3", `{"quantity": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, money.FromMajor(4000), decodeSelection(t, w).GrandTotal)

	w = do(r, http.MethodPut, "/api/v1/selections/"+id+"/categories/3", `{"quantity": -1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeSelection(t, w).GrandTotal.IsZero())

	w = do(r, http.MethodPut, "/api/v1/selections/"+id+"/categories/3", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/v1/selections/"+id+"/categories/3", `{"quantity": 10001}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/v1/selections/"+id+"/categories/3", `{"quantity": 35184372088832}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/selections/"+id+"/categories/1/increment", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeSelection(t, w).TotalQuantity)

	w = do(r, http.MethodDelete, "/api/v1/selections/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/selections/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartSelectionUnknownEvent(t *testing.T) {
	w := do(setupRouter(t), http.MethodPost, "/api/v1/events/77/selections", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
