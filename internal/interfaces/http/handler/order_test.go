package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_List(t *testing.T) {
	h := newAPIHarness(t)
	mug := h.product(t, 50000, 10)
	other := shared.NewPrincipal(uuid.New(), shared.RoleCustomer)

	first := h.checkout(t, h.customer, line(mug, 1))
	h.clock.Advance(time.Minute)
	second := h.checkout(t, h.customer, line(mug, 1))
	h.pay(t, h.customer, second, "pay_2")
	h.checkout(t, other, line(mug, 1))

	t.Run("own orders newest first", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.OrderListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Orders, 2)
		assert.Equal(t, second.OrderID, resp.Orders[0].ID)
		assert.Equal(t, first.OrderID, resp.Orders[1].ID)
		assert.Equal(t, dto.ListMeta{Total: 2, Page: 1, PageSize: 20, TotalPages: 1}, resp.Meta)
	})

	t.Run("status filter and paging", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders?status=PENDING&page=1&pageSize=1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.OrderListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, first.OrderID, resp.Orders[0].ID)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("invalid query", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders?status=LOST", nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

		w = h.do(t, &h.customer, http.MethodGet, "/orders?pageSize=1000", nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	h := newAPIHarness(t)
	mug := h.product(t, 50000, 10)
	co := h.checkout(t, h.customer, line(mug, 1))
	h.pay(t, h.customer, co, "pay_1")

	t.Run("owner sees the order without the signature", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders/"+co.OrderID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := testutil.JSONBody(t, w)
		assert.Equal(t, co.OrderID, body["id"])
		assert.Equal(t, "PAID", body["status"])
		assert.NotContains(t, w.Body.String(), "signature")
	})

	t.Run("admin sees any order", func(t *testing.T) {
		w := h.do(t, &h.admin, http.MethodGet, "/orders/"+co.OrderID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other customers get not found", func(t *testing.T) {
		other := shared.NewPrincipal(uuid.New(), shared.RoleCustomer)
		w := h.do(t, &other, http.MethodGet, "/orders/"+co.OrderID, nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("bad id", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders/not-a-uuid", nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := h.do(t, &h.customer, http.MethodGet, "/orders/"+uuid.NewString(), nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	t.Run("paid order restores stock", func(t *testing.T) {
		h := newAPIHarness(t)
		mug := h.product(t, 50000, 10)
		co := h.checkout(t, h.customer, line(mug, 4))
		h.pay(t, h.customer, co, "pay_1")
		require.Equal(t, 6, *testutil.ProductStock(t, h.db, mug.ID))

		w := h.do(t, &h.customer, http.MethodPost, "/orders/"+co.OrderID+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())

		assert.Equal(t, "CANCELLED", h.order(t, h.customer, co.OrderID).Status)
		assert.Equal(t, 10, *testutil.ProductStock(t, h.db, mug.ID))

		w = h.do(t, &h.customer, http.MethodPost, "/orders/"+co.OrderID+"/cancel", nil)
		testutil.AssertErrorResponse(t, w, http.StatusConflict, "INVALID_STATE")
		assert.Equal(t, 10, *testutil.ProductStock(t, h.db, mug.ID))
	})

	t.Run("pending order leaves stock alone", func(t *testing.T) {
		h := newAPIHarness(t)
		mug := h.product(t, 50000, 10)
		co := h.checkout(t, h.customer, line(mug, 4))

		w := h.do(t, &h.customer, http.MethodPost, "/orders/"+co.OrderID+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, *testutil.ProductStock(t, h.db, mug.ID))
	})

	t.Run("window boundary", func(t *testing.T) {
		h := newAPIHarness(t)
		mug := h.product(t, 50000, 10)
		onTime := h.checkout(t, h.customer, line(mug, 1))
		late := h.checkout(t, h.customer, line(mug, 1))

		h.clock.Advance(24 * time.Hour)
		w := h.do(t, &h.customer, http.MethodPost, "/orders/"+onTime.OrderID+"/cancel", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		h.clock.Advance(time.Second)
		w = h.do(t, &h.customer, http.MethodPost, "/orders/"+late.OrderID+"/cancel", nil)
		testutil.AssertErrorResponse(t, w, http.StatusConflict, "CANCELLATION_WINDOW_EXPIRED")
	})

	t.Run("after shipment", func(t *testing.T) {
		h := newAPIHarness(t)
		mug := h.product(t, 50000, 10)
		co := h.checkout(t, h.customer, line(mug, 1))
		h.pay(t, h.customer, co, "pay_1")
		w := h.do(t, &h.admin, http.MethodPost, "/admin/shipping/create", dto.CreateShipmentRequest{OrderID: co.OrderID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = h.do(t, &h.customer, http.MethodPost, "/orders/"+co.OrderID+"/cancel", nil)
		testutil.AssertErrorResponse(t, w, http.StatusConflict, "SHIPMENT_ALREADY_CREATED")
	})

	t.Run("someone else's order", func(t *testing.T) {
		h := newAPIHarness(t)
		mug := h.product(t, 50000, 10)
		co := h.checkout(t, h.customer, line(mug, 1))
		other := shared.NewPrincipal(uuid.New(), shared.RoleCustomer)

		w := h.do(t, &other, http.MethodPost, "/orders/"+co.OrderID+"/cancel", nil)
		testutil.AssertErrorResponse(t, w, http.StatusForbidden, dto.ErrCodeForbidden)
	})
}
