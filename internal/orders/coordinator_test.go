package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	createCalls int
	createReq   CreateOrderRequest
	createView  *OrderView
	createErr   error

	updateCalls int
	deleteOrder *Order
	deleteErr   error
}

func (f *fakeStore) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	f.createCalls++
	f.createReq = req
	return f.createView, f.createErr
}

func (f *fakeStore) GetOrderView(ctx context.Context, id int64) (*OrderView, error) {
	return f.createView, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id int64, s Status) (*Order, error) {
	f.updateCalls++
	return &Order{ID: id, Status: s, UpdatedAt: time.Now()}, nil
}

func (f *fakeStore) DeleteOrder(ctx context.Context, id int64) (*Order, error) {
	return f.deleteOrder, f.deleteErr
}

type fakeDispatcher struct {
	created   []*OrderView
	cancelled []*Order
}

func (f *fakeDispatcher) OrderCreated(v *OrderView) { f.created = append(f.created, v) }
func (f *fakeDispatcher) OrderCancelled(o *Order)   { f.cancelled = append(f.cancelled, o) }

func newTestCoordinator(store *fakeStore, d *fakeDispatcher) *Coordinator {
	return NewCoordinator(store, d, zap.NewNop())
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:  "Ram Prasad",
		CustomerPhone: "9800000001",
		GodownID:      1,
		Items: []CartLine{
			{ProductID: 1, CartonQuantity: 2, PricePerCarton: 4500},
		},
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	store := &fakeStore{}
	d := &fakeDispatcher{}
	c := newTestCoordinator(store, d)

	req := validRequest()
	req.Items = nil
	_, err := c.CreateOrder(context.Background(), req)

	require.ErrorIs(t, err, ErrEmptyOrder)
	assert.Zero(t, store.createCalls, "no transaction may be opened for an empty cart")
	assert.Empty(t, d.created)
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(store, &fakeDispatcher{})

	req := validRequest()
	req.Items[0].CartonQuantity = 0
	_, err := c.CreateOrder(context.Background(), req)

	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, store.createCalls)
}

func TestCreateOrderMissingFields(t *testing.T) {
	cases := map[string]func(*CreateOrderRequest){
		"no customer name": func(r *CreateOrderRequest) { r.CustomerName = "" },
		"no godown":        func(r *CreateOrderRequest) { r.GodownID = 0 },
		"no product id":    func(r *CreateOrderRequest) { r.Items[0].ProductID = 0 },
		"negative price":   func(r *CreateOrderRequest) { r.Items[0].PricePerCarton = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			c := newTestCoordinator(store, &fakeDispatcher{})
			req := validRequest()
			mutate(&req)

			_, err := c.CreateOrder(context.Background(), req)
			require.Error(t, err)
			assert.Zero(t, store.createCalls)
		})
	}
}

func TestCreateOrderDispatchesOnSuccess(t *testing.T) {
	view := &OrderView{
		Order:        Order{ID: 42, TotalAmount: 9000, Status: StatusPending},
		CustomerName: "Ram Prasad",
		Items:        []ViewItem{{ProductID: 1, Quantity: 24, CartonQuantity: 2}},
	}
	store := &fakeStore{createView: view}
	d := &fakeDispatcher{}
	c := newTestCoordinator(store, d)

	got, err := c.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, view, got)
	require.Len(t, d.created, 1)
	assert.Equal(t, int64(42), d.created[0].ID)
}

func TestCreateOrderNoDispatchOnFailure(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection reset")}
	d := &fakeDispatcher{}
	c := newTestCoordinator(store, d)

	_, err := c.CreateOrder(context.Background(), validRequest())
	require.Error(t, err)
	assert.Empty(t, d.created)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(store, &fakeDispatcher{})

	_, err := c.UpdateStatus(context.Background(), 1, Status("shipped"))
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, store.updateCalls)
}

func TestUpdateStatusAllowsAnyKnownOverwrite(t *testing.T) {
	// No transition guard: completed may go back to pending.
	c := newTestCoordinator(&fakeStore{}, &fakeDispatcher{})

	o, err := c.UpdateStatus(context.Background(), 7, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}

func TestDeleteOrderDispatchesCancellation(t *testing.T) {
	o := &Order{ID: 9, CustomerID: 3, TotalAmount: 9000}
	d := &fakeDispatcher{}
	c := newTestCoordinator(&fakeStore{deleteOrder: o}, d)

	got, err := c.DeleteOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, o, got)
	require.Len(t, d.cancelled, 1)
}

func TestDeleteOrderNotFound(t *testing.T) {
	d := &fakeDispatcher{}
	c := newTestCoordinator(&fakeStore{deleteErr: ErrOrderNotFound}, d)

	_, err := c.DeleteOrder(context.Background(), 9)
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, d.cancelled)
}

func TestRequestTotal(t *testing.T) {
	req := CreateOrderRequest{Items: []CartLine{
		{ProductID: 1, CartonQuantity: 2, PricePerCarton: 4500},
		{ProductID: 7, CartonQuantity: 5, PricePerCarton: 1500},
	}}
	assert.Equal(t, int64(9000+7500), req.Total())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}

func TestProductNotFoundErrorAs(t *testing.T) {
	var err error = &ProductNotFoundError{ProductID: 99}
	var pnf *ProductNotFoundError
	require.True(t, errors.As(err, &pnf))
	assert.Equal(t, int64(99), pnf.ProductID)
	assert.Contains(t, err.Error(), "99")
}
