package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store is the storage handle the coordinator drives. *Repo is the real
// implementation; tests substitute a fake.
type Store interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error)
	GetOrderView(ctx context.Context, id int64) (*OrderView, error)
	UpdateStatus(ctx context.Context, id int64, s Status) (*Order, error)
	DeleteOrder(ctx context.Context, id int64) (*Order, error)
}

// Dispatcher receives post-commit notifications. Implementations must not
// block and must never fail the calling request.
type Dispatcher interface {
	OrderCreated(view *OrderView)
	OrderCancelled(o *Order)
}

// NopDispatcher is used when no broker is wired (tests, one-off tools).
type NopDispatcher struct{}

func (NopDispatcher) OrderCreated(*OrderView) {}
func (NopDispatcher) OrderCancelled(*Order)   {}

// Coordinator owns the order lifecycle: it validates input before any
// transaction is opened, delegates the atomic work to the store and hands
// successful outcomes to the dispatcher.
type Coordinator struct {
	store    Store
	dispatch Dispatcher
	log      *zap.Logger
}

func NewCoordinator(store Store, dispatch Dispatcher, log *zap.Logger) *Coordinator {
	if dispatch == nil {
		dispatch = NopDispatcher{}
	}
	return &Coordinator{store: store, dispatch: dispatch, log: log}
}

func (c *Coordinator) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	view, err := c.store.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	c.log.Info("order created",
		zap.Int64("order_id", view.ID),
		zap.Int64("customer_id", view.CustomerID),
		zap.Int64("total_amount", view.TotalAmount),
		zap.Int("items", len(view.Items)))

	// Notification is not part of the order's success criteria: hand off
	// and return.
	c.dispatch.OrderCreated(view)
	return view, nil
}

func (c *Coordinator) GetOrder(ctx context.Context, id int64) (*OrderView, error) {
	return c.store.GetOrderView(ctx, id)
}

func (c *Coordinator) UpdateStatus(ctx context.Context, id int64, s Status) (*Order, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return c.store.UpdateStatus(ctx, id, s)
}

func (c *Coordinator) DeleteOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := c.store.DeleteOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	c.log.Info("order deleted, stock restored", zap.Int64("order_id", o.ID))
	c.dispatch.OrderCancelled(o)
	return o, nil
}

func validateCreate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}
	if req.CustomerName == "" {
		return fmt.Errorf("%w: customer_name is required", ErrInvalidRequest)
	}
	if req.GodownID <= 0 {
		return fmt.Errorf("%w: godown_id is required", ErrInvalidRequest)
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: product_id is required", ErrInvalidRequest)
		}
		if it.CartonQuantity <= 0 {
			return fmt.Errorf("%w: product %d", ErrInvalidQuantity, it.ProductID)
		}
		if it.PricePerCarton < 0 {
			return fmt.Errorf("%w: negative price for product %d", ErrInvalidRequest, it.ProductID)
		}
	}
	return nil
}
