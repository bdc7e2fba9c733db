package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/export"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type OrderService struct {
	Store       OrderStore
	Users       UserReader
	Bus         *events.Bus
	DeliveryFee float64
}

// statusChain is the forward lifecycle of an order.
var statusChain = []string{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

func terminal(status string) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// CanTransition allows one step forward along the chain, or cancellation of
// any order that is not yet delivered or cancelled.
func CanTransition(from, to string) bool {
	if terminal(from) {
		return false
	}
	if to == models.StatusCancelled {
		return true
	}
	i := slices.Index(statusChain, from)
	return i >= 0 && i+1 < len(statusChain) && statusChain[i+1] == to
}

func orderNotFound() error { return newErr(ErrNotFound, "order not found") }

func (s *OrderService) publish(ctx context.Context, typ, prev string, o *models.Order) {
	if s.Bus == nil {
		return
	}
	s.Bus.Orders.Publish(ctx, events.OrderEvent{
		Type:           typ,
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: prev,
		Order:          o,
		At:             time.Now().UTC(),
	})
}

// Checkout turns the caller's cart into a pending order and empties the cart.
func (s *OrderService) Checkout(ctx context.Context, userID string, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newErr(ErrUnauthorized, "account no longer exists")
		}
		return nil, err
	}

	o, err := s.Store.Checkout(ctx, userID, func(items []models.CartItem) (*models.Order, error) {
		totals := ComputeTotals(items, s.DeliveryFee)
		o := &models.Order{
			UserID:        u.ID,
			CustomerName:  u.FullName,
			CustomerEmail: u.EmailAddress,
			Subtotal:      totals.Subtotal,
			Tax:           totals.Tax,
			DeliveryFee:   totals.DeliveryFee,
			TotalAmount:   totals.Total,
			Status:        models.StatusPending,
			Address:       req.Address,
			Phone:         req.Phone,
			PaymentMethod: req.PaymentMethod,
		}
		for _, it := range items {
			o.Items = append(o.Items, models.OrderItem{
				FoodID:    it.FoodID,
				VarietyID: it.VarietyID,
				Name:      it.Name,
				Variety:   it.Variety,
				Price:     it.Price,
				Quantity:  it.Quantity,
				Image:     it.Image,
			})
		}
		return o, nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrEmptyCart) {
			return nil, newErr(ErrValidation, "cart is empty")
		}
		return nil, err
	}

	l.Info("order_created", "order_id", o.ID, "total", o.TotalAmount)
	s.publish(ctx, events.OrderCreated, "", o)
	return o, nil
}

// Mine lists the orders owned by the account, newest first.
func (s *OrderService) Mine(ctx context.Context, userID string) ([]models.Order, error) {
	return s.Store.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, orderNotFound()
		}
		return nil, err
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return nil, newErr(ErrForbidden, "not allowed to view another user's order")
	}
	return o, nil
}

func validStatus(status string) bool {
	return status == models.StatusCancelled || slices.Contains(statusChain, status)
}

func (s *OrderService) List(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" && !validStatus(status) {
		return nil, newErr(ErrValidation, "unknown status %s", status)
	}
	return s.Store.ListOrders(ctx, status)
}

func (s *OrderService) transition(ctx context.Context, id string, check func(o *models.Order) error, to string) (*models.Order, error) {
	var prev string
	o, err := s.Store.UpdateOrder(ctx, id, func(o *models.Order) error {
		if err := check(o); err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return newErr(ErrValidation, "cannot move order from %s to %s", o.Status, to)
		}
		prev = o.Status
		o.Status = to
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, orderNotFound()
		}
		return nil, err
	}
	logging.FromContext(ctx).Info("order_status_changed", "order_id", o.ID, "from", prev, "to", to)
	s.publish(ctx, events.OrderStatusChanged, prev, o)
	return o, nil
}

// UpdateStatus is the admin status change.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, func(*models.Order) error { return nil }, req.Status)
}

// Cancel lets the owner cancel an order that is still pending or confirmed.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	return s.transition(ctx, id, func(o *models.Order) error {
		if o.UserID != actor.ID && !actor.IsAdmin() {
			return newErr(ErrForbidden, "not allowed to cancel another user's order")
		}
		if o.Status != models.StatusPending && o.Status != models.StatusConfirmed {
			return newErr(ErrValidation, "order can no longer be cancelled")
		}
		return nil
	}, models.StatusCancelled)
}

func (s *OrderService) Export(ctx context.Context, w io.Writer, status string) error {
	orders, err := s.List(ctx, status)
	if err != nil {
		return err
	}
	return export.WriteOrders(w, orders)
}
