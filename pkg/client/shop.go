package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

// cachedGet reads path into out and caches it under key. Offline, the
// cached copy is returned instead.
func cachedGet[T any](ctx context.Context, c *Client, path, key string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	if err == nil {
		return out, save(ctx, c.store, key, out)
	}
	if IsOffline(err) {
		logging.FromContext(ctx).Warn("api_offline", "reason", "using cached copy", "key", key, "error", err)
		return load[T](ctx, c.store, key), nil
	}
	return out, err
}

func (c *Client) ListOffers(ctx context.Context) ([]Offer, error) {
	return cachedGet[[]Offer](ctx, c, "/api/special-offers", KeySpecialOffers)
}

type OfferInput struct {
	Image       string   `json:"image"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Rating      *float64 `json:"rating,omitempty"`
}

// CreateOffer queues the write when the API is unreachable and returns nil.
func (c *Client) CreateOffer(ctx context.Context, in OfferInput) (*Offer, error) {
	var o Offer
	err := c.do(ctx, http.MethodPost, "/api/special-offers", in, &o)
	if err == nil {
		return &o, nil
	}
	if !IsOffline(err) {
		return nil, err
	}
	return nil, c.enqueue(ctx, ResourceOffer, ActionCreate, "", in, "")
}

func (c *Client) DeleteOffer(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/special-offers/"+url.PathEscape(id), nil, nil)
	if err == nil || !IsOffline(err) {
		return err
	}
	return c.enqueue(ctx, ResourceOffer, ActionDelete, id, nil, "")
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	cart, err := cachedGet[Cart](ctx, c, "/api/cart", KeyCart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddToCart(ctx context.Context, foodID, varietyID string, quantity int) (*CartItem, error) {
	body := map[string]any{"foodId": foodID, "varietyId": varietyID}
	if quantity > 0 {
		body["quantity"] = quantity
	}
	var item CartItem
	if err := c.do(ctx, http.MethodPost, "/api/cart/items", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ChangeQuantity returns a nil item when the line was removed.
func (c *Client) ChangeQuantity(ctx context.Context, itemID string, delta int) (*CartItem, error) {
	var item *CartItem
	if err := c.do(ctx, http.MethodPatch, "/api/cart/items/"+url.PathEscape(itemID), map[string]int{"delta": delta}, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/items/"+url.PathEscape(itemID), nil, nil)
}

type CheckoutInput struct {
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout places the order and refreshes the cached cart and order list.
func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, "/api/cart/checkout", in, &o); err != nil {
		return nil, err
	}
	if err := save(ctx, c.store, KeyCart, Cart{Items: []CartItem{}}); err != nil {
		return nil, err
	}
	orders := load[[]Order](ctx, c.store, KeyOrders)
	if err := save(ctx, c.store, KeyOrders, append([]Order{o}, orders...)); err != nil {
		return nil, err
	}
	return &o, nil
}

// MyOrders lists the signed-in account's orders, newest first.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	return cachedGet[[]Order](ctx, c, "/api/orders/my", KeyOrders)
}
