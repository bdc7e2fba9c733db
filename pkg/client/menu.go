package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"

	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

// MergeMenu concatenates remote then local, drops ids in deleted and keeps
// the first occurrence of every id, so the server copy wins.
func MergeMenu(remote, local []FoodItem, deleted []string) []FoodItem {
	gone := make(map[string]struct{}, len(deleted))
	for _, id := range deleted {
		gone[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(remote)+len(local))
	out := make([]FoodItem, 0, len(remote)+len(local))
	for _, list := range [][]FoodItem{remote, local} {
		for _, f := range list {
			if _, ok := gone[f.ID]; ok {
				continue
			}
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

func pendingOnly(items []FoodItem) []FoodItem {
	var out []FoodItem
	for _, f := range items {
		if f.Pending {
			out = append(out, f)
		}
	}
	return out
}

// ListMenu fetches the menu and merges it with items created offline. When
// the API is unreachable the last cached menu stands in for the remote list.
func (c *Client) ListMenu(ctx context.Context, category string) ([]FoodItem, error) {
	cached := load[[]FoodItem](ctx, c.store, KeyMenuItems)
	deleted := load[[]string](ctx, c.store, KeyDeletedItems)

	path := "/api/food/all"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var remote []FoodItem
	err := c.do(ctx, http.MethodGet, path, nil, &remote)
	switch {
	case err == nil:
	case IsOffline(err):
		logging.FromContext(ctx).Warn("menu_offline", "reason", "using cached menu", "error", err)
		remote = slices.DeleteFunc(slices.Clone(cached), func(f FoodItem) bool { return f.Pending })
		if category != "" {
			remote = slices.DeleteFunc(remote, func(f FoodItem) bool { return f.Category != category })
		}
	default:
		return nil, err
	}

	local := pendingOnly(cached)
	if category != "" {
		local = slices.DeleteFunc(local, func(f FoodItem) bool { return f.Category != category })
	}
	merged := MergeMenu(remote, local, deleted)

	if err == nil && category == "" {
		if serr := save(ctx, c.store, KeyMenuItems, MergeMenu(remote, pendingOnly(cached), nil)); serr != nil {
			return nil, serr
		}
	}
	return merged, nil
}

type FoodInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Ingredients []string  `json:"ingredients,omitempty"`
	Image       string    `json:"image,omitempty"`
	Varieties   []Variety `json:"varieties,omitempty"`
}

// CreateFood creates a menu item. Offline, the item is added to the cached
// menu as pending and the write is queued; the returned item carries a
// temporary id.
func (c *Client) CreateFood(ctx context.Context, in FoodInput) (*FoodItem, error) {
	var f FoodItem
	err := c.do(ctx, http.MethodPost, "/api/food", in, &f)
	if err == nil {
		return &f, nil
	}
	if !IsOffline(err) {
		return nil, err
	}

	f = FoodItem{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Ingredients: in.Ingredients,
		Image:       in.Image,
		Varieties:   in.Varieties,
		CreatedAt:   c.now().UTC(),
		Pending:     true,
	}
	if in.Rating != nil {
		f.Rating = *in.Rating
	}
	cached := load[[]FoodItem](ctx, c.store, KeyMenuItems)
	if err := save(ctx, c.store, KeyMenuItems, append(cached, f)); err != nil {
		return nil, err
	}
	if err := c.enqueue(ctx, ResourceFood, ActionCreate, "", in, f.ID); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFood sends a partial update; fields absent from patch stay as stored.
// Offline, the patch is applied to the cached item and returned with it. For
// an item created offline the patch is folded into its queued create, since
// the temporary id means nothing to the server; otherwise an update is queued.
// A nil item with a nil error means the update was queued for an item that is
// not cached.
func (c *Client) UpdateFood(ctx context.Context, id string, patch map[string]any) (*FoodItem, error) {
	var f FoodItem
	err := c.do(ctx, http.MethodPut, "/api/food/"+url.PathEscape(id), patch, &f)
	if err == nil {
		return &f, nil
	}
	if !IsOffline(err) {
		return nil, err
	}

	var item *FoodItem
	cached := load[[]FoodItem](ctx, c.store, KeyMenuItems)
	if i := slices.IndexFunc(cached, func(f FoodItem) bool { return f.ID == id }); i >= 0 {
		if err := applyPatch(&cached[i], patch); err != nil {
			return nil, err
		}
		if err := save(ctx, c.store, KeyMenuItems, cached); err != nil {
			return nil, err
		}
		cp := cached[i]
		item = &cp
		if cp.Pending {
			return item, c.foldIntoCreate(ctx, id, patch)
		}
	}
	if err := c.enqueue(ctx, ResourceFood, ActionUpdate, id, patch, ""); err != nil {
		return nil, err
	}
	return item, nil
}

// localOnlyKeys never come from a patch.
var localOnlyKeys = []string{"_id", "pending"}

func mergePatch(dst, patch map[string]any) {
	for k, v := range patch {
		if !slices.Contains(localOnlyKeys, k) {
			dst[k] = v
		}
	}
}

// applyPatch overlays patch on the JSON form of f.
func applyPatch(f *FoodItem, patch map[string]any) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	mergePatch(m, patch)
	if b, err = json.Marshal(m); err != nil {
		return err
	}
	var out FoodItem
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("apply patch: %w", err)
	}
	*f = out
	return nil
}

// DeleteFood removes an item. Offline, the id joins the deleted set so it
// disappears from merged menus until the queued delete is replayed.
func (c *Client) DeleteFood(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/food/"+url.PathEscape(id), nil, nil)
	if err == nil || !IsOffline(err) {
		return err
	}

	cached := load[[]FoodItem](ctx, c.store, KeyMenuItems)
	if i := slices.IndexFunc(cached, func(f FoodItem) bool { return f.ID == id && f.Pending }); i >= 0 {
		// never reached the server: drop it and its queued create
		if err := save(ctx, c.store, KeyMenuItems, slices.Delete(cached, i, i+1)); err != nil {
			return err
		}
		return c.dropQueued(ctx, id)
	}

	deleted := load[[]string](ctx, c.store, KeyDeletedItems)
	if !slices.Contains(deleted, id) {
		deleted = append(deleted, id)
	}
	if err := save(ctx, c.store, KeyDeletedItems, deleted); err != nil {
		return err
	}
	return c.enqueue(ctx, ResourceFood, ActionDelete, id, nil, "")
}
