package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const (
	ResourceFood  = "food"
	ResourceOffer = "offer"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

func (c *Client) enqueue(ctx context.Context, resource, action, id string, payload any, localID string) error {
	op := OutboxOp{
		IdempotencyKey: uuid.NewString(),
		Resource:       resource,
		Action:         action,
		ID:             id,
		LocalID:        localID,
		QueuedAt:       c.now().UTC(),
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		op.Payload = b
	}
	ops := load[[]OutboxOp](ctx, c.store, KeyOutbox)
	logging.FromContext(ctx).Info("outbox_queued", "resource", resource, "action", action, "key", op.IdempotencyKey)
	return save(ctx, c.store, KeyOutbox, append(ops, op))
}

// dropQueued removes queued operations created for a pending local item.
func (c *Client) dropQueued(ctx context.Context, localID string) error {
	ops := load[[]OutboxOp](ctx, c.store, KeyOutbox)
	ops = slices.DeleteFunc(ops, func(op OutboxOp) bool { return op.LocalID == localID })
	return save(ctx, c.store, KeyOutbox, ops)
}

// foldIntoCreate merges patch into the queued create of a pending local item.
func (c *Client) foldIntoCreate(ctx context.Context, localID string, patch map[string]any) error {
	ops := load[[]OutboxOp](ctx, c.store, KeyOutbox)
	i := slices.IndexFunc(ops, func(op OutboxOp) bool { return op.LocalID == localID && op.Action == ActionCreate })
	if i < 0 {
		return fmt.Errorf("no queued create for local item %s", localID)
	}
	body := map[string]any{}
	if len(ops[i].Payload) > 0 {
		if err := json.Unmarshal(ops[i].Payload, &body); err != nil {
			return fmt.Errorf("decode queued create: %w", err)
		}
	}
	mergePatch(body, patch)
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	ops[i].Payload = b
	logging.FromContext(ctx).Info("outbox_create_patched", "key", ops[i].IdempotencyKey)
	return save(ctx, c.store, KeyOutbox, ops)
}

// Outbox returns the queued writes in the order they were made.
func (c *Client) Outbox(ctx context.Context) []OutboxOp {
	return load[[]OutboxOp](ctx, c.store, KeyOutbox)
}

type syncOp struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Resource       string          `json:"resource"`
	Action         string          `json:"action"`
	ID             string          `json:"id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type syncResult struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Status         int             `json:"status"`
	Replayed       bool            `json:"replayed"`
	Pending        bool            `json:"pending"`
	Data           json.RawMessage `json:"data"`
	Message        string          `json:"message"`
}

type FlushResult struct {
	Applied   int
	Rejected  int
	Remaining int
}

// Flush replays the outbox against the sync endpoint. Every operation
// carries its idempotency key, so a flush interrupted after the server
// applied it is safe to repeat. Operations answered with a 5xx, or still
// being applied by another request, stay queued.
func (c *Client) Flush(ctx context.Context) (FlushResult, error) {
	l := logging.FromContext(ctx).With("component", "outbox")
	var res FlushResult

	ops := load[[]OutboxOp](ctx, c.store, KeyOutbox)
	if len(ops) == 0 {
		return res, nil
	}

	body := struct {
		Operations []syncOp `json:"operations"`
	}{Operations: make([]syncOp, 0, len(ops))}
	for _, op := range ops {
		body.Operations = append(body.Operations, syncOp{
			IdempotencyKey: op.IdempotencyKey,
			Resource:       op.Resource,
			Action:         op.Action,
			ID:             op.ID,
			Payload:        op.Payload,
		})
	}

	var results []syncResult
	if err := c.do(ctx, http.MethodPost, "/api/sync", body, &results); err != nil {
		res.Remaining = len(ops)
		return res, err
	}
	byKey := make(map[string]syncResult, len(results))
	for _, r := range results {
		byKey[r.IdempotencyKey] = r
	}

	menu := load[[]FoodItem](ctx, c.store, KeyMenuItems)
	deleted := load[[]string](ctx, c.store, KeyDeletedItems)
	var keep []OutboxOp
	for _, op := range ops {
		r, ok := byKey[op.IdempotencyKey]
		if !ok || r.Pending || r.Status >= http.StatusInternalServerError {
			keep = append(keep, op)
			continue
		}
		if r.Status >= http.StatusBadRequest {
			l.Warn("outbox_rejected", "key", op.IdempotencyKey, "status", r.Status, "reason", r.Message)
			res.Rejected++
		} else {
			res.Applied++
		}
		if op.Resource == ResourceFood && op.LocalID != "" {
			menu = slices.DeleteFunc(menu, func(f FoodItem) bool { return f.ID == op.LocalID })
		}
		if op.Resource == ResourceFood && op.Action == ActionDelete {
			deleted = slices.DeleteFunc(deleted, func(id string) bool { return id == op.ID })
		}
	}
	res.Remaining = len(keep)

	if err := save(ctx, c.store, KeyMenuItems, menu); err != nil {
		return res, err
	}
	if err := save(ctx, c.store, KeyDeletedItems, deleted); err != nil {
		return res, err
	}
	if err := save(ctx, c.store, KeyOutbox, keep); err != nil {
		return res, err
	}
	l.Info("outbox_flushed", "applied", res.Applied, "rejected", res.Rejected, "remaining", res.Remaining)
	return res, nil
}
