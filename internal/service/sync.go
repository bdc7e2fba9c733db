package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

// reservationTTL bounds how long a reserved key may stay pending before
// another request may take it over.
const reservationTTL = 2 * time.Minute

// SyncService applies queued offline writes. Every operation carries an
// idempotency key; a key seen before returns the recorded result instead of
// applying the write again.
type SyncService struct {
	Receipts SyncStore
	Foods    *FoodService
	Offers   *OfferService
}

func (s *SyncService) Apply(ctx context.Context, actor Actor, req transport.SyncRequest) ([]transport.SyncResult, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	results := make([]transport.SyncResult, 0, len(req.Operations))
	for _, op := range req.Operations {
		res, err := s.applyOne(ctx, actor, op)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *SyncService) applyOne(ctx context.Context, actor Actor, op transport.SyncOperation) (transport.SyncResult, error) {
	l := logging.FromContext(ctx).With("svc", "sync", "key", op.IdempotencyKey)

	res, proceed, err := s.reserve(ctx, actor, op)
	if err != nil || !proceed {
		return res, err
	}

	data, opErr := s.dispatch(ctx, op)
	res = transport.SyncResult{IdempotencyKey: op.IdempotencyKey, Status: successStatus(op.Action)}
	if opErr != nil {
		res.Status = StatusCode(opErr)
		res.Message = Message(opErr)
		if res.Status >= http.StatusInternalServerError {
			// not recorded, so the client may retry it
			l.Error("sync_op_error", "resource", op.Resource, "action", op.Action, "error", opErr)
			s.release(ctx, op.IdempotencyKey)
			return res, nil
		}
	} else if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			s.release(ctx, op.IdempotencyKey)
			return transport.SyncResult{}, err
		}
		res.Data = b
	}

	body, err := json.Marshal(res)
	if err != nil {
		s.release(ctx, op.IdempotencyKey)
		return transport.SyncResult{}, err
	}
	if err := s.Receipts.CompleteReceipt(ctx, op.IdempotencyKey, res.Status, body); err != nil {
		return transport.SyncResult{}, err
	}
	l.Info("sync_op_applied", "resource", op.Resource, "action", op.Action, "status", res.Status)
	return res, nil
}

// reserve claims the key before the write runs so that concurrent replays of
// one operation apply it once. When proceed is false res already holds the
// answer: the recorded result, or a pending marker while another request
// applies the key.
func (s *SyncService) reserve(ctx context.Context, actor Actor, op transport.SyncOperation) (res transport.SyncResult, proceed bool, err error) {
	err = s.Receipts.ReserveReceipt(ctx, &models.SyncReceipt{
		IdempotencyKey: op.IdempotencyKey,
		UserID:         actor.ID,
		Resource:       op.Resource,
		Action:         op.Action,
	})
	if err == nil {
		return res, true, nil
	}
	if !errors.Is(err, repo.ErrDuplicate) {
		return res, false, err
	}

	rc, err := s.Receipts.GetReceipt(ctx, op.IdempotencyKey)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// released by a failed attempt in between
		return inFlight(op), false, nil
	case err != nil:
		return res, false, err
	case !rc.Pending():
		return replay(rc), false, nil
	}

	claimed, err := s.Receipts.ClaimStaleReceipt(ctx, op.IdempotencyKey, time.Now().Add(-reservationTTL))
	if err != nil {
		return res, false, err
	}
	if claimed {
		logging.FromContext(ctx).Warn("sync_reservation_reclaimed", "key", op.IdempotencyKey, "reserved_at", rc.ReservedAt)
		return res, true, nil
	}
	return inFlight(op), false, nil
}

func (s *SyncService) release(ctx context.Context, key string) {
	if err := s.Receipts.ReleaseReceipt(ctx, key); err != nil {
		logging.FromContext(ctx).Error("sync_release_error", "key", key, "error", err)
	}
}

func inFlight(op transport.SyncOperation) transport.SyncResult {
	return transport.SyncResult{
		IdempotencyKey: op.IdempotencyKey,
		Status:         http.StatusConflict,
		Pending:        true,
		Message:        "operation is already being applied",
	}
}

func replay(rc *models.SyncReceipt) transport.SyncResult {
	var res transport.SyncResult
	if err := json.Unmarshal(rc.Body, &res); err != nil {
		res = transport.SyncResult{IdempotencyKey: rc.IdempotencyKey, Status: rc.Status}
	}
	res.Replayed = true
	return res
}

func successStatus(action string) int {
	if action == transport.ActionCreate {
		return http.StatusCreated
	}
	return http.StatusOK
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return newErr(ErrValidation, "payload is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return newErr(ErrValidation, "payload is not valid JSON")
	}
	return nil
}

func (s *SyncService) dispatch(ctx context.Context, op transport.SyncOperation) (any, error) {
	switch op.Resource {
	case transport.ResourceFood:
		switch op.Action {
		case transport.ActionCreate:
			var req transport.CreateFoodRequest
			if err := decodePayload(op.Payload, &req); err != nil {
				return nil, err
			}
			return s.Foods.Create(ctx, req)
		case transport.ActionUpdate:
			var req transport.PatchFoodRequest
			if err := decodePayload(op.Payload, &req); err != nil {
				return nil, err
			}
			return s.Foods.Update(ctx, op.ID, req)
		case transport.ActionDelete:
			return nil, s.Foods.Delete(ctx, op.ID)
		}
	case transport.ResourceOffer:
		switch op.Action {
		case transport.ActionCreate:
			var req transport.CreateOfferRequest
			if err := decodePayload(op.Payload, &req); err != nil {
				return nil, err
			}
			return s.Offers.Create(ctx, req)
		case transport.ActionUpdate:
			var req transport.PatchOfferRequest
			if err := decodePayload(op.Payload, &req); err != nil {
				return nil, err
			}
			return s.Offers.Update(ctx, op.ID, req)
		case transport.ActionDelete:
			return s.Offers.Delete(ctx, op.ID)
		}
	}
	return nil, newErr(ErrValidation, "unsupported operation %s %s", op.Action, op.Resource)
}
