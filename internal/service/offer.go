package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const DefaultOfferRating = 4.5

type OfferService struct {
	Store OfferStore
	Bus   *events.Bus
}

func offerNotFound() error { return newErr(ErrNotFound, "offer not found") }

func (s *OfferService) publish(ctx context.Context, typ string, o *models.Offer) {
	if s.Bus == nil {
		return
	}
	s.Bus.Offers.Publish(ctx, events.OfferEvent{Type: typ, ID: o.ID, Offer: o, At: time.Now().UTC()})
}

// List returns active offers, or every offer when includeInactive is set.
func (s *OfferService) List(ctx context.Context, includeInactive bool) ([]models.Offer, error) {
	return s.Store.ListOffers(ctx, includeInactive)
}

// Get returns the offer whether or not it is active.
func (s *OfferService) Get(ctx context.Context, id string) (*models.Offer, error) {
	o, err := s.Store.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, offerNotFound()
		}
		return nil, err
	}
	return o, nil
}

func (s *OfferService) Create(ctx context.Context, req transport.CreateOfferRequest) (*models.Offer, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	o := &models.Offer{
		Image:       req.Image,
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Rating:      DefaultOfferRating,
		IsActive:    true,
	}
	if req.Rating != nil {
		o.Rating = *req.Rating
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if err := s.Store.CreateOffer(ctx, o); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("offer_created", "offer_id", o.ID)
	s.publish(ctx, events.OfferCreated, o)
	return o, nil
}

func (s *OfferService) Update(ctx context.Context, id string, req transport.PatchOfferRequest) (*models.Offer, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Image != nil {
		o.Image = *req.Image
	}
	if req.Title != nil {
		o.Title = *req.Title
	}
	if req.Description != nil {
		o.Description = *req.Description
	}
	if req.Price != nil {
		o.Price = *req.Price
	}
	if req.Rating != nil {
		o.Rating = *req.Rating
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	return s.save(ctx, o, events.OfferUpdated)
}

func (s *OfferService) save(ctx context.Context, o *models.Offer, typ string) (*models.Offer, error) {
	if err := s.Store.SaveOffer(ctx, o); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, offerNotFound()
		}
		return nil, err
	}
	s.publish(ctx, typ, o)
	return o, nil
}

// Delete is a soft delete: the offer is kept with isActive=false.
func (s *OfferService) Delete(ctx context.Context, id string) (*models.Offer, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.IsActive = false
	logging.FromContext(ctx).Info("offer_deactivated", "offer_id", id)
	return s.save(ctx, o, events.OfferDeleted)
}

func (s *OfferService) Restore(ctx context.Context, id string) (*models.Offer, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.IsActive = true
	return s.save(ctx, o, events.OfferRestored)
}
