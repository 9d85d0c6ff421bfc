package services

import (
	"context"
	"time"

	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/utils"
)

const msgUnknownBikeStatus = "不明なバイクのステータスです"

// Availability answers "can this bike be booked for this window".
type Availability struct {
	BikeID    int64  `json:"bikeId"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Price     int64  `json:"price"`
}

// BikeService serves the bike catalog and lets shops take bikes out of rotation.
type BikeService struct {
	Reservations ReservationService
}

// Catalog lists bikes. An empty status filter means bookable bikes only.
func (s BikeService) Catalog(ctx context.Context, f models.BikeFilter) ([]models.Bike, error) {
	if f.Status == "" {
		f.Status = models.BikeAvailable
	} else if f.Status == "all" {
		f.Status = ""
	} else if !models.ValidBikeStatus(f.Status) {
		return nil, domain.ValidationError{Field: "status", Msg: msgUnknownBikeStatus}
	}
	list, err := s.Reservations.bikes().List(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s BikeService) Get(ctx context.Context, id int64) (models.Bike, error) {
	b, err := s.Reservations.bikes().GetByID(ctx, id)
	if err != nil {
		return models.Bike{}, wrapInternal(err)
	}
	return b, nil
}

// Availability checks the bike status and active reservations in [start, end).
func (s BikeService) Availability(ctx context.Context, id int64, start, end time.Time) (Availability, error) {
	if start.IsZero() || end.IsZero() {
		return Availability{}, domain.ValidationError{Field: "start", Msg: "期間を指定してください"}
	}
	if !end.After(start) {
		return Availability{}, domain.ValidationError{Field: "end", Msg: "終了日時は開始日時より後にしてください"}
	}

	bike, err := s.Get(ctx, id)
	if err != nil {
		return Availability{}, err
	}
	out := Availability{BikeID: bike.ID, Price: ComputePrice(bike, start, end)}
	if bike.Status != models.BikeAvailable {
		out.Reason = msgBikeUnavailable
		return out, nil
	}

	n, err := s.Reservations.reservations().CountOverlapping(ctx, bike.ID, start, end, 0)
	if err != nil {
		return Availability{}, domain.InternalError{Err: err}
	}
	if n > 0 {
		out.Reason = msgOverlap
		return out, nil
	}
	out.Available = true
	return out, nil
}

// SetStatus is for the owning vendor or an admin. Existing reservations are left alone.
func (s BikeService) SetStatus(ctx context.Context, actor domain.Actor, id int64, st string) (models.Bike, error) {
	if !models.ValidBikeStatus(st) {
		return models.Bike{}, domain.ValidationError{Field: "status", Msg: msgUnknownBikeStatus}
	}
	bike, err := s.Get(ctx, id)
	if err != nil {
		return models.Bike{}, err
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleVendor:
		if actor.VendorID <= 0 || int64(actor.VendorID) != bike.VendorID {
			return models.Bike{}, domain.ForbiddenError{Msg: "not your bike"}
		}
	default:
		return models.Bike{}, domain.ForbiddenError{Msg: "role cannot change bikes"}
	}
	if bike.Status == st {
		return bike, nil
	}

	if err := s.Reservations.bikes().UpdateStatus(ctx, id, st); err != nil {
		return models.Bike{}, wrapInternal(err)
	}
	utils.LogEventf(s.Reservations.RequestID, "bike", "set_status",
		"bike_id=%d from=%s to=%s actor=%s", id, bike.Status, st, actor)
	bike.Status = st
	return bike, nil
}
