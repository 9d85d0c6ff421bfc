package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/booking/validation"
	intconfig "motorent/internal/config"
	intdb "motorent/internal/db"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/repositories"
	"motorent/internal/utils"
)

const (
	msgInvalidForm     = "入力内容に誤りがあります"
	msgVendorMismatch  = "選択したバイクはこの店舗のものではありません"
	msgBikeUnavailable = "このバイクは現在予約できません"
	msgOverlap         = "指定の期間は既に予約が入っています"
	msgInvalidID       = "IDが正しくありません"
)

// ReservationService runs the booking workflow: create, move through the status
// table, and read back.
type ReservationService struct {
	DB        *sql.DB
	Driver    string
	Validator validation.Validator
	Notifier  Notifier
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

func (s ReservationService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReservationService) reservations() repositories.ReservationRepository {
	return repositories.NewReservationRepository(s.db(), s.Driver)
}

func (s ReservationService) events() repositories.StatusEventRepository {
	return repositories.NewStatusEventRepository(s.db(), s.Driver)
}

func (s ReservationService) bikes() repositories.BikeRepository {
	return repositories.NewBikeRepository(s.db(), s.Driver)
}

func (s ReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s ReservationService) validator() validation.Validator {
	v := s.Validator
	if v.Now == nil && s.Now != nil {
		v.Now = s.Now
	}
	if v.Location == nil {
		v.Location = s.Location
	}
	return v
}

// WithRequestID returns a copy that tags its log lines with id.
func (s ReservationService) WithRequestID(id string) ReservationService {
	s.RequestID = id
	return s
}

func (s ReservationService) Validate(form validation.BookingForm) validation.Result {
	return s.validator().Validate(form)
}

// Create books a bike for the acting customer. The reservation starts pending.
func (s ReservationService) Create(ctx context.Context, actor domain.Actor, form validation.BookingForm) (models.Reservation, error) {
	if actor.UserID <= 0 {
		return models.Reservation{}, domain.ForbiddenError{Msg: "login required"}
	}

	result := s.Validate(form)
	if !result.Valid {
		return models.Reservation{}, domain.ValidationError{Msg: msgInvalidForm, Fields: result.Errors}
	}

	bikeID, ok := utils.ParseID(form.BikeID)
	if !ok {
		return models.Reservation{}, fieldError(validation.FieldBikeID, msgInvalidID)
	}
	vendorID, ok := utils.ParseID(form.VendorID)
	if !ok {
		return models.Reservation{}, fieldError(validation.FieldVendorID, msgInvalidID)
	}
	loc := s.validator().Location
	start, err := validation.ParseDatetime(utils.NormalizeInput(form.StartDatetime), loc)
	if err != nil {
		return models.Reservation{}, fieldError(validation.FieldStartDatetime, validation.MsgInvalidDatetime)
	}
	end, err := validation.ParseDatetime(utils.NormalizeInput(form.EndDatetime), loc)
	if err != nil {
		return models.Reservation{}, fieldError(validation.FieldEndDatetime, validation.MsgInvalidDatetime)
	}

	bike, err := s.bikes().GetByID(ctx, bikeID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Reservation{}, fieldError(validation.FieldBikeID, validation.MsgBikeRequired)
		}
		return models.Reservation{}, domain.InternalError{Err: err}
	}
	if bike.VendorID != vendorID {
		return models.Reservation{}, fieldError(validation.FieldVendorID, msgVendorMismatch)
	}
	if bike.Status != models.BikeAvailable {
		return models.Reservation{}, domain.ConflictError{Resource: "bike", Msg: msgBikeUnavailable}
	}

	now := s.now()
	res := models.Reservation{
		CustomerID:    int64(actor.UserID),
		BikeID:        bike.ID,
		VendorID:      bike.VendorID,
		StartDatetime: start.UTC(),
		EndDatetime:   end.UTC(),
		Status:        status.Pending,
		TotalPrice:    ComputePrice(bike, start, end),
		Note:          utils.NormalizeInput(form.Note),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if err := s.bikes().WithTx(tx).LockForBooking(ctx, bike.ID); err != nil {
			return err
		}
		n, err := s.reservations().WithTx(tx).CountOverlapping(ctx, bike.ID, res.StartDatetime, res.EndDatetime, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ConflictError{Resource: "reservation", Msg: msgOverlap}
		}
		if err := s.reservations().WithTx(tx).Create(ctx, &res); err != nil {
			return err
		}
		return s.events().WithTx(tx).Insert(ctx, models.StatusEvent{
			ReservationID: res.ID,
			ToStatus:      status.Pending,
			Actor:         actor.String(),
			CreatedAt:     now,
		})
	})
	if err != nil {
		return models.Reservation{}, wrapInternal(err)
	}

	utils.LogEventf(s.RequestID, "reservation", "create", "id=%d bike=%d vendor=%d", res.ID, res.BikeID, res.VendorID)

	created, err := s.reservations().GetByID(ctx, res.ID)
	if err != nil {
		// the insert committed; fall back to what we wrote
		created = res
	}
	s.notify(ctx, created, "")
	return created, nil
}

// Get returns a reservation the actor may see.
func (s ReservationService) Get(ctx context.Context, actor domain.Actor, id int64) (models.Reservation, error) {
	res, err := s.reservations().GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, wrapInternal(err)
	}
	if err := authorizeView(actor, res); err != nil {
		return models.Reservation{}, err
	}
	return res, nil
}

// NextStatuses lists where the actor may move the reservation from its current status.
func (s ReservationService) NextStatuses(ctx context.Context, actor domain.Actor, id int64) ([]status.Status, error) {
	res, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	next := status.NextStatuses(res.Status)
	if actor.Role != domain.RoleCustomer {
		return next, nil
	}
	allowed := []status.Status{}
	for _, st := range next {
		if st == status.Cancelled {
			allowed = append(allowed, st)
		}
	}
	return allowed, nil
}

// Transition moves a reservation to target. The update is compare-and-set on the
// status read here, so a concurrent change surfaces as a conflict.
func (s ReservationService) Transition(ctx context.Context, actor domain.Actor, id int64, target string) (models.Reservation, error) {
	to, err := status.Parse(target)
	if err != nil {
		return models.Reservation{}, domain.ValidationError{Field: "status", Msg: "不明なステータスです", Err: err}
	}

	return s.transition(ctx, actor, id, "", to)
}

// TransitionFrom is Transition that only applies while the reservation is still
// in expected.
func (s ReservationService) TransitionFrom(ctx context.Context, actor domain.Actor, id int64, expected, to status.Status) (models.Reservation, error) {
	return s.transition(ctx, actor, id, expected, to)
}

func (s ReservationService) transition(ctx context.Context, actor domain.Actor, id int64, expected, to status.Status) (models.Reservation, error) {
	res, err := s.reservations().GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, wrapInternal(err)
	}
	if err := authorizeTransition(actor, res, to); err != nil {
		return models.Reservation{}, err
	}
	from := res.Status
	if expected != "" && from != expected {
		return models.Reservation{}, domain.ConflictError{Resource: "reservation", Msg: fmt.Sprintf("status is %s, not %s", from, expected)}
	}
	if !status.CanTransition(from, to) {
		return models.Reservation{}, domain.InvalidTransitionError{From: string(from), To: string(to)}
	}

	now := s.now()
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if from == status.NoShow && to == status.Confirmed {
			if err := s.bikes().WithTx(tx).LockForBooking(ctx, res.BikeID); err != nil {
				return err
			}
			n, err := s.reservations().WithTx(tx).CountOverlapping(ctx, res.BikeID, res.StartDatetime, res.EndDatetime, res.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ConflictError{Resource: "reservation", Msg: msgOverlap}
			}
		}
		if err := s.reservations().WithTx(tx).UpdateStatus(ctx, res.ID, from, to, now); err != nil {
			return err
		}
		return s.events().WithTx(tx).Insert(ctx, models.StatusEvent{
			ReservationID: res.ID,
			FromStatus:    from,
			ToStatus:      to,
			Actor:         actor.String(),
			CreatedAt:     now,
		})
	})
	if err != nil {
		return models.Reservation{}, wrapInternal(err)
	}

	utils.LogEventf(s.RequestID, "reservation", "transition", "id=%d %s->%s actor=%s", res.ID, from, to, actor)

	res.Status = to
	res.UpdatedAt = now
	s.notify(ctx, res, from)
	return res, nil
}

func (s ReservationService) History(ctx context.Context, actor domain.Actor, id int64) ([]models.StatusEvent, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := s.events().ListByReservation(ctx, id)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return events, nil
}

// List returns a page of reservations scoped to what the actor owns, plus the total.
func (s ReservationService) List(ctx context.Context, actor domain.Actor, f models.ReservationFilter) ([]models.Reservation, int, error) {
	f, err := scopeFilter(actor, f)
	if err != nil {
		return nil, 0, err
	}

	list, err := s.reservations().List(ctx, f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	total, err := s.reservations().Count(ctx, f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return list, total, nil
}

// scopeFilter narrows f to the reservations the actor owns.
func scopeFilter(actor domain.Actor, f models.ReservationFilter) (models.ReservationFilter, error) {
	switch {
	case actor.IsSystem(), actor.Role == domain.RoleAdmin:
	case actor.Role == domain.RoleVendor:
		if actor.VendorID <= 0 {
			return f, domain.ForbiddenError{Msg: "vendor account has no shop"}
		}
		f.VendorID = int64(actor.VendorID)
	case actor.Role == domain.RoleCustomer:
		f.CustomerID = int64(actor.UserID)
		f.VendorID = 0
	default:
		return f, domain.ForbiddenError{}
	}
	return f, nil
}

func (s ReservationService) notify(ctx context.Context, res models.Reservation, from status.Status) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.ReservationChanged(ctx, res, from)
}

func authorizeView(actor domain.Actor, res models.Reservation) error {
	switch {
	case actor.IsSystem(), actor.Role == domain.RoleAdmin:
		return nil
	case actor.Role == domain.RoleVendor && actor.VendorID > 0 && int64(actor.VendorID) == res.VendorID:
		return nil
	case actor.Role == domain.RoleCustomer && actor.UserID > 0 && int64(actor.UserID) == res.CustomerID:
		return nil
	}
	return domain.ForbiddenError{Msg: "この予約にはアクセスできません"}
}

func authorizeTransition(actor domain.Actor, res models.Reservation, to status.Status) error {
	if err := authorizeView(actor, res); err != nil {
		return err
	}
	if actor.Role == domain.RoleCustomer && to != status.Cancelled {
		return domain.ForbiddenError{Msg: "お客様はキャンセルのみ可能です"}
	}
	return nil
}

func fieldError(field, msg string) error {
	return domain.ValidationError{Field: field, Msg: msg, Fields: map[string]string{field: msg}}
}

// wrapInternal passes typed domain errors through and hides everything else.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsConflict(err) ||
		domain.IsForbidden(err) || domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Err: fmt.Errorf("reservation: %w", err)}
}
