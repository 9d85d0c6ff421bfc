// Package validation checks booking requests before they reach persistence.
//
// Messages are Japanese because they are rendered directly on the booking form.
package validation

import (
	"errors"
	"time"

	"motorent/internal/utils"
)

// Form field keys, shared with the booking form.
const (
	FieldBikeID        = "bikeId"
	FieldVendorID      = "vendorId"
	FieldStartDatetime = "startDatetime"
	FieldEndDatetime   = "endDatetime"
)

const (
	DefaultMinDuration = 2 * time.Hour
	DefaultMaxDuration = 720 * time.Hour
)

const (
	MsgBikeRequired    = "バイクを選択してください"
	MsgVendorRequired  = "店舗を選択してください"
	MsgStartRequired   = "開始日時を入力してください"
	MsgEndRequired     = "終了日時を入力してください"
	MsgInvalidDatetime = "日時の形式が正しくありません"
	MsgStartInPast     = "開始日時は現在時刻以降を指定してください"
	MsgEndBeforeStart  = "終了日時は開始日時より後に設定してください"
	MsgTooShort        = "レンタル時間は最低2時間からです"
	MsgTooLong         = "レンタル期間は最大30日間です"
)

var ErrInvalidDatetime = errors.New("invalid datetime")

// BookingForm is the untrusted input submitted by the booking form.
type BookingForm struct {
	BikeID        string `json:"bikeId"`
	VendorID      string `json:"vendorId"`
	StartDatetime string `json:"startDatetime"`
	EndDatetime   string `json:"endDatetime"`
	Note          string `json:"note,omitempty"`
}

// Result is the verdict plus per-field messages. At most one message is kept per field.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validator holds the tunable parts of the rule set. The zero value is usable.
type Validator struct {
	Now         func() time.Time
	Location    *time.Location
	MinDuration time.Duration
	MaxDuration time.Duration
}

var defaultValidator = Validator{}

// Validate checks form with the default rules against the wall clock.
func Validate(form BookingForm) Result {
	return defaultValidator.Validate(form)
}

// Validate runs the presence checks and, when both datetimes parse, the temporal checks.
func (v Validator) Validate(form BookingForm) Result {
	errs := map[string]string{}

	bikeID := utils.NormalizeInput(form.BikeID)
	vendorID := utils.NormalizeInput(form.VendorID)
	rawStart := utils.NormalizeInput(form.StartDatetime)
	rawEnd := utils.NormalizeInput(form.EndDatetime)

	if bikeID == "" {
		errs[FieldBikeID] = MsgBikeRequired
	}
	if vendorID == "" {
		errs[FieldVendorID] = MsgVendorRequired
	}
	if rawStart == "" {
		errs[FieldStartDatetime] = MsgStartRequired
	}
	if rawEnd == "" {
		errs[FieldEndDatetime] = MsgEndRequired
	}

	if rawStart != "" && rawEnd != "" {
		start, startErr := ParseDatetime(rawStart, v.location())
		end, endErr := ParseDatetime(rawEnd, v.location())
		if startErr != nil {
			errs[FieldStartDatetime] = MsgInvalidDatetime
		}
		if endErr != nil {
			errs[FieldEndDatetime] = MsgInvalidDatetime
		}
		if startErr == nil && endErr == nil {
			v.checkWindow(start, end, errs)
		}
	} else {
		// a lone datetime still has to be readable
		if rawStart != "" {
			if _, err := ParseDatetime(rawStart, v.location()); err != nil {
				errs[FieldStartDatetime] = MsgInvalidDatetime
			}
		}
		if rawEnd != "" {
			if _, err := ParseDatetime(rawEnd, v.location()); err != nil {
				errs[FieldEndDatetime] = MsgInvalidDatetime
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// checkWindow applies the time rules in order; later rules overwrite the same key.
func (v Validator) checkWindow(start, end time.Time, errs map[string]string) {
	if start.Before(v.now()) {
		errs[FieldStartDatetime] = MsgStartInPast
	}
	if !start.Before(end) {
		errs[FieldEndDatetime] = MsgEndBeforeStart
	}
	d := end.Sub(start)
	if d > 0 && d < v.minDuration() {
		errs[FieldEndDatetime] = MsgTooShort
	}
	if d > v.maxDuration() {
		errs[FieldEndDatetime] = MsgTooLong
	}
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v Validator) location() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	return defaultLocation
}

func (v Validator) minDuration() time.Duration {
	if v.MinDuration > 0 {
		return v.MinDuration
	}
	return DefaultMinDuration
}

func (v Validator) maxDuration() time.Duration {
	if v.MaxDuration > 0 {
		return v.MaxDuration
	}
	return DefaultMaxDuration
}
