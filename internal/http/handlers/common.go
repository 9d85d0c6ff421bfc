package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/booking/validation"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/http/middleware"
	"motorent/internal/utils"

	"github.com/gin-gonic/gin"
)

// Stringish accepts a JSON string, number or bool and keeps it as a string.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

func (s Stringish) String() string { return string(s) }

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "リクエスト本文がありません", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "リクエストの形式が正しくありません", nil)
		return false
	}
	return true
}

func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "ログインが必要です", nil)
	}
	return actor, ok
}

func idParam(c *gin.Context) (int64, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid_id", "IDが正しくありません", nil)
	}
	return id, ok
}

// reservationFilter reads ?status=a,b&from=&to=&bikeId=&page=&pageSize= from the query.
func reservationFilter(c *gin.Context, loc *time.Location) (models.ReservationFilter, error) {
	var f models.ReservationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := status.Parse(part)
			if err != nil {
				return f, domain.ValidationError{Field: "status", Msg: "不明なステータスです", Err: err}
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if raw := c.Query("bikeId"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			return f, domain.ValidationError{Field: "bikeId", Msg: "IDが正しくありません"}
		}
		f.BikeID = id
	}
	var err error
	if f.From, err = queryTime(c, "from", loc); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to", loc); err != nil {
		return f, err
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PageSize, _ = strconv.Atoi(c.Query("pageSize"))
	return f, nil
}

func queryTime(c *gin.Context, key string, loc *time.Location) (time.Time, error) {
	raw := utils.NormalizeInput(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := validation.ParseDatetime(raw, loc)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: key, Msg: validation.MsgInvalidDatetime, Err: err}
	}
	return t.UTC(), nil
}
