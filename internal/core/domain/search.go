package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BonusRetired is the only discount the supplier understands.
const BonusRetired = "retired"

// Leg is one requested origin/destination/date tuple.
// From and To are hierarchical location codes (station, city, country...).
type Leg struct {
	From string `json:"from" validate:"notblank"`
	To   string `json:"to" validate:"notblank"`
	Date string `json:"date" validate:"notblank,legdate"`
}

// Passengers holds the passenger counts of a search.
type Passengers struct {
	Adults   int `json:"adults" validate:"gte=0"`
	Children int `json:"children" validate:"gte=0"`
	Total    int `json:"total" validate:"gte=1"`
}

// SearchRequest is the input of a journey search.
type SearchRequest struct {
	Journeys  []Leg      `json:"journeys" validate:"required,min=1,dive"`
	Passenger Passengers `json:"passenger"`
	Bonus     []string   `json:"bonus,omitempty" validate:"omitempty,dive,oneof=retired"`
}

// dateLayouts are the accepted formats for Leg.Date.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseLegDate parses a leg date into a calendar day (time of day dropped).
func ParseLegDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", raw)
}

// Validate checks the request before it enters the pipeline.
// The returned error wraps ErrValidation and lists every problem found.
func (r SearchRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("legdate", func(fl validator.FieldLevel) bool {
		_, err := ParseLegDate(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(passengersTotal, Passengers{})
	return v
}

// passengersTotal requires total == adults + children once the individual
// counts are themselves valid.
func passengersTotal(sl validator.StructLevel) {
	p := sl.Current().Interface().(Passengers)
	if p.Adults < 0 || p.Children < 0 || p.Total < 1 {
		return
	}
	if sum := p.Adults + p.Children; sum != p.Total {
		sl.ReportError(p.Total, "total", "Total", "paxsum", strconv.Itoa(sum))
	}
}

// fieldMessage renders one validator failure as "journeys[0].from is required".
func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: unsupported value %q", field, fmt.Sprint(fe.Value()))
	case "legdate":
		return fmt.Sprintf("%s: invalid date %q (expected YYYY-MM-DD)", field, fmt.Sprint(fe.Value()))
	case "paxsum":
		return fmt.Sprintf("%s (%v) must equal adults + children (%s)", field, fe.Value(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
