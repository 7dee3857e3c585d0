package dashboard

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/timeseries"

	"github.com/go-playground/validator/v10"
	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query defaults and bounds.
const (
	DefaultTop    = 5
	MaxTop        = 20
	PreviewRows   = 100
	TopTypes      = 10
	TopSpenders   = 5
	ChartTicks    = 5
	queryDateForm = dateutils.DateLayoutISO
)

// dateQuery holds the date window. A lone from selects that single day.
type dateQuery struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02,excluded_without=From"`
}

type purchaseOrderQuery struct {
	dateQuery
	Currency string `json:"currency" validate:"omitempty,max=64"`
	Top      int    `json:"top" validate:"min=1,max=20"`
}

// QueryError is a rejected filter parameter.
type QueryError struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e *QueryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", e.Message, e.Suggestion)
	}
	return e.Message
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateQuery(v *validator.Validate, q interface{}) error {
	err := v.Struct(q)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	return &QueryError{Field: errs[0].Field(), Message: formatValidationError(errs[0])}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field)
	case "excluded_without":
		return fmt.Sprintf("%s requires from", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func parseDateQuery(v *validator.Validate, values url.Values) (timeseries.DateRange, error) {
	q := dateQuery{From: values.Get("from"), To: values.Get("to")}
	if err := validateQuery(v, q); err != nil {
		return timeseries.DateRange{}, err
	}
	return q.dateRange()
}

func parsePurchaseOrderQuery(v *validator.Validate, values url.Values) (purchaseOrderQuery, timeseries.DateRange, error) {
	q := purchaseOrderQuery{
		dateQuery: dateQuery{From: values.Get("from"), To: values.Get("to")},
		Currency:  strings.TrimSpace(values.Get("currency")),
		Top:       DefaultTop,
	}
	if raw := values.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, timeseries.DateRange{}, &QueryError{Field: "top", Message: "top must be an integer"}
		}
		q.Top = n
	}
	if err := validateQuery(v, q); err != nil {
		return q, timeseries.DateRange{}, err
	}
	dr, err := q.dateRange()
	return q, dr, err
}

func (q dateQuery) dateRange() (timeseries.DateRange, error) {
	if q.From == "" {
		return timeseries.DateRange{}, nil
	}
	from, err := time.ParseInLocation(queryDateForm, q.From, time.UTC)
	if err != nil {
		return timeseries.DateRange{}, &QueryError{Field: "from", Message: err.Error()}
	}
	if q.To == "" {
		return timeseries.DateRange{Start: from, End: from}, nil
	}
	to, err := time.ParseInLocation(queryDateForm, q.To, time.UTC)
	if err != nil {
		return timeseries.DateRange{}, &QueryError{Field: "to", Message: err.Error()}
	}
	if to.Before(from) {
		return timeseries.DateRange{}, &QueryError{Field: "to", Message: "to must not be before from"}
	}
	return timeseries.DateRange{Start: from, End: to}, nil
}

// foldName lower-cases and strips accents so "dolares" matches "Dólares".
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// resolveCurrency returns the available currency matching requested. An
// empty request selects the first available one. An unknown currency is
// rejected with the closest available name as a suggestion.
func resolveCurrency(requested string, available []string) (string, error) {
	if len(available) == 0 {
		return "", nil
	}
	if requested == "" {
		return available[0], nil
	}
	folded := make(map[string]string, len(available))
	names := make([]string, 0, len(available))
	for _, c := range available {
		if c == requested {
			return c, nil
		}
		f := foldName(c)
		folded[f] = c
		names = append(names, f)
	}
	if c, ok := folded[foldName(requested)]; ok {
		return c, nil
	}

	qerr := &QueryError{
		Field:   "currency",
		Message: fmt.Sprintf("currency %q is not available for the selected dates", requested),
	}
	cm := closestmatch.New(names, []int{2, 3})
	if best := cm.Closest(foldName(requested)); best != "" {
		qerr.Suggestion = folded[best]
	}
	return "", qerr
}
