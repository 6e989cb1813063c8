package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"StockVision/internal/model"
)

var validate = validator.New()

// ForecastRequest is the query of GET /api/v1/forecast/{symbol}.
type ForecastRequest struct {
	Symbol string `validate:"required,max=16"`
	Days   int    `default:"30" validate:"min=1,max=365"`
	Model  string `default:"ensemble" validate:"required"`
}

// IndicatorsRequest is the query of GET /api/v1/indicators/{symbol}.
type IndicatorsRequest struct {
	Symbol string `validate:"required,max=16"`
	Rows   int    `default:"30" validate:"min=1,max=1000"`
}

// RunsRequest is the query of GET /api/v1/runs/{symbol}.
type RunsRequest struct {
	Symbol string `validate:"required,max=16"`
	Limit  int    `default:"20" validate:"min=1,max=500"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestError is returned when a request fails binding or validation.
type RequestError struct {
	Fields []FieldError
}

func (e *RequestError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// bindForecast reads path and query into a ForecastRequest.
func bindForecast(r *http.Request) (*ForecastRequest, error) {
	req := &ForecastRequest{}
	if err := defaults.Set(req); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	req.Symbol = chi.URLParam(r, "symbol")
	q := r.URL.Query()
	if err := queryInt(q.Get("days"), "days", &req.Days); err != nil {
		return nil, err
	}
	if m := q.Get("model"); m != "" {
		req.Model = m
	}
	return req, check(r.Context(), req)
}

func bindIndicators(r *http.Request) (*IndicatorsRequest, error) {
	req := &IndicatorsRequest{}
	if err := defaults.Set(req); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	req.Symbol = chi.URLParam(r, "symbol")
	if err := queryInt(r.URL.Query().Get("rows"), "rows", &req.Rows); err != nil {
		return nil, err
	}
	return req, check(r.Context(), req)
}

func bindRuns(r *http.Request) (*RunsRequest, error) {
	req := &RunsRequest{}
	if err := defaults.Set(req); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	req.Symbol = chi.URLParam(r, "symbol")
	if err := queryInt(r.URL.Query().Get("limit"), "limit", &req.Limit); err != nil {
		return nil, err
	}
	return req, check(r.Context(), req)
}

// queryInt parses raw into dst, leaving dst untouched when raw is empty.
func queryInt(raw, field string, dst *int) error {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return &RequestError{Fields: []FieldError{{Code: "ERR_INTEGER", Field: field, Message: "must be an integer"}}}
	}
	*dst = v
	return nil
}

func check(ctx context.Context, req any) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, FieldError{
			Code:    "ERR_" + strings.ToUpper(e.Tag()),
			Field:   strings.ToLower(e.Field()),
			Message: fieldMessage(e),
		})
	}
	return &RequestError{Fields: fields}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	default:
		return "failed " + e.Tag() + " validation"
	}
}

// modelKind resolves the model query value.
func (req *ForecastRequest) modelKind() (model.ModelKind, error) {
	return model.ParseModelKind(req.Model)
}
