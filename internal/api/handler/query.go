package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/breatheroute/aqforecast/internal/api/models"
)

// DefaultDays is the forecast horizon when the days parameter is absent.
const DefaultDays = 7

var validate = validator.New()

// queryFloat parses a required float parameter.
func queryFloat(r *http.Request, name string) (float64, *models.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &models.FieldError{Field: name, Message: "is required", Code: "required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &models.FieldError{Field: name, Message: "must be a number", Code: "type"}
	}
	return v, nil
}

// queryDays parses the optional days parameter.
func queryDays(r *http.Request) (int, *models.FieldError) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return DefaultDays, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.FieldError{Field: "days", Message: "must be an integer", Code: "type"}
	}
	return v, nil
}

// fieldErrors converts validator failures into problem field errors.
func fieldErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "query", Message: err.Error()}}
	}
	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fieldName(fe.Field()),
			Message: fieldMessage(fe),
			Code:    fe.Tag(),
		})
	}
	return out
}

func fieldName(structField string) string {
	switch structField {
	case "Lat":
		return "lat"
	case "Lon":
		return "lon"
	case "Days":
		return "days"
	}
	return structField
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
