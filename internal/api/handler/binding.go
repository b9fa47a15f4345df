package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasklane/task-api/internal/core/domain"
)

var requestValidator = newValidator()

// bindStrict decodes the JSON body into dst, rejecting unknown fields and
// trailing data, then runs struct validation.
func bindStrict(c echo.Context, dst any) error {
	body := c.Request().Body
	if body == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request body is required")
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest, "request body is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: "+err.Error())
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: trailing data after JSON object")
	}

	if err := requestValidator.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// taskIDParam parses the :id path parameter as a positive integer.
func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "task id must be a positive integer")
	}
	return id, nil
}

// taskFilterQuery builds a TaskFilter from the query string. Only title,
// description and completed are accepted, each at most once.
func taskFilterQuery(c echo.Context) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	for key, values := range c.QueryParams() {
		if len(values) != 1 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "query parameter "+strconv.Quote(key)+" must be given once")
		}
		v := values[0]

		switch key {
		case "title":
			f.Title = &v
		case "description":
			f.Description = &v
		case "completed":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return f, echo.NewHTTPError(http.StatusBadRequest, "completed must be true or false")
			}
			f.Completed = &b
		default:
			return f, echo.NewHTTPError(http.StatusBadRequest, "unknown query parameter "+strconv.Quote(key))
		}
	}
	return f, nil
}
