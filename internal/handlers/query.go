package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// today is replaced in tests.
var today = func() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// dateQuery reads a YYYY-MM-DD query parameter, falling back to today.
func dateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return today(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("%s must be formatted YYYY-MM-DD", name)
	}
	return t, nil
}

// requiredDateQuery is dateQuery without the fallback.
func requiredDateQuery(c *gin.Context, name string) (time.Time, error) {
	if c.Query(name) == "" {
		return time.Time{}, apperrors.NewValidationError("%s is required", name)
	}
	return dateQuery(c, name)
}

// boundariesQuery parses "0,30,60,90". An absent parameter yields nil.
func boundariesQuery(c *gin.Context, name string) (domain.AgingBoundaries, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make(domain.AgingBoundaries, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, apperrors.NewValidationError("%s: %q is not a whole number of days", name, p)
		}
		out = append(out, v)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return out, nil
}
