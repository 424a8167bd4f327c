package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// ParseOptionalIDQuery reads a positive int64 query parameter, nil when absent.
func ParseOptionalIDQuery(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s", name))
	}
	return &id, nil
}

// ParseIntQuery reads an int query parameter, def when absent.
func ParseIntQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s", name))
	}
	return n, nil
}

// ParseDateQuery reads a YYYY-MM-DD query parameter, def when absent.
func ParseDateQuery(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s, expected YYYY-MM-DD", name))
	}
	return d, nil
}

// ParseOptionalDateQuery is ParseDateQuery returning nil when absent.
func ParseOptionalDateQuery(c *gin.Context, name string) (*time.Time, error) {
	if strings.TrimSpace(c.Query(name)) == "" {
		return nil, nil
	}
	d, err := ParseDateQuery(c, name, time.Time{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}
