package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// actorFromContext returns the caller identity forwarded by the auth gateway.
func actorFromContext(c *gin.Context) *string {
	actor := strings.TrimSpace(c.GetHeader("X-Actor"))
	if actor == "" {
		return nil
	}
	return &actor
}

// dateRangeFromQuery parses from/to query params, defaulting to today through
// today+days when absent.
func dateRangeFromQuery(c *gin.Context, defaultDays int) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, defaultDays)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid from date")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid to date")
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to date before from date")
	}
	return from, to, nil
}

func boolQuery(c *gin.Context, name string) *bool {
	switch strings.ToLower(c.Query(name)) {
	case "true":
		val := true
		return &val
	case "false":
		val := false
		return &val
	}
	return nil
}
