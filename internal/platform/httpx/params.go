package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format accepted in query strings.
const DateLayout = "2006-01-02"

// QueryDate parses a YYYY-MM-DD query parameter in loc, returning fallback when absent.
func QueryDate(r *http.Request, key string, loc *time.Location, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, FieldErrors{key: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// QueryInt parses an integer query parameter, returning def when absent or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
