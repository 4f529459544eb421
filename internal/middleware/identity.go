package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a userID extraction function that reads the user_id value
// the JWTAuth middleware stores in the Echo context. When no user is
// authenticated, "guest" is returned so rate-limit keys still partition.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the Echo context as a string.
// JWT numeric claims decode as float64; user ids set directly by tests
// or other middleware may be integers or strings.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return "guest"
}
