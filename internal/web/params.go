package web

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
)

// requestParams reads the request once and serves lookups from query string
// and JSON body, query taking precedence.
type requestParams struct {
	query func(string) string
	body  map[string]any
}

func newRequestParams(c *gin.Context) requestParams {
	p := requestParams{query: c.Query}
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &p.body)
		}
	}
	return p
}

// get returns the first non-empty value among the aliases.
func (p requestParams) get(aliases ...string) string {
	for _, name := range aliases {
		if v := p.query(name); v != "" {
			return v
		}
	}
	for _, name := range aliases {
		switch v := p.body[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// address accepts the common aliases clients use for the wallet field.
func (p requestParams) address() string {
	return p.get("address", "wallet", "addr")
}

// windowDays parses the window aliases and clamps into [min, max]; absent or
// malformed values fall back to def.
func (p requestParams) windowDays(def, min, max int) (int, error) {
	raw := p.get("windowDays", "window_days", "days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid window days %q", raw)
	}
	if days < min {
		days = min
	}
	if days > max {
		days = max
	}
	return days, nil
}
