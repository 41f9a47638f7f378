package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params carries limit/offset values parsed from a list request.
type Params struct {
	Limit  int
	Offset int
}

// FromRequest reads limit/offset query parameters, clamping them to sane
// bounds.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	limit := parseInt(q.Get("limit"), DefaultLimit)
	offset := parseInt(q.Get("offset"), 0)
	return Params{
		Limit:  NormalizeLimit(limit),
		Offset: normalizeOffset(offset),
	}
}

// NormalizeLimit clamps limit into [1, MaxLimit], substituting the default
// for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
