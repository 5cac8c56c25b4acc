package linenotify

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimit is the quota LINE Notify reports on every response.
// Counts are -1 when the header is absent or malformed.
type RateLimit struct {
	Limit          int
	Remaining      int
	ImageLimit     int
	ImageRemaining int
	Reset          time.Time // zero when unknown
}

// RateLimitFromHeader reads the X-RateLimit-* headers of a response.
func RateLimitFromHeader(h http.Header) RateLimit {
	rl := RateLimit{
		Limit:          headerInt(h, "X-RateLimit-Limit"),
		Remaining:      headerInt(h, "X-RateLimit-Remaining"),
		ImageLimit:     headerInt(h, "X-RateLimit-ImageLimit"),
		ImageRemaining: headerInt(h, "X-RateLimit-ImageRemaining"),
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			rl.Reset = time.Unix(sec, 0).UTC()
		}
	}
	return rl
}

// Known reports whether the response carried any quota information.
func (r RateLimit) Known() bool {
	return r.Limit >= 0 || r.Remaining >= 0
}

func headerInt(h http.Header, key string) int {
	v := h.Get(key)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
