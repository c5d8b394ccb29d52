package templates

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Enrich resolves the requester IP (data["IP"]) once and uses the result to
// fill Location and to rewrite ExpiresAtText in the requester's timezone.
// Lookup failures leave data as it was.
func Enrich(ctx context.Context, resolver GeoResolver, data map[string]any) {
	ip := strings.TrimSpace(stringOf(data["IP"]))
	if ip == "" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return
	}
	if stringOf(data["Location"]) == "" {
		if where := g.String(); where != "" {
			data["Location"] = where
		}
	}
	loc := g.Location()
	if loc == nil {
		return
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(loc).Format("02 January 2006, 15:04 MST")
	}
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func parseTimeAny(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, !t.IsZero()
	}
	s := stringOf(v)
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, !t.IsZero()
		}
	}
	return time.Time{}, false
}
