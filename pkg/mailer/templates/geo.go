package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// Geo is where a request came from, as far as an IP lookup can tell.
type Geo struct {
	City     string
	Region   string
	Country  string
	Timezone string
}

// String renders "City, Region, Country", skipping unknown parts.
func (g Geo) String() string {
	parts := make([]string, 0, 3)
	for _, p := range [...]string{g.City, g.Region, g.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Location loads the IANA zone, or returns nil when it is unknown.
func (g Geo) Location() *time.Location {
	tz := strings.TrimSpace(g.Timezone)
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil
	}
	return loc
}

type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Geo, error)
}

const ipAPIEndpoint = "http://ip-api.com/json/"

// IPAPIResolver asks ip-api.com. Only public unicast addresses are sent.
type IPAPIResolver struct {
	Client   *http.Client
	Endpoint string
}

type ipAPIReply struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	Timezone   string `json:"timezone"`
}

func (r IPAPIResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return Geo{}, fmt.Errorf("geo: %w", err)
	}
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return Geo{}, fmt.Errorf("geo: %s is not a public address", addr)
	}

	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = ipAPIEndpoint
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	q := url.Values{"fields": {"status,message,country,regionName,city,timezone"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+url.PathEscape(addr.String())+"?"+q.Encode(), nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("geo: ip-api returned %s", resp.Status)
	}

	var reply ipAPIReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Geo{}, err
	}
	if !strings.EqualFold(reply.Status, "success") {
		return Geo{}, fmt.Errorf("geo: %s", reply.Message)
	}
	return Geo{City: reply.City, Region: reply.RegionName, Country: reply.Country, Timezone: reply.Timezone}, nil
}
