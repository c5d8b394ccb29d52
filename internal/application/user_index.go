package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
)

// UsersIndexMapping is the mapping the users index is created with.
const UsersIndexMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "email":      {"type": "keyword", "fields": {"text": {"type": "text"}}},
      "name":       {"type": "text"},
      "role":       {"type": "keyword"},
      "avatar":     {"type": "keyword", "index": false},
      "verified":   {"type": "boolean"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// UserIndex mirrors users into Elasticsearch for the admin search. A nil
// *UserIndex or nil client turns every call into a no-op.
type UserIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

// UserHit is one search result.
type UserHit struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
	Verified bool   `json:"verified"`
}

func (x *UserIndex) enabled() bool { return x != nil && x.ES != nil && x.Name != "" }

// Index writes u. Failures are logged, never returned: search is secondary.
func (x *UserIndex) Index(ctx context.Context, u *entity.User) {
	if !x.enabled() {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       string(u.Role),
		"avatar":     u.Avatar,
		"verified":   u.IsAccountVerified,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: x.Name, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.Logger != nil {
		x.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search performs a multi_match on email and name.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]UserHit, error) {
	if !x.enabled() {
		return []UserHit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email.text^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Name), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, &esError{status: res.Status()}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]UserHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

type esError struct{ status string }

func (e *esError) Error() string { return "elasticsearch search: " + e.status }
