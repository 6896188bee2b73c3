// Package weaviate provides the Weaviate vector store implementation.
package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/vahan-ai/chat-gateway/internal/core/vector"
)

// Config holds Weaviate connection configuration.
type Config struct {
	// URL is the Weaviate server URL, e.g. "http://localhost:8080".
	URL string
}

// Store implements the vector.Store interface backed by Weaviate.
type Store struct {
	client *weaviate.Client
}

// NewStore creates a new Weaviate-backed vector store.
func NewStore(cfg Config) (*Store, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid weaviate URL %q: %w", cfg.URL, err)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &Store{client: client}, nil
}

// matchObject mirrors the GraphQL shape of one retrieved object.
type matchObject struct {
	Text       string `json:"text"`
	Additional struct {
		Certainty *float64 `json:"certainty"`
	} `json:"_additional"`
}

// Query returns the topK nearest neighbors of vec within class, restricted to
// objects whose tag field equals value.
func (s *Store) Query(ctx context.Context, class string, vec []float32, field, value string, topK int) ([]vector.Match, error) {
	where := filters.Where().
		WithPath([]string{field}).
		WithOperator(filters.Equal).
		WithValueString(value)

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vec)

	// Certainty is requested instead of distance: it is always in [0, 1]
	// regardless of the configured distance metric.
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithWhere(where).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}

	objects, err := parseGetResponse(resp, class)
	if err != nil {
		return nil, err
	}

	matches := make([]vector.Match, 0, len(objects))
	for _, obj := range objects {
		var certainty float64
		if obj.Additional.Certainty != nil {
			certainty = *obj.Additional.Certainty
		}
		matches = append(matches, vector.Match{
			Text:      obj.Text,
			Certainty: certainty,
		})
	}
	return matches, nil
}

// Upsert stores the given objects in class.
func (s *Store) Upsert(ctx context.Context, class string, objects []vector.Object) error {
	for _, obj := range objects {
		properties := map[string]interface{}{
			"text": obj.Text,
		}
		for k, v := range obj.Tags {
			properties[k] = v
		}

		_, err := s.client.Data().Creator().
			WithClassName(class).
			WithID(obj.ID).
			WithProperties(properties).
			WithVector(obj.Vector).
			Do(ctx)
		if err == nil {
			continue
		}

		// Creation fails when the ID already exists; replace the object so
		// repeated writes of the same content stay idempotent.
		if updateErr := s.client.Data().Updater().
			WithClassName(class).
			WithID(obj.ID).
			WithProperties(properties).
			WithVector(obj.Vector).
			Do(ctx); updateErr != nil {
			return fmt.Errorf("weaviate upsert of %s failed: %w", obj.ID, err)
		}
	}
	return nil
}

// Ping checks if the Weaviate server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate readiness check failed: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}
	return nil
}

// parseGetResponse extracts the per-class object list from a GraphQL Get
// response, surfacing embedded GraphQL errors.
func parseGetResponse(resp *models.GraphQLResponse, class string) ([]matchObject, error) {
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql error: %s", resp.Errors[0].Message)
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql response: %w", err)
	}

	var payload struct {
		Get map[string][]matchObject `json:"Get"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse graphql response: %w", err)
	}

	return payload.Get[class], nil
}
