// Package vector defines the vector store interface.
package vector

import "context"

// Class names for the two retrieval namespaces.
const (
	// ClassDocument holds knowledge-base chunks, tagged with subject_id.
	ClassDocument = "Document"
	// ClassChatMemory holds embedded chat exchanges, tagged with session_id.
	ClassChatMemory = "ChatMemory"
)

// Tag field names used to filter queries.
const (
	TagSubjectID = "subject_id"
	TagSessionID = "session_id"
)

// Match is one nearest-neighbor result. Certainty is normalized to [0, 1].
type Match struct {
	Text      string
	Certainty float64
}

// Object is one entry to store. IDs must be deterministic so re-ingesting the
// same content cannot create duplicates.
type Object struct {
	ID     string
	Vector []float32
	Text   string
	Tags   map[string]string
}

// Store is the nearest-neighbor search interface over embedded text.
type Store interface {
	// Query returns the topK nearest neighbors of vec within class, restricted
	// to objects whose tag field equals value. Results come back in the
	// store's relevance order.
	Query(ctx context.Context, class string, vec []float32, field, value string, topK int) ([]Match, error)

	// Upsert stores the given objects in class.
	Upsert(ctx context.Context, class string, objects []Object) error

	// Ping checks if the vector store is reachable.
	Ping(ctx context.Context) error
}
