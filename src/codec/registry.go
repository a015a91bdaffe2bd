package codec

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/linkedin/goavro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

// RemoteRegistry is a schema registry client over HTTP.
type RemoteRegistry struct {
	*sr.Client
	http *http.Client
}

// NewRemoteRegistry connects to the registry at url.
func NewRemoteRegistry(url string) (*RemoteRegistry, error) {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	cl, err := sr.NewClient(
		sr.URLs(url),
		sr.HTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema registry client: %w", err)
	}
	return &RemoteRegistry{Client: cl, http: httpClient}, nil
}

// Close drops idle registry connections.
func (r *RemoteRegistry) Close() error {
	r.http.CloseIdleConnections()
	return nil
}

// MemoryRegistry is an in-process schema registry. Registration is
// idempotent by schema content: registering the same schema twice returns
// the existing id and version. Ids are global and never reused.
type MemoryRegistry struct {
	mu       sync.Mutex
	nextID   int
	byID     map[int]string
	idByForm map[string]int
	subjects map[string][]int
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		nextID:   1,
		byID:     make(map[int]string),
		idByForm: make(map[string]int),
		subjects: make(map[string][]int),
	}
}

// CreateSchema implements Registry.
func (m *MemoryRegistry) CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error) {
	if err := ctx.Err(); err != nil {
		return sr.SubjectSchema{}, err
	}
	if s.Type != sr.TypeAvro {
		return sr.SubjectSchema{}, fmt.Errorf("unsupported schema type %s", s.Type)
	}

	parsed, err := goavro.NewCodec(s.Schema)
	if err != nil {
		return sr.SubjectSchema{}, fmt.Errorf("invalid schema: %w", err)
	}
	form := parsed.CanonicalSchema()

	m.mu.Lock()
	defer m.mu.Unlock()

	id, known := m.idByForm[form]
	if !known {
		id = m.nextID
		m.nextID++
		m.idByForm[form] = id
		m.byID[id] = s.Schema
	}

	versions := m.subjects[subject]
	for i, existing := range versions {
		if existing == id {
			return sr.SubjectSchema{Subject: subject, Version: i + 1, ID: id, Schema: s}, nil
		}
	}
	m.subjects[subject] = append(versions, id)

	return sr.SubjectSchema{Subject: subject, Version: len(versions) + 1, ID: id, Schema: s}, nil
}

// Versions returns how many versions are registered under subject.
func (m *MemoryRegistry) Versions(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects[subject])
}

// SchemaByID returns the schema text registered with id.
func (m *MemoryRegistry) SchemaByID(id int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	return s, ok
}
