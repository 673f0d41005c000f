package deliverable

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/project"
)

// ErrReleaseBlocked means the project is not fully paid; the wrapped
// message carries the outstanding amount.
var ErrReleaseBlocked = errors.New("deliverable release blocked")

// ObjectStore persists uploaded artifacts. The returned key is stored on
// the document and later used for download.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// Gate decides whether a project's deliverables may be released.
type Gate interface {
	CanReleaseDeliverables(ctx context.Context, projectID uuid.UUID) (*project.ReleaseDecision, error)
}

type Service struct {
	gate    Gate
	docs    *document.Service
	objects ObjectStore
}

func NewService(gate Gate, docs *document.Service, objects ObjectStore) *Service {
	return &Service{gate: gate, docs: docs, objects: objects}
}

type UploadParams struct {
	ProjectID uuid.UUID
	ClientID  uuid.UUID
	Title     string
	Filename  string
	Content   io.Reader
}

// Upload stores a deliverable artifact, but only once the project is fully
// paid. The gate runs before any bytes are persisted so a refused upload
// leaves nothing behind.
func (s *Service) Upload(ctx context.Context, params UploadParams) (*document.Document, error) {
	decision, err := s.gate.CanReleaseDeliverables(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s outstanding", ErrReleaseBlocked, decision.Remaining)
	}

	key := fmt.Sprintf("deliverables/%s/%s", params.ProjectID, params.Filename)

	storedKey, err := s.objects.Put(ctx, key, params.Content)
	if err != nil {
		return nil, fmt.Errorf("storing artifact: %w", err)
	}

	doc, err := s.docs.Create(ctx, document.CreateParams{
		ProjectID: params.ProjectID,
		ClientID:  params.ClientID,
		Type:      document.TypeDeliverable,
		Title:     params.Title,
		FileKey:   storedKey,
	})
	if err != nil {
		return nil, fmt.Errorf("recording deliverable: %w", err)
	}

	return doc, nil
}
