package deliverable_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/brightfold/portal/internal/deliverable"
	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/money"
	"github.com/brightfold/portal/internal/project"
)

type fakeGate struct {
	decision *project.ReleaseDecision
	err      error
}

func (f *fakeGate) CanReleaseDeliverables(context.Context, uuid.UUID) (*project.ReleaseDecision, error) {
	return f.decision, f.err
}

type fakeStore struct {
	keys []string
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}

	f.keys = append(f.keys, key)

	return key, nil
}

func TestService_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := document.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *document.Document) error {
			doc.ID = uuid.New()
			return nil
		})

	gate := &fakeGate{decision: &project.ReleaseDecision{Allowed: true}}
	store := &fakeStore{}
	svc := deliverable.NewService(gate, document.NewService(repo), store)

	projectID := uuid.New()

	doc, err := svc.Upload(context.Background(), deliverable.UploadParams{
		ProjectID: projectID,
		ClientID:  uuid.New(),
		Title:     "Final logo pack",
		Filename:  "logo-pack.zip",
		Content:   strings.NewReader("zipbytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, document.TypeDeliverable, doc.Type)

	require.Len(t, store.keys, 1)
	assert.Equal(t, "deliverables/"+projectID.String()+"/logo-pack.zip", store.keys[0])
	assert.Equal(t, store.keys[0], doc.FileKey)
}

func TestService_Upload_BlockedPersistsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No CreateDocument expectation: a refused upload must not touch the
	// document store either.
	repo := document.NewMockRepository(ctrl)

	gate := &fakeGate{decision: &project.ReleaseDecision{
		Allowed:   false,
		Remaining: money.New(60000, "INR"),
	}}
	store := &fakeStore{}
	svc := deliverable.NewService(gate, document.NewService(repo), store)

	_, err := svc.Upload(context.Background(), deliverable.UploadParams{
		ProjectID: uuid.New(),
		Filename:  "logo-pack.zip",
		Content:   strings.NewReader("zipbytes"),
	})

	assert.ErrorIs(t, err, deliverable.ErrReleaseBlocked)
	assert.Contains(t, err.Error(), "INR 600.00")
	assert.Empty(t, store.keys)
}

func TestService_Upload_GateErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := document.NewMockRepository(ctrl)

	gate := &fakeGate{err: project.ErrCostNotSet}
	store := &fakeStore{}
	svc := deliverable.NewService(gate, document.NewService(repo), store)

	_, err := svc.Upload(context.Background(), deliverable.UploadParams{
		ProjectID: uuid.New(),
		Filename:  "draft.pdf",
		Content:   strings.NewReader("pdf"),
	})

	assert.ErrorIs(t, err, project.ErrCostNotSet)
	assert.Empty(t, store.keys)
}
