package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/brightfold/portal/internal/payment"
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *payment.Record) error {
			rec.ID = uuid.New()
			rec.CreatedAt = time.Now()
			return nil
		})

	svc := payment.NewService(repo)
	got, err := svc.Create(context.Background(), payment.CreateParams{
		Amount:   50000,
		Currency: "INR",
		Method:   payment.MethodBankTransfer,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, payment.StatusCreated, got.Status)
}

func TestService_Create_DuplicateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateRecord(gomock.Any(), gomock.Any()).
		Return(payment.ErrDuplicateTransaction)

	svc := payment.NewService(repo)
	got, err := svc.Create(context.Background(), payment.CreateParams{
		Gateway:       "gateway",
		TransactionID: "pay_existing",
	})

	assert.ErrorIs(t, err, payment.ErrDuplicateTransaction)
	assert.Nil(t, got)
}

func TestService_UpdateStatus(t *testing.T) {
	now := time.Date(2025, 10, 3, 15, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		from    payment.Status
		to      payment.Status
		wantErr error
	}

	tests := []testCase{
		{name: "SubmittedToVerified", from: payment.StatusSubmitted, to: payment.StatusVerified},
		{name: "VerifiedToPaid", from: payment.StatusVerified, to: payment.StatusPaid},
		{name: "SubmittedToDisputed", from: payment.StatusSubmitted, to: payment.StatusDisputed},
		{name: "DisputedToVerified", from: payment.StatusDisputed, to: payment.StatusVerified},
		{name: "DisputedToFailed", from: payment.StatusDisputed, to: payment.StatusFailed},
		{
			name:    "PaidIsTerminal",
			from:    payment.StatusPaid,
			to:      payment.StatusFailed,
			wantErr: payment.ErrInvalidTransition,
		},
		{
			name:    "FailedIsTerminal",
			from:    payment.StatusFailed,
			to:      payment.StatusVerified,
			wantErr: payment.ErrInvalidTransition,
		},
		{
			name:    "SubmittedNeverStraightToPaid",
			from:    payment.StatusSubmitted,
			to:      payment.StatusPaid,
			wantErr: payment.ErrInvalidTransition,
		},
		{
			name:    "DisputedNeverStraightToPaid",
			from:    payment.StatusDisputed,
			to:      payment.StatusPaid,
			wantErr: payment.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rec := &payment.Record{
				ID:     uuid.New(),
				Status: tt.from,
			}

			repo := payment.NewMockRepository(ctrl)
			repo.EXPECT().GetRecord(gomock.Any(), rec.ID).Return(rec, nil)

			if tt.wantErr == nil {
				repo.EXPECT().UpdateRecord(gomock.Any(), rec).Return(nil)
			}

			svc := payment.NewService(repo)
			got, err := svc.UpdateStatus(context.Background(), rec.ID, tt.to, "admin@agency", "checked against bank statement", now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, "admin@agency", got.VerifiedBy)
			require.NotNil(t, got.VerifiedAt)
			assert.Equal(t, now, *got.VerifiedAt)
		})
	}
}

func TestService_Annotate_AllowedOnTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := &payment.Record{
		ID:     uuid.New(),
		Status: payment.StatusPaid,
		Notes:  "",
	}

	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().GetRecord(gomock.Any(), rec.ID).Return(rec, nil)
	repo.EXPECT().UpdateRecord(gomock.Any(), rec).Return(nil)

	svc := payment.NewService(repo)
	got, err := svc.Annotate(context.Background(), rec.ID, "UTR N123456")

	require.NoError(t, err)
	assert.Equal(t, "UTR N123456", got.Notes)
	assert.Equal(t, payment.StatusPaid, got.Status)
}

func TestService_ListByStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	status := payment.StatusSubmitted

	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().
		ListRecords(gomock.Any(), payment.ListFilter{Status: &status}).
		Return([]*payment.Record{{ID: uuid.New()}}, nil)

	svc := payment.NewService(repo)
	got, err := svc.ListByStatus(context.Background(), status)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
