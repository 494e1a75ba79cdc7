package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

func newQuotationService(t *testing.T) (*Quotations, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	svc := NewQuotations(store)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func quoteRequest() QuotationInput {
	return QuotationInput{
		CustomerID:   "cust-1",
		CustomerName: "Emma Wilson",
		VehicleRego:  " ghi012",
		CarMake:      "Mazda 3 2017",
		Service:      "Brake Service",
		Description:  "Grinding noise when stopping",
	}
}

func TestQuotations_CreateNumbersSequentially(t *testing.T) {
	svc, _ := newQuotationService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "QT-001", first.ID)
	assert.Equal(t, models.QuotePending, first.Status)
	assert.Equal(t, "GHI012", first.VehicleRego)
	assert.Nil(t, first.Amount)
	assert.NotNil(t, first.Messages)

	second, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "QT-002", second.ID)
}

func TestQuotations_CreateSkipsTakenNumbers(t *testing.T) {
	svc, store := newQuotationService(t)
	ctx := context.Background()
	require.NoError(t, store.InsertQuotation(ctx, models.Quotation{ID: "QT-002"}))

	q, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "QT-003", q.ID)
}

func TestQuotations_CreateConcurrentlyGivesUniqueNumbers(t *testing.T) {
	svc, _ := newQuotationService(t)
	ctx := context.Background()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := svc.Create(ctx, quoteRequest())
			if err == nil {
				mu.Lock()
				ids[q.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 10)
	for i := 1; i <= 10; i++ {
		assert.True(t, ids[fmt.Sprintf("QT-%03d", i)])
	}
}

func TestQuotations_CreateValidation(t *testing.T) {
	svc, _ := newQuotationService(t)
	for name, mutate := range map[string]func(*QuotationInput){
		"no rego":        func(in *QuotationInput) { in.VehicleRego = " " },
		"no service":     func(in *QuotationInput) { in.Service = "" },
		"no description": func(in *QuotationInput) { in.Description = "" },
	} {
		t.Run(name, func(t *testing.T) {
			in := quoteRequest()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestQuotations_ConversationToApproval(t *testing.T) {
	svc, store := newQuotationService(t)
	ctx := context.Background()
	q, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, q.ID)
	assert.ErrorIs(t, err, ErrConflict, "nothing to approve before a price")

	q, err = svc.Reply(ctx, q.ID, models.SenderBusiness, "Can you send a video of the noise?")
	require.NoError(t, err)
	q, err = svc.Reply(ctx, q.ID, models.SenderCustomer, "Uploaded one now")
	require.NoError(t, err)
	require.Len(t, q.Messages, 2)
	assert.Equal(t, 2, q.Messages[1].ID)
	assert.Equal(t, models.SenderCustomer, q.Messages[1].Sender)

	q, err = svc.Quote(ctx, q.ID, QuoteInput{Amount: money.MustParse("240"), EstimatedDate: "2024-02-28"})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteInProgress, q.Status)
	assert.Equal(t, "240.00", q.Amount.String())
	assert.Equal(t, "2024-02-28", q.EstimatedDate)
	assert.Equal(t, "Quoted $240.00", q.Messages[2].Message)

	q, err = svc.Approve(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteApproved, q.Status)

	_, err = svc.Reject(ctx, q.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Quote(ctx, q.ID, QuoteInput{Amount: money.MustParse("200")})
	assert.ErrorIs(t, err, ErrConflict, "decided quotes cannot be re-priced")

	stored, err := store.FindQuotationByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteApproved, stored.Status)
	assert.Len(t, stored.Messages, 3)
}

func TestQuotations_Reject(t *testing.T) {
	svc, _ := newQuotationService(t)
	ctx := context.Background()
	q, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)
	_, err = svc.Quote(ctx, q.ID, QuoteInput{Amount: money.MustParse("1250"), Message: "Timing belt and water pump"})
	require.NoError(t, err)

	q, err = svc.Reject(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteRejected, q.Status)
	assert.Equal(t, "Timing belt and water pump", q.Messages[0].Message)
}

func TestQuotations_Errors(t *testing.T) {
	svc, _ := newQuotationService(t)
	ctx := context.Background()
	q, err := svc.Create(ctx, quoteRequest())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "QT-999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Reply(ctx, q.ID, "mechanic", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Reply(ctx, q.ID, models.SenderCustomer, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Quote(ctx, q.ID, QuoteInput{Amount: money.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Quote(ctx, q.ID, QuoteInput{Amount: money.MustParse("10"), EstimatedDate: "next week"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Approve(ctx, "QT-999")
	assert.ErrorIs(t, err, ErrNotFound)
}
