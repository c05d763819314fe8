package service

import (
	"context"
	"time"

	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/provider"
	"github.com/partline/quote-engine/internal/queue"
	"github.com/partline/quote-engine/internal/repository"
)

type fakeRequestRepo struct {
	createFn             func(ctx context.Context, r *domain.PartRequest) error
	getByIDFn            func(ctx context.Context, id string) (*domain.PartRequest, error)
	listByBuyerFn        func(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error)
	markInProgressFn     func(ctx context.Context, id string) (bool, error)
	getDueForExpiryFn    func(ctx context.Context, now time.Time, limit int) ([]domain.PartRequest, error)
	markExpiredFn        func(ctx context.Context, id string) (bool, error)
	getExpiringSoonFn    func(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.PartRequest, error)
	markExpiryNotifiedFn func(ctx context.Context, id string) (bool, error)
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.PartRequest) error {
	return f.createFn(ctx, r)
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.PartRequest, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeRequestRepo) ListByBuyer(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error) {
	return f.listByBuyerFn(ctx, buyerID, params)
}

func (f *fakeRequestRepo) MarkInProgressIfOpen(ctx context.Context, id string) (bool, error) {
	return f.markInProgressFn(ctx, id)
}

func (f *fakeRequestRepo) GetDueForExpiry(ctx context.Context, now time.Time, limit int) ([]domain.PartRequest, error) {
	return f.getDueForExpiryFn(ctx, now, limit)
}

func (f *fakeRequestRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	return f.markExpiredFn(ctx, id)
}

func (f *fakeRequestRepo) GetExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]domain.PartRequest, error) {
	return f.getExpiringSoonFn(ctx, now, window, limit)
}

func (f *fakeRequestRepo) MarkExpiryNotified(ctx context.Context, id string) (bool, error) {
	return f.markExpiryNotifiedFn(ctx, id)
}

type fakeEntryRepo struct {
	createBatchFn       func(ctx context.Context, entries []*domain.QueueEntry) error
	getByIDFn           func(ctx context.Context, id string) (*domain.QueueEntry, error)
	getForSellerFn      func(ctx context.Context, requestID, sellerID string) (*domain.QueueEntry, error)
	getDueForDeliveryFn func(ctx context.Context, now time.Time, limit int) ([]domain.QueueEntry, error)
	markProcessedFn     func(ctx context.Context, id string, now time.Time) (bool, error)
	declineFn           func(ctx context.Context, id, sellerID string, now time.Time) error
	listInboxFn         func(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error)
}

func (f *fakeEntryRepo) CreateBatch(ctx context.Context, entries []*domain.QueueEntry) error {
	return f.createBatchFn(ctx, entries)
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, id string) (*domain.QueueEntry, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeEntryRepo) GetForSeller(ctx context.Context, requestID, sellerID string) (*domain.QueueEntry, error) {
	return f.getForSellerFn(ctx, requestID, sellerID)
}

func (f *fakeEntryRepo) GetDueForDelivery(ctx context.Context, now time.Time, limit int) ([]domain.QueueEntry, error) {
	return f.getDueForDeliveryFn(ctx, now, limit)
}

func (f *fakeEntryRepo) MarkProcessed(ctx context.Context, id string, now time.Time) (bool, error) {
	return f.markProcessedFn(ctx, id, now)
}

func (f *fakeEntryRepo) Decline(ctx context.Context, id, sellerID string, now time.Time) error {
	return f.declineFn(ctx, id, sellerID, now)
}

func (f *fakeEntryRepo) ListInbox(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error) {
	return f.listInboxFn(ctx, sellerID, params)
}

type fakeQuoteRepo struct {
	createFn             func(ctx context.Context, q *domain.Quote) error
	getByIDFn            func(ctx context.Context, id string) (*domain.Quote, error)
	getActiveForSellerFn func(ctx context.Context, requestID, sellerID string) (*domain.Quote, error)
	updatePendingFn      func(ctx context.Context, q *domain.Quote) error
	listByRequestFn      func(ctx context.Context, requestID string) ([]domain.Quote, error)
}

func (f *fakeQuoteRepo) Create(ctx context.Context, q *domain.Quote) error {
	return f.createFn(ctx, q)
}

func (f *fakeQuoteRepo) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeQuoteRepo) GetActiveForSeller(ctx context.Context, requestID, sellerID string) (*domain.Quote, error) {
	return f.getActiveForSellerFn(ctx, requestID, sellerID)
}

func (f *fakeQuoteRepo) UpdatePending(ctx context.Context, q *domain.Quote) error {
	return f.updatePendingFn(ctx, q)
}

func (f *fakeQuoteRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.Quote, error) {
	return f.listByRequestFn(ctx, requestID)
}

type fakeNotificationRepo struct {
	createFn          func(ctx context.Context, n *domain.Notification) error
	listByRecipientFn func(ctx context.Context, recipientID string, params repository.NotificationListParams) ([]domain.Notification, int64, error)
	markReadFn        func(ctx context.Context, id, recipientID string) error
	getUndispatchedFn func(ctx context.Context, limit int) ([]domain.Notification, error)
	markDispatchedFn  func(ctx context.Context, id string, now time.Time) error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, n)
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, params repository.NotificationListParams) ([]domain.Notification, int64, error) {
	return f.listByRecipientFn(ctx, recipientID, params)
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	return f.markReadFn(ctx, id, recipientID)
}

func (f *fakeNotificationRepo) GetUndispatched(ctx context.Context, limit int) ([]domain.Notification, error) {
	return f.getUndispatchedFn(ctx, limit)
}

func (f *fakeNotificationRepo) MarkDispatched(ctx context.Context, id string, now time.Time) error {
	return f.markDispatchedFn(ctx, id, now)
}

type fakeAcceptanceStore struct {
	acceptFn func(ctx context.Context, requestID, quoteID, requesterID string) (*repository.AcceptResult, error)
	rejectFn func(ctx context.Context, requestID, quoteID, requesterID string) (*repository.RejectResult, error)
}

func (f *fakeAcceptanceStore) Accept(ctx context.Context, requestID, quoteID, requesterID string) (*repository.AcceptResult, error) {
	return f.acceptFn(ctx, requestID, quoteID, requesterID)
}

func (f *fakeAcceptanceStore) Reject(ctx context.Context, requestID, quoteID, requesterID string) (*repository.RejectResult, error) {
	return f.rejectFn(ctx, requestID, quoteID, requesterID)
}

type fakeTierRepo struct {
	getTierFn func(ctx context.Context, sellerID string) (domain.Tier, error)
	setTierFn func(ctx context.Context, sellerID string, tier domain.Tier) error
}

func (f *fakeTierRepo) GetTier(ctx context.Context, sellerID string) (domain.Tier, error) {
	return f.getTierFn(ctx, sellerID)
}

func (f *fakeTierRepo) SetTier(ctx context.Context, sellerID string, tier domain.Tier) error {
	if f.setTierFn == nil {
		return nil
	}
	return f.setTierFn(ctx, sellerID, tier)
}

type fakeTierCache struct {
	invalidateFn func(ctx context.Context, sellerID string) error
}

func (f *fakeTierCache) Invalidate(ctx context.Context, sellerID string) error {
	return f.invalidateFn(ctx, sellerID)
}

type fakeTierResolver struct {
	delayFn func(ctx context.Context, sellerID string) (time.Duration, error)
}

func (f *fakeTierResolver) RequestDelay(ctx context.Context, sellerID string) (time.Duration, error) {
	return f.delayFn(ctx, sellerID)
}

type fakeLimiter struct {
	allowFn func(ctx context.Context, sellerID string) (bool, error)
}

func (f *fakeLimiter) Allow(ctx context.Context, sellerID string) (bool, error) {
	if f.allowFn == nil {
		return true, nil
	}
	return f.allowFn(ctx, sellerID)
}

func (f *fakeLimiter) Wait(ctx context.Context, sellerID string) error {
	for {
		allowed, err := f.Allow(ctx, sellerID)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
}

type fakeProvider struct {
	sendFn func(ctx context.Context, n domain.Notification) (*provider.SendReceipt, error)
}

func (f *fakeProvider) Send(ctx context.Context, n domain.Notification) (*provider.SendReceipt, error) {
	return f.sendFn(ctx, n)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.NotificationMessage) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.NotificationMessage) error {
	return f.publishFn(ctx, queueName, msg)
}

func (f *fakePublisher) Close() error {
	return nil
}

// newRecordingNotifier returns a notifier whose inserts are captured in the
// returned slice.
func newRecordingNotifier(created *[]domain.Notification) *Notifier {
	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			*created = append(*created, *n)
			return nil
		},
	}
	return NewNotifier(repo, nil)
}
