package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/partline/quote-engine/internal/auth"
	"github.com/partline/quote-engine/internal/domain"
	"github.com/partline/quote-engine/internal/repository"
	"github.com/partline/quote-engine/internal/service"
)

type fakeRequestService struct {
	createFn func(ctx context.Context, request *domain.PartRequest, candidateSellerIDs []string) (*domain.PartRequest, []domain.QueueEntry, error)
	getFn    func(ctx context.Context, requestID, requesterID string) (*domain.PartRequest, []domain.Quote, error)
	listFn   func(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error)
}

func (f *fakeRequestService) Create(ctx context.Context, request *domain.PartRequest, candidateSellerIDs []string) (*domain.PartRequest, []domain.QueueEntry, error) {
	return f.createFn(ctx, request, candidateSellerIDs)
}

func (f *fakeRequestService) Get(ctx context.Context, requestID, requesterID string) (*domain.PartRequest, []domain.Quote, error) {
	return f.getFn(ctx, requestID, requesterID)
}

func (f *fakeRequestService) ListByBuyer(ctx context.Context, buyerID string, params repository.RequestListParams) ([]domain.PartRequest, int64, error) {
	return f.listFn(ctx, buyerID, params)
}

type fakeAcceptanceService struct {
	acceptFn func(ctx context.Context, requestID, quoteID, requesterID string) error
	rejectFn func(ctx context.Context, requestID, quoteID, requesterID string) error
}

func (f *fakeAcceptanceService) AcceptQuote(ctx context.Context, requestID, quoteID, requesterID string) error {
	return f.acceptFn(ctx, requestID, quoteID, requesterID)
}

func (f *fakeAcceptanceService) RejectQuote(ctx context.Context, requestID, quoteID, requesterID string) error {
	return f.rejectFn(ctx, requestID, quoteID, requesterID)
}

type fakeQuoteService struct {
	submitFn  func(ctx context.Context, cmd service.SubmitQuoteCommand) (*domain.Quote, error)
	declineFn func(ctx context.Context, entryID, sellerID string) error
	inboxFn   func(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error)
}

func (f *fakeQuoteService) SubmitQuote(ctx context.Context, cmd service.SubmitQuoteCommand) (*domain.Quote, error) {
	return f.submitFn(ctx, cmd)
}

func (f *fakeQuoteService) DeclineEntry(ctx context.Context, entryID, sellerID string) error {
	return f.declineFn(ctx, entryID, sellerID)
}

func (f *fakeQuoteService) Inbox(ctx context.Context, sellerID string, params repository.InboxListParams) ([]domain.QueueEntry, int64, error) {
	return f.inboxFn(ctx, sellerID, params)
}

type fakeNotificationService struct {
	listFn     func(ctx context.Context, recipientID string, params repository.NotificationListParams) ([]domain.Notification, int64, error)
	markReadFn func(ctx context.Context, id, recipientID string) error
}

func (f *fakeNotificationService) List(ctx context.Context, recipientID string, params repository.NotificationListParams) ([]domain.Notification, int64, error) {
	return f.listFn(ctx, recipientID, params)
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return f.markReadFn(ctx, id, recipientID)
}

type fakeTierService struct {
	setFn func(ctx context.Context, sellerID string, tier domain.Tier) error
	getFn func(ctx context.Context, sellerID string) (domain.Tier, error)
}

func (f *fakeTierService) SetSellerTier(ctx context.Context, sellerID string, tier domain.Tier) error {
	return f.setFn(ctx, sellerID, tier)
}

func (f *fakeTierService) GetSellerTier(ctx context.Context, sellerID string) (domain.Tier, error) {
	return f.getFn(ctx, sellerID)
}

func newAuthedApp(t *testing.T) (*fiber.App, *auth.Authenticator) {
	t.Helper()

	authenticator, err := auth.NewAuthenticator("test-secret")
	if err != nil {
		t.Fatalf("auth.NewAuthenticator() error = %v", err)
	}

	app := fiber.New()
	app.Use(authenticator.Middleware())
	return app, authenticator
}

func bearer(t *testing.T, authenticator *auth.Authenticator, userID string, role domain.Role) string {
	t.Helper()

	token, err := authenticator.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return "Bearer " + token
}

func jsonRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
