package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopperssay/backend/api/middleware"
	"github.com/shopperssay/backend/internal/purchases"
	"github.com/shopperssay/backend/pkg/enums"
	pkgerrors "github.com/shopperssay/backend/pkg/errors"
)

type stubPurchasesService struct {
	confirmInput *purchases.ConfirmPurchaseInput
	returnInput  *purchases.ReturnInput
	purchase     *purchases.PurchaseDTO
	session      *purchases.CheckoutSessionDTO
	err          error
}

func (s *stubPurchasesService) InitiatePurchase(_ context.Context, input purchases.InitiatePurchaseInput) (*purchases.CheckoutSessionDTO, error) {
	return s.session, s.err
}

func (s *stubPurchasesService) ConfirmPurchase(_ context.Context, input purchases.ConfirmPurchaseInput) (*purchases.PurchaseDTO, error) {
	s.confirmInput = &input
	return s.purchase, s.err
}

func (s *stubPurchasesService) RequestReturn(_ context.Context, input purchases.ReturnInput) (*purchases.PurchaseDTO, error) {
	s.returnInput = &input
	return s.purchase, s.err
}

func (s *stubPurchasesService) RequestCancellation(_ context.Context, input purchases.CancellationInput) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchasesService) SubmitReview(_ context.Context, input purchases.ReviewInput) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchasesService) MarkShipped(_ context.Context, purchaseID int64, arrivalDate *time.Time) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchasesService) MarkDelivered(_ context.Context, purchaseID int64) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchasesService) GetPurchase(_ context.Context, purchaseID, buyerID int64) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchasesService) ListForBuyer(_ context.Context, buyerID int64) ([]purchases.PurchaseDTO, error) {
	if s.purchase == nil {
		return nil, s.err
	}
	return []purchases.PurchaseDTO{*s.purchase}, s.err
}

func authedRequest(method, target, body string, userID int64) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestPurchaseConfirmPassesPayloadThrough(t *testing.T) {
	svc := &stubPurchasesService{purchase: &purchases.PurchaseDTO{
		ID:          7,
		OrderStatus: enums.OrderStatusProcessing,
	}}
	handler := PurchaseConfirm(svc, nil)

	body := `{"order_token":"order_abc","payment_id":"pay_123","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/confirm", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.confirmInput == nil || svc.confirmInput.OrderToken != "order_abc" || svc.confirmInput.PaymentID != "pay_123" {
		t.Fatalf("unexpected confirm input %+v", svc.confirmInput)
	}
}

func TestPurchaseConfirmRejectsIncompletePayload(t *testing.T) {
	svc := &stubPurchasesService{}
	handler := PurchaseConfirm(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/confirm", strings.NewReader(`{"order_token":"order_abc"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.confirmInput != nil {
		t.Fatal("service should not be called on invalid payload")
	}
}

func TestPurchaseConfirmMapsVerificationFailure(t *testing.T) {
	svc := &stubPurchasesService{err: pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch")}
	handler := PurchaseConfirm(svc, nil)

	body := `{"order_token":"order_abc","payment_id":"pay_123","signature":"bad"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/confirm", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 got %d", resp.Code)
	}
}

func TestPurchaseReturnCarriesCallerIdentity(t *testing.T) {
	svc := &stubPurchasesService{purchase: &purchases.PurchaseDTO{
		ID:          9,
		OrderStatus: enums.OrderStatusReturned,
	}}
	handler := PurchaseReturn(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/purchases/9/return", `{"reason":"damaged","comments":"cracked body"}`, 42)
	req = withURLParam(req, "purchaseId", "9")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.returnInput == nil {
		t.Fatal("expected return input captured")
	}
	if svc.returnInput.BuyerID != 42 || svc.returnInput.PurchaseID != 9 {
		t.Fatalf("unexpected return input %+v", svc.returnInput)
	}
	if svc.returnInput.Reason != "damaged" || svc.returnInput.Comments != "cracked body" {
		t.Fatalf("unexpected reason fields %+v", svc.returnInput)
	}
}

func TestPurchaseReturnRequiresAuth(t *testing.T) {
	handler := PurchaseReturn(&stubPurchasesService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/9/return", strings.NewReader(`{"reason":"damaged"}`))
	req = withURLParam(req, "purchaseId", "9")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPurchaseReturnMapsWindowClosed(t *testing.T) {
	svc := &stubPurchasesService{err: pkgerrors.New(pkgerrors.CodeReturnWindow, "return window closed")}
	handler := PurchaseReturn(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/purchases/9/return", `{"reason":"late"}`, 42)
	req = withURLParam(req, "purchaseId", "9")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeReturnWindow) {
		t.Fatalf("expected return window code, got %s", payload.Error.Code)
	}
}

func TestPurchaseListRequiresAuth(t *testing.T) {
	handler := PurchaseList(&stubPurchasesService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
