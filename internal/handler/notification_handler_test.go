package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/knowvia/knowvia-server/internal/model"
)

type mockNotificationService struct {
	countsFn func(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error)
}

func (m *mockNotificationService) Counts(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error) {
	if m.countsFn != nil {
		return m.countsFn(ctx, ownerEmail)
	}
	return &model.NotificationCounts{}, nil
}

func TestNotificationHandler_GetCounts_Success(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{
		countsFn: func(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error) {
			if ownerEmail != "author@example.com" {
				t.Errorf("ownerEmail = %q", ownerEmail)
			}
			return &model.NotificationCounts{TotalLikes: 3, TotalComments: 1}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/notifications/counts", nil)
	req = withEmail(req, "author@example.com")
	w := httptest.NewRecorder()

	h.GetCounts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp countsResponse
	decodeJSONBody(t, w, &resp)
	if resp.TotalLikes != 3 || resp.TotalComments != 1 {
		t.Errorf("resp = %+v, want {3 1}", resp)
	}
}

func TestNotificationHandler_GetCounts_NoEmail(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{})

	w := httptest.NewRecorder()
	h.GetCounts(w, httptest.NewRequest(http.MethodGet, "/notifications/counts", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestNotificationHandler_GetCounts_StoreError(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{
		countsFn: func(ctx context.Context, ownerEmail string) (*model.NotificationCounts, error) {
			return nil, errors.New("boom")
		},
	})

	req := withEmail(httptest.NewRequest(http.MethodGet, "/notifications/counts", nil), "a@example.com")
	w := httptest.NewRecorder()

	h.GetCounts(w, req)

	if errResp := parseAPIErrorResponse(t, w); errResp["message"] != "Failed to fetch counts" {
		t.Errorf("message = %q", errResp["message"])
	}
}
