package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scrumboard/internal/scrum"
)

func TestValidateRequestCollectsFieldErrors(t *testing.T) {
	req := RegisterRequest{
		Email:    "kein-email",
		Username: "ab",
		Password: "kurz",
	}

	errs := validateRequest(context.Background(), &req)
	if errs == nil {
		t.Fatal("erwartet Validierungsfehler, bekommen nil")
	}
	for _, field := range []string{"Email", "Username", "Password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("Fehler für Feld %s fehlt: %v", field, errs)
		}
	}
}

func TestValidateRequestAcceptsValidInput(t *testing.T) {
	req := RegisterRequest{
		Email:    "dev@example.com",
		Username: "developer",
		Password: "sicheres-passwort",
	}

	if errs := validateRequest(context.Background(), &req); errs != nil {
		t.Fatalf("unerwartete Validierungsfehler: %v", errs)
	}
}

func TestValidateRequestDateFormat(t *testing.T) {
	bad := CreateSprintRequest{StartDate: "01.09.2026", EndDate: "2026-09-14"}
	errs := validateRequest(context.Background(), &bad)
	if _, ok := errs["StartDate"]; !ok {
		t.Fatalf("erwartet Fehler für StartDate, bekommen %v", errs)
	}

	good := CreateSprintRequest{StartDate: "2026-09-01", EndDate: "2026-09-14"}
	if errs := validateRequest(context.Background(), &good); errs != nil {
		t.Fatalf("unerwartete Validierungsfehler: %v", errs)
	}
}

func TestDecodeJSONBodyRejectsInvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{nicht json"))
	rec := httptest.NewRecorder()

	var req RegisterRequest
	if decodeJSONBody(rec, r, &req) {
		t.Fatal("kaputtes JSON darf nicht akzeptiert werden")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("erwartet 400, bekommen %d", rec.Code)
	}
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	body := `{"email": "dev@example.com", "username": "x", "password": "pw"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var req RegisterRequest
	if decodeJSONBody(rec, r, &req) {
		t.Fatal("Request mit zu kurzen Feldern darf nicht akzeptiert werden")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("erwartet 400, bekommen %d", rec.Code)
	}
}

func TestHandleServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &scrum.ValidationError{Message: "velocity darf nicht negativ sein"}, http.StatusBadRequest},
		{"forbidden", scrum.ErrForbidden, http.StatusForbidden},
		{"not found", scrum.ErrNotFound, http.StatusNotFound},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(context.Background(), rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("Status = %d, erwartet %d", rec.Code, tc.want)
			}
		})
	}
}
