package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildBookingTestApp wires the booking submission route behind the real
// access-token verifier. Only paths that fail before storage access are
// exercised here.
func buildBookingTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	booking := app.Party("/api/booking")
	{
		booking.Post("/property/{id}", accessTokenVerifierMiddleware, CreateBooking)
		booking.Post("/property/{id}/stage", accessTokenVerifierMiddleware, StageBooking)
	}

	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signBookingTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: 1, Role: role})
	return string(token)
}

func TestCreateBookingRequiresToken(t *testing.T) {
	app := buildBookingTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/booking/property/1",
		strings.NewReader(`{"agreedToTerms":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestCreateBookingTermsGateFiresBeforeRoleCheck(t *testing.T) {
	app := buildBookingTestApp()

	// A host token would normally be rejected with 403, but the terms gate
	// must fire first.
	req := httptest.NewRequest(http.MethodPost, "/api/booking/property/1",
		strings.NewReader(`{"agreedToTerms":false}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signBookingTestToken("host"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unchecked terms, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "terms") {
		t.Errorf("error body should mention terms, got %s", resp.Body.String())
	}
}

func TestCreateBookingRejectsNonGuestRoles(t *testing.T) {
	app := buildBookingTestApp()

	for _, role := range []string{"host", "admin", "super_admin"} {
		t.Run(role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/booking/property/1",
				strings.NewReader(`{"agreedToTerms":true}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+signBookingTestToken(role))
			resp := httptest.NewRecorder()
			app.ServeHTTP(resp, req)

			if resp.Code != http.StatusForbidden {
				t.Fatalf("expected 403 for %s role, got %d", role, resp.Code)
			}
			if !strings.Contains(resp.Body.String(), "guest user") {
				t.Errorf("error body should explain the role requirement, got %s", resp.Body.String())
			}
		})
	}
}

func TestStageBookingTermsGateFiresBeforeRoleCheck(t *testing.T) {
	app := buildBookingTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/booking/property/1/stage",
		strings.NewReader(`{"agreedToTerms":false}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signBookingTestToken("host"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unchecked terms, got %d", resp.Code)
	}
}
