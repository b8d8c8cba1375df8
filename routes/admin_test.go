package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"homestead-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func buildAdminTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", AdminListUsers)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, AdminChangeUserRole)
		admin.Post("/bookings/expire-pending", ExpirePendingBookings)
	}

	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func TestAdminUsersRBAC(t *testing.T) {
	app := buildAdminTestApp()

	// Missing token never reaches the handler.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// Guest role -> 403
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req2.Header.Set("Authorization", "Bearer "+signBookingTestToken("user"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp2.Code)
	}
}

func TestExpirySweepRequiresAdmin(t *testing.T) {
	app := buildAdminTestApp()

	// Anonymous callers never reach the sweep.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/expire-pending", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// Guest tokens are rejected before the handler runs.
	req2 := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/expire-pending", nil)
	req2.Header.Set("Authorization", "Bearer "+signBookingTestToken("user"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp2.Code)
	}
}

func TestRoleChangeRequiresSuperAdmin(t *testing.T) {
	app := buildAdminTestApp()

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/3/role", nil)
	req.Header.Set("Authorization", "Bearer "+signBookingTestToken("admin"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin role on role change, got %d", resp.Code)
	}
}
