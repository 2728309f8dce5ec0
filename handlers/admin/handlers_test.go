package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"incubator/portal/handlers/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestRoutesRequireSuperAdmin(t *testing.T) {
	r := mux.NewRouter()
	Routes(r, nil)

	for _, role := range []string{"TENANT_ADMIN", "MENTOR", "STARTUP"} {
		req := httptest.NewRequest(http.MethodPost, "/requests/3/approve", nil)
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 1, Role: role}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
}

func TestDecideRejectsBadID(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"id": "x"})
	rec := httptest.NewRecorder()
	DecideHandler(nil, "APPROVED")(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
