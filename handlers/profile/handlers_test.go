package profile

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"incubator/portal/handlers/auth"

	"github.com/stretchr/testify/assert"
)

func asUser(req *http.Request, id int) *http.Request {
	return req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: id, Role: "ALUMNI"}))
}

func TestProfileHandlersRequireClaims(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"get alumni":      GetAlumniProfileHandler(nil),
		"update alumni":   UpdateAlumniProfileHandler(nil),
		"get investor":    GetInvestorProfileHandler(nil),
		"update investor": UpdateInvestorProfileHandler(nil),
	} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/api/profile/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestUpdateAlumniProfileValidation(t *testing.T) {
	cases := []struct {
		body, message string
	}{
		{`{"progress":`, "Invalid request body"},
		{`{"progress":150}`, "progress must be between 0 and 100"},
		{`{"progress":-1}`, "progress must be between 0 and 100"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		UpdateAlumniProfileHandler(nil)(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/profile/alumni/me", strings.NewReader(tc.body)), 3))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.JSONEq(t, `{"message":"`+tc.message+`"}`, rec.Body.String(), tc.body)
	}
}

func TestUpdateInvestorProfileValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"ticketSizeMin":500000,"ticketSizeMax":100000}`
	UpdateInvestorProfileHandler(nil)(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/profile/investor/me", strings.NewReader(body)), 3))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"ticketSizeMin must not exceed ticketSizeMax"}`, rec.Body.String())
}

func TestWriteProfile(t *testing.T) {
	rec := httptest.NewRecorder()
	writeProfile(rec, AlumniProfile{}, sql.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	writeProfile(rec, InvestorProfile{}, errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Database error"}`, rec.Body.String())

	firm := "North Capital"
	rec = httptest.NewRecorder()
	writeProfile(rec, InvestorProfile{UserID: 8, FullName: "Ines", Email: "ines@north.vc", FirmName: &firm}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":8,"fullName":"Ines","email":"ines@north.vc","firmName":"North Capital"}`, rec.Body.String())
}
