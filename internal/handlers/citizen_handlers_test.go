package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitizens_RequireTokenAndScope(t *testing.T) {
	citizens := &stubCitizens{list: func() ([]models.Citizen, error) {
		return []models.Citizen{{ID: 1, GivenName: "Ada", Surname: "Lovelace", Role: models.RoleCitizen}}, nil
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodGet, "/citizens", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(t, router, http.MethodGet, "/citizens", bearer(t, models.ScopeReadPolicies), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(t, router, http.MethodGet, "/citizens", bearer(t, models.ScopeReadCitizens), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[[]models.CitizenResponse](t, w)
	require.Len(t, body, 1)
	assert.Equal(t, "Lovelace", body[0].Surname)
}

func TestGetSelf_NeedsOnlyAuthentication(t *testing.T) {
	var gotAuthID string
	citizens := &stubCitizens{self: func(authID string) (models.CitizenProfile, error) {
		gotAuthID = authID
		return models.CitizenProfile{
			Citizen:             models.Citizen{ID: 7, GivenName: "Ada", Surname: "Lovelace", Role: models.RoleCitizen, AuthID: authID},
			VerificationPending: true,
		}, nil
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodGet, "/citizens/self", bearer(t), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testSubject, gotAuthID)
	body := decode[models.CitizenSelfResponse](t, w)
	assert.Equal(t, int64(7), body.ID)
	assert.True(t, body.IsVerificationPending)
}

func TestGetSelf_UnregisteredIs404(t *testing.T) {
	citizens := &stubCitizens{self: func(string) (models.CitizenProfile, error) {
		return models.CitizenProfile{}, fmt.Errorf("citizen: %w", models.ErrNotFound)
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodGet, "/citizens/self", bearer(t), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRegisterSelf(t *testing.T) {
	citizens := &stubCitizens{register: func(authID string, req models.CreateCitizenRequest) (models.Citizen, error) {
		if authID == testSubject && req.Surname == "Taken" {
			return models.Citizen{}, fmt.Errorf("citizen %s: %w", authID, models.ErrAlreadyExists)
		}
		return models.Citizen{ID: 3, GivenName: req.GivenName, Surname: req.Surname, Role: models.RoleCitizen, AuthID: authID}, nil
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodPost, "/citizens/self", bearer(t),
		models.CreateCitizenRequest{GivenName: "Grace", Surname: "Hopper"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[models.CitizenResponse](t, w)
	assert.Equal(t, int64(3), body.ID)
	assert.Equal(t, models.RoleCitizen, body.Role)

	w = serve(t, router, http.MethodPost, "/citizens/self", bearer(t),
		models.CreateCitizenRequest{GivenName: "Grace", Surname: "Taken"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(t, router, http.MethodPost, "/citizens/self", bearer(t), map[string]string{"givenName": "Grace"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "surname is required")
}

func TestDeclarePolitician_Accepted(t *testing.T) {
	var got models.DeclarePoliticianRequest
	citizens := &stubCitizens{declare: func(_ string, req models.DeclarePoliticianRequest) error {
		got = req
		return nil
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodPost, "/citizens/self/declare-politician",
		bearer(t, models.ScopeDeclarePolitician), map[string]int64{"levelOfPoliticsId": 1})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int64(1), got.LevelOfPoliticsID)
}

func TestVerifyPolitician_WithoutDeclarationIs422(t *testing.T) {
	citizens := &stubCitizens{verify: func(id int64) (models.CitizenProfile, error) {
		return models.CitizenProfile{}, fmt.Errorf("citizen %d: %w", id, models.ErrInvalidState)
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodPut, "/citizens/4/verify-politician", bearer(t, models.ScopeWriteVerifyPolitician), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetCitizen_BadAndMissingIDs(t *testing.T) {
	citizens := &stubCitizens{get: func(id int64) (models.CitizenProfile, error) {
		return models.CitizenProfile{}, fmt.Errorf("citizen %d: %w", id, models.ErrNotFound)
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})
	token := bearer(t, models.ScopeReadCitizens)

	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/citizens/abc", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/citizens/0", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/citizens/99", token, nil).Code)
}

func TestSearchCitizens_PassesNames(t *testing.T) {
	var given, surname string
	citizens := &stubCitizens{search: func(g, s string) ([]models.Citizen, error) {
		given, surname = g, s
		return nil, nil
	}}
	router := newTestRouter(Dependencies{Citizens: citizens})

	w := serve(t, router, http.MethodGet, "/citizens/search?givenName=Ad&surname=Lo", bearer(t, models.ScopeReadCitizens), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ad", given)
	assert.Equal(t, "Lo", surname)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestLikedOpinions(t *testing.T) {
	opinions := &stubOpinions{liked: func(string) ([]int64, error) { return []int64{4, 9}, nil }}
	router := newTestRouter(Dependencies{Opinions: opinions})

	w := serve(t, router, http.MethodGet, "/citizens/self/liked-opinions", bearer(t, models.ScopeReadSelf), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[4,9]", w.Body.String())
}
