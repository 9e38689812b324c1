package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/signup/internal/catalog"
	"example.com/signup/internal/directory"
	"example.com/signup/internal/domain"
)

// newTestServer builds a fresh directory per test so roster changes never leak.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	activities, err := catalog.Default()
	require.NoError(t, err)
	dir, err := directory.NewMemory(activities)
	require.NoError(t, err)

	handler := NewHandler(domain.NewService(dir), zaptest.NewLogger(t))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, activity, action, email string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/activities/" + url.PathEscape(activity) + "/" + action + "?email=" + url.QueryEscape(email)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func listActivities(t *testing.T, h http.Handler) map[string]ActivityView {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/activities", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]ActivityView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Message
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestGetActivities(t *testing.T) {
	h := newTestServer(t)

	data := listActivities(t, h)
	require.Len(t, data, 9)
	require.Contains(t, data, "Basketball Team")
	require.Equal(t, []string{"alex@mergington.edu"}, data["Basketball Team"].Participants)
	require.Equal(t, 15, data["Basketball Team"].MaxParticipants)
}

func TestGetActivitiesKeepsCatalogOrder(t *testing.T) {
	h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/activities", nil))

	body := rr.Body.String()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Less(t, strings.Index(body, `"Basketball Team"`), strings.Index(body, `"Tennis Club"`))
	require.Less(t, strings.Index(body, `"Chess Club"`), strings.Index(body, `"Gym Class"`))
	require.Contains(t, body, `"max_participants":12`)
}

func TestSignupForActivity(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "Chess Club", "signup", "test.user@example.com")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "Signed up test.user@example.com for Chess Club", decodeMessage(t, rr))

	participants := listActivities(t, h)["Chess Club"].Participants
	require.Len(t, participants, 3)
	require.Equal(t, "test.user@example.com", participants[2])
}

func TestSignupAlreadyRegistered(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "Chess Club", "signup", "michael@mergington.edu")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "already_registered", decodeError(t, rr)["type"])
	require.Len(t, listActivities(t, h)["Chess Club"].Participants, 2)
}

func TestSignupUnknownActivity(t *testing.T) {
	h := newTestServer(t)
	before := listActivities(t, h)

	rr := do(t, h, http.MethodPost, "Nonexistent", "signup", "someone@example.com")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Activity not found", decodeError(t, rr)["detail"])
	require.Equal(t, before, listActivities(t, h))
}

func TestSignupMissingEmail(t *testing.T) {
	h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "validation_failed", decodeError(t, rr)["type"])
}

func TestSignupBlankEmail(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "Chess Club", "signup", "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "email must not be blank", decodeError(t, rr)["detail"])
	require.Len(t, listActivities(t, h)["Chess Club"].Participants, 2)
}

func TestBlankEmailOnUnknownActivityIsNotFound(t *testing.T) {
	h := newTestServer(t)

	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodPost, "Nonexistent", "signup", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Activity not found", decodeError(t, rr)["detail"])
	}
	rr := do(t, h, http.MethodDelete, "Nope", "unregister", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnregisterMissingEmail(t *testing.T) {
	h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/activities/Nope/unregister", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUnregisterParticipant(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodDelete, "Chess Club", "unregister", "michael@mergington.edu")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "Unregistered michael@mergington.edu from Chess Club", decodeMessage(t, rr))
	require.Equal(t, []string{"daniel@mergington.edu"}, listActivities(t, h)["Chess Club"].Participants)
}

func TestUnregisterNonexistentParticipant(t *testing.T) {
	h := newTestServer(t)

	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodDelete, "Chess Club", "unregister", "nobody@example.com")
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Student is not signed up for this activity", decodeError(t, rr)["detail"])
	}
	require.Len(t, listActivities(t, h)["Chess Club"].Participants, 2)
}

func TestUnregisterUnknownActivity(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodDelete, "Nope", "unregister", "someone@example.com")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Activity not found", decodeError(t, rr)["detail"])
}

func TestChessClubScenario(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "Chess Club", "signup", "test.user@example.com")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, listActivities(t, h)["Chess Club"].Participants, 3)

	rr = do(t, h, http.MethodPost, "Chess Club", "signup", "test.user@example.com")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodDelete, "Chess Club", "unregister", "michael@mergington.edu")
	require.Equal(t, http.StatusOK, rr.Code)
	participants := listActivities(t, h)["Chess Club"].Participants
	require.Len(t, participants, 2)
	require.NotContains(t, participants, "michael@mergington.edu")

	rr = do(t, h, http.MethodDelete, "Chess Club", "unregister", "nobody@example.com")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWrongMethodIsRejected(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "Chess Club", "signup", "a@example.com")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestActivityCatalogMarshalEmpty(t *testing.T) {
	raw, err := json.Marshal(ActivityCatalog{})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
}
