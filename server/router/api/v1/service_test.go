package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/useattune/attune/plugin/inference"
	"github.com/useattune/attune/plugin/persona"
	"github.com/useattune/attune/server/profile"
	v1 "github.com/useattune/attune/server/router/api/v1"
	"github.com/useattune/attune/store"
	"github.com/useattune/attune/store/db/sqlite"
)

type fakeCompleter struct {
	reply string
	err   error

	calls      int
	gotSystem  string
	gotMessage string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, message string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotMessage = message
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestAPI(t *testing.T, prof *profile.Profile, completer inference.Completer) *echo.Echo {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "attune_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	st := store.New(driver)
	require.NoError(t, st.Migrate(context.Background()))

	if prof == nil {
		prof = &profile.Profile{Mode: "dev", Driver: "sqlite", InferenceBaseURL: "http://inference.test"}
	}
	e := echo.New()
	v1.NewAPIV1Service("test-secret", prof, st, persona.Default(), completer).Register(e)
	return e
}

// call sends one JSON request and returns the recorder.
func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"opensesame1","nickname":"Casey"}`, email)
	rec := call(e, http.MethodPost, "/api/v1/auth/signup", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────────────────

func TestSignUpLogInMe(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})

	token := signUp(t, e, "casey@example.com")

	// Duplicate email is rejected.
	rec := call(e, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"casey@example.com","password":"opensesame1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password.
	rec = call(e, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"casey@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Right password, any casing of the email.
	rec = call(e, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"Casey@Example.com","password":"opensesame1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The token identifies the account.
	rec = call(e, http.MethodGet, "/api/v1/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[struct {
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
	}](t, rec)
	assert.Equal(t, "casey@example.com", me.Email)
	assert.Equal(t, "Casey", me.Nickname)

	// No token, bad token.
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/api/v1/auth/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", "").Code)
}

func TestSignUpValidation(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"opensesame1"}`},
		{"bare at sign", `{"email":"@","password":"opensesame1"}`},
		{"short password", `{"email":"a@b.com","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodPost, "/api/v1/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Profile
// ─────────────────────────────────────────────────────────────────────────────

func TestProfileDefaultsAndPatch(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	type profileBody struct {
		DisplayName     string   `json:"displayName"`
		FocusAreas      []string `json:"focusAreas"`
		WakeTime        string   `json:"wakeTime"`
		ReminderEnabled bool     `json:"reminderEnabled"`
		Onboarded       bool     `json:"onboarded"`
	}

	// Fresh accounts read an empty profile seeded with the nickname.
	rec := call(e, http.MethodGet, "/api/v1/profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[profileBody](t, rec)
	assert.Equal(t, "Casey", got.DisplayName)
	assert.False(t, got.Onboarded)
	assert.Empty(t, got.FocusAreas)

	// Onboarding happens in steps; each PATCH merges into what is there.
	rec = call(e, http.MethodPatch, "/api/v1/profile", token,
		`{"focusAreas":["sleep","stress"],"wakeTime":"06:45"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(e, http.MethodPatch, "/api/v1/profile", token,
		`{"reminderEnabled":true,"onboarded":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[profileBody](t, rec)
	assert.Equal(t, []string{"sleep", "stress"}, got.FocusAreas)
	assert.Equal(t, "06:45", got.WakeTime)
	assert.True(t, got.ReminderEnabled)
	assert.True(t, got.Onboarded)

	// Bad values are rejected before anything is written.
	rec = call(e, http.MethodPatch, "/api/v1/profile", token, `{"focusAreas":["crypto"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(e, http.MethodPatch, "/api/v1/profile", token, `{"wakeTime":"6:45am"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Routines
// ─────────────────────────────────────────────────────────────────────────────

func TestRoutineLifecycleOverWire(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	type routineBody struct {
		UID       string `json:"uid"`
		Title     string `json:"title"`
		TimeOfDay string `json:"timeOfDay"`
		Position  int32  `json:"position"`
		Archived  bool   `json:"archived"`
	}

	rec := call(e, http.MethodPost, "/api/v1/routines", token,
		`{"title":"Morning stretch","emoji":"🧘","timeOfDay":"morning"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[routineBody](t, rec)
	assert.NotEmpty(t, first.UID)
	assert.Equal(t, int32(0), first.Position)

	rec = call(e, http.MethodPost, "/api/v1/routines", token, `{"title":"Evening walk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decodeBody[routineBody](t, rec)
	assert.Equal(t, int32(1), second.Position)
	assert.Equal(t, "anytime", second.TimeOfDay)

	rec = call(e, http.MethodGet, "/api/v1/routines", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]routineBody](t, rec), 2)

	// Rename, then archive.
	rec = call(e, http.MethodPatch, "/api/v1/routines/"+first.UID, token, `{"title":"Sun salutation"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sun salutation", decodeBody[routineBody](t, rec).Title)

	rec = call(e, http.MethodPatch, "/api/v1/routines/"+first.UID, token, `{"archived":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[routineBody](t, rec).Archived)

	// Delete the other one.
	rec = call(e, http.MethodDelete, "/api/v1/routines/"+second.UID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(e, http.MethodGet, "/api/v1/routines", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	remaining := decodeBody[[]routineBody](t, rec)
	require.Len(t, remaining, 1)
	assert.Equal(t, first.UID, remaining[0].UID)
}

func TestRoutineValidationAndOwnership(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodPost, "/api/v1/routines", token, `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(e, http.MethodPost, "/api/v1/routines", token, `{"title":"Nap","timeOfDay":"noonish"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(e, http.MethodPost, "/api/v1/routines", token, `{"title":"Nap","weekdays":["monday"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/api/v1/routines", token, `{"title":"Journal","weekdays":["mon","wed"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	uid := decodeBody[struct {
		UID string `json:"uid"`
	}](t, rec).UID

	// Another account can neither see nor touch it.
	other := signUp(t, e, "sam@example.com")
	rec = call(e, http.MethodGet, "/api/v1/routines", other, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]json.RawMessage](t, rec))
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPatch, "/api/v1/routines/"+uid, other, `{"title":"Mine now"}`).Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodDelete, "/api/v1/routines/"+uid, other, "").Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Check-ins
// ─────────────────────────────────────────────────────────────────────────────

func TestCheckInUpsertAndRange(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	type checkInBody struct {
		UID  string `json:"uid"`
		Date string `json:"date"`
		Mood int32  `json:"mood"`
		Note string `json:"note"`
	}

	rec := call(e, http.MethodPost, "/api/v1/checkins", token,
		`{"date":"2026-02-10","mood":2,"energy":3,"note":"rough night"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[checkInBody](t, rec)

	// Same date again revises the entry instead of adding one.
	rec = call(e, http.MethodPost, "/api/v1/checkins", token,
		`{"date":"2026-02-10","mood":4,"energy":3,"note":"nap helped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	revised := decodeBody[checkInBody](t, rec)
	assert.Equal(t, first.UID, revised.UID)
	assert.Equal(t, int32(4), revised.Mood)

	rec = call(e, http.MethodPost, "/api/v1/checkins", token,
		`{"date":"2026-02-12","mood":3,"energy":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(e, http.MethodPost, "/api/v1/checkins", token,
		`{"date":"2026-02-20","mood":5,"energy":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Range query, newest first.
	rec = call(e, http.MethodGet, "/api/v1/checkins?from=2026-02-10&to=2026-02-14", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]checkInBody](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-02-12", list[0].Date)
	assert.Equal(t, "2026-02-10", list[1].Date)

	// Point lookups.
	rec = call(e, http.MethodGet, "/api/v1/checkins/2026-02-10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nap helped", decodeBody[checkInBody](t, rec).Note)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/api/v1/checkins/2026-02-11", token, "").Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/api/v1/checkins/yesterday", token, "").Code)
}

func TestCheckInValidation(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	tests := []struct {
		name string
		body string
	}{
		{"mood too low", `{"date":"2026-02-10","mood":0,"energy":3}`},
		{"mood too high", `{"date":"2026-02-10","mood":6,"energy":3}`},
		{"energy missing", `{"date":"2026-02-10","mood":3}`},
		{"garbled date", `{"date":"Feb 10","mood":3,"energy":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodPost, "/api/v1/checkins", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Personas
// ─────────────────────────────────────────────────────────────────────────────

func TestListPersonas(t *testing.T) {
	e := newTestAPI(t, nil, &fakeCompleter{})
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodGet, "/api/v1/personas", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[[]map[string]any](t, rec)
	require.NotEmpty(t, list)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p["id"].(string))
		assert.NotEmpty(t, p["name"])
		assert.NotEmpty(t, p["greeting"])
		// The system prompt must never reach clients.
		assert.NotContains(t, p, "systemPrompt")
	}
	assert.Contains(t, ids, "sage")
}

// ─────────────────────────────────────────────────────────────────────────────
// Chat proxy
// ─────────────────────────────────────────────────────────────────────────────

func TestChatHappyPath(t *testing.T) {
	completer := &fakeCompleter{reply: "Try box breathing for two minutes."}
	e := newTestAPI(t, nil, completer)
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodPost, "/api/v1/chat", token,
		`{"message":"I feel wound up after work","personaId":"sage"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[struct {
		Response string `json:"response"`
	}](t, rec)
	assert.Equal(t, "Try box breathing for two minutes.", got.Response)

	// The persona's system prompt went upstream, the raw user text with it.
	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, completer.gotSystem, "Sage")
	assert.Equal(t, "I feel wound up after work", completer.gotMessage)
}

func TestChatRequiresConfiguredBackend(t *testing.T) {
	prof := &profile.Profile{Mode: "dev", Driver: "sqlite"}
	e := newTestAPI(t, prof, nil)
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodPost, "/api/v1/chat", token,
		`{"message":"hello","personaId":"sage"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	got := decodeBody[struct {
		Code string `json:"code"`
	}](t, rec)
	assert.Equal(t, "not_configured", got.Code)
}

func TestChatRejectsBadRequests(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	e := newTestAPI(t, nil, completer)
	token := signUp(t, e, "casey@example.com")

	longMessage := strings.Repeat("é", 5001)

	tests := []struct {
		name     string
		token    string
		body     string
		wantCode int
		wantWire string
	}{
		{"no token", "", `{"message":"hi","personaId":"sage"}`, http.StatusUnauthorized, ""},
		{"blank message", token, `{"message":"   ","personaId":"sage"}`, http.StatusBadRequest, "invalid_request"},
		{"over the cap", token, fmt.Sprintf(`{"message":%q,"personaId":"sage"}`, longMessage), http.StatusBadRequest, "invalid_request"},
		{"unknown persona", token, `{"message":"hi","personaId":"zephyr"}`, http.StatusBadRequest, "unknown_persona"},
		{"crisis content", token, `{"message":"I want to hurt myself","personaId":"sage"}`, http.StatusBadRequest, "content_safety"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodPost, "/api/v1/chat", tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantWire != "" {
				got := decodeBody[struct {
					Code string `json:"code"`
				}](t, rec)
				assert.Equal(t, tt.wantWire, got.Code)
			}
		})
	}
	// None of the rejected messages reached the backend.
	assert.Zero(t, completer.calls)
}

func TestChatAbsorbsUpstreamFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("dial tcp: connection refused")}
	e := newTestAPI(t, nil, completer)
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodPost, "/api/v1/chat", token,
		`{"message":"I feel wound up","personaId":"sage"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[struct {
		Response string `json:"response"`
	}](t, rec)
	// The persona answers in its own voice rather than erroring.
	assert.Equal(t, persona.Default().Get("sage").Fallbacks.General, got.Response)
}

func TestChatSurfacesUpstreamContentFilter(t *testing.T) {
	completer := &fakeCompleter{err: inference.ErrContentFiltered}
	e := newTestAPI(t, nil, completer)
	token := signUp(t, e, "casey@example.com")

	rec := call(e, http.MethodPost, "/api/v1/chat", token,
		`{"message":"tell me about the news","personaId":"sage"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody[struct {
		Code string `json:"code"`
	}](t, rec)
	assert.Equal(t, "content_safety", got.Code)
}

func TestChatDailyQuota(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	prof := &profile.Profile{
		Mode:             "dev",
		Driver:           "sqlite",
		InferenceBaseURL: "http://inference.test",
		ChatDailyQuota:   2,
	}
	e := newTestAPI(t, prof, completer)
	token := signUp(t, e, "casey@example.com")

	body := `{"message":"hi","personaId":"sage"}`
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/api/v1/chat", token, body).Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/api/v1/chat", token, body).Code)

	rec := call(e, http.MethodPost, "/api/v1/chat", token, body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	got := decodeBody[struct {
		Code string `json:"code"`
	}](t, rec)
	assert.Equal(t, "rate_limited", got.Code)

	// The cap is per account, not global.
	other := signUp(t, e, "sam@example.com")
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/api/v1/chat", other, body).Code)
}
