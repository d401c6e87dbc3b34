package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/user", nil)
	assert.False(t, IsHTMX(r))
	assert.False(t, IsBoosted(r))
	assert.False(t, WantsPartial(r))

	r.Header.Set("Hx-Request", "TRUE")
	r.Header.Set("Hx-Boosted", "true")
	assert.True(t, IsHTMX(r))
	assert.True(t, IsBoosted(r))
	assert.True(t, WantsPartial(r))
}

func TestHTMX_ResponseHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXRedirect(rr, "/auth/signed-out")
	SetHXPushURL(rr, "/user/chatbot/openai")
	SetHXTrigger(rr, "nav:activate", map[string]string{"path": "/user/chatbot/openai"})

	assert.Equal(t, "/auth/signed-out", rr.Header().Get("Hx-Redirect"))
	assert.Equal(t, "/user/chatbot/openai", rr.Header().Get("Hx-Push-Url"))

	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("Hx-Trigger")), &payload))
	assert.Equal(t, "/user/chatbot/openai", payload["nav:activate"]["path"])
}

func TestHTMX_TriggerWithoutPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXTrigger(rr, "credits:changed", nil)
	assert.JSONEq(t, `{"credits:changed":true}`, rr.Header().Get("Hx-Trigger"))

	rr = httptest.NewRecorder()
	SetHXTrigger(rr, "bad", func() {})
	assert.JSONEq(t, `{"bad":true}`, rr.Header().Get("Hx-Trigger"))
}

func TestTriggerToast(t *testing.T) {
	rr := httptest.NewRecorder()
	triggerToast(rr, "  ", "error")
	assert.Empty(t, rr.Header().Get("Hx-Trigger"))

	triggerToast(rr, "Added 10 credits", "success")
	assert.JSONEq(t, `{"showToast":{"message":"Added 10 credits","type":"success"}}`, rr.Header().Get("Hx-Trigger"))
}

func TestHTMX_TriggersAccumulate(t *testing.T) {
	rr := httptest.NewRecorder()
	triggerToast(rr, "Credits added.", "success")
	SetHXTrigger(rr, "nav:activate", map[string]string{"path": "/user/credits"})

	assert.JSONEq(t,
		`{"showToast":{"message":"Credits added.","type":"success"},"nav:activate":{"path":"/user/credits"}}`,
		rr.Header().Get("Hx-Trigger"))
}
