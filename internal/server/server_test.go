package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alkime/soundboard/internal/config"
	"github.com/alkime/soundboard/internal/engine"
	"github.com/alkime/soundboard/internal/invoke"
	"github.com/alkime/soundboard/internal/keytask"
	"github.com/alkime/soundboard/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Env:        "test",
		Port:       "8080",
		HSTSMaxAge: 31536000,
		CSPMode:    "relaxed",
		LogLevel:   "info",
		StaticDir:  t.TempDir(),
	}
}

type fixture struct {
	srv    *server.Server
	engine *engine.Engine
}

func newFixture(t *testing.T, cfg *config.Config) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	eng, err := engine.New(ctx, engine.Options{Logger: discardLogger})
	require.NoError(t, err)

	bus := invoke.NewBus(discardLogger)
	eng.Register(bus)

	srv := server.New(cfg, discardLogger, server.Deps{Bus: bus, Events: eng.Events()})

	return fixture{srv: srv, engine: eng}
}

func wavBytes() []byte {
	buf := make([]byte, 44)
	copy(buf[0:4], "RIFF")
	copy(buf[8:12], "WAVE")

	return buf
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code, "Health endpoint should return 200 OK")
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "soundboard")
	assert.Contains(t, w.Body.String(), `"subscribers":0`)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Reused(t *testing.T) {
	f := newFixture(t, testConfig(t))
	id := "6f1c2a8e-4b7d-4f3a-9c55-0d2e8b1a7f10"

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestInvoke(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, http.MethodPost, "/api/v1/invoke/add_soundbite", engine.AddArgs{Name: "airhorn", Buffer: wavBytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `"airhorn"`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/invoke/get_soundbite", engine.NameArgs{Name: "airhorn"})
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[engine.Info](t, w)
	assert.Equal(t, "audio/wav", info.MIME)
	assert.Zero(t, info.Keycode)

	w = f.do(t, http.MethodPost, "/api/v1/invoke/get_soundbites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["airhorn"]`, w.Body.String())

	t.Run("not found carries suggestion", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/invoke/get_soundbite", engine.NameArgs{Name: "airhron"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t,
			`{"kind":"soundbite_not_found","message":"soundbite named airhron not found","suggestion":"airhorn"}`,
			w.Body.String())
	})

	t.Run("conflict", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/invoke/add_soundbite", engine.AddArgs{Name: "airhorn", Buffer: wavBytes()})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid volume", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/invoke/set_volume", engine.VolumeArgs{Name: "airhorn", Volume: 500})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_volume", decode[map[string]string](t, w)["kind"])
	})

	t.Run("unknown command", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/invoke/launch_rockets", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "unknown_command", decode[map[string]string](t, w)["kind"])
	})

	t.Run("bad arguments", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoke/set_volume", strings.NewReader(`{"volume":"loud"}`))
		w := httptest.NewRecorder()
		f.srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_arguments", decode[map[string]string](t, w)["kind"])
	})
}

func TestCommands(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, http.MethodGet, "/api/v1/commands", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string][]string](t, w)
	assert.Contains(t, body["commands"], engine.CmdSetKeytaskCode)
	assert.Len(t, body["commands"], 11)
}

func TestRecordFlow(t *testing.T) {
	f := newFixture(t, testConfig(t))
	_, err := f.engine.Add("airhorn", wavBytes())
	require.NoError(t, err)

	t.Run("unknown soundbite", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("key while idle", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "KeyA", "key": "a", "keyCode": 65})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	w := f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "airhorn"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"recording":true,"target":"airhorn"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "airhorn"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "ControlLeft", "key": "Control", "keyCode": 17})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "modifier", decode[map[string]any](t, w)["step"])

	w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "KeyA", "key": "a", "keyCode": 65})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Control + a", decode[map[string]any](t, w)["pending"])

	w = f.do(t, http.MethodGet, "/api/v1/record", nil)
	assert.JSONEq(t, `{"recording":true,"target":"airhorn","pending":"Control + a"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "Enter", "key": "Enter", "keyCode": 13})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t,
		`{"recording":false,"step":"committed","binding":{"name":"airhorn","keytaskCode":713,"label":"Control + a"}}`,
		w.Body.String())

	assert.Eventually(t, func() bool {
		info, err := f.engine.Soundbite("airhorn")
		return err == nil && info.Keycode == keytask.Code(713)
	}, time.Second, 10*time.Millisecond)
}

func TestRecordKey_OutOfRangeKeyCode(t *testing.T) {
	f := newFixture(t, testConfig(t))
	_, err := f.engine.Add("airhorn", wavBytes())
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "airhorn"})
	require.Equal(t, http.StatusOK, w.Code)

	for _, keyCode := range []int{-1, 0, 705} {
		w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "KeyZ", "key": "z", "keyCode": keyCode})
		assert.Equal(t, http.StatusBadRequest, w.Code, "keyCode %d", keyCode)
		assert.Equal(t, "bad_arguments", decode[map[string]string](t, w)["kind"])
	}

	w = f.do(t, http.MethodGet, "/api/v1/record", nil)
	assert.JSONEq(t, `{"recording":true,"target":"airhorn"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "Enter", "key": "Enter", "keyCode": 13})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid_commit", decode[map[string]any](t, w)["step"])

	info, err := f.engine.Soundbite("airhorn")
	require.NoError(t, err)
	assert.Zero(t, info.Keycode)
}

func TestRecordCancel(t *testing.T) {
	f := newFixture(t, testConfig(t))
	_, err := f.engine.Add("airhorn", wavBytes())
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "airhorn"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/record", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/record", nil)
	assert.JSONEq(t, `{"recording":false}`, w.Body.String())

	// An invalid commit clears the session without touching the engine.
	f.do(t, http.MethodPost, "/api/v1/record/start", map[string]string{"name": "airhorn"})
	w = f.do(t, http.MethodPost, "/api/v1/record/key", map[string]any{"code": "Enter", "key": "Enter", "keyCode": 13})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid_commit", decode[map[string]any](t, w)["step"])

	info, err := f.engine.Soundbite("airhorn")
	require.NoError(t, err)
	assert.Zero(t, info.Keycode)
}

func TestBearerAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token = "s3cret"
	f := newFixture(t, cfg)

	w := f.do(t, http.MethodGet, "/api/v1/commands", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	f.srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/commands?token=s3cret", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	w = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaticFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<h1>soundboard</h1>"), 0o600))
	f := newFixture(t, cfg)

	w := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>soundboard</h1>")

	w = f.do(t, http.MethodGet, "/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsWebsocket(t *testing.T) {
	f := newFixture(t, testConfig(t))
	ts := httptest.NewServer(f.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// The subscription is registered after the upgrade completes.
	require.Eventually(t, func() bool { return f.engine.Events().Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = f.engine.Add("airhorn", wavBytes())
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev engine.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, engine.EventAdded, ev.Kind)
	assert.Equal(t, "airhorn", ev.Name)
}
