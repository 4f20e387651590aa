package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	app "github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/middleware"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/password"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/token"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	codec := token.NewCodec("test-access-secret", "test-refresh-secret", 10*time.Minute, 7*24*time.Hour)
	application := app.New(app.Stores{}, codec, password.NewHasher(4), nil)
	gate := middleware.NewAuthMiddleware(codec, nil)
	return NewRouter(application, Options{AuthGate: gate.Handler})
}

func marshal(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, marshal(t, body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", resp.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	envelope := decode(t, resp)
	errObj, ok := envelope["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %q", resp.Body.String())
	}
	msg, _ := errObj["message"].(string)
	return msg
}

func signup(t *testing.T, h http.Handler, email, pass string) (userID, access, refresh string) {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/signup", "", map[string]string{"email": email, "password": pass})
	if resp.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	u, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("signup: missing user object in %q", resp.Body.String())
	}
	return u["id"].(string), body["accessToken"].(string), body["refreshToken"].(string)
}

func TestSignupLoginRefresh(t *testing.T) {
	h := newTestRouter(t)

	userID, access, refresh := signup(t, h, "a@b.com", "secret1")
	if userID == "" || access == "" || refresh == "" {
		t.Fatal("signup returned empty identifiers or tokens")
	}

	// Duplicate email conflicts.
	resp := do(t, h, http.MethodPost, "/signup", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.Code)
	}

	resp = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	if body["accessToken"] == "" || body["refreshToken"] == "" {
		t.Fatal("login returned empty tokens")
	}

	resp = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "a@b.com", "password": "wrong-pass"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", resp.Code)
	}
	wrongPassMsg := errorMessage(t, resp)

	resp = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "ghost@b.com", "password": "secret1"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", resp.Code)
	}
	if msg := errorMessage(t, resp); msg != wrongPassMsg {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", msg, wrongPassMsg)
	}

	resp = do(t, h, http.MethodPost, "/token/refresh", "", map[string]string{"refreshToken": refresh})
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if decode(t, resp)["accessToken"] == "" {
		t.Fatal("refresh returned empty access token")
	}

	// An access token is not accepted where a refresh token is expected.
	resp = do(t, h, http.MethodPost, "/token/refresh", "", map[string]string{"refreshToken": access})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("refresh with access token: expected 401, got %d", resp.Code)
	}

	// Every failure on the refresh endpoint is an authentication failure,
	// including a body that does not decode at all.
	for name, body := range map[string]string{"empty": "", "garbage": "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/token/refresh", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("refresh with %s body: expected 401, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestTradeLifecycle(t *testing.T) {
	h := newTestRouter(t)
	userID, access, _ := signup(t, h, "trader@example.com", "secret1")

	resp := do(t, h, http.MethodPost, "/trades", access, map[string]any{
		"type": "buy", "user_id": userID, "symbol": "aapl", "shares": 50, "price": 150.25,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create trade: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	created := decode(t, resp)
	if created["symbol"] != "AAPL" {
		t.Fatalf("expected symbol normalised to AAPL, got %v", created["symbol"])
	}
	if _, ok := created["timestamp"].(float64); !ok {
		t.Fatalf("expected numeric epoch-ms timestamp, got %v", created["timestamp"])
	}
	id := int64(created["id"].(float64))
	if id != 1 {
		t.Fatalf("expected first trade id 1, got %d", id)
	}

	resp = do(t, h, http.MethodPost, "/trades", access, map[string]any{
		"type": "sell", "user_id": userID, "symbol": "msft", "shares": 10, "price": 99.5,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create second trade: expected 201, got %d", resp.Code)
	}

	resp = do(t, h, http.MethodGet, "/trades", access, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list trades: expected 200, got %d", resp.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal trade list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(list))
	}
	if list[0]["id"].(float64) >= list[1]["id"].(float64) {
		t.Fatal("trades must list in creation order")
	}

	resp = do(t, h, http.MethodGet, "/trades?type=sell", access, nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal filtered list: %v", err)
	}
	if len(list) != 1 || list[0]["type"] != "sell" {
		t.Fatalf("type filter: expected a single sell trade, got %v", list)
	}

	resp = do(t, h, http.MethodGet, "/trades?type=hold", access, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid type filter: expected 400, got %d", resp.Code)
	}

	resp = do(t, h, http.MethodGet, "/trades/1", access, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get trade: expected 200, got %d", resp.Code)
	}
	if got := decode(t, resp)["id"].(float64); got != 1 {
		t.Fatalf("get trade: expected id 1, got %v", got)
	}

	resp = do(t, h, http.MethodGet, "/trades/999", access, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing trade: expected 404, got %d", resp.Code)
	}

	// A non-integer id can never name a record.
	resp = do(t, h, http.MethodGet, "/trades/abc", access, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("non-integer trade id: expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
	resp = do(t, h, http.MethodGet, "/trades/abc", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("non-integer trade id without token: expected 401, got %d", resp.Code)
	}
}

func TestTradeValidation(t *testing.T) {
	h := newTestRouter(t)
	userID, access, _ := signup(t, h, "v@example.com", "secret1")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad type", map[string]any{"type": "hold", "user_id": userID, "symbol": "AAPL", "shares": 1, "price": 1.0}},
		{"zero shares", map[string]any{"type": "buy", "user_id": userID, "symbol": "AAPL", "shares": 0, "price": 1.0}},
		{"too many shares", map[string]any{"type": "buy", "user_id": userID, "symbol": "AAPL", "shares": 101, "price": 1.0}},
		{"zero price", map[string]any{"type": "buy", "user_id": userID, "symbol": "AAPL", "shares": 1, "price": 0}},
		{"unknown user", map[string]any{"type": "buy", "user_id": "nope", "symbol": "AAPL", "shares": 1, "price": 1.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, h, http.MethodPost, "/trades", access, tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestLedgerIsAppendOnly(t *testing.T) {
	h := newTestRouter(t)
	userID, access, _ := signup(t, h, "ledger@example.com", "secret1")

	resp := do(t, h, http.MethodPost, "/trades", access, map[string]any{
		"type": "buy", "user_id": userID, "symbol": "NVDA", "shares": 5, "price": 420.0,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create trade: expected 201, got %d", resp.Code)
	}

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		resp = do(t, h, method, "/trades/1", access, map[string]any{"shares": 6})
		if resp.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, resp.Code)
		}
		if msg := errorMessage(t, resp); msg != "modification is not permitted" {
			t.Fatalf("%s: unexpected message %q", method, msg)
		}
	}

	resp = do(t, h, http.MethodDelete, "/trades/1", access, nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE: expected 405, got %d", resp.Code)
	}
	if msg := errorMessage(t, resp); msg != "deletion is not permitted" {
		t.Fatalf("DELETE: unexpected message %q", msg)
	}

	// Rejection happens whether or not the target exists.
	resp = do(t, h, http.MethodDelete, "/trades/999", access, nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE missing id: expected 405, got %d", resp.Code)
	}

	// The record is untouched.
	resp = do(t, h, http.MethodGet, "/trades/1", access, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get after rejected mutation: expected 200, got %d", resp.Code)
	}
	if got := decode(t, resp)["shares"].(float64); got != 5 {
		t.Fatalf("expected shares unchanged at 5, got %v", got)
	}
}

func TestTradesRequireAuth(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/trades", "/trades/1"} {
		resp := do(t, h, http.MethodGet, path, "", nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: expected 401, got %d", path, resp.Code)
		}
	}

	resp := do(t, h, http.MethodPost, "/trades", "not-a-token", map[string]any{})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", resp.Code)
	}
}

func TestHealthAndRouting(t *testing.T) {
	h := newTestRouter(t)

	resp := do(t, h, http.MethodGet, "/health", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
	body := decode(t, resp)
	if body["status"] != "healthy" || body["service"] != serviceName {
		t.Fatalf("unexpected health body: %v", body)
	}

	resp = do(t, h, http.MethodGet, "/nope", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", resp.Code)
	}

	resp = do(t, h, http.MethodDelete, "/signup", "", nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method on known route: expected 405, got %d", resp.Code)
	}
}

func TestMiddlewareCoversUnroutedRequests(t *testing.T) {
	codec := token.NewCodec("test-access-secret", "test-refresh-secret", 10*time.Minute, 7*24*time.Hour)
	application := app.New(app.Stores{}, codec, password.NewHasher(4), nil)
	gate := middleware.NewAuthMiddleware(codec, nil)
	h := NewRouter(application, Options{
		AuthGate: gate.Handler,
		Middleware: []mux.MiddlewareFunc{
			middleware.LoggingMiddleware(logging.NewDefault("test")),
		},
	})

	// The 404 and 405 fallbacks sit outside mux's own middleware chain;
	// they must still pass through the configured middleware.
	resp := do(t, h, http.MethodGet, "/nope", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", resp.Code)
	}
	if resp.Header().Get("X-Trace-ID") == "" {
		t.Error("404 fallback response missing trace id")
	}

	resp = do(t, h, http.MethodDelete, "/signup", "", nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method mismatch: expected 405, got %d", resp.Code)
	}
	if resp.Header().Get("X-Trace-ID") == "" {
		t.Error("405 fallback response missing trace id")
	}

	resp = do(t, h, http.MethodGet, "/health", "", nil)
	if resp.Header().Get("X-Trace-ID") == "" {
		t.Error("matched route response missing trace id")
	}
}
