package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"zerobuild/internal/app"
	"zerobuild/pkg/ai"
	"zerobuild/pkg/domain"
	"zerobuild/pkg/store"
)

// cannedRenderer serves fixed visuals for HTTP-level tests.
type cannedRenderer struct {
	exterior  string
	floorPlan string
	roomImage string
	roomErr   error
	blueprint string
	chatReply string
}

func (c *cannedRenderer) RenderExterior(_ context.Context, _ ai.ExteriorSpec) (string, error) {
	return c.exterior, nil
}

func (c *cannedRenderer) RenderRoom(_ context.Context, _ ai.RoomSpec, _ ai.RenderMode) (string, error) {
	return c.roomImage, c.roomErr
}

func (c *cannedRenderer) RenderFloorPlan(_ context.Context, _ ai.FloorPlanSpec) (string, error) {
	return c.floorPlan, nil
}

func (c *cannedRenderer) DescribeBlueprint(_ context.Context, _ ai.BlueprintSpec) (string, error) {
	return c.blueprint, nil
}

func (c *cannedRenderer) Chat(_ context.Context, _ string, _ []ai.Turn) (string, error) {
	return c.chatReply, nil
}

type testEnv struct {
	t        *testing.T
	server   *httptest.Server
	renderer *cannedRenderer
}

func newTestEnv(t *testing.T, authLimit int) *testEnv {
	t.Helper()
	redis := miniredis.RunT(t)
	sessions, err := store.NewJWTSessionStore("test-secret", time.Hour, store.NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	renderer := &cannedRenderer{}
	appCore, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Sessions: sessions,
		Renderer: renderer,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{
		App:           appCore,
		RedisAddr:     redis.Addr(),
		AuthRateLimit: authLimit,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{t: t, server: ts, renderer: renderer}
}

// do issues a JSON request and decodes the response into out when non-nil.
func (e *testEnv) do(method, path, token string, body, out any) int {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			e.t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

type authPayload struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

func (e *testEnv) signUp(email string) string {
	e.t.Helper()
	var resp authPayload
	status := e.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "pw",
	}, &resp)
	if status != http.StatusCreated {
		e.t.Fatalf("signup status = %d", status)
	}
	return resp.Token
}

func (e *testEnv) loginDeveloper() string {
	e.t.Helper()
	var resp authPayload
	status := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": app.AdminEmail, "password": app.AdminPassword, "role": "DEVELOPER",
	}, &resp)
	if status != http.StatusOK {
		e.t.Fatalf("developer login status = %d", status)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, 100)
	var body map[string]string
	if status := env.do(http.MethodGet, "/healthz", "", nil, &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, 100)

	token := env.signUp("ada@example.com")

	var me app.Identity
	if status := env.do(http.MethodGet, "/api/users/me", token, nil, &me); status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	if me.Email != "ada@example.com" || me.Role != domain.RoleClient {
		t.Fatalf("me = %+v", me)
	}

	// Bad credentials and missing tokens are rejected.
	if status := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	}, nil); status != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", status)
	}
	if status := env.do(http.MethodGet, "/api/users/me", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous me status = %d", status)
	}

	// Logout revokes the token.
	if status := env.do(http.MethodPost, "/api/auth/logout", token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	if status := env.do(http.MethodGet, "/api/users/me", token, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d", status)
	}
}

func TestDeveloperLoginRejectsClientCredentials(t *testing.T) {
	env := newTestEnv(t, 100)
	env.signUp("ada@example.com")

	status := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "pw", "role": "DEVELOPER",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	env.loginDeveloper()
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t, 2)

	for i := 0; i < 2; i++ {
		if status := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "x@example.com", "password": "nope",
		}, nil); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i, status)
		}
	}
	if status := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "x@example.com", "password": "nope",
	}, nil); status != http.StatusTooManyRequests {
		t.Fatalf("third attempt status = %d, want 429", status)
	}
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, 100)
	env.renderer.exterior = "data:image/png;base64,QUJD"
	token := env.signUp("ada@example.com")

	var project domain.Project
	status := env.do(http.MethodPost, "/api/projects", token, map[string]any{
		"title": "Skyview Residence", "length": 20, "breadth": 20,
	}, &project)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	if project.PlotArea != 400 {
		t.Fatalf("plotArea = %v", project.PlotArea)
	}
	base := "/api/projects/" + project.ID

	var room domain.Room
	if status := env.do(http.MethodPost, base+"/rooms", token, map[string]string{
		"type": "Master Bedroom", "color": "#4f46e5",
	}, &room); status != http.StatusCreated {
		t.Fatalf("add room status = %d", status)
	}
	if len(room.Furniture) != 3 {
		t.Fatalf("bedroom furniture = %d items, want 3", len(room.Furniture))
	}

	var budget domain.Budget
	if status := env.do(http.MethodGet, base+"/budget", token, nil, &budget); status != http.StatusOK {
		t.Fatalf("budget status = %d", status)
	}
	if budget.Total != 1107500 {
		t.Fatalf("total = %v, want 1107500", budget.Total)
	}

	if status := env.do(http.MethodPost, base+"/visuals/exterior", token, nil, &project); status != http.StatusOK {
		t.Fatalf("exterior status = %d", status)
	}
	if project.VisualImage == "" {
		t.Fatal("exterior render missing from response")
	}

	// Satisfaction via full-project update.
	project.Satisfaction = domain.SatisfactionOutstanding
	if status := env.do(http.MethodPut, base, token, project, &project); status != http.StatusOK {
		t.Fatalf("update status = %d", status)
	}
	if project.Satisfaction != domain.SatisfactionOutstanding {
		t.Fatalf("satisfaction = %q", project.Satisfaction)
	}

	if status := env.do(http.MethodDelete, base+"/rooms/"+room.ID, token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete room status = %d", status)
	}
	if status := env.do(http.MethodDelete, base, token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete project status = %d", status)
	}
	if status := env.do(http.MethodGet, base, token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", status)
	}
}

func TestRoomVisualsHardFailure(t *testing.T) {
	env := newTestEnv(t, 100)
	env.renderer.roomErr = ai.ErrNoImagePayload
	token := env.signUp("ada@example.com")

	var project domain.Project
	env.do(http.MethodPost, "/api/projects", token, map[string]any{"title": "P"}, &project)
	var room domain.Room
	env.do(http.MethodPost, "/api/projects/"+project.ID+"/rooms", token, map[string]string{"type": "Kitchen"}, &room)

	status := env.do(http.MethodPost, fmt.Sprintf("/api/projects/%s/rooms/%s/visuals", project.ID, room.ID), token, nil, nil)
	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
}

func TestDeveloperAccess(t *testing.T) {
	env := newTestEnv(t, 100)
	clientToken := env.signUp("ada@example.com")
	devToken := env.loginDeveloper()

	var project domain.Project
	env.do(http.MethodPost, "/api/projects", clientToken, map[string]any{
		"title": "Skyview", "length": 20, "breadth": 20,
	}, &project)

	// Developers read any project but cannot mutate.
	if status := env.do(http.MethodGet, "/api/projects/"+project.ID, devToken, nil, nil); status != http.StatusOK {
		t.Fatalf("developer read status = %d", status)
	}
	if status := env.do(http.MethodPut, "/api/projects/"+project.ID, devToken, project, nil); status != http.StatusForbidden {
		t.Fatalf("developer update status = %d, want 403", status)
	}
	if status := env.do(http.MethodPost, "/api/projects", devToken, map[string]any{"title": "x"}, nil); status != http.StatusForbidden {
		t.Fatalf("developer create status = %d, want 403", status)
	}

	var metrics app.Metrics
	if status := env.do(http.MethodGet, "/api/metrics", devToken, nil, &metrics); status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if metrics.TotalProjects != 1 || metrics.PortfolioValue != 860000 {
		t.Fatalf("metrics = %+v", metrics)
	}

	// Clients cannot read metrics.
	if status := env.do(http.MethodGet, "/api/metrics", clientToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("client metrics status = %d, want 403", status)
	}
}

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t, 100)
	env.renderer.chatReply = "Use a pitched roof."
	token := env.signUp("ada@example.com")

	var resp map[string]string
	status := env.do(http.MethodPost, "/api/chat", token, map[string]any{
		"message": "What roof suits a coastal villa?",
		"history": []map[string]string{{"role": "user", "text": "hi"}},
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("chat status = %d", status)
	}
	if resp["reply"] != "Use a pitched roof." {
		t.Fatalf("reply = %q", resp["reply"])
	}

	if status := env.do(http.MethodPost, "/api/chat", token, map[string]string{"message": " "}, nil); status != http.StatusBadRequest {
		t.Fatalf("empty message status = %d, want 400", status)
	}
}
