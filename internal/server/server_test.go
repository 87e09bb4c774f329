package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	assignmentservice "smartdisc/backend/internal/assignment/service"
	"smartdisc/backend/internal/audit"
	discservice "smartdisc/backend/internal/disc/service"
	identityservice "smartdisc/backend/internal/identity/service"
	"smartdisc/backend/internal/ingest"
	measurementservice "smartdisc/backend/internal/measurement/service"
	"smartdisc/backend/internal/rbac"
	"smartdisc/backend/internal/security"
	"smartdisc/backend/internal/store/storetest"
	throwservice "smartdisc/backend/internal/throw/service"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func newTestServer(t *testing.T) (*Server, *storetest.Mem) {
	t.Helper()
	mem := storetest.New()
	recorder := audit.NewRecorder()
	access, err := rbac.NewEvaluator()
	if err != nil {
		t.Fatalf("rbac: %v", err)
	}
	srv := New(Deps{
		Ingest:       ingest.NewService(mem, recorder, nil, ingest.DeletePolicyKeep),
		Throws:       throwservice.NewService(mem),
		Measurements: measurementservice.NewService(mem),
		Discs:        discservice.NewService(mem, recorder),
		Identity:     identityservice.NewService(mem, security.NewHasher(4)),
		Assignments:  assignmentservice.NewService(mem),
		Audit:        audit.NewQuery(mem),
		Access:       access,
		DB:           fakePinger{},
	})
	return srv, mem
}

func doJSON(t *testing.T, srv *Server, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	return rec, decoded
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

func registerUser(t *testing.T, srv *Server, email, role string) (token, id string) {
	t.Helper()
	body := fmt.Sprintf(`{"first_name":"Alex","last_name":"Tester","email":%q,"password":"secret1","password_confirm":"secret1","role":%q}`, email, role)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %s", email, rec.Code, rec.Body.String())
	}
	user, _ := resp["user"].(map[string]any)
	id, _ = user["id"].(string)
	token, _ = resp["token"].(string)
	if token == "" || id == "" {
		t.Fatalf("register %s: missing token or user id in %v", email, resp)
	}
	return token, id
}

func registerDisc(t *testing.T, srv *Server, id string) {
	t.Helper()
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/discs", "", fmt.Sprintf(`{"id":%q,"name":"Disc %s"}`, id, id))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register disc %s: status = %d", id, rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, resp := doJSON(t, srv, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp["status"] != "ok" || resp["db"] != "up" {
		t.Fatalf("body = %v", resp)
	}
}

func TestHealthDBDown(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.db = fakePinger{err: errors.New("refused")}
	rec, resp := doJSON(t, srv, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp["status"] != "degraded" || resp["db"] != "down" {
		t.Fatalf("body = %v", resp)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, resp := doJSON(t, srv, http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, resp); code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND", code)
	}
}

func TestAuthFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv, "alex@example.com", "player")

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/auth/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d", rec.Code)
	}
	user, _ := resp["user"].(map[string]any)
	if user["email"] != "alex@example.com" {
		t.Fatalf("me: user = %v", user)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: status = %d, want 401", rec.Code)
	}

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", `{"email":"alex@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status = %d, want 401", rec.Code)
	}
	if code := errorCode(t, resp); code != "UNAUTHORIZED" {
		t.Fatalf("bad login: code = %s", code)
	}

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", `{"email":"alex@example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK || resp["ok"] != true {
		t.Fatalf("login: status = %d, body %v", rec.Code, resp)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/auth/logout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/auth/me", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: status = %d, want 401", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "dup@example.com", "player")
	body := `{"first_name":"B","last_name":"C","email":"dup@example.com","password":"secret1","password_confirm":"secret1","role":"player"}`
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, resp); code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
}

func TestThrowLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	_, playerID := registerUser(t, srv, "player@example.com", "player")

	body := fmt.Sprintf(`{"disc_id":"smartdisc-001","player_id":%q,"rotation":120}`, playerID)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp["is_new_record"] != true || resp["record_metric"] != "rotation" {
		t.Fatalf("create: body = %v", resp)
	}
	throwID, _ := resp["id"].(string)
	if !strings.HasPrefix(throwID, "wurf_") {
		t.Fatalf("create: id = %q", throwID)
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/throws", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	if resp["count"] != float64(1) {
		t.Fatalf("list: count = %v, want 1", resp["count"])
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/throws/"+throwID, "", "")
	if rec.Code != http.StatusOK || resp["id"] != throwID {
		t.Fatalf("get: status = %d, body %v", rec.Code, resp)
	}
	if resp["rotation"] != float64(120) || resp["height"] != nil {
		t.Fatalf("get: metrics = %v / %v", resp["rotation"], resp["height"])
	}

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/throws/"+throwID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec, resp = doJSON(t, srv, http.MethodGet, "/api/throws/"+throwID, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, resp); code != "NOT_FOUND" {
		t.Fatalf("get deleted: code = %s", code)
	}
}

func TestThrowValidationEnvelope(t *testing.T) {
	srv, mem := newTestServer(t)
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"rotation":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("code = %s", code)
	}
	if mem.ThrowCount() != 0 || mem.AuditCount() != 0 {
		t.Fatalf("validation failure left rows: throws=%d audits=%d", mem.ThrowCount(), mem.AuditCount())
	}
}

func TestCompleteThrowWithMeasurements(t *testing.T) {
	srv, mem := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")

	body := `{
		"disc_id": "smartdisc-001",
		"height": 14.5,
		"measurements": [
			{"taken_at": "2026-08-01T10:00:00Z", "accel_x": 0.1},
			{"taken_at": "2026-08-01T10:00:01Z", "ax": 0.2},
			{"taken_at": "2026-08-01T10:00:02Z", "gyro_z": 1.5}
		]
	}`
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws/complete", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp["inserted"] != float64(3) {
		t.Fatalf("inserted = %v, want 3", resp["inserted"])
	}
	if mem.MeasurementCount() != 3 {
		t.Fatalf("stored measurements = %d, want 3", mem.MeasurementCount())
	}

	throwID, _ := resp["id"].(string)
	rec, resp = doJSON(t, srv, http.MethodGet, "/api/measurements?throw_id="+throwID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	items, _ := resp["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("list: %d items, want 3", len(items))
	}
}

func TestMeasurementAxisAliasConflict(t *testing.T) {
	srv, mem := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")

	body := `{
		"disc_id": "smartdisc-001",
		"height": 3,
		"measurements": [{"taken_at": "2026-08-01T10:00:00Z", "accel_x": 0.1, "ax": 0.2}]
	}`
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws/complete", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("code = %s", code)
	}
	if mem.ThrowCount() != 0 {
		t.Fatalf("conflicting aliases left %d throws", mem.ThrowCount())
	}
}

func TestSingleMeasurementAllocatesSequence(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"disc_id":"smartdisc-001","rotation":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create throw: status = %d", rec.Code)
	}
	throwID, _ := resp["id"].(string)

	for want := 0; want < 2; want++ {
		body := fmt.Sprintf(`{"throw_id":%q,"taken_at":"2026-08-01T10:00:00Z","gx":0.4}`, throwID)
		rec, resp = doJSON(t, srv, http.MethodPost, "/api/measurements", "", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create measurement: status = %d, body %s", rec.Code, rec.Body.String())
		}
		if resp["sequence_nr"] != float64(want) {
			t.Fatalf("sequence_nr = %v, want %d", resp["sequence_nr"], want)
		}
	}
}

func TestBulkMeasurementsUnknownThrow(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"throw_id":"wurf_missing","measurements":[{"taken_at":"2026-08-01T10:00:00Z"}]}`
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/measurements/bulk", "", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, resp); code != "NOT_FOUND" {
		t.Fatalf("code = %s", code)
	}
}

func TestDiscDuplicateConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/discs", "", `{"id":"smartdisc-001"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, resp); code != "CONFLICT" {
		t.Fatalf("code = %s", code)
	}
}

func TestRevisionHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"disc_id":"smartdisc-001","rotation":9}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	throwID, _ := resp["id"].(string)
	doJSON(t, srv, http.MethodDelete, "/api/throws/"+throwID, "", "")

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/revisions/throws/"+throwID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status = %d", rec.Code)
	}
	items, _ := resp["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("history: %d records, want 2 (insert + delete)", len(items))
	}
	first, _ := items[0].(map[string]any)
	if first["operation"] != "DELETE" {
		t.Fatalf("newest record operation = %v, want DELETE", first["operation"])
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/revisions/sessions/x", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad table: status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("bad table: code = %s", code)
	}
}

func TestAdminOverviewRequiresTrainer(t *testing.T) {
	srv, _ := newTestServer(t)
	playerToken, _ := registerUser(t, srv, "player@example.com", "player")
	trainerToken, _ := registerUser(t, srv, "trainer@example.com", "trainer")

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/admin/overview", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", rec.Code)
	}

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/admin/overview", playerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player: status = %d, want 403", rec.Code)
	}
	if code := errorCode(t, resp); code != "FORBIDDEN" {
		t.Fatalf("player: code = %s", code)
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/admin/overview", trainerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trainer: status = %d", rec.Code)
	}
	users, _ := resp["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("trainer: %d users, want 2", len(users))
	}
}

func TestAssignmentAccess(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	trainerToken, _ := registerUser(t, srv, "trainer@example.com", "trainer")
	playerToken, playerID := registerUser(t, srv, "p1@example.com", "player")
	otherToken, _ := registerUser(t, srv, "p2@example.com", "player")

	body := fmt.Sprintf(`{"disc_id":"smartdisc-001","player_id":%q}`, playerID)
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/assignments", playerToken, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player assign: status = %d, want 403", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodPost, "/api/assignments", trainerToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("trainer assign: status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/assignments", trainerToken, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate assign: status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, resp); code != "CONFLICT" {
		t.Fatalf("duplicate assign: code = %s", code)
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/assignments/player/"+playerID, playerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("own assignments: status = %d", rec.Code)
	}
	as, _ := resp["assignments"].([]any)
	if len(as) != 1 {
		t.Fatalf("own assignments: %d, want 1", len(as))
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/assignments/player/"+playerID, otherToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign assignments: status = %d, want 403", rec.Code)
	}

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/assignments/my-discs", playerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("my-discs: status = %d", rec.Code)
	}
	discs, _ := resp["discs"].([]any)
	if len(discs) != 1 {
		t.Fatalf("my-discs: %d, want 1", len(discs))
	}
}

func TestStatsSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"disc_id":"smartdisc-001","rotation":10,"height":2}`)
	doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"disc_id":"smartdisc-001","rotation":30}`)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/stats/summary", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", resp["count"])
	}
	if resp["rotation_max"] != float64(30) || resp["rotation_avg"] != float64(20) {
		t.Fatalf("rotation stats = %v / %v", resp["rotation_max"], resp["rotation_avg"])
	}
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	registerDisc(t, srv, "smartdisc-001")
	doJSON(t, srv, http.MethodPost, "/api/throws", "", `{"disc_id":"smartdisc-001","rotation":10}`)

	req := httptest.NewRequest(http.MethodGet, "/api/export.csv", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, throwservice.ExportFilename) {
		t.Fatalf("content-disposition = %q", got)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("%d csv lines, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id;disc_id;player_id") {
		t.Fatalf("header = %q", lines[0])
	}
}
