package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ambroz/quotedesk/internal/db"
	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/store"
)

const testJWTSecret = "test-secret"

// testSignatureURI returns a data URI for a small PNG with visible ink.
func testSignatureURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	for x := 0; x < 40; x++ {
		img.Set(x, 5, color.RGBA{0, 0, 0, 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test signature: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testPayload(t *testing.T) map[string]any {
	return map[string]any{
		"name":    "A",
		"email":   "a@b.com",
		"phone":   "555",
		"address": "X",
		"items": []map[string]any{
			{"itemName": "Lamp", "condition": "Good"},
		},
		"signature": testSignatureURI(t),
	}
}

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin account.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.CreateAdmin(ctx, database, "admin", string(hash))

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password123"})
	resp, err := http.Post(server.URL+"/api/admin/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// submit posts a seller payload and returns the created submission.
func submit(t *testing.T, server *httptest.Server, payload map[string]any) model.Submission {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(server.URL+"/api/sellers/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var sub model.Submission
	json.NewDecoder(resp.Body).Decode(&sub)
	return sub
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/admin/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Short password rejected.
	body, _ := json.Marshal(map[string]string{"username": "second", "password": "short"})
	resp, _ := http.Post(server.URL+"/api/admin/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Valid registration.
	body, _ = json.Marshal(map[string]string{"username": "second", "password": "long-enough"})
	resp, _ = http.Post(server.URL+"/api/admin/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if _, leaked := created["password_hash"]; leaked {
		t.Error("password hash must not be echoed")
	}

	// Duplicate username rejected.
	body, _ = json.Marshal(map[string]string{"username": "second", "password": "long-enough"})
	resp, _ = http.Post(server.URL+"/api/admin/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubmitAndFetch(t *testing.T) {
	server, _ := setupTestServer(t)

	sub := submit(t, server, testPayload(t))
	if sub.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if len(sub.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sub.Items))
	}
	if sub.Items[0].Status != model.StatusPending {
		t.Errorf("expected status Pending, got %q", sub.Items[0].Status)
	}
	if sub.Items[0].AdminQuotedPrice != nil {
		t.Error("expected no quoted price on a fresh submission")
	}

	// Public fetch for the print view.
	resp, _ := http.Get(server.URL + "/api/sellers/" + sub.ID)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(server.URL + "/api/sellers/no-such-id")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubmitValidation(t *testing.T) {
	server, token := setupTestServer(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing name", func(p map[string]any) { p["name"] = "" }, "name"},
		{"bad email", func(p map[string]any) { p["email"] = "nope" }, "email"},
		{"missing phone", func(p map[string]any) { p["phone"] = "" }, "phone"},
		{"missing address", func(p map[string]any) { p["address"] = "" }, "address"},
		{"zero items", func(p map[string]any) { p["items"] = []map[string]any{} }, "items"},
		{"item without name", func(p map[string]any) {
			p["items"] = []map[string]any{{"itemName": "", "condition": "Good"}}
		}, "items.0.itemName"},
		{"item without condition", func(p map[string]any) {
			p["items"] = []map[string]any{{"itemName": "Lamp"}}
		}, "items.0.condition"},
		{"negative estimate", func(p map[string]any) {
			p["items"] = []map[string]any{{"itemName": "Lamp", "condition": "Good", "estimatedValue": -1}}
		}, "items.0.estimatedValue"},
		{"missing signature", func(p map[string]any) { p["signature"] = "" }, "signature"},
		{"blank signature", func(p map[string]any) {
			// 1x1 transparent PNG.
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			var buf bytes.Buffer
			png.Encode(&buf, img)
			p["signature"] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		}, "signature"},
	}

	for _, tt := range tests {
		payload := testPayload(t)
		tt.mutate(payload)

		body, _ := json.Marshal(payload)
		resp, _ := http.Post(server.URL+"/api/sellers/submit", "application/json", bytes.NewReader(body))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, resp.StatusCode)
			resp.Body.Close()
			continue
		}

		var errResp struct {
			Fields map[string]string `json:"fields"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		resp.Body.Close()
		if _, ok := errResp.Fields[tt.field]; !ok {
			t.Errorf("%s: expected error keyed by %q, got %v", tt.name, tt.field, errResp.Fields)
		}
	}

	// Nothing was persisted.
	req, _ := authRequest("GET", server.URL+"/api/admin/submissions", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	var subs []model.Submission
	json.NewDecoder(resp.Body).Decode(&subs)
	resp.Body.Close()
	if len(subs) != 0 {
		t.Errorf("expected no submissions after rejected payloads, got %d", len(subs))
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/admin/submissions")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := authRequest("GET", server.URL+"/api/admin/submissions", "garbage-token", nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateItemPrice(t *testing.T) {
	server, token := setupTestServer(t)
	sub := submit(t, server, testPayload(t))

	// Quote forces Quoted.
	req, _ := authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/0", token,
		map[string]any{"adminQuotedPrice": 42.5, "status": "Quoted"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()
	if item.AdminQuotedPrice == nil || *item.AdminQuotedPrice != 42.5 {
		t.Errorf("expected quoted price 42.5, got %v", item.AdminQuotedPrice)
	}
	if item.Status != model.StatusQuoted {
		t.Errorf("expected status Quoted, got %q", item.Status)
	}

	// Status-only change keeps the price.
	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/0", token,
		map[string]any{"status": "Accepted"})
	resp, _ = http.DefaultClient.Do(req)
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()
	if item.Status != model.StatusAccepted {
		t.Errorf("expected status Accepted, got %q", item.Status)
	}
	if item.AdminQuotedPrice == nil || *item.AdminQuotedPrice != 42.5 {
		t.Errorf("status change must keep the price, got %v", item.AdminQuotedPrice)
	}

	// A later quote flips it back to Quoted, even from Accepted.
	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/0", token,
		map[string]any{"adminQuotedPrice": 50.0})
	resp, _ = http.DefaultClient.Do(req)
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()
	if item.Status != model.StatusQuoted {
		t.Errorf("expected status forced back to Quoted, got %q", item.Status)
	}

	// Validation and not-found cases.
	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/0", token,
		map[string]any{"adminQuotedPrice": -1})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/0", token,
		map[string]any{})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty update, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/items/9", token,
		map[string]any{"status": "Accepted"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for out-of-range index, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateNotes(t *testing.T) {
	server, token := setupTestServer(t)
	sub := submit(t, server, testPayload(t))

	req, _ := authRequest("PUT", server.URL+"/api/admin/submissions/"+sub.ID+"/notes", token,
		map[string]string{"adminNotes": "call seller back"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated model.Submission
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.AdminNotes != "call seller back" {
		t.Errorf("expected admin notes, got %q", updated.AdminNotes)
	}

	req, _ = authRequest("PUT", server.URL+"/api/admin/submissions/no-such-id/notes", token,
		map[string]string{"adminNotes": "x"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown submission, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/admin/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/admin/submissions", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
