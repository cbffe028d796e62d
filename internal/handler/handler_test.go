package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tripsplit/internal/auth"
	"tripsplit/internal/service"
	"tripsplit/internal/storage/sqlite"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	groups := service.NewGroupService(store)

	return NewRouter(Services{
		Auth:     service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		Groups:   groups,
		Expenses: service.NewExpenseService(store),
		Calendar: service.NewCalendarService(store),
		Fx:       service.NewFxService(nil, "http://127.0.0.1:0", ""),
		MyPage:   service.NewMyPageService(store, groups),
		JWT:      jwtManager,
	})
}

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

// signUp registers a user and returns their ID and token.
func signUp(t *testing.T, router *gin.Engine, name, email string) (string, string) {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/sign-up", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "correct horse",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("sign up failed with %d: %s", w.Code, w.Body.String())
	}
	var session struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &session); err != nil {
		t.Fatalf("invalid session payload: %v", err)
	}
	return session.UserID, session.Token
}

func createGroup(t *testing.T, router *gin.Engine, token string, memberEmails ...string) string {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/api/groups", token, gin.H{
		"name":         "Jeju 2026",
		"startDate":    "2026-05-01",
		"endDate":      "2026-05-07",
		"memberEmails": memberEmails,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create group failed with %d: %s", w.Code, w.Body.String())
	}
	var group struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &group); err != nil {
		t.Fatalf("invalid group payload: %v", err)
	}
	return group.ID
}

func TestRouter_Auth(t *testing.T) {
	router := newTestRouter(t)

	t.Run("protected routes reject missing token", func(t *testing.T) {
		w, resp := doJSON(t, router, http.MethodGet, "/api/groups", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if resp.Code != "UA" {
			t.Errorf("expected code UA, got %q", resp.Code)
		}
	})

	t.Run("protected routes reject garbage token", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodGet, "/api/groups", "not-a-jwt", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("sign in with wrong password", func(t *testing.T) {
		signUp(t, router, "Alice", "alice@example.com")
		w, resp := doJSON(t, router, http.MethodPost, "/api/auth/sign-in", "", gin.H{
			"email":    "alice@example.com",
			"password": "wrong horse",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if resp.Code != "UA" {
			t.Errorf("expected code UA, got %q", resp.Code)
		}
	})
}

func TestRouter_ExpenseFlow(t *testing.T) {
	router := newTestRouter(t)

	aliceID, aliceToken := signUp(t, router, "Alice", "alice@example.com")
	bobID, _ := signUp(t, router, "Bob", "bob@example.com")
	_, oscarToken := signUp(t, router, "Oscar", "oscar@example.com")
	groupID := createGroup(t, router, aliceToken, "bob@example.com")

	t.Run("percent split end to end", func(t *testing.T) {
		w, resp := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/groups/%s/expenses", groupID), aliceToken, gin.H{
				"name":      "hotel",
				"amount":    "250.00",
				"spentAt":   "2026-05-03",
				"splitMode": "by_percent",
				"participants": []gin.H{
					{"userId": aliceID, "percent": 60},
					{"userId": bobID, "percent": 40},
				},
			})
		if w.Code != http.StatusCreated {
			t.Fatalf("create expense failed with %d: %s", w.Code, w.Body.String())
		}
		if resp.Code != "SU" {
			t.Errorf("expected code SU, got %q", resp.Code)
		}

		var detail struct {
			ID           string `json:"id"`
			Participants []struct {
				Email       string `json:"email"`
				ShareAmount string `json:"shareAmount"`
			} `json:"participants"`
		}
		if err := json.Unmarshal(resp.Data, &detail); err != nil {
			t.Fatalf("invalid expense payload: %v", err)
		}
		if len(detail.Participants) != 2 {
			t.Fatalf("expected 2 participants, got %d", len(detail.Participants))
		}
		if detail.Participants[0].ShareAmount != "150.00" {
			t.Errorf("expected 150.00 for 60%%, got %s", detail.Participants[0].ShareAmount)
		}

		w, _ = doJSON(t, router, http.MethodGet, "/api/expenses/"+detail.ID, aliceToken, nil)
		if w.Code != http.StatusOK {
			t.Errorf("get expense failed with %d", w.Code)
		}
	})

	t.Run("bad percent sum rejected with VF", func(t *testing.T) {
		w, resp := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/groups/%s/expenses", groupID), aliceToken, gin.H{
				"name":      "hotel",
				"amount":    "250.00",
				"spentAt":   "2026-05-03",
				"splitMode": "by_percent",
				"participants": []gin.H{
					{"userId": aliceID, "percent": 60},
					{"userId": bobID, "percent": 30},
				},
			})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if resp.Code != "VF" {
			t.Errorf("expected code VF, got %q", resp.Code)
		}
	})

	t.Run("outsider forbidden with FD", func(t *testing.T) {
		w, resp := doJSON(t, router, http.MethodGet,
			fmt.Sprintf("/api/groups/%s/expenses", groupID), oscarToken, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if resp.Code != "FD" {
			t.Errorf("expected code FD, got %q", resp.Code)
		}
	})

	t.Run("unknown group NF", func(t *testing.T) {
		w, resp := doJSON(t, router, http.MethodPost,
			"/api/groups/nonexistent/expenses", aliceToken, gin.H{
				"name":    "ghost",
				"amount":  "10.00",
				"spentAt": "2026-05-03",
			})
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
		if resp.Code != "NF" {
			t.Errorf("expected code NF, got %q", resp.Code)
		}
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/groups/%s/expenses", groupID), aliceToken, gin.H{
				"amount": "10.00",
			})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestRouter_ReceiptUpload(t *testing.T) {
	router := newTestRouter(t)

	_, aliceToken := signUp(t, router, "Alice", "alice@example.com")
	groupID := createGroup(t, router, aliceToken)

	_, resp := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/groups/%s/expenses", groupID), aliceToken, gin.H{
			"name":    "dinner",
			"amount":  "80.00",
			"spentAt": "2026-05-02",
		})
	var expense struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &expense); err != nil {
		t.Fatalf("invalid expense payload: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "receipt.jpg")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/expenses/"+expense.ID+"/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload failed with %d: %s", w.Code, w.Body.String())
	}

	w2, resp2 := doJSON(t, router, http.MethodGet, "/api/expenses/"+expense.ID+"/receipt", aliceToken, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("get receipt failed with %d", w2.Code)
	}
	var receipt struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(resp2.Data, &receipt); err != nil {
		t.Fatalf("invalid receipt payload: %v", err)
	}
	if receipt.Image == "" {
		t.Error("expected base64 image in response")
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from metrics, got %d", w.Code)
	}
}
