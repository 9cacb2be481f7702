package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/snapreward/apiserver/types"
)

func TestSignup_CreatesAdminWithToken(t *testing.T) {
	api := newTestAPI(t)

	var resp AuthResponse
	recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret123",
	}, &resp)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", recorder.Code)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.Username != "admin" {
		t.Fatalf("username = %q, want %q", resp.User.Username, "admin")
	}
	if strings.Contains(recorder.Body.String(), "secret123") {
		t.Fatal("response leaked the plaintext password")
	}

	stored, err := api.store.Users().GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash == "secret123" || stored.PasswordHash == "" {
		t.Fatalf("password stored without hashing: %q", stored.PasswordHash)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	api := newTestAPI(t)

	req := SignupRequest{Username: "admin", Email: "admin@example.com", Password: "secret123"}
	if recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", req, nil); recorder.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d, want 201", recorder.Code)
	}

	recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", req, nil)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("second signup status = %d, want 409", recorder.Code)
	}
}

func TestSignup_Validation(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"missing username", SignupRequest{Email: "a@example.com", Password: "secret123"}},
		{"missing email", SignupRequest{Username: "admin", Password: "secret123"}},
		{"missing password", SignupRequest{Username: "admin", Email: "a@example.com"}},
		{"short password", SignupRequest{Username: "admin", Email: "a@example.com", Password: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", tc.req, nil)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", recorder.Code)
			}
		})
	}
}

func TestLogin_SuccessAndFailuresIndistinguishable(t *testing.T) {
	api := newTestAPI(t)

	signup := SignupRequest{Username: "admin", Email: "admin@example.com", Password: "secret123"}
	if recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", signup, nil); recorder.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", recorder.Code)
	}

	var resp AuthResponse
	recorder := api.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "admin",
		Password: "secret123",
	}, &resp)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", recorder.Code)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	wrongPassword := api.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "admin",
		Password: "wrong",
	}, nil)
	unknownUser := api.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "nobody",
		Password: "secret123",
	}, nil)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", wrongPassword.Code, unknownUser.Code)
	}
	if errorMessage(t, wrongPassword) != errorMessage(t, unknownUser) {
		t.Fatal("wrong-password and unknown-user responses differ")
	}
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	api := newTestAPI(t)

	var signedUp AuthResponse
	recorder := api.doJSON(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret123",
	}, &signedUp)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", recorder.Code)
	}

	var me types.User
	recorder = api.doJSON(t, http.MethodGet, "/api/auth/me", signedUp.Token, nil, &me)
	if recorder.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", recorder.Code)
	}
	if me.ID != signedUp.User.ID || me.Username != "admin" {
		t.Fatalf("me = %+v, want signed-up user", me)
	}
	if strings.Contains(recorder.Body.String(), "password") {
		t.Fatal("me response leaked password material")
	}

	if recorder := api.doJSON(t, http.MethodGet, "/api/auth/me", "", nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", recorder.Code)
	}
}

func TestMe_UnknownSubject(t *testing.T) {
	api := newTestAPI(t)

	// Token for a user id that was never created.
	if recorder := api.doJSON(t, http.MethodGet, "/api/auth/me", api.token(t), nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	api := newTestAPI(t)

	if recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/", "", nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", recorder.Code)
	}
	if recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/", "not-a-jwt", nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", recorder.Code)
	}

	forged, err := issueToken(1, []byte("other-secret"), defaultTokenTTL)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/", forged, nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: status = %d, want 401", recorder.Code)
	}

	if recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/", api.token(t), nil, nil); recorder.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", recorder.Code)
	}
}
