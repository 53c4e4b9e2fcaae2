package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/availability/internal/db"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api"
	"github.com/Nixie-Tech-LLC/availability/internal/http/api/auth/packets"
)

func setupRouter(secret string, store db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api"}, AuthPublicModule(secret, store))
	api.MountGroup(r, api.GroupConfig{Prefix: "/api", Auth: true, SecretKey: secret, Users: store},
		AuthSessionModule(secret, store),
	)
	return r
}

func send(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupLoginAndProfile(t *testing.T) {
	router := setupRouter("supersecret", db.NewMemoryStore())

	w := send(router, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{
		Email: "Test@Example.com", Password: "12345678",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var signup packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	require.NotEmpty(t, signup.Token)

	w = send(router, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{
		Email: "test@example.com", Password: "12345678",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(router, http.MethodGet, "/api/auth/current_profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(router, http.MethodPost, "/api/auth/login", "", packets.LoginRequest{
		Email: "test@example.com", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(router, http.MethodPost, "/api/auth/login", "", packets.LoginRequest{
		Email: "test@example.com", Password: "12345678",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = send(router, http.MethodGet, "/api/auth/current_profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile packets.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "test@example.com", profile.Email)
}

func TestUpdateCurrentProfile(t *testing.T) {
	store := db.NewMemoryStore()
	router := setupRouter("supersecret", store)

	w := send(router, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{Email: "a@example.com", Password: "12345678"})
	require.Equal(t, http.StatusOK, w.Code)
	var tok packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	w = send(router, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{Email: "b@example.com", Password: "12345678"})
	require.Equal(t, http.StatusOK, w.Code)

	w = send(router, http.MethodPut, "/api/auth/current_profile", tok.Token, packets.UpdateCurrentProfileRequest{Email: "b@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	name := "Ada"
	w = send(router, http.MethodPut, "/api/auth/current_profile", tok.Token, packets.UpdateCurrentProfileRequest{Email: "ada@example.com", Name: &name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile packets.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "ada@example.com", profile.Email)
	require.NotNil(t, profile.Name)
	assert.Equal(t, "Ada", *profile.Name)
}
