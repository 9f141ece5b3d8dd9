package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybr/vybr-backend/internal/testutil"
)

func TestAuthEndpoints_RequestValidation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name string
		path string
		body map[string]string
	}{
		{"register missing email", "/auth/register", map[string]string{"password": "Testpass123"}},
		{"register malformed email", "/auth/register", map[string]string{"email": "not-an-email", "password": "Testpass123"}},
		{"register missing password", "/auth/register", map[string]string{"email": "a@test.edu"}},
		{"verify short code", "/auth/verify-otp", map[string]string{"email": "a@test.edu", "code": "123"}},
		{"verify non-numeric code", "/auth/verify-otp", map[string]string{"email": "a@test.edu", "code": "abcdef"}},
		{"login missing password", "/auth/login", map[string]string{"email": "a@test.edu"}},
		{"resend missing email", "/auth/resend-otp", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.PostJSON(t, ts.APIURL(tt.path), tt.body, nil)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := testutil.DecodeBody(t, resp)
			assert.Equal(t, "Invalid input data", body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestAuthEndpoints_RegisterVerifyLoginFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	email := "freshman@test.edu"
	password := "Testpass123"

	// register
	resp := testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.DecodeBody(t, resp)
	resp.Body.Close()
	assert.Equal(t, email, body["email"])
	assert.Nil(t, testutil.SessionCookie(resp), "registration must not create a session")

	// login before verification is refused
	resp = testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// wrong code is a 400 regardless of why it failed
	resp = testutil.PostJSON(t, ts.APIURL("/auth/verify-otp"), map[string]string{
		"email": email,
		"code":  "000000",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		// one-in-a-million collision with the real code
		t.Fatalf("expected 400 for a wrong code, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// verify with the delivered code
	code := ts.Mail.LastCode(t, email)
	resp = testutil.PostJSON(t, ts.APIURL("/auth/verify-otp"), map[string]string{
		"email": email,
		"code":  code,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = testutil.DecodeBody(t, resp)
	resp.Body.Close()

	cookie := testutil.SessionCookie(resp)
	require.NotNil(t, cookie, "verification must establish a session")
	assert.True(t, cookie.HttpOnly)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, email, user["email"])
	assert.Equal(t, true, user["isVerified"])

	// login now succeeds and sets a fresh cookie
	resp = testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NotNil(t, testutil.SessionCookie(resp))

	// re-registering a verified account is refused
	resp = testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthEndpoints_LoginFailuresAreUniform(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, _ := testutil.NewUserBuilder().WithEmail("known@test.edu").Build(t, ts.DB.DB)

	unknownResp := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    "unknown@test.edu",
		"password": "Testpass123",
	}, nil)
	defer unknownResp.Body.Close()
	unknownBody := testutil.DecodeBody(t, unknownResp)

	wrongResp := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": "WrongPass999",
	}, nil)
	defer wrongResp.Body.Close()
	wrongBody := testutil.DecodeBody(t, wrongResp)

	assert.Equal(t, http.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(t, unknownResp.StatusCode, wrongResp.StatusCode)
	assert.Equal(t, unknownBody["error"], wrongBody["error"], "unknown email and wrong password must be indistinguishable")
}

func TestAuthEndpoints_ResendOtp(t *testing.T) {
	ts := testutil.NewTestServer(t)
	email := "resender@test.edu"

	resp := testutil.PostJSON(t, ts.APIURL("/auth/resend-otp"), map[string]string{"email": "ghost@test.edu"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"email":    email,
		"password": "Testpass123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = testutil.PostJSON(t, ts.APIURL("/auth/resend-otp"), map[string]string{"email": email}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 2, ts.Mail.SentCount(email))
}

func TestAuthEndpoints_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/logout"), map[string]string{}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := testutil.SessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.LessOrEqual(t, cookie.MaxAge, 0, "logout must expire the cookie")
}
