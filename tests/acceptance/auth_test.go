package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/instaloan/auth-service/internal/dto"
)

func (s *Suite) postJSON(path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewReader(payload))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) signup(email, password string) *http.Response {
	return s.postJSON("/auth/signup", dto.SignupRequest{Email: email, Password: password})
}

func (s *Suite) verifyEmail(email string) {
	token := s.Sender.TokenFor(email)
	s.Require().NotEmpty(token, "signup should have dispatched a verification token")

	resp, err := http.Get(fmt.Sprintf("%s/auth/verify-email?token=%s", s.BaseURL, token))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) login(email, password string) *http.Response {
	return s.postJSON("/auth/login", dto.LoginRequest{Email: email, Password: password})
}

// registerVerified runs signup + email verification and returns nothing; the
// account is ready for login.
func (s *Suite) registerVerified(email, password string) {
	resp := s.signup(email, password)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.verifyEmail(email)
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func (s *Suite) postWithCookie(path string, cookie *http.Cookie) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+path, nil)
	s.Require().NoError(err)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestSignup_Success() {
	resp := s.signup("test@example.com", "pw12345")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Nil(refreshCookie(resp), "signup must not open a session")

	var msg dto.MessageResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&msg))
	s.Contains(msg.Message, "verify")
}

func (s *Suite) TestSignup_DuplicateEmail() {
	resp1 := s.signup("duplicate@example.com", "pw12345")
	resp1.Body.Close()
	s.Require().Equal(http.StatusCreated, resp1.StatusCode)

	resp2 := s.signup("duplicate@example.com", "pw12345")
	defer resp2.Body.Close()

	s.Equal(http.StatusConflict, resp2.StatusCode)
}

func (s *Suite) TestSignup_MissingFields() {
	resp := s.postJSON("/auth/signup", map[string]string{"email": "test@example.com"})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_UnverifiedEmail() {
	resp := s.signup("unverified@example.com", "pw12345")
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	loginResp := s.login("unverified@example.com", "pw12345")
	defer loginResp.Body.Close()

	s.Equal(http.StatusForbidden, loginResp.StatusCode)
}

func (s *Suite) TestLogin_UnknownEmail() {
	resp := s.login("nobody@example.com", "pw12345")
	defer resp.Body.Close()

	// 401, not 404: login failures must not reveal whether the account exists.
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.registerVerified("wrongpass@example.com", "pw12345")

	resp := s.login("wrongpass@example.com", "not-the-password")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestVerifyEmail_InvalidToken() {
	resp, err := http.Get(s.BaseURL + "/auth/verify-email?token=definitely-not-a-token")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRefresh_MissingCookie() {
	resp := s.postWithCookie("/auth/refresh", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestFullSessionLifecycle() {
	s.registerVerified("a@x.com", "pw12345")

	// Login: access token in the body, refresh secret in the cookie.
	loginResp := s.login("a@x.com", "pw12345")
	defer loginResp.Body.Close()
	s.Require().Equal(http.StatusOK, loginResp.StatusCode)

	var loginBody dto.TokenResponse
	s.Require().NoError(json.NewDecoder(loginResp.Body).Decode(&loginBody))
	s.NotEmpty(loginBody.AccessToken)

	cookie := refreshCookie(loginResp)
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)
	s.Equal("/auth", cookie.Path)

	// The access token opens the protected profile route.
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/users/me", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+loginBody.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Require().Equal(http.StatusOK, meResp.StatusCode)

	var me dto.UserResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&me))
	s.Equal("a@x.com", me.Email)
	s.NotEmpty(me.ID)
	s.NotEmpty(me.CreatedAt)

	// Refresh rotates the cookie.
	refreshResp := s.postWithCookie("/auth/refresh", cookie)
	defer refreshResp.Body.Close()
	s.Require().Equal(http.StatusOK, refreshResp.StatusCode)

	var refreshBody dto.TokenResponse
	s.Require().NoError(json.NewDecoder(refreshResp.Body).Decode(&refreshBody))
	s.NotEmpty(refreshBody.AccessToken)

	rotated := refreshCookie(refreshResp)
	s.Require().NotNil(rotated)
	s.NotEqual(cookie.Value, rotated.Value, "refresh must rotate the secret")

	// Replaying the rotated-away secret fails.
	replayResp := s.postWithCookie("/auth/refresh", cookie)
	defer replayResp.Body.Close()
	s.Equal(http.StatusUnauthorized, replayResp.StatusCode)

	// Logout with the live secret, twice; both succeed.
	logoutResp := s.postWithCookie("/auth/logout", rotated)
	logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	logoutAgain := s.postWithCookie("/auth/logout", rotated)
	logoutAgain.Body.Close()
	s.Equal(http.StatusOK, logoutAgain.StatusCode)

	// The revoked secret is dead.
	deadResp := s.postWithCookie("/auth/refresh", rotated)
	defer deadResp.Body.Close()
	s.Equal(http.StatusUnauthorized, deadResp.StatusCode)
}

func (s *Suite) TestGetMe_Unauthorized() {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/users/me", nil)
	s.Require().NoError(err)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
