package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/goserg/todoserver/auth/hasher"
	authservice "github.com/goserg/todoserver/auth/service"
	authsqlite "github.com/goserg/todoserver/auth/storage/sqlite"
	"github.com/goserg/todoserver/auth/token"
	"github.com/goserg/todoserver/internal/cache/mem"
	"github.com/goserg/todoserver/internal/clock"
	"github.com/goserg/todoserver/internal/config"
	"github.com/goserg/todoserver/internal/service"
	"github.com/goserg/todoserver/internal/storage"
	todosqlite "github.com/goserg/todoserver/internal/storage/sqlite"
	"github.com/goserg/todoserver/internal/web/webpath"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type WebSuite struct {
	suite.Suite

	clock  *clock.Fake
	codec  *token.Codec
	server *Server
}

func TestWebSuite(t *testing.T) {
	suite.Run(t, new(WebSuite))
}

func (s *WebSuite) SetupTest() {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(s.T().TempDir(), "todo.sqlite"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	l := logrus.New()
	l.SetOutput(io.Discard)
	s.clock = clock.NewFake(t0)
	cfg := authservice.Config{
		Secret:          "web-secret",
		AccessTokenTTL:  3600,
		RefreshTokenTTL: 7200,
		AdminEmail:      adminEmail,
		AdminPassword:   adminPassword,
		BcryptCost:      bcrypt.MinCost,
	}
	s.codec = token.New(cfg.Secret, s.clock)
	userStorage := mem.New(authsqlite.New(l, db))
	auth, err := authservice.New(ctx, l, cfg, userStorage, hasher.NewBcrypt(cfg.BcryptCost), s.codec, s.clock)
	s.Require().NoError(err)

	reg := prometheus.NewRegistry()
	authservice.RegisterMetrics(reg)
	s.server = New(l, config.Server{Host: "127.0.0.1", Port: 8000, Environment: config.Testing}, Deps{
		Auth:     auth,
		Guard:    authservice.NewGuard(l, s.codec),
		Users:    service.NewUserService(l, auth, userStorage),
		Todos:    service.NewTodoService(l, todosqlite.New(l, db), s.clock),
		Clock:    s.clock,
		Gatherer: reg,
	})
}

type response struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (s *WebSuite) do(method string, path string, bearer string, body any) response {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.send(req)
}

func (s *WebSuite) send(req *http.Request) response {
	resp, err := s.server.App().Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return response{status: resp.StatusCode, body: data, cookies: resp.Cookies()}
}

func (s *WebSuite) decode(r response, v any) {
	s.Require().NoError(json.Unmarshal(r.body, v), string(r.body))
}

func (s *WebSuite) login(email string, password string) tokenPairResponse {
	r := s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: email, Password: password})
	s.Require().Equal(http.StatusOK, r.status, string(r.body))
	var pair tokenPairResponse
	s.decode(r, &pair)
	return pair
}

func (s *WebSuite) createUser(adminToken string, username string, role int) userResponse {
	r := s.do(http.MethodPost, webpath.Users, adminToken, createUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: username + "-password",
		Role:     &role,
	})
	s.Require().Equal(http.StatusCreated, r.status, string(r.body))
	var user userResponse
	s.decode(r, &user)
	return user
}

func (s *WebSuite) errorMsg(r response) string {
	var body errorResponse
	s.decode(r, &body)
	return body.Details.Msg
}

func (s *WebSuite) TestHealth() {
	r := s.do(http.MethodGet, webpath.Health, "", nil)
	s.Equal(http.StatusOK, r.status)
	s.JSONEq(`{"status":"ok"}`, string(r.body))
}

func (s *WebSuite) TestLogin() {
	r := s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: adminEmail, Password: adminPassword})
	s.Require().Equal(http.StatusOK, r.status)

	var pair tokenPairResponse
	s.decode(r, &pair)
	s.NotEmpty(pair.Token)
	s.NotEmpty(pair.RefreshToken)
	s.Equal("2024-05-01T13:00:00Z", pair.TokenExpirationDate)
	s.Equal("2024-05-01T14:00:00Z", pair.RefreshTokenExpirationDate)

	s.Require().Len(r.cookies, 1)
	cookie := r.cookies[0]
	s.Equal(refreshTokenCookie, cookie.Name)
	s.Equal(pair.RefreshToken, cookie.Value)
	s.True(cookie.HttpOnly)
	s.False(cookie.Secure)
	s.Equal(http.SameSiteStrictMode, cookie.SameSite)
	s.Equal(7200, cookie.MaxAge)
}

func (s *WebSuite) TestLogin_Failures() {
	unknown := s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: "nobody@example.com", Password: adminPassword})
	wrong := s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: adminEmail, Password: "wrong-password"})

	s.Equal(http.StatusUnauthorized, unknown.status)
	s.Equal(http.StatusUnauthorized, wrong.status)
	s.Equal(string(unknown.body), string(wrong.body))
	s.Equal(authservice.ErrInvalidCredentials.Error(), s.errorMsg(wrong))

	invalid := s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: "not-an-email", Password: ""})
	s.Equal(http.StatusBadRequest, invalid.status)
	var body errorResponse
	s.decode(invalid, &body)
	s.Len(body.Details.Errors, 2)
}

func (s *WebSuite) TestMe() {
	pair := s.login(adminEmail, adminPassword)

	r := s.do(http.MethodGet, webpath.AuthMe, pair.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var me identityResponse
	s.decode(r, &me)
	s.Equal(adminEmail, me.Email)
	s.Equal([]int{1}, me.Roles)
	s.True(me.IsAdmin)
}

func (s *WebSuite) TestMe_Unauthenticated() {
	pair := s.login(adminEmail, adminPassword)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic " + pair.Token},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken},
		{name: "garbage", header: "Bearer garbage"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(http.MethodGet, webpath.AuthMe, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r := s.send(req)
			s.Equal(http.StatusUnauthorized, r.status)
			s.Equal(authservice.ErrUnauthenticated.Error(), s.errorMsg(r))
		})
	}
}

func (s *WebSuite) TestMe_Expired() {
	pair := s.login(adminEmail, adminPassword)
	s.clock.Advance(time.Hour)

	r := s.do(http.MethodGet, webpath.AuthMe, pair.Token, nil)
	s.Equal(http.StatusUnauthorized, r.status)
}

func (s *WebSuite) TestRefresh_Sources() {
	pair := s.login(adminEmail, adminPassword)
	s.clock.Advance(time.Hour + time.Second)

	s.Run("body", func() {
		r := s.do(http.MethodPost, webpath.AuthRefresh, "", refreshRequest{RefreshToken: pair.RefreshToken})
		s.Require().Equal(http.StatusOK, r.status, string(r.body))
		var refreshed tokenPairResponse
		s.decode(r, &refreshed)
		s.Equal("2024-05-01T14:00:01Z", refreshed.TokenExpirationDate)
		s.Equal("2024-05-01T15:00:01Z", refreshed.RefreshTokenExpirationDate)
	})
	s.Run("query", func() {
		r := s.do(http.MethodPost, webpath.AuthRefresh+"?refresh_token="+pair.RefreshToken, "", nil)
		s.Equal(http.StatusOK, r.status, string(r.body))
	})
	s.Run("cookie", func() {
		req := httptest.NewRequest(http.MethodPost, webpath.AuthRefresh, nil)
		req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: pair.RefreshToken})
		r := s.send(req)
		s.Equal(http.StatusOK, r.status, string(r.body))
	})
	s.Run("missing", func() {
		r := s.do(http.MethodPost, webpath.AuthRefresh, "", nil)
		s.Equal(http.StatusUnauthorized, r.status)
		s.Equal(authservice.ErrInvalidRefreshToken.Error(), s.errorMsg(r))
	})
	s.Run("expired", func() {
		s.clock.Advance(time.Hour)
		r := s.do(http.MethodPost, webpath.AuthRefresh, "", refreshRequest{RefreshToken: pair.RefreshToken})
		s.Equal(http.StatusUnauthorized, r.status)
	})
}

func (s *WebSuite) TestLogout() {
	r := s.do(http.MethodPost, webpath.AuthLogout, "", nil)
	s.Equal(http.StatusNoContent, r.status)
	s.Require().Len(r.cookies, 1)
	s.Equal(refreshTokenCookie, r.cookies[0].Name)
	s.Empty(r.cookies[0].Value)
}

func (s *WebSuite) TestUsers_AdminOnly() {
	admin := s.login(adminEmail, adminPassword)
	alice := s.createUser(admin.Token, "alice", 0)
	s.Equal("alice@example.com", alice.Email)
	s.Equal(0, alice.Role)

	user := s.login("alice@example.com", "alice-password")
	r := s.do(http.MethodGet, webpath.Users, user.Token, nil)
	s.Equal(http.StatusForbidden, r.status)
	s.Equal(authservice.ErrForbidden.Error(), s.errorMsg(r))

	r = s.do(http.MethodGet, webpath.Users, admin.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var list []userResponse
	s.decode(r, &list)
	s.Len(list, 2)
}

func (s *WebSuite) TestUsers_CRUD() {
	admin := s.login(adminEmail, adminPassword)
	bob := s.createUser(admin.Token, "bob", 0)
	byID := strings.Replace(webpath.UserByID, ":id", bob.ID.String(), 1)

	r := s.do(http.MethodGet, byID, admin.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)

	role := 1
	r = s.do(http.MethodPut, byID, admin.Token, updateUserRequest{Role: &role})
	s.Require().Equal(http.StatusOK, r.status, string(r.body))
	var updated userResponse
	s.decode(r, &updated)
	s.Equal(1, updated.Role)

	duplicate := s.do(http.MethodPost, webpath.Users, admin.Token, createUserRequest{
		Username: "bobby",
		Email:    "bob@example.com",
		Password: "password",
	})
	s.Equal(http.StatusConflict, duplicate.status)

	r = s.do(http.MethodDelete, byID, admin.Token, nil)
	s.Equal(http.StatusNoContent, r.status)
	r = s.do(http.MethodGet, byID, admin.Token, nil)
	s.Equal(http.StatusNotFound, r.status)

	r = s.do(http.MethodGet, strings.Replace(webpath.UserByID, ":id", "not-a-uuid", 1), admin.Token, nil)
	s.Equal(http.StatusBadRequest, r.status)
}

func (s *WebSuite) TestUsers_Validation() {
	admin := s.login(adminEmail, adminPassword)
	role := 9
	r := s.do(http.MethodPost, webpath.Users, admin.Token, createUserRequest{
		Username: "ab",
		Email:    "nope",
		Password: "123",
		Role:     &role,
	})
	s.Equal(http.StatusBadRequest, r.status)
	var body errorResponse
	s.decode(r, &body)
	s.Len(body.Details.Errors, 4)

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{name: "73 bytes", password: strings.Repeat("x", 73), want: http.StatusBadRequest},
		{name: "72 bytes", password: strings.Repeat("x", 72), want: http.StatusCreated},
		{name: "multibyte over limit", password: strings.Repeat("ж", 37), want: http.StatusBadRequest},
	}
	for i, tt := range tests {
		s.Run(tt.name, func() {
			r := s.do(http.MethodPost, webpath.Users, admin.Token, createUserRequest{
				Username: "longpass" + strconv.Itoa(i),
				Email:    "longpass" + strconv.Itoa(i) + "@example.com",
				Password: tt.password,
			})
			s.Equal(tt.want, r.status, string(r.body))
		})
	}
}

func (s *WebSuite) TestUsers_UpdatePasswordTooLong() {
	admin := s.login(adminEmail, adminPassword)
	bob := s.createUser(admin.Token, "bob", 0)
	byID := strings.Replace(webpath.UserByID, ":id", bob.ID.String(), 1)

	long := strings.Repeat("x", 73)
	r := s.do(http.MethodPut, byID, admin.Token, updateUserRequest{Password: &long})
	s.Equal(http.StatusBadRequest, r.status, string(r.body))
}

func (s *WebSuite) TestTodos_Ownership() {
	admin := s.login(adminEmail, adminPassword)
	s.createUser(admin.Token, "alice", 0)
	s.createUser(admin.Token, "bob", 0)
	alice := s.login("alice@example.com", "alice-password")
	bob := s.login("bob@example.com", "bob-password")

	r := s.do(http.MethodPost, webpath.Todos, alice.Token, createTodoRequest{Title: "buy milk", Description: "two liters", Priority: 3})
	s.Require().Equal(http.StatusCreated, r.status, string(r.body))
	var todo todoResponse
	s.decode(r, &todo)
	s.Equal("2024-05-01T12:00:00Z", todo.CreatedAt)
	byID := strings.Replace(webpath.TodoByID, ":id", todo.ID.String(), 1)

	r = s.do(http.MethodGet, byID, bob.Token, nil)
	s.Equal(http.StatusNotFound, r.status)
	r = s.do(http.MethodDelete, byID, bob.Token, nil)
	s.Equal(http.StatusNotFound, r.status)

	r = s.do(http.MethodGet, webpath.Todos, bob.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var bobTodos []todoResponse
	s.decode(r, &bobTodos)
	s.Empty(bobTodos)

	r = s.do(http.MethodGet, webpath.Todos, admin.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var all []todoResponse
	s.decode(r, &all)
	s.Len(all, 1)

	completed := true
	r = s.do(http.MethodPut, byID, alice.Token, updateTodoRequest{Completed: &completed})
	s.Require().Equal(http.StatusOK, r.status, string(r.body))
	var updated todoResponse
	s.decode(r, &updated)
	s.True(updated.Completed)

	r = s.do(http.MethodDelete, byID, alice.Token, nil)
	s.Equal(http.StatusNoContent, r.status)
	r = s.do(http.MethodGet, byID, alice.Token, nil)
	s.Equal(http.StatusNotFound, r.status)
}

func (s *WebSuite) TestTodos_ListCompleted() {
	admin := s.login(adminEmail, adminPassword)
	s.createUser(admin.Token, "alice", 0)
	alice := s.login("alice@example.com", "alice-password")

	var ids []string
	for _, title := range []string{"write report", "call mom"} {
		r := s.do(http.MethodPost, webpath.Todos, alice.Token, createTodoRequest{Title: title, Description: "soon", Priority: 2})
		s.Require().Equal(http.StatusCreated, r.status, string(r.body))
		var todo todoResponse
		s.decode(r, &todo)
		ids = append(ids, todo.ID.String())
	}
	completed := true
	r := s.do(http.MethodPut, strings.Replace(webpath.TodoByID, ":id", ids[0], 1), alice.Token, updateTodoRequest{Completed: &completed})
	s.Require().Equal(http.StatusOK, r.status, string(r.body))

	tests := []struct {
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{query: "", wantStatus: http.StatusOK, wantIDs: ids},
		{query: "?completed=true", wantStatus: http.StatusOK, wantIDs: ids[:1]},
		{query: "?completed=false", wantStatus: http.StatusOK, wantIDs: ids[1:]},
		{query: "?completed=1", wantStatus: http.StatusOK, wantIDs: ids[:1]},
		{query: "?completed=maybe", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run("list"+tt.query, func() {
			r := s.do(http.MethodGet, webpath.Todos+tt.query, alice.Token, nil)
			s.Require().Equal(tt.wantStatus, r.status, string(r.body))
			if tt.wantStatus != http.StatusOK {
				return
			}
			var list []todoResponse
			s.decode(r, &list)
			got := make([]string, 0, len(list))
			for _, todo := range list {
				got = append(got, todo.ID.String())
			}
			s.ElementsMatch(tt.wantIDs, got)
		})
	}
}

func (s *WebSuite) TestTodos_Validation() {
	admin := s.login(adminEmail, adminPassword)

	r := s.do(http.MethodPost, webpath.Todos, admin.Token, createTodoRequest{Title: "ok title", Description: "ok", Priority: 11})
	s.Equal(http.StatusBadRequest, r.status)

	r = s.do(http.MethodPut, strings.Replace(webpath.TodoByID, ":id", uuid.NewString(), 1), admin.Token, updateTodoRequest{})
	s.Equal(http.StatusNotFound, r.status)

	r = s.do(http.MethodGet, webpath.Todos, "", nil)
	s.Equal(http.StatusUnauthorized, r.status)
}

func (s *WebSuite) TestMetrics() {
	s.login(adminEmail, adminPassword)
	s.do(http.MethodPost, webpath.AuthLogin, "", loginRequest{Email: adminEmail, Password: "wrong-password"})

	r := s.do(http.MethodGet, webpath.Metrics, "", nil)
	s.Require().Equal(http.StatusOK, r.status)
	s.Contains(string(r.body), `todoserver_auth_logins_total{result="success"}`)
	s.Contains(string(r.body), `todoserver_auth_logins_total{result="invalid_credentials"}`)
}

func (s *WebSuite) TestUnknownRoute() {
	r := s.do(http.MethodGet, "/api/v1/nope", "", nil)
	s.Equal(http.StatusNotFound, r.status)
	s.NotEmpty(s.errorMsg(r))
}
