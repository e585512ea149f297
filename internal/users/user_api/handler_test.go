package user_api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-users/internal/logger"
	"ms-users/internal/models"
	users "ms-users/internal/users/service"
	"ms-users/internal/users/user_api"
)

// MockUserDBLayer is a mock implementation of the UserDBLayer interface
type MockUserDBLayer struct {
	mock.Mock
}

func (m *MockUserDBLayer) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserDBLayer) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	args := m.Called(name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error) {
	args := m.Called(id, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDBLayer) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func setupHandler() (*MockUserDBLayer, http.Handler) {
	mockDB := new(MockUserDBLayer)
	log := logger.NewDiscard()
	handler := user_api.NewHandler(users.NewUserService(mockDB, nil, nil, log), log)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return mockDB, r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCreateUserStoreFailure(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("CreateUser", "Ada", "ada@x.com").Return(nil, errors.New("disk I/O error"))

	rec := serve(h, http.MethodPost, "/users", `{"name":"Ada","email":"ada@x.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create user","message":"disk I/O error"}`, rec.Body.String())
}

func TestCreateUserConflict(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("CreateUser", "Ada", "ada@x.com").Return(nil, models.ErrEmailExists)

	rec := serve(h, http.MethodPost, "/users", `{"name":"Ada","email":"ada@x.com"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Email already exists"}`, rec.Body.String())
}

func TestUpdateUserStoreFailure(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("UpdateUser", int64(4), "Ada", "ada@x.com").Return(nil, errors.New("database is locked"))

	rec := serve(h, http.MethodPut, "/users/4", `{"name":"Ada","email":"ada@x.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to update user","message":"database is locked"}`, rec.Body.String())
}

func TestUpdateUserNotFound(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("UpdateUser", int64(4), "Ada", "ada@x.com").Return(nil, models.ErrUserNotFound)

	rec := serve(h, http.MethodPut, "/users/4", `{"name":"Ada","email":"ada@x.com"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}

func TestUpdateUserMalformedIDSkipsStore(t *testing.T) {
	mockDB, h := setupHandler()

	rec := serve(h, http.MethodPut, "/users/12abc", `{"name":"Ada","email":"ada@x.com"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockDB.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestListUsersStoreFailure(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("ListUsers").Return(nil, errors.New("no such table: users"))

	rec := serve(h, http.MethodGet, "/users", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch users","message":"no such table: users"}`, rec.Body.String())
}

func TestGetUserStoreFailure(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("GetUser", int64(2)).Return(nil, errors.New("connection refused"))

	rec := serve(h, http.MethodGet, "/users/2", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteUserStoreFailure(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("DeleteUser", int64(2)).Return(errors.New("database is locked"))

	rec := serve(h, http.MethodDelete, "/users/2", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to delete user","message":"database is locked"}`, rec.Body.String())
}

func TestDeleteUserMalformedIDSkipsStore(t *testing.T) {
	mockDB, h := setupHandler()

	rec := serve(h, http.MethodDelete, "/users/abc", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, rec.Body.String())
	mockDB.AssertNotCalled(t, "DeleteUser", mock.Anything)
}

func TestCreateUserEmptyBody(t *testing.T) {
	_, h := setupHandler()

	rec := serve(h, http.MethodPost, "/users", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestCreateUserRejectsTrailingData(t *testing.T) {
	mockDB, h := setupHandler()

	for _, body := range []string{
		`{"name":"B","email":"b@x.com"} trailing`,
		`{"name":"B","email":"b@x.com"}{"name":"C","email":"c@x.com"}`,
		`{"name":"B","email":"b@x.com"}}`,
	} {
		rec := serve(h, http.MethodPost, "/users", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String(), body)
	}
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateUserRejectsTrailingData(t *testing.T) {
	mockDB, h := setupHandler()

	rec := serve(h, http.MethodPut, "/users/1", `{"name":"B","email":"b@x.com"} 42`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockDB.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateUserAllowsTrailingWhitespace(t *testing.T) {
	mockDB, h := setupHandler()
	mockDB.On("CreateUser", "B", "b@x.com").Return(&models.User{ID: 1, Name: "B", Email: "b@x.com"}, nil)

	rec := serve(h, http.MethodPost, "/users", "{\"name\":\"B\",\"email\":\"b@x.com\"}\n  ")

	assert.Equal(t, http.StatusCreated, rec.Code)
}
