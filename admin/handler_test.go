package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/admin"
	"github.com/sagarc03/wally/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of admin.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListComments(ctx context.Context, q wally.ListQuery) (wally.ListResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(wally.ListResult), args.Error(1)
}

func (m *MockService) AddComment(ctx context.Context, name, text string) (wally.Comment, error) {
	args := m.Called(ctx, name, text)
	return args.Get(0).(wally.Comment), args.Error(1)
}

func (m *MockService) DeleteComment(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newHandler(config *admin.HandlerConfig) (http.Handler, *MockService) {
	service := new(MockService)
	return admin.NewHandler(config, service).Router(), service
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) admin.ErrorResponse {
	t.Helper()
	var resp admin.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_Health(t *testing.T) {
	router, _ := newHandler(&admin.HandlerConfig{
		Verifier: keybackend.NewMapSecretStore(map[string]string{"mod": "secret"}),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_List(t *testing.T) {
	router, service := newHandler(&admin.HandlerConfig{})

	expected := wally.ListResult{
		Items: []wally.Comment{
			{ID: uuid.New(), Name: "alice", Text: "hi", CreatedAt: time.Now().UTC()},
		},
		NextCursor: "cursor123",
	}
	service.On("ListComments", mock.Anything, wally.ListQuery{Limit: 50, Cursor: "abc"}).Return(expected, nil)

	req := httptest.NewRequest(http.MethodGet, "/comments?limit=50&cursor=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result wally.ListResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "alice", result.Items[0].Name)
	assert.Equal(t, "cursor123", result.NextCursor)

	service.AssertExpectations(t)
}

func TestHandler_List_Limits(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"default", "", 100},
		{"max capped", "?limit=9999", 1000},
		{"zero raised", "?limit=0", 1},
		{"negative raised", "?limit=-5", 1},
		{"invalid ignored", "?limit=abc", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newHandler(&admin.HandlerConfig{})
			service.On("ListComments", mock.Anything, mock.MatchedBy(func(q wally.ListQuery) bool {
				return q.Limit == tt.want
			})).Return(wally.ListResult{Items: []wally.Comment{}}, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/comments"+tt.query, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			service.AssertExpectations(t)
		})
	}
}

func TestHandler_List_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"bad cursor", fmt.Errorf("list: %w: bad cursor", wally.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newHandler(&admin.HandlerConfig{})
			service.On("ListComments", mock.Anything, mock.Anything).Return(wally.ListResult{}, tt.err)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/comments", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Error)
		})
	}
}

func TestHandler_Create(t *testing.T) {
	router, service := newHandler(&admin.HandlerConfig{})

	created := wally.Comment{ID: uuid.New(), Name: "bob", Text: "hello", CreatedAt: time.Now().UTC()}
	service.On("AddComment", mock.Anything, "bob", "hello").Return(created, nil)

	req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"name":"bob","comment":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got wally.Comment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "hello", got.Text)

	service.AssertExpectations(t)
}

func TestHandler_Create_InvalidBody(t *testing.T) {
	router, service := newHandler(&admin.HandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", decodeError(t, rec).Error)
	service.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Create_ValidationError(t *testing.T) {
	router, service := newHandler(&admin.HandlerConfig{})
	service.On("AddComment", mock.Anything, "", "hello").
		Return(wally.Comment{}, fmt.Errorf("add comment: %w: name cannot be empty", wally.ErrInvalidInput))

	req := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"name":"","comment":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "invalid_input", resp.Error)
	assert.Contains(t, resp.Message, "name cannot be empty")
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, service := newHandler(&admin.HandlerConfig{})
		service.On("DeleteComment", mock.Anything, id).Return(nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/"+id.String(), nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		service.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, service := newHandler(&admin.HandlerConfig{})
		service.On("DeleteComment", mock.Anything, id).Return(fmt.Errorf("delete: %w", wally.ErrNotFound))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec).Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, service := newHandler(&admin.HandlerConfig{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/comments/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "DeleteComment", mock.Anything, mock.Anything)
	})
}

func TestHandler_Auth(t *testing.T) {
	config := &admin.HandlerConfig{
		Verifier: keybackend.NewMapSecretStore(map[string]string{"mod": "secret"}),
	}

	t.Run("missing credentials", func(t *testing.T) {
		router, service := newHandler(config)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/comments", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
		service.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
	})

	t.Run("wrong secret", func(t *testing.T) {
		router, _ := newHandler(config)

		req := httptest.NewRequest(http.MethodDelete, "/comments/"+uuid.NewString(), nil)
		req.SetBasicAuth("mod", "nope")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Error)
	})

	t.Run("valid credentials", func(t *testing.T) {
		router, service := newHandler(config)
		service.On("ListComments", mock.Anything, mock.Anything).Return(wally.ListResult{Items: []wally.Comment{}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/comments", nil)
		req.SetBasicAuth("mod", "secret")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandler_CORS_Disabled(t *testing.T) {
	router, service := newHandler(&admin.HandlerConfig{CORS: admin.CORSConfig{Enabled: false}})
	service.On("ListComments", mock.Anything, mock.Anything).Return(wally.ListResult{Items: []wally.Comment{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/comments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_CORS_Enabled_Preflight(t *testing.T) {
	router, _ := newHandler(&admin.HandlerConfig{
		CORS: admin.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/comments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
}
