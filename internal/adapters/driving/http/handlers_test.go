package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthService struct {
	registerFn       func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)
	authenticateFn   func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn  func(ctx context.Context, token string) (*domain.AuthContext, error)
	refreshTokenFn   func(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)
	logoutFn         func(ctx context.Context, token string) error
	changePasswordFn func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) LogoutAll(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, req)
	}
	return errors.New("not implemented")
}

type mockUserService struct {
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return errors.New("not implemented")
}

type mockExtractService struct {
	extractFn func(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error)
}

func (m *mockExtractService) Extract(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

type mockSummarizeService struct {
	summarizeFn func(ctx context.Context, userID string, req driving.SummarizeRequest) (*driving.SummarizeResponse, error)
}

func (m *mockSummarizeService) Summarize(ctx context.Context, userID string, req driving.SummarizeRequest) (*driving.SummarizeResponse, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

type mockAnswerService struct {
	answerFn  func(ctx context.Context, userID string, req driving.QARequest) (*driving.QAResponse, error)
	compareFn func(ctx context.Context, userID string, req driving.CompareRequest) (*driving.CompareResponse, error)
}

func (m *mockAnswerService) Answer(ctx context.Context, userID string, req driving.QARequest) (*driving.QAResponse, error) {
	if m.answerFn != nil {
		return m.answerFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAnswerService) Compare(ctx context.Context, userID string, req driving.CompareRequest) (*driving.CompareResponse, error) {
	if m.compareFn != nil {
		return m.compareFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

type mockChatService struct {
	createFn        func(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error)
	getFn           func(ctx context.Context, userID, chatID string) (*domain.Chat, error)
	listFn          func(ctx context.Context, userID string) ([]*domain.Chat, error)
	deleteFn        func(ctx context.Context, userID, chatID string) error
	messagesFn      func(ctx context.Context, userID, chatID string) ([]*domain.Message, error)
	appendMessageFn func(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error)
}

func (m *mockChatService) Create(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) Get(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, chatID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) List(ctx context.Context, userID string) ([]*domain.Chat, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) Delete(ctx context.Context, userID, chatID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, chatID)
	}
	return errors.New("not implemented")
}

func (m *mockChatService) Messages(ctx context.Context, userID, chatID string) ([]*domain.Message, error) {
	if m.messagesFn != nil {
		return m.messagesFn(ctx, userID, chatID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) AppendMessage(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error) {
	if m.appendMessageFn != nil {
		return m.appendMessageFn(ctx, userID, chatID, role, content)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChatService) PruneIdle(ctx context.Context, idleFor time.Duration) (int, error) {
	return 0, nil
}

type mockRetrievalService struct {
	embedFn      func(ctx context.Context, userID string, req driving.EmbedRequest) (*driving.EmbedResponse, error)
	searchFn     func(ctx context.Context, userID string, req driving.SearchRequest) ([]domain.RetrievalHit, error)
	deletePageFn func(ctx context.Context, userID, pageID string) error
}

func (m *mockRetrievalService) IndexPage(ctx context.Context, userID, pageID string) error {
	return errors.New("not implemented")
}

func (m *mockRetrievalService) Embed(ctx context.Context, userID string, req driving.EmbedRequest) (*driving.EmbedResponse, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRetrievalService) Search(ctx context.Context, userID string, req driving.SearchRequest) ([]domain.RetrievalHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRetrievalService) DeletePage(ctx context.Context, userID, pageID string) error {
	if m.deletePageFn != nil {
		return m.deletePageFn(ctx, userID, pageID)
	}
	return errors.New("not implemented")
}

func (m *mockRetrievalService) DeleteUserData(ctx context.Context, userID string) error {
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// withAuth attaches an auth context to the request, bypassing the middleware
func withAuth(req *http.Request, userID string) *http.Request {
	authCtx := &domain.AuthContext{
		UserID:    userID,
		Email:     "test@example.com",
		SessionID: "session-1",
	}
	ctx := context.WithValue(req.Context(), authContextKey, authCtx)
	return req.WithContext(ctx)
}

// Health endpoints

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

func TestReadyHandler(t *testing.T) {
	server := &Server{version: "test", db: &mockPinger{}, redisClient: &mockPinger{}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ready" {
		t.Errorf("expected status 'ready', got %s", response["status"])
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	server := &Server{version: "test", db: &mockPinger{err: errors.New("connection refused")}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestReadyHandler_RedisDown(t *testing.T) {
	server := &Server{
		version:     "test",
		db:          &mockPinger{},
		redisClient: &mockPinger{err: errors.New("connection refused")},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["error"] != "invalid input" {
		t.Errorf("expected error 'invalid input', got %s", response["error"])
	}
}

// Auth endpoints

func TestHandleRegister_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
			return &domain.LoginResponse{
				User:        &domain.User{ID: "user-1", Email: req.Email},
				AccessToken: "access-token",
			}, nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "new@example.com", Password: "secret123"})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}

	var response domain.LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("expected email 'new@example.com', got %s", response.User.Email)
	}
	if response.AccessToken != "access-token" {
		t.Errorf("expected access token, got %s", response.AccessToken)
	}
}

func TestHandleRegister_AlreadyExists(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "taken@example.com", Password: "secret123"})
	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestHandleRegister_InvalidJSON(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("POST", "/api/v1/auth/register", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleLogin_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		authenticateFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			if req.Email != "test@example.com" || req.Password != "password" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.LoginResponse{
				User:        &domain.User{ID: "user-1", Email: req.Email},
				AccessToken: "jwt-token",
			}, nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "password"})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &mockAuthService{
		authenticateFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "wrong"})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleRefresh_InvalidToken(t *testing.T) {
	mockAuth := &mockAuthService{
		refreshTokenFn: func(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrSessionNotFound
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RefreshRequest{RefreshToken: "stale"})
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	server.handleRefresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleLogout(t *testing.T) {
	var loggedOut string
	mockAuth := &mockAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			loggedOut = token
			return nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-token")
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if loggedOut != "the-token" {
		t.Errorf("expected logout with 'the-token', got %q", loggedOut)
	}
}

// User endpoints

func TestHandleGetMe_Success(t *testing.T) {
	mockUser := &mockUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "test@example.com", Name: "Test User"}, nil
		},
	}
	server := &Server{userService: mockUser}

	req := withAuth(httptest.NewRequest("GET", "/api/v1/me", nil), "user-1")
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.User
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID != "user-1" {
		t.Errorf("expected id 'user-1', got %s", response.ID)
	}
}

func TestHandleGetMe_NoAuthContext(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()

	server.handleGetMe(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleUpdateMe_Success(t *testing.T) {
	mockUser := &mockUserService{
		updateFn: func(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
			return &domain.User{ID: id, Name: *req.Name}, nil
		},
	}
	server := &Server{userService: mockUser}

	name := "Renamed"
	body, _ := json.Marshal(domain.UpdateUserRequest{Name: &name})
	req := withAuth(httptest.NewRequest("PATCH", "/api/v1/me", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleUpdateMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.User
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Name != "Renamed" {
		t.Errorf("expected name 'Renamed', got %s", response.Name)
	}
}

func TestHandleDeleteMe_Success(t *testing.T) {
	var deleted string
	mockUser := &mockUserService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	server := &Server{userService: mockUser}

	req := withAuth(httptest.NewRequest("DELETE", "/api/v1/me", nil), "user-1")
	rr := httptest.NewRecorder()

	server.handleDeleteMe(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if deleted != "user-1" {
		t.Errorf("expected delete of 'user-1', got %q", deleted)
	}
}

func TestHandleChangePassword_WrongCurrent(t *testing.T) {
	mockAuth := &mockAuthService{
		changePasswordFn: func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
			return domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass123"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/me/password", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

// Extraction endpoints

func TestHandleExtract_Success(t *testing.T) {
	mockExtract := &mockExtractService{
		extractFn: func(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
			return &domain.ExtractionResult{
				URL:   req.URL,
				Title: "Example",
				Text:  "Example body text.",
				Chunks: []domain.TextChunk{
					{ID: "c-1", Text: "Example body text.", Index: 0, Start: 0, End: 18},
				},
				Metadata: domain.PageMetadata{WordCount: 3},
			}, nil
		},
	}
	server := &Server{extractService: mockExtract}

	body, _ := json.Marshal(driving.ExtractRequest{URL: "https://example.com"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/extract", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleExtract(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response domain.ExtractionResult
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Title != "Example" {
		t.Errorf("expected title 'Example', got %s", response.Title)
	}
	if len(response.Chunks) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(response.Chunks))
	}
}

func TestHandleExtract_SensitiveContent(t *testing.T) {
	mockExtract := &mockExtractService{
		extractFn: func(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
			return nil, &domain.SensitiveContentError{
				Kinds: []domain.SensitiveKind{domain.SensitivePassword, domain.SensitiveCreditCard},
			}
		},
	}
	server := &Server{extractService: mockExtract}

	body, _ := json.Marshal(driving.ExtractRequest{URL: "https://bank.example.com/login"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/extract", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleExtract(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rr.Code)
	}

	var response struct {
		Error           string   `json:"error"`
		SensitiveFields []string `json:"sensitive_fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.SensitiveFields) != 2 {
		t.Fatalf("expected 2 sensitive field kinds, got %v", response.SensitiveFields)
	}
	if response.SensitiveFields[0] != "password" || response.SensitiveFields[1] != "credit_card" {
		t.Errorf("unexpected kinds %v", response.SensitiveFields)
	}
}

func TestHandleExtract_FetchFailed(t *testing.T) {
	mockExtract := &mockExtractService{
		extractFn: func(ctx context.Context, userID string, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
			return nil, domain.ErrFetchFailed
		},
	}
	server := &Server{extractService: mockExtract}

	body, _ := json.Marshal(driving.ExtractRequest{URL: "https://unreachable.example.com"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/extract", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleExtract(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rr.Code)
	}
}

// AI endpoints

func TestHandleSummarize_Success(t *testing.T) {
	mockSummarize := &mockSummarizeService{
		summarizeFn: func(ctx context.Context, userID string, req driving.SummarizeRequest) (*driving.SummarizeResponse, error) {
			return &driving.SummarizeResponse{
				URL:        req.URL,
				Title:      "Example",
				Summary:    "A short summary.",
				Style:      "short",
				TokensUsed: 42,
			}, nil
		},
	}
	server := &Server{summarizeService: mockSummarize}

	body, _ := json.Marshal(driving.SummarizeRequest{URL: "https://example.com", Style: "short"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/summarize", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleSummarize(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response driving.SummarizeResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Summary != "A short summary." {
		t.Errorf("expected summary, got %s", response.Summary)
	}
}

func TestHandleSummarize_RateLimited(t *testing.T) {
	mockSummarize := &mockSummarizeService{
		summarizeFn: func(ctx context.Context, userID string, req driving.SummarizeRequest) (*driving.SummarizeResponse, error) {
			return nil, domain.ErrRateLimited
		},
	}
	server := &Server{summarizeService: mockSummarize}

	body, _ := json.Marshal(driving.SummarizeRequest{URL: "https://example.com"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/summarize", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleSummarize(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rr.Code)
	}
}

func TestHandleQA_Success(t *testing.T) {
	mockAnswer := &mockAnswerService{
		answerFn: func(ctx context.Context, userID string, req driving.QARequest) (*driving.QAResponse, error) {
			return &driving.QAResponse{
				Answer: "The page says X.",
				Sources: []domain.SourceReference{
					{ChunkID: "c-1", Preview: "X is stated here", Start: 0, End: 16},
				},
				TokensUsed: 64,
			}, nil
		},
	}
	server := &Server{answerService: mockAnswer}

	body, _ := json.Marshal(driving.QARequest{URL: "https://example.com", Question: "What does it say?"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/qa", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleQA(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response driving.QAResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(response.Sources))
	}
}

func TestHandleQA_LLMUnavailable(t *testing.T) {
	mockAnswer := &mockAnswerService{
		answerFn: func(ctx context.Context, userID string, req driving.QARequest) (*driving.QAResponse, error) {
			return nil, domain.ErrLLMUnavailable
		},
	}
	server := &Server{answerService: mockAnswer}

	body, _ := json.Marshal(driving.QARequest{URL: "https://example.com", Question: "q"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/qa", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleQA(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestHandleCompare_TooFewURLs(t *testing.T) {
	mockAnswer := &mockAnswerService{
		compareFn: func(ctx context.Context, userID string, req driving.CompareRequest) (*driving.CompareResponse, error) {
			return nil, domain.ErrInvalidInput
		},
	}
	server := &Server{answerService: mockAnswer}

	body, _ := json.Marshal(driving.CompareRequest{URLs: []string{"https://one.example.com"}, Question: "q"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/qa/compare", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleCompare(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleCompare_Success(t *testing.T) {
	mockAnswer := &mockAnswerService{
		compareFn: func(ctx context.Context, userID string, req driving.CompareRequest) (*driving.CompareResponse, error) {
			return &driving.CompareResponse{Answer: "They differ on price.", PageCount: len(req.URLs), TokensUsed: 100}, nil
		},
	}
	server := &Server{answerService: mockAnswer}

	body, _ := json.Marshal(driving.CompareRequest{
		URLs:     []string{"https://a.example.com", "https://b.example.com"},
		Question: "Which is cheaper?",
	})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/qa/compare", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleCompare(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response driving.CompareResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.PageCount != 2 {
		t.Errorf("expected page count 2, got %d", response.PageCount)
	}
}

// Retrieval endpoints

func TestHandleEmbed_Success(t *testing.T) {
	mockRetrieval := &mockRetrievalService{
		embedFn: func(ctx context.Context, userID string, req driving.EmbedRequest) (*driving.EmbedResponse, error) {
			return &driving.EmbedResponse{DocID: req.DocID, ChunkCount: 2, VectorIDs: []string{"v-1", "v-2"}}, nil
		},
	}
	server := &Server{retrievalService: mockRetrieval}

	body, _ := json.Marshal(driving.EmbedRequest{DocID: "doc-1", Text: "Some text to index."})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/embed", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleEmbed(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response driving.EmbedResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ChunkCount != 2 {
		t.Errorf("expected 2 chunks, got %d", response.ChunkCount)
	}
}

func TestHandleSearch_Success(t *testing.T) {
	mockRetrieval := &mockRetrievalService{
		searchFn: func(ctx context.Context, userID string, req driving.SearchRequest) ([]domain.RetrievalHit, error) {
			return []domain.RetrievalHit{
				{ChunkID: "c-1", Text: "relevant text", Score: 0.91},
			}, nil
		},
	}
	server := &Server{retrievalService: mockRetrieval}

	body, _ := json.Marshal(driving.SearchRequest{Query: "relevant"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/search", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleSearch(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var hits []domain.RetrievalHit
	if err := json.NewDecoder(rr.Body).Decode(&hits); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "c-1" {
		t.Errorf("unexpected hits %+v", hits)
	}
}

func TestHandleSearch_NoHitsReturnsEmptyArray(t *testing.T) {
	mockRetrieval := &mockRetrievalService{
		searchFn: func(ctx context.Context, userID string, req driving.SearchRequest) ([]domain.RetrievalHit, error) {
			return nil, nil
		},
	}
	server := &Server{retrievalService: mockRetrieval}

	body, _ := json.Marshal(driving.SearchRequest{Query: "nothing"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/search", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleSearch(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	// Clients expect a JSON array, never null.
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHandleDeletePage_Success(t *testing.T) {
	var deletedPage string
	mockRetrieval := &mockRetrievalService{
		deletePageFn: func(ctx context.Context, userID, pageID string) error {
			deletedPage = pageID
			return nil
		},
	}
	server := &Server{retrievalService: mockRetrieval}

	req := withAuth(httptest.NewRequest("DELETE", "/api/v1/pages/pg-1", nil), "user-1")
	req.SetPathValue("id", "pg-1")
	rr := httptest.NewRecorder()

	server.handleDeletePage(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if deletedPage != "pg-1" {
		t.Errorf("expected delete of 'pg-1', got %q", deletedPage)
	}
}

func TestHandleDeletePage_Forbidden(t *testing.T) {
	mockRetrieval := &mockRetrievalService{
		deletePageFn: func(ctx context.Context, userID, pageID string) error {
			return domain.ErrForbidden
		},
	}
	server := &Server{retrievalService: mockRetrieval}

	req := withAuth(httptest.NewRequest("DELETE", "/api/v1/pages/pg-1", nil), "user-2")
	req.SetPathValue("id", "pg-1")
	rr := httptest.NewRecorder()

	server.handleDeletePage(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

// Chat endpoints

func TestHandleCreateChat_Success(t *testing.T) {
	mockChat := &mockChatService{
		createFn: func(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error) {
			return &domain.Chat{ID: "chat-1", UserID: userID, Title: req.Title}, nil
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(domain.CreateChatRequest{Title: "Pricing questions"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/chats", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleCreateChat(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}

	var response domain.Chat
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Title != "Pricing questions" {
		t.Errorf("expected title, got %s", response.Title)
	}
}

func TestHandleCreateChat_LimitReached(t *testing.T) {
	mockChat := &mockChatService{
		createFn: func(ctx context.Context, userID string, req domain.CreateChatRequest) (*domain.Chat, error) {
			return nil, domain.ErrChatLimitReached
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(domain.CreateChatRequest{})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/chats", bytes.NewReader(body)), "user-1")
	rr := httptest.NewRecorder()

	server.handleCreateChat(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestHandleGetChat_NotFound(t *testing.T) {
	mockChat := &mockChatService{
		getFn: func(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
			return nil, domain.ErrNotFound
		},
	}
	server := &Server{chatService: mockChat}

	req := withAuth(httptest.NewRequest("GET", "/api/v1/chats/missing", nil), "user-1")
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()

	server.handleGetChat(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleListChats_Empty(t *testing.T) {
	mockChat := &mockChatService{
		listFn: func(ctx context.Context, userID string) ([]*domain.Chat, error) {
			return nil, nil
		},
	}
	server := &Server{chatService: mockChat}

	req := withAuth(httptest.NewRequest("GET", "/api/v1/chats", nil), "user-1")
	rr := httptest.NewRecorder()

	server.handleListChats(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHandleAppendMessage_Success(t *testing.T) {
	mockChat := &mockChatService{
		appendMessageFn: func(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error) {
			return &domain.Message{ID: "msg-1", ChatID: chatID, Role: role, Content: content}, nil
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(appendMessageRequest{Role: domain.RoleUser, Content: "hello"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/chats/chat-1/messages", bytes.NewReader(body)), "user-1")
	req.SetPathValue("id", "chat-1")
	rr := httptest.NewRecorder()

	server.handleAppendMessage(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}

	var response domain.Message
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ChatID != "chat-1" || response.Role != domain.RoleUser {
		t.Errorf("unexpected message %+v", response)
	}
}

func TestHandleAppendMessage_InvalidRole(t *testing.T) {
	mockChat := &mockChatService{
		appendMessageFn: func(ctx context.Context, userID, chatID, role, content string) (*domain.Message, error) {
			return nil, domain.ErrInvalidInput
		},
	}
	server := &Server{chatService: mockChat}

	body, _ := json.Marshal(appendMessageRequest{Role: "system", Content: "hello"})
	req := withAuth(httptest.NewRequest("POST", "/api/v1/chats/chat-1/messages", bytes.NewReader(body)), "user-1")
	req.SetPathValue("id", "chat-1")
	rr := httptest.NewRecorder()

	server.handleAppendMessage(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleDeleteChat_Success(t *testing.T) {
	mockChat := &mockChatService{
		deleteFn: func(ctx context.Context, userID, chatID string) error {
			return nil
		},
	}
	server := &Server{chatService: mockChat}

	req := withAuth(httptest.NewRequest("DELETE", "/api/v1/chats/chat-1", nil), "user-1")
	req.SetPathValue("id", "chat-1")
	rr := httptest.NewRecorder()

	server.handleDeleteChat(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}
