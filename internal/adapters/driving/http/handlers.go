package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and Redis connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleRegister godoc
// @Summary      Register account
// @Description  Create an account and open its first session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RegisterRequest  true  "Account details"
// @Success      201      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Email already registered"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	_ = s.authService.Logout(r.Context(), token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// User endpoints

// handleGetMe godoc
// @Summary      Get current user
// @Description  Get the currently authenticated user's profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleUpdateMe godoc
// @Summary      Update current user
// @Description  Update the authenticated user's mutable fields (name, language model API key)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.UpdateUserRequest  true  "Fields to update"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "User not found"
// @Router       /me [patch]
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userService.Update(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteMe godoc
// @Summary      Delete current user
// @Description  Delete the authenticated user's account along with their sessions and indexed data
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /me [delete]
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.userService.Delete(r.Context(), authCtx.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleChangePassword godoc
// @Summary      Change password
// @Description  Change the authenticated user's password. All other sessions are invalidated.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      401      {object}  ErrorResponse  "Wrong current password"
// @Router       /me/password [post]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.authService.ChangePassword(r.Context(), authCtx.UserID, req); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "wrong current password")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Extraction endpoints

// handleExtract godoc
// @Summary      Extract page content
// @Description  Run the extraction pipeline on a page: fetch (unless HTML is supplied), gate on sensitive fields, reduce, normalize, redact, chunk and summarize structure. With persist=true the page is stored and queued for indexing.
// @Tags         Extraction
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ExtractRequest  true  "Page to extract"
// @Success      200      {object}  domain.ExtractionResult
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing URL"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      422      {object}  ErrorResponse  "Page contains sensitive fields"
// @Failure      502      {object}  ErrorResponse  "Page could not be fetched"
// @Router       /extract [post]
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.extractService.Extract(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "extraction failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSummarize godoc
// @Summary      Summarize page
// @Description  Extract a page and ask the language model for a summary in the requested style (short, long or bullet). Identical requests are served from cache.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.SummarizeRequest  true  "Page and style"
// @Success      200      {object}  driving.SummarizeResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing URL"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      422      {object}  ErrorResponse  "Page contains sensitive fields"
// @Failure      429      {object}  ErrorResponse  "Rate limit exceeded"
// @Failure      502      {object}  ErrorResponse  "Page could not be fetched"
// @Failure      503      {object}  ErrorResponse  "Language model unavailable"
// @Router       /summarize [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.summarizeService.Summarize(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "summarization failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleQA godoc
// @Summary      Answer question about a page
// @Description  Answer a question grounded in one page's content, with chunk citations. A chat_id carries conversation history into the prompt and records the turn.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.QARequest  true  "Page and question"
// @Success      200      {object}  driving.QAResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request, missing URL or question"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      422      {object}  ErrorResponse  "Page contains sensitive fields"
// @Failure      429      {object}  ErrorResponse  "Rate limit exceeded"
// @Failure      502      {object}  ErrorResponse  "Page could not be fetched"
// @Failure      503      {object}  ErrorResponse  "Language model unavailable"
// @Router       /qa [post]
func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.QARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.answerService.Answer(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "question answering failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCompare godoc
// @Summary      Compare pages
// @Description  Answer a question across 2 to 5 pages, fetched concurrently and assembled in request order
// @Tags         AI
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CompareRequest  true  "Pages and question"
// @Success      200      {object}  driving.CompareResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request or URL count out of range"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      429      {object}  ErrorResponse  "Rate limit exceeded"
// @Failure      502      {object}  ErrorResponse  "A page could not be fetched"
// @Failure      503      {object}  ErrorResponse  "Language model unavailable"
// @Router       /qa/compare [post]
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.answerService.Compare(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "comparison failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Retrieval endpoints

// handleEmbed godoc
// @Summary      Embed text
// @Description  Chunk, embed and index standalone text under a document ID
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.EmbedRequest  true  "Document ID and text"
// @Success      200      {object}  driving.EmbedResponse
// @Failure      400      {object}  ErrorResponse  "Missing doc_id or text"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "Embedding service unavailable"
// @Router       /embed [post]
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.retrievalService.Embed(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "embedding failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSearch godoc
// @Summary      Search indexed chunks
// @Description  Return the user's indexed chunks closest to the query text, best first. A page_id narrows the search to one page.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.SearchRequest  true  "Search query"
// @Success      200      {array}   domain.RetrievalHit
// @Failure      400      {object}  ErrorResponse  "Missing query"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "Embedding service unavailable"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hits, err := s.retrievalService.Search(r.Context(), authCtx.UserID, req)
	if err != nil {
		writePipelineError(w, err, "search failed")
		return
	}
	if hits == nil {
		hits = []domain.RetrievalHit{}
	}

	writeJSON(w, http.StatusOK, hits)
}

// handleDeletePage godoc
// @Summary      Delete indexed page
// @Description  Remove a page's vectors from the index along with its stored record and chunks
// @Tags         Retrieval
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Page ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse  "Missing page ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Page belongs to another user"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /pages/{id} [delete]
func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing page id")
		return
	}

	if err := s.retrievalService.DeletePage(r.Context(), authCtx.UserID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "page belongs to another user")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "page not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete page")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Chat endpoints

// appendMessageRequest is the payload for adding a chat turn
// @Description Chat message payload
type appendMessageRequest struct {
	Role    string `json:"role" example:"user" enums:"user,assistant"`
	Content string `json:"content" example:"What does this page say about pricing?"`
}

// handleCreateChat godoc
// @Summary      Create chat
// @Description  Open a chat. A user keeps at most 3 chats.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.CreateChatRequest  true  "Chat details"
// @Success      201      {object}  domain.Chat
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      409      {object}  ErrorResponse  "Chat limit reached"
// @Router       /chats [post]
func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chat, err := s.chatService.Create(r.Context(), authCtx.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChatLimitReached):
			writeError(w, http.StatusConflict, "chat limit reached")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create chat")
		}
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

// handleListChats godoc
// @Summary      List chats
// @Description  List the user's chats, most recently updated first
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Chat
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /chats [get]
func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chats, err := s.chatService.List(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	if chats == nil {
		chats = []*domain.Chat{}
	}

	writeJSON(w, http.StatusOK, chats)
}

// handleGetChat godoc
// @Summary      Get chat
// @Description  Get one of the user's chats by ID
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  domain.Chat
// @Failure      400  {object}  ErrorResponse  "Missing chat ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Chat not found"
// @Router       /chats/{id} [get]
func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing chat id")
		return
	}

	chat, err := s.chatService.Get(r.Context(), authCtx.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get chat")
		}
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

// handleDeleteChat godoc
// @Summary      Delete chat
// @Description  Delete a chat and its messages
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse  "Missing chat ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Chat not found"
// @Router       /chats/{id} [delete]
func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing chat id")
		return
	}

	if err := s.chatService.Delete(r.Context(), authCtx.UserID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete chat")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListMessages godoc
// @Summary      List chat messages
// @Description  List a chat's messages in creation order
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {array}   domain.Message
// @Failure      400  {object}  ErrorResponse  "Missing chat ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Chat not found"
// @Router       /chats/{id}/messages [get]
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing chat id")
		return
	}

	messages, err := s.chatService.Messages(r.Context(), authCtx.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to list messages")
		}
		return
	}
	if messages == nil {
		messages = []*domain.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
}

// handleAppendMessage godoc
// @Summary      Append chat message
// @Description  Add a turn to a chat. A chat keeps at most 50 messages; older messages are dropped first.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Chat ID"
// @Param        request  body      appendMessageRequest  true  "Message"
// @Success      201      {object}  domain.Message
// @Failure      400      {object}  ErrorResponse  "Invalid role or empty content"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Chat not found"
// @Router       /chats/{id}/messages [post]
func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing chat id")
		return
	}

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.chatService.AppendMessage(r.Context(), authCtx.UserID, id, req.Role, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid role or empty content")
		default:
			writeError(w, http.StatusInternalServerError, "failed to append message")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writePipelineError maps extraction and AI pipeline failures to HTTP
// statuses. fallback is used for errors with no specific mapping.
func writePipelineError(w http.ResponseWriter, err error, fallback string) {
	if sce, ok := domain.AsSensitiveContent(err); ok {
		kinds := make([]string, len(sce.Kinds))
		for i, k := range sce.Kinds {
			kinds[i] = string(k)
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":            "page contains sensitive fields",
			"sensitive_fields": kinds,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, "page could not be fetched")
	case errors.Is(err, domain.ErrLLMUnavailable):
		writeError(w, http.StatusServiceUnavailable, "language model unavailable")
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		writeError(w, http.StatusServiceUnavailable, "embedding service unavailable")
	case errors.Is(err, domain.ErrExtractFailed):
		writeError(w, http.StatusUnprocessableEntity, "extraction produced no content")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
