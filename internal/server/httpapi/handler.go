// Package httpapi exposes the server's HTTP surface: authentication, user
// and tenant administration, session resolution, and document persistence.
// It is the single entry point; every data route runs behind the auth
// middleware and the tenant access filter in the service layer.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/meeting"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/figmints/meetsync/internal/server/services"
)

// UserProvider is the slice of the user service the HTTP layer consumes.
type UserProvider interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, caller *models.User, in services.CreateUserInput) (*models.User, error)
	List(ctx context.Context, caller *models.User) ([]*models.User, error)
	Update(ctx context.Context, caller *models.User, id string, in services.UpdateUserInput) (*models.User, error)
}

// TenantProvider is the slice of the tenant service the HTTP layer consumes.
type TenantProvider interface {
	Register(ctx context.Context, caller *models.User, t *models.Tenant) (*models.Tenant, error)
	Get(ctx context.Context, caller *models.User, id string) (*models.Tenant, error)
	List(ctx context.Context, caller *models.User) ([]*models.Tenant, error)
	Update(ctx context.Context, caller *models.User, t *models.Tenant) (*models.Tenant, error)
}

// SessionProvider is the slice of the session service the HTTP layer consumes.
type SessionProvider interface {
	Resolve(ctx context.Context, caller *models.User, tenantID, sessionDate string) (*models.MeetingSession, error)
	ListByTenant(ctx context.Context, caller *models.User, tenantID string) ([]*models.MeetingSession, error)
	GetDocument(ctx context.Context, caller *models.User, sessionID string) (*meeting.Document, time.Time, error)
	PutDocument(ctx context.Context, caller *models.User, sessionID string, doc *meeting.Document) error
	Complete(ctx context.Context, caller *models.User, sessionID string) (*models.MeetingSession, error)
}

type Handler struct {
	users         UserProvider
	tenants       TenantProvider
	sessions      SessionProvider
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewHandler(users UserProvider, tenants TenantProvider, sessions SessionProvider,
	tokenValidity time.Duration, logger logging.Logger) *Handler {
	return &Handler{
		users:         users,
		tenants:       tenants,
		sessions:      sessions,
		tokenValidity: tokenValidity,
		logger:        logger,
	}
}

// Routes builds the request multiplexer.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/me", h.withAuth(h.handleMe))
	mux.HandleFunc("POST /api/auth/users", h.withAuth(h.handleCreateUser))
	mux.HandleFunc("GET /api/auth/users", h.withAuth(h.handleListUsers))
	mux.HandleFunc("PATCH /api/auth/users/{id}", h.withAuth(h.handleUpdateUser))

	mux.HandleFunc("POST /api/tenants", h.withAuth(h.handleRegisterTenant))
	mux.HandleFunc("GET /api/tenants", h.withAuth(h.handleListTenants))
	mux.HandleFunc("GET /api/tenants/{id}", h.withAuth(h.handleGetTenant))
	mux.HandleFunc("PUT /api/tenants/{id}", h.withAuth(h.handleUpdateTenant))
	mux.HandleFunc("GET /api/tenants/{id}/sessions", h.withAuth(h.handleListSessions))

	mux.HandleFunc("POST /api/sessions/resolve", h.withAuth(h.handleResolveSession))
	mux.HandleFunc("GET /api/sessions/{id}/document", h.withAuth(h.handleGetDocument))
	mux.HandleFunc("PUT /api/sessions/{id}/document", h.withAuth(h.handlePutDocument))
	mux.HandleFunc("POST /api/sessions/{id}/complete", h.withAuth(h.handleCompleteSession))

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	identity := user.Identity()
	setAuthCookies(w, r, token, identity, h.tokenValidity)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: identity})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, callerFrom(r.Context()).Identity())
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	user, err := h.users.Create(r.Context(), callerFrom(r.Context()), services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.Role(req.Role),
		TenantID:  req.TenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userView(user))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]userResponse, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
	Active    *bool   `json:"active"`
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	user, err := h.users.Update(r.Context(), callerFrom(r.Context()), r.PathValue("id"), services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Active:    req.Active,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userView(user))
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	TenantID    string     `json:"tenant_id,omitempty"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func userView(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        string(u.Role),
		TenantID:    u.TenantID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}

type tenantRequest struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	AccountManager string `json:"account_manager"`
	Strategist     string `json:"strategist"`
}

type tenantResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url,omitempty"`
	AccountManager string `json:"account_manager,omitempty"`
	Strategist     string `json:"strategist,omitempty"`
}

func tenantView(t *models.Tenant) tenantResponse {
	return tenantResponse{
		ID:             t.ID,
		Name:           t.Name,
		URL:            t.URL,
		AccountManager: t.AccountManager,
		Strategist:     t.Strategist,
	}
}

func (h *Handler) handleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	tenant, err := h.tenants.Register(r.Context(), callerFrom(r.Context()), &models.Tenant{
		Name:           req.Name,
		URL:            req.URL,
		AccountManager: req.AccountManager,
		Strategist:     req.Strategist,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tenantView(tenant))
}

func (h *Handler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		views = append(views, tenantView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Get(r.Context(), callerFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenantView(tenant))
}

func (h *Handler) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	tenant, err := h.tenants.Update(r.Context(), callerFrom(r.Context()), &models.Tenant{
		ID:             r.PathValue("id"),
		Name:           req.Name,
		URL:            req.URL,
		AccountManager: req.AccountManager,
		Strategist:     req.Strategist,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tenantView(tenant))
}

type resolveSessionRequest struct {
	TenantID    string `json:"tenant_id"`
	SessionDate string `json:"session_date"`
}

type sessionResponse struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenant_id"`
	SessionDate  string   `json:"session_date"`
	Status       string   `json:"status"`
	ScoreAverage *float64 `json:"score_average,omitempty"`
}

func sessionView(s *models.MeetingSession) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		TenantID:     s.TenantID,
		SessionDate:  s.SessionDate,
		Status:       string(s.Status),
		ScoreAverage: s.ScoreAverage,
	}
}

func (h *Handler) handleResolveSession(w http.ResponseWriter, r *http.Request) {
	var req resolveSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	session, err := h.sessions.Resolve(r.Context(), callerFrom(r.Context()), req.TenantID, req.SessionDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionView(session))
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListByTenant(r.Context(), callerFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

type documentResponse struct {
	Document  *meeting.Document `json:"document"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, updatedAt, err := h.sessions.GetDocument(r.Context(), callerFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := documentResponse{Document: doc}
	if !updatedAt.IsZero() {
		resp.UpdatedAt = &updatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var doc meeting.Document
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	if err := h.sessions.PutDocument(r.Context(), callerFrom(r.Context()), r.PathValue("id"), &doc); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Complete(r.Context(), callerFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeServiceError maps service sentinels to HTTP statuses. Unrecognized
// errors become opaque 500s: internals never leak to clients.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "resource already exists")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
