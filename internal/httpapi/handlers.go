package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloudconnect/internal/auth"
	"cloudconnect/internal/calls"
	"cloudconnect/internal/customer"
	"cloudconnect/internal/dashboard"
	"cloudconnect/internal/identity"
	"cloudconnect/internal/telephony"
	"cloudconnect/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Users     *identity.Service
	Customers *customer.Service
	Calls     *calls.Service
	Dashboard *dashboard.Service
	SIP       *telephony.Provider

	// Limiter throttles login attempts. Nil disables throttling.
	Limiter LoginLimiter
}

// writeError maps service errors onto the HTTP taxonomy. Unknown errors
// become a generic 500; their detail goes to the log, never the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, identity.ErrAccountDisabled):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, calls.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, identity.ErrDuplicateEmail),
		errors.Is(err, customer.ErrDuplicatePhone):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "already exists"})
	case errors.Is(err, telephony.ErrNotProvisioned):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "sip not configured"})
	case errors.Is(err, identity.ErrInvalidArgument),
		errors.Is(err, customer.ErrInvalidArgument),
		errors.Is(err, customer.ErrUnknownAgent),
		errors.Is(err, calls.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		logger.From(c.Request.Context()).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func identityFromContext(c *gin.Context) (userID, role string, ok bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", "", false
	}
	role, err = auth.Role(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", "", false
	}
	return userID, role, true
}

// decodeStrict rejects bodies with unknown fields. Used for the closed
// update commands, where a silently ignored field would mask caller bugs.
func decodeStrict(c *gin.Context, dst any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a session token alongside the
// caller's redacted profile.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	// Throttling is fail-open: a broken limiter must not lock everyone out.
	if h.Limiter != nil {
		allowed, err := h.Limiter.Allow(c.Request.Context(), req.Email+"|"+c.ClientIP())
		if err != nil {
			logger.From(c.Request.Context()).Warn("login limiter unavailable", "err", err)
		} else if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
			return
		}
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.Auth.Issue(time.Now(), u.ID, u.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u.Redacted()})
}

// Me returns the caller's own redacted profile.
func (h Handlers) Me(c *gin.Context) {
	userID, _, ok := identityFromContext(c)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Redacted())
}

// SIPConfig returns the caller's softphone profile. This is the only
// endpoint that exposes a SIP credential, and only the caller's own.
func (h Handlers) SIPConfig(c *gin.Context) {
	userID, _, ok := identityFromContext(c)
	if !ok {
		return
	}
	u, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	cfg, err := h.SIP.ConfigFor(u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// --- Customers ---

func (h Handlers) ListCustomers(c *gin.Context) {
	userID, role, ok := identityFromContext(c)
	if !ok {
		return
	}
	q := customer.Query{
		Search:   c.Query("search"),
		Operator: c.Query("operator"),
		Status:   c.Query("status"),
		AgentID:  c.Query("agent_id"),
		Page:     intQuery(c, "page"),
		Limit:    intQuery(c, "limit"),
	}
	page, err := h.Customers.List(c.Request.Context(), role, userID, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) CreateCustomer(c *gin.Context) {
	userID, role, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req customer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	created, err := h.Customers.Create(c.Request.Context(), userID, role, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) UpdateCustomer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	var cmd customer.UpdateCommand
	if !decodeStrict(c, &cmd) {
		return
	}
	updated, err := h.Customers.Update(c.Request.Context(), id, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type importRequest struct {
	Customers []customer.ImportRecord `json:"customers"`
}

func (h Handlers) ImportCustomers(c *gin.Context) {
	userID, _, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Customers) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "customers required"})
		return
	}
	result, err := h.Customers.Import(c.Request.Context(), userID, req.Customers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h Handlers) BulkCustomers(c *gin.Context) {
	userID, _, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req customer.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Customers.Bulk(c.Request.Context(), userID, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Calls ---

func (h Handlers) RecordCall(c *gin.Context) {
	userID, _, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req calls.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	log, err := h.Calls.Record(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// --- Dashboard ---

func (h Handlers) DashboardStats(c *gin.Context) {
	stats, err := h.Dashboard.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// --- Users (admin) ---

func (h Handlers) ListUsers(c *gin.Context) {
	profiles, err := h.Users.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h Handlers) CreateUser(c *gin.Context) {
	var req identity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Users.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u.Redacted())
}

func (h Handlers) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	var cmd identity.UpdateUserCommand
	if !decodeStrict(c, &cmd) {
		return
	}
	u, err := h.Users.Update(c.Request.Context(), id, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "status": u.Status})
}

// intQuery parses a numeric query parameter, treating anything
// non-numeric as absent. Defaults are applied by the visibility policy.
func intQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}
