package api

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"vending-machine/internal/middleware"
	"vending-machine/internal/models"
	"vending-machine/internal/service"
	"vending-machine/internal/wallet"
	"vending-machine/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

const defaultHistoryLimit = 20

// SessionStore resolves a session id to its view-controller.
type SessionStore interface {
	Get(id string) service.VendingService
}

type Handlers struct {
	Sessions SessionStore
	Logger   pkg.Logger
	// ConnectToken, when set, is required to connect the wallet.
	ConnectToken string
	templates    *template.Template
}

func NewHandlers(sessions SessionStore, logger pkg.Logger) (*Handlers, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.gohtml")
	if err != nil {
		return nil, err
	}
	return &Handlers{Sessions: sessions, Logger: logger, templates: tmpl}, nil
}

type QuantityRequest struct {
	// string or number
	Quantity json.RawMessage `json:"quantity"`
}

type indexPage struct {
	models.View
	TokenRequired bool
}

type StateResponse struct {
	models.View
	Errors *string `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Errors *string `json:"errors,omitempty"`
}

func RegisterHandlers(r *gin.Engine, h *Handlers) {
	r.SetHTMLTemplate(h.templates)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", h.GetIndex)
	guard := middleware.ConnectGuard(h.ConnectToken, h.Logger)

	r.POST("/connect", guard, h.PostConnectForm)
	r.POST("/purchase", h.PostPurchaseForm)
	r.POST("/restock", h.PostRestockForm)

	api := r.Group("/api")
	api.GET("/state", h.GetApiState)
	api.POST("/connect", guard, h.PostApiConnect)
	api.POST("/purchase", h.PostApiPurchase)
	api.POST("/restock", h.PostApiRestock)
	api.GET("/history", h.GetApiHistory)
}

func (h *Handlers) GetIndex(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "index.gohtml", indexPage{View: svc.View(), TokenRequired: h.ConnectToken != ""})
}

// Form actions always land back on the page, which shows the outcome.

func (h *Handlers) PostConnectForm(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	_ = svc.Connect(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) PostPurchaseForm(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	_ = svc.Purchase(c.Request.Context(), c.PostForm("quantity"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) PostRestockForm(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	_ = svc.Restock(c.Request.Context(), c.PostForm("quantity"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) GetApiState(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, StateResponse{View: svc.View()})
}

func (h *Handlers) PostApiConnect(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	err := svc.Connect(c.Request.Context())
	h.respondState(c, svc, err)
}

func (h *Handlers) PostApiPurchase(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	err := svc.Purchase(c.Request.Context(), quantity)
	h.respondState(c, svc, err)
}

func (h *Handlers) PostApiRestock(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	err := svc.Restock(c.Request.Context(), quantity)
	h.respondState(c, svc, err)
}

func (h *Handlers) GetApiHistory(c *gin.Context) {
	svc, ok := h.session(c)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Errors: ptr("limit must be between 1 and 100")})
			return
		}
		limit = n
	}

	entries, err := svc.History(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrNotConnected) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Errors: ptr(err.Error())})
			return
		}
		h.Logger.Error("failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: ptr("Internal server error")})
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// respondState always returns the session state; the status code tells
// what kind of failure, if any, happened.
func (h *Handlers) respondState(c *gin.Context, svc service.VendingService, err error) {
	resp := StateResponse{View: svc.View()}
	if err == nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Errors = ptr(err.Error())
	switch {
	case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrNotConnected):
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, wallet.ErrNoProvider):
		c.JSON(http.StatusServiceUnavailable, resp)
	default:
		c.JSON(http.StatusUnprocessableEntity, resp)
	}
}

func (h *Handlers) session(c *gin.Context) (service.VendingService, bool) {
	sid := c.GetString(middleware.SessionKey)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Errors: ptr("No session")})
		return nil, false
	}
	return h.Sessions.Get(sid), true
}

func bindQuantity(c *gin.Context) (string, bool) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: ptr("Invalid request body")})
		return "", false
	}
	return quantityText(req.Quantity), true
}

// quantityText returns what the client typed: the decoded string for a JSON
// string, the literal for a JSON number, the raw text otherwise.
func quantityText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

func ptr(s string) *string {
	return &s
}
