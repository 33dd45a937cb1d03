// Package server exposes the agent operations as a JSON REST bridge for
// non-Go callers.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billfold/szamlazz-go/internal/agent"
	"github.com/billfold/szamlazz-go/internal/model"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP bridge in front of an Agent.
type Server struct {
	config *Config
	router *gin.Engine
	agent  *agent.Agent
}

// NewServer builds the bridge around an already-configured agent.
func NewServer(config *Config, ag *agent.Agent) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		agent:  ag,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/invoices", s.handleUploadInvoice)
		v1.GET("/invoices/:number", s.handleFetchInvoice)
		v1.POST("/invoices/:number/cancel", s.handleCancelInvoice)
		v1.DELETE("/proformas/:number", s.handleDeleteProforma)
		v1.POST("/receipts", s.handleUploadReceipt)
		v1.GET("/receipts/:number", s.handleFetchReceipt)
		v1.POST("/receipts/:number/cancel", s.handleCancelReceipt)
		v1.GET("/taxpayers/:taxid", s.handleQueryTaxPayer)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps error kinds to HTTP statuses: validation 400, auth 401,
// not found 404, everything else 502 (the upstream service failed).
func statusFor(err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case model.IsAuthentication(err):
		return http.StatusUnauthorized
	case model.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if kind, ok := model.KindOf(err); ok {
		body["kind"] = kind.String()
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		body["violations"] = ve.Violations
	}
	c.JSON(statusFor(err), body)
}

func (s *Server) handleUploadInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.agent.UploadInvoice(c.Request.Context(), inv)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invoice_number":       result.InvoiceNumber,
		"net_total":            result.NetTotal.String(),
		"gross_total":          result.GrossTotal.String(),
		"outstanding_amount":   result.OutstandingAmount.String(),
		"customer_account_url": result.CustomerAccountURL,
	})
}

func (s *Server) handleFetchInvoice(c *gin.Context) {
	inv, err := s.agent.FetchInvoice(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handleCancelInvoice(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.agent.CancelInvoice(c.Request.Context(), &model.CancelInvoice{
		InvoiceNumber: c.Param("number"),
		NotifyByEmail: req.NotifyByEmail,
		CustomerEmail: req.CustomerEmail,
		EmailSubject:  req.EmailSubject,
		EmailBody:     req.EmailBody,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	body := gin.H{"storno_invoice_number": result.StornoInvoiceNumber}
	if result.PDFFetchErr != nil {
		body["pdf_fetch_error"] = result.PDFFetchErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleDeleteProforma(c *gin.Context) {
	if err := s.agent.DeleteProforma(c.Request.Context(), c.Param("number")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUploadReceipt(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fetched, err := s.agent.UploadReceipt(c.Request.Context(), rec)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fetched)
}

func (s *Server) handleFetchReceipt(c *gin.Context) {
	rec, err := s.agent.FetchReceipt(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleCancelReceipt(c *gin.Context) {
	rec, err := s.agent.CancelReceipt(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleQueryTaxPayer(c *gin.Context) {
	info, err := s.agent.QueryTaxPayer(c.Request.Context(), c.Param("taxid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
