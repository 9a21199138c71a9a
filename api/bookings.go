package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/Domenick1991/travelbook/internal/service/booking"
	"github.com/Domenick1991/travelbook/internal/service/query"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	search  query.SearchUseCase
}

type createBookingRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	PackageRef    string  `json:"package_ref"`
	Destination   string  `json:"destination"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Guests        int     `json:"guests"`
	Amount        float64 `json:"amount"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type paymentRequest struct {
	Status string `json:"status"`
}

type modificationRequest struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

type approveModificationRequest struct {
	Note        string   `json:"note"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Guests      *int     `json:"guests"`
	PackageRef  *string  `json:"package_ref"`
	Destination *string  `json:"destination"`
	Amount      *float64 `json:"amount"`
}

type denyModificationRequest struct {
	Note string `json:"note"`
}

type messageRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

type bookingResponse struct {
	*domain.Booking
	RefundRequired bool `json:"refund_required,omitempty"`
}

func toResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Booking:        b,
		RefundRequired: b.Status == domain.BookingStatusCancelled && b.PaymentStatus == domain.PaymentStatusPaid,
	}
}

func NewBookingHandler(service booking.BookingUseCase, search query.SearchUseCase) *BookingHandler {
	return &BookingHandler{service: service, search: search}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/payment", h.payment)
	router.POST("/:id/modification-requests", h.requestModification)
	router.POST("/:id/modification-requests/approve", h.approveModification)
	router.POST("/:id/modification-requests/deny", h.denyModification)
	router.POST("/:id/messages", h.addMessage)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PackageRef:    req.PackageRef,
		Destination:   req.Destination,
		StartDate:     startDate,
		EndDate:       endDate,
		Guests:        req.Guests,
		Amount:        req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	criteria := query.Criteria{
		Text: c.Query("search"),
		Sort: query.ParseSortKey(c.Query("sort")),
	}
	if status := c.Query("status"); status != "" {
		criteria.Status = domain.BookingStatus(status)
	}
	if paymentStatus := c.Query("paymentStatus"); paymentStatus != "" {
		criteria.PaymentStatus = domain.PaymentStatus(paymentStatus)
	}

	bookings, err := h.search.Search(c.Request.Context(), criteria)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": len(bookings)})
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	b, err := h.service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) payment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := domain.ParsePaymentStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.MarkPayment(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) requestModification(c *gin.Context) {
	var req modificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modType, err := domain.ParseModificationType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.RequestModification(c.Request.Context(), c.Param("id"), modType, req.Details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) approveModification(c *gin.Context) {
	var req approveModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := booking.ApprovalInput{
		Note:        req.Note,
		Guests:      req.Guests,
		PackageRef:  req.PackageRef,
		Destination: req.Destination,
		Amount:      req.Amount,
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		input.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		input.EndDate = &endDate
	}

	b, err := h.service.ApproveModification(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) denyModification(c *gin.Context) {
	var req denyModificationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	b, err := h.service.DenyModification(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) addMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.AddMessage(c.Request.Context(), c.Param("id"), req.Sender, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(b))
}

// respondError maps domain error kinds to HTTP statuses. The kind travels in
// the body so UI callers can branch without string matching.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	kind := "invalid_request"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrBusy):
		status, kind = http.StatusServiceUnavailable, "busy"
	case errors.Is(err, domain.ErrConflictingRequest):
		status, kind = http.StatusConflict, "conflicting_request"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, kind = http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, domain.ErrInvalidPaymentTransition):
		status, kind = http.StatusUnprocessableEntity, "invalid_payment_transition"
	case errors.Is(err, domain.ErrInvalidState):
		status, kind = http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, domain.ErrIncompleteApproval):
		status, kind = http.StatusUnprocessableEntity, "incomplete_approval"
	}

	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
