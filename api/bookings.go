package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
	"github.com/rajeev-ju/flight-booking-system/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerInfo struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string `json:"last_name" binding:"required,min=2,max=50"`
	Age       int    `json:"age" binding:"required,min=1,max=120"`
	Gender    string `json:"gender" binding:"required"`
	IDType    string `json:"id_type" binding:"required"`
	IDNumber  string `json:"id_number" binding:"required,alphanum,min=6,max=20"`
}

type createBookingRequest struct {
	FlightScheduleID uuid.UUID       `json:"flight_schedule_id" binding:"required"`
	Passengers       []passengerInfo `json:"passengers" binding:"required,min=1,max=9,dive"`
	ContactEmail     string          `json:"contact_email" binding:"required,email"`
	ContactPhone     string          `json:"contact_phone" binding:"required"`
	AmountCents      int64           `json:"amount_cents" binding:"required,gt=0"`
}

type bookingResponse struct {
	BookingID string `json:"booking_id"`
	PNR       string `json:"pnr"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type passengerResponse struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	SeatNumber string `json:"seat_number"`
}

type bookingDetailsResponse struct {
	BookingID     string              `json:"booking_id"`
	PNR           string              `json:"pnr"`
	Status        string              `json:"status"`
	FlightNumber  string              `json:"flight_number"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	DepartureDate string              `json:"departure_date"`
	Passengers    []passengerResponse `json:"passengers"`
	AmountCents   int64               `json:"amount_cents"`
	BookingDate   string              `json:"booking_date"`
	ContactEmail  string              `json:"contact_email"`
	ContactPhone  string              `json:"contact_phone"`
}

type bookingSummaryResponse struct {
	BookingID       string `json:"booking_id"`
	PNR             string `json:"pnr"`
	FlightNumber    string `json:"flight_number"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureDate   string `json:"departure_date"`
	Status          string `json:"status"`
	TotalPassengers int    `json:"total_passengers"`
	AmountCents     int64  `json:"amount_cents"`
	BookingDate     string `json:"booking_date"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:pnr", h.get)
	router.GET("/user/:email", h.listByEmail)
	router.PUT("/:pnr/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": string(domain.CodeValidation), "error": err.Error()})
		return
	}

	passengers := make([]booking.PassengerInput, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		passengers = append(passengers, booking.PassengerInput{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Age:       p.Age,
			Gender:    p.Gender,
			IDType:    p.IDType,
			IDNumber:  p.IDNumber,
		})
	}

	result, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightScheduleID: req.FlightScheduleID,
		Passengers:       passengers,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		AmountCents:      req.AmountCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Status != domain.BookingStatusConfirmed {
		status = http.StatusConflict
	}
	c.JSON(status, toBookingResponse(result))
}

func (h *BookingHandler) get(c *gin.Context) {
	details, err := h.service.GetBookingByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		respondError(c, err)
		return
	}

	passengers := make([]passengerResponse, 0, len(details.Passengers))
	for _, p := range details.Passengers {
		passengers = append(passengers, passengerResponse{
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Age:        p.Age,
			Gender:     p.Gender,
			SeatNumber: p.SeatNumber,
		})
	}

	b := details.Booking
	c.JSON(http.StatusOK, bookingDetailsResponse{
		BookingID:     b.ID.String(),
		PNR:           b.PNR,
		Status:        string(b.Status),
		FlightNumber:  b.FlightNumber,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureDate: b.DepartureDate.Format(time.RFC3339),
		Passengers:    passengers,
		AmountCents:   b.AmountCents,
		BookingDate:   b.BookingDate.Format(time.RFC3339),
		ContactEmail:  b.UserEmail,
		ContactPhone:  b.UserPhone,
	})
}

func (h *BookingHandler) listByEmail(c *gin.Context) {
	bookings, err := h.service.ListBookingsByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]bookingSummaryResponse, 0, len(bookings))
	for _, b := range bookings {
		summaries = append(summaries, bookingSummaryResponse{
			BookingID:       b.ID.String(),
			PNR:             b.PNR,
			FlightNumber:    b.FlightNumber,
			Origin:          b.Origin,
			Destination:     b.Destination,
			DepartureDate:   b.DepartureDate.Format(time.RFC3339),
			Status:          string(b.Status),
			TotalPassengers: b.TotalPassengers,
			AmountCents:     b.AmountCents,
			BookingDate:     b.BookingDate.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	result, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"), c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(result))
}

func toBookingResponse(result *booking.BookingResult) bookingResponse {
	return bookingResponse{
		BookingID: result.BookingID.String(),
		PNR:       result.PNR,
		Status:    string(result.Status),
		Message:   result.Message,
	}
}
