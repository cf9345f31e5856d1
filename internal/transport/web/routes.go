package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/planner"
)

var ErrPanic = errors.New("panic recovered")

type openSessionRequest struct {
	HotelID  string `json:"hotel_id"  validate:"required"`
	CheckIn  string `json:"check_in"  validate:"omitempty,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests   int    `json:"guests"    validate:"gte=0"`
}

type guestsRequest struct {
	Guests int `json:"guests" validate:"required,gte=1"`
}

type datesRequest struct {
	CheckIn  string `json:"check_in"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type confirmRequest struct {
	Payer     booking.Payer `json:"payer"`
	PromoCode string        `json:"promo_code"`
}

type createOrderRequest struct {
	HotelID   string        `json:"hotel_id"   validate:"required"`
	RoomIDs   []string      `json:"room_ids"   validate:"required,min=1,dive,required"`
	CheckIn   string        `json:"check_in"   validate:"required,datetime=2006-01-02"`
	CheckOut  string        `json:"check_out"  validate:"required,datetime=2006-01-02"`
	Guests    int           `json:"guests"     validate:"required,gte=1"`
	Payer     booking.Payer `json:"payer"`
	PromoCode string        `json:"promo_code"`
}

// decode reads and validates the body. On failure it has already written
// the response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			s.writeError(w, fmt.Errorf("validate request: %w", err))

			return false
		}

		inputErr := booking.NewInputError()
		for _, fe := range validationErrs {
			inputErr.AddError(fe.Field(), fmt.Sprintf("failed on %s", fe.Tag()))
		}

		s.writeError(w, inputErr)

		return false
	}

	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if inputErr := booking.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, inputErr.Fields())

		return
	}

	if availabilityErr := booking.IsAvailabilityError(err); availabilityErr != nil {
		s.writeJSON(w, http.StatusPreconditionFailed, availabilityErr.Rooms())

		return
	}

	if errors.Is(err, planner.ErrSessionNotFound) || errors.Is(err, catalog.ErrHotelNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	s.l.LogErrorf("Request failed: %v", err.Error())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) respond(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, status, v)
}

func (s *Server) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.planner.Open(r.Context(), planner.OpenInput{
		HotelID:  req.HotelID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
	})
	s.respond(w, http.StatusCreated, view, err)
}

func (s *Server) viewSessionHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.planner.View(r.Context(), r.PathValue("id"))
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.Close(r.PathValue("id")); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changeGuestsHandler(w http.ResponseWriter, r *http.Request) {
	var req guestsRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.planner.ChangeGuests(r.Context(), r.PathValue("id"), req.Guests)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) changeDatesHandler(w http.ResponseWriter, r *http.Request) {
	var req datesRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.planner.ChangeDates(r.Context(), r.PathValue("id"), req.CheckIn, req.CheckOut)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.planner.Refresh(r.Context(), r.PathValue("id"))
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) tierHandler(increment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capacity, err := strconv.Atoi(r.PathValue("capacity"))
		if err != nil || capacity < 1 {
			http.Error(w, "capacity must be a positive integer", http.StatusBadRequest)

			return
		}

		var view *planner.View

		if increment {
			view, err = s.planner.IncrementRoom(r.Context(), r.PathValue("id"), capacity)
		} else {
			view, err = s.planner.DecrementRoom(r.Context(), r.PathValue("id"), capacity)
		}

		s.respond(w, http.StatusOK, view, err)
	}
}

func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "Idempotency-Key header is missing", http.StatusBadRequest)

		return
	}

	var req confirmRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := booking.WithIdempotencyKey(r.Context(), idempotencyKey)

	order, err := s.planner.Confirm(ctx, r.PathValue("id"), planner.ConfirmInput{
		Payer:     req.Payer,
		PromoCode: req.PromoCode,
	})
	s.respond(w, http.StatusCreated, order, err)
}

func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "Idempotency-Key header is missing", http.StatusBadRequest)

		return
	}

	var req createOrderRequest
	if !s.decode(w, r, &req) {
		return
	}

	window, err := catalog.ParseWindow(req.CheckIn, req.CheckOut, time.Now())
	if err != nil {
		inputErr := booking.NewInputError()
		inputErr.AddError("check_out", err.Error())
		s.writeError(w, inputErr)

		return
	}

	ctx := booking.WithIdempotencyKey(r.Context(), idempotencyKey)

	order, err := s.bManager.CreateOrder(ctx, &booking.BookInput{
		HotelID:   req.HotelID,
		RoomIDs:   req.RoomIDs,
		Window:    window,
		Guests:    req.Guests,
		Payer:     req.Payer,
		PromoCode: req.PromoCode,
	})
	s.respond(w, http.StatusCreated, order, err)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.applyMiddlewares(h, s.loggerMiddleware(), s.recoverMiddleware()))
}

func (s *Server) addRoutes(mux *http.ServeMux) {
	s.handle(mux, "POST /api/sessions/v1", s.openSessionHandler)
	s.handle(mux, "GET /api/sessions/v1/{id}", s.viewSessionHandler)
	s.handle(mux, "DELETE /api/sessions/v1/{id}", s.closeSessionHandler)
	s.handle(mux, "PUT /api/sessions/v1/{id}/guests", s.changeGuestsHandler)
	s.handle(mux, "PUT /api/sessions/v1/{id}/dates", s.changeDatesHandler)
	s.handle(mux, "POST /api/sessions/v1/{id}/refresh", s.refreshHandler)
	s.handle(mux, "POST /api/sessions/v1/{id}/tiers/{capacity}/increment", s.tierHandler(true))
	s.handle(mux, "POST /api/sessions/v1/{id}/tiers/{capacity}/decrement", s.tierHandler(false))
	s.handle(mux, "POST /api/sessions/v1/{id}/orders", s.confirmHandler)
	s.handle(mux, "POST /api/orders/v1", s.createOrderHandler)
	s.handle(mux, fmt.Sprintf("GET %s", s.conf.LivenessEndpoint), s.livenessHandler)
}
