package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ishank307/vintzaclient/internal/catalog"
)

var (
	ErrIdempotencyKey = errors.New("idempotency key not found")
	ErrNextID         = errors.New("get next id from generator")
	ErrLogic          = errors.New("logic error")
	ErrRecordNotFound = errors.New("record not found")
)

type UnavailableRoom struct {
	HotelID string   `json:"hotel_id"`
	RoomID  string   `json:"room_id"`
	Dates   []string `json:"dates"`
}

type AvailabilityError struct {
	rooms []UnavailableRoom
}

func NewAvailabilityError() *AvailabilityError {
	//nolint:exhaustruct
	return &AvailabilityError{}
}

func IsAvailabilityError(err error) *AvailabilityError {
	if err == nil {
		return nil
	}

	var availabilityError *AvailabilityError

	if errors.As(err, &availabilityError) {
		return availabilityError
	}

	return nil
}

func (e *AvailabilityError) AddUnavailableRoom(hotelID, roomID string, dates []time.Time) {
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(catalog.DateLayout))
	}

	e.rooms = append(e.rooms, UnavailableRoom{HotelID: hotelID, RoomID: roomID, Dates: formatted})
}

func (e *AvailabilityError) Error() string {
	msgs := make([]string, 0, len(e.rooms))
	for _, r := range e.rooms {
		msgs = append(msgs, fmt.Sprintf("room '%v' is unavailable in hotel '%v' on %v", r.RoomID, r.HotelID, r.Dates))
	}

	return strings.Join(msgs, "; ")
}

func (e *AvailabilityError) Rooms() []UnavailableRoom {
	return e.rooms
}

func (e *AvailabilityError) UnavailableRoomsCount() int {
	return len(e.rooms)
}

type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) FieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) AddError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (ie *InputError) OrNil() error {
	if ie.FieldsCount() == 0 {
		return nil
	}

	return ie
}
