package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

type contextKey string

const idempotencyKeyCtx contextKey = "orderIdempotencyKey"

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx, key)
}

func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx).(string)

	return key, ok && key != ""
}

type idGenerator interface {
	GetID(ctx context.Context) (int, error)
}

type storageReader interface {
	GetHotel(ctx context.Context, hotelID string) (*catalog.Hotel, error)
	GetAvailabilities(ctx context.Context, inputs []GetAvailabilityInput) ([]*RoomAvailability, error)
	GetOrderByIdempotencyKey(ctx context.Context) (*Order, error)
}

type storageWriter interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveRoomAvailabilities(ctx context.Context, availabilities []*RoomAvailability) error
	SaveEvent(ctx context.Context, event *Event) error
	SaveOrder(ctx context.Context, order *Order) error
}

type storage interface {
	storageReader
	storageWriter
}

type pricer interface {
	Quote(ctx context.Context, base float64, promoCode string) (pricing.Quote, error)
}

type Manager struct {
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
	pricer      pricer
	now         func() time.Time
}

func New(l *logger.Logger, storage storage, idGenerator idGenerator, pricer pricer) *Manager {
	return &Manager{
		l:           l.With("booking"),
		storage:     storage,
		idGenerator: idGenerator,
		pricer:      pricer,
		now:         time.Now,
	}
}

func (b *BookInput) validate(today time.Time) *InputError {
	inputErr := NewInputError()

	if _, err := mail.ParseAddress(b.Payer.Email); err != nil {
		inputErr.AddError("payer.email", "provide valid email")
	}

	if strings.TrimSpace(b.HotelID) == "" {
		inputErr.AddError("hotel_id", "provide hotel_id")
	}

	if len(b.RoomIDs) == 0 {
		inputErr.AddError("room_ids", "please select at least one room")
	}

	seen := make(map[string]struct{}, len(b.RoomIDs))
	for _, id := range b.RoomIDs {
		if _, ok := seen[id]; ok {
			inputErr.AddError("room_ids", fmt.Sprintf("room %s selected twice", id))
		}

		seen[id] = struct{}{}
	}

	if b.Guests < 1 {
		inputErr.AddError("guests", "provide at least one guest")
	}

	if err := b.Window.Validate(); err != nil {
		inputErr.AddError("check_out", err.Error())
	}

	if b.Window.CheckIn.Before(today) {
		inputErr.AddError("check_in", "check_in must not be in the past")
	}

	return inputErr
}

// checkRooms verifies the rooms belong to the hotel and sleep the party, and
// returns the nightly rate of the whole set.
func (b *BookInput) checkRooms(hotel *catalog.Hotel) (float64, error) {
	inputErr := NewInputError()

	byID := make(map[string]int, len(hotel.Rooms))
	for i, r := range hotel.Rooms {
		byID[r.ID] = i
	}

	var capacity int

	var nightly float64

	for _, id := range b.RoomIDs {
		idx, ok := byID[id]
		if !ok {
			inputErr.AddError("room_ids", fmt.Sprintf("room %s does not belong to hotel %s", id, hotel.ID))

			continue
		}

		capacity += hotel.Rooms[idx].Capacity
		nightly += hotel.Rooms[idx].PricePerNight
	}

	if inputErr.FieldsCount() == 0 && capacity < b.Guests {
		inputErr.AddError("guests", fmt.Sprintf("need %d more guest capacity", b.Guests-capacity))
	}

	if err := inputErr.OrNil(); err != nil {
		return 0, err
	}

	return nightly, nil
}

func (m *Manager) buildOrder(ctx context.Context, input *BookInput, nightly float64) (*Order, *Event, error) {
	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, nil, ErrNextID
	}

	nights := input.Window.Nights()

	quote, err := m.pricer.Quote(ctx, nightly*float64(nights), input.PromoCode)
	if errors.Is(err, pricing.ErrPromoCodeExpired) || errors.Is(err, pricing.ErrPromoCodeNotFound) {
		inputErr := NewInputError()
		inputErr.AddError("promo_code", err.Error())

		return nil, nil, inputErr
	}

	if err != nil {
		return nil, nil, fmt.Errorf("quote order: %w", err)
	}

	order := &Order{
		ID:        id,
		HotelID:   input.HotelID,
		RoomIDs:   input.RoomIDs,
		Window:    input.Window,
		Nights:    nights,
		Guests:    input.Guests,
		Payer:     input.Payer,
		Price:     quote,
		Status:    StatusPendingPayment,
		CreatedAt: m.now().UTC(),
	}

	event, err := m.buildEvent(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("build event for order %v: %w", order.ID, err)
	}

	return order, event, nil
}

func (m *Manager) buildEvent(ctx context.Context, orderID int) (*Event, error) {
	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, ErrNextID
	}

	return &Event{
		ID:        id,
		OrderID:   orderID,
		Type:      "order_created",
		CreatedAt: m.now().UTC(),
	}, nil
}

func (m *Manager) getRoomAvailabilities(ctx context.Context, input *BookInput) ([]*RoomAvailability, error) {
	req := make([]GetAvailabilityInput, 0, len(input.RoomIDs))

	for _, roomID := range input.RoomIDs {
		req = append(req, GetAvailabilityInput{
			HotelID: input.HotelID,
			RoomID:  roomID,
			Window:  input.Window,
		})
	}

	availabilities, err := m.storage.GetAvailabilities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get availabilities from storage: %w", err)
	}

	return availabilities, nil
}

// reserveRooms takes one unit of quota for every room night. Stored records
// are copied so nothing changes before the transaction commits.
func (m *Manager) reserveRooms(input *BookInput, availabilities []*RoomAvailability) ([]*RoomAvailability, error) {
	availabilityMap := make(map[string]*RoomAvailability, len(availabilities))

	for _, availability := range availabilities {
		availabilityMap[availabilityKey(availability.RoomID, availability.Date)] = availability
	}

	updated := make([]*RoomAvailability, 0, len(availabilities))

	for _, roomID := range input.RoomIDs {
		for _, date := range input.Window.Dates() {
			availability, ok := availabilityMap[availabilityKey(roomID, date)]
			if !ok {
				return nil, fmt.Errorf(
					"storage returned no quota for room %s on %s: %w",
					roomID,
					date.Format(catalog.DateLayout),
					ErrLogic,
				)
			}

			reserved := *availability
			reserved.Quota--

			updated = append(updated, &reserved)
		}
	}

	return updated, nil
}

func availabilityKey(roomID string, date time.Time) string {
	return roomID + "_" + date.Format(catalog.DateLayout)
}

//nolint:funlen,cyclop // it's linear simple code
func (m *Manager) CreateOrder(ctx context.Context, input *BookInput) (out *Order, err error) {
	if err := input.validate(truncateDay(m.now())).OrNil(); err != nil {
		return nil, err
	}

	order, err := m.storage.GetOrderByIdempotencyKey(ctx)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}

	if !errors.Is(err, ErrRecordNotFound) {
		return order, nil
	}

	hotel, err := m.storage.GetHotel(ctx, input.HotelID)
	if err != nil {
		return nil, fmt.Errorf("get hotel %s: %w", input.HotelID, err)
	}

	nightly, err := input.checkRooms(hotel)
	if err != nil {
		return nil, err
	}

	availabilities, err := m.getRoomAvailabilities(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get availabilities: %w", err)
	}

	availabilities, err = m.reserveRooms(input, availabilities)
	if err != nil {
		return nil, fmt.Errorf("reserve rooms: %w", err)
	}

	order, event, err := m.buildOrder(ctx, input, nightly)
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}

	ctx, err = m.storage.BeginTransaction(ctx, "READ COMMITTED")
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback booking transaction after panic %v", p)
			}

			m.l.LogInfo("Transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback booking transaction after error %v", rbErr.Error())
			}

			m.l.LogInfo("Transaction has been roll backed after error")

			return
		}

		if err = m.storage.CommitTransaction(ctx); err != nil {
			m.l.LogErrorf("Could not commit booking transaction, err %v", err.Error())

			out = nil
			err = fmt.Errorf("commit booking transaction: %w", err)

			return
		}

		m.l.LogInfo("Order %d for hotel %s committed, rooms %v, %s", order.ID, order.HotelID, order.RoomIDs, order.Window)
	}()

	if err = m.storage.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order to storage: %w", err)
	}

	if err = m.storage.SaveRoomAvailabilities(ctx, availabilities); err != nil {
		return nil, fmt.Errorf("save room availabilities to storage: %w", err)
	}

	if err = m.storage.SaveEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("save event to storage: %w", err)
	}

	return order, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
