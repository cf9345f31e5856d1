package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

type Config struct {
	L *logger.Logger
}

type transaction struct {
	id                 string
	roomModifications  map[string]*booking.RoomAvailability
	orderModifications map[int]*booking.Order
	eventModifications map[int]*booking.Event
}

// DB keeps the catalog, per-night room quotas, promo codes and orders.
// Writes to quotas, orders and events go through transactions.
type DB struct {
	mu                   sync.Mutex
	l                    *logger.Logger
	hotels               map[string]*catalog.Hotel
	roomAvailabilities   map[string]*booking.RoomAvailability
	promoCodes           map[string]*pricing.PromoCode
	events               map[int]*booking.Event
	orders               map[int]*booking.Order
	transactions         map[string]*transaction
	nextTrxID            int64
	orderIdempotencyKeys map[string]*booking.Order
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:                    conf.L.With("storage"),
		hotels:               make(map[string]*catalog.Hotel),
		roomAvailabilities:   make(map[string]*booking.RoomAvailability),
		promoCodes:           make(map[string]*pricing.PromoCode),
		events:               make(map[int]*booking.Event),
		orders:               make(map[int]*booking.Order),
		transactions:         make(map[string]*transaction),
		orderIdempotencyKeys: make(map[string]*booking.Order),
	}
}

func availabilityKey(hotelID, roomID string, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s", hotelID, roomID, date.Format(catalog.DateLayout))
}

func (db *DB) SaveHotel(_ context.Context, hotel *catalog.Hotel) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *hotel
	stored.Rooms = append(stored.Rooms[:0:0], hotel.Rooms...)

	db.hotels[hotel.ID] = &stored

	return nil
}

func (db *DB) GetHotel(_ context.Context, hotelID string) (*catalog.Hotel, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	hotel, ok := db.hotels[hotelID]
	if !ok {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, catalog.ErrHotelNotFound)
	}

	res := *hotel
	res.Rooms = append(res.Rooms[:0:0], hotel.Rooms...)

	return &res, nil
}

// AvailableRoomIDs lists rooms with quota left on every night of the window.
func (db *DB) AvailableRoomIDs(_ context.Context, query catalog.Query) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	hotel, ok := db.hotels[query.HotelID]
	if !ok {
		return nil, fmt.Errorf("hotel %s: %w", query.HotelID, catalog.ErrHotelNotFound)
	}

	dates := query.Window.Dates()
	ids := make([]string, 0, len(hotel.Rooms))

	for _, room := range hotel.Rooms {
		if db.hasQuota(hotel.ID, room.ID, dates) {
			ids = append(ids, room.ID)
		}
	}

	return ids, nil
}

func (db *DB) hasQuota(hotelID, roomID string, dates []time.Time) bool {
	for _, d := range dates {
		availability, ok := db.roomAvailabilities[availabilityKey(hotelID, roomID, d)]
		if !ok || availability.Quota < 1 {
			return false
		}
	}

	return true
}

func (db *DB) SavePromoCode(_ context.Context, promo *pricing.PromoCode) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *promo
	db.promoCodes[strings.ToUpper(promo.Code)] = &stored

	return nil
}

func (db *DB) GetPromoCode(_ context.Context, code string) (*pricing.PromoCode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	promo, ok := db.promoCodes[strings.ToUpper(code)]
	if !ok {
		return nil, pricing.ErrPromoCodeNotFound
	}

	res := *promo

	return &res, nil
}

func (db *DB) BeginTransaction(ctx context.Context, _ string) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:                 trxID,
		roomModifications:  make(map[string]*booking.RoomAvailability),
		orderModifications: make(map[int]*booking.Order),
		eventModifications: make(map[int]*booking.Event),
	}

	return withTransactionID(ctx, trxID), nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := transactionFromContext(ctx, db.transactions)
	if err != nil {
		return err
	}

	idempotencyKey, ok := booking.IdempotencyKey(ctx)
	if !ok && len(trx.orderModifications) > 0 {
		return booking.ErrIdempotencyKey
	}

	// A reservation lowers quota by one. If the stored quota is already at or
	// below the new value, another order took the unit after this one read it.
	for key, room := range trx.roomModifications {
		if len(trx.orderModifications) == 0 {
			break
		}

		if stored, exists := db.roomAvailabilities[key]; exists && stored.Quota <= room.Quota {
			availabilityErr := booking.NewAvailabilityError()
			availabilityErr.AddUnavailableRoom(room.HotelID, room.RoomID, []time.Time{room.Date})

			delete(db.transactions, trx.id)

			return availabilityErr
		}
	}

	for key, room := range trx.roomModifications {
		db.roomAvailabilities[key] = room
	}

	for _, order := range trx.orderModifications {
		db.orders[order.ID] = order
		db.orderIdempotencyKeys[idempotencyKey] = order
	}

	for _, event := range trx.eventModifications {
		db.events[event.ID] = event
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := transactionFromContext(ctx, db.transactions)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) SaveRoomAvailabilities(ctx context.Context, availabilities []*booking.RoomAvailability) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := transactionFromContext(ctx, db.transactions)
	if err != nil {
		return err
	}

	for _, availability := range availabilities {
		trx.roomModifications[availabilityKey(availability.HotelID, availability.RoomID, availability.Date)] = availability
	}

	return nil
}

func (db *DB) SaveOrder(ctx context.Context, order *booking.Order) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := transactionFromContext(ctx, db.transactions)
	if err != nil {
		return err
	}

	trx.orderModifications[order.ID] = order

	return nil
}

func (db *DB) SaveEvent(ctx context.Context, event *booking.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := transactionFromContext(ctx, db.transactions)
	if err != nil {
		return err
	}

	trx.eventModifications[event.ID] = event

	return nil
}

func (db *DB) GetAvailabilities(_ context.Context, inputs []booking.GetAvailabilityInput) ([]*booking.RoomAvailability, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	availabilityErr := booking.NewAvailabilityError()

	var result []*booking.RoomAvailability

	for _, input := range inputs {
		var unavailableDates []time.Time

		for _, d := range input.Window.Dates() {
			roomAvailability, ok := db.roomAvailabilities[availabilityKey(input.HotelID, input.RoomID, d)]
			if !ok || roomAvailability.Quota < 1 {
				unavailableDates = append(unavailableDates, d)

				continue
			}

			res := *roomAvailability
			result = append(result, &res)
		}

		if len(unavailableDates) > 0 {
			availabilityErr.AddUnavailableRoom(input.HotelID, input.RoomID, unavailableDates)
		}
	}

	if availabilityErr.UnavailableRoomsCount() > 0 {
		return nil, availabilityErr
	}

	return result, nil
}

func (db *DB) GetOrderByIdempotencyKey(ctx context.Context) (*booking.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := booking.IdempotencyKey(ctx)
	if !ok {
		return nil, booking.ErrIdempotencyKey
	}

	order, exists := db.orderIdempotencyKeys[key]
	if exists {
		return order, nil
	}

	return nil, booking.ErrRecordNotFound
}

func (db *DB) GetOrder(_ context.Context, id int) (*booking.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	order, ok := db.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}

	return order, nil
}

// Events returns committed events in id order.
func (db *DB) Events(_ context.Context) []*booking.Event {
	db.mu.Lock()
	defer db.mu.Unlock()

	res := make([]*booking.Event, 0, len(db.events))
	for _, e := range db.events {
		res = append(res, e)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res
}
