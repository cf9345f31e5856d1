package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ishank307/vintzaclient/internal/allocation"
	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	msgNoRooms        = "no rooms available for selected dates"
	msgSelectRoom     = "please select at least one room"
	msgMoreCapacityFm = "need %d more guest capacity"
)

type catalogReader interface {
	GetHotel(ctx context.Context, hotelID string) (*catalog.Hotel, error)
	AvailableRoomIDs(ctx context.Context, query catalog.Query) ([]string, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, input *booking.BookInput) (*booking.Order, error)
}

type pricer interface {
	Quote(ctx context.Context, base float64, promoCode string) (pricing.Quote, error)
}

type Config struct {
	TierLimit     int
	DefaultGuests int
	// SessionTTL is how long a session may sit unused before it is dropped.
	// Zero keeps sessions until they are closed.
	SessionTTL time.Duration
}

// Planner keeps one room selection per hotel page visit. Sessions are
// independent; calls on the same session are serialised.
type Planner struct {
	l       *logger.Logger
	catalog catalogReader
	orders  orderCreator
	pricer  pricer
	conf    Config
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	hotel    *catalog.Hotel
	window   catalog.Window
	selector *allocation.Selector

	// guarded by Planner.mu
	lastSeen time.Time
}

type OpenInput struct {
	HotelID  string
	CheckIn  string
	CheckOut string
	Guests   int
}

type ConfirmInput struct {
	Payer     booking.Payer
	PromoCode string
}

func New(l *logger.Logger, catalog catalogReader, orders orderCreator, pricer pricer, conf Config) *Planner {
	//nolint:exhaustruct
	return &Planner{
		l:        l.With("planner"),
		catalog:  catalog,
		orders:   orders,
		pricer:   pricer,
		conf:     conf,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (p *Planner) Open(ctx context.Context, input OpenInput) (*View, error) {
	window, err := p.parseWindow(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}

	guests := input.Guests
	if guests <= 0 {
		guests = p.conf.DefaultGuests
	}

	hotel, err := p.catalog.GetHotel(ctx, input.HotelID)
	if err != nil {
		return nil, fmt.Errorf("get hotel: %w", err)
	}

	//nolint:exhaustruct
	s := &session{
		id:     uuid.New(),
		hotel:  hotel,
		window: window,
		selector: allocation.NewSelector(allocation.SelectorConf{
			Rooms:     hotel.Rooms,
			Guests:    guests,
			Nights:    window.Nights(),
			TierLimit: p.conf.TierLimit,
		}),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.refresh(ctx, s, guests)

	p.mu.Lock()
	s.lastSeen = p.now()
	p.sessions[s.id] = s
	p.mu.Unlock()

	p.l.LogInfo("Session %s opened for hotel %s, %s, %d guests", s.id, hotel.ID, window, guests)

	return p.view(ctx, s), nil
}

func (p *Planner) View(ctx context.Context, id string) (*View, error) {
	return p.with(id, func(s *session) (*View, error) {
		return p.view(ctx, s), nil
	})
}

// ChangeGuests re-optimises for the new party size, dropping manual edits.
// Availability is queried again because it depends on the guest count, and
// the selection is optimised once against the fresh set.
func (p *Planner) ChangeGuests(ctx context.Context, id string, guests int) (*View, error) {
	if guests < 1 {
		inputErr := booking.NewInputError()
		inputErr.AddError("guests", "provide at least one guest")

		return nil, inputErr
	}

	return p.with(id, func(s *session) (*View, error) {
		p.refresh(ctx, s, guests)

		return p.view(ctx, s), nil
	})
}

func (p *Planner) ChangeDates(ctx context.Context, id, checkIn, checkOut string) (*View, error) {
	window, err := p.parseWindow(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return p.with(id, func(s *session) (*View, error) {
		s.window = window
		s.selector.SetNights(window.Nights())
		p.refresh(ctx, s, s.selector.Guests())

		return p.view(ctx, s), nil
	})
}

func (p *Planner) Refresh(ctx context.Context, id string) (*View, error) {
	return p.with(id, func(s *session) (*View, error) {
		p.refresh(ctx, s, s.selector.Guests())

		return p.view(ctx, s), nil
	})
}

func (p *Planner) IncrementRoom(ctx context.Context, id string, capacity int) (*View, error) {
	return p.with(id, func(s *session) (*View, error) {
		s.selector.IncrementRoom(capacity)

		return p.view(ctx, s), nil
	})
}

func (p *Planner) DecrementRoom(ctx context.Context, id string, capacity int) (*View, error) {
	return p.with(id, func(s *session) (*View, error) {
		s.selector.DecrementRoom(capacity)

		return p.view(ctx, s), nil
	})
}

// Confirm hands the selected rooms to booking. The idempotency key must be
// set on ctx.
func (p *Planner) Confirm(ctx context.Context, id string, input ConfirmInput) (*booking.Order, error) {
	var order *booking.Order

	_, err := p.with(id, func(s *session) (*View, error) {
		if msg := validationMessage(s.selector); msg != "" {
			inputErr := booking.NewInputError()
			inputErr.AddError("selection", msg)

			return nil, inputErr
		}

		totals := s.selector.Totals()

		roomIDs := make([]string, 0, len(totals.SelectedRooms))
		for _, r := range totals.SelectedRooms {
			roomIDs = append(roomIDs, r.ID)
		}

		var err error

		order, err = p.orders.CreateOrder(ctx, &booking.BookInput{
			HotelID:   s.hotel.ID,
			RoomIDs:   roomIDs,
			Window:    s.window,
			Guests:    s.selector.Guests(),
			Payer:     input.Payer,
			PromoCode: input.PromoCode,
		})
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}

		p.refresh(ctx, s, s.selector.Guests())

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (p *Planner) Close(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return ErrSessionNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.sessions[key]; !ok {
		return ErrSessionNotFound
	}

	delete(p.sessions, key)

	return nil
}

func (p *Planner) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.sessions)
}

func (p *Planner) with(id string, fn func(s *session) (*View, error)) (*View, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	now := p.now()

	p.mu.Lock()
	s, ok := p.sessions[key]

	if ok && p.expired(s, now) {
		delete(p.sessions, key)

		ok = false
	}

	if ok {
		s.lastSeen = now
	}
	p.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s)
}

// Sweep drops sessions idle for longer than the configured TTL and reports
// how many were removed.
func (p *Planner) Sweep() int {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	var removed int

	for id, s := range p.sessions {
		if p.expired(s, now) {
			delete(p.sessions, id)

			removed++
		}
	}

	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (p *Planner) Run(ctx context.Context, interval time.Duration) {
	if p.conf.SessionTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := p.Sweep(); removed > 0 {
				p.l.LogInfo("Dropped %d idle sessions", removed)
			}
		}
	}
}

func (p *Planner) expired(s *session, now time.Time) bool {
	return p.conf.SessionTTL > 0 && now.Sub(s.lastSeen) > p.conf.SessionTTL
}

// refresh replaces the availability set in full for the given guest count. A
// failed lookup leaves the session with no available rooms.
func (p *Planner) refresh(ctx context.Context, s *session, guests int) {
	ids, err := p.catalog.AvailableRoomIDs(ctx, catalog.Query{
		HotelID: s.hotel.ID,
		Window:  s.window,
		Guests:  guests,
	})
	if err != nil {
		p.l.LogWarnf("Could not fetch availability for session %s: %v", s.id, err)

		ids = nil
	}

	s.selector.OnSearchChanged(guests, allocation.NewAvailabilitySet(ids...))
}

func (p *Planner) parseWindow(checkIn, checkOut string) (catalog.Window, error) {
	now := p.now()

	window, err := catalog.ParseWindow(strings.TrimSpace(checkIn), strings.TrimSpace(checkOut), now)
	if err != nil {
		inputErr := booking.NewInputError()
		inputErr.AddError("dates", err.Error())

		return catalog.Window{}, inputErr
	}

	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	if window.CheckIn.Before(today) {
		inputErr := booking.NewInputError()
		inputErr.AddError("check_in", "check_in must not be in the past")

		return catalog.Window{}, inputErr
	}

	return window, nil
}

func validationMessage(selector *allocation.Selector) string {
	totals := selector.Totals()

	switch {
	case selector.MaxPossibleCapacity() == 0:
		return msgNoRooms
	case totals.TotalRooms == 0:
		return msgSelectRoom
	case totals.TotalCapacity < selector.Guests():
		return fmt.Sprintf(msgMoreCapacityFm, selector.Guests()-totals.TotalCapacity)
	default:
		return ""
	}
}
