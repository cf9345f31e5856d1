package booking

import (
	"time"

	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

type OrderStatus string

const StatusPendingPayment OrderStatus = "pending_payment"

type RoomAvailability struct {
	HotelID string    `json:"hotel_id"`
	RoomID  string    `json:"room_id"`
	Date    time.Time `json:"date"`
	Quota   int       `json:"quota"`
}

type GetAvailabilityInput struct {
	HotelID string
	RoomID  string
	Window  catalog.Window
}

type Event struct {
	ID        int
	OrderID   int
	Type      string
	CreatedAt time.Time
}

type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BookInput struct {
	HotelID   string         `json:"hotel_id"`
	RoomIDs   []string       `json:"room_ids"`
	Window    catalog.Window `json:"window"`
	Guests    int            `json:"guests"`
	Payer     Payer          `json:"payer"`
	PromoCode string         `json:"promo_code"`
}

type Order struct {
	ID        int            `json:"id"`
	HotelID   string         `json:"hotel_id"`
	RoomIDs   []string       `json:"room_ids"`
	Window    catalog.Window `json:"window"`
	Nights    int            `json:"nights"`
	Guests    int            `json:"guests"`
	Payer     Payer          `json:"payer"`
	Price     pricing.Quote  `json:"price"`
	Status    OrderStatus    `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
