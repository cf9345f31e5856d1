package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/Ishank307/vintzaclient/internal/allocation"
	"github.com/Ishank307/vintzaclient/internal/booking"
	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/pricing"
)

const DemoHotelID = "dandeli-vintage"

type storage interface {
	SaveHotel(ctx context.Context, hotel *catalog.Hotel) error
	SavePromoCode(ctx context.Context, promo *pricing.PromoCode) error
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveRoomAvailabilities(ctx context.Context, availabilities []*booking.RoomAvailability) error
}

func rooms(prefix string, capacity int, prices ...float64) []allocation.Room {
	res := make([]allocation.Room, 0, len(prices))

	for i, price := range prices {
		res = append(res, allocation.Room{
			ID:            fmt.Sprintf("%s-%d", prefix, i+1),
			Capacity:      capacity,
			PricePerNight: price,
			Images:        []string{fmt.Sprintf("/media/rooms/%s-%d.jpg", prefix, i+1)},
		})
	}

	return res
}

func hotels() []*catalog.Hotel {
	var resort []allocation.Room

	resort = append(resort, rooms("cottage", 2, 2499, 2799, 2999)...)
	resort = append(resort, rooms("treehouse", 3, 3499, 3699)...)
	resort = append(resort, rooms("family", 4, 4299, 4599)...)
	resort = append(resort, rooms("villa", 6, 6999)...)

	return []*catalog.Hotel{
		{
			ID:       DemoHotelID,
			Name:     "Dandeli Vintage Resort",
			Location: "Dandeli",
			Rooms:    resort,
		},
		{
			ID:       "kali-riverside",
			Name:     "Kali Riverside Camp",
			Location: "Dandeli",
			Rooms:    append(rooms("tent", 2, 1499, 1499), rooms("dorm", 4, 1999)...),
		},
	}
}

// Up seeds the catalog and gives every room one unit of quota for each of the
// next days nights starting at now.
func Up(ctx context.Context, l *logger.Logger, storage storage, now time.Time, days int) (err error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var roomAvailabilities []*booking.RoomAvailability

	for _, hotel := range hotels() {
		if err := storage.SaveHotel(ctx, hotel); err != nil {
			return fmt.Errorf("save hotel %s: %w", hotel.ID, err)
		}

		for _, room := range hotel.Rooms {
			for day := 0; day < days; day++ {
				roomAvailabilities = append(roomAvailabilities, &booking.RoomAvailability{
					HotelID: hotel.ID,
					RoomID:  room.ID,
					Date:    start.AddDate(0, 0, day),
					Quota:   1,
				})
			}
		}
	}

	promo := &pricing.PromoCode{
		Code:               "MONSOON10",
		DiscountPercentage: 10,                          //nolint:gomnd
		ValidThrough:       start.AddDate(0, 0, days+1), //nolint:gomnd
	}
	if err := storage.SavePromoCode(ctx, promo); err != nil {
		return fmt.Errorf("save promo code: %w", err)
	}

	ctx, err = storage.BeginTransaction(ctx, "")
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := storage.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback migration transaction after panic %v", p)
			}

			l.LogInfo("Migration transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := storage.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback migration transaction after error %v", rbErr.Error())
			}

			l.LogInfo("Migration transaction has been roll backed after error")

			return
		}

		if err = storage.CommitTransaction(ctx); err != nil {
			l.LogErrorf("Could not commit migration transaction, err %v", err.Error())

			return
		}

		l.LogInfo("Migration transaction has been committed, %d room nights seeded", len(roomAvailabilities))
	}()

	if err = storage.SaveRoomAvailabilities(ctx, roomAvailabilities); err != nil {
		return fmt.Errorf("save room availabilities to storage: %w", err)
	}

	return nil
}
