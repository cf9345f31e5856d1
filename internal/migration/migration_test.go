package migration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishank307/vintzaclient/internal/catalog"
	"github.com/Ishank307/vintzaclient/internal/logger"
	"github.com/Ishank307/vintzaclient/internal/migration"
	"github.com/Ishank307/vintzaclient/internal/storage/memory"
)

func TestUpSeedsInventory(t *testing.T) {
	ctx := context.Background()
	db := memory.New(memory.Config{L: logger.Discard()})
	now := time.Date(2031, time.March, 10, 15, 0, 0, 0, time.UTC)

	require.NoError(t, migration.Up(ctx, logger.Discard(), db, now, 5))

	hotel, err := db.GetHotel(ctx, migration.DemoHotelID)
	require.NoError(t, err)
	assert.Len(t, hotel.Rooms, 8)

	inside := catalog.Window{CheckIn: time.Date(2031, time.March, 10, 0, 0, 0, 0, time.UTC)}
	inside.CheckOut = inside.CheckIn.AddDate(0, 0, 5)

	ids, err := db.AvailableRoomIDs(ctx, catalog.Query{HotelID: migration.DemoHotelID, Window: inside})
	require.NoError(t, err)
	assert.Len(t, ids, 8)

	beyond := catalog.Window{CheckIn: inside.CheckIn, CheckOut: inside.CheckIn.AddDate(0, 0, 6)}

	ids, err = db.AvailableRoomIDs(ctx, catalog.Query{HotelID: migration.DemoHotelID, Window: beyond})
	require.NoError(t, err)
	assert.Empty(t, ids)

	promo, err := db.GetPromoCode(ctx, "monsoon10")
	require.NoError(t, err)
	assert.InDelta(t, 10, promo.DiscountPercentage, 1e-9)
}
