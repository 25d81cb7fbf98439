package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/autoparts/internal/catalog"
	"github.com/diewo77/autoparts/internal/dbtest"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestService_SearchAndFacets(t *testing.T) {
	svc := catalog.NewService(dbtest.Seeded(t))
	ctx := context.Background()

	all, err := svc.Items(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.Equal(t, "BMW", all[0].Brand)
	require.Equal(t, "Brakes", all[0].Category)

	engine, err := svc.Search(ctx, catalog.Filter{Category: "Engine", Brand: "BMW"})
	require.NoError(t, err)
	require.Len(t, engine, 1)
	require.Equal(t, "Fuel Pump", engine[0].Name)

	facets, err := svc.Facets(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"All", "Audi", "BMW", "Mercedes", "Volkswagen"}, facets.Brands)
	require.Equal(t, catalog.AllOption, facets.Categories[0])
	require.Len(t, facets.Categories, 6)
}

func TestService_NewArrivals(t *testing.T) {
	db := dbtest.Seeded(t)
	svc := catalog.NewService(db)
	ctx := context.Background()

	var products []models.Product
	require.NoError(t, db.Order("id").Limit(2).Find(&products).Error)

	older := models.NewArrival{ProductID: products[0].ID, ArrivalDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), IsFeatured: true,
		OriginalPrice: decimal.NewNullDecimal(decimal.NewFromInt(200)), SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(150)), DiscountPercentage: 25}
	newer := models.NewArrival{ProductID: products[1].ID, ArrivalDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	got, err := svc.NewArrivals(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, newer.ID, got[0].ID)
	require.Equal(t, products[1].Name, got[0].Product.Name)
	require.False(t, got[0].SalePrice.Valid)

	featured, err := svc.NewArrivals(ctx, true)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, 25, featured[0].DiscountPercentage)
	require.True(t, featured[0].SalePrice.Decimal.Equal(decimal.NewFromInt(150)))

	// Soft-deleted products drop off the shelf.
	require.NoError(t, db.Delete(&products[1]).Error)
	got, err = svc.NewArrivals(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
