package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/services"
	"go.uber.org/zap"
)

type catalogFixture struct {
	svc      services.CatalogService
	approved models.User
	pending  models.User
	products *fakeProducts
}

func newCatalogFixture() *catalogFixture {
	approved := models.User{ID: uuid.NewString(), Name: "Tigist", Role: models.RoleSeller}
	pending := models.User{ID: uuid.NewString(), Name: "Pending", Role: models.RoleSeller}
	now := time.Now()
	products := newFakeProducts(
		models.Product{ID: uuid.NewString(), Name: "Coffee Mug", Description: "Ceramic", Price: 10, SellerID: approved.ID, CreatedAt: now},
		models.Product{ID: uuid.NewString(), Name: "Scarf", Description: "Hand woven coffee colour", Price: 20, SellerID: approved.ID, CreatedAt: now.Add(-time.Hour)},
		models.Product{ID: uuid.NewString(), Name: "Coffee Beans", Description: "Yirgacheffe", Price: 15, SellerID: pending.ID, CreatedAt: now},
		models.Product{ID: uuid.NewString(), Name: "Orphan", Description: "no seller", Price: 1, SellerID: uuid.NewString(), CreatedAt: now.Add(-2 * time.Hour)},
	)
	profiles := newFakeProfiles(
		models.SellerProfile{UserID: approved.ID, BusinessName: "Tigist Crafts", IsApproved: true},
		models.SellerProfile{UserID: pending.ID, BusinessName: "Later", IsApproved: false},
	)
	f := &catalogFixture{approved: approved, pending: pending, products: products}
	f.svc = services.NewCatalogService(products, newFakeUsers(approved, pending), profiles, &fakeCache{}, zap.NewNop())
	return f
}

func TestMarketplace_OnlyApprovedSellers(t *testing.T) {
	f := newCatalogFixture()
	page, err := f.svc.Marketplace(context.Background(), models.ProductQuery{Search: "coffee"})
	require.Nil(t, err)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Coffee Mug", page.Products[0].Name)
	for _, p := range page.Products {
		require.NotNil(t, p.Seller)
		assert.Equal(t, "Tigist", p.Seller.Name)
		assert.Equal(t, "Tigist Crafts", p.Seller.SellerProfile.BusinessName)
	}
}

func TestMarketplace_PaginationCountsAllMatches(t *testing.T) {
	f := newCatalogFixture()
	page, err := f.svc.Marketplace(context.Background(), models.ProductQuery{Limit: 1, Offset: 1})
	require.Nil(t, err)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Scarf", page.Products[0].Name)
}

func TestListProducts_DefaultsUnknownSeller(t *testing.T) {
	f := newCatalogFixture()
	products, err := f.svc.ListProducts(context.Background())
	require.Nil(t, err)
	for _, p := range products {
		if p.Name == "Orphan" {
			assert.Equal(t, models.UnknownSeller, p.Seller.Name)
			assert.Equal(t, models.UnknownBusiness, p.Seller.SellerProfile.BusinessName)
		}
	}
}

func TestGetProduct(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.svc.GetProduct(context.Background(), uuid.NewString())
	require.NotNil(t, err)
	assert.Equal(t, 404, err.StatusCode)
	assert.Equal(t, "Product not found", err.Message)

	all, _ := f.products.List(context.Background())
	p, err := f.svc.GetProduct(context.Background(), all[0].ID)
	require.Nil(t, err)
	assert.NotNil(t, p.Seller)
}

func TestGetProductsByIDs_RequiresIDs(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.svc.GetProductsByIDs(context.Background(), []string{" ", ""})
	require.NotNil(t, err)
	assert.Equal(t, 400, err.StatusCode)
	assert.Equal(t, "Product IDs are required", err.Message)
}

func TestGetShop(t *testing.T) {
	f := newCatalogFixture()
	shop, err := f.svc.GetShop(context.Background(), f.approved.ID)
	require.Nil(t, err)
	assert.Equal(t, "Tigist Crafts", shop.Profile.BusinessName)
	assert.Len(t, shop.Products, 2)

	_, err = f.svc.GetShop(context.Background(), uuid.NewString())
	require.NotNil(t, err)
	assert.Equal(t, "Seller not found", err.Message)
}
