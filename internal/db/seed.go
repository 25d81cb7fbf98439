package db

import (
	"errors"
	"fmt"
	"log"

	"github.com/diewo77/autoparts/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions configures the bootstrap admin account. An empty email skips it.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

var (
	baseBrands     = []string{"BMW", "Mercedes", "Audi", "Volkswagen"}
	baseCategories = []string{"Engine", "Brakes", "Transmission", "Electrical", "Suspension"}
)

type seedProduct struct {
	name, sku, brand, category, price string
	inStock                             bool
}

var baseProducts = []seedProduct{
	{"Brake Pads Set", "BRK-001", "BMW", "Brakes", "299", true},
	{"Oil Filter", "ENG-001", "Mercedes", "Engine", "45", true},
	{"Transmission Mount", "TRN-001", "Audi", "Transmission", "189", false},
	{"Headlight Assembly", "ELC-001", "Volkswagen", "Electrical", "459", true},
	{"Fuel Pump", "ENG-002", "BMW", "Engine", "679", true},
	{"Suspension Strut", "SUS-001", "Mercedes", "Suspension", "389", true},
}

// Seed inserts lookups, a starter catalog and the admin user. Running it
// twice leaves the data unchanged.
func Seed(db *gorm.DB, opts SeedOptions) error {
	brands := make(map[string]uint, len(baseBrands))
	for _, name := range baseBrands {
		b := models.Brand{Name: name}
		if err := db.Where(models.Brand{Name: name}).FirstOrCreate(&b).Error; err != nil {
			return fmt.Errorf("seed brand %s: %w", name, err)
		}
		brands[name] = b.ID
	}
	categories := make(map[string]uint, len(baseCategories))
	for _, name := range baseCategories {
		c := models.Category{Name: name}
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
		categories[name] = c.ID
	}
	for _, sp := range baseProducts {
		var existing models.Product
		err := db.Unscoped().Where("sku = ?", sp.sku).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed product %s: %w", sp.sku, err)
		}
		bid, cid := brands[sp.brand], categories[sp.category]
		p := models.Product{
			Name:          sp.name,
			SKU:           sp.sku,
			Price:         decimal.RequireFromString(sp.price),
			InStock:       sp.inStock,
			StockQuantity: 10,
			BrandID:       &bid,
			CategoryID:    &cid,
		}
		if !sp.inStock {
			p.StockQuantity = 0
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", sp.sku, err)
		}
	}
	if opts.AdminEmail != "" {
		if err := seedAdmin(db, opts); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, opts SeedOptions) error {
	var u models.User
	err := db.Where("email = ?", opts.AdminEmail).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, herr := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if herr != nil {
			return fmt.Errorf("hash admin password: %w", herr)
		}
		u = models.User{Email: opts.AdminEmail, FullName: "Administrator", Password: string(hash)}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Printf("[DB] seeded admin user %s", opts.AdminEmail)
	} else if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	role := models.UserRole{UserID: u.ID, Role: models.RoleAdmin}
	if err := db.Where(role).FirstOrCreate(&role).Error; err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	return nil
}
