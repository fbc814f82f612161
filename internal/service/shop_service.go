package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/gaming-lounge-booking/internal/clock"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/repository"
)

// ShopStore is the shop persistence.
type ShopStore interface {
	ListActive(ctx context.Context, city, country string) ([]model.Shop, error)
	ListAll(ctx context.Context) ([]model.Shop, error)
	GetByID(ctx context.Context, id uint64) (*model.Shop, error)
	CreateWithStations(ctx context.Context, s *model.Shop, stations []model.Station) error
	AddStationsIfEmpty(ctx context.Context, shopID uint64, stations []model.Station) error
}

// StationLister lists stations for a shop detail page.
type StationLister interface {
	List(ctx context.Context, f repository.StationFilter) ([]repository.StationRow, error)
}

// UserLister lists customer accounts for the admin console.
type UserLister interface {
	ListPlain(ctx context.Context) ([]model.User, error)
}

// Default hardware seeded into a new shop.
const (
	defaultPCStations = 5
	defaultPSStations = 3
	pcSpecs           = "RTX 4070, Intel i7-13700K, 32GB RAM, 144Hz Monitor"
	psSpecs           = "PlayStation 5, 4K TV, DualSense Controller"
)

var consoleSurcharge = decimal.NewFromInt(1)

type ShopService struct {
	shops    ShopStore
	stations StationLister
	users    UserLister
	clock    clock.Clock
}

func NewShopService(shops ShopStore, stations StationLister, users UserLister, clk clock.Clock) *ShopService {
	return &ShopService{shops: shops, stations: stations, users: users, clock: clk}
}

// ListActive returns active shops, optionally by city and country.
func (s *ShopService) ListActive(ctx context.Context, city, country string) ([]model.Shop, error) {
	return s.shops.ListActive(ctx, strings.TrimSpace(city), strings.TrimSpace(country))
}

// ShopDetail is a shop with all of its stations and their stored status.
type ShopDetail struct {
	model.Shop
	Stations []model.Station `json:"stations"`
}

// Get returns an active shop with its stations.
func (s *ShopService) Get(ctx context.Context, id uint64) (*ShopDetail, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "shop")
	}
	if !shop.IsActive {
		return nil, notFound("shop")
	}
	rows, err := s.stations.List(ctx, repository.StationFilter{ShopID: &id, IncludeMaintenance: true})
	if err != nil {
		return nil, err
	}
	d := &ShopDetail{Shop: *shop, Stations: make([]model.Station, 0, len(rows))}
	for _, r := range rows {
		d.Stations = append(d.Stations, r.Station)
	}
	return d, nil
}

// ListAll returns every shop for the admin console.
func (s *ShopService) ListAll(ctx context.Context) ([]model.Shop, error) {
	return s.shops.ListAll(ctx)
}

// ListCustomers returns users holding no capability.
func (s *ShopService) ListCustomers(ctx context.Context) ([]model.User, error) {
	return s.users.ListPlain(ctx)
}

// CreateShopInput is the admin form for a new shop.
type CreateShopInput struct {
	Name        string
	Address     string
	City        string
	Country     string
	PhoneNumber string
	Email       string
	HourlyRate  decimal.Decimal
	OwnerID     *uint64
}

// Create stores an active shop together with its default stations.
func (s *ShopService) Create(ctx context.Context, in CreateShopInput) (*ShopDetail, error) {
	shop := &model.Shop{
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		Country:    strings.TrimSpace(in.Country),
		HourlyRate: in.HourlyRate.Round(2),
		IsActive:   true,
		OwnerID:    in.OwnerID,
		CreatedAt:  s.clock.Now(),
	}
	switch {
	case shop.Name == "":
		return nil, invalid("name", "is required")
	case shop.Address == "":
		return nil, invalid("address", "is required")
	case shop.City == "" || shop.Country == "":
		return nil, invalid("city", "city and country are required")
	case !shop.HourlyRate.IsPositive():
		return nil, invalid("hourly_rate", "must be positive")
	}
	if p := strings.TrimSpace(in.PhoneNumber); p != "" {
		shop.PhoneNumber = &p
	}
	if e := strings.TrimSpace(in.Email); e != "" {
		shop.Email = &e
	}

	stations := DefaultStations(shop.HourlyRate, shop.CreatedAt)
	if err := s.shops.CreateWithStations(ctx, shop, stations); err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}
	return &ShopDetail{Shop: *shop, Stations: stations}, nil
}

// AddDefaultStations seeds the default stations into a shop that has none.
func (s *ShopService) AddDefaultStations(ctx context.Context, shopID uint64) ([]model.Station, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, fromRepo(err, "shop")
	}
	stations := DefaultStations(shop.HourlyRate, s.clock.Now())
	if err := s.shops.AddStationsIfEmpty(ctx, shopID, stations); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict("shop already has gaming stations")
		}
		return nil, fromRepo(err, "shop")
	}
	return stations, nil
}

// DefaultStations builds the starter set for a shop: PCs at the shop rate
// and PlayStation 5 stations one unit dearer.
func DefaultStations(rate decimal.Decimal, createdAt time.Time) []model.Station {
	out := make([]model.Station, 0, defaultPCStations+defaultPSStations)
	pc, ps := pcSpecs, psSpecs
	for i := 1; i <= defaultPCStations; i++ {
		out = append(out, model.Station{
			Name:           fmt.Sprintf("PC Station %d", i),
			Type:           model.StationPC,
			Status:         model.StationAvailable,
			HourlyRate:     rate,
			Specifications: &pc,
			CreatedAt:      createdAt,
		})
	}
	for i := 1; i <= defaultPSStations; i++ {
		out = append(out, model.Station{
			Name:           fmt.Sprintf("PlayStation 5 Station %d", i),
			Type:           model.StationPlayStation,
			Status:         model.StationAvailable,
			HourlyRate:     rate.Add(consoleSurcharge),
			Specifications: &ps,
			CreatedAt:      createdAt,
		})
	}
	return out
}
