package service

import (
	"context"
	"strings"

	"batilink/internal/model"
	"batilink/internal/repository"
	"batilink/pkg/apierror"
)

type AddressService struct {
	addresses *repository.AddressRepository
}

func NewAddressService(addresses *repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) Create(ctx context.Context, req model.CreateAddressRequest) (model.Address, error) {
	if strings.TrimSpace(req.AddressLine1) == "" {
		return model.Address{}, apierror.BadRequest("address_line_1 is required", "address_line_1")
	}
	if strings.TrimSpace(req.City) == "" {
		return model.Address{}, apierror.BadRequest("city is required", "city")
	}
	return s.addresses.Create(ctx, model.Address{
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		ZipCode:      strings.TrimSpace(req.ZipCode),
		City:         strings.TrimSpace(req.City),
		Country:      strings.TrimSpace(req.Country),
	})
}

func (s *AddressService) Get(ctx context.Context, id int64) (model.Address, error) {
	return s.addresses.FindByID(ctx, id)
}

func (s *AddressService) List(ctx context.Context) ([]model.Address, error) {
	return s.addresses.List(ctx)
}

func (s *AddressService) Update(ctx context.Context, id int64, req model.CreateAddressRequest) (model.Address, error) {
	address, err := s.addresses.FindByID(ctx, id)
	if err != nil {
		return model.Address{}, err
	}
	if strings.TrimSpace(req.AddressLine1) != "" {
		address.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	}
	if strings.TrimSpace(req.ZipCode) != "" {
		address.ZipCode = strings.TrimSpace(req.ZipCode)
	}
	if strings.TrimSpace(req.City) != "" {
		address.City = strings.TrimSpace(req.City)
	}
	if strings.TrimSpace(req.Country) != "" {
		address.Country = strings.TrimSpace(req.Country)
	}
	return s.addresses.Update(ctx, address)
}

func (s *AddressService) Delete(ctx context.Context, id int64) error {
	return s.addresses.Delete(ctx, id)
}
