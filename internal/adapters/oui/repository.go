package oui

import (
	"context"
	"errors"
)

// VendorRepository defines the interface for looking up device vendors by MAC address
type VendorRepository interface {
	// LookupVendor returns the vendor name for a given MAC address
	LookupVendor(ctx context.Context, mac MACAddress) (string, error)

	// Close releases any resources held by the repository
	Close() error
}

// CompositeRepository tries each repository in order until one returns a
// known vendor.
type CompositeRepository struct {
	repositories []VendorRepository
}

// NewCompositeRepository chains repos in lookup order.
func NewCompositeRepository(repos ...VendorRepository) *CompositeRepository {
	return &CompositeRepository{repositories: repos}
}

// LookupVendor returns the first known vendor. The last non-miss error is
// reported when every repository fails.
func (c *CompositeRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" && vendor != domainUnknown {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return domainUnknown, lastErr
	}
	return domainUnknown, ErrVendorNotFound
}

// Close closes all repositories
func (c *CompositeRepository) Close() error {
	var errs []error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StaticRepository provides vendor lookups from an in-memory map keyed by
// "XX:XX:XX".
type StaticRepository struct {
	vendors map[string]string
}

// NewStaticRepository creates a new static repository
func NewStaticRepository(vendors map[string]string) *StaticRepository {
	normalized := make(map[string]string, len(vendors))
	for prefix, vendor := range vendors {
		normalized[NormalizePrefix(prefix)] = vendor
	}
	return &StaticRepository{vendors: normalized}
}

// LookupVendor looks up a vendor in the static map
func (s *StaticRepository) LookupVendor(_ context.Context, mac MACAddress) (string, error) {
	if vendor, ok := s.vendors[mac.OUI()]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// Close is a no-op for static repository
func (s *StaticRepository) Close() error {
	return nil
}
