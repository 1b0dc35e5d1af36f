package service

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/pkg/contracts"
)

// AddressPolicy selects which address fields an order must carry.
type AddressPolicy string

const (
	// AddressFull requires street, city, state, zipCode and country.
	AddressFull AddressPolicy = "full"
	// AddressMinimal requires street and country only.
	AddressMinimal AddressPolicy = "minimal"
)

func ParseAddressPolicy(s string) (AddressPolicy, error) {
	switch AddressPolicy(s) {
	case AddressFull, AddressMinimal:
		return AddressPolicy(s), nil
	case "":
		return AddressFull, nil
	}
	return "", fmt.Errorf("unknown address policy %q", s)
}

func (p AddressPolicy) Validate(a *contracts.Address) error {
	if a == nil {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	required := []struct{ name, value string }{
		{"street", a.Street},
		{"country", a.Country},
	}
	if p != AddressMinimal {
		required = append(required,
			struct{ name, value string }{"city", a.City},
			struct{ name, value string }{"state", a.State},
			struct{ name, value string }{"zipCode", a.ZipCode},
		)
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: address is missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
