package enums

import "fmt"

// ProductType distinguishes single-priced products from products priced per
// phone model.
type ProductType string

const (
	ProductTypeNormal       ProductType = "normal"
	ProductTypeCapaPelicula ProductType = "capa_pelicula"
)

var validProductTypes = []ProductType{
	ProductTypeNormal,
	ProductTypeCapaPelicula,
}

// String implements fmt.Stringer.
func (p ProductType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductType.
func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsVariant reports whether prices live on the (product, model) pair.
func (p ProductType) IsVariant() bool {
	return p == ProductTypeCapaPelicula
}

// ParseProductType converts raw input into a ProductType.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}
