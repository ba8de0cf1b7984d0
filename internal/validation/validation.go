package validation

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"prostore/internal/models"
)

// Error is a user-facing validation failure. Handlers and the client store
// treat it as caller error, never as a server fault.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrNameRequired      = &Error{"Product must have a name."}
	ErrNameCostRequired  = &Error{"Please provide the name and cost of the product."}
	ErrCostInvalid       = &Error{"Cost must be a valid decimal number, greater than zero."}
	ErrStockInvalid      = &Error{"Stock must be a valid number."}
	ErrNameTooLong       = &Error{"Name cannot exceed 30 characters."}
	ErrDescriptionLength = &Error{"Description cannot exceed 500 characters."}
	ErrImageTooLong      = &Error{"Image URL cannot exceed 2083 characters."}
)

var validate = validator.New()

// NormalizeCreate checks a create request and returns the product ready for
// insertion: cost rounded half away from zero to exactly two decimal places,
// stock defaulted to 0 and image to the placeholder URL.
func NormalizeCreate(in *models.ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}
	if in.Cost == nil {
		return nil, ErrNameCostRequired
	}

	cost, err := normalizeCost(*in.Cost)
	if err != nil {
		return nil, err
	}

	stock := 0
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, ErrStockInvalid
		}
		stock = *in.Stock
	}

	description := ""
	if in.Description != nil {
		description = *in.Description
	}

	image := models.DefaultImageURL
	if in.Image != nil && *in.Image != "" {
		image = *in.Image
	}

	product := &models.Product{
		Name:        *in.Name,
		Cost:        cost,
		Stock:       stock,
		Description: description,
		Image:       image,
	}
	if err := checkStruct(product); err != nil {
		return nil, err
	}
	return product, nil
}

// NormalizeUpdate merges the supplied fields over an existing row. Absent
// fields keep their stored value; an explicit stock of 0 is an update, not
// an omission. The merged row is re-validated as a whole.
func NormalizeUpdate(in *models.ProductInput, existing *models.Product) (*models.Product, error) {
	merged := *existing

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		merged.Name = *in.Name
	}
	if in.Cost != nil {
		cost, err := normalizeCost(*in.Cost)
		if err != nil {
			return nil, err
		}
		merged.Cost = cost
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, ErrStockInvalid
		}
		merged.Stock = *in.Stock
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if in.Image != nil && *in.Image != "" {
		merged.Image = *in.Image
	}

	if err := checkStruct(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// normalizeCost enforces the positive-cost rule and pins the rounding mode:
// half away from zero at two decimal places, so 9.999 becomes 10.00 and
// 9.994 becomes 9.99.
func normalizeCost(cost decimal.Decimal) (decimal.Decimal, error) {
	if cost.Sign() <= 0 {
		return decimal.Decimal{}, ErrCostInvalid
	}
	return cost.Round(2), nil
}

// checkStruct runs the struct-tag rules on the assembled product and maps
// the first failure to its field-specific message.
func checkStruct(p *models.Product) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return ErrNameCostRequired
	}
	switch errs[0].Field() {
	case "Name":
		if errs[0].Tag() == "required" {
			return ErrNameRequired
		}
		return ErrNameTooLong
	case "Stock":
		return ErrStockInvalid
	case "Description":
		return ErrDescriptionLength
	case "Image":
		return ErrImageTooLong
	default:
		return &Error{"Product is not valid."}
	}
}

// Form carries raw string fields as entered at the UI boundary.
type Form struct {
	Name        string
	Cost        string
	Stock       string
	Description string
	Image       string
}

// ParseForm converts form strings into a ProductInput. Empty fields become
// absent; a non-numeric cost or stock is rejected before any request is made.
func ParseForm(f Form) (*models.ProductInput, error) {
	in := &models.ProductInput{}

	if f.Name != "" {
		name := f.Name
		in.Name = &name
	}
	if f.Cost != "" {
		cost, err := decimal.NewFromString(f.Cost)
		if err != nil {
			return nil, ErrCostInvalid
		}
		in.Cost = &cost
	}
	if f.Stock != "" {
		stock, err := strconv.Atoi(f.Stock)
		if err != nil {
			return nil, ErrStockInvalid
		}
		in.Stock = &stock
	}
	if f.Description != "" {
		description := f.Description
		in.Description = &description
	}
	if f.Image != "" {
		image := f.Image
		in.Image = &image
	}
	return in, nil
}
