package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// OrderLine is one requested line. UnitPrice is whatever the client sent and is never trusted.
type OrderLine struct {
	ProductID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// ShippingInfo carries address snapshots and charges supplied with the order.
type ShippingInfo struct {
	ShippingAddress model.Address
	BillingAddress  *model.Address
	ShippingCost    decimal.Decimal
	TaxAmount       decimal.Decimal
}

// CreateOrderInput is the purchase request handed to OrderCreationService.
type CreateOrderInput struct {
	Items       []OrderLine
	Shipping    ShippingInfo
	ClientTotal decimal.Decimal
	Notes       *string
}

func validateOrderInput(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return domainErrors.NewValidationError("items", "at least one item is required")
	}
	for i, line := range in.Items {
		if line.ProductID <= 0 {
			return domainErrors.NewValidationError(fmt.Sprintf("items[%d].productId", i), "must be positive")
		}
		if line.Quantity <= 0 {
			return domainErrors.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
	}
	if !in.ClientTotal.IsPositive() {
		return domainErrors.NewValidationError("totalAmount", "must be positive")
	}
	if err := validateCharge("shippingCost", in.Shipping.ShippingCost); err != nil {
		return err
	}
	if err := validateCharge("taxAmount", in.Shipping.TaxAmount); err != nil {
		return err
	}
	if err := validateAddress("shippingAddress", in.Shipping.ShippingAddress); err != nil {
		return err
	}
	if in.Shipping.BillingAddress != nil {
		return validateAddress("billingAddress", *in.Shipping.BillingAddress)
	}
	return nil
}

// validateCharge accepts non-negative amounts with at most two decimal places,
// the precision every stored amount is kept at.
func validateCharge(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domainErrors.NewValidationError(field, "must not be negative")
	}
	if !amount.Equal(amount.Round(2)) {
		return domainErrors.NewValidationError(field, "must have at most two decimal places")
	}
	return nil
}

func validateAddress(field string, addr model.Address) error {
	required := map[string]string{
		"fullName":   addr.FullName,
		"line1":      addr.Line1,
		"city":       addr.City,
		"postalCode": addr.PostalCode,
		"country":    addr.Country,
	}
	for _, name := range []string{"fullName", "line1", "city", "postalCode", "country"} {
		if strings.TrimSpace(required[name]) == "" {
			return domainErrors.NewValidationError(field+"."+name, "is required")
		}
	}
	return nil
}
