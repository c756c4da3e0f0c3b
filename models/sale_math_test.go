package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeSaleItemNoDiscount(t *testing.T) {
	variant := &ProductVariant{ID: 1, Sku: "SKU-1", SellingPrice: dec("15000")}
	item := computeSaleItem(variant, NewSaleItem{VariantId: 1, Quantity: 4})

	if !item.DiscountAmount.Equal(decimal.Zero) {
		t.Errorf("discount = %s, want 0", item.DiscountAmount)
	}
	if !item.TotalPrice.Equal(dec("60000")) {
		t.Errorf("total = %s, want 60000", item.TotalPrice)
	}
	if !item.UnitPrice.Equal(variant.SellingPrice) {
		t.Errorf("unit price = %s, want %s", item.UnitPrice, variant.SellingPrice)
	}
}

func TestComputeSaleItemWithDiscount(t *testing.T) {
	variant := &ProductVariant{ID: 1, Sku: "SKU-1", SellingPrice: dec("10000")}
	item := computeSaleItem(variant, NewSaleItem{
		VariantId:       1,
		Quantity:        3,
		DiscountPercent: dec("10"),
	})

	// 10000*3 = 30000, 10% = 3000, total 27000
	if !item.DiscountAmount.Equal(dec("3000")) {
		t.Errorf("discount = %s, want 3000", item.DiscountAmount)
	}
	if !item.TotalPrice.Equal(dec("27000")) {
		t.Errorf("total = %s, want 27000", item.TotalPrice)
	}
}

func TestComputeSaleItemFractionalDiscountRounds(t *testing.T) {
	variant := &ProductVariant{ID: 1, Sku: "SKU-1", SellingPrice: dec("9999")}
	item := computeSaleItem(variant, NewSaleItem{
		VariantId:       1,
		Quantity:        1,
		DiscountPercent: dec("33.33"),
	})

	// 9999 * 33.33 / 100 = 3332.6667 (4dp)
	if !item.DiscountAmount.Equal(dec("3332.6667")) {
		t.Errorf("discount = %s, want 3332.6667", item.DiscountAmount)
	}
	if !item.TotalPrice.Add(item.DiscountAmount).Equal(dec("9999")) {
		t.Errorf("total + discount = %s, want 9999", item.TotalPrice.Add(item.DiscountAmount))
	}
}

// sum(item.totalPrice) - sale.discountAmount must equal sale.totalAmount
func TestSaleTotalInvariant(t *testing.T) {
	variantA := &ProductVariant{ID: 1, Sku: "A", SellingPrice: dec("2500")}
	variantB := &ProductVariant{ID: 2, Sku: "B", SellingPrice: dec("7000")}

	items := []SaleItem{
		computeSaleItem(variantA, NewSaleItem{VariantId: 1, Quantity: 2, DiscountPercent: dec("5")}),
		computeSaleItem(variantB, NewSaleItem{VariantId: 2, Quantity: 1}),
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	saleDiscount := dec("1000")
	totalAmount := subtotal.Sub(saleDiscount)

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice)
	}
	if !sum.Sub(saleDiscount).Equal(totalAmount) {
		t.Errorf("invariant broken: sum=%s discount=%s total=%s", sum, saleDiscount, totalAmount)
	}
	// 2*2500=5000 -5% =4750; +7000 = 11750; -1000 = 10750
	if !totalAmount.Equal(dec("10750")) {
		t.Errorf("total = %s, want 10750", totalAmount)
	}
}

func TestNewSaleValidateRejectsBadDiscountPercent(t *testing.T) {
	input := &NewSale{
		PaymentMethod: PaymentMethodCash,
		Items: []NewSaleItem{
			{VariantId: 1, Quantity: 1, DiscountPercent: dec("101")},
		},
	}
	if err := input.validate(nil); err == nil {
		t.Error("validate accepted discount percent > 100")
	}

	input.Items[0].DiscountPercent = dec("-1")
	if err := input.validate(nil); err == nil {
		t.Error("validate accepted negative discount percent")
	}
}

func TestNewSaleValidateRejectsBadPaymentMethod(t *testing.T) {
	input := &NewSale{
		PaymentMethod: "BARTER",
		Items:         []NewSaleItem{{VariantId: 1, Quantity: 1}},
	}
	if err := input.validate(nil); err == nil {
		t.Error("validate accepted unknown payment method")
	}
}
