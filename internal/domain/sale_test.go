package domain

import "testing"

func TestBusinessInfo_WithDefaults(t *testing.T) {
	got := BusinessInfo{Name: "KUSKAS"}.WithDefaults()
	if got.Name != "KUSKAS" {
		t.Errorf("Name = %q, want KUSKAS", got.Name)
	}
	if got.TaxID != DefaultTaxID {
		t.Errorf("TaxID = %q, want %q", got.TaxID, DefaultTaxID)
	}
	if got.Address != DefaultAddress {
		t.Errorf("Address = %q, want %q", got.Address, DefaultAddress)
	}
}

func TestFallbackNames(t *testing.T) {
	var o ReceiptOptions
	if o.OperatorName() != DefaultOperatorName {
		t.Errorf("OperatorName() = %q, want %q", o.OperatorName(), DefaultOperatorName)
	}
	if o.Sale.ClientNameOrDefault() != DefaultClientName {
		t.Errorf("ClientNameOrDefault() = %q, want %q", o.Sale.ClientNameOrDefault(), DefaultClientName)
	}

	o.Operator = "Rosa"
	o.Sale.ClientName = "Juan"
	if o.OperatorName() != "Rosa" || o.Sale.ClientNameOrDefault() != "Juan" {
		t.Errorf("explicit names not kept: %q %q", o.OperatorName(), o.Sale.ClientNameOrDefault())
	}
}

func TestSaleLineItem_Subtotal(t *testing.T) {
	item := SaleLineItem{Quantity: 3, Price: 2.5}
	if item.Subtotal() != 7.5 {
		t.Errorf("Subtotal() = %v, want 7.5", item.Subtotal())
	}
}
