package domain

import "time"

// Receipt defaults, used when the caller leaves business fields empty.
const (
	DefaultBusinessName = "ALTOKE SPA"
	DefaultTaxID        = "RUC 12345678901"
	DefaultAddress      = "Jr. Miguel Grau 305-Cochas Chico"

	// DefaultClientName is printed when the sale has no client.
	DefaultClientName = "Público General"

	// DefaultOperatorName is printed when the operator is unknown.
	DefaultOperatorName = "Vendedor"

	// DefaultTimeZone is where the shop is; sale timestamps print in local shop time.
	DefaultTimeZone = "America/Lima"
)

// SaleRecord is a completed sale as handed over by the POS application.
type SaleRecord struct {
	ID         int64          `json:"id" yaml:"id"`
	ClientName string         `json:"clientName,omitempty" yaml:"clientName,omitempty"`
	Comment    string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Total      float64        `json:"total" yaml:"total"`
	TotalPaid  float64        `json:"totalPaid,omitempty" yaml:"totalPaid,omitempty"`
	Change     float64        `json:"change,omitempty" yaml:"change,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" yaml:"createdAt"`
	Details    []SaleLineItem `json:"details" yaml:"details"`
}

// SaleLineItem is one product line. Quantity counts packages when
// UnitsPerPackage > 1.
type SaleLineItem struct {
	ProductName     string  `json:"productName" yaml:"productName"`
	Description     string  `json:"productDescription,omitempty" yaml:"productDescription,omitempty"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
	Price           float64 `json:"price" yaml:"price"`
	UnitsPerPackage int     `json:"unitsPerPackage,omitempty" yaml:"unitsPerPackage,omitempty"`
}

// Subtotal returns quantity × price.
func (i SaleLineItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// PaymentEntry is one payment towards a sale. Names are not unique.
type PaymentEntry struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// BusinessInfo identifies the shop in the receipt header.
type BusinessInfo struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	TaxID   string `json:"taxId,omitempty" yaml:"taxId,omitempty" toml:"tax_id"`
	Address string `json:"address,omitempty" yaml:"address,omitempty" toml:"address"`
}

// WithDefaults fills empty fields with the package defaults.
func (b BusinessInfo) WithDefaults() BusinessInfo {
	if b.Name == "" {
		b.Name = DefaultBusinessName
	}
	if b.TaxID == "" {
		b.TaxID = DefaultTaxID
	}
	if b.Address == "" {
		b.Address = DefaultAddress
	}
	return b
}

// ReceiptOptions aggregates everything the receipt encoder needs.
type ReceiptOptions struct {
	Sale     SaleRecord     `json:"sale" yaml:"sale"`
	Operator string         `json:"operator" yaml:"operator"`
	Payments []PaymentEntry `json:"payments,omitempty" yaml:"payments,omitempty"`
	Business BusinessInfo   `json:"business" yaml:"business"`

	// Location is the zone CreatedAt is printed in. Nil means DefaultTimeZone.
	Location *time.Location `json:"-" yaml:"-"`
}

// OperatorName returns the operator or DefaultOperatorName.
func (o ReceiptOptions) OperatorName() string {
	if o.Operator == "" {
		return DefaultOperatorName
	}
	return o.Operator
}

// ClientNameOrDefault returns the client or DefaultClientName.
func (s SaleRecord) ClientNameOrDefault() string {
	if s.ClientName == "" {
		return DefaultClientName
	}
	return s.ClientName
}
