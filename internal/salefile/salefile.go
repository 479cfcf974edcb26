// Package salefile reads the sale documents the POS application hands over for
// printing. Documents are JSON or YAML and carry the sale, the operator and
// the payments; payments may also arrive as the POS's paymentDetails string.
package salefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/altoke/printship/internal/domain"
)

// Format is the encoding of a sale document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor guesses the format from a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Supported reports whether path has a sale document extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// User is the POS user who closed the sale.
type User struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

// Document is a sale document as written by the POS.
type Document struct {
	Sale     domain.SaleRecord     `json:"sale" yaml:"sale"`
	Operator string                `json:"operator,omitempty" yaml:"operator,omitempty"`
	User     *User                 `json:"user,omitempty" yaml:"user,omitempty"`
	Payments []domain.PaymentEntry `json:"payments,omitempty" yaml:"payments,omitempty"`
	Business domain.BusinessInfo   `json:"business,omitempty" yaml:"business,omitempty"`

	// PaymentDetails is the POS's JSON-encoded payment list, used when
	// Payments is empty.
	PaymentDetails string `json:"paymentDetails,omitempty" yaml:"paymentDetails,omitempty"`
}

// Load reads the document at path.
func Load(path string) (domain.ReceiptOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ReceiptOptions{}, err
	}
	opts, err := Parse(data, FormatFor(path))
	if err != nil {
		return domain.ReceiptOptions{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return opts, nil
}

// Decode reads a document from r.
func Decode(r io.Reader, format Format) (domain.ReceiptOptions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ReceiptOptions{}, err
	}
	return Parse(data, format)
}

// Parse decodes and validates a document.
func Parse(data []byte, format Format) (domain.ReceiptOptions, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&doc)
	}
	if err != nil {
		return domain.ReceiptOptions{}, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidSale, format, err)
	}
	return doc.Options()
}

// Options validates the document and turns it into receipt options. Missing
// totals are derived from the line items and payments.
func (d Document) Options() (domain.ReceiptOptions, error) {
	if err := validate(d.Sale); err != nil {
		return domain.ReceiptOptions{}, err
	}

	payments := d.Payments
	if len(payments) == 0 && strings.TrimSpace(d.PaymentDetails) != "" {
		var err error
		if payments, err = ParsePaymentDetails(d.PaymentDetails); err != nil {
			return domain.ReceiptOptions{}, err
		}
	}

	sale := d.Sale
	sale.Details = append([]domain.SaleLineItem(nil), d.Sale.Details...)
	if sale.Total == 0 {
		for _, item := range sale.Details {
			sale.Total += item.Subtotal()
		}
		sale.Total = round2(sale.Total)
	}
	if sale.TotalPaid == 0 && len(payments) > 0 {
		for _, p := range payments {
			sale.TotalPaid += p.Amount
		}
		sale.TotalPaid = round2(sale.TotalPaid)
	}
	if sale.Change == 0 && sale.TotalPaid > sale.Total {
		sale.Change = round2(sale.TotalPaid - sale.Total)
	}

	return domain.ReceiptOptions{
		Sale:     sale,
		Operator: d.operator(),
		Payments: payments,
		Business: d.Business,
	}, nil
}

func (d Document) operator() string {
	if d.Operator != "" {
		return d.Operator
	}
	if d.User == nil {
		return ""
	}
	if d.User.Name != "" {
		return d.User.Name
	}
	return d.User.Username
}

func validate(s domain.SaleRecord) error {
	if len(s.Details) == 0 {
		return fmt.Errorf("%w: sale %d has no line items", domain.ErrInvalidSale, s.ID)
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("%w: sale %d has no creation time", domain.ErrInvalidSale, s.ID)
	}
	for i, item := range s.Details {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity %d", domain.ErrInvalidSale, i+1, item.Quantity)
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return fmt.Errorf("%w: line %d: price %v", domain.ErrInvalidSale, i+1, item.Price)
		}
		if item.UnitsPerPackage < 0 {
			return fmt.Errorf("%w: line %d: units per package %d", domain.ErrInvalidSale, i+1, item.UnitsPerPackage)
		}
	}
	for _, v := range []float64{s.Total, s.TotalPaid, s.Change} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sale %d: amount %v", domain.ErrInvalidSale, s.ID, v)
		}
	}
	return nil
}

type paymentDetail struct {
	PaymentTypeID   int64  `json:"paymentTypeId"`
	PaymentTypeName string `json:"paymentTypeName"`
	Amount          amount `json:"amount"`
}

// amount accepts both JSON numbers and numeric strings; the POS stores
// decimals as strings.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount %s: %w", b, err)
	}
	*a = amount(f)
	return nil
}

// ParsePaymentDetails decodes the POS paymentDetails string into payments,
// keeping order and duplicates.
func ParsePaymentDetails(s string) ([]domain.PaymentEntry, error) {
	var details []paymentDetail
	if err := json.Unmarshal([]byte(s), &details); err != nil {
		return nil, fmt.Errorf("%w: paymentDetails: %v", domain.ErrInvalidSale, err)
	}
	payments := make([]domain.PaymentEntry, 0, len(details))
	for i, d := range details {
		v := float64(d.Amount)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: payment %d: amount %v", domain.ErrInvalidSale, i+1, v)
		}
		name := d.PaymentTypeName
		if name == "" {
			name = fmt.Sprintf("Pago %d", d.PaymentTypeID)
		}
		payments = append(payments, domain.PaymentEntry{Name: name, Amount: v})
	}
	return payments, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
