// Package receipt renders sales into ESC/POS command streams for a 32-column
// thermal printer.
package receipt

import (
	"fmt"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/pkg/escpos"
)

// Layout constants of the 58mm receipt.
const (
	Columns     = 32
	Codepage    = "windows1252"
	NameWidth   = 20
	TextWidth   = 30
	AddressWrap = 20

	DetailSeparator = "----------- DETALLE -----------"
	TotalSeparator  = "------------------------------"
	ThanksLine      = "¡Gracias por su compra!"
)

// Generate renders opts into a printer command stream terminated by a paper
// cut. opts is not modified. Errors come from the command encoder unchanged.
func Generate(opts domain.ReceiptOptions) ([]byte, error) {
	sale := opts.Sale
	business := opts.Business.WithDefaults()

	e := escpos.New(escpos.WithColumns(Columns)).
		Initialize().
		Codepage(Codepage).
		Align(escpos.AlignCenter).
		Width(2).
		Height(2).
		Line(business.Name).
		Width(1).
		Height(1).
		Line(business.TaxID)

	for _, line := range Wrap(business.Address, AddressWrap) {
		e.Line(line)
	}

	e.Newline().
		Align(escpos.AlignLeft).
		Line("Fecha: " + FormatDate(sale.CreatedAt, opts.Location)).
		Line("Atiende: " + opts.OperatorName()).
		Line("Cliente: " + sale.ClientNameOrDefault()).
		Newline().
		Align(escpos.AlignCenter).
		Line(DetailSeparator).
		Align(escpos.AlignLeft)

	for _, item := range sale.Details {
		writeItem(e, item)
	}

	e.Align(escpos.AlignCenter).
		Line(TotalSeparator).
		Align(escpos.AlignRight).
		Line("TOTAL: " + Soles(sale.Total))

	if len(opts.Payments) > 0 {
		e.Newline().
			Align(escpos.AlignLeft).
			Line("Formas de pago:")
		for _, p := range opts.Payments {
			e.Line(p.Name + ": " + Soles(p.Amount))
		}
	}

	if sale.Change > 0 {
		e.Line("Vuelto: " + Soles(sale.Change))
	}

	if sale.Comment != "" {
		e.Newline().
			Align(escpos.AlignLeft).
			Line("Comentario:")
		for _, line := range Wrap(sale.Comment, TextWidth) {
			e.Line(line)
		}
	}

	return e.Newline().
		Align(escpos.AlignCenter).
		Line(ThanksLine).
		Newline().
		Cut().
		Encode()
}

func writeItem(e *escpos.Encoder, item domain.SaleLineItem) {
	name := Wrap(item.ProductName, NameWidth)
	if len(name) == 0 {
		// keep the quantity line for nameless products
		name = []string{""}
	}
	for i, line := range name {
		if i == 0 {
			e.Line(fmt.Sprintf("%s %d x %s", padRight(line, NameWidth), item.Quantity, Soles(item.Price)))
			continue
		}
		e.Line(line)
	}

	e.Line("Subtotal: " + Soles(item.Subtotal()))

	if item.UnitsPerPackage > 1 {
		e.Line(fmt.Sprintf("Pack: %d unds", item.UnitsPerPackage))
	}

	if item.Description != "" {
		for _, line := range Wrap(item.Description, TextWidth) {
			e.Line(line)
		}
	}
	e.Newline()
}
