// Package escpos builds command streams for ESC/POS text-mode thermal printers.
//
// An Encoder accumulates directives (initialize, codepage, alignment, character
// scale, text lines, cut) into a byte buffer; Encode finalizes it:
//
//	data, err := escpos.New(escpos.WithColumns(32)).
//	    Initialize().
//	    Codepage("windows1252").
//	    Align(escpos.AlignCenter).
//	    Line("ALTOKE SPA").
//	    Cut().
//	    Encode()
//
// Text is transcoded rune by rune into the selected codepage; runes the
// codepage cannot represent are printed as '?'. Lines longer than the printable
// width (columns divided by the current width scale) wrap onto the next line.
package escpos
