package receipt

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/altoke/printship/internal/domain"
)

// DateLayout renders as DD/MM/YYYY HH:mm.
const DateLayout = "02/01/2006 15:04"

// Money formats an amount with two decimals and no thousands separator.
// NaN and infinities print as 0.00.
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// Soles prefixes a formatted amount with the currency symbol.
func Soles(v float64) string {
	return "S/" + Money(v)
}

// Peru has observed no DST since 1994, so a fixed offset is exact when the
// tz database is unavailable.
var limaFallback = time.FixedZone("-05", -5*60*60)

var (
	shopZoneOnce sync.Once
	shopZone     *time.Location
)

// ShopLocation returns the zone receipts are printed in when none is given.
func ShopLocation() *time.Location {
	shopZoneOnce.Do(func() {
		loc, err := time.LoadLocation(domain.DefaultTimeZone)
		if err != nil {
			loc = limaFallback
		}
		shopZone = loc
	})
	return shopZone
}

// FormatDate renders t in loc, or in the shop zone when loc is nil.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = ShopLocation()
	}
	return t.In(loc).Format(DateLayout)
}
