package utils // package utils provides helpers for the printable artifacts of a check-in

import (
    "strings" // strings is used to strip whitespace from generated codes
    "time"    // time formats the check-in timestamp

    "github.com/iliyamo/airport-checkin/internal/model"
)

// barcodeTimeLayout is the compact timestamp embedded in every code
// (yyyyMMddHHmmss).
const barcodeTimeLayout = "20060102150405"

// BoardingPassNumber builds the boarding pass barcode from the flight
// number, passport number, seat number and check-in time.  The same
// inputs always yield the same code.  Format: FLTNO-PPTNO-SEATNO-TIMESTAMP.
func BoardingPassNumber(flightNumber, passportNumber, seatNumber string, checkedInAt time.Time) string {
    code := flightNumber + "-" + passportNumber + "-" + seatNumber + "-" + checkedInAt.UTC().Format(barcodeTimeLayout)
    return stripSpaces(code)
}

// BaggageBarcode builds the bag tag number.  Format: FLTNO-PPTNO-BAG-TIMESTAMP.
func BaggageBarcode(flightNumber, passportNumber string, checkedInAt time.Time) string {
    code := flightNumber + "-" + passportNumber + "-BAG-" + checkedInAt.UTC().Format(barcodeTimeLayout)
    return stripSpaces(code)
}

// BoardingGroup assigns a boarding group from the seat row: rows 1-10
// board first, rows 11-20 second and everything else last.
func BoardingGroup(seatNumber string) string {
    row, _, ok := model.SplitSeatNumber(seatNumber)
    switch {
    case !ok:
        return "3"
    case row <= 10:
        return "1"
    case row <= 20:
        return "2"
    }
    return "3"
}

func stripSpaces(s string) string {
    return strings.Join(strings.Fields(s), "")
}
