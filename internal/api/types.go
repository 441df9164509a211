package api

import (
	"strconv"
	"strings"
)

type Supplier struct {
	ID                int64  `json:"id,omitempty"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	JMBG              string `json:"jmbg,omitempty"`
	AgricultureNumber string `json:"agricultureNumber,omitempty"`
	BankAccount       string `json:"bankAccount,omitempty"`
	Street            string `json:"street,omitempty"`
	City              string `json:"city,omitempty"`
	Country           string `json:"country,omitempty"`
	ZipCode           string `json:"zipCode,omitempty"`
	OrderIndex        int    `json:"orderIndex"`
}

func (s Supplier) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type SupplierOrder struct {
	ID         int64 `json:"id"`
	OrderIndex int   `json:"orderIndex"`
}

// DailyEntry is the quantity delivered by one supplier on one date, optionally with a fat% reading.
type DailyEntry struct {
	ID         int64    `json:"id,omitempty"`
	SupplierID int64    `json:"supplierId"`
	Date       string   `json:"date"`
	Qty        float64  `json:"qty"`
	FatPct     *float64 `json:"fatPct,omitempty"`
}

// Day returns the day of month encoded in Date, or 0 when Date is malformed.
func (e DailyEntry) Day() int {
	if len(e.Date) < 10 {
		return 0
	}
	day, err := strconv.Atoi(e.Date[8:10])
	if err != nil {
		return 0
	}
	return day
}

// InMonth reports whether Date falls in the given year and month.
func (e DailyEntry) InMonth(year, month int) bool {
	if len(e.Date) < 7 {
		return false
	}
	y, errY := strconv.Atoi(e.Date[0:4])
	m, errM := strconv.Atoi(e.Date[5:7])
	return errY == nil && errM == nil && y == year && m == month
}

type EntryUpsert struct {
	Date       string  `json:"date"`
	Qty        float64 `json:"qty"`
	SupplierID int64   `json:"supplierId"`
}

// QualityUpsert creates (ID nil) or updates a fat% reading.
type QualityUpsert struct {
	ID         *int64  `json:"id"`
	Date       string  `json:"date"`
	SupplierID int64   `json:"supplierId"`
	FatPct     float64 `json:"fatPct"`
}

type MonthlyQuery struct {
	Year   int
	Month  int
	Period string
	City   string
}

type QuarterlyQuery struct {
	Year    int
	Quarter int
}

type MonthlySummary struct {
	SupplierID     int64   `json:"supplierId"`
	SerialNum      int     `json:"serialNum"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Qty            float64 `json:"qty"`
	FatPct         float64 `json:"fatPct"`
	PricePerFatPct float64 `json:"pricePerFatPct"`
	PricePerQty    float64 `json:"pricePerQty"`
	TaxPercentage  float64 `json:"taxPercentage"`
	PriceWithTax   float64 `json:"priceWithTax"`
	Stimulation    float64 `json:"stimulation"`
	TotalAmount    float64 `json:"totalAmount"`
}

type QuarterlySummary struct {
	SupplierID   int64   `json:"supplierId"`
	SerialNum    int     `json:"serialNum"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Qty          float64 `json:"qty"`
	Cows         int     `json:"cows"`
	PremiumPerL  float64 `json:"premiumPerL"`
	TotalPremium float64 `json:"totalPremium"`
}
