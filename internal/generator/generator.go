// =============================================================================
// Sales Pipeline - Synthetic Data Generator
// =============================================================================
//
// This module produces sample input directories for the pipeline.
//
// GENERATION PROCESS:
//   1. Simulate Days days of orders starting at Start. The number of orders
//      per day is Poisson distributed around OrdersPerDay.
//   2. Blank the discount of ~1% of orders and the region of ~0.5%.
//   3. Append Duplicates copies of randomly chosen orders.
//   4. Write three overlapping random samples of the population:
//        sales_part_a.csv   50%
//        sales_part_b.json  30%, one JSON object per line
//        sales_part_c.xlsx  40%
//
// The same Seed always yields the same population and the same samples.
//
// =============================================================================

package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-pipeline/internal/logger"
	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

// Catalogue of the simulated shop.
var (
	Regions        = []string{"North", "South", "East", "West"}
	PaymentMethods = []string{"UPI", "Card", "COD", "Wallet"}
	Products       = []string{"Laptop", "Phone", "Headphones", "Camera", "Smartwatch", "Tablet"}

	BasePrices = map[string]float64{
		"Laptop":     60000,
		"Phone":      30000,
		"Headphones": 3000,
		"Camera":     45000,
		"Smartwatch": 8000,
		"Tablet":     20000,
	}
)

// Column order of every generated file.
var columns = []string{
	types.ColOrderID,
	types.ColDate,
	types.ColRegion,
	types.ColProduct,
	types.ColQuantity,
	types.ColUnitPrice,
	types.ColDiscount,
	types.ColPaymentMethod,
}

// Options configures generation. Zero fields take the defaults of
// DefaultOptions.
type Options struct {
	Seed         uint64
	Start        time.Time
	Days         int
	OrdersPerDay float64
	FirstOrderID int
	Duplicates   int

	Logger *zap.Logger
}

// DefaultOptions returns the standard generation settings.
func DefaultOptions() Options {
	return Options{
		Seed:         7,
		Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:         180,
		OrdersPerDay: 40,
		FirstOrderID: 100000,
		Duplicates:   100,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Start.IsZero() {
		o.Start = d.Start
	}
	if o.Days <= 0 {
		o.Days = d.Days
	}
	if o.OrdersPerDay <= 0 {
		o.OrdersPerDay = d.OrdersPerDay
	}
	if o.FirstOrderID <= 0 {
		o.FirstOrderID = d.FirstOrderID
	}
	if o.Duplicates < 0 {
		o.Duplicates = 0
	}
}

// sample is one output file and the share of the population it receives.
type sample struct {
	Name     string
	Fraction float64
	write    func(path string, orders []order) error
}

var samples = []sample{
	{Name: "sales_part_a.csv", Fraction: 0.5, write: writeCSV},
	{Name: "sales_part_b.json", Fraction: 0.3, write: writeJSONLines},
	{Name: "sales_part_c.xlsx", Fraction: 0.4, write: writeXLSX},
}

// File describes one written sample.
type File struct {
	Path string
	Rows int
}

// Result summarizes a generation run.
type Result struct {
	// Population is the number of orders before sampling, duplicates included.
	Population int
	Files      []File
}

// order is one simulated transaction. A nil pointer is a blanked value.
type order struct {
	OrderID       int      `json:"order_id"`
	Date          string   `json:"date"`
	Region        *string  `json:"region"`
	Product       string   `json:"product"`
	Quantity      int      `json:"quantity"`
	UnitPrice     float64  `json:"unit_price"`
	Discount      *float64 `json:"discount"`
	PaymentMethod string   `json:"payment_method"`
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate writes the three sample files into dir, creating it if needed.
func Generate(dir string, opts Options) (*Result, error) {
	opts.applyDefaults()
	log := logger.OrNop(opts.Logger)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	population := simulate(rng, opts)

	res := &Result{Population: len(population)}
	for _, s := range samples {
		picked := pick(rng, population, s.Fraction)
		path := filepath.Join(dir, s.Name)
		if err := s.write(path, picked); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", s.Name, err)
		}
		res.Files = append(res.Files, File{Path: path, Rows: len(picked)})
		log.Info("sample written", zap.String("file", path), zap.Int("rows", len(picked)))
	}

	return res, nil
}

func simulate(rng *rand.Rand, opts Options) []order {
	var orders []order
	id := opts.FirstOrderID

	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day).Format("2006-01-02")
		for n := poisson(rng, opts.OrdersPerDay); n > 0; n-- {
			product := Products[rng.IntN(len(Products))]
			base := BasePrices[product]

			qty := int(rng.ExpFloat64() * 1.2)
			if qty < 1 {
				qty = 1
			}
			discount := round2(math.Max(0, math.Min(0.35, beta(rng, 2, 8))))
			region := Regions[rng.IntN(len(Regions))]

			orders = append(orders, order{
				OrderID:       id,
				Date:          date,
				Region:        &region,
				Product:       product,
				Quantity:      qty,
				UnitPrice:     round2(base + rng.NormFloat64()*base*0.08),
				Discount:      &discount,
				PaymentMethod: PaymentMethods[rng.IntN(len(PaymentMethods))],
			})
			id++
		}
	}

	for i := range orders {
		if rng.Float64() < 0.01 {
			orders[i].Discount = nil
		}
	}
	for i := range orders {
		if rng.Float64() < 0.005 {
			orders[i].Region = nil
		}
	}

	if n := min(opts.Duplicates, len(orders)); n > 0 {
		for _, i := range rng.Perm(len(orders))[:n] {
			orders = append(orders, orders[i])
		}
	}
	return orders
}

// pick returns a random sample without replacement of round(frac*len) orders.
func pick(rng *rand.Rand, orders []order, frac float64) []order {
	n := int(math.Round(frac * float64(len(orders))))
	out := make([]order, 0, n)
	for _, i := range rng.Perm(len(orders))[:n] {
		out = append(out, orders[i])
	}
	return out
}

// poisson draws from a Poisson distribution (Knuth's method).
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k, p := 0, rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

// beta draws from Beta(a, b) for integer shapes via two gamma variates.
func beta(rng *rand.Rand, a, b int) float64 {
	x, y := gamma(rng, a), gamma(rng, b)
	return x / (x + y)
}

// gamma draws from Gamma(k, 1) for integer k as a sum of exponentials.
func gamma(rng *rand.Rand, k int) float64 {
	var sum float64
	for i := 0; i < k; i++ {
		sum += rng.ExpFloat64()
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// =============================================================================
// WRITERS
// =============================================================================

func (o order) cells() []string {
	region, discount := "", ""
	if o.Region != nil {
		region = *o.Region
	}
	if o.Discount != nil {
		discount = strconv.FormatFloat(*o.Discount, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(o.OrderID),
		o.Date,
		region,
		o.Product,
		strconv.Itoa(o.Quantity),
		strconv.FormatFloat(o.UnitPrice, 'f', -1, 64),
		discount,
		o.PaymentMethod,
	}
}

func writeCSV(path string, orders []order) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, o := range orders {
		if err := w.Write(o.cells()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeJSONLines(path string, orders []order) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, o := range orders {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return file.Close()
}

func writeXLSX(path string, orders []order) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, o := range orders {
		row := []interface{}{o.OrderID, o.Date, nil, o.Product, o.Quantity, o.UnitPrice, nil, o.PaymentMethod}
		if o.Region != nil {
			row[2] = *o.Region
		}
		if o.Discount != nil {
			row[6] = *o.Discount
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
