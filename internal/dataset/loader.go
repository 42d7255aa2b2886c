package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// Sentinel causes for LoadError, checkable with errors.Is.
var (
	ErrEmptyFile     = errors.New("file has no header row")
	ErrMissingColumn = errors.New("missing required column")
	ErrBadDate       = errors.New("unparseable date")
	ErrBadAmount     = errors.New("unparseable sales amount")
	ErrBadPostalCode = errors.New("unparseable postal code")
)

// LoadError is fatal at startup: the source file could not be turned into
// a Dataset and the only recovery is fixing the file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// The source file must carry at least these header names.
var requiredColumns = []string{
	"Region",
	"Category",
	"Order Date",
	"Ship Date",
	"Postal Code",
	"Sales",
	"Order ID",
	"Customer ID",
	"Ship Mode",
}

// Dates in the source file are day-first: "03/04/2021" is 3 April 2021.
var dateLayouts = []string{"2/1/2006", "2-1-2006", "2006-01-02"}

// Load reads the delimited file at path into a Dataset, preserving row
// order. Any structural problem (missing file, missing column, a row that
// will not parse) is returned as a *LoadError.
func Load(ctx context.Context, path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, &LoadError{Path: path, Err: ErrEmptyFile}
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read rows: %w", err)}
	}

	records := make([]models.Record, len(rows))
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := parseBatch(ctx, cols, rows, records, start, end); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	}

	return models.NewDataset(records), nil
}

// columnIndex maps each required column to its position in the header.
type columnIndex struct {
	orderID    int
	orderDate  int
	shipDate   int
	shipMode   int
	customerID int
	region     int
	category   int
	postalCode int
	sales      int
}

func resolveColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}

	for _, name := range requiredColumns {
		if _, ok := pos[name]; !ok {
			return columnIndex{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	return columnIndex{
		orderID:    pos["Order ID"],
		orderDate:  pos["Order Date"],
		shipDate:   pos["Ship Date"],
		shipMode:   pos["Ship Mode"],
		customerID: pos["Customer ID"],
		region:     pos["Region"],
		category:   pos["Category"],
		postalCode: pos["Postal Code"],
		sales:      pos["Sales"],
	}, nil
}

// parseBatch fans rows[start:end] out to a bounded worker group. Each
// worker writes to its own index, so record order matches row order
// without any locking.
func parseBatch(ctx context.Context, cols columnIndex, rows [][]string, records []models.Record, start, end int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i := start; i < end; i++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := parseRecord(cols, rows[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", i+2, err)
			}
			records[i] = rec
			return nil
		})
	}

	return g.Wait()
}

func parseRecord(cols columnIndex, row []string) (models.Record, error) {
	orderDate, err := parseDayFirstDate(row[cols.orderDate])
	if err != nil {
		return models.Record{}, err
	}

	shipDate, err := parseDayFirstDate(row[cols.shipDate])
	if err != nil {
		return models.Record{}, err
	}

	sales, err := decimal.NewFromString(strings.TrimSpace(row[cols.sales]))
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %q", ErrBadAmount, row[cols.sales])
	}

	postal, err := parsePostalCode(row[cols.postalCode])
	if err != nil {
		return models.Record{}, err
	}

	return models.Record{
		OrderID:    strings.TrimSpace(row[cols.orderID]),
		OrderDate:  orderDate,
		ShipDate:   shipDate,
		ShipMode:   strings.TrimSpace(row[cols.shipMode]),
		CustomerID: strings.TrimSpace(row[cols.customerID]),
		Region:     strings.TrimSpace(row[cols.region]),
		Category:   strings.TrimSpace(row[cols.category]),
		PostalCode: postal,
		Sales:      sales,
	}, nil
}

func parseDayFirstDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, value)
}

// parsePostalCode fills missing values with 0 and coerces the rest to
// integers. Some exports carry postal codes as floats ("42420.0").
func parsePostalCode(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadPostalCode, value)
}
