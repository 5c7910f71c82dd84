package warehouse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// timeLayout is the timestamp format used by time_dim.csv.
const timeLayout = "02-01-2006 15:04"

// Tables holds the five dimension tables keyed by surrogate key, plus the
// fact rows in file order. Instances are read-only after Load returns.
type Tables struct {
	Customers    map[string]domain.Customer
	Items        map[string]domain.Item
	Stores       map[string]domain.Store
	Times        map[string]domain.TimePoint
	Transactions map[string]domain.Transaction
	Facts        []domain.FactRow

	// DuplicateKeys counts dimension rows that overwrote an earlier row
	// with the same key (last write wins).
	DuplicateKeys int
}

// Loader reads the six source CSV files into typed tables.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a loader for the configured data directory.
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With(slog.String("component", "warehouse.loader")),
	}
}

// Load reads all six files. The files load concurrently; the first failure
// cancels the rest and is returned as a MissingFileError or ParseError
// naming the file.
func (l *Loader) Load(ctx context.Context) (*Tables, error) {
	start := time.Now()
	tables := &Tables{}

	g, ctx := errgroup.WithContext(ctx)

	var dups [5]int
	g.Go(func() error {
		var err error
		tables.Customers, dups[0], err = l.loadCustomers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Items, dups[1], err = l.loadItems(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Stores, dups[2], err = l.loadStores(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Times, dups[3], err = l.loadTimes(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Transactions, dups[4], err = l.loadTransactions(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.Facts, err = l.loadFacts(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range dups {
		tables.DuplicateKeys += d
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("fact_rows", len(tables.Facts)),
		slog.Int("customers", len(tables.Customers)),
		slog.Int("items", len(tables.Items)),
		slog.Int("stores", len(tables.Stores)),
		slog.Int("time_points", len(tables.Times)),
		slog.Int("transaction_types", len(tables.Transactions)),
		slog.Int("duplicate_keys", tables.DuplicateKeys),
		slog.Duration("elapsed", time.Since(start)))

	return tables, nil
}

// table is one parsed CSV: a column index by lowercased header name and the
// data rows.
type table struct {
	file    string
	columns map[string]int
	rows    [][]string
}

// get returns the named column of a row, or "" when the row is short.
func (t *table) get(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// require fails with a ParseError unless every named column is present.
func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.columns[c]; !ok {
			return &ParseError{File: t.file, Reason: fmt.Sprintf("missing column %q", c)}
		}
	}
	return nil
}

// readTable reads and decodes a CSV file. The dataset ships in mixed
// encodings, so a UTF-8 BOM is stripped and byte streams that are not valid
// UTF-8 are decoded as Windows-1252.
func readTable(path string) (*table, error) {
	file := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingFileError{File: file, Err: err}
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(data)
		if decErr != nil {
			return nil, &ParseError{File: file, Reason: "undecodable byte stream", Err: decErr}
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows are validated per column instead

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{File: file, Line: 1, Reason: "unreadable header", Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows [][]string
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{File: file, Line: line, Reason: "malformed row", Err: err}
		}
		rows = append(rows, row)
	}

	return &table{file: file, columns: columns, rows: rows}, nil
}

func (l *Loader) loadCustomers(ctx context.Context) (map[string]domain.Customer, int, error) {
	t, err := readTable(l.paths.CustomerDim())
	if err != nil {
		return nil, 0, err
	}
	// The key column is spelled "coustomer_key" in the source data.
	if err := t.require("coustomer_key", "name"); err != nil {
		return nil, 0, err
	}

	customers := make(map[string]domain.Customer, len(t.rows))
	dups := 0
	for _, row := range t.rows {
		key := t.get(row, "coustomer_key")
		if key == "" {
			continue
		}
		if _, exists := customers[key]; exists {
			dups++
		}
		customers[key] = domain.Customer{
			Key:       key,
			Name:      t.get(row, "name"),
			ContactNo: t.get(row, "contact_no"),
			NID:       t.get(row, "nid"),
		}
	}
	return customers, dups, ctx.Err()
}

func (l *Loader) loadItems(ctx context.Context) (map[string]domain.Item, int, error) {
	t, err := readTable(l.paths.ItemDim())
	if err != nil {
		return nil, 0, err
	}
	if err := t.require("item_key", "item_name", "desc"); err != nil {
		return nil, 0, err
	}

	items := make(map[string]domain.Item, len(t.rows))
	dups := 0
	for i, row := range t.rows {
		key := t.get(row, "item_key")
		if key == "" {
			continue
		}
		price, err := parseFloat(t, row, "unit_price")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		if _, exists := items[key]; exists {
			dups++
		}
		desc := t.get(row, "desc")
		items[key] = domain.Item{
			Key:          key,
			Name:         t.get(row, "item_name"),
			Desc:         desc,
			MainCategory: mainCategory(desc),
			UnitPrice:    price,
			ManCountry:   t.get(row, "man_country"),
			Supplier:     t.get(row, "supplier"),
			Unit:         t.get(row, "unit"),
		}
	}
	return items, dups, ctx.Err()
}

func (l *Loader) loadStores(ctx context.Context) (map[string]domain.Store, int, error) {
	t, err := readTable(l.paths.StoreDim())
	if err != nil {
		return nil, 0, err
	}
	if err := t.require("store_key", "division", "district"); err != nil {
		return nil, 0, err
	}

	stores := make(map[string]domain.Store, len(t.rows))
	dups := 0
	for _, row := range t.rows {
		key := t.get(row, "store_key")
		if key == "" {
			continue
		}
		if _, exists := stores[key]; exists {
			dups++
		}
		stores[key] = domain.Store{
			Key:      key,
			Division: t.get(row, "division"),
			District: t.get(row, "district"),
			Upazila:  t.get(row, "upazila"),
		}
	}
	return stores, dups, ctx.Err()
}

func (l *Loader) loadTimes(ctx context.Context) (map[string]domain.TimePoint, int, error) {
	t, err := readTable(l.paths.TimeDim())
	if err != nil {
		return nil, 0, err
	}
	if err := t.require("time_key", "date"); err != nil {
		return nil, 0, err
	}

	times := make(map[string]domain.TimePoint, len(t.rows))
	dups := 0
	unparsedDates := 0
	for i, row := range t.rows {
		key := t.get(row, "time_key")
		if key == "" {
			continue
		}

		// Unparseable dates keep the zero time; such rows never match a
		// date-range filter.
		date, dateErr := time.Parse(timeLayout, t.get(row, "date"))
		if dateErr != nil {
			date = time.Time{}
			unparsedDates++
		}

		hour, err := parseInt(t, row, "hour")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		day, err := parseInt(t, row, "day")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		week, err := parseInt(t, row, "week")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		month, err := parseInt(t, row, "month")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		year, err := parseInt(t, row, "year")
		if err != nil {
			return nil, 0, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}

		if _, exists := times[key]; exists {
			dups++
		}
		times[key] = domain.TimePoint{
			Key:     key,
			Date:    date,
			Hour:    hour,
			Day:     day,
			Week:    week,
			Month:   month,
			Quarter: t.get(row, "quarter"),
			Year:    year,
		}
	}

	if unparsedDates > 0 {
		l.logger.Warn("time dimension rows with unparseable dates",
			slog.Int("count", unparsedDates))
	}
	return times, dups, ctx.Err()
}

func (l *Loader) loadTransactions(ctx context.Context) (map[string]domain.Transaction, int, error) {
	t, err := readTable(l.paths.TransDim())
	if err != nil {
		return nil, 0, err
	}
	if err := t.require("payment_key", "trans_type"); err != nil {
		return nil, 0, err
	}

	transactions := make(map[string]domain.Transaction, len(t.rows))
	dups := 0
	for _, row := range t.rows {
		key := t.get(row, "payment_key")
		if key == "" {
			continue
		}
		if _, exists := transactions[key]; exists {
			dups++
		}
		bank := t.get(row, "bank_name")
		// The source stores the literal string "None" for non-card rows.
		if strings.EqualFold(bank, "none") {
			bank = ""
		}
		transactions[key] = domain.Transaction{
			Key:      key,
			Type:     t.get(row, "trans_type"),
			BankName: bank,
		}
	}
	return transactions, dups, ctx.Err()
}

func (l *Loader) loadFacts(ctx context.Context) ([]domain.FactRow, error) {
	t, err := readTable(l.paths.FactTable())
	if err != nil {
		return nil, err
	}
	if err := t.require("payment_key", "coustomer_key", "time_key", "item_key", "store_key", "quantity", "total_price"); err != nil {
		return nil, err
	}

	facts := make([]domain.FactRow, 0, len(t.rows))
	for i, row := range t.rows {
		quantity, err := parseInt(t, row, "quantity")
		if err != nil {
			return nil, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		unitPrice, err := parseFloat(t, row, "unit_price")
		if err != nil {
			return nil, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}
		totalPrice, err := parseFloat(t, row, "total_price")
		if err != nil {
			return nil, &ParseError{File: t.file, Line: i + 2, Reason: err.Error()}
		}

		facts = append(facts, domain.FactRow{
			PaymentKey:  t.get(row, "payment_key"),
			CustomerKey: t.get(row, "coustomer_key"),
			TimeKey:     t.get(row, "time_key"),
			ItemKey:     t.get(row, "item_key"),
			StoreKey:    t.get(row, "store_key"),
			Quantity:    quantity,
			Unit:        t.get(row, "unit"),
			UnitPrice:   unitPrice,
			TotalPrice:  totalPrice,
		})
	}
	return facts, ctx.Err()
}

// mainCategory derives the item category from the text before the first
// " - " separator in the description.
func mainCategory(desc string) string {
	if idx := strings.Index(desc, " - "); idx >= 0 {
		return strings.TrimSpace(desc[:idx])
	}
	return strings.TrimSpace(desc)
}

func parseFloat(t *table, row []string, column string) (float64, error) {
	raw := t.get(row, column)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: invalid number %q", column, raw)
	}
	return v, nil
}

func parseInt(t *table, row []string, column string) (int, error) {
	raw := t.get(row, column)
	if raw == "" {
		return 0, nil
	}
	// Some exports store integers as "12.0".
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: invalid integer %q", column, raw)
	}
	return int(f), nil
}
