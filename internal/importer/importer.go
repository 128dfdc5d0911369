package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Options tune a CSV import.
type Options struct {
	Logger *zap.Logger
	// Lenient logs and skips rows that fail validation instead of aborting.
	Lenient bool
}

// Result counts what an import did with the catalog rows.
type Result struct {
	Rows     int `json:"rows"`
	Imported int `json:"imported"`
	Images   int `json:"images"`
	Rejected int `json:"rejected"`
}

// CSVImporter reads catalog CSV exports and upserts products by SKU.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	logger   *zap.Logger
	lenient  bool
}

func NewCSVImporter(r io.Reader, products ProductWriter, opts Options) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // exports pad continuation rows unevenly
	csvr.ReuseRecord = true
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:   csvr,
		products: products,
		logger:   logger,
		lenient:  opts.Lenient,
	}
}

type catalogRow struct {
	line     int
	id       string
	sku      string
	name     string
	urlKey   string
	desc     string
	cents    int64
	currency string
	imageURL string
}

// Run parses the rows and upserts one product per sku row. Rows with an
// empty sku only contribute an image to the product before them.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	cols := columns(headers)
	if _, ok := cols["sku"]; !ok {
		return res, errors.New("missing sku column")
	}

	var pending *catalogRow
	flush := func() error {
		if pending == nil {
			return nil
		}
		row := pending
		pending = nil
		err := i.save(ctx, row)
		if err == nil {
			res.Imported++
			return nil
		}
		var invalid invalidRowError
		if i.lenient && errors.As(err, &invalid) {
			res.Rejected++
			i.logger.Warn("skip catalog row", zap.Int("line", row.line), zap.String("sku", row.sku), zap.Error(err))
			return nil
		}
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		res.Rows++

		row, err := cols.parse(record, line)
		if err != nil {
			if !i.lenient {
				return res, err
			}
			res.Rejected++
			i.logger.Warn("skip catalog row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if row == nil {
			continue
		}

		if row.sku != "" {
			if err := flush(); err != nil {
				return res, err
			}
			pending = row
			continue
		}
		if pending != nil && pending.imageURL == "" {
			pending.imageURL = row.imageURL
			res.Images++
		}
	}

	if err := flush(); err != nil {
		return res, err
	}
	i.logger.Debug("catalog import done",
		zap.Int("rows", res.Rows),
		zap.Int("imported", res.Imported),
		zap.Int("rejected", res.Rejected),
	)
	return res, nil
}

type invalidRowError struct {
	line int
	sku  string
	msg  string
}

func (e invalidRowError) Error() string {
	return fmt.Sprintf("line %d sku %q: %s", e.line, e.sku, e.msg)
}

func (i *CSVImporter) save(ctx context.Context, row *catalogRow) error {
	invalid := func(msg string) error { return invalidRowError{line: row.line, sku: row.sku, msg: msg} }
	switch {
	case row.name == "":
		return invalid("name required")
	case row.cents <= 0:
		return invalid("price_cents must be positive")
	case len(row.currency) != 3:
		return invalid("currency must be a 3-letter code")
	}
	if row.id != "" {
		if _, err := uuid.Parse(row.id); err != nil {
			return invalid("id is not a uuid")
		}
	}

	urlKey := row.urlKey
	if urlKey == "" {
		urlKey = slug(row.name)
	}

	p := domain.Product{
		ID:          row.id,
		SKU:         row.sku,
		Name:        row.name,
		URLKey:      urlKey,
		Description: row.desc,
		PriceCents:  row.cents,
		Currency:    strings.ToUpper(row.currency),
		ImageURL:    row.imageURL,
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.sku, err)
	}
	return nil
}

// slug lower-cases name and joins its letter/digit runs with dashes.
func slug(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

type columnIndex map[string]int

func columns(headers []string) columnIndex {
	idx := make(columnIndex, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func (c columnIndex) parse(record []string, line int) (*catalogRow, error) {
	row := &catalogRow{
		line:     line,
		id:       c.pick(record, "id"),
		sku:      c.pick(record, "sku"),
		name:     c.pick(record, "name"),
		urlKey:   c.pick(record, "url_key"),
		desc:     c.pick(record, "description"),
		currency: c.pick(record, "currency"),
		imageURL: c.pick(record, "image_url"),
	}
	if row.sku == "" && row.imageURL == "" {
		return nil, nil
	}
	if raw := c.pick(record, "price_cents"); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalidRowError{line: line, sku: row.sku, msg: "price_cents is not an integer"}
		}
		row.cents = cents
	}
	return row, nil
}

func (c columnIndex) pick(record []string, key string) string {
	pos, ok := c[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
