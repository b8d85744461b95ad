package rates

// #region imports
import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region parse

// ParseCSV reads "Zone,Weight,<service>..." rows. Service headers may be
// catalog names or rate-table column names. Empty cells mean the service
// is not offered for that row.
func ParseCSV(r io.Reader) ([]shipping.RateRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 3 || !strings.EqualFold(header[0], "zone") || !strings.EqualFold(header[1], "weight") {
		return nil, fmt.Errorf("header must start with Zone,Weight and name at least one service: %v", header)
	}
	services := make([]string, len(header)-2)
	for i, h := range header[2:] {
		svc, ok := shipping.LookupService(strings.TrimSpace(h))
		if !ok {
			return nil, fmt.Errorf("unknown service column %q", h)
		}
		services[i] = svc.Name
	}

	var out []shipping.RateRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		zone, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil || zone < MinZone || zone > MaxZone {
			return nil, fmt.Errorf("line %d: bad zone %q", line, rec[0])
		}
		weight, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || weight <= 0 {
			return nil, fmt.Errorf("line %d: bad weight %q", line, rec[1])
		}
		row := shipping.RateRow{Zone: zone, WeightLb: weight, Prices: make(map[string]float64)}
		for i, cell := range rec[2:] {
			cell = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), "$"))
			if cell == "" {
				continue
			}
			p, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad price %q for %s", line, cell, services[i])
			}
			row.Prices[services[i]] = p
		}
		out = append(out, row)
	}
	return out, nil
}

// #endregion

// #region load

// LoadCSV parses r and upserts every row. Returns the number of rows loaded.
func (s *SQLiteStore) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.Upsert(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// #endregion
