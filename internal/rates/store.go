package rates

// #region imports
import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region errors

// ErrMalformedQuery is returned for a zone outside [2,8] or a non-positive
// weight. A well-formed query with no data returns an empty slice instead.
var ErrMalformedQuery = errors.New("malformed rate query")

const (
	MinZone = 2
	MaxZone = 8
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS fedex_rates (
	Zone                     INTEGER NOT NULL,
	Weight                   INTEGER NOT NULL,
	FedEx_First_Overnight    REAL,
	FedEx_Priority_Overnight REAL,
	FedEx_Standard_Overnight REAL,
	FedEx_2Day_AM            REAL,
	FedEx_2Day               REAL,
	FedEx_Express_Saver      REAL,
	PRIMARY KEY (Zone, Weight)
);

CREATE TABLE IF NOT EXISTS fedex_service_tiers (
	service         TEXT PRIMARY KEY,
	column_name     TEXT NOT NULL,
	tier            TEXT NOT NULL,
	delivery_days   INTEGER NOT NULL,
	delivery_window TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// SQLiteStore serves rate rows from the fedex_rates table.
type SQLiteStore struct {
	db      *sql.DB
	columns []string
	query   string
}

// #endregion store-struct

// #region constructor

// OpenStore opens (or creates) a rate database, migrates it and seeds the
// service tier table from the catalog.
func OpenStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLiteStore{db: db}
	for _, svc := range shipping.Catalog() {
		s.columns = append(s.columns, svc.Column)
	}
	s.query = `SELECT Zone, Weight, ` + strings.Join(s.columns, ", ") +
		` FROM fedex_rates WHERE Zone = ? AND Weight = ?`

	if err := s.seedTiers(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) seedTiers() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, svc := range shipping.Catalog() {
		_, err := tx.Exec(
			`INSERT INTO fedex_service_tiers (service, column_name, tier, delivery_days, delivery_window)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(service) DO UPDATE SET column_name = excluded.column_name,
			   tier = excluded.tier, delivery_days = excluded.delivery_days,
			   delivery_window = excluded.delivery_window`,
			svc.Name, svc.Column, string(svc.Tier), svc.DeliveryDays, svc.DeliveryWindow,
		)
		if err != nil {
			return fmt.Errorf("seed tier %s: %w", svc.Name, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region query

// QueryRates returns the row for zone and weight. Weight is rounded up to
// the next whole pound, matching how the carrier bills.
func (s *SQLiteStore) QueryRates(ctx context.Context, zone int, weightLb float64) ([]shipping.RateRow, error) {
	w, err := validate(zone, weightLb)
	if err != nil {
		return nil, err
	}

	prices := make([]sql.NullFloat64, len(s.columns))
	dest := make([]any, 0, len(prices)+2)
	var gotZone, gotWeight int
	dest = append(dest, &gotZone, &gotWeight)
	for i := range prices {
		dest = append(dest, &prices[i])
	}

	err = s.db.QueryRowContext(ctx, s.query, zone, w).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return []shipping.RateRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rates zone=%d weight=%d: %w", zone, w, err)
	}

	row := shipping.RateRow{Zone: gotZone, WeightLb: gotWeight, Prices: make(map[string]float64)}
	for i, p := range prices {
		if p.Valid {
			svc, _ := shipping.LookupService(s.columns[i])
			row.Prices[svc.Name] = p.Float64
		}
	}
	return []shipping.RateRow{row}, nil
}

// validate checks bounds and returns the billable whole-pound weight.
func validate(zone int, weightLb float64) (int, error) {
	if zone < MinZone || zone > MaxZone {
		return 0, fmt.Errorf("zone %d: %w", zone, ErrMalformedQuery)
	}
	if weightLb <= 0 || math.IsNaN(weightLb) || math.IsInf(weightLb, 0) {
		return 0, fmt.Errorf("weight %v: %w", weightLb, ErrMalformedQuery)
	}
	return BillableWeight(weightLb), nil
}

// BillableWeight rounds a weight up to whole pounds.
func BillableWeight(weightLb float64) int {
	return int(math.Ceil(weightLb))
}

// #endregion

// #region upsert

// Upsert writes rows in one transaction. Services outside the catalog are
// rejected.
func (s *SQLiteStore) Upsert(ctx context.Context, rows []shipping.RateRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.columns)+2), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO fedex_rates (Zone, Weight, `+strings.Join(s.columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		args := make([]any, 0, len(s.columns)+2)
		args = append(args, r.Zone, r.WeightLb)
		vals := make(map[string]float64, len(r.Prices))
		for name, p := range r.Prices {
			svc, ok := shipping.LookupService(name)
			if !ok {
				return fmt.Errorf("zone %d weight %d: unknown service %q", r.Zone, r.WeightLb, name)
			}
			vals[svc.Column] = p
		}
		for _, col := range s.columns {
			if v, ok := vals[col]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert zone %d weight %d: %w", r.Zone, r.WeightLb, err)
		}
	}
	return tx.Commit()
}

// #endregion

// #region inspect

// Count returns the number of rate rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fedex_rates`).Scan(&n)
	return n, err
}

// TierRow is one fedex_service_tiers row.
type TierRow struct {
	Service        string
	Column         string
	Tier           string
	DeliveryDays   int
	DeliveryWindow string
}

// Tiers lists the service tier table, fastest first.
func (s *SQLiteStore) Tiers(ctx context.Context) ([]TierRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service, column_name, tier, delivery_days, delivery_window
		 FROM fedex_service_tiers ORDER BY delivery_days, service`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TierRow
	for rows.Next() {
		var t TierRow
		if err := rows.Scan(&t.Service, &t.Column, &t.Tier, &t.DeliveryDays, &t.DeliveryWindow); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// #endregion
