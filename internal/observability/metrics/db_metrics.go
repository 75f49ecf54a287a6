package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// CountSource yields row counts for DB-backed gauges.
type CountSource interface {
	Count(query string) (int64, error)
}

// DBCountSource implements CountSource over database/sql.
type DBCountSource struct {
	DB     *sql.DB
	Logger zerolog.Logger
}

// Count runs a single COUNT query.
func (s DBCountSource) Count(query string) (int64, error) {
	if s.DB == nil {
		return 0, nil
	}
	var count int64
	if err := s.DB.QueryRow(query).Scan(&count); err != nil {
		s.Logger.Warn().Err(err).Str("query", query).Msg("metrics count query failed")
		return 0, err
	}
	return count, nil
}

func registerCountGauges(counts CountSource) {
	gauge := func(name, help, query string) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: metricPrefix + name, Help: help},
			func() float64 {
				count, err := counts.Count(query)
				if err != nil || count < 0 {
					return 0
				}
				return float64(count)
			},
		)
	}

	prometheus.MustRegister(gauge(
		"tickets_sold",
		"Tickets currently persisted",
		"SELECT COUNT(*) FROM tickets",
	))
	prometheus.MustRegister(gauge(
		"orders_open",
		"Orders currently persisted",
		"SELECT COUNT(*) FROM orders",
	))
	prometheus.MustRegister(gauge(
		"journeys_scheduled",
		"Journeys with a future departure",
		"SELECT COUNT(*) FROM journeys WHERE departure_time > NOW()",
	))
}
