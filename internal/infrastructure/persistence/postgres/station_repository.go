// internal/infrastructure/persistence/postgres/station_repository.go
package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"air-quality-alert-bot/internal/core/domain/airquality"
)

// StationRepository - репозиторий датчиков и истории измерений
type StationRepository struct {
	db *sqlx.DB
}

// NewStationRepository создает новый репозиторий
func NewStationRepository(db *sqlx.DB) *StationRepository {
	return &StationRepository{db: db}
}

// FreshStations возвращает датчики с измерением не старше since
func (r *StationRepository) FreshStations(ctx context.Context, since time.Time) ([]airquality.Station, error) {
	query := `
	SELECT id, station_id, name, latitude, longitude,
		   pm25, pm10, pm1, aqi, temperature, humidity,
		   last_measurement_at, updated_at
	FROM air_quality_stations
	WHERE last_measurement_at >= $1
	ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []airquality.Station
	for rows.Next() {
		var st airquality.Station
		err := rows.Scan(
			&st.ID, &st.StationID, &st.Name, &st.Latitude, &st.Longitude,
			&st.PM25, &st.PM10, &st.PM1, &st.AQI, &st.Temperature, &st.Humidity,
			&st.LastMeasurementAt, &st.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}

	return stations, rows.Err()
}

// Upsert создает или обновляет датчик по внешнему station_id
func (r *StationRepository) Upsert(ctx context.Context, st *airquality.Station) error {
	query := `
	INSERT INTO air_quality_stations (
		station_id, name, latitude, longitude,
		pm25, pm10, pm1, aqi, temperature, humidity,
		last_measurement_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (station_id) DO UPDATE
	SET name = EXCLUDED.name,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		pm25 = EXCLUDED.pm25,
		pm10 = EXCLUDED.pm10,
		pm1 = EXCLUDED.pm1,
		aqi = EXCLUDED.aqi,
		temperature = EXCLUDED.temperature,
		humidity = EXCLUDED.humidity,
		last_measurement_at = EXCLUDED.last_measurement_at,
		updated_at = NOW()
	RETURNING id, updated_at
	`

	return r.db.QueryRowContext(
		ctx, query,
		st.StationID, st.Name, st.Latitude, st.Longitude,
		st.PM25, st.PM10, st.PM1, st.AQI, st.Temperature, st.Humidity,
		st.LastMeasurementAt,
	).Scan(&st.ID, &st.UpdatedAt)
}

// InsertReading сохраняет историческое измерение для анализа трендов
func (r *StationRepository) InsertReading(ctx context.Context, reading *airquality.Reading) error {
	query := `
	INSERT INTO air_quality_readings (
		station_id, pm25, pm10, pm1, aqi, temperature, humidity, measured_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	return r.db.QueryRowContext(
		ctx, query,
		reading.StationID, reading.PM25, reading.PM10, reading.PM1,
		reading.AQI, reading.Temperature, reading.Humidity, reading.MeasuredAt,
	).Scan(&reading.ID)
}
