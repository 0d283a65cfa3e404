// internal/core/domain/airquality/types.go
package airquality

import (
	"time"
)

// Station - датчик качества воздуха с последним измерением
type Station struct {
	ID        int64   `json:"id"`
	StationID string  `json:"station_id"` // внешний ID из API датчиков
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Показатели качества воздуха
	PM25 *float64 `json:"pm25,omitempty"` // PM2.5 мкг/м³
	PM10 *float64 `json:"pm10,omitempty"` // PM10 мкг/м³
	PM1  *float64 `json:"pm1,omitempty"`  // PM1.0 мкг/м³
	AQI  *int     `json:"aqi,omitempty"`

	// Окружающая среда
	Temperature *float64 `json:"temperature,omitempty"` // °C
	Humidity    *float64 `json:"humidity,omitempty"`    // %

	LastMeasurementAt time.Time `json:"last_measurement_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Reading - историческое измерение для анализа трендов
type Reading struct {
	ID        int64    `json:"id"`
	StationID string   `json:"station_id"`
	PM25      *float64 `json:"pm25,omitempty"`
	PM10      *float64 `json:"pm10,omitempty"`
	PM1       *float64 `json:"pm1,omitempty"`
	AQI       *int     `json:"aqi,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`

	MeasuredAt time.Time `json:"measured_at"`
}
