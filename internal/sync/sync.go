// internal/sync/sync.go
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/infrastructure/config"
	"air-quality-alert-bot/pkg/logger"
)

// StationWriter - хранилище датчиков и истории измерений
type StationWriter interface {
	Upsert(ctx context.Context, st *airquality.Station) error
	InsertReading(ctx context.Context, reading *airquality.Reading) error
}

// SnapshotCache кэширует последний снапшот датчика
type SnapshotCache interface {
	SetStationSnapshot(ctx context.Context, station *airquality.Station) error
}

// Service синхронизирует данные датчиков из внешнего API в БД.
//
// API отдает массив последних измерений; имена полей у разных
// поставщиков отличаются (locationId/id, pm02/pm25, atmp/temperature),
// поэтому DTO нормализуется перед записью.
type Service struct {
	client      *http.Client
	latestURL   string
	stationsURL string

	stations StationWriter
	cache    SnapshotCache // может быть nil, если Redis отключен
}

// NewService создает сервис синхронизации
func NewService(cfg *config.AirAPIConfig, stations StationWriter, cache SnapshotCache) *Service {
	return &Service{
		client:      &http.Client{Timeout: cfg.Timeout},
		latestURL:   cfg.LatestURL,
		stationsURL: cfg.StationsURL,
		stations:    stations,
		cache:       cache,
	}
}

// flexID принимает ID и числом, и строкой - API датчиков
// непоследователен в этом
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

func (f flexID) String() string { return string(f) }

// measurementDTO - сырое измерение из API. encoding/json матчит имена
// без учета регистра, поэтому дублируются только реально разные поля.
type measurementDTO struct {
	LocationID   flexID `json:"locationId"`
	ID           flexID `json:"id"`
	LocationName string `json:"locationName"`
	Name         string `json:"name"`

	Latitude  *float64 `json:"latitude"`
	Lat       *float64 `json:"lat"`
	Longitude *float64 `json:"longitude"`
	Lon       *float64 `json:"lon"`

	PM25 *float64 `json:"pm25"`
	PM02 *float64 `json:"pm02"`
	PM10 *float64 `json:"pm10"`
	PM1  *float64 `json:"pm1"`
	PM01 *float64 `json:"pm01"`

	Temperature *float64 `json:"temperature"`
	Atmp        *float64 `json:"atmp"`
	Humidity    *float64 `json:"humidity"`
	Rhum        *float64 `json:"rhum"`

	Timestamp string `json:"timestamp"`
}

func (m *measurementDTO) stationID() string {
	if s := m.LocationID.String(); s != "" {
		return s
	}
	return m.ID.String()
}

func (m *measurementDTO) coords() (float64, float64, bool) {
	lat := coalesce(m.Latitude, m.Lat)
	lon := coalesce(m.Longitude, m.Lon)
	if lat == nil || lon == nil {
		return 0, 0, false
	}
	return *lat, *lon, true
}

func (m *measurementDTO) measuredAt(now time.Time) time.Time {
	if m.Timestamp == "" {
		return now
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, m.Timestamp); err == nil {
			return ts.UTC()
		}
	}
	logger.Debug("Нераспознанный формат времени измерения: %q", m.Timestamp)
	return now
}

func coalesce(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// Sync выполняет один цикл синхронизации: забирает последние измерения
// всех датчиков и записывает их в БД. Сбой одного датчика не мешает
// записи остальных.
func (s *Service) Sync(ctx context.Context) error {
	now := time.Now().UTC()

	measurements, err := s.fetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch latest measurements: %w", err)
	}

	// Справочник имен не критичен: без него берем имя из измерения
	names, err := s.fetchStationNames(ctx)
	if err != nil {
		logger.Warn("⚠️ [Sync] Не удалось загрузить справочник станций: %v", err)
		names = map[string]string{}
	}

	saved, skipped, failed := 0, 0, 0

	for _, m := range measurements {
		id := m.stationID()
		lat, lon, ok := m.coords()
		if id == "" || !ok {
			skipped++
			continue
		}

		station := s.buildStation(&m, id, lat, lon, names, now)

		if err := s.stations.Upsert(ctx, station); err != nil {
			failed++
			logger.Error("❌ [Sync] Датчик %s: %v", id, err)
			continue
		}

		reading := &airquality.Reading{
			StationID:   station.StationID,
			PM25:        station.PM25,
			PM10:        station.PM10,
			PM1:         station.PM1,
			AQI:         station.AQI,
			Temperature: station.Temperature,
			Humidity:    station.Humidity,
			MeasuredAt:  station.LastMeasurementAt,
		}
		if err := s.stations.InsertReading(ctx, reading); err != nil {
			logger.Warn("⚠️ [Sync] Не удалось записать историю датчика %s: %v", id, err)
		}

		if s.cache != nil {
			if err := s.cache.SetStationSnapshot(ctx, station); err != nil {
				logger.Debug("Не удалось закэшировать снапшот датчика %s: %v", id, err)
			}
		}

		saved++
	}

	logger.Info("✅ [Sync] Синхронизация завершена: сохранено %d, пропущено %d, ошибок %d",
		saved, skipped, failed)

	return nil
}

func (s *Service) buildStation(
	m *measurementDTO,
	id string,
	lat, lon float64,
	names map[string]string,
	now time.Time,
) *airquality.Station {
	name := m.LocationName
	if name == "" {
		name = m.Name
	}
	if override, ok := names[id]; ok && override != "" {
		name = override
	}

	pm25 := coalesce(m.PM25, m.PM02)
	pm1 := coalesce(m.PM1, m.PM01)

	var aqi *int
	if pm25 != nil {
		v := airquality.CalculateAQIPM25(*pm25)
		aqi = &v
	}

	return &airquality.Station{
		StationID:         id,
		Name:              name,
		Latitude:          lat,
		Longitude:         lon,
		PM25:              pm25,
		PM10:              m.PM10,
		PM1:               pm1,
		AQI:               aqi,
		Temperature:       coalesce(m.Temperature, m.Atmp),
		Humidity:          coalesce(m.Humidity, m.Rhum),
		LastMeasurementAt: m.measuredAt(now),
	}
}

func (s *Service) fetchLatest(ctx context.Context) ([]measurementDTO, error) {
	body, err := s.fetchJSON(ctx, s.latestURL)
	if err != nil {
		return nil, err
	}

	var measurements []measurementDTO
	if err := json.Unmarshal(body, &measurements); err != nil {
		return nil, fmt.Errorf("failed to decode measurements: %w", err)
	}
	return measurements, nil
}

// fetchStationNames загружает справочник человекочитаемых имен станций
func (s *Service) fetchStationNames(ctx context.Context) (map[string]string, error) {
	if s.stationsURL == "" {
		return map[string]string{}, nil
	}

	body, err := s.fetchJSON(ctx, s.stationsURL)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		LocationID   flexID `json:"locationId"`
		ID           flexID `json:"id"`
		LocationName string `json:"locationName"`
		Name         string `json:"name"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode stations: %w", err)
	}

	names := make(map[string]string, len(entries))
	for _, e := range entries {
		id := e.LocationID.String()
		if id == "" {
			id = e.ID.String()
		}
		name := e.LocationName
		if name == "" {
			name = e.Name
		}
		if id != "" && name != "" {
			names[id] = name
		}
	}
	return names, nil
}

func (s *Service) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
