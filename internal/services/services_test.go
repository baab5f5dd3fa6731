package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"industrial-ai-backend/internal/aggregator"
	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu        sync.Mutex
	readings  []*models.DeviceReading
	devices   []*models.RegisteredDevice
	reports   []*models.MaintenanceReport
	solutions []*models.AutomationSolution
	err       error
}

func (f *fakeStore) SaveSensorReading(_ context.Context, r *models.DeviceReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.readings = append(f.readings, r)
	return nil
}

func (f *fakeStore) UpsertDevice(_ context.Context, d *models.RegisteredDevice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, d)
	return nil
}

func (f *fakeStore) SaveMaintenanceReport(_ context.Context, r *models.MaintenanceReport, _ []models.SensorReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeStore) RecentReports(_ context.Context, deviceID string, limit int) ([]models.MaintenanceReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MaintenanceReport
	for i := len(f.reports) - 1; i >= 0 && len(out) < limit; i-- {
		if deviceID == "" || f.reports[i].DeviceID == deviceID {
			out = append(out, *f.reports[i])
		}
	}
	return out, nil
}

func (f *fakeStore) SaveSolution(_ context.Context, s *models.AutomationSolution, _ models.SolutionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.solutions = append(f.solutions, s)
	return nil
}

func (f *fakeStore) readingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readings)
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	lastSeen []models.SensorReading
	err      error
}

func (f *fakeAnalyzer) AnalyzeMaintenance(_ context.Context, deviceID string, readings []models.SensorReading) (*models.MaintenanceReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSeen = readings
	if f.err != nil {
		return nil, f.err
	}
	return &models.MaintenanceReport{
		ID:              "r-1",
		DeviceID:        deviceID,
		Prediction:      "Bearing wear",
		Confidence:      87,
		Recommendations: []string{"Replace bearing"},
	}, nil
}

func (f *fakeAnalyzer) ConfigureSolution(_ context.Context, req models.SolutionRequest) (*models.AutomationSolution, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AutomationSolution{ID: "s-1", Title: "Vision QA", Components: []string{"Camera"}}, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func reading(device, sensor string, status models.SensorStatus) *models.DeviceReading {
	return &models.DeviceReading{
		Timestamp: time.Now(),
		DeviceID:  device,
		SensorReading: models.SensorReading{
			Sensor: sensor, Value: "1", Unit: "u", Status: status,
		},
	}
}

func TestSensorServiceStoresAndRegisters(t *testing.T) {
	store := &fakeStore{}
	buffer := aggregator.NewSensorBuffer(time.Minute, zap.NewNop())
	svc := NewSensorService(store, buffer, DefaultSensorServiceConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	svc.ReadingChan <- reading("press-01", "Vibration", models.StatusNormal)
	svc.ReadingChan <- reading("press-01", "Bearing Temp", models.StatusWarning)

	require.Eventually(t, func() bool { return store.readingCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	require.Len(t, store.devices, 2)
	assert.Equal(t, models.DeviceOnline, store.devices[0].Status)
	assert.Equal(t, models.DeviceWarning, store.devices[1].Status)
	assert.Equal(t, store.devices[0].RegisteredAt, store.devices[1].RegisteredAt)
	assert.Len(t, buffer.Readings("press-01"), 2)
}

func TestSensorServiceWithoutStore(t *testing.T) {
	buffer := aggregator.NewSensorBuffer(time.Minute, zap.NewNop())
	svc := NewSensorService(nil, buffer, DefaultSensorServiceConfig(), zap.NewNop())

	svc.ReadingChan <- reading("press-01", "Vibration", models.StatusNormal)
	close(svc.ReadingChan)
	svc.Start(context.Background())

	assert.Len(t, buffer.Readings("press-01"), 1)
}

func TestSensorServiceStoreFailureStillBuffers(t *testing.T) {
	store := &fakeStore{err: errors.New("clickhouse down")}
	buffer := aggregator.NewSensorBuffer(time.Minute, zap.NewNop())
	svc := NewSensorService(store, buffer, DefaultSensorServiceConfig(), zap.NewNop())

	svc.ReadingChan <- reading("press-01", "Vibration", models.StatusNormal)
	close(svc.ReadingChan)
	svc.Start(context.Background())

	assert.Len(t, buffer.Readings("press-01"), 1)
	assert.Empty(t, store.devices)
}

type staticSource map[string][]models.SensorReading

func (s staticSource) Readings(deviceID string) []models.SensorReading { return s[deviceID] }

func TestResolveReadings(t *testing.T) {
	fallback := []models.SensorReading{{Sensor: "Fallback", Value: "0", Status: models.StatusNormal}}
	live := []models.SensorReading{{Sensor: "Live", Value: "1", Status: models.StatusWarning}}
	own := []models.SensorReading{{Sensor: "Own", Value: "2", Status: models.StatusNormal}}

	cfg := DefaultMaintenanceServiceConfig()
	cfg.FallbackReadings = fallback
	svc := NewMaintenanceService(&fakeAnalyzer{}, nil, staticSource{"press-01": live}, cfg, zap.NewNop())

	assert.Equal(t, own, svc.ResolveReadings(models.AnalysisRequest{DeviceID: "press-01", Readings: own}))
	assert.Equal(t, live, svc.ResolveReadings(models.AnalysisRequest{DeviceID: "press-01"}))
	assert.Equal(t, fallback, svc.ResolveReadings(models.AnalysisRequest{DeviceID: "unknown"}))
	assert.Equal(t, fallback, svc.ResolveReadings(models.AnalysisRequest{}))
}

func TestAnalyzeStoresAndPublishes(t *testing.T) {
	store := &fakeStore{}
	analyzer := &fakeAnalyzer{}
	svc := NewMaintenanceService(analyzer, store, nil, DefaultMaintenanceServiceConfig(), zap.NewNop())
	svc.ReportChan = make(chan *models.MaintenanceReport, 1)

	readings := []models.SensorReading{{Sensor: "Vibration", Value: "4.2", Unit: "mm/s", Status: models.StatusWarning}}
	report, err := svc.Analyze(context.Background(), models.AnalysisRequest{DeviceID: "press-01", Readings: readings})
	require.NoError(t, err)

	assert.Equal(t, "press-01", report.DeviceID)
	assert.Equal(t, readings, analyzer.lastSeen)
	require.Len(t, store.reports, 1)
	assert.Same(t, report, <-svc.ReportChan)

	history, err := svc.History(context.Background(), "press-01", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "r-1", history[0].ID)
}

func TestAnalyzeStoreFailureDoesNotFail(t *testing.T) {
	store := &fakeStore{err: errors.New("insert failed")}
	svc := NewMaintenanceService(&fakeAnalyzer{}, store, nil, DefaultMaintenanceServiceConfig(), zap.NewNop())
	// unbuffered and unread: publish must not block
	svc.ReportChan = make(chan *models.MaintenanceReport)

	report, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		DeviceID: "press-01",
		Readings: []models.SensorReading{{Sensor: "x", Value: "1", Status: models.StatusNormal}},
	})
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestAnalyzeErrors(t *testing.T) {
	svc := NewMaintenanceService(&fakeAnalyzer{}, nil, nil, DefaultMaintenanceServiceConfig(), zap.NewNop())
	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{DeviceID: "press-01"})
	assert.ErrorIs(t, err, ai.ErrNoReadings)

	transportErr := &ai.TransportError{Model: "m", Err: errors.New("unreachable")}
	analyzer := &fakeAnalyzer{err: transportErr}
	svc = NewMaintenanceService(analyzer, nil, nil, DefaultMaintenanceServiceConfig(), zap.NewNop())
	report, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		DeviceID: "press-01",
		Readings: []models.SensorReading{{Sensor: "x", Value: "1", Status: models.StatusNormal}},
	})
	assert.Nil(t, report)
	assert.True(t, ai.IsTransport(err))
}

func TestBufferWarningTriggersQueuedAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	buffer := aggregator.NewSensorBuffer(time.Minute, zap.NewNop())
	svc := NewMaintenanceService(analyzer, nil, buffer, DefaultMaintenanceServiceConfig(), zap.NewNop())
	buffer.SetAnalysisCallback(svc.Enqueue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	buffer.Update(*reading("press-01", "Vibration", models.StatusNormal))
	buffer.Update(*reading("press-01", "Bearing Temp", models.StatusWarning))

	require.Eventually(t, func() bool { return analyzer.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Len(t, analyzer.lastSeen, 2)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	cfg := DefaultMaintenanceServiceConfig()
	cfg.RequestChannelSize = 1
	svc := NewMaintenanceService(&fakeAnalyzer{}, nil, nil, cfg, zap.NewNop())

	svc.Enqueue(models.AnalysisRequest{DeviceID: "a"})
	svc.Enqueue(models.AnalysisRequest{DeviceID: "b"})

	assert.Len(t, svc.RequestChan, 1)
	assert.Equal(t, "a", (<-svc.RequestChan).DeviceID)
}

func TestConfiguratorService(t *testing.T) {
	store := &fakeStore{}
	svc := NewConfiguratorService(&fakeAnalyzer{}, store, zap.NewNop())

	solution, err := svc.Configure(context.Background(), models.SolutionRequest{Requirements: "inspect welds"})
	require.NoError(t, err)
	assert.Equal(t, "Vision QA", solution.Title)
	assert.Len(t, store.solutions, 1)

	store.err = errors.New("insert failed")
	_, err = svc.Configure(context.Background(), models.SolutionRequest{Requirements: "inspect welds"})
	assert.NoError(t, err)

	failing := NewConfiguratorService(&fakeAnalyzer{err: &ai.ParseError{Raw: "x", Err: errors.New("bad")}}, nil, zap.NewNop())
	solution, err = failing.Configure(context.Background(), models.SolutionRequest{Requirements: "inspect welds"})
	assert.Nil(t, solution)
	assert.True(t, ai.IsParse(err))
}
