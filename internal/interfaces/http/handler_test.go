package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/scan"
	apihttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/internal/observability"
)

const product = "PRD-7"

type fakeEnqueuer struct {
	calledBy string
	err      error
}

func (f *fakeEnqueuer) EnqueueIntegrityScan(_ context.Context, requestedBy string) (*asynq.TaskInfo, error) {
	f.calledBy = requestedBy
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

func newTestApp(t *testing.T, jobs apihttp.IntegrityEnqueuer) *fiber.App {
	t.Helper()
	store := memory.NewStore([]entity.Location{
		{ID: 1, Name: "Zona A", SubLocations: []entity.SubLocation{
			{ID: 10, LocationID: 1, Kind: entity.SubLocationEtage, Position: 1, TotalCapacity: 40},
			{ID: 11, LocationID: 1, Kind: entity.SubLocationEtage, Position: 2, TotalCapacity: 40},
		}},
		{ID: 2, Name: "Zona B", SubLocations: []entity.SubLocation{
			{ID: 20, LocationID: 2, Kind: entity.SubLocationPart, Position: 1, TotalCapacity: 30},
		}},
	})
	metrics := observability.NewMetrics()
	ledger := appinventory.NewLedgerUseCase(store, store.Movements(), store.Locations(), nil, metrics, nil,
		appinventory.Config{MaxConflictRetries: 5, ScanSessionTTL: time.Minute})

	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{
		Ledger:    ledger,
		Scan:      appinventory.NewScanUseCase(ledger, memory.NewSessionStore(), scan.Decoder{}),
		Integrity: appinventory.NewIntegrityUseCase(store.Movements(), nil),
		Jobs:      jobs,
		Metrics:   metrics,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apihttp.HeaderOperatorID, "op-http")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func entree(t *testing.T, app *fiber.App, qty int64, zones ...int64) dto.EntreeResponse {
	t.Helper()
	resp, body := do(t, app, http.MethodPost, "/api/inventory/entrees", map[string]any{
		"product_id":      product,
		"product_type":    "finished",
		"quantity":        qty,
		"location_ids":    zones,
		"quality_status":  "conforme",
		"expiration_date": "2026-12-31",
		"unit_cost":       "2.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.EntreeResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestEntreeYStock(t *testing.T) {
	app := newTestApp(t, nil)
	res := entree(t, app, 50, 1)

	assert.NotEmpty(t, res.LotID)
	assert.Equal(t, int64(50), res.Plan.Placed)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "op-http", res.Records[0].CreatedBy)

	resp, body := do(t, app, http.MethodGet, "/api/inventory/products/"+product+"/stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &stock))
	assert.Equal(t, int64(50), stock.TotalAvailable)
	assert.Equal(t, "125", stock.TotalValue.String())
	assert.Len(t, stock.Groups, 2)
	assert.Equal(t, "Zona A", stock.Groups[0].LocationName)

	resp, body = do(t, app, http.MethodGet, "/api/inventory/locations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var locs []dto.LocationDTO
	require.NoError(t, json.Unmarshal(body, &locs))
	require.Len(t, locs, 2)
}

func TestStock_VistaInvalida(t *testing.T) {
	app := newTestApp(t, nil)
	resp, _ := do(t, app, http.MethodGet, "/api/inventory/products/"+product+"/stock?view=otra", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEntree_Validacion(t *testing.T) {
	app := newTestApp(t, nil)
	resp, body := do(t, app, http.MethodPost, "/api/inventory/entrees", map[string]any{
		"product_id":   product,
		"product_type": "otro",
		"quantity":     0,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	details, ok := e.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "ProductType")
	assert.Contains(t, details, "LocationIDs")
}

func TestEntree_CapacidadInsuficiente(t *testing.T) {
	app := newTestApp(t, nil)
	resp, body := do(t, app, http.MethodPost, "/api/inventory/entrees", map[string]any{
		"product_id":   product,
		"product_type": "raw_material",
		"quantity":     31,
		"location_ids": []int64{2},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_CAPACITY", e.Code)
}

func TestEntree_ZonaInexistente(t *testing.T) {
	app := newTestApp(t, nil)
	resp, _ := do(t, app, http.MethodPost, "/api/inventory/entrees", map[string]any{
		"product_id":   product,
		"product_type": "raw_material",
		"quantity":     5,
		"location_ids": []int64{99},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSortie_FIFOYFaltante(t *testing.T) {
	app := newTestApp(t, nil)
	entree(t, app, 50, 1)

	resp, body := do(t, app, http.MethodPost, "/api/inventory/sorties", map[string]any{
		"product_id": product, "quantity": 45,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.SortieResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(45), out.Plan.Taken)

	resp, body = do(t, app, http.MethodPost, "/api/inventory/sorties", map[string]any{
		"product_id": product, "quantity": 6,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var e struct {
		Code    string                       `json:"code"`
		Details dto.InsufficientStockDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, int64(5), e.Details.Available)
	assert.Equal(t, int64(1), e.Details.Shortfall)
}

func TestTransferYMovimientos(t *testing.T) {
	app := newTestApp(t, nil)
	lot := entree(t, app, 20, 1)

	resp, body := do(t, app, http.MethodPost, "/api/inventory/transfers", map[string]any{
		"product_id":              product,
		"lot_id":                  lot.LotID,
		"quantity":                15,
		"source_location_id":      1,
		"destination_location_id": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var tr dto.TransferResponse
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, int64(15), tr.Destination.Placed)

	_, body = do(t, app, http.MethodGet, "/api/inventory/products/"+product+"/movements", nil)
	var visible []dto.MovementDTO
	require.NoError(t, json.Unmarshal(body, &visible))
	_, body = do(t, app, http.MethodGet, "/api/inventory/products/"+product+"/movements?include_transfers=true", nil)
	var all []dto.MovementDTO
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Greater(t, len(all), len(visible))

	resp, _ = do(t, app, http.MethodPost, "/api/inventory/transfers", map[string]any{
		"product_id":              product,
		"lot_id":                  lot.LotID,
		"quantity":                1,
		"source_location_id":      2,
		"destination_location_id": 2,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestQualityRelease(t *testing.T) {
	app := newTestApp(t, nil)
	resp, body := do(t, app, http.MethodPost, "/api/inventory/entrees", map[string]any{
		"product_id": product, "product_type": "finished", "quantity": 10, "location_ids": []int64{2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lot dto.EntreeResponse
	require.NoError(t, json.Unmarshal(body, &lot))

	resp, _ = do(t, app, http.MethodPost, "/api/inventory/sorties", map[string]any{"product_id": product, "quantity": 1})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "el stock pendiente no sale")

	resp, body = do(t, app, http.MethodPost, "/api/inventory/quality-releases", map[string]any{
		"product_id": product, "lot_id": lot.LotID, "location_id": 2, "new_status": "conforme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var rel dto.QualityReleaseResponse
	require.NoError(t, json.Unmarshal(body, &rel))
	assert.Equal(t, int64(10), rel.Released)

	resp, _ = do(t, app, http.MethodPost, "/api/inventory/sorties", map[string]any{"product_id": product, "quantity": 10})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestPreviews(t *testing.T) {
	app := newTestApp(t, nil)
	entree(t, app, 30, 1)

	resp, body := do(t, app, http.MethodPost, "/api/inventory/allocations/preview", map[string]any{
		"product_id": product, "quantity": 40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var plan dto.AllocationPlanDTO
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.Equal(t, int64(10), plan.Shortfall)

	resp, body = do(t, app, http.MethodPost, "/api/inventory/distributions/preview", map[string]any{
		"quantity": 60, "location_ids": []int64{1, 2},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dist dto.DistributionPlanDTO
	require.NoError(t, json.Unmarshal(body, &dist))
	assert.Equal(t, int64(60), dist.Placed)
	assert.Equal(t, int64(0), dist.Unplaced)
}

func TestScanSession_Flujo(t *testing.T) {
	app := newTestApp(t, nil)
	lot := entree(t, app, 50, 1) // piso 10: 40, piso 11: 10

	resp, body := do(t, app, http.MethodPost, "/api/inventory/scan-sessions", map[string]any{
		"product_id": product, "quantity": 45,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var s dto.ScanSessionDTO
	require.NoError(t, json.Unmarshal(body, &s))
	base := "/api/inventory/scan-sessions/" + s.ID

	resp, _ = do(t, app, http.MethodPost, base+"/scans", map[string]any{"payload": fmt.Sprintf("%s|40|10", lot.LotID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, app, http.MethodPost, base+"/scans", map[string]any{"payload": fmt.Sprintf("%s|40|10", lot.LotID)})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "DUPLICATE_SCAN")

	// la etiqueta del piso 11 declara menos de lo que falta tomar
	resp, body = do(t, app, http.MethodPost, base+"/scans", map[string]any{"payload": fmt.Sprintf("%s|3|11", lot.LotID)})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "LABEL_QUANTITY")

	resp, body = do(t, app, http.MethodPost, base+"/scans", map[string]any{"payload": fmt.Sprintf("%s|10|11", lot.LotID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sr dto.ScanResponse
	require.NoError(t, json.Unmarshal(body, &sr))
	require.NotNil(t, sr.Result.Prompt)
	assert.Equal(t, int64(5), sr.Result.Prompt.Requested)

	resp, _ = do(t, app, http.MethodPost, base+"/commit", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no se confirma con una toma pendiente")

	resp, body = do(t, app, http.MethodPost, base+"/confirm", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = do(t, app, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.SortieResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.Records, 2)

	resp, _ = do(t, app, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScanSession_Cancelar(t *testing.T) {
	app := newTestApp(t, nil)
	entree(t, app, 10, 1)
	resp, body := do(t, app, http.MethodPost, "/api/inventory/scan-sessions", map[string]any{
		"product_id": product, "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var s dto.ScanSessionDTO
	require.NoError(t, json.Unmarshal(body, &s))

	resp, _ = do(t, app, http.MethodDelete, "/api/inventory/scan-sessions/"+s.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, app, http.MethodPost, "/api/inventory/scan-sessions/"+s.ID+"/scans", map[string]any{"payload": "x|1|10"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegrity(t *testing.T) {
	jobs := &fakeEnqueuer{}
	app := newTestApp(t, jobs)
	entree(t, app, 10, 2)

	resp, body := do(t, app, http.MethodGet, "/api/inventory/integrity", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report dto.IntegrityReportDTO
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 1, report.ProductsChecked)
	assert.Empty(t, report.Violations)

	resp, _ = do(t, app, http.MethodPost, "/api/inventory/integrity/scans", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "op-http", jobs.calledBy)

	jobs.err = errors.New("redis caído")
	resp, _ = do(t, app, http.MethodPost, "/api/inventory/integrity/scans", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestIntegrity_SinWorker(t *testing.T) {
	app := newTestApp(t, nil)
	resp, _ := do(t, app, http.MethodPost, "/api/inventory/integrity/scans", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthMetricsYRequestID(t *testing.T) {
	app := newTestApp(t, nil)
	resp, _ := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/locations", nil)
	req.Header.Set(apihttp.HeaderRequestID, "req-42")
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-42", r.Header.Get(apihttp.HeaderRequestID))

	resp, body := do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ledger_http_requests_total")
}
