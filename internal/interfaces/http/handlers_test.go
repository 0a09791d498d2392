package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/application/usecase"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	httpapi "github.com/jhoicas/kardex-api/internal/interfaces/http"
	"github.com/jhoicas/kardex-api/pkg/jwt"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

const testSecret = "secreto-de-prueba"

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	ledgerUC := appledger.NewUseCase(store, store.Stocks(), store.Articles(), log)
	articleUC := usecase.NewArticleUseCase(store.Articles())
	journalUC := usecase.NewJournalUseCase(store.Journal(), store.Articles())
	stockQueryUC := usecase.NewStockQueryUseCase(store.Stocks())

	app := fiber.New()
	httpapi.Router(app, httpapi.RouterDeps{
		ArticleHandler: httpapi.NewArticleHandler(articleUC),
		LedgerHandler:  httpapi.NewLedgerHandler(ledgerUC, stockQueryUC),
		JournalHandler: httpapi.NewJournalHandler(journalUC),
		JWTSecret:      testSecret,
	})

	token, err := jwt.Generate(testSecret, "u-1", "jperez", "kardex-api", 60)
	require.NoError(t, err)
	return app, token
}

func doJSON(t *testing.T, app *fiber.App, token, method, path string, body interface{}) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createArticle(t *testing.T, app *fiber.App, token, code string) dto.ArticleResponse {
	t.Helper()
	resp, raw := doJSON(t, app, token, "POST", "/api/articles", dto.CreateArticleRequest{
		Code:        code,
		Designation: "Tuerca M8",
		UnitMeasure: "unidad",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(raw))
	var out dto.ArticleResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAPI_SinTokenRechaza(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, "", "GET", "/api/articles", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_TokenInvalidoRechaza(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, "no-es-un-jwt", "GET", "/api/articles", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CrearArticuloYDuplicado(t *testing.T) {
	app, token := newTestApp(t)

	article := createArticle(t, app, token, "ART-001")
	assert.NotEmpty(t, article.ID)
	assert.True(t, article.Active)

	resp, raw := doJSON(t, app, token, "POST", "/api/articles", dto.CreateArticleRequest{
		Code:        "ART-001",
		Designation: "Otro",
	})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "DUPLICATE_CODE", errResp.Code)
}

func TestAPI_FlujoDeMovimientos(t *testing.T) {
	app, token := newTestApp(t)
	article := createArticle(t, app, token, "ART-002")
	base := fmt.Sprintf("/api/stock/%s", article.ID)

	price := 5.00
	resp, raw := doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "ENTREE", "quantity": 10, "unit_price": price, "counterpart": "PROV-001",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(raw))
	var snap dto.StockSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, int64(10), snap.Quantity)
	assert.Equal(t, "NORMAL", snap.Status)

	// El actor del asiento sale del token, no del body.
	resp, raw = doJSON(t, app, token, "GET", fmt.Sprintf("/api/articles/%s/movements", article.ID), nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var movements []dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &movements))
	require.Len(t, movements, 1)
	assert.Equal(t, "jperez", movements[0].Actor)
	assert.Equal(t, int64(0), movements[0].StockBefore)
	assert.Equal(t, int64(10), movements[0].StockAfter)
}

func TestAPI_MovimientoInvalidoDetalla(t *testing.T) {
	app, token := newTestApp(t)
	article := createArticle(t, app, token, "ART-003")

	resp, raw := doJSON(t, app, token, "POST", fmt.Sprintf("/api/stock/%s/movements", article.ID), fiber.Map{
		"type": "ENTREE", "quantity": 5,
	})
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "VALIDATION", errResp.Code)
	require.Len(t, errResp.Details, 2)
	assert.Equal(t, "unit_price", errResp.Details[0].Field)
	assert.Equal(t, "counterpart", errResp.Details[1].Field)
}

func TestAPI_StockInsuficiente(t *testing.T) {
	app, token := newTestApp(t)
	article := createArticle(t, app, token, "ART-004")
	base := fmt.Sprintf("/api/stock/%s", article.ID)

	resp, _ := doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "ENTREE", "quantity": 3, "unit_price": 1.00, "counterpart": "PROV-001",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "SORTIE", "quantity": 8, "counterpart": "CLI-001",
	})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.Contains(t, errResp.Message, "disponible 3")
	assert.Contains(t, errResp.Message, "solicitado 8")
}

func TestAPI_SnapshotInexistentes(t *testing.T) {
	app, token := newTestApp(t)

	resp, raw := doJSON(t, app, token, "GET", "/api/stock/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "ARTICLE_NOT_FOUND", errResp.Code)

	article := createArticle(t, app, token, "ART-005")
	resp, raw = doJSON(t, app, token, "GET", "/api/stock/"+article.ID, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "STOCK_NOT_FOUND", errResp.Code)
}

func TestAPI_ReservaYLiberacion(t *testing.T) {
	app, token := newTestApp(t)
	article := createArticle(t, app, token, "ART-006")
	base := fmt.Sprintf("/api/stock/%s", article.ID)

	resp, _ := doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "ENTREE", "quantity": 10, "unit_price": 2.00, "counterpart": "PROV-001",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, token, "POST", base+"/reserve", dto.ReservationRequest{Quantity: 4})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(raw))
	var snap dto.StockSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, int64(4), snap.Reserved)
	assert.Equal(t, int64(6), snap.Available)

	resp, raw = doJSON(t, app, token, "POST", base+"/release", dto.ReservationRequest{Quantity: 4})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, int64(0), snap.Reserved)
}

func TestAPI_Reconciliacion(t *testing.T) {
	app, token := newTestApp(t)
	article := createArticle(t, app, token, "ART-007")
	base := fmt.Sprintf("/api/stock/%s", article.ID)

	resp, _ := doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "ENTREE", "quantity": 10, "unit_price": 1.00, "counterpart": "PROV-001",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	count := int64(7)
	resp, raw := doJSON(t, app, token, "POST", base+"/reconcile", dto.ReconcileRequest{PhysicalCount: &count})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, string(raw))
	var out dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, int64(10), out.SystemQuantity)
	assert.Equal(t, int64(-3), out.Variance)
	assert.Equal(t, int64(7), out.Snapshot.Quantity)
	assert.NotEmpty(t, out.MovementID)

	// Sin physical_count el handler rechaza antes de llegar al motor.
	resp, _ = doJSON(t, app, token, "POST", base+"/reconcile", fiber.Map{})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestAPI_AlertasDeStock(t *testing.T) {
	app, token := newTestApp(t)

	low := createArticle(t, app, token, "ART-010")
	min := int64(10)
	resp, _ := doJSON(t, app, token, "PUT", "/api/articles/"+low.ID, dto.UpdateArticleRequest{StockMin: &min})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	base := fmt.Sprintf("/api/stock/%s", low.ID)
	resp, _ = doJSON(t, app, token, "POST", base+"/movements", fiber.Map{
		"type": "ENTREE", "quantity": 8, "unit_price": 1.00, "counterpart": "PROV-001",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, token, "GET", "/api/stock/alerts", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var alerts []dto.StockSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ArticleID)
	assert.Equal(t, "FAIBLE", alerts[0].Status)
}
