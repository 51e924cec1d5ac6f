package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bertron/internal/delivery/http/middleware"
	"bertron/internal/delivery/http/response"
	httpvalidator "bertron/internal/delivery/http/validator"
	"bertron/internal/domain/entity"
	domainerrors "bertron/internal/domain/errors"
	"bertron/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEntityUsecase struct {
	mock.Mock
}

func (m *mockEntityUsecase) GetAll(ctx context.Context) ([]*entity.Entity, error) {
	args := m.Called(ctx)
	entities, _ := args.Get(0).([]*entity.Entity)

	return entities, args.Error(1)
}

func (m *mockEntityUsecase) GetByID(ctx context.Context, id string) (*entity.Entity, error) {
	args := m.Called(ctx, id)
	ent, _ := args.Get(0).(*entity.Entity)

	return ent, args.Error(1)
}

func (m *mockEntityUsecase) Find(ctx context.Context, input *usecase.FindInput) (*usecase.FindResult, error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*usecase.FindResult)

	return result, args.Error(1)
}

func (m *mockEntityUsecase) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, extra map[string]any) ([]*entity.Entity, error) {
	args := m.Called(ctx, lat, lng, radiusMeters, extra)
	entities, _ := args.Get(0).([]*entity.Entity)

	return entities, args.Error(1)
}

func (m *mockEntityUsecase) FindInBBox(ctx context.Context, swLat, swLng, neLat, neLng float64, extra map[string]any) ([]*entity.Entity, error) {
	args := m.Called(ctx, swLat, swLng, neLat, neLng, extra)
	entities, _ := args.Get(0).([]*entity.Entity)

	return entities, args.Error(1)
}

func (m *mockEntityUsecase) DatabaseHealthy(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func newTestServer(uc usecase.EntityUsecase) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = httpvalidator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	h := NewEntityHandler(EntityHandlerParams{EntityUC: uc, Logger: logger})
	e.GET("/bertron", h.GetAll)
	e.POST("/bertron/find", h.Find)
	e.GET("/bertron/geo/nearby", h.Nearby)
	e.GET("/bertron/geo/bbox", h.BBox)
	e.GET("/bertron/:id", h.GetByID)

	return e
}

func testEntity(id string) *entity.Entity {
	name := "Soil core 12B"
	lat, lng := 46.34, -119.28

	return &entity.Entity{
		ID:            id,
		URI:           "https://example.org/sample/1",
		Name:          &name,
		BERDataSource: entity.SourceEMSL,
		EntityType:    []string{"sample"},
		Coordinates:   &entity.Coordinates{Latitude: &lat, Longitude: &lng},
	}
}

func doRequest(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestEntityHandler_GetAll(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("GetAll", mock.Anything).Return([]*entity.Entity{testEntity("EMSL:1")}, nil)

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet, "/bertron", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Documents []map[string]any `json:"documents"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Documents, 1)
	assert.Equal(t, "EMSL:1", body.Documents[0]["id"])
}

func TestEntityHandler_GetByID(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("GetByID", mock.Anything, "EMSL:1").Return(testEntity("EMSL:1"), nil)

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet, "/bertron/EMSL:1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EMSL:1", body["id"])
}

func TestEntityHandler_GetByID_NotFound(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("GetByID", mock.Anything, "EMSL:missing").
		Return(nil, domainerrors.ErrEntityNotFound.WithDetails("no entity with id EMSL:missing"))

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet, "/bertron/EMSL:missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "ENTITY_NOT_FOUND", body.Code)
	assert.Contains(t, body.Detail, "not found")
}

func TestEntityHandler_Find(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("Find", mock.Anything, mock.MatchedBy(func(input *usecase.FindInput) bool {
		return input.Filter["ber_data_source"] == "EMSL" && input.Limit == 10
	})).Return(&usecase.FindResult{
		Mode:     usecase.FindModeEntities,
		Entities: []*entity.Entity{testEntity("EMSL:1")},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/bertron/find",
		strings.NewReader(`{"filter": {"ber_data_source": "EMSL"}, "limit": 10}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(newTestServer(uc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestEntityHandler_Find_Projection(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("Find", mock.Anything, mock.Anything).Return(&usecase.FindResult{
		Mode:      usecase.FindModeRaw,
		Documents: []map[string]any{{"name": "Soil core 12B"}},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/bertron/find",
		strings.NewReader(`{"filter": {}, "projection": {"name": 1}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(newTestServer(uc), req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Documents []map[string]any `json:"documents"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, map[string]any{"name": "Soil core 12B"}, body.Documents[0])
}

func TestEntityHandler_Find_LimitTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/bertron/find",
		strings.NewReader(`{"filter": {}, "limit": 5000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(newTestServer(new(mockEntityUsecase)), req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEntityHandler_Find_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/bertron/find",
		strings.NewReader(`{"filter":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doRequest(newTestServer(new(mockEntityUsecase)), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}

func TestEntityHandler_Nearby(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("FindNearby", mock.Anything, 46.34, -119.28, 5000.0,
		map[string]any{"ber_data_source": "EMSL"}).
		Return([]*entity.Entity{testEntity("EMSL:1")}, nil)

	target := "/bertron/geo/nearby?latitude=46.34&longitude=-119.28&radius_meters=5000" +
		"&filter_json=" + url.QueryEscape(`{"ber_data_source": "EMSL"}`)
	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestEntityHandler_Nearby_LatitudeOutOfRange(t *testing.T) {
	rec := doRequest(newTestServer(new(mockEntityUsecase)),
		httptest.NewRequest(http.MethodGet,
			"/bertron/geo/nearby?latitude=95&longitude=-119.28&radius_meters=5000", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEntityHandler_Nearby_MissingRadius(t *testing.T) {
	rec := doRequest(newTestServer(new(mockEntityUsecase)),
		httptest.NewRequest(http.MethodGet,
			"/bertron/geo/nearby?latitude=46.34&longitude=-119.28", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEntityHandler_Nearby_MalformedFilterJSON(t *testing.T) {
	target := "/bertron/geo/nearby?latitude=46.34&longitude=-119.28&radius_meters=5000" +
		"&filter_json=" + url.QueryEscape(`{"broken":`)
	rec := doRequest(newTestServer(new(mockEntityUsecase)),
		httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FILTER", decodeError(t, rec).Code)
}

func TestEntityHandler_BBox(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("FindInBBox", mock.Anything, 45.0, -120.0, 47.0, -119.0, mock.Anything).
		Return([]*entity.Entity{testEntity("EMSL:1")}, nil)

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet,
			"/bertron/geo/bbox?southwest_lat=45&southwest_lng=-120&northeast_lat=47&northeast_lng=-119", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

func TestEntityHandler_BBox_InvertedCorners(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("FindInBBox", mock.Anything, 47.0, -120.0, 45.0, -119.0, mock.Anything).
		Return(nil, domainerrors.ErrInvalidBoundingBox)

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet,
			"/bertron/geo/bbox?southwest_lat=47&southwest_lng=-120&northeast_lat=45&northeast_lng=-119", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "INVALID_BOUNDING_BOX", body.Code)
	assert.Contains(t, body.Detail, "latitude")
}

func TestEntityHandler_BBox_MissingCorner(t *testing.T) {
	rec := doRequest(newTestServer(new(mockEntityUsecase)),
		httptest.NewRequest(http.MethodGet,
			"/bertron/geo/bbox?southwest_lat=45&southwest_lng=-120&northeast_lat=47", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEntityHandler_CollectionMissing(t *testing.T) {
	uc := new(mockEntityUsecase)
	uc.On("GetAll", mock.Anything).Return(nil, domainerrors.ErrCollectionNotFound)

	rec := doRequest(newTestServer(uc),
		httptest.NewRequest(http.MethodGet, "/bertron", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "COLLECTION_NOT_FOUND", decodeError(t, rec).Code)
}
