package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/shift"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
	exceptionService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/malfunction"
	partService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/part"
	reportService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/report"
	robotService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/servicetest"
	statsService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/stats"
	warehouseService "github.com/cmlabs-hris/robot-fleet-backend-go/internal/service/warehouse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testRobotID       = "5d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
	testPartID        = "9b4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
)

var (
	technician = auth.Identity{
		UserID:      "6f1c2b8e-9f5e-4a36-9b5e-1e2a3b4c5d6e",
		EmployeeID:  servicetest.EmployeeID,
		WarehouseID: servicetest.WarehouseID,
		Role:        auth.RoleTechnician,
	}
	supervisor = auth.Identity{
		UserID:      "7a1c2b8e-9f5e-4a36-9b5e-1e2a3b4c5d6e",
		EmployeeID:  servicetest.EmployeeID,
		WarehouseID: servicetest.WarehouseID,
		Role:        auth.RoleSupervisor,
	}
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type routerFixture struct {
	router http.Handler
	jwt    *jwt.JWTService
	hub    *sse.Hub
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	resolver := shift.DefaultResolver()
	// 21:00 in Warsaw, the night shift of 2024-06-10.
	clk := clock.Fixed{At: time.Date(2024, 6, 10, 19, 0, 0, 0, time.UTC)}
	locator := warehouseService.NewScopeLocator(servicetest.NewWarehouses("Europe/Warsaw"), resolver, "UTC")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	hub := sse.NewHub()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)

	exceptions := &servicetest.Exceptions{}
	robots := servicetest.NewRobots(robot.Robot{
		ID:           testRobotID,
		WarehouseID:  servicetest.WarehouseID,
		SerialNumber: "KB-001",
		Type:         robot.TypeKubot,
		Status:       robot.StatusOperational,
	})
	parts := servicetest.NewParts(part.Part{
		ID:          testPartID,
		WarehouseID: servicetest.WarehouseID,
		PartNumber:  "BAT-01",
		Name:        "Battery",
		Stock:       10,
		MinStock:    2,
	})
	scores := servicetest.NewScores()
	employees := servicetest.NewEmployees(employee.Employee{
		ID:           servicetest.EmployeeID,
		WarehouseID:  servicetest.WarehouseID,
		EmployeeCode: "T-001",
		FullName:     "Ada Nowak",
	})
	tx := &servicetest.Tx{}

	h := Handlers{
		Exception: NewExceptionHandler(exceptionService.NewExceptionService(exceptions, robots, scores, tx, locator, resolver, clk, hub, nil, 100)),
		Robot:     NewRobotHandler(robotService.NewRobotService(robots, tx, locator, resolver, clk, hub)),
		Part:      NewPartHandler(partService.NewPartService(parts, robots, scores, tx, locator, resolver, clk, hub)),
		Report:    NewReportHandler(reportService.NewReportService(exceptions, robots, employees, locator, resolver, clk, nil, m, 100, time.Hour)),
		Stats:     NewStatsHandler(statsService.NewStatsService(exceptions, robots, parts, scores, employees, locator, resolver, clk, 100)),
		Stream:    NewStreamHandler(jwtSvc, hub),
	}

	cfg := RouterConfig{Env: "test", Version: "test", FrontendURL: "http://localhost:3000"}
	return &routerFixture{
		router: NewRouter(cfg, jwtSvc, m, h),
		jwt:    jwtSvc,
		hub:    hub,
	}
}

func (f *routerFixture) token(t *testing.T, id auth.Identity) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(id)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func TestRouter_Authentication(t *testing.T) {
	f := newRouterFixture(t)

	sseToken, _, err := f.jwt.GenerateSSEToken(technician)
	require.NoError(t, err)
	noWarehouse := technician
	noWarehouse.WarehouseID = ""

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"sse token used as access token", sseToken, http.StatusUnauthorized},
		{"token without warehouse", f.token(t, noWarehouse), http.StatusForbidden},
		{"technician", f.token(t, technician), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := f.do(t, http.MethodGet, "/api/v1/robots", tt.token, nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
		})
	}
}

func TestExceptionHandler_LogAndList(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, technician)

	rr, env := f.do(t, http.MethodPost, "/api/v1/exceptions", token, map[string]string{
		"robot_id":         testRobotID,
		"error_code":       "e_lift_04",
		"error_start_time": "2024-06-10 20:30",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID           string `json:"id"`
		ErrorCode    string `json:"error_code"`
		ErrorStartAt string `json:"error_start_at"`
		Shift        string `json:"shift"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "E_LIFT_04", created.ErrorCode)
	assert.Equal(t, "2024-06-10T18:30:00Z", created.ErrorStartAt)
	assert.Equal(t, "2024-06-10 night", created.Shift)

	rr, env = f.do(t, http.MethodGet, "/api/v1/exceptions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = f.do(t, http.MethodGet, "/api/v1/exceptions", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Exceptions []struct {
			ID string `json:"id"`
		} `json:"exceptions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Exceptions, 1)
	assert.Equal(t, created.ID, listed.Exceptions[0].ID)
}

func TestExceptionHandler_Errors(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, technician)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			method:     http.MethodPost,
			path:       "/api/v1/exceptions",
			body:       "{",
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "invalid robot id",
			method:     http.MethodPost,
			path:       "/api/v1/exceptions",
			body:       map[string]string{"robot_id": "nope", "error_code": "E1", "error_start_time": "2024-06-10 20:30"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "date without shift",
			method:     http.MethodGet,
			path:       "/api/v1/exceptions?date=2024-06-10",
			wantStatus: http.StatusBadRequest,
			wantCode:   shift.CodeInvalidWindowQuery,
		},
		{
			name:       "unknown shift kind",
			method:     http.MethodGet,
			path:       "/api/v1/reports/shift?date=2024-06-10&shift=evening",
			wantStatus: http.StatusBadRequest,
			wantCode:   shift.CodeInvalidWindowQuery,
		},
		{
			name:       "unknown exception",
			method:     http.MethodGet,
			path:       "/api/v1/exceptions/1c4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a",
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := f.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestPartHandler_RestockRequiresSupervisor(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]int{"quantity": 3}

	rr, _ := f.do(t, http.MethodPost, "/api/v1/parts/"+testPartID+"/restock", f.token(t, technician), body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env := f.do(t, http.MethodPost, "/api/v1/parts/"+testPartID+"/restock", f.token(t, supervisor), body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var restocked part.PartResponse
	require.NoError(t, json.Unmarshal(env.Data, &restocked))
	assert.Equal(t, 13, restocked.Stock)
}

func TestPartHandler_SwapInsufficientStock(t *testing.T) {
	f := newRouterFixture(t)

	rr, env := f.do(t, http.MethodPost, "/api/v1/parts/swaps", f.token(t, technician), map[string]interface{}{
		"part_id":  testPartID,
		"robot_id": testRobotID,
		"action":   "install",
		"quantity": 11,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestStatsHandler_Scores(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, technician)

	rr, _ := f.do(t, http.MethodPost, "/api/v1/parts/swaps", token, map[string]interface{}{
		"part_id":  testPartID,
		"robot_id": testRobotID,
		"action":   "install",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr, env := f.do(t, http.MethodGet, "/api/v1/stats/scores?month=2024-06", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var board struct {
		Month   string `json:"month"`
		Entries []struct {
			Rank         int     `json:"rank"`
			EmployeeCode string  `json:"employee_code"`
			Points       float64 `json:"points"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &board))
	assert.Equal(t, "2024-06", board.Month)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "T-001", board.Entries[0].EmployeeCode)
	assert.Equal(t, 0.5, board.Entries[0].Points)

	rr, env = f.do(t, http.MethodGet, "/api/v1/stats/scores?month=June", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "month")
}

func TestRouter_Metrics(t *testing.T) {
	f := newRouterFixture(t)

	rr, _ := f.do(t, http.MethodGet, "/api/v1/robots", f.token(t, technician), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)

	assert.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Body.String(), `fleet_api_http_requests_total{method="GET",route="/api/v1/robots`)
}

func TestStreamHandler(t *testing.T) {
	f := newRouterFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	tokenReq, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/stream/token", nil)
	require.NoError(t, err)
	tokenReq.Header.Set("Authorization", "Bearer "+f.token(t, technician))
	tokenResp, err := srv.Client().Do(tokenReq)
	require.NoError(t, err)
	defer tokenResp.Body.Close()
	require.Equal(t, http.StatusOK, tokenResp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(tokenResp.Body).Decode(&env))
	var issued StreamTokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	assert.Equal(t, 300, issued.ExpiresIn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	streamReq, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream?token="+issued.Token, nil)
	require.NoError(t, err)
	streamResp, err := srv.Client().Do(streamReq)
	require.NoError(t, err)
	defer streamResp.Body.Close()
	require.Equal(t, http.StatusOK, streamResp.StatusCode)
	assert.Equal(t, "text/event-stream", streamResp.Header.Get("Content-Type"))

	lines := bufio.NewReader(streamResp.Body)
	readEvent := func() (string, string) {
		t.Helper()
		var name, data string
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	name, data := readEvent()
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, servicetest.WarehouseID)

	// Other warehouses never reach this subscriber.
	f.hub.Publish("a0000000-0000-4000-8000-000000000000", sse.Event{Event: sse.EventRobotStatus})
	f.hub.Publish(servicetest.WarehouseID, sse.Event{Event: sse.EventPartSwapped, Shift: "2024-06-10 night"})

	name, data = readEvent()
	assert.Equal(t, sse.EventPartSwapped, name)
	assert.Contains(t, data, `"shift":"2024-06-10 night"`)
}

func TestStreamHandler_RejectsAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stream?token="+f.token(t, technician), nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
