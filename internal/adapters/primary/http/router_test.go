package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticketing-system/internal/adapters/secondary/filestore"
	"github.com/lorrc/ticketing-system/internal/auth"
	"github.com/lorrc/ticketing-system/internal/clock"
	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/pool"
	"github.com/lorrc/ticketing-system/internal/core/ports"
	"github.com/lorrc/ticketing-system/internal/core/services"
)

type testStack struct {
	router       chi.Router
	tokenManager *auth.TokenManager
	pool         *pool.Pool
	accounts     *services.AccountService
}

// newTestStack wires the real services over in-memory stores. Release and
// retrieval rates are zero so runs finish quickly.
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accountStore := filestore.NewAccountStore()
	configService := services.NewConfigurationService(filestore.NewConfigurationStore(), logger)
	require.NoError(t, configService.Init(ctx))

	ticketPool := pool.New(pool.Config{
		Capacity:   configService,
		Repository: filestore.NewMemoryTicketStore(),
		Logger:     logger,
	})
	configService.BindPool(ticketPool)

	_, err := configService.UpdateTicketSettings(ctx, ports.UpdateTicketSettingsParams{
		AdminUsername: domain.DefaultAdminUsername,
		AdminPassword: domain.DefaultAdminPassword,
		Settings:      domain.TicketSettings{MaxCapacity: 20},
	})
	require.NoError(t, err)

	clk := clock.NewSystem()
	pause := services.NewPauseControl()
	accountService := services.NewAccountService(accountStore)
	vendors := services.NewVendorService(ticketPool, accountStore, configService, pause, clk, logger)
	customers := services.NewCustomerService(ticketPool, accountStore, configService, pause, clk, logger)
	t.Cleanup(func() {
		vendors.Shutdown()
		customers.Shutdown()
	})

	tm := auth.NewTokenManager("test-secret", time.Hour)
	router := NewRouter(RouterConfig{
		TokenManager:  tm,
		Accounts:      accountService,
		Vendors:       vendors,
		Customers:     customers,
		Admin:         services.NewAdminService(pause, configService, logger),
		Configuration: configService,
		Simulation:    services.NewSimulationService(vendors, customers, accountService, pause, logger),
		Pool:          ticketPool,
		Health:        NewHealthHandler(nil, ticketPool, "test"),
		Logger:        logger,
	})

	return &testStack{
		router:       router,
		tokenManager: tm,
		pool:         ticketPool,
		accounts:     accountService,
	}
}

func (s *testStack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()

	s.router.ServeHTTP(recorder, req)
	return recorder
}

func (s *testStack) token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	token, err := s.tokenManager.GenerateToken(id, role)
	require.NoError(t, err)
	return token
}

func (s *testStack) signUp(t *testing.T, role domain.Role, id string) string {
	t.Helper()
	_, err := s.accounts.SignUp(context.Background(), role, id, "secret123")
	require.NoError(t, err)
	return s.token(t, id, role)
}

func (s *testStack) adminToken(t *testing.T) string {
	t.Helper()
	rec := s.do(t, stdhttp.MethodPost, "/api/v1/admin/signin", "", map[string]string{
		"username": domain.DefaultAdminUsername,
		"password": domain.DefaultAdminPassword,
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}

func (s *testStack) addTickets(t *testing.T, vendorID, eventName string, n int) {
	t.Helper()
	tickets, err := domain.NewTicketBatch(domain.BatchParams{
		VendorID:     vendorID,
		EventName:    eventName,
		Price:        50,
		TimeDuration: "2 hours",
		Date:         "2024-12-01",
		BatchSize:    n,
	})
	require.NoError(t, err)

	for _, ticket := range tickets {
		ok, err := s.pool.AddTicket(context.Background(), ticket)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Code
}

func TestAccountSignUpAndSignIn(t *testing.T) {
	s := newTestStack(t)
	creds := map[string]string{"id": "VEND001", "password": "secret123"}

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/vendors/signup", "", creds)
	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	var account AccountResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&account))
	assert.Equal(t, "VEND001", account.ID)
	assert.Equal(t, "vendor", account.Role)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/vendors/signup", "", creds)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, "ACCOUNT_EXISTS", errorCode(t, rec))

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/vendors/signin", "", map[string]string{"id": "VEND001", "password": "wrongpass"})
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	// Vendor and customer accounts are separate.
	rec = s.do(t, stdhttp.MethodPost, "/api/v1/customers/signin", "", creds)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/vendors/signin", "", creds)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var token TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "vendor", token.Role)
}

func TestAccountSignUp_Invalid(t *testing.T) {
	s := newTestStack(t)

	tests := []struct {
		name  string
		creds map[string]string
	}{
		{"bad id format", map[string]string{"id": "vendor-1", "password": "secret123"}},
		{"short password", map[string]string{"id": "cust001", "password": "short"}},
		{"long password", map[string]string{"id": "cust001", "password": "waytoolongpassword"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, stdhttp.MethodPost, "/api/v1/customers/signup", "", tt.creds)
			assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestVendorStartRun(t *testing.T) {
	s := newTestStack(t)
	token := s.signUp(t, domain.RoleVendor, "VEND001")

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/vendors/VEND001/runs", token, ReleaseRequest{
		EventName:    "Concert",
		Price:        75,
		TimeDuration: "2 hours",
		Date:         "2024-12-01",
		BatchSize:    3,
	})
	require.Equal(t, stdhttp.StatusAccepted, rec.Code)

	var run ports.RunInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&run))
	assert.Equal(t, "VEND001", run.ActorID)
	assert.Equal(t, domain.RoleVendor, run.Kind)
	assert.Equal(t, "Concert", run.EventName)
	assert.NotEmpty(t, run.ID)

	assert.Eventually(t, func() bool {
		return s.pool.AvailableByVendor("VEND001")["Concert"] == 3
	}, 2*time.Second, 10*time.Millisecond)

	rec = s.do(t, stdhttp.MethodGet, "/api/v1/vendors/VEND001/tickets", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, map[string]int{"Concert": 3}, resp.Data)
}

func TestVendorStartRun_Validation(t *testing.T) {
	s := newTestStack(t)
	token := s.signUp(t, domain.RoleVendor, "VEND001")

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/vendors/VEND001/runs", token, ReleaseRequest{
		EventName: "",
		Price:     -1,
		BatchSize: 0,
	})
	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestVendorStopRuns_NoneActive(t *testing.T) {
	s := newTestStack(t)
	token := s.signUp(t, domain.RoleVendor, "VEND001")

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/vendors/VEND001/runs/stop", token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_ACTIVE_RUNS", errorCode(t, rec))
}

func TestCustomerPurchase(t *testing.T) {
	s := newTestStack(t)
	s.addTickets(t, "VEND001", "Concert", 4)
	token := s.signUp(t, domain.RoleCustomer, "cust001")

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/customers/cust001/runs", token, PurchaseRequest{
		EventName:     "Concert",
		TicketsToBook: 2,
	})
	require.Equal(t, stdhttp.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return s.pool.BookedByCustomer("cust001")["Concert"] == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, s.pool.CountAvailable())
}

func TestActorRoutes_Authorization(t *testing.T) {
	s := newTestStack(t)
	s.signUp(t, domain.RoleVendor, "VEND001")

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", stdhttp.StatusUnauthorized},
		{"other vendor", s.token(t, "VEND002", domain.RoleVendor), stdhttp.StatusForbidden},
		{"customer", s.token(t, "VEND001", domain.RoleCustomer), stdhttp.StatusForbidden},
		{"self", s.token(t, "VEND001", domain.RoleVendor), stdhttp.StatusOK},
		{"admin", s.token(t, "admin", domain.RoleAdmin), stdhttp.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, stdhttp.MethodGet, "/api/v1/vendors/VEND001/runs", tt.token, nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAdminStopAndResume(t *testing.T) {
	s := newTestStack(t)
	vendorToken := s.signUp(t, domain.RoleVendor, "VEND001")
	adminToken := s.adminToken(t)

	rec := s.do(t, stdhttp.MethodGet, "/api/v1/admin/status", vendorToken, nil)
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/admin/stop-all", adminToken, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var status struct {
		Data domain.AdminStatus `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.Data.VendorsStopped)
	assert.True(t, status.Data.CustomersStopped)

	release := ReleaseRequest{EventName: "Concert", Price: 10, BatchSize: 1}
	rec = s.do(t, stdhttp.MethodPost, "/api/v1/vendors/VEND001/runs", vendorToken, release)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, "STOPPED_BY_ADMIN", errorCode(t, rec))

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/admin/resume-all", adminToken, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/vendors/VEND001/runs", vendorToken, release)
	assert.Equal(t, stdhttp.StatusAccepted, rec.Code)
}

func TestAdminSignIn_InvalidCredentials(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/admin/signin", "", map[string]string{
		"username": "admin",
		"password": "nope",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestConfigView(t *testing.T) {
	s := newTestStack(t)
	s.addTickets(t, "VEND001", "Concert", 2)

	rec := s.do(t, stdhttp.MethodGet, "/api/v1/config", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data domain.ConfigurationView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 20, resp.Data.MaxCapacity)
	assert.Equal(t, 2, resp.Data.AvailableTickets)
	assert.Equal(t, domain.DefaultAdminUsername, resp.Data.AdminUsername)
}

func TestConfigUpdateTicketSettings(t *testing.T) {
	s := newTestStack(t)
	s.addTickets(t, "VEND001", "Concert", 5)

	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name   string
		body   UpdateTicketSettingsRequest
		status int
		code   string
	}{
		{
			name: "wrong credentials",
			body: UpdateTicketSettingsRequest{
				AdminUsername: "admin", AdminPassword: "wrong",
				ReleaseRate: intPtr(100), RetrievalRate: intPtr(100), MaxCapacity: intPtr(50),
			},
			status: stdhttp.StatusUnauthorized,
			code:   "INVALID_CREDENTIALS",
		},
		{
			name: "missing field",
			body: UpdateTicketSettingsRequest{
				AdminUsername: "admin", AdminPassword: domain.DefaultAdminPassword,
				ReleaseRate: intPtr(100), RetrievalRate: intPtr(100),
			},
			status: stdhttp.StatusUnprocessableEntity,
			code:   "VALIDATION_ERROR",
		},
		{
			name: "capacity below available",
			body: UpdateTicketSettingsRequest{
				AdminUsername: "admin", AdminPassword: domain.DefaultAdminPassword,
				ReleaseRate: intPtr(100), RetrievalRate: intPtr(100), MaxCapacity: intPtr(4),
			},
			status: stdhttp.StatusUnprocessableEntity,
			code:   "INVALID_CAPACITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, stdhttp.MethodPut, "/api/v1/config/ticket-settings", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}

	rec := s.do(t, stdhttp.MethodPut, "/api/v1/config/ticket-settings", "", UpdateTicketSettingsRequest{
		AdminUsername: "admin", AdminPassword: domain.DefaultAdminPassword,
		ReleaseRate: intPtr(250), RetrievalRate: intPtr(500), MaxCapacity: intPtr(5),
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data domain.ConfigurationView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 250, resp.Data.ReleaseRateMs)
	assert.Equal(t, 500, resp.Data.RetrievalRateMs)
	assert.Equal(t, 5, resp.Data.MaxCapacity)
	assert.Equal(t, 5, s.pool.MaxCapacity())
}

func TestConfigUpdateAdminCredentials(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, stdhttp.MethodPut, "/api/v1/config/admin-credentials", "", UpdateAdminCredentialsRequest{
		OldUsername: "admin",
		OldPassword: domain.DefaultAdminPassword,
		NewUsername: "root",
		NewPassword: "newpass123",
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/admin/signin", "", map[string]string{
		"username": "admin",
		"password": domain.DefaultAdminPassword,
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/admin/signin", "", map[string]string{
		"username": "root",
		"password": "newpass123",
	})
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestPoolViews(t *testing.T) {
	s := newTestStack(t)
	s.addTickets(t, "VEND001", "Concert", 3)
	s.addTickets(t, "VEND002", "Play", 1)

	ok, _, err := s.pool.RemoveTicket(context.Background(), "Concert", "cust001")
	require.NoError(t, err)
	require.True(t, ok)

	rec := s.do(t, stdhttp.MethodGet, "/api/v1/ticket-pool", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var snapshot struct {
		Data  []domain.TicketSnapshot `json:"data"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snapshot))
	assert.Equal(t, 4, snapshot.Count)

	rec = s.do(t, stdhttp.MethodGet, "/api/v1/ticket-pool/events/available", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var available struct {
		Data []EventCountResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&available))
	assert.ElementsMatch(t, []EventCountResponse{
		{EventName: "Concert", Count: 2},
		{EventName: "Play", Count: 1},
	}, available.Data)

	rec = s.do(t, stdhttp.MethodGet, "/api/v1/ticket-pool/customers/cust001/booked", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var booked struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&booked))
	assert.Equal(t, map[string]int{"Concert": 1}, booked.Data)

	rec = s.do(t, stdhttp.MethodGet, "/api/v1/ticket-pool/stats", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var stats struct {
		Data domain.PoolStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Data.Available)
	assert.Equal(t, 1, stats.Data.Booked)
	assert.Equal(t, 20, stats.Data.MaxCapacity)
}

func TestSimulation(t *testing.T) {
	s := newTestStack(t)
	adminToken := s.adminToken(t)

	for _, path := range []string{
		"/api/v1/simulation/vendors",
		"/api/v1/simulation/vendors?n=0",
		"/api/v1/simulation/vendors?n=1000",
	} {
		rec := s.do(t, stdhttp.MethodPost, path, adminToken, nil)
		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code, path)
	}

	rec := s.do(t, stdhttp.MethodPost, "/api/v1/simulation/vendors?n=2", s.token(t, "VEND001", domain.RoleVendor), nil)
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	rec = s.do(t, stdhttp.MethodPost, "/api/v1/simulation/vendors?n=2", adminToken, nil)
	require.Equal(t, stdhttp.StatusAccepted, rec.Code)

	var resp ListResponse[ports.RunInfo]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "VEND001", resp.Data[0].ActorID)
	assert.Equal(t, "VEND002", resp.Data[1].ActorID)
}

func TestHealthRoutes(t *testing.T) {
	s := newTestStack(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := s.do(t, stdhttp.MethodGet, path, "", nil)
		assert.Equal(t, stdhttp.StatusOK, rec.Code, path)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, stdhttp.MethodGet, "/api/v1/config", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
