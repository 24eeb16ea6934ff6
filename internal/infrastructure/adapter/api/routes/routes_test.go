package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/chat"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/eventbus"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/notification"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/outcome"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/scheduler"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/trading"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wallet"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/validation"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/auth"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/random"
	mockcore "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

type testAPI struct {
	handler http.Handler
	store   *memory.Store
	hasher  *auth.BcryptHasher
}

// 10 seconds into a 30s round, well before its lock window
var fixedNow = time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)

func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterWithGin())

	tp := mockcore.NewMockTimeProvider(t)
	tp.EXPECT().Now().Return(fixedNow).Maybe()
	tp.EXPECT().Since(mock.Anything).Return(coreport.Duration(0)).Maybe()

	log := logger.NewNoopLogger()
	store := memory.NewStore(tp)
	bus := eventbus.NewBus(log)
	hub := notification.NewHub(3*time.Second, tp, log)
	overrides := override.NewChannel(log)
	rng := random.NewMathRandom()
	clk := clock.New(clock.DefaultLockWindow)
	book := wager.NewBook()
	locks := wager.NewModeLocks()
	payouts := entity.DefaultPayoutTable()

	ledgerSvc := ledger.NewService(store, nil, tp, log, ledger.DefaultConfig())
	t.Cleanup(ledgerSvc.Shutdown)

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", "wingo-test", time.Hour, tp)

	users := user.NewUserUseCase(store.GetUserRepository(context.Background()), hasher, tokens, ledgerSvc, hub, rng, tp, log, user.DefaultConfig())
	wagers := wager.NewService(store, ledgerSvc, clk, book, locks, hub, wager.NewBotGenerator(rng, tp), tp, log, wager.DefaultConfig())
	settler := settlement.NewSettler(store, ledgerSvc, hub, bus, payouts, tp, log)
	sched := scheduler.New(clk, outcome.NewGenerator(rng, tp), overrides, store.Outcomes(), settler, book, locks, bus, tp, log, scheduler.DefaultConfig())
	markets := trading.NewMarkets(cache.NewMemoryPriceCache(), overrides, tp, log, trading.DefaultMarketConfig())
	tradingSvc := trading.NewService(store, ledgerSvc, markets, bus, tp, log, trading.DefaultConfig())
	walletSvc := wallet.NewService(store, store.Settings(), ledgerSvc, hub, bus, tp, log, wallet.DefaultConfig())
	chatSvc := chat.NewService(store.Chat(), store.GetUserRepository(context.Background()), tp, log, chat.DefaultConfig())

	router := gin.New()
	SetupMiddlewares(router, log, tp)
	SetupRoutes(router, Handlers{
		Auth:        handler.NewAuthHandler(users, log),
		User:        handler.NewUserHandler(users, ledgerSvc, hub, log),
		Round:       handler.NewRoundHandler(clk, sched, wagers, book, overrides, payouts, tp, log),
		Trading:     handler.NewTradingHandler(tradingSvc, overrides, log),
		Transaction: handler.NewTransactionHandler(walletSvc, log),
		Chat:        handler.NewChatHandler(chatSvc, log),
		Health:      handler.NewHealthHandler(nil, log),
	}, tokens)

	return &testAPI{
		handler: WithCORS(router, []string{"https://play.example.com"}, 600),
		store:   store,
		hasher:  hasher,
	}
}

func (a *testAPI) seedUser(t *testing.T, phone string, role entity.Role, real int64) *entity.User {
	hash, err := a.hasher.Hash(testPassword)
	require.NoError(t, err)
	u := entity.RestoreUser(entity.User{
		Phone:        phone,
		Username:     "user" + phone,
		PasswordHash: hash,
		Role:         role,
		ActiveMode:   entity.LedgerReal,
	}, real, 5000000)
	require.NoError(t, a.store.GetUserRepository(context.Background()).Create(context.Background(), u))
	return u
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, identity string) string {
	rec := a.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Identity: identity, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session dto.SessionResponse
	decode(t, rec, &session)
	require.NotEmpty(t, session.Token)
	return session.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	var body dto.ErrorResponse
	decode(t, rec, &body)
	return body.Code
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Phone: "081234567890", Password: testPassword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.UserResponse
	decode(t, rec, &created)
	assert.Equal(t, "50000.00", created.Balance.Demo)
	assert.Equal(t, "0.00", created.Balance.Real)

	rec = api.do(t, http.MethodPost, "/auth/register", "", dto.RegisterRequest{Phone: "081234567890", Password: testPassword})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.CodeDuplicateRegistration, errorCode(t, rec))

	rec = api.do(t, http.MethodPost, "/auth/login", "", dto.LoginRequest{Identity: "081234567890", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.CodeInvalidCredentials, errorCode(t, rec))

	token := api.login(t, "081234567890")
	rec = api.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.UserResponse
	decode(t, rec, &me)
	assert.Equal(t, created.ID, me.ID)

	rec = api.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errs.CodeUnauthorized, errorCode(t, rec))

	rec = api.do(t, http.MethodGet, "/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceWager(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "0811111111", entity.RoleUser, 100000)
	token := api.login(t, "0811111111")

	rec := api.do(t, http.MethodPost, "/wagers", token, dto.PlaceWagerRequest{Mode: "30s", Selection: "Big", Stake: "100.00", Multiplier: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var w dto.WagerResponse
	decode(t, rec, &w)
	assert.Equal(t, "200.00", w.Cost)
	assert.Equal(t, string(entity.WagerPending), w.Status)
	assert.Equal(t, clock.RoundID(entity.Mode30s, clock.Index(entity.Mode30s, fixedNow)), w.RoundID)

	rec = api.do(t, http.MethodGet, "/me", token, nil)
	var me dto.UserResponse
	decode(t, rec, &me)
	assert.Equal(t, "800.00", me.Balance.Real)

	rec = api.do(t, http.MethodGet, "/notifications/active", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/wagers", token, nil)
	var history []dto.WagerResponse
	decode(t, rec, &history)
	assert.Len(t, history, 1)
}

func TestPlaceWager_Rejections(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "0811111111", entity.RoleUser, 10000)
	token := api.login(t, "0811111111")

	cases := []struct {
		name   string
		req    dto.PlaceWagerRequest
		status int
		code   int
	}{
		{"selection", dto.PlaceWagerRequest{Mode: "30s", Selection: "Purple", Stake: "10.00"}, http.StatusBadRequest, errs.CodeInvalidSelection},
		{"mode", dto.PlaceWagerRequest{Mode: "10s", Selection: "Red", Stake: "10.00"}, http.StatusBadRequest, errs.CodeInvalidGameMode},
		{"amount", dto.PlaceWagerRequest{Mode: "30s", Selection: "Red", Stake: "1.001"}, http.StatusBadRequest, errs.CodeInvalidAmount},
		{"funds", dto.PlaceWagerRequest{Mode: "30s", Selection: "Red", Stake: "500.00"}, http.StatusBadRequest, errs.CodeInsufficientFunds},
		{"stale round", dto.PlaceWagerRequest{Mode: "30s", Selection: "Red", Stake: "10.00", RoundID: "19700101100"}, http.StatusConflict, errs.CodeStaleRound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/wagers", token, tc.req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestAdminRoutesRequireOperator(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "0811111111", entity.RoleUser, 0)
	api.seedUser(t, "0822222222", entity.RoleAdmin, 0)

	rec := api.do(t, http.MethodGet, "/admin/users", api.login(t, "0811111111"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.CodeForbidden, errorCode(t, rec))

	rec = api.do(t, http.MethodGet, "/admin/users", api.login(t, "0822222222"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []dto.UserResponse
	decode(t, rec, &users)
	assert.Len(t, users, 2)
}

func TestOverrideShowsInRoundStats(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "0822222222", entity.RoleAdmin, 0)
	token := api.login(t, "0822222222")

	rec := api.do(t, http.MethodPut, "/admin/overrides/30s", token, dto.OverrideRequest{Number: intPtr(7)})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/admin/rounds/30s", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dto.RoundStatsResponse
	decode(t, rec, &stats)
	require.NotNil(t, stats.Override)
	assert.Equal(t, 7, *stats.Override)

	rec = api.do(t, http.MethodDelete, "/admin/overrides/30s", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPut, "/admin/overrides/30s", token, map[string]any{"number": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepositApprovalCreditsRealBalance(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "0811111111", entity.RoleUser, 0)
	api.seedUser(t, "0822222222", entity.RoleAdmin, 0)
	userToken := api.login(t, "0811111111")
	adminToken := api.login(t, "0822222222")

	rec := api.do(t, http.MethodPost, "/wallet/deposits", userToken, dto.DepositRequest{Amount: "25000.00", Proof: "data:image/png;base64,AAAA"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var txn dto.TransactionResponse
	decode(t, rec, &txn)
	assert.Equal(t, string(entity.StatusPending), txn.Status)

	rec = api.do(t, http.MethodPost, "/admin/transactions/"+txn.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/admin/transactions/"+txn.ID+"/reject", adminToken, nil)
	assert.Equal(t, errs.CodeInvalidState, errorCode(t, rec))

	rec = api.do(t, http.MethodGet, "/me", userToken, nil)
	var me dto.UserResponse
	decode(t, rec, &me)
	assert.Equal(t, "25000.00", me.Balance.Real)
}

func TestChatInbox(t *testing.T) {
	api := newTestAPI(t)
	player := api.seedUser(t, "0811111111", entity.RoleUser, 0)
	api.seedUser(t, "0822222222", entity.RoleAdmin, 0)
	userToken := api.login(t, "0811111111")
	adminToken := api.login(t, "0822222222")

	rec := api.do(t, http.MethodPost, "/chat", userToken, dto.ChatMessageRequest{Text: "where is my deposit?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/admin/chat", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var threads []dto.ThreadSummaryResponse
	decode(t, rec, &threads)
	require.Len(t, threads, 1)
	assert.Equal(t, player.ID, threads[0].UserID)
	assert.Equal(t, 1, threads[0].Unread)

	rec = api.do(t, http.MethodPost, "/admin/chat/abc/read", adminToken, nil)
	assert.Equal(t, errs.CodeInvalidUserID, errorCode(t, rec))
}

func TestPublicRoundAndMarket(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/rounds/1Min", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var round dto.RoundResponse
	decode(t, rec, &round)
	assert.Equal(t, "1Min", round.Mode)
	assert.Equal(t, int64(50), round.SecondsRemaining)

	rec = api.do(t, http.MethodGet, "/rounds/2Min", "", nil)
	assert.Equal(t, errs.CodeInvalidGameMode, errorCode(t, rec))

	rec = api.do(t, http.MethodGet, "/markets/PreA", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var market dto.MarketResponse
	decode(t, rec, &market)
	assert.Equal(t, "PreA", market.Market)
}

func TestHealthAndCORS(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health dto.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "memory", health.Database)

	req := httptest.NewRequest(http.MethodOptions, "/wagers", nil)
	req.Header.Set("Origin", "https://play.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	out := httptest.NewRecorder()
	api.handler.ServeHTTP(out, req)
	assert.Equal(t, "https://play.example.com", out.Header().Get("Access-Control-Allow-Origin"))
}

func intPtr(n int) *int { return &n }
