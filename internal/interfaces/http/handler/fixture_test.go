package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const (
	adminUser     = "admin"
	adminPassword = "correct horse"
)

type fakeMailer struct {
	mu   sync.Mutex
	fail bool
	sent []string
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, o *order.Order) error {
	return m.record("confirmation:" + o.CustomerEmail)
}

func (m *fakeMailer) SendAdminNotification(_ context.Context, o *order.Order) error {
	return m.record("admin:" + o.ID.String())
}

func (m *fakeMailer) record(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, s)
	return nil
}

type fixture struct {
	db        *gorm.DB
	engine    *gin.Engine
	token     string
	jwt       *auth.JWTService
	bus       *event.InMemoryEventBus
	hub       *handler.StreamHub
	mailer    *fakeMailer
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	f := &fixture{
		db:        db,
		bus:       event.NewInMemoryEventBus(nil),
		mailer:    &fakeMailer{},
		uploadDir: t.TempDir(),
	}

	images, err := storage.NewLocalStorage(f.uploadDir, "/uploads")
	require.NoError(t, err)

	categoryRepo := persistence.NewGormCategoryRepository(db)
	subcategoryRepo := persistence.NewGormSubcategoryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	notificationRepo := persistence.NewGormNotificationRepository(db)

	categories := catalogapp.NewCategoryService(categoryRepo, images, f.bus)
	subcategories := catalogapp.NewSubcategoryService(subcategoryRepo, categoryRepo, images, f.bus)
	products := catalogapp.NewProductService(productRepo, categoryRepo, subcategoryRepo, images, f.bus)

	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	placement := orderapp.NewPlacementService(
		persistence.NewGormOrderTransactionScope(db),
		notificationRepo,
		f.mailer,
		orderapp.WithEventPublisher(f.bus),
		orderapp.WithDispatcher(orderapp.NewDispatcher(time.Second, nil)),
		orderapp.WithIdempotency(idem, shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}),
	)
	orders := orderapp.NewOrderService(orderRepo, notificationRepo, f.bus, nil)

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	f.jwt = auth.NewJWTService(config.JWTConfig{
		Secret:     "handler-test-secret-with-enough-length",
		Expiration: time.Hour,
		Issuer:     "storefront-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	token, err := f.jwt.GenerateToken(adminUser)
	require.NoError(t, err)
	f.token = token.AccessToken

	f.hub = handler.NewStreamHub(f.bus, handler.WithStreamHeartbeat(time.Hour))
	require.NoError(t, f.hub.Start())
	t.Cleanup(f.hub.Stop)

	limits := catalogapp.DefaultUploadLimits()
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(auth.NewAdminCredentials(adminUser, hash), f.jwt, blacklist),
		Category:     handler.NewCategoryHandler(categories, subcategories, limits),
		Subcategory:  handler.NewSubcategoryHandler(subcategories, products, limits),
		Product:      handler.NewProductHandler(products, limits),
		Order:        handler.NewOrderHandler(placement, orders),
		Notification: handler.NewNotificationHandler(notificationapp.NewService(notificationRepo)),
		Stream:       f.hub,
		System:       handler.NewSystemHandler(pingFunc(sqlDB.Ping), "storefront-test", "test"),
	}
	adminCfg := middleware.AdminAuthConfig{Validator: f.jwt, Blacklist: blacklist}
	streamCfg := adminCfg
	streamCfg.AllowQueryToken = true

	f.engine = gin.New()
	f.engine.Use(middleware.RequestID())
	f.engine.GET("/health", handlers.System.Health)
	r := router.NewRouter(f.engine)
	for _, reg := range router.StorefrontRoutes(handlers, router.Guards{
		Admin:       middleware.AdminAuth(adminCfg),
		StreamAdmin: middleware.AdminAuth(streamCfg),
		JSONBody:    middleware.BodyLimit(1 << 20),
		UploadBody:  middleware.BodyLimit(limits.MaxFileSize*int64(limits.MaxFiles) + 1<<20),
	}) {
		r.Register(reg)
	}
	r.Setup()
	return f
}

type pingFunc func() error

func (p pingFunc) Ping() error { return p() }

// do sends a JSON request; admin requests carry the fixture token
func (f *fixture) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response and unmarshals data into out
func envelope(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}
