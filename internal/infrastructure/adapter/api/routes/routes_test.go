package routes

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/admin"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/catalog"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/purchase"
	"github.com/amirhossein-jamali/marketplace/internal/domain/usecase/workflow"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/assets"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/store/storetest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testServer struct {
	t      *testing.T
	router *gin.Engine
	fx     *storetest.Fixture
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := storetest.New(t)
	log := logger.NewNoopLogger()

	images, err := assets.NewImageStore(t.TempDir(), entity.DefaultImage, 1<<20)
	require.NoError(t, err)
	issuer, err := security.NewJWTIssuer("0123456789abcdef0123456789abcdef", "marketplace-test", core.Hour, fx.TimeProvider)
	require.NoError(t, err)

	accounts := account.NewAccountUseCase(fx.UoW, security.NewBcryptHasher(bcrypt.MinCost), issuer,
		account.Config{StartingBalance: account.DefaultStartingBalance}, fx.TimeProvider, log)
	ledgerSvc := ledger.NewLedger(fx.TimeProvider, log)
	catalogUC := catalog.NewCatalogUseCase(fx.UoW, images, fx.TimeProvider, log)

	router := gin.New()
	SetupMiddlewares(router, log, fx.TimeProvider, []string{"http://shop.test"})
	SetupRoutes(router, Handlers{
		Account:  handler.NewAccountHandler(accounts, log),
		Catalog:  handler.NewCatalogHandler(catalogUC, images, log),
		Purchase: handler.NewPurchaseHandler(purchase.NewPurchaseUseCase(fx.UoW, catalogUC, ledgerSvc, log), log),
		Workflow: handler.NewWorkflowHandler(workflow.NewWorkflowUseCase(fx.UoW, fx.TimeProvider, log), log),
		Admin:    handler.NewAdminHandler(admin.NewAdminUseCase(fx.UoW, ledgerSvc, fx.TimeProvider, log), log),
	}, accounts)

	return &testServer{t: t, router: router, fx: fx}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()

	w := s.do(http.MethodPost, "/auth/login", "", dto.CredentialsRequest{Username: username, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var session dto.SessionResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.Token
}

func (s *testServer) register(username string) string {
	s.t.Helper()

	w := s.do(http.MethodPost, "/auth/register", "", dto.CredentialsRequest{Username: username, Password: "pw-" + username})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(username, "pw-"+username)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAccountRoutes(t *testing.T) {
	t.Run("register, login and profile", func(t *testing.T) {
		// Setup
		s := newTestServer(t)
		token := s.register("alice")

		// Execute
		w := s.do(http.MethodGet, "/me", token, nil)

		// Assertions
		require.Equal(t, http.StatusOK, w.Code)
		profile := decode[dto.UserResponse](t, w)
		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, "100.00", profile.Balance)
		assert.Equal(t, "buyer", profile.Role)
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newTestServer(t)
		s.register("alice")

		w := s.do(http.MethodPost, "/auth/register", "", dto.CredentialsRequest{Username: "alice", Password: "other"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, errs.CodeUsernameTaken, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodPost, "/auth/login", "", dto.CredentialsRequest{Username: "admin", Password: "nope"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decode[dto.ErrorResponse](t, w).Message)
	})

	t.Run("missing or bad token", func(t *testing.T) {
		s := newTestServer(t)

		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/me", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/me", "not-a-token", nil).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t)

		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "admin"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errs.CodeInvalidInput, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("admin dashboard", func(t *testing.T) {
		s := newTestServer(t)
		s.register("alice")
		token := s.login(storetest.AdminName, "admin123")

		w := s.do(http.MethodGet, "/me/dashboard", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		view := decode[dto.DashboardResponse](t, w)
		assert.Len(t, view.Users, 2)
		assert.Len(t, view.Catalog, 1)
		assert.Empty(t, view.OwnItems)
	})
}

func TestPurchaseRoutes(t *testing.T) {
	t.Run("alice buys two fidget toys", func(t *testing.T) {
		// Setup
		s := newTestServer(t)
		token := s.register("alice")

		// Execute
		w := s.do(http.MethodPost, "/purchases", token, dto.PurchaseRequest{ItemID: 1, Quantity: 2})

		// Assertions
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		receipt := decode[dto.ReceiptResponse](t, w)
		assert.Equal(t, "50.00", receipt.Total)
		assert.Equal(t, "50.00", receipt.Balance)
		assert.True(t, receipt.SellerCredited)

		item := decode[dto.ItemResponse](t, s.do(http.MethodGet, "/items/1", "", nil))
		assert.Equal(t, 98, item.Stock)
	})

	t.Run("omitted quantity buys one", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register("alice")

		w := s.do(http.MethodPost, "/purchases", token, map[string]any{"itemId": 1})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		receipt := decode[dto.ReceiptResponse](t, w)
		assert.Equal(t, 1, receipt.Quantity)
		assert.Equal(t, "25.00", receipt.Total)
	})

	t.Run("explicit zero quantity is rejected", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register("alice")

		w := s.do(http.MethodPost, "/purchases", token, map[string]any{"itemId": 1, "quantity": 0})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errs.CodeInvalidInput, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register("alice")

		w := s.do(http.MethodPost, "/purchases", token, dto.PurchaseRequest{ItemID: 1, Quantity: 5})

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		assert.Equal(t, errs.CodeInsufficientFunds, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("unknown item", func(t *testing.T) {
		s := newTestServer(t)
		token := s.register("alice")

		w := s.do(http.MethodPost, "/purchases", token, dto.PurchaseRequest{ItemID: 42, Quantity: 1})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, errs.CodeItemNotFound, decode[dto.ErrorResponse](t, w).Code)
	})
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	t.Run("list and view", func(t *testing.T) {
		items := decode[[]dto.ItemResponse](t, s.do(http.MethodGet, "/items", "", nil))
		require.Len(t, items, 1)
		assert.Equal(t, "Fidget Toy", items[0].Name)
		assert.Equal(t, "25.00", items[0].Price)
		assert.Equal(t, "/images/default_item.jpg", items[0].ImageURL)

		image := s.do(http.MethodGet, items[0].ImageURL, "", nil)
		assert.Equal(t, http.StatusOK, image.Code)

		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/items/abc", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/items/999", "", nil).Code)
	})

	t.Run("buyers cannot list items", func(t *testing.T) {
		token := s.register("bob")

		w := s.multipart(http.MethodPost, "/items", token, map[string]string{"name": "Lamp", "price": "10.00", "stock": "1"}, "", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("seller creates, edits and deletes an item", func(t *testing.T) {
		// Setup
		s.fx.AddUser("sam", entity.Seller(), 0)
		token := s.login("sam", "secret")

		// Execute
		w := s.multipart(http.MethodPost, "/items", token,
			map[string]string{"name": "Lamp", "price": "10.00", "description": "Bright", "stock": "3"},
			"lamp.png", []byte("png-bytes"))

		// Assertions
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decode[dto.ItemResponse](t, w)
		assert.Equal(t, "sam", created.Seller)
		assert.True(t, strings.HasSuffix(created.Image, "_lamp.png"))

		img := s.do(http.MethodGet, created.ImageURL, "", nil)
		assert.Equal(t, http.StatusOK, img.Code)
		assert.Equal(t, "png-bytes", img.Body.String())

		path := fmt.Sprintf("/items/%d", created.ID)
		w = s.multipart(http.MethodPut, path, token, map[string]string{"name": "Lamp XL", "price": "12.50", "stock": "2"}, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "12.50", decode[dto.ItemResponse](t, w).Price)

		bySeller := decode[[]dto.ItemResponse](t, s.do(http.MethodGet, "/sellers/sam/items", "", nil))
		assert.Len(t, bySeller, 1)

		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, created.ImageURL, "", nil).Code)
	})

	t.Run("bad file type", func(t *testing.T) {
		token := s.login("sam", "secret")

		w := s.multipart(http.MethodPost, "/items", token, map[string]string{"name": "Doc", "price": "1.00"}, "notes.pdf", []byte("%PDF"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid file type", decode[dto.ErrorResponse](t, w).Message)
	})
}

func TestSellerWorkflowRoutes(t *testing.T) {
	// Setup
	s := newTestServer(t)
	alice := s.register("alice")
	adminToken := s.login(storetest.AdminName, "admin123")

	// Execute
	w := s.do(http.MethodPost, "/seller-requests", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decode[dto.NotificationResponse](t, w)

	dup := s.do(http.MethodPost, "/seller-requests", alice, nil)

	listed := decode[[]dto.NotificationResponse](t, s.do(http.MethodGet, "/admin/notifications", adminToken, nil))
	processed := s.do(http.MethodPost, "/admin/notifications/"+request.ID, adminToken, dto.DecisionRequest{Decision: "approve"})
	again := s.do(http.MethodPost, "/admin/notifications/"+request.ID, adminToken, dto.DecisionRequest{Decision: "reject"})

	// Assertions
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, errs.CodeDuplicateRequest, decode[dto.ErrorResponse](t, dup).Code)
	require.Len(t, listed, 1)
	assert.Equal(t, "pending", listed[0].Status)

	require.Equal(t, http.StatusOK, processed.Code)
	assert.Equal(t, "approved", decode[dto.NotificationResponse](t, processed).Status)
	assert.Equal(t, "approved", decode[dto.NotificationResponse](t, again).Status)

	mailbox := decode[dto.MailboxResponse](t, s.do(http.MethodGet, "/me/notifications", alice, nil))
	require.Len(t, mailbox.Entries, 1)
	assert.Equal(t, workflow.ApprovedMessage, mailbox.Entries[0].Message)
	assert.Equal(t, 1, mailbox.Unread)

	profile := decode[dto.UserResponse](t, s.do(http.MethodGet, "/me", alice, nil))
	assert.Equal(t, "seller", profile.Role)
	assert.Equal(t, 0, profile.Unread)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/admin/notifications", alice, nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		s.do(http.MethodPost, "/admin/notifications/"+request.ID, adminToken, dto.DecisionRequest{Decision: "maybe"}).Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	adminToken := s.login(storetest.AdminName, "admin123")

	t.Run("non admins are forbidden", func(t *testing.T) {
		w := s.do(http.MethodGet, "/admin/users", alice, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, errs.CodeForbidden, decode[dto.ErrorResponse](t, w).Code)
	})

	t.Run("add funds", func(t *testing.T) {
		w := s.do(http.MethodPost, "/admin/users/alice/funds", adminToken, dto.FundsRequest{Amount: "15.50"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		user := decode[dto.UserResponse](t, w)
		assert.Equal(t, "115.50", user.Balance)
		require.Len(t, user.History, 1)
		assert.Equal(t, "deposit", user.History[0].Kind)

		bad := s.do(http.MethodPost, "/admin/users/alice/funds", adminToken, dto.FundsRequest{Amount: "-1"})
		assert.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("promote", func(t *testing.T) {
		w := s.do(http.MethodPost, "/admin/promotions", adminToken, dto.PromoteRequest{Username: "alice", Role: "admin", Level: 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		user := decode[dto.UserResponse](t, w)
		assert.Equal(t, "admin", user.Role)
		assert.Equal(t, 2, user.AdminLevel)

		tooHigh := s.do(http.MethodPost, "/admin/promotions", adminToken, dto.PromoteRequest{Username: "alice", Role: "admin", Level: 3})
		assert.Equal(t, http.StatusForbidden, tooHigh.Code)

		badRole := s.do(http.MethodPost, "/admin/promotions", adminToken, dto.PromoteRequest{Username: "alice", Role: "wizard"})
		assert.Equal(t, http.StatusBadRequest, badRole.Code)
	})

	t.Run("list and delete users", func(t *testing.T) {
		users := decode[[]dto.UserResponse](t, s.do(http.MethodGet, "/admin/users", adminToken, nil))
		assert.Len(t, users, 2)

		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/admin/users/alice", adminToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/admin/users/alice", adminToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/admin/users/admin", adminToken, nil).Code)
	})

	t.Run("repair", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/admin/store/orders/repair", adminToken, nil).Code)
		assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/admin/store/users/repair", adminToken, nil).Code)
	})
}

func TestMiddlewares(t *testing.T) {
	s := newTestServer(t)

	t.Run("request id is generated and echoed", func(t *testing.T) {
		w := s.do(http.MethodGet, "/health", "", nil)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/purchases", nil)
		req.Header.Set("Origin", "http://shop.test")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://shop.test", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func (s *testServer) multipart(method, path, token string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(s.t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(s.t, err)
		_, err = part.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
