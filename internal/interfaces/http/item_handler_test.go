package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-audit-api/internal/application/auth"
	"github.com/jhoicas/inventario-audit-api/internal/application/dto"
	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
	"github.com/jhoicas/inventario-audit-api/internal/domain/policy"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-audit-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-audit-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memory.NewStore()
	itemRepo := memory.NewInventoryItemRepository(s)
	logRepo := memory.NewChangeLogRepository(s)
	runner := memory.NewTxRunner(s)
	locker := lock.NewLocalLocker()
	access := policy.OwnerPolicy{}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(memory.NewUserRepository(s), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}).WithBcryptCost(bcrypt.MinCost),
		ItemUC:      inventory.NewItemUseCase(itemRepo, runner, locker, access, nil),
		UpdateItem:  inventory.NewUpdateItemUseCase(runner, locker, access, nil, nil, inventory.UpdateConfig{MaxRetries: 3}),
		ChangeLogUC: inventory.NewChangeLogUseCase(itemRepo, logRepo, access, pdf.NewMarotoChangeLogPDFGenerator()),
		JWTSecret:   testJWTSecret,
	})
	return &apiFixture{app: app, store: s}
}

// login registra al usuario y devuelve el header Authorization.
func (f *apiFixture) login(t *testing.T, username string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username, "email": username + "@example.com", "password": "secreta123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username, "password": "secreta123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return "Bearer " + out.Token
}

func (f *apiFixture) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (f *apiFixture) createItem(t *testing.T, authHeader, name string, qty int) dto.ItemResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/items", authHeader, map[string]any{
		"name": name, "quantity": qty, "price": "10.00", "category": "herramientas",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item dto.ItemResponse
	decode(t, resp, &item)
	return item
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestItems_FlujoCompletoConHistorial(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	item := f.createItem(t, ana, "Taladro", 10)

	resp := f.do(t, http.MethodPatch, "/api/items/"+item.ID, ana, map[string]any{"quantity": 15})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = f.do(t, http.MethodPatch, "/api/items/"+item.ID, ana, map[string]any{"quantity": 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.ItemResponse
	decode(t, resp, &updated)
	assert.Equal(t, int64(7), updated.Quantity)

	resp = f.do(t, http.MethodGet, "/api/items/"+item.ID+"/changelog", ana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []dto.ChangeLogResponse
	decode(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].QuantityChanged)
	assert.Equal(t, int64(-8), entries[1].QuantityChanged)
	assert.Equal(t, item.Owner, entries[0].ChangedBy)

	resp = f.do(t, http.MethodGet, "/api/items/"+item.ID+"/changelog/verify", ana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v dto.HistoryVerificationResponse
	decode(t, resp, &v)
	assert.True(t, v.Consistent)
	assert.Equal(t, int64(10), v.InitialQuantity)

	resp = f.do(t, http.MethodGet, "/api/changelogs/"+entries[1].ID, ana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/changelogs?limit=1", ana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dto.ChangeLogListResponse
	decode(t, resp, &page)
	assert.Len(t, page.Items, 1)
}

func TestItems_NoDuenoRecibe403(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	beto := f.login(t, "beto")
	item := f.createItem(t, ana, "Taladro", 10)

	resp := f.do(t, http.MethodPatch, "/api/items/"+item.ID, beto, map[string]any{"quantity": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// la lectura sí está permitida
	get := f.do(t, http.MethodGet, "/api/items/"+item.ID, beto, nil)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	assert.Empty(t, f.store.Snapshot().ChangeLogs)
}

func TestItems_ValidacionIndicaCampo(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	item := f.createItem(t, ana, "Taladro", 10)

	resp := f.do(t, http.MethodPatch, "/api/items/"+item.ID, ana, map[string]any{"quantity": -3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "quantity", errBody.Field)

	resp = f.do(t, http.MethodPut, "/api/items/"+item.ID, ana, map[string]any{"name": "Taladro", "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &errBody)
	assert.Equal(t, "price", errBody.Field)

	resp = f.do(t, http.MethodPatch, "/api/items/"+item.ID, ana, []int{1, 2})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItems_InexistenteRecibe404(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")

	resp := f.do(t, http.MethodPatch, "/api/items/no-existe", ana, map[string]any{"quantity": 1})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItems_ListarYEliminar(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	a := f.createItem(t, ana, "Taladro", 10)
	f.createItem(t, ana, "Alicate", 2)

	resp := f.do(t, http.MethodGet, "/api/items?ordering=-quantity", ana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ItemListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Taladro", list.Items[0].Name)

	resp = f.do(t, http.MethodDelete, "/api/items/"+a.ID, ana, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/items/"+a.ID, ana, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItems_ExportarPDF(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	item := f.createItem(t, ana, "Taladro", 10)

	resp := f.do(t, http.MethodGet, "/api/items/"+item.ID+"/changelog.pdf", ana, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAuth_RegistroDuplicadoYLoginFallido(t *testing.T) {
	f := newAPI(t)
	f.login(t, "ana")

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "ana", "password": "secreta123"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "ana", "password": "incorrecta"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/items", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsers_DetalleSoloLectura(t *testing.T) {
	f := newAPI(t)
	ana := f.login(t, "ana")
	beto := f.login(t, "beto")
	item := f.createItem(t, ana, "Sierra", 3)

	resp := f.do(t, http.MethodGet, "/api/users/"+item.Owner, beto, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user dto.UserResponse
	decode(t, resp, &user)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, item.Owner, user.ID)

	resp = f.do(t, http.MethodGet, "/api/users/no-existe", beto, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/users/"+item.Owner, "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
