package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finanzas/internal/handlers"
	"finanzas/internal/logger"
	"finanzas/internal/testutil"
	"finanzas/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	return &testApp{DB: db, Router: handlers.NewRouter(handlers.NewHandlers(db))}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus fails the test unless rec carries the wanted status, then parses the body.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]interface{} {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		return nil
	}
	return parseJSON(t, rec)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(result map[string]interface{}) string {
	errObj, _ := result["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}

// assertAmount compares a decimal rendered as a JSON string.
func assertAmount(t *testing.T, field string, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("%s: expected decimal string, got %T (%v)", field, got, got)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("%s: %q is not a decimal: %v", field, s, err)
	}
	if !d.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, s)
	}
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, weeklyIncome string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","first_name":"Test","last_name":"User","weekly_income":%q}`,
		email, weeklyIncome)
	result := mustStatus(t, app.request("POST", "/api/v1/auth/register", body, ""), http.StatusCreated)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	result := mustStatus(t, app.request("POST", "/api/v1/auth/login", body, ""), http.StatusOK)
	return result["token"].(string)
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, description, accountType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"description":%q,"type":%q}`, description, accountType)
	result := mustStatus(t, app.request("POST", "/api/v1/accounts", body, token), http.StatusCreated)
	return result["account"].(map[string]interface{})["id"].(string)
}

// registerMovement posts a general-ledger movement and returns its ID.
func (app *testApp) registerMovement(t *testing.T, token, accountID, kind, amount, concept string) string {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"kind":%q,"amount":%q,"concept":%q}`, accountID, kind, amount, concept)
	result := mustStatus(t, app.request("POST", "/api/v1/movements", body, token), http.StatusCreated)
	return result["movement"].(map[string]interface{})["id"].(string)
}

// createReserve creates a reserve and returns its ID.
func (app *testApp) createReserve(t *testing.T, token, concept, kind, weekly, goal string) string {
	t.Helper()
	body := fmt.Sprintf(`{"concept":%q,"kind":%q,"weekly_amount":%q,"goal_amount":%q}`, concept, kind, weekly, goal)
	result := mustStatus(t, app.request("POST", "/api/v1/reserves", body, token), http.StatusCreated)
	return result["reserve"].(map[string]interface{})["id"].(string)
}

// accountBalance reads an account's derived balance.
func (app *testApp) accountBalance(t *testing.T, token, accountID string) interface{} {
	t.Helper()
	result := mustStatus(t, app.request("GET", "/api/v1/accounts/"+accountID, "", token), http.StatusOK)
	return result["account"].(map[string]interface{})["balance"]
}
