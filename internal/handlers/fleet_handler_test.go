package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/memory"
	"fleetdesk/internal/services"
	"fleetdesk/internal/utils"
	"fleetdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type handlerFixture struct {
	companyRepo    *memory.CompanyStore
	driverRepo     *memory.DriverStore
	vehicleRepo    *memory.VehicleStore
	subscriberRepo *memory.SubscriberStore
	planRepo       *memory.PlanStore
	router         *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	require.NoError(t, err)

	f := &handlerFixture{
		companyRepo:    memory.NewCompanyStore(),
		driverRepo:     memory.NewDriverStore(),
		vehicleRepo:    memory.NewVehicleStore(),
		subscriberRepo: memory.NewSubscriberStore(),
		planRepo:       memory.NewPlanStore(),
	}

	entitlement := services.NewEntitlementService(
		f.companyRepo, f.subscriberRepo, f.planRepo, f.driverRepo, f.vehicleRepo, log,
	)
	fleet := services.NewFleetService(f.companyRepo, f.driverRepo, f.vehicleRepo, entitlement, log)
	handler := NewFleetHandler(fleet, f.driverRepo, f.vehicleRepo)

	f.router = gin.New()
	f.router.POST("/drivers", handler.CreateDriver)
	f.router.GET("/drivers/:id", handler.GetDriver)
	f.router.POST("/vehicles", handler.CreateVehicle)

	return f
}

func (f *handlerFixture) seedCompany(t *testing.T, maxDrivers int) *models.Company {
	t.Helper()

	company := &models.Company{
		TransporterID: primitive.NewObjectID(),
		Name:          "Acme Transport",
		ContactEmail:  "ops@acme.test",
	}
	require.NoError(t, f.companyRepo.Create(context.Background(), company))

	plan := &models.Plan{Name: "test", MaxDrivers: maxDrivers, MaxVehicles: maxDrivers}
	require.NoError(t, f.planRepo.Create(context.Background(), plan))
	require.NoError(t, f.subscriberRepo.Create(context.Background(), &models.Subscriber{
		UserID:    company.TransporterID,
		PlanID:    plan.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
		IsActive:  true,
	}))

	return company
}

func (f *handlerFixture) post(t *testing.T, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateDriverReturns201(t *testing.T) {
	f := newHandlerFixture(t)
	company := f.seedCompany(t, 5)

	w := f.post(t, "/drivers", map[string]interface{}{
		"company_id": company.ID.Hex(),
		"name":       "Jo Driver",
		"email":      "jo@acme.test",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, utils.StatusSuccess, response.Status)
}

func TestCreateDriverReturns403WithDecisionAtLimit(t *testing.T) {
	f := newHandlerFixture(t)
	company := f.seedCompany(t, 1)
	require.NoError(t, f.driverRepo.Create(context.Background(), &models.Driver{
		CompanyID: company.ID,
		Name:      "Existing",
		Email:     "existing@acme.test",
	}))

	w := f.post(t, "/drivers", map[string]interface{}{
		"company_id": company.ID.Hex(),
		"name":       "One Too Many",
		"email":      "extra@acme.test",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, utils.StatusError, response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "ENTITLEMENT_DENIED", response.Error.Code)
	assert.Equal(t, utils.ReasonDriverLimitReached, response.Error.Message)

	// The decision payload lets the UI render current usage vs the limit.
	decision, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decision["current_count"])
	assert.Equal(t, float64(1), decision["max_allowed"])
}

func TestCreateVehicleReturns403WithoutSubscription(t *testing.T) {
	f := newHandlerFixture(t)

	company := &models.Company{
		TransporterID: primitive.NewObjectID(),
		Name:          "No Plan Ltd",
		ContactEmail:  "ops@noplan.test",
	}
	require.NoError(t, f.companyRepo.Create(context.Background(), company))

	w := f.post(t, "/vehicles", map[string]interface{}{
		"company_id":   company.ID.Hex(),
		"registration": "KAA 123X",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Error)
	assert.Equal(t, utils.ReasonNoActiveSubscription, response.Error.Message)
}

func TestGetDriverNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/drivers/%s", primitive.NewObjectID().Hex()), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDriverBadID(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/drivers/not-an-id", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
