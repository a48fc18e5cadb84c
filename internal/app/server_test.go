// File: internal/app/server_test.go
package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic_backend/internal/appointment"
	"clinic_backend/internal/auth"
	"clinic_backend/internal/config"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/filestorage"
	"clinic_backend/internal/jobs"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&notification.Notification{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		GinMode:                     "test",
		ServerHost:                  "127.0.0.1",
		ServerPort:                  "0",
		ServerTimeout:               10 * time.Second,
		JWTSecretKey:                "test-secret-key-for-integration",
		JWTAccessTokenExpiryMinutes: time.Hour,
		UploadStoragePath:           t.TempDir(),
	}
	logger := zap.NewNop()

	tokenService := auth.NewJWTService(cfg, logger)
	blocklist := auth.NewInMemoryBlocklistService(logger)
	authHandler := auth.NewHandler(blocklist, logger)

	userService := user.NewService(user.NewGORMRepository(db), tokenService, logger)
	userHandler := user.NewHandler(userService, logger)

	notificationService := notification.NewService(notification.NewGORMRepository(db), logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	doctorService := doctor.NewService(doctor.NewGORMRepository(db), userService, notificationService, logger)
	doctorHandler := doctor.NewHandler(doctorService, logger)

	files, err := filestorage.NewLocalService(cfg, logger)
	require.NoError(t, err)
	appointmentService := appointment.NewService(
		appointment.NewGORMRepository(db), doctorService, userService, notificationService, files, logger)
	appointmentHandler := appointment.NewHandler(appointmentService, logger)

	retentionJob := jobs.NewNotificationRetentionJob(notificationService, cfg, logger)

	server := NewServer(cfg, logger, tokenService, blocklist, userService,
		userHandler, authHandler, doctorHandler, appointmentHandler, notificationHandler, retentionJob)
	return server.httpServer.Handler
}

type apiResult struct {
	status int
	body   map[string]interface{}
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, payload interface{}) apiResult {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	parsed := make(map[string]interface{})
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed),
			"response was not JSON: %s", rec.Body.String())
	}
	return apiResult{status: rec.Code, body: parsed}
}

func registerAndLogin(t *testing.T, handler http.Handler, email, accountType string) string {
	t.Helper()

	res := doJSON(t, handler, http.MethodPost, "/api/user/register", "", map[string]interface{}{
		"fullName": "integration tester",
		"email":    email,
		"password": "supersecret1",
		"type":     accountType,
	})
	require.Equal(t, http.StatusCreated, res.status, "register failed: %v", res.body)

	res = doJSON(t, handler, http.MethodPost, "/api/user/login", "", map[string]interface{}{
		"email":    email,
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusOK, res.status, "login failed: %v", res.body)
	data := res.body["data"].(map[string]interface{})
	return data["token"].(string)
}

func dataOf(t *testing.T, res apiResult) map[string]interface{} {
	t.Helper()
	data, ok := res.body["data"].(map[string]interface{})
	require.True(t, ok, "no data object in response: %v", res.body)
	return data
}

func TestFullWorkflow(t *testing.T) {
	handler := newTestServer(t)

	adminToken := registerAndLogin(t, handler, "admin@clinic.test", "admin")
	patientToken := registerAndLogin(t, handler, "patient@clinic.test", "")
	applicantToken := registerAndLogin(t, handler, "applicant@clinic.test", "")

	// A second admin registration is rejected.
	res := doJSON(t, handler, http.MethodPost, "/api/user/register", "", map[string]interface{}{
		"fullName": "late admin",
		"email":    "admin2@clinic.test",
		"password": "supersecret1",
		"type":     "admin",
	})
	assert.Equal(t, http.StatusConflict, res.status)

	// Doctor routes are closed before approval.
	res = doJSON(t, handler, http.MethodGet, "/api/doctor/appointments", applicantToken, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	// The admin cannot file a credential application.
	res = doJSON(t, handler, http.MethodPost, "/api/user/applyDoctor", adminToken, map[string]interface{}{
		"fullName":       "sneaky admin",
		"email":          "sneaky@clinic.test",
		"phone":          "555-0100",
		"specialization": "Administration",
		"fees":           1,
		"timings":        map[string]string{"start": "09:00", "end": "17:00"},
	})
	assert.Equal(t, http.StatusForbidden, res.status)

	// Apply for a doctor account.
	res = doJSON(t, handler, http.MethodPost, "/api/user/applyDoctor", applicantToken, map[string]interface{}{
		"fullName":       "allison cameron",
		"email":          "applicant@clinic.test",
		"phone":          "555-0110",
		"specialization": "Immunology",
		"fees":           140,
		"timings":        map[string]string{"start": "09:00", "end": "17:00"},
	})
	require.Equal(t, http.StatusCreated, res.status, "apply failed: %v", res.body)
	doctorID := dataOf(t, res)["id"].(string)
	assert.Equal(t, "pending", dataOf(t, res)["status"])

	// Patients cannot book a pending doctor.
	assert.Equal(t, http.StatusBadRequest, bookPlain(t, handler, patientToken, doctorID))

	// The admin sees and approves the application. Non-admins cannot.
	res = doJSON(t, handler, http.MethodGet, "/api/admin/doctors", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = doJSON(t, handler, http.MethodPost, "/api/admin/reviewDoctor", adminToken, map[string]interface{}{
		"doctorId": doctorID,
		"status":   "approved",
	})
	require.Equal(t, http.StatusOK, res.status, "review failed: %v", res.body)

	// A second review of the same application conflicts.
	res = doJSON(t, handler, http.MethodPost, "/api/admin/reviewDoctor", adminToken, map[string]interface{}{
		"doctorId": doctorID,
		"status":   "rejected",
	})
	assert.Equal(t, http.StatusConflict, res.status)

	// The same token now opens the doctor routes: IsDoctor is read live.
	res = doJSON(t, handler, http.MethodGet, "/api/doctor/appointments", applicantToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	// The approved doctor appears in the bookable list.
	res = doJSON(t, handler, http.MethodGet, "/api/user/approveddoctors", patientToken, nil)
	require.Equal(t, http.StatusOK, res.status)

	// The patient books with a supporting document.
	appointmentID := bookWithDocument(t, handler, patientToken, doctorID)

	// The doctor sees the booking, downloads the document and approves.
	downloadReq := httptest.NewRequest(http.MethodGet,
		"/api/doctor/downloadDocument?appointId="+appointmentID, nil)
	downloadReq.Header.Set("Authorization", "Bearer "+applicantToken)
	downloadRec := httptest.NewRecorder()
	handler.ServeHTTP(downloadRec, downloadReq)
	assert.Equal(t, http.StatusOK, downloadRec.Code)
	assert.Contains(t, downloadRec.Header().Get("Content-Disposition"), "referral.pdf")
	assert.Equal(t, "%PDF-1.4 integration", downloadRec.Body.String())

	res = doJSON(t, handler, http.MethodPost, "/api/doctor/reviewAppointment", applicantToken, map[string]interface{}{
		"appointmentId": appointmentID,
		"status":        "approved",
	})
	require.Equal(t, http.StatusOK, res.status, "appointment review failed: %v", res.body)

	// The patient was notified; mark read then clear.
	res = doJSON(t, handler, http.MethodGet, "/api/user/notifications", patientToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	unseen := dataOf(t, res)["notifications"].([]interface{})
	require.Len(t, unseen, 1)

	res = doJSON(t, handler, http.MethodPost, "/api/user/notifications/markRead", patientToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	res = doJSON(t, handler, http.MethodGet, "/api/user/notifications", patientToken, nil)
	assert.Empty(t, dataOf(t, res)["notifications"])
	assert.Len(t, dataOf(t, res)["seennotifications"], 1)

	res = doJSON(t, handler, http.MethodPost, "/api/user/notifications/clear", patientToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	// Admin dashboard projections.
	res = doJSON(t, handler, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.status)
	res = doJSON(t, handler, http.MethodGet, "/api/admin/appointments", adminToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	// Logout revokes the token.
	res = doJSON(t, handler, http.MethodPost, "/api/user/logout", patientToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	res = doJSON(t, handler, http.MethodGet, "/api/user/auth", patientToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

// bookPlain submits a booking form without a document and returns the
// response status.
func bookPlain(t *testing.T, handler http.Handler, token, doctorID string) int {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("doctorId", doctorID))
	require.NoError(t, writer.WriteField("date", "2026-09-20"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user/bookAppointment", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func bookWithDocument(t *testing.T, handler http.Handler, token, doctorID string) string {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("doctorId", doctorID))
	require.NoError(t, writer.WriteField("date", "2026-09-20T10:00"))
	part, err := writer.CreateFormFile("document", "referral.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 integration"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user/bookAppointment", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "booking failed: %s", rec.Body.String())

	parsed := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	data := parsed["data"].(map[string]interface{})
	require.NotNil(t, data["document"], "document reference missing")
	return fmt.Sprintf("%v", data["id"])
}

func TestAuthRequired(t *testing.T) {
	handler := newTestServer(t)

	res := doJSON(t, handler, http.MethodGet, "/api/user/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = doJSON(t, handler, http.MethodGet, "/api/admin/users", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}
