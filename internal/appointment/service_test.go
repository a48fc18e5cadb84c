// File: internal/appointment/service_test.go
package appointment

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"clinic_backend/internal/common"
	"clinic_backend/internal/config"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/filestorage"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/shared"
	"clinic_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubTokenService struct{}

func (stubTokenService) GenerateAccessToken(data shared.UserDataForToken) (string, time.Time, error) {
	return "test-token", time.Now().Add(time.Hour), nil
}

func (stubTokenService) ValidateToken(token string) (*shared.Claims, error) {
	return nil, common.ErrUnauthorized
}

type testEnv struct {
	service       Service
	userService   user.Service
	doctorService doctor.Service
	notifications notification.Service
	admin         *shared.Principal
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &doctor.Doctor{}, &Appointment{}, &notification.Notification{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM notifications")
		db.Exec("DELETE FROM appointments")
		db.Exec("DELETE FROM doctors")
		db.Exec("DELETE FROM users")
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	logger := zap.NewNop()
	userService := user.NewService(user.NewGORMRepository(db), stubTokenService{}, logger)
	notifications := notification.NewService(notification.NewGORMRepository(db), logger)
	doctorService := doctor.NewService(doctor.NewGORMRepository(db), userService, notifications, logger)
	files, err := filestorage.NewLocalService(&config.Config{UploadStoragePath: t.TempDir()}, logger)
	require.NoError(t, err)
	service := NewService(NewGORMRepository(db), doctorService, userService, notifications, files, logger)

	env := &testEnv{
		service:       service,
		userService:   userService,
		doctorService: doctorService,
		notifications: notifications,
	}

	adminAccount, err := userService.Register(context.Background(), user.RegisterRequest{
		FullName: "clinic admin",
		Email:    "root@clinic.test",
		Password: "supersecret1",
		Type:     "admin",
	})
	require.NoError(t, err)
	env.admin, err = userService.PrincipalByID(context.Background(), adminAccount.ID)
	require.NoError(t, err)
	return env
}

func (e *testEnv) registerUser(t *testing.T, email string) *shared.Principal {
	t.Helper()
	created, err := e.userService.Register(context.Background(), user.RegisterRequest{
		FullName: "test person",
		Email:    email,
		Password: "supersecret1",
	})
	require.NoError(t, err)
	principal, err := e.userService.PrincipalByID(context.Background(), created.ID)
	require.NoError(t, err)
	return principal
}

// approvedDoctor registers an account, applies and approves it, returning
// the refreshed principal and the doctor profile id.
func (e *testEnv) approvedDoctor(t *testing.T, email string) (*shared.Principal, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	principal := e.registerUser(t, email)

	applied, err := e.doctorService.Apply(ctx, principal, doctor.ApplyRequest{
		FullName:       "lisa cuddy",
		Email:          email,
		Phone:          "555-0103",
		Specialization: "Endocrinology",
		Fees:           180,
		Timings:        doctor.Timings{Start: "08:00", End: "16:00"},
	})
	require.NoError(t, err)
	_, err = e.doctorService.Review(ctx, e.admin, applied.ID, common.StatusApproved)
	require.NoError(t, err)

	refreshed, err := e.userService.PrincipalByID(ctx, principal.ID)
	require.NoError(t, err)
	return refreshed, applied.ID
}

func (e *testEnv) pendingDoctor(t *testing.T, email string) uuid.UUID {
	t.Helper()
	principal := e.registerUser(t, email)
	applied, err := e.doctorService.Apply(context.Background(), principal, doctor.ApplyRequest{
		FullName:       "chris taub",
		Email:          email,
		Phone:          "555-0104",
		Specialization: "Plastic Surgery",
		Fees:           120,
		Timings:        doctor.Timings{Start: "10:00", End: "18:00"},
	})
	require.NoError(t, err)
	return applied.ID
}

func newUploadContext(t *testing.T, filename, content string) (*gin.Context, *multipart.FileHeader) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	fileHeader, err := c.FormFile("document")
	require.NoError(t, err)
	return c, fileHeader
}

func TestBook_WithApprovedDoctor(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	booked, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15T10:30",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, common.StatusPending, booked.Status)
	assert.Equal(t, doctorID, booked.DoctorID)
	assert.Nil(t, booked.Document)

	inbox, err := env.notifications.Inbox(ctx, doctorPrincipal.ID)
	require.NoError(t, err)
	// Insertion order: the approval notification first, then the booking.
	require.Len(t, inbox.Notifications, 2)
	assert.Equal(t, notification.TypeDoctorAccountStatus, inbox.Notifications[0].Type)
	assert.Equal(t, notification.TypeNewAppointmentRequest, inbox.Notifications[1].Type)
}

func TestBook_WithDocument(t *testing.T) {
	env := setupEnv(t)
	_, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")
	c, fileHeader := newUploadContext(t, "referral.pdf", "%PDF-1.4")

	booked, err := env.service.Book(context.Background(), c, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, fileHeader)
	require.NoError(t, err)
	require.NotNil(t, booked.Document)
	assert.Equal(t, "referral.pdf", booked.Document.Filename)
	assert.Contains(t, booked.Document.Path, "/uploads/")
}

func TestBook_PendingDoctorRejected(t *testing.T) {
	env := setupEnv(t)
	doctorID := env.pendingDoctor(t, "taub@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	_, err := env.service.Book(context.Background(), nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestBook_UnknownDoctor(t *testing.T) {
	env := setupEnv(t)
	patient := env.registerUser(t, "patient@clinic.test")

	_, err := env.service.Book(context.Background(), nil, patient, BookRequest{
		DoctorID: uuid.NewString(),
		Date:     "2026-09-15",
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBook_AdminCannotBook(t *testing.T) {
	env := setupEnv(t)
	_, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")

	_, err := env.service.Book(context.Background(), nil, env.admin, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestBook_InvalidDate(t *testing.T) {
	env := setupEnv(t)
	_, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	_, err := env.service.Book(context.Background(), nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "next tuesday",
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestReview_ApproveNotifiesPatient(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	booked, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.NoError(t, err)

	reviewed, err := env.service.Review(ctx, doctorPrincipal, booked.ID, common.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, common.StatusApproved, reviewed.Status)

	inbox, err := env.notifications.Inbox(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, notification.TypeAppointmentStatusUpdated, inbox.Notifications[0].Type)
	assert.Contains(t, inbox.Notifications[0].Message, "Dr. Lisa cuddy")
	assert.Contains(t, inbox.Notifications[0].Message, "approved")
}

func TestReview_TerminalConflict(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	booked, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.NoError(t, err)

	_, err = env.service.Review(ctx, doctorPrincipal, booked.ID, common.StatusRejected)
	require.NoError(t, err)

	_, err = env.service.Review(ctx, doctorPrincipal, booked.ID, common.StatusApproved)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestReview_OtherDoctorsAppointmentHidden(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	_, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	otherDoctor, _ := env.approvedDoctor(t, "wilson@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	booked, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.NoError(t, err)

	_, err = env.service.Review(ctx, otherDoctor, booked.ID, common.StatusApproved)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReview_NonDoctorForbidden(t *testing.T) {
	env := setupEnv(t)
	patient := env.registerUser(t, "patient@clinic.test")

	_, err := env.service.Review(context.Background(), patient, uuid.New(), common.StatusApproved)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestResolveDocument(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")
	c, fileHeader := newUploadContext(t, "referral.pdf", "%PDF-1.4 body")

	booked, err := env.service.Book(ctx, c, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, fileHeader)
	require.NoError(t, err)

	diskPath, downloadName, err := env.service.ResolveDocument(ctx, doctorPrincipal, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "referral.pdf", downloadName)
	data, err := os.ReadFile(diskPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
}

func TestResolveDocument_NoAttachment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	booked, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.NoError(t, err)

	_, _, err = env.service.ResolveDocument(ctx, doctorPrincipal, booked.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListings_ResolveNames(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	doctorPrincipal, doctorID := env.approvedDoctor(t, "cuddy@clinic.test")
	patient := env.registerUser(t, "patient@clinic.test")

	_, err := env.service.Book(ctx, nil, patient, BookRequest{
		DoctorID: doctorID.String(),
		Date:     "2026-09-15",
	}, nil)
	require.NoError(t, err)

	mine, total, err := env.service.ListForPatient(ctx, patient, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, "Lisa cuddy", mine[0].DoctorName)

	theirs, _, err := env.service.ListForDoctor(ctx, doctorPrincipal, 1, 20)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Test person", theirs[0].UserName)

	all, _, err := env.service.ListAll(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Lisa cuddy", all[0].DoctorName)
	assert.Equal(t, "Test person", all[0].UserName)
}
