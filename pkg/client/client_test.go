package client_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/thinkwise/apps/api/echo"
	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/pkg/client"
	logsvc "github.com/trezcool/thinkwise/services/logger"
	"github.com/trezcool/thinkwise/testutil"
)

var mondays = testutil.Availability{
	Days:  []school.Day{school.Monday},
	Slots: []school.TimeSlot{school.Slot1000},
}

func newTestServer(t *testing.T) (*httptest.Server, testutil.Services) {
	svcs := testutil.NewServices(t)
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)

	app := echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Logger:         logger,
		CourseSvc:      svcs.Course,
		TeacherSvc:     svcs.Teacher,
		StudentSvc:     svcs.Student,
		RoomSvc:        svcs.Room,
		PaymentSvc:     svcs.Payment,
		ExpenseSvc:     svcs.Expense,
		ReportSvc:      svcs.Report,
		UserSvc:        svcs.User,
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return srv, svcs
}

func TestClient_Login(t *testing.T) {
	srv, svcs := newTestServer(t)
	testutil.CreateUser(t, svcs.Users, "Segreteria", "segreteria", "segreteria@thinkwise.it", "s3cr3t-pass", false, true)
	ctx := context.Background()

	c := client.NewClient(srv.URL + "/")
	_, err := c.Waitlist(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "got %v", err)

	err = c.Login(ctx, "segreteria", "wrong-pass")
	require.Error(t, err)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "authentication failed", apiErr.Message)

	err = c.Login(ctx, "segreteria", "")
	require.Error(t, err)
	apiErr, ok = err.(*client.APIError)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"password": "this field is required"}, apiErr.Fields)
	assert.Equal(t, "HTTP 400: password: this field is required", apiErr.Error())

	require.NoError(t, c.Login(ctx, "segreteria", "s3cr3t-pass"))
	waiting, err := c.Waitlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestClient_Enrollment(t *testing.T) {
	srv, svcs := newTestServer(t)
	usr := testutil.CreateUser(t, svcs.Users, "Segreteria", "segreteria", "segreteria@thinkwise.it", "", false, true)
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr))
	require.NoError(t, err)

	frontend := []school.Specialization{school.Frontend}
	ada := testutil.CreateTeacher(t, svcs.Teachers, "Ada", "Lovelace", frontend, mondays)
	alan := testutil.CreateStudent(t, svcs.Students, "Alan", "Rossi", "", frontend, mondays)
	crs := testutil.CreateCourse(t, svcs.Course, course.Payload{
		Name:           "React",
		TeacherID:      ada.ID,
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Frontend,
		Type:           school.Individual,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	})

	ctx := context.Background()
	c := client.NewClient(srv.URL, client.WithToken(token))

	got, err := c.GetCourse(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs.Name, got.Name)
	s, err := c.GetStudent(ctx, alan.ID)
	require.NoError(t, err)
	assert.NoError(t, matcher.ValidateAssignment(got, s))

	_, err = c.GetCourse(ctx, 999)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	got, err = c.AddStudent(ctx, crs.ID, alan.ID)
	require.NoError(t, err)
	require.Len(t, got.Students, 1)

	// an individual course is full with one student
	_, err = c.AddStudent(ctx, crs.ID, alan.ID)
	assert.True(t, client.IsStatus(err, http.StatusConflict))

	require.NoError(t, c.RemoveStudent(ctx, crs.ID, alan.ID))
	assert.True(t, client.IsStatus(c.RemoveStudent(ctx, crs.ID, alan.ID), http.StatusNotFound))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.NewClient(url).GetCourse(context.Background(), 1)
	require.Error(t, err)
	netErr, ok := err.(*client.NetworkError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "GET /api/corsi/1", netErr.Op)
}
