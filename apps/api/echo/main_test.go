package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/trezcool/thinkwise/apps/api/echo"
	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/user"
	"github.com/trezcool/thinkwise/services/logger"
	"github.com/trezcool/thinkwise/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func setup(t *testing.T) (Server, testutil.Services) {
	svcs := testutil.NewServices(t)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)

	app := NewServer(
		&Options{
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
		},
	)
	return app, svcs
}

// staffToken returns the token of a new active staff user.
func staffToken(t *testing.T, svcs testutil.Services, uname string, isAdmin bool) string {
	usr := testutil.CreateUser(t, svcs.Users, "Staff "+uname, uname, uname+"@thinkwise.it", "", isAdmin, true)
	return getToken(t, usr)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (tt httpTest) run(t *testing.T, app Server) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the body only when the test expects one.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) httpErr {
	var herr httpErr
	if err := json.Unmarshal(rec.Body.Bytes(), &herr); err != nil {
		t.Fatalf("decodeErr() failed: %v", err)
	}
	return herr
}
