package echoapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/testutil"
)

func TestPaymentAPI(t *testing.T) {
	app, svcs := setup(t)
	token := staffToken(t, svcs, "staff", false)
	alan := testutil.CreateStudent(
		t, svcs.Students, "Alan", "Rossi", "alan@example.com",
		[]school.Specialization{school.Backend}, mondayMornings,
		school.NewDate(2025, time.March, 10),
	)

	body := func(month string) []byte {
		return []byte(fmt.Sprintf(
			`{"studenteId":%d,"importo":120,"mensilitaSaldata":%q,"metodoPagamento":"contanti","dataPagamento":"2025-04-02"}`,
			alan.ID, month,
		))
	}

	tests := []httpTest{
		{
			name:     "empty payload",
			method:   http.MethodPost,
			path:     "/api/pagamenti",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"studenteId":"this field is required",
				"importo":"this field is required",
				"metodoPagamento":"this field is required"
			}`),
		},
		{name: "invalid month", method: http.MethodPost, path: "/api/pagamenti", body: body("Smarch 2025"), wantCode: http.StatusBadRequest},
		{
			name:     "month before enrollment",
			method:   http.MethodPost,
			path:     "/api/pagamenti",
			body:     body("Febbraio 2025"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"mensilitaSaldata":"Non è possibile pagare un mese precedente alla data di iscrizione"}`),
		},
		{name: "ok", method: http.MethodPost, path: "/api/pagamenti", body: body("Marzo 2025"), wantCode: http.StatusCreated},
		{name: "unknown payment", path: "/api/pagamenti/999", wantCode: http.StatusNotFound, wantData: []byte(`{"error":"payment not found"}`)},
	}
	for _, tt := range tests {
		tt.token = token
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}

	rec := httpTest{path: fmt.Sprintf("/api/studenti/%d/pagamenti", alan.ID), token: token, wantCode: http.StatusOK}.run(t, app)
	var payments []struct {
		ID            int     `json:"id"`
		Amount        float64 `json:"importo"`
		ReceiptNumber string  `json:"numeroRicevuta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, 120.0, payments[0].Amount)
	assert.Regexp(t, `^REC-`, payments[0].ReceiptNumber)

	httpTest{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/pagamenti/%d", payments[0].ID),
		token:    token,
		wantCode: http.StatusNoContent,
	}.run(t, app)
}

func TestReportAPI(t *testing.T) {
	app, svcs := setup(t)
	token := staffToken(t, svcs, "staff", false)
	testutil.CreateTeacher(t, svcs.Teachers, "Ada", "Lovelace", []school.Specialization{school.Backend}, mondayMornings)
	testutil.CreateRoom(t, svcs.Rooms, "Aula Hopper", 10)

	tests := []httpTest{
		{
			name:     "stats",
			path:     "/api/dashboard/stats",
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"totaleStudenti":0,
				"studentiAttivi":0,
				"totaleInsegnanti":1,
				"corsiAttivi":0,
				"corsiDisattivati":0,
				"totaleAule":1
			}`),
		},
		{name: "alerts", path: "/api/dashboard/avvisi", wantCode: http.StatusOK},
		{name: "monthly payments", path: "/api/dashboard/pagamenti-mensili?anno=2025", wantCode: http.StatusOK},
		{name: "bad year", path: "/api/dashboard/pagamenti-mensili?anno=abc", wantCode: http.StatusBadRequest},
		{name: "income and expenses", path: "/api/dashboard/entrate-uscite?anno=2025", wantCode: http.StatusOK},
		{name: "expenses by category", path: "/api/dashboard/spese-generali?anno=2025", wantCode: http.StatusOK},
		{name: "teacher hours", path: "/api/dashboard/ore-insegnate?anno=2025&mese=1", wantCode: http.StatusOK},
		{name: "monthly report", path: "/api/report/mensile?anno=2025&mese=3", wantCode: http.StatusOK},
		{name: "invalid month", path: "/api/report/mensile?anno=2025&mese=13", wantCode: http.StatusBadRequest},
		{name: "yearly report", path: "/api/report/annuale/2025", wantCode: http.StatusOK},
		{
			name:     "teacher report needs a teacher",
			path:     "/api/report/insegnante?anno=2025",
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"insegnanteId":"this field is required"}`),
		},
	}
	for _, tt := range tests {
		tt.token = token
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}
}
