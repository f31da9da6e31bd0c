package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/testutil"
)

var mondayMornings = testutil.Availability{
	Days:  []school.Day{school.Monday},
	Slots: []school.TimeSlot{school.Slot1000},
}

func coursePayload(name string, teacherID, roomID int, studentIDs ...int) course.Payload {
	return course.Payload{
		Name:           name,
		TeacherID:      teacherID,
		RoomID:         roomID,
		StudentIDs:     studentIDs,
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Frontend,
		Type:           school.Group,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	}
}

func TestCourseAPI(t *testing.T) {
	app, svcs := setup(t)
	ctx := context.Background()
	token := staffToken(t, svcs, "staff", false)

	frontend := []school.Specialization{school.Frontend}
	ada := testutil.CreateTeacher(t, svcs.Teachers, "Ada", "Lovelace", frontend, mondayMornings)
	busy := testutil.CreateTeacher(t, svcs.Teachers, "Bob", "Busy", frontend, testutil.Availability{
		Days:  []school.Day{school.Friday},
		Slots: []school.TimeSlot{school.Slot1800},
	})
	aula := testutil.CreateRoom(t, svcs.Rooms, "Aula Hopper", 1)
	alan := testutil.CreateStudent(t, svcs.Students, "Alan", "Rossi", "", frontend, mondayMornings)
	grace := testutil.CreateStudent(t, svcs.Students, "Grace", "Bianchi", "", frontend, mondayMornings)

	t.Run("create", func(t *testing.T) {
		tests := []httpTest{
			{
				name:     "empty payload",
				method:   http.MethodPost,
				path:     "/api/corsi",
				body:     []byte(`{}`),
				token:    token,
				wantCode: http.StatusBadRequest,
				wantData: []byte(`{
					"nome":"this field is required",
					"giorno":"this field is required",
					"orario":"this field is required",
					"corsoTipo":"this field is required",
					"tipoCorso":"this field is required",
					"livello":"this field is required",
					"frequenza":"this field is required"
				}`),
			},
			{
				name:     "teacher not available",
				method:   http.MethodPost,
				path:     "/api/corsi",
				body:     marchallObj(t, coursePayload("React", busy.ID, 0)),
				token:    token,
				wantCode: http.StatusUnprocessableEntity,
			},
			{
				name:     "room too small",
				method:   http.MethodPost,
				path:     "/api/corsi",
				body:     marchallObj(t, coursePayload("React", ada.ID, aula.ID, alan.ID, grace.ID)),
				token:    token,
				wantCode: http.StatusConflict,
			},
			{
				name:     "ok",
				method:   http.MethodPost,
				path:     "/api/corsi",
				body:     marchallObj(t, coursePayload("React", ada.ID, aula.ID, alan.ID)),
				token:    token,
				wantCode: http.StatusCreated,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := tt.run(t, app)
				if tt.wantCode == http.StatusConflict || tt.wantCode == http.StatusUnprocessableEntity {
					assert.NotEmpty(t, decodeErr(t, rec).Error)
				}
			})
		}
	})

	courses, err := svcs.Course.Query(ctx, course.QueryFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	react := courses[0]

	t.Run("retrieve", func(t *testing.T) {
		tests := []httpTest{
			{name: "ok", path: fmt.Sprintf("/api/corsi/%d", react.ID), wantCode: http.StatusOK, wantData: marchallObj(t, react)},
			{name: "unknown", path: "/api/corsi/999", wantCode: http.StatusNotFound, wantData: []byte(`{"error":"course not found"}`)},
			{name: "bad id", path: "/api/corsi/abc", wantCode: http.StatusNotFound},
			{name: "active list", path: "/api/corsi", wantCode: http.StatusOK, wantData: marchallObj(t, courses)},
			{name: "inactive list", path: "/api/corsi/disattivati", wantCode: http.StatusOK, wantData: []byte(`[]`)},
			{name: "by type", path: "/api/corsi/tipo/DI_GRUPPO", wantCode: http.StatusOK, wantData: marchallObj(t, courses)},
			{name: "by unknown type", path: "/api/corsi/tipo/nope", wantCode: http.StatusBadRequest},
			{name: "by teacher", path: fmt.Sprintf("/api/corsi/insegnante/%d", busy.ID), wantCode: http.StatusOK, wantData: []byte(`[]`)},
			{name: "levels", path: "/api/livelli", wantCode: http.StatusOK, wantData: []byte(`["Beginner","Junior","Advanced"]`)},
		}
		for _, tt := range tests {
			tt.token = token
			t.Run(tt.name, func(t *testing.T) {
				tt.run(t, app)
			})
		}
	})

	t.Run("enrollment", func(t *testing.T) {
		addGrace := marchallObj(t, map[string]int{"studenteId": grace.ID})
		enrollPath := fmt.Sprintf("/api/corsi/%d/aggiungi-studente", react.ID)
		removePath := fmt.Sprintf("/api/studenti/%d/rimuovi-da-corso/%d", alan.ID, react.ID)

		tests := []httpTest{
			{name: "missing student", method: http.MethodPost, path: enrollPath, body: []byte(`{}`), wantCode: http.StatusBadRequest},
			{name: "room full", method: http.MethodPost, path: enrollPath, body: addGrace, wantCode: http.StatusConflict},
			{name: "waitlist", path: "/api/corsi/lista-attesa/studenti", wantCode: http.StatusOK},
			{name: "remove", method: http.MethodDelete, path: removePath, wantCode: http.StatusNoContent},
			{
				name:     "remove again",
				method:   http.MethodDelete,
				path:     removePath,
				wantCode: http.StatusNotFound,
				wantData: []byte(`{"error":"student is not enrolled in this course"}`),
			},
			{name: "seat freed", method: http.MethodPost, path: enrollPath, body: addGrace, wantCode: http.StatusOK},
			{name: "already enrolled", method: http.MethodPost, path: enrollPath, body: addGrace, wantCode: http.StatusConflict},
		}
		for _, tt := range tests {
			tt.token = token
			t.Run(tt.name, func(t *testing.T) {
				tt.run(t, app)
			})
		}

		got, err := svcs.Course.Get(ctx, react.ID)
		require.NoError(t, err)
		require.Len(t, got.Students, 1)
		assert.Equal(t, grace.ID, got.Students[0].ID)
	})

	t.Run("lifecycle", func(t *testing.T) {
		tests := []httpTest{
			{name: "deactivate", method: http.MethodPut, path: fmt.Sprintf("/api/corsi/%d/interrompi", react.ID), wantCode: http.StatusOK},
			{
				name:     "enroll in inactive course",
				method:   http.MethodPost,
				path:     fmt.Sprintf("/api/corsi/%d/aggiungi-studente", react.ID),
				body:     marchallObj(t, map[string]int{"studenteId": alan.ID}),
				wantCode: http.StatusConflict,
				wantData: []byte(`{"error":"course is not active"}`),
			},
			{name: "reactivate", method: http.MethodPut, path: fmt.Sprintf("/api/corsi/%d/riattiva", react.ID), wantCode: http.StatusOK},
			{name: "calendar", path: "/api/calendario/corsi-programmati", wantCode: http.StatusOK},
			{name: "delete", method: http.MethodDelete, path: fmt.Sprintf("/api/corsi/%d", react.ID), wantCode: http.StatusNoContent},
			{name: "gone", path: fmt.Sprintf("/api/corsi/%d", react.ID), wantCode: http.StatusNotFound},
		}
		for _, tt := range tests {
			tt.token = token
			t.Run(tt.name, func(t *testing.T) {
				tt.run(t, app)
			})
		}
	})
}

func TestCourseAPI_Candidates(t *testing.T) {
	app, svcs := setup(t)
	token := staffToken(t, svcs, "staff", false)

	frontend := []school.Specialization{school.Frontend}
	ada := testutil.CreateTeacher(t, svcs.Teachers, "Ada", "Lovelace", frontend, mondayMornings)
	testutil.CreateTeacher(t, svcs.Teachers, "Bob", "Backend", []school.Specialization{school.Backend}, mondayMornings)
	alan := testutil.CreateStudent(t, svcs.Students, "Alan", "Rossi", "", frontend, mondayMornings)
	c := testutil.CreateCourse(t, svcs.Course, coursePayload("React", ada.ID, 0))

	want, err := svcs.Course.Eligible(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, want.Teachers, 1)
	require.Len(t, want.Students, 1)
	assert.Equal(t, alan.ID, want.Students[0].ID)

	tests := []httpTest{
		{name: "saved course", path: fmt.Sprintf("/api/corsi/%d/compatibili", c.ID), wantCode: http.StatusOK, wantData: marchallObj(t, want)},
		{
			name:     "draft of the saved course",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/api/corsi/compatibili?corso=%d", c.ID),
			body:     marchallObj(t, coursePayload("React", ada.ID, 0)),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, want),
		},
		{
			name:     "bad draft id",
			method:   http.MethodPost,
			path:     "/api/corsi/compatibili?corso=abc",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "unknown course", path: "/api/corsi/999/compatibili", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		tt.token = token
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}
}
