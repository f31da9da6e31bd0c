package school

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecialization(t *testing.T) {
	tests := []struct {
		in      string
		want    Specialization
		wantErr error
	}{
		{in: "UX_UI_Design", want: UXUIDesign},
		{in: "UX/UI Design", want: UXUIDesign},
		{in: "ux ui design", want: UXUIDesign},
		{in: "Cloud_Computing", want: CloudComputing},
		{in: "Cloud Computing", want: CloudComputing},
		{in: "Data_Science", want: DataScience},
		{in: "data-science", want: DataScience},
		{in: " Backend ", want: Backend},
		{in: "Cooking", wantErr: ErrInvalidSpecialization},
		{in: "", wantErr: ErrInvalidSpecialization},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpecialization(tt.in)
			if err != tt.wantErr {
				t.Fatalf("ParseSpecialization() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr error
	}{
		{in: "Lunedì", want: Monday},
		{in: "lunedi", want: Monday},
		{in: "LUNEDI'", want: Monday},
		{in: "Venerdì", want: Friday},
		{in: "sabato", want: Saturday},
		{in: "Monday", wantErr: ErrInvalidDay},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			if err != tt.wantErr {
				t.Fatalf("ParseDay() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, time.Monday, Monday.Weekday())
	assert.Equal(t, time.Sunday, Sunday.Weekday())
	assert.Equal(t, 4, Friday.Index())
}

func TestParseTimeSlot(t *testing.T) {
	for in, want := range map[string]TimeSlot{
		"10:00-12:00":   Slot1000,
		"10:00 - 12:00": Slot1000,
		"8:00-10:00":    Slot0800,
		"18.00-20.00":   Slot1800,
	} {
		got, err := ParseTimeSlot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTimeSlot("09:00-11:00")
	assert.Equal(t, ErrInvalidTimeSlot, err)
}

func TestEnumsJSON(t *testing.T) {
	var c Course
	body := `{
		"corsoTipo": "UX/UI Design", "tipoCorso": "di gruppo", "livello": "junior",
		"frequenza": "2 volte a settimana", "giorno": "martedi", "orario": "10:00 - 12:00",
		"secondoGiorno": "Giovedì", "secondoOrario": "14:00-16:00"
	}`
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, UXUIDesign, c.Specialization)
	assert.Equal(t, Group, c.Type)
	assert.Equal(t, Junior, c.Level)
	assert.Equal(t, TwiceAWeek, c.Frequency)
	assert.Equal(t, []Session{{Tuesday, Slot1000}, {Thursday, Slot1400}}, c.Sessions())

	out, err := json.Marshal(c.Schedule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"giorno":"Martedì","orario":"10:00-12:00","secondoGiorno":"Giovedì","secondoOrario":"14:00-16:00"}`, string(out))

	// unknown values are kept for the validator to report
	var sp Specialization
	require.NoError(t, json.Unmarshal([]byte(`"Cooking"`), &sp))
	assert.False(t, sp.IsValid())
}

func TestDateJSON(t *testing.T) {
	var s Student
	require.NoError(t, json.Unmarshal([]byte(`{"dataIscrizione": "2024-09-15"}`), &s))
	assert.Equal(t, NewDate(2024, time.September, 15), s.EnrolledAt)

	require.NoError(t, json.Unmarshal([]byte(`{"dataIscrizione": "2024-09-15T10:30:00Z"}`), &s))
	assert.Equal(t, NewDate(2024, time.September, 15), s.EnrolledAt)

	out, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: NewDate(2025, time.January, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-01-02"}`, string(out))
}
