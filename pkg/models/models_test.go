package models

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

const sampleJSON = `{
  "month": "4",
  "year": 2025,
  "num_staff": 3,
  "staff_list": [
    {"name": "佐藤", "requests_off": "3,10", "holidays": "20"},
    {"name": "鈴木", "is_newbie": true, "preferred_shifts": "5:早番, 12:遅番"},
    {"name": "高橋", "nakaban_only": true}
  ],
  "late_count_max": "0"
}`

func TestScheduleInputFromJSON(t *testing.T) {
	var in ScheduleInput
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &in))

	req, err := in.ToRequest()
	require.NoError(t, err)
	assert.Equal(t, roster.Calendar{Year: 2025, Month: 4}, req.Calendar)
	assert.Equal(t, roster.Staffing{Early: 2, Middle: 1, LateMin: 2, LateMax: 0}, req.Staffing)
	assert.Equal(t, roster.DefaultBalanceTolerance, req.Balance.Tolerance)
	require.Len(t, req.Staff, 3)
	assert.True(t, req.Staff[1].IsNewbie)
	assert.True(t, req.Staff[2].NakabanOnly)
	assert.Equal(t, []int{3, 10}, req.RequestedOff[0])
	assert.Equal(t, []int{20}, req.Holidays[0])
	assert.Equal(t, map[int]roster.ShiftType{5: roster.Early, 12: roster.Late}, req.Preferences[1])
	assert.NotContains(t, req.Preferences, 0)
}

func TestScheduleInputFromYAML(t *testing.T) {
	doc := `
month: 5
year: "2025"
staff_list:
  - name: A
  - name: B
    holidays: "1, 2"
early_count: 1
balance_tolerance: 3
`
	var in ScheduleInput
	require.NoError(t, yaml.Unmarshal([]byte(doc), &in))
	req, err := in.ToRequest()
	require.NoError(t, err)
	assert.Equal(t, 5, req.Calendar.Month)
	assert.Equal(t, 1, req.Staffing.Early)
	assert.Equal(t, 3, req.Balance.Tolerance)
	assert.Equal(t, []int{1, 2}, req.Holidays[1])
}

func TestFlexIntRejectsText(t *testing.T) {
	var n FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"four"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`4.5`), &n))
	require.NoError(t, json.Unmarshal([]byte(`" 7 "`), &n))
	assert.Equal(t, 7, n.Int())
	assert.Equal(t, 9, IntOr(nil, 9))
}

func TestToRequestErrors(t *testing.T) {
	tests := map[string]ScheduleInput{
		"num_staff": {
			Month: 4, Year: 2025, NumStaff: flex(3),
			StaffList: []StaffInput{{Name: "A"}},
		},
		"staff_list[0].requests_off": {
			Month: 4, Year: 2025,
			StaffList: []StaffInput{{Name: "A", RequestsOff: "3,x"}},
		},
		"staff_list[0].preferred_shifts": {
			Month: 4, Year: 2025,
			StaffList: []StaffInput{{Name: "A", PreferredShifts: "5:夜勤"}},
		},
		"staff_list[0].holidays": {
			Month: 4, Year: 2025,
			StaffList: []StaffInput{{Name: "A", Holidays: "31"}},
		},
	}
	for field, in := range tests {
		in := in
		_, err := in.ToRequest()
		var ve *roster.ValidationError
		require.ErrorAs(t, err, &ve, field)
		assert.Equal(t, field, ve.Field)
	}
}

func flex(v int) *FlexInt {
	n := FlexInt(v)
	return &n
}

func TestNewScheduleResponse(t *testing.T) {
	ok := &scheduler.Outcome{
		Success:    true,
		NumDays:    30,
		Rows:       []scheduler.Row{{Name: "A", Shifts: []string{"早番"}}},
		Relaxation: &scheduler.Relaxation{Applied: true, RelaxBalance: 1},
		Attempts:   make([]scheduler.Attempt, 2),
	}
	resp := NewScheduleResponse(ok, "run-1")
	assert.True(t, resp.Success)
	assert.Equal(t, 30, resp.NumDays)
	assert.Equal(t, 2, resp.Attempts)
	assert.Empty(t, resp.Reasons)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"relaxation_info":{"applied":true`)
	assert.NotContains(t, string(body), `"reasons"`)

	failed := &scheduler.Outcome{
		Findings: []diagnosis.Finding{{Kind: diagnosis.Critical, Priority: 1}},
		Snapshot: diagnosis.Snapshot{TotalStaff: 2},
		Attempts: make([]scheduler.Attempt, 16),
	}
	resp = NewScheduleResponse(failed, "run-2")
	assert.False(t, resp.Success)
	assert.Equal(t, FailureMessage, resp.Message)
	assert.Len(t, resp.Reasons, 1)
	assert.Equal(t, 2, resp.Diagnostics.TotalStaff)
	assert.Nil(t, resp.Schedule)

	body, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"critical"`)
}

func TestStaffInputValidationTags(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidations(v))

	assert.NoError(t, v.Struct(StaffInput{Name: "A", RequestsOff: "3, 10,", PreferredShifts: "5:早番", Holidays: ""}))
	assert.Error(t, v.Struct(StaffInput{Name: "A", RequestsOff: "3,x"}))
	assert.Error(t, v.Struct(StaffInput{Name: "A", Holidays: "first"}))
	assert.Error(t, v.Struct(StaffInput{Name: "A", PreferredShifts: "5:夜勤"}))
	assert.Error(t, v.Struct(StaffInput{RequestsOff: "3"}), "name is required")
}
