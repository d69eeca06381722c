package projects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeeklyHours(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "plain number", input: "5", want: 5},
		{name: "zero", input: "0", want: 0},
		{name: "empty means zero", input: "", want: 0},
		{name: "whitespace means zero", input: "  ", want: 0},
		{name: "trimmed", input: " 12 ", want: 12},
		{name: "negative rejected", input: "-3", wantErr: true},
		{name: "decimal rejected", input: "2.5", wantErr: true},
		{name: "words rejected", input: "five", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeeklyHours(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProject_Validate(t *testing.T) {
	valid := Project{Title: "workdeck", WeeklyHours: 4}
	require.NoError(t, valid.Validate())

	blank := Project{Title: "  "}
	assert.ErrorIs(t, blank.Validate(), ErrTitleRequired)

	negative := Project{Title: "workdeck", WeeklyHours: -1}
	assert.Error(t, negative.Validate())
}

func TestColumns_Order(t *testing.T) {
	assert.Equal(t, []string{"title", "description", "tech_stack", "weekly_hours"}, Columns())

	for _, c := range Columns() {
		assert.True(t, ValidColumn(c))
	}
	assert.False(t, ValidColumn("id"))
	assert.False(t, ValidColumn(""))
}

func TestProject_JSONShape(t *testing.T) {
	p := Project{ID: 7, Title: "workdeck", Description: "dash", TechStack: "go", WeeklyHours: 6}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"title":"workdeck","description":"dash","tech_stack":"go","weekly_hours":6}`, string(data))

	// Unsaved rows omit the id so the server can assign one.
	data, err = json.Marshal(Project{Title: "new"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"new","description":"","tech_stack":"","weekly_hours":0}`, string(data))
}
