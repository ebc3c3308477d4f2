package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`12.5`, 12.5, false},
		{`"12.5"`, 12.5, false},
		{`" 7 "`, 7, false},
		{`true`, 1, false},
		{`false`, 0, false},
		{`"abc"`, 0, true},
		{`"NaN"`, 0, true},
		{`"Inf"`, 0, true},
		{`"-Infinity"`, 0, true},
		{`{}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.in), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, float64(n))
		})
	}
}

func TestText_And_Flag(t *testing.T) {
	var req RecommendRequest
	require.NoError(t, json.Unmarshal([]byte(
		`{"age": 40, "gender": 1, "smokingStatus": "Former", "drinkingStatus": "Moderate",
		  "rheumatoidArthritis": "1", "vegetarian": "yes", "weight": null}`), &req))

	panel, lifestyle, err := req.Inputs()
	require.NoError(t, err)
	assert.Equal(t, "Male", panel.Gender.String())
	assert.Equal(t, "former", lifestyle.Smoking.String())
	assert.Equal(t, "occasional drinker", lifestyle.Drinking.String())
	assert.True(t, lifestyle.RADiagnosed)
	assert.True(t, lifestyle.Vegetarian)
	assert.Nil(t, lifestyle.WeightKg)
}

func TestFeedbackRequest(t *testing.T) {
	req := FeedbackRequest{AssessmentID: " a-9 ", SuggestedTier: "Borderline", ClinicianTier: "Borderline", Notes: " ok "}
	fb, err := req.Feedback()
	require.NoError(t, err)
	assert.Equal(t, "a-9", fb.AssessmentID)
	assert.True(t, fb.Agreed)
	assert.Equal(t, "ok", fb.Notes)

	req.ClinicianTier = "Critical"
	_, err = req.Feedback()
	assert.Error(t, err)
}
