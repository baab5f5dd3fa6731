package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"industrial-ai-backend/internal/models"
)

func TestParseMaintenanceReport(t *testing.T) {
	report, err := Parse[models.MaintenanceReport](`{"prediction":"P","confidence":80,"recommendations":["R1","R2"]}`)
	require.NoError(t, err)

	assert.Equal(t, "P", report.Prediction)
	assert.Equal(t, 80.0, report.Confidence)
	assert.Equal(t, []string{"R1", "R2"}, report.Recommendations)
}

func TestParseInvalidJSON(t *testing.T) {
	for _, text := range []string{"not json", `{"prediction":`, `["a","b"]`} {
		report, err := Parse[models.MaintenanceReport](text)
		assert.Nil(t, report, text)

		var pe *ParseError
		require.ErrorAs(t, err, &pe, text)
		assert.Equal(t, text, pe.Raw)
	}
}

func TestParseEmptyIsEmptyObject(t *testing.T) {
	for _, text := range []string{"", "   \n"} {
		report, err := Parse[models.MaintenanceReport](text)
		require.NoError(t, err)
		require.NotNil(t, report)

		assert.Empty(t, report.Prediction)
		assert.Zero(t, report.Confidence)
		assert.Nil(t, report.Recommendations)
	}
}

func TestParseDoesNotValidateRange(t *testing.T) {
	report, err := Parse[models.MaintenanceReport](`{"confidence":250}`)
	require.NoError(t, err)
	assert.Equal(t, 250.0, report.Confidence)
}

func TestParseAcceptsNumericStrings(t *testing.T) {
	for text, want := range map[string]float64{
		`{"prediction":"P","confidence":"80","recommendations":[]}`:      80,
		`{"prediction":"P","confidence":" 92.5% ","recommendations":[]}`: 92.5,
	} {
		report, err := Parse[models.MaintenanceReport](text)
		require.NoError(t, err, text)
		assert.Equal(t, want, report.Confidence, text)
		assert.Equal(t, "P", report.Prediction)
	}
}

func TestParseRejectsNonNumericConfidence(t *testing.T) {
	report, err := Parse[models.MaintenanceReport](`{"prediction":"P","confidence":"high"}`)
	assert.Nil(t, report)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestMissingFields(t *testing.T) {
	required := []string{"title", "description", "components", "estimatedROI"}

	assert.Empty(t, MissingFields(`{"title":"T","description":"D","components":[],"estimatedROI":"12%"}`, required))
	assert.Equal(t, []string{"components", "estimatedROI"}, MissingFields(`{"title":"T","description":"D","components":null}`, required))
	assert.Equal(t, required, MissingFields("", required))
	assert.Equal(t, required, MissingFields("not json", required))
}
