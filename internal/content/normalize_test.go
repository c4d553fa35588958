package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSingleDay(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"days":[{"day":1,"activities":[{"title":"Museum"}]}]}`))
	require.NoError(t, err)

	body, ok := c.Body.(StructuredDays)
	require.True(t, ok, "expected structured days, got %T", c.Body)
	require.Len(t, body.Days, 1)
	assert.Equal(t, "Day 1", body.Days[0].Label)
	require.Len(t, body.Days[0].Activities, 1)
	assert.Equal(t, "TBD: Museum", body.Days[0].Activities[0].Line())
}

func TestNormalizeRawOnly(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"raw_response":"Enjoy!"}`))
	require.NoError(t, err)
	assert.Equal(t, RawText{Text: "Enjoy!"}, c.Body)
	assert.Empty(t, c.Overview)
	assert.Empty(t, c.TotalEstimatedCost)
}

func TestNormalizeDaysWinOverRaw(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{
		"overview": "Three days in Rome",
		"days": [{"day": 1, "date": "2024-06-01", "activities": [
			{"time": "09:00", "title": "Colosseum"},
			{"description": "Walk along the Tiber"}
		]}],
		"raw_response": "should not show",
		"total_estimated_cost": 1500
	}`))
	require.NoError(t, err)

	body, ok := c.Body.(StructuredDays)
	require.True(t, ok)
	day := body.Days[0]
	assert.Equal(t, "Day 1 - 2024-06-01", day.Label)
	assert.Equal(t, "09:00: Colosseum", day.Activities[0].Line())
	assert.Equal(t, "TBD: Walk along the Tiber", day.Activities[1].Line())
	assert.Equal(t, "Three days in Rome", c.Overview)
	assert.Equal(t, "1500", c.TotalEstimatedCost)
}

func TestNormalizeEmptyDaysFallsBackToRaw(t *testing.T) {
	// shape the AI service returns when the model answered without JSON
	c, err := NormalizeJSON([]byte(`{"overview":"Day 1: arrive...","days":[],"raw_response":"Day 1: arrive..."}`))
	require.NoError(t, err)
	assert.Equal(t, RawText{Text: "Day 1: arrive..."}, c.Body)
	assert.Equal(t, "Day 1: arrive...", c.Overview)
}

func TestNormalizeNothingIsEmptyNotError(t *testing.T) {
	for _, in := range []string{``, `null`, `{}`, `{"overview":""}`} {
		c, err := NormalizeJSON([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, Empty{}, c.Body, in)
		assert.True(t, c.IsEmpty(), in)
	}

	c := Normalize(Raw{TotalEstimatedCost: "$900"})
	assert.Equal(t, Empty{}, c.Body)
	assert.False(t, c.IsEmpty())
	assert.Equal(t, "$900", c.TotalEstimatedCost)
}

func TestNormalizeGenerationError(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"error":"quota exceeded","overview":"Failed to generate itinerary. Please try again."}`))
	require.NoError(t, err)
	assert.Equal(t, "quota exceeded", c.GenerationError)
	assert.Equal(t, Empty{}, c.Body)
}

func TestNormalizeLooseTypes(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{
		"days": [
			{"day": "2", "activities": [{"time": 9, "title": "Market", "cost": 12.50}], "meals": {"lunch": "Trattoria"}, "tips": ["Carry cash", "Start early"]},
			{"activities": [], "meals": "skip"}
		],
		"packing_suggestions": ["sunscreen", "", "hat"],
		"local_tips": null
	}`))
	require.NoError(t, err)

	days := c.Body.(StructuredDays).Days
	require.Len(t, days, 2)
	assert.Equal(t, 2, days[0].Number)
	assert.Equal(t, "9: Market", days[0].Activities[0].Line())
	assert.Equal(t, "12.50", days[0].Activities[0].Cost)
	assert.Equal(t, map[string]string{"lunch": "Trattoria"}, days[0].Meals)
	assert.Equal(t, "Carry cash, Start early", days[0].Tips)

	// missing day number falls back to position
	assert.Equal(t, "Day 2", days[1].Label)
	assert.Empty(t, days[1].Activities)
	assert.Nil(t, days[1].Meals)

	assert.Equal(t, []string{"sunscreen", "hat"}, c.PackingSuggestions)
	assert.Nil(t, c.LocalTips)
}

func TestNormalizeActivityWithoutText(t *testing.T) {
	c := Normalize(Raw{Days: []RawDay{{Day: "1", Activities: []RawActivity{{Time: "10:00"}}}}})
	assert.Equal(t, "10:00: ", c.Body.(StructuredDays).Days[0].Activities[0].Line())
}

func TestNormalizeMalformed(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"days": [`))
	assert.Error(t, err)
	assert.Equal(t, Empty{}, c.Body)
}

func TestNormalizeNonArrayDaysFallsBack(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"overview":"Two days in Rome","days":"see below","raw_response":"Day 1: Colosseum"}`))
	require.NoError(t, err)
	assert.Equal(t, "Two days in Rome", c.Overview)
	assert.Equal(t, RawText{Text: "Day 1: Colosseum"}, c.Body)

	c, err = NormalizeJSON([]byte(`{"overview":"Rome","days":{"1":"Colosseum"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Rome", c.Overview)
	assert.Equal(t, Empty{}, c.Body)
}

func TestNormalizeNonArrayActivities(t *testing.T) {
	c, err := NormalizeJSON([]byte(`{"days":[{"day":1,"activities":"free day"}]}`))
	require.NoError(t, err)
	days, ok := c.Body.(StructuredDays)
	require.True(t, ok)
	assert.Equal(t, "Day 1", days.Days[0].Label)
	assert.Empty(t, days.Days[0].Activities)
}
