package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/mockdata"
)

func newSeedHandler() *SeedHandler {
	now := func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	session := mockdata.NewSession(mockdata.Options{Seed: 7, Now: now})
	return NewSeedHandler(session, mockdata.Services{}, nil)
}

func TestSeedHandler_DataIsStable(t *testing.T) {
	h := newSeedHandler()
	e := newEcho()

	c, rec := request(e, http.MethodGet, "/api/mock/data", "", user(""))
	require.NoError(t, h.Data(c))
	first := decode[mockdata.Dataset](t, rec)

	c, rec = request(e, http.MethodGet, "/api/mock/data", "", user(""))
	require.NoError(t, h.Data(c))
	second := decode[mockdata.Dataset](t, rec)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, second.Profiles, 4)
	assert.Len(t, second.Metrics, len(second.Profiles))
}

func TestSeedHandler_Calendar(t *testing.T) {
	h := newSeedHandler()
	e := newEcho()

	c, rec := request(e, http.MethodGet, "/api/mock/calendar?month=6&year=2024", "", user(""))
	require.NoError(t, h.Calendar(c))
	for _, entry := range decode[[]mockdata.CalendarEntry](t, rec) {
		assert.Equal(t, time.June, entry.Date.Month())
	}

	tests := []string{"?month=13", "?month=june", "?year=twenty"}
	for _, query := range tests {
		c, _ := request(e, http.MethodGet, "/api/mock/calendar"+query, "", user(""))
		assert.Equal(t, http.StatusBadRequest, statusOf(t, h.Calendar(c)), query)
	}
}

func TestSeedHandler_SeedRequiresIdentity(t *testing.T) {
	h := newSeedHandler()
	e := newEcho()

	c, _ := request(e, http.MethodPost, "/api/seed/mock", "", user(""))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, h.SeedMock(c)))
}
