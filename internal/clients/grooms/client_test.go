package grooms

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGroom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/grooms/groom-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "groom-9", "bonus": 12, "speciality": "foal_care"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	groom, err := client.GetGroom("groom-9")
	require.NoError(t, err)

	assert.Equal(t, "groom-9", groom.ID)
	assert.Equal(t, 12, groom.Bonus)
	assert.Equal(t, "foal_care", groom.Speciality)
}

func TestGetBonusDegradesToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	assert.Equal(t, 0, client.GetBonus("groom-9"))

	// Unconfigured service and empty id degrade the same way
	assert.Equal(t, 0, NewClient("", zerolog.Nop()).GetBonus("groom-9"))
	assert.Equal(t, 0, client.GetBonus(""))
}
