package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLocation_Validate(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid location should pass",
			location: Location{ID: uuid.New(), Name: "Moscow", Latitude: 55.7558, Longitude: 37.6173, Timezone: "Europe/Moscow"},
			wantErr:  false,
		},
		{
			name:     "poles and antimeridian are inclusive",
			location: Location{ID: uuid.New(), Latitude: -90, Longitude: 180, Timezone: "UTC"},
			wantErr:  false,
		},
		{
			name:     "latitude above 90 should fail",
			location: Location{ID: uuid.New(), Latitude: 90.5, Longitude: 0, Timezone: "UTC"},
			wantErr:  true,
			errMsg:   "latitude",
		},
		{
			name:     "longitude below -180 should fail",
			location: Location{ID: uuid.New(), Latitude: 0, Longitude: -181, Timezone: "UTC"},
			wantErr:  true,
			errMsg:   "longitude",
		},
		{
			name:     "empty timezone should fail",
			location: Location{ID: uuid.New(), Latitude: 0, Longitude: 0, Timezone: " "},
			wantErr:  true,
			errMsg:   "timezone cannot be empty",
		},
		{
			name:     "unknown timezone should fail",
			location: Location{ID: uuid.New(), Latitude: 0, Longitude: 0, Timezone: "Mars/Olympus_Mons"},
			wantErr:  true,
			errMsg:   "invalid timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.location.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChart_Validate(t *testing.T) {
	location := Location{ID: uuid.New(), Latitude: 10, Longitude: 10, Timezone: "UTC"}

	valid := Chart{ID: uuid.New(), EventTime: time.Date(1990, 5, 17, 8, 30, 0, 0, time.UTC), Location: location}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ID = uuid.Nil
	assert.ErrorIs(t, noID.Validate(), ErrValidation)

	noTime := valid
	noTime.EventTime = time.Time{}
	assert.ErrorIs(t, noTime.Validate(), ErrValidation)

	badLocation := valid
	badLocation.Location.Latitude = 100
	assert.ErrorIs(t, badLocation.Validate(), ErrValidation)
}

func TestHouseFrame_Validate(t *testing.T) {
	assert.NoError(t, HouseFrame{Cusps: make([]float64, 12)}.Validate())
	assert.ErrorIs(t, HouseFrame{Cusps: make([]float64, 11)}.Validate(), ErrValidation)
}

func TestIsFallbackEligible(t *testing.T) {
	assert.False(t, IsFallbackEligible(nil))
	assert.True(t, IsFallbackEligible(ErrProviderUnavailable))
	assert.True(t, IsFallbackEligible(errors.New("boom")))
	assert.False(t, IsFallbackEligible(ErrProviderNotImplemented))
}
