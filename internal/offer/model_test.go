package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffer_IsAvailable(t *testing.T) {
	tests := []struct {
		status    Status
		available bool
		want      bool
	}{
		{StatusActive, true, true},
		{StatusActive, false, false},
		{StatusInactive, true, false},
		{StatusArchived, true, false},
	}

	for _, tt := range tests {
		o := Offer{Status: tt.status, Available: tt.available}
		assert.Equal(t, tt.want, o.IsAvailable(), "%s/%v", tt.status, tt.available)
	}
}

func TestOffer_ActivateDeactivate(t *testing.T) {
	o := &Offer{Status: StatusActive, Available: true}

	assert.NoError(t, o.Deactivate())
	assert.Equal(t, StatusInactive, o.Status)
	assert.False(t, o.Available)

	assert.NoError(t, o.Activate())
	assert.True(t, o.IsAvailable())

	archived := &Offer{Status: StatusArchived}
	assert.ErrorIs(t, archived.Activate(), ErrOfferArchived)
	assert.ErrorIs(t, archived.Deactivate(), ErrOfferArchived)
}
