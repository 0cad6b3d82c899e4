package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    Status
		action  Action
		want    Status
		wantErr bool
	}{
		{from: StatusPending, action: ActionConfirm, want: StatusConfirmed},
		{from: StatusPending, action: ActionCancel, want: StatusCancelled},
		{from: StatusConfirmed, action: ActionCancel, want: StatusCancelled},
		{from: StatusConfirmed, action: ActionConfirm, wantErr: true},
		{from: StatusCancelled, action: ActionConfirm, wantErr: true},
		{from: StatusCancelled, action: ActionCancel, wantErr: true},
		{from: StatusPending, action: "archive", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookingCovers(t *testing.T) {
	b := &Booking{StartTime: "09:00", EndTime: "11:00", Status: StatusConfirmed}
	assert.True(t, b.Covers("09:00"))
	assert.True(t, b.Covers("10:00"))
	assert.False(t, b.Covers("11:00"))
	assert.False(t, b.Covers("08:00"))
	assert.Equal(t, 2, b.Hours())
	assert.True(t, b.Occupies())

	b.Status = StatusCancelled
	assert.False(t, b.Occupies())
}
