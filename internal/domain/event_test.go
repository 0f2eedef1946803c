package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventValidate(t *testing.T) {
	courseID := uuid.New()

	tests := []struct {
		name    string
		event   NotificationEvent
		wantErr error
	}{
		{"user target", NotificationEvent{UserIDs: []uuid.UUID{uuid.New()}, Title: "T", Message: "M"}, nil},
		{"course target", NotificationEvent{CourseID: &courseID, Title: "T", Message: "M"}, nil},
		{"broadcast target", NotificationEvent{Broadcast: true, Title: "T", Message: "M"}, nil},
		{"no target", NotificationEvent{Title: "T", Message: "M"}, ErrNoTarget},
		{"blank title", NotificationEvent{Broadcast: true, Title: " \t", Message: "M"}, ErrEmptyContent},
		{"blank message", NotificationEvent{Broadcast: true, Title: "T"}, ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, TypeInfo, NormalizeType(""))
	assert.Equal(t, TypeInfo, NormalizeType("info"))
	assert.Equal(t, TypePayment, NormalizeType("Payment"))
	assert.Equal(t, TypeAnnouncement, NormalizeType("ANNOUNCEMENT"))
	// Legacy lowercase variants pass through untouched.
	assert.Equal(t, "order_paid", NormalizeType("order_paid"))
}
