package realtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuthorizer struct {
	groups  map[uuid.UUID]bool
	courses map[uuid.UUID]bool
}

func (a *stubAuthorizer) IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	return a.groups[groupID], nil
}

func (a *stubAuthorizer) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return a.courses[courseID], nil
}

func handle(hub *Hub, c *Client, auth RoomAuthorizer, msg string) {
	c.handleMessage(hub, auth, []byte(msg), zap.NewNop())
}

func TestJoinUserRoomOwnOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	hub.Register(c)
	auth := &stubAuthorizer{}

	handle(hub, c, auth, fmt.Sprintf(`{"type":"join_user_room","payload":{"userId":"%s"}}`, c.UserID))
	assert.Len(t, hub.membersOf(UserRoom(c.UserID)), 1)
	assertNoEvent(t, c)

	// Claiming someone else's room is rejected.
	foreign := uuid.New()
	handle(hub, c, auth, fmt.Sprintf(`{"type":"join_user_room","payload":{"userId":"%s"}}`, foreign))
	assert.Empty(t, hub.membersOf(UserRoom(foreign)))
	assert.Equal(t, "error", recvEvent(t, c).Type)
}

func TestJoinCourseRoomRequiresEnrollment(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	hub.Register(c)

	enrolled := uuid.New()
	notEnrolled := uuid.New()
	auth := &stubAuthorizer{courses: map[uuid.UUID]bool{enrolled: true}}

	handle(hub, c, auth, fmt.Sprintf(`{"type":"join_course_room","payload":{"courseId":"%s"}}`, enrolled))
	assert.Len(t, hub.membersOf(CourseRoom(enrolled)), 1)
	assertNoEvent(t, c)

	handle(hub, c, auth, fmt.Sprintf(`{"type":"join_course_room","payload":{"courseId":"%s"}}`, notEnrolled))
	assert.Empty(t, hub.membersOf(CourseRoom(notEnrolled)))
	assert.Equal(t, "error", recvEvent(t, c).Type)
}

func TestJoinGroupRoomRequiresMembership(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	hub.Register(c)

	groupID := uuid.New()
	auth := &stubAuthorizer{groups: map[uuid.UUID]bool{groupID: true}}

	handle(hub, c, auth, fmt.Sprintf(`{"type":"join_group_room","payload":{"groupId":"%s"}}`, groupID))
	assert.Len(t, hub.membersOf(GroupRoom(groupID)), 1)

	stranger := newTestClient()
	hub.Register(stranger)
	otherGroup := uuid.New()
	handle(hub, stranger, auth, fmt.Sprintf(`{"type":"join_group_room","payload":{"groupId":"%s"}}`, otherGroup))
	assert.Empty(t, hub.membersOf(GroupRoom(otherGroup)))
	assert.Equal(t, "error", recvEvent(t, stranger).Type)
}

func TestJoinSupportAcknowledges(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	hub.Register(c)

	handle(hub, c, &stubAuthorizer{}, fmt.Sprintf(`{"type":"join_support","payload":{"userId":"%s"}}`, c.UserID))

	assert.Len(t, hub.membersOf(SupportRoom), 1)
	assert.Equal(t, "support_joined", recvEvent(t, c).Type)

	handle(hub, c, &stubAuthorizer{}, `{"type":"leave_support"}`)
	assert.Empty(t, hub.membersOf(SupportRoom))
}

func TestMalformedAndUnknownMessages(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient()
	hub.Register(c)
	auth := &stubAuthorizer{}

	handle(hub, c, auth, `not json`)
	assert.Equal(t, "error", recvEvent(t, c).Type)

	handle(hub, c, auth, `{"type":"subscribe_everything"}`)
	assert.Equal(t, "error", recvEvent(t, c).Type)

	handle(hub, c, auth, `{"type":"join_course_room","payload":{"courseId":"not-a-uuid"}}`)
	assert.Equal(t, "error", recvEvent(t, c).Type)
}
