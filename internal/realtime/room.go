package realtime

import "github.com/google/uuid"

// Room names derived from addressing dimensions. The global broadcast case
// has no room; it targets every open connection.
const SupportRoom = "support"

func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func CourseRoom(courseID uuid.UUID) string {
	return "course:" + courseID.String()
}

func GroupRoom(groupID uuid.UUID) string {
	return "group:" + groupID.String()
}
