package realtime

// Names of the domain events emitted by the mutation orchestrators.
const (
	EventTaskCreated   = "taskCreated"
	EventTaskUpdated   = "taskUpdated"
	EventTaskDeleted   = "taskDeleted"
	EventStatusChanged = "statusChanged"
	EventCommentAdded  = "commentAdded"
	EventMemberAdded   = "memberAdded"
	EventMemberRemoved = "memberRemoved"
)

// StatusChangedPayload carries enough for a subscriber to refetch detail.
type StatusChangedPayload struct {
	TaskID    uint   `json:"taskId"`
	Status    string `json:"status"`
	ChangedBy uint   `json:"changedBy"`
}

// TaskDeletedPayload identifies a removed task.
type TaskDeletedPayload struct {
	TaskID uint `json:"taskId"`
}

// CommentAddedPayload pairs a comment with its task.
type CommentAddedPayload struct {
	TaskID  uint        `json:"taskId"`
	Comment interface{} `json:"comment"`
}

// MemberRemovedPayload identifies a removed membership record.
type MemberRemovedPayload struct {
	MemberID uint `json:"memberId"`
}
