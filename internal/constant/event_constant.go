package constant

const (
	EventTopic = "chat-events"

	EventUserRegistered        = "USER_REGISTERED"
	EventChatCreated           = "CHAT_CREATED"
	EventChatDeleted           = "CHAT_DELETED"
	EventHistoryCleared        = "HISTORY_CLEARED"
	EventChatVisibilityChanged = "CHAT_VISIBILITY_CHANGED"
	EventMessagesTruncated     = "MESSAGES_TRUNCATED"
	EventMessageVoted          = "MESSAGE_VOTED"
	EventMessageStreamed       = "MESSAGE_STREAMED"
)
