package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	Status       string
	LastSeen     time.Time
	TypingIn     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChatType defines private (two members) or group chats.
type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

// Chat represents a conversation between two or more users.
type Chat struct {
	ID            string
	Type          ChatType
	Name          string
	Description   string
	MemberIDs     []string
	AdminID       string
	LastMessageID string
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MessageStatus tracks the delivery state of a message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// ReadReceipt records who read a message and when.
type ReadReceipt struct {
	UserID string
	ReadAt time.Time
}

// Message represents a persisted chat message. Deletion is soft so read
// receipts survive.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Text      string
	MediaIDs  []string
	Status    MessageStatus
	ReadBy    []ReadReceipt
	Deleted   bool
	DeletedAt *time.Time
	CreatedAt time.Time
}

// Media represents an uploaded file's metadata; the blob lives on disk.
type Media struct {
	ID         string
	Filename   string
	MimeType   string
	Size       int64
	Path       string
	UploaderID string
	CreatedAt  time.Time
}

// CallType defines the media kind of a call.
type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

// CallStatus tracks the lifecycle of a call.
type CallStatus string

const (
	CallStatusRinging  CallStatus = "ringing"
	CallStatusOngoing  CallStatus = "ongoing"
	CallStatusEnded    CallStatus = "ended"
	CallStatusMissed   CallStatus = "missed"
	CallStatusRejected CallStatus = "rejected"
	CallStatusNoAnswer CallStatus = "no-answer"
)

// CallParticipant records one user's time in a call.
type CallParticipant struct {
	UserID   string
	JoinedAt *time.Time
	LeftAt   *time.Time
	Duration int64 // seconds
}

// Call represents a voice or video call within a chat.
type Call struct {
	ID              string
	ChatID          string
	CallerID        string
	ReceiverIDs     []string
	Type            CallType
	Status          CallStatus
	StartedAt       *time.Time
	EndedAt         *time.Time
	Duration        int64 // seconds
	Participants    []CallParticipant
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Notification represents an in-app notification for a user.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Body      string
	Meta      map[string]any
	Read      bool
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user and returns it with its ID set.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsersByEmails retrieves users matching any of the given emails.
	ListUsersByEmails(ctx context.Context, emails []string) ([]*User, error)

	// ListUsersByIDs retrieves users matching any of the given IDs.
	ListUsersByIDs(ctx context.Context, ids []string) ([]*User, error)

	// UpdateUserProfile updates name, avatar URL and status line by email.
	// Nil fields are left untouched.
	UpdateUserProfile(ctx context.Context, email string, name, avatarURL, status *string) (*User, error)

	// UpdateUserActivity stamps lastSeen and records which chat the user
	// is typing in ("" clears it).
	UpdateUserActivity(ctx context.Context, userID, typingIn string) (*User, error)
}

// ChatStore handles chat persistence.
type ChatStore interface {
	// CreateChat inserts a new chat and returns it with its ID set.
	CreateChat(ctx context.Context, c *Chat) (*Chat, error)

	// GetChatByID retrieves a chat by ID.
	GetChatByID(ctx context.Context, id string) (*Chat, error)

	// GetPrivateChat finds the private chat whose members are exactly the
	// two given users, or ErrNotFound.
	GetPrivateChat(ctx context.Context, userA, userB string) (*Chat, error)

	// ListChatsForUser lists chats the user belongs to, most recently
	// active first.
	ListChatsForUser(ctx context.Context, userID string) ([]*Chat, error)

	// IsChatMember reports whether the user belongs to the chat.
	IsChatMember(ctx context.Context, chatID, userID string) (bool, error)

	// TouchChat records the latest message on the chat.
	TouchChat(ctx context.Context, chatID, lastMessageID string, at time.Time) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage inserts a message and returns it with its ID set.
	CreateMessage(ctx context.Context, m *Message) (*Message, error)

	// GetMessageByID retrieves a message by ID.
	GetMessageByID(ctx context.Context, id string) (*Message, error)

	// ListMessagesForChat lists a chat's messages in chronological order.
	ListMessagesForChat(ctx context.Context, chatID string) ([]*Message, error)

	// MarkMessageDeleted soft-deletes a message.
	MarkMessageDeleted(ctx context.Context, id string, at time.Time) error
}

// MediaStore handles media metadata persistence.
type MediaStore interface {
	// CreateMedia inserts media metadata and returns it with its ID set.
	CreateMedia(ctx context.Context, m *Media) (*Media, error)

	// ListMediaByIDs retrieves media matching any of the given IDs.
	ListMediaByIDs(ctx context.Context, ids []string) ([]*Media, error)
}

// CallStore handles call persistence.
type CallStore interface {
	// CreateCall inserts a call and returns it with its ID set.
	CreateCall(ctx context.Context, c *Call) (*Call, error)

	// GetCallByID retrieves a call by ID.
	GetCallByID(ctx context.Context, id string) (*Call, error)

	// UpdateCall replaces the mutable fields of an existing call.
	UpdateCall(ctx context.Context, c *Call) error

	// ListCallsForChat lists a chat's calls, newest first, up to limit.
	ListCallsForChat(ctx context.Context, chatID string, limit int) ([]*Call, error)

	// DeleteCall removes a call record.
	DeleteCall(ctx context.Context, id string) error
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// CreateNotification inserts a notification and returns it with its ID set.
	CreateNotification(ctx context.Context, n *Notification) (*Notification, error)

	// ListNotificationsForUser lists a user's notifications, newest first.
	ListNotificationsForUser(ctx context.Context, userID string) ([]*Notification, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ChatStore
	MessageStore
	MediaStore
	CallStore
	NotificationStore

	// Close releases the underlying database connection.
	Close(ctx context.Context) error
}
