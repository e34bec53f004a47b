package http

import (
	"context"
	"time"

	"github.com/Steve1314/ChatBackend/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserSummary is the slim user projection embedded in populated responses.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Status    string `json:"status,omitempty"`
}

// UserView is the full user projection returned from profile endpoints.
type UserView struct {
	UserSummary
	LastSeen  time.Time `json:"lastSeen"`
	TypingIn  string    `json:"typingIn,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatView is a chat with its members populated.
type ChatView struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Name          string        `json:"name,omitempty"`
	Members       []UserSummary `json:"members"`
	LastMessageAt time.Time     `json:"lastMessageAt"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// MediaView is uploaded file metadata.
type MediaView struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

// MessageView is a message with sender and media populated.
type MessageView struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	Sender    UserSummary `json:"sender"`
	Text      string      `json:"text,omitempty"`
	Media     []MediaView `json:"media,omitempty"`
	Status    string      `json:"status"`
	Deleted   bool        `json:"deleted,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CallView is a call with caller and receivers populated.
type CallView struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	Caller    UserSummary   `json:"caller"`
	Receivers []UserSummary `json:"receivers"`
	Type      string        `json:"type"`
	Status    string        `json:"status"`
	StartedAt *time.Time    `json:"startedAt,omitempty"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
	Duration  int64         `json:"duration"`
	Reason    string        `json:"reason,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NotificationView is a stored notification.
type NotificationView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title,omitempty"`
	Body      string         `json:"body,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

func userSummary(u *store.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Status:    u.Status,
	}
}

func userView(u *store.User) UserView {
	return UserView{
		UserSummary: userSummary(u),
		LastSeen:    u.LastSeen,
		TypingIn:    u.TypingIn,
		CreatedAt:   u.CreatedAt,
	}
}

func mediaView(m *store.Media) MediaView {
	return MediaView{
		ID:       m.ID,
		Filename: m.Filename,
		MimeType: m.MimeType,
		Size:     m.Size,
		Path:     m.Path,
	}
}

func notificationView(n *store.Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Meta:      n.Meta,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// userIndex batch-loads the given user IDs and returns them keyed by ID,
// the document-store take on a populate join.
func userIndex(ctx context.Context, users store.UserStore, ids []string) (map[string]UserSummary, error) {
	uniq := make(map[string]struct{}, len(ids))
	lookup := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok || id == "" {
			continue
		}
		uniq[id] = struct{}{}
		lookup = append(lookup, id)
	}

	index := make(map[string]UserSummary, len(lookup))
	if len(lookup) == 0 {
		return index, nil
	}

	loaded, err := users.ListUsersByIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}
	for _, u := range loaded {
		index[u.ID] = userSummary(u)
	}
	return index, nil
}

// mediaIndex batch-loads the given media IDs and returns them keyed by ID.
func mediaIndex(ctx context.Context, media store.MediaStore, ids []string) (map[string]MediaView, error) {
	index := make(map[string]MediaView, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	loaded, err := media.ListMediaByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range loaded {
		index[m.ID] = mediaView(m)
	}
	return index, nil
}

func chatView(c *store.Chat, users map[string]UserSummary) ChatView {
	members := make([]UserSummary, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if u, ok := users[id]; ok {
			members = append(members, u)
		}
	}
	return ChatView{
		ID:            c.ID,
		Type:          string(c.Type),
		Name:          c.Name,
		Members:       members,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}

func messageView(m *store.Message, users map[string]UserSummary, media map[string]MediaView) MessageView {
	attached := make([]MediaView, 0, len(m.MediaIDs))
	for _, id := range m.MediaIDs {
		if mv, ok := media[id]; ok {
			attached = append(attached, mv)
		}
	}
	return MessageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Sender:    users[m.SenderID],
		Text:      m.Text,
		Media:     attached,
		Status:    string(m.Status),
		Deleted:   m.Deleted,
		CreatedAt: m.CreatedAt,
	}
}

func callView(c *store.Call, users map[string]UserSummary) CallView {
	receivers := make([]UserSummary, 0, len(c.ReceiverIDs))
	for _, id := range c.ReceiverIDs {
		if u, ok := users[id]; ok {
			receivers = append(receivers, u)
		}
	}
	return CallView{
		ID:        c.ID,
		ChatID:    c.ChatID,
		Caller:    users[c.CallerID],
		Receivers: receivers,
		Type:      string(c.Type),
		Status:    string(c.Status),
		StartedAt: c.StartedAt,
		EndedAt:   c.EndedAt,
		Duration:  c.Duration,
		Reason:    c.RejectionReason,
		CreatedAt: c.CreatedAt,
	}
}
