package domain

import "time"

// Kind classifies what triggered an in-app notification.
type Kind string

const (
	KindComment Kind = "comment"
	KindLike    Kind = "like"
	KindSystem  Kind = "system"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindComment, KindLike, KindSystem:
		return true
	}
	return false
}

// Notification is a persisted, recipient-owned record of an in-app event.
// It is mutated only to flip Read to true — never reverted, never hard-deleted
// while the message center can still reference it.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	Kind        Kind      `json:"kind"`
	TargetID    string    `json:"target_id"`
	Content     string    `json:"content,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateNotificationRequest is the inbound payload of a domain-event trigger
// (comment created, like added, system message). The actor comes from the
// authenticated caller, never from the body.
type CreateNotificationRequest struct {
	Kind        Kind   `json:"kind"`
	RecipientID string `json:"recipient_id"`
	TargetID    string `json:"target_id"`
	Content     string `json:"content,omitempty"`
}

func (r *CreateNotificationRequest) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if r.RecipientID == "" {
		return ErrInvalidRecipient
	}
	if r.TargetID == "" {
		return ErrInvalidTarget
	}
	if len(r.Content) > 2048 {
		return ErrInvalidContent
	}
	return nil
}

// ListFilter narrows a recipient's notification listing.
// Zero value lists everything, newest first, up to the repository default.
type ListFilter struct {
	UnreadOnly bool
	Limit      int
}
