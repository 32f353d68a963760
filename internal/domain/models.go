package domain

import "time"

// Author represents a registered identity.
type Author struct {
	ID           uint64
	Email        string `gorm:"uniqueIndex"`
	Nickname     string
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	Active       bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeAuthor represents an author without sensitive information
type SafeAuthor struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Active   bool   `json:"active"`
}

// ToSafeAuthor converts an Author to a SafeAuthor
func (a *Author) ToSafeAuthor() SafeAuthor {
	return SafeAuthor{
		ID:       a.ID,
		Email:    a.Email,
		Nickname: a.Nickname,
		Active:   a.Active,
	}
}

// Doc is a shareable document's metadata.
type Doc struct {
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	Type      string    `json:"type"`
	Recycled  bool      `json:"recycled"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Access is the (author, document, role) permission edge.
// At most one row exists per pair; exactly one row per document
// carries RoleOwner.
type Access struct {
	ID       uint64
	AuthorID uint64 `gorm:"index:idx_author_doc,unique"`
	DocID    uint64 `gorm:"index:idx_author_doc,unique"`
	Doc      Doc    `gorm:"constraint:OnDelete:CASCADE"`
	Role     Role
}

// Token is the opaque bearer credential, one per author,
// rotated on every login.
type Token struct {
	ID        uint64
	AuthorID  uint64 `gorm:"uniqueIndex"`
	Author    Author `gorm:"constraint:OnDelete:CASCADE"`
	Content   string `gorm:"uniqueIndex"`
	Timestamp int64  // unix milliseconds at issue/rotation
}

// Expired reports whether the token is older than duration.
// Sessions are currently unbounded; kept for the TTL variant.
func (t *Token) Expired(duration time.Duration) bool {
	return time.Now().UnixMilli()-t.Timestamp > duration.Milliseconds()
}

// InviteToken is a redeemable credential granting a fixed role
// on one document. One per (document, role) pair, created lazily.
type InviteToken struct {
	ID      uint64
	DocID   uint64 `gorm:"index:idx_doc_role,unique"`
	Doc     Doc    `gorm:"constraint:OnDelete:CASCADE"`
	Role    Role   `gorm:"index:idx_doc_role,unique"`
	Content string `gorm:"index"`
}

// DocTree stores an author's hierarchical view over their
// accessible documents, serialized at the storage boundary.
type DocTree struct {
	ID        uint64
	AuthorID  uint64 `gorm:"uniqueIndex"`
	Author    Author `gorm:"constraint:OnDelete:CASCADE"`
	Content   string
	Timestamp int64
}

// Chat is an unordered pair of authors. Uniqueness is enforced
// logically: lookups check both orderings before creating.
type Chat struct {
	ID          uint64    `json:"id"`
	InitiatorID *uint64   `json:"initiator_id"`
	RecipientID *uint64   `json:"recipient_id"`
	CreatedAt   time.Time `json:"-"`
}

// Member reports whether authorID is one of the chat's parties.
func (c *Chat) Member(authorID uint64) bool {
	if c.InitiatorID != nil && *c.InitiatorID == authorID {
		return true
	}
	return c.RecipientID != nil && *c.RecipientID == authorID
}

// Message belongs to a chat. Sender and receiver null out if the
// author is deleted; the message itself survives.
type Message struct {
	ID         uint64    `json:"id"`
	ChatID     uint64    `json:"chat_id"`
	Chat       Chat      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SenderID   *uint64   `json:"sender_id"`
	Sender     *Author   `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ReceiverID *uint64   `json:"receiver_id"`
	Receiver   *Author   `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Body       string    `json:"msg"`
	CreatedAt  time.Time `json:"created_at"`
}
