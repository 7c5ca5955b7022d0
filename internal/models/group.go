package models

import "time"

// GroupKind distinguishes multi-member groups from two-member direct chats.
type GroupKind string

const (
	GroupKindGroup  GroupKind = "group"
	GroupKindDirect GroupKind = "direct"
)

// InvitePolicy controls who may add new members to a group.
type InvitePolicy string

const (
	InviteAdminOnly  InvitePolicy = "admin"
	InviteAllMembers InvitePolicy = "all"
)

// Group is a chat group or a direct conversation. The ID is the externally
// visible identifier and is rotatable (see GroupService.ResetID); a direct
// group has exactly two members and no promotable roles.
type Group struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Kind         GroupKind    `db:"kind" json:"kind"`
	Owner        string       `db:"owner" json:"owner"`
	InvitePolicy InvitePolicy `db:"invite_policy" json:"invitePolicy"`
	Avatar       string       `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

// Member links a user to a group. The owner is implicitly privileged beyond
// IsAdmin and always has a membership row.
type Member struct {
	GroupID  string    `db:"group_id" json:"groupId"`
	Username string    `db:"username" json:"username"`
	IsAdmin  bool      `db:"is_admin" json:"isAdmin"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// MutePermanent marks a mute with no expiry.
const MutePermanent int64 = -1

// Mute restricts a member from authoring messages until the given
// millisecond epoch, or forever when MutedUntil is MutePermanent.
// An expired row is treated as absent and pruned lazily.
type Mute struct {
	GroupID    string `db:"group_id" json:"groupId"`
	Username   string `db:"username" json:"username"`
	MutedUntil int64  `db:"muted_until" json:"mutedUntil"`
}

// Active reports whether the mute is in force at the given time.
func (m Mute) Active(now time.Time) bool {
	return m.MutedUntil == MutePermanent || m.MutedUntil > now.UnixMilli()
}
