package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrMuteNotFound   = errors.New("mute not found")
)

// GroupRepository abstracts group, membership, mute and pin persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group models.Group, members []models.Member) error
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	FindDirectGroup(ctx context.Context, userA, userB string) (models.Group, error)
	ListGroupsForUser(ctx context.Context, username string) ([]models.Group, error)
	UpdateGroupInfo(ctx context.Context, groupID, name, avatar string) error
	SetInvitePolicy(ctx context.Context, groupID string, policy models.InvitePolicy) error
	DeleteGroup(ctx context.Context, groupID string) error
	ResetGroupID(ctx context.Context, oldID, newID string) error

	AddMember(ctx context.Context, member models.Member) error
	RemoveMember(ctx context.Context, groupID, username string) error
	GetMember(ctx context.Context, groupID, username string) (models.Member, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
	SetAdmin(ctx context.Context, groupID, username string, isAdmin bool) error

	UpsertMute(ctx context.Context, mute models.Mute) error
	GetMute(ctx context.Context, groupID, username string) (models.Mute, error)
	DeleteMute(ctx context.Context, groupID, username string) error

	Pin(ctx context.Context, username, groupID string) error
	Unpin(ctx context.Context, username, groupID string) error
	ListPinned(ctx context.Context, username string) ([]string, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates the group and its initial members atomically.
func (r *GroupRepo) CreateGroup(ctx context.Context, group models.Group, members []models.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO groups (id, name, kind, owner, invite_policy, avatar, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		group.ID, group.Name, group.Kind, group.Owner, group.InvitePolicy, group.Avatar, group.CreatedAt); err != nil {
		return err
	}

	for _, m := range members {
		if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, username, is_admin, joined_at)
            VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			m.GroupID, m.Username, m.IsAdmin, m.JoinedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, name, kind, owner, invite_policy, avatar, created_at FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// FindDirectGroup returns the direct group between exactly the two users, if any.
func (r *GroupRepo) FindDirectGroup(ctx context.Context, userA, userB string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT g.id, g.name, g.kind, g.owner, g.invite_policy, g.avatar, g.created_at
        FROM groups g
        INNER JOIN group_members a ON a.group_id = g.id AND a.username = $1
        INNER JOIN group_members b ON b.group_id = g.id AND b.username = $2
        WHERE g.kind = 'direct'
        LIMIT 1`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListGroupsForUser returns groups that include the user.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, username string) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT g.id, g.name, g.kind, g.owner, g.invite_policy, g.avatar, g.created_at
        FROM groups g INNER JOIN group_members gm ON gm.group_id = g.id
        WHERE gm.username=$1 ORDER BY g.created_at DESC`, username)
	return groups, err
}

// UpdateGroupInfo renames the group and/or replaces its avatar reference.
func (r *GroupRepo) UpdateGroupInfo(ctx context.Context, groupID, name, avatar string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET
            name = CASE WHEN $2 <> '' THEN $2 ELSE name END,
            avatar = CASE WHEN $3 <> '' THEN $3 ELSE avatar END
        WHERE id=$1`, groupID, name, avatar)
	if err != nil {
		return err
	}
	return requireRow(res, ErrGroupNotFound)
}

// SetInvitePolicy updates who may add members.
func (r *GroupRepo) SetInvitePolicy(ctx context.Context, groupID string, policy models.InvitePolicy) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET invite_policy=$2 WHERE id=$1`, groupID, policy)
	if err != nil {
		return err
	}
	return requireRow(res, ErrGroupNotFound)
}

// DeleteGroup removes the group and all dependent rows atomically.
func (r *GroupRepo) DeleteGroup(ctx context.Context, groupID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// message_receipts cascade via messages; the rest cascade via groups, but
	// delete explicitly so the sequencing does not depend on FK definitions.
	statements := []string{
		`DELETE FROM message_receipts WHERE message_id IN (SELECT id FROM messages WHERE group_id=$1)`,
		`DELETE FROM messages WHERE group_id=$1`,
		`DELETE FROM muted_members WHERE group_id=$1`,
		`DELETE FROM pinned_chats WHERE group_id=$1`,
		`DELETE FROM group_members WHERE group_id=$1`,
		`DELETE FROM groups WHERE id=$1`,
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt, groupID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ResetGroupID rotates the externally visible identifier in one transaction:
// copy the group row under the new id, re-point every dependent table, then
// drop the old row. A failure anywhere rolls the whole rename back, so the
// group is never reachable under two identifiers or under none.
func (r *GroupRepo) ResetGroupID(ctx context.Context, oldID, newID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx, `INSERT INTO groups (id, name, kind, owner, invite_policy, avatar, created_at)
        SELECT $2, name, kind, owner, invite_policy, avatar, created_at FROM groups WHERE id=$1`, oldID, newID)
	if err != nil {
		return err
	}
	if err = requireRow(res, ErrGroupNotFound); err != nil {
		return err
	}

	repoints := []string{
		`UPDATE group_members SET group_id=$2 WHERE group_id=$1`,
		`UPDATE messages SET group_id=$2 WHERE group_id=$1`,
		`UPDATE muted_members SET group_id=$2 WHERE group_id=$1`,
		`UPDATE pinned_chats SET group_id=$2 WHERE group_id=$1`,
	}
	for _, stmt := range repoints {
		if _, err = tx.ExecContext(ctx, stmt, oldID, newID); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, oldID); err != nil {
		return err
	}

	return tx.Commit()
}

// AddMember inserts a membership row.
func (r *GroupRepo) AddMember(ctx context.Context, member models.Member) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO group_members (group_id, username, is_admin, joined_at)
        VALUES ($1, $2, $3, $4)`, member.GroupID, member.Username, member.IsAdmin, member.JoinedAt)
	return err
}

// RemoveMember deletes a membership row.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1 AND username=$2`, groupID, username)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMemberNotFound)
}

// GetMember fetches one membership row.
func (r *GroupRepo) GetMember(ctx context.Context, groupID, username string) (models.Member, error) {
	var member models.Member
	err := r.db.GetContext(ctx, &member, `SELECT group_id, username, is_admin, joined_at FROM group_members WHERE group_id=$1 AND username=$2`, groupID, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrMemberNotFound
	}
	return member, err
}

// ListMembers returns the current membership set.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.SelectContext(ctx, &members, `SELECT group_id, username, is_admin, joined_at FROM group_members WHERE group_id=$1 ORDER BY joined_at ASC`, groupID)
	return members, err
}

// SetAdmin toggles the admin flag on a membership.
func (r *GroupRepo) SetAdmin(ctx context.Context, groupID, username string, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE group_members SET is_admin=$3 WHERE group_id=$1 AND username=$2`, groupID, username, isAdmin)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMemberNotFound)
}

// UpsertMute writes or replaces a mute window.
func (r *GroupRepo) UpsertMute(ctx context.Context, mute models.Mute) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO muted_members (group_id, username, muted_until)
        VALUES ($1, $2, $3)
        ON CONFLICT (group_id, username) DO UPDATE SET muted_until = EXCLUDED.muted_until`,
		mute.GroupID, mute.Username, mute.MutedUntil)
	return err
}

// GetMute fetches a mute row if present.
func (r *GroupRepo) GetMute(ctx context.Context, groupID, username string) (models.Mute, error) {
	var mute models.Mute
	err := r.db.GetContext(ctx, &mute, `SELECT group_id, username, muted_until FROM muted_members WHERE group_id=$1 AND username=$2`, groupID, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Mute{}, ErrMuteNotFound
	}
	return mute, err
}

// DeleteMute removes a mute row.
func (r *GroupRepo) DeleteMute(ctx context.Context, groupID, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM muted_members WHERE group_id=$1 AND username=$2`, groupID, username)
	return err
}

// Pin records a pinned chat for the user.
func (r *GroupRepo) Pin(ctx context.Context, username, groupID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO pinned_chats (username, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, username, groupID)
	return err
}

// Unpin removes a pinned chat, if present.
func (r *GroupRepo) Unpin(ctx context.Context, username, groupID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pinned_chats WHERE username=$1 AND group_id=$2`, username, groupID)
	return err
}

// ListPinned returns the group ids the user pinned.
func (r *GroupRepo) ListPinned(ctx context.Context, username string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT group_id FROM pinned_chats WHERE username=$1`, username)
	return ids, err
}

func requireRow(res sql.Result, missing error) error {
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return missing
	}
	return nil
}
