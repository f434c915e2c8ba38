package pgstore

import (
	"context"

	groupmodel "ChatProject/module/group/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// GroupStore 群组/成员表访问层
type GroupStore struct {
	pool *pgxpool.Pool
}

func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

func (s *GroupStore) Insert(ctx context.Context, g *groupmodel.Group) error {
	_, err := s.pool.Exec(ctx,
		`insert into groups (id, name, photo, admin_id, create_time) values ($1,$2,$3,$4,$5)`,
		g.ID, g.Name, g.Photo, g.AdminID, g.CreateTime)
	return errors.Wrap(err, "insert group")
}

func (s *GroupStore) GetByID(ctx context.Context, id string) (*groupmodel.Group, error) {
	g := &groupmodel.Group{}
	err := s.pool.QueryRow(ctx,
		`select id, name, photo, admin_id, create_time from groups where id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Photo, &g.AdminID, &g.CreateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan group")
	}
	return g, nil
}

func (s *GroupStore) InsertMember(ctx context.Context, m *groupmodel.GroupMember) error {
	_, err := s.pool.Exec(ctx,
		`insert into group_members (id, group_id, user_id) values ($1,$2,$3)`,
		m.ID, m.GroupID, m.UserID)
	return errors.Wrap(err, "insert member")
}

func (s *GroupStore) GetMember(ctx context.Context, groupID, userID string) (*groupmodel.GroupMember, error) {
	m := &groupmodel.GroupMember{}
	err := s.pool.QueryRow(ctx,
		`select id, group_id, user_id from group_members where group_id = $1 and user_id = $2`,
		groupID, userID).Scan(&m.ID, &m.GroupID, &m.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan member")
	}
	return m, nil
}

func (s *GroupStore) DeleteMember(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `delete from group_members where id = $1`, id)
	return errors.Wrap(err, "delete member")
}

func (s *GroupStore) UpdateAdmin(ctx context.Context, groupID, adminID string) error {
	_, err := s.pool.Exec(ctx, `update groups set admin_id = $1 where id = $2`, adminID, groupID)
	return errors.Wrap(err, "update admin")
}

// ListMemberIDs 群成员ID列表（含管理员所在行，管理员不在成员表时由服务层补）
func (s *GroupStore) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`select user_id from group_members where group_id = $1`, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "list members")
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan member id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "member rows")
}
