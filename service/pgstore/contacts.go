package pgstore

import (
	"context"

	contactmodel "ChatProject/module/contact/model"
	usermodel "ChatProject/module/user/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// ContactStore 联系人表访问层
type ContactStore struct {
	pool *pgxpool.Pool
}

func NewContactStore(pool *pgxpool.Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

const contactCols = "id, from_id, to_id, accepted, from_alias, to_alias, from_color, to_color, create_time"

func scanContact(row pgx.Row) (*contactmodel.Contact, error) {
	c := &contactmodel.Contact{}
	err := row.Scan(&c.ID, &c.FromID, &c.ToID, &c.Accepted, &c.FromAlias, &c.ToAlias,
		&c.FromColor, &c.ToColor, &c.CreateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan contact")
	}
	return c, nil
}

func (s *ContactStore) Insert(ctx context.Context, c *contactmodel.Contact) error {
	_, err := s.pool.Exec(ctx,
		`insert into contacts (`+contactCols+`) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.FromID, c.ToID, c.Accepted, c.FromAlias, c.ToAlias, c.FromColor, c.ToColor, c.CreateTime)
	return errors.Wrap(err, "insert contact")
}

// GetBetween 双向查找两人之间的关系记录（申请或已接受）
func (s *ContactStore) GetBetween(ctx context.Context, a, b string) (*contactmodel.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`select `+contactCols+` from contacts
		 where from_id = $1 and to_id = $2 or from_id = $2 and to_id = $1`, a, b)
	return scanContact(row)
}

// GetPendingFrom 查找 from -> to 的待处理申请
func (s *ContactStore) GetPendingFrom(ctx context.Context, from, to string) (*contactmodel.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`select `+contactCols+` from contacts
		 where from_id = $1 and to_id = $2 and accepted = false`, from, to)
	return scanContact(row)
}

func (s *ContactStore) SetAccepted(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `update contacts set accepted = true where id = $1`, id)
	return errors.Wrap(err, "accept contact")
}

// Delete 硬删除（拒绝申请、删除联系人共用）
func (s *ContactStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `delete from contacts where id = $1`, id)
	return errors.Wrap(err, "delete contact")
}

func (s *ContactStore) UpdateAlias(ctx context.Context, id string, fromSide bool, alias string) error {
	col := "to_alias"
	if fromSide {
		col = "from_alias"
	}
	_, err := s.pool.Exec(ctx, `update contacts set `+col+` = $1 where id = $2`, alias, id)
	return errors.Wrap(err, "update alias")
}

func (s *ContactStore) UpdateColor(ctx context.Context, id string, fromSide bool, color string) error {
	col := "to_color"
	if fromSide {
		col = "from_color"
	}
	_, err := s.pool.Exec(ctx, `update contacts set `+col+` = $1 where id = $2`, color, id)
	return errors.Wrap(err, "update color")
}

// IsContact 是否已是联系人（accepted）
func (s *ContactStore) IsContact(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`select count(*) from contacts
		 where accepted = true and (from_id = $1 and to_id = $2 or from_id = $2 and to_id = $1)`,
		a, b).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "count contact")
	}
	return n > 0, nil
}

// ListContacts 已接受联系人的用户档案列表
func (s *ContactStore) ListContacts(ctx context.Context, userID string) ([]usermodel.Public, error) {
	rows, err := s.pool.Query(ctx,
		`select u.id, u.firstname, u.surname, u.gender, u.city, u.country
		 from users u
		 where u.id in (
		     select case when from_id = $1 then to_id else from_id end
		     from contacts where accepted = true and (from_id = $1 or to_id = $1))`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	defer rows.Close()

	out := make([]usermodel.Public, 0, 8)
	for rows.Next() {
		var p usermodel.Public
		if err := rows.Scan(&p.ID, &p.Firstname, &p.Surname, &p.Gender, &p.City, &p.Country); err != nil {
			return nil, errors.Wrap(err, "scan contact user")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "contact rows")
}

// ListAcceptedRows 我参与的全部已接受关系行（会话摘要用，要取别名）
func (s *ContactStore) ListAcceptedRows(ctx context.Context, userID string) ([]contactmodel.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`select `+contactCols+` from contacts
		 where accepted = true and (from_id = $1 or to_id = $1)`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list accepted rows")
	}
	defer rows.Close()

	out := make([]contactmodel.Contact, 0, 8)
	for rows.Next() {
		var c contactmodel.Contact
		if err := rows.Scan(&c.ID, &c.FromID, &c.ToID, &c.Accepted, &c.FromAlias, &c.ToAlias,
			&c.FromColor, &c.ToColor, &c.CreateTime); err != nil {
			return nil, errors.Wrap(err, "scan accepted row")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "accepted rows")
}

// ListRequests 发给我的待处理申请（附发起者档案）
func (s *ContactStore) ListRequests(ctx context.Context, userID string) ([]usermodel.Public, error) {
	rows, err := s.pool.Query(ctx,
		`select u.id, u.firstname, u.surname, u.gender, u.city, u.country
		 from contacts c join users u on u.id = c.from_id
		 where c.to_id = $1 and c.accepted = false`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	defer rows.Close()

	out := make([]usermodel.Public, 0, 4)
	for rows.Next() {
		var p usermodel.Public
		if err := rows.Scan(&p.ID, &p.Firstname, &p.Surname, &p.Gender, &p.City, &p.Country); err != nil {
			return nil, errors.Wrap(err, "scan request user")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "request rows")
}
