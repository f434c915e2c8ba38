package pgstore

import (
	"context"

	usermodel "ChatProject/module/user/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// UserStore 用户表访问层
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userCols = "id, firstname, surname, email, password_hash, salt, gender, birth, city, country, photo, create_time"

func scanUser(row pgx.Row) (*usermodel.User, error) {
	u := &usermodel.User{}
	err := row.Scan(&u.ID, &u.Firstname, &u.Surname, &u.Email, &u.PasswordHash, &u.Salt,
		&u.Gender, &u.Birth, &u.City, &u.Country, &u.Photo, &u.CreateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}
	return u, nil
}

func (s *UserStore) Insert(ctx context.Context, u *usermodel.User) error {
	_, err := s.pool.Exec(ctx,
		`insert into users (`+userCols+`) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID, u.Firstname, u.Surname, u.Email, u.PasswordHash, u.Salt,
		u.Gender, u.Birth, u.City, u.Country, u.Photo, u.CreateTime)
	return errors.Wrap(err, "insert user")
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*usermodel.User, error) {
	row := s.pool.QueryRow(ctx, `select `+userCols+` from users where id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	row := s.pool.QueryRow(ctx, `select `+userCols+` from users where email = $1`, email)
	return scanUser(row)
}

// BothExist 校验两个用户都存在
func (s *UserStore) BothExist(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`select count(*) from users where id = $1 or id = $2`, a, b).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return n == 2, nil
}

// SearchByName 按姓名模糊搜索，排除自己，最多 30 条
func (s *UserStore) SearchByName(ctx context.Context, name, excludeID string) ([]usermodel.Public, error) {
	rows, err := s.pool.Query(ctx,
		`select id, firstname, surname, gender, city, country from users
		 where concat(firstname, ' ', surname) ilike $1 and id != $2 limit 30`,
		"%"+name+"%", excludeID)
	if err != nil {
		return nil, errors.Wrap(err, "search users")
	}
	defer rows.Close()

	out := make([]usermodel.Public, 0, 8)
	for rows.Next() {
		var p usermodel.Public
		if err := rows.Scan(&p.ID, &p.Firstname, &p.Surname, &p.Gender, &p.City, &p.Country); err != nil {
			return nil, errors.Wrap(err, "scan public user")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "search rows")
}

// UpdateProfile 更新档案字段（不含密码）
func (s *UserStore) UpdateProfile(ctx context.Context, u *usermodel.User) error {
	_, err := s.pool.Exec(ctx,
		`update users set firstname = $1, surname = $2, email = $3, gender = $4,
		 birth = $5, city = $6, country = $7 where id = $8`,
		u.Firstname, u.Surname, u.Email, u.Gender, u.Birth, u.City, u.Country, u.ID)
	return errors.Wrap(err, "update user")
}
