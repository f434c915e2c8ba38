package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"ChatProject/logger"
	usermodel "ChatProject/module/user/model"
	"ChatProject/tools/errs"
	"ChatProject/tools/ids"
	"ChatProject/tools/security"
)

// Store 用户表依赖；pgstore.UserStore 实现
type Store interface {
	Insert(ctx context.Context, u *usermodel.User) error
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
	GetByEmail(ctx context.Context, email string) (*usermodel.User, error)
	SearchByName(ctx context.Context, name, excludeID string) ([]usermodel.Public, error)
	UpdateProfile(ctx context.Context, u *usermodel.User) error
}

// Toucher 登录成功后刷新活跃时间
type Toucher interface {
	Touch(ctx context.Context, userID string) error
}

type Service struct {
	store   Store
	keys    *security.KeyPair
	toucher Toucher // 可为 nil
}

func NewService(store Store, keys *security.KeyPair, toucher Toucher) *Service {
	return &Service{store: store, keys: keys, toucher: toucher}
}

type RegisterInput struct {
	Firstname string
	Surname   string
	Email     string
	Password  string
	Gender    bool
	Year      int
	Month     int
	Day       int
}

// Register 注册；邮箱唯一
func (s *Service) Register(ctx context.Context, in RegisterInput) (*usermodel.User, error) {
	birth, ok := toUnixDate(in.Year, in.Month, in.Day)
	if !ok {
		return nil, errs.ErrArgs.WithDetail("bad birth date")
	}

	email := strings.TrimSpace(in.Email)
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if existing != nil {
		return nil, errs.ErrRecordIsExist.WithDetail("email already exists")
	}

	salt := newSalt()
	u := &usermodel.User{
		ID:           ids.GenerateString(),
		Firstname:    strings.TrimSpace(in.Firstname),
		Surname:      strings.TrimSpace(in.Surname),
		Email:        email,
		PasswordHash: hashPassword(in.Password, salt),
		Salt:         salt,
		Gender:       boolToGender(in.Gender),
		Birth:        birth,
		Photo:        "default.png",
		CreateTime:   time.Now(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return u, nil
}

// Login 校验口令并签发令牌
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", time.Time{}, errs.ErrInternal.WithDetail(err.Error())
	}
	// 用户不存在和密码错误同样对待，不泄露哪一种
	if u == nil || hashPassword(password, u.Salt) != u.PasswordHash {
		return "", time.Time{}, errs.ErrTokenInvalid
	}

	token, expireAt, err := security.Generate(s.keys, security.DefaultOptions(), u.ID, u.Email)
	if err != nil {
		return "", time.Time{}, errs.ErrInternal.WithDetail(err.Error())
	}
	if s.toucher != nil {
		if err := s.toucher.Touch(ctx, u.ID); err != nil {
			logger.Debugf("[user] touch on login user=%s err: %v", u.ID, err)
		}
	}
	return token, expireAt, nil
}

// Search 按姓名搜索其他用户
func (s *Service) Search(ctx context.Context, me, name string) ([]usermodel.Public, error) {
	out, err := s.store.SearchByName(ctx, strings.TrimSpace(name), me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	return out, nil
}

// Myself 自己的完整档案
func (s *Service) Myself(ctx context.Context, me string) (*usermodel.User, error) {
	u, err := s.store.GetByID(ctx, me)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if u == nil {
		return nil, errs.ErrRecordAbsent
	}
	return u, nil
}

// GetUser 他人的公开档案
func (s *Service) GetUser(ctx context.Context, me, id string) (*usermodel.Public, error) {
	if me == id {
		return nil, errs.ErrArgs.WithDetail("cannot query self")
	}
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, errs.ErrInternal.WithDetail(err.Error())
	}
	if u == nil {
		return nil, errs.ErrRecordAbsent
	}
	p := u.Public()
	return &p, nil
}

type UpdateInput struct {
	Firstname string
	Surname   string
	Email     string
	Gender    bool
	Year      int
	Month     int
	Day       int
	City      string
	Country   string
}

// UpdateMyself 更新档案；换邮箱时校验唯一
func (s *Service) UpdateMyself(ctx context.Context, me string, in UpdateInput) error {
	birth, ok := toUnixDate(in.Year, in.Month, in.Day)
	if !ok {
		return errs.ErrArgs.WithDetail("bad birth date")
	}

	u, err := s.store.GetByID(ctx, me)
	if err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	if u == nil {
		return errs.ErrRecordAbsent
	}

	email := strings.TrimSpace(in.Email)
	if email != u.Email {
		other, err := s.store.GetByEmail(ctx, email)
		if err != nil {
			return errs.ErrInternal.WithDetail(err.Error())
		}
		if other != nil && other.ID != me {
			return errs.ErrRecordIsExist.WithDetail("email already exists")
		}
	}

	u.Firstname = strings.TrimSpace(in.Firstname)
	u.Surname = strings.TrimSpace(in.Surname)
	u.Email = email
	u.Gender = boolToGender(in.Gender)
	u.Birth = birth
	u.City = strings.TrimSpace(in.City)
	u.Country = strings.TrimSpace(in.Country)

	if err := s.store.UpdateProfile(ctx, u); err != nil {
		return errs.ErrInternal.WithDetail(err.Error())
	}
	return nil
}

func hashPassword(password, salt string) string {
	h := sha256.New()
	h.Write([]byte(password))
	h.Write([]byte(salt))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func newSalt() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func boolToGender(g bool) int16 {
	if g {
		return 1
	}
	return 0
}

// toUnixDate 校验实际存在的日期（比如拒绝 2月30日）并转 unix 秒
func toUnixDate(year, month, day int) (int64, bool) {
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0, false
	}
	return t.Unix(), true
}
