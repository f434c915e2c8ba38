package model

import "time"

// User 用户档案；密码只存加盐哈希
type User struct {
	ID           string    `json:"id"`
	Firstname    string    `json:"firstname"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Gender       int16     `json:"gender"` // 0/1
	Birth        int64     `json:"birth"`  // unix 秒
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Photo        string    `json:"photo"`
	CreateTime   time.Time `json:"create_time"`
}

// Public 对外展示的裁剪视图（搜索、联系人列表）
type Public struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
	Gender    int16  `json:"gender"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (u *User) Public() Public {
	return Public{
		ID:        u.ID,
		Firstname: u.Firstname,
		Surname:   u.Surname,
		Gender:    u.Gender,
		City:      u.City,
		Country:   u.Country,
	}
}

// FullName 如 "Ana Silva"
func (u *User) FullName() string {
	return u.Firstname + " " + u.Surname
}
