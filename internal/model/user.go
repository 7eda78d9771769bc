package model

import "time"

type UserID string

type CreateUserParams struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type User struct {
	ID             UserID     `db:"ID" json:"id"`
	CreatedAt      time.Time  `db:"CreatedAt" json:"createdAt"`
	Username       string     `db:"Username" json:"username"`
	Email          string     `db:"Email" json:"email"`
	Password       string     `db:"Password" json:"-"`
	Bio            string     `db:"Bio" json:"bio"`
	ProfilePicture *string    `db:"ProfilePicture" json:"profilePicture"`
	IsAdmin        bool       `db:"IsAdmin" json:"isAdmin"`
	IsTrusted      bool       `db:"IsTrusted" json:"isTrusted"`
	IsVerified     bool       `db:"IsVerified" json:"isVerified"`

	IsEmailVerified          bool       `db:"IsEmailVerified" json:"isEmailVerified"`
	EmailVerificationToken   *string    `db:"EmailVerificationToken" json:"-"`
	EmailVerificationExpires *time.Time `db:"EmailVerificationExpires" json:"-"`
	PasswordResetToken       *string    `db:"PasswordResetToken" json:"-"`
	PasswordResetExpires     *time.Time `db:"PasswordResetExpires" json:"-"`

	WeeklyScore int `db:"WeeklyScore" json:"weeklyScore"`
}
