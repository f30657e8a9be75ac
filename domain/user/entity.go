package user

import "time"

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// TokenPair holds the tokens returned after a successful login.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Claims is the authenticated identity extracted from a token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
