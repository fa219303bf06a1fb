package auth

// Auth holds login credentials. ID is shared with the users row.
type Auth struct {
	ID       string `gorm:"primaryKey;column:id"`
	Email    string `gorm:"column:email;uniqueIndex;not null"`
	Password string `gorm:"column:password;not null"`
	Active   bool   `gorm:"column:active;not null;default:true"`
}

func (Auth) TableName() string {
	return "auths"
}
