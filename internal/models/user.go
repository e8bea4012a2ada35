package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username    string               `bson:"username" json:"username" validate:"required,min=3"`
	FullName    string               `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Email       string               `bson:"email" json:"email" validate:"required,email"`
	Password    string               `bson:"password" json:"-"`
	Role        string               `bson:"role" json:"role"`
	PhoneNumber string               `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	AvatarURL   string               `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	// Bookings is the append-only history of booking ids made by this user.
	Bookings    []primitive.ObjectID `bson:"bookings" json:"bookings"`
	TotalOrders int                  `bson:"total_orders" json:"total_orders"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

func (u *User) BeforeCreate() error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// OrderStats is the view of this user consumed by coupon user restrictions.
func (u *User) OrderStats() UserOrderStats {
	return UserOrderStats{TotalOrders: u.TotalOrders}
}
