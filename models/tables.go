package models

import "time"

type User struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null;index" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `json:"-"` // json:"-" prevents password from being exposed in API
	Role         string    `gorm:"not null;default:'user';index" json:"role"` // "admin" ou "user"
	Blocked      bool      `gorm:"default:false;index" json:"blocked"`
	Provider     string    `gorm:"not null;default:'senha'" json:"provider"` // "senha" ou "google"
	PhotoURL     string    `json:"photo_url,omitempty"`
	ResetToken   string    `json:"-"` // token para redefinição de senha
	CreatedAt    time.Time `json:"created_at"`
}

type Message struct {
	ID        int        `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int        `gorm:"not null;index" json:"user_id"` // auto-filled
	Text      string     `gorm:"type:text;not null" json:"text"`
	Title     string     `json:"title,omitempty"`
	Category  string     `gorm:"not null;default:'Geral'" json:"category"`
	ItemOrder int        `gorm:"column:item_order;not null;index" json:"order"`
	Deleted   bool       `gorm:"default:false;index" json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `sql:"index" json:"deleted_at,omitempty"`
}

type Solution struct {
	Label     string   `json:"label"`
	Text      string   `json:"text"`   // markdown/HTML, renderizado com goldmark na tela
	Status    string   `json:"status"` // confirmado, teste ou obsoleto
	CopyTexts []string `json:"copy_texts,omitempty"`
}

type Problem struct {
	ID          int        `gorm:"primary_key;autoIncrement" json:"id"`
	UserID      int        `gorm:"not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Tags        []string   `gorm:"serializer:json" json:"tags,omitempty"`
	Solutions   []Solution `gorm:"serializer:json" json:"solutions"`
	Solution    string     `gorm:"type:text" json:"-"` // formato antigo: solução única em texto
	ItemOrder   int        `gorm:"column:item_order;not null;index" json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Link struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;index" json:"user_id"`
	URL       string    `gorm:"not null" json:"url"`
	Title     string    `gorm:"not null" json:"title"`
	Category  string    `gorm:"not null;default:'Geral';index" json:"category"`
	ItemOrder int       `gorm:"column:item_order;not null;index" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPref struct {
	ID        int       `gorm:"primary_key;autoIncrement" json:"id"`
	UserID    int       `gorm:"unique;not null" json:"user_id"`
	Theme     string    `gorm:"not null;default:'claro'" json:"theme"` // claro ou escuro
	Compact   bool      `gorm:"default:false" json:"compact"`
	Favorites []int     `gorm:"serializer:json" json:"favorites,omitempty"` // ids de mensagens favoritas
	UpdatedAt time.Time `json:"updated_at"`
}
