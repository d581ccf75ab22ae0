package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question represents a question asked in the Loop community.
type Question struct {
	ID              string    `gorm:"type:uuid;primarykey" json:"id"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	IsAnonymous     bool      `gorm:"not null;default:false" json:"is_anonymous"`
	CreatorID       string    `gorm:"type:uuid;not null;index" json:"creator_id"`
	PreviewImageURL *string   `json:"preview_image_url"` // Set after a preview is published
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Votes    []Vote    `gorm:"foreignKey:QuestionID" json:"-"`
	Comments []Comment `gorm:"foreignKey:QuestionID" json:"-"`
	Answers  []Answer  `gorm:"foreignKey:QuestionID" json:"-"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// User is an author or mentor profile. Only the fields the preview card
// needs are modeled here.
type User struct {
	ID              string    `gorm:"type:uuid;primarykey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	ProfilePhotoURL *string   `json:"profile_photo_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Vote is one user's upvote on a question. The preview pipeline only
// ever counts these rows.
type Vote struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QuestionID string    `gorm:"type:uuid;not null;index" json:"question_id"`
	UserID     string    `gorm:"type:uuid;not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is a reply on a question. Like votes, only the count matters
// to the preview pipeline.
type Comment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QuestionID string    `gorm:"type:uuid;not null;index" json:"question_id"`
	UserID     string    `gorm:"type:uuid;not null" json:"user_id"`
	Body       string    `gorm:"type:text" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Answer is a mentor's answer to a question. MentorID is nullable: an
// answer survives its mentor's account deletion.
type Answer struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QuestionID string    `gorm:"type:uuid;not null;index" json:"question_id"`
	MentorID   *string   `gorm:"type:uuid;index" json:"mentor_id"`
	RawText    string    `gorm:"type:text;not null" json:"raw_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
