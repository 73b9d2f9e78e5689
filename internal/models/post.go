package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a user-authored post. Likes and Comments are stored newest first.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Likes    []Like    `gorm:"serializer:json;type:text" json:"likes"`
	Comments []Comment `gorm:"serializer:json;type:text" json:"comments"`
	Date     time.Time `gorm:"autoCreateTime" json:"date"`
	Version  int       `gorm:"not null;default:1" json:"-"`
}

// AfterFind keeps empty lists serialized as [] rather than null.
func (p *Post) AfterFind(*gorm.DB) error {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return nil
}

// Like records that a user liked a post.
type Like struct {
	UserID uint `json:"user"`
}

// Comment is embedded in a post.
type Comment struct {
	ID     string    `json:"id"`
	UserID uint      `json:"user"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Date   time.Time `json:"date"`
}

// NewComment snapshots the author and assigns a fresh identity.
func NewComment(author *User, text string) Comment {
	return Comment{
		ID:     uuid.NewString(),
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   time.Now().UTC(),
	}
}

// LikedBy reports whether userID is in the like list.
func (p *Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// AddLike front-inserts a like. Callers check LikedBy first.
func (p *Post) AddLike(userID uint) {
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
}

// RemoveLike drops the like of userID and reports whether one was removed.
func (p *Post) RemoveLike(userID uint) bool {
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// AddComment front-inserts c.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// RemoveComment removes exactly the comment with commentID.
func (p *Post) RemoveComment(commentID string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}
