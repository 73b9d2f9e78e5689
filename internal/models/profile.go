package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the one-per-user developer profile. Experience and Education are stored newest first.
type Profile struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         uint         `gorm:"uniqueIndex;not null" json:"-"`
	User           *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `gorm:"not null" json:"status"`
	Skills         []string     `gorm:"serializer:json;type:text" json:"skills"`
	Bio            string       `gorm:"type:text" json:"bio,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Social         *Social      `gorm:"serializer:json;type:text" json:"social,omitempty"`
	Experience     []Experience `gorm:"serializer:json;type:text" json:"experience"`
	Education      []Education  `gorm:"serializer:json;type:text" json:"education"`
	Date           time.Time    `gorm:"autoCreateTime" json:"date"`
	Version        int          `gorm:"not null;default:1" json:"-"`
}

// Social holds optional social network links.
type Social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is a job history entry.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is a school history entry.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// AfterFind keeps empty lists serialized as [] rather than null.
func (p *Profile) AfterFind(*gorm.DB) error {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	return nil
}

// AddExperience front-inserts e. A current position has no end date.
func (p *Profile) AddExperience(e Experience) {
	if e.Current {
		e.To = nil
	}
	p.Experience = append([]Experience{e}, p.Experience...)
}

// RemoveExperience removes exactly the entry with id.
func (p *Profile) RemoveExperience(id string) bool {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

// AddEducation front-inserts e. Current studies have no end date.
func (p *Profile) AddEducation(e Education) {
	if e.Current {
		e.To = nil
	}
	p.Education = append([]Education{e}, p.Education...)
}

// RemoveEducation removes exactly the entry with id.
func (p *Profile) RemoveEducation(id string) bool {
	for i := range p.Education {
		if p.Education[i].ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}
