// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

var statuses = []string{
	"Developer", "Junior Developer", "Senior Developer", "Manager",
	"Student or Learning", "Instructor or Teacher", "Intern", "Other",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	passwordHash string
	maxDays      int
	nextUser     int
}

// NewFactory creates a Factory bound to db. The password hash is computed once
// and shared by every seeded user.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	return &Factory{
		db:           db,
		faker:        gofakeit.New(seed),
		passwordHash: string(hash),
		maxDays:      maxDays,
	}, nil
}

// pastDate returns a time within the factory's lookback window.
func (f *Factory) pastDate() time.Time {
	now := time.Now().UTC()
	return f.faker.DateRange(now.AddDate(0, 0, -f.maxDays), now)
}

// CreateUser persists a user with a unique email and a gravatar avatar.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.nextUser++
	email := fmt.Sprintf("%s.%d@devconnector.test",
		strings.ToLower(strings.ReplaceAll(f.faker.Username(), " ", "")), f.nextUser)

	user := &models.User{
		Name:     f.faker.Name(),
		Email:    email,
		Password: f.passwordHash,
		Avatar:   service.Gravatar(email),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProfile persists a profile for user with a few history entries.
func (f *Factory) CreateProfile(user *models.User) (*models.Profile, error) {
	skills := make([]string, 0, 5)
	for i := 0; i < f.faker.Number(2, 5); i++ {
		skills = append(skills, f.faker.ProgrammingLanguage())
	}

	profile := &models.Profile{
		UserID:         user.ID,
		Company:        f.faker.Company(),
		Website:        f.faker.URL(),
		Location:       f.faker.City(),
		Status:         statuses[f.faker.Number(0, len(statuses)-1)],
		Skills:         service.ParseSkills(strings.Join(skills, ",")),
		Bio:            f.faker.HackerPhrase(),
		GithubUsername: strings.ToLower(f.faker.Username()),
		Social: &models.Social{
			Twitter:  "https://twitter.com/" + strings.ToLower(f.faker.Username()),
			Linkedin: "https://linkedin.com/in/" + strings.ToLower(f.faker.Username()),
		},
		Experience: []models.Experience{},
		Education:  []models.Education{},
		Version:    1,
	}

	// Oldest first so front-insertion leaves the newest entry on top.
	for i := 0; i < f.faker.Number(1, 3); i++ {
		from := f.faker.DateRange(time.Now().AddDate(-10, 0, 0), time.Now().AddDate(-1, 0, 0)).UTC()
		to := from.AddDate(f.faker.Number(1, 3), 0, 0)
		profile.AddExperience(models.Experience{
			ID:          uuid.NewString(),
			Title:       f.faker.JobTitle(),
			Company:     f.faker.Company(),
			Location:    f.faker.City(),
			From:        from,
			To:          &to,
			Current:     i == 0 && f.faker.Bool(),
			Description: f.faker.Sentence(12),
		})
	}

	from := f.faker.DateRange(time.Now().AddDate(-15, 0, 0), time.Now().AddDate(-10, 0, 0)).UTC()
	to := from.AddDate(4, 0, 0)
	profile.AddEducation(models.Education{
		ID:           uuid.NewString(),
		School:       f.faker.School(),
		Degree:       "Bachelor's",
		FieldOfStudy: "Computer Science",
		From:         from,
		To:           &to,
	})

	if err := f.db.Omit("User").Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildPost constructs a post for author without persisting it.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	return &models.Post{
		UserID:   author.ID,
		Text:     f.faker.Paragraph(1, f.faker.Number(1, 4), 10, "\n"),
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     f.pastDate(),
		Version:  1,
	}
}

// Engage adds likes and comments from a random subset of users to post.
func (f *Factory) Engage(post *models.Post, users []*models.User) {
	for _, u := range users {
		if u.ID != post.UserID && f.faker.Number(0, 2) == 0 && !post.LikedBy(u.ID) {
			post.AddLike(u.ID)
		}
	}

	for i := 0; i < f.faker.Number(0, 3) && len(users) > 0; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		c := models.NewComment(author, f.faker.Sentence(f.faker.Number(4, 14)))
		c.Date = post.Date.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour)
		post.AddComment(c)
	}
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}
