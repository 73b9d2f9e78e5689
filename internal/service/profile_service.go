package service

import (
	"context"
	"strings"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"github.com/google/uuid"
)

const noProfileMessage = "There is no profile for this user"

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// UpsertProfileInput carries the profile form. Empty fields leave the stored value untouched.
type UpsertProfileInput struct {
	UserID         uint   `json:"-"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GithubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// createProfileRules are the fields a new profile must carry.
type createProfileRules struct {
	Status string `json:"status" validate:"required" msg:"Status is required"`
	Skills string `json:"skills" validate:"required" msg:"Skills is required"`
}

type ExperienceInput struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description" validate:"required" msg:"Description is required"`
}

type EducationInput struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// ParseSkills splits a comma-delimited list, trimming entries and dropping empty ones.
func ParseSkills(raw string) []string {
	skills := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseRange ignores to when the entry is current.
func parseRange(from, to string, current bool) (time.Time, *time.Time, error) {
	start, err := ParseDate(from)
	if err != nil {
		return time.Time{}, nil, models.NewFieldError("from", "From date is invalid")
	}
	if current || strings.TrimSpace(to) == "" {
		return start, nil, nil
	}
	end, err := ParseDate(to)
	if err != nil {
		return time.Time{}, nil, models.NewFieldError("to", "To date is invalid")
	}
	return start, &end, nil
}

func (in UpsertProfileInput) normalize() UpsertProfileInput {
	for _, f := range []*string{
		&in.Company, &in.Website, &in.Location, &in.Bio, &in.Status, &in.GithubUsername,
		&in.Skills, &in.Youtube, &in.Twitter, &in.Facebook, &in.Linkedin, &in.Instagram,
	} {
		*f = strings.TrimSpace(*f)
	}
	return in
}

// applyTo merges the non-empty fields of in into p.
func (in UpsertProfileInput) applyTo(p *models.Profile) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.Status, in.Status)
	set(&p.GithubUsername, in.GithubUsername)
	if skills := ParseSkills(in.Skills); len(skills) > 0 {
		p.Skills = skills
	}

	if in.Youtube+in.Twitter+in.Facebook+in.Linkedin+in.Instagram == "" {
		return
	}
	if p.Social == nil {
		p.Social = &models.Social{}
	}
	set(&p.Social.Youtube, in.Youtube)
	set(&p.Social.Twitter, in.Twitter)
	set(&p.Social.Facebook, in.Facebook)
	set(&p.Social.Linkedin, in.Linkedin)
	set(&p.Social.Instagram, in.Instagram)
}

// GetMyProfile returns the requester's own profile.
func (s *ProfileService) GetMyProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError(noProfileMessage)
	}
	return profile, nil
}

// UpsertProfile creates the user's profile or merges the provided fields into it.
func (s *ProfileService) UpsertProfile(ctx context.Context, in UpsertProfileInput) (*models.Profile, error) {
	in = in.normalize()

	existing, err := s.profileRepo.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := validation.Struct(createProfileRules{
			Status: in.Status,
			Skills: strings.Join(ParseSkills(in.Skills), ","),
		}); err != nil {
			return nil, err
		}
		profile := &models.Profile{UserID: in.UserID}
		in.applyTo(profile)

		err := s.profileRepo.Create(ctx, profile)
		if err == nil {
			return s.GetMyProfile(ctx, in.UserID)
		}
		// Lost a create race; merge into the winner instead.
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}
	}

	return s.profileRepo.Mutate(ctx, in.UserID, func(p *models.Profile) error {
		if err := auth.Authorize(in.UserID, p.UserID, "User not authorized"); err != nil {
			return err
		}
		in.applyTo(p)
		return nil
	})
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx)
}

func (s *ProfileService) GetProfileByUser(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("Profile not found")
	}
	return profile, nil
}

// AddExperience front-inserts a job history entry.
func (s *ProfileService) AddExperience(ctx context.Context, userID uint, in ExperienceInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	entry := models.Experience{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	return s.profileRepo.Mutate(ctx, userID, func(p *models.Profile) error {
		if err := auth.Authorize(userID, p.UserID, "User not authorized"); err != nil {
			return err
		}
		p.AddExperience(entry)
		return nil
	})
}

// DeleteExperience removes exactly the entry with expID.
func (s *ProfileService) DeleteExperience(ctx context.Context, userID uint, expID string) (*models.Profile, error) {
	return s.profileRepo.Mutate(ctx, userID, func(p *models.Profile) error {
		if err := auth.Authorize(userID, p.UserID, "User not authorized"); err != nil {
			return err
		}
		if !p.RemoveExperience(expID) {
			return models.NewNotFoundError("Experience not found")
		}
		return nil
	})
}

// AddEducation front-inserts a school history entry.
func (s *ProfileService) AddEducation(ctx context.Context, userID uint, in EducationInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To, in.Current)
	if err != nil {
		return nil, err
	}

	entry := models.Education{
		ID:           uuid.NewString(),
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	return s.profileRepo.Mutate(ctx, userID, func(p *models.Profile) error {
		if err := auth.Authorize(userID, p.UserID, "User not authorized"); err != nil {
			return err
		}
		p.AddEducation(entry)
		return nil
	})
}

// DeleteEducation removes exactly the entry with eduID.
func (s *ProfileService) DeleteEducation(ctx context.Context, userID uint, eduID string) (*models.Profile, error) {
	return s.profileRepo.Mutate(ctx, userID, func(p *models.Profile) error {
		if err := auth.Authorize(userID, p.UserID, "User not authorized"); err != nil {
			return err
		}
		if !p.RemoveEducation(eduID) {
			return models.NewNotFoundError("Education not found")
		}
		return nil
	})
}
