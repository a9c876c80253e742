package models

import (
	"time"
)

// ChallengeStatus represents the lifecycle state of a challenge
type ChallengeStatus string

const (
	StatusOpen      ChallengeStatus = "open"
	StatusOngoing   ChallengeStatus = "ongoing"
	StatusCompleted ChallengeStatus = "completed"
)

// IsValid reports whether the status is one of the known lifecycle states
func (s ChallengeStatus) IsValid() bool {
	return s == StatusOpen || s == StatusOngoing || s == StatusCompleted
}

// IsTerminal returns true once a challenge can no longer be joined
func (s ChallengeStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// SeniorityLevel is a required experience level for a challenge
type SeniorityLevel string

const (
	SeniorityJunior       SeniorityLevel = "junior"
	SeniorityIntermediate SeniorityLevel = "intermediate"
	SenioritySenior       SeniorityLevel = "senior"
)

// Category classifies the kind of work a challenge asks for
type Category string

const (
	CategoryDesign    Category = "design"
	CategoryFrontend  Category = "frontend"
	CategoryBackend   Category = "backend"
	CategoryFullstack Category = "fullstack"
)

// Challenge represents a time-boxed task with a deadline and participant list
type Challenge struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Deadline            time.Time        `json:"deadline"`
	MoneyPrize          string           `json:"money_prize"`
	ContactEmail        string           `json:"contact_email"`
	ProjectBrief        string           `json:"project_brief"`
	ProjectDescription  []string         `json:"project_description"`
	ProjectRequirements []string         `json:"project_requirements"`
	Deliverables        []string         `json:"deliverables"`
	CreatedBy           string           `json:"created_by"`
	SeniorityLevel      []SeniorityLevel `json:"seniority_level"`
	Category            Category         `json:"category"`
	SkillsNeeded        []string         `json:"skills_needed"`
	Participants        []string         `json:"participants"`
	Status              ChallengeStatus  `json:"status"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// HasParticipant reports whether the given user already joined the challenge
func (c *Challenge) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsPastDeadline checks if the deadline has elapsed
func (c *Challenge) IsPastDeadline() bool {
	return time.Now().After(c.Deadline)
}

// CreateChallengeRequest is the payload for creating a challenge
type CreateChallengeRequest struct {
	Title               string           `json:"title" validate:"required"`
	Deadline            time.Time        `json:"deadline" validate:"required"`
	MoneyPrize          string           `json:"money_prize" validate:"required"`
	ContactEmail        string           `json:"contact_email" validate:"required,email"`
	ProjectBrief        string           `json:"project_brief" validate:"required"`
	ProjectDescription  []string         `json:"project_description" validate:"dive,max=255"`
	ProjectRequirements []string         `json:"project_requirements" validate:"dive,max=255"`
	Deliverables        []string         `json:"deliverables" validate:"dive,max=255"`
	SeniorityLevel      []SeniorityLevel `json:"seniority_level" validate:"min=1,max=3,dive,oneof=junior intermediate senior"`
	Category            Category         `json:"category" validate:"required,oneof=design frontend backend fullstack"`
	SkillsNeeded        []string         `json:"skills_needed" validate:"min=1,dive,required"`
}

// IsEmpty reports whether the request carries no data at all
func (r *CreateChallengeRequest) IsEmpty() bool {
	return r.Title == "" && r.Deadline.IsZero() && r.MoneyPrize == "" &&
		r.ContactEmail == "" && r.ProjectBrief == "" &&
		len(r.ProjectDescription) == 0 && len(r.ProjectRequirements) == 0 &&
		len(r.Deliverables) == 0 && len(r.SeniorityLevel) == 0 &&
		r.Category == "" && len(r.SkillsNeeded) == 0
}

// UpdateChallengeRequest is a partial update; nil fields are left untouched.
// Identifier and creator are never updatable.
type UpdateChallengeRequest struct {
	Title               *string           `json:"title,omitempty" validate:"omitempty,min=1"`
	Deadline            *time.Time        `json:"deadline,omitempty"`
	MoneyPrize          *string           `json:"money_prize,omitempty"`
	ContactEmail        *string           `json:"contact_email,omitempty" validate:"omitempty,email"`
	ProjectBrief        *string           `json:"project_brief,omitempty"`
	ProjectDescription  []string          `json:"project_description,omitempty" validate:"omitempty,dive,max=255"`
	ProjectRequirements []string          `json:"project_requirements,omitempty" validate:"omitempty,dive,max=255"`
	Deliverables        []string          `json:"deliverables,omitempty" validate:"omitempty,dive,max=255"`
	SeniorityLevel      []SeniorityLevel  `json:"seniority_level,omitempty" validate:"omitempty,min=1,max=3,dive,oneof=junior intermediate senior"`
	Category            *Category         `json:"category,omitempty" validate:"omitempty,oneof=design frontend backend fullstack"`
	SkillsNeeded        []string          `json:"skills_needed,omitempty" validate:"omitempty,min=1,dive,required"`
}

// IsEmpty reports whether the update carries no field at all
func (u *UpdateChallengeRequest) IsEmpty() bool {
	return u.Title == nil && u.Deadline == nil && u.MoneyPrize == nil &&
		u.ContactEmail == nil && u.ProjectBrief == nil &&
		u.ProjectDescription == nil && u.ProjectRequirements == nil &&
		u.Deliverables == nil && u.SeniorityLevel == nil &&
		u.Category == nil && u.SkillsNeeded == nil
}

// ListFilters defines filters for listing challenges
type ListFilters struct {
	Page   int
	Limit  int
	Status ChallengeStatus
}

// Offset returns the row offset implied by page and limit
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination carries page metadata alongside a listing
type Pagination struct {
	Page            int `json:"page"`
	Limit           int `json:"limit"`
	TotalChallenges int `json:"total_challenges"`
	TotalPages      int `json:"total_pages"`
}

// PaginatedChallenges is one page of a challenge listing
type PaginatedChallenges struct {
	Data       []*Challenge `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// ParticipantDetail is the projection of a participant returned to clients
type ParticipantDetail struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ParticipantPage is one page of a challenge's participant list
type ParticipantPage struct {
	Participants      []ParticipantDetail `json:"participants"`
	TotalParticipants int                 `json:"total_participants"`
}
