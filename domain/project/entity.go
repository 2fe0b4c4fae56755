package project

import (
	"slices"
	"time"
)

// Project groups tasks under a single head approver.
type Project struct {
	ID             string    `gorm:"primaryKey;type:text"`
	WorkspaceID    string    `gorm:"type:text;index"`
	Name           string    `gorm:"type:text;not null"`
	Description    string    `gorm:"type:text"`
	HeadID         string    `gorm:"type:text;not null;index"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        *time.Time
	TotalTasks     int      `gorm:"not null;default:0"`
	CompletedTasks int      `gorm:"not null;default:0"`
	Members        []Member `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedBy      string   `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for the Project entity.
func (Project) TableName() string {
	return "projects"
}

// Member is a non-head collaborator of a project.
type Member struct {
	ProjectID string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"primaryKey;type:text"`
	AddedBy   string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Member entity.
func (Member) TableName() string {
	return "project_members"
}

// MemberIDs returns the member user ids.
func (p *Project) MemberIDs() []string {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// Access is the slice of a project the access resolver and the date
// validator need. It is what gets cached.
type Access struct {
	ProjectID string     `json:"project_id"`
	HeadID    string     `json:"head_id"`
	MemberIDs []string   `json:"member_ids"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Access returns the access view of p.
func (p *Project) Access() Access {
	return Access{
		ProjectID: p.ID,
		HeadID:    p.HeadID,
		MemberIDs: p.MemberIDs(),
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
	}
}

// IsParticipant reports whether userID is the head or a member, the only
// users a task in the project may be assigned to.
func (a Access) IsParticipant(userID string) bool {
	return userID != "" && (a.HeadID == userID || slices.Contains(a.MemberIDs, userID))
}

// Counters are the aggregate task counts of a project.
type Counters struct {
	ProjectID      string `json:"project_id"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}
