// Package models holds the persisted entities of the results and seeding
// engine. Relationships are explicit foreign-key fields; nothing here relies
// on lazy back-references.
package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	Email     string     `bun:"email,notnull,unique" json:"email"`
	Username  string     `bun:"username,notnull,unique" json:"username"`
	FullName  string     `bun:"full_name,notnull,default:''" json:"fullName"`
	Gender    string     `bun:"gender,notnull,default:''" json:"gender"`
	BirthDate *time.Time `bun:"birth_date,type:date" json:"birthDate,omitempty"`
}

type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:c"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	Title     string     `bun:"title,notnull" json:"title"`
	Slug      string     `bun:"slug,notnull,unique" json:"slug"`
	City      string     `bun:"city,notnull,default:''" json:"city"`
	PoolName  string     `bun:"pool_name,notnull,default:''" json:"poolName"`
	Address   string     `bun:"address,notnull,default:''" json:"address"`
	Stage     string     `bun:"stage,notnull,default:''" json:"stage"`
	StartDate time.Time  `bun:"start_date,notnull" json:"startDate"`
	EndDate   *time.Time `bun:"end_date" json:"endDate,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

type TeamRegistration struct {
	bun.BaseModel `bun:"table:registrations,alias:tr"`

	ID                  int64     `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID       int64     `bun:"competition_id,notnull" json:"competitionID"`
	TeamName            string    `bun:"team_name,notnull,default:''" json:"teamName"`
	RepresentativeName  string    `bun:"representative_name,notnull,default:''" json:"representativeName"`
	RepresentativePhone string    `bun:"representative_phone,notnull,default:''" json:"representativePhone"`
	RepresentativeEmail string    `bun:"representative_email,notnull,default:''" json:"representativeEmail"`
	Status              string    `bun:"status,notnull,default:'pending'" json:"status"`
	IsDeleted           bool      `bun:"is_deleted,notnull,default:false" json:"isDeleted"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`

	Participants []*Participant `bun:"rel:has-many,join:id=team_id" json:"participants,omitempty"`
}

// DisplayTeamName falls back to the representative for single-athlete
// registrations that never filled in a team name.
func (r *TeamRegistration) DisplayTeamName() string {
	if r.TeamName != "" {
		return r.TeamName
	}
	if r.RepresentativeName != "" {
		return r.RepresentativeName
	}
	return fmt.Sprintf("Одиночный участник #%d", r.ID)
}

type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	TeamID      int64      `bun:"team_id,notnull" json:"teamID"`
	LastName    string     `bun:"last_name,notnull" json:"lastName"`
	FirstName   string     `bun:"first_name,notnull" json:"firstName"`
	MiddleName  string     `bun:"middle_name,notnull,default:''" json:"middleName"`
	Gender      string     `bun:"gender,notnull,default:'U'" json:"gender"`
	BirthDate   *time.Time `bun:"birth_date,type:date" json:"birthDate,omitempty"`
	AgeCategory string     `bun:"age_category,notnull,default:''" json:"ageCategory"`
	Distance    string     `bun:"distance,notnull,default:''" json:"distance"`

	Team *TeamRegistration `bun:"rel:belongs-to,join:team_id=id" json:"-"`
}

// SwimResult is unique per (user, competition, event, stage, heat);
// re-importing the same attempt updates the row in place.
type SwimResult struct {
	bun.BaseModel `bun:"table:swim_results,alias:sr"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID         int64      `bun:"user_id,notnull" json:"userID"`
	CompetitionID  int64      `bun:"competition_id,notnull" json:"competitionID"`
	EventCode      string     `bun:"event_code,notnull" json:"eventCode"`
	DistanceLabel  string     `bun:"distance_label,notnull" json:"distanceLabel"`
	Stroke         string     `bun:"stroke,notnull,default:''" json:"stroke"`
	Course         string     `bun:"course,notnull,default:'LCM'" json:"course"`
	TimeMs         int        `bun:"time_ms,notnull" json:"timeMs"`
	TimeText       string     `bun:"time_text,notnull" json:"timeText"`
	FinaPoints     *int       `bun:"fina_points" json:"finaPoints,omitempty"`
	SwimDate       *time.Time `bun:"swim_date,type:date" json:"swimDate,omitempty"`
	Stage          string     `bun:"stage,notnull,default:''" json:"stage"`
	Heat           string     `bun:"heat,notnull,default:''" json:"heat"`
	Place          *int       `bun:"place" json:"place,omitempty"`
	IsPersonalBest bool       `bun:"is_personal_best,notnull,default:false" json:"isPersonalBest"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// PersonalBest denormalizes the current best SwimResult per
// (user, event, course). It is written only by the bests tracker.
type PersonalBest struct {
	bun.BaseModel `bun:"table:personal_bests,alias:pb"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID     int64     `bun:"user_id,notnull" json:"userID"`
	EventCode  string    `bun:"event_code,notnull" json:"eventCode"`
	Course     string    `bun:"course,notnull" json:"course"`
	TimeMs     int       `bun:"time_ms,notnull" json:"timeMs"`
	TimeText   string    `bun:"time_text,notnull" json:"timeText"`
	FinaPoints *int      `bun:"fina_points" json:"finaPoints,omitempty"`
	ResultID   int64     `bun:"result_id,notnull" json:"resultID"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

type Heat struct {
	bun.BaseModel `bun:"table:heats,alias:h"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID int64     `bun:"competition_id,notnull" json:"competitionID"`
	SessionName   string    `bun:"session_name,notnull,default:''" json:"sessionName"`
	Distance      string    `bun:"distance,notnull" json:"distance"`
	AgeCategory   string    `bun:"age_category,notnull,default:''" json:"ageCategory"`
	HeatNumber    int       `bun:"heat_number,notnull" json:"heatNumber"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`

	Lanes []*Lane `bun:"rel:has-many,join:id=heat_id" json:"lanes,omitempty"`
}

type Lane struct {
	bun.BaseModel `bun:"table:lanes,alias:l"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	HeatID        int64  `bun:"heat_id,notnull" json:"heatID"`
	LaneNumber    int    `bun:"lane_number,notnull" json:"laneNumber"`
	ParticipantID *int64 `bun:"participant_id" json:"participantID,omitempty"`
	SeedTimeMs    *int   `bun:"seed_time_ms" json:"seedTimeMs,omitempty"`
	SeedTimeText  string `bun:"seed_time_text,notnull,default:''" json:"seedTimeText"`
}

type ResultFile struct {
	bun.BaseModel `bun:"table:result_files,alias:rf"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID int64     `bun:"competition_id,notnull" json:"competitionID"`
	Label         string    `bun:"label,notnull,default:''" json:"label"`
	Kind          string    `bun:"kind,notnull,default:'pdf'" json:"kind"`
	FilePath      string    `bun:"file_path,notnull" json:"filePath"`
	UploadedAt    time.Time `bun:"uploaded_at,notnull,default:current_timestamp" json:"uploadedAt"`
}
