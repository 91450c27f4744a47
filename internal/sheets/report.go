// Package sheets publishes read-only reports (registrations and heat
// assignments) to a Google spreadsheet so organizers can watch the state of a
// competition without touching the database.
package sheets

import (
	"fmt"

	"swim-engine/internal/models"
	"swim-engine/internal/swimtime"
)

const (
	registrationsSheet = "Заявки"
	heatsSheet         = "Заплывы"
)

// PublishRegistrations rewrites the registrations sheet with one row per
// participant.
func (c *Client) PublishRegistrations(competition *models.Competition, registrations []*models.TeamRegistration) error {
	rows := [][]interface{}{
		{"Соревнование", competition.Title},
		{},
		{"Команда", "Статус", "Фамилия", "Имя", "Отчество", "Дата рождения", "Дистанции"},
	}
	for _, reg := range registrations {
		if reg.IsDeleted {
			continue
		}
		name := reg.DisplayTeamName()
		for _, p := range reg.Participants {
			birth := ""
			if p.BirthDate != nil {
				birth = p.BirthDate.Format("02.01.2006")
			}
			rows = append(rows, []interface{}{
				name, reg.Status, p.LastName, p.FirstName, p.MiddleName, birth, p.Distance,
			})
		}
		if len(reg.Participants) == 0 {
			rows = append(rows, []interface{}{name, reg.Status})
		}
	}
	if err := c.clearRange(registrationsSheet); err != nil {
		return fmt.Errorf("clear %s: %w", registrationsSheet, err)
	}
	return c.writeRows(registrationsSheet, rows)
}

// PublishHeats rewrites the heats sheet with the current lane assignments.
// Lanes without a participant are listed as free.
func (c *Client) PublishHeats(competition *models.Competition, heats []*models.Heat, names map[int64]string) error {
	rows := [][]interface{}{
		{"Соревнование", competition.Title},
		{},
		{"Сессия", "Дистанция", "Категория", "Заплыв", "Дорожка", "Участник", "Заявочное время"},
	}
	for _, heat := range heats {
		for _, lane := range heat.Lanes {
			who := "—"
			if lane.ParticipantID != nil {
				if n, ok := names[*lane.ParticipantID]; ok {
					who = n
				}
			}
			seed := lane.SeedTimeText
			if seed == "" && lane.SeedTimeMs != nil {
				seed = swimtime.FormatMillis(*lane.SeedTimeMs)
			}
			rows = append(rows, []interface{}{
				heat.SessionName, heat.Distance, heat.AgeCategory,
				heat.HeatNumber, lane.LaneNumber, who, seed,
			})
		}
	}
	if err := c.clearRange(heatsSheet); err != nil {
		return fmt.Errorf("clear %s: %w", heatsSheet, err)
	}
	return c.writeRows(heatsSheet, rows)
}
