package results

import (
	"context"
	"strings"
	"testing"
	"time"

	"swim-engine/internal/bests"
	"swim-engine/internal/models"
	"swim-engine/internal/points"
)

type memStore struct {
	users   []*models.User
	results []*models.SwimResult
	pbs     map[bests.Key]*models.PersonalBest
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{pbs: map[bests.Key]*models.PersonalBest{}, nextID: 1}
}

func (m *memStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) UserByFullName(_ context.Context, fullName string, birthDate *time.Time) (*models.User, error) {
	for _, u := range m.users {
		if !strings.EqualFold(u.FullName, fullName) {
			continue
		}
		if birthDate != nil && (u.BirthDate == nil || !u.BirthDate.Equal(*birthDate)) {
			continue
		}
		return u, nil
	}
	return nil, nil
}

func (m *memStore) UserByUsernameSubstring(_ context.Context, fragment string) (*models.User, error) {
	needle := strings.ToLower(fragment)
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) ResultByAttempt(_ context.Context, userID, competitionID int64, eventCode, stage, heat string) (*models.SwimResult, error) {
	for _, r := range m.results {
		if r.UserID == userID && r.CompetitionID == competitionID &&
			r.EventCode == eventCode && r.Stage == stage && r.Heat == heat {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateResult(_ context.Context, r *models.SwimResult) error {
	r.ID = m.nextID
	m.nextID++
	m.results = append(m.results, r)
	return nil
}

func (m *memStore) UpdateResult(_ context.Context, _ *models.SwimResult) error { return nil }

func (m *memStore) ResultsForKey(_ context.Context, key bests.Key) ([]*models.SwimResult, error) {
	var out []*models.SwimResult
	for _, r := range m.results {
		if r.UserID == key.UserID && r.EventCode == key.EventCode && r.Course == key.Course {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) UpdateResultBestFlag(_ context.Context, resultID int64, isBest bool) error {
	for _, r := range m.results {
		if r.ID == resultID {
			r.IsPersonalBest = isBest
		}
	}
	return nil
}

func (m *memStore) PersonalBestForKey(_ context.Context, key bests.Key) (*models.PersonalBest, error) {
	return m.pbs[key], nil
}

func (m *memStore) UpsertPersonalBest(_ context.Context, pb *models.PersonalBest) error {
	if pb.ID == 0 {
		pb.ID = m.nextID
		m.nextID++
	}
	m.pbs[bests.Key{UserID: pb.UserID, EventCode: pb.EventCode, Course: pb.Course}] = pb
	return nil
}

func (m *memStore) DeletePersonalBest(_ context.Context, id int64) error {
	for key, pb := range m.pbs {
		if pb.ID == id {
			delete(m.pbs, key)
		}
	}
	return nil
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	csvData := `full_name,distance,time,course,stroke
Петров Пётр,100 м,1:02.50,LCM,вольный стиль
Сидорова Анна,50 м,not-a-time,LCM,брасс
,100 м,1:10.00,LCM,кроль
Кузнецов Олег,,1:10.00,LCM,кроль
Иванова Мария,200 м,2:30.00,SCM,на спине
`
	rows, err := ParseCSV(csvData)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("%d rows survived, want 2", len(rows))
	}
	if rows[0].FullName != "Петров Пётр" || rows[1].FullName != "Иванова Мария" {
		t.Errorf("wrong rows kept: %q, %q", rows[0].FullName, rows[1].FullName)
	}
	if rows[1].Course != "SCM" {
		t.Errorf("course = %q", rows[1].Course)
	}
}

func TestParseCSVColumnAliases(t *testing.T) {
	csvData := `name,event,swim_time,pool,sex,dob,style,race_date,round,run,rank
Петров Пётр,100 м кроль,1:02.50,50m,M,2008-04-12,вольный стиль,2026-06-01,финал,2,1
`
	rows, err := ParseCSV(csvData)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.DistanceLabel != "100 м кроль" || row.TimeText != "1:02.50" {
		t.Errorf("row = %+v", row)
	}
	if row.Course != "LCM" {
		t.Errorf("course = %q", row.Course)
	}
	if row.BirthDate == nil || row.SwimDate == nil {
		t.Error("dates not picked up from aliases")
	}
	if row.Stage != "финал" || row.Heat != "2" {
		t.Errorf("stage/heat = %q/%q", row.Stage, row.Heat)
	}
	if row.Place == nil || *row.Place != 1 {
		t.Errorf("place = %v", row.Place)
	}
}

func TestParseCSVSplitNameColumns(t *testing.T) {
	csvData := "last_name,first_name,middle_name,distance,time\nПетров,Пётр,Иванович,100 кроль,1:05.0\n"
	rows, err := ParseCSV(csvData)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].FullName != "Петров Пётр Иванович" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestDecodeCSV(t *testing.T) {
	bom := append([]byte("\xef\xbb\xbf"), []byte("a,b\n")...)
	decoded, err := DecodeCSV(bom)
	if err != nil || decoded != "a,b\n" {
		t.Errorf("BOM handling: (%q, %v)", decoded, err)
	}
	if _, err := DecodeCSV([]byte{0xff, 0xfe, 0x41}); err == nil {
		t.Error("non-UTF-8 input must be rejected")
	}
}

func TestResolveUserPriority(t *testing.T) {
	ctx := context.Background()
	birth := time.Date(2008, 4, 12, 0, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.users = []*models.User{
		{ID: 1, Username: "petrov", Email: "petrov@example.com", FullName: "Петров Пётр"},
		{ID: 2, Username: "other", Email: "someone@example.com", FullName: "Петров Пётр", BirthDate: &birth},
		{ID: 3, Username: "contains-petrova-inside", Email: "x@example.com", FullName: "Другое Имя"},
	}

	// Username beats everything.
	user, err := ResolveUser(ctx, store, &Row{Username: "petrov", Email: "someone@example.com", FullName: "Другое Имя"})
	if err != nil || user == nil || user.ID != 1 {
		t.Fatalf("username resolution gave %+v, %v", user, err)
	}

	// Email is next.
	user, _ = ResolveUser(ctx, store, &Row{Email: "someone@example.com", FullName: "Петров Пётр"})
	if user == nil || user.ID != 2 {
		t.Fatalf("email resolution gave %+v", user)
	}

	// Full name narrows by birth date when present.
	user, _ = ResolveUser(ctx, store, &Row{FullName: "Петров  Пётр", BirthDate: &birth})
	if user == nil || user.ID != 2 {
		t.Fatalf("full name + birth resolution gave %+v", user)
	}

	// Unknown row resolves to nothing.
	user, _ = ResolveUser(ctx, store, &Row{FullName: "Никто Такой"})
	if user != nil {
		t.Fatalf("unexpected match: %+v", user)
	}

	// Username substring is the last resort.
	user, _ = ResolveUser(ctx, store, &Row{FullName: "petrova"})
	if user == nil || user.ID != 3 {
		t.Fatalf("substring resolution gave %+v", user)
	}
}

func TestPersistUpsertsAndTracksBests(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.users = []*models.User{
		{ID: 1, Username: "petrov", Email: "petrov@example.com", FullName: "Петров Пётр", Gender: "M"},
	}
	competition := &models.Competition{ID: 10, Slug: "meet", Title: "Meet"}
	persister := NewPersister(store, points.NewCalculator(nil), bests.NewTracker(store))

	rows := []*Row{
		{FullName: "Петров Пётр", DistanceLabel: "100 м", Stroke: "вольный стиль", TimeText: "1:01.2", Course: "LCM", Stage: "предварительный", Heat: "1"},
		{FullName: "Петров Пётр", DistanceLabel: "100 м", Stroke: "вольный стиль", TimeText: "1:00.5", Course: "LCM", Stage: "финал", Heat: "1"},
		{FullName: "Не Найден", DistanceLabel: "100 м", Stroke: "кроль", TimeText: "1:10.0", Course: "LCM"},
	}
	stored, err := persister.Persist(ctx, competition, rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("%d results stored, want 2 (unknown athlete skipped)", len(stored))
	}
	for _, r := range stored {
		if r.EventCode != "100FR" {
			t.Errorf("event code = %q", r.EventCode)
		}
		if r.FinaPoints == nil || *r.FinaPoints <= 0 {
			t.Errorf("points not computed: %v", r.FinaPoints)
		}
	}

	key := bests.Key{UserID: 1, EventCode: "100FR", Course: "LCM"}
	pb := store.pbs[key]
	if pb == nil || pb.TimeMs != 60500 {
		t.Fatalf("personal best = %+v, want 60500", pb)
	}
	flagged := 0
	for _, r := range store.results {
		if r.IsPersonalBest {
			flagged++
			if r.TimeMs != 60500 {
				t.Errorf("flag on %d ms", r.TimeMs)
			}
		}
	}
	if flagged != 1 {
		t.Errorf("%d flagged results, want 1", flagged)
	}

	// Same (user, competition, event, stage, heat) updates in place.
	again := []*Row{
		{FullName: "Петров Пётр", DistanceLabel: "100 м", Stroke: "вольный стиль", TimeText: "59.9", Course: "LCM", Stage: "финал", Heat: "1"},
	}
	if _, err := persister.Persist(ctx, competition, again); err != nil {
		t.Fatal(err)
	}
	if len(store.results) != 2 {
		t.Fatalf("upsert duplicated the attempt: %d results", len(store.results))
	}
	if pb := store.pbs[key]; pb == nil || pb.TimeMs != 59900 {
		t.Errorf("personal best not refreshed: %+v", pb)
	}
}
