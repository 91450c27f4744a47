// Package server exposes the engine over HTTP: LENEX and CSV import/export
// plus seeding recalculation. All mutating routes require the admin token;
// the registrations CSV additionally accepts a signed link token so the
// spreadsheet can be shared without sharing the admin secret.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"swim-engine/internal/bests"
	"swim-engine/internal/config"
	"swim-engine/internal/lenex"
	"swim-engine/internal/models"
	"swim-engine/internal/notify"
	"swim-engine/internal/points"
	"swim-engine/internal/results"
	"swim-engine/internal/seeding"
	"swim-engine/internal/sheets"
	"swim-engine/internal/storage"
	"swim-engine/internal/util"
)

type deps struct {
	cfg      config.Config
	store    *storage.Store
	files    *storage.Files
	calc     *points.Calculator
	notifier *notify.Notifier
	reporter *sheets.Client
}

func New(
	cfg config.Config,
	store *storage.Store,
	files *storage.Files,
	calc *points.Calculator,
	notifier *notify.Notifier,
	reporter *sheets.Client,
) *http.Server {
	d := &deps{cfg: cfg, store: store, files: files, calc: calc, notifier: notifier, reporter: reporter}

	mux := http.NewServeMux()
	mux.HandleFunc("/data/import/lenex", d.admin(d.handleLenexImport))
	mux.HandleFunc("/data/export/lenex", d.admin(d.handleLenexExport))
	mux.HandleFunc("/data/import/csv", d.admin(d.handleCSVImport))
	mux.HandleFunc("/data/export/csv", d.admin(d.handleCSVExport))
	mux.HandleFunc("/seeding/recalculate", d.admin(d.handleSeeding))
	mux.HandleFunc("/export/registrations.csv", d.handleSignedRegistrationsCSV)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

// admin guards a route with the X-Admin-Token header (or a Bearer token).
func (d *deps) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token != d.cfg.AdminToken {
			http.Error(w, "invalid admin token", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func competitionID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("competition_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// handleLenexImport accepts a LENEX XML body and merges it into the store in
// one transaction.
func (d *deps) handleLenexImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var competition *models.Competition
	err = d.store.RunInTx(r.Context(), func(ctx context.Context, tx *storage.Store) error {
		competition, err = lenex.Import(ctx, tx, d.files, body)
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lenex.ErrFormat) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	go d.afterImport(competition, "LENEX")

	writeJSON(w, map[string]any{
		"ok":             true,
		"competition_id": competition.ID,
		"slug":           competition.Slug,
		"ts":             util.NowISO(),
	})
}

func (d *deps) handleLenexExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}
	id, ok := competitionID(r)
	if !ok {
		http.Error(w, "competition_id required", http.StatusBadRequest)
		return
	}
	xmlBytes, err := lenex.Export(r.Context(), d.store, d.files, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="competition_`+strconv.FormatInt(id, 10)+`.lef"`)
	_, _ = w.Write(xmlBytes)
}

// handleCSVImport dispatches on type=registrations|results. Result CSVs run
// the persister and the personal-best tracker inside the same transaction as
// the import itself.
func (d *deps) handleCSVImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	id, ok := competitionID(r)
	if !ok {
		http.Error(w, "competition_id required", http.StatusBadRequest)
		return
	}
	kind := r.URL.Query().Get("type")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var competition *models.Competition
	switch kind {
	case "registrations":
		err = d.store.RunInTx(r.Context(), func(ctx context.Context, tx *storage.Store) error {
			competition, err = lenex.ImportRegistrationsCSV(ctx, tx, id, body)
			return err
		})
	case "results":
		err = d.store.RunInTx(r.Context(), func(ctx context.Context, tx *storage.Store) error {
			persister := results.NewPersister(tx, d.calc, bests.NewTracker(tx))
			competition, err = lenex.ImportResultsCSV(ctx, tx, d.files, persister, id, body)
			return err
		})
	default:
		http.Error(w, "type must be registrations or results", http.StatusBadRequest)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lenex.ErrFormat) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	go d.afterImport(competition, "CSV ("+kind+")")

	writeJSON(w, map[string]any{
		"ok":             true,
		"competition_id": competition.ID,
		"slug":           competition.Slug,
		"type":           kind,
		"ts":             util.NowISO(),
	})
}

func (d *deps) handleCSVExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}
	id, ok := competitionID(r)
	if !ok {
		http.Error(w, "competition_id required", http.StatusBadRequest)
		return
	}
	var (
		data []byte
		err  error
		name string
	)
	switch kind := r.URL.Query().Get("type"); kind {
	case "registrations":
		data, err = lenex.ExportRegistrationsCSV(r.Context(), d.store, id)
		name = "registrations"
	case "results":
		data, err = lenex.ExportResultsCSV(r.Context(), d.store, d.files, id)
		name = "results"
	default:
		http.Error(w, "type must be registrations or results", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`_`+strconv.FormatInt(id, 10)+`.csv"`)
	_, _ = w.Write(data)
}

// handleSeeding rebuilds the heat assignments for the scoped events. The
// whole recalculation, delete plus insert, runs in one transaction.
func (d *deps) handleSeeding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	id, ok := competitionID(r)
	if !ok {
		http.Error(w, "competition_id required", http.StatusBadRequest)
		return
	}
	laneCount := d.cfg.DefaultLaneCount
	if raw := r.URL.Query().Get("lanes"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			http.Error(w, "lanes must be a positive integer", http.StatusBadRequest)
			return
		}
		laneCount = v
	}
	opts := seeding.Options{
		Session:   r.URL.Query().Get("session"),
		Distance:  r.URL.Query().Get("distance"),
		LaneCount: laneCount,
	}

	var summary *seeding.Summary
	err := d.store.RunInTx(r.Context(), func(ctx context.Context, tx *storage.Store) error {
		var err error
		summary, err = seeding.NewEngine(tx).Recalculate(ctx, id, opts)
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, seeding.ErrLaneCount) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	go d.afterSeeding(id, summary)

	writeJSON(w, summary)
}

// handleSignedRegistrationsCSV serves the registrations CSV behind an HMAC
// link token, so the export can be linked from the spreadsheet.
func (d *deps) handleSignedRegistrationsCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := competitionID(r)
	token := r.URL.Query().Get("token")
	if !ok || token == "" {
		http.Error(w, "competition_id and token required", http.StatusBadRequest)
		return
	}
	expected := util.HMACSHA256Hex(d.cfg.AdminToken, "export:"+strconv.FormatInt(id, 10))
	if token != expected {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}
	data, err := lenex.ExportRegistrationsCSV(r.Context(), d.store, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="registrations_`+strconv.FormatInt(id, 10)+`.csv"`)
	_, _ = w.Write(data)
}

// afterImport pushes the Telegram notification and refreshes the
// registrations sheet. Both are best-effort.
func (d *deps) afterImport(competition *models.Competition, source string) {
	d.notifier.ImportDone(competition, source)
	if d.reporter == nil {
		return
	}
	ctx := context.Background()
	registrations, err := d.store.RegistrationsWithParticipants(ctx, competition.ID)
	if err != nil {
		log.Printf("sheets report: %v", err)
		return
	}
	if err := d.reporter.PublishRegistrations(competition, registrations); err != nil {
		log.Printf("sheets report: %v", err)
	}
}

// afterSeeding pushes the Telegram notification and refreshes the heats
// sheet.
func (d *deps) afterSeeding(id int64, summary *seeding.Summary) {
	d.notifier.SeedingDone(summary)
	if d.reporter == nil {
		return
	}
	ctx := context.Background()
	competition, err := d.store.CompetitionByID(ctx, id)
	if err != nil || competition == nil {
		log.Printf("sheets report: competition %d: %v", id, err)
		return
	}
	heats, err := d.store.HeatsForCompetition(ctx, id)
	if err != nil {
		log.Printf("sheets report: %v", err)
		return
	}
	registrations, err := d.store.RegistrationsWithParticipants(ctx, id)
	if err != nil {
		log.Printf("sheets report: %v", err)
		return
	}
	names := map[int64]string{}
	for _, reg := range registrations {
		for _, p := range reg.Participants {
			names[p.ID] = strings.TrimSpace(p.LastName + " " + p.FirstName)
		}
	}
	if err := d.reporter.PublishHeats(competition, heats, names); err != nil {
		log.Printf("sheets report: %v", err)
	}
}
