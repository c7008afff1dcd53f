package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/constants"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/format"
	"kvk-ranker/internal/i18n"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/session"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

type kingdomView struct {
	domain.KingdomEntry
	Totals *totalsView `json:"totals,omitempty"`
}

type totalsView struct {
	Tier5Total     int64             `json:"t5"`
	Tier4Total     int64             `json:"t4"`
	Score          float64           `json:"score"`
	Tier5Formatted string            `json:"t5Formatted"`
	Tier4Formatted string            `json:"t4Formatted"`
	Fields         map[string]string `json:"fields"`
}

type sessionView struct {
	ID       string                `json:"id"`
	Lang     string                `json:"lang"`
	Weights  domain.ScoringWeights `json:"weights"`
	Kingdoms []kingdomView         `json:"kingdoms"`
}

func toKingdomView(e domain.KingdomEntry, w domain.ScoringWeights, f *format.Formatter) kingdomView {
	kv := kingdomView{KingdomEntry: e}
	if e.Reading == nil {
		return kv
	}
	totals := scoring.Score(e.Reading, w)
	fields := make(map[string]string)
	for _, d := range scoring.Breakdown(e.Reading, w) {
		fields[d.Field] = f.FullInt(d.Kills)
	}
	kv.Totals = &totalsView{
		Tier5Total:     totals.Tier5Total,
		Tier4Total:     totals.Tier4Total,
		Score:          totals.TotalScore,
		Tier5Formatted: f.FullInt(totals.Tier5Total),
		Tier4Formatted: f.FullInt(totals.Tier4Total),
		Fields:         fields,
	}
	return kv
}

func toSessionView(sess *session.Session) sessionView {
	lang := sess.Language()
	w := sess.Weights()
	f := format.New(lang)

	entries := sess.Entries()
	v := sessionView{
		ID:       sess.ID,
		Lang:     lang.String(),
		Weights:  w,
		Kingdoms: make([]kingdomView, 0, len(entries)),
	}
	for _, e := range entries {
		v.Kingdoms = append(v.Kingdoms, toKingdomView(e, w, f))
	}
	return v
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return &badRequest{reason: "invalid JSON body"}
	}
	return nil
}

func (s *KVKServer) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("sid"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// defaultLanguage prefers an explicit value, then the saved preference, then
// the request's Accept-Language, then the configured default.
func (s *KVKServer) defaultLanguage(ctx context.Context, r *http.Request, explicit string) language.Tag {
	if explicit != "" {
		return i18n.Match(explicit)
	}
	if p, err := s.prefs.Get(ctx, repository.PrefLanguage); err == nil && p.Value != "" {
		return i18n.Match(p.Value)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		return i18n.Match(al)
	}
	return i18n.Match(s.cfg.DefaultLang)
}

func (s *KVKServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lang string `json:"lang"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	sess, err := s.sessions.Create(s.defaultLanguage(r.Context(), r, req.Lang))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionView(sess))
}

func (s *KVKServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}

func (s *KVKServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *KVKServer) handleSetWeights(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req domain.ScoringWeights
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := sess.SetWeights(scoring.ClampWeights(req)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}

func (s *KVKServer) handleSetLocale(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Lang string `json:"lang"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lang := i18n.Match(req.Lang)
	sess.SetLanguage(lang)

	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()
	if err := s.prefs.Set(ctx, repository.PrefLanguage, lang.String()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to persist language preference")
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}

func (s *KVKServer) handleAddKingdom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := sess.AddKingdom()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toKingdomView(entry, sess.Weights(), format.New(sess.Language())))
}

func (s *KVKServer) handleRenameKingdom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kid := r.PathValue("kid")
	if err := sess.RenameKingdom(kid, req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := sess.Entry(kid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKingdomView(entry, sess.Weights(), format.New(sess.Language())))
}

func (s *KVKServer) handleRemoveKingdom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveKingdom(r.PathValue("kid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *KVKServer) handleResetReading(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	kid := r.PathValue("kid")
	if err := sess.ResetReading(kid); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := sess.Entry(kid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKingdomView(entry, sess.Weights(), format.New(sess.Language())))
}

// readImage accepts a multipart "file" field or a raw image body.
func readImage(w http.ResponseWriter, r *http.Request) (api.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)

	var (
		data []byte
		mime string
		err  error
	)
	if file, header, ferr := r.FormFile("file"); ferr == nil {
		defer file.Close()
		data, err = io.ReadAll(file)
		mime = header.Header.Get("Content-Type")
	} else if errors.Is(ferr, http.ErrNotMultipart) {
		data, err = io.ReadAll(r.Body)
		mime = r.Header.Get("Content-Type")
	} else {
		return api.Image{}, &badRequest{reason: "missing screenshot file"}
	}
	if err != nil {
		return api.Image{}, &badRequest{reason: "failed to read screenshot"}
	}
	if len(data) == 0 {
		return api.Image{}, &badRequest{reason: "empty screenshot"}
	}
	if mime == "application/octet-stream" {
		mime = ""
	}
	return api.Image{Data: data, MIMEType: mime}, nil
}

func (s *KVKServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	img, err := readImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.kingdomSvc.Upload(r.Context(), sess.ID, r.PathValue("kid"), img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKingdomView(entry, sess.Weights(), format.New(sess.Language())))
}

func (s *KVKServer) handleSaveAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.kingdomSvc.SaveAPIKey(r.Context(), req.Key); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rankingResponse struct {
	Champion domain.ScoredKingdom   `json:"champion"`
	Ranking  []domain.ScoredKingdom `json:"ranking"`
	Config   domain.ScoringWeights  `json:"config"`
	Summary  domain.GlobalSummary   `json:"summary"`
	Display  map[string]string      `json:"display"`
}

func (s *KVKServer) handleCalculate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := s.rankingSvc.Calculate(r.Context(), sess.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	f := format.New(sess.Language())
	writeJSON(w, http.StatusOK, rankingResponse{
		Champion: res.Handoff.Champion,
		Ranking:  res.Handoff.Ranking,
		Config:   res.Handoff.Config,
		Summary:  res.Summary,
		Display: map[string]string{
			"championScore": f.Full(res.Handoff.Champion.TotalScore),
			"score":         f.Compact(res.Summary.TotalScore),
			"t5":            f.CompactInt(res.Summary.Tier5Total),
			"t4":            f.CompactInt(res.Summary.Tier4Total),
		},
	})
}

func (s *KVKServer) reportParams(r *http.Request, sess *session.Session) (language.Tag, report.Preset, error) {
	lang := sess.Language()
	if q := r.URL.Query().Get("lang"); q != "" {
		lang = i18n.Match(q)
	}
	preset, err := report.PresetByName(r.URL.Query().Get("preset"))
	return lang, preset, err
}

func (s *KVKServer) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	lang, preset, err := s.reportParams(r, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.reportSvc.HTML(r.Context(), sess.ID, lang, preset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *KVKServer) handleReportPNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	lang, preset, err := s.reportParams(r, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	img, err := s.reportSvc.Export(r.Context(), sess.ID, lang, preset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+preset.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
