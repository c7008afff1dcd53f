// Package report turns a computed ranking into the shareable KvK report: a
// fully formatted view, its HTML and a PNG snapshot of it.
package report

import (
	"fmt"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/format"
	"kvk-ranker/internal/i18n"
	"kvk-ranker/internal/scoring"
	"time"

	"golang.org/x/text/language"
)

type Row struct {
	Label string
	Value string
}

type KingdomCard struct {
	Name           string
	ScorePrimary   string
	ScoreSecondary string
	Tier5          []Row
	Tier5Total     string
	Tier4          []Row
	Tier4Total     string
}

type RankingRow struct {
	Medal string
	Name  string
	Score string
}

// View carries every display string of the report, already formatted, so
// rendering and export never do arithmetic.
type View struct {
	Lang          string
	Labels        map[string]string
	Date          string
	ChampionName  string
	ChampionScore string
	RuleT5        string
	RuleT4        string
	GlobalScore   string
	GlobalT5      string
	GlobalT4      string
	Kingdoms      []KingdomCard
	Ranking       []RankingRow
}

var labelKeys = []string{
	"kvk_report_title", "official_report", "champion_kingdom", "global_summary",
	"total_score", "total_t5", "total_t4", "rules", "points", "ranking_title",
	"champion_title", "footer_proof", "footer_title", "footer_rights", "footer_version",
}

func Medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("#%d", position)
}

// NewView formats a handoff record for lang. Totals are recomputed from the
// ranking rather than trusted from storage.
func NewView(h domain.Handoff, lang language.Tag, now time.Time) View {
	f := format.New(lang)
	ranking := scoring.Ranking(h.Ranking)
	summary := scoring.Summarize(ranking)

	labels := make(map[string]string, len(labelKeys))
	for _, k := range labelKeys {
		labels[k] = i18n.T(lang, k)
	}
	pts := labels["points"]

	champion := h.Champion.Name
	if champion == "" {
		champion = "N/A"
	}

	v := View{
		Lang:          lang.String(),
		Labels:        labels,
		Date:          now.Format(i18n.T(lang, "date_layout")),
		ChampionName:  champion,
		ChampionScore: f.Full(h.Champion.TotalScore) + " " + pts,
		RuleT5:        f.Grouped(h.Config.T5),
		RuleT4:        f.Grouped(h.Config.T4),
		GlobalScore:   f.Compact(summary.TotalScore),
		GlobalT5:      f.CompactInt(summary.Tier5Total),
		GlobalT4:      f.CompactInt(summary.Tier4Total),
	}

	for i, k := range ranking {
		bd := k.Breakdown
		v.Kingdoms = append(v.Kingdoms, KingdomCard{
			Name:           k.Name,
			ScorePrimary:   f.Compact(k.TotalScore),
			ScoreSecondary: "(" + f.Full(k.TotalScore) + " " + pts + ")",
			Tier5: []Row{
				{i18n.T(lang, "infantry"), f.FullInt(bd.InfantryT5)},
				{i18n.T(lang, "cavalry"), f.FullInt(bd.CavalryT5)},
				{i18n.T(lang, "archer"), f.FullInt(bd.ArcherT5)},
				{i18n.T(lang, "siege"), f.FullInt(bd.SiegeT5)},
			},
			Tier5Total: f.FullInt(k.Stats.TotalT5),
			Tier4: []Row{
				{i18n.T(lang, "infantry"), f.FullInt(bd.InfantryT4)},
				{i18n.T(lang, "cavalry"), f.FullInt(bd.CavalryT4)},
				{i18n.T(lang, "archer"), f.FullInt(bd.ArcherT4)},
				{i18n.T(lang, "siege"), f.FullInt(bd.SiegeT4)},
			},
			Tier4Total: f.FullInt(k.Stats.TotalT4),
		})
		v.Ranking = append(v.Ranking, RankingRow{
			Medal: Medal(i + 1),
			Name:  k.Name,
			Score: f.Compact(k.TotalScore),
		})
	}

	return v
}
