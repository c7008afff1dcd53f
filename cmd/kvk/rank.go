package main

import (
	"context"
	"fmt"
	"io"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/format"
	fxmodules "kvk-ranker/internal/fx"
	"kvk-ranker/internal/i18n"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/service"
	"kvk-ranker/internal/session"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

var (
	weightT5   float64
	weightT4   float64
	lang       string
	exportMode string
	outDir     string
)

var rankCmd = &cobra.Command{
	Use:   "rank [name=]screenshot...",
	Short: "Read each kingdom's screenshot, rank the kingdoms and optionally export the report",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().Float64Var(&weightT5, "t5", 20, "Points per T5 kill (1-100)")
	rankCmd.Flags().Float64Var(&weightT4, "t4", 8, "Points per T4 kill (1-100)")
	rankCmd.Flags().StringVar(&lang, "lang", "", "Display language (pt-BR or en-US)")
	rankCmd.Flags().StringVar(&exportMode, "export", "", "Export the report image: mobile or desktop")
	rankCmd.Flags().StringVar(&outDir, "out", ".", "Directory for the exported report")
	rootCmd.AddCommand(rankCmd)
}

type kingdomArg struct {
	Name string
	Path string
}

// parseKingdomArgs splits "name=path" arguments. A bare path leaves the name
// empty so the ranking assigns the default label.
func parseKingdomArgs(args []string) []kingdomArg {
	out := make([]kingdomArg, 0, len(args))
	for _, a := range args {
		if name, path, ok := strings.Cut(a, "="); ok {
			out = append(out, kingdomArg{Name: strings.TrimSpace(name), Path: path})
			continue
		}
		out = append(out, kingdomArg{Path: a})
	}
	return out
}

func runRank(cmd *cobra.Command, args []string) error {
	var preset report.Preset
	if exportMode != "" {
		p, err := report.PresetByName(exportMode)
		if err != nil {
			return err
		}
		preset = p
	}

	var (
		cfg        *config.Config
		sessions   *session.Manager
		kingdomSvc *service.KingdomService
		rankingSvc *service.RankingService
		reportSvc  *service.ReportService
	)
	app := fx.New(
		fx.Supply(cliLogger()),
		fxmodules.Core,
		fx.NopLogger,
		fx.Populate(&cfg, &sessions, &kingdomSvc, &rankingSvc, &reportSvc),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	tag := i18n.Match(cfg.DefaultLang)
	if lang != "" {
		tag = i18n.Match(lang)
	}

	sess, err := sessions.Create(tag)
	if err != nil {
		return err
	}
	if err := sess.SetWeights(scoring.ClampWeights(domain.ScoringWeights{T5: weightT5, T4: weightT4})); err != nil {
		return err
	}

	kingdoms := parseKingdomArgs(args)
	ids := make([]string, len(kingdoms))
	for i, k := range kingdoms {
		if i == 0 {
			ids[i] = sess.Entries()[0].ID
		} else {
			entry, err := sess.AddKingdom()
			if err != nil {
				return err
			}
			ids[i] = entry.ID
		}
		if err := sess.RenameKingdom(ids[i], k.Name); err != nil {
			return err
		}
	}

	var (
		mu       sync.Mutex
		failures []string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.ExtractConcurrency)
	for i, k := range kingdoms {
		g.Go(func() error {
			data, err := os.ReadFile(k.Path)
			if err == nil {
				_, err = kingdomSvc.Upload(gCtx, sess.ID, ids[i], api.Image{Data: data})
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", k.Path, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range failures {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", f)
	}

	res, err := rankingSvc.Calculate(ctx, sess.ID)
	if err != nil {
		return err
	}
	printRanking(cmd.OutOrStdout(), res, format.New(tag), tag)

	if exportMode == "" {
		return nil
	}
	img, err := reportSvc.Export(ctx, sess.ID, tag, preset)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, preset.FileName())
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func printRanking(out io.Writer, res *service.RankingResult, f *format.Formatter, tag language.Tag) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\tT5\tT4\t%s\n", i18n.T(tag, "kingdom_label"), i18n.T(tag, "total_score"))
	for i, k := range res.Handoff.Ranking {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			report.Medal(i+1), k.Name,
			f.FullInt(k.Stats.TotalT5), f.FullInt(k.Stats.TotalT4), f.Full(k.TotalScore))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%s: %s\n", i18n.T(tag, "champion_kingdom"), res.Handoff.Champion.Name)
	fmt.Fprintf(out, "%s: %s | %s: %s | %s: %s\n",
		i18n.T(tag, "total_score"), f.Compact(res.Summary.TotalScore),
		i18n.T(tag, "total_t5"), f.CompactInt(res.Summary.Tier5Total),
		i18n.T(tag, "total_t4"), f.CompactInt(res.Summary.Tier4Total))
}
