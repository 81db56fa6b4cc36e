package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/Black-And-White-Club/picker-bot/app"
	gradingdomain "github.com/Black-And-White-Club/picker-bot/app/modules/grading/domain"
	leagueservice "github.com/Black-And-White-Club/picker-bot/app/modules/league/application"
	"github.com/Black-And-White-Club/picker-bot/app/shared/attr"
	"github.com/Black-And-White-Club/picker-bot/config"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "picker",
		Usage: "pick'em contest engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			kickoffCommand(),
			gradeCommand(),
			standingsCommand(),
			playoffScoresCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// withApp loads the config, builds the application and closes it after fn.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := attr.WithCorrelationID(c.Context, uuid.NewString())

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Error("Failed to close app", attr.Error(err))
		}
	}()
	return fn(ctx, a)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the job queue, the results poller and the ops server",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				a.Logger.Info("Starting picker")
				err := a.Serve(ctx)
				if errors.Is(err, context.Canceled) {
					err = nil
				}
				a.Logger.Info("Picker shut down")
				return err
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import a normalized season schedule (JSON)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true},
			&cli.BoolFlag{Name: "schedule-kickoffs", Usage: "queue a kickoff job for every imported gameset"},
		},
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}
			var schedule leagueservice.SeasonSchedule
			if err := json.Unmarshal(data, &schedule); err != nil {
				return fmt.Errorf("invalid schedule %s: %w", c.String("file"), err)
			}

			return withApp(c, func(ctx context.Context, a *app.App) error {
				summary, err := a.LeagueService.ImportSeason(ctx, schedule)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "imported %d teams, %d games, %d gamesets\n", summary.Teams, summary.Games, len(summary.GameSets))

				if !c.Bool("schedule-kickoffs") {
					return nil
				}
				return a.ScheduleKickoffs(ctx, schedule.League.Abbr)
			})
		},
	}
}

func kickoffCommand() *cli.Command {
	return &cli.Command{
		Name:  "kickoff",
		Usage: "prepare every participant's picks for a gameset now",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "gameset", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				s, err := a.PicksService.Kickoff(ctx, c.Int64("gameset"))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "participants=%d created=%d completed=%d declined=%d autopicks=%d\n",
					s.Participants, s.Created, s.Completed, s.Declined, s.Autopicks)
				return nil
			})
		},
	}
}

func gradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "grade",
		Usage: "grade a league's current gameset from the feed, or a gameset from a results file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "league"},
			&cli.Int64Flag{Name: "gameset"},
			&cli.StringFlag{Name: "results", Usage: "results JSON file, used with --gameset"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				var (
					summary any
					err     error
				)
				switch {
				case c.IsSet("gameset") && c.IsSet("results"):
					var res gradingdomain.Results
					data, readErr := os.ReadFile(c.String("results"))
					if readErr != nil {
						return readErr
					}
					if err := json.Unmarshal(data, &res); err != nil {
						return fmt.Errorf("invalid results %s: %w", c.String("results"), err)
					}
					summary, err = a.GradingService.UpdateResults(ctx, c.Int64("gameset"), &res)
				case c.IsSet("league"):
					summary, err = a.GradingService.GradeLeague(ctx, c.String("league"))
				default:
					return errors.New("either --league or --gameset with --results is required")
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%+v\n", summary)
				return nil
			})
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print gameset or season standings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "league"},
			&cli.IntFlag{Name: "season", Usage: "0 is the current season, negative is every season"},
			&cli.Int64Flag{Name: "gameset"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				defer w.Flush()

				if c.IsSet("gameset") {
					rows, err := a.StandingsService.GameSetStandings(ctx, c.Int64("gameset"))
					if err != nil {
						return err
					}
					fmt.Fprintln(w, "PLACE\tUSER\tCORRECT\tWRONG\tPOINTS\tDELTA\tWINNER")
					for _, r := range rows {
						ps := r.Item.PickSet
						fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%t\n", r.Place, ps.UserID, ps.Correct, ps.Wrong, ps.Points, r.Item.PointsDelta, ps.IsWinner)
					}
					return nil
				}
				if !c.IsSet("league") {
					return errors.New("either --league or --gameset is required")
				}

				rows, err := a.StandingsService.SeasonStandings(ctx, c.String("league"), c.Int("season"))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "PLACE\tUSER\tCORRECT\tWRONG\tPCT\tDELTA\tPLAYED\tWON")
				for _, r := range rows {
					e := r.Item
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.3f\t%d\t%d\t%d\n", r.Place, e.UserID, e.Correct, e.Wrong, e.Pct(), e.PointsDelta, e.WeeksPlayed, e.WeeksWon)
				}
				return nil
			})
		},
	}
}

func playoffScoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "playoff-scores",
		Usage: "print bracket scores for a league's playoff",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "league", Required: true},
			&cli.IntFlag{Name: "season", Required: true},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				p, err := a.PlayoffsService.GetPlayoff(ctx, c.String("league"), c.Int("season"))
				if err != nil {
					return err
				}
				results, err := a.PlayoffsService.Scores(ctx, p.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintln(w, "USER\tSCORE\tDELTA")
				for _, r := range results {
					fmt.Fprintf(w, "%s\t%d\t%d\n", r.UserID, r.Score, r.Delta)
				}
				return nil
			})
		},
	}
}
