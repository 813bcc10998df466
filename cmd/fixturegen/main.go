// fixturegen generates the fixtures of a tournament described in a YAML plan
// and prints them without touching a database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/notify"
	"github.com/Dosada05/fixture-engine/repositories"
	"github.com/Dosada05/fixture-engine/services"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type output struct {
	Report    *services.GenerationReport  `json:"report"`
	Matches   map[int64][]*models.Match   `json:"matches"`
	Standings map[int64][]models.Standing `json:"standings"`
}

func run(args []string, stdout, stderr io.Writer) error {
	var planPath string
	var format string
	var seed uint64
	var verbose bool

	flagSet := pflag.NewFlagSet("fixturegen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&planPath, "plan", "p", "", "path to the YAML tournament plan (- for stdin)")
	flagSet.StringVarP(&format, "format", "f", "table", "output format: table or json")
	flagSet.Uint64Var(&seed, "seed", 0, "shuffle seed, overrides the plan (0 keeps the plan's seed)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log generation steps to stderr")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if planPath == "" {
		return fmt.Errorf("--plan is required")
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var in io.Reader = os.Stdin
	if planPath != "-" {
		f, err := os.Open(planPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	plan, err := decodePlan(in)
	if err != nil {
		return err
	}
	if seed != 0 {
		plan.Seed = seed
	}

	store := repositories.NewMemoryStore()
	if err := plan.load(store); err != nil {
		return err
	}

	ctx := context.Background()
	fixtures := services.NewFixtureService(store, notify.Nop(), logger, plan.Seed)
	report, err := fixtures.GenerateTournament(ctx, plan.Tournament.ID, false)
	if err != nil {
		return err
	}

	out := output{
		Report:    report,
		Matches:   make(map[int64][]*models.Match),
		Standings: make(map[int64][]models.Standing),
	}
	for _, st := range plan.Stages {
		matches, err := fixtures.ListStageMatches(ctx, st.ID)
		if err != nil {
			return err
		}
		out.Matches[st.ID] = matches
		if models.StageKind(st.Kind).RoundRobin() {
			standings, err := fixtures.ListStandings(ctx, st.ID)
			if err != nil {
				return err
			}
			out.Standings[st.ID] = standings
		}
	}

	if format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printTable(stdout, plan, out)
}

func team(id *int64) string {
	if id == nil {
		return "TBD"
	}
	return strconv.FormatInt(*id, 10)
}

func slot(m *models.Match) string {
	if c, ok := m.Coord(); ok {
		return c.String()
	}
	group := "-"
	if m.GroupIndex != nil {
		group = models.GroupLabel(*m.GroupIndex)
	}
	matchday := 0
	if m.Matchday != nil {
		matchday = *m.Matchday
	}
	return fmt.Sprintf("%s/MD%d", group, matchday)
}

func printTable(w io.Writer, plan *planFile, out output) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sr := range out.Report.Stages {
		fmt.Fprintf(tw, "stage %d (%s)\tmatches: %d\n", sr.StageID, sr.Kind, sr.Matches)
		if sr.Skipped {
			fmt.Fprintf(tw, "  skipped\t%s\n", sr.Error)
		}
		for _, warn := range sr.Warnings {
			fmt.Fprintf(tw, "  warning\t%s: %s\n", warn.Code, warn.Message)
		}
	}
	fmt.Fprintln(tw)

	for _, st := range plan.Stages {
		fmt.Fprintf(tw, "== %s [%d] ==\n", st.Name, st.ID)
		fmt.Fprintln(tw, "SLOT\tHOME\tAWAY\tSTATUS")
		for _, m := range out.Matches[st.ID] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", slot(m), team(m.TeamA), team(m.TeamB), m.Status)
		}
		if rows := out.Standings[st.ID]; len(rows) > 0 {
			fmt.Fprintln(tw, "GROUP\t#\tTEAM\tPTS")
			for _, row := range rows {
				group := "-"
				if row.GroupIndex != nil {
					group = models.GroupLabel(*row.GroupIndex)
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", group, row.Rank, row.TeamID, row.Points)
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
