package standings

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Dosada05/tournament-portal/models"
)

const (
	TitleGroup      = "Standings"
	TitleTournament = "Tournament Standings"
	TitleFinal      = "Final Group Stage Standings"
)

// Table is what the public viewer renders.
type Table struct {
	Title     string               `json:"title"`
	Live      bool                 `json:"live"`
	Available bool                 `json:"available"`
	Rows      []models.StandingRow `json:"rows"`
}

// NewTable wraps rows; an empty table is reported as not available yet.
func NewTable(title string, live bool, rows []models.StandingRow) Table {
	if rows == nil {
		rows = []models.StandingRow{}
	}
	return Table{
		Title:     title,
		Live:      live,
		Available: len(rows) > 0,
		Rows:      rows,
	}
}

// Message is the line shown instead of an empty table.
func (t Table) Message() string {
	if t.Available {
		return ""
	}
	return t.Title + " not available yet."
}

// WriteText renders the table as aligned columns.
func WriteText(w io.Writer, t Table) error {
	if !t.Available {
		_, err := fmt.Fprintln(w, t.Message())
		return err
	}

	if _, err := fmt.Fprintln(w, t.Title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tTeam\tMP\tW\tD\tL\tGF\tGA\tGD\tPTS\t")
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%d\t\n",
			r.Rank, r.TeamName, r.Played, r.Wins, r.Draws, r.Losses,
			r.GoalsFor, r.GoalsAgainst, FormatGoalDifference(r.GoalDifference), r.Points)
	}
	return tw.Flush()
}

// FormatGoalDifference prefixes positive values with a plus sign.
func FormatGoalDifference(gd int) string {
	if gd > 0 {
		return fmt.Sprintf("+%d", gd)
	}
	return fmt.Sprintf("%d", gd)
}
