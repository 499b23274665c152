package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/figmints/meetsync/internal/meeting"
)

// Show prints the open document.
func (a *App) Show(ctx context.Context) error {
	doc := a.engine.Document()
	if doc == nil {
		fmt.Fprintln(a.out, "No open document")
		return nil
	}

	fmt.Fprintf(a.out, "Meeting %s\n", a.engine.SessionDate())
	fmt.Fprintf(a.out, "Big wins: %s\n", doc.BigWins)

	if len(doc.Scorecard) > 0 {
		fmt.Fprintln(a.out, "Scorecard:")
		for _, m := range doc.Scorecard {
			fmt.Fprintf(a.out, "  %s: %.1f / %.1f\n", m.Name, m.Current, m.Goal)
		}
		fmt.Fprintf(a.out, "  average attainment: %.0f%%\n", doc.ScoreAverage())
	}

	if len(doc.TodoRecap) > 0 {
		fmt.Fprintln(a.out, "To-do recap:")
		for _, td := range doc.TodoRecap {
			fmt.Fprintf(a.out, "  [%s] %s\n", td.Status, td.Item)
		}
	}

	if len(doc.Campaigns) > 0 {
		fmt.Fprintln(a.out, "Campaigns:")
		for _, c := range doc.Campaigns {
			fmt.Fprintf(a.out, "  %s (%s): %s\n", c.Name, c.Status, c.Progress)
		}
	}

	if doc.IDS.Identify != "" || doc.IDS.Discuss != "" || doc.IDS.Solve != "" {
		fmt.Fprintf(a.out, "IDS:\n  identify: %s\n  discuss: %s\n  solve: %s\n",
			doc.IDS.Identify, doc.IDS.Discuss, doc.IDS.Solve)
	}

	if doc.Headlines.NextMeetingDate != "" {
		fmt.Fprintf(a.out, "Next meeting: %s\n", doc.Headlines.NextMeetingDate)
	}
	if doc.Headlines.TeamUpdates != "" {
		fmt.Fprintf(a.out, "Team updates: %s\n", doc.Headlines.TeamUpdates)
	}

	if len(doc.NewTodos) > 0 {
		fmt.Fprintln(a.out, "New to-dos:")
		for _, td := range doc.NewTodos {
			fmt.Fprintf(a.out, "  %s", td.Item)
			if td.AssignedTo != "" {
				fmt.Fprintf(a.out, " -> %s", td.AssignedTo)
			}
			fmt.Fprintln(a.out)
		}
	}

	if doc.Score > 0 {
		fmt.Fprintf(a.out, "Meeting score: %.1f\n", doc.Score)
	}
	return nil
}

// Edit prompts for one section of the open document and applies the change
// through the sync engine, which snapshots it locally right away.
func (a *App) Edit(ctx context.Context) error {
	if a.engine.Document() == nil {
		fmt.Fprintln(a.out, "No open document")
		return nil
	}

	section, err := GetSimpleText(a.reader,
		"Section to edit: wins, metric, recap, campaign, ids, headlines, todo, score", a.out)
	if err != nil {
		return err
	}

	switch section {
	case "wins":
		text, err := GetMultiline(a.reader, "Big wins", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) { d.BigWins = text })

	case "metric":
		name, err := GetSimpleText(a.reader, "Metric name", a.out)
		if err != nil {
			return err
		}
		goal, err := a.getFloat("Goal")
		if err != nil {
			return err
		}
		current, err := a.getFloat("Current value")
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			for i := range d.Scorecard {
				if d.Scorecard[i].Name == name {
					d.Scorecard[i].Goal = goal
					d.Scorecard[i].Current = current
					return
				}
			}
			d.Scorecard = append(d.Scorecard, meeting.Metric{Name: name, Goal: goal, Current: current})
		})

	case "recap":
		item, err := GetSimpleText(a.reader, "Carried-over item", a.out)
		if err != nil {
			return err
		}
		status, err := GetSimpleText(a.reader, "Status (done/in_progress/dropped)", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			d.TodoRecap = append(d.TodoRecap, meeting.TodoRecap{Item: item, Status: status})
		})

	case "campaign":
		name, err := GetSimpleText(a.reader, "Campaign name", a.out)
		if err != nil {
			return err
		}
		status, err := GetSimpleText(a.reader, "Status", a.out)
		if err != nil {
			return err
		}
		progress, err := GetMultiline(a.reader, "Progress notes", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			d.Campaigns = append(d.Campaigns, meeting.Campaign{Name: name, Status: status, Progress: progress})
		})

	case "ids":
		identify, err := GetMultiline(a.reader, "Identify", a.out)
		if err != nil {
			return err
		}
		discuss, err := GetMultiline(a.reader, "Discuss", a.out)
		if err != nil {
			return err
		}
		solve, err := GetMultiline(a.reader, "Solve", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			d.IDS = meeting.IDS{Identify: identify, Discuss: discuss, Solve: solve}
		})

	case "headlines":
		next, err := GetSimpleText(a.reader, "Next meeting date (YYYY-MM-DD)", a.out)
		if err != nil {
			return err
		}
		updates, err := GetMultiline(a.reader, "Team updates", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			d.Headlines = meeting.Headlines{NextMeetingDate: next, TeamUpdates: updates}
		})

	case "todo":
		item, err := GetSimpleText(a.reader, "New to-do", a.out)
		if err != nil {
			return err
		}
		assignee, err := GetSimpleText(a.reader, "Assigned to (optional)", a.out)
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) {
			d.NewTodos = append(d.NewTodos, meeting.NewTodo{Item: item, AssignedTo: assignee})
		})

	case "score":
		score, err := a.getFloat("Meeting score (1-10)")
		if err != nil {
			return err
		}
		return a.engine.Edit(ctx, func(d *meeting.Document) { d.Score = score })

	default:
		fmt.Fprintf(a.out, "Unknown section: %s\n", section)
		return nil
	}
}

func (a *App) getFloat(prompt string) (float64, error) {
	text, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	return v, nil
}

// Save pushes the open document to the server.
func (a *App) Save(ctx context.Context) error {
	if err := a.engine.Save(ctx); err != nil {
		fmt.Fprintf(a.out, "Save failed (changes kept locally): %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}

// Complete saves the open document and marks the session completed.
func (a *App) Complete(ctx context.Context) error {
	if err := a.engine.Save(ctx); err != nil {
		fmt.Fprintf(a.out, "Save failed, not completing: %v\n", err)
		return err
	}

	session, err := a.api.CompleteSession(ctx, a.engine.SessionID())
	if err != nil {
		fmt.Fprintf(a.out, "Complete failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Session %s completed\n", session.SessionDate)
	return a.CloseDocument(ctx)
}
