// Package meeting holds the editable meeting-session document shared by the
// server API and the client sync engine. A Document is the full payload of
// one session; writes always replace the whole document.
package meeting

// Metric is one scorecard row: a tracked number against its goal.
type Metric struct {
	Name    string  `json:"name"`
	Goal    float64 `json:"goal"`
	Current float64 `json:"current"`
}

// TodoRecap reviews one action item carried over from a prior session.
type TodoRecap struct {
	Item   string `json:"item"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// Campaign tracks progress notes for one running campaign.
type Campaign struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Progress string `json:"progress"`
}

// IDS is the identify/discuss/solve section of the meeting.
type IDS struct {
	Identify string `json:"identify"`
	Discuss  string `json:"discuss"`
	Solve    string `json:"solve"`
}

// Headlines carries administrative notes and the next meeting date.
type Headlines struct {
	NextMeetingDate string `json:"next_meeting_date"`
	TeamUpdates     string `json:"team_updates"`
}

// NewTodo is an action item created during the meeting.
type NewTodo struct {
	Item       string `json:"item"`
	AssignedTo string `json:"assigned_to,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
}

// Document is the complete editable content of one meeting session.
type Document struct {
	BigWins   string      `json:"big_wins"`
	Scorecard []Metric    `json:"scorecard"`
	TodoRecap []TodoRecap `json:"todo_recap"`
	Campaigns []Campaign  `json:"campaigns"`
	IDS       IDS         `json:"ids"`
	Headlines Headlines   `json:"headlines"`
	NewTodos  []NewTodo   `json:"new_todos"`
	Score     float64     `json:"meeting_score"`
}

// Empty returns a fresh document with non-nil slices, suitable for a session
// that has never been saved.
func Empty() *Document {
	return &Document{
		Scorecard: []Metric{},
		TodoRecap: []TodoRecap{},
		Campaigns: []Campaign{},
		NewTodos:  []NewTodo{},
	}
}

// ScoreAverage computes the average goal attainment of the scorecard as a
// percentage. Metrics without a goal are skipped. Returns 0 for an empty
// scorecard.
func (d *Document) ScoreAverage() float64 {
	var sum float64
	var n int
	for _, m := range d.Scorecard {
		if m.Goal <= 0 {
			continue
		}
		sum += m.Current / m.Goal * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
