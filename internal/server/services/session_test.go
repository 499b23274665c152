package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/meeting"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeSessionRepo struct {
	byKey map[string]*models.MeetingSession // tenantID+"|"+date
	byID  map[string]*models.MeetingSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byKey: map[string]*models.MeetingSession{}, byID: map[string]*models.MeetingSession{}}
}

func (f *fakeSessionRepo) FindOrCreate(ctx context.Context, tenantID, date string) (*models.MeetingSession, error) {
	key := tenantID + "|" + date
	if s, ok := f.byKey[key]; ok {
		return s, nil
	}
	s := &models.MeetingSession{ID: uuid.NewString(), TenantID: tenantID, SessionDate: date,
		Status: models.SessionInProgress, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.byKey[key] = s
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.MeetingSession, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) ListByTenant(ctx context.Context, tenantID string) ([]*models.MeetingSession, error) {
	var out []*models.MeetingSession
	for _, s := range f.byID {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) SetStatus(ctx context.Context, id string, status models.SessionStatus, avg *float64) error {
	s, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.Status = status
	s.ScoreAverage = avg
	return nil
}

type fakeDocumentRepo struct {
	docs map[string]*meeting.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[string]*meeting.Document{}}
}

func (f *fakeDocumentRepo) Get(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error) {
	d, ok := f.docs[sessionID]
	if !ok {
		return nil, time.Time{}, common.ErrorNotFound
	}
	return d, time.Now(), nil
}

func (f *fakeDocumentRepo) Put(ctx context.Context, sessionID string, doc *meeting.Document) error {
	f.docs[sessionID] = doc
	return nil
}

type fakeArchiver struct {
	keys   []string
	bodies [][]byte
}

func (f *fakeArchiver) Archive(ctx context.Context, key string, body []byte) error {
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, body)
	return nil
}

func newSessionService(t *testing.T) (*SessionService, *fakeSessionRepo, *fakeDocumentRepo, *fakeArchiver) {
	t.Helper()
	sr := newFakeSessionRepo()
	dr := newFakeDocumentRepo()
	ar := &fakeArchiver{}
	return NewSessionService(sr, dr, ar, testLogger()), sr, dr, ar
}

func memberOf(tenantID string) *models.User {
	return &models.User{ID: "m-" + tenantID, Role: models.RoleClient, TenantID: tenantID, Active: true}
}

// ---- tests ----

func TestResolve_Idempotent(t *testing.T) {
	svc, _, _, _ := newSessionService(t)
	caller := memberOf("t-7")

	first, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID, "same (tenant, date) must resolve to one session")
	require.Equal(t, first.Status, second.Status, "repeat resolution must not change status")
}

func TestResolve_TenantIsolation(t *testing.T) {
	svc, _, _, _ := newSessionService(t)

	_, err := svc.Resolve(context.Background(), memberOf("t-7"), "t-9", "2024-02-05")
	require.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.Resolve(context.Background(), adminCaller(), "t-9", "2024-02-05")
	require.NoError(t, err, "admin may resolve any tenant's session")
}

func TestResolve_BadDate(t *testing.T) {
	svc, _, _, _ := newSessionService(t)

	_, err := svc.Resolve(context.Background(), memberOf("t-7"), "t-7", "05.02.2024")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestDocument_RoundTrip(t *testing.T) {
	svc, _, _, _ := newSessionService(t)
	caller := memberOf("t-7")

	session, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)

	doc := meeting.Empty()
	doc.BigWins = "launched the spring campaign"
	doc.Scorecard = []meeting.Metric{{Name: "leads", Goal: 100, Current: 80}}
	require.NoError(t, svc.PutDocument(context.Background(), caller, session.ID, doc))

	got, _, err := svc.GetDocument(context.Background(), caller, session.ID)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestGetDocument_NeverSaved_ReturnsEmpty(t *testing.T) {
	svc, _, _, _ := newSessionService(t)
	caller := memberOf("t-7")

	session, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)

	got, _, err := svc.GetDocument(context.Background(), caller, session.ID)
	require.NoError(t, err)
	require.Equal(t, meeting.Empty(), got)
}

func TestDocument_ForeignSessionMaskedAsNotFound(t *testing.T) {
	svc, _, _, _ := newSessionService(t)

	session, err := svc.Resolve(context.Background(), memberOf("t-7"), "t-7", "2024-02-05")
	require.NoError(t, err)

	// A caller from another tenant cannot tell this session exists.
	_, _, err = svc.GetDocument(context.Background(), memberOf("t-9"), session.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	err = svc.PutDocument(context.Background(), memberOf("t-9"), session.ID, meeting.Empty())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPutDocument_UpdatesScoreAverage(t *testing.T) {
	svc, sr, _, _ := newSessionService(t)
	caller := memberOf("t-7")

	session, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)

	doc := meeting.Empty()
	doc.Scorecard = []meeting.Metric{
		{Name: "leads", Goal: 100, Current: 50},
		{Name: "posts", Goal: 10, Current: 10},
	}
	require.NoError(t, svc.PutDocument(context.Background(), caller, session.ID, doc))

	stored := sr.byID[session.ID]
	require.NotNil(t, stored.ScoreAverage)
	require.InDelta(t, 75.0, *stored.ScoreAverage, 0.001)
	require.Equal(t, models.SessionInProgress, stored.Status, "save must not change status")
}

func TestComplete_ArchivesSnapshot(t *testing.T) {
	svc, sr, _, ar := newSessionService(t)
	caller := memberOf("t-7")

	session, err := svc.Resolve(context.Background(), caller, "t-7", "2024-02-05")
	require.NoError(t, err)

	doc := meeting.Empty()
	doc.BigWins = "all goals hit"
	require.NoError(t, svc.PutDocument(context.Background(), caller, session.ID, doc))

	got, err := svc.Complete(context.Background(), caller, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionCompleted, got.Status)
	require.Equal(t, models.SessionCompleted, sr.byID[session.ID].Status)

	require.Len(t, ar.keys, 1)
	require.Contains(t, ar.keys[0], "tenants/t-7/sessions/2024-02-05-")

	var archived meeting.Document
	require.NoError(t, json.Unmarshal(ar.bodies[0], &archived))
	require.Equal(t, "all goals hit", archived.BigWins)
}
