package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tfquiz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tfquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func record(uuid string, typ model.QuestionType, end time.Time, scores ...float64) model.SessionRecord {
	rec := model.SessionRecord{
		UUID:      uuid,
		StartedAt: end.Add(-time.Minute),
		EndedAt:   end,
		Type:      typ,
		MaxCount:  len(scores),
		Label:     "Balanced",
	}
	var sum float64
	for i, s := range scores {
		rec.Answers = append(rec.Answers, model.ScoredResult{
			Question: "q" + string(rune('a'+i)),
			Answer:   "answer",
			Score:    s,
		})
		sum += s
	}
	if len(scores) > 0 {
		rec.Average = sum / float64(len(scores))
	}
	return rec
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := st.InsertSession(ctx, record("u1", model.TypeMeme, base, 10, 50, 90))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	second, err := st.InsertSession(ctx, record("u2", model.TypeAI, base.Add(time.Hour), 70))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != first || sessions[0].Questions != 3 || sessions[0].Average != 50 {
		t.Fatalf("unexpected first session %+v", sessions[0])
	}
	if sessions[1].SessionID != second || sessions[1].Type != string(model.TypeAI) {
		t.Fatalf("unexpected second session %+v", sessions[1])
	}
	if !sessions[0].EndedAt.Equal(base) {
		t.Fatalf("ended_at round trip mismatch: %v", sessions[0].EndedAt)
	}

	filtered, err := st.ListSessions(ctx, model.HistoryConfig{Type: string(model.TypeMeme)})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(filtered) != 1 || filtered[0].UUID != "u1" {
		t.Fatalf("unexpected type filter result %+v", filtered)
	}

	since := base.Add(30 * time.Minute)
	filtered, err = st.ListSessions(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(filtered) != 1 || filtered[0].UUID != "u2" {
		t.Fatalf("unexpected since filter result %+v", filtered)
	}
}

func TestListAnswersKeepsOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := st.InsertSession(ctx, record("u1", model.TypeMeme, base, 10, 50, 90))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	rows, err := st.ListAnswers(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Position != i+1 || row.SessionID != id {
			t.Fatalf("unexpected row %d: %+v", i, row)
		}
	}
	if rows[2].Score != 90 || rows[0].Question != "qa" {
		t.Fatalf("unexpected answers %+v", rows)
	}
	none, err := st.ListAnswers(ctx, nil)
	if err != nil || none != nil {
		t.Fatalf("expected no answers for empty id list, got %v err=%v", none, err)
	}
}

func TestInsertSessionRejectsEmptyAndDuplicate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	if _, err := st.InsertSession(ctx, record("empty", model.TypeMeme, base)); err == nil {
		t.Fatalf("expected error for session without answers")
	}
	if _, err := st.InsertSession(ctx, record("dup", model.TypeMeme, base, 40)); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("dup", model.TypeMeme, base, 40)); err == nil {
		t.Fatalf("expected error for duplicate uuid")
	}
	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("failed insert must roll back, got %d sessions", len(sessions))
	}
}

func TestReopenKeepsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tfquiz.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.InsertSession(context.Background(), record("u1", model.TypeMeme, time.Now(), 55)); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	var version int
	if err := st.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), version)
	}
	sessions, err := st.ListSessions(context.Background(), model.HistoryConfig{})
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected stored session after reopen, got %d err=%v", len(sessions), err)
	}
}

func TestSessionOrderAcrossFractionsAndZones(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	seoul := time.FixedZone("KST", 9*60*60)

	// inserted out of order: +500ms, whole second, then 1s later written in a +09:00 offset
	if _, err := st.InsertSession(ctx, record("half", model.TypeMeme, base.Add(500*time.Millisecond), 50)); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("whole", model.TypeMeme, base, 50)); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("zoned", model.TypeMeme, base.Add(time.Second).In(seoul), 50)); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	sessions, err := st.ListSessions(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	var order []string
	for _, s := range sessions {
		order = append(order, s.UUID)
	}
	if strings.Join(order, ",") != "whole,half,zoned" {
		t.Fatalf("expected chronological order, got %v", order)
	}

	since := base.Add(250 * time.Millisecond).In(seoul)
	filtered, err := st.ListSessions(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(filtered) != 2 || filtered[0].UUID != "half" {
		t.Fatalf("expected sessions after %v, got %+v", since, filtered)
	}
}

func TestParseTimeAcceptsFixedAndRFC3339(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 5, 500_000_000, time.UTC)
	for _, s := range []string{formatTime(want), "2026-03-01T21:00:05.5+09:00"} {
		got, err := parseTime(s)
		if err != nil || !got.Equal(want) {
			t.Fatalf("parseTime(%q) = %v, %v", s, got, err)
		}
	}
	if got := formatTime(want); got != "2026-03-01T12:00:05.500000000Z" {
		t.Fatalf("unexpected stored form %q", got)
	}
}
