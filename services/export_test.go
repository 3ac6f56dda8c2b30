package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func seedReport(t *testing.T, f *fixture) uint {
	t.Helper()
	ctx := context.Background()
	m := f.module(t, "alice")
	sess := f.startSession(t, "alice", m.ID)

	metric, err := f.items.CreateMetric(ctx, "alice", sess.ID, "Pace")
	if err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}
	question, err := f.items.CreateQuestion(ctx, "alice", sess.ID, "Clear?")
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if _, err := f.items.CreateSlider(ctx, "alice", m.ID, "Confidence"); err != nil {
		t.Fatalf("CreateSlider: %v", err)
	}
	if _, err := f.feedback.SubmitMetricValue(ctx, sess.JoinCode, metric.ID, 8); err != nil {
		t.Fatalf("SubmitMetricValue: %v", err)
	}
	if _, err := f.feedback.SubmitQuestionResponse(ctx, sess.JoinCode, question.ID, false); err != nil {
		t.Fatalf("SubmitQuestionResponse: %v", err)
	}
	if _, err := f.feedback.SubmitText(ctx, sess.JoinCode, "loved it, thanks"); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	return sess.ID
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	sessionID := seedReport(t, f)

	out, err := f.results.Export(context.Background(), "alice", sessionID, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasSuffix(out.Filename, ".csv") || !strings.HasPrefix(out.ContentType, "text/csv") {
		t.Fatalf("unexpected export meta: %s %s", out.Filename, out.ContentType)
	}

	records, err := csv.NewReader(bytes.NewReader(out.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	sections := map[string]int{}
	for _, r := range records {
		if len(r) != len(records[0]) {
			t.Fatalf("record %v has %d fields, want %d", r, len(r), len(records[0]))
		}
		sections[r[0]]++
	}
	// Header plus one data row per section.
	for _, name := range []string{"metrics", "questions", "sliders", "text_feedback"} {
		if sections[name] != 2 {
			t.Errorf("section %s has %d rows, want 2", name, sections[name])
		}
	}
	if !bytes.Contains(out.Body, []byte(`"loved it, thanks"`)) {
		t.Errorf("text feedback not quoted in csv:\n%s", out.Body)
	}
	if !bytes.Contains(out.Body, []byte("text_feedback,timestamp,content,,\n")) {
		t.Errorf("text feedback header not padded:\n%s", out.Body)
	}
	if !bytes.Contains(out.Body, []byte("metrics,1,Pace,8.00,1")) {
		t.Errorf("metric row missing:\n%s", out.Body)
	}
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	sessionID := seedReport(t, f)

	out, err := f.results.Export(context.Background(), "alice", sessionID, "XLSX")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasSuffix(out.Filename, ".xlsx") {
		t.Fatalf("filename = %q", out.Filename)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(out.Body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	want := []string{"Metrics", "Questions", "Sliders", "Text feedback"}
	got := wb.GetSheetList()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("sheets = %v, want %v", got, want)
	}

	rows, err := wb.GetRows("Questions")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "0" || rows[1][3] != "1" {
		t.Fatalf("questions sheet = %v", rows)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	sessionID := seedReport(t, f)

	_, err := f.results.Export(context.Background(), "alice", sessionID, "pdf")
	expectCode(t, err, ErrorInvalid)
	_, err = f.results.Export(context.Background(), "mallory", sessionID, "csv")
	expectCode(t, err, ErrorForbidden)
}
