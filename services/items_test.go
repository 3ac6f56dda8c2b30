package services

import (
	"context"
	"testing"

	"github.com/vnkhanh/feedback-server/models"
)

func TestMetricManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.startSession(t, "alice", f.module(t, "alice").ID)

	_, err := f.items.CreateMetric(ctx, "alice", sess.ID, "")
	expectCode(t, err, ErrorInvalid)
	_, err = f.items.CreateMetric(ctx, "mallory", sess.ID, "Pace")
	expectCode(t, err, ErrorForbidden)

	pace, err := f.items.CreateMetric(ctx, "alice", sess.ID, "Pace")
	if err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}
	volume, err := f.items.CreateMetric(ctx, "alice", sess.ID, "Volume")
	if err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}

	renamed, err := f.items.RenameMetric(ctx, "alice", pace.ID, "Speed")
	if err != nil {
		t.Fatalf("RenameMetric: %v", err)
	}
	if renamed.Title != "Speed" {
		t.Fatalf("title = %q", renamed.Title)
	}
	_, err = f.items.RenameMetric(ctx, "mallory", pace.ID, "Hijack")
	expectCode(t, err, ErrorForbidden)

	for _, v := range []int{1, 2, 3} {
		if _, err := f.feedback.SubmitMetricValue(ctx, sess.JoinCode, pace.ID, v); err != nil {
			t.Fatalf("SubmitMetricValue: %v", err)
		}
	}
	if _, err := f.feedback.SubmitMetricValue(ctx, sess.JoinCode, volume.ID, 9); err != nil {
		t.Fatalf("SubmitMetricValue: %v", err)
	}

	cleared, err := f.items.ClearMetricValues(ctx, "alice", pace.ID)
	if err != nil {
		t.Fatalf("ClearMetricValues: %v", err)
	}
	if cleared != 3 {
		t.Fatalf("cleared %d values, want 3", cleared)
	}
	if n := f.count(t, &models.Metric{}); n != 2 {
		t.Fatalf("metrics = %d, want 2", n)
	}

	if err := f.items.DeleteMetric(ctx, "alice", volume.ID); err != nil {
		t.Fatalf("DeleteMetric: %v", err)
	}
	if n := f.count(t, &models.MetricValue{}); n != 0 {
		t.Fatalf("metric values = %d, want 0", n)
	}
	expectCode(t, f.items.DeleteMetric(ctx, "alice", volume.ID), ErrorNotFound)

	listed, err := f.items.ListMetrics(ctx, "alice", sess.ID)
	if err != nil {
		t.Fatalf("ListMetrics: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != pace.ID {
		t.Fatalf("ListMetrics = %+v", listed)
	}

	deleted, err := f.items.DeleteSessionMetrics(ctx, "alice", sess.ID)
	if err != nil {
		t.Fatalf("DeleteSessionMetrics: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted %d metrics, want 1", deleted)
	}
}

func TestParticipantViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.module(t, "alice")
	sess := f.startSession(t, "alice", m.ID)

	if _, err := f.items.CreateMetric(ctx, "alice", sess.ID, "Pace"); err != nil {
		t.Fatalf("CreateMetric: %v", err)
	}
	if _, err := f.items.CreateQuestion(ctx, "alice", sess.ID, "Clear?"); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if _, err := f.items.CreateSlider(ctx, "alice", m.ID, "Confidence"); err != nil {
		t.Fatalf("CreateSlider: %v", err)
	}

	metrics, err := f.items.MetricsForCode(ctx, sess.JoinCode)
	if err != nil || len(metrics) != 1 {
		t.Fatalf("MetricsForCode = %+v, %v", metrics, err)
	}
	questions, err := f.items.QuestionsForCode(ctx, sess.JoinCode)
	if err != nil || len(questions) != 1 {
		t.Fatalf("QuestionsForCode = %+v, %v", questions, err)
	}
	sliders, err := f.items.SlidersForCode(ctx, sess.JoinCode)
	if err != nil || len(sliders) != 1 {
		t.Fatalf("SlidersForCode = %+v, %v", sliders, err)
	}

	if _, err := f.sessions.End(ctx, "alice", sess.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	_, err = f.items.MetricsForCode(ctx, sess.JoinCode)
	expectCode(t, err, ErrorNotFound)
	_, err = f.items.SlidersForCode(ctx, sess.JoinCode)
	expectCode(t, err, ErrorNotFound)

	// Owners still see their items after the session ends.
	owned, err := f.items.ListQuestions(ctx, "alice", sess.ID)
	if err != nil || len(owned) != 1 {
		t.Fatalf("ListQuestions = %+v, %v", owned, err)
	}
	ownedSliders, err := f.items.ListSliders(ctx, "alice", m.ID)
	if err != nil || len(ownedSliders) != 1 {
		t.Fatalf("ListSliders = %+v, %v", ownedSliders, err)
	}
}
