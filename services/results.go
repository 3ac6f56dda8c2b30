package services

import (
	"context"
	"time"

	"emperror.dev/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

type ValuePoint struct {
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type MetricResult struct {
	MetricID uint         `json:"metric_id"`
	Title    string       `json:"title"`
	Average  *float64     `json:"average"`
	Values   []ValuePoint `json:"values"`
}

type QuestionResult struct {
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	YesCount   int64  `json:"yes_count"`
	NoCount    int64  `json:"no_count"`
}

type SliderResult struct {
	SliderID uint     `json:"slider_id"`
	Text     string   `json:"text"`
	Average  *float64 `json:"average"`
	Count    int64    `json:"count"`
}

type TextEntry struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ResultService computes read-only aggregates for session owners. Nothing is
// cached; every call reads the current rows.
type ResultService struct {
	db *gorm.DB
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{db: db}
}

func (s *ResultService) MetricResults(ctx context.Context, owner string, sessionID uint) ([]MetricResult, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	return metricResults(db, sessionID)
}

func metricResults(db *gorm.DB, sessionID uint) ([]MetricResult, error) {
	var metrics []models.Metric
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&metrics).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to load metrics")
	}

	results := make([]MetricResult, 0, len(metrics))
	if len(metrics) == 0 {
		return results, nil
	}

	ids := make([]uint, len(metrics))
	for i, m := range metrics {
		ids[i] = m.ID
	}
	var values []models.MetricValue
	if err := db.Where("metric_id IN ?", ids).Order("id").Find(&values).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to load metric values")
	}
	byMetric := make(map[uint][]models.MetricValue, len(metrics))
	for _, v := range values {
		byMetric[v.MetricID] = append(byMetric[v.MetricID], v)
	}

	for _, m := range metrics {
		r := MetricResult{MetricID: m.ID, Title: m.Title, Values: []ValuePoint{}}
		sum := 0
		for _, v := range byMetric[m.ID] {
			r.Values = append(r.Values, ValuePoint{Value: v.Value, Timestamp: v.Timestamp})
			sum += v.Value
		}
		r.Average = mean(int64(sum), int64(len(r.Values)))
		results = append(results, r)
	}
	return results, nil
}

func (s *ResultService) QuestionResults(ctx context.Context, owner string, sessionID uint) ([]QuestionResult, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	return questionResults(db, sessionID)
}

func questionResults(db *gorm.DB, sessionID uint) ([]QuestionResult, error) {
	var questions []models.Question
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&questions).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to load questions")
	}

	results := make([]QuestionResult, 0, len(questions))
	if len(questions) == 0 {
		return results, nil
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	var tallies []struct {
		QuestionID uint
		Total      int64
		YesTotal   int64
	}
	err := db.Model(&models.QuestionResponse{}).
		Select("question_id, COUNT(*) AS total, SUM(CASE WHEN answer THEN 1 ELSE 0 END) AS yes_total").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&tallies).Error
	if err != nil {
		return nil, errors.WrapIf(err, "failed to tally responses")
	}
	byQuestion := make(map[uint]int, len(tallies))
	for i, t := range tallies {
		byQuestion[t.QuestionID] = i
	}

	for _, q := range questions {
		r := QuestionResult{QuestionID: q.ID, Text: q.Text}
		if i, ok := byQuestion[q.ID]; ok {
			r.YesCount = tallies[i].YesTotal
			r.NoCount = tallies[i].Total - tallies[i].YesTotal
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *ResultService) SliderResults(ctx context.Context, owner string, sessionID uint) ([]SliderResult, error) {
	db := s.db.WithContext(ctx)
	sess, err := getOwnedSession(db, owner, sessionID)
	if err != nil {
		return nil, err
	}
	return sliderResults(db, sess)
}

func sliderResults(db *gorm.DB, sess *models.Session) ([]SliderResult, error) {
	sliders, err := listSliders(db, sess.ModuleID)
	if err != nil {
		return nil, err
	}

	results := make([]SliderResult, 0, len(sliders))
	if len(sliders) == 0 {
		return results, nil
	}

	var sums []struct {
		SliderID uint
		Total    int64
		ValueSum int64
	}
	err = db.Model(&models.SliderResponse{}).
		Select("slider_id, COUNT(*) AS total, SUM(value) AS value_sum").
		Where("session_id = ?", sess.ID).
		Group("slider_id").
		Scan(&sums).Error
	if err != nil {
		return nil, errors.WrapIf(err, "failed to aggregate slider responses")
	}
	bySlider := make(map[uint]int, len(sums))
	for i, row := range sums {
		bySlider[row.SliderID] = i
	}

	for _, sl := range sliders {
		r := SliderResult{SliderID: sl.ID, Text: sl.Text}
		if i, ok := bySlider[sl.ID]; ok {
			r.Count = sums[i].Total
			r.Average = mean(sums[i].ValueSum, sums[i].Total)
		}
		results = append(results, r)
	}
	return results, nil
}

// TextFeedback lists a session's comments in submission order.
func (s *ResultService) TextFeedback(ctx context.Context, owner string, sessionID uint) ([]TextEntry, error) {
	db := s.db.WithContext(ctx)
	if _, err := getOwnedSession(db, owner, sessionID); err != nil {
		return nil, err
	}
	return textFeedback(db, sessionID)
}

func textFeedback(db *gorm.DB, sessionID uint) ([]TextEntry, error) {
	var rows []models.TextFeedback
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.WrapIf(err, "failed to load text feedback")
	}
	entries := make([]TextEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, TextEntry{Content: r.Content, Timestamp: r.Timestamp})
	}
	return entries, nil
}

// mean returns nil for an empty set.
func mean(sum, count int64) *float64 {
	if count == 0 {
		return nil
	}
	avg := float64(sum) / float64(count)
	return &avg
}
