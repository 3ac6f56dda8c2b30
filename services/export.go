package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type Export struct {
	ContentType string
	Filename    string
	Body        []byte
}

type sessionReport struct {
	metrics   []MetricResult
	questions []QuestionResult
	sliders   []SliderResult
	text      []TextEntry
}

// Export renders every collector's results for an owned session as a CSV
// file or an XLSX workbook.
func (s *ResultService) Export(ctx context.Context, owner string, sessionID uint, format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, NewInvalidError("format must be csv or xlsx")
	}

	db := s.db.WithContext(ctx)
	sess, err := getOwnedSession(db, owner, sessionID)
	if err != nil {
		return nil, err
	}
	report, err := loadReport(db, sess)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("session_%d_%s", sess.ID, sess.JoinCode)
	if format == FormatXLSX {
		body, err := report.xlsx()
		if err != nil {
			return nil, err
		}
		return &Export{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    base + ".xlsx",
			Body:        body,
		}, nil
	}

	body, err := report.csv()
	if err != nil {
		return nil, err
	}
	return &Export{ContentType: "text/csv; charset=utf-8", Filename: base + ".csv", Body: body}, nil
}

func loadReport(db *gorm.DB, sess *models.Session) (*sessionReport, error) {
	var (
		r   sessionReport
		err error
	)
	if r.metrics, err = metricResults(db, sess.ID); err != nil {
		return nil, err
	}
	if r.questions, err = questionResults(db, sess.ID); err != nil {
		return nil, err
	}
	if r.sliders, err = sliderResults(db, sess); err != nil {
		return nil, err
	}
	if r.text, err = textFeedback(db, sess.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return ""
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// sheets returns the report as named tables: header row first.
func (r *sessionReport) sheets() []reportSheet {
	metrics := reportSheet{name: "Metrics", rows: [][]string{{"metric_id", "title", "average", "count"}}}
	for _, m := range r.metrics {
		metrics.rows = append(metrics.rows, []string{
			strconv.FormatUint(uint64(m.MetricID), 10), m.Title, formatAverage(m.Average), strconv.Itoa(len(m.Values)),
		})
	}

	questions := reportSheet{name: "Questions", rows: [][]string{{"question_id", "text", "yes_count", "no_count"}}}
	for _, q := range r.questions {
		questions.rows = append(questions.rows, []string{
			strconv.FormatUint(uint64(q.QuestionID), 10), q.Text,
			strconv.FormatInt(q.YesCount, 10), strconv.FormatInt(q.NoCount, 10),
		})
	}

	sliders := reportSheet{name: "Sliders", rows: [][]string{{"slider_id", "text", "average", "count"}}}
	for _, s := range r.sliders {
		sliders.rows = append(sliders.rows, []string{
			strconv.FormatUint(uint64(s.SliderID), 10), s.Text, formatAverage(s.Average), strconv.FormatInt(s.Count, 10),
		})
	}

	text := reportSheet{name: "Text feedback", rows: [][]string{{"timestamp", "content"}}}
	for _, t := range r.text {
		text.rows = append(text.rows, []string{formatTime(t.Timestamp), t.Content})
	}

	return []reportSheet{metrics, questions, sliders, text}
}

type reportSheet struct {
	name string
	rows [][]string
}

// csv flattens every sheet into one file, prefixing each row with its section.
// Rows are padded to the widest sheet so every record has the same field count.
func (r *sessionReport) csv() ([]byte, error) {
	sheets := r.sheets()
	width := 0
	for _, sheet := range sheets {
		for _, row := range sheet.rows {
			width = max(width, len(row))
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, sheet := range sheets {
		section := strings.ToLower(strings.ReplaceAll(sheet.name, " ", "_"))
		for _, row := range sheet.rows {
			record := make([]string, width+1)
			record[0] = section
			copy(record[1:], row)
			if err := w.Write(record); err != nil {
				return nil, errors.WrapIf(err, "failed to write csv")
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.WrapIf(err, "failed to write csv")
	}
	return buf.Bytes(), nil
}

func (r *sessionReport) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range r.sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, errors.WrapIf(err, "failed to name sheet")
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, errors.WrapIf(err, "failed to add sheet")
		}

		for j, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				return nil, errors.WrapIf(err, "failed to address cell")
			}
			values := make([]any, len(row))
			for k, v := range row {
				values[k] = v
			}
			if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
				return nil, errors.WrapIf(err, "failed to write row")
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.WrapIf(err, "failed to write workbook")
	}
	return buf.Bytes(), nil
}
