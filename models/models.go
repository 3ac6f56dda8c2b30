package models

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Module{},
		&Session{},
		&Metric{},
		&MetricValue{},
		&Question{},
		&QuestionResponse{},
		&Slider{},
		&SliderResponse{},
		&TextFeedback{},
	}
}
