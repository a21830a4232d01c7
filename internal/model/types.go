// Package model defines shared data structures.
package model

import "time"

// Result kinds.
const (
	KindLesson = "lesson"
	KindTest   = "test"
	KindCustom = "custom"
)

// Config defines practice settings for generated typing tests.
type Config struct {
	Duration int
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet string
	WordList string
}

// DisplayConfig toggles optional parts of the typing view.
type DisplayConfig struct {
	Keyboard     bool
	FingerHints  bool
	ShowMistakes bool
}

// ProgressSample is the accuracy observed at a given second of a session.
type ProgressSample struct {
	Time     int `json:"time"`
	Accuracy int `json:"accuracy"`
}

// Result captures a finished typing session.
type Result struct {
	ID         string           `json:"id"`
	Kind       string           `json:"type"`
	LessonID   string           `json:"lessonId,omitempty"`
	WPM        int              `json:"wpm"`
	Accuracy   int              `json:"accuracy"`
	Mistakes   int              `json:"mistakes"`
	Duration   int              `json:"duration"`
	Elapsed    int              `json:"timeSpent"`
	TextLength int              `json:"textLength,omitempty"`
	CreatedAt  time.Time        `json:"date"`
	Samples    []ProgressSample `json:"samples,omitempty"`
}

// ResultFilter narrows result listings.
type ResultFilter struct {
	Kind  string
	Since *time.Time
	Last  int
}

// Progress is the learner's overall progress snapshot.
type Progress struct {
	CompletedLessons []string  `json:"completedLessons"`
	Results          []Result  `json:"results"`
	LastActivity     time.Time `json:"lastActivity"`
}

// Certificate records an issued course certificate.
type Certificate struct {
	ID              string
	UserName        string
	CourseName      string
	CompletionDate  time.Time
	AverageWPM      int
	AverageAccuracy int
	IssuedAt        time.Time
}
