package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType is the employment type of a job post.
type JobType string

const (
	JobFullTime JobType = "Full-time"
	JobPartTime JobType = "Part-time"
	JobContract JobType = "Contract"
	JobRemote   JobType = "Remote"
)

// JobTypes lists the accepted employment types in display order.
var JobTypes = []JobType{JobFullTime, JobPartTime, JobContract, JobRemote}

// Valid reports whether t is one of the accepted employment types.
func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Lines is an ordered list of short strings. It decodes from either a JSON
// array or a single newline-delimited string, as submitted by the admin
// editor's textareas.
type Lines []string

// SplitLines splits s on newlines, trimming each line and dropping blanks.
func SplitLines(s string) Lines {
	out := Lines{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// UnmarshalJSON accepts a string array, a newline-delimited string or null.
func (l *Lines) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = SplitLines(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("lines: expected string or array of strings")
	}
	out := Lines{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

// MarshalJSON always encodes an array, never null.
func (l Lines) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// JobPost is an entry in the job-posts collection.
type JobPost struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Department       string    `json:"department"`
	Location         string    `json:"location"`
	Type             JobType   `json:"type"`
	Experience       string    `json:"experience"`
	Salary           string    `json:"salary"`
	Description      string    `json:"description"`
	Requirements     Lines     `json:"requirements"`
	Responsibilities Lines     `json:"responsibilities"`
	Benefits         Lines     `json:"benefits"`
	Featured         bool      `json:"featured"`
	Urgent           bool      `json:"urgent"`
	Published        bool      `json:"published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
