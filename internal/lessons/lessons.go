package lessons

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Lesson is a single catalog entry with its duration normalised to minutes.
type Lesson struct {
	ID      string `json:"lesson"`
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
}

// Weight reports the lesson duration so lessons can be balanced directly.
func (l Lesson) Weight() int {
	return l.Minutes
}

// Record is the on-disk representation of a lesson.
type Record struct {
	Lesson   Label  `json:"lesson"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// Label accepts both JSON strings and numbers.
type Label string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("lesson label must be a string or number: %w", err)
	}
	*l = Label(n.String())
	return nil
}

// ParseDuration converts an "H:MM" string into minutes. Minutes are not
// required to be below 60.
func ParseDuration(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return 0, fmt.Errorf("%w: %q has no colon", ErrMalformedDuration, raw)
	}

	hours, err := strconv.Atoi(raw[:colon])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: invalid hours in %q", ErrMalformedDuration, raw)
	}
	minutes, err := strconv.Atoi(raw[colon+1:])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: invalid minutes in %q", ErrMalformedDuration, raw)
	}
	if hours > (math.MaxInt-minutes)/60 {
		return 0, fmt.Errorf("%w: %q is too large", ErrMalformedDuration, raw)
	}

	return hours*60 + minutes, nil
}

// FormatDuration renders minutes back into "H:MM".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// FromRecords converts records into lessons. Every invalid record is reported
// in the returned error, not just the first one.
func FromRecords(records []Record) ([]Lesson, error) {
	out := make([]Lesson, 0, len(records))
	var errs error
	for i, rec := range records {
		id := strings.TrimSpace(string(rec.Lesson))
		if id == "" {
			errs = multierr.Append(errs, fmt.Errorf("record %d: %w: missing lesson id", i, ErrInvalidLesson))
			continue
		}
		minutes, err := ParseDuration(rec.Duration)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %d (lesson %s): %w", i, id, err))
			continue
		}
		out = append(out, Lesson{ID: id, Title: rec.Title, Minutes: minutes})
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]Lesson, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}
	return FromRecords(records)
}

// LoadFile reads lessons from a JSON file.
func LoadFile(path string) ([]Lesson, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lessons file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Validate checks lessons that did not come through FromRecords. The summed
// duration of the list must fit in an int.
func Validate(list []Lesson) error {
	var errs error
	total := 0
	for i, l := range list {
		if strings.TrimSpace(l.ID) == "" {
			errs = multierr.Append(errs, fmt.Errorf("lesson %d: %w: missing lesson id", i, ErrInvalidLesson))
		}
		if l.Minutes < 0 {
			errs = multierr.Append(errs, fmt.Errorf("lesson %d: %w: negative duration %d", i, ErrInvalidLesson, l.Minutes))
			continue
		}
		if total > math.MaxInt-l.Minutes {
			errs = multierr.Append(errs, fmt.Errorf("lesson %d: %w: catalog duration overflows", i, ErrInvalidLesson))
			break
		}
		total += l.Minutes
	}
	return errs
}

// Skip drops the first n lessons. n larger than the list yields an empty slice.
func Skip(list []Lesson, n int) []Lesson {
	if n <= 0 {
		return list
	}
	if n >= len(list) {
		return []Lesson{}
	}
	return list[n:]
}

// TotalMinutes sums the duration of every lesson.
func TotalMinutes(list []Lesson) int {
	total := 0
	for _, l := range list {
		total += l.Minutes
	}
	return total
}

// IDs returns the lesson identifiers in order.
func IDs(list []Lesson) []string {
	ids := make([]string, len(list))
	for i, l := range list {
		ids[i] = l.ID
	}
	return ids
}
