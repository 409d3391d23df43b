package health

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Report is the aggregate outcome of one execution.
type Report struct {
	// Status is the most severe status among Entries, Healthy when empty.
	Status Status

	// TotalDuration is the wall-clock time of the whole execution.
	TotalDuration time.Duration

	// Entries maps check name to its result.
	Entries map[string]Result

	names []string
}

// NewReport builds a report from entries and their results, which must be
// index-aligned.
func NewReport(entries []Entry, results []Result, total time.Duration) *Report {
	r := &Report{
		Status:        StatusHealthy,
		TotalDuration: total,
		Entries:       make(map[string]Result, len(entries)),
		names:         make([]string, 0, len(entries)),
	}
	for i, e := range entries {
		r.Entries[e.Name] = results[i]
		r.names = append(r.names, e.Name)
		r.Status = Worst(r.Status, results[i].Status)
	}
	return r
}

// Names returns the entry names in registration order.
func (r *Report) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

type resultJSON struct {
	Data        map[string]any `json:"data"`
	Description string         `json:"description,omitempty"`
	Duration    string         `json:"duration"`
	Exception   string         `json:"exception,omitempty"`
	Status      Status         `json:"status"`
	Tags        []string       `json:"tags"`
}

// MarshalJSON encodes the result in the probe wire format.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Data:        r.Data,
		Description: r.Description,
		Duration:    FormatDuration(r.Duration),
		Status:      r.Status,
		Tags:        r.Tags,
	}
	if out.Data == nil {
		out.Data = map[string]any{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if r.Error != nil {
		out.Exception = r.Error.Error()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a result. The exception, if any, becomes an opaque error.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d, err := ParseDuration(in.Duration)
	if err != nil {
		return err
	}
	*r = Result{
		Status:      in.Status,
		Description: in.Description,
		Data:        in.Data,
		Duration:    d,
		Tags:        in.Tags,
	}
	if in.Exception != "" {
		r.Error = errors.New(in.Exception)
	}
	return nil
}

// MarshalJSON encodes the report with entries in registration order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	status, err := json.Marshal(r.Status)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"status":`)
	buf.Write(status)
	buf.WriteString(`,"totalDuration":`)
	buf.WriteString(strconv.Quote(FormatDuration(r.TotalDuration)))
	buf.WriteString(`,"entries":{`)

	for i, name := range r.orderedNames() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		result := r.Entries[name]
		value, err := json.Marshal(result)
		if err != nil {
			// Checker data that cannot be encoded is replaced, not fatal.
			result.Data = map[string]any{"dataError": err.Error()}
			if value, err = json.Marshal(result); err != nil {
				return nil, fmt.Errorf("entry %q: %w", name, err)
			}
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a report, keeping the entry order of the document.
func (r *Report) UnmarshalJSON(data []byte) error {
	var in struct {
		Status        Status          `json:"status"`
		TotalDuration string          `json:"totalDuration"`
		Entries       json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	total, err := ParseDuration(in.TotalDuration)
	if err != nil {
		return err
	}

	*r = Report{
		Status:        in.Status,
		TotalDuration: total,
		Entries:       make(map[string]Result),
	}
	if len(in.Entries) == 0 || string(in.Entries) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(in.Entries))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("health: entries must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var result Result
		if err := dec.Decode(&result); err != nil {
			return fmt.Errorf("entry %q: %w", name, err)
		}
		if _, dup := r.Entries[name]; !dup {
			r.names = append(r.names, name)
		}
		r.Entries[name] = result
	}
	return nil
}

// orderedNames falls back to sorted names for reports built by hand.
func (r *Report) orderedNames() []string {
	if len(r.names) == len(r.Entries) {
		return r.names
	}
	names := make([]string, 0, len(r.Entries))
	for name := range r.Entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FormatDuration renders d as an ISO-8601 duration in seconds, e.g. "PT0.25S".
func FormatDuration(d time.Duration) string {
	return "PT" + strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "S"
}

// ParseDuration parses the output of FormatDuration. An empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	rest, ok := strings.CutPrefix(s, "PT")
	if ok {
		rest, ok = strings.CutSuffix(rest, "S")
	}
	if !ok {
		return 0, fmt.Errorf("health: invalid duration %q", s)
	}
	secs, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, fmt.Errorf("health: invalid duration %q: %w", s, err)
	}
	return time.Duration(math.Round(secs * float64(time.Second))), nil
}
