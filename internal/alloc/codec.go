package alloc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/allot/internal/model"
)

// RecordKey is the storage key the browser form used for its record.
const RecordKey = "investment-portfolio-data"

// Record is the flat persisted form of a session.
type Record struct {
	TotalFunds       string           `json:"totalFunds"`
	Projects         []model.LineItem `json:"projects"`
	ProjectIDCounter int              `json:"projectIdCounter"`
}

// State is the session content a Record carries.
type State struct {
	TotalFunds string
	Items      []model.LineItem
	Counter    int
}

// Serialize captures a session as a Record. No display rounding is applied.
func Serialize(totalFunds string, items []model.LineItem, counter int) Record {
	projects := make([]model.LineItem, len(items))
	copy(projects, items)
	return Record{
		TotalFunds:       totalFunds,
		Projects:         projects,
		ProjectIDCounter: counter,
	}
}

// Deserialize unpacks a Record. It never fails: missing pieces stay at their
// zero value (unset funds, empty ledger, counter 0).
func Deserialize(rec Record) State {
	var items []model.LineItem
	if len(rec.Projects) > 0 {
		items = make([]model.LineItem, len(rec.Projects))
		copy(items, rec.Projects)
	}
	counter := rec.ProjectIDCounter
	if counter < 0 {
		counter = 0
	}
	return State{
		TotalFunds: strings.TrimSpace(rec.TotalFunds),
		Items:      items,
		Counter:    counter,
	}
}

// Encode renders a Record as JSON with the browser form's key names.
func Encode(rec Record) ([]byte, error) {
	if rec.Projects == nil {
		rec.Projects = []model.LineItem{}
	}
	return json.Marshal(rec)
}

// Decode parses a Record leniently. Missing keys and malformed project
// fields fall back to defaults; only input that is not a JSON object at all
// yields ErrCorruptRecord, together with an empty Record.
func Decode(data []byte) (Record, error) {
	var rec Record
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return rec, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	if v, ok := raw["totalFunds"]; ok {
		rec.TotalFunds = looseString(v)
	}
	if v, ok := raw["projectIdCounter"]; ok {
		if n, ok := looseNumber(v); ok && n > 0 && n <= maxIDNumber {
			rec.ProjectIDCounter = int(n)
		}
	}
	if v, ok := raw["projects"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(v, &entries); err == nil {
			for _, e := range entries {
				if item, ok := decodeItem(e); ok {
					rec.Projects = append(rec.Projects, item)
				}
			}
		}
	}
	return rec, nil
}

func decodeItem(data json.RawMessage) (model.LineItem, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return model.LineItem{}, false
	}

	item := model.LineItem{
		ID:       looseString(raw["id"]),
		Name:     looseString(raw["name"]),
		Category: model.DefaultCategory,
		Color:    model.Palette[0],
	}
	if n, ok := looseNumber(raw["amount"]); ok && n >= 0 {
		item.Amount = n
	}
	if n, ok := looseNumber(raw["percentage"]); ok {
		item.Percentage = ClampPercentage(n)
	}
	if c, ok := model.ParseCategory(looseString(raw["category"])); ok {
		item.Category = c
	}
	if c := model.NormalizeColor(looseString(raw["color"])); model.ValidColor(c) {
		item.Color = c
	}
	return item, true
}

// looseString accepts a JSON string or number.
func looseString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

// looseNumber accepts a JSON number or a numeric string.
func looseNumber(v json.RawMessage) (float64, bool) {
	if len(v) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
