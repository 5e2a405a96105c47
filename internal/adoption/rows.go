package adoption

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// MaxRows caps the number of usage rows accepted in one upload.
const MaxRows = 10000

// maxReportedErrors bounds the field errors returned for a bad upload.
const maxReportedErrors = 20

var (
	// ErrNoRows means the upload contained no data rows.
	ErrNoRows = errors.New("no data rows found")
	// ErrMalformedCSV means a CSV document could not be read.
	ErrMalformedCSV = errors.New("malformed CSV")
)

// Column names recognised in uploaded usage data. Other columns are ignored.
const (
	colToolName        = "tool_name"
	colUserID          = "user_id"
	colLoginCount      = "login_count"
	colLastLogin       = "last_login"
	colSessionDuration = "session_duration_minutes"
	colSentimentRating = "sentiment_rating"
)

// ParseRows converts loosely typed row objects into UsageRecords. Numeric
// cells may be JSON numbers or numeric strings; blank cells are treated as
// absent. Any malformed or out-of-range cell makes the whole batch fail with
// a *ValidationError naming each offending field as csv_data[i].column.
func ParseRows(raw []map[string]any) ([]models.UsageRecord, error) {
	if len(raw) == 0 {
		return nil, ErrNoRows
	}
	if len(raw) > MaxRows {
		return nil, &ValidationError{Errors: []FieldError{{
			Field:   "csv_data",
			Message: fmt.Sprintf("Too many rows (maximum %d)", MaxRows),
		}}}
	}

	records := make([]models.UsageRecord, 0, len(raw))
	var errs []FieldError

	for i, row := range raw {
		if len(errs) >= maxReportedErrors {
			break
		}
		prefix := fmt.Sprintf("csv_data[%d]", i)
		if row == nil {
			errs = append(errs, FieldError{Field: prefix, Message: "Row must be an object"})
			continue
		}

		rec, rowErrs := parseRow(row)
		for _, fe := range rowErrs {
			fe.Field = prefix + "." + fe.Field
			errs = append(errs, fe)
		}
		if len(rowErrs) == 0 {
			for _, fe := range fieldErrors(validate.Struct(rec)) {
				fe.Field = prefix + "." + fe.Field
				errs = append(errs, fe)
			}
		}
		records = append(records, rec)
	}

	if len(errs) > 0 {
		if len(errs) > maxReportedErrors {
			errs = errs[:maxReportedErrors]
		}
		return nil, &ValidationError{Errors: errs}
	}
	return records, nil
}

// ParseCSV reads a CSV document with a header row and converts its data rows
// with the same rules as ParseRows. Header names are matched
// case-insensitively.
func ParseCSV(r io.Reader) ([]models.UsageRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var raw []map[string]any
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		if len(raw) == MaxRows {
			// One past the cap is enough for ParseRows to reject the batch.
			raw = append(raw, map[string]any{})
			break
		}

		row := make(map[string]any, len(header))
		for j, cell := range rec {
			if j < len(header) && header[j] != "" {
				row[header[j]] = cell
			}
		}
		raw = append(raw, row)
	}

	return ParseRows(raw)
}

func parseRow(row map[string]any) (models.UsageRecord, []FieldError) {
	var (
		rec  models.UsageRecord
		errs []FieldError
	)
	fail := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if s, ok := asString(row[colToolName]); ok {
		rec.ToolName = strings.TrimSpace(s)
	} else {
		fail(colToolName, "tool_name must be a string")
	}
	if s, ok := asString(row[colUserID]); ok {
		rec.UserID = strings.TrimSpace(s)
	} else {
		fail(colUserID, "user_id must be a string")
	}
	if s, ok := asString(row[colLastLogin]); ok {
		rec.LastLogin = s
	}

	if f, ok := asNumber(row[colLoginCount]); !ok {
		fail(colLoginCount, "login_count must be a number")
	} else if f != nil {
		if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
			fail(colLoginCount, "login_count must be a whole number of zero or more")
		} else {
			n := int(*f)
			rec.LoginCount = &n
		}
	}
	if f, ok := asNumber(row[colSessionDuration]); ok {
		rec.SessionDurationMinutes = f
	} else {
		fail(colSessionDuration, "session_duration_minutes must be a number")
	}
	if f, ok := asNumber(row[colSentimentRating]); ok {
		rec.SentimentRating = f
	} else {
		fail(colSentimentRating, "sentiment_rating must be a number")
	}

	return rec, errs
}

// asString accepts strings, numbers and absent values.
func asString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

// asNumber returns nil for absent or blank values.
func asNumber(v any) (*float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, true
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}
