package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// moneyAmount is a monetary request field that accepts both a JSON number
// and a quoted decimal string such as "12.50" or "12,50".
type moneyAmount float64

func (m *moneyAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(s)
		if err != nil {
			return err
		}
		*m = moneyAmount(core.CentsToFloat(cents))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = moneyAmount(f)
	return nil
}

// pathID extracts the {id} segment of the route pattern.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, core.Validationf("Invalid id")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter. Absent or malformed
// values fall back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// transactionFilter builds the list/export filter from query parameters:
// type, category_id, start_date, end_date. Dates and type are validated;
// anything else is passed through to the store as-is.
func transactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	var f storage.TransactionFilter

	if typ := q.Get("type"); typ != "" {
		parsed, err := core.ParseTransactionType(typ)
		if err != nil {
			return f, err
		}
		f.Type = parsed
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return f, core.Validationf("Invalid category")
		}
		f.CategoryID = id
	}

	if start := q.Get("start_date"); start != "" {
		if err := core.ValidateDate(start); err != nil {
			return f, err
		}
		f.StartDate = start
	}

	if end := q.Get("end_date"); end != "" {
		if err := core.ValidateDate(end); err != nil {
			return f, err
		}
		f.EndDate = end
	}

	return f, nil
}
