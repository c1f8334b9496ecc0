package history

import (
	"fmt"
	"net/url"
	"strings"

	"permit-history/internal/domain/permits"
)

// ParseFilter lee departments (CSV; vacío o ALL = todos), from y to (YYYY-MM-DD).
func ParseFilter(q url.Values) (permits.Filter, error) {
	var departments []string
	for _, v := range q["departments"] {
		departments = append(departments, strings.Split(v, ",")...)
	}
	f, err := permits.NewFilter(departments, q.Get("from"), q.Get("to"))
	if err != nil {
		return permits.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return f, nil
}
