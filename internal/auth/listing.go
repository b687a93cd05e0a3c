package auth

import (
	"context"
	"sort"
	"strings"

	"github.com/nerrad567/vizgate/internal/outcome"
)

// Listing limits.
const (
	DefaultListLimit = 25
	MaxListLimit     = 100
)

// sortColumns maps the accepted sort keys to SQL expressions. Anything not
// listed here is rejected, so user input never reaches the query text.
var sortColumns = map[string]string{
	"login":       "u.login",
	"firstname":   "u.firstname",
	"lastname":    "u.lastname",
	"email":       "u.email",
	"affiliation": "u.affiliation",
	"clearance":   "u.clearance",
	"date":        "u.created_date",
	"projects":    "projects",
}

var filterColumns = map[string]string{
	"login":       "u.login",
	"firstname":   "u.firstname",
	"lastname":    "u.lastname",
	"email":       "u.email",
	"affiliation": "u.affiliation",
	"origin":      "u.origin",
	"clearance":   "u.clearance",
}

// ListQuery selects a page of users. Filters are substring matches.
type ListQuery struct {
	Sort    string
	Desc    bool
	Filters map[string]string
	Offset  int
	Limit   int
}

// ListedUser is one row of a user listing.
type ListedUser struct {
	Login       string `json:"login"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
	Origin      string `json:"origin"`
	Clearance   string `json:"clearance"`
	Accepted    bool   `json:"accepted"`
	CreatedDate string `json:"created_date"`
	Projects    int    `json:"projects"`
}

// ListPage is a page of users plus the number of matching users overall.
type ListPage struct {
	Users  []ListedUser `json:"users"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

// List returns a page of users matching q.
func (s *Store) List(ctx context.Context, q ListQuery) (*ListPage, error) {
	orderBy := sortColumns["login"]
	if q.Sort != "" {
		col, ok := sortColumns[q.Sort]
		if !ok {
			return nil, ErrInvalidListQuery
		}
		orderBy = col
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	where, args, err := buildFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	offset := max(q.Offset, 0)

	page := &ListPage{Users: []ListedUser{}, Offset: offset, Limit: limit}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u"+where, args...).Scan(&page.Total); err != nil {
		return nil, outcome.IO("listing users failed", err)
	}

	query := `SELECT u.login, u.firstname, u.lastname, u.email, u.affiliation, u.origin,
		u.clearance, u.accepted, u.created_date,
		(SELECT COUNT(*) FROM projects p WHERE p.owner_login = u.login) AS projects
		FROM users u` + where + " ORDER BY " + orderBy + " " + dir + ", u.login ASC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, outcome.IO("listing users failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lu ListedUser
		var accepted int
		if err := rows.Scan(&lu.Login, &lu.FirstName, &lu.LastName, &lu.Email, &lu.Affiliation,
			&lu.Origin, &lu.Clearance, &accepted, &lu.CreatedDate, &lu.Projects); err != nil {
			return nil, outcome.IO("listing users failed", err)
		}
		lu.Accepted = accepted != 0
		page.Users = append(page.Users, lu)
	}
	if err := rows.Err(); err != nil {
		return nil, outcome.IO("listing users failed", err)
	}
	return page, nil
}

// buildFilters turns filters into a WHERE clause of parameterized LIKE
// terms. Keys are processed in sorted order so the clause is stable.
func buildFilters(filters map[string]string) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		if _, ok := filterColumns[k]; !ok {
			return "", nil, ErrInvalidListQuery
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	terms := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		terms = append(terms, filterColumns[k]+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filters[k])+"%")
	}
	return " WHERE " + strings.Join(terms, " AND "), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
