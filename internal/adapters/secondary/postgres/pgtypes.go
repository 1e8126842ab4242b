package postgres

import "github.com/jackc/pgx/v5/pgtype"

// nullText stores an empty string as NULL, e.g. the customer of an unbooked ticket.
func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// textOrEmpty reads a nullable text column back as a plain string.
func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
