package listing

import "database/sql"

// SQLStore implements Store against a MySQL listings table:
//
//	id, name, description, price, item_condition, category
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns every listing ordered by name.
func (s *SQLStore) List() []Listing {
	query := `
		SELECT id, name, description, price, item_condition, category
		FROM listings
		ORDER BY name
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var items []Listing
	for rows.Next() {
		var item Listing
		var condition, category sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &condition, &category); err != nil {
			return items
		}
		item.Condition = condition.String
		item.Category = category.String
		items = append(items, item)
	}
	return items
}

// FindByID looks up a listing by identifier.
func (s *SQLStore) FindByID(id string) (Listing, bool) {
	query := `
		SELECT id, name, description, price, item_condition, category
		FROM listings
		WHERE id = ?
	`
	row := s.db.QueryRow(query, id)

	var item Listing
	var condition, category sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &condition, &category); err != nil {
		return Listing{}, false
	}
	item.Condition = condition.String
	item.Category = category.String
	return item, true
}
