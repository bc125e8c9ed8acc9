package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/phil-mansfield/gohalo"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// propertiesTable is the name of the table written by WritePropertiesSQLite.
const propertiesTable = "halos"

// WritePropertiesSQLite writes records[1:] to a table named halos in the
// SQLite database at path, replacing any existing table of that name. The
// columns and the meaning of ids are the same as for WriteProperties.
func WritePropertiesSQLite(
	path string, records []gohalo.PropertyRecord, ids *IDMap,
) (retErr error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("Could not open SQLite database %s: %w", path, err)
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	defs := make([]string, len(propertyColumns))
	names := make([]string, len(propertyColumns))
	marks := make([]string, len(propertyColumns))
	for i, col := range propertyColumns {
		typ := "REAL"
		if col.integer {
			typ = "INTEGER"
		}
		defs[i] = fmt.Sprintf("%s %s", col.name, typ)
		names[i] = col.name
		marks[i] = "?"
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("Could not begin a transaction on %s: %w", path, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + propertiesTable); err != nil {
		return fmt.Errorf("Could not drop the old %s table: %w", propertiesTable, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)",
		propertiesTable, strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("Could not create the %s table: %w", propertiesTable, err)
	}

	insert, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		propertiesTable, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("Could not prepare the %s insert: %w", propertiesTable, err)
	}
	defer insert.Close()

	args := make([]interface{}, len(propertyColumns))
	for g := 1; g < len(records); g++ {
		for i := range propertyColumns {
			args[i] = propertyColumns[i].value(&records[g], ids)
		}
		if _, err := insert.Exec(args...); err != nil {
			return fmt.Errorf("Could not insert group %d: %w", g, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Could not commit the %s table: %w", propertiesTable, err)
	}
	return nil
}
