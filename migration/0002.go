package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
)

// migrate0002 moves entries to the (user_id, id) primary key. Event ids were
// unique across all users before, so an id reused by another user was
// dropped as a duplicate.
func migrate0002(ctx context.Context) error {
	db := xcontext.DB(ctx)
	migrator := db.Migrator()
	if !migrator.HasTable(&entity.Entry{}) {
		return nil
	}

	columnTypes, err := migrator.ColumnTypes(&entity.Entry{})
	if err != nil {
		return err
	}

	columns := []string{}
	for _, c := range columnTypes {
		if c.Name() == "user_id" {
			if isPrimary, ok := c.PrimaryKey(); ok && isPrimary {
				return nil
			}
		}
		columns = append(columns, c.Name())
	}

	if err := migrator.RenameTable("entries", "entries_0001"); err != nil {
		return err
	}

	// Indexes keep their names after renaming, they must be gone before the
	// new table creates them again.
	for _, index := range []string{"idx_entries_user_domain", "idx_entries_occurred_at", "idx_entries_day"} {
		if migrator.HasIndex("entries_0001", index) {
			if err := migrator.DropIndex("entries_0001", index); err != nil {
				return err
			}
		}
	}

	if err := migrator.CreateTable(&entity.Entry{}); err != nil {
		return err
	}

	list := strings.Join(columns, ",")
	err = db.Exec(fmt.Sprintf("INSERT INTO entries (%s) SELECT %s FROM entries_0001", list, list)).Error
	if err != nil {
		return err
	}

	return migrator.DropTable("entries_0001")
}
