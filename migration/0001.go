package migration

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
)

// migrate0001 drops the level columns which were stored next to total_xp.
// They are derived from total_xp on every read now.
func migrate0001(ctx context.Context) error {
	migrator := xcontext.DB(ctx).Migrator()
	for _, column := range []string{"level", "current_xp", "xp_to_next_level", "title"} {
		if !migrator.HasColumn(&entity.XPLedger{}, column) {
			continue
		}

		if err := migrator.DropColumn(&entity.XPLedger{}, column); err != nil {
			return err
		}
	}

	return nil
}
