package bootstrap

import (
	"database/sql"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/data"
	"github.com/target/prreview-api/internal/testutil"
)

//nolint:ireturn // tests hold the store behind its port
func mustSQLiteRepo(db *sql.DB) core.JobRepository {
	return data.NewSQLiteJobRepo(db, data.RepoConfig{Logger: testutil.DiscardLogger()})
}
