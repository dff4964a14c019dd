package repo_test

import (
	"context"
	"os"
	"testing"

	"github.com/hwang1401/travel-planner/testutil"
)

// TestMain brings the test database schema up to date once for the whole
// package. Without TEST_DATABASE_URL the integration tests skip themselves.
func TestMain(m *testing.M) {
	testutil.MigrateFromEnv(context.Background())
	os.Exit(m.Run())
}
