// Package testutil holds shared setup helpers for package tests.
package testutil

import (
	"database/sql"
	"testing"

	"propfirm-backend/lib/rulestore"
	"propfirm-backend/lib/telemetry"

	_ "modernc.org/sqlite"
)

// Store opens an in-memory archive with telemetry wired for tests. The
// returned cleanup closes the store and tears down telemetry.
func Store(t testing.TB, serviceName string) (*rulestore.Store, func()) {
	cleanup := telemetry.SetupForTesting(t, serviceName)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	store, err := rulestore.New(db)
	if err != nil {
		t.Fatal(err)
	}

	return store, func() {
		store.Close()
		cleanup()
	}
}
