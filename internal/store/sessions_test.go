package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/aquagest/internal/db"
)

func TestRevokeAndCheckSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsSessionRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if revoked {
		t.Error("expected session not to be revoked")
	}

	if err := RevokeSession(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	revoked, err = IsSessionRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsSessionRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected session to be revoked")
	}

	revoked, _ = IsSessionRevoked(ctx, database, "jti-2")
	if revoked {
		t.Error("expected different session not to be revoked")
	}
}

func TestRevokeSessionIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := RevokeSession(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("RevokeSession run %d: %v", i+1, err)
		}
	}
}

func TestRevokeSessionPrunesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RevokeSession(ctx, database, "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := RevokeSession(ctx, database, "new", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	revoked, _ := IsSessionRevoked(ctx, database, "old")
	if revoked {
		t.Error("expected expired revocation to be pruned")
	}
	revoked, _ = IsSessionRevoked(ctx, database, "new")
	if !revoked {
		t.Error("expected live revocation to remain")
	}
}
