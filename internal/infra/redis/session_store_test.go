package redis

import (
	"testing"
	"time"

	"prelims-drill-service/internal/app"
	"prelims-drill-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	_ = store.GetOrCreate("drill-1", func() *app.Session {
		return app.NewSession("drill-1", []domain.Question{
			{ID: 1, Prompt: "q", Options: []string{"A. x", "B. y"}},
		}, 0, 60)
	})
	if !mr.Exists("drill:session:drill-1") {
		t.Fatalf("expected redis key to be set")
	}

	store.Delete("drill-1")
	if mr.Exists("drill:session:drill-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("drill-1"); ok {
		t.Fatalf("expected session gone from local map")
	}
}
