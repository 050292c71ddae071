package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newClaimer(t *testing.T) (*RedisClaimer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	c := NewRedisClaimer(client, "rantbox", time.Hour)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestClaimEventOnce(t *testing.T) {
	c, mr := newClaimer(t)
	ctx := context.Background()

	ok, err := c.ClaimEvent(ctx, "evt_1")
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	ok, err = c.ClaimEvent(ctx, "evt_1")
	if err != nil || ok {
		t.Fatalf("second claim = %v, %v", ok, err)
	}

	if !mr.Exists("rantbox:webhook_event:evt_1") {
		t.Error("claim key not written")
	}
	if ttl := mr.TTL("rantbox:webhook_event:evt_1"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}
}

func TestReleaseEvent(t *testing.T) {
	c, _ := newClaimer(t)
	ctx := context.Background()

	if _, err := c.ClaimEvent(ctx, "evt_2"); err != nil {
		t.Fatal(err)
	}
	if err := c.ReleaseEvent(ctx, "evt_2"); err != nil {
		t.Fatalf("ReleaseEvent: %v", err)
	}
	ok, err := c.ClaimEvent(ctx, "evt_2")
	if err != nil || !ok {
		t.Errorf("claim after release = %v, %v", ok, err)
	}
}

func TestClaimExpires(t *testing.T) {
	c, mr := newClaimer(t)
	ctx := context.Background()

	if _, err := c.ClaimEvent(ctx, "evt_3"); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Hour)
	if ok, _ := c.ClaimEvent(ctx, "evt_3"); !ok {
		t.Error("claim did not expire")
	}
}
