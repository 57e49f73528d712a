package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeScripter evaluates the fixed-window script against an in-memory
// counter map.
type fakeScripter struct {
	counts map[string]int64
	ttl    int64
	err    error
}

func (f *fakeScripter) run(ctx context.Context, keys []string) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counts[keys[0]]++
	cmd.SetVal([]interface{}{f.counts[keys[0]], f.ttl})
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}
func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}
func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}
func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}
func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}
func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	fake := &fakeScripter{counts: map[string]int64{}, ttl: 1500}
	rl := NewRedisLimiter(fake, 2, time.Second, "dentalops")

	for i := 0; i < 2; i++ {
		ok, _, err := rl.Allow(context.Background(), "practice-1")
		if err != nil || !ok {
			t.Fatalf("request %d: expected allowed, got ok=%v err=%v", i+1, ok, err)
		}
	}

	ok, retry, err := rl.Allow(context.Background(), "practice-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected third request to be rejected")
	}
	if retry != 2 {
		t.Errorf("expected retry after 2s for 1500ms ttl, got %d", retry)
	}
	if fake.counts["dentalops:practice-1"] != 3 {
		t.Errorf("expected prefixed key, got %v", fake.counts)
	}
}

func TestRedisLimiter_Defaults(t *testing.T) {
	rl := NewRedisLimiter(&fakeScripter{counts: map[string]int64{}}, 0, 0, " ")
	if rl.Limit() != 60 || rl.window != time.Second || rl.prefix != "rl" {
		t.Errorf("unexpected defaults: limit=%d window=%s prefix=%q", rl.limit, rl.window, rl.prefix)
	}
}

func TestRedisLimiter_PropagatesError(t *testing.T) {
	rl := NewRedisLimiter(&fakeScripter{counts: map[string]int64{}, err: errors.New("dial tcp: refused")}, 5, time.Second, "")
	if _, _, err := rl.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error from redis")
	}
}

func TestToInt64(t *testing.T) {
	if n, err := toInt64("42"); err != nil || n != 42 {
		t.Errorf("toInt64(\"42\") = %d, %v", n, err)
	}
	if _, err := toInt64(1.5); err == nil {
		t.Error("expected error for float input")
	}
}
