package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/geolocator/internal/db"
)

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(context.DeadlineExceeded)),
	)

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.Ping(context.Background())
	if !isDBError(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want db.Error wrapping deadline", err)
	}
}

func TestWaitForReady_ImmediatePing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))

	if err := NewStoreForTest(c).WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := NewStoreForTest(c).WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "geolocator:quota:youtube:daily:2026-01-02")).
		Return(mock.Result(mock.RedisBlobString("300")))

	data, err := NewStoreForTest(c).Get(context.Background(), "geolocator:quota:youtube:daily:2026-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "300" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	_, err := NewStoreForTest(c).Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	_, err := NewStoreForTest(c).Get(context.Background(), "k")
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("network error must not be ErrKeyNotFound")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SET", "k", `{"items":[]}`, "EX", "600")).
			Return(mock.Result(mock.RedisString("OK"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "60")).
			Return(mock.ErrorResult(context.DeadlineExceeded)),
	)

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "k", []byte(`{"items":[]}`), 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Fatalf("err = %v, want db.Error{Op: SET}", err)
	}
}

func TestIncrBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "counter", "100")).
		Return(mock.Result(mock.RedisInt64(400)))

	n, err := NewStoreForTest(c).IncrBy(context.Background(), "counter", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 400 {
		t.Errorf("IncrBy = %d, want 400", n)
	}
}

func TestIncrBy_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "counter", "1")).
		Return(mock.ErrorResult(context.Canceled))

	_, err := NewStoreForTest(c).IncrBy(context.Background(), "counter", 1)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpIncrBy {
		t.Fatalf("err = %v, want db.Error{Op: INCRBY}", err)
	}
}

func TestExpire(t *testing.T) {
	tests := []struct {
		name   string
		nx     bool
		wantNX bool
	}{
		{"plain", false, false},
		{"nx", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
					if cmd[0] != "EXPIRE" || cmd[1] != "k" || cmd[2] != "172800" {
						return false
					}
					return slices.Contains(cmd, "NX") == tt.wantNX
				})).
				Return(mock.Result(mock.RedisInt64(1)))

			if err := NewStoreForTest(c).Expire(context.Background(), "k", 48*time.Hour, tt.nx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
