package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestConfigApply(t *testing.T) {
	pc, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/underbyte?pool_max_conns=3")
	if err != nil {
		t.Fatal(err)
	}

	Config{MinConns: 2, MaxConnIdleTime: time.Minute, ApplicationName: "underbyte"}.apply(pc)

	if pc.MaxConns != 3 {
		t.Fatalf("zero MaxConns must keep the dsn value, got %d", pc.MaxConns)
	}
	if pc.MinConns != 2 || pc.MaxConnIdleTime != time.Minute {
		t.Fatalf("pool tuning not applied: min=%d idle=%v", pc.MinConns, pc.MaxConnIdleTime)
	}
	if got := pc.ConnConfig.RuntimeParams["application_name"]; got != "underbyte" {
		t.Fatalf("application_name = %q", got)
	}
}
