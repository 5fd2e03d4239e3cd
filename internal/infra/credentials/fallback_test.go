package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"postgen/internal/infra"
)

func TestApplyRunpodFallback(t *testing.T) {
	cases := []struct {
		name     string
		envKey   string
		exec     *stubExecutor
		wantKey  string
		wantUsed bool
		wantErr  bool
	}{
		{name: "env wins", envKey: "env", exec: &stubExecutor{token: "stored"}, wantKey: "env"},
		{name: "stored used", exec: &stubExecutor{token: " stored "}, wantKey: "stored", wantUsed: true},
		{name: "nothing stored", exec: &stubExecutor{err: pgx.ErrNoRows}},
		{name: "lookup error", exec: &stubExecutor{err: errors.New("db down")}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &infra.Config{RunpodAPIKey: tc.envKey}
			used, err := ApplyRunpodFallback(context.Background(), cfg, NewStore(tc.exec))
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if used != tc.wantUsed || cfg.RunpodAPIKey != tc.wantKey {
				t.Fatalf("used=%v key=%q", used, cfg.RunpodAPIKey)
			}
		})
	}
}
