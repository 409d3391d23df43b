package checks

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/kmd/mea/health"
)

func TestNewPostgres_InvalidDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "postgres://user:hunter2@db:notaport/app")
	if !errors.Is(err, ErrInvalidDSN) {
		t.Fatalf("err = %v, want ErrInvalidDSN", err)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("error leaks credentials: %v", err)
	}
}

func TestPostgres_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	pg, err := NewPostgres(context.Background(), "postgres://user:pw@"+addr+"/app?connect_timeout=1&sslmode=disable")
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := pg.Check(ctx)
	if result.Status != health.StatusUnhealthy {
		t.Fatalf("Status = %v, want Unhealthy", result.Status)
	}
	if !errors.Is(result.Error, ErrUnreachable) {
		t.Errorf("Error = %v, want ErrUnreachable", result.Error)
	}
}
