package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestMapNotFound(t *testing.T) {
	if err := mapNotFound(pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Errorf("mapNotFound(ErrNoRows) = %v, want ErrNotFound", err)
	}
	other := errors.New("connection reset")
	if err := mapNotFound(other); err != other {
		t.Errorf("mapNotFound(other) = %v, want unchanged", err)
	}
}

func TestEpochFilter(t *testing.T) {
	where, args := epochFilter(0)
	if where != "" || len(args) != 0 {
		t.Errorf("epochFilter(0) = %q %v, want no filter", where, args)
	}
	where, args = epochFilter(174)
	if where != " WHERE epoch = $1" || len(args) != 1 || args[0] != int64(174) {
		t.Errorf("epochFilter(174) = %q %v", where, args)
	}
}
