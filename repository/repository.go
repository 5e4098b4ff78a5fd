package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yashrajoria/shoptube-backend/hasura"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// GraphQLClient is implemented by hasura.Client.
type GraphQLClient interface {
	Do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error
}

type aggregateCount struct {
	Aggregate struct {
		Count int `json:"count"`
	} `json:"aggregate"`
}

type aggregateSum struct {
	Aggregate struct {
		Count int `json:"count"`
		Sum   struct {
			TotalAmount *float64 `json:"total_amount"`
		} `json:"sum"`
	} `json:"aggregate"`
}

func (a aggregateSum) total() float64 {
	if a.Aggregate.Sum.TotalAmount == nil {
		return 0
	}
	return *a.Aggregate.Sum.TotalAmount
}

// validID filters out identifiers the uuid columns would reject.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if validID(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func mapConstraint(err error) error {
	if errors.Is(err, hasura.ErrConstraintViolation) {
		return ErrDuplicate
	}
	return err
}
