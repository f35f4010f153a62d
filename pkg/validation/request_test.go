package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replicationRequest struct {
	Mode string  `validate:"omitempty,oneof=cost_per_org hours_per_org"`
	Cost float64 `validate:"gte=0"`
}

type scalingRequest struct {
	Orgs        float64  `validate:"gte=1,lte=10000"`
	Adoption    float64  `validate:"gte=0,lte=100"`
	Coefficient *float64 `validate:"omitempty,gte=0,lte=1"`
	Replication replicationRequest
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(scalingRequest{Orgs: 3, Adoption: 50}))

	high := 1.5
	err := Struct(scalingRequest{
		Orgs:        0,
		Adoption:    120,
		Coefficient: &high,
		Replication: replicationRequest{Mode: "free", Cost: -1},
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, map[string]string{
		"orgs":             "must be greater than or equal to 1",
		"adoption":         "must be less than or equal to 100",
		"coefficient":      "must be less than or equal to 1",
		"replication.mode": "must be one of: cost_per_org hours_per_org",
		"replication.cost": "must be greater than or equal to 0",
	}, fields)
}

func TestStructUpperBound(t *testing.T) {
	err := Struct(scalingRequest{Orgs: 1e10, Adoption: 50})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"orgs": "must be less than or equal to 10000"}, FieldErrors(err))
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}
