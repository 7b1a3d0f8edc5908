package main

import (
	"context"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// registryHealthAdapter reports ready once the schema registry is sealed
// and the default schema resolves.
type registryHealthAdapter struct {
	svc *normalization.Service
}

func (a *registryHealthAdapter) Name() string {
	return "schema_registry"
}

func (a *registryHealthAdapter) Check(_ context.Context) error {
	reg := a.svc.Registry()
	if !reg.Sealed() {
		return errors.New(errors.ErrCodeServiceUnavailable, "schema registry is not sealed")
	}
	_, err := reg.Composite(a.svc.DefaultSchema())
	return err
}

//Personal.AI order the ending
