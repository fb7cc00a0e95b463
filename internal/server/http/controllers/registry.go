package controllers

import (
	"net/http"

	"github.com/rzbill/cuidd/internal/runtime"
	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	logpkg "github.com/rzbill/cuidd/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general     *GeneralController
	identifiers *IdentifiersController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, svc *identifiersvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:     NewGeneralController(rt, svc),
		identifiers: NewIdentifiersController(svc, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.identifiers.RegisterRoutes(mux)
}
