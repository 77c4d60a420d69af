package httpx

import (
	"net/http"
	"slices"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// MetaHandlers serve the reference data a client needs to build a request.
type MetaHandlers struct {
	Defaults model.FormDefaults
	Timezone string
}

// VersionModes handles GET /api/version-modes.
func (h *MetaHandlers) VersionModes(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, model.DescribeVersionModes())
}

// FormDefaults handles GET /api/form-defaults.
func (h *MetaHandlers) FormDefaults(w http.ResponseWriter, _ *http.Request) {
	servers := slices.Clone(h.Defaults.KnownServers)
	if servers == nil {
		servers = []string{}
	}
	WriteJSON(w, http.StatusOK, model.FormDefaultsView{
		Request:      model.DefaultRawJobRequest(h.Defaults),
		KnownServers: servers,
		Timezone:     h.Timezone,
	})
}
