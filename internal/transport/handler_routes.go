package transport

import (
	"net/http"

	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/openapi"
	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

const maxURLLength = 2048

type resolveResponse struct {
	route.Resolution
	Path string `json:"path"`
}

func handleResolve(mapper *route.Mapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if raw == "" {
			WriteError(w, r, model.NewBadRequestError("url query parameter is required"))
			return
		}
		if len(raw) > maxURLLength {
			WriteError(w, r, model.NewBadRequestError("url is too long"))
			return
		}
		res := mapper.Resolve(raw)
		WriteJSON(w, http.StatusOK, resolveResponse{
			Resolution: res,
			Path:       mapper.ResolvePathFromState(res.State, res.Aux),
		})
	}
}

type pathResponse struct {
	State model.PageState `json:"state"`
	Path  string          `json:"path"`
}

// handlePath builds a state's URL. Query parameters other than state are
// passed to the mapper as auxiliary values.
func handlePath(mapper *route.Mapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		raw := q.Get("state")
		if raw == "" {
			WriteError(w, r, model.NewBadRequestError("state query parameter is required"))
			return
		}
		state, ok := model.ParsePageState(raw)
		if !ok {
			WriteError(w, r, model.NewUnknownStateError(raw))
			return
		}

		var aux map[string]string
		for k, vs := range q {
			if k == "state" || len(vs) == 0 || vs[0] == "" {
				continue
			}
			if aux == nil {
				aux = make(map[string]string)
			}
			aux[k] = vs[0]
		}
		WriteJSON(w, http.StatusOK, pathResponse{
			State: state,
			Path:  mapper.ResolvePathFromState(state, aux),
		})
	}
}

type gateContext struct {
	IsAuthenticated  bool   `json:"is_authenticated"`
	Role             string `json:"role" validate:"omitempty,nav_role"`
	IsLoadingAuth    bool   `json:"is_loading_auth"`
	IsMobileAppShell bool   `json:"is_mobile_app_shell"`
	IsAuthOnlyDomain bool   `json:"is_auth_only_domain"`
	HasOnboarded     bool   `json:"has_onboarded"`
	LastVisited      string `json:"last_visited" validate:"omitempty,page_state"`
}

type authorizeRequest struct {
	State   string      `json:"state" validate:"required,max=64"`
	Context gateContext `json:"context"`
}

type authorizeResponse struct {
	Requested model.PageState    `json:"requested"`
	Final     model.PageState    `json:"final"`
	Path      string             `json:"path"`
	Decision  model.AuthDecision `json:"decision"`
	Redirects []model.PageState  `json:"redirects,omitempty"`
	Exhausted bool               `json:"exhausted,omitempty"`
}

// handleAuthorize evaluates the gate for a caller-supplied context without
// touching any session.
func handleAuthorize(g *gate.Gate, mapper *route.Mapper, decoder *requestDecoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authorizeRequest
		if err := decoder.decode(r, "authorizeGate", &req); err != nil {
			WriteError(w, r, err)
			return
		}

		nav := model.NavigationContext{
			IsAuthenticated:  req.Context.IsAuthenticated,
			Role:             model.ParseRole(req.Context.Role),
			IsLoadingAuth:    req.Context.IsLoadingAuth,
			IsMobileAppShell: req.Context.IsMobileAppShell,
			IsAuthOnlyDomain: req.Context.IsAuthOnlyDomain,
			HasOnboarded:     req.Context.HasOnboarded,
			LastVisited:      model.PageState(req.Context.LastVisited),
		}
		trail := g.Follow(model.PageState(req.State), nav)
		WriteJSON(w, http.StatusOK, authorizeResponse{
			Requested: trail.Requested,
			Final:     trail.Final,
			Path:      mapper.ResolvePathFromState(trail.Final, nil),
			Decision:  trail.Decision,
			Redirects: trail.Redirects,
			Exhausted: trail.Exhausted,
		})
	}
}

func handleOpenAPI(api *openapi.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(api.JSON())
	}
}
