// Package http provides http transport for the feedback reconciler
package http

import (
	"net/http"

	"contextual/internal/modkit/httpkit"
	"contextual/internal/services/feedback/domain"
)

type handlers struct {
	svc domain.ServicePort
}

// Register mounts GET /callback/{provider}; any provider name is accepted
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.GetQuery[domain.CallbackQuery](r, "/callback/{provider}", h.callback)
}

// swagger:route GET /callback/{provider} Callback callback
// @Summary Notification button callback
// @Description Logs the interaction, marks the latest notification clicked and links the commit when feedback is true
// @Tags Callback
// @Produce json
// @Param provider path string true "chat provider, dingtalk today"
// @Param trace_id query string true "trace id of the commit event"
// @Param commit query string true "short commit hash"
// @Param jira query string true "recommended key, legacy form"
// @Param feedback query bool true "true confirms, false is not sure"
// @Param top1 query string false "recommended key"
// @Param selected query string false "key the user acted on"
// @Success 200 {object} domain.Result "recorded"
// @Failure 422 "unparseable parameter"
// @Router /callback/{provider} [get]
func (h *handlers) callback(r *http.Request, q domain.CallbackQuery) (any, error) {
	in := domain.Resolve(q)
	in.Provider = httpkit.URLParam(r, "provider")
	return h.svc.Reconcile(r.Context(), in)
}
