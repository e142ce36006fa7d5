package auditoria

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Handler wires audit trail endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	scope, err := principal.Scope()
	if err != nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "an institution context is required")
		return
	}
	query := r.URL.Query()
	filter := Filter{Entity: query.Get("entity"), Action: query.Get("action")}
	if raw := query.Get("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid actor_id")
			return
		}
		filter.ActorID = &actorID
	}
	for param, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := query.Get(param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+param+" timestamp")
				return
			}
			*target = &ts
		}
	}
	limit, offset := shared.ParseLimitOffset(query)
	entries, err := h.repo.List(r.Context(), scope, filter, limit, offset)
	if err != nil {
		h.logger.Error("list audit trail", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}
