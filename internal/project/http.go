// Copyright (c) 2026 Clipflow. All rights reserved.

/*
HTTP delivery layer for projects and their edit history.

All routes require authentication; ownership is enforced by the service's
policy chain, so a foreign project id is indistinguishable from a missing
one (404).
*/
package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipflow/clipflow/internal/platform/middleware"
	requestutil "github.com/clipflow/clipflow/internal/platform/request"
	"github.com/clipflow/clipflow/internal/platform/respond"
	"github.com/clipflow/clipflow/internal/platform/validate"
	"github.com/clipflow/clipflow/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements project-related HTTP endpoints.
type Handler struct {
	projectService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{projectService: service}
}

// Routes returns a [chi.Router] with project CRUD and history endpoints.
//
// Sub-resource routers (assets, chunked uploads) are mounted inside the
// /{projectID} subtree so they inherit the auth gate and the projectID
// URL parameter. Nil sub-routers are skipped.
func (handler *Handler) Routes(assets, chunked chi.Router) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Post("/", handler.create)

	router.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", handler.get)
		r.Put("/", handler.update)
		r.Delete("/", handler.remove)
		r.Get("/history", handler.listHistory)
		r.Post("/history", handler.recordHistory)

		// The static "chunked" segment wins over the assets wildcard.
		if chunked != nil {
			r.Mount("/assets/chunked", chunked)
		}
		if assets != nil {
			r.Mount("/assets", assets)
		}
	})

	return router
}

// # Request Payloads

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type historyRequest struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

func (handler *Handler) validateProject(input projectRequest) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 255).
		MaxLen(FieldDescription, input.Description, 2000)

	return validator.Err()
}

/*
create opens a new project owned by the caller.

POST /api/v1/projects

Response:
  - 201: Project
  - 400: ErrInvalidJSON: Bad input or validation failure
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input projectRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.validateProject(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.projectService.Create(request.Context(), identity, CreateInput{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
list returns a page of the caller's projects.

GET /api/v1/projects?page=&limit=

Response:
  - 200: []Project with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)

	projects, total, err := handler.projectService.List(request.Context(), identity, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, projects, pagination.NewMeta(page.Page, page.Limit, int(total)))
}

/*
get returns one owned project.

GET /api/v1/projects/{projectID}

Response:
  - 200: Project
  - 404: Missing or foreign project
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	projectID, err := requestutil.Int64Param(request, "projectID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.projectService.Get(request.Context(), identity, projectID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
update replaces the mutable fields of an owned project.

PUT /api/v1/projects/{projectID}

Response:
  - 200: Project
  - 400: Validation failure
  - 404: Missing or foreign project
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	projectID, err := requestutil.Int64Param(request, "projectID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input projectRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.validateProject(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.projectService.Update(request.Context(), identity, projectID, UpdateInput{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
remove deletes an owned project.

DELETE /api/v1/projects/{projectID}

Response:
  - 204: Deleted
  - 404: Missing or foreign project
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	projectID, err := requestutil.Int64Param(request, "projectID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.projectService.Delete(request.Context(), identity, projectID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
recordHistory appends an editing action to an owned project's log.

POST /api/v1/projects/{projectID}/history

Response:
  - 201: HistoryEntry
  - 400: Unknown action or validation failure
  - 404: Missing or foreign project
*/
func (handler *Handler) recordHistory(writer http.ResponseWriter, request *http.Request) {
	projectID, err := requestutil.Int64Param(request, "projectID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input historyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAction, input.Action).
		OneOf(FieldAction, input.Action, Actions...)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.projectService.RecordHistory(request.Context(), identity, projectID, HistoryInput{
		Action: input.Action,
		Params: input.Params,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
listHistory returns a page of an owned project's edit log.

GET /api/v1/projects/{projectID}/history?page=&limit=

Response:
  - 200: []HistoryEntry with pagination metadata
  - 404: Missing or foreign project
*/
func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	projectID, err := requestutil.Int64Param(request, "projectID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)

	entries, total, err := handler.projectService.ListHistory(request.Context(), identity, projectID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(page.Page, page.Limit, int(total)))
}
