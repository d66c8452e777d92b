// Copyright (c) 2026 Clipflow. All rights reserved.

/*
HTTP delivery layer for the chunked upload protocol.

Chunk bodies arrive as raw binary (application/octet-stream); only the
init request carries JSON. Every route is bound to the owning project in
the URL so the coordinator can enforce the (handle, project) binding.
*/
package upload

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	requestutil "github.com/clipflow/clipflow/internal/platform/request"
	"github.com/clipflow/clipflow/internal/platform/respond"
	"github.com/clipflow/clipflow/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the chunked upload HTTP endpoints.
type Handler struct {
	coordinator *Coordinator
}

// NewHandler constructs a new [Handler] with its coordinator dependency.
func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// Routes returns a [chi.Router] for mounting under
// /projects/{projectID}/assets/chunked.
//
// # Endpoints
//   - POST /init                  : Opens a session.
//   - POST /{uploadID}            : Appends one binary chunk.
//   - POST /{uploadID}/complete   : Promotes the session into an asset.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/init", handler.init)
	router.Post("/{uploadID}", handler.append)
	router.Post("/{uploadID}/complete", handler.complete)

	return router
}

// # Request Payloads

type initRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Mime     string `json:"mime"`
}

/*
init opens a new chunked upload session.

POST /api/v1/projects/{projectID}/assets/chunked/init

Response:
  - 201: {upload_id, chunk_size}
  - 400: Invalid filename, mime, or size
  - 404: Missing or foreign project
  - 413: Declared size exceeds the ceiling
*/
func (handler *Handler) init(writer http.ResponseWriter, request *http.Request) {
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

	var input initRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.coordinator.Init(request.Context(), identity, projectID, InitInput{
		Filename: input.Filename,
		Size:     input.Size,
		Mime:     input.Mime,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
append appends one binary chunk to an open session.

POST /api/v1/projects/{projectID}/assets/chunked/{uploadID}

Request:
  - Raw binary body (the chunk)

Response:
  - 200: {received_size, done}
  - 400: Empty or overflowing chunk
  - 404: Unknown (session, project) binding
*/
func (handler *Handler) append(writer http.ResponseWriter, request *http.Request) {
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

	uploadID := requestutil.Param(request, "uploadID")

	validator := &validate.Validator{}
	validator.Required(FieldUploadID, uploadID).
		UUID(FieldUploadID, uploadID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// A single chunk can never legitimately exceed the whole-file ceiling.
	chunk, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes))
	if err != nil {
		respond.Error(writer, request, apperr.PayloadTooLarge(constants.MaxUploadBytes))
		return
	}

	result, err := handler.coordinator.AppendChunk(request.Context(), identity, projectID, uploadID, chunk)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
complete promotes a fully-received session into a permanent asset.

POST /api/v1/projects/{projectID}/assets/chunked/{uploadID}/complete

Response:
  - 201: Asset
  - 400: Incomplete upload or re-validation failure
  - 404: Unknown binding or already completed
  - 413: Stale size violation
*/
func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
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

	uploadID := requestutil.Param(request, "uploadID")

	validator := &validate.Validator{}
	validator.Required(FieldUploadID, uploadID).
		UUID(FieldUploadID, uploadID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.coordinator.Complete(request.Context(), identity, projectID, uploadID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}
