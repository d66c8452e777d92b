// Copyright (c) 2026 Clipflow. All rights reserved.

/*
HTTP delivery layer for project assets.

The single-shot endpoint accepts multipart/form-data with one "file" part;
clients with larger or unreliable connections use the chunked protocol in
internal/upload instead.
*/
package asset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipflow/clipflow/internal/platform/apperr"
	"github.com/clipflow/clipflow/internal/platform/constants"
	requestutil "github.com/clipflow/clipflow/internal/platform/request"
	"github.com/clipflow/clipflow/internal/platform/respond"
	"github.com/clipflow/clipflow/pkg/pagination"
)

// multipartMemoryBytes bounds the in-memory portion of multipart parsing;
// the file part itself spools to disk past this threshold.
const multipartMemoryBytes = 1 << 20

// # Definitions & Constructors

// Handler implements asset-related HTTP endpoints.
type Handler struct {
	assetService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{assetService: service}
}

// Routes returns a [chi.Router] for mounting under /projects/{projectID}/assets.
//
// # Endpoints
//   - GET  / : Lists the project's assets.
//   - POST / : Single-shot multipart upload.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.upload)

	return router
}

/*
list returns a page of an owned project's assets.

GET /api/v1/projects/{projectID}/assets?page=&limit=

Response:
  - 200: []Asset with pagination metadata
  - 404: Missing or foreign project
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
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

	assets, total, err := handler.assetService.List(request.Context(), identity, projectID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, assets, pagination.NewMeta(page.Page, page.Limit, int(total)))
}

/*
upload stores one complete video from a multipart request.

POST /api/v1/projects/{projectID}/assets

Request:
  - multipart/form-data with a single "file" part

Response:
  - 201: Asset
  - 400: Missing part, wrong extension, or wrong content type
  - 404: Missing or foreign project
  - 413: File exceeds the size ceiling
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
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

	// Reject oversized bodies before buffering the multipart stream.
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes+multipartMemoryBytes)

	if err := request.ParseMultipartForm(multipartMemoryBytes); err != nil {
		respond.Error(writer, request, apperr.PayloadTooLarge(constants.MaxUploadBytes))
		return
	}

	file, header, err := request.FormFile(FieldFile)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("A single \"file\" part is required"))
		return
	}
	defer file.Close()

	created, err := handler.assetService.Upload(request.Context(), identity, projectID, UploadInput{
		Filename: header.Filename,
		Mime:     header.Header.Get("Content-Type"),
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}
