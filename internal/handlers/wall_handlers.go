package handlers

import (
	"log/slog"
	"net/http"

	"scrumboard/internal/logging"
	"scrumboard/internal/scrum"
)

type WallHandlers struct {
	Wall *scrum.WallService
}

func NewWallHandlers(wall *scrum.WallService) *WallHandlers {
	return &WallHandlers{Wall: wall}
}

func (h *WallHandlers) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	post, err := h.Wall.CreatePost(ctx, userID, projectID, req.Content)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, post, http.StatusCreated)
}

func (h *WallHandlers) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	posts, err := h.Wall.ListPosts(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, posts, http.StatusOK)
}

func (h *WallHandlers) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.Wall.DeletePost(ctx, userID, postID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "WALL_POST_DELETE", logging.AuditSuccess,
		slog.String("post_id", postID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WallHandlers) CommentPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	comment, err := h.Wall.CommentPost(ctx, userID, postID, req.Content)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, comment, http.StatusCreated)
}

func (h *WallHandlers) ListPostCommentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	comments, err := h.Wall.ListComments(ctx, userID, postID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, comments, http.StatusOK)
}

func (h *WallHandlers) CreateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	doc, err := h.Wall.CreateDocument(ctx, userID, projectID, req.Title, req.Content)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "DOCUMENT_CREATE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("document_id", doc.ID.String()),
	)
	writeJSONResponse(w, doc, http.StatusCreated)
}

func (h *WallHandlers) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	docID, ok := pathUUID(w, r, "documentID")
	if !ok {
		return
	}

	doc, err := h.Wall.GetDocument(ctx, userID, docID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, doc, http.StatusOK)
}

func (h *WallHandlers) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	docs, err := h.Wall.ListDocuments(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, docs, http.StatusOK)
}

func (h *WallHandlers) UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	docID, ok := pathUUID(w, r, "documentID")
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	doc, err := h.Wall.UpdateDocument(ctx, userID, docID, req.Title, req.Content)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "DOCUMENT_UPDATE", logging.AuditSuccess,
		slog.String("document_id", docID.String()),
	)
	writeJSONResponse(w, doc, http.StatusOK)
}

func (h *WallHandlers) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	docID, ok := pathUUID(w, r, "documentID")
	if !ok {
		return
	}

	if err := h.Wall.DeleteDocument(ctx, userID, docID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "DOCUMENT_DELETE", logging.AuditSuccess,
		slog.String("document_id", docID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}
