package graphql

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/query/executor"
	"github.com/mirrosha26/CoreBackend/pkg/ctxutil"
)

// libraryService is the write path invoked by mutations.
type libraryService interface {
	AddNote(ctx context.Context, userID, cardID int64, text string) (domain.Note, error)
	DeleteNote(ctx context.Context, userID, noteID int64) error
	SaveToFolder(ctx context.Context, userID, cardID, folderID int64) (domain.Folder, error)
	RemoveFromFolder(ctx context.Context, userID, cardID, folderID int64) error
	ToggleParticipantFollow(ctx context.Context, userID, participantID int64) (bool, error)
}

// privacySource resolves the private participants a user may see.
type privacySource interface {
	VisiblePrivateIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Handler serves POST /graphql.
type Handler struct {
	exec    executor.QueryExecutor
	library libraryService
	privacy privacySource
	log     *slog.Logger
}

// NewHandler creates the GraphQL HTTP handler.
func NewHandler(exec executor.QueryExecutor, library libraryService, privacy privacySource, log *slog.Logger) *Handler {
	return &Handler{
		exec:    exec,
		library: library,
		privacy: privacy,
		log:     log.With("component", "graphql_handler"),
	}
}

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data       any            `json:"data,omitempty"`
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, gqlResponse{
			Errors: gqlerror.List{{Message: "malformed request body"}},
		})
		return
	}

	ctx := r.Context()
	parsedQuery, mutation, err := Parse(req.Query, req.Variables, req.OperationName)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	if mutation != nil {
		h.serveMutation(ctx, w, mutation)
		return
	}
	h.serveQuery(ctx, w, parsedQuery)
}

func (h *Handler) serveQuery(ctx context.Context, w http.ResponseWriter, q *ParsedQuery) {
	privacy, err := h.privacyContext(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	res, err := h.exec.Execute(ctx, executor.Request{
		Tree:       q.Tree,
		Filter:     q.Filter,
		Pagination: q.Pagination,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Privacy:    privacy,
		CardID:     q.CardID,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, gqlResponse{
		Data: map[string]any{q.Tree.Operation: toConnectionView(res.Connection)},
		Extensions: map[string]any{
			"diagnostics": toDiagnosticsView(res.Diagnostics),
		},
	})
}

func (h *Handler) serveMutation(ctx context.Context, w http.ResponseWriter, m *Mutation) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	var (
		data any
		err  error
	)
	switch m.Name {
	case "addNote":
		var note domain.Note
		note, err = h.library.AddNote(ctx, userID, m.CardID, m.Text)
		data = toNoteView(note)
	case "deleteNote":
		err = h.library.DeleteNote(ctx, userID, m.NoteID)
		data = err == nil
	case "saveToFolder":
		var folder domain.Folder
		folder, err = h.library.SaveToFolder(ctx, userID, m.CardID, m.FolderID)
		data = folderView{ID: folder.ID, Name: folder.Name, IsDefault: folder.IsDefault}
	case "removeFromFolder":
		err = h.library.RemoveFromFolder(ctx, userID, m.CardID, m.FolderID)
		data = err == nil
	case "toggleParticipantFollow":
		var followed bool
		followed, err = h.library.ToggleParticipantFollow(ctx, userID, m.ParticipantID)
		data = map[string]bool{"followed": followed}
	default:
		err = domain.NewValidationError("mutation", "unknown mutation "+m.Name)
	}
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, gqlResponse{
		Data: map[string]any{m.Name: data},
	})
}

// privacyContext builds the requester's privacy context. Anonymous
// requests get the zero context; authenticated requests resolve their
// visible-private set once per request.
func (h *Handler) privacyContext(ctx context.Context) (domain.PrivacyContext, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.PrivacyContext{}, nil
	}

	visible, err := h.privacy.VisiblePrivateIDs(ctx, userID)
	if err != nil {
		return domain.PrivacyContext{}, err
	}
	return domain.PrivacyContext{
		UserID:                     userID,
		VisiblePrivateParticipants: visible,
	}, nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusOK, gqlResponse{
		Errors: gqlerror.List{presentError(ctx, h.log, err)},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
