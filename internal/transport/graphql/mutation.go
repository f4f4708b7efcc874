package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// Mutation is a parsed write operation. Name selects the library
// operation; the id fields carry whichever arguments the operation
// uses.
type Mutation struct {
	Name          string
	CardID        int64
	NoteID        int64
	FolderID      int64
	ParticipantID int64
	Text          string
}

func buildMutation(root *ast.Field, vr valueResolver) (*Mutation, error) {
	m := &Mutation{Name: root.Name}
	for _, a := range root.Arguments {
		switch a.Name {
		case "cardId":
			id, ok := vr.int64Value(a.Value)
			if !ok {
				return nil, domain.NewValidationError("cardId", "must be an integer id")
			}
			m.CardID = id
		case "noteId":
			id, ok := vr.int64Value(a.Value)
			if !ok {
				return nil, domain.NewValidationError("noteId", "must be an integer id")
			}
			m.NoteID = id
		case "folderId":
			id, ok := vr.int64Value(a.Value)
			if !ok {
				return nil, domain.NewValidationError("folderId", "must be an integer id")
			}
			m.FolderID = id
		case "participantId":
			id, ok := vr.int64Value(a.Value)
			if !ok {
				return nil, domain.NewValidationError("participantId", "must be an integer id")
			}
			m.ParticipantID = id
		case "text":
			m.Text, _ = vr.stringValue(a.Value)
		}
	}
	return m, nil
}
