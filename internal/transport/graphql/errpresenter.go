package graphql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/pkg/ctxutil"
)

// presentError maps a domain error onto a GraphQL error with a
// machine-readable extension code. Unexpected errors are logged with
// the request id and returned as an opaque internal error.
func presentError(ctx context.Context, log *slog.Logger, err error) *gqlerror.Error {
	gqlErr := &gqlerror.Error{Message: err.Error()}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		gqlErr.Extensions = map[string]interface{}{"code": "NOT_FOUND"}

	case errors.Is(err, domain.ErrAlreadyExists):
		gqlErr.Extensions = map[string]interface{}{"code": "ALREADY_EXISTS"}

	case errors.Is(err, domain.ErrValidation):
		gqlErr.Extensions = map[string]interface{}{"code": "VALIDATION"}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			gqlErr.Extensions["fields"] = ve.Errors
		}

	case errors.Is(err, domain.ErrUnauthorized):
		gqlErr.Extensions = map[string]interface{}{"code": "UNAUTHENTICATED"}

	case errors.Is(err, domain.ErrForbidden):
		gqlErr.Extensions = map[string]interface{}{"code": "FORBIDDEN"}

	case errors.Is(err, domain.ErrComplexity):
		gqlErr.Extensions = map[string]interface{}{"code": "COMPLEXITY_LIMIT_EXCEEDED"}
		var ce *domain.ComplexityError
		if errors.As(err, &ce) {
			gqlErr.Extensions["complexity"] = ce.Complexity
			gqlErr.Extensions["maxComplexity"] = ce.MaxComplexity
			gqlErr.Extensions["depth"] = ce.Depth
			gqlErr.Extensions["maxDepth"] = ce.MaxDepth
		}

	case errors.Is(err, domain.ErrResourceExhausted):
		gqlErr.Message = "service overloaded, retry later"
		gqlErr.Extensions = map[string]interface{}{"code": "RESOURCE_EXHAUSTED"}

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		gqlErr.Message = "request cancelled"
		gqlErr.Extensions = map[string]interface{}{"code": "CANCELLED"}

	default:
		requestID := ctxutil.RequestIDFromCtx(ctx)
		log.ErrorContext(ctx, "unexpected GraphQL error",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID),
		)
		gqlErr.Message = "internal error"
		gqlErr.Extensions = map[string]interface{}{"code": "INTERNAL"}
	}

	return gqlErr
}
