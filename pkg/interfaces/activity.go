package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users audit record emitted for every CMS mutation.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives audit records. go-users activity stores satisfy it.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
