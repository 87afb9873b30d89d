package bufhub

import "fmt"

// Status is the outcome code surfaced at the hub boundary. Protocol failures are reported through
// statuses, not errors, so the surrounding dispatch layer can forward them to remote callers as-is.
//
type Status uint8

const (
	NO_ERROR Status = iota
	ALLOCATION_FAILED
	INVALID_TOKEN
	BUFFER_FREED
	MAX_CLIENT
)

func (self Status) String() string {
	switch self {
	case NO_ERROR:
		return "NO_ERROR"
	case ALLOCATION_FAILED:
		return "ALLOCATION_FAILED"
	case INVALID_TOKEN:
		return "INVALID_TOKEN"
	case BUFFER_FREED:
		return "BUFFER_FREED"
	case MAX_CLIENT:
		return "MAX_CLIENT"
	default:
		return fmt.Sprintf("STATUS_%d", uint8(self))
	}
}
