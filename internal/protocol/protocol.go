package protocol

// Kind of a sync frame, taken from the first byte
type Kind byte

const (
	// Client requests the current state
	KindSyncStep1 Kind = 0

	// State-vector reply to a step-1 request
	KindSyncStep2 Kind = 1

	// Full-state update produced by the client-side CRDT layer
	KindUpdate Kind = 2

	// Anything else, including empty frames
	KindUnknown Kind = 255
)

// Updates larger than this are dropped without being applied or relayed
const MaxUpdateSize = 10 * 1024 * 1024

func (k Kind) String() string {
	switch k {
	case KindSyncStep1:
		return "sync-step-1"
	case KindSyncStep2:
		return "sync-step-2"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// A frame decoded once at ingress. Raw keeps the original bytes so
// updates can be rebroadcast verbatim, tag included.
type Message struct {
	Kind    Kind
	Payload []byte // bytes after the tag; nil for unknown frames
	Raw     []byte
}

// Decode classifies a raw frame. It never fails: malformed input comes
// back as KindUnknown and is ignored by the caller.
func Decode(data []byte) Message {
	if len(data) == 0 {
		return Message{Kind: KindUnknown, Raw: data}
	}

	switch Kind(data[0]) {
	case KindSyncStep1:
		return Message{Kind: KindSyncStep1, Payload: data[1:], Raw: data}
	case KindSyncStep2:
		return Message{Kind: KindSyncStep2, Payload: data[1:], Raw: data}
	case KindUpdate:
		return Message{Kind: KindUpdate, Payload: data[1:], Raw: data}
	default:
		return Message{Kind: KindUnknown, Raw: data}
	}
}
