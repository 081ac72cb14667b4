package models

// -----------------------------------------------------------------------------
// Dashboard websocket messages
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type    string        `json:"type"` // "INITIAL" or "UPDATE"
	Batches []*FetchBatch `json:"batches"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

// MSubscribeCommand narrows what a dashboard client receives. Empty lists
// mean everything.
type MSubscribeCommand struct {
	Command string     `json:"command"`
	Symbols []string   `json:"symbols"`
	Kinds   []DataKind `json:"kinds"`
}
