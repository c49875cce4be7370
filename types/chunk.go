package types

// ChunkHeader identifies one chunk message within an emission stream.
// Both fields are 1-based; ChunkCount is identical across all chunk
// messages of one emission.
type ChunkHeader struct {
	ChunkIndex int `json:"chunk_index" msgpack:"chunk_index"`
	ChunkCount int `json:"chunk_count" msgpack:"chunk_count"`
}

// ChunkMessage is one emitted unit of the output stream. It carries the
// envelope's scalar metadata verbatim plus, per update, only the field
// values relevant to this chunk index: full values at index 1 for fields
// that needed no split, the k-th segment at index k for split fields.
type ChunkMessage struct {
	Header   ChunkHeader    `json:"header" msgpack:"header"`
	Type     string         `json:"type" msgpack:"type"`
	DraftyID string         `json:"drafty_id" msgpack:"drafty_id"`
	Command  string         `json:"command" msgpack:"command"`
	Results  []UpdateResult `json:"results" msgpack:"results"`
}

// StreamMeta carries the identity of one emission stream for logging.
type StreamMeta struct {
	DraftyID string
	Command  string
}
