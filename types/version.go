package types

// Version is the canonical project version.
// The CLI, the chunk wire format, and the codec share this version.
const Version = "0.1.0"
