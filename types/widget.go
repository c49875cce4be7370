// Package types defines the widget output envelope and the chunk message
// shapes shared by the codec, the transport sinks, and the CLI.
package types

// Group names one of the two field groups carried by an update.
type Group string

// Field group constants.
const (
	GroupArgs Group = "args"
	GroupData Group = "data"
)

// WidgetOutput is the top-level message produced by a widget computation:
// scalar metadata plus an ordered list of update results. It is the unit
// handed to the chunk emitter and is never mutated during emission.
type WidgetOutput struct {
	// Type is the message type tag.
	Type string `json:"type" msgpack:"type"`
	// DraftyID is the correlation identifier for the producing widget.
	DraftyID string `json:"drafty_id" msgpack:"drafty_id"`
	// Command is the command that produced this output.
	Command string `json:"command" msgpack:"command"`
	// Results is the ordered list of update results.
	Results []UpdateResult `json:"results" msgpack:"results"`
}

// UpdateResult is one plot update: a plot kind tag plus two named groups
// of array fields. Field values must be canonical (see ValidateValue).
type UpdateResult struct {
	// PlotType is the plot/record kind tag.
	PlotType string `json:"plot_type" msgpack:"plot_type"`
	// Args holds the positional plot arguments, keyed by name.
	Args map[string]any `json:"args" msgpack:"args"`
	// Data holds the plot data series, keyed by name.
	Data map[string]any `json:"data" msgpack:"data"`
}

// Fields returns the named group of the update.
// Unknown groups return nil.
func (u *UpdateResult) Fields(g Group) map[string]any {
	switch g {
	case GroupArgs:
		return u.Args
	case GroupData:
		return u.Data
	default:
		return nil
	}
}
