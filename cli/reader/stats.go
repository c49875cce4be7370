package reader

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/draftyhq/chunkstream/types"
)

// ChunkInfo summarizes a single chunk message for display.
type ChunkInfo struct {
	Index   int      `json:"index" yaml:"index"`
	Count   int      `json:"count" yaml:"count"`
	Bytes   int      `json:"bytes" yaml:"bytes"`
	Updates int      `json:"updates" yaml:"updates"`
	Fields  []string `json:"fields" yaml:"fields"`
}

// StreamStats summarizes a complete chunk stream.
type StreamStats struct {
	DraftyID    string      `json:"drafty_id" yaml:"drafty_id"`
	Command     string      `json:"command" yaml:"command"`
	Chunks      int         `json:"chunks" yaml:"chunks"`
	TotalBytes  int         `json:"total_bytes" yaml:"total_bytes"`
	Updates     int         `json:"updates" yaml:"updates"`
	Fields      int         `json:"fields" yaml:"fields"`
	SplitFields []string    `json:"split_fields" yaml:"split_fields"`
	ChunkInfos  []ChunkInfo `json:"chunk_infos" yaml:"chunk_infos"`
}

// Summarize computes per-chunk and stream-level statistics.
func Summarize(msgs []*types.ChunkMessage) *StreamStats {
	stats := &StreamStats{Chunks: len(msgs)}
	if len(msgs) == 0 {
		return stats
	}

	stats.DraftyID = msgs[0].DraftyID
	stats.Command = msgs[0].Command
	stats.Updates = len(msgs[0].Results)

	seen := map[string]int{}
	for _, msg := range msgs {
		info := Summarize1(msg)
		stats.TotalBytes += info.Bytes
		for _, f := range info.Fields {
			seen[f]++
		}
		stats.ChunkInfos = append(stats.ChunkInfos, info)
	}

	stats.Fields = len(seen)
	for f, n := range seen {
		if n > 1 {
			stats.SplitFields = append(stats.SplitFields, f)
		}
	}
	sort.Strings(stats.SplitFields)
	return stats
}

// Summarize1 computes display statistics for one chunk message.
func Summarize1(msg *types.ChunkMessage) ChunkInfo {
	info := ChunkInfo{
		Index:   msg.Header.ChunkIndex,
		Count:   msg.Header.ChunkCount,
		Updates: len(msg.Results),
	}
	if raw, err := json.Marshal(msg); err == nil {
		info.Bytes = len(raw)
	}
	for i, res := range msg.Results {
		for _, g := range []types.Group{types.GroupArgs, types.GroupData} {
			for key := range res.Fields(g) {
				info.Fields = append(info.Fields, fieldLabel(i, g, key))
			}
		}
	}
	sort.Strings(info.Fields)
	return info
}

func fieldLabel(update int, group types.Group, key string) string {
	return fmt.Sprintf("%d/%s/%s", update, group, key)
}
