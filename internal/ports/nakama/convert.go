package nakama

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"typerace/internal/domain"
)

// MatchLabel is the searchable summary of a match.
type MatchLabel struct {
	Game    string       `json:"game"`
	Phase   domain.Phase `json:"phase"`
	Open    bool         `json:"open"`
	Players int          `json:"players"`
}

func (l MatchLabel) marshal() (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"game":    l.Game,
		"phase":   string(l.Phase),
		"open":    l.Open,
		"players": l.Players,
	})
	if err != nil {
		return "", fmt.Errorf("build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	return string(b), nil
}

func parseMatchLabel(raw string) (MatchLabel, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal([]byte(raw), &s); err != nil {
		return MatchLabel{}, fmt.Errorf("unmarshal label: %w", err)
	}
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return MatchLabel{}, err
	}
	var l MatchLabel
	if err := json.Unmarshal(b, &l); err != nil {
		return MatchLabel{}, err
	}
	return l, nil
}
